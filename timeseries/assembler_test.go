package timeseries

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"s1-forestry/aoi"
	"s1-forestry/catalog"
	"s1-forestry/pixeltools"
	"s1-forestry/rasterio"
	"s1-forestry/tableio"
)

type fakeReader map[string]*rasterio.Raster

func (f fakeReader) Read(path string) (*rasterio.Raster, error) {
	name := filepath.Base(path)
	r, ok := f[name[:len(name)-len(rasterio.Ext)]]
	if !ok {
		return nil, fmt.Errorf("no raster at %s", path)
	}
	return r, nil
}

var imageNames = []string{
	"2016-01-03_S1A_A_vh",
	"2016-01-03_S1A_A_vv",
	"2016-01-15_S1A_B_vv",
}

// blockRaster is a 4x4 grid of unit pixels with its top-left corner at
// (0, 4). The top-left 2x2 block holds e^2 and every other pixel e.
func blockRaster() *rasterio.Raster {
	data := make([]float64, 16)
	for i := range data {
		data[i] = math.E
	}
	for _, i := range []int{0, 1, 4, 5} {
		data[i] = math.Exp(2)
	}
	return &rasterio.Raster{
		Width:        4,
		Height:       4,
		Data:         data,
		GeoTransform: [6]float64{0, 1, 0, 4, 0, -1},
		EPSG:         32721,
	}
}

func square(x0, y0, x1, y1 float64) orb.Polygon {
	return orb.Polygon{{{x0, y0}, {x0, y1}, {x1, y1}, {x1, y0}, {x0, y0}}}
}

func mustDate(t *testing.T, s string) tableio.Date {
	t.Helper()
	d, err := tableio.ParseDate(s)
	require.NoError(t, err)
	return d
}

func newAssembler(t *testing.T) (*Assembler, string) {
	t.Helper()
	dir := t.TempDir()
	reader := fakeReader{}
	var records []catalog.Record
	baseline := Baseline{}
	for _, name := range imageNames {
		require.NoError(t, os.WriteFile(rasterio.ImagePath(dir, name), nil, 0o644))
		reader[name] = blockRaster()
		pol, err := catalog.PolarisationOf(name)
		require.NoError(t, err)
		date := mustDate(t, name)
		records = append(records, catalog.Record{ID: name[11 : len(name)-3], Filename: name, Date: date, Polarisation: pol, Exists: true})
		baseline[BaselineKey{Date: date.String(), Polarisation: pol}] = 0.5
	}
	return &Assembler{
		Reader: reader,
		Parcels: []aoi.Parcel{
			{Key: aoi.ParcelKey{Zone: "south", Rodal: 2}, Polygon: square(2, 0, 4, 2)},
			{Key: aoi.ParcelKey{Zone: "south", Rodal: 1}, Polygon: square(0, 2, 2, 4)},
		},
		Catalog:    catalog.New(records),
		Baseline:   baseline,
		EPSG:       32721,
		NumWorkers: 2,
	}, dir
}

func TestRunNormalisesAgainstBaseline(t *testing.T) {
	a, dir := newAssembler(t)
	rows, err := a.Run(context.Background(), dir)
	require.NoError(t, err)
	require.Len(t, rows, 6)

	type key struct {
		date  string
		rodal int
		pol   string
	}
	var order []key
	for _, r := range rows {
		order = append(order, key{r.Date.String(), r.Parcel.Rodal, r.Polarisation})
	}
	assert.Equal(t, []key{
		{"2016-01-03", 1, "vh"},
		{"2016-01-03", 1, "vv"},
		{"2016-01-03", 2, "vh"},
		{"2016-01-03", 2, "vv"},
		{"2016-01-15", 1, "vv"},
		{"2016-01-15", 2, "vv"},
	}, order)

	first := rows[0]
	assert.Equal(t, "2016-01-03_S1A_A_vh", first.Filename)
	assert.Equal(t, 4, first.Stats.N)
	assert.Len(t, first.RawPixels, 4)
	assert.InDelta(t, 2.0, first.Stats.Mean, 1e-12)
	assert.InDelta(t, 0.5, first.BaselineMean, 1e-12)
	assert.InDelta(t, 1.5, first.NormMean, 1e-12)
	assert.Nil(t, first.Weather)

	assert.InDelta(t, 1.0, rows[2].Stats.Mean, 1e-12)
	assert.InDelta(t, 0.5, rows[2].NormMean, 1e-12)
}

func TestRunMissingBaseline(t *testing.T) {
	a, dir := newAssembler(t)
	delete(a.Baseline, BaselineKey{Date: "2016-01-15", Polarisation: "vv"})

	_, err := a.Run(context.Background(), dir)
	assert.ErrorIs(t, err, ErrBaselineNotFound)
}

func TestRunCatalogMismatch(t *testing.T) {
	a, dir := newAssembler(t)
	records := a.Catalog.Records()
	a.Catalog = catalog.New(append(records[:1:1], records[1], records[1], records[2]))

	_, err := a.Run(context.Background(), dir)
	assert.ErrorIs(t, err, catalog.ErrCatalogMismatch)
}

func TestRunEmptyParcel(t *testing.T) {
	a, dir := newAssembler(t)
	a.Parcels = append(a.Parcels, aoi.Parcel{Key: aoi.ParcelKey{Zone: "south", Rodal: 3}, Polygon: square(10, 10, 12, 12)})

	_, err := a.Run(context.Background(), dir)
	assert.ErrorIs(t, err, pixeltools.ErrEmptySample)
}

func TestRunEPSGMismatch(t *testing.T) {
	a, dir := newAssembler(t)
	a.EPSG = 32722

	_, err := a.Run(context.Background(), dir)
	assert.ErrorContains(t, err, "EPSG")
}

func TestRunCancelled(t *testing.T) {
	a, dir := newAssembler(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := a.Run(ctx, dir)
	assert.True(t, errors.Is(err, context.Canceled), "got %v", err)
}

func TestRunJoinsWeather(t *testing.T) {
	a, dir := newAssembler(t)
	rain := 12.5
	a.Weather = Weather{"2016-01-03": {Rain: &rain}}

	rows, err := a.Run(context.Background(), dir)
	require.NoError(t, err)
	for _, r := range rows {
		if r.Date.String() == "2016-01-03" {
			require.NotNil(t, r.Weather, r.Filename)
			assert.Equal(t, 12.5, *r.Weather.Rain)
		} else {
			assert.Nil(t, r.Weather, r.Filename)
		}
	}
}

func TestWriteIsIdempotent(t *testing.T) {
	out := t.TempDir()
	var files [][]byte
	for i, workers := range []int{1, 3} {
		a, dir := newAssembler(t)
		a.NumWorkers = workers
		rows, err := a.Run(context.Background(), dir)
		require.NoError(t, err)

		path := filepath.Join(out, fmt.Sprintf("timeseries_%d.csv", i))
		require.NoError(t, Write(path, rows))
		data, err := os.ReadFile(path)
		require.NoError(t, err)
		files = append(files, data)
	}
	assert.Equal(t, string(files[0]), string(files[1]))

	f, err := os.Open(filepath.Join(out, "timeseries_0.csv"))
	require.NoError(t, err)
	defer f.Close()
	scanner := bufio.NewScanner(f)
	require.True(t, scanner.Scan())
	assert.Equal(t,
		"date,filename,polarisation,zone,rodal,raw_pixels,pixels,n_pixels,mean,median,std,"+
			"lower_bound,upper_bound,montenativo_mean,norm_mean,rain,humidity,temperature",
		scanner.Text())
}

func TestWriteParquetRecords(t *testing.T) {
	a, dir := newAssembler(t)
	rows, err := a.Run(context.Background(), dir)
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "timeseries.parquet")
	require.NoError(t, Write(path, rows))

	got, err := tableio.ReadParquet[Record](path)
	require.NoError(t, err)
	require.Len(t, got, len(rows))
	assert.Equal(t, "2016-01-03", got[0].Date)
	assert.Equal(t, int64(1), got[0].Rodal)
	assert.Len(t, got[0].Pixels, 4)
	assert.InDelta(t, 1.5, got[0].NormMean, 1e-12)
	assert.Nil(t, got[0].Rain)
}
