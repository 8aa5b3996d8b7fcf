package timeseries

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"s1-forestry/rasterio"
)

func TestBuildBaseline(t *testing.T) {
	dir := t.TempDir()
	reader := fakeReader{}
	for _, name := range imageNames {
		require.NoError(t, os.WriteFile(rasterio.ImagePath(dir, name), nil, 0o644))
		reader[name] = blockRaster()
	}
	// Covers the e^2 block and the two e pixels below it.
	records, err := BuildBaseline(reader, dir, square(0, 1, 2, 4))
	require.NoError(t, err)
	require.Len(t, records, 3)

	assert.Equal(t, "2016-01-03", records[0].Date.String())
	assert.Equal(t, "vh", records[0].Polarisation)
	assert.Equal(t, 6, records[0].NPixels)
	assert.InDelta(t, 10.0/6, records[0].MeanBackscatter, 1e-12)
	assert.InDelta(t, 2.0, records[0].MedianBackscatter, 1e-12)
	assert.Equal(t, "vv", records[2].Polarisation)

	path := filepath.Join(t.TempDir(), "montenativo.csv")
	require.NoError(t, WriteBaseline(path, records))
	b, err := ReadBaseline(path)
	require.NoError(t, err)
	assert.Len(t, b, 3)

	v, err := b.Lookup(mustDate(t, "2016-01-15"), "vv")
	require.NoError(t, err)
	assert.InDelta(t, 10.0/6, v, 1e-9)

	_, err = b.Lookup(mustDate(t, "2016-01-15"), "vh")
	assert.ErrorIs(t, err, ErrBaselineNotFound)
}

func TestBuildBaselineRejectsUnknownPolarisation(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(rasterio.ImagePath(dir, "2016-01-03_S1A_A_hh"), nil, 0o644))

	_, err := BuildBaseline(fakeReader{}, dir, square(0, 0, 4, 4))
	assert.ErrorContains(t, err, "polarisation")
}

func TestNewBaselineRejectsDuplicates(t *testing.T) {
	rec := BaselineRecord{Date: mustDate(t, "2016-01-03"), Polarisation: "vv", MeanBackscatter: 1}
	_, err := NewBaseline([]BaselineRecord{rec, rec})
	assert.ErrorContains(t, err, "duplicate")
}
