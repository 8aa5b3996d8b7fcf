package timeseries

import (
	"errors"
	"fmt"

	"github.com/paulmach/orb"
	"github.com/sirupsen/logrus"

	"s1-forestry/catalog"
	"s1-forestry/pixeltools"
	"s1-forestry/rasterio"
	"s1-forestry/tableio"
)

// ErrBaselineNotFound is returned when no reference value exists for the
// date and polarisation of an image.
var ErrBaselineNotFound = errors.New("timeseries: no baseline for date and polarisation")

// BaselineKey addresses one reference value.
type BaselineKey struct {
	Date         string
	Polarisation string
}

// Baseline maps a date and polarisation to the mean log backscatter of the
// reference area.
type Baseline map[BaselineKey]float64

// Lookup returns the reference mean for date and pol.
func (b Baseline) Lookup(date tableio.Date, pol string) (float64, error) {
	v, ok := b[BaselineKey{Date: date.String(), Polarisation: pol}]
	if !ok {
		return 0, fmt.Errorf("%w: %s %s", ErrBaselineNotFound, date, pol)
	}
	return v, nil
}

// BaselineRecord is one row of the baseline table.
type BaselineRecord struct {
	Date              tableio.Date `csv:"date"`
	Filename          string       `csv:"filename"`
	Polarisation      string       `csv:"polarisation"`
	NPixels           int          `csv:"n_pixels"`
	MeanBackscatter   float64      `csv:"mean_backscatter"`
	MedianBackscatter float64      `csv:"median_backscatter"`
}

// NewBaseline indexes records by date and polarisation. Two records for the
// same key are an error.
func NewBaseline(records []BaselineRecord) (Baseline, error) {
	b := make(Baseline, len(records))
	for _, r := range records {
		key := BaselineKey{Date: r.Date.String(), Polarisation: r.Polarisation}
		if _, dup := b[key]; dup {
			return nil, fmt.Errorf("timeseries: duplicate baseline for %s %s", key.Date, key.Polarisation)
		}
		b[key] = r.MeanBackscatter
	}
	return b, nil
}

// ReadBaseline loads a table written by WriteBaseline.
func ReadBaseline(path string) (Baseline, error) {
	var records []BaselineRecord
	if err := tableio.ReadCSV(path, &records); err != nil {
		return nil, err
	}
	return NewBaseline(records)
}

// WriteBaseline stores records as csv.
func WriteBaseline(path string, records []BaselineRecord) error {
	return tableio.WriteCSV(path, records)
}

// BuildBaseline summarises the log backscatter inside polygon for every
// image in imageDir. The image date is the first ten characters of its
// filename.
func BuildBaseline(reader rasterio.Reader, imageDir string, polygon orb.Polygon) ([]BaselineRecord, error) {
	names, err := rasterio.ListImages(imageDir)
	if err != nil {
		return nil, err
	}
	records := make([]BaselineRecord, 0, len(names))
	for _, name := range names {
		rec, err := baselineRecord(reader, imageDir, name, polygon)
		if err != nil {
			return nil, fmt.Errorf("timeseries: baseline %s: %w", name, err)
		}
		logrus.Debugf("Baseline %s %s: %v", rec.Date, rec.Polarisation, rec.MeanBackscatter)
		records = append(records, rec)
	}
	logrus.Infof("Built baseline from %d images", len(records))
	return records, nil
}

func baselineRecord(reader rasterio.Reader, imageDir, name string, polygon orb.Polygon) (BaselineRecord, error) {
	date, err := tableio.ParseDate(name)
	if err != nil {
		return BaselineRecord{}, err
	}
	pol, err := catalog.PolarisationOf(name)
	if err != nil {
		return BaselineRecord{}, err
	}
	r, err := reader.Read(rasterio.ImagePath(imageDir, name))
	if err != nil {
		return BaselineRecord{}, err
	}
	raw := pixeltools.ExtractPolygon(r, polygon)
	if len(raw) == 0 {
		return BaselineRecord{}, pixeltools.ErrEmptySample
	}
	logs, err := pixeltools.LogTransform(raw)
	if err != nil {
		return BaselineRecord{}, err
	}
	return BaselineRecord{
		Date:              date,
		Filename:          name,
		Polarisation:      pol,
		NPixels:           len(logs),
		MeanBackscatter:   pixeltools.Mean(logs...),
		MedianBackscatter: pixeltools.Median(logs...),
	}, nil
}
