// Package timeseries turns a directory of parcel images into one backscatter
// summary per parcel, image and polarisation.
package timeseries

import (
	"cmp"

	"s1-forestry/aoi"
	"s1-forestry/pixeltools"
	"s1-forestry/tableio"
)

// Row is the backscatter summary of one parcel in one image.
type Row struct {
	Date         tableio.Date
	Filename     string
	Polarisation string
	Parcel       aoi.ParcelKey
	RawPixels    []float64
	// Pixels holds the natural log of RawPixels.
	Pixels       []float64
	Stats        pixeltools.Stats
	BaselineMean float64
	NormMean     float64
	// Weather is nil when no observation exists for Date.
	Weather *Daily
}

// compareRows orders rows by date, parcel and polarisation. The filename
// breaks the tie between two acquisitions on the same day.
func compareRows(a, b Row) int {
	if c := a.Date.Compare(b.Date); c != 0 {
		return c
	}
	if c := a.Parcel.Compare(b.Parcel); c != 0 {
		return c
	}
	if c := cmp.Compare(a.Polarisation, b.Polarisation); c != 0 {
		return c
	}
	return cmp.Compare(a.Filename, b.Filename)
}

// Record is the flat form of a Row written to csv and Parquet.
type Record struct {
	Date            string            `csv:"date" parquet:"date"`
	Filename        string            `csv:"filename" parquet:"filename"`
	Polarisation    string            `csv:"polarisation" parquet:"polarisation"`
	Zone            string            `csv:"zone" parquet:"zone"`
	Rodal           int64             `csv:"rodal" parquet:"rodal"`
	RawPixels       tableio.FloatList `csv:"raw_pixels" parquet:"raw_pixels,list"`
	Pixels          tableio.FloatList `csv:"pixels" parquet:"pixels,list"`
	NPixels         int64             `csv:"n_pixels" parquet:"n_pixels"`
	Mean            float64           `csv:"mean" parquet:"mean"`
	Median          float64           `csv:"median" parquet:"median"`
	Std             float64           `csv:"std" parquet:"std"`
	LowerBound      float64           `csv:"lower_bound" parquet:"lower_bound"`
	UpperBound      float64           `csv:"upper_bound" parquet:"upper_bound"`
	MontenativoMean float64           `csv:"montenativo_mean" parquet:"montenativo_mean"`
	NormMean        float64           `csv:"norm_mean" parquet:"norm_mean"`
	Rain            *float64          `csv:"rain" parquet:"rain,optional"`
	Humidity        *float64          `csv:"humidity" parquet:"humidity,optional"`
	Temperature     *float64          `csv:"temperature" parquet:"temperature,optional"`
}

// Records flattens rows in order.
func Records(rows []Row) []Record {
	out := make([]Record, len(rows))
	for i, r := range rows {
		rec := Record{
			Date:            r.Date.String(),
			Filename:        r.Filename,
			Polarisation:    r.Polarisation,
			Zone:            r.Parcel.Zone,
			Rodal:           int64(r.Parcel.Rodal),
			RawPixels:       r.RawPixels,
			Pixels:          r.Pixels,
			NPixels:         int64(r.Stats.N),
			Mean:            r.Stats.Mean,
			Median:          r.Stats.Median,
			Std:             r.Stats.Std,
			LowerBound:      r.Stats.Lower,
			UpperBound:      r.Stats.Upper,
			MontenativoMean: r.BaselineMean,
			NormMean:        r.NormMean,
		}
		if r.Weather != nil {
			rec.Rain = r.Weather.Rain
			rec.Humidity = r.Weather.Humidity
			rec.Temperature = r.Weather.Temperature
		}
		out[i] = rec
	}
	return out
}

// Write stores rows as Parquet when path ends in .parquet and as csv
// otherwise.
func Write(path string, rows []Row) error {
	return tableio.Write(path, Records(rows))
}
