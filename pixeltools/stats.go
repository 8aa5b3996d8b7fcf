package pixeltools

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"
)

const (
	// LowerPercentile and UpperPercentile bound the reported spread.
	LowerPercentile = 5
	UpperPercentile = 95
)

var (
	// ErrInvalidPixelValue is returned when a backscatter value is not
	// strictly positive and cannot be log transformed.
	ErrInvalidPixelValue = errors.New("pixeltools: invalid pixel value")
	// ErrEmptySample is returned when statistics are requested for no pixels.
	ErrEmptySample = errors.New("pixeltools: no pixels to summarise")
)

// Stats summarises the log backscatter of one parcel in one image.
type Stats struct {
	N      int
	Mean   float64
	Median float64
	Std    float64
	Lower  float64
	Upper  float64
}

// LogTransform returns the natural log of every value.
func LogTransform(values []float64) ([]float64, error) {
	out := make([]float64, len(values))
	for i, v := range values {
		if !(v > 0) || math.IsInf(v, 1) {
			return nil, fmt.Errorf("%w: %v at index %d", ErrInvalidPixelValue, v, i)
		}
		out[i] = math.Log(v)
	}
	return out, nil
}

// Percentile returns the p-th percentile (0-100) of sorted values,
// interpolating linearly between the closest ranks.
func Percentile(sorted []float64, p float64) float64 {
	if len(sorted) == 0 {
		return math.NaN()
	}
	h := float64(len(sorted)-1) * p / 100
	lo := int(math.Floor(h))
	if lo >= len(sorted)-1 {
		return sorted[len(sorted)-1]
	}
	if lo < 0 {
		return sorted[0]
	}
	frac := h - float64(lo)
	return sorted[lo] + frac*(sorted[lo+1]-sorted[lo])
}

// Summarize computes count, mean, median, population standard deviation and
// the 5th and 95th percentiles of values. values is not modified.
func Summarize(values []float64) (Stats, error) {
	if len(values) == 0 {
		return Stats{}, ErrEmptySample
	}
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)

	// Summing in sorted order keeps the result independent of pixel order.
	mean, std := stat.PopMeanStdDev(sorted, nil)
	return Stats{
		N:      len(sorted),
		Mean:   mean,
		Median: Percentile(sorted, 50),
		Std:    std,
		Lower:  Percentile(sorted, LowerPercentile),
		Upper:  Percentile(sorted, UpperPercentile),
	}, nil
}

// Aggregate log transforms raw backscatter and summarises it.
func Aggregate(raw []float64) ([]float64, Stats, error) {
	if len(raw) == 0 {
		return nil, Stats{}, ErrEmptySample
	}
	logs, err := LogTransform(raw)
	if err != nil {
		return nil, Stats{}, err
	}
	s, err := Summarize(logs)
	if err != nil {
		return nil, Stats{}, err
	}
	return logs, s, nil
}
