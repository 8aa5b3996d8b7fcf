package pixeltools

import (
	"sort"

	"gonum.org/v1/gonum/floats"
)

// AggFunc reduces a set of pixel values to one number.
type AggFunc func(...float64) float64

func Mean(inData ...float64) float64 {
	return floats.Sum(inData) / float64(len(inData))
}

func Median(inData ...float64) float64 {
	sorted := append([]float64(nil), inData...)
	sort.Float64s(sorted)
	return Percentile(sorted, 50)
}
