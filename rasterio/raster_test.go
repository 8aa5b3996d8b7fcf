package rasterio

import (
	"testing"

	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
)

func utmRaster() *Raster {
	return &Raster{
		Width:        4,
		Height:       3,
		Data:         make([]float64, 12),
		GeoTransform: [6]float64{400000, 10, 0, 6400000, 0, -10},
	}
}

func TestPixelCenter(t *testing.T) {
	r := utmRaster()
	assert.Equal(t, orb.Point{400005, 6399995}, r.PixelCenter(0, 0))
	assert.Equal(t, orb.Point{400035, 6399975}, r.PixelCenter(2, 3))
}

func TestBound(t *testing.T) {
	b := utmRaster().Bound()
	assert.Equal(t, orb.Point{400000, 6399970}, b.Min)
	assert.Equal(t, orb.Point{400040, 6400000}, b.Max)
}

func TestWindow(t *testing.T) {
	r := utmRaster()
	row0, row1, col0, col1 := r.Window(orb.Bound{Min: orb.Point{400012, 6399981}, Max: orb.Point{400025, 6399999}})
	assert.Equal(t, []int{0, 2, 1, 3}, []int{row0, row1, col0, col1})

	row0, row1, col0, col1 = r.Window(orb.Bound{Min: orb.Point{300000, 6000000}, Max: orb.Point{500000, 7000000}})
	assert.Equal(t, []int{0, 3, 0, 4}, []int{row0, row1, col0, col1})
}

func TestWindowRotated(t *testing.T) {
	r := utmRaster()
	r.GeoTransform[2] = 0.5
	row0, row1, col0, col1 := r.Window(orb.Bound{})
	assert.Equal(t, []int{0, 3, 0, 4}, []int{row0, row1, col0, col1})
}

func TestAt(t *testing.T) {
	r := utmRaster()
	r.Data[5] = 7
	assert.Equal(t, 7.0, r.At(1, 1))
}
