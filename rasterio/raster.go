// Package rasterio reads georeferenced rasters into memory and downloads
// image crops.
package rasterio

import (
	"math"

	"github.com/paulmach/orb"
)

// Raster is a single band held in memory, row-major.
type Raster struct {
	Width  int
	Height int
	Data   []float64
	// GeoTransform maps pixel corners to world coordinates:
	// x = gt[0] + col*gt[1] + row*gt[2], y = gt[3] + col*gt[4] + row*gt[5].
	GeoTransform [6]float64
	// EPSG of the raster's reference system, 0 when unknown.
	EPSG      int
	NoData    float64
	HasNoData bool
}

// At returns the value at row, col.
func (r *Raster) At(row, col int) float64 {
	return r.Data[row*r.Width+col]
}

// PixelToWorld maps fractional pixel coordinates to world coordinates.
func (r *Raster) PixelToWorld(col, row float64) orb.Point {
	gt := r.GeoTransform
	return orb.Point{
		gt[0] + col*gt[1] + row*gt[2],
		gt[3] + col*gt[4] + row*gt[5],
	}
}

// PixelCenter returns the world coordinates of the center of a pixel.
func (r *Raster) PixelCenter(row, col int) orb.Point {
	return r.PixelToWorld(float64(col)+0.5, float64(row)+0.5)
}

// Bound returns the world extent of the raster.
func (r *Raster) Bound() orb.Bound {
	b := orb.Bound{Min: r.PixelToWorld(0, 0), Max: r.PixelToWorld(0, 0)}
	for _, c := range [][2]float64{{float64(r.Width), 0}, {0, float64(r.Height)}, {float64(r.Width), float64(r.Height)}} {
		b = b.Extend(r.PixelToWorld(c[0], c[1]))
	}
	return b
}

// Window returns the half-open pixel window [row0,row1) x [col0,col1) that
// covers b, clamped to the raster. Rotated rasters get the full extent.
func (r *Raster) Window(b orb.Bound) (row0, row1, col0, col1 int) {
	gt := r.GeoTransform
	if gt[2] != 0 || gt[4] != 0 || gt[1] == 0 || gt[5] == 0 {
		return 0, r.Height, 0, r.Width
	}
	c0 := (b.Min[0] - gt[0]) / gt[1]
	c1 := (b.Max[0] - gt[0]) / gt[1]
	r0 := (b.Min[1] - gt[3]) / gt[5]
	r1 := (b.Max[1] - gt[3]) / gt[5]
	col0, col1 = clampRange(math.Min(c0, c1), math.Max(c0, c1), r.Width)
	row0, row1 = clampRange(math.Min(r0, r1), math.Max(r0, r1), r.Height)
	return row0, row1, col0, col1
}

func clampRange(lo, hi float64, size int) (int, int) {
	start := int(math.Floor(lo))
	end := int(math.Ceil(hi))
	if start < 0 {
		start = 0
	}
	if end > size {
		end = size
	}
	if end < start {
		end = start
	}
	return start, end
}
