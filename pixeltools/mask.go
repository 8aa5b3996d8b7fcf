// Package pixeltools selects raster pixels inside parcel polygons and
// summarises them.
package pixeltools

import (
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"

	"s1-forestry/rasterio"
)

// Mask marks the pixels of a raster whose centers fall inside a polygon.
type Mask struct {
	Width  int
	Height int
	Pix    []bool
}

// Count returns the number of selected pixels.
func (m Mask) Count() int {
	var n int
	for _, in := range m.Pix {
		if in {
			n++
		}
	}
	return n
}

// NewMask rasterises poly, expressed in the raster's reference system, onto
// r's grid. Only pixels within the polygon's bounding box are tested.
func NewMask(r *rasterio.Raster, poly orb.Polygon) Mask {
	m := Mask{Width: r.Width, Height: r.Height, Pix: make([]bool, r.Width*r.Height)}
	if len(poly) == 0 || len(poly[0]) == 0 {
		return m
	}
	bound := poly.Bound()
	if !bound.Intersects(r.Bound()) {
		return m
	}

	row0, row1, col0, col1 := r.Window(bound)
	for row := row0; row < row1; row++ {
		for col := col0; col < col1; col++ {
			if planar.PolygonContains(poly, r.PixelCenter(row, col)) {
				m.Pix[row*r.Width+col] = true
			}
		}
	}
	return m
}

// Masks returns one mask per polygon.
func Masks(r *rasterio.Raster, polys []orb.Polygon) []Mask {
	out := make([]Mask, len(polys))
	for i, poly := range polys {
		out[i] = NewMask(r, poly)
	}
	return out
}

// Extract returns the values selected by m in row-major order. The result is
// empty when the mask selects nothing.
func Extract(r *rasterio.Raster, m Mask) []float64 {
	values := make([]float64, 0, m.Count())
	for i, in := range m.Pix {
		if in {
			values = append(values, r.Data[i])
		}
	}
	return values
}

// ExtractPolygon masks and extracts in one step.
func ExtractPolygon(r *rasterio.Raster, poly orb.Polygon) []float64 {
	return Extract(r, NewMask(r, poly))
}
