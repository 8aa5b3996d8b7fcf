package aoi

import (
	"fmt"

	"github.com/paulmach/orb"

	"s1-forestry/geodesy"
)

// Box is the axis-aligned envelope of a set of polygons.
type Box struct {
	Min    orb.Point
	Max    orb.Point
	Size   orb.Point
	Center orb.Point
}

// BoundingBox flattens the vertices of all polygons and returns their
// envelope.
func BoundingBox(polygons []orb.Polygon) (Box, error) {
	if len(polygons) == 0 {
		return Box{}, fmt.Errorf("%w: no polygons", ErrEmptyGeometry)
	}
	var bound orb.Bound
	for i, poly := range polygons {
		if countVertices(poly) == 0 {
			return Box{}, fmt.Errorf("%w: polygon %d has no vertices", ErrEmptyGeometry, i)
		}
		if i == 0 {
			bound = poly.Bound()
			continue
		}
		bound = bound.Union(poly.Bound())
	}
	return Box{
		Min:    bound.Min,
		Max:    bound.Max,
		Size:   orb.Point{bound.Max[0] - bound.Min[0], bound.Max[1] - bound.Min[1]},
		Center: orb.Point{(bound.Max[0] + bound.Min[0]) / 2, (bound.Max[1] + bound.Min[1]) / 2},
	}, nil
}

func countVertices(poly orb.Polygon) int {
	var n int
	for _, ring := range poly {
		n += len(ring)
	}
	return n
}

// AOI is a closed rectangular ring and its center in one reference system.
type AOI struct {
	EPSG   int
	Ring   orb.Ring
	Center orb.Point
}

// Polygon returns the AOI as a single-ring polygon.
func (a AOI) Polygon() orb.Polygon {
	return orb.Polygon{a.Ring}
}

// Descriptor returns the JSON form of the AOI.
func (a AOI) Descriptor() Descriptor {
	return NewDescriptor(a.Ring, &a.Center)
}

// Rectangle returns the closed ring (min,min) (min,max) (max,max) (max,min)
// (min,min).
func Rectangle(min, max orb.Point) orb.Ring {
	return orb.Ring{
		{min[0], min[1]},
		{min[0], max[1]},
		{max[0], max[1]},
		{max[0], min[1]},
		{min[0], min[1]},
	}
}

// Build computes the envelope of polygons, given in the UTM zone epsg, and
// returns it both projected and as lon/lat. The geographic rectangle is built
// from the converted min and max corners; its center is the mean of the
// four corners.
func Build(polygons []orb.Polygon, epsg int) (projected AOI, geographic AOI, box Box, err error) {
	box, err = BoundingBox(polygons)
	if err != nil {
		return AOI{}, AOI{}, Box{}, err
	}
	projected = AOI{EPSG: epsg, Ring: Rectangle(box.Min, box.Max), Center: box.Center}

	lons, lats, err := geodesy.UTMToLonLat(
		[]float64{box.Min[0], box.Max[0]},
		[]float64{box.Min[1], box.Max[1]},
		epsg,
	)
	if err != nil {
		return AOI{}, AOI{}, Box{}, err
	}
	ring := Rectangle(orb.Point{lons[0], lats[0]}, orb.Point{lons[1], lats[1]})
	geographic = AOI{EPSG: geodesy.WGS84, Ring: ring, Center: cornerMean(ring)}
	return projected, geographic, box, nil
}

// cornerMean averages the first four vertices of a closed rectangle.
func cornerMean(ring orb.Ring) orb.Point {
	n := min(4, len(ring))
	var c orb.Point
	for _, p := range ring[:n] {
		c[0] += p[0]
		c[1] += p[1]
	}
	if n > 0 {
		c[0] /= float64(n)
		c[1] /= float64(n)
	}
	return c
}

// TableRow is one axis of the AOI summary table.
type TableRow struct {
	Axis   string  `csv:"axis"`
	Min    float64 `csv:"min"`
	Max    float64 `csv:"max"`
	Center float64 `csv:"center"`
	Size   float64 `csv:"size"`
}

// Table summarises the projected and geographic extents per axis.
func Table(projected, geographic AOI) []TableRow {
	row := func(axis string, lo, hi float64) TableRow {
		return TableRow{Axis: axis, Min: lo, Max: hi, Center: (hi + lo) / 2, Size: hi - lo}
	}
	pMin, pMax := projected.Ring[0], projected.Ring[2]
	gMin, gMax := geographic.Ring[0], geographic.Ring[2]
	return []TableRow{
		row("easting", pMin[0], pMax[0]),
		row("northing", pMin[1], pMax[1]),
		row("lon", gMin[0], gMax[0]),
		row("lat", gMin[1], gMax[1]),
	}
}
