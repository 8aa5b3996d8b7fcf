package aoi

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/paulmach/orb"

	"s1-forestry/geodesy"
)

// Descriptor is the JSON AOI consumed by the catalog search:
// {"type":"Polygon","coordinates":[[[lon,lat],...]],"center":[lon,lat]}.
type Descriptor struct {
	Type        string         `json:"type"`
	Coordinates [][][2]float64 `json:"coordinates"`
	Center      *[2]float64    `json:"center,omitempty"`
}

// NewDescriptor builds a descriptor from a ring and an optional center.
func NewDescriptor(ring orb.Ring, center *orb.Point) Descriptor {
	coords := make([][2]float64, len(ring))
	for i, p := range ring {
		coords[i] = [2]float64{p[0], p[1]}
	}
	d := Descriptor{Type: "Polygon", Coordinates: [][][2]float64{coords}}
	if center != nil {
		c := [2]float64{center[0], center[1]}
		d.Center = &c
	}
	return d
}

// ReadDescriptor reads an AOI json file and fills in the center when absent.
func ReadDescriptor(path string) (Descriptor, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Descriptor{}, err
	}
	var d Descriptor
	if err := json.Unmarshal(data, &d); err != nil {
		return Descriptor{}, fmt.Errorf("aoi: decode %s: %w", path, err)
	}
	if len(d.Coordinates) == 0 || len(d.Coordinates[0]) == 0 {
		return Descriptor{}, fmt.Errorf("%w: %s has no coordinates", ErrEmptyGeometry, path)
	}
	return d.WithCenter(), nil
}

// WriteDescriptor writes d as json to path.
func WriteDescriptor(path string, d Descriptor) (err error) {
	data, err := json.Marshal(d)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// Ring returns the exterior ring.
func (d Descriptor) Ring() orb.Ring {
	if len(d.Coordinates) == 0 {
		return nil
	}
	ring := make(orb.Ring, len(d.Coordinates[0]))
	for i, c := range d.Coordinates[0] {
		ring[i] = orb.Point{c[0], c[1]}
	}
	return ring
}

// Polygon returns the exterior ring as a polygon.
func (d Descriptor) Polygon() orb.Polygon {
	return orb.Polygon{d.Ring()}
}

// CenterPoint returns the center, computing it from the ring if absent.
func (d Descriptor) CenterPoint() orb.Point {
	if d.Center != nil {
		return orb.Point{d.Center[0], d.Center[1]}
	}
	return cornerMean(d.Ring())
}

// WithCenter returns d with the center set to the mean of the first four
// vertices when it was absent.
func (d Descriptor) WithCenter() Descriptor {
	if d.Center != nil {
		return d
	}
	c := d.CenterPoint()
	d.Center = &[2]float64{c[0], c[1]}
	return d
}

// ToUTM converts a lon/lat descriptor into a UTM zone. forceEPSG == 0 derives
// the zone from the first vertex. An existing center is converted, not
// recomputed.
func (d Descriptor) ToUTM(forceEPSG int) (Descriptor, int, error) {
	ring := d.Ring()
	if len(ring) == 0 {
		return Descriptor{}, 0, fmt.Errorf("%w: descriptor has no coordinates", ErrEmptyGeometry)
	}
	lons := make([]float64, len(ring))
	lats := make([]float64, len(ring))
	for i, p := range ring {
		lons[i], lats[i] = p[0], p[1]
	}
	e, n, epsg, err := geodesy.LonLatToUTM(lons, lats, forceEPSG)
	if err != nil {
		return Descriptor{}, 0, err
	}
	projected := make(orb.Ring, len(ring))
	for i := range ring {
		projected[i] = orb.Point{e[i], n[i]}
	}

	if d.Center == nil {
		c := cornerMean(projected)
		return NewDescriptor(projected, &c), epsg, nil
	}
	ce, cn, _, err := geodesy.LonLatToUTMPoint(d.Center[0], d.Center[1], epsg)
	if err != nil {
		return Descriptor{}, 0, err
	}
	return NewDescriptor(projected, &orb.Point{ce, cn}), epsg, nil
}

// Offset returns a copy of d with every ring vertex shifted. The center is
// left untouched.
func (d Descriptor) Offset(dx, dy float64) Descriptor {
	shifted := OffsetPolygon(d.Polygon(), orb.Point{dx, dy})
	out := NewDescriptor(shifted[0], nil)
	out.Center = d.Center
	return out
}

// WKT renders the exterior ring as a WKT polygon.
func (d Descriptor) WKT() (string, error) {
	ring := d.Ring()
	if len(ring) == 0 {
		return "", errors.New("aoi: descriptor has no coordinates")
	}
	parts := make([]string, len(ring))
	for i, p := range ring {
		parts[i] = fmt.Sprintf("%v %v", p[0], p[1])
	}
	return "POLYGON((" + strings.Join(parts, ", ") + "))", nil
}
