// Package aoi reads parcel polygons and derives the areas of interest used to
// query the image catalog.
package aoi

import (
	"cmp"
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"github.com/sirupsen/logrus"
)

const (
	nucleusProperty = "NUCLEO"
	rodalProperty   = "RODAL"
)

// ErrEmptyGeometry is returned when a bounding box or AOI is requested for
// no polygons or for a polygon without vertices.
var ErrEmptyGeometry = errors.New("aoi: empty geometry")

// ParcelKey identifies a parcel. Rodal numbers are only unique within a zone.
type ParcelKey struct {
	Zone  string
	Rodal int
}

func (k ParcelKey) String() string {
	return fmt.Sprintf("%s/%d", k.Zone, k.Rodal)
}

// Compare orders keys by zone, then rodal number.
func (k ParcelKey) Compare(o ParcelKey) int {
	if c := cmp.Compare(k.Zone, o.Zone); c != 0 {
		return c
	}
	return cmp.Compare(k.Rodal, o.Rodal)
}

// Parcel is a forestry management unit and its exterior polygon in projected
// coordinates.
type Parcel struct {
	Key     ParcelKey
	Polygon orb.Polygon
}

// Selection chooses which features of the polygon export belong to a zone.
type Selection struct {
	Zone    string
	Nucleus string
	// Offset is added to every vertex to correct a known georeferencing bias.
	Offset orb.Point
}

// ReadParcels reads a GeoJSON FeatureCollection exported from QGIS and returns
// the parcels whose NUCLEO property matches sel.Nucleus.
func ReadParcels(path string, sel Selection) ([]Parcel, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	fc, err := geojson.UnmarshalFeatureCollection(data)
	if err != nil {
		return nil, fmt.Errorf("aoi: decode %s: %w", path, err)
	}
	return ParcelsFromFeatures(fc, sel)
}

// ParcelsFromFeatures is ReadParcels on an already decoded collection.
func ParcelsFromFeatures(fc *geojson.FeatureCollection, sel Selection) ([]Parcel, error) {
	var parcels []Parcel
	for i, f := range fc.Features {
		if nucleus, _ := f.Properties[nucleusProperty].(string); nucleus != sel.Nucleus {
			continue
		}
		poly, err := firstPolygon(f.Geometry)
		if err != nil {
			return nil, fmt.Errorf("aoi: feature %d: %w", i, err)
		}
		rodal, err := intProperty(f.Properties, rodalProperty)
		if err != nil {
			return nil, fmt.Errorf("aoi: feature %d: %w", i, err)
		}
		parcels = append(parcels, Parcel{
			Key:     ParcelKey{Zone: sel.Zone, Rodal: rodal},
			Polygon: OffsetPolygon(poly, sel.Offset),
		})
	}
	logrus.Infof("Read %d parcels for zone %s", len(parcels), sel.Zone)
	return parcels, nil
}

// Polygons returns the polygons of parcels in order.
func Polygons(parcels []Parcel) []orb.Polygon {
	out := make([]orb.Polygon, len(parcels))
	for i, p := range parcels {
		out[i] = p.Polygon
	}
	return out
}

// OffsetPolygon returns a copy of poly with offset added to every vertex.
func OffsetPolygon(poly orb.Polygon, offset orb.Point) orb.Polygon {
	out := make(orb.Polygon, len(poly))
	for i, ring := range poly {
		shifted := make(orb.Ring, len(ring))
		for j, p := range ring {
			shifted[j] = orb.Point{p[0] + offset[0], p[1] + offset[1]}
		}
		out[i] = shifted
	}
	return out
}

func firstPolygon(g orb.Geometry) (orb.Polygon, error) {
	switch geom := g.(type) {
	case orb.Polygon:
		return geom, nil
	case orb.MultiPolygon:
		if len(geom) == 0 {
			return nil, ErrEmptyGeometry
		}
		if len(geom) > 1 {
			logrus.Warnf("MultiPolygon with %d parts, keeping the first", len(geom))
		}
		return geom[0], nil
	case nil:
		return nil, ErrEmptyGeometry
	default:
		return nil, fmt.Errorf("unsupported geometry type %s", g.GeoJSONType())
	}
}

func intProperty(props geojson.Properties, key string) (int, error) {
	switch v := props[key].(type) {
	case float64:
		return int(v), nil
	case string:
		n, err := strconv.Atoi(v)
		if err != nil {
			return 0, fmt.Errorf("property %s: %w", key, err)
		}
		return n, nil
	default:
		return 0, fmt.Errorf("property %s missing or not a number", key)
	}
}
