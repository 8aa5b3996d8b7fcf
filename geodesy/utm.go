// Package geodesy converts coordinates between geographic (EPSG:4326) and
// UTM projected reference systems.
package geodesy

import (
	"errors"
	"fmt"
	"math"
)

// WGS84 is the EPSG code of geographic longitude/latitude coordinates.
const WGS84 = 4326

const (
	northBase = 32600
	southBase = 32700
	maxZone   = 60
)

// ErrInvalidZone is returned for EPSG codes or zone numbers outside the
// WGS84 / UTM ranges 32601-32660 and 32701-32760.
var ErrInvalidZone = errors.New("geodesy: invalid UTM zone")

// Zone is a UTM zone number plus its hemisphere.
type Zone struct {
	Number int
	North  bool
}

// EPSG returns the EPSG code of the zone.
func (z Zone) EPSG() (int, error) {
	return UTMZoneToEPSG(z.Number, z.North)
}

func (z Zone) String() string {
	if z.North {
		return fmt.Sprintf("%dN", z.Number)
	}
	return fmt.Sprintf("%dS", z.Number)
}

// ZoneOf returns the UTM zone containing the point. Latitude 0 counts as
// southern.
func ZoneOf(lon, lat float64) Zone {
	// Zones start at 1 on the antimeridian and are 6 degrees wide.
	number := int(math.Floor((lon+180)/6)) + 1
	return Zone{Number: number, North: lat > 0}
}

// ComputeEPSG returns the EPSG code of the UTM zone containing the point.
// The result is not validated; lon == 180 yields zone 61.
func ComputeEPSG(lon, lat float64) int {
	z := ZoneOf(lon, lat)
	if z.North {
		return northBase + z.Number
	}
	return southBase + z.Number
}

// UTMZoneToEPSG is the inverse of EPSGToUTMZone.
func UTMZoneToEPSG(zone int, north bool) (int, error) {
	if zone < 1 || zone > maxZone {
		return 0, fmt.Errorf("%w: zone %d", ErrInvalidZone, zone)
	}
	if north {
		return northBase + zone, nil
	}
	return southBase + zone, nil
}

// EPSGToUTMZone returns the zone number and hemisphere of a UTM EPSG code.
func EPSGToUTMZone(epsg int) (int, bool, error) {
	switch {
	case epsg > northBase && epsg <= northBase+maxZone:
		return epsg - northBase, true, nil
	case epsg > southBase && epsg <= southBase+maxZone:
		return epsg - southBase, false, nil
	default:
		return 0, false, fmt.Errorf("%w: epsg %d", ErrInvalidZone, epsg)
	}
}

// ValidateEPSG reports whether epsg is a WGS84 UTM code.
func ValidateEPSG(epsg int) error {
	_, _, err := EPSGToUTMZone(epsg)
	return err
}
