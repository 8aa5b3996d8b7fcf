package cmd

import (
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/paulmach/orb"
	"github.com/spf13/viper"

	"s1-forestry/aoi"
)

// Zones with parcels in the polygon export.
var parcelZones = []string{"south", "north"}

const baselineZone = "montenativo"

func dataPath(parts ...string) string {
	return filepath.Join(append([]string{viper.GetString("data")}, parts...)...)
}

func polygonsPath() string {
	return dataPath("polygons", "export.geojson")
}

func pointsPath() string {
	return dataPath("points", "export.csv")
}

func imagesDir(zone string) string {
	return dataPath("images", zone)
}

func aoiPath(zone, ext string) string {
	return dataPath(fmt.Sprintf("aoi_%s%s", zone, ext))
}

func catalogPath(zone string) string {
	return dataPath(fmt.Sprintf("catalog_%s.csv", zone))
}

func baselinePath() string {
	return dataPath(baselineZone + ".csv")
}

// parsePoint reads an "x,y" setting such as "-40,20".
func parsePoint(s string) (orb.Point, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 2 {
		return orb.Point{}, fmt.Errorf("offset %q: want x,y", s)
	}
	var p orb.Point
	for i, part := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(part), 64)
		if err != nil {
			return orb.Point{}, fmt.Errorf("offset %q: %w", s, err)
		}
		p[i] = v
	}
	return p, nil
}

// selection maps a zone to the nucleus configured under "nuclei".
func selection(zone, offsetKey string) (aoi.Selection, error) {
	nucleus, ok := viper.GetStringMapString("nuclei")[zone]
	if !ok {
		return aoi.Selection{}, fmt.Errorf("no nucleus configured for zone %q", zone)
	}
	offset, err := parsePoint(viper.GetString(offsetKey))
	if err != nil {
		return aoi.Selection{}, err
	}
	return aoi.Selection{Zone: zone, Nucleus: nucleus, Offset: offset}, nil
}
