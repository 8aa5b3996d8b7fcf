// Package fieldio reads the forest inventory plots measured on the ground.
package fieldio

import (
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"s1-forestry/aoi"
	"s1-forestry/geodesy"
	"s1-forestry/tableio"
)

const (
	// DefaultEPSG is the projection of the plot coordinates.
	DefaultEPSG = 32721

	dateLayout   = "2006/01/02"
	preCutPrefix = "Pre Cosecha"
)

// ZoneNames maps the nucleus names of the inventory to zone names.
var ZoneNames = map[string]string{
	"Pandule":   "south",
	"Pdu Norte": "north",
}

// RawMeasurement is one row of the inventory export. Headers are matched
// case-insensitively.
type RawMeasurement struct {
	X              float64 `csv:"x"`
	Y              float64 `csv:"y"`
	Volume         float64 `csv:"vol_mdp8"`
	Nucleus        string  `csv:"dcr_nucleo"`
	PlantDate      string  `csv:"data_rodal"`
	Age            float64 `csv:"edad"`
	Date           string  `csv:"data_medic"`
	BasalArea      float64 `csv:"g"`
	Diameter       float64 `csv:"dapmed"`
	Height         float64 `csv:"htmed"`
	DominantHeight float64 `csv:"htdom"`
	Programme      string  `csv:"programaci"`
	Rodal          int     `csv:"rodal"`
	Objective      string  `csv:"objetivo"`
	Stems          float64 `csv:"nfustes"`
	Stems8         float64 `csv:"nfustes8"`
	Block          string  `csv:"bloque"`
}

// Measurement is one inventory plot.
type Measurement struct {
	Date           tableio.Date
	Parcel         aoi.ParcelKey
	Lon, Lat       float64
	Easting        float64
	Northing       float64
	PlantDate      tableio.Date
	Age            float64
	Volume         float64
	Diameter       float64
	BasalArea      float64
	Height         float64
	DominantHeight float64
	// PreCut marks plots measured ahead of harvest.
	PreCut    bool
	Objective string
	Stems     float64
	Stems8    float64
	Block     string
}

// ReadRaw decodes the inventory export at path.
func ReadRaw(path string) ([]RawMeasurement, error) {
	var raw []RawMeasurement
	if err := tableio.ReadCSVLowerHeader(path, &raw); err != nil {
		return nil, fmt.Errorf("fieldio: read %s: %w", path, err)
	}
	return raw, nil
}

// Read decodes and converts the inventory export at path. Coordinates are
// in epsg.
func Read(path string, epsg int) ([]Measurement, error) {
	raw, err := ReadRaw(path)
	if err != nil {
		return nil, err
	}
	ms, err := Convert(raw, epsg)
	if err != nil {
		return nil, err
	}
	logrus.Infof("Read %d measurements from %s", len(ms), path)
	return ms, nil
}

// Convert types raw rows and derives their geographic coordinates from the
// projected ones.
func Convert(raw []RawMeasurement, epsg int) ([]Measurement, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	eastings := make([]float64, len(raw))
	northings := make([]float64, len(raw))
	for i, r := range raw {
		eastings[i], northings[i] = r.X, r.Y
	}
	lons, lats, err := geodesy.UTMToLonLat(eastings, northings, epsg)
	if err != nil {
		return nil, fmt.Errorf("fieldio: %w", err)
	}

	out := make([]Measurement, len(raw))
	for i, r := range raw {
		date, err := parseDate(r.Date)
		if err != nil {
			return nil, fmt.Errorf("fieldio: row %d date: %w", i+1, err)
		}
		plantDate, err := parseDate(r.PlantDate)
		if err != nil {
			return nil, fmt.Errorf("fieldio: row %d plant date: %w", i+1, err)
		}
		out[i] = Measurement{
			Date:           date,
			Parcel:         aoi.ParcelKey{Zone: ZoneName(r.Nucleus), Rodal: r.Rodal},
			Lon:            lons[i],
			Lat:            lats[i],
			Easting:        r.X,
			Northing:       r.Y,
			PlantDate:      plantDate,
			Age:            r.Age,
			Volume:         r.Volume,
			Diameter:       r.Diameter,
			BasalArea:      r.BasalArea,
			Height:         r.Height,
			DominantHeight: r.DominantHeight,
			PreCut:         strings.HasPrefix(r.Programme, preCutPrefix),
			Objective:      r.Objective,
			Stems:          r.Stems,
			Stems8:         r.Stems8,
			Block:          r.Block,
		}
	}
	return out, nil
}

// ZoneName maps an inventory nucleus to its zone. Unknown nuclei are kept
// verbatim.
func ZoneName(nucleus string) string {
	nucleus = strings.TrimSpace(nucleus)
	if zone, ok := ZoneNames[nucleus]; ok {
		return zone
	}
	return nucleus
}

func parseDate(s string) (tableio.Date, error) {
	t, err := time.Parse(dateLayout, strings.TrimSpace(s))
	if err != nil {
		return tableio.Date{}, err
	}
	return tableio.NewDate(t), nil
}

// Record is the flat form of a Measurement written to csv and Parquet.
type Record struct {
	Date           string  `csv:"date" parquet:"date"`
	Zone           string  `csv:"zone" parquet:"zone"`
	Rodal          int64   `csv:"rodal" parquet:"rodal"`
	Lon            float64 `csv:"lon" parquet:"lon"`
	Lat            float64 `csv:"lat" parquet:"lat"`
	Easting        float64 `csv:"easting" parquet:"easting"`
	Northing       float64 `csv:"northing" parquet:"northing"`
	PlantDate      string  `csv:"plant_date" parquet:"plant_date"`
	Age            float64 `csv:"age" parquet:"age"`
	Volume         float64 `csv:"volume" parquet:"volume"`
	Diameter       float64 `csv:"diameter" parquet:"diameter"`
	BasalArea      float64 `csv:"basal_area" parquet:"basal_area"`
	Height         float64 `csv:"height" parquet:"height"`
	DominantHeight float64 `csv:"dominant_height" parquet:"dominant_height"`
	PreCut         bool    `csv:"pre_cut" parquet:"pre_cut"`
	Objective      string  `csv:"objetivo" parquet:"objetivo"`
	Stems          float64 `csv:"nfustes" parquet:"nfustes"`
	Stems8         float64 `csv:"nfustes8" parquet:"nfustes8"`
	Block          string  `csv:"bloque" parquet:"bloque"`
}

// Records flattens measurements in order.
func Records(ms []Measurement) []Record {
	out := make([]Record, len(ms))
	for i, m := range ms {
		out[i] = Record{
			Date:           m.Date.String(),
			Zone:           m.Parcel.Zone,
			Rodal:          int64(m.Parcel.Rodal),
			Lon:            m.Lon,
			Lat:            m.Lat,
			Easting:        m.Easting,
			Northing:       m.Northing,
			PlantDate:      m.PlantDate.String(),
			Age:            m.Age,
			Volume:         m.Volume,
			Diameter:       m.Diameter,
			BasalArea:      m.BasalArea,
			Height:         m.Height,
			DominantHeight: m.DominantHeight,
			PreCut:         m.PreCut,
			Objective:      m.Objective,
			Stems:          m.Stems,
			Stems8:         m.Stems8,
			Block:          m.Block,
		}
	}
	return out
}

// Write stores measurements as Parquet when path ends in .parquet and as
// csv otherwise.
func Write(path string, ms []Measurement) error {
	return tableio.Write(path, Records(ms))
}
