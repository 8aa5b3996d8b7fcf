package geodesy

import (
	"errors"
	"testing"
)

func TestZoneEPSGInverse(t *testing.T) {
	for _, base := range []int{32600, 32700} {
		for epsg := base + 1; epsg <= base+60; epsg++ {
			zone, north, err := EPSGToUTMZone(epsg)
			if err != nil {
				t.Fatalf("EPSGToUTMZone(%d): %v", epsg, err)
			}
			got, err := UTMZoneToEPSG(zone, north)
			if err != nil {
				t.Fatalf("UTMZoneToEPSG(%d, %v): %v", zone, north, err)
			}
			if got != epsg {
				t.Errorf("round trip of %d gave %d", epsg, got)
			}
		}
	}
}

func TestEPSGToUTMZoneInvalid(t *testing.T) {
	for _, epsg := range []int{4326, 32600, 32661, 32700, 32761, 0, -32721} {
		if _, _, err := EPSGToUTMZone(epsg); !errors.Is(err, ErrInvalidZone) {
			t.Errorf("EPSGToUTMZone(%d) = %v, want ErrInvalidZone", epsg, err)
		}
	}
	for _, zone := range []int{0, 61} {
		if _, err := UTMZoneToEPSG(zone, true); !errors.Is(err, ErrInvalidZone) {
			t.Errorf("UTMZoneToEPSG(%d) = %v, want ErrInvalidZone", zone, err)
		}
	}
}

func TestComputeEPSG(t *testing.T) {
	tests := []struct {
		name     string
		lon, lat float64
		want     int
	}{
		{"paysandu", -57.9, -32.3, 32721},
		{"paris", 2.35, 48.85, 32631},
		{"antimeridian", -180, 10, 32601},
		{"zone edge", -54, -30, 32722},
		{"equator is south", 10, 0, 32732},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ComputeEPSG(tt.lon, tt.lat); got != tt.want {
				t.Errorf("got %d, want %d", got, tt.want)
			}
		})
	}
}

func TestZoneString(t *testing.T) {
	if got := ZoneOf(-57.9, -32.3).String(); got != "21S" {
		t.Errorf("got %s, want 21S", got)
	}
}
