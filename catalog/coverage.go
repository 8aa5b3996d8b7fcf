package catalog

import (
	"github.com/golang/geo/s2"
	"github.com/paulmach/orb"
	"github.com/sirupsen/logrus"
)

// Covering keeps the scenes whose footprint contains every vertex of the
// lon/lat ring aoi. Scenes without a footprint are kept.
func Covering(scenes []Scene, aoi orb.Ring) []Scene {
	var out []Scene
	for _, s := range scenes {
		if len(s.Footprint) == 0 {
			logrus.Warnf("Scene %s has no footprint, keeping it", s.ID)
			out = append(out, s)
			continue
		}
		if footprintContains(s.Footprint, aoi) {
			out = append(out, s)
			continue
		}
		logrus.Debugf("Scene %s does not cover the AOI", s.ID)
	}
	logrus.Infof("%d of %d scenes cover the AOI", len(out), len(scenes))
	return out
}

func footprintContains(footprint orb.Ring, ring orb.Ring) bool {
	loop := footprintLoop(footprint)
	if loop == nil {
		return false
	}
	for _, p := range ring {
		if !loop.ContainsPoint(lonLatPoint(p)) {
			return false
		}
	}
	return true
}

// footprintLoop converts a closed lon/lat ring to an s2 loop covering less
// than half the sphere.
func footprintLoop(footprint orb.Ring) *s2.Loop {
	pts := make([]s2.Point, 0, len(footprint))
	for i, p := range footprint {
		if i == len(footprint)-1 && p == footprint[0] {
			break
		}
		pts = append(pts, lonLatPoint(p))
	}
	if len(pts) < 3 {
		return nil
	}
	loop := s2.LoopFromPoints(pts)
	loop.Normalize()
	return loop
}

func lonLatPoint(p orb.Point) s2.Point {
	return s2.PointFromLatLng(s2.LatLngFromDegrees(p[1], p[0]))
}
