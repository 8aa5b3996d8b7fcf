package geodesy

import (
	"errors"
	"fmt"

	"github.com/airbusgeo/godal"
	"github.com/sirupsen/logrus"
)

// Transform reprojects xs, ys from srcEPSG to dstEPSG and returns new slices.
// Geographic coordinates are always ordered x=lon, y=lat.
func Transform(xs, ys []float64, srcEPSG, dstEPSG int) (outX []float64, outY []float64, err error) {
	if len(xs) != len(ys) {
		return nil, nil, fmt.Errorf("geodesy: coordinate length mismatch: %d x values, %d y values", len(xs), len(ys))
	}
	if len(xs) == 0 {
		return nil, nil, errors.New("geodesy: no coordinates to transform")
	}

	src, err := godal.NewSpatialRefFromEPSG(srcEPSG)
	if err != nil {
		return nil, nil, fmt.Errorf("geodesy: spatial ref for EPSG:%d: %w", srcEPSG, err)
	}
	defer src.Close()
	dst, err := godal.NewSpatialRefFromEPSG(dstEPSG)
	if err != nil {
		return nil, nil, fmt.Errorf("geodesy: spatial ref for EPSG:%d: %w", dstEPSG, err)
	}
	defer dst.Close()

	trn, err := godal.NewTransform(src, dst)
	if err != nil {
		return nil, nil, fmt.Errorf("geodesy: transform EPSG:%d -> EPSG:%d: %w", srcEPSG, dstEPSG, err)
	}
	defer trn.Close()

	outX = append([]float64(nil), xs...)
	outY = append([]float64(nil), ys...)
	ok := make([]bool, len(xs))
	if err := trn.TransformEx(outX, outY, nil, ok); err != nil {
		return nil, nil, fmt.Errorf("geodesy: transform EPSG:%d -> EPSG:%d: %w", srcEPSG, dstEPSG, err)
	}
	for i, success := range ok {
		if !success {
			return nil, nil, fmt.Errorf("geodesy: point %d (%v, %v) failed to transform to EPSG:%d", i, xs[i], ys[i], dstEPSG)
		}
	}
	logrus.Debugf("Transformed %d points EPSG:%d -> EPSG:%d", len(xs), srcEPSG, dstEPSG)
	return outX, outY, nil
}

// LonLatToUTM projects lon/lat points into a single UTM zone. When forceEPSG
// is 0 the zone is derived from the first point and applied to the whole
// batch, so callers must keep batches within one zone.
func LonLatToUTM(lons, lats []float64, forceEPSG int) (eastings []float64, northings []float64, epsg int, err error) {
	if len(lons) == 0 || len(lats) == 0 {
		return nil, nil, 0, errors.New("geodesy: no coordinates to transform")
	}
	epsg = forceEPSG
	if epsg == 0 {
		epsg = ComputeEPSG(lons[0], lats[0])
	}
	if err := ValidateEPSG(epsg); err != nil {
		return nil, nil, 0, err
	}
	eastings, northings, err = Transform(lons, lats, WGS84, epsg)
	if err != nil {
		return nil, nil, 0, err
	}
	return eastings, northings, epsg, nil
}

// UTMToLonLat is the inverse of LonLatToUTM for the given zone.
func UTMToLonLat(eastings, northings []float64, epsg int) (lons []float64, lats []float64, err error) {
	if err := ValidateEPSG(epsg); err != nil {
		return nil, nil, err
	}
	return Transform(eastings, northings, epsg, WGS84)
}

// LonLatToUTMPoint is the scalar form of LonLatToUTM.
func LonLatToUTMPoint(lon, lat float64, forceEPSG int) (easting float64, northing float64, epsg int, err error) {
	e, n, epsg, err := LonLatToUTM([]float64{lon}, []float64{lat}, forceEPSG)
	if err != nil {
		return 0, 0, 0, err
	}
	return e[0], n[0], epsg, nil
}

// UTMToLonLatPoint is the scalar form of UTMToLonLat.
func UTMToLonLatPoint(easting, northing float64, epsg int) (lon float64, lat float64, err error) {
	lons, lats, err := UTMToLonLat([]float64{easting}, []float64{northing}, epsg)
	if err != nil {
		return 0, 0, err
	}
	return lons[0], lats[0], nil
}
