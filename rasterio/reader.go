package rasterio

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/airbusgeo/godal"
	"github.com/sirupsen/logrus"
)

// Ext is the extension of image files on disk.
const Ext = ".tif"

var registerOnce sync.Once

// Register loads every GDAL driver once.
func Register() {
	registerOnce.Do(godal.RegisterAll)
}

// Reader loads a raster from a path. The dataset handle is released before
// Read returns.
type Reader interface {
	Read(path string) (*Raster, error)
}

// GDALReader reads the first band of any GDAL-readable raster.
type GDALReader struct{}

// Read opens path read-only, copies the first band and its georeferencing
// into memory and closes the dataset.
func (GDALReader) Read(path string) (r *Raster, err error) {
	Register()

	ds, err := godal.Open(path)
	if err != nil {
		return nil, fmt.Errorf("rasterio: open %s: %w", path, err)
	}
	defer func() {
		err = errors.Join(err, ds.Close())
	}()

	return readDataset(ds, path)
}

func readDataset(ds *godal.Dataset, name string) (*Raster, error) {
	structure := ds.Structure()
	if structure.NBands == 0 {
		return nil, fmt.Errorf("rasterio: %s has no bands", name)
	}
	if structure.NBands > 1 {
		logrus.Warnf("%s has %d bands, reading the first", name, structure.NBands)
	}

	gt, err := ds.GeoTransform()
	if err != nil {
		return nil, fmt.Errorf("rasterio: geotransform of %s: %w", name, err)
	}

	band := ds.Bands()[0]
	buf := make([]float64, structure.SizeX*structure.SizeY)
	if err := band.Read(0, 0, buf, structure.SizeX, structure.SizeY); err != nil {
		return nil, fmt.Errorf("rasterio: read %s: %w", name, err)
	}
	noData, hasNoData := band.NoData()

	r := &Raster{
		Width:        structure.SizeX,
		Height:       structure.SizeY,
		Data:         buf,
		GeoTransform: gt,
		NoData:       noData,
		HasNoData:    hasNoData,
		EPSG:         datasetEPSG(ds),
	}
	logrus.Debugf("Read %s: %dx%d EPSG:%d", name, r.Width, r.Height, r.EPSG)
	return r, nil
}

func datasetEPSG(ds *godal.Dataset) int {
	if ds.Projection() == "" {
		return 0
	}
	sr := ds.SpatialRef()
	code, err := strconv.Atoi(sr.AuthorityCode(""))
	if err != nil {
		return 0
	}
	return code
}

// ListImages returns the sorted image names (without extension) in dir.
func ListImages(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var names []string
	for _, e := range entries {
		if e.IsDir() || filepath.Ext(e.Name()) != Ext {
			continue
		}
		names = append(names, strings.TrimSuffix(e.Name(), Ext))
	}
	sort.Strings(names)
	return names, nil
}

// ImagePath returns the path of the image called name in dir.
func ImagePath(dir, name string) string {
	return filepath.Join(dir, name+Ext)
}
