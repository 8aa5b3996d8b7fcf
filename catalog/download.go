package catalog

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/airbusgeo/godal"
	"github.com/schollz/progressbar/v3"
	"github.com/sirupsen/logrus"

	"s1-forestry/aoi"
	"s1-forestry/geodesy"
	"s1-forestry/rasterio"
)

// Downloader fetches AOI crops of scenes into a directory.
type Downloader interface {
	Download(ctx context.Context, scenes []Scene, area aoi.Descriptor, dir string) error
}

// CropDownloader warps the AOI window of every scene and polarisation into
// a UTM GeoTIFF named <filename>_<pol>.tif.
type CropDownloader struct {
	Config Config
	// EPSG of the output crops; 0 derives the UTM zone from the AOI.
	EPSG int
	// Resolution in meters of the output grid.
	Resolution float64
	// Progress receives one step per written crop; nil disables it.
	Progress *progressbar.ProgressBar
}

// Download writes missing crops and leaves existing files untouched.
func (d CropDownloader) Download(ctx context.Context, scenes []Scene, area aoi.Descriptor, dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	switches, err := d.warpSwitches(area)
	if err != nil {
		return err
	}

	for _, s := range scenes {
		for _, pol := range Polarisations {
			if err := ctx.Err(); err != nil {
				return err
			}
			dst := rasterio.ImagePath(dir, s.Filename+"_"+pol)
			if _, err := os.Stat(dst); err == nil {
				logrus.Debugf("%s already downloaded", dst)
				d.step()
				continue
			}
			if err := d.crop(d.source(s, pol), dst, switches); err != nil {
				return fmt.Errorf("catalog: crop %s %s: %w", s.ID, pol, err)
			}
			logrus.Infof("Downloaded %s", dst)
			d.step()
		}
	}
	return nil
}

func (d CropDownloader) step() {
	if d.Progress != nil {
		_ = d.Progress.Add(1)
	}
}

func (d CropDownloader) warpSwitches(area aoi.Descriptor) ([]string, error) {
	ring := area.Ring()
	if len(ring) == 0 {
		return nil, fmt.Errorf("%w: download AOI", aoi.ErrEmptyGeometry)
	}
	bound := area.Polygon().Bound()

	epsg := d.EPSG
	if epsg == 0 {
		c := area.CenterPoint()
		epsg = geodesy.ComputeEPSG(c[0], c[1])
	}
	if err := geodesy.ValidateEPSG(epsg); err != nil {
		return nil, err
	}
	res := d.Resolution
	if res <= 0 {
		res = 10
	}
	f := func(v float64) string { return strconv.FormatFloat(v, 'f', -1, 64) }
	return []string{
		"-of", "GTiff",
		"-t_srs", "EPSG:" + strconv.Itoa(epsg),
		"-te_srs", "EPSG:" + strconv.Itoa(geodesy.WGS84),
		"-te", f(bound.Min[0]), f(bound.Min[1]), f(bound.Max[0]), f(bound.Max[1]),
		"-tr", f(res), f(res),
		"-r", "bilinear",
	}, nil
}

func (d CropDownloader) source(s Scene, pol string) string {
	return strings.NewReplacer(
		"{endpoint}", strings.TrimSuffix(d.Config.Endpoint, "/"),
		"{id}", s.ID,
		"{url}", s.URL,
		"{date}", s.Date.String(),
		"{pol}", pol,
		"{POL}", strings.ToUpper(pol),
	).Replace(d.Config.CropSource)
}

func (d CropDownloader) gdalConfig() []string {
	if d.Config.APIKey == "" {
		return nil
	}
	return []string{"GDAL_HTTP_HEADERS=Authorization: Bearer " + d.Config.APIKey}
}

func (d CropDownloader) crop(src, dst string, switches []string) (err error) {
	rasterio.Register()

	cfg := d.gdalConfig()
	ds, err := godal.Open(src, godal.ConfigOption(cfg...))
	if err != nil {
		return err
	}
	defer func() {
		err = errors.Join(err, ds.Close())
	}()

	out, err := ds.Warp(dst, switches, godal.ConfigOption(cfg...))
	if err != nil {
		return err
	}
	return out.Close()
}
