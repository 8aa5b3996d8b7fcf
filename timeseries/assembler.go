package timeseries

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"github.com/schollz/progressbar/v3"
	"github.com/sirupsen/logrus"

	"s1-forestry/aoi"
	"s1-forestry/catalog"
	"s1-forestry/pixeltools"
	"s1-forestry/rasterio"
)

// Assembler builds the time series of a set of parcels.
type Assembler struct {
	Reader   rasterio.Reader
	Parcels  []aoi.Parcel
	Catalog  *catalog.Catalog
	Baseline Baseline
	// Weather is optional.
	Weather Weather
	// EPSG of the parcel coordinates. Zero skips the raster check.
	EPSG       int
	NumWorkers int
	// Progress is optional and advanced once per image.
	Progress *progressbar.ProgressBar
}

type imageResult struct {
	rows []Row
	err  error
}

// Run summarises every parcel in every image of imageDir. The first error
// stops the run and is returned.
func (a *Assembler) Run(ctx context.Context, imageDir string) ([]Row, error) {
	names, err := rasterio.ListImages(imageDir)
	if err != nil {
		return nil, err
	}
	logrus.Infof("Assembling %d parcels over %d images", len(a.Parcels), len(names))

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	images := genImages(ctx, names)
	results := a.processImages(ctx, imageDir, images)

	var rows []Row
	var firstErr error
	for res := range results {
		if res.err != nil {
			if firstErr == nil {
				firstErr = res.err
				cancel()
			}
			continue
		}
		rows = append(rows, res.rows...)
		if a.Progress != nil {
			_ = a.Progress.Add(1)
		}
	}
	if firstErr != nil {
		return nil, firstErr
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if a.Weather != nil {
		a.Weather.Join(rows)
	}
	slices.SortFunc(rows, compareRows)
	logrus.Infof("Assembled %d rows", len(rows))
	return rows, nil
}

func genImages(ctx context.Context, names []string) <-chan string {
	logrus.Debug("Entered genImages")
	images := make(chan string)
	go func() {
		defer close(images)
		for _, name := range names {
			select {
			case images <- name:
			case <-ctx.Done():
				return
			}
		}
	}()
	return images
}

func (a *Assembler) processImages(ctx context.Context, imageDir string, images <-chan string) <-chan imageResult {
	workers := max(a.NumWorkers, 1)
	results := make(chan imageResult, workers)
	var wg sync.WaitGroup

	wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func() {
			defer wg.Done()
			for name := range images {
				if ctx.Err() != nil {
					return
				}
				rows, err := a.ProcessImage(imageDir, name)
				if err != nil {
					err = fmt.Errorf("timeseries: %s: %w", name, err)
				}
				results <- imageResult{rows: rows, err: err}
			}
		}()
	}

	go func() {
		wg.Wait()
		close(results)
	}()
	return results
}

// ProcessImage summarises every parcel in one image.
func (a *Assembler) ProcessImage(imageDir, name string) ([]Row, error) {
	pol, err := catalog.PolarisationOf(name)
	if err != nil {
		return nil, err
	}
	rec, err := a.Catalog.Resolve(name)
	if err != nil {
		return nil, err
	}
	baseline, err := a.Baseline.Lookup(rec.Date, pol)
	if err != nil {
		return nil, err
	}

	r, err := a.Reader.Read(rasterio.ImagePath(imageDir, name))
	if err != nil {
		return nil, err
	}
	if a.EPSG != 0 && r.EPSG != 0 && r.EPSG != a.EPSG {
		return nil, fmt.Errorf("raster EPSG %d, parcels EPSG %d", r.EPSG, a.EPSG)
	}

	rows := make([]Row, 0, len(a.Parcels))
	for _, p := range a.Parcels {
		raw := pixeltools.ExtractPolygon(r, p.Polygon)
		logs, stats, err := pixeltools.Aggregate(raw)
		if err != nil {
			return nil, fmt.Errorf("parcel %s: %w", p.Key, err)
		}
		rows = append(rows, Row{
			Date:         rec.Date,
			Filename:     name,
			Polarisation: pol,
			Parcel:       p.Key,
			RawPixels:    raw,
			Pixels:       logs,
			Stats:        stats,
			BaselineMean: baseline,
			NormMean:     stats.Mean - baseline,
		})
	}
	logrus.Infof("Processed %s", name)
	return rows, nil
}
