package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/schollz/progressbar/v3"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"s1-forestry/aoi"
	"s1-forestry/catalog"
)

const dateLayout = "2006-01-02"

var catalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "Search Sentinel-1 acquisitions over a zone and download their crops",
	Long: `Search the ASF catalog for GRD acquisitions whose footprint covers
	aoi_<zone>.json, optionally download the AOI crops into images/<zone>,
	and write catalog_<zone>.csv.

	Credentials and endpoint are read from the dotenv file given by
	--env-file (CATALOG_API_KEY, CATALOG_ENDPOINT, CATALOG_CROP_SOURCE).

	Options:
		--zone:     Zone whose AOI is searched.
		--start:    First acquisition date, YYYY-MM-DD.
		--end:      Last acquisition date, YYYY-MM-DD.
		--download: Download missing crops.
		--keep-ids: Catalog csv whose scene ids restrict the search result.`,
	PreRunE: bindFlags,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := catalog.LoadConfig(viper.GetString("env-file"))
		if err != nil {
			return err
		}
		start, end, err := dateRange(viper.GetString("start"), viper.GetString("end"))
		if err != nil {
			return err
		}
		job := catalogJob{
			Zone:     viper.GetString("zone"),
			Start:    start,
			End:      end,
			Download: viper.GetBool("download"),
			Save:     true,
		}
		if path := viper.GetString("keep-ids"); path != "" {
			kept, err := catalog.Read(path)
			if err != nil {
				return err
			}
			job.KeepIDs = recordIDs(kept)
		}
		_, err = runCatalog(cmd.Context(), cfg, job)
		return err
	},
}

type catalogJob struct {
	Zone       string
	Start, End time.Time
	Download   bool
	// KeepIDs restricts the scenes when not nil.
	KeepIDs []string
	// Save writes catalog_<zone>.csv.
	Save bool
}

func runCatalog(ctx context.Context, cfg catalog.Config, job catalogJob) (*catalog.Catalog, error) {
	area, err := aoi.ReadDescriptor(aoiPath(job.Zone, ".json"))
	if err != nil {
		return nil, err
	}

	client := catalog.NewASFClient(cfg)
	scenes, err := client.Search(ctx, catalog.SearchRequest{
		AOI:         area,
		Start:       job.Start,
		End:         job.End,
		ProductType: "GRD",
	})
	if err != nil {
		return nil, err
	}
	scenes = catalog.Covering(scenes, area.Ring())
	if job.KeepIDs != nil {
		scenes = catalog.KeepIDs(scenes, job.KeepIDs)
	}
	logrus.Infof("%d scenes for %s between %s and %s", len(scenes), job.Zone,
		job.Start.Format(dateLayout), job.End.Format(dateLayout))

	dir := imagesDir(job.Zone)
	if job.Download {
		bar := progressbar.Default(int64(len(scenes)*len(catalog.Polarisations)), "crops "+job.Zone)
		downloader := catalog.CropDownloader{
			Config:     cfg,
			EPSG:       viper.GetInt("epsg"),
			Resolution: viper.GetFloat64("resolution"),
			Progress:   bar,
		}
		if err := downloader.Download(ctx, scenes, area, dir); err != nil {
			return nil, err
		}
	}

	cat := catalog.Expand(scenes, dir)
	if job.Save {
		if err := cat.Write(catalogPath(job.Zone)); err != nil {
			return nil, err
		}
	}
	return cat, nil
}

func dateRange(start, end string) (time.Time, time.Time, error) {
	s, err := time.Parse(dateLayout, start)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("start date: %w", err)
	}
	e, err := time.Parse(dateLayout, end)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("end date: %w", err)
	}
	if e.Before(s) {
		return time.Time{}, time.Time{}, fmt.Errorf("end date %s before start date %s", end, start)
	}
	return s, e, nil
}

func recordIDs(cat *catalog.Catalog) []string {
	ids := make([]string, 0, cat.Len())
	for _, r := range cat.Records() {
		ids = append(ids, r.ID)
	}
	return ids
}

func init() {
	rootCmd.AddCommand(catalogCmd)

	catalogCmd.Flags().String("zone", "south", "Zone whose AOI is searched")
	catalogCmd.Flags().String("start", "2008-01-01", "First acquisition date, YYYY-MM-DD")
	catalogCmd.Flags().String("end", "2018-12-31", "Last acquisition date, YYYY-MM-DD")
	catalogCmd.Flags().Bool("download", false, "Download missing crops")
	catalogCmd.Flags().String("keep-ids", "", "Catalog csv whose scene ids restrict the result")
	catalogCmd.Flags().String("env-file", "env_vars.env", "Dotenv file with the catalog credentials")
	catalogCmd.Flags().Float64("resolution", 10, "Crop resolution in meters")
}
