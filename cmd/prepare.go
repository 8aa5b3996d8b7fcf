package cmd

import (
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"s1-forestry/catalog"
)

var prepareCmd = &cobra.Command{
	Use:   "prepare",
	Short: "Produce AOIs, download every crop and compute the baseline",
	Long: `One-off setup of the data folder:
	1. aoi_south and aoi_north from the parcel polygons;
	2. crops for south (until --end) and new_forest (until --extended-end);
	3. montenativo crops restricted to the scenes that also cover south;
	4. montenativo.csv.

	aoi_new_forest.json and aoi_montenativo.json must already exist.`,
	PreRunE: bindFlags,
	RunE: func(cmd *cobra.Command, args []string) error {
		logrus.Warn("Producing AOIs for the north and south zone")
		if err := produceAOIs(parcelZones); err != nil {
			return err
		}

		cfg, err := catalog.LoadConfig(viper.GetString("env-file"))
		if err != nil {
			return err
		}
		start, end, err := dateRange(viper.GetString("start"), viper.GetString("end"))
		if err != nil {
			return err
		}
		_, extendedEnd, err := dateRange(viper.GetString("start"), viper.GetString("extended-end"))
		if err != nil {
			return err
		}

		logrus.Warn("Downloading crops for the south, new_forest and montenativo zones")
		ctx := cmd.Context()
		jobs := []catalogJob{
			{Zone: "south", Start: start, End: end, Download: true, Save: true},
			{Zone: "new_forest", Start: start, End: extendedEnd, Download: true, Save: true},
		}
		for _, job := range jobs {
			if _, err := runCatalog(ctx, cfg, job); err != nil {
				return err
			}
		}
		south, err := runCatalog(ctx, cfg, catalogJob{Zone: "south", Start: start, End: extendedEnd})
		if err != nil {
			return err
		}
		montenativo := catalogJob{
			Zone:     baselineZone,
			Start:    start,
			End:      extendedEnd,
			Download: true,
			KeepIDs:  recordIDs(south),
			Save:     true,
		}
		if _, err := runCatalog(ctx, cfg, montenativo); err != nil {
			return err
		}

		logrus.Warn("Extracting montenativo means")
		return saveBaseline()
	},
}

func init() {
	rootCmd.AddCommand(prepareCmd)

	prepareCmd.Flags().String("start", "2008-01-01", "First acquisition date, YYYY-MM-DD")
	prepareCmd.Flags().String("end", "2018-12-31", "Last acquisition date of the south crops")
	prepareCmd.Flags().String("extended-end", "2021-04-10", "Last acquisition date of the new_forest and montenativo crops")
	prepareCmd.Flags().String("env-file", "env_vars.env", "Dotenv file with the catalog credentials")
	prepareCmd.Flags().Float64("resolution", 10, "Crop resolution in meters")
	prepareCmd.Flags().String("aoi-offset", "0,0", "x,y correction added to parcel vertices before the bounding box")
	prepareCmd.Flags().String("baseline-offset", "-40,20", "x,y correction added to the reference polygon")
}
