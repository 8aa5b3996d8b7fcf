package cmd

import (
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"s1-forestry/aoi"
	"s1-forestry/rasterio"
	"s1-forestry/timeseries"
)

var baselineCmd = &cobra.Command{
	Use:   "baseline",
	Short: "Compute the reference backscatter per date and polarisation",
	Long: `Project aoi_montenativo.json to UTM, shift it by --baseline-offset
	and write the mean and median log backscatter inside it for every image
	in images/montenativo to montenativo.csv.`,
	PreRunE: bindFlags,
	RunE: func(cmd *cobra.Command, args []string) error {
		return saveBaseline()
	},
}

func saveBaseline() error {
	offset, err := parsePoint(viper.GetString("baseline-offset"))
	if err != nil {
		return err
	}
	area, err := aoi.ReadDescriptor(aoiPath(baselineZone, ".json"))
	if err != nil {
		return err
	}
	projected, epsg, err := area.ToUTM(viper.GetInt("epsg"))
	if err != nil {
		return err
	}
	projected = projected.Offset(offset[0], offset[1])
	logrus.Debugf("Baseline polygon in EPSG:%d: %v", epsg, projected.Ring())

	records, err := timeseries.BuildBaseline(rasterio.GDALReader{}, imagesDir(baselineZone), projected.Polygon())
	if err != nil {
		return err
	}
	return timeseries.WriteBaseline(baselinePath(), records)
}

func init() {
	rootCmd.AddCommand(baselineCmd)

	baselineCmd.Flags().String("baseline-offset", "-40,20", "x,y correction added to the reference polygon")
}
