package cmd

import (
	"fmt"

	"github.com/schollz/progressbar/v3"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"s1-forestry/aoi"
	"s1-forestry/catalog"
	"s1-forestry/rasterio"
	"s1-forestry/timeseries"
)

var timeseriesCmd = &cobra.Command{
	Use:   "timeseries",
	Short: "Summarise the backscatter of every parcel in every image of a zone",
	Long: `Extract the pixels of each parcel of --zone from every image in
	images/<zone>, summarise their log backscatter, normalise the mean by
	montenativo.csv and optionally join daily weather.

	Options:
		--numWorkers: Number of images processed in parallel. Each worker
		              holds one raster in memory.
		--offset:     x,y correction added to the parcel vertices. Default: -40,20.
		--weather:    Station export to join by date. Empty skips the join.
		--columns:    Weather columns to keep. Default: rain, humidity.
		--cutoff:     Time of day of the daily weather reading. Default: 09:05:00.
		--output:     Output table, .csv or .parquet. Default: timeseries_<zone>.csv.`,
	PreRunE: bindFlags,
	RunE: func(cmd *cobra.Command, args []string) error {
		zone := viper.GetString("zone")
		sel, err := selection(zone, "offset")
		if err != nil {
			return err
		}
		parcels, err := aoi.ReadParcels(polygonsPath(), sel)
		if err != nil {
			return err
		}
		cat, err := catalog.Read(catalogPath(zone))
		if err != nil {
			return err
		}
		baseline, err := timeseries.ReadBaseline(baselinePath())
		if err != nil {
			return err
		}

		var weather timeseries.Weather
		if path := viper.GetString("weather"); path != "" {
			weather, err = timeseries.ReadWeather(path, viper.GetStringSlice("columns"), viper.GetString("cutoff"))
			if err != nil {
				return err
			}
		}

		dir := imagesDir(zone)
		names, err := rasterio.ListImages(dir)
		if err != nil {
			return err
		}
		assembler := timeseries.Assembler{
			Reader:     rasterio.GDALReader{},
			Parcels:    parcels,
			Catalog:    cat,
			Baseline:   baseline,
			Weather:    weather,
			EPSG:       viper.GetInt("epsg"),
			NumWorkers: viper.GetInt("numWorkers"),
			Progress:   progressbar.Default(int64(len(names)), "images "+zone),
		}
		rows, err := assembler.Run(cmd.Context(), dir)
		if err != nil {
			return err
		}

		output := viper.GetString("output")
		if output == "" {
			output = dataPath(fmt.Sprintf("timeseries_%s.csv", zone))
		}
		logrus.Infof("Writing %d rows for %d parcels", len(rows), len(parcels))
		return timeseries.Write(output, rows)
	},
}

func init() {
	rootCmd.AddCommand(timeseriesCmd)

	timeseriesCmd.Flags().String("zone", "south", "Parcel zone: south or north")
	timeseriesCmd.Flags().IntP("numWorkers", "n", 4, "Number of images processed in parallel")
	timeseriesCmd.Flags().String("offset", "-40,20", "x,y correction added to parcel vertices")
	timeseriesCmd.Flags().String("weather", "", "Weather station export to join by date")
	timeseriesCmd.Flags().StringSlice("columns", []string{timeseries.Rain, timeseries.Humidity}, "Weather columns to keep")
	timeseriesCmd.Flags().String("cutoff", timeseries.DefaultCutoff, "Time of day of the daily weather reading")
	timeseriesCmd.Flags().StringP("output", "o", "", "Output table, .csv or .parquet")
}
