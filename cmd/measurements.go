package cmd

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"s1-forestry/fieldio"
)

var measurementsCmd = &cobra.Command{
	Use:   "measurements",
	Short: "Convert the field inventory export into a typed table",
	Long: `Read points/export.csv, map nucleus names to zones, parse the
	measurement dates, derive lon/lat from the projected coordinates and
	write the result to --output (.csv or .parquet).`,
	PreRunE: bindFlags,
	RunE: func(cmd *cobra.Command, args []string) error {
		ms, err := fieldio.Read(pointsPath(), viper.GetInt("epsg"))
		if err != nil {
			return err
		}
		output := viper.GetString("output")
		if output == "" {
			output = dataPath("measurements.csv")
		}
		return fieldio.Write(output, ms)
	},
}

func init() {
	rootCmd.AddCommand(measurementsCmd)

	measurementsCmd.Flags().StringP("output", "o", "", "Output table, .csv or .parquet")
}
