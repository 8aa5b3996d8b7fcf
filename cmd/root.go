package cmd

import (
	"context"
	"errors"
	"os"
	"os/signal"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var Verbose bool
var Debug bool
var cfgFile string

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "s1-forestry",
	Short: "Sentinel-1 backscatter time series for forestry parcels",
	Long: `Build per-parcel Sentinel-1 backscatter time series for forestry
	yield estimation.

	Run 'prepare' once to produce the AOIs, download the image crops and
	compute the reference baseline, then 'timeseries' per zone:
	./s1-forestry prepare --data data
	./s1-forestry timeseries --zone south --weather data/weather.csv`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		setLogLevels()
		return nil
	},
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
// Interrupting the process cancels the running command.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		os.Exit(1)
	}
}

func setLogLevels() {
	if viper.GetBool("debug") {
		logrus.SetLevel(logrus.DebugLevel)
	} else if viper.GetBool("verbose") {
		logrus.SetLevel(logrus.InfoLevel)
	} else {
		logrus.SetLevel(logrus.WarnLevel)
	}
}

// initConfig reads s1-forestry.yaml from the working directory, or the file
// named by --config. A missing default file is not an error.
func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("s1-forestry")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")
	}
	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile != "" || !errors.As(err, &notFound) {
			logrus.Fatalf("Reading config: %v", err)
		}
		return
	}
	logrus.Debugf("Using config file %s", viper.ConfigFileUsed())
}

func bindPersistentFlag(name string) {
	if err := viper.BindPFlag(name, rootCmd.PersistentFlags().Lookup(name)); err != nil {
		logrus.Exit(1)
	}
}

// bindFlags binds the flags of the command being run. Subcommands share flag
// names, so binding happens at run time rather than in init.
func bindFlags(cmd *cobra.Command, args []string) error {
	return viper.BindPFlags(cmd.LocalFlags())
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./s1-forestry.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&Verbose, "verbose", "v", false, "Verbose output")
	bindPersistentFlag("verbose")
	rootCmd.PersistentFlags().BoolVarP(&Debug, "debug", "d", false, "Debug output")
	bindPersistentFlag("debug")

	rootCmd.PersistentFlags().String("data", "data", "Project data folder")
	bindPersistentFlag("data")
	rootCmd.PersistentFlags().Int("epsg", 32721, "EPSG code of the projected parcel coordinates")
	bindPersistentFlag("epsg")

	viper.SetDefault("nuclei", map[string]string{
		"south": "Pandule",
		"north": "Paysandu Norte",
	})
}
