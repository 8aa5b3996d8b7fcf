package cmd

import (
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"s1-forestry/aoi"
	"s1-forestry/tableio"
)

var aoiCmd = &cobra.Command{
	Use:   "aoi",
	Short: "Derive the area of interest of every parcel zone",
	Long: `Read the parcel polygons, take the bounding box of each zone and
	write it as aoi_<zone>.json (lon/lat polygon with center) and
	aoi_<zone>.csv (projected and geographic extents).

	Options:
		--zones:      Zones to process. Default: south, north.
		--aoi-offset: x,y correction added to the parcel vertices. Default: 0,0.`,
	PreRunE: bindFlags,
	RunE: func(cmd *cobra.Command, args []string) error {
		return produceAOIs(viper.GetStringSlice("zones"))
	},
}

func produceAOIs(zones []string) error {
	epsg := viper.GetInt("epsg")
	for _, zone := range zones {
		sel, err := selection(zone, "aoi-offset")
		if err != nil {
			return err
		}
		parcels, err := aoi.ReadParcels(polygonsPath(), sel)
		if err != nil {
			return err
		}
		projected, geographic, _, err := aoi.Build(aoi.Polygons(parcels), epsg)
		if err != nil {
			return err
		}

		table := aoi.Table(projected, geographic)
		for _, row := range table {
			logrus.WithFields(logrus.Fields{
				"zone":   zone,
				"min":    row.Min,
				"max":    row.Max,
				"center": row.Center,
				"size":   row.Size,
			}).Info(row.Axis)
		}
		if err := tableio.WriteCSV(aoiPath(zone, ".csv"), table); err != nil {
			return err
		}
		if err := aoi.WriteDescriptor(aoiPath(zone, ".json"), geographic.Descriptor()); err != nil {
			return err
		}
	}
	return nil
}

func init() {
	rootCmd.AddCommand(aoiCmd)

	aoiCmd.Flags().StringSlice("zones", parcelZones, "Zones to derive an AOI for")
	aoiCmd.Flags().String("aoi-offset", "0,0", "x,y correction added to parcel vertices before the bounding box")
}
