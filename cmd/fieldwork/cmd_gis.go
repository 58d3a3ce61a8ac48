package main

import (
	"github.com/spf13/cobra"

	"github.com/veldwerk/fieldwork-etl/internal/pipeline"
)

var gisOutRoot string

// gisCmd renders geospatial outputs for cleaned observation CSVs.
var gisCmd = &cobra.Command{
	Use:   "gis <csv-file-or-directory>",
	Short: "Render GeoPackage, GeoJSON and Leaflet map per project",
	Long: `Reads a cleaned observations CSV, or every CSV under a directory,
groups the rows per project and writes one output directory per project:
a GeoPackage in the Dutch RD New projection, a WGS-84 GeoJSON and a
self-contained Leaflet map.`,
	Args: cobra.ExactArgs(1),
	RunE: runGIS,
}

func init() {
	gisCmd.Flags().StringVar(&gisOutRoot, "out-root", "", "root directory for the GIS outputs (default: the output directory)")
}

func runGIS(cmd *cobra.Command, args []string) error {
	outRoot := gisOutRoot
	if outRoot == "" {
		outRoot = cfg.OutputDir
	}
	_, err := pipeline.NewGISPipeline(logger).Run(args[0], outRoot)
	return err
}
