// Command fieldwork processes ecological field-survey exports: it estimates
// solar anchors per visit, suggests protocol-conform start and end times,
// cleans the raw observations into per-project CSVs and renders geospatial
// outputs for the cleaned data.
//
// Usage:
//
//	fieldwork visits --observations waarnemingen.csv \
//	  --fieldvisits veldbezoeken.csv --projects projecten.csv
//	fieldwork observations --observations waarnemingen.csv --geocode
//	fieldwork gis Data_Output
package main

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/veldwerk/fieldwork-etl/internal/config"
	"github.com/veldwerk/fieldwork-etl/internal/observability"
)

var (
	// Global flags.
	configPath string
	logLevel   string
	logFormat  string
	outputDir  string

	cfg     *config.Config
	logger  *slog.Logger
	metrics *observability.Metrics
)

// rootCmd is the base command; every subcommand shares its configuration
// and logging setup.
var rootCmd = &cobra.Command{
	Use:   "fieldwork",
	Short: "ETL for ecological field-survey exports",
	Long: `fieldwork cleans and enriches field-survey exports.

The visits stage estimates sunrise and sunset per visit location, suggests
protocol-conform start and end times and flags rows for manual review. The
observations stage classifies species, assigns ecological functions and
optionally reverse geocodes roost locations. The gis stage renders the
cleaned observations as GeoPackage, GeoJSON and an interactive map.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load(configPath)
		if err != nil {
			return err
		}

		// Flags override file and environment.
		if cmd.Flags().Changed("log-level") {
			cfg.LogLevel = logLevel
		}
		if cmd.Flags().Changed("log-format") {
			cfg.LogFormat = logFormat
		}
		if cmd.Flags().Changed("out-dir") {
			cfg.OutputDir = outputDir
		}

		logger = observability.NewLogger(os.Stderr, cfg.LogLevel, cfg.LogFormat)
		metrics = observability.NewMetrics()
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if metrics != nil {
			metrics.LogSummary(logger)
		}
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "path to YAML config file")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "text", "log format (text, json)")
	rootCmd.PersistentFlags().StringVar(&outputDir, "out-dir", "Data_Output", "output directory")

	rootCmd.AddCommand(visitsCmd)
	rootCmd.AddCommand(observationsCmd)
	rootCmd.AddCommand(gisCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		slog.Error("command failed", "error", err)
		os.Exit(1)
	}
}
