package main

import (
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/veldwerk/fieldwork-etl/internal/adapter/nominatim"
	"github.com/veldwerk/fieldwork-etl/internal/domain"
	"github.com/veldwerk/fieldwork-etl/internal/pipeline"
)

var (
	obsObservationsPath string
	obsFieldVisitsPath  string
	obsGeocode          bool
)

// observationsCmd runs the observation-cleaning stage.
var observationsCmd = &cobra.Command{
	Use:   "observations",
	Short: "Clean the observations export into per-project CSVs",
	Long: `Reads the raw observations export, classifies each record into a
species group, assigns its ecological function and writes one cleaned CSV
per project.

With --geocode (or geocoding enabled in the config) the roost-indicating
observations are reverse geocoded against Nominatim, rate limited to one
request per second as its usage policy asks, and distinct addresses receive
stable roost numbers.`,
	RunE: runObservations,
}

func init() {
	observationsCmd.Flags().StringVar(&obsObservationsPath, "observations", "", "path to the observations export CSV")
	observationsCmd.Flags().StringVar(&obsFieldVisitsPath, "fieldvisits", "", "optional field-visits export CSV, supplies project names")
	observationsCmd.Flags().BoolVar(&obsGeocode, "geocode", false, "reverse geocode roost locations")
	_ = observationsCmd.MarkFlagRequired("observations")
}

func runObservations(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if cmd.Flags().Changed("geocode") {
		cfg.GeocodeEnabled = obsGeocode
	}

	var geocoder domain.Geocoder
	if cfg.GeocodeEnabled {
		client := nominatim.NewClient(cfg.GeocodeBaseURL, cfg.GeocodeUserAgent,
			cfg.GeocodeTimeout, cfg.GeocodeMinInterval, logger)
		geocoder = nominatim.NewCachedGeocoder(client, cfg.GeocodeCacheSize)
		logger.Info("reverse geocoding enabled",
			"base_url", cfg.GeocodeBaseURL,
			"cache_size", cfg.GeocodeCacheSize,
			"min_interval", cfg.GeocodeMinInterval,
		)
	} else {
		logger.Info("reverse geocoding disabled")
	}

	p := pipeline.NewObservationsPipeline(
		domain.NewLocalizer(cfg.Location()),
		geocoder,
		logger,
		metrics,
	)
	_, err := p.Run(ctx, pipeline.ObservationsInput{
		ObservationsPath: obsObservationsPath,
		FieldVisitsPath:  obsFieldVisitsPath,
		OutputDir:        cfg.OutputDir,
	})
	return err
}
