package main

import (
	"github.com/spf13/cobra"

	"github.com/veldwerk/fieldwork-etl/internal/domain"
	"github.com/veldwerk/fieldwork-etl/internal/pipeline"
)

var (
	visitsObservationsPath string
	visitsFieldVisitsPath  string
	visitsProjectsPath     string
	visitsRemovePatterns   []string
)

// visitsCmd runs the visit-enrichment stage and writes the adjustments summary.
var visitsCmd = &cobra.Command{
	Use:   "visits",
	Short: "Enrich field visits with solar anchors and suggested times",
	Long: `Reads the observations, field-visit and project exports, estimates
sunrise and sunset for every visit location and date, suggests start and end
times that conform to the visit's survey protocol and writes the adjustments
summary CSV (old and new values side by side, plus review and removal flags).

Visits without a usable coordinate borrow the first observation coordinate of
their project; visits without any coordinate are flagged for manual review.`,
	RunE: runVisits,
}

func init() {
	visitsCmd.Flags().StringVar(&visitsObservationsPath, "observations", "", "path to the observations export CSV")
	visitsCmd.Flags().StringVar(&visitsFieldVisitsPath, "fieldvisits", "", "path to the field-visits export CSV")
	visitsCmd.Flags().StringVar(&visitsProjectsPath, "projects", "", "path to the projects export CSV")
	visitsCmd.Flags().StringSliceVar(&visitsRemovePatterns, "remove-patterns", nil, "visit name substrings to mark for removal (default from config)")
	_ = visitsCmd.MarkFlagRequired("observations")
	_ = visitsCmd.MarkFlagRequired("fieldvisits")
	_ = visitsCmd.MarkFlagRequired("projects")
}

func runVisits(cmd *cobra.Command, args []string) error {
	loc := cfg.Location()

	estimator := domain.NewEstimator(loc)
	if cfg.SolarFallbackOnly {
		estimator = domain.NewFallbackEstimator(loc)
	}

	patterns := cfg.RemovePatterns
	if cmd.Flags().Changed("remove-patterns") {
		patterns = visitsRemovePatterns
	}

	p := pipeline.NewVisitsPipeline(
		estimator,
		domain.NewLocalizer(loc),
		domain.NewRemovalMatcher(patterns),
		logger,
		metrics,
	)
	_, err := p.Run(pipeline.VisitsInput{
		ObservationsPath: visitsObservationsPath,
		FieldVisitsPath:  visitsFieldVisitsPath,
		ProjectsPath:     visitsProjectsPath,
		OutputDir:        cfg.OutputDir,
	})
	return err
}
