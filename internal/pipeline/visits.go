package pipeline

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/veldwerk/fieldwork-etl/internal/adapter/csvio"
	"github.com/veldwerk/fieldwork-etl/internal/domain"
	"github.com/veldwerk/fieldwork-etl/internal/observability"
)

// VisitsInput names the three exports the visits run consumes.
type VisitsInput struct {
	ObservationsPath string
	FieldVisitsPath  string
	ProjectsPath     string
	OutputDir        string
}

// VisitsPipeline enriches the field-visit export with solar anchors,
// suggested times and review flags, and writes the adjustments summary.
type VisitsPipeline struct {
	estimator *domain.Estimator
	localizer domain.Localizer
	remover   domain.RemovalMatcher
	logger    *slog.Logger
	metrics   *observability.Metrics
}

// NewVisitsPipeline wires the visits stages together.
func NewVisitsPipeline(estimator *domain.Estimator, localizer domain.Localizer, remover domain.RemovalMatcher, logger *slog.Logger, metrics *observability.Metrics) *VisitsPipeline {
	return &VisitsPipeline{
		estimator: estimator,
		localizer: localizer,
		remover:   remover,
		logger:    logger,
		metrics:   metrics,
	}
}

// Run processes the exports and writes the summary CSV. The enriched visits
// are returned for callers that chain further stages.
func (p *VisitsPipeline) Run(in VisitsInput) ([]domain.FieldVisit, error) {
	observations, err := csvio.ReadObservations(in.ObservationsPath)
	if err != nil {
		return nil, fmt.Errorf("load observations: %w", err)
	}
	visits, err := csvio.ReadFieldVisits(in.FieldVisitsPath)
	if err != nil {
		return nil, fmt.Errorf("load field visits: %w", err)
	}
	projects, err := csvio.ReadProjects(in.ProjectsPath)
	if err != nil {
		return nil, fmt.Errorf("load projects: %w", err)
	}

	p.logger.Info("visits run started",
		"observations", len(observations),
		"visits", len(visits),
		"projects", len(projects),
	)

	visitCoords, projectCoords := coordinateIndex(observations)
	cities := make(map[string]string, len(projects))
	for _, pr := range projects {
		cities[pr.ID] = pr.City
	}

	enriched := make([]domain.FieldVisit, 0, len(visits))
	for _, v := range visits {
		v.Sun = p.solarEvent(v, visitCoords, projectCoords)
		if v.City == "" {
			v.City = cities[v.ProjectID]
		}

		v = domain.EnrichFieldVisit(v, p.localizer)
		v.Removed = p.remover.Mark(v.Name)

		p.observeVisit(v)
		enriched = append(enriched, v)
	}

	outPath := filepath.Join(in.OutputDir, csvio.SummaryFileName)
	if err := csvio.WriteVisitSummary(outPath, enriched); err != nil {
		return nil, fmt.Errorf("write summary: %w", err)
	}
	p.logger.Info("visits run finished", "visits", len(enriched), "summary", outPath)
	return enriched, nil
}

// solarEvent resolves the visit's coordinate and date and computes the
// sunrise/sunset anchors. A visit without observations borrows the first
// known coordinate of its project; without any coordinate or parseable
// start date the anchors stay nil and the review flag picks the row up.
func (p *VisitsPipeline) solarEvent(v domain.FieldVisit, visitCoords, projectCoords map[string]string) domain.SolarEvent {
	coord := v.Coordinates
	if coord == "" {
		coord = visitCoords[v.ID]
	}
	if coord == "" {
		coord = projectCoords[v.ProjectID]
	}

	lat, lon, ok := domain.ParseCoordinates(coord)
	if !ok {
		return domain.SolarEvent{}
	}

	start := p.localizer.ParseLocal(v.StartRaw)
	if start == nil {
		return domain.SolarEvent{Lat: lat, Lon: lon}
	}
	return p.estimator.Estimate(*start, lat, lon, 0)
}

func (p *VisitsPipeline) observeVisit(v domain.FieldVisit) {
	p.metrics.VisitsProcessed.Inc()
	if v.NeedsReview {
		p.metrics.ReviewFlagged.Inc()
	}
	if v.Removed == "remove" {
		p.metrics.RemovalMarked.Inc()
	}
	if v.Sun.Sunrise == nil || v.Sun.Sunset == nil {
		p.metrics.SolarMissing.Inc()
	}
	if timeChanged(v.Start, v.SuggestedStart) || timeChanged(v.End, v.SuggestedEnd) {
		p.metrics.TimesCorrected.Inc()
	}
}

// coordinateIndex maps each visit, and each project, to the first non-empty
// observation coordinate seen for it.
func coordinateIndex(observations []domain.Observation) (byVisit, byProject map[string]string) {
	byVisit = make(map[string]string)
	byProject = make(map[string]string)
	for _, obs := range observations {
		if obs.Coordinates == "" {
			continue
		}
		if obs.FieldVisitID != "" {
			if _, ok := byVisit[obs.FieldVisitID]; !ok {
				byVisit[obs.FieldVisitID] = obs.Coordinates
			}
		}
		if obs.ProjectID != "" {
			if _, ok := byProject[obs.ProjectID]; !ok {
				byProject[obs.ProjectID] = obs.Coordinates
			}
		}
	}
	return byVisit, byProject
}

func timeChanged(reported, suggested *time.Time) bool {
	if reported == nil || suggested == nil {
		return reported != suggested
	}
	return !reported.Equal(*suggested)
}
