package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/veldwerk/fieldwork-etl/internal/adapter/csvio"
	"github.com/veldwerk/fieldwork-etl/internal/domain"
	"github.com/veldwerk/fieldwork-etl/internal/observability"
)

// ObservationsInput names the exports the observations run consumes.
// FieldVisitsPath is optional; when present it supplies the project-id to
// project-name mapping for the per-project output files.
type ObservationsInput struct {
	ObservationsPath string
	FieldVisitsPath  string
	OutputDir        string
}

// ObservationsPipeline enriches the raw observations export and writes one
// cleaned CSV per project.
type ObservationsPipeline struct {
	localizer domain.Localizer
	geocoder  domain.Geocoder // nil disables address enrichment
	logger    *slog.Logger
	metrics   *observability.Metrics
}

// NewObservationsPipeline wires the observation stages together.
func NewObservationsPipeline(localizer domain.Localizer, geocoder domain.Geocoder, logger *slog.Logger, metrics *observability.Metrics) *ObservationsPipeline {
	p := &ObservationsPipeline{
		localizer: localizer,
		logger:    logger,
		metrics:   metrics,
	}
	if geocoder != nil {
		p.geocoder = &instrumentedGeocoder{inner: geocoder, metrics: metrics}
	}
	return p
}

// Run processes the export and writes the cleaned per-project CSVs. The
// enriched observations are returned for callers that chain further stages.
func (p *ObservationsPipeline) Run(ctx context.Context, in ObservationsInput) ([]domain.Observation, error) {
	observations, err := csvio.ReadObservations(in.ObservationsPath)
	if err != nil {
		return nil, fmt.Errorf("load observations: %w", err)
	}

	projectNames := map[string]string{}
	if in.FieldVisitsPath != "" {
		visits, err := csvio.ReadFieldVisits(in.FieldVisitsPath)
		if err != nil {
			return nil, fmt.Errorf("load field visits: %w", err)
		}
		for _, v := range visits {
			if v.ProjectID != "" && v.ProjectName != "" {
				projectNames[v.ProjectID] = v.ProjectName
			}
		}
	}

	p.logger.Info("observations run started",
		"observations", len(observations),
		"geocoding", p.geocoder != nil,
	)

	enriched := make([]domain.Observation, 0, len(observations))
	for _, obs := range observations {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		enriched = append(enriched, p.enrich(ctx, obs, projectNames))
		p.metrics.ObservationsProcessed.Inc()
	}

	assignRoostNumbers(enriched)

	paths, err := csvio.WriteCleanedObservations(in.OutputDir, enriched)
	if err != nil {
		return nil, fmt.Errorf("write cleaned observations: %w", err)
	}
	p.logger.Info("observations run finished",
		"observations", len(enriched),
		"files", len(paths),
	)
	return enriched, nil
}

func (p *ObservationsPipeline) enrich(ctx context.Context, obs domain.Observation, projectNames map[string]string) domain.Observation {
	if obs.ProjectName == "" {
		obs.ProjectName = projectNames[obs.ProjectID]
	}

	obs.SeenAt = p.localizer.ParseLocal(obs.SeenAtRaw)
	obs.Group = domain.ClassifyGroup(obs.Species)

	count := parseCount(obs.CountRaw)
	if count != nil {
		obs.Count = *count
	} else {
		obs.Count = math.NaN()
	}

	if p.geocoder != nil && domain.InResidenceSet(obs.Behaviour) {
		obs = domain.EnrichWithAddress(ctx, obs, p.geocoder, p.logger)
	}
	obs.Function = domain.AssignFunction(obs.Group, obs.Behaviour, count)
	return obs
}

// parseCount reads the reported animal count. A missing value defaults to
// one; an unparseable value stays unknown.
func parseCount(raw string) *float64 {
	if strings.TrimSpace(raw) == "" {
		one := 1.0
		return &one
	}
	v, err := strconv.ParseFloat(strings.ReplaceAll(raw, ",", "."), 64)
	if err != nil {
		return nil
	}
	return &v
}

// assignRoostNumbers gives every geocoded address a stable 1-based number:
// the rank of the address in the sorted set of distinct addresses.
func assignRoostNumbers(observations []domain.Observation) {
	distinct := make(map[string]struct{})
	for _, obs := range observations {
		if obs.Address != nil {
			distinct[*obs.Address] = struct{}{}
		}
	}
	if len(distinct) == 0 {
		return
	}

	addresses := make([]string, 0, len(distinct))
	for addr := range distinct {
		addresses = append(addresses, addr)
	}
	sort.Strings(addresses)

	rank := make(map[string]int, len(addresses))
	for i, addr := range addresses {
		rank[addr] = i + 1
	}
	for i := range observations {
		if observations[i].Address != nil {
			n := rank[*observations[i].Address]
			observations[i].RoostNumber = &n
		}
	}
}

// instrumentedGeocoder counts request outcomes around the wrapped geocoder.
type instrumentedGeocoder struct {
	inner   domain.Geocoder
	metrics *observability.Metrics
}

func (g *instrumentedGeocoder) ReverseGeocode(ctx context.Context, lat, lon float64) (string, error) {
	addr, err := g.inner.ReverseGeocode(ctx, lat, lon)
	switch {
	case err != nil:
		g.metrics.GeocodeRequests.WithLabelValues("error").Inc()
	case addr == "":
		g.metrics.GeocodeRequests.WithLabelValues("empty").Inc()
	default:
		g.metrics.GeocodeRequests.WithLabelValues("success").Inc()
	}
	return addr, err
}
