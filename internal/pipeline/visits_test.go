package pipeline

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/veldwerk/fieldwork-etl/internal/adapter/csvio"
	"github.com/veldwerk/fieldwork-etl/internal/config"
	"github.com/veldwerk/fieldwork-etl/internal/domain"
	"github.com/veldwerk/fieldwork-etl/internal/observability"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func writeCSV(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func newVisitsPipeline(t *testing.T, metrics *observability.Metrics) *VisitsPipeline {
	t.Helper()
	loc, err := time.LoadLocation("Europe/Amsterdam")
	require.NoError(t, err)
	return NewVisitsPipeline(
		domain.NewEstimator(loc),
		domain.NewLocalizer(loc),
		domain.NewRemovalMatcher(config.DefaultRemovePatterns),
		quietLogger(),
		metrics,
	)
}

func TestVisitsPipeline_Run(t *testing.T) {
	dir := t.TempDir()

	obsPath := writeCSV(t, dir, "waarnemingen.csv",
		"Soort;Coördinaten;Veldbezoek ID...23;Project ID...24\n"+
			"Gewone dwergvleermuis;52.37, 4.89;fv-1;pr-1\n"+
			"Huismus;51.92, 4.48;fv-9;pr-2\n")
	fvPath := writeCSV(t, dir, "veldbezoeken.csv",
		"ID;project_id;Project Naam;Naam;Startdatum;Einddatum;Duur (uren)\n"+
			"fv-1;pr-1;Kerkstraat 12;VM01 Avond I;2025-06-20 18:00;2025-06-21 01:15;7.25\n"+
			"fv-2;pr-1;Kerkstraat 12;Testronde GZ;2025-06-20 21:00;2025-06-20 23:00;2.0\n"+
			"fv-3;pr-1;Kerkstraat 12;VM 3 Avond;2025-06-20 21:00;2025-06-21 00:00;3.0\n")
	prPath := writeCSV(t, dir, "projecten.csv",
		"ID;Naam;Stad\npr-1;Kerkstraat 12;Utrecht\n")

	metrics := observability.NewMetrics()
	outDir := filepath.Join(dir, "out")

	visits, err := newVisitsPipeline(t, metrics).Run(VisitsInput{
		ObservationsPath: obsPath,
		FieldVisitsPath:  fvPath,
		ProjectsPath:     prPath,
		OutputDir:        outDir,
	})
	require.NoError(t, err)
	require.Len(t, visits, 3)

	table, err := csvio.ReadTable(filepath.Join(outDir, csvio.SummaryFileName))
	require.NoError(t, err)
	require.Len(t, table.Rows, 3)

	first := table.Rows[0]
	assert.Equal(t, "fv-1", first["veldbezoek_ID"])
	assert.Equal(t, "no", first["check_data"])
	assert.Equal(t, "keep", first["verwijderd"])
	assert.Equal(t, "VM01 avond 1", first["veldbezoeknaam_nieuw"])
	assert.NotEmpty(t, first["zonsopkomst"])
	assert.NotEmpty(t, first["zonsondergang"])
	// An 18:00 start is far before the midsummer sunset, so the suggested
	// start snaps to the sunset anchor.
	assert.Equal(t, first["zonsondergang"], first["starttijd_nieuw"])

	second := table.Rows[1]
	assert.Equal(t, "remove", second["verwijderd"])
	assert.Equal(t, "no", second["check_data"], "project coordinate fallback provides anchors")

	third := table.Rows[2]
	assert.Equal(t, "yes", third["check_data"], "vm03 rows are flagged even with anchors")

	assert.Equal(t, 3.0, testutil.ToFloat64(metrics.VisitsProcessed))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.ReviewFlagged))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.RemovalMarked))
	assert.GreaterOrEqual(t, testutil.ToFloat64(metrics.TimesCorrected), 1.0)
}

func TestVisitsPipeline_MissingCoordinatesFlagVisit(t *testing.T) {
	dir := t.TempDir()

	obsPath := writeCSV(t, dir, "waarnemingen.csv",
		"Soort;Coördinaten;Veldbezoek ID...23;Project ID...24\n")
	fvPath := writeCSV(t, dir, "veldbezoeken.csv",
		"ID;project_id;Project Naam;Naam;Startdatum;Einddatum;Duur (uren)\n"+
			"fv-1;pr-1;Kerkstraat 12;VM01 Avond I;2025-06-20 21:00;2025-06-21 00:00;3.0\n")
	prPath := writeCSV(t, dir, "projecten.csv", "ID;Naam;Stad\npr-1;Kerkstraat 12;Utrecht\n")

	metrics := observability.NewMetrics()
	visits, err := newVisitsPipeline(t, metrics).Run(VisitsInput{
		ObservationsPath: obsPath,
		FieldVisitsPath:  fvPath,
		ProjectsPath:     prPath,
		OutputDir:        filepath.Join(dir, "out"),
	})
	require.NoError(t, err)
	require.Len(t, visits, 1)

	assert.True(t, visits[0].NeedsReview)
	assert.Nil(t, visits[0].Sun.Sunrise)
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.SolarMissing))

	// Times pass through untouched when no anchor is available.
	require.NotNil(t, visits[0].SuggestedStart)
	assert.Equal(t, *visits[0].Start, *visits[0].SuggestedStart)
}

func TestVisitsPipeline_MissingInputFile(t *testing.T) {
	dir := t.TempDir()
	_, err := newVisitsPipeline(t, observability.NewMetrics()).Run(VisitsInput{
		ObservationsPath: filepath.Join(dir, "nope.csv"),
		FieldVisitsPath:  filepath.Join(dir, "nope.csv"),
		ProjectsPath:     filepath.Join(dir, "nope.csv"),
		OutputDir:        dir,
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "load observations")
}
