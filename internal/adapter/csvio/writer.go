package csvio

import (
	"encoding/csv"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/veldwerk/fieldwork-etl/internal/domain"
)

const timestampLayout = "2006-01-02 15:04:05"

// SummaryFileName is the default name of the visit adjustments export.
const SummaryFileName = "veldbezoeken_export_aanpassingenMETA.csv"

var summaryColumns = []string{
	"project_id", "veldbezoek_ID", "check_data", "verwijderd", "project_naam",
	"veldbezoeknaam_oud", "veldbezoeknaam_nieuw",
	"starttijd_oud", "starttijd_nieuw",
	"eindtijd_oud", "eindtijd_nieuw",
	"duur_oud", "duur_nieuw",
	"zonsopkomst", "zonsondergang",
}

// WriteVisitSummary writes the per-visit adjustments CSV: old and new names,
// times and durations side by side, plus the review flag, removal mark and
// solar anchors. Missing values serialize as empty cells.
func WriteVisitSummary(path string, visits []domain.FieldVisit) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create summary csv: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	w.Comma = ';'

	if err := w.Write(summaryColumns); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for _, v := range visits {
		rec := []string{
			v.ProjectID,
			v.ID,
			domain.ReviewLabel(v.NeedsReview),
			v.Removed,
			v.ProjectName,
			v.Name,
			v.CleanName,
			formatTime(v.Start),
			formatTime(v.SuggestedStart),
			formatTime(v.End),
			formatTime(v.SuggestedEnd),
			v.HoursRaw,
			formatHours(v.SuggestedHours),
			formatTime(v.Sun.Sunrise),
			formatTime(v.Sun.Sunset),
		}
		if err := w.Write(rec); err != nil {
			return fmt.Errorf("write visit %s: %w", v.ID, err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("flush summary csv: %w", err)
	}
	return nil
}

var cleanedColumns = []string{
	"Verblijfnummer", "Groep", "Soort", "Datum", "Tijd",
	"Aantal", "Gedrag", "Verblijfplaats", "Sekse",
	"Adres", "Plaats", "Locatie_adres", "Functie", "Projectnaam",
}

// WriteCleanedObservations writes one cleaned CSV per project name,
// "waarnemingen_export_<safe>.csv" under dir. Observations without a
// project name are skipped. Returns the written file paths.
func WriteCleanedObservations(dir string, observations []domain.Observation) ([]string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create output dir: %w", err)
	}

	byProject := make(map[string][]domain.Observation)
	for _, obs := range observations {
		if obs.ProjectName == "" {
			continue
		}
		byProject[obs.ProjectName] = append(byProject[obs.ProjectName], obs)
	}

	names := make([]string, 0, len(byProject))
	for name := range byProject {
		names = append(names, name)
	}
	sort.Strings(names)

	paths := make([]string, 0, len(names))
	for _, name := range names {
		path := filepath.Join(dir, "waarnemingen_export_"+SafeName(name)+".csv")
		if err := writeCleanedFile(path, byProject[name]); err != nil {
			return paths, err
		}
		paths = append(paths, path)
	}
	return paths, nil
}

func writeCleanedFile(path string, observations []domain.Observation) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create cleaned csv: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	w.Comma = ';'

	if err := w.Write(cleanedColumns); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for _, obs := range observations {
		rec := []string{
			formatIntPtr(obs.RoostNumber),
			obs.Group,
			obs.Species,
			formatDate(obs.SeenAt),
			formatClock(obs.SeenAt),
			formatHours(obs.Count),
			obs.Behaviour,
			obs.Residence,
			obs.Sex,
			stringOrEmpty(obs.Street),
			stringOrEmpty(obs.Place),
			obs.Remark,
			obs.Function,
			obs.ProjectName,
		}
		if err := w.Write(rec); err != nil {
			return fmt.Errorf("write observation %s: %w", obs.ID, err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("flush cleaned csv: %w", err)
	}
	return nil
}

var (
	unsafeRe   = regexp.MustCompile(`[^A-Za-z0-9]+`)
	collapseRe = regexp.MustCompile(`_+`)
)

// SafeName turns an arbitrary project name into a file-name safe slug:
// lowercase, non-alphanumerics collapsed to underscores, capped at 40 runes.
func SafeName(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return "unknown"
	}
	s = unsafeRe.ReplaceAllString(s, "_")
	s = collapseRe.ReplaceAllString(s, "_")
	s = strings.ToLower(s)
	if r := []rune(s); len(r) > 40 {
		s = string(r[:40])
	}
	return s
}

func formatTime(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format(timestampLayout)
}

func formatDate(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format("2006-01-02")
}

func formatClock(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format("15:04:05")
}

func formatHours(v float64) string {
	if math.IsNaN(v) {
		return ""
	}
	return strconv.FormatFloat(v, 'g', -1, 64)
}

func formatIntPtr(v *int) string {
	if v == nil {
		return ""
	}
	return strconv.Itoa(*v)
}

func stringOrEmpty(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
