package csvio

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/veldwerk/fieldwork-etl/internal/domain"
)

// The exports are semicolon-delimited with a header row. Column positions
// vary between export versions, so every field is resolved by header name;
// the spreadsheet tool that produces some exports deduplicates repeated
// headers with a "...N" suffix, hence the fallback names below.

// header maps column names to their index in the record.
type header map[string]int

func newHeader(record []string) header {
	h := make(header, len(record))
	for i, name := range record {
		h[strings.TrimSpace(name)] = i
	}
	return h
}

// get returns the trimmed value of the first column name that exists,
// or "" when none do.
func (h header) get(record []string, names ...string) string {
	for _, name := range names {
		i, ok := h[name]
		if !ok || i >= len(record) {
			continue
		}
		return strings.TrimSpace(record[i])
	}
	return ""
}

func (h header) has(name string) bool {
	_, ok := h[name]
	return ok
}

func newReader(r io.Reader) *csv.Reader {
	cr := csv.NewReader(r)
	cr.Comma = ';'
	cr.FieldsPerRecord = -1
	return cr
}

// readAll reads the header row plus all records of a semicolon CSV.
func readAll(r io.Reader) (header, []string, [][]string, error) {
	cr := newReader(r)
	first, err := cr.Read()
	if err == io.EOF {
		return nil, nil, nil, fmt.Errorf("empty csv")
	}
	if err != nil {
		return nil, nil, nil, fmt.Errorf("read header: %w", err)
	}
	for i := range first {
		first[i] = strings.TrimSpace(first[i])
	}
	records, err := cr.ReadAll()
	if err != nil {
		return nil, nil, nil, fmt.Errorf("read records: %w", err)
	}
	return newHeader(first), first, records, nil
}

// ReadObservations loads the raw observations export.
func ReadObservations(path string) ([]domain.Observation, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open observations csv: %w", err)
	}
	defer f.Close()

	h, _, records, err := readAll(f)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}

	observations := make([]domain.Observation, 0, len(records))
	for _, rec := range records {
		obs := domain.Observation{
			ID:           h.get(rec, "ID"),
			FieldVisitID: h.get(rec, "Veldbezoek ID...23", "Veldbezoek ID"),
			ProjectID:    h.get(rec, "Project ID...24", "Project ID"),
			Species:      h.get(rec, "Soort"),
			SeenAtRaw:    h.get(rec, "Gezien op"),
			CountRaw:     h.get(rec, "Aantal"),
			Behaviour:    h.get(rec, "Gedrag"),
			Residence:    h.get(rec, "Verblijfplaats"),
			Sex:          h.get(rec, "Sekse"),
			Coordinates:  h.get(rec, "Coördinaten"),
			Remark:       h.get(rec, "Opmerking"),
		}
		obs.Lat = parseFloatPtr(h.get(rec, "Breedtegraad"))
		obs.Lon = parseFloatPtr(h.get(rec, "Lengtegraad"))
		// Older exports carry only the combined coordinate string.
		if obs.Lat == nil || obs.Lon == nil {
			if lat, lon, ok := domain.ParseCoordinates(obs.Coordinates); ok {
				obs.Lat = &lat
				obs.Lon = &lon
			}
		}
		observations = append(observations, obs)
	}
	return observations, nil
}

// ReadFieldVisits loads the field-visit export.
func ReadFieldVisits(path string) ([]domain.FieldVisit, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open fieldvisits csv: %w", err)
	}
	defer f.Close()

	h, _, records, err := readAll(f)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}

	visits := make([]domain.FieldVisit, 0, len(records))
	for _, rec := range records {
		visits = append(visits, domain.FieldVisit{
			ID:          h.get(rec, "ID", "Veldbezoek ID"),
			ProjectID:   h.get(rec, "project_id", "Project ID"),
			ProjectName: h.get(rec, "Project Naam", "Projectnaam"),
			Name:        h.get(rec, "Naam"),
			StartRaw:    h.get(rec, "Startdatum"),
			EndRaw:      h.get(rec, "Einddatum"),
			HoursRaw:    h.get(rec, "Duur (uren)"),
			Coordinates: h.get(rec, "Coördinaten"),
		})
	}
	return visits, nil
}

// ReadProjects loads the projects export.
func ReadProjects(path string) ([]domain.Project, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open projects csv: %w", err)
	}
	defer f.Close()

	h, _, records, err := readAll(f)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}

	projects := make([]domain.Project, 0, len(records))
	for _, rec := range records {
		projects = append(projects, domain.Project{
			ID:   h.get(rec, "ID", "project_id"),
			Name: h.get(rec, "Naam", "Project Naam"),
			City: h.get(rec, "Stad"),
		})
	}
	return projects, nil
}

// Table is a generically parsed semicolon CSV, used by the GIS stage which
// works on whatever columns the cleaned export happens to carry.
type Table struct {
	Columns []string
	Rows    []map[string]string
}

// Column returns the first existing column name among candidates, or "".
func (t *Table) Column(candidates ...string) string {
	for _, c := range candidates {
		for _, have := range t.Columns {
			if have == c {
				return c
			}
		}
	}
	return ""
}

// ReadTable loads any semicolon CSV into column-keyed rows.
func ReadTable(path string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open csv: %w", err)
	}
	defer f.Close()

	_, columns, records, err := readAll(f)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}

	rows := make([]map[string]string, 0, len(records))
	for _, rec := range records {
		row := make(map[string]string, len(columns))
		for i, name := range columns {
			if i < len(rec) {
				row[name] = strings.TrimSpace(rec[i])
			}
		}
		rows = append(rows, row)
	}
	return &Table{Columns: columns, Rows: rows}, nil
}

func parseFloatPtr(s string) *float64 {
	if s == "" {
		return nil
	}
	v, err := strconv.ParseFloat(strings.ReplaceAll(s, ",", "."), 64)
	if err != nil {
		return nil
	}
	return &v
}
