package domain

import (
	"math"
	"strconv"
	"strings"
	"time"
)

// Project is one row of the projects export.
type Project struct {
	ID   string
	Name string
	City string
}

// SolarEvent holds the astronomical anchors for one visit location and date.
// Nil sunrise and sunset mean polar day/night or a failed computation; the
// two cases are deliberately not distinguished downstream (the review
// flagger picks both up).
type SolarEvent struct {
	Date      time.Time
	Lat       float64
	Lon       float64
	Elevation float64
	Sunrise   *time.Time
	Sunset    *time.Time
}

// FieldVisit is one row of the field-visit export, enriched in a single
// pass by EnrichFieldVisit and never mutated afterwards.
type FieldVisit struct {
	ID          string
	ProjectID   string
	ProjectName string
	Name        string // raw "Naam" as exported
	StartRaw    string // raw "Startdatum"
	EndRaw      string // raw "Einddatum"
	HoursRaw    string // raw "Duur (uren)"
	Coordinates string // raw "lat, lon" string
	City        string

	// Enrichment fields. Every derived field is recomputable from the raw
	// fields above plus the solar anchors; none depends on another row.
	Sun            SolarEvent
	Protocol       string // normalized code, "" when unrecognized
	DayPart        DayPart
	CleanName      string // "VM01 avond 2", "" when no code was found
	Removed        string // "keep" or "remove"
	Start          *time.Time
	End            *time.Time
	SuggestedStart *time.Time
	SuggestedEnd   *time.Time
	SuggestedHours float64 // NaN unless both suggested times are present
	NeedsReview    bool
	ProcessedAt    time.Time
}

// EnrichFieldVisit parses the reported times, extracts the protocol code and
// day part from the visit name, applies the time-suggestion rules against the
// visit's solar anchors and flags the row for manual review where needed.
// Pure per row apart from the ProcessedAt stamp.
func EnrichFieldVisit(v FieldVisit, lz Localizer) FieldVisit {
	code, part := ExtractProtocol(v.Name)
	v.Protocol = code
	v.DayPart = part
	v.CleanName = CleanVisitName(code, part)

	v.Start = lz.ParseLocal(v.StartRaw)
	v.End = lz.ParseLocal(v.EndRaw)

	s := SuggestTimes(v.Start, v.End, Anchors{Sunrise: v.Sun.Sunrise, Sunset: v.Sun.Sunset}, code, part)
	v.SuggestedStart = s.Start
	v.SuggestedEnd = s.End
	v.SuggestedHours = s.DurationHours

	v.NeedsReview = NeedsReview(code, v.Sun.Sunrise, v.Sun.Sunset, v.CleanName)
	v.ProcessedAt = clock.Now()
	return v
}

// CleanVisitName builds the normalized display name from the extracted code
// and day part: "VM01 avond 2". Returns "" when no code was recognized; a
// blank clean name is one of the manual-review triggers.
func CleanVisitName(code string, part DayPart) string {
	if code == "" {
		return ""
	}
	if part.IsZero() {
		return code
	}
	return code + " " + part.String()
}

// RemovalMatcher marks visits whose raw name matches one of the configured
// removal patterns, e.g. test rounds. Rows are marked, never dropped.
type RemovalMatcher struct {
	patterns []string
}

// NewRemovalMatcher builds a matcher for the given substrings (case-insensitive).
func NewRemovalMatcher(patterns []string) RemovalMatcher {
	lowered := make([]string, 0, len(patterns))
	for _, p := range patterns {
		if p = strings.ToLower(strings.TrimSpace(p)); p != "" {
			lowered = append(lowered, p)
		}
	}
	return RemovalMatcher{patterns: lowered}
}

// Mark returns "remove" when the name matches a pattern, "keep" otherwise.
func (m RemovalMatcher) Mark(name string) string {
	lower := strings.ToLower(name)
	for _, p := range m.patterns {
		if strings.Contains(lower, p) {
			return "remove"
		}
	}
	return "keep"
}

// ParseCoordinates splits a "lat, lon" string into numeric parts.
// Trailing components beyond the second are ignored.
func ParseCoordinates(s string) (lat, lon float64, ok bool) {
	parts := strings.SplitN(s, ",", 3)
	if len(parts) < 2 {
		return 0, 0, false
	}
	lat, errLat := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	lon, errLon := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if errLat != nil || errLon != nil {
		return 0, 0, false
	}
	return lat, lon, true
}

// durationHours computes end minus start in hours, NaN when either is missing.
func durationHours(start, end *time.Time) float64 {
	if start == nil || end == nil {
		return math.NaN()
	}
	return end.Sub(*start).Hours()
}
