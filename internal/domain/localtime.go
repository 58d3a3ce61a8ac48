package domain

import (
	"strings"
	"time"

	"github.com/araddon/dateparse"
)

// Localizer converts heterogeneous timestamp representations into instants
// in a fixed civil timezone. The zone is threaded through explicitly so the
// enrichment stays parallel-safe and testable with alternate zones.
//
// ParseLocal and ToLocal differ only in how they read a zoneless value:
// ParseLocal treats it as a wall clock already in the target zone (hand-
// entered visit times), ToLocal treats it as UTC (machine-recorded
// timestamps such as solar-event output). The asymmetry is intentional.
type Localizer struct {
	loc *time.Location
}

// NewLocalizer returns a Localizer for the given zone.
func NewLocalizer(loc *time.Location) Localizer {
	return Localizer{loc: loc}
}

// Location returns the target civil timezone.
func (l Localizer) Location() *time.Location { return l.loc }

// ParseLocal parses a user-entered timestamp string. A value without zone
// information is interpreted as local wall time; a zoned value is converted.
// Unparseable input yields nil, never an error: timestamp corruption must
// not abort batch processing.
func (l Localizer) ParseLocal(s string) *time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	t, err := dateparse.ParseIn(s, l.loc)
	if err != nil {
		return nil
	}
	local := t.In(l.loc)
	return &local
}

// ToLocal parses a machine-recorded timestamp string. A value without zone
// information is interpreted as UTC, then converted to the target zone.
// Unparseable input yields nil.
func (l Localizer) ToLocal(s string) *time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	t, err := dateparse.ParseIn(s, time.UTC)
	if err != nil {
		return nil
	}
	local := t.In(l.loc)
	return &local
}

// InLocal converts an already-structured timestamp to the target zone.
// The zero time maps to nil to keep "missing" representable.
func (l Localizer) InLocal(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	local := t.In(l.loc)
	return &local
}
