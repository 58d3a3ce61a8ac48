package domain

import (
	"strings"
	"time"
)

// Anchors are the sunrise/sunset instants, in civil local time, that a
// correction window is measured from. A nil anchor disables the half of a
// rule that depends on it; the other half still applies.
type Anchors struct {
	Sunrise *time.Time
	Sunset  *time.Time
}

// Suggestion is the corrected start/end pair plus the derived duration.
// DurationHours is NaN unless both times are present.
type Suggestion struct {
	Start         *time.Time
	End           *time.Time
	DurationHours float64
}

// A suggestRule pairs a protocol matcher with its corrective clamp.
// Rules live in a registry rather than a branch ladder so a new protocol
// code is a data change, not a code change.
type suggestRule struct {
	name    string
	matches func(code string, part DayPart) bool
	correct func(start, end *time.Time, a Anchors) (*time.Time, *time.Time)
}

// suggestRules is applied in order; every matching rule runs, so an
// ambiguous code that matches twice still receives all its corrections.
var suggestRules = []suggestRule{
	{name: "vm01-evening", matches: exactCode("VM01", "avond"), correct: correctVM01Evening},
	{name: "vm01-morning", matches: exactCode("VM01", "ochtend"), correct: correctVM01Morning},
	{name: "vm02-evening", matches: exactCode("VM02", "avond"), correct: correctVM02Evening},
	{name: "gz-sunset", matches: codeContains("GZ"), correct: anchorWindow(sunsetAnchor, -150, -90, 30, 90)},
	{name: "zr-sunrise", matches: codeContains("ZR"), correct: anchorWindow(sunriseAnchor, -150, -90, 30, 90)},
}

// SuggestTimes applies the protocol-specific correction rules to the
// reported start and end. Pure function of its inputs; unmatched codes pass
// the reported values through untouched. Corrected output is a fixed point:
// applying the rules again changes nothing.
func SuggestTimes(start, end *time.Time, a Anchors, code string, part DayPart) Suggestion {
	for _, r := range suggestRules {
		if r.matches(code, part) {
			start, end = r.correct(start, end, a)
		}
	}
	return Suggestion{Start: start, End: end, DurationHours: durationHours(start, end)}
}

func exactCode(code, kind string) func(string, DayPart) bool {
	return func(c string, p DayPart) bool {
		return strings.EqualFold(c, code) && p.Kind == kind
	}
}

func codeContains(sub string) func(string, DayPart) bool {
	return func(c string, _ DayPart) bool {
		return strings.Contains(strings.ToUpper(c), sub)
	}
}

// correctVM01Evening snaps the start into [sunset−1h, sunset] and the end
// into [sunset+3h, sunset+4h]; out-of-window values land on sunset and
// sunset+3h respectively. Unlike the other rules, missing reported times
// count as out-of-window here: an empty VM01 evening row still gets the
// protocol's canonical times when the anchor is known.
func correctVM01Evening(start, end *time.Time, a Anchors) (*time.Time, *time.Time) {
	if a.Sunset != nil {
		if start == nil || start.After(*a.Sunset) || start.Before(a.Sunset.Add(-time.Hour)) {
			start = copyTime(*a.Sunset)
		}
		lo := a.Sunset.Add(3 * time.Hour)
		hi := a.Sunset.Add(4 * time.Hour)
		if end == nil || end.Before(lo) || end.After(hi) {
			end = copyTime(lo)
		}
	}
	return start, end
}

// correctVM01Morning mirrors the evening rule around sunrise. The end clamp
// runs before the start clamp; the ordering is part of the contract.
func correctVM01Morning(start, end *time.Time, a Anchors) (*time.Time, *time.Time) {
	if end != nil && a.Sunrise != nil {
		lo := *a.Sunrise
		hi := a.Sunrise.Add(4 * time.Hour)
		if end.Before(lo) || end.After(hi) {
			end = copyTime(lo)
		}
	}
	if start != nil && a.Sunrise != nil {
		lo := a.Sunrise.Add(-4 * time.Hour)
		hi := a.Sunrise.Add(-3 * time.Hour)
		if start.Before(lo) || start.After(hi) {
			start = copyTime(a.Sunrise.Add(-3 * time.Hour))
		}
	}
	return start, end
}

// correctVM02Evening works on wall-clock components rather than anchors:
// the start must read 22:59–23:59, the end 02:00–03:00. When the end does
// not come after the start it is rolled over midnight exactly once; the
// subsequent clock clamp replaces hour/minute/second but never the date.
func correctVM02Evening(start, end *time.Time, _ Anchors) (*time.Time, *time.Time) {
	if start != nil {
		m := clockMinutes(*start)
		if m < 22*60+59 || m > 23*60+59 {
			start = copyTime(withClock(*start, 23, 59, 0))
		}
	}
	if start != nil && end != nil && !end.After(*start) {
		end = copyTime(end.AddDate(0, 0, 1))
	}
	if end != nil {
		switch m := clockMinutes(*end); {
		case m < 2*60:
			end = copyTime(withClock(*end, 2, 0, 0))
		case m > 3*60:
			end = copyTime(withClock(*end, 3, 0, 0))
		}
	}
	return start, end
}

type anchorPick func(a Anchors) *time.Time

func sunsetAnchor(a Anchors) *time.Time  { return a.Sunset }
func sunriseAnchor(a Anchors) *time.Time { return a.Sunrise }

// anchorWindow builds the GZ/ZR-style corrector: start must lie within
// [anchor+startLo, anchor+startHi] minutes (snap to the upper bound), end
// within [anchor+endLo, anchor+endHi] minutes (snap to the lower bound).
func anchorWindow(pick anchorPick, startLo, startHi, endLo, endHi int) func(*time.Time, *time.Time, Anchors) (*time.Time, *time.Time) {
	return func(start, end *time.Time, a Anchors) (*time.Time, *time.Time) {
		anchor := pick(a)
		if anchor == nil {
			return start, end
		}
		if start != nil {
			lo := anchor.Add(time.Duration(startLo) * time.Minute)
			hi := anchor.Add(time.Duration(startHi) * time.Minute)
			if start.After(hi) || start.Before(lo) {
				start = copyTime(hi)
			}
		}
		if end != nil {
			lo := anchor.Add(time.Duration(endLo) * time.Minute)
			hi := anchor.Add(time.Duration(endHi) * time.Minute)
			if end.Before(lo) || end.After(hi) {
				end = copyTime(lo)
			}
		}
		return start, end
	}
}

// withClock replaces the clock-time components of t, keeping date and zone.
func withClock(t time.Time, hour, minute, sec int) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), hour, minute, sec, 0, t.Location())
}

func clockMinutes(t time.Time) int {
	return t.Hour()*60 + t.Minute()
}

func copyTime(t time.Time) *time.Time { return &t }
