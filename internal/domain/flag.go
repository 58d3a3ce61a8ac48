package domain

import (
	"strings"
	"time"
)

// NeedsReview reports whether a visit requires manual data checking:
// a VM03-prefixed protocol (no fixed timing convention exists, so suggested
// times cannot be trusted), a missing sunrise or sunset anchor, or a blank
// cleaned name. A visit whose name yields no protocol code has a blank
// cleaned name and is therefore always flagged.
func NeedsReview(code string, sunrise, sunset *time.Time, cleanName string) bool {
	if strings.HasPrefix(strings.ToUpper(code), "VM03") {
		return true
	}
	if sunrise == nil || sunset == nil {
		return true
	}
	return strings.TrimSpace(cleanName) == ""
}

// ReviewLabel renders the flag the way the summary export expects it.
func ReviewLabel(needsReview bool) string {
	if needsReview {
		return "yes"
	}
	return "no"
}
