package domain

import (
	"regexp"
	"strconv"
	"strings"
)

var (
	// protocolRe matches a survey protocol code anywhere in a visit name,
	// e.g. "Gierzwaluw VM-1 avond" → "VM-1". [vzwh]m also covers the legacy
	// WM typo and the ZM/HM variants seen in older exports.
	protocolRe = regexp.MustCompile(`(?i)[vzwh]m[-\s]?\d+|gz|zr|hm|uitvliegtelling`)

	// dayPartRe matches "avond" or "ochtend" with an optional session
	// ordinal, Arabic or Roman: "Ochtend II" → kind ochtend, ordinal 2.
	dayPartRe = regexp.MustCompile(`(?i)\b(avond|ochtend)\s*([0-9]+|i{1,3})?`)

	separatorRe = regexp.MustCompile(`[-\s]`)
	vmPadRe     = regexp.MustCompile(`^VM(\d)$`)
)

// DayPart labels a morning or evening session with an optional ordinal
// disambiguating repeated same-day sessions. Ordinal 0 means "none":
// an unrecognized ordinal drops to 0 while the kind is retained.
type DayPart struct {
	Kind    string // "avond", "ochtend" or ""
	Ordinal int
}

// IsZero reports whether no day part was recognized.
func (p DayPart) IsZero() bool { return p.Kind == "" }

// String renders "avond 2", or just the kind when there is no ordinal.
func (p DayPart) String() string {
	if p.Kind == "" {
		return ""
	}
	if p.Ordinal == 0 {
		return p.Kind
	}
	return p.Kind + " " + strconv.Itoa(p.Ordinal)
}

// ExtractProtocol parses a free-text visit name into a normalized protocol
// code and day part. Code and day part are independent pattern searches on
// the same string; either can be absent. An empty or missing name yields
// ("", DayPart{}).
func ExtractProtocol(name string) (string, DayPart) {
	if name == "" {
		return "", DayPart{}
	}

	code := ""
	if m := protocolRe.FindString(name); m != "" {
		code = strings.ToUpper(separatorRe.ReplaceAllString(m, ""))
		// WM is a known typo for VM; rewrite before zero-padding so
		// "WM1" normalizes all the way to "VM01".
		if strings.HasPrefix(code, "WM") {
			code = "VM" + code[2:]
		}
		if sub := vmPadRe.FindStringSubmatch(code); sub != nil {
			code = "VM0" + sub[1]
		}
	}

	part := DayPart{}
	if sub := dayPartRe.FindStringSubmatch(name); sub != nil {
		part.Kind = strings.ToLower(sub[1])
		part.Ordinal = normalizeOrdinal(sub[2])
	}

	return code, part
}

// normalizeOrdinal maps Roman numerals I/II/III to 1/2/3 and passes plain
// integers through. Anything else yields 0 (no ordinal).
func normalizeOrdinal(raw string) int {
	switch strings.ToLower(raw) {
	case "":
		return 0
	case "i":
		return 1
	case "ii":
		return 2
	case "iii":
		return 3
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0
	}
	return n
}
