package domain

import (
	"regexp"
	"strings"
	"time"
)

// Species groups used for downstream classification.
const (
	GroupBats    = "Vleermuizen"
	GroupBirds   = "Vogels"
	GroupOther   = "Overig"
	GroupUnknown = "onbekend"
)

// Observation is one row of the observations export plus its enrichment.
type Observation struct {
	ID           string
	FieldVisitID string
	ProjectID    string
	ProjectName  string
	Species      string // raw "Soort"
	SeenAtRaw    string // raw "Gezien op"
	CountRaw     string // raw "Aantal"
	Behaviour    string // raw "Gedrag"
	Residence    string // raw "Verblijfplaats"
	Sex          string // raw "Sekse"
	Coordinates  string // raw "Coördinaten"
	Lat          *float64
	Lon          *float64
	Remark       string // raw "Opmerking", doubles as location hint

	// Enrichment fields.
	SeenAt      *time.Time
	Count       float64 // missing counts default to 1
	Group       string
	Function    string
	Address     *string // full geocoded address
	Street      *string // "Adres": street plus house number
	Place       *string // "Plaats": city
	RoostNumber *int    // "Verblijfnummer": 1-based rank of the distinct address
}

var (
	batSpeciesRe   = regexp.MustCompile(`vleermuis|vlieger`)
	otherSpeciesRe = regexp.MustCompile(`\bmuis\b|vos|pad|salamander`)
)

// ClassifyGroup assigns the high-level species group. Bats first, then the
// small-mammal/amphibian bucket, unknown for blank species, birds otherwise.
func ClassifyGroup(species string) string {
	s := strings.ToLower(species)
	switch {
	case batSpeciesRe.MatchString(s):
		return GroupBats
	case otherSpeciesRe.MatchString(s):
		return GroupOther
	case s == "":
		return GroupUnknown
	default:
		return GroupBirds
	}
}

// Behaviour vocabularies as they appear in the export. Membership is
// case-sensitive: the source data mixes capitalization and the historical
// rule set matched it literally.
var (
	// batRoostBehaviours marks VM01-style residence indications for bats.
	batRoostBehaviours = behaviourSet(
		"Invliegend (algemeen)", "uitvliegend (algemeen)",
		"territoriumindicerend", "ter plaatse", "bezoek aan nestplaats",
	)

	// batCourtshipBehaviours marks VM02/VM03-style courtship roosts.
	batCourtshipBehaviours = behaviourSet(
		"baltsend", "zwermend (algemeen)", "baltsend/zingend", "parend / copula",
	)

	flightPathBehaviours = behaviourSet(
		"overvliegend", "passerend (niet nader omschreven)",
		"overvliegend naar noord", "overvliegend naar zuid",
		"overvliegend naar oost", "overvliegend naar west",
	)

	birdNestBehaviours = behaviourSet(
		"Invliegend (algemeen)", "uitvliegend (algemeen)",
		"territoriumindicerend", "ter plaatse",
		"bezoek aan nestplaats", "parend / copula",
		"baltsend/zingend", "baltsend", "slaapplaats",
		"nest-indicerend gedrag", "roepend", "nestbouw", "rustend",
	)

	foragingBehaviours = behaviourSet("foeragerend")

	// ResidenceBehaviours selects the observations worth reverse geocoding:
	// anything indicating a roost, nest or resting place.
	ResidenceBehaviours = behaviourSet(
		"Invliegend (algemeen)", "baltsend", "zwermend (algemeen)",
		"uitvliegend (algemeen)", "nest-indicerend gedrag",
		"territoriumindicerend", "ter plaatse", "slaapplaats",
		"bezoek aan nestplaats", "baltsend/zingend", "rustend",
		"nestbouw", "parend / copula",
	)
)

func behaviourSet(values ...string) map[string]struct{} {
	set := make(map[string]struct{}, len(values))
	for _, v := range values {
		set[v] = struct{}{}
	}
	return set
}

// InResidenceSet reports whether the behaviour indicates a residence.
func InResidenceSet(behaviour string) bool {
	_, ok := ResidenceBehaviours[behaviour]
	return ok
}

// AssignFunction derives the ecological function of an observation from its
// group, behaviour and count. Later categories overwrite earlier ones, so a
// flight-path behaviour wins over a roost match; that precedence is part of
// the historical rule set. Returns "" when nothing applies, including the
// case of an unparseable count.
func AssignFunction(group, behaviour string, count *float64) string {
	if count == nil {
		return ""
	}
	fn := ""
	if group == GroupBats {
		if _, ok := batRoostBehaviours[behaviour]; ok {
			if *count < 10 {
				fn = "zomerverblijfplaats"
			}
			if *count > 9 {
				fn = "kraamverblijfplaats"
			}
		}
		if _, ok := batCourtshipBehaviours[behaviour]; ok {
			fn = "paarverblijfplaats"
		}
	}
	if group == GroupBirds {
		if _, ok := birdNestBehaviours[behaviour]; ok {
			fn = "nestlocatie"
		}
	}
	if _, ok := flightPathBehaviours[behaviour]; ok {
		fn = "vliegroute"
	}
	if _, ok := foragingBehaviours[behaviour]; ok {
		fn = "foerageergebied"
	}
	return fn
}

// ParseAddress splits a geocoded address into (street with house number,
// city). Geocoder output leads with the house number: "12, Dorpsstraat,
// Wijk, Gemeente, Provincie, 1234AB, Nederland". The city sits five
// components from the end when the address is long enough, otherwise the
// last component stands in. Either part may come back empty.
func ParseAddress(addr string) (street, place string) {
	parts := make([]string, 0, 8)
	for _, p := range strings.Split(addr, ",") {
		if p = strings.TrimSpace(p); p != "" {
			parts = append(parts, p)
		}
	}
	if len(parts) == 0 {
		return "", ""
	}

	number := parts[0]
	if len(parts) >= 2 {
		street = parts[1] + " " + number
	}
	if len(parts) >= 5 {
		place = parts[len(parts)-5]
	} else {
		place = parts[len(parts)-1]
	}
	return street, place
}
