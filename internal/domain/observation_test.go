package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassifyGroup(t *testing.T) {
	cases := []struct {
		species string
		want    string
	}{
		{"Gewone dwergvleermuis", GroupBats},
		{"Rosse vleermuis", GroupBats},
		{"Grootoorvlieger", GroupBats},
		{"muis", GroupOther},
		{"Vos", GroupOther},
		{"Rugstreeppad", GroupOther},
		{"Kleine watersalamander", GroupOther},
		{"", GroupUnknown},
		{"Huismus", GroupBirds},
		{"Gierzwaluw", GroupBirds},
		{"Spreeuw", GroupBirds},
	}

	for _, tc := range cases {
		t.Run(tc.species, func(t *testing.T) {
			assert.Equal(t, tc.want, ClassifyGroup(tc.species))
		})
	}
}

func TestClassifyGroup_WordBoundary(t *testing.T) {
	// "muis" only counts as a standalone word, so "dwergvleermuis" stays a
	// bat and compounds like "bosmuis" fall through to the default group.
	assert.Equal(t, GroupBats, ClassifyGroup("dwergvleermuis"))
	assert.Equal(t, GroupBirds, ClassifyGroup("bosmuis"))
}

func TestAssignFunction(t *testing.T) {
	count := func(v float64) *float64 { return &v }

	cases := []struct {
		name      string
		group     string
		behaviour string
		count     *float64
		want      string
	}{
		{"small bat roost", GroupBats, "ter plaatse", count(3), "zomerverblijfplaats"},
		{"boundary nine stays summer", GroupBats, "ter plaatse", count(9), "zomerverblijfplaats"},
		{"large bat roost", GroupBats, "uitvliegend (algemeen)", count(25), "kraamverblijfplaats"},
		{"bat courtship", GroupBats, "baltsend", count(2), "paarverblijfplaats"},
		{"courtship wins over roost count", GroupBats, "parend / copula", count(15), "paarverblijfplaats"},
		{"bird nest", GroupBirds, "nestbouw", count(1), "nestlocatie"},
		{"bird roosting", GroupBirds, "slaapplaats", count(4), "nestlocatie"},
		{"flight path overrides bird nest", GroupBirds, "overvliegend", count(1), "vliegroute"},
		{"flight path for bats", GroupBats, "passerend (niet nader omschreven)", count(5), "vliegroute"},
		{"foraging", GroupBats, "foeragerend", count(2), "foerageergebied"},
		{"bird behaviour on a bat", GroupBats, "roepend", count(1), ""},
		{"unknown behaviour", GroupBirds, "onbekend gedrag", count(1), ""},
		{"missing count", GroupBats, "ter plaatse", nil, ""},
		{"other group never gets a roost", GroupOther, "ter plaatse", count(3), ""},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, AssignFunction(tc.group, tc.behaviour, tc.count))
		})
	}
}

func TestAssignFunction_CaseSensitive(t *testing.T) {
	one := 1.0
	// The export capitalizes "Invliegend (algemeen)" but not its sibling;
	// the rule set matches literally.
	assert.Equal(t, "zomerverblijfplaats", AssignFunction(GroupBats, "Invliegend (algemeen)", &one))
	assert.Equal(t, "", AssignFunction(GroupBats, "invliegend (algemeen)", &one))
}

func TestInResidenceSet(t *testing.T) {
	assert.True(t, InResidenceSet("baltsend"))
	assert.True(t, InResidenceSet("slaapplaats"))
	assert.True(t, InResidenceSet("Invliegend (algemeen)"))
	assert.False(t, InResidenceSet("foeragerend"))
	assert.False(t, InResidenceSet("overvliegend"))
	assert.False(t, InResidenceSet(""))
}

func TestParseAddress(t *testing.T) {
	cases := []struct {
		name       string
		addr       string
		wantStreet string
		wantPlace  string
	}{
		{
			"full nominatim address",
			"12, Dorpsstraat, Centrum, Utrecht, Utrecht, Nederland, 3511AB, Nederland",
			"Dorpsstraat 12",
			"Utrecht",
		},
		{
			"five components",
			"8, Kerklaan, Haarlem, Noord-Holland, Nederland",
			"Kerklaan 8",
			"Haarlem",
		},
		{
			"short address uses last component as place",
			"4, Molenweg, Delft",
			"Molenweg 4",
			"Delft",
		},
		{"two components", "7, Plein", "Plein 7", "Plein"},
		{"single component", "Onbekend", "", "Onbekend"},
		{"empty string", "", "", ""},
		{"whitespace only", "  ,  , ", "", ""},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			street, place := ParseAddress(tc.addr)
			assert.Equal(t, tc.wantStreet, street)
			assert.Equal(t, tc.wantPlace, place)
		})
	}
}
