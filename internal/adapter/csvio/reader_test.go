package csvio

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFixture(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestReadObservations(t *testing.T) {
	path := writeFixture(t, "waarnemingen.csv",
		"ID;Soort;Gezien op;Aantal;Gedrag;Verblijfplaats;Sekse;Opmerking;Coördinaten;Breedtegraad;Lengtegraad;Veldbezoek ID...23;Project ID...24\n"+
			"obs-1;Gewone dwergvleermuis;2025-06-20 22:15;3;foeragerend;;vrouw;achter de dakgoot;52.37, 4.89;52.37;4.89;fv-1;pr-1\n"+
			"obs-2;Huismus;2025-06-21 06:00;;roepend;nest;;;51.92, 4.48;;;fv-2;pr-1\n")

	observations, err := ReadObservations(path)
	require.NoError(t, err)
	require.Len(t, observations, 2)

	first := observations[0]
	assert.Equal(t, "obs-1", first.ID)
	assert.Equal(t, "fv-1", first.FieldVisitID)
	assert.Equal(t, "pr-1", first.ProjectID)
	assert.Equal(t, "Gewone dwergvleermuis", first.Species)
	assert.Equal(t, "3", first.CountRaw)
	assert.Equal(t, "achter de dakgoot", first.Remark)
	require.NotNil(t, first.Lat)
	assert.Equal(t, 52.37, *first.Lat)
	require.NotNil(t, first.Lon)
	assert.Equal(t, 4.89, *first.Lon)

	// Missing lat/lon columns fall back to the combined coordinate string.
	second := observations[1]
	require.NotNil(t, second.Lat)
	assert.Equal(t, 51.92, *second.Lat)
	require.NotNil(t, second.Lon)
	assert.Equal(t, 4.48, *second.Lon)
}

func TestReadObservations_LegacyIDColumns(t *testing.T) {
	path := writeFixture(t, "waarnemingen.csv",
		"Soort;Veldbezoek ID;Project ID\n"+
			"Gierzwaluw;fv-9;pr-9\n")

	observations, err := ReadObservations(path)
	require.NoError(t, err)
	require.Len(t, observations, 1)
	assert.Equal(t, "fv-9", observations[0].FieldVisitID)
	assert.Equal(t, "pr-9", observations[0].ProjectID)
	assert.Nil(t, observations[0].Lat)
}

func TestReadFieldVisits(t *testing.T) {
	path := writeFixture(t, "veldbezoeken.csv",
		"ID;project_id;Project Naam;Naam;Startdatum;Einddatum;Duur (uren)\n"+
			"fv-1;pr-1;Kerkstraat 12;VM01 Avond I;2025-06-20 21:30;2025-06-21 00:30;3.0\n"+
			"fv-2;pr-1;Kerkstraat 12;GZ ronde;;;\n")

	visits, err := ReadFieldVisits(path)
	require.NoError(t, err)
	require.Len(t, visits, 2)

	assert.Equal(t, "fv-1", visits[0].ID)
	assert.Equal(t, "pr-1", visits[0].ProjectID)
	assert.Equal(t, "Kerkstraat 12", visits[0].ProjectName)
	assert.Equal(t, "VM01 Avond I", visits[0].Name)
	assert.Equal(t, "2025-06-20 21:30", visits[0].StartRaw)
	assert.Equal(t, "3.0", visits[0].HoursRaw)
	assert.Empty(t, visits[1].StartRaw)
}

func TestReadProjects(t *testing.T) {
	path := writeFixture(t, "projecten.csv",
		"ID;Naam;Stad\n"+
			"pr-1;Kerkstraat 12;Utrecht\n")

	projects, err := ReadProjects(path)
	require.NoError(t, err)
	require.Len(t, projects, 1)
	assert.Equal(t, "pr-1", projects[0].ID)
	assert.Equal(t, "Kerkstraat 12", projects[0].Name)
	assert.Equal(t, "Utrecht", projects[0].City)
}

func TestReadTable(t *testing.T) {
	path := writeFixture(t, "cleaned.csv",
		"Soort;Breedtegraad;Lengtegraad;Projectnaam\n"+
			"Huismus;52.37;4.89;Kerkstraat 12\n"+
			"Gierzwaluw;51.92;4.48;Kerkstraat 12\n")

	table, err := ReadTable(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"Soort", "Breedtegraad", "Lengtegraad", "Projectnaam"}, table.Columns)
	require.Len(t, table.Rows, 2)
	assert.Equal(t, "Huismus", table.Rows[0]["Soort"])
	assert.Equal(t, "4.48", table.Rows[1]["Lengtegraad"])

	assert.Equal(t, "Breedtegraad", table.Column("Lat", "Breedtegraad"))
	assert.Empty(t, table.Column("niet", "aanwezig"))
}

func TestReadObservations_Errors(t *testing.T) {
	t.Run("missing file", func(t *testing.T) {
		_, err := ReadObservations(filepath.Join(t.TempDir(), "nope.csv"))
		assert.Error(t, err)
	})

	t.Run("empty file", func(t *testing.T) {
		path := writeFixture(t, "leeg.csv", "")
		_, err := ReadObservations(path)
		assert.Error(t, err)
	})
}

func TestParseFloatPtr_DecimalComma(t *testing.T) {
	v := parseFloatPtr("52,37")
	require.NotNil(t, v)
	assert.Equal(t, 52.37, *v)
	assert.Nil(t, parseFloatPtr("onzin"))
	assert.Nil(t, parseFloatPtr(""))
}
