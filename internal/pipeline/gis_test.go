package pipeline

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const cleanedHeader = "Verblijfnummer;Groep;Soort;Datum;Tijd;Aantal;Gedrag;Verblijfplaats;Sekse;" +
	"Adres;Plaats;Locatie_adres;Functie;Projectnaam;Breedtegraad;Lengtegraad\n"

func TestGISPipeline_SingleFile(t *testing.T) {
	dir := t.TempDir()
	csvPath := writeCSV(t, dir, "waarnemingen_export_kerkstraat_12.csv", cleanedHeader+
		"1;Vleermuizen;Gewone dwergvleermuis;2025-06-20;22:15:00;12;Invliegend (algemeen);gebouw;;Dorpsstraat 12;Wijk;;kraamverblijfplaats;Kerkstraat 12;52.37;4.89\n"+
		";Vogels;Huismus;2025-06-21;07:30:00;1;foeragerend;;;;;;;Kerkstraat 12;52.38;4.90\n")

	outRoot := filepath.Join(dir, "gis")
	written, err := NewGISPipeline(quietLogger()).Run(csvPath, outRoot)
	require.NoError(t, err)
	require.Len(t, written, 1)

	projectDir := filepath.Join(outRoot, "waarn_kerkstraat_12")
	assert.Equal(t, projectDir, written[0])
	for _, name := range []string{
		"waarn_kerkstraat_12.gpkg",
		"waarn_kerkstraat_12.geojson",
		"map_kerkstraat_12.html",
	} {
		info, statErr := os.Stat(filepath.Join(projectDir, name))
		require.NoError(t, statErr, name)
		assert.Greater(t, info.Size(), int64(0), name)
	}
}

func TestGISPipeline_Directory(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "cleaned")
	require.NoError(t, os.MkdirAll(in, 0o755))

	writeCSV(t, in, "waarnemingen_export_kerkstraat_12.csv", cleanedHeader+
		"1;Vleermuizen;Laatvlieger;2025-06-20;23:00:00;1;ter plaatse;boom;;;;;zomerverblijfplaats;Kerkstraat 12;52.37;4.89\n")
	writeCSV(t, in, "waarnemingen_export_molenweg_4.csv", cleanedHeader+
		";Vogels;Merel;2025-06-21;07:45:00;2;overvliegend;;;;;;vliegroute;Molenweg 4;51.92;4.48\n")
	// Non-CSV files under the input directory are ignored.
	require.NoError(t, os.WriteFile(filepath.Join(in, "notes.txt"), []byte("x"), 0o644))

	outRoot := filepath.Join(dir, "gis")
	written, err := NewGISPipeline(quietLogger()).Run(in, outRoot)
	require.NoError(t, err)
	require.Len(t, written, 2)
	assert.Equal(t, filepath.Join(outRoot, "waarn_kerkstraat_12"), written[0])
	assert.Equal(t, filepath.Join(outRoot, "waarn_molenweg_4"), written[1])
}

func TestGISPipeline_NoMappableRows(t *testing.T) {
	dir := t.TempDir()
	csvPath := writeCSV(t, dir, "leeg.csv", "Soort;Datum\nHuismus;2025-06-21\n")

	written, err := NewGISPipeline(quietLogger()).Run(csvPath, filepath.Join(dir, "gis"))
	require.NoError(t, err)
	assert.Empty(t, written)
}

func TestGISPipeline_OverwritesExistingGeoPackage(t *testing.T) {
	dir := t.TempDir()
	csvPath := writeCSV(t, dir, "waarnemingen.csv", cleanedHeader+
		"1;Vleermuizen;Laatvlieger;2025-06-20;23:00:00;1;ter plaatse;;;;;;zomerverblijfplaats;Kerkstraat 12;52.37;4.89\n")

	outRoot := filepath.Join(dir, "gis")
	p := NewGISPipeline(quietLogger())
	_, err := p.Run(csvPath, outRoot)
	require.NoError(t, err)

	// A second run replaces the package instead of appending to it.
	_, err = p.Run(csvPath, outRoot)
	require.NoError(t, err)

	gpkg := filepath.Join(outRoot, "waarn_kerkstraat_12", "waarn_kerkstraat_12.gpkg")
	info, err := os.Stat(gpkg)
	require.NoError(t, err)
	assert.Greater(t, info.Size(), int64(0))
}

func TestGISPipeline_MissingInput(t *testing.T) {
	_, err := NewGISPipeline(quietLogger()).Run(filepath.Join(t.TempDir(), "nope.csv"), t.TempDir())
	require.Error(t, err)
}
