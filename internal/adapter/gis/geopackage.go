package gis

import (
	"bytes"
	"database/sql"
	"encoding/binary"
	"fmt"
	"strings"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/encoding/wkb"
	_ "modernc.org/sqlite"
)

// GeoPackage container constants (OGC 12-128r19).
const (
	gpkgApplicationID = 0x47504B47 // "GPKG"
	gpkgUserVersion   = 10300      // 1.3.0
	rdSRSID           = 28992
)

// Abridged EPSG:28992 well-known text; enough for desktop GIS tools to
// recognize the projection without a full parameter dump.
const rdWKT = `PROJCS["Amersfoort / RD New",GEOGCS["Amersfoort",DATUM["Amersfoort",SPHEROID["Bessel 1841",6377397.155,299.1528128]],PRIMEM["Greenwich",0],UNIT["degree",0.0174532925199433]],PROJECTION["Oblique_Stereographic"],PARAMETER["latitude_of_origin",52.1561605555556],PARAMETER["central_meridian",5.38763888888889],PARAMETER["scale_factor",0.9999079],PARAMETER["false_easting",155000],PARAMETER["false_northing",463000],UNIT["metre",1],AUTHORITY["EPSG","28992"]]`

// WriteGeoPackage writes a layer as a single-table GeoPackage with point
// geometries projected to RD New. The attribute columns are carried as TEXT.
func WriteGeoPackage(path, tableName string, layer Layer) error {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return fmt.Errorf("open geopackage: %w", err)
	}
	defer db.Close()

	if err := initGeoPackage(db); err != nil {
		return err
	}
	if err := writeFeatureTable(db, tableName, layer); err != nil {
		return err
	}
	return nil
}

func initGeoPackage(db *sql.DB) error {
	stmts := []string{
		fmt.Sprintf("PRAGMA application_id = %d", gpkgApplicationID),
		fmt.Sprintf("PRAGMA user_version = %d", gpkgUserVersion),
		`CREATE TABLE IF NOT EXISTS gpkg_spatial_ref_sys (
			srs_name TEXT NOT NULL,
			srs_id INTEGER NOT NULL PRIMARY KEY,
			organization TEXT NOT NULL,
			organization_coordsys_id INTEGER NOT NULL,
			definition TEXT NOT NULL,
			description TEXT
		)`,
		`CREATE TABLE IF NOT EXISTS gpkg_contents (
			table_name TEXT NOT NULL PRIMARY KEY,
			data_type TEXT NOT NULL,
			identifier TEXT UNIQUE,
			description TEXT DEFAULT '',
			last_change DATETIME NOT NULL DEFAULT (strftime('%Y-%m-%dT%H:%M:%fZ','now')),
			min_x DOUBLE, min_y DOUBLE, max_x DOUBLE, max_y DOUBLE,
			srs_id INTEGER,
			CONSTRAINT fk_gc_r_srs_id FOREIGN KEY (srs_id) REFERENCES gpkg_spatial_ref_sys(srs_id)
		)`,
		`CREATE TABLE IF NOT EXISTS gpkg_geometry_columns (
			table_name TEXT NOT NULL,
			column_name TEXT NOT NULL,
			geometry_type_name TEXT NOT NULL,
			srs_id INTEGER NOT NULL,
			z TINYINT NOT NULL,
			m TINYINT NOT NULL,
			CONSTRAINT pk_geom_cols PRIMARY KEY (table_name, column_name)
		)`,
	}
	for _, stmt := range stmts {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("init geopackage schema: %w", err)
		}
	}

	srs := []struct {
		name       string
		id         int
		org        string
		orgID      int
		definition string
	}{
		{"Undefined Cartesian", -1, "NONE", -1, "undefined"},
		{"Undefined Geographic", 0, "NONE", 0, "undefined"},
		{"WGS 84", 4326, "EPSG", 4326, `GEOGCS["WGS 84",DATUM["WGS_1984",SPHEROID["WGS 84",6378137,298.257223563]],PRIMEM["Greenwich",0],UNIT["degree",0.0174532925199433],AUTHORITY["EPSG","4326"]]`},
		{"Amersfoort / RD New", rdSRSID, "EPSG", rdSRSID, rdWKT},
	}
	for _, s := range srs {
		_, err := db.Exec(
			`INSERT OR IGNORE INTO gpkg_spatial_ref_sys
			 (srs_name, srs_id, organization, organization_coordsys_id, definition)
			 VALUES (?, ?, ?, ?, ?)`,
			s.name, s.id, s.org, s.orgID, s.definition,
		)
		if err != nil {
			return fmt.Errorf("register srs %d: %w", s.id, err)
		}
	}
	return nil
}

func writeFeatureTable(db *sql.DB, tableName string, layer Layer) error {
	cols := make([]string, 0, len(layer.Columns)+2)
	cols = append(cols, `"fid" INTEGER PRIMARY KEY AUTOINCREMENT`, `"geom" POINT`)
	for _, c := range layer.Columns {
		cols = append(cols, quoteIdent(c)+" TEXT")
	}
	create := fmt.Sprintf("CREATE TABLE %s (%s)", quoteIdent(tableName), strings.Join(cols, ", "))
	if _, err := db.Exec(create); err != nil {
		return fmt.Errorf("create feature table: %w", err)
	}

	var minX, minY, maxX, maxY float64
	placeholders := make([]string, 0, len(layer.Columns)+1)
	names := make([]string, 0, len(layer.Columns)+1)
	names = append(names, `"geom"`)
	placeholders = append(placeholders, "?")
	for _, c := range layer.Columns {
		names = append(names, quoteIdent(c))
		placeholders = append(placeholders, "?")
	}
	insert := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		quoteIdent(tableName), strings.Join(names, ", "), strings.Join(placeholders, ", "))

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("begin insert: %w", err)
	}
	for i, f := range layer.Features {
		x, y := WGS84ToRD(f.Lat, f.Lon)
		if i == 0 || x < minX {
			minX = x
		}
		if i == 0 || x > maxX {
			maxX = x
		}
		if i == 0 || y < minY {
			minY = y
		}
		if i == 0 || y > maxY {
			maxY = y
		}

		blob, err := gpkgPointBlob(x, y, rdSRSID)
		if err != nil {
			tx.Rollback()
			return err
		}
		args := make([]any, 0, len(layer.Columns)+1)
		args = append(args, blob)
		for _, c := range layer.Columns {
			args = append(args, f.Props[c])
		}
		if _, err := tx.Exec(insert, args...); err != nil {
			tx.Rollback()
			return fmt.Errorf("insert feature: %w", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit features: %w", err)
	}

	if _, err := db.Exec(
		`INSERT INTO gpkg_geometry_columns (table_name, column_name, geometry_type_name, srs_id, z, m)
		 VALUES (?, 'geom', 'POINT', ?, 0, 0)`,
		tableName, rdSRSID,
	); err != nil {
		return fmt.Errorf("register geometry column: %w", err)
	}
	if _, err := db.Exec(
		`INSERT INTO gpkg_contents (table_name, data_type, identifier, min_x, min_y, max_x, max_y, srs_id)
		 VALUES (?, 'features', ?, ?, ?, ?, ?, ?)`,
		tableName, tableName, minX, minY, maxX, maxY, rdSRSID,
	); err != nil {
		return fmt.Errorf("register contents: %w", err)
	}
	return nil
}

// gpkgPointBlob encodes a point as a GeoPackage geometry blob: the "GP"
// header (version 0, little-endian flags, no envelope) followed by WKB.
func gpkgPointBlob(x, y float64, srsID int32) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('G')
	buf.WriteByte('P')
	buf.WriteByte(0)    // version
	buf.WriteByte(0x01) // little-endian header, no envelope
	if err := binary.Write(&buf, binary.LittleEndian, srsID); err != nil {
		return nil, fmt.Errorf("encode srs id: %w", err)
	}

	geom, err := wkb.Marshal(orb.Point{x, y})
	if err != nil {
		return nil, fmt.Errorf("encode wkb point: %w", err)
	}
	buf.Write(geom)
	return buf.Bytes(), nil
}

func quoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}
