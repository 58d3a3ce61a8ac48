package pipeline

import (
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/veldwerk/fieldwork-etl/internal/adapter/csvio"
	"github.com/veldwerk/fieldwork-etl/internal/adapter/gis"
)

// GISPipeline turns cleaned observation CSVs into per-project geospatial
// outputs: a GeoPackage in RD New, a WGS-84 GeoJSON and a Leaflet map.
type GISPipeline struct {
	logger *slog.Logger
}

// NewGISPipeline wires the GIS stage.
func NewGISPipeline(logger *slog.Logger) *GISPipeline {
	return &GISPipeline{logger: logger}
}

// Run processes a cleaned CSV, or every CSV under a directory, and writes
// the outputs under outRoot. Returns the directories written.
func (p *GISPipeline) Run(csvPath, outRoot string) ([]string, error) {
	info, err := os.Stat(csvPath)
	if err != nil {
		return nil, fmt.Errorf("stat input: %w", err)
	}

	paths := []string{csvPath}
	if info.IsDir() {
		paths, err = findCSVs(csvPath)
		if err != nil {
			return nil, err
		}
	}

	var written []string
	for _, path := range paths {
		dirs, err := p.processFile(path, outRoot)
		if err != nil {
			return written, err
		}
		written = append(written, dirs...)
	}
	return written, nil
}

func (p *GISPipeline) processFile(csvPath, outRoot string) ([]string, error) {
	table, err := csvio.ReadTable(csvPath)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", csvPath, err)
	}

	layers := gis.LayersFromTable(table)
	if len(layers) == 0 {
		p.logger.Warn("no mappable rows", "file", csvPath)
		return nil, nil
	}

	var written []string
	for _, layer := range layers {
		safe := csvio.SafeName(layer.Project)
		dir := filepath.Join(outRoot, "waarn_"+safe)
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return written, fmt.Errorf("create output dir: %w", err)
		}

		gpkg := filepath.Join(dir, "waarn_"+safe+".gpkg")
		if err := os.Remove(gpkg); err != nil && !os.IsNotExist(err) {
			return written, fmt.Errorf("replace geopackage: %w", err)
		}
		if err := gis.WriteGeoPackage(gpkg, safe, layer); err != nil {
			return written, fmt.Errorf("project %s: %w", layer.Project, err)
		}
		if err := gis.WriteGeoJSON(filepath.Join(dir, "waarn_"+safe+".geojson"), layer); err != nil {
			return written, fmt.Errorf("project %s: %w", layer.Project, err)
		}
		if err := gis.WriteLeafletMap(filepath.Join(dir, "map_"+safe+".html"), layer); err != nil {
			return written, fmt.Errorf("project %s: %w", layer.Project, err)
		}

		p.logger.Info("gis outputs written",
			"project", layer.Project,
			"points", len(layer.Features),
			"dir", dir,
		)
		written = append(written, dir)
	}
	return written, nil
}

func findCSVs(root string) ([]string, error) {
	var paths []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && strings.EqualFold(filepath.Ext(path), ".csv") {
			paths = append(paths, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("scan %s: %w", root, err)
	}
	sort.Strings(paths)
	return paths, nil
}
