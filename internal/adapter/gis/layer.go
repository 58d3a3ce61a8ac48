package gis

import (
	"strconv"
	"strings"

	"github.com/veldwerk/fieldwork-etl/internal/adapter/csvio"
)

// Feature is one survey point with its attribute row. Lat and Lon are
// WGS-84; projected coordinates are derived at write time.
type Feature struct {
	Lat   float64
	Lon   float64
	Props map[string]string
}

// Layer is a per-project group of features sharing an attribute schema.
type Layer struct {
	Project  string
	Columns  []string
	Features []Feature
}

// Center returns the mean coordinate of the layer.
func (l *Layer) Center() (lat, lon float64) {
	if len(l.Features) == 0 {
		return 0, 0
	}
	for _, f := range l.Features {
		lat += f.Lat
		lon += f.Lon
	}
	n := float64(len(l.Features))
	return lat / n, lon / n
}

// Bounds returns the bounding box (minLat, minLon, maxLat, maxLon).
func (l *Layer) Bounds() (minLat, minLon, maxLat, maxLon float64) {
	for i, f := range l.Features {
		if i == 0 || f.Lat < minLat {
			minLat = f.Lat
		}
		if i == 0 || f.Lat > maxLat {
			maxLat = f.Lat
		}
		if i == 0 || f.Lon < minLon {
			minLon = f.Lon
		}
		if i == 0 || f.Lon > maxLon {
			maxLon = f.Lon
		}
	}
	return minLat, minLon, maxLat, maxLon
}

// LayersFromTable splits a cleaned observations table into per-project
// layers. The project column is detected by name when the default is
// absent; rows without a project or a parseable coordinate are skipped.
func LayersFromTable(table *csvio.Table) []Layer {
	projectCol := table.Column("Projectnaam", "Project Naam", "project_naam", "project_id")
	latCol := table.Column("Breedtegraad", "Lat", "Latitude", "latitude", "lat")
	lonCol := table.Column("Lengtegraad", "Lon", "Longitude", "longitude", "lon")
	coordCol := table.Column("Coördinaten")

	byProject := make(map[string]*Layer)
	order := make([]string, 0)

	for _, row := range table.Rows {
		project := ""
		if projectCol != "" {
			project = row[projectCol]
		}
		if project == "" {
			continue
		}

		lat, lon, ok := rowCoordinate(row, latCol, lonCol, coordCol)
		if !ok {
			continue
		}

		layer, exists := byProject[project]
		if !exists {
			layer = &Layer{Project: project, Columns: table.Columns}
			byProject[project] = layer
			order = append(order, project)
		}
		layer.Features = append(layer.Features, Feature{Lat: lat, Lon: lon, Props: row})
	}

	layers := make([]Layer, 0, len(order))
	for _, project := range order {
		layers = append(layers, *byProject[project])
	}
	return layers
}

func rowCoordinate(row map[string]string, latCol, lonCol, coordCol string) (lat, lon float64, ok bool) {
	if latCol != "" && lonCol != "" {
		latErr, lonErr := error(nil), error(nil)
		lat, latErr = strconv.ParseFloat(row[latCol], 64)
		lon, lonErr = strconv.ParseFloat(row[lonCol], 64)
		if latErr == nil && lonErr == nil {
			return lat, lon, true
		}
	}
	if coordCol != "" {
		parts := strings.SplitN(row[coordCol], ",", 3)
		if len(parts) >= 2 {
			latErr, lonErr := error(nil), error(nil)
			lat, latErr = strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
			lon, lonErr = strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
			if latErr == nil && lonErr == nil {
				return lat, lon, true
			}
		}
	}
	return 0, 0, false
}
