package gis

import (
	"fmt"
	"html/template"
	"os"
	"strings"
)

// Popup columns shown on the interactive map, in display order; columns
// absent from the layer are skipped.
var defaultPopupColumns = []string{"Soort", "Adres", "Plaats", "Datum"}

type mapMarker struct {
	Lat   float64
	Lon   float64
	Popup template.HTML
}

type mapData struct {
	Title     string
	CenterLat float64
	CenterLon float64
	Zoom      int
	FitBounds bool
	MinLat    float64
	MinLon    float64
	MaxLat    float64
	MaxLon    float64
	Markers   []mapMarker
}

var mapTemplate = template.Must(template.New("map").Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
<link rel="stylesheet" href="https://unpkg.com/leaflet@1.9.4/dist/leaflet.css">
<script src="https://unpkg.com/leaflet@1.9.4/dist/leaflet.js"></script>
<style>html, body, #map { height: 100%; margin: 0; }</style>
</head>
<body>
<div id="map"></div>
<script>
var map = L.map('map').setView([{{.CenterLat}}, {{.CenterLon}}], {{.Zoom}});
L.tileLayer('https://tile.openstreetmap.org/{z}/{x}/{y}.png', {
  attribution: '&copy; OpenStreetMap contributors'
}).addTo(map);
{{range .Markers}}L.circleMarker([{{.Lat}}, {{.Lon}}], {
  radius: 5, weight: 1, fill: true, fillOpacity: 0.8
}).bindPopup({{.Popup}}).addTo(map);
{{end}}{{if .FitBounds}}map.fitBounds([[{{.MinLat}}, {{.MinLon}}], [{{.MaxLat}}, {{.MaxLon}}]]);
{{end}}</script>
</body>
</html>
`))

// WriteLeafletMap writes an interactive HTML map of the layer, centred on
// the mean coordinate with a popup per point.
func WriteLeafletMap(path string, layer Layer) error {
	centerLat, centerLon := layer.Center()
	data := mapData{
		Title:     layer.Project,
		CenterLat: centerLat,
		CenterLon: centerLon,
		Zoom:      13,
	}

	popupCols := make([]string, 0, len(defaultPopupColumns))
	for _, col := range defaultPopupColumns {
		for _, have := range layer.Columns {
			if have == col {
				popupCols = append(popupCols, col)
				break
			}
		}
	}

	for _, f := range layer.Features {
		data.Markers = append(data.Markers, mapMarker{
			Lat:   f.Lat,
			Lon:   f.Lon,
			Popup: popupHTML(f, popupCols),
		})
	}

	if len(layer.Features) > 1 {
		data.FitBounds = true
		data.MinLat, data.MinLon, data.MaxLat, data.MaxLon = layer.Bounds()
	}

	out, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create map html: %w", err)
	}
	defer out.Close()

	if err := mapTemplate.Execute(out, data); err != nil {
		return fmt.Errorf("render map: %w", err)
	}
	return nil
}

func popupHTML(f Feature, cols []string) template.HTML {
	lines := make([]string, 0, len(cols))
	for _, col := range cols {
		if v := f.Props[col]; v != "" {
			lines = append(lines, fmt.Sprintf("<b>%s:</b> %s",
				template.HTMLEscapeString(col), template.HTMLEscapeString(v)))
		}
	}
	return template.HTML(strings.Join(lines, "<br>"))
}
