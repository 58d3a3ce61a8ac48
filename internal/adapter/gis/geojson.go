package gis

import (
	"fmt"
	"os"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
)

// WriteGeoJSON writes a layer as a WGS-84 GeoJSON FeatureCollection.
func WriteGeoJSON(path string, layer Layer) error {
	fc := geojson.NewFeatureCollection()
	for _, f := range layer.Features {
		feature := geojson.NewFeature(orb.Point{f.Lon, f.Lat})
		for _, col := range layer.Columns {
			if v := f.Props[col]; v != "" {
				feature.Properties[col] = v
			}
		}
		fc.Append(feature)
	}

	data, err := fc.MarshalJSON()
	if err != nil {
		return fmt.Errorf("marshal geojson: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write geojson: %w", err)
	}
	return nil
}
