package gis

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWGS84ToRD_Origin(t *testing.T) {
	// The OLV tower in Amersfoort is the origin of the grid.
	x, y := WGS84ToRD(52.15517440, 5.38720621)
	assert.InDelta(t, 155000, x, 0.01)
	assert.InDelta(t, 463000, y, 0.01)
}

func TestWGS84ToRD_KnownPoints(t *testing.T) {
	cases := []struct {
		name     string
		lat, lon float64
		x, y     float64
	}{
		{"amsterdam dam square", 52.372778, 4.893611, 121386, 487326},
		{"rotterdam", 51.9225, 4.47917, 92537, 437503},
		{"groningen", 53.219383, 6.566502, 233770, 582063},
		{"maastricht", 50.8514, 5.6910, 176395, 317996},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			x, y := WGS84ToRD(tc.lat, tc.lon)
			assert.InDelta(t, tc.x, x, 1.0)
			assert.InDelta(t, tc.y, y, 1.0)
		})
	}
}

func TestWGS84ToRD_Monotonic(t *testing.T) {
	x1, y1 := WGS84ToRD(52.0, 5.0)
	x2, _ := WGS84ToRD(52.0, 5.1)
	_, y2 := WGS84ToRD(52.1, 5.0)

	assert.Greater(t, x2, x1, "easting grows with longitude")
	assert.Greater(t, y2, y1, "northing grows with latitude")
}
