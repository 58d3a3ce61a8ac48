package domain

import "context"

// Geocoder resolves coordinates to a human-readable address.
type Geocoder interface {
	// ReverseGeocode converts a WGS-84 coordinate to an address string.
	// An empty string with nil error means "no result"; only transport or
	// provider failures return an error.
	ReverseGeocode(ctx context.Context, lat, lon float64) (string, error)
}
