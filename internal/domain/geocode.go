package domain

import (
	"context"
	"log/slog"
)

// EnrichWithAddress attempts to reverse geocode an observation's coordinate
// and derive the parsed street and place. If geocoder is nil, the
// coordinate is missing, or geocoding fails, the observation is returned
// with its address fields untouched (graceful degradation): a single
// unreachable provider must never abort the batch.
func EnrichWithAddress(ctx context.Context, obs Observation, geocoder Geocoder, logger *slog.Logger) Observation {
	if geocoder == nil || obs.Lat == nil || obs.Lon == nil {
		return obs
	}

	addr, err := geocoder.ReverseGeocode(ctx, *obs.Lat, *obs.Lon)
	if err != nil {
		logger.Warn("reverse geocoding failed",
			"observation_id", obs.ID,
			"lat", *obs.Lat,
			"lon", *obs.Lon,
			"error", err,
		)
		return obs
	}
	if addr == "" {
		return obs
	}

	obs.Address = &addr
	street, place := ParseAddress(addr)
	if street != "" {
		obs.Street = &street
	}
	if place != "" {
		obs.Place = &place
	}
	return obs
}
