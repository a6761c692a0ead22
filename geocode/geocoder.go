// Copyright 2025 The GeoTowns Authors
// SPDX-License-Identifier: Apache-2.0

// Package geocode resolves place names into coordinates with the Google Maps
// Geocoding API.
package geocode

import (
	"context"

	"github.com/jcodagnone/geotowns/towns"
)

// Location is a successful geocoding answer.
type Location struct {
	// Latitude and Longitude are the decimal strings sent by the provider.
	Latitude         string
	Longitude        string
	FormattedAddress string
	LocationType     string
}

// Geocoder interface for different geocoding providers.
//
// Geocode returns an error for which StatusError reports true when the
// provider answered but could not geocode the request. Any other error means
// the provider could not be queried or understood.
type Geocoder interface {
	Geocode(ctx context.Context, req towns.LocationRequest) (*Location, error)
}
