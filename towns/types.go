// Copyright 2025 The GeoTowns Authors
// SPDX-License-Identifier: Apache-2.0

// Package towns reads the list of places to geocode and writes the
// geocoded results, both as pipe-quoted CSV files.
package towns

import (
	"net/url"

	"github.com/jcodagnone/geotowns/spatial"
	"github.com/jcodagnone/geotowns/utils/textutils"
)

// LocationRequest is one input row ready to be sent to a geocoder.
type LocationRequest struct {
	Name   string
	Region string
	// EncodedQuery is the URL-safe "name, region" address.
	EncodedQuery string
	// Line is the 1-based line of the row in the input file.
	Line int
}

// NewLocationRequest builds the request for a row.
func NewLocationRequest(name, region string, line int) LocationRequest {
	address := textutils.NormalizeName(name)
	if r := textutils.NormalizeName(region); r != "" {
		address += ", " + r
	}

	return LocationRequest{
		Name:         name,
		Region:       region,
		EncodedQuery: url.QueryEscape(address),
		Line:         line,
	}
}

// GeocodeResult is a successfully geocoded row. Coordinates are kept as the
// decimal strings the provider returned.
type GeocodeResult struct {
	Name      string
	Region    string
	Latitude  string
	Longitude string
}

// Point parses the result coordinates.
func (r GeocodeResult) Point() (spatial.Point, error) {
	return spatial.ParsePoint(r.Latitude, r.Longitude)
}
