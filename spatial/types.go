// Copyright 2025 The GeoTowns Authors
//
// SPDX-License-Identifier: Apache-2.0
package spatial

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/uber/h3-go/v4"
)

// MaxH3Resolution is the finest H3 resolution.
const MaxH3Resolution = 15

// Point represents a geographical point with latitude and longitude.
type Point struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// String returns a string representation of the Point.
func (p Point) String() string {
	return fmt.Sprintf("POINT(%f %f)", p.Lng, p.Lat)
}

// ParsePoint parses the decimal strings returned by a geocoding provider and
// checks they fall within the valid coordinate ranges.
func ParsePoint(lat, lng string) (Point, error) {
	var p Point

	var err error

	p.Lat, err = strconv.ParseFloat(strings.TrimSpace(lat), 64)
	if err != nil {
		return Point{}, fmt.Errorf("spatial: invalid latitude %q: %w", lat, err)
	}

	p.Lng, err = strconv.ParseFloat(strings.TrimSpace(lng), 64)
	if err != nil {
		return Point{}, fmt.Errorf("spatial: invalid longitude %q: %w", lng, err)
	}

	if err := p.Validate(); err != nil {
		return Point{}, err
	}

	return p, nil
}

// Validate checks the global coordinate bounds.
func (p Point) Validate() error {
	if p.Lat < -90 || p.Lat > 90 {
		return fmt.Errorf("spatial: latitude must be between -90 and 90 (got %f)", p.Lat)
	}

	if p.Lng < -180 || p.Lng > 180 {
		return fmt.Errorf("spatial: longitude must be between -180 and 180 (got %f)", p.Lng)
	}

	return nil
}

// Cell returns the hex encoded H3 index containing p at the given resolution.
func (p Point) Cell(res int) (string, error) {
	if res < 0 || res > MaxH3Resolution {
		return "", fmt.Errorf("spatial: h3 resolution %d out of range [0, %d]", res, MaxH3Resolution)
	}

	cell, err := h3.LatLngToCell(h3.NewLatLng(p.Lat, p.Lng), res)
	if err != nil {
		return "", fmt.Errorf("spatial: converting to h3 cell at res %d: %w", res, err)
	}

	return cell.String(), nil
}
