// Copyright 2025 The GeoTowns Authors
// SPDX-License-Identifier: Apache-2.0

package geocode

import (
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"
)

// ParseMode selects how Geocoding API XML responses are read.
type ParseMode string

const (
	// ParseStructured decodes the documented GeocodeResponse schema.
	ParseStructured ParseMode = "structured"
	// ParseTagScan takes the text between the first <status>, <lat> and
	// <lng> tags found in the payload, wherever they are.
	ParseTagScan ParseMode = "tag-scan"
)

// String implements pflag.Value.
func (m *ParseMode) String() string {
	if *m == "" {
		return string(ParseStructured)
	}

	return string(*m)
}

// Set implements pflag.Value.
func (m *ParseMode) Set(s string) error {
	switch ParseMode(strings.ToLower(s)) {
	case ParseStructured:
		*m = ParseStructured
	case ParseTagScan:
		*m = ParseTagScan
	default:
		return fmt.Errorf("unknown parse mode %q, expected %q or %q", s, ParseStructured, ParseTagScan)
	}

	return nil
}

// Type implements pflag.Value.
func (m *ParseMode) Type() string {
	return "mode"
}

var errNoLocation = errors.New("status OK without a location")

// response is what both parsers extract from a payload.
type response struct {
	Status           string
	ErrorMessage     string
	Latitude         string
	Longitude        string
	FormattedAddress string
	LocationType     string
}

func parseResponse(text string, mode ParseMode) (*response, error) {
	if mode == ParseTagScan {
		return scanResponse(text)
	}

	return decodeResponse(text)
}

type xmlLatLng struct {
	Lat string `xml:"lat"`
	Lng string `xml:"lng"`
}

type xmlGeocodeResponse struct {
	XMLName      xml.Name `xml:"GeocodeResponse"`
	Status       string   `xml:"status"`
	ErrorMessage string   `xml:"error_message"`
	Results      []struct {
		FormattedAddress string `xml:"formatted_address"`
		Geometry         struct {
			Location     xmlLatLng `xml:"location"`
			LocationType string    `xml:"location_type"` // ROOFTOP, RANGE_INTERPOLATED, GEOMETRIC_CENTER, APPROXIMATE
		} `xml:"geometry"`
	} `xml:"result"`
}

func decodeResponse(text string) (*response, error) {
	dec := xml.NewDecoder(strings.NewReader(text))
	// the body was already converted to UTF-8 while reading it
	dec.CharsetReader = func(_ string, input io.Reader) (io.Reader, error) {
		return input, nil
	}

	var gr xmlGeocodeResponse
	if err := dec.Decode(&gr); err != nil {
		return nil, fmt.Errorf("decoding GeocodeResponse: %w", err)
	}

	resp := &response{
		Status:       strings.TrimSpace(gr.Status),
		ErrorMessage: strings.TrimSpace(gr.ErrorMessage),
	}

	if resp.Status == "" {
		return nil, errors.New("response has no status")
	}

	if resp.Status != StatusOK {
		return resp, nil
	}

	if len(gr.Results) == 0 {
		return nil, errNoLocation
	}

	first := gr.Results[0]
	resp.Latitude = strings.TrimSpace(first.Geometry.Location.Lat)
	resp.Longitude = strings.TrimSpace(first.Geometry.Location.Lng)
	resp.FormattedAddress = first.FormattedAddress
	resp.LocationType = first.Geometry.LocationType

	if resp.Latitude == "" || resp.Longitude == "" {
		return nil, errNoLocation
	}

	return resp, nil
}

// between returns the text between the first open tag and the first close
// tag that follows it.
func between(text, open, closing string) (string, bool) {
	start := strings.Index(text, open)
	if start < 0 {
		return "", false
	}

	start += len(open)

	end := strings.Index(text[start:], closing)
	if end < 0 {
		return "", false
	}

	return text[start : start+end], true
}

func scanResponse(text string) (*response, error) {
	status, ok := between(text, "<status>", "</status>")
	if !ok {
		return nil, errors.New("response has no status")
	}

	if status == "" {
		status = StatusUnknownError
	}

	resp := &response{Status: status}
	if status != StatusOK {
		resp.ErrorMessage, _ = between(text, "<error_message>", "</error_message>")

		return resp, nil
	}

	lat, okLat := between(text, "<lat>", "</lat>")
	lng, okLng := between(text, "<lng>", "</lng>")

	if !okLat || !okLng {
		return nil, errNoLocation
	}

	resp.Latitude, resp.Longitude = lat, lng
	resp.FormattedAddress, _ = between(text, "<formatted_address>", "</formatted_address>")

	return resp, nil
}
