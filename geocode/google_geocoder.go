// Copyright 2025 The GeoTowns Authors
// SPDX-License-Identifier: Apache-2.0

package geocode

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/jcodagnone/geotowns/spatial"
	"github.com/jcodagnone/geotowns/towns"
	"github.com/jcodagnone/geotowns/utils/httputils"
)

// DefaultBaseURL is the XML flavour of the Geocoding API.
const DefaultBaseURL = "https://maps.googleapis.com/maps/api/geocode/xml"

// Options configuration for GoogleMapsGeocoder.
type Options struct {
	// APIKey is the Google Maps Platform key sent with every request
	APIKey string

	// BaseURL overrides DefaultBaseURL
	BaseURL string

	// UserAgent is the User-Agent header to use in HTTP requests
	UserAgent string

	// Timeout bounds each request. Zero means no timeout.
	Timeout time.Duration

	// ParseMode selects the response parser
	ParseMode ParseMode

	// TraceWriter receives request/response dumps when set
	TraceWriter io.Writer

	// TraceBody includes bodies in the dumps
	TraceBody bool
}

// GoogleMapsGeocoder uses Google Maps Geocoding API.
type GoogleMapsGeocoder struct {
	apiKey     string
	baseURL    string
	mode       ParseMode
	httpClient *http.Client
}

var _ Geocoder = (*GoogleMapsGeocoder)(nil)

// NewGoogleMapsGeocoder creates a new Google Maps geocoder.
func NewGoogleMapsGeocoder(options *Options) *GoogleMapsGeocoder {
	if options == nil {
		options = &Options{}
	}

	baseURL := DefaultBaseURL
	if options.BaseURL != "" {
		baseURL = options.BaseURL
	}

	mode := options.ParseMode
	if mode == "" {
		mode = ParseStructured
	}

	userAgent := "geotowns/unknown"
	if options.UserAgent != "" {
		userAgent = options.UserAgent
	}

	loggingTransport := &httputils.LoggingRoundTripper{
		Writer:    options.TraceWriter,
		DumpBody:  options.TraceBody,
		Redact:    []string{"key"},
		Transport: http.DefaultTransport,
	}

	headerTransport := &httputils.AppendRequestHeadersRoundTripper{
		Headers: map[string]string{
			"User-Agent": userAgent,
			"Accept":     "application/xml, text/xml;q=0.9, */*;q=0.1",
		},
		Transport: loggingTransport,
	}

	return &GoogleMapsGeocoder{
		apiKey:  options.APIKey,
		baseURL: baseURL,
		mode:    mode,
		httpClient: &http.Client{
			Timeout:   options.Timeout,
			Transport: headerTransport,
		},
	}
}

// URL returns the request URL for req. The address is already escaped.
func (g *GoogleMapsGeocoder) URL(req towns.LocationRequest) string {
	return g.baseURL + "?address=" + req.EncodedQuery + "&sensor=false&key=" + url.QueryEscape(g.apiKey)
}

// Geocode issues a single lookup for req.
func (g *GoogleMapsGeocoder) Geocode(ctx context.Context, req towns.LocationRequest) (*Location, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, g.URL(req), nil)
	if err != nil {
		return nil, &GeocodingError{Type: ErrorTypeInvalidRequest, Message: "building request", Err: err}
	}

	resp, err := g.httpClient.Do(httpReq)
	if err != nil {
		// url.Error carries the full URL, key included
		var urlErr *url.Error
		if errors.As(err, &urlErr) {
			err = urlErr.Err
		}

		return nil, transportError(err)
	}

	defer resp.Body.Close()

	text, err := httputils.ReadText(resp)
	if err != nil {
		var statusErr *httputils.StatusError
		if errors.As(err, &statusErr) {
			geoErr := ClassifyHTTPError(statusErr.StatusCode, statusErr.Body)
			geoErr.Err = statusErr

			return nil, geoErr
		}

		return nil, transportError(err)
	}

	parsed, err := parseResponse(text, g.mode)
	if err != nil {
		return nil, malformed(err)
	}

	if parsed.Status != StatusOK {
		return nil, ClassifyStatus(parsed.Status, parsed.ErrorMessage)
	}

	if _, err := spatial.ParsePoint(parsed.Latitude, parsed.Longitude); err != nil {
		return nil, malformed(fmt.Errorf("invalid coordinates: %w", err))
	}

	return &Location{
		Latitude:         parsed.Latitude,
		Longitude:        parsed.Longitude,
		FormattedAddress: parsed.FormattedAddress,
		LocationType:     parsed.LocationType,
	}, nil
}
