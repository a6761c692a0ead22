// Copyright 2025 The GeoTowns Authors
// SPDX-License-Identifier: Apache-2.0

package geocode

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/jcodagnone/geotowns/towns"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T, handler http.HandlerFunc) *httptest.Server {
	t.Helper()

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	return srv
}

func xmlHandler(body string) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/xml; charset=UTF-8")
		_, _ = w.Write([]byte(body))
	}
}

func TestGoogleMapsGeocoder_URL(t *testing.T) {
	g := NewGoogleMapsGeocoder(&Options{APIKey: "k&y"})
	req := towns.NewLocationRequest("New York", "USA", 1)

	assert.Equal(t,
		"https://maps.googleapis.com/maps/api/geocode/xml?address=New+York%2C+USA&sensor=false&key=k%26y",
		g.URL(req),
	)
}

func TestGoogleMapsGeocoder_Geocode(t *testing.T) {
	var got *http.Request

	body := readTestdata(t, "portland_ok.xml")
	srv := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		got = r
		xmlHandler(body)(w, r)
	})

	g := NewGoogleMapsGeocoder(&Options{APIKey: "test-key", BaseURL: srv.URL + "/xml", UserAgent: "geotowns/test"})

	loc, err := g.Geocode(context.Background(), towns.NewLocationRequest("Portland", "Oregon", 1))
	require.NoError(t, err)

	assert.Equal(t, &Location{
		Latitude:         "45.5152325",
		Longitude:        "-122.6783853",
		FormattedAddress: "Portland, OR, USA",
		LocationType:     "APPROXIMATE",
	}, loc)

	require.NotNil(t, got)
	assert.Equal(t, "/xml", got.URL.Path)
	assert.Equal(t, "Portland, Oregon", got.URL.Query().Get("address"))
	assert.Equal(t, "false", got.URL.Query().Get("sensor"))
	assert.Equal(t, "test-key", got.URL.Query().Get("key"))
	assert.Equal(t, "address=Portland%2C+Oregon&sensor=false&key=test-key", got.URL.RawQuery)
	assert.Equal(t, "geotowns/test", got.Header.Get("User-Agent"))
}

func TestGoogleMapsGeocoder_TagScanMode(t *testing.T) {
	srv := newTestServer(t, xmlHandler(readTestdata(t, "viewport_first.xml")))
	g := NewGoogleMapsGeocoder(&Options{BaseURL: srv.URL, ParseMode: ParseTagScan})

	loc, err := g.Geocode(context.Background(), towns.NewLocationRequest("Denver", "USA", 1))
	require.NoError(t, err)
	assert.Equal(t, "39.6143154", loc.Latitude)
}

func TestGoogleMapsGeocoder_TagScanEmptyStatusSkipsEntry(t *testing.T) {
	logs := captureLog(t)
	srv := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("address") == "Denver, USA" {
			xmlHandler(readTestdata(t, "viewport_first.xml"))(w, r)

			return
		}

		xmlHandler("<GeocodeResponse><status></status></GeocodeResponse>")(w, r)
	})
	g := NewGoogleMapsGeocoder(&Options{BaseURL: srv.URL, ParseMode: ParseTagScan})

	res, err := GeocodeAll(context.Background(), g, []towns.LocationRequest{
		towns.NewLocationRequest("Nowhere", "Land", 1),
		towns.NewLocationRequest("Denver", "USA", 2),
	}, BatchOptions{NoProgress: true})
	require.NoError(t, err)

	require.Len(t, res.Skipped, 1)
	assert.Equal(t, StatusUnknownError, res.Skipped[0].Status)
	require.Len(t, res.Results, 1)
	assert.Equal(t, "Denver", res.Results[0].Name)
	assert.Contains(t, logs.String(), "resulted in an error: 'UNKNOWN_ERROR'")
}

func TestGoogleMapsGeocoder_Errors(t *testing.T) {
	tests := []struct {
		name       string
		handler    http.HandlerFunc
		wantType   ErrorType
		wantStatus string
	}{
		{
			name:       "zero results",
			handler:    xmlHandler(readTestdata(t, "zero_results.xml")),
			wantType:   ErrorTypeNotFound,
			wantStatus: "ZERO_RESULTS",
		},
		{
			name:       "request denied",
			handler:    xmlHandler(readTestdata(t, "request_denied.xml")),
			wantType:   ErrorTypeRequestDenied,
			wantStatus: "REQUEST_DENIED",
		},
		{
			name:       "over query limit",
			handler:    xmlHandler("<GeocodeResponse><status>OVER_QUERY_LIMIT</status></GeocodeResponse>"),
			wantType:   ErrorTypeRateLimit,
			wantStatus: "OVER_QUERY_LIMIT",
		},
		{
			name: "server error",
			handler: func(w http.ResponseWriter, _ *http.Request) {
				http.Error(w, "boom", http.StatusServiceUnavailable)
			},
			wantType: ErrorTypeNetworkError,
		},
		{
			name: "forbidden",
			handler: func(w http.ResponseWriter, _ *http.Request) {
				http.Error(w, "nope", http.StatusForbidden)
			},
			wantType: ErrorTypeQuotaExceeded,
		},
		{
			name:     "html body",
			handler:  xmlHandler("<html><body>maintenance</body></html>"),
			wantType: ErrorTypeMalformedResponse,
		},
		{
			name:     "coordinates out of range",
			handler:  xmlHandler("<GeocodeResponse><status>OK</status><result><geometry><location><lat>123</lat><lng>1</lng></location></geometry></result></GeocodeResponse>"),
			wantType: ErrorTypeMalformedResponse,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := newTestServer(t, tt.handler)
			g := NewGoogleMapsGeocoder(&Options{BaseURL: srv.URL})

			loc, err := g.Geocode(context.Background(), towns.NewLocationRequest("Nowhere", "Land", 1))
			require.Error(t, err)
			assert.Nil(t, loc)

			var geoErr *GeocodingError
			require.ErrorAs(t, err, &geoErr)
			assert.Equal(t, tt.wantType, geoErr.Type, "got %s", geoErr.Type)

			status, perEntry := StatusError(err)
			assert.Equal(t, tt.wantStatus != "", perEntry)
			assert.Equal(t, tt.wantStatus, status)
		})
	}
}

func TestGoogleMapsGeocoder_Timeout(t *testing.T) {
	release := make(chan struct{})
	srv := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	})
	defer close(release)

	g := NewGoogleMapsGeocoder(&Options{BaseURL: srv.URL, APIKey: "secret", Timeout: 50 * time.Millisecond})

	_, err := g.Geocode(context.Background(), towns.NewLocationRequest("Slow", "Town", 1))
	require.Error(t, err)
	assert.True(t, IsTimeoutError(err))

	_, perEntry := StatusError(err)
	assert.False(t, perEntry)
	assert.NotContains(t, err.Error(), "secret")
}

func TestGoogleMapsGeocoder_Trace(t *testing.T) {
	srv := newTestServer(t, xmlHandler(readTestdata(t, "portland_ok.xml")))

	var trace bytes.Buffer

	g := NewGoogleMapsGeocoder(&Options{BaseURL: srv.URL, APIKey: "secret", TraceWriter: &trace, TraceBody: true})

	_, err := g.Geocode(context.Background(), towns.NewLocationRequest("Portland", "Oregon", 1))
	require.NoError(t, err)

	assert.True(t, strings.Contains(trace.String(), "<lat>45.5152325</lat>"))
	assert.NotContains(t, trace.String(), "secret")
}
