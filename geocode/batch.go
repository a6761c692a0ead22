// Copyright 2025 The GeoTowns Authors
// SPDX-License-Identifier: Apache-2.0

package geocode

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/jcodagnone/geotowns/towns"
	"github.com/jcodagnone/geotowns/utils/textutils"
	"github.com/mattn/go-isatty"
	"github.com/schollz/progressbar/v3"
)

// BatchOptions tunes GeocodeAll.
type BatchOptions struct {
	// NoProgress disables the progress bar even on a terminal.
	NoProgress bool
}

// SkippedEntry is a request the provider answered with a non OK status.
type SkippedEntry struct {
	Request towns.LocationRequest
	Status  string
	Err     error
}

// BatchResult holds the outcome of a batch, in input order.
type BatchResult struct {
	Results []towns.GeocodeResult
	Skipped []SkippedEntry
}

func newProgressBar(n int, opts BatchOptions) *progressbar.ProgressBar {
	if opts.NoProgress || !isatty.IsTerminal(os.Stderr.Fd()) {
		return nil
	}

	return progressbar.NewOptions(n,
		progressbar.OptionSetDescription("Geocoding"),
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionShowCount(),
		progressbar.OptionClearOnFinish(),
	)
}

// GeocodeAll geocodes the requests one at a time, in order.
//
// Entries the provider answers with a non OK status are logged and skipped.
// Any other failure aborts the batch: no results are returned.
func GeocodeAll(ctx context.Context, g Geocoder, requests []towns.LocationRequest, opts BatchOptions) (*BatchResult, error) {
	n := len(requests)
	ret := &BatchResult{Results: make([]towns.GeocodeResult, 0, n)}
	bar := newProgressBar(n, opts)
	quotaWarned := false

	for i, req := range requests {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("geocoding interrupted before entry %d: %w", i+1, err)
		}

		loc, err := g.Geocode(ctx, req)
		if err != nil {
			status, ok := StatusError(err)
			if !ok {
				return nil, fmt.Errorf("geocoding entry '%s, %s' (line %d): %w", req.Name, req.Region, req.Line, err)
			}

			log.Printf(
				"for entry '%s, %s', the geocoding data returned from Google resulted in an error: '%s'",
				req.Name, req.Region, status,
			)

			if !quotaWarned && (IsQuotaExceededError(err) || IsRateLimitError(err)) {
				log.Printf("⚠️  The provider reports the request quota is exhausted, remaining entries will likely fail too")

				quotaWarned = true
			}

			ret.Skipped = append(ret.Skipped, SkippedEntry{Request: req, Status: status, Err: err})
		} else {
			ret.Results = append(ret.Results, towns.GeocodeResult{
				Name:      req.Name,
				Region:    req.Region,
				Latitude:  loc.Latitude,
				Longitude: loc.Longitude,
			})
		}

		ok := len(ret.Results)
		if bar == nil {
			log.Printf("[%d/%d] %s, %s - %d geocoded so far", i+1, n, req.Name, req.Region, ok)
		} else {
			bar.Describe(fmt.Sprintf("Geocoding (%d ok)", ok))

			if err := bar.Add(1); err != nil {
				log.Printf("updating progress bar: %v", err)
			}
		}
	}

	log.Printf(
		"%s Long/Lat values were successfully collected from Google geocoding API...",
		textutils.FormatInt(len(ret.Results)),
	)

	return ret, nil
}
