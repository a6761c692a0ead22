// Copyright 2025 The GeoTowns Authors
// SPDX-License-Identifier: Apache-2.0

// Package pipeline chains the three stages of a geocoding run: read the
// place list, geocode every entry and write the results.
package pipeline

import (
	"context"
	"cmp"
	"errors"
	"fmt"
	"slices"

	"github.com/jcodagnone/geotowns/geocode"
	"github.com/jcodagnone/geotowns/towns"
)

// Options configuration for Run.
type Options struct {
	// InputPath is the CSV file with the places to geocode
	InputPath string

	// OutputPath is where results are written, towns.DefaultOutputPath when empty
	OutputPath string

	// Write tunes the output file
	Write towns.WriteOptions

	// Batch tunes the geocoding loop
	Batch geocode.BatchOptions
}

// SkippedEntry is an input row that does not appear in the output.
type SkippedEntry struct {
	Line   int
	Name   string
	Region string
	Err    *Error
}

// Report summarizes a run. Counts are filled as far as the run got.
type Report struct {
	Read     int
	Geocoded int
	Written  int
	// OutputPath is the file written, if any.
	OutputPath string
	// Skipped lists unreadable rows and entries the provider rejected.
	Skipped []SkippedEntry
}

// CheckInput reports, as an *Error of KindInputNotFound, an input file that
// cannot be opened.
func CheckInput(path string) error {
	if err := towns.CheckInput(path); err != nil {
		return &Error{Kind: KindInputNotFound, Op: "your town list could not be found, please check the input file path", Err: err}
	}

	return nil
}

// Run executes the pipeline. Every returned error is an *Error.
func Run(ctx context.Context, g geocode.Geocoder, opts Options) (*Report, error) {
	report := &Report{}

	if err := CheckInput(opts.InputPath); err != nil {
		return report, err
	}

	read, err := towns.ReadLocations(opts.InputPath)
	if err != nil {
		kind := KindInputUnreadable
		if errors.Is(err, towns.ErrInputNotFound) {
			kind = KindInputNotFound
		}

		return report, &Error{Kind: kind, Op: "reading the town list", Err: err}
	}

	report.Read = len(read.Requests)

	for _, row := range read.Skipped {
		name, region := "", ""
		if len(row.Fields) > 0 {
			name = row.Fields[0]
		}

		if len(row.Fields) > 1 {
			region = row.Fields[1]
		}

		report.Skipped = append(report.Skipped, SkippedEntry{
			Line:   row.Line,
			Name:   name,
			Region: region,
			Err:    &Error{Kind: KindInputUnreadable, Op: row.Reason},
		})
	}

	batch, err := geocode.GeocodeAll(ctx, g, read.Requests, opts.Batch)
	if err != nil {
		return report, &Error{Kind: KindGeocodeBatchFailure, Op: "an error has occurred while geocoding", Err: err}
	}

	report.Geocoded = len(batch.Results)

	for _, s := range batch.Skipped {
		report.Skipped = append(report.Skipped, SkippedEntry{
			Line:   s.Request.Line,
			Name:   s.Request.Name,
			Region: s.Request.Region,
			Err: &Error{
				Kind: KindEntryStatusNotOK,
				Op:   fmt.Sprintf("geocoding '%s, %s' returned %s", s.Request.Name, s.Request.Region, s.Status),
				Err:  s.Err,
			},
		})
	}

	slices.SortStableFunc(report.Skipped, func(a, b SkippedEntry) int {
		return cmp.Compare(a.Line, b.Line)
	})

	outputPath := opts.OutputPath
	if outputPath == "" {
		outputPath = towns.DefaultOutputPath
	}

	written, err := towns.WriteResults(outputPath, batch.Results, opts.Write)
	report.Written = written

	if err != nil {
		return report, &Error{
			Kind: KindOutputWriteFailure,
			Op:   fmt.Sprintf("an error has occurred while opening/writing the '%s' file", outputPath),
			Err:  err,
		}
	}

	report.OutputPath = outputPath

	return report, nil
}
