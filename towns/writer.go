// Copyright 2025 The GeoTowns Authors
// SPDX-License-Identifier: Apache-2.0

package towns

import (
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/jcodagnone/geotowns/spatial"
	"github.com/jcodagnone/geotowns/utils/textutils"
)

// DefaultOutputPath is where results go when no path is configured.
var DefaultOutputPath = filepath.Join("Output", "OutputData.csv")

// ErrOutputWrite is returned when the output file cannot be written.
var ErrOutputWrite = errors.New("writing output file")

// Header is the first row of every output file.
var Header = []string{"Town", "Region", "Latitude", "Longitude"}

// WriteOptions tunes the output file.
type WriteOptions struct {
	// H3Resolution adds an H3Cell column at this resolution when > 0.
	H3Resolution int
}

func (o WriteOptions) header() []string {
	h := append([]string{}, Header...)
	if o.H3Resolution > 0 {
		h = append(h, "H3Cell")
	}

	return h
}

func (o WriteOptions) row(r GeocodeResult) ([]string, error) {
	row := []string{r.Name, r.Region, r.Latitude, r.Longitude}
	if o.H3Resolution == 0 {
		return row, nil
	}

	p, err := r.Point()
	if err != nil {
		return nil, err
	}

	cell, err := p.Cell(o.H3Resolution)
	if err != nil {
		return nil, err
	}

	return append(row, cell), nil
}

// WriteResults creates or truncates path and writes the header followed by
// one row per result, in order. The parent directory must exist. It returns
// the number of data rows written.
func WriteResults(path string, results []GeocodeResult, opts WriteOptions) (n int, err error) {
	if opts.H3Resolution < 0 || opts.H3Resolution > spatial.MaxH3Resolution {
		return 0, fmt.Errorf("%w: h3 resolution %d out of range", ErrOutputWrite, opts.H3Resolution)
	}

	f, err := os.Create(filepath.Clean(path))
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrOutputWrite, err)
	}

	defer func() {
		if cerr := f.Close(); cerr != nil {
			err = errors.Join(err, fmt.Errorf("%w: closing file: %w", ErrOutputWrite, cerr))
		}
	}()

	w := newWriter(f)
	if err := w.Write(opts.header()...); err != nil {
		return 0, fmt.Errorf("%w: writing header: %w", ErrOutputWrite, err)
	}

	for _, r := range results {
		row, err := opts.row(r)
		if err != nil {
			return n, fmt.Errorf("%w: row for %s, %s: %w", ErrOutputWrite, r.Name, r.Region, err)
		}

		if err := w.Write(row...); err != nil {
			return n, fmt.Errorf("%w: %w", ErrOutputWrite, err)
		}

		n++
	}

	if err := w.Close(); err != nil {
		return n, fmt.Errorf("%w: flushing: %w", ErrOutputWrite, err)
	}

	log.Printf("%s entries were successfully written to the '%s' file...", textutils.FormatInt(n), path)

	return n, nil
}
