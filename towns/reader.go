// Copyright 2025 The GeoTowns Authors
// SPDX-License-Identifier: Apache-2.0

package towns

import (
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/jcodagnone/geotowns/utils/textutils"
)

// Errors returned by the reader.
var (
	// ErrInputNotFound is returned when the input file cannot be opened.
	ErrInputNotFound = errors.New("input file not found")
	// ErrInputRead is returned when the input file cannot be parsed.
	ErrInputRead = errors.New("reading input file")
)

// SkippedRow is an input row that could not become a request.
type SkippedRow struct {
	Line   int
	Fields []string
	Reason string
}

// ReadReport is the outcome of reading an input file.
type ReadReport struct {
	Requests []LocationRequest
	Skipped  []SkippedRow
}

// CheckInput verifies that path can be opened for reading.
func CheckInput(path string) error {
	f, err := os.Open(filepath.Clean(path))
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInputNotFound, err)
	}

	return f.Close()
}

// ReadLocations reads the place list stored at path.
func ReadLocations(path string) (*ReadReport, error) {
	f, err := os.Open(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInputNotFound, err)
	}
	defer f.Close()

	report, err := ParseLocations(f)
	if err != nil {
		return nil, err
	}

	log.Printf("%s entries from your input CSV were successfully read...", textutils.FormatInt(len(report.Requests)))

	return report, nil
}

// ParseLocations parses rows of "name,region[,...]". Columns past the second
// are ignored. Rows with fewer than two columns are skipped. Fields are kept
// as written, empty ones included.
func ParseLocations(r io.Reader) (*ReadReport, error) {
	cr := newReader(r)
	report := &ReadReport{}

	for {
		record, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}

		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInputRead, err)
		}

		line, _ := cr.FieldPos(0)
		record = unswap(record)

		if reason := invalidRow(record); reason != "" {
			log.Printf("Skipping line %d %q: %s", line, strings.Join(record, ","), reason)
			report.Skipped = append(report.Skipped, SkippedRow{Line: line, Fields: record, Reason: reason})

			continue
		}

		report.Requests = append(report.Requests, NewLocationRequest(record[0], record[1], line))
	}

	return report, nil
}

func invalidRow(record []string) string {
	if len(record) < 2 {
		return fmt.Sprintf("expected at least 2 columns, got %d", len(record))
	}

	return ""
}
