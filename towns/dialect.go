// Copyright 2025 The GeoTowns Authors
// SPDX-License-Identifier: Apache-2.0

package towns

import (
	"bufio"
	"encoding/csv"
	"io"
	"strings"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
)

// The files use '|' as quote character and treat '"' as an ordinary one.
// encoding/csv only knows '"', so both characters are swapped while reading.
// The swap is its own inverse.
func swapQuotes(r rune) rune {
	switch r {
	case '|':
		return '"'
	case '"':
		return '|'
	default:
		return r
	}
}

func unswap(fields []string) []string {
	for i, f := range fields {
		fields[i] = strings.Map(swapQuotes, f)
	}

	return fields
}

// newReader returns a csv.Reader for the pipe-quoted dialect. A leading
// UTF-8 BOM is dropped. Leading spaces are part of the field.
func newReader(r io.Reader) *csv.Reader {
	tr := transform.NewReader(r, transform.Chain(
		unicode.BOMOverride(unicode.UTF8.NewDecoder()),
		runes.Map(swapQuotes),
	))

	cr := csv.NewReader(tr)
	cr.Comma = ','
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	return cr
}

// dialectWriter writes pipe-quoted CSV rows. A field is quoted only when it
// holds a comma, a '|', CR or LF, so leading spaces are written as they are.
// Close must be called to flush.
type dialectWriter struct {
	bw *bufio.Writer
}

func newWriter(w io.Writer) *dialectWriter {
	return &dialectWriter{bw: bufio.NewWriter(w)}
}

func (w *dialectWriter) Write(fields ...string) error {
	for i, f := range fields {
		if i > 0 {
			w.bw.WriteByte(',')
		}

		if strings.ContainsAny(f, ",|\r\n") {
			w.bw.WriteByte('|')
			w.bw.WriteString(strings.ReplaceAll(f, "|", "||"))
			w.bw.WriteByte('|')
		} else {
			w.bw.WriteString(f)
		}
	}

	_, err := w.bw.WriteString("\r\n")

	return err
}

func (w *dialectWriter) Close() error {
	return w.bw.Flush()
}
