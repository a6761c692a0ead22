// Copyright 2025 The GeoTowns Authors
// SPDX-License-Identifier: Apache-2.0

package pipeline

import (
	"errors"
	"fmt"
)

// Kind classifies pipeline failures by the stage that produced them.
type Kind int

const (
	// KindUnknown is never produced by Run.
	KindUnknown Kind = iota
	// KindInputNotFound the input file could not be opened.
	KindInputNotFound
	// KindInputUnreadable the input file could be opened but not parsed.
	KindInputUnreadable
	// KindGeocodeBatchFailure the geocoding loop was aborted.
	KindGeocodeBatchFailure
	// KindEntryStatusNotOK one entry was not geocoded; the batch went on.
	KindEntryStatusNotOK
	// KindOutputWriteFailure the output file could not be written.
	KindOutputWriteFailure
)

func (k Kind) String() string {
	switch k {
	case KindInputNotFound:
		return "InputNotFound"
	case KindInputUnreadable:
		return "InputUnreadable"
	case KindGeocodeBatchFailure:
		return "GeocodeBatchFailure"
	case KindEntryStatusNotOK:
		return "EntryStatusNotOK"
	case KindOutputWriteFailure:
		return "OutputWriteFailure"
	default:
		return "Unknown"
	}
}

// Error is a failure of one pipeline stage.
type Error struct {
	Kind Kind
	// Op is the human readable operation that failed.
	Op  string
	Err error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	}

	return e.Op
}

func (e *Error) Unwrap() error {
	return e.Err
}

// KindOf returns the kind of the first *Error in err's chain.
func KindOf(err error) Kind {
	var pErr *Error
	if errors.As(err, &pErr) {
		return pErr.Kind
	}

	return KindUnknown
}
