// Copyright 2025 The GeoTowns Authors
// SPDX-License-Identifier: Apache-2.0

// Package textutils holds small string helpers shared by the CLI and the
// CSV reader.
package textutils

import (
	"strconv"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// NormalizeName trims a place name, collapses inner whitespace and composes
// it to NFC, so "São Paulo" and "São Paulo" produce the same query.
func NormalizeName(s string) string {
	return norm.NFC.String(strings.Join(strings.Fields(s), " "))
}

// FormatInt formats an integer with commas for human readability.
func FormatInt(n int) string {
	if n < 0 {
		return "-" + FormatInt(-n)
	}

	in := strconv.Itoa(n)

	var sb strings.Builder

	lead := len(in) % 3
	if lead == 0 {
		lead = 3
	}

	sb.WriteString(in[:lead])

	for i := lead; i < len(in); i += 3 {
		sb.WriteByte(',')
		sb.WriteString(in[i : i+3])
	}

	return sb.String()
}
