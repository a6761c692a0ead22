// Copyright 2025 The GeoTowns Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"github.com/jcodagnone/geotowns/cmd"
)

var Version = "development"

func main() {
	cmd.Execute(Version)
}
