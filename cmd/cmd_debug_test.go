// Copyright 2025 The GeoTowns Authors
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDebugParseCmd(t *testing.T) {
	path := filepath.Join(t.TempDir(), "towns.csv")
	require.NoError(t, os.WriteFile(path, []byte("New York,USA\nLonely\n|Washington, D.C.|,USA\n"), 0o600))

	var out, errOut bytes.Buffer

	rootCmd.SetOut(&out)
	rootCmd.SetErr(&errOut)
	rootCmd.SetArgs([]string{"debug", "parse", path})
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
		rootCmd.SetArgs(nil)
	})

	require.NoError(t, rootCmd.Execute())

	assert.Equal(t,
		"1\tNew York\tUSA\tNew+York%2C+USA\n"+
			"3\tWashington, D.C.\tUSA\tWashington%2C+D.C.%2C+USA\n",
		out.String())
	assert.Contains(t, errOut.String(), "line 2 skipped")
}
