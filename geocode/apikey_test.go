// Copyright 2025 The GeoTowns Authors
// SPDX-License-Identifier: Apache-2.0

package geocode

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func stubADC(t *testing.T, key string, err error) *KeyLookup {
	t.Helper()

	var got KeyLookup

	prev := adcLookup
	adcLookup = func(_ context.Context, lookup KeyLookup) (string, error) {
		got = lookup

		return key, err
	}

	t.Cleanup(func() { adcLookup = prev })

	return &got
}

func TestResolveAPIKey(t *testing.T) {
	ctx := context.Background()

	t.Run("explicit wins", func(t *testing.T) {
		t.Setenv(EnvAPIKey, "from-env")
		stubADC(t, "from-adc", nil)

		key, source, err := ResolveAPIKey(ctx, "from-flag", KeyLookup{})
		require.NoError(t, err)
		assert.Equal(t, "from-flag", key)
		assert.Equal(t, "flag", source)
	})

	t.Run("environment", func(t *testing.T) {
		t.Setenv(EnvAPIKey, "from-env")
		stubADC(t, "from-adc", nil)

		key, source, err := ResolveAPIKey(ctx, "", KeyLookup{})
		require.NoError(t, err)
		assert.Equal(t, "from-env", key)
		assert.Equal(t, EnvAPIKey, source)
	})

	t.Run("adc", func(t *testing.T) {
		t.Setenv(EnvAPIKey, "")
		got := stubADC(t, "from-adc", nil)

		key, source, err := ResolveAPIKey(ctx, "", KeyLookup{ProjectID: "p1", DisplayName: "k"})
		require.NoError(t, err)
		assert.Equal(t, "from-adc", key)
		assert.Equal(t, "adc", source)
		assert.Equal(t, KeyLookup{ProjectID: "p1", DisplayName: "k"}, *got)
	})

	t.Run("adc fails", func(t *testing.T) {
		t.Setenv(EnvAPIKey, "")
		cause := errors.New("no credentials")
		stubADC(t, "", cause)

		_, _, err := ResolveAPIKey(ctx, "", KeyLookup{})
		require.ErrorIs(t, err, ErrNoAPIKey)
		assert.ErrorIs(t, err, cause)
	})

	t.Run("adc disabled", func(t *testing.T) {
		t.Setenv(EnvAPIKey, "")
		stubADC(t, "from-adc", nil)

		_, _, err := ResolveAPIKey(ctx, "", KeyLookup{Disabled: true})
		require.ErrorIs(t, err, ErrNoAPIKey)
	})
}
