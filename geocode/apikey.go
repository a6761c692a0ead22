// Copyright 2025 The GeoTowns Authors
// SPDX-License-Identifier: Apache-2.0

package geocode

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"

	apikeys "cloud.google.com/go/apikeys/apiv2"
	"cloud.google.com/go/apikeys/apiv2/apikeyspb"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/iterator"
)

// EnvAPIKey is the environment variable holding the Geocoding API key.
const EnvAPIKey = "GOOGLE_MAPS_API_KEY"

// DefaultKeyDisplayName is the API Keys display name looked up through ADC.
const DefaultKeyDisplayName = "GeoTowns Geocoding Key"

// ErrNoAPIKey is returned when no key could be found anywhere.
var ErrNoAPIKey = errors.New("no Google Maps API key available")

// KeyLookup configures the Application Default Credentials fallback.
type KeyLookup struct {
	// ProjectID overrides the project found in the credentials.
	ProjectID string
	// DisplayName of the key to fetch.
	DisplayName string
	// Disabled skips the ADC lookup.
	Disabled bool
}

// adcLookup is replaced in tests.
var adcLookup = getAPIKeyFromADC

// ResolveAPIKey returns explicit when set, then the GOOGLE_MAPS_API_KEY
// environment variable, then the key found with Application Default
// Credentials. The second value names where the key came from.
func ResolveAPIKey(ctx context.Context, explicit string, lookup KeyLookup) (string, string, error) {
	if explicit != "" {
		return explicit, "flag", nil
	}

	if key := os.Getenv(EnvAPIKey); key != "" {
		return key, EnvAPIKey, nil
	}

	if lookup.Disabled {
		return "", "", fmt.Errorf("%w: set --api-key or %s", ErrNoAPIKey, EnvAPIKey)
	}

	log.Printf("%s is not set. Attempting to retrieve via ADC...", EnvAPIKey)

	key, err := adcLookup(ctx, lookup)
	if err != nil {
		return "", "", fmt.Errorf("%w: %w", ErrNoAPIKey, err)
	}

	return key, "adc", nil
}

func getAPIKeyFromADC(ctx context.Context, lookup KeyLookup) (string, error) {
	projectID := lookup.ProjectID
	if projectID == "" {
		creds, err := google.FindDefaultCredentials(ctx, "https://www.googleapis.com/auth/cloud-platform")
		if err != nil {
			return "", fmt.Errorf("finding default credentials: %w", err)
		}

		projectID = creds.ProjectID
	}

	if projectID == "" {
		return "", errors.New("no project ID in the default credentials, use --project")
	}

	displayName := lookup.DisplayName
	if displayName == "" {
		displayName = DefaultKeyDisplayName
	}

	client, err := apikeys.NewClient(ctx)
	if err != nil {
		return "", fmt.Errorf("creating apikeys client: %w", err)
	}
	defer client.Close()

	it := client.ListKeys(ctx, &apikeyspb.ListKeysRequest{
		Parent: fmt.Sprintf("projects/%s/locations/global", projectID),
	})

	for {
		key, err := it.Next()
		if errors.Is(err, iterator.Done) {
			break
		}

		if err != nil {
			return "", fmt.Errorf("listing keys: %w", err)
		}

		if key.DisplayName != displayName {
			continue
		}

		// ListKeys redacts the KeyString.
		resp, err := client.GetKeyString(ctx, &apikeyspb.GetKeyStringRequest{Name: key.Name})
		if err != nil {
			return "", fmt.Errorf("getting key string: %w", err)
		}

		if resp.KeyString == "" {
			return "", fmt.Errorf("key '%s' found but KeyString is empty", displayName)
		}

		log.Printf("✅ Retrieved Google Maps API key '%s' via ADC", key.Name)

		return resp.KeyString, nil
	}

	return "", fmt.Errorf("key with display name '%s' not found in project %s", displayName, projectID)
}
