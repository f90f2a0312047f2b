// Copyright 2026 The addrgrade Authors
// SPDX-License-Identifier: Apache-2.0

// Package geocode talks to external geocoding providers. It normalizes every
// provider into the same Match shape, throttles and retries calls, and caches
// successful responses for the lifetime of the process.
package geocode

import (
	"context"
	"strings"

	"github.com/smerlo/addrgrade/spatial"
)

// Match is one geocoding result, normalized across providers.
type Match struct {
	// PlaceRank indicates how specific the match is; higher is more
	// specific (30 is building level in the Nominatim scale).
	PlaceRank int `json:"place_rank"`

	// Name is the provider's short name for the place, when it has one.
	Name string `json:"name,omitempty"`

	// DisplayName is the provider's full formatted place string.
	DisplayName string `json:"display_name"`

	// BoundingBox is the spatial extent of the match in degrees.
	BoundingBox spatial.BoundingBox `json:"bounding_box"`
}

// Searcher is the contract consumed by the scoring layer: free-text query in,
// normalized matches out. Client and GoogleGeocoder both satisfy it.
type Searcher interface {
	Search(ctx context.Context, query string) ([]Match, error)
}

// CanonicalKey reduces a query to its cache key: lowercase, whitespace
// collapsed. The same address queried with different spacing or casing hits
// the same cache entry.
func CanonicalKey(query string) string {
	return strings.Join(strings.Fields(strings.ToLower(query)), " ")
}
