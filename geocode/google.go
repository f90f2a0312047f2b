// Copyright 2026 The addrgrade Authors
// SPDX-License-Identifier: Apache-2.0

package geocode

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/smerlo/addrgrade/spatial"
)

// GoogleGeocoder is the alternative provider, using the Google Maps
// Geocoding API. Its responses are mapped onto the same Match shape the
// scorer consumes: the geometry viewport becomes the bounding box and
// location_type is translated to a Nominatim-scale place rank.
type GoogleGeocoder struct {
	apiKey     string
	httpClient *http.Client
}

// NewGoogleGeocoder creates a Google Maps backed Searcher.
func NewGoogleGeocoder(apiKey string) *GoogleGeocoder {
	return &GoogleGeocoder{
		apiKey: apiKey,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

type googleMapsResponse struct {
	Results []struct {
		Geometry struct {
			Viewport struct {
				Northeast struct {
					Lat float64 `json:"lat"`
					Lng float64 `json:"lng"`
				} `json:"northeast"`
				Southwest struct {
					Lat float64 `json:"lat"`
					Lng float64 `json:"lng"`
				} `json:"southwest"`
			} `json:"viewport"`
			LocationType string `json:"location_type"` // ROOFTOP, RANGE_INTERPOLATED, GEOMETRIC_CENTER, APPROXIMATE
		} `json:"geometry"`
		FormattedAddress string `json:"formatted_address"`
	} `json:"results"`
	Status string `json:"status"` // OK, ZERO_RESULTS, etc.
}

// Google has no place_rank; approximate one from the location type so the
// rank filter behaves comparably across providers.
func rankFromLocationType(locationType string) int {
	switch locationType {
	case "ROOFTOP":
		return 30
	case "RANGE_INTERPOLATED":
		return 26
	case "GEOMETRIC_CENTER":
		return 20
	case "APPROXIMATE":
		return 10
	default:
		return 0
	}
}

// Search implements Searcher over the Google Maps Geocoding API.
func (g *GoogleGeocoder) Search(ctx context.Context, query string) ([]Match, error) {
	params := url.Values{}
	params.Set("address", query)
	params.Set("key", g.apiKey)

	reqURL := "https://maps.googleapis.com/maps/api/geocode/json?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("building geocoding request: %w", err)
	}

	resp, err := g.httpClient.Do(req)
	if err != nil {
		if IsTimeoutError(err) {
			return nil, &ProviderError{Type: ErrorTypeTimeout, Message: "geocoding timed out", Err: err}
		}

		return nil, &ProviderError{Type: ErrorTypeNetwork, Message: "geocoding request failed", Err: err}
	}

	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, ClassifyHTTPError(resp.StatusCode)
	}

	var gmResp googleMapsResponse
	if err := json.NewDecoder(resp.Body).Decode(&gmResp); err != nil {
		return nil, &ProviderError{Type: ErrorTypeParse, Message: "decoding geocoding response", Err: err}
	}

	switch gmResp.Status {
	case "OK", "ZERO_RESULTS":
	case "OVER_QUERY_LIMIT":
		return nil, &ProviderError{Type: ErrorTypeQuotaExceeded, Message: "google maps quota exceeded"}
	default:
		return nil, &ProviderError{Type: ErrorTypeUnknown, Message: fmt.Sprintf("google maps status: %s", gmResp.Status)}
	}

	matches := make([]Match, 0, len(gmResp.Results))

	for _, result := range gmResp.Results {
		matches = append(matches, Match{
			PlaceRank:   rankFromLocationType(result.Geometry.LocationType),
			DisplayName: result.FormattedAddress,
			BoundingBox: spatial.BoundingBox{
				South: result.Geometry.Viewport.Southwest.Lat,
				North: result.Geometry.Viewport.Northeast.Lat,
				West:  result.Geometry.Viewport.Southwest.Lng,
				East:  result.Geometry.Viewport.Northeast.Lng,
			},
		})
	}

	return matches, nil
}
