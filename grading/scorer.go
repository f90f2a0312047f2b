// Copyright 2026 The addrgrade Authors
// SPDX-License-Identifier: Apache-2.0

package grading

import (
	"context"
	"log"
	"regexp"
	"strings"

	"github.com/smerlo/addrgrade/geocode"
)

// Outcome is the tagged result kind of one precision-scoring call. No error
// from the provider ever escapes the scorer; everything is folded into one
// of these.
type Outcome string

const (
	OutcomeSuccess Outcome = "SUCCESS"
	OutcomeTimeout Outcome = "TIMEOUT"
	OutcomeFailure Outcome = "FAILED"
)

// minPlaceRank is the least specific provider rank still considered a
// usable match. Nominatim ranks 16 and up are city level or better.
const minPlaceRank = 16

// ScoreResult is the structured outcome of scoring one address.
type ScoreResult struct {
	Outcome       Outcome   `json:"outcome"`
	Score         float64   `json:"score"`
	RawCount      int       `json:"raw_count"`
	FilteredCount int       `json:"filtered_count"`
	MinAreaM2     float64   `json:"min_area_m2,omitempty"`
	AreasM2       []float64 `json:"areas_m2,omitempty"`
	Reason        string    `json:"reason,omitempty"`
}

// PrecisionScorer turns geocoding matches for an address into a tiered
// precision score: the tighter the best bounding box, the higher the score.
type PrecisionScorer struct {
	searcher geocode.Searcher
}

// NewPrecisionScorer wraps a geocoding provider.
func NewPrecisionScorer(searcher geocode.Searcher) *PrecisionScorer {
	return &PrecisionScorer{searcher: searcher}
}

var digitRuns = regexp.MustCompile(`\d+`)

// Score geocodes the address and derives a precision score from the
// results. Timeouts come back as a distinguished outcome so the batch layer
// can pace itself; every other provider fault is a Failure with score 0.
func (s *PrecisionScorer) Score(ctx context.Context, address string) ScoreResult {
	matches, err := s.searcher.Search(ctx, address)
	if err != nil {
		if geocode.IsTimeoutError(err) {
			return ScoreResult{Outcome: OutcomeTimeout, Reason: "provider timed out"}
		}

		log.Printf("geocoding %q failed: %v", address, err)

		return ScoreResult{Outcome: OutcomeFailure, Reason: err.Error()}
	}

	if len(matches) == 0 {
		return ScoreResult{Outcome: OutcomeSuccess, RawCount: 0, Reason: "no geocoding results"}
	}

	result := ScoreResult{
		Outcome:  OutcomeSuccess,
		RawCount: len(matches),
	}

	queryLower := strings.ToLower(address)
	queryDigits := digitSet(address)

	for _, m := range matches {
		if keepMatch(&m, queryLower, queryDigits) {
			result.FilteredCount++
		}
	}

	// Areas are computed over every raw match, filtered or not; a dropped
	// match can still carry the tightest box. A degenerate point box has
	// area zero, so the first match seeds the minimum instead of a zero
	// sentinel.
	for i, m := range matches {
		area := m.BoundingBox.AreaM2()
		result.AreasM2 = append(result.AreasM2, area)

		if i == 0 || area < result.MinAreaM2 {
			result.MinAreaM2 = area
		}
	}

	if result.FilteredCount == 0 {
		result.Reason = "no results matched the query"

		return result
	}

	result.Score = tierScore(result.MinAreaM2)

	return result
}

// keepMatch applies the relevance filter: rank at city level or better, the
// short name (when present) appearing in the query, and no digits in the
// display name that the query does not contain.
func keepMatch(m *geocode.Match, queryLower string, queryDigits map[string]struct{}) bool {
	if m.PlaceRank < minPlaceRank {
		return false
	}

	if m.Name != "" && !strings.Contains(queryLower, strings.ToLower(m.Name)) {
		return false
	}

	for _, run := range digitRuns.FindAllString(m.DisplayName, -1) {
		if _, ok := queryDigits[run]; !ok {
			return false
		}
	}

	return true
}

func digitSet(s string) map[string]struct{} {
	set := make(map[string]struct{})
	for _, run := range digitRuns.FindAllString(s, -1) {
		set[run] = struct{}{}
	}

	return set
}

// tierScore maps the minimum bounding-box area to the precision bands.
// Under 100 m² is building level, a million and up is region level.
func tierScore(areaM2 float64) float64 {
	switch {
	case areaM2 < 100:
		return 1.0
	case areaM2 < 1_000:
		return 0.9
	case areaM2 < 10_000:
		return 0.8
	case areaM2 < 100_000:
		return 0.7
	default:
		return 0.3
	}
}
