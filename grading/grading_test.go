// Copyright 2026 The addrgrade Authors
// SPDX-License-Identifier: Apache-2.0

package grading

import (
	"context"
	"testing"

	"github.com/smerlo/addrgrade/gazetteer"
	"github.com/smerlo/addrgrade/geocode"
	"github.com/smerlo/addrgrade/spatial"
)

// testIndex builds a small fake gazetteer shared by the package tests.
func testIndex(t *testing.T) *gazetteer.Index {
	t.Helper()

	idx, err := gazetteer.NewIndex(
		[]gazetteer.Country{
			{Name: "united kingdom", Code: "GB"},
			{Name: "united states", Code: "US"},
			{Name: "south korea", Code: "KR"},
			{Name: "france", Code: "FR"},
		},
		[]gazetteer.City{
			{Name: "london", Country: "GB", Population: 8_900_000, Point: spatial.Point{Lat: 51.5072, Lng: -0.1276}},
			{Name: "manchester", Country: "GB", Population: 550_000, Point: spatial.Point{Lat: 53.4808, Lng: -2.2426}},
			{Name: "springfield", Country: "US", Population: 114_000, Point: spatial.Point{Lat: 39.7817, Lng: -89.6501}},
			{Name: "new york", Country: "US", Population: 8_300_000, Point: spatial.Point{Lat: 40.7128, Lng: -74.0060}},
			{Name: "seoul", Country: "KR", Population: 9_700_000, Point: spatial.Point{Lat: 37.5665, Lng: 126.9780}},
			{Name: "paris", Country: "FR", Population: 2_100_000, Point: spatial.Point{Lat: 48.8566, Lng: 2.3522}},
		},
	)
	if err != nil {
		t.Fatalf("building test index: %v", err)
	}

	return idx
}

// stubSearcher is a canned geocoding provider that counts calls.
type stubSearcher struct {
	matches []geocode.Match
	err     error
	calls   int
}

func (s *stubSearcher) Search(_ context.Context, _ string) ([]geocode.Match, error) {
	s.calls++

	return s.matches, s.err
}

// boxAt returns a bounding box anchored at the equator with the given
// extent in meters, so the computed area is within rounding of widthM times
// heightM.
func boxAt(widthM, heightM float64) spatial.BoundingBox {
	return spatial.BoundingBox{
		South: 0,
		North: heightM / 111000.0,
		West:  0,
		East:  widthM / 111000.0,
	}
}
