// Copyright 2026 The addrgrade Authors
// SPDX-License-Identifier: Apache-2.0

package grading

import "testing"

func TestExtractRegion(t *testing.T) {
	idx := testIndex(t)

	tests := []struct {
		name    string
		address string
		twoPart bool
		want    Region
	}{
		{
			name:    "city and country",
			address: "12 High St, London, United Kingdom",
			want:    Region{City: "london", Country: "united kingdom"},
		},
		{
			name:    "aliased country",
			address: "12 High St, London, UK",
			want:    Region{City: "london", Country: "united kingdom"},
		},
		{
			name:    "two word city",
			address: "742 Evergreen Terrace, New York, USA",
			want:    Region{City: "new york", Country: "united states"},
		},
		{
			name:    "fuzzy city prefix",
			address: "5 Oak Road, Manchester City, UK",
			want:    Region{City: "manchester", Country: "united kingdom"},
		},
		{
			name:    "comma bearing country name",
			address: "123 Gangnam-daero, Seoul, Korea, South",
			twoPart: true,
			want:    Region{City: "seoul", Country: "south korea"},
		},
		{
			name:    "unknown country",
			address: "12 High St, London, Atlantis",
			want:    Region{},
		},
		{
			name:    "known country unknown city",
			address: "12 Highwalk, Hogsmeade, United Kingdom",
			want:    Region{Country: "united kingdom"},
		},
		{
			name:    "digit segments are not cities",
			address: "12 High St, 62704, USA",
			want:    Region{Country: "united states"},
		},
		{
			name:    "empty",
			address: "",
			want:    Region{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ExtractRegion(idx, tt.address, tt.twoPart)
			if got != tt.want {
				t.Errorf("ExtractRegion(%q, %v) = %+v, want %+v", tt.address, tt.twoPart, got, tt.want)
			}
		})
	}
}

func TestExtractRegionScansRightToLeft(t *testing.T) {
	idx := testIndex(t)

	// Both Manchester and London appear; the rightmost segment wins.
	got := ExtractRegion(idx, "Manchester House, 4 Long Lane, London, United Kingdom", false)

	want := Region{City: "london", Country: "united kingdom"}
	if got != want {
		t.Errorf("ExtractRegion() = %+v, want %+v", got, want)
	}
}

func TestMatchRegion(t *testing.T) {
	idx := testIndex(t)

	tests := []struct {
		name    string
		address string
		seed    string
		matched bool
		basis   Basis
	}{
		{
			name:    "seed is the city",
			address: "12 High St, London, United Kingdom",
			seed:    "London",
			matched: true,
			basis:   BasisCity,
		},
		{
			name:    "seed is the country",
			address: "12 High St, London, United Kingdom",
			seed:    "United Kingdom",
			matched: true,
			basis:   BasisCountry,
		},
		{
			name:    "seed is a country alias",
			address: "12 High St, London, United Kingdom",
			seed:    "UK",
			matched: true,
			basis:   BasisAlias,
		},
		{
			// The seed is compared whole, so a compound seed cannot equal
			// either extracted token.
			name:    "compound seed never matches",
			address: "12 High St, London, United Kingdom",
			seed:    "London, United Kingdom",
			matched: false,
		},
		{
			name:    "wrong region",
			address: "12 High St, London, United Kingdom",
			seed:    "France",
			matched: false,
		},
		{
			name:    "extraction failure",
			address: "12 High St, Atlantis",
			seed:    "London",
			matched: false,
		},
		{
			name:    "empty seed",
			address: "12 High St, London, United Kingdom",
			seed:    "",
			matched: false,
		},
		{
			name:    "empty address",
			address: "",
			seed:    "London",
			matched: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := MatchRegion(idx, tt.address, tt.seed)
			if got.Matched != tt.matched {
				t.Errorf("MatchRegion(%q, %q).Matched = %v, want %v", tt.address, tt.seed, got.Matched, tt.matched)
			}

			if tt.matched && got.Basis != tt.basis {
				t.Errorf("MatchRegion(%q, %q).Basis = %q, want %q", tt.address, tt.seed, got.Basis, tt.basis)
			}
		})
	}
}

func TestMatchRegionSpecialRegions(t *testing.T) {
	idx := testIndex(t)

	tests := []struct {
		address string
		seed    string
		want    bool
	}{
		{"Hotel Oreanda, Lenina St, Yalta, Crimea", "Crimea", true},
		{"Hotel Oreanda, Lenina St, Yalta", "Crimea", false},
		{"crimea appears lowercased somewhere", "Crimea", true},
		{"Rruga e Durresit 14, Pristina, Kosovo", "Kosovo", true},
	}

	for _, tt := range tests {
		got := MatchRegion(idx, tt.address, tt.seed)
		if got.Matched != tt.want {
			t.Errorf("MatchRegion(%q, %q).Matched = %v, want %v", tt.address, tt.seed, got.Matched, tt.want)
		}

		if tt.want && got.Basis != BasisSpecialRegion {
			t.Errorf("MatchRegion(%q, %q).Basis = %q, want %q", tt.address, tt.seed, got.Basis, BasisSpecialRegion)
		}
	}
}
