// Copyright 2026 The addrgrade Authors
// SPDX-License-Identifier: Apache-2.0

package grading

import (
	"strings"

	"github.com/smerlo/addrgrade/gazetteer"
)

// Basis records which comparison satisfied a region match.
type Basis string

const (
	BasisNone          Basis = ""
	BasisSpecialRegion Basis = "special-region"
	BasisCity          Basis = "city"
	BasisCountry       Basis = "country"
	BasisAlias         Basis = "alias"
)

// MatchResult carries the extracted region and how (or whether) it matched
// the claimed seed.
type MatchResult struct {
	City    string
	Country string
	Matched bool
	Basis   Basis
}

// Disputed or otherwise non-gazetteer regions. These are matched by literal
// substring search on the address instead of structured extraction.
var specialRegions = map[string]struct{}{
	"crimea":          {},
	"kosovo":          {},
	"palestine":       {},
	"transnistria":    {},
	"abkhazia":        {},
	"south ossetia":   {},
	"northern cyprus": {},
}

// MatchRegion decides whether an address belongs to the claimed seed
// region. The seed is compared as a whole string against the extracted city
// and country; a seed of the form "City, Country" therefore never matches
// through extraction, only the special-region path bypasses it.
func MatchRegion(idx *gazetteer.Index, address, seed string) MatchResult {
	if address == "" || seed == "" {
		return MatchResult{}
	}

	foldedSeed := gazetteer.Fold(seed)

	if _, ok := specialRegions[foldedSeed]; ok {
		matched := strings.Contains(gazetteer.Fold(address), foldedSeed)

		return MatchResult{Matched: matched, Basis: basisIf(matched, BasisSpecialRegion)}
	}

	twoPart := strings.Contains(seed, ",")

	region := ExtractRegion(idx, address, twoPart)
	if region.City == "" || region.Country == "" {
		return MatchResult{City: region.City, Country: region.Country}
	}

	result := MatchResult{City: region.City, Country: region.Country}

	switch {
	case region.City == foldedSeed:
		result.Matched = true
		result.Basis = BasisCity
	case region.Country == foldedSeed:
		result.Matched = true
		result.Basis = BasisCountry
	case region.Country == gazetteer.Alias(foldedSeed):
		result.Matched = true
		result.Basis = BasisAlias
	}

	return result
}

func basisIf(matched bool, basis Basis) Basis {
	if matched {
		return basis
	}

	return BasisNone
}
