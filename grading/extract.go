// Copyright 2026 The addrgrade Authors
// SPDX-License-Identifier: Apache-2.0

package grading

import (
	"strings"
	"unicode"

	"github.com/smerlo/addrgrade/gazetteer"
)

// Region is a (city, country) pair extracted from a free-text address.
// Either field may be empty when extraction fails at that level.
type Region struct {
	City    string
	Country string
}

// ExtractRegion derives the region of an address from its trailing comma
// segments. The country is resolved first from the last segment (or, when
// twoPart is set, the last two segments joined, for comma-bearing country
// names like "korea, south"); the city is then searched right-to-left over
// the remaining segments against the gazetteer cities of that country.
func ExtractRegion(idx *gazetteer.Index, address string, twoPart bool) Region {
	segments := splitSegments(address)
	if len(segments) == 0 {
		return Region{}
	}

	country, consumed := resolveCountry(idx, segments, twoPart)
	if country == "" {
		return Region{}
	}

	city := resolveCity(idx, segments[:len(segments)-consumed], country)

	return Region{City: city, Country: country}
}

func splitSegments(address string) []string {
	var segments []string

	for _, s := range strings.Split(address, ",") {
		s = strings.TrimSpace(s)
		if s != "" {
			segments = append(segments, s)
		}
	}

	return segments
}

// resolveCountry returns the canonical country name and how many trailing
// segments it consumed.
func resolveCountry(idx *gazetteer.Index, segments []string, twoPart bool) (string, int) {
	last := segments[len(segments)-1]

	if name := idx.NormalizeCountry(last); name != "" {
		return name, 1
	}

	if twoPart && len(segments) >= 2 {
		joined := segments[len(segments)-2] + ", " + last
		if name := idx.NormalizeCountry(joined); name != "" {
			return name, 2
		}
	}

	return "", 0
}

// resolveCity scans the segments right-to-left. Within a segment the
// candidates are single words and adjacent word pairs, digits excluded; an
// exact gazetteer hit wins, then a fuzzy pair match. The first hit stops the
// scan and the gazetteer's own city name is returned.
func resolveCity(idx *gazetteer.Index, segments []string, country string) string {
	for i := len(segments) - 1; i >= 0; i-- {
		words := strings.Fields(gazetteer.Fold(segments[i]))

		for j := len(words) - 1; j >= 0; j-- {
			if containsDigit(words[j]) {
				continue
			}

			if idx.HasCity(country, words[j]) {
				return words[j]
			}

			if j == 0 || containsDigit(words[j-1]) {
				continue
			}

			pair := words[j-1] + " " + words[j]
			if idx.HasCity(country, pair) {
				return pair
			}

			if name, ok := idx.FindCityFuzzy(country, words[j-1], words[j]); ok {
				return name
			}
		}
	}

	return ""
}

func containsDigit(s string) bool {
	return strings.ContainsFunc(s, unicode.IsDigit)
}
