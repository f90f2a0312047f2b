// Copyright 2026 The addrgrade Authors
// SPDX-License-Identifier: Apache-2.0

package gazetteer

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Fold normalizes a string by removing accents, lowercasing, and trimming spaces.
// Every name stored in the index, and every name compared against it, goes
// through Fold first.
func Fold(s string) string {
	s, _, _ = transform.String(
		transform.Chain(
			norm.NFD,
			runes.Remove(runes.In(unicode.Mn)),
			norm.NFC,
		),
		strings.TrimSpace(strings.ToLower(s)),
	)

	return s
}

// countryAliases maps common informal or historical country names to the
// canonical geonames name. Aliasing is many-to-one and is applied before any
// country comparison.
var countryAliases = map[string]string{
	"uk":                       "united kingdom",
	"u.k.":                     "united kingdom",
	"great britain":            "united kingdom",
	"britain":                  "united kingdom",
	"england":                  "united kingdom",
	"scotland":                 "united kingdom",
	"wales":                    "united kingdom",
	"usa":                      "united states",
	"u.s.a.":                   "united states",
	"us":                       "united states",
	"u.s.":                     "united states",
	"america":                  "united states",
	"united states of america": "united states",
	"holland":                  "netherlands",
	"the netherlands":          "netherlands",
	"deutschland":              "germany",
	"espana":                   "spain",
	"italia":                   "italy",
	"brasil":                   "brazil",
	"russian federation":       "russia",
	"uae":                      "united arab emirates",
	"emirates":                 "united arab emirates",
	"republic of korea":        "south korea",
	"korea, south":             "south korea",
	"korea, north":             "north korea",
	"czechia":                  "czech republic",
	"burma":                    "myanmar",
	"ivory coast":              "cote d'ivoire",
	"drc":                      "democratic republic of the congo",
}

// Alias resolves a folded country name through the alias table. It returns
// the canonical name when an alias exists, the input otherwise.
func Alias(folded string) string {
	if canonical, ok := countryAliases[folded]; ok {
		return canonical
	}

	return folded
}
