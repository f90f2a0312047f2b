// Copyright 2026 The addrgrade Authors
// SPDX-License-Identifier: Apache-2.0

// Package grading scores submitted address variations: a cheap format and
// region gate first, then a sampled geocoding precision pass for the
// survivors.
package grading

import (
	"strings"
	"unicode"
)

const (
	minCoreLength = 30
	maxCoreLength = 300
	minLetters    = 20
	minDistinct   = 5
	minCommas     = 2
)

// Symbols that never show up in a postal address someone actually typed.
var blacklistChars = "`:%$@*^[]{}_«»"

// PlausibleFormat reports whether a raw string looks like a real-world
// postal address. It is a pure heuristic gate, cheap enough to run on every
// candidate before anything touches the network.
func PlausibleFormat(address string) bool {
	lower := strings.ToLower(address)

	core := 0
	letters := 0
	hasASCIILetter := false
	distinct := make(map[rune]struct{})

	for _, r := range lower {
		distinct[r] = struct{}{}

		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_' {
			core++
		}

		if unicode.IsLetter(r) {
			letters++
		}

		if r >= 'a' && r <= 'z' {
			hasASCIILetter = true
		}
	}

	if core < minCoreLength || core > maxCoreLength {
		return false
	}

	if letters < minLetters {
		return false
	}

	// Checked against plain a-z only, so an address written entirely in a
	// non-Latin script can pass the letter count above and still fail here.
	if !hasASCIILetter {
		return false
	}

	if len(distinct) < minDistinct {
		return false
	}

	if strings.Count(address, ",") < minCommas {
		return false
	}

	if strings.ContainsAny(address, blacklistChars) {
		return false
	}

	return hasDigitSection(address)
}

// hasDigitSection reports whether at least one comma-section of the address
// contains a run of digits, after stripping hyphens and semicolons.
func hasDigitSection(address string) bool {
	stripped := strings.NewReplacer("-", "", ";", "").Replace(address)

	for _, section := range strings.Split(stripped, ",") {
		if strings.ContainsFunc(section, unicode.IsDigit) {
			return true
		}
	}

	return false
}
