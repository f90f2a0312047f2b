// Copyright 2026 The addrgrade Authors
// SPDX-License-Identifier: Apache-2.0

package grading

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"testing"

	"github.com/smerlo/addrgrade/geocode"
)

// validAddress builds an address that passes both the format gate and the
// region gate for the "London" seed.
func validAddress(i int) string {
	return fmt.Sprintf("%d Cromwell Gardens, Apartment %d, South Kensington, London, United Kingdom", i+1, i%9+1)
}

func testGrader(t *testing.T, searcher geocode.Searcher) *Grader {
	t.Helper()

	grader := NewGrader(testIndex(t), searcher, rand.New(rand.NewSource(42)))
	grader.Delay = 0
	grader.TimeoutDelay = 0

	return grader
}

func submissionOf(n int) Submission {
	variants := make([]Variant, n)
	for i := range variants {
		variants[i] = Variant{Name: "Ada Smith", DOB: "1990-01-01", Address: validAddress(i)}
	}

	return Submission{
		Identities:  map[string][]Variant{"Ada Smith": variants},
		SeedRegions: []string{"London"},
	}
}

func TestGradeEmptySubmission(t *testing.T) {
	searcher := &stubSearcher{}
	grader := testGrader(t, searcher)

	result := grader.Grade(context.Background(), Submission{}, "test")

	if result.Score != 1.0 {
		t.Errorf("score = %v, want 1.0", result.Score)
	}

	if searcher.calls != 0 {
		t.Errorf("provider called %d times, want 0", searcher.calls)
	}
}

func TestGradeEmptySeedRegions(t *testing.T) {
	searcher := &stubSearcher{}
	grader := testGrader(t, searcher)

	submission := submissionOf(5)
	submission.SeedRegions = nil

	result := grader.Grade(context.Background(), submission, "test")

	if result.Score != 1.0 {
		t.Errorf("score = %v, want 1.0", result.Score)
	}
}

func TestGradeFailsFastOnBadFormat(t *testing.T) {
	searcher := &stubSearcher{matches: []geocode.Match{{PlaceRank: 30, BoundingBox: boxAt(5, 10)}}}
	grader := testGrader(t, searcher)

	submission := submissionOf(15)
	submission.Identities["Ada Smith"][6].Address = "too short, 1, x"

	result := grader.Grade(context.Background(), submission, "test")

	if result.Score != 0.0 {
		t.Errorf("score = %v, want 0.0", result.Score)
	}

	if result.HeuristicsPassed {
		t.Error("heuristics reported as passed")
	}

	if result.Reason != "heuristic validation failed" {
		t.Errorf("reason = %q", result.Reason)
	}

	if searcher.calls != 0 {
		t.Errorf("provider called %d times, want 0", searcher.calls)
	}
}

func TestGradeFailsFastOnRegionMismatch(t *testing.T) {
	searcher := &stubSearcher{}
	grader := testGrader(t, searcher)

	submission := submissionOf(5)
	submission.SeedRegions = []string{"France"}

	result := grader.Grade(context.Background(), submission, "test")

	if result.Score != 0.0 {
		t.Errorf("score = %v, want 0.0", result.Score)
	}

	if searcher.calls != 0 {
		t.Errorf("provider called %d times, want 0", searcher.calls)
	}
}

func TestGradeSamplesAtMostThree(t *testing.T) {
	for _, n := range []int{1, 15, 100} {
		searcher := &stubSearcher{matches: []geocode.Match{{PlaceRank: 30, BoundingBox: boxAt(5, 10)}}}
		grader := testGrader(t, searcher)

		result := grader.Grade(context.Background(), submissionOf(n), "test")

		wantCalls := n
		if wantCalls > 3 {
			wantCalls = 3
		}

		if searcher.calls != wantCalls {
			t.Errorf("n=%d: provider called %d times, want %d", n, searcher.calls, wantCalls)
		}

		if len(result.Samples) != wantCalls {
			t.Errorf("n=%d: %d samples recorded, want %d", n, len(result.Samples), wantCalls)
		}
	}
}

func TestGradeAggregatesMeanScore(t *testing.T) {
	searcher := &stubSearcher{matches: []geocode.Match{{PlaceRank: 30, BoundingBox: boxAt(5, 10)}}}
	grader := testGrader(t, searcher)

	result := grader.Grade(context.Background(), submissionOf(10), "test")

	if !result.HeuristicsPassed {
		t.Fatal("heuristics should pass")
	}

	if result.APIOutcome != OutcomeSuccess {
		t.Errorf("api outcome = %v, want success", result.APIOutcome)
	}

	if result.Score != 1.0 {
		t.Errorf("score = %v, want 1.0", result.Score)
	}

	if result.RegionMatches != 10 {
		t.Errorf("region matches = %d, want 10", result.RegionMatches)
	}
}

func TestGradeTimeoutsFallBack(t *testing.T) {
	searcher := &stubSearcher{err: &geocode.ProviderError{Type: geocode.ErrorTypeTimeout, Message: "deadline"}}
	grader := testGrader(t, searcher)

	result := grader.Grade(context.Background(), submissionOf(5), "test")

	if result.APIOutcome != OutcomeTimeout {
		t.Errorf("api outcome = %v, want timeout", result.APIOutcome)
	}

	if result.Score != 0.3 {
		t.Errorf("score = %v, want the 0.3 fallback", result.Score)
	}
}

func TestGradeFailureDominatesOutcome(t *testing.T) {
	searcher := &stubSearcher{err: errors.New("boom")}
	grader := testGrader(t, searcher)

	result := grader.Grade(context.Background(), submissionOf(5), "test")

	if result.APIOutcome != OutcomeFailure {
		t.Errorf("api outcome = %v, want failed", result.APIOutcome)
	}

	if result.Score != 0.3 {
		t.Errorf("score = %v, want the 0.3 fallback", result.Score)
	}
}

func TestGradeReproducibleSampling(t *testing.T) {
	first := &stubSearcher{matches: []geocode.Match{{PlaceRank: 30, BoundingBox: boxAt(5, 10)}}}
	second := &stubSearcher{matches: []geocode.Match{{PlaceRank: 30, BoundingBox: boxAt(5, 10)}}}

	a := testGrader(t, first).Grade(context.Background(), submissionOf(20), "test")
	b := testGrader(t, second).Grade(context.Background(), submissionOf(20), "test")

	if len(a.Samples) != len(b.Samples) {
		t.Fatalf("sample counts differ: %d vs %d", len(a.Samples), len(b.Samples))
	}

	for i := range a.Samples {
		if a.Samples[i].Address != b.Samples[i].Address {
			t.Errorf("sample %d differs: %q vs %q", i, a.Samples[i].Address, b.Samples[i].Address)
		}
	}
}
