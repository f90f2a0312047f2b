// Copyright 2026 The addrgrade Authors
// SPDX-License-Identifier: Apache-2.0

package grading

import (
	"context"
	"log"
	"math/rand"
	"sort"
	"time"

	"github.com/smerlo/addrgrade/gazetteer"
	"github.com/smerlo/addrgrade/geocode"
)

const (
	// DefaultMaxSamples bounds how many addresses per submission reach the
	// geocoding provider.
	DefaultMaxSamples = 3

	// DefaultDelay is the politeness pause between sequential provider
	// calls; DefaultTimeoutDelay is added after a call times out.
	DefaultDelay        = time.Second
	DefaultTimeoutDelay = 2 * time.Second
)

// Variant is one generated identity record.
type Variant struct {
	Name    string `json:"name"`
	DOB     string `json:"dob"`
	Address string `json:"address"`
}

// Submission is a full batch of generated identities: every identity's
// variants plus the claimed seed regions, one per identity in order.
type Submission struct {
	Identities  map[string][]Variant `json:"identities"`
	SeedRegions []string             `json:"seed_regions"`
}

// Attempt is one sampled address with its scoring outcome, kept for audit.
type Attempt struct {
	Address string      `json:"address"`
	Result  ScoreResult `json:"result"`
}

// Result is the aggregate grade of a submission.
type Result struct {
	HeuristicsPassed bool      `json:"heuristics_passed"`
	RegionMatches    int       `json:"region_matches"`
	TotalAddresses   int       `json:"total_addresses"`
	APIOutcome       Outcome   `json:"api_outcome,omitempty"`
	Samples          []Attempt `json:"samples,omitempty"`
	Score            float64   `json:"score"`
	Reason           string    `json:"reason,omitempty"`
}

// Grader runs the full pipeline over a submission: format gate, region
// gate, then precision scoring of a small random sample.
type Grader struct {
	Index  *gazetteer.Index
	Scorer *PrecisionScorer

	// Rand drives the sampling step; supply a seeded source for
	// reproducible grades.
	Rand *rand.Rand

	Delay        time.Duration
	TimeoutDelay time.Duration
	MaxSamples   int
}

// NewGrader creates a grader with the default pacing and sample policy.
func NewGrader(idx *gazetteer.Index, searcher geocode.Searcher, rng *rand.Rand) *Grader {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}

	return &Grader{
		Index:        idx,
		Scorer:       NewPrecisionScorer(searcher),
		Rand:         rng,
		Delay:        DefaultDelay,
		TimeoutDelay: DefaultTimeoutDelay,
		MaxSamples:   DefaultMaxSamples,
	}
}

type candidate struct {
	address string
	seed    string
}

// Grade scores a submission. It always returns a result with a numeric
// score; provider trouble degrades the score instead of failing the batch.
// requester only identifies the caller in logs.
func (g *Grader) Grade(ctx context.Context, submission Submission, requester string) *Result {
	candidates := collect(submission)

	result := &Result{TotalAddresses: len(candidates)}

	if len(candidates) == 0 {
		// Nothing to grade scores perfect. A submission can exploit this
		// by claiming no identities; the surrounding pipeline rejects
		// those earlier.
		result.HeuristicsPassed = true
		result.Score = 1.0
		result.Reason = "empty submission"

		return result
	}

	log.Printf("grading %d addresses for %s", len(candidates), requester)

	for _, c := range candidates {
		if !PlausibleFormat(c.address) {
			result.Reason = "heuristic validation failed"

			return result
		}

		match := MatchRegion(g.Index, c.address, c.seed)
		if !match.Matched {
			result.Reason = "heuristic validation failed"

			return result
		}

		result.RegionMatches++
	}

	result.HeuristicsPassed = true

	g.scoreSample(ctx, candidates, result)

	return result
}

// collect pairs every non-empty address with its identity's seed region.
// Identities are walked in sorted name order so the pairing with seeds is
// deterministic; identities beyond the seed list are skipped.
func collect(submission Submission) []candidate {
	names := make([]string, 0, len(submission.Identities))
	for name := range submission.Identities {
		names = append(names, name)
	}

	sort.Strings(names)

	var candidates []candidate

	for i, name := range names {
		if i >= len(submission.SeedRegions) {
			break
		}

		for _, v := range submission.Identities[name] {
			if v.Address == "" {
				continue
			}

			candidates = append(candidates, candidate{address: v.Address, seed: submission.SeedRegions[i]})
		}
	}

	return candidates
}

// scoreSample draws up to MaxSamples addresses, scores them sequentially
// with pacing, and aggregates outcomes into the result.
func (g *Grader) scoreSample(ctx context.Context, candidates []candidate, result *Result) {
	n := g.MaxSamples
	if len(candidates) < n {
		n = len(candidates)
	}

	perm := g.Rand.Perm(len(candidates))

	for i := 0; i < n; i++ {
		if i > 0 {
			if err := sleepCtx(ctx, g.Delay); err != nil {
				break
			}
		}

		address := candidates[perm[i]].address
		score := g.Scorer.Score(ctx, address)

		result.Samples = append(result.Samples, Attempt{Address: address, Result: score})

		if score.Outcome == OutcomeTimeout {
			if err := sleepCtx(ctx, g.TimeoutDelay); err != nil {
				break
			}
		}
	}

	result.APIOutcome = aggregateOutcome(result.Samples)
	result.Score = aggregateScore(result.Samples)
}

// aggregateOutcome degrades the batch outcome: one failure marks the batch
// FAILED, else one timeout marks it TIMEOUT.
func aggregateOutcome(samples []Attempt) Outcome {
	outcome := OutcomeSuccess

	for _, s := range samples {
		switch s.Result.Outcome {
		case OutcomeFailure:
			return OutcomeFailure
		case OutcomeTimeout:
			outcome = OutcomeTimeout
		}
	}

	return outcome
}

// aggregateScore is the mean over samples that produced a positive score,
// or the fallback band when none did.
func aggregateScore(samples []Attempt) float64 {
	sum := 0.0
	usable := 0

	for _, s := range samples {
		if s.Result.Score > 0 {
			sum += s.Result.Score
			usable++
		}
	}

	if usable == 0 {
		return 0.3
	}

	return sum / float64(usable)
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(d):
		return nil
	}
}
