// Copyright 2026 The addrgrade Authors
// SPDX-License-Identifier: Apache-2.0

package geocode

import (
	"context"

	"golang.org/x/time/rate"
)

// throttledSearcher applies the cost controls the Nominatim client carries
// internally to any other provider: a token-bucket rate limiter and an
// optional response cache keyed by canonicalized query.
type throttledSearcher struct {
	inner   Searcher
	limiter *rate.Limiter
	cache   Cache
}

// Throttle wraps a Searcher with a rate limiter and an optional cache.
// cache may be nil to disable caching.
func Throttle(inner Searcher, requestsPerSecond float64, cache Cache) Searcher {
	if requestsPerSecond <= 0 {
		requestsPerSecond = 1
	}

	return &throttledSearcher{
		inner:   inner,
		limiter: rate.NewLimiter(rate.Limit(requestsPerSecond), 1),
		cache:   cache,
	}
}

// Search implements Searcher. Cache hits return without touching the
// limiter or the wrapped provider; only successful responses are stored.
func (t *throttledSearcher) Search(ctx context.Context, query string) ([]Match, error) {
	key := CanonicalKey(query)

	if t.cache != nil {
		if matches, ok := t.cache.Get(key); ok {
			return matches, nil
		}
	}

	if err := t.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	matches, err := t.inner.Search(ctx, query)
	if err != nil {
		return nil, err
	}

	if t.cache != nil {
		if cacheErr := t.cache.Put(key, matches); cacheErr != nil {
			// A broken cache must not take down a successful lookup.
			return matches, nil
		}
	}

	return matches, nil
}
