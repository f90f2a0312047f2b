// Copyright 2026 The addrgrade Authors
// SPDX-License-Identifier: Apache-2.0

package geocode

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"
)

// Cache stores successful provider responses keyed by canonicalized query.
// Entries are written once per key and never hold partial or error
// responses; the same query always yields the same cached value.
type Cache interface {
	Get(key string) ([]Match, bool)
	Put(key string, matches []Match) error
}

// MemoryCache is a process-lifetime in-memory cache.
type MemoryCache struct {
	mu      sync.RWMutex
	entries map[string][]Match
}

// NewMemoryCache creates an empty in-memory cache.
func NewMemoryCache() *MemoryCache {
	return &MemoryCache{entries: make(map[string][]Match)}
}

// Get returns the cached matches for a key.
func (c *MemoryCache) Get(key string) ([]Match, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	matches, ok := c.entries[key]

	return matches, ok
}

// Put stores matches for a key. The first write wins.
func (c *MemoryCache) Put(key string, matches []Match) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.entries[key]; ok {
		return nil
	}

	c.entries[key] = matches

	return nil
}

// Len returns the number of cached entries.
func (c *MemoryCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return len(c.entries)
}

// DBCache persists responses in a DuckDB table so a warm cache survives
// process restarts. Writes are insert-or-ignore, so concurrent processes
// sharing a database file converge on one value per key.
type DBCache struct {
	db *sql.DB
}

// NewDBCache wraps an open DuckDB handle.
func NewDBCache(db *sql.DB) *DBCache {
	return &DBCache{db: db}
}

// CreateSchema creates the cache table.
func (c *DBCache) CreateSchema() error {
	_, err := c.db.Exec(`
		CREATE TABLE IF NOT EXISTS geocode_cache (
			query VARCHAR PRIMARY KEY,
			response VARCHAR NOT NULL,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		);
	`)

	return err
}

// Get returns the cached matches for a key.
func (c *DBCache) Get(key string) ([]Match, bool) {
	var response string

	err := c.db.QueryRow(
		`SELECT response FROM geocode_cache WHERE query = ?`, key,
	).Scan(&response)
	if err != nil {
		return nil, false
	}

	var matches []Match
	if err := json.Unmarshal([]byte(response), &matches); err != nil {
		return nil, false
	}

	return matches, true
}

// Put stores matches for a key. Existing entries are left untouched.
func (c *DBCache) Put(key string, matches []Match) error {
	data, err := json.Marshal(matches)
	if err != nil {
		return fmt.Errorf("marshaling cache entry: %w", err)
	}

	_, err = c.db.Exec(
		`INSERT OR IGNORE INTO geocode_cache(query, response, created_at) VALUES (?, ?, ?)`,
		key, string(data), time.Now(),
	)
	if err != nil {
		return fmt.Errorf("storing cache entry: %w", err)
	}

	return nil
}

// Len returns the number of cached entries.
func (c *DBCache) Len() (int, error) {
	var count int

	err := c.db.QueryRow(`SELECT COUNT(*) FROM geocode_cache`).Scan(&count)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return 0, err
	}

	return count, nil
}
