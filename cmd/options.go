// Copyright 2026 The addrgrade Authors
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"os"
	"time"

	_ "github.com/duckdb/duckdb-go/v2" // register duckdb driver
	"github.com/spf13/cobra"

	"github.com/smerlo/addrgrade/gazetteer"
	"github.com/smerlo/addrgrade/geocode"
)

// providerOptions are the flags shared by every command that talks to a
// geocoding provider.
type providerOptions struct {
	Provider            string
	BaseURL             string
	RequestsPerSecond   float64
	Timeout             time.Duration
	MaxAttempts         int
	CachePath           string
	NoCache             bool
	EnableHTTPTrace     bool
	EnableHTTPBodyTrace bool
}

type gazetteerOptions struct {
	CountriesPath string
	CitiesPath    string
}

func registerProviderFlags(cmd *cobra.Command, opts *providerOptions) {
	cmd.PersistentFlags().StringVar(
		&opts.Provider,
		"provider",
		"nominatim",
		"Geocoding provider to use: nominatim or google",
	)
	cmd.PersistentFlags().StringVar(
		&opts.BaseURL,
		"base-url",
		"",
		"Override the provider base URL (nominatim only)",
	)
	cmd.PersistentFlags().Float64Var(
		&opts.RequestsPerSecond,
		"rps",
		1,
		"Sustained request rate allowed against the provider",
	)
	cmd.PersistentFlags().DurationVar(
		&opts.Timeout,
		"timeout",
		4*time.Second,
		"Per-request timeout",
	)
	cmd.PersistentFlags().IntVar(
		&opts.MaxAttempts,
		"max-attempts",
		3,
		"Attempts per query; only timeouts and rate limits are retried",
	)
	cmd.PersistentFlags().StringVar(
		&opts.CachePath,
		"cache",
		"addrgrade.duckdb",
		"Path of the on-disk response cache",
	)
	cmd.PersistentFlags().BoolVar(
		&opts.NoCache,
		"no-cache",
		false,
		"Keep the response cache in memory only",
	)
	cmd.PersistentFlags().BoolVar(
		&opts.EnableHTTPTrace,
		"trace-http",
		false,
		"Display HTTP requests-responses",
	)
	cmd.PersistentFlags().BoolVar(
		&opts.EnableHTTPBodyTrace,
		"trace-http-body",
		false,
		"Display HTTP requests-responses bodies",
	)
}

func registerGazetteerFlags(cmd *cobra.Command, opts *gazetteerOptions) {
	cmd.PersistentFlags().StringVar(
		&opts.CountriesPath,
		"countries",
		"data/countryInfo.txt",
		"Geonames country info file",
	)
	cmd.PersistentFlags().StringVar(
		&opts.CitiesPath,
		"cities",
		"data/cities15000.txt",
		"Geonames cities file",
	)
}

func (o *gazetteerOptions) index() (*gazetteer.Index, error) {
	idx, err := gazetteer.LoadFiles(o.CountriesPath, o.CitiesPath)
	if err != nil {
		return nil, fmt.Errorf("loading gazetteer: %w", err)
	}

	return idx, nil
}

// searcher builds the configured provider. The returned close function
// releases the cache database when one was opened.
func (o *providerOptions) searcher(ctx context.Context) (geocode.Searcher, func(), error) {
	if o.Provider == "google" {
		apiKey := os.Getenv("GOOGLE_MAPS_API_KEY")
		if apiKey == "" {
			log.Println("GOOGLE_MAPS_API_KEY is not set. Attempting to retrieve via ADC...")

			var err error

			apiKey, err = geocode.APIKeyFromADC(ctx, "addrgrade Geocoding Key")
			if err != nil {
				return nil, nil, fmt.Errorf("retrieving API key via ADC: %w", err)
			}
		}

		cache, closeCache, err := o.cache()
		if err != nil {
			return nil, nil, err
		}

		// The Google path gets the same cost controls as the Nominatim
		// client carries internally.
		google := geocode.Throttle(geocode.NewGoogleGeocoder(apiKey), o.RequestsPerSecond, cache)

		return google, closeCache, nil
	}

	cache, closeCache, err := o.cache()
	if err != nil {
		return nil, nil, err
	}

	client := geocode.NewClient(&geocode.ClientOptions{
		BaseURL:             o.BaseURL,
		UserAgent:           fmt.Sprintf("addrgrade/%s (+https://github.com/smerlo/addrgrade)", Version),
		Timeout:             o.Timeout,
		RequestsPerSecond:   o.RequestsPerSecond,
		MaxAttempts:         o.MaxAttempts,
		EnableHTTPTrace:     o.EnableHTTPTrace,
		EnableHTTPBodyTrace: o.EnableHTTPBodyTrace,
	}, cache)

	return client, closeCache, nil
}

func (o *providerOptions) cache() (geocode.Cache, func(), error) {
	if o.NoCache {
		return geocode.NewMemoryCache(), func() {}, nil
	}

	db, err := sql.Open("duckdb", o.CachePath)
	if err != nil {
		return nil, nil, fmt.Errorf("opening cache database: %w", err)
	}

	cache := geocode.NewDBCache(db)
	if err := cache.CreateSchema(); err != nil {
		db.Close()

		return nil, nil, fmt.Errorf("creating cache schema: %w", err)
	}

	return cache, func() { db.Close() }, nil
}
