// Copyright 2026 The addrgrade Authors
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"encoding/json"
	"fmt"
	"math/rand"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/smerlo/addrgrade/grading"
)

var (
	gradeProvider  = &providerOptions{}
	gradeGazetteer = &gazetteerOptions{}
	gradeSeed      int64
)

var gradeCmd = &cobra.Command{
	Use:   "grade <submission.json>...",
	Short: "Grade one or more submission files",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		idx, err := gradeGazetteer.index()
		if err != nil {
			return err
		}

		searcher, closeCache, err := gradeProvider.searcher(cmd.Context())
		if err != nil {
			return err
		}
		defer closeCache()

		grader := grading.NewGrader(idx, searcher, rngFromSeed(gradeSeed))

		var bar *progressbar.ProgressBar
		if isatty.IsTerminal(os.Stderr.Fd()) && len(args) > 1 {
			bar = progressbar.NewOptions(len(args),
				progressbar.OptionSetDescription("Grading"),
				progressbar.OptionSetWriter(os.Stderr),
				progressbar.OptionShowCount(),
				progressbar.OptionClearOnFinish(),
			)
		}

		encoder := json.NewEncoder(os.Stdout)
		encoder.SetIndent("", "  ")

		for _, path := range args {
			submission, err := readSubmission(path)
			if err != nil {
				return err
			}

			result := grader.Grade(cmd.Context(), *submission, path)

			if err := encoder.Encode(map[string]any{"file": path, "result": result}); err != nil {
				return err
			}

			if bar != nil {
				_ = bar.Add(1)
			}
		}

		return nil
	},
}

// rngFromSeed returns nil for seed 0, letting the grader pick a
// time-based source.
func rngFromSeed(seed int64) *rand.Rand {
	if seed == 0 {
		return nil
	}

	return rand.New(rand.NewSource(seed))
}

func readSubmission(path string) (*grading.Submission, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading submission: %w", err)
	}

	var submission grading.Submission
	if err := json.Unmarshal(data, &submission); err != nil {
		return nil, fmt.Errorf("parsing submission %s: %w", path, err)
	}

	return &submission, nil
}

func init() {
	rootCmd.AddCommand(gradeCmd)
	registerProviderFlags(gradeCmd, gradeProvider)
	registerGazetteerFlags(gradeCmd, gradeGazetteer)
	gradeCmd.PersistentFlags().Int64Var(
		&gradeSeed,
		"sample-seed",
		0,
		"Seed for the sampling RNG; 0 uses the current time",
	)
}
