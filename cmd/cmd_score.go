// Copyright 2026 The addrgrade Authors
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"encoding/json"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/smerlo/addrgrade/grading"
)

var scoreProvider = &providerOptions{}

var scoreCmd = &cobra.Command{
	Use:   "score <address>...",
	Short: "Geocode an address and report its precision score",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		searcher, closeCache, err := scoreProvider.searcher(cmd.Context())
		if err != nil {
			return err
		}
		defer closeCache()

		scorer := grading.NewPrecisionScorer(searcher)

		address := strings.Join(args, " ")
		result := scorer.Score(cmd.Context(), address)

		encoder := json.NewEncoder(os.Stdout)
		encoder.SetIndent("", "  ")

		return encoder.Encode(result)
	},
}

func init() {
	rootCmd.AddCommand(scoreCmd)
	registerProviderFlags(scoreCmd, scoreProvider)
}
