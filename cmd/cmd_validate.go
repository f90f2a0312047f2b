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

var (
	validateGazetteer = &gazetteerOptions{}
	validateSeed      string
)

var validateCmd = &cobra.Command{
	Use:   "validate <address>...",
	Short: "Run the format and region checks on a single address",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(_ *cobra.Command, args []string) error {
		idx, err := validateGazetteer.index()
		if err != nil {
			return err
		}

		address := strings.Join(args, " ")

		out := map[string]any{
			"plausible": grading.PlausibleFormat(address),
		}

		if validateSeed != "" {
			match := grading.MatchRegion(idx, address, validateSeed)
			out["city"] = match.City
			out["country"] = match.Country
			out["matched"] = match.Matched
			out["basis"] = match.Basis
		}

		encoder := json.NewEncoder(os.Stdout)
		encoder.SetIndent("", "  ")

		return encoder.Encode(out)
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
	registerGazetteerFlags(validateCmd, validateGazetteer)
	validateCmd.PersistentFlags().StringVar(
		&validateSeed,
		"seed",
		"",
		"Claimed seed region to match the address against",
	)
}
