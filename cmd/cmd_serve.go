// Copyright 2026 The addrgrade Authors
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"github.com/spf13/cobra"

	"github.com/smerlo/addrgrade/grading"
)

var (
	serveProvider  = &providerOptions{}
	serveGazetteer = &gazetteerOptions{}
	serveListen    string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the validation pipeline over HTTP",
	RunE: func(cmd *cobra.Command, _ []string) error {
		idx, err := serveGazetteer.index()
		if err != nil {
			return err
		}

		searcher, closeCache, err := serveProvider.searcher(cmd.Context())
		if err != nil {
			return err
		}
		defer closeCache()

		return grading.NewServer(idx, searcher).Run(serveListen)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	registerProviderFlags(serveCmd, serveProvider)
	registerGazetteerFlags(serveCmd, serveGazetteer)
	serveCmd.PersistentFlags().StringVar(
		&serveListen,
		"listen",
		"localhost:8080",
		"Address to listen on",
	)
}
