// Copyright 2026 The addrgrade Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"github.com/smerlo/addrgrade/cmd"
)

var Version = "development"

func main() {
	cmd.Execute(Version)
}
