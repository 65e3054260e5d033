// Copyright (c) 2026 Keymaster Team
// Keyvault - local secrets vault
// This source code is licensed under the MIT license found in the LICENSE file.

// Command-line entrypoint for Keyvault.
//
// Usage:
//
//	go run . [command] [flags]
//	./keyvault [command] [flags]
//
// See --help for the available commands.
package main

import (
	"fmt"
	"os"

	"github.com/toeirei/keyvault/ui/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(cli.ExitCode(err))
	}
}
