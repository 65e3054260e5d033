// Copyright (c) 2026 Keymaster Team
// Keyvault - local secrets vault
// This source code is licensed under the MIT license found in the LICENSE file.
//
// Package cli implements the keyvault command-line interface using Cobra.
// It loads configuration, opens the vault file and delegates every
// operation to the vault package. CLI code should remain thin: prompting,
// output and exit codes live here, cryptography and storage do not.
package cli
