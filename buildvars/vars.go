// Copyright (c) 2026 Keymaster Team
// Keyvault - local secrets vault
// This source code is licensed under the MIT license found in the LICENSE file.

// Package buildvars contains variables injected at build time.
package buildvars

// Set at link time, e.g.
// -ldflags "-X github.com/toeirei/keyvault/buildvars.Version=1.2.3".
// They are empty for local or development builds.
var (
	Version   string
	GitCommit string
	BuildDate string
)

// VersionOrDefault returns `Version` if set, otherwise returns the provided default.
func VersionOrDefault(def string) string {
	if len(Version) > 0 {
		return Version
	}
	return def
}
