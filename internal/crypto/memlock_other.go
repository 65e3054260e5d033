// Copyright (c) 2026 Keymaster Team
// Keyvault - local secrets vault
// This source code is licensed under the MIT license found in the LICENSE file.

//go:build !(linux || darwin || freebsd || netbsd || openbsd)

package crypto

// LockMemory is a no-op on platforms without mlock.
func LockMemory(b []byte) error { return nil }

// UnlockMemory is a no-op on platforms without mlock.
func UnlockMemory(b []byte) error { return nil }

// DisableCoreDumps is a no-op on platforms without RLIMIT_CORE.
func DisableCoreDumps() error { return nil }
