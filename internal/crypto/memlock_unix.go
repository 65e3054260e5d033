// Copyright (c) 2026 Keymaster Team
// Keyvault - local secrets vault
// This source code is licensed under the MIT license found in the LICENSE file.

//go:build linux || darwin || freebsd || netbsd || openbsd

package crypto

import "golang.org/x/sys/unix"

// LockMemory pins b in RAM so the kernel does not swap it out. It fails
// without side effects when RLIMIT_MEMLOCK is exhausted; callers treat that
// as best effort.
func LockMemory(b []byte) error {
	if len(b) == 0 {
		return nil
	}
	return unix.Mlock(b)
}

// UnlockMemory releases a region pinned with LockMemory.
func UnlockMemory(b []byte) error {
	if len(b) == 0 {
		return nil
	}
	return unix.Munlock(b)
}

// DisableCoreDumps sets RLIMIT_CORE to zero for the current process so a
// crash cannot write key material to disk.
func DisableCoreDumps() error {
	return unix.Setrlimit(unix.RLIMIT_CORE, &unix.Rlimit{Cur: 0, Max: 0})
}
