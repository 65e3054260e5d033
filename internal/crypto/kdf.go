// Copyright (c) 2026 Keymaster Team
// Keyvault - local secrets vault
// This source code is licensed under the MIT license found in the LICENSE file.

// Package crypto implements the key derivation and authenticated encryption
// primitives used to protect the vault.
package crypto

import (
	"crypto/rand"
	"errors"
	"fmt"

	"golang.org/x/crypto/argon2"

	"github.com/toeirei/keyvault/internal/security"
)

// Argon2id parameters. These are part of the on-disk format: changing any of
// them makes existing vault files unreadable.
const (
	KDFTime    uint32 = 3
	KDFMemory  uint32 = 64 * 1024 // KiB, i.e. 64 MiB
	KDFThreads uint8  = 4
	KeySize           = 32
	SaltSize          = 16
)

var (
	// ErrDerivation is returned when the key derivation function cannot run,
	// typically because the working memory could not be allocated.
	ErrDerivation = errors.New("key derivation failed")
	// ErrInvalidSalt is returned for salts that are not SaltSize bytes long.
	ErrInvalidSalt = errors.New("invalid salt length")
)

// Overridable in tests.
var idKey = argon2.IDKey

// DeriveKey turns a password and salt into a KeySize-byte key using Argon2id.
// The call blocks for the full cost of the derivation.
func DeriveKey(password string, salt []byte) (key security.Secret, err error) {
	if len(salt) != SaltSize {
		return nil, fmt.Errorf("%w: got %d bytes, want %d", ErrInvalidSalt, len(salt), SaltSize)
	}

	// Only ordinary panics from the primitive end up here. The runtime
	// treats a failed allocation of the memory blocks as a fatal error
	// that no recover can catch, so out-of-memory still aborts the process.
	defer func() {
		if r := recover(); r != nil {
			key = nil
			err = fmt.Errorf("%w: %v", ErrDerivation, r)
		}
	}()

	pw := []byte(password)
	defer Zero(pw)

	return security.Secret(idKey(pw, salt, KDFTime, KDFMemory, KDFThreads, KeySize)), nil
}

// NewSalt returns SaltSize bytes from the system CSPRNG.
func NewSalt() ([]byte, error) {
	salt := make([]byte, SaltSize)
	if _, err := rand.Read(salt); err != nil {
		return nil, fmt.Errorf("generate salt: %w", err)
	}
	return salt, nil
}
