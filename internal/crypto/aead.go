// Copyright (c) 2026 Keymaster Team
// Keyvault - local secrets vault
// This source code is licensed under the MIT license found in the LICENSE file.

package crypto

import (
	"crypto/rand"
	"errors"
	"fmt"

	"golang.org/x/crypto/chacha20poly1305"
)

const (
	// NonceSize is the length of the random nonce prefixed to every bundle.
	NonceSize = chacha20poly1305.NonceSize
	// TagSize is the length of the Poly1305 authentication tag.
	TagSize = chacha20poly1305.Overhead
	// MinBundleSize is the length of a bundle holding an empty plaintext.
	MinBundleSize = NonceSize + TagSize
)

var (
	// ErrAuthentication is returned whenever a bundle fails to verify: wrong
	// key, tampered bytes or a truncated bundle. No plaintext is recovered.
	ErrAuthentication = errors.New("authentication failed")
	// ErrInvalidKey is returned for keys that are not KeySize bytes long.
	ErrInvalidKey = errors.New("invalid key length")
)

// Encrypt seals plaintext under key with ChaCha20-Poly1305 and returns
// nonce || ciphertext || tag. A fresh random nonce is drawn on every call.
func Encrypt(plaintext, key []byte) ([]byte, error) {
	aead, err := chacha20poly1305.New(key)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidKey, err)
	}

	out := make([]byte, NonceSize, NonceSize+len(plaintext)+TagSize)
	if _, err := rand.Read(out); err != nil {
		return nil, fmt.Errorf("generate nonce: %w", err)
	}
	return aead.Seal(out, out[:NonceSize], plaintext, nil), nil
}

// Decrypt opens a bundle produced by Encrypt. Any failure to verify,
// including a bundle too short to contain a nonce and tag, yields
// ErrAuthentication.
func Decrypt(bundle, key []byte) ([]byte, error) {
	if len(key) != KeySize {
		return nil, fmt.Errorf("%w: got %d bytes, want %d", ErrInvalidKey, len(key), KeySize)
	}
	if len(bundle) < MinBundleSize {
		return nil, ErrAuthentication
	}

	aead, err := chacha20poly1305.New(key)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidKey, err)
	}

	nonce, ciphertext := bundle[:NonceSize], bundle[NonceSize:]
	plaintext, err := aead.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return nil, ErrAuthentication
	}
	return plaintext, nil
}
