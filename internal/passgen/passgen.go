// Copyright (c) 2026 Keymaster Team
// Keyvault - local secrets vault
// This source code is licensed under the MIT license found in the LICENSE file.

// Package passgen generates random secrets for new credentials.
package passgen

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"strings"
)

const (
	DefaultLength = 20
	MinLength     = 8

	lower  = "abcdefghijklmnopqrstuvwxyz"
	upper  = "ABCDEFGHIJKLMNOPQRSTUVWXYZ"
	digits = "0123456789"
	punct  = "!@#$%^&*()-_=+[]{}"
)

const alphabet = lower + upper + digits + punct

// Generate returns a random secret of the given length drawn from letters,
// digits and punctuation. The result contains at least one character of
// each class. Lengths below MinLength are rejected; zero selects
// DefaultLength.
func Generate(length int) (string, error) {
	if length == 0 {
		length = DefaultLength
	}
	if length < MinLength {
		return "", fmt.Errorf("password length %d is below the minimum of %d", length, MinLength)
	}

	for {
		out := make([]byte, length)
		for i := range out {
			c, err := pick(alphabet)
			if err != nil {
				return "", err
			}
			out[i] = c
		}
		s := string(out)
		if hasEveryClass(s) {
			return s, nil
		}
	}
}

func pick(set string) (byte, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(int64(len(set))))
	if err != nil {
		return 0, fmt.Errorf("read random: %w", err)
	}
	return set[n.Int64()], nil
}

func hasEveryClass(s string) bool {
	for _, class := range []string{lower, upper, digits, punct} {
		if !strings.ContainsAny(s, class) {
			return false
		}
	}
	return true
}
