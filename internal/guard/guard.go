// Copyright (c) 2026 Keymaster Team
// Keyvault - local secrets vault
// This source code is licensed under the MIT license found in the LICENSE file.

// Package guard implements lightweight heuristics that make scripted
// password guessing against the vault inconvenient. They are advisory: a
// determined attacker with local code execution can bypass them, and the
// memory-hard key derivation remains the actual brute-force barrier.
package guard

import (
	"crypto/rand"
	"math/big"
	"time"
	"unicode/utf8"
)

// DefaultThreshold is the minimum time a human needs to type a password
// longer than MinCheckedLength characters.
const DefaultThreshold = 50 * time.Millisecond

// MinCheckedLength is the length at or below which typing speed is not
// checked. Short inputs can legitimately be entered very quickly.
const MinCheckedLength = 5

// DefaultChallengeLength is the length of the confirmation challenge used
// by the CLI for destructive or first-time operations.
const DefaultChallengeLength = 6

const challengeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"

// LineReader shows a prompt and returns the line the user typed.
type LineReader interface {
	ReadLine(prompt string) (string, error)
}

// LineReaderFunc adapts a function to LineReader.
type LineReaderFunc func(prompt string) (string, error)

// ReadLine calls f(prompt).
func (f LineReaderFunc) ReadLine(prompt string) (string, error) { return f(prompt) }

// Guard bundles the typing-speed threshold and an optional confirmation
// challenge. The zero value checks typing speed against DefaultThreshold and
// performs no challenge.
type Guard struct {
	Threshold time.Duration

	// Challenger, when non-nil, is asked to retype a random string of
	// ChallengeLength characters before a password is accepted.
	Challenger      LineReader
	ChallengeLength int
}

// New returns a Guard using the given threshold. A non-positive threshold
// selects DefaultThreshold.
func New(threshold time.Duration) *Guard {
	if threshold <= 0 {
		threshold = DefaultThreshold
	}
	return &Guard{Threshold: threshold}
}

// WithChallenge enables the random confirmation challenge on g.
func (g *Guard) WithChallenge(r LineReader, length int) *Guard {
	g.Challenger = r
	g.ChallengeLength = length
	return g
}

func (g *Guard) threshold() time.Duration {
	if g == nil || g.Threshold <= 0 {
		return DefaultThreshold
	}
	return g.Threshold
}

// CheckTypingSpeed reports whether text could plausibly have been typed by a
// human in elapsed. It returns false only when text is longer than
// MinCheckedLength runes and was submitted faster than the threshold.
func (g *Guard) CheckTypingSpeed(text string, elapsed time.Duration) bool {
	if utf8.RuneCountInString(text) > MinCheckedLength && elapsed < g.threshold() {
		return false
	}
	return true
}

// CheckTypingSpeed applies the default threshold.
func CheckTypingSpeed(text string, elapsed time.Duration) bool {
	return (*Guard)(nil).CheckTypingSpeed(text, elapsed)
}

// Allow runs every configured check for a password that took elapsed to
// enter. A read error from the challenger counts as a failed challenge.
func (g *Guard) Allow(password string, elapsed time.Duration) bool {
	if !g.CheckTypingSpeed(password, elapsed) {
		return false
	}
	if g == nil || g.Challenger == nil {
		return true
	}
	return RandomConfirmationChallenge(g.Challenger, g.ChallengeLength)
}

// RandomConfirmationChallenge shows a random alphanumeric string of the
// given length through r and reports whether the user retyped it exactly.
// The comparison is case-sensitive. A length below 1 is treated as 1.
func RandomConfirmationChallenge(r LineReader, length int) bool {
	challenge, err := NewChallenge(length)
	if err != nil {
		return false
	}
	answer, err := r.ReadLine(challenge)
	if err != nil {
		return false
	}
	return answer == challenge
}

// NewChallenge returns a random alphanumeric string drawn from crypto/rand.
func NewChallenge(length int) (string, error) {
	if length < 1 {
		length = 1
	}
	max := big.NewInt(int64(len(challengeAlphabet)))
	out := make([]byte, length)
	for i := range out {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", err
		}
		out[i] = challengeAlphabet[n.Int64()]
	}
	return string(out), nil
}
