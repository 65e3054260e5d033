// Copyright (c) 2026 Keymaster Team
// Keyvault - local secrets vault
// This source code is licensed under the MIT license found in the LICENSE file.

package guard

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// echoReader answers every challenge with a transformation of the prompt.
type echoReader struct {
	answer  func(prompt string) string
	err     error
	prompts []string
}

func (e *echoReader) ReadLine(prompt string) (string, error) {
	e.prompts = append(e.prompts, prompt)
	if e.err != nil {
		return "", e.err
	}
	return e.answer(prompt), nil
}

func TestCheckTypingSpeed(t *testing.T) {
	cases := []struct {
		name    string
		text    string
		elapsed time.Duration
		want    bool
	}{
		{"long and fast", "longpassword123", 10 * time.Millisecond, false},
		{"long and slow", "longpassword123", 2 * time.Second, true},
		{"short and fast", "abcde", time.Millisecond, true},
		{"six runes fast", "abcdef", time.Millisecond, false},
		{"exactly threshold", "longpassword123", DefaultThreshold, true},
		{"multibyte counted as runes", "äöüäö", time.Millisecond, true},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			assert.Equal(t, c.want, CheckTypingSpeed(c.text, c.elapsed))
		})
	}
}

func TestGuard_CustomThreshold(t *testing.T) {
	g := New(time.Second)
	assert.False(t, g.CheckTypingSpeed("longpassword123", 500*time.Millisecond))
	assert.True(t, g.CheckTypingSpeed("longpassword123", 2*time.Second))

	assert.Equal(t, DefaultThreshold, New(0).Threshold)
}

func TestRandomConfirmationChallenge_ExactMatch(t *testing.T) {
	r := &echoReader{answer: func(p string) string { return p }}
	assert.True(t, RandomConfirmationChallenge(r, 8))
	require.Len(t, r.prompts, 1)
	assert.Len(t, r.prompts[0], 8)
}

func TestRandomConfirmationChallenge_CaseSensitive(t *testing.T) {
	// Swapping case of every letter never matches unless the challenge is
	// all digits, which is vanishingly unlikely at length 32.
	r := &echoReader{answer: func(p string) string {
		return strings.Map(func(c rune) rune {
			switch {
			case c >= 'a' && c <= 'z':
				return c - 32
			case c >= 'A' && c <= 'Z':
				return c + 32
			}
			return c
		}, p)
	}}
	assert.False(t, RandomConfirmationChallenge(r, 32))
}

func TestRandomConfirmationChallenge_WrongAndError(t *testing.T) {
	assert.False(t, RandomConfirmationChallenge(&echoReader{answer: func(p string) string { return p + "x" }}, 6))
	assert.False(t, RandomConfirmationChallenge(&echoReader{err: errors.New("eof")}, 6))
}

func TestNewChallenge(t *testing.T) {
	c, err := NewChallenge(0)
	require.NoError(t, err)
	assert.Len(t, c, 1)

	c, err = NewChallenge(64)
	require.NoError(t, err)
	assert.Len(t, c, 64)
	for _, r := range c {
		assert.True(t, strings.ContainsRune(challengeAlphabet, r), "unexpected rune %q", r)
	}
}

func TestGuard_Allow(t *testing.T) {
	g := New(DefaultThreshold)
	assert.False(t, g.Allow("longpassword123", time.Millisecond))
	assert.True(t, g.Allow("longpassword123", time.Second))

	r := &echoReader{answer: func(p string) string { return "nope" }}
	g.WithChallenge(r, DefaultChallengeLength)
	assert.False(t, g.Allow("longpassword123", time.Second))
	require.Len(t, r.prompts, 1)

	// The challenge is skipped when the typing check already failed.
	assert.False(t, g.Allow("longpassword123", time.Millisecond))
	assert.Len(t, r.prompts, 1)

	r.answer = func(p string) string { return p }
	assert.True(t, g.Allow("longpassword123", time.Second))
}

func TestLineReaderFunc(t *testing.T) {
	var seen string
	r := LineReaderFunc(func(p string) (string, error) {
		seen = p
		return p, nil
	})
	assert.True(t, RandomConfirmationChallenge(r, 4))
	assert.Len(t, seen, 4)
}
