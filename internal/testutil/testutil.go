// Copyright (c) 2026 Keymaster Team
// Keyvault - local secrets vault
// This source code is licensed under the MIT license found in the LICENSE file.

// Package testutil holds fakes shared by package tests.
package testutil

import (
	"errors"
	"sync"
	"time"

	"github.com/toeirei/keyvault/internal/prompt"
)

var _ prompt.Prompter = (*ScriptedPrompter)(nil)

// ErrScriptExhausted is returned when a fake runs out of scripted answers.
var ErrScriptExhausted = errors.New("testutil: no scripted answer left")

// ScriptedPrompter replays canned answers. Passwords, Lines and Confirms are
// consumed in order. Challenges are answered correctly when SolveChallenges
// is set and with a wrong value otherwise.
type ScriptedPrompter struct {
	mu sync.Mutex

	Passwords       []string
	Lines           []string
	Confirms        []bool
	SolveChallenges bool
	// Elapsed is reported for every password; zero means one second.
	Elapsed time.Duration

	// Prompts records every prompt shown, in order.
	Prompts []string
}

// ReadPassword pops the next scripted password.
func (s *ScriptedPrompter) ReadPassword(prompt string) (string, time.Duration, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Prompts = append(s.Prompts, prompt)
	if len(s.Passwords) == 0 {
		return "", 0, ErrScriptExhausted
	}
	pw := s.Passwords[0]
	s.Passwords = s.Passwords[1:]
	elapsed := s.Elapsed
	if elapsed == 0 {
		elapsed = time.Second
	}
	return pw, elapsed, nil
}

// ReadLine pops the next scripted line.
func (s *ScriptedPrompter) ReadLine(prompt string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Prompts = append(s.Prompts, prompt)
	if len(s.Lines) == 0 {
		return "", ErrScriptExhausted
	}
	l := s.Lines[0]
	s.Lines = s.Lines[1:]
	return l, nil
}

// Confirm pops the next scripted answer; an empty script answers no.
func (s *ScriptedPrompter) Confirm(question string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Prompts = append(s.Prompts, question)
	if len(s.Confirms) == 0 {
		return false, nil
	}
	c := s.Confirms[0]
	s.Confirms = s.Confirms[1:]
	return c, nil
}

// Challenge echoes code back when SolveChallenges is set.
func (s *ScriptedPrompter) Challenge(code string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Prompts = append(s.Prompts, code)
	if s.SolveChallenges {
		return code, nil
	}
	return code + "-wrong", nil
}

// FakeClipboard records clipboard writes in memory.
type FakeClipboard struct {
	mu     sync.Mutex
	Writes []string
	Err    error
}

// WriteAll records text as the clipboard content.
func (c *FakeClipboard) WriteAll(text string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.Err != nil {
		return c.Err
	}
	c.Writes = append(c.Writes, text)
	return nil
}

// Current returns the last written value.
func (c *FakeClipboard) Current() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.Writes) == 0 {
		return ""
	}
	return c.Writes[len(c.Writes)-1]
}
