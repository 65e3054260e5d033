// Copyright (c) 2026 Keymaster Team
// Keyvault - local secrets vault
// This source code is licensed under the MIT license found in the LICENSE file.

// Package prompt reads passwords, lines and confirmations from the user.
// On a terminal it uses a masked bubbletea text input; otherwise it reads
// newline-terminated lines from the input stream.
package prompt

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"golang.org/x/term"

	"github.com/toeirei/keyvault/internal/i18n"
)

// ErrCancelled is returned when the user aborts a prompt with Esc or Ctrl-C.
var ErrCancelled = errors.New("prompt cancelled")

// Prompter is the interaction surface used by the CLI.
type Prompter interface {
	// ReadPassword reads a secret without echoing it and reports how long
	// passed between showing the prompt and the submission.
	ReadPassword(prompt string) (string, time.Duration, error)
	// ReadLine reads one visible line.
	ReadLine(prompt string) (string, error)
	// Confirm asks a yes/no question; anything but an explicit yes is no.
	Confirm(question string) (bool, error)
	// Challenge shows code and returns what the user typed back.
	Challenge(code string) (string, error)
}

// Terminal is the Prompter for a real process. Prompts go to Out.
type Terminal struct {
	In  io.Reader
	Out io.Writer

	interactive bool
	reader      *bufio.Reader
}

// NewTerminal returns a Terminal reading from in and writing to out. The
// masked input is used only when in is a terminal.
func NewTerminal(in io.Reader, out io.Writer) *Terminal {
	t := &Terminal{In: in, Out: out}
	if f, ok := in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		t.interactive = true
	}
	return t
}

func (t *Terminal) lineReader() *bufio.Reader {
	if t.reader == nil {
		t.reader = bufio.NewReader(t.In)
	}
	return t.reader
}

func (t *Terminal) readPlainLine(prompt string) (string, error) {
	_, _ = fmt.Fprint(t.Out, prompt)
	line, err := t.lineReader().ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}

// ReadPassword implements Prompter.
func (t *Terminal) ReadPassword(prompt string) (string, time.Duration, error) {
	start := time.Now()
	if t.interactive {
		v, err := runInput(t.In, t.Out, prompt, true)
		return v, time.Since(start), err
	}
	v, err := t.readPlainLine(prompt)
	return v, time.Since(start), err
}

// ReadLine implements Prompter.
func (t *Terminal) ReadLine(prompt string) (string, error) {
	if t.interactive {
		return runInput(t.In, t.Out, prompt, false)
	}
	return t.readPlainLine(prompt)
}

// Confirm implements Prompter.
func (t *Terminal) Confirm(question string) (bool, error) {
	answer, err := t.ReadLine(i18n.T("prompt.yes_no", question))
	if err != nil {
		if errors.Is(err, ErrCancelled) {
			return false, nil
		}
		return false, err
	}
	return IsYes(answer), nil
}

// Challenge implements Prompter.
func (t *Terminal) Challenge(code string) (string, error) {
	return t.ReadLine(i18n.T("prompt.challenge", code))
}

// IsYes reports whether answer is an affirmative reply in any supported
// language.
func IsYes(answer string) bool {
	switch strings.ToLower(strings.TrimSpace(answer)) {
	case "y", "yes", "j", "ja":
		return true
	}
	return false
}
