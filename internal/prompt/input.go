// Copyright (c) 2026 Keymaster Team
// Keyvault - local secrets vault
// This source code is licensed under the MIT license found in the LICENSE file.

package prompt

import (
	"io"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

var promptStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("205")).Bold(true)

type inputKeyMap struct {
	Submit key.Binding
	Cancel key.Binding
}

var defaultKeyMap = inputKeyMap{
	Submit: key.NewBinding(key.WithKeys("enter")),
	Cancel: key.NewBinding(key.WithKeys("esc", "ctrl+c")),
}

// inputModel is a single-line bubbletea prompt.
type inputModel struct {
	input     textinput.Model
	keys      inputKeyMap
	submitted bool
	cancelled bool
}

func newInputModel(prompt string, masked bool) inputModel {
	ti := textinput.New()
	ti.Prompt = promptStyle.Render(prompt)
	ti.CharLimit = 4096
	if masked {
		ti.EchoMode = textinput.EchoPassword
		ti.EchoCharacter = '•'
	}
	ti.Focus()
	return inputModel{input: ti, keys: defaultKeyMap}
}

func (m inputModel) Init() tea.Cmd {
	return textinput.Blink
}

func (m inputModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch {
		case key.Matches(msg, m.keys.Submit):
			m.submitted = true
			return m, tea.Quit
		case key.Matches(msg, m.keys.Cancel):
			m.cancelled = true
			return m, tea.Quit
		}
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m inputModel) View() string {
	if m.submitted || m.cancelled {
		return ""
	}
	return m.input.View() + "\n"
}

// Value returns the typed text, or "" when the prompt was cancelled.
func (m inputModel) Value() string {
	if m.cancelled {
		return ""
	}
	return m.input.Value()
}

func runInput(in io.Reader, out io.Writer, prompt string, masked bool) (string, error) {
	p := tea.NewProgram(newInputModel(prompt, masked), tea.WithInput(in), tea.WithOutput(out))
	final, err := p.Run()
	if err != nil {
		return "", err
	}
	m := final.(inputModel)
	if m.cancelled {
		return "", ErrCancelled
	}
	return m.Value(), nil
}
