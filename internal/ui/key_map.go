package ui

import "github.com/charmbracelet/bubbles/key"

// keyMap defines the [key.Binding] mapping for the control surface. Only
// non-printing keys are bound; printable characters always feed the query
// input.
type keyMap struct {
	up    key.Binding
	down  key.Binding
	enter key.Binding
	clear key.Binding
	quit  key.Binding
}

func newKeyMap() keyMap {
	return keyMap{
		up:    key.NewBinding(key.WithKeys("up"), key.WithHelp("↑", "up")),
		down:  key.NewBinding(key.WithKeys("down"), key.WithHelp("↓", "down")),
		enter: key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "run")),
		clear: key.NewBinding(key.WithKeys("ctrl+u"), key.WithHelp("ctrl+u", "clear")),
		quit:  key.NewBinding(key.WithKeys("esc", "ctrl+c"), key.WithHelp("esc", "quit")),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.enter, k.clear, k.quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.up, k.down},
		{k.enter, k.clear, k.quit},
	}
}
