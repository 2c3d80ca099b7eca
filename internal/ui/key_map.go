package ui

import "github.com/charmbracelet/bubbles/key"

// keyMap defines the [key.Binding] mapping for the TUI.
type keyMap struct {
	up          key.Binding
	down        key.Binding
	left        key.Binding
	right       key.Binding
	enter       key.Binding
	back        key.Binding
	yes         key.Binding
	no          key.Binding
	movies      key.Binding
	tickets     key.Binding
	projections key.Binding
	refresh     key.Binding
	quit        key.Binding
}

func newKeyMap() keyMap {
	return keyMap{
		up:          key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
		down:        key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
		left:        key.NewBinding(key.WithKeys("left", "h"), key.WithHelp("←/h", "prev")),
		right:       key.NewBinding(key.WithKeys("right", "l"), key.WithHelp("→/l", "next")),
		enter:       key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "select")),
		back:        key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "back")),
		yes:         key.NewBinding(key.WithKeys("y"), key.WithHelp("y", "buy")),
		no:          key.NewBinding(key.WithKeys("n"), key.WithHelp("n", "cancel")),
		movies:      key.NewBinding(key.WithKeys("m"), key.WithHelp("m", "movies")),
		tickets:     key.NewBinding(key.WithKeys("t"), key.WithHelp("t", "my tickets")),
		projections: key.NewBinding(key.WithKeys("p"), key.WithHelp("p", "projections")),
		refresh:     key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "refresh")),
		quit:        key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.up, k.down, k.left, k.right, k.enter},
		{k.back, k.yes, k.no},
		{k.movies, k.tickets, k.projections, k.refresh, k.quit},
	}
}
