package tui

import "github.com/charmbracelet/bubbles/key"

// GlobalKeys are always active.
type GlobalKeys struct {
	Quit    key.Binding
	Tab     key.Binding
	Tab1    key.Binding
	Tab2    key.Binding
	Tab3    key.Binding
	Up      key.Binding
	Down    key.Binding
	Refresh key.Binding
	Restart key.Binding
	Stop    key.Binding
}

var globalKeys = GlobalKeys{
	Quit: key.NewBinding(
		key.WithKeys("q", "ctrl+c"),
		key.WithHelp("q", "quit"),
	),
	Tab: key.NewBinding(
		key.WithKeys("tab"),
		key.WithHelp("Tab", "next tab"),
	),
	Tab1: key.NewBinding(
		key.WithKeys("1"),
		key.WithHelp("1", "Monitor"),
	),
	Tab2: key.NewBinding(
		key.WithKeys("2"),
		key.WithHelp("2", "Alerts"),
	),
	Tab3: key.NewBinding(
		key.WithKeys("3"),
		key.WithHelp("3", "Whitelist"),
	),
	Up: key.NewBinding(
		key.WithKeys("up", "k"),
		key.WithHelp("j/k", "navigate"),
	),
	Down: key.NewBinding(
		key.WithKeys("down", "j"),
		key.WithHelp("j/k", "navigate"),
	),
	Refresh: key.NewBinding(
		key.WithKeys("r"),
		key.WithHelp("r", "refresh"),
	),
	Restart: key.NewBinding(
		key.WithKeys("R"),
		key.WithHelp("R", "restart daemon"),
	),
	Stop: key.NewBinding(
		key.WithKeys("S"),
		key.WithHelp("S", "stop daemon"),
	),
}

// ProcessKeys are active on the Monitor tab.
type ProcessKeys struct {
	Term      key.Binding
	Kill      key.Binding
	Pause     key.Binding
	Resume    key.Binding
	Whitelist key.Binding
}

var processKeys = ProcessKeys{
	Term: key.NewBinding(
		key.WithKeys("t"),
		key.WithHelp("t", "terminate"),
	),
	Kill: key.NewBinding(
		key.WithKeys("K"),
		key.WithHelp("K", "kill"),
	),
	Pause: key.NewBinding(
		key.WithKeys("p"),
		key.WithHelp("p", "pause"),
	),
	Resume: key.NewBinding(
		key.WithKeys("c"),
		key.WithHelp("c", "continue"),
	),
	Whitelist: key.NewBinding(
		key.WithKeys("w"),
		key.WithHelp("w", "whitelist"),
	),
}

// WhitelistKeys are active on the Whitelist tab.
type WhitelistKeys struct {
	Remove key.Binding
}

var whitelistKeys = WhitelistKeys{
	Remove: key.NewBinding(
		key.WithKeys("x"),
		key.WithHelp("x", "remove"),
	),
}
