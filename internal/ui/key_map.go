package ui

import (
	"github.com/charmbracelet/bubbles/key"
)

// keyMap defines the key bindings for the TUI.
type keyMap struct {
	submit  key.Binding
	camera  key.Binding
	capture key.Binding
	notify  key.Binding
	restart key.Binding
	quit    key.Binding
}

func newKeyMap() keyMap {
	return keyMap{
		submit: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "submit"),
		),
		camera: key.NewBinding(
			key.WithKeys("tab"),
			key.WithHelp("tab", "toggle camera"),
		),
		capture: key.NewBinding(
			key.WithKeys(" "),
			key.WithHelp("space", "capture"),
		),
		notify: key.NewBinding(
			key.WithKeys("n"),
			key.WithHelp("n", "send notification"),
		),
		restart: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "new check"),
		),
		quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.submit, k.camera, k.capture},
		{k.notify, k.restart, k.quit},
	}
}
