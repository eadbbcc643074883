package widget

import "charm.land/bubbles/v2/key"

// KeyMap holds the widget's key bindings.
type KeyMap struct {
	Toggle key.Binding
	Close  key.Binding
	Submit key.Binding
	Export key.Binding
}

// DefaultKeyMap returns the default bindings.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Toggle: key.NewBinding(key.WithKeys("ctrl+o"), key.WithHelp("ctrl+o", "chat")),
		Close:  key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "close chat")),
		Submit: key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "send")),
		Export: key.NewBinding(key.WithKeys("ctrl+s"), key.WithHelp("ctrl+s", "export transcript")),
	}
}
