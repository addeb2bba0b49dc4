package tui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Up           key.Binding
	Down         key.Binding
	PageUp       key.Binding
	PageDown     key.Binding
	Home         key.Binding
	End          key.Binding
	Toggle       key.Binding
	Start        key.Binding
	Stop         key.Binding
	Restart      key.Binding
	GroupAction  key.Binding
	StartAll     key.Binding
	StopAll      key.Binding
	Exclude      key.Binding
	Dismiss      key.Binding
	Banner       key.Binding
	Search       key.Binding
	Selector     key.Binding
	GroupBy      key.Binding
	Refresh      key.Binding
	Blur         key.Binding
	Quit         key.Binding
	selectorBack key.Binding
}

func defaultKeys() keyMap {
	return keyMap{
		Up:           key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
		Down:         key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
		PageUp:       key.NewBinding(key.WithKeys("pgup", "ctrl+u"), key.WithHelp("pgup", "page up")),
		PageDown:     key.NewBinding(key.WithKeys("pgdown", "ctrl+d"), key.WithHelp("pgdn", "page down")),
		Home:         key.NewBinding(key.WithKeys("home", "g"), key.WithHelp("g", "top")),
		End:          key.NewBinding(key.WithKeys("end", "G"), key.WithHelp("G", "bottom")),
		Toggle:       key.NewBinding(key.WithKeys("enter", " "), key.WithHelp("enter", "expand/collapse")),
		Start:        key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "start")),
		Stop:         key.NewBinding(key.WithKeys("x"), key.WithHelp("x", "stop")),
		Restart:      key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "restart")),
		GroupAction:  key.NewBinding(key.WithKeys("p"), key.WithHelp("p", "group start/stop")),
		StartAll:     key.NewBinding(key.WithKeys("S"), key.WithHelp("S", "start all")),
		StopAll:      key.NewBinding(key.WithKeys("X"), key.WithHelp("X", "stop all")),
		Exclude:      key.NewBinding(key.WithKeys("e"), key.WithHelp("e", "exclude")),
		Dismiss:      key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "dismiss error")),
		Banner:       key.NewBinding(key.WithKeys("D"), key.WithHelp("D", "dismiss banner")),
		Search:       key.NewBinding(key.WithKeys("/"), key.WithHelp("/", "search")),
		Selector:     key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "filter")),
		selectorBack: key.NewBinding(key.WithKeys("shift+tab")),
		GroupBy:      key.NewBinding(key.WithKeys("c"), key.WithHelp("c", "type/category")),
		Refresh:      key.NewBinding(key.WithKeys("ctrl+r", "f5"), key.WithHelp("ctrl+r", "refresh")),
		Blur:         key.NewBinding(key.WithKeys("esc", "enter"), key.WithHelp("esc", "done")),
		Quit:         key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

// ShortHelp implements help.KeyMap.
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Start, k.Stop, k.Restart, k.Toggle, k.Search, k.Selector, k.Refresh, k.Quit}
}

// FullHelp implements help.KeyMap.
func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.PageUp, k.PageDown, k.Home, k.End},
		{k.Start, k.Stop, k.Restart, k.Dismiss, k.Exclude},
		{k.Toggle, k.GroupAction, k.StartAll, k.StopAll, k.GroupBy},
		{k.Search, k.Selector, k.Refresh, k.Banner, k.Quit},
	}
}
