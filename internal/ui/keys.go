package ui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Left     key.Binding
	Right    key.Binding
	Up       key.Binding
	Down     key.Binding
	PageUp   key.Binding
	PageDown key.Binding
	Axis     key.Binding
	Toggle   key.Binding
	Invert   key.Binding
	Commit   key.Binding
	Split    key.Binding
	Unsplit  key.Binding
	Revert   key.Binding
	Reset    key.Binding
	Export   key.Binding
	Format   key.Binding
	Sound    key.Binding
	Theme    key.Binding
	Help     key.Binding
	Quit     key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Left: key.NewBinding(
			key.WithKeys("left", "h"),
			key.WithHelp("←/h", "prev column line"),
		),
		Right: key.NewBinding(
			key.WithKeys("right", "l"),
			key.WithHelp("→/l", "next column line"),
		),
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("↑/k", "prev row line"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("↓/j", "next row line"),
		),
		PageUp: key.NewBinding(
			key.WithKeys("pgup", "["),
			key.WithHelp("pgup/[", "show earlier rows"),
		),
		PageDown: key.NewBinding(
			key.WithKeys("pgdown", "]"),
			key.WithHelp("pgdn/]", "show later rows"),
		),
		Axis: key.NewBinding(
			key.WithKeys("tab"),
			key.WithHelp("tab", "rows/columns"),
		),
		Toggle: key.NewBinding(
			key.WithKeys(" "),
			key.WithHelp("space", "mark cut line"),
		),
		Invert: key.NewBinding(
			key.WithKeys("i"),
			key.WithHelp("i", "invert"),
		),
		Commit: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "cut"),
		),
		Split: key.NewBinding(
			key.WithKeys("x"),
			key.WithHelp("x", "split"),
		),
		Unsplit: key.NewBinding(
			key.WithKeys("X"),
			key.WithHelp("X", "clear split"),
		),
		Revert: key.NewBinding(
			key.WithKeys("u"),
			key.WithHelp("u", "revert"),
		),
		Reset: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "new file"),
		),
		Export: key.NewBinding(
			key.WithKeys("d"),
			key.WithHelp("d", "download"),
		),
		Format: key.NewBinding(
			key.WithKeys("f"),
			key.WithHelp("f", "csv/xlsx"),
		),
		Sound: key.NewBinding(
			key.WithKeys("s"),
			key.WithHelp("s", "sound"),
		),
		Theme: key.NewBinding(
			key.WithKeys("t"),
			key.WithHelp("t", "theme"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "more keys"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Axis, k.Toggle, k.Commit, k.Split, k.Export, k.Help, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Left, k.Right, k.Up, k.Down, k.PageUp, k.PageDown},
		{k.Axis, k.Toggle, k.Invert, k.Commit},
		{k.Split, k.Unsplit, k.Revert, k.Reset},
		{k.Export, k.Format, k.Sound, k.Theme},
		{k.Help, k.Quit},
	}
}
