package ui

import (
	"github.com/charmbracelet/bubbles/filepicker"
	"github.com/charmbracelet/lipgloss"

	"github.com/nconklindev/saidan/internal/settings"
)

type palette struct {
	accent  lipgloss.Color
	warm    lipgloss.Color
	text    lipgloss.Color
	muted   lipgloss.Color
	danger  lipgloss.Color
	cutLine lipgloss.Color
	removed lipgloss.Color
}

var palettes = map[settings.Theme]palette{
	settings.ThemeDark: {
		accent:  "#FF8C42",
		warm:    "#FFB84D",
		text:    "#FFFFFF",
		muted:   "#6B7280",
		danger:  "#FF4757",
		cutLine: "#FF4757",
		removed: "#4B5563",
	},
	settings.ThemeLight: {
		accent:  "#C2410C",
		warm:    "#B45309",
		text:    "#111827",
		muted:   "#6B7280",
		danger:  "#DC2626",
		cutLine: "#DC2626",
		removed: "#D1D5DB",
	},
}

// Styles is the resolved look for one concrete theme.
type Styles struct {
	Theme settings.Theme

	Title      lipgloss.Style
	Subtitle   lipgloss.Style
	Selected   lipgloss.Style
	Unselected lipgloss.Style
	Checked    lipgloss.Style
	Error      lipgloss.Style
	Success    lipgloss.Style
	Help       lipgloss.Style
	Box        lipgloss.Style

	Header  lipgloss.Style
	Cell    lipgloss.Style
	Cursor  lipgloss.Style
	Removed lipgloss.Style
	CutMark lipgloss.Style
	Border  lipgloss.Style

	accent lipgloss.Color
	warm   lipgloss.Color
	muted  lipgloss.Color
}

// NewStyles builds styles for light or dark. Any other theme is treated as
// dark.
func NewStyles(theme settings.Theme) Styles {
	p, ok := palettes[theme]
	if !ok {
		theme = settings.ThemeDark
		p = palettes[theme]
	}

	return Styles{
		Theme: theme,
		Title: lipgloss.NewStyle().
			Bold(true).
			Foreground(p.accent).
			MarginTop(1),
		Subtitle: lipgloss.NewStyle().
			Foreground(p.muted).
			MarginBottom(1),
		Selected: lipgloss.NewStyle().
			Foreground(p.accent).
			Bold(true),
		Unselected: lipgloss.NewStyle().
			Foreground(p.text),
		Checked: lipgloss.NewStyle().
			Foreground(p.warm).
			Bold(true),
		Error: lipgloss.NewStyle().
			Foreground(p.danger).
			Bold(true),
		Success: lipgloss.NewStyle().
			Foreground(p.warm).
			Bold(true),
		Help: lipgloss.NewStyle().
			Foreground(p.muted).
			MarginTop(1),
		Box: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(p.accent).
			Padding(1, 2),

		Header:  lipgloss.NewStyle().Foreground(p.accent).Bold(true),
		Cell:    lipgloss.NewStyle().Foreground(p.text),
		Cursor:  lipgloss.NewStyle().Foreground(p.warm).Bold(true).Underline(true),
		Removed: lipgloss.NewStyle().Foreground(p.removed).Strikethrough(true),
		CutMark: lipgloss.NewStyle().Foreground(p.cutLine).Bold(true),
		Border:  lipgloss.NewStyle().Foreground(p.muted),

		accent: p.accent,
		warm:   p.warm,
		muted:  p.muted,
	}
}

func (s Styles) applyFilePicker(fp *filepicker.Model) {
	p := palettes[s.Theme]
	fp.Styles.Cursor = lipgloss.NewStyle().Foreground(p.accent)
	fp.Styles.Symlink = lipgloss.NewStyle().Foreground(p.warm)
	fp.Styles.Directory = lipgloss.NewStyle().Foreground(p.warm)
	fp.Styles.File = lipgloss.NewStyle().Foreground(p.text)
	fp.Styles.Permission = lipgloss.NewStyle().Foreground(p.muted)
	fp.Styles.Selected = lipgloss.NewStyle().Foreground(p.accent).Bold(true)
	fp.Styles.FileSize = lipgloss.NewStyle().Foreground(p.muted)
}
