package render

import "github.com/charmbracelet/lipgloss"

var (
	colorBorder = lipgloss.Color("#30363d")
	colorText   = lipgloss.Color("#c9d1d9")
	colorMuted  = lipgloss.Color("#8b949e")
	colorAccent = lipgloss.Color("#58a6ff")
	colorShared = lipgloss.Color("#3fb950")
	colorWarn   = lipgloss.Color("#d29922")
)

var (
	header = lipgloss.NewStyle().
		Foreground(colorAccent).
		Bold(true)

	meta = lipgloss.NewStyle().
		Foreground(colorMuted)

	card = lipgloss.NewStyle().
		Foreground(colorText).
		BorderLeft(true).
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(colorBorder).
		PaddingLeft(1)

	cardShared = card.
			BorderStyle(lipgloss.ThickBorder()).
			BorderForeground(colorShared)

	title = lipgloss.NewStyle().
		Bold(true)

	badge = lipgloss.NewStyle().
		Foreground(colorMuted).
		MarginRight(1)

	story = lipgloss.NewStyle().
		Foreground(colorMuted).
		Italic(true)

	empty = lipgloss.NewStyle().
		Foreground(colorWarn)
)
