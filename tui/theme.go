package tui

import "github.com/charmbracelet/lipgloss"

type theme struct {
	root        lipgloss.Style
	header      lipgloss.Style
	tabActive   lipgloss.Style
	tabInactive lipgloss.Style
	tabDisabled lipgloss.Style
	panel       lipgloss.Style
	title       lipgloss.Style
	text        lipgloss.Style
	muted       lipgloss.Style
	success     lipgloss.Style
	errorText   lipgloss.Style
	button      lipgloss.Style
	buttonOff   lipgloss.Style
	raw         lipgloss.Style
	footer      lipgloss.Style
}

func newTheme() theme {
	green := lipgloss.Color("#0dbd8b")
	blue := lipgloss.Color("#368bd6")
	red := lipgloss.Color("#ff4b55")
	text := lipgloss.Color("#e9edf1")
	muted := lipgloss.Color("#8d99a5")
	panelBorder := lipgloss.Color("#394049")

	return theme{
		root: lipgloss.NewStyle().
			Padding(0, 1),
		header: lipgloss.NewStyle().
			Foreground(green).
			Bold(true).
			MarginBottom(1),
		tabActive: lipgloss.NewStyle().
			Foreground(lipgloss.Color("#ffffff")).
			Background(green).
			Bold(true).
			Padding(0, 1),
		tabInactive: lipgloss.NewStyle().
			Foreground(text).
			Padding(0, 1),
		tabDisabled: lipgloss.NewStyle().
			Foreground(muted).
			Strikethrough(true).
			Padding(0, 1),
		panel: lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(panelBorder).
			Padding(1, 2).
			MarginTop(1),
		title:     lipgloss.NewStyle().Foreground(text).Bold(true).MarginBottom(1),
		text:      lipgloss.NewStyle().Foreground(text),
		muted:     lipgloss.NewStyle().Foreground(muted),
		success:   lipgloss.NewStyle().Foreground(green).Bold(true),
		errorText: lipgloss.NewStyle().Foreground(red).Bold(true),
		button: lipgloss.NewStyle().
			Foreground(lipgloss.Color("#ffffff")).
			Background(blue).
			Padding(0, 1),
		buttonOff: lipgloss.NewStyle().
			Foreground(muted).
			Background(panelBorder).
			Padding(0, 1),
		raw: lipgloss.NewStyle().
			Foreground(muted).
			BorderStyle(lipgloss.NormalBorder()).
			BorderLeft(true).
			BorderForeground(panelBorder).
			PaddingLeft(1),
		footer: lipgloss.NewStyle().
			Foreground(muted).
			MarginTop(1),
	}
}
