package tui

import "github.com/charmbracelet/lipgloss"

var (
	colorAccent = lipgloss.Color("#7D56F4")
	colorMuted  = lipgloss.Color("#6C7086")
	colorError  = lipgloss.Color("#F38BA8")
	colorOK     = lipgloss.Color("#A6E3A1")

	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(colorAccent)

	stepDoneStyle    = lipgloss.NewStyle().Foreground(colorOK)
	stepCurrentStyle = lipgloss.NewStyle().Bold(true).Foreground(colorAccent)
	stepTodoStyle    = lipgloss.NewStyle().Foreground(colorMuted)

	cursorStyle   = lipgloss.NewStyle().Foreground(colorAccent).Bold(true)
	selectedStyle = lipgloss.NewStyle().Foreground(colorOK)
	mutedStyle    = lipgloss.NewStyle().Foreground(colorMuted)
	errorStyle    = lipgloss.NewStyle().Foreground(colorError)

	boxStyle = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(colorMuted).Padding(0, 1)
)
