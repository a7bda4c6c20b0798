package tui

import "github.com/charmbracelet/lipgloss"

var (
	accentColor  = lipgloss.Color("#6a9bcc")
	successColor = lipgloss.Color("#788c5d")
	errorColor   = lipgloss.Color("#c45c4a")
	warningColor = lipgloss.Color("#d97757")
	dimTextColor = lipgloss.Color("#b0aea5")

	appStyle = lipgloss.NewStyle().
			Padding(1, 2)

	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(accentColor)

	statusOK = lipgloss.NewStyle().
			Foreground(successColor).
			Bold(true)

	statusFail = lipgloss.NewStyle().
			Foreground(errorColor).
			Bold(true)

	statusWorking = lipgloss.NewStyle().
			Foreground(warningColor)

	statusPending = lipgloss.NewStyle().
			Foreground(dimTextColor)

	driveStyle = lipgloss.NewStyle().
			Bold(true)

	subtitleStyle = lipgloss.NewStyle().
			Foreground(dimTextColor).
			Italic(true)

	warnNoteStyle = lipgloss.NewStyle().
			Foreground(warningColor)
)
