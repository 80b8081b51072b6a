package tui

import "github.com/charmbracelet/lipgloss"

// Color Palette
var (
	salmonPink  = lipgloss.Color("#FFB3BA") // accent, focus and errors
	mintGreen   = lipgloss.Color("#A8E6CF") // enabled and success states
	mutedGray   = lipgloss.Color("#6B7280") // secondary text
	brightWhite = lipgloss.Color("#F9FAFB") // primary text
	foxOrange   = lipgloss.Color("#FF9E64") // modified values
)

var (
	titleStyle = lipgloss.NewStyle().
			Foreground(salmonPink).
			Bold(true)

	paneTitleStyle = lipgloss.NewStyle().
			Foreground(mintGreen).
			Bold(true)

	focusedPaneTitleStyle = paneTitleStyle.
				Foreground(salmonPink)

	labelStyle = lipgloss.NewStyle().
			Foreground(mutedGray)

	focusedLabelStyle = lipgloss.NewStyle().
				Foreground(brightWhite).
				Bold(true)

	valueStyle = lipgloss.NewStyle().
			Foreground(brightWhite)

	modifiedStyle = lipgloss.NewStyle().
			Foreground(foxOrange)

	checkStyle = lipgloss.NewStyle().
			Foreground(mintGreen)

	descriptionStyle = lipgloss.NewStyle().
				Foreground(mutedGray).
				Italic(true)

	helpTextStyle = lipgloss.NewStyle().
			Foreground(mutedGray).
			Italic(true).
			PaddingLeft(6)

	errorStyle = lipgloss.NewStyle().
			Foreground(salmonPink)

	successStyle = lipgloss.NewStyle().
			Foreground(mintGreen)

	statusBarStyle = lipgloss.NewStyle().
			Foreground(mutedGray).
			Padding(0, 1)

	paneStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(mutedGray).
			Padding(0, 1)

	focusedPaneStyle = paneStyle.
				BorderForeground(salmonPink)
)
