package ui

import "github.com/charmbracelet/lipgloss"

// Colors used in the application.
var (
	colorPrimary   = lipgloss.Color("62")  // Purple
	colorSecondary = lipgloss.Color("241") // Gray
	colorHighlight = lipgloss.Color("212") // Pink
)

// Header style for the top bar.
var Header = lipgloss.NewStyle().
	Bold(true).
	Foreground(lipgloss.Color("255")).
	Background(colorPrimary).
	Padding(0, 1)

// StatusBar style for the bottom status bar.
var StatusBar = lipgloss.NewStyle().
	Foreground(lipgloss.Color("255")).
	Background(lipgloss.Color("236")).
	Padding(0, 1)

// ErrorBar style for the dismissible error line above the status bar.
var ErrorBar = lipgloss.NewStyle().
	Bold(true).
	Foreground(lipgloss.Color("255")).
	Background(lipgloss.Color("124")).
	Padding(0, 1)

// ModeBadge style for the active discovery mode indicator.
var ModeBadge = lipgloss.NewStyle().
	Foreground(colorHighlight).
	Bold(true)

// StatusText style for descriptive text in the status bar.
var StatusText = lipgloss.NewStyle().
	Foreground(colorSecondary)
