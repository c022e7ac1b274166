// Package tui provides the terminal user interface for the email finder.
// It uses the Charm Bubble Tea framework and renders an injected lookup state.
package tui

import (
	"github.com/charmbracelet/lipgloss"
)

// Color palette for the TUI
var (
	primaryColor   = lipgloss.Color("#7C3AED") // Violet
	secondaryColor = lipgloss.Color("#10B981") // Emerald
	accentColor    = lipgloss.Color("#F59E0B") // Amber
	errorColor     = lipgloss.Color("#EF4444") // Red
	successColor   = lipgloss.Color("#22C55E") // Green

	fgColor     = lipgloss.Color("#CDD6F4") // Light foreground
	mutedColor  = lipgloss.Color("#6C7086") // Muted text
	borderColor = lipgloss.Color("#45475A") // Border
	selectedBg  = lipgloss.Color("#313244") // Selected background
)

// headerStyle creates the header/banner style
var headerStyle = lipgloss.NewStyle().
	Bold(true).
	Foreground(fgColor).
	Background(primaryColor).
	Padding(0, 2).
	MarginBottom(1)

// sectionStyle titles one list of the results pane
var sectionStyle = lipgloss.NewStyle().
	Bold(true).
	Foreground(primaryColor).
	MarginTop(1)

// subtitleStyle creates the subtitle/description style
var subtitleStyle = lipgloss.NewStyle().
	Foreground(mutedColor).
	Italic(true)

// itemStyle renders one unselected list row
var itemStyle = lipgloss.NewStyle().
	Foreground(fgColor).
	PaddingLeft(2)

// selectedItemStyle renders the row under the cursor
var selectedItemStyle = lipgloss.NewStyle().
	Foreground(secondaryColor).
	Bold(true).
	Background(selectedBg).
	PaddingLeft(1)

// activeSourceStyle marks the selected search source
var activeSourceStyle = lipgloss.NewStyle().
	Foreground(accentColor).
	Bold(true).
	Underline(true)

// helpStyle creates the style for help text at the bottom
var helpStyle = lipgloss.NewStyle().
	Foreground(mutedColor).
	MarginTop(1)

// boxStyle creates a bordered box style
var boxStyle = lipgloss.NewStyle().
	Border(lipgloss.RoundedBorder()).
	BorderForeground(borderColor).
	Padding(1, 2)

// successStyle creates style for success messages
var successStyle = lipgloss.NewStyle().
	Foreground(successColor).
	Bold(true)

// errorStyle creates style for error messages
var errorStyle = lipgloss.NewStyle().
	Foreground(errorColor).
	Bold(true)

// inputLabelStyle creates the style for input labels
var inputLabelStyle = lipgloss.NewStyle().
	Foreground(secondaryColor).
	Bold(true)

// progressStyle creates the style for progress indicators
var progressStyle = lipgloss.NewStyle().
	Foreground(accentColor)
