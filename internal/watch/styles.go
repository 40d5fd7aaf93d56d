// Package watch renders the live status view behind "clipper watch".
package watch

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"clipper/internal/status"
)

var (
	colorRed    = lipgloss.Color("#FF5F5F")
	colorGreen  = lipgloss.Color("#5FD75F")
	colorYellow = lipgloss.Color("#FFD75F")
	colorCyan   = lipgloss.Color("#5FD7FF")
	colorGray   = lipgloss.Color("#808080")
)

var (
	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	labelStyle   = lipgloss.NewStyle().Width(20)
	detailStyle  = lipgloss.NewStyle().Foreground(colorGray)
	errorStyle   = lipgloss.NewStyle().Bold(true).Foreground(colorRed)
	summaryStyle = lipgloss.NewStyle().Foreground(colorGreen)
	helpStyle    = lipgloss.NewStyle().Foreground(colorGray).MarginTop(1)
	boxStyle     = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(colorGray).Padding(0, 1)
)

var titleCaser = cases.Title(language.English)

// Humanize turns a state such as "in_progress" into "In Progress".
func Humanize(value string) string {
	return titleCaser.String(strings.ReplaceAll(value, "_", " "))
}

func stepIcon(state status.StepState) string {
	switch state {
	case status.StepCompleted:
		return lipgloss.NewStyle().Foreground(colorGreen).Render("✓")
	case status.StepInProgress:
		return lipgloss.NewStyle().Foreground(colorYellow).Render("●")
	case status.StepFailed:
		return lipgloss.NewStyle().Foreground(colorRed).Render("✗")
	default:
		return lipgloss.NewStyle().Foreground(colorGray).Render("·")
	}
}

func stateStyle(state status.State) lipgloss.Style {
	switch state {
	case status.StateProcessing:
		return lipgloss.NewStyle().Bold(true).Foreground(colorYellow)
	case status.StateCompleted:
		return lipgloss.NewStyle().Bold(true).Foreground(colorGreen)
	case status.StateError:
		return lipgloss.NewStyle().Bold(true).Foreground(colorRed)
	default:
		return lipgloss.NewStyle().Foreground(colorGray)
	}
}
