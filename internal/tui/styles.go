// Package tui renders the sentiment dashboard as a bubbletea program.
package tui

import "github.com/charmbracelet/lipgloss"

var (
	colorPrimary  = lipgloss.Color("#101F38")
	colorAccent   = lipgloss.Color("#2196F3")
	colorMuted    = lipgloss.Color("#7a8594")
	colorBorder   = lipgloss.Color("#dce0e5")
	colorPositive = lipgloss.Color("#8BC34A")
	colorNegative = lipgloss.Color("#e53935")
	colorNeutral  = lipgloss.Color("#FFC107")
)

// Styles holds the styled components of the page.
type Styles struct {
	Header lipgloss.Style
	Help   lipgloss.Style

	Card      lipgloss.Style
	CardLabel lipgloss.Style
	Total     lipgloss.Style
	Positive  lipgloss.Style
	Negative  lipgloss.Style
	Neutral   lipgloss.Style

	Input        lipgloss.Style
	InputFocused lipgloss.Style

	Trigger         lipgloss.Style
	TriggerDisabled lipgloss.Style
	TriggerKey      lipgloss.Style
	BarFocused      lipgloss.Style

	Success lipgloss.Style
	Error   lipgloss.Style
	Warning lipgloss.Style

	Dialog lipgloss.Style
}

// NewStyles returns the default styles.
func NewStyles() Styles {
	card := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(colorBorder).
		Padding(0, 2).
		Width(18).
		Align(lipgloss.Center)

	return Styles{
		Header: lipgloss.NewStyle().
			Background(colorPrimary).
			Foreground(lipgloss.Color("#ffffff")).
			Padding(0, 2).
			Bold(true),
		Help: lipgloss.NewStyle().
			Foreground(colorMuted),

		Card:      card,
		CardLabel: lipgloss.NewStyle().Foreground(colorMuted),
		Total:     lipgloss.NewStyle().Foreground(colorAccent).Bold(true),
		Positive:  lipgloss.NewStyle().Foreground(colorPositive).Bold(true),
		Negative:  lipgloss.NewStyle().Foreground(colorNegative).Bold(true),
		Neutral:   lipgloss.NewStyle().Foreground(colorNeutral).Bold(true),

		Input: lipgloss.NewStyle().
			Border(lipgloss.NormalBorder()).
			BorderForeground(colorBorder).
			Padding(0, 1),
		InputFocused: lipgloss.NewStyle().
			Border(lipgloss.NormalBorder()).
			BorderForeground(colorAccent).
			Padding(0, 1),

		Trigger:         lipgloss.NewStyle().Padding(0, 1),
		TriggerDisabled: lipgloss.NewStyle().Padding(0, 1).Foreground(colorMuted).Faint(true),
		TriggerKey:      lipgloss.NewStyle().Foreground(colorAccent).Bold(true),
		BarFocused: lipgloss.NewStyle().
			BorderStyle(lipgloss.NormalBorder()).
			BorderLeft(true).
			BorderForeground(colorAccent),

		Success: lipgloss.NewStyle().Foreground(colorPositive).Bold(true),
		Error:   lipgloss.NewStyle().Foreground(colorNegative).Bold(true),
		Warning: lipgloss.NewStyle().Foreground(colorNeutral).Bold(true),

		Dialog: lipgloss.NewStyle().
			Border(lipgloss.DoubleBorder()).
			BorderForeground(colorNegative).
			Padding(0, 2),
	}
}
