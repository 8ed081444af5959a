// SPDX-FileCopyrightText: 2025 The Wingboard Authors
// SPDX-License-Identifier: EUPL-1.2

// Package styles defines consistent visual styling for TUI components.
package styles

import (
	"github.com/charmbracelet/lipgloss"
)

// Styles contains all the styles used in the TUI.
type Styles struct {
	// Color palette
	Primary   lipgloss.Color
	Secondary lipgloss.Color
	Success   lipgloss.Color
	Warning   lipgloss.Color
	Error     lipgloss.Color
	Info      lipgloss.Color
	Muted     lipgloss.Color

	// Component styles
	TabActive   lipgloss.Style
	TabInactive lipgloss.Style
	FilterBadge lipgloss.Style
	SearchLabel lipgloss.Style
	TableHeader lipgloss.Style
	RowSelected lipgloss.Style
	Row         lipgloss.Style
	StatusBar   lipgloss.Style
	KeyHint     lipgloss.Style
	Overlay     lipgloss.Style
	PanelBorder lipgloss.Style

	// Text styles (cached for performance)
	MutedText   lipgloss.Style
	PrimaryText lipgloss.Style
	SuccessText lipgloss.Style
	ErrorText   lipgloss.Style
	WarningText lipgloss.Style
}

// New creates a new Styles instance with the default Tokyo Night theme.
func New() *Styles {
	// Tokyo Night color palette
	primary := lipgloss.Color("#7aa2f7")    // Blue
	secondary := lipgloss.Color("#bb9af7")  // Purple
	success := lipgloss.Color("#9ece6a")    // Green
	warning := lipgloss.Color("#e0af68")    // Yellow
	errorColor := lipgloss.Color("#f7768e") // Red
	info := lipgloss.Color("#7dcfff")       // Cyan
	muted := lipgloss.Color("#565f89")      // Gray

	background := lipgloss.Color("#1a1b26") // Dark background
	foreground := lipgloss.Color("#c0caf5") // Light foreground

	return &Styles{
		Primary:   primary,
		Secondary: secondary,
		Success:   success,
		Warning:   warning,
		Error:     errorColor,
		Info:      info,
		Muted:     muted,

		TabActive: lipgloss.NewStyle().
			Background(primary).
			Foreground(background).
			Bold(true).
			Padding(0, 1),

		TabInactive: lipgloss.NewStyle().
			Foreground(muted).
			Padding(0, 1),

		FilterBadge: lipgloss.NewStyle().
			Foreground(secondary).
			Bold(true),

		SearchLabel: lipgloss.NewStyle().
			Foreground(info),

		TableHeader: lipgloss.NewStyle().
			Foreground(primary).
			Bold(true),

		RowSelected: lipgloss.NewStyle().
			Background(lipgloss.Color("#283457")).
			Foreground(foreground).
			Bold(true),

		Row: lipgloss.NewStyle().
			Foreground(foreground),

		StatusBar: lipgloss.NewStyle().
			Foreground(foreground).
			Background(lipgloss.Color("#24283b")).
			Padding(0, 1),

		KeyHint: lipgloss.NewStyle().
			Foreground(muted),

		Overlay: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(primary).
			Padding(1, 2),

		PanelBorder: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(muted),

		MutedText:   lipgloss.NewStyle().Foreground(muted),
		PrimaryText: lipgloss.NewStyle().Foreground(primary),
		SuccessText: lipgloss.NewStyle().Foreground(success),
		ErrorText:   lipgloss.NewStyle().Foreground(errorColor),
		WarningText: lipgloss.NewStyle().Foreground(warning),
	}
}
