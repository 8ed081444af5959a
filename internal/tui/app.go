// SPDX-FileCopyrightText: 2025 The Wingboard Authors
// SPDX-License-Identifier: EUPL-1.2

// Package tui wires the dashboard model into a Bubble Tea program.
package tui

import (
	"context"
	"errors"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/term"

	"github.com/wingboard/wingboard/internal/domain"
	"github.com/wingboard/wingboard/internal/tui/models"
)

// ErrNoTerminal is returned when the TUI is launched in a non-terminal
// environment.
var ErrNoTerminal = errors.New("TUI requires a terminal environment")

// Launch runs the dashboard until the user quits. The filter preselects the
// configured source.
func Launch(ctx context.Context, backend domain.Backend, filter domain.SourceFilter) error {
	if !isTerminal() {
		return fmt.Errorf("terminal check failed: %w", ErrNoTerminal)
	}

	dashboard := models.NewDashboard(ctx, backend, filter)

	program := tea.NewProgram(
		dashboard,
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
		tea.WithContext(ctx),
	)

	if _, err := program.Run(); err != nil {
		return fmt.Errorf("dashboard failed: %w", err)
	}

	return nil
}

// isTerminal checks if stdout is connected to a terminal.
func isTerminal() bool {
	return term.IsTerminal(int(os.Stdout.Fd()))
}
