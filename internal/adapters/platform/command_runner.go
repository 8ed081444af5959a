// SPDX-FileCopyrightText: 2025 The Wingboard Authors
// SPDX-License-Identifier: EUPL-1.2

// Package platform provides process execution for the winget adapter.
package platform

import (
	"context"
	"os/exec"
	"strings"
)

// CommandRunner implements the domain.CommandRunner port with real processes.
// All output is captured; nothing is written to the terminal, which the TUI
// owns exclusively.
type CommandRunner struct{}

// NewCommandRunner creates a command runner.
func NewCommandRunner() *CommandRunner {
	return &CommandRunner{}
}

// Output runs the command and returns captured stdout. On non-zero exit the
// partial stdout is returned alongside the error; exec.ExitError carries the
// captured stderr for diagnosis.
func (r *CommandRunner) Output(ctx context.Context, name string, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, name, args...)

	out, err := cmd.Output()

	return string(out), err
}

// CommandExists checks if a command is available on the system.
func (r *CommandRunner) CommandExists(name string) bool {
	_, err := exec.LookPath(name)

	return err == nil
}

// MockCommandRunner implements the domain.CommandRunner port for tests.
type MockCommandRunner struct {
	outputs map[string]string
	errs    map[string]error
	// Calls records every command line in invocation order.
	Calls []string
}

// NewMockCommandRunner creates a mock command runner.
func NewMockCommandRunner() *MockCommandRunner {
	return &MockCommandRunner{
		outputs: make(map[string]string),
		errs:    make(map[string]error),
	}
}

// SetOutput sets the stdout returned for an exact command line.
func (r *MockCommandRunner) SetOutput(command, output string) {
	r.outputs[command] = output
}

// SetError sets the error returned for an exact command line.
func (r *MockCommandRunner) SetError(command string, err error) {
	r.errs[command] = err
}

// Output returns the preset output and error for the command line.
func (r *MockCommandRunner) Output(_ context.Context, name string, args ...string) (string, error) {
	command := name + " " + strings.Join(args, " ")
	r.Calls = append(r.Calls, command)

	return r.outputs[command], r.errs[command]
}

// CommandExists always succeeds in mock mode.
func (r *MockCommandRunner) CommandExists(_ string) bool {
	return true
}
