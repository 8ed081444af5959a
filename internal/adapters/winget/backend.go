// SPDX-FileCopyrightText: 2025 The Wingboard Authors
// SPDX-License-Identifier: EUPL-1.2

// Package winget implements the backend port on top of the winget CLI.
//
// winget has no stable machine-readable output, so this adapter parses its
// fixed-width tables and key/value detail listings. All calls are blocking;
// the TUI dispatcher runs them off the interactive loop.
package winget

import (
	"context"
	"errors"
	"os/exec"
	"strings"
	"time"

	"github.com/wingboard/wingboard/internal/domain"
)

// DefaultTimeout bounds a single winget invocation. Store queries routinely
// take tens of seconds on cold caches.
const DefaultTimeout = 120 * time.Second

// Backend runs winget through a CommandRunner and parses its output.
type Backend struct {
	runner  domain.CommandRunner
	binary  string
	timeout time.Duration
}

// Option configures a Backend.
type Option func(*Backend)

// WithBinary overrides the winget binary path.
func WithBinary(path string) Option {
	return func(b *Backend) {
		if path != "" {
			b.binary = path
		}
	}
}

// WithTimeout overrides the per-invocation timeout. Zero disables it.
func WithTimeout(d time.Duration) Option {
	return func(b *Backend) {
		b.timeout = d
	}
}

// New creates a winget backend using the given process runner.
func New(runner domain.CommandRunner, opts ...Option) *Backend {
	backend := &Backend{
		runner:  runner,
		binary:  "winget",
		timeout: DefaultTimeout,
	}

	for _, opt := range opts {
		opt(backend)
	}

	return backend
}

// Available reports whether the winget binary can be found at all.
func (b *Backend) Available() bool {
	return b.runner.CommandExists(b.binary)
}

// ListInstalled returns every installed package.
func (b *Backend) ListInstalled(ctx context.Context, filter domain.SourceFilter) ([]domain.Package, error) {
	args := []string{"list", "--accept-source-agreements"}
	args = appendSourceArg(args, filter)

	output, err := b.run(ctx, "list", args)
	if err != nil {
		return nil, err
	}

	return parsePackageTable(output), nil
}

// Search queries the catalogs for packages matching the query.
func (b *Backend) Search(ctx context.Context, query string, filter domain.SourceFilter) ([]domain.Package, error) {
	args := []string{"search", query, "--accept-source-agreements"}
	args = appendSourceArg(args, filter)

	output, err := b.run(ctx, "search", args)
	if err != nil {
		return nil, err
	}

	return parsePackageTable(output), nil
}

// ListUpgrades returns installed packages with a newer available version.
func (b *Backend) ListUpgrades(ctx context.Context, filter domain.SourceFilter) ([]domain.Package, error) {
	args := []string{"upgrade", "--accept-source-agreements"}
	args = appendSourceArg(args, filter)

	output, err := b.run(ctx, "upgrade", args)
	if err != nil {
		return nil, err
	}

	return parsePackageTable(output), nil
}

// Details fetches detail fields for a package by exact id.
func (b *Backend) Details(ctx context.Context, id string) (domain.PackageDetails, error) {
	output, err := b.run(ctx, "show", []string{"show", "--id", id, "--exact", "--accept-source-agreements"})
	if err != nil {
		return domain.PackageDetails{}, err
	}

	return parseShowOutput(output), nil
}

// Install installs a package by id.
func (b *Backend) Install(ctx context.Context, id string) (string, error) {
	output, err := b.run(ctx, "install", []string{
		"install", "--id", id, "--exact",
		"--accept-source-agreements", "--accept-package-agreements",
	})
	if err != nil {
		return "", err
	}

	return lastLine(output), nil
}

// Uninstall removes a package by id.
func (b *Backend) Uninstall(ctx context.Context, id string) (string, error) {
	output, err := b.run(ctx, "uninstall", []string{
		"uninstall", "--id", id, "--exact", "--accept-source-agreements",
	})
	if err != nil {
		return "", err
	}

	return lastLine(output), nil
}

// Upgrade upgrades a package by id.
func (b *Backend) Upgrade(ctx context.Context, id string) (string, error) {
	output, err := b.run(ctx, "upgrade", []string{
		"upgrade", "--id", id, "--exact",
		"--accept-source-agreements", "--accept-package-agreements",
	})
	if err != nil {
		return "", err
	}

	return lastLine(output), nil
}

// ListSources returns the configured winget sources.
func (b *Backend) ListSources(ctx context.Context) ([]domain.SourceInfo, error) {
	output, err := b.run(ctx, "source", []string{"source", "list"})
	if err != nil {
		return nil, err
	}

	return parseSourceTable(output), nil
}

// run executes winget and returns cleaned stdout, classifying failures into
// the backend error taxonomy. A non-zero exit with non-empty stdout is not an
// error: winget exits non-zero for "no results found".
func (b *Backend) run(ctx context.Context, verb string, args []string) (string, error) {
	if b.timeout > 0 {
		var cancel context.CancelFunc

		ctx, cancel = context.WithTimeout(ctx, b.timeout)
		defer cancel()
	}

	stdout, err := b.runner.Output(ctx, b.binary, args...)
	cleaned := cleanProgressOutput(stdout)

	if err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return "", domain.NewBackendError(domain.BackendTimeout, verb, err, "")
		}

		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			if strings.TrimSpace(cleaned) != "" {
				return cleaned, nil
			}

			stderr := strings.TrimSpace(string(exitErr.Stderr))

			return "", domain.NewBackendError(domain.BackendExitFailure, verb, err, stderr)
		}

		return "", domain.NewBackendError(domain.BackendSpawnFailed, verb, err, "")
	}

	return cleaned, nil
}

// cleanProgressOutput resolves winget's progress rendering. winget uses bare
// \r to overwrite spinner frames in place and \r\n line endings on Windows:
// normalize the endings first, then keep only the final segment of any line
// with embedded overwrites.
func cleanProgressOutput(output string) string {
	normalized := strings.ReplaceAll(output, "\r\n", "\n")
	lines := strings.Split(normalized, "\n")

	for i, line := range lines {
		if idx := strings.LastIndex(line, "\r"); idx >= 0 {
			lines[i] = line[idx+1:]
		}
	}

	return strings.Join(lines, "\n")
}

// lastLine returns the final non-empty line, which for mutating commands is
// winget's outcome summary.
func lastLine(output string) string {
	lines := strings.Split(output, "\n")
	for i := len(lines) - 1; i >= 0; i-- {
		if trimmed := strings.TrimSpace(lines[i]); trimmed != "" {
			return trimmed
		}
	}

	return ""
}

func appendSourceArg(args []string, filter domain.SourceFilter) []string {
	if arg := filter.Arg(); arg != "" {
		args = append(args, "--source", arg)
	}

	return args
}
