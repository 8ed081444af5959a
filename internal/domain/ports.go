// SPDX-FileCopyrightText: 2025 The Wingboard Authors
// SPDX-License-Identifier: EUPL-1.2

package domain

import "context"

// Backend is the capability contract against the external package manager.
// Calls are synchronous and may block for seconds; the dispatcher runs them
// off the interactive loop. Implemented by adapters/winget for production and
// by test fakes elsewhere.
type Backend interface {
	// ListInstalled returns every installed package, optionally narrowed to
	// one source catalog.
	ListInstalled(ctx context.Context, filter SourceFilter) ([]Package, error)

	// Search queries the catalogs for packages matching the query.
	Search(ctx context.Context, query string, filter SourceFilter) ([]Package, error)

	// ListUpgrades returns installed packages with a newer available version.
	ListUpgrades(ctx context.Context, filter SourceFilter) ([]Package, error)

	// Details fetches the detail fields for a package by exact id.
	Details(ctx context.Context, id string) (PackageDetails, error)

	// Install installs a package by id and returns winget's final output line.
	Install(ctx context.Context, id string) (string, error)

	// Uninstall removes a package by id.
	Uninstall(ctx context.Context, id string) (string, error)

	// Upgrade upgrades a package by id.
	Upgrade(ctx context.Context, id string) (string, error)

	// ListSources returns the configured winget sources.
	ListSources(ctx context.Context) ([]SourceInfo, error)
}

// CommandRunner executes external processes. The winget adapter depends on
// this port so parser and argument construction stay testable without a
// winget binary.
type CommandRunner interface {
	// Output runs the command and returns its stdout. On non-zero exit the
	// captured stdout is still returned together with the error, because
	// winget exits non-zero for benign cases like "no results".
	Output(ctx context.Context, name string, args ...string) (string, error)

	// CommandExists checks whether the binary is on PATH.
	CommandExists(name string) bool
}
