// SPDX-FileCopyrightText: 2025 The Wingboard Authors
// SPDX-License-Identifier: EUPL-1.2

package cli

import (
	"context"
	"errors"
	"sort"
	"strings"

	"github.com/urfave/cli/v3"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/wingboard/wingboard/internal/console"
	"github.com/wingboard/wingboard/internal/domain"
)

// listCommand lists installed packages.
func (app *CLI) listCommand() *cli.Command {
	return &cli.Command{
		Name:  "list",
		Usage: "List installed packages",
		Description: `Print the installed packages as winget reports them.

Examples:
  wingboard list                   # all installed packages
  wingboard list --source winget   # winget catalog only
  wingboard list --json            # JSON for scripts`,
		Action: func(ctx context.Context, _ *cli.Command) error {
			console.DefaultOutput.Progressf("Listing installed packages...")

			packages, err := app.backend.ListInstalled(ctx, app.filter())
			if err != nil {
				return backendExitError("list installed packages", err)
			}

			app.printPackages("installed", packages, false)

			return nil
		},
	}
}

// searchCommand searches the catalogs.
func (app *CLI) searchCommand() *cli.Command {
	return &cli.Command{
		Name:      "search",
		Usage:     "Search the package catalogs",
		ArgsUsage: "<query>",
		Description: `Search winget's catalogs for packages matching the query.

Examples:
  wingboard search firefox
  wingboard search "visual studio" --source msstore`,
		Action: func(ctx context.Context, cmd *cli.Command) error {
			query := strings.TrimSpace(strings.Join(cmd.Args().Slice(), " "))
			if query == "" {
				return NewExitError(ExitUsageError, "search needs a query", nil)
			}

			console.DefaultOutput.Progressf("Searching for %q...", query)

			packages, err := app.backend.Search(ctx, query, app.filter())
			if err != nil {
				return backendExitError("search packages", err)
			}

			app.printPackages("matching", packages, false)

			return nil
		},
	}
}

// upgradesCommand lists pending upgrades.
func (app *CLI) upgradesCommand() *cli.Command {
	return &cli.Command{
		Name:  "upgrades",
		Usage: "List packages with available upgrades",
		Description: `Print the packages winget can upgrade, with current and available
versions.

Examples:
  wingboard upgrades
  wingboard upgrades --json`,
		Action: func(ctx context.Context, _ *cli.Command) error {
			console.DefaultOutput.Progressf("Checking for upgrades...")

			packages, err := app.backend.ListUpgrades(ctx, app.filter())
			if err != nil {
				return backendExitError("list upgrades", err)
			}

			app.printPackages("upgradable", packages, true)

			return nil
		},
	}
}

// showCommand prints package details.
func (app *CLI) showCommand() *cli.Command {
	return &cli.Command{
		Name:      "show",
		Usage:     "Show details for a package",
		ArgsUsage: "<package-id>",
		Description: `Print the catalog details for one package id.

Examples:
  wingboard show Git.Git
  wingboard show Mozilla.Firefox --json`,
		Action: func(ctx context.Context, cmd *cli.Command) error {
			id := cmd.Args().First()
			if id == "" {
				return NewExitError(ExitUsageError, "show needs a package id", nil)
			}

			details, err := app.backend.Details(ctx, id)
			if err != nil {
				return backendExitError("show "+id, err)
			}

			app.printDetails(details)

			return nil
		},
	}
}

// sourcesCommand lists the configured winget sources.
func (app *CLI) sourcesCommand() *cli.Command {
	return &cli.Command{
		Name:  "sources",
		Usage: "List configured winget sources",
		Action: func(ctx context.Context, _ *cli.Command) error {
			sources, err := app.backend.ListSources(ctx)
			if err != nil {
				return backendExitError("list sources", err)
			}

			if app.jsonOut {
				entries := make([]map[string]any, 0, len(sources))
				for _, source := range sources {
					entries = append(entries, map[string]any{
						"name":     source.Name,
						"argument": source.Argument,
						"type":     source.Type,
					})
				}

				console.DefaultOutput.JSONResult("success", map[string]any{"sources": entries})

				return nil
			}

			rows := make([][]string, 0, len(sources))
			for _, source := range sources {
				rows = append(rows, []string{source.Name, source.Argument, source.Type})
			}

			console.DefaultOutput.Table([]string{"Name", "Argument", "Type"}, rows)

			return nil
		},
	}
}

// versionCommand prints the wingboard version.
func (app *CLI) versionCommand() *cli.Command {
	return &cli.Command{
		Name:  "version",
		Usage: "Show version information",
		Action: func(_ context.Context, _ *cli.Command) error {
			console.DefaultOutput.SuccessResult(Version, "")

			return nil
		},
	}
}

// printPackages writes a package listing in the selected output mode. The
// Available column only appears for upgrade listings.
func (app *CLI) printPackages(label string, packages []domain.Package, withAvailable bool) {
	sort.SliceStable(packages, func(i, j int) bool {
		return strings.ToLower(packages[i].Name) < strings.ToLower(packages[j].Name)
	})

	if app.jsonOut {
		entries := make([]map[string]any, 0, len(packages))

		for _, pkg := range packages {
			entry := map[string]any{
				"id":      pkg.ID,
				"name":    pkg.Name,
				"version": pkg.Version,
				"source":  pkg.Source.String(),
			}
			if withAvailable {
				entry["available"] = pkg.AvailableVersion
			}

			entries = append(entries, entry)
		}

		console.DefaultOutput.JSONResult("success", map[string]any{
			"packages": entries,
			"total":    len(entries),
		})

		return
	}

	if app.plain {
		lines := make([]string, 0, len(packages))
		for _, pkg := range packages {
			line := pkg.ID + "\t" + pkg.Version
			if withAvailable {
				line += "\t" + pkg.AvailableVersion
			}

			lines = append(lines, line)
		}

		console.DefaultOutput.PlainList(lines)

		return
	}

	if len(packages) == 0 {
		console.DefaultOutput.Result("No " + label + " packages" + app.filterSuffix())

		return
	}

	headers := []string{"Name", "Id", "Version", "Source"}
	if withAvailable {
		headers = []string{"Name", "Id", "Version", "Available", "Source"}
	}

	rows := make([][]string, 0, len(packages))

	for _, pkg := range packages {
		row := []string{pkg.Name, pkg.ID, pkg.Version, pkg.Source.String()}
		if withAvailable {
			row = []string{pkg.Name, pkg.ID, pkg.Version, pkg.AvailableVersion, pkg.Source.String()}
		}

		rows = append(rows, row)
	}

	console.DefaultOutput.Table(headers, rows)
}

// printDetails writes one package's details.
func (app *CLI) printDetails(details domain.PackageDetails) {
	if app.jsonOut {
		console.DefaultOutput.JSONResult("success", map[string]any{
			"id":          details.ID,
			"name":        details.Name,
			"version":     details.Version,
			"available":   details.AvailableVersion,
			"source":      details.Source.String(),
			"publisher":   details.Publisher,
			"description": details.Description,
			"homepage":    details.Homepage,
			"license":     details.License,
		})

		return
	}

	fields := []struct {
		label string
		value string
	}{
		{"Id", details.ID},
		{"Name", details.Name},
		{"Version", details.Version},
		{"Available", details.AvailableVersion},
		{"Source", details.Source.String()},
		{"Publisher", details.Publisher},
		{"License", details.License},
		{"Homepage", details.Homepage},
		{"Description", details.Description},
	}

	rows := make([][]string, 0, len(fields))

	for _, field := range fields {
		if field.value == "" {
			continue
		}

		rows = append(rows, []string{field.label, field.value})
	}

	console.DefaultOutput.Table([]string{"Field", "Value"}, rows)
}

// filterSuffix names the active source filter in human output.
func (app *CLI) filterSuffix() string {
	filter := app.filter()
	if filter == domain.FilterAll {
		return ""
	}

	return " from " + cases.Title(language.Und).String(filter.String())
}

// backendExitError maps a backend failure to an exit code.
func backendExitError(action string, err error) error {
	var backendErr *domain.BackendError
	if errors.As(err, &backendErr) {
		switch backendErr.Kind {
		case domain.BackendSpawnFailed:
			return NewExitError(ExitDependencyError, "failed to "+action, err)
		case domain.BackendTimeout:
			return NewExitError(ExitTimeoutError, "timed out trying to "+action, err)
		default:
			return NewExitError(ExitBackendError, "failed to "+action, err)
		}
	}

	return NewExitError(ExitGeneralError, "failed to "+action, err)
}
