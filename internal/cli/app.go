// SPDX-FileCopyrightText: 2025 The Wingboard Authors
// SPDX-License-Identifier: EUPL-1.2

// Package cli provides the wingboard command-line interface: the dashboard
// by default, plus headless subcommands for scripting.
package cli

import (
	"context"
	"errors"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/wingboard/wingboard/internal/adapters/platform"
	"github.com/wingboard/wingboard/internal/adapters/winget"
	"github.com/wingboard/wingboard/internal/config"
	"github.com/wingboard/wingboard/internal/console"
	"github.com/wingboard/wingboard/internal/domain"
	"github.com/wingboard/wingboard/internal/tui"
)

// Version is set at build time via -ldflags.
var Version = "dev" //nolint:gochecknoglobals

// ErrWingetNotFound is returned when no winget binary can be resolved.
var ErrWingetNotFound = errors.New("winget not found on PATH")

// CLI wires configuration, the winget backend and the command tree.
type CLI struct {
	app *cli.Command

	// backend is injected in tests; when nil it is built from config in the
	// Before hook.
	backend domain.Backend

	verbose    bool
	jsonOut    bool
	plain      bool
	configPath string
	sourceFlag string
	wingetPath string
	timeout    time.Duration

	cfg config.Config
}

// New creates the production CLI.
func New() *CLI {
	return newCLI(nil)
}

// NewWithBackend creates a CLI with a fixed backend, for tests.
func NewWithBackend(backend domain.Backend) *CLI {
	return newCLI(backend)
}

func newCLI(backend domain.Backend) *CLI {
	app := &CLI{backend: backend}

	app.app = &cli.Command{
		Name:    "wingboard",
		Usage:   "A dashboard for the winget package manager",
		Version: Version,
		Suggest: true,
		Description: `Browse, search, install, uninstall and upgrade winget packages from a
terminal dashboard. Run without arguments to open the dashboard; the
subcommands below cover the same listings for scripts.

Examples:
  wingboard                     # open the dashboard
  wingboard list                # installed packages
  wingboard search firefox      # search the catalogs
  wingboard upgrades --json     # pending upgrades as JSON`,
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:        "verbose",
				Usage:       "show progress messages on stderr",
				Aliases:     []string{"v"},
				Destination: &app.verbose,
			},
			&cli.BoolFlag{
				Name:        "json",
				Usage:       "output structured JSON results",
				Aliases:     []string{"j"},
				Destination: &app.jsonOut,
			},
			&cli.BoolFlag{
				Name:        "plain",
				Usage:       "output plain text without formatting for scripts",
				Destination: &app.plain,
			},
			&cli.StringFlag{
				Name:        "config",
				Usage:       "path to the config file",
				Destination: &app.configPath,
			},
			&cli.StringFlag{
				Name:        "source",
				Aliases:     []string{"s"},
				Usage:       "restrict to one catalog: winget or msstore",
				Destination: &app.sourceFlag,
			},
			&cli.StringFlag{
				Name:        "winget",
				Usage:       "path to the winget binary",
				Destination: &app.wingetPath,
			},
			&cli.DurationFlag{
				Name:        "timeout",
				Usage:       "timeout per winget call (0 = config default)",
				Destination: &app.timeout,
			},
		},
		Before:   app.setup,
		Action:   app.runDashboard,
		Commands: app.commands(),
	}

	return app
}

// Run executes the CLI application.
func (app *CLI) Run(ctx context.Context, args []string) error {
	return app.app.Run(ctx, args)
}

func (app *CLI) commands() []*cli.Command {
	return []*cli.Command{
		app.listCommand(),
		app.searchCommand(),
		app.upgradesCommand(),
		app.showCommand(),
		app.sourcesCommand(),
		app.versionCommand(),
	}
}

// setup loads the config, validates flags, and builds the backend unless one
// was injected.
func (app *CLI) setup(ctx context.Context, _ *cli.Command) (context.Context, error) {
	if app.jsonOut && app.plain {
		return ctx, NewExitError(ExitUsageError, "cannot use both --json and --plain flags simultaneously", nil)
	}

	switch app.sourceFlag {
	case "", "winget", "msstore":
	default:
		return ctx, NewExitError(ExitUsageError, "invalid --source value: must be winget or msstore", nil)
	}

	console.DefaultOutput.SetMode(app.verbose, app.jsonOut, app.plain)

	path := app.configPath
	if path == "" {
		path = config.Path()
	}

	cfg, err := config.Load(path)
	if err != nil {
		return ctx, NewExitError(ExitConfigError, "invalid configuration", err)
	}

	if app.wingetPath != "" {
		cfg.WingetPath = app.wingetPath
	}

	if app.timeout > 0 {
		cfg.TimeoutSeconds = int(app.timeout.Seconds())
	}

	if app.sourceFlag == "" {
		app.sourceFlag = cfg.Source
	}

	app.cfg = cfg

	if app.backend == nil {
		backend := winget.New(
			platform.NewCommandRunner(),
			winget.WithBinary(cfg.WingetPath),
			winget.WithTimeout(cfg.Timeout()),
		)

		if !backend.Available() {
			return ctx, NewExitError(ExitDependencyError, "winget is not available", ErrWingetNotFound)
		}

		app.backend = backend
	}

	return ctx, nil
}

// filter resolves the effective source filter from flags and config.
func (app *CLI) filter() domain.SourceFilter {
	return domain.ParseSourceFilter(app.sourceFlag)
}

// runDashboard is the default action: launch the TUI.
func (app *CLI) runDashboard(ctx context.Context, cmd *cli.Command) error {
	if cmd.Args().Len() > 0 {
		return NewExitError(ExitUsageError, "unknown command: "+cmd.Args().First(), nil)
	}

	if err := tui.Launch(ctx, app.backend, app.filter()); err != nil {
		if errors.Is(err, tui.ErrNoTerminal) {
			return NewExitError(ExitUsageError, "the dashboard requires a terminal; see `wingboard --help` for headless commands", err)
		}

		return NewExitError(ExitGeneralError, "failed to launch dashboard", err)
	}

	return nil
}
