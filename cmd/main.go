// SPDX-FileCopyrightText: 2025 The Wingboard Authors
// SPDX-License-Identifier: EUPL-1.2

// Package main provides the CLI entry point for wingboard.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"

	"github.com/wingboard/wingboard/internal/cli"
)

func main() {
	os.Exit(run())
}

func run() int {
	// One dashboard per machine: concurrent instances would race on winget
	// and confuse each other's listings.
	lockPath := filepath.Join(os.TempDir(), "wingboard.lock")
	lock := flock.New(lockPath)

	locked, err := lock.TryLock()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to acquire process lock: %v\n", err)

		return cli.ExitGeneralError
	}

	if !locked {
		fmt.Fprintf(os.Stderr, "Another wingboard instance is already running\n")

		return cli.ExitGeneralError
	}

	defer func() {
		if unlockErr := lock.Unlock(); unlockErr != nil {
			fmt.Fprintf(os.Stderr, "Warning: failed to release process lock: %v\n", unlockErr)
		}
	}()

	app := cli.New()

	ctx := context.Background()
	if err := app.Run(ctx, os.Args); err != nil {
		exitErr := &cli.ExitError{}
		if errors.As(err, &exitErr) {
			fmt.Fprintf(os.Stderr, "%s\n", exitErr.Error())

			return exitErr.Code
		}

		fmt.Fprintf(os.Stderr, "Unexpected error: %v\n", err)

		return cli.ExitGeneralError
	}

	return cli.ExitSuccess
}
