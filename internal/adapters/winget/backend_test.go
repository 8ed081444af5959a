// SPDX-FileCopyrightText: 2025 The Wingboard Authors
// SPDX-License-Identifier: EUPL-1.2

package winget

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wingboard/wingboard/internal/adapters/platform"
	"github.com/wingboard/wingboard/internal/domain"
)

func TestSearchCommandLine(t *testing.T) {
	t.Parallel()

	runner := platform.NewMockCommandRunner()
	backend := New(runner)

	_, err := backend.Search(context.Background(), "firefox", domain.FilterAll)
	require.NoError(t, err)

	require.Len(t, runner.Calls, 1)
	assert.Equal(t, "winget search firefox --accept-source-agreements", runner.Calls[0])
}

func TestSearchAppendsSourceFlag(t *testing.T) {
	t.Parallel()

	runner := platform.NewMockCommandRunner()
	backend := New(runner)

	_, err := backend.Search(context.Background(), "firefox", domain.FilterMSStore)
	require.NoError(t, err)

	require.Len(t, runner.Calls, 1)
	assert.Equal(t, "winget search firefox --accept-source-agreements --source msstore", runner.Calls[0])
}

func TestListInstalledParsesTable(t *testing.T) {
	t.Parallel()

	runner := platform.NewMockCommandRunner()
	runner.SetOutput("winget list --accept-source-agreements", upgradeTable)

	backend := New(runner)

	packages, err := backend.ListInstalled(context.Background(), domain.FilterAll)
	require.NoError(t, err)
	require.Len(t, packages, 3)
	assert.Equal(t, "Git.Git", packages[0].ID)
}

func TestInstallCommandLineAndResult(t *testing.T) {
	t.Parallel()

	runner := platform.NewMockCommandRunner()
	runner.SetOutput(
		"winget install --id Git.Git --exact --accept-source-agreements --accept-package-agreements",
		"Downloading https://example.invalid/git.exe\nSuccessfully installed\n",
	)

	backend := New(runner)

	msg, err := backend.Install(context.Background(), "Git.Git")
	require.NoError(t, err)
	assert.Equal(t, "Successfully installed", msg)
}

func TestUninstallCommandLine(t *testing.T) {
	t.Parallel()

	runner := platform.NewMockCommandRunner()
	backend := New(runner)

	_, err := backend.Uninstall(context.Background(), "Git.Git")
	require.NoError(t, err)

	require.Len(t, runner.Calls, 1)
	assert.Equal(t, "winget uninstall --id Git.Git --exact --accept-source-agreements", runner.Calls[0])
}

func TestDetailsCommandLine(t *testing.T) {
	t.Parallel()

	runner := platform.NewMockCommandRunner()
	runner.SetOutput("winget show --id Git.Git --exact --accept-source-agreements", showOutput)

	backend := New(runner)

	details, err := backend.Details(context.Background(), "Git.Git")
	require.NoError(t, err)
	assert.Equal(t, "Git.Git", details.ID)
	assert.Equal(t, "The Git Development Community", details.Publisher)
}

func TestWithBinaryOverride(t *testing.T) {
	t.Parallel()

	runner := platform.NewMockCommandRunner()
	backend := New(runner, WithBinary(`C:\tools\winget.exe`))

	_, err := backend.ListSources(context.Background())
	require.NoError(t, err)

	require.Len(t, runner.Calls, 1)
	assert.Equal(t, `C:\tools\winget.exe source list`, runner.Calls[0])
}

func TestRunSpawnFailure(t *testing.T) {
	t.Parallel()

	runner := platform.NewMockCommandRunner()
	runner.SetError("winget upgrade --accept-source-agreements", errors.New(`exec: "winget": executable file not found in $PATH`))

	backend := New(runner)

	_, err := backend.ListUpgrades(context.Background(), domain.FilterAll)
	require.Error(t, err)
	assert.True(t, domain.IsBackendError(err, domain.BackendSpawnFailed))
}

func TestRunTimeout(t *testing.T) {
	t.Parallel()

	runner := &stallingRunner{}
	backend := New(runner, WithTimeout(10*time.Millisecond))

	_, err := backend.ListInstalled(context.Background(), domain.FilterAll)
	require.Error(t, err)
	assert.True(t, domain.IsBackendError(err, domain.BackendTimeout))
}

// stallingRunner blocks until the context expires, like a hung winget
// process killed by CommandContext.
type stallingRunner struct{}

func (r *stallingRunner) Output(ctx context.Context, _ string, _ ...string) (string, error) {
	<-ctx.Done()

	return "", ctx.Err()
}

func (r *stallingRunner) CommandExists(_ string) bool {
	return true
}
