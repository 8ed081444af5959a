// SPDX-FileCopyrightText: 2025 The Wingboard Authors
// SPDX-License-Identifier: EUPL-1.2

package models

import (
	"context"
	"errors"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wingboard/wingboard/internal/domain"
)

func newTestDashboard(backend domain.Backend) *Dashboard {
	dashboard := NewDashboard(context.Background(), backend, domain.FilterAll)

	model, _ := dashboard.Update(tea.WindowSizeMsg{Width: 100, Height: 30})

	return model.(*Dashboard)
}

func keyPress(s string) tea.KeyMsg {
	switch s {
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	default:
		return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
	}
}

// loadView pushes a snapshot into a view through the normal fetch cycle.
func loadView(m *Dashboard, view domain.View, packages []domain.Package) {
	op, _ := m.dispatcher.SubmitFetch(view, "q")

	kind := domain.OpRefresh
	if view == domain.ViewSearch {
		kind = domain.OpSearch
	}

	m.Update(PackagesLoadedMsg{View: view, Kind: kind, Seq: op.Seq, Packages: packages})
}

// collectMsgs executes a command tree synchronously and gathers every
// produced message.
func collectMsgs(cmd tea.Cmd) []tea.Msg {
	if cmd == nil {
		return nil
	}

	msg := cmd()

	if batch, ok := msg.(tea.BatchMsg); ok {
		var out []tea.Msg

		for _, sub := range batch {
			out = append(out, collectMsgs(sub)...)
		}

		return out
	}

	return []tea.Msg{msg}
}

func TestStaleSnapshotDropped(t *testing.T) {
	t.Parallel()

	m := newTestDashboard(&stubBackend{})

	first, _ := m.dispatcher.SubmitFetch(domain.ViewInstalled, "")
	second, _ := m.dispatcher.SubmitFetch(domain.ViewInstalled, "")

	newer := []domain.Package{testPackage("Git.Git"), testPackage("Mozilla.Firefox")}
	older := []domain.Package{testPackage("Stale.Package")}

	m.Update(PackagesLoadedMsg{View: domain.ViewInstalled, Kind: domain.OpRefresh, Seq: second.Seq, Packages: newer})
	m.Update(PackagesLoadedMsg{View: domain.ViewInstalled, Kind: domain.OpRefresh, Seq: first.Seq, Packages: older})

	assert.Equal(t, newer, m.views[domain.ViewInstalled].packages)
}

func TestStaleSearchResultDropped(t *testing.T) {
	t.Parallel()

	m := newTestDashboard(&stubBackend{})

	first, _ := m.dispatcher.SubmitFetch(domain.ViewSearch, "git")
	second, _ := m.dispatcher.SubmitFetch(domain.ViewSearch, "firefox")

	m.Update(PackagesLoadedMsg{View: domain.ViewSearch, Kind: domain.OpSearch, Seq: second.Seq,
		Packages: []domain.Package{testPackage("Mozilla.Firefox")}})
	m.Update(PackagesLoadedMsg{View: domain.ViewSearch, Kind: domain.OpSearch, Seq: first.Seq,
		Packages: []domain.Package{testPackage("Git.Git")}})

	require.Len(t, m.views[domain.ViewSearch].packages, 1)
	assert.Equal(t, "Mozilla.Firefox", m.views[domain.ViewSearch].packages[0].ID)
}

func TestSnapshotReplacementClampsCursor(t *testing.T) {
	t.Parallel()

	m := newTestDashboard(&stubBackend{})

	loadView(m, domain.ViewInstalled, []domain.Package{
		testPackage("A.A"), testPackage("B.B"), testPackage("C.C"),
	})

	m.Update(keyPress("G"))
	require.Equal(t, 2, m.views[domain.ViewInstalled].cursor)

	loadView(m, domain.ViewInstalled, []domain.Package{testPackage("A.A")})
	assert.Equal(t, 0, m.views[domain.ViewInstalled].cursor)

	loadView(m, domain.ViewInstalled, nil)
	assert.Equal(t, -1, m.views[domain.ViewInstalled].cursor)
}

func TestCursorWrapsOnSingleSteps(t *testing.T) {
	t.Parallel()

	m := newTestDashboard(&stubBackend{})

	loadView(m, domain.ViewInstalled, []domain.Package{testPackage("A.A"), testPackage("B.B")})

	m.Update(keyPress("k"))
	assert.Equal(t, 1, m.views[domain.ViewInstalled].cursor)

	m.Update(keyPress("j"))
	assert.Equal(t, 0, m.views[domain.ViewInstalled].cursor)
}

func TestFilterCycleIsLocal(t *testing.T) {
	t.Parallel()

	backend := &stubBackend{}
	m := newTestDashboard(backend)

	loadView(m, domain.ViewInstalled, []domain.Package{
		{ID: "Git.Git", Name: "Git", Source: domain.SourceWinget},
		{ID: "9WZDNCRFHVQM", Name: "Netflix", Source: domain.SourceMSStore},
	})

	installedCalls := backend.listInstalledCalls

	m.Update(keyPress("f"))
	assert.Equal(t, domain.FilterWinget, m.filter)
	require.Len(t, m.visible(), 1)
	assert.Equal(t, "Git.Git", m.visible()[0].ID)

	m.Update(keyPress("f"))
	assert.Equal(t, domain.FilterMSStore, m.filter)

	m.Update(keyPress("f"))
	assert.Equal(t, domain.FilterAll, m.filter)
	assert.Len(t, m.visible(), 2)

	assert.Equal(t, installedCalls, backend.listInstalledCalls, "filtering must not refetch")
	assert.Zero(t, backend.searchCalls)
}

func TestNarrowFiltersLocally(t *testing.T) {
	t.Parallel()

	m := newTestDashboard(&stubBackend{})

	loadView(m, domain.ViewInstalled, []domain.Package{
		{ID: "Git.Git", Name: "Git", Source: domain.SourceWinget},
		{ID: "Mozilla.Firefox", Name: "Mozilla Firefox", Source: domain.SourceWinget},
	})

	m.Update(keyPress("/"))
	require.True(t, m.searching)

	m.Update(keyPress("f"))
	m.Update(keyPress("i"))
	m.Update(keyPress("r"))

	require.Len(t, m.visible(), 1)
	assert.Equal(t, "Mozilla.Firefox", m.visible()[0].ID)

	// esc clears the narrowing.
	m.Update(keyPress("esc"))
	assert.Len(t, m.visible(), 2)
}

func TestSwitchViewKeepsPerViewState(t *testing.T) {
	t.Parallel()

	m := newTestDashboard(&stubBackend{})

	loadView(m, domain.ViewInstalled, []domain.Package{testPackage("A.A"), testPackage("B.B")})
	m.Update(keyPress("G"))

	m.Update(keyPress("tab"))
	assert.Equal(t, domain.ViewUpgrades, m.active)

	m.Update(keyPress("tab"))
	m.Update(keyPress("tab"))
	assert.Equal(t, domain.ViewInstalled, m.active)
	assert.Equal(t, 1, m.views[domain.ViewInstalled].cursor)
}

func TestConfirmAcceptedRunsOperation(t *testing.T) {
	t.Parallel()

	backend := &stubBackend{}
	m := newTestDashboard(backend)
	pkg := testPackage("Git.Git")

	_, cmd := m.Update(confirmResolvedMsg{accepted: true, kind: domain.OpUpgrade, pkg: pkg})

	msgs := collectMsgs(cmd)

	var done *OperationDoneMsg

	for _, msg := range msgs {
		if opMsg, ok := msg.(OperationDoneMsg); ok {
			done = &opMsg
		}
	}

	require.NotNil(t, done)
	assert.Equal(t, 1, backend.upgradeCalls)
	assert.Equal(t, domain.StatusRunning, m.ops[pkg.ID].Status)
}

func TestConfirmCancelledDoesNothing(t *testing.T) {
	t.Parallel()

	backend := &stubBackend{}
	m := newTestDashboard(backend)

	_, cmd := m.Update(confirmResolvedMsg{accepted: false, kind: domain.OpUninstall, pkg: testPackage("Git.Git")})

	assert.Nil(t, cmd)
	assert.Zero(t, backend.uninstallCalls)
	assert.Contains(t, m.status, "cancelled")
}

func TestDuplicateOperationRejected(t *testing.T) {
	t.Parallel()

	backend := &stubBackend{}
	m := newTestDashboard(backend)
	pkg := testPackage("Git.Git")

	m.Update(confirmResolvedMsg{accepted: true, kind: domain.OpUpgrade, pkg: pkg})
	running := m.ops[pkg.ID]

	_, cmd := m.Update(confirmResolvedMsg{accepted: true, kind: domain.OpUpgrade, pkg: pkg})

	assert.Nil(t, cmd)
	assert.Equal(t, 1, backend.upgradeCalls)
	assert.True(t, m.statusErr)
	// The running operation is untouched by the rejected duplicate.
	assert.Equal(t, running, m.ops[pkg.ID])
}

func TestOperationSuccessRefreshesViews(t *testing.T) {
	t.Parallel()

	backend := &stubBackend{}
	m := newTestDashboard(backend)
	pkg := testPackage("Git.Git")

	m.Update(confirmResolvedMsg{accepted: true, kind: domain.OpUninstall, pkg: pkg})
	op := m.ops[pkg.ID]

	installedBefore := backend.listInstalledCalls
	upgradesBefore := backend.listUpgradesCalls

	_, cmd := m.Update(OperationDoneMsg{Op: op, Output: "ok"})
	collectMsgs(cmd)

	assert.Equal(t, domain.StatusSucceeded, m.ops[pkg.ID].Status)
	assert.Equal(t, installedBefore+1, backend.listInstalledCalls)
	assert.Equal(t, upgradesBefore+1, backend.listUpgradesCalls)
}

func TestOperationFailureStillRefreshes(t *testing.T) {
	t.Parallel()

	backend := &stubBackend{}
	m := newTestDashboard(backend)
	pkg := testPackage("Git.Git")

	m.details[pkg.ID] = domain.PackageDetails{ID: pkg.ID, Version: "2.49"}

	m.Update(confirmResolvedMsg{accepted: true, kind: domain.OpUpgrade, pkg: pkg})
	op := m.ops[pkg.ID]

	installedBefore := backend.listInstalledCalls
	upgradesBefore := backend.listUpgradesCalls

	_, cmd := m.Update(OperationDoneMsg{Op: op, Err: errors.New("exit status 1")})
	collectMsgs(cmd)

	assert.Equal(t, domain.StatusFailed, m.ops[pkg.ID].Status)
	assert.True(t, m.statusErr)

	// A failed upgrade may have changed the system halfway; the snapshot
	// and the detail cache cannot be trusted.
	assert.Equal(t, installedBefore+1, backend.listInstalledCalls)
	assert.Equal(t, upgradesBefore+1, backend.listUpgradesCalls)

	_, cached := m.details[pkg.ID]
	assert.False(t, cached)
}

func TestSpaceMarksOnUpgradesViewOnly(t *testing.T) {
	t.Parallel()

	m := newTestDashboard(&stubBackend{})

	loadView(m, domain.ViewInstalled, []domain.Package{testPackage("Git.Git")})
	loadView(m, domain.ViewUpgrades, []domain.Package{testPackage("A.A"), testPackage("B.B")})

	// Marking is an Upgrades-view action.
	m.Update(keyPress(" "))
	assert.Empty(t, m.marked)

	m.switchView(domain.ViewUpgrades)

	m.Update(keyPress(" "))
	assert.True(t, m.marked["A.A"])

	m.Update(keyPress(" "))
	assert.False(t, m.marked["A.A"])
}

func TestBatchUpgradeNeedsMarks(t *testing.T) {
	t.Parallel()

	m := newTestDashboard(&stubBackend{})

	loadView(m, domain.ViewUpgrades, []domain.Package{testPackage("A.A")})

	// Wrong view first, then no marks.
	m.Update(keyPress("U"))
	assert.True(t, m.statusErr)
	assert.False(t, m.overlay.active())

	m.switchView(domain.ViewUpgrades)
	m.Update(keyPress("U"))
	assert.True(t, m.statusErr)
	assert.False(t, m.overlay.active())
}

func TestBatchUpgradeRunsSequentially(t *testing.T) {
	t.Parallel()

	backend := &stubBackend{}
	m := newTestDashboard(backend)

	loadView(m, domain.ViewUpgrades, []domain.Package{
		testPackage("A.A"), testPackage("B.B"), testPackage("C.C"),
	})
	m.switchView(domain.ViewUpgrades)

	m.Update(keyPress(" "))
	m.Update(keyPress("j"))
	m.Update(keyPress(" "))

	_, cmd := m.Update(keyPress("U"))
	require.NotNil(t, cmd)
	require.True(t, m.overlay.active())

	_, cmd = m.Update(confirmResolvedMsg{accepted: true, kind: domain.OpUpgrade,
		batch: []domain.Package{testPackage("A.A"), testPackage("B.B")}})

	// Only the first upgrade runs; the second waits for its turn.
	msgs := collectMsgs(cmd)
	assert.Equal(t, 1, backend.upgradeCalls)
	assert.Empty(t, m.marked)
	assert.Contains(t, m.status, "upgrade 1/2")

	for _, msg := range msgs {
		if done, ok := msg.(OperationDoneMsg); ok {
			_, cmd = m.Update(done)
		}
	}

	// Completing the first submits the second.
	msgs = collectMsgs(cmd)
	assert.Equal(t, 2, backend.upgradeCalls)
	assert.Contains(t, m.status, "upgrade 2/2")

	for _, msg := range msgs {
		if done, ok := msg.(OperationDoneMsg); ok {
			m.Update(done)
		}
	}

	assert.Equal(t, domain.StatusSucceeded, m.ops["A.A"].Status)
	assert.Equal(t, domain.StatusSucceeded, m.ops["B.B"].Status)
	assert.Empty(t, m.batchQueue)
}

func TestBatchUpgradeContinuesAfterFailure(t *testing.T) {
	t.Parallel()

	backend := &stubBackend{err: errors.New("exit status 1")}
	m := newTestDashboard(backend)

	_, cmd := m.Update(confirmResolvedMsg{accepted: true, kind: domain.OpUpgrade,
		batch: []domain.Package{testPackage("A.A"), testPackage("B.B")}})

	for _, msg := range collectMsgs(cmd) {
		if done, ok := msg.(OperationDoneMsg); ok {
			_, cmd = m.Update(done)
		}
	}

	// A.A failed but B.B still gets its turn.
	assert.Equal(t, domain.StatusFailed, m.ops["A.A"].Status)

	collectMsgs(cmd)
	assert.Equal(t, 2, backend.upgradeCalls)
}

func TestStatusLineCarriesOperationHandle(t *testing.T) {
	t.Parallel()

	m := newTestDashboard(&stubBackend{})
	pkg := testPackage("Git.Git")

	m.Update(confirmResolvedMsg{accepted: true, kind: domain.OpUpgrade, pkg: pkg})

	require.NotEmpty(t, m.ops[pkg.ID].Handle)
	assert.Contains(t, m.status, m.ops[pkg.ID].Short())
}

func TestActionsWithoutSelectionUseSentinel(t *testing.T) {
	t.Parallel()

	m := newTestDashboard(&stubBackend{})

	m.Update(keyPress("enter"))

	assert.True(t, m.statusErr)
	assert.Equal(t, domain.ErrNoSelection.Error(), m.status)
}

func TestStaleOperationResultDropped(t *testing.T) {
	t.Parallel()

	m := newTestDashboard(&stubBackend{})
	pkg := testPackage("Git.Git")

	m.Update(confirmResolvedMsg{accepted: true, kind: domain.OpInstall, pkg: pkg})
	op := m.ops[pkg.ID]

	stale := op
	stale.Seq--

	_, cmd := m.Update(OperationDoneMsg{Op: stale, Output: "ok"})

	assert.Nil(t, cmd)
	assert.Equal(t, domain.StatusRunning, m.ops[pkg.ID].Status)
}

func TestDetailsLoadedMergesListingRow(t *testing.T) {
	t.Parallel()

	m := newTestDashboard(&stubBackend{})

	loadView(m, domain.ViewInstalled, []domain.Package{
		{ID: "Git.Git", Name: "Git", Version: "2.50", Source: domain.SourceWinget},
	})

	m.detailID = "Git.Git"
	op, _ := m.dispatcher.SubmitDetails("Git.Git")

	m.Update(DetailsLoadedMsg{PackageID: "Git.Git", Seq: op.Seq,
		Details: domain.PackageDetails{Publisher: "The Git Development Community"}})

	details, ok := m.details["Git.Git"]
	require.True(t, ok)
	assert.Equal(t, "Git", details.Name)
	assert.Equal(t, "2.50", details.Version)
	assert.Equal(t, "The Git Development Community", details.Publisher)
	assert.True(t, m.showDetails)
}

func TestDetailsServedFromCache(t *testing.T) {
	t.Parallel()

	backend := &stubBackend{}
	m := newTestDashboard(backend)

	loadView(m, domain.ViewInstalled, []domain.Package{testPackage("Git.Git")})
	m.details["Git.Git"] = domain.PackageDetails{ID: "Git.Git", Name: "Git"}

	_, cmd := m.Update(keyPress("enter"))

	assert.Nil(t, cmd)
	assert.True(t, m.showDetails)
	assert.Zero(t, backend.detailsCalls)
}

func TestOperationSuccessInvalidatesDetailCache(t *testing.T) {
	t.Parallel()

	m := newTestDashboard(&stubBackend{})
	pkg := testPackage("Git.Git")

	m.details[pkg.ID] = domain.PackageDetails{ID: pkg.ID, Version: "2.49"}

	m.Update(confirmResolvedMsg{accepted: true, kind: domain.OpUpgrade, pkg: pkg})
	op := m.ops[pkg.ID]

	m.Update(OperationDoneMsg{Op: op, Output: "ok"})

	_, cached := m.details[pkg.ID]
	assert.False(t, cached)
}

func TestMutatingKeysCheckActiveView(t *testing.T) {
	t.Parallel()

	backend := &stubBackend{}
	m := newTestDashboard(backend)

	loadView(m, domain.ViewInstalled, []domain.Package{testPackage("Git.Git")})

	// Install only works from the Search view.
	m.Update(keyPress("i"))
	assert.True(t, m.statusErr)
	assert.False(t, m.overlay.active())

	// Uninstall matches the Installed view and opens the confirm overlay.
	m.Update(keyPress("x"))
	assert.True(t, m.overlay.active())
	assert.Zero(t, backend.uninstallCalls, "nothing runs before confirmation")
}

func TestSearchSubmitFetchesBackend(t *testing.T) {
	t.Parallel()

	backend := &stubBackend{results: []domain.Package{testPackage("Git.Git")}}
	m := newTestDashboard(backend)

	m.switchView(domain.ViewSearch)
	m.Update(keyPress("/"))
	m.Update(keyPress("g"))
	m.Update(keyPress("i"))
	m.Update(keyPress("t"))

	assert.Zero(t, backend.searchCalls, "typing must not search")

	_, cmd := m.Update(keyPress("enter"))
	msgs := collectMsgs(cmd)

	assert.Equal(t, 1, backend.searchCalls)
	assert.Equal(t, "git", backend.lastQuery)

	for _, msg := range msgs {
		if loaded, ok := msg.(PackagesLoadedMsg); ok {
			m.Update(loaded)
		}
	}

	assert.Len(t, m.views[domain.ViewSearch].packages, 1)
}

func TestEmptySearchRejected(t *testing.T) {
	t.Parallel()

	backend := &stubBackend{}
	m := newTestDashboard(backend)

	m.switchView(domain.ViewSearch)
	m.Update(keyPress("/"))
	_, cmd := m.Update(keyPress("enter"))

	assert.Nil(t, cmd)
	assert.True(t, m.statusErr)
	assert.Equal(t, domain.ErrEmptyQuery.Error(), m.status)
	assert.Zero(t, backend.searchCalls)
}

func TestFetchErrorKeepsSnapshot(t *testing.T) {
	t.Parallel()

	m := newTestDashboard(&stubBackend{})

	existing := []domain.Package{testPackage("Git.Git")}
	loadView(m, domain.ViewInstalled, existing)

	op, _ := m.dispatcher.SubmitFetch(domain.ViewInstalled, "")
	m.Update(PackagesLoadedMsg{View: domain.ViewInstalled, Kind: domain.OpRefresh, Seq: op.Seq,
		Err: errors.New("spawn winget: not found")})

	assert.Equal(t, existing, m.views[domain.ViewInstalled].packages)
	assert.True(t, m.statusErr)
}
