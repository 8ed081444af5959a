// SPDX-FileCopyrightText: 2025 The Wingboard Authors
// SPDX-License-Identifier: EUPL-1.2

package models

import (
	"context"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/lithammer/fuzzysearch/fuzzy"

	"github.com/wingboard/wingboard/internal/domain"
	"github.com/wingboard/wingboard/internal/tui/styles"
)

// wheelStep is how many rows one mouse wheel notch moves the cursor.
const wheelStep = 3

// viewState is the per-view slice of dashboard state. Each view keeps its own
// snapshot and cursor so switching tabs never loses position.
type viewState struct {
	packages []domain.Package
	cursor   int
	offset   int
	loaded   bool
	fetchErr error
	// narrow is the local filter text for Installed and Upgrades; the Search
	// view uses query instead.
	narrow string
	// query is the last submitted backend search (Search view only).
	query string
}

// Dashboard is the root Bubble Tea model: three package views, a global
// source filter, a search bar, overlays, and the operation dispatcher. All
// state transitions happen in Update; background work only ever reports back
// through messages.
type Dashboard struct {
	styles     *styles.Styles
	keys       DashboardKeyMap
	dispatcher *Dispatcher

	active domain.View
	views  map[domain.View]*viewState
	filter domain.SourceFilter

	searchInput textinput.Model
	searching   bool

	spinner spinner.Model

	// ops tracks the most recent mutating operation per package id, for the
	// row glyphs and the status line.
	ops map[string]domain.Operation

	// marked is the set of package ids selected for a batch upgrade on the
	// Upgrades view.
	marked map[string]bool

	// batchQueue holds the remaining packages of a running batch upgrade.
	// Packages are upgraded one at a time, in list order; a failure does not
	// stop the rest of the batch.
	batchQueue []domain.Package
	batchTotal int

	// details caches `winget show` results by package id. Mutating operations
	// invalidate the entry for their package.
	details     map[string]domain.PackageDetails
	detailID    string
	showDetails bool

	overlay overlayState

	status    string
	statusErr bool

	width  int
	height int
	layout Layout

	// draggingScrollbar is set between a press on the scrollbar and the
	// matching release.
	draggingScrollbar bool

	quitting bool
}

// NewDashboard creates the dashboard model. The filter preselects the
// configured source; the three views start empty and unloaded.
func NewDashboard(ctx context.Context, backend domain.Backend, filter domain.SourceFilter) *Dashboard {
	styleSet := styles.New()

	input := textinput.New()
	input.Placeholder = "type to search"
	input.CharLimit = 128
	input.Prompt = ""

	spin := spinner.New(
		spinner.WithSpinner(spinner.Dot),
		spinner.WithStyle(styleSet.PrimaryText),
	)

	views := make(map[domain.View]*viewState, len(domain.AllViews()))
	for _, view := range domain.AllViews() {
		views[view] = &viewState{cursor: -1}
	}

	return &Dashboard{
		styles:      styleSet,
		keys:        DefaultDashboardKeyMap(),
		dispatcher:  NewDispatcher(ctx, backend),
		active:      domain.ViewInstalled,
		views:       views,
		filter:      filter,
		searchInput: input,
		spinner:     spin,
		ops:         make(map[string]domain.Operation),
		marked:      make(map[string]bool),
		details:     make(map[string]domain.PackageDetails),
	}
}

// Init fetches the Installed and Upgrades views up front; Search stays empty
// until the first query.
func (m *Dashboard) Init() tea.Cmd {
	_, installedCmd := m.dispatcher.SubmitFetch(domain.ViewInstalled, "")
	_, upgradesCmd := m.dispatcher.SubmitFetch(domain.ViewUpgrades, "")

	return tea.Batch(m.spinner.Tick, installedCmd, upgradesCmd)
}

// Update is the single reducer for every event in the program.
func (m *Dashboard) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.overlay.resize(msg.Width, msg.Height)

		return m, nil

	case spinner.TickMsg:
		if !m.anyFetchRunning() && !m.anyOpRunning() {
			return m, nil
		}

		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)

		return m, cmd

	case PackagesLoadedMsg:
		return m.handlePackagesLoaded(msg)

	case DetailsLoadedMsg:
		return m.handleDetailsLoaded(msg)

	case OperationDoneMsg:
		return m.handleOperationDone(msg)

	case confirmResolvedMsg:
		return m.handleConfirmResolved(msg)

	case tea.MouseMsg:
		return m.handleMouse(msg)

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	if m.overlay.active() {
		return m, m.overlay.update(msg)
	}

	return m, nil
}

// handleKey routes keyboard input: overlays first, then the search bar, then
// the dashboard bindings.
func (m *Dashboard) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.overlay.active() {
		return m, m.overlay.update(msg)
	}

	if m.searching {
		return m.handleSearchKey(msg)
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		m.quitting = true

		return m, tea.Quit

	case key.Matches(msg, m.keys.Up):
		m.moveCursor(-1, true)

	case key.Matches(msg, m.keys.Down):
		m.moveCursor(1, true)

	case key.Matches(msg, m.keys.PageUp):
		m.moveCursor(-m.listHeight(), false)

	case key.Matches(msg, m.keys.PageDown):
		m.moveCursor(m.listHeight(), false)

	case key.Matches(msg, m.keys.Home):
		m.setCursor(0)

	case key.Matches(msg, m.keys.End):
		m.setCursor(len(m.visible()) - 1)

	case key.Matches(msg, m.keys.NextView):
		m.switchView(m.active.Next())

	case key.Matches(msg, m.keys.PrevView):
		m.switchView(m.active.Prev())

	case key.Matches(msg, m.keys.CycleFilter):
		m.cycleFilter()

	case key.Matches(msg, m.keys.Search):
		m.startSearch()

	case key.Matches(msg, m.keys.Refresh):
		return m, m.refreshActive()

	case key.Matches(msg, m.keys.Install):
		return m.requestOperation(domain.OpInstall)

	case key.Matches(msg, m.keys.Uninstall):
		return m.requestOperation(domain.OpUninstall)

	case key.Matches(msg, m.keys.Upgrade):
		return m.requestOperation(domain.OpUpgrade)

	case key.Matches(msg, m.keys.Mark):
		m.toggleMark()

	case key.Matches(msg, m.keys.BatchUpgrade):
		return m.requestBatchUpgrade()

	case key.Matches(msg, m.keys.Details):
		return m, m.requestDetails()

	case key.Matches(msg, m.keys.Help):
		return m, m.overlay.openHelp(m.styles, m.width, m.height)

	case key.Matches(msg, m.keys.Back):
		if m.showDetails {
			m.showDetails = false
		}
	}

	return m, nil
}

// handleSearchKey drives the focused search bar. In the Search view, enter
// submits a backend search; in the other views every keystroke narrows the
// list locally.
func (m *Dashboard) handleSearchKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	state := m.views[m.active]

	switch msg.String() {
	case "enter":
		m.searching = false
		m.searchInput.Blur()

		if m.active == domain.ViewSearch {
			query := strings.TrimSpace(m.searchInput.Value())
			if query == "" {
				m.setStatus(domain.ErrEmptyQuery.Error(), true)

				return m, nil
			}

			state.query = query
			m.setStatus("searching for "+query+"…", false)
			_, cmd := m.dispatcher.SubmitFetch(domain.ViewSearch, query)

			return m, tea.Batch(cmd, m.spinner.Tick)
		}

		return m, nil

	case "esc":
		m.searching = false
		m.searchInput.Blur()

		if m.active != domain.ViewSearch {
			state.narrow = ""
			m.clampCursor()
		}

		return m, nil
	}

	var cmd tea.Cmd
	m.searchInput, cmd = m.searchInput.Update(msg)

	if m.active != domain.ViewSearch {
		state.narrow = m.searchInput.Value()
		m.clampCursor()
	}

	return m, cmd
}

// handlePackagesLoaded installs a fetched snapshot, unless a newer fetch for
// the same view has been submitted since.
func (m *Dashboard) handlePackagesLoaded(msg PackagesLoadedMsg) (tea.Model, tea.Cmd) {
	if !m.dispatcher.ResolveFetch(msg.View, msg.Kind, msg.Seq) {
		return m, nil
	}

	state := m.views[msg.View]
	state.loaded = true
	state.fetchErr = msg.Err

	if msg.Err != nil {
		m.setStatus(msg.Kind.String()+" failed: "+msg.Err.Error(), true)

		return m, nil
	}

	state.packages = msg.Packages
	m.clampCursorFor(msg.View)

	if msg.View == m.active {
		m.setStatus(countLabel(len(m.visible()), msg.View), false)
	}

	return m, nil
}

// handleDetailsLoaded caches a detail fetch and opens the panel when the
// result is still the one the user asked for last.
func (m *Dashboard) handleDetailsLoaded(msg DetailsLoadedMsg) (tea.Model, tea.Cmd) {
	if !m.dispatcher.Resolve(msg.PackageID, domain.OpDetails, msg.Seq) {
		return m, nil
	}

	if msg.Err != nil {
		m.setStatus("details failed: "+msg.Err.Error(), true)

		return m, nil
	}

	details := msg.Details
	if row, ok := m.rowByID(msg.PackageID); ok {
		details = details.Merge(domain.PackageDetails{
			ID:               row.ID,
			Name:             row.Name,
			Version:          row.Version,
			AvailableVersion: row.AvailableVersion,
			Source:           row.Source,
		})
	}

	m.details[msg.PackageID] = details

	if m.detailID == msg.PackageID {
		m.showDetails = true
	}

	return m, nil
}

// handleOperationDone finishes a mutating operation: records the terminal
// status, drops the stale detail cache entry, and refreshes the views the
// operation touched. Failure refreshes too: winget may have changed the
// system halfway before giving up, so the old snapshot cannot be trusted.
func (m *Dashboard) handleOperationDone(msg OperationDoneMsg) (tea.Model, tea.Cmd) {
	if !m.dispatcher.Resolve(msg.Op.PackageID, msg.Op.Kind, msg.Op.Seq) {
		return m, nil
	}

	done := msg.Op.Complete(msg.Err)
	m.ops[done.PackageID] = done
	delete(m.details, done.PackageID)

	var cmds []tea.Cmd

	_, installedCmd := m.dispatcher.SubmitFetch(domain.ViewInstalled, "")
	cmds = append(cmds, installedCmd)

	if done.Kind == domain.OpUpgrade || done.Kind == domain.OpUninstall {
		_, upgradesCmd := m.dispatcher.SubmitFetch(domain.ViewUpgrades, "")
		cmds = append(cmds, upgradesCmd)
	}

	if msg.Err != nil {
		m.setStatus(done.Kind.String()+" "+done.PackageID+" failed ["+done.Short()+"]: "+msg.Err.Error(), true)
	} else {
		m.setStatus(done.Kind.String()+" "+done.PackageID+" succeeded", false)
	}

	if done.Kind == domain.OpUpgrade {
		if next := m.advanceBatch(); next != nil {
			cmds = append(cmds, next)
		}
	}

	cmds = append(cmds, m.spinner.Tick)

	return m, tea.Batch(cmds...)
}

// handleConfirmResolved dispatches the confirmed operation, or drops it.
func (m *Dashboard) handleConfirmResolved(msg confirmResolvedMsg) (tea.Model, tea.Cmd) {
	m.overlay.close()

	if !msg.accepted {
		m.setStatus(msg.kind.String()+" cancelled", false)

		return m, nil
	}

	if len(msg.batch) > 0 {
		return m, m.startBatch(msg.batch)
	}

	return m, m.submitOperation(msg.kind, msg.pkg)
}

// requestOperation validates an install/uninstall/upgrade request against the
// active view and opens the confirmation overlay.
func (m *Dashboard) requestOperation(kind domain.OpKind) (tea.Model, tea.Cmd) {
	pkg, ok := m.selected()
	if !ok {
		m.setStatus(domain.ErrNoSelection.Error(), true)

		return m, nil
	}

	switch kind {
	case domain.OpInstall:
		if m.active != domain.ViewSearch {
			m.setStatus("install works from the Search view", true)

			return m, nil
		}
	case domain.OpUninstall:
		if m.active != domain.ViewInstalled {
			m.setStatus("uninstall works from the Installed view", true)

			return m, nil
		}
	case domain.OpUpgrade:
		if m.active != domain.ViewUpgrades {
			m.setStatus("upgrade works from the Upgrades view", true)

			return m, nil
		}
	}

	if m.dispatcher.Running(pkg.ID, kind) {
		m.setStatus(kind.String()+" already running for "+pkg.ID, true)

		return m, nil
	}

	return m, m.overlay.openConfirm(kind, pkg, m.width, m.height)
}

// submitOperation hands a confirmed operation to the dispatcher.
func (m *Dashboard) submitOperation(kind domain.OpKind, pkg domain.Package) tea.Cmd {
	op, cmd, err := m.dispatcher.SubmitPackageOp(kind, pkg)
	if err != nil {
		m.setStatus(kind.String()+" already running for "+pkg.ID, true)

		return nil
	}

	m.ops[pkg.ID] = op
	m.setStatus(kind.String()+" "+pkg.ID+"… ["+op.Short()+"]", false)

	return tea.Batch(cmd, m.spinner.Tick)
}

// toggleMark marks or unmarks the selected package for a batch upgrade.
func (m *Dashboard) toggleMark() {
	if m.active != domain.ViewUpgrades {
		return
	}

	pkg, ok := m.selected()
	if !ok {
		return
	}

	if m.marked[pkg.ID] {
		delete(m.marked, pkg.ID)
	} else {
		m.marked[pkg.ID] = true
	}
}

// requestBatchUpgrade opens the confirmation for upgrading every marked
// package on the Upgrades view.
func (m *Dashboard) requestBatchUpgrade() (tea.Model, tea.Cmd) {
	if m.active != domain.ViewUpgrades {
		m.setStatus("batch upgrade works from the Upgrades view", true)

		return m, nil
	}

	var batch []domain.Package

	for _, pkg := range m.visible() {
		if m.marked[pkg.ID] {
			batch = append(batch, pkg)
		}
	}

	if len(batch) == 0 {
		m.setStatus("no packages marked; press space to mark", true)

		return m, nil
	}

	return m, m.overlay.openBatchConfirm(batch, m.width, m.height)
}

// startBatch begins a confirmed batch upgrade and clears the marks.
func (m *Dashboard) startBatch(batch []domain.Package) tea.Cmd {
	m.batchQueue = batch
	m.batchTotal = len(batch)
	m.marked = make(map[string]bool)

	cmd := m.advanceBatch()
	if cmd == nil {
		return nil
	}

	return tea.Batch(cmd, m.spinner.Tick)
}

// advanceBatch submits the next queued upgrade, skipping packages that
// already have one running. Returns nil once the queue is drained.
func (m *Dashboard) advanceBatch() tea.Cmd {
	for len(m.batchQueue) > 0 {
		pkg := m.batchQueue[0]
		m.batchQueue = m.batchQueue[1:]

		op, cmd, err := m.dispatcher.SubmitPackageOp(domain.OpUpgrade, pkg)
		if err != nil {
			continue
		}

		m.ops[pkg.ID] = op

		position := m.batchTotal - len(m.batchQueue)
		m.setStatus("upgrade "+strconv.Itoa(position)+"/"+strconv.Itoa(m.batchTotal)+": "+pkg.ID+"…", false)

		return cmd
	}

	return nil
}

// requestDetails opens the detail panel, serving from cache when possible.
func (m *Dashboard) requestDetails() tea.Cmd {
	pkg, ok := m.selected()
	if !ok {
		m.setStatus(domain.ErrNoSelection.Error(), true)

		return nil
	}

	m.detailID = pkg.ID

	if _, cached := m.details[pkg.ID]; cached {
		m.showDetails = true

		return nil
	}

	m.setStatus("loading details for "+pkg.ID+"…", false)
	_, cmd := m.dispatcher.SubmitDetails(pkg.ID)

	return tea.Batch(cmd, m.spinner.Tick)
}

// refreshActive refetches the active view. The Search view replays the last
// submitted query and stays put when there is none yet.
func (m *Dashboard) refreshActive() tea.Cmd {
	state := m.views[m.active]

	if m.active == domain.ViewSearch && state.query == "" {
		m.setStatus("nothing to refresh: no search yet", true)

		return nil
	}

	m.setStatus("refreshing "+m.active.Title()+"…", false)
	_, cmd := m.dispatcher.SubmitFetch(m.active, state.query)

	return tea.Batch(cmd, m.spinner.Tick)
}

// switchView activates a view. Snapshots and cursors are per view, so no
// state is reset and nothing is refetched.
func (m *Dashboard) switchView(view domain.View) {
	if view == m.active {
		return
	}

	m.active = view
	m.showDetails = false
	m.searching = false
	m.searchInput.Blur()
	m.syncSearchInput()
	m.setStatus(countLabel(len(m.visible()), view), false)
}

// cycleFilter advances the global source filter. Filtering is local: the
// unfiltered snapshots stay, only visibility changes.
func (m *Dashboard) cycleFilter() {
	m.filter = m.filter.Cycle()

	for _, view := range domain.AllViews() {
		m.clampCursorFor(view)
	}

	m.setStatus("filter: "+m.filter.String(), false)
}

// startSearch focuses the search bar with the view's current text.
func (m *Dashboard) startSearch() {
	m.searching = true
	m.syncSearchInput()
	m.searchInput.Focus()
	m.searchInput.CursorEnd()
}

// syncSearchInput loads the active view's search text into the input.
func (m *Dashboard) syncSearchInput() {
	state := m.views[m.active]

	if m.active == domain.ViewSearch {
		m.searchInput.SetValue(state.query)
	} else {
		m.searchInput.SetValue(state.narrow)
	}
}

// visible returns the active view's rows after the source filter and, for
// Installed and Upgrades, the local narrowing text.
func (m *Dashboard) visible() []domain.Package {
	return m.visibleFor(m.active)
}

func (m *Dashboard) visibleFor(view domain.View) []domain.Package {
	state := m.views[view]

	rows := make([]domain.Package, 0, len(state.packages))

	for _, pkg := range state.packages {
		if !m.filter.Matches(pkg.Source) {
			continue
		}

		if view != domain.ViewSearch && !matchesNarrow(pkg, state.narrow) {
			continue
		}

		rows = append(rows, pkg)
	}

	return rows
}

// matchesNarrow reports whether the package passes the local narrowing text,
// by fuzzy name match or case-insensitive id substring.
func matchesNarrow(pkg domain.Package, narrow string) bool {
	if narrow == "" {
		return true
	}

	if fuzzy.MatchNormalizedFold(narrow, pkg.Name) {
		return true
	}

	return strings.Contains(strings.ToLower(pkg.ID), strings.ToLower(narrow))
}

// selected returns the package under the cursor.
func (m *Dashboard) selected() (domain.Package, bool) {
	rows := m.visible()
	cursor := m.views[m.active].cursor

	if cursor < 0 || cursor >= len(rows) {
		return domain.Package{}, false
	}

	return rows[cursor], true
}

// rowByID finds a listing row for the package id in the active view.
func (m *Dashboard) rowByID(id string) (domain.Package, bool) {
	for _, pkg := range m.views[m.active].packages {
		if pkg.ID == id {
			return pkg, true
		}
	}

	return domain.Package{}, false
}

// moveCursor moves the cursor by delta. Single steps wrap around the list;
// page moves clamp at the edges.
func (m *Dashboard) moveCursor(delta int, wrap bool) {
	rows := m.visible()
	if len(rows) == 0 {
		m.views[m.active].cursor = -1

		return
	}

	state := m.views[m.active]

	cursor := state.cursor + delta
	if wrap {
		cursor = ((cursor % len(rows)) + len(rows)) % len(rows)
	} else if cursor < 0 {
		cursor = 0
	} else if cursor >= len(rows) {
		cursor = len(rows) - 1
	}

	state.cursor = cursor
	m.scrollIntoView()
}

// setCursor positions the cursor on an absolute visible index.
func (m *Dashboard) setCursor(index int) {
	rows := m.visible()
	if len(rows) == 0 {
		m.views[m.active].cursor = -1

		return
	}

	if index < 0 {
		index = 0
	}

	if index >= len(rows) {
		index = len(rows) - 1
	}

	m.views[m.active].cursor = index
	m.scrollIntoView()
}

// clampCursor keeps the active cursor valid after the visible set changed.
func (m *Dashboard) clampCursor() {
	m.clampCursorFor(m.active)
}

func (m *Dashboard) clampCursorFor(view domain.View) {
	rows := m.visibleFor(view)
	state := m.views[view]

	if len(rows) == 0 {
		state.cursor = -1
		state.offset = 0

		return
	}

	if state.cursor < 0 {
		state.cursor = 0
	}

	if state.cursor >= len(rows) {
		state.cursor = len(rows) - 1
	}

	if state.offset > state.cursor {
		state.offset = state.cursor
	}
}

// scrollIntoView adjusts the view offset so the cursor stays on screen.
func (m *Dashboard) scrollIntoView() {
	state := m.views[m.active]
	height := m.listHeight()

	if height <= 0 {
		return
	}

	if state.cursor < state.offset {
		state.offset = state.cursor
	}

	if state.cursor >= state.offset+height {
		state.offset = state.cursor - height + 1
	}

	if state.offset < 0 {
		state.offset = 0
	}
}

func (m *Dashboard) anyFetchRunning() bool {
	for _, view := range domain.AllViews() {
		if m.dispatcher.FetchRunning(view) {
			return true
		}
	}

	return false
}

func (m *Dashboard) anyOpRunning() bool {
	for id, op := range m.ops {
		if !op.Status.Terminal() && m.dispatcher.Running(id, op.Kind) {
			return true
		}
	}

	return false
}

func (m *Dashboard) setStatus(text string, isErr bool) {
	m.status = text
	m.statusErr = isErr
}

// countLabel is the idle status text after a view loads or activates.
func countLabel(count int, view domain.View) string {
	switch count {
	case 0:
		return view.Title() + ": no packages"
	case 1:
		return view.Title() + ": 1 package"
	default:
		return view.Title() + ": " + strconv.Itoa(count) + " packages"
	}
}
