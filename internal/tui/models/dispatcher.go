// SPDX-FileCopyrightText: 2025 The Wingboard Authors
// SPDX-License-Identifier: EUPL-1.2

package models

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/wingboard/wingboard/internal/domain"
)

// View fetch targets share the dispatcher's sequence space with package
// operations; the target string namespaces them.
const (
	targetViewSearch    = "view/search"
	targetViewInstalled = "view/installed"
	targetViewUpgrades  = "view/upgrades"
)

// opKey identifies the sequence-number stream for one (target, kind) pair.
// The target is a package id for package operations and a view marker for
// list fetches.
type opKey struct {
	target string
	kind   domain.OpKind
}

// Dispatcher spawns one unit of work per submitted operation and tracks the
// sequence numbers used to discard stale results. It is owned by the
// dashboard model and only ever touched from the interactive loop; the
// spawned work communicates exclusively through Bubble Tea messages.
type Dispatcher struct {
	backend domain.Backend
	ctx     context.Context

	seqs    map[opKey]uint64
	running map[opKey]bool
}

// NewDispatcher creates a dispatcher around the backend. The context is
// passed to every backend call; wingboard never cancels in-flight winget
// processes, but program shutdown propagates through it.
func NewDispatcher(ctx context.Context, backend domain.Backend) *Dispatcher {
	return &Dispatcher{
		backend: backend,
		ctx:     ctx,
		seqs:    make(map[opKey]uint64),
		running: make(map[opKey]bool),
	}
}

// SubmitPackageOp schedules a mutating operation for a package. A second
// request of the same kind while one is running is rejected with
// ErrOperationInFlight, never queued.
func (d *Dispatcher) SubmitPackageOp(kind domain.OpKind, pkg domain.Package) (domain.Operation, tea.Cmd, error) {
	key := opKey{target: pkg.ID, kind: kind}

	if d.running[key] {
		return domain.Operation{}, nil, domain.ErrOperationInFlight
	}

	op := d.start(key, kind, pkg.ID)

	cmd := func() tea.Msg {
		var (
			output string
			err    error
		)

		switch kind {
		case domain.OpInstall:
			output, err = d.backend.Install(d.ctx, pkg.ID)
		case domain.OpUninstall:
			output, err = d.backend.Uninstall(d.ctx, pkg.ID)
		default:
			output, err = d.backend.Upgrade(d.ctx, pkg.ID)
		}

		return OperationDoneMsg{Op: op, Output: output, Err: err}
	}

	return op, cmd, nil
}

// SubmitFetch schedules a list fetch for a view. Fetches are never rejected:
// a newer submission supersedes any in-flight one through its higher
// sequence number.
func (d *Dispatcher) SubmitFetch(view domain.View, query string) (domain.Operation, tea.Cmd) {
	kind := domain.OpRefresh
	if view == domain.ViewSearch {
		kind = domain.OpSearch
	}

	key := opKey{target: viewTarget(view), kind: kind}
	op := d.start(key, kind, "")

	cmd := func() tea.Msg {
		var (
			packages []domain.Package
			err      error
		)

		switch view {
		case domain.ViewSearch:
			packages, err = d.backend.Search(d.ctx, query, domain.FilterAll)
		case domain.ViewInstalled:
			packages, err = d.backend.ListInstalled(d.ctx, domain.FilterAll)
		default:
			packages, err = d.backend.ListUpgrades(d.ctx, domain.FilterAll)
		}

		return PackagesLoadedMsg{View: view, Kind: kind, Seq: op.Seq, Packages: packages, Err: err}
	}

	return op, cmd
}

// SubmitDetails schedules a detail fetch for a package. Like list fetches,
// a newer request supersedes older in-flight ones.
func (d *Dispatcher) SubmitDetails(pkgID string) (domain.Operation, tea.Cmd) {
	key := opKey{target: pkgID, kind: domain.OpDetails}
	op := d.start(key, domain.OpDetails, pkgID)

	cmd := func() tea.Msg {
		details, err := d.backend.Details(d.ctx, pkgID)

		return DetailsLoadedMsg{PackageID: pkgID, Seq: op.Seq, Details: details, Err: err}
	}

	return op, cmd
}

// Resolve checks a completed unit of work against the latest sequence for
// its stream. It returns false for stale results, which the reducer must
// drop before touching any state. The running flag is only cleared by the
// result that is still current.
func (d *Dispatcher) Resolve(target string, kind domain.OpKind, seq uint64) bool {
	key := opKey{target: target, kind: kind}

	if seq != d.seqs[key] {
		return false
	}

	delete(d.running, key)

	return true
}

// ResolveFetch is Resolve for view fetch streams.
func (d *Dispatcher) ResolveFetch(view domain.View, kind domain.OpKind, seq uint64) bool {
	return d.Resolve(viewTarget(view), kind, seq)
}

// Running reports whether an operation of the given kind is in flight for
// the package.
func (d *Dispatcher) Running(pkgID string, kind domain.OpKind) bool {
	return d.running[opKey{target: pkgID, kind: kind}]
}

// FetchRunning reports whether a list fetch for the view is in flight.
func (d *Dispatcher) FetchRunning(view domain.View) bool {
	kind := domain.OpRefresh
	if view == domain.ViewSearch {
		kind = domain.OpSearch
	}

	return d.running[opKey{target: viewTarget(view), kind: kind}]
}

// start allocates the next sequence number for the stream and records the
// operation as running.
func (d *Dispatcher) start(key opKey, kind domain.OpKind, pkgID string) domain.Operation {
	d.seqs[key]++
	d.running[key] = true

	op := domain.NewOperation(kind, pkgID, d.seqs[key])
	op.Status = domain.StatusRunning

	return op
}

func viewTarget(view domain.View) string {
	switch view {
	case domain.ViewSearch:
		return targetViewSearch
	case domain.ViewInstalled:
		return targetViewInstalled
	default:
		return targetViewUpgrades
	}
}
