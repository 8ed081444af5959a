// SPDX-FileCopyrightText: 2025 The Wingboard Authors
// SPDX-License-Identifier: EUPL-1.2

package domain

import (
	"time"

	"github.com/google/uuid"
)

// OpKind is the kind of background action an Operation tracks.
type OpKind int

// Operation kinds.
const (
	OpInstall OpKind = iota
	OpUninstall
	OpUpgrade
	OpSearch
	OpRefresh
	OpDetails
)

// String returns the status-line verb for the kind.
func (k OpKind) String() string {
	switch k {
	case OpInstall:
		return "install"
	case OpUninstall:
		return "uninstall"
	case OpUpgrade:
		return "upgrade"
	case OpSearch:
		return "search"
	case OpRefresh:
		return "refresh"
	default:
		return "details"
	}
}

// Mutating reports whether the kind changes the system state, as opposed to
// reading it. Mutating operations invalidate caches and trigger a refresh.
func (k OpKind) Mutating() bool {
	switch k {
	case OpInstall, OpUninstall, OpUpgrade:
		return true
	default:
		return false
	}
}

// OpStatus is the lifecycle state of an Operation.
type OpStatus int

// Operation lifecycle: Pending → Running → Succeeded | Failed.
const (
	StatusPending OpStatus = iota
	StatusRunning
	StatusSucceeded
	StatusFailed
)

// Terminal reports whether the status is final.
func (s OpStatus) Terminal() bool {
	return s == StatusSucceeded || s == StatusFailed
}

// Operation is one tracked background action against a package (or a list
// fetch, where PackageID is empty). Operations are created by the dashboard,
// flipped to Running when dispatched, and completed by exactly one result
// message carrying the matching sequence number.
type Operation struct {
	// Handle correlates status-line and log entries for this operation.
	Handle    string
	Kind      OpKind
	PackageID string
	// Seq is monotonically increasing per (PackageID, Kind). Results with a
	// stale Seq are discarded so a slow completion cannot clobber the state
	// written by a newer one.
	Seq     uint64
	Status  OpStatus
	Message string
	Started time.Time
}

// NewOperation creates a pending Operation with a fresh handle.
func NewOperation(kind OpKind, packageID string, seq uint64) Operation {
	return Operation{
		Handle:    uuid.NewString(),
		Kind:      kind,
		PackageID: packageID,
		Seq:       seq,
		Status:    StatusPending,
		Started:   time.Now(),
	}
}

// Short returns the compact handle form shown in the status line, so a
// failure can be told apart from an earlier one on the same package.
func (o Operation) Short() string {
	if len(o.Handle) < 8 {
		return o.Handle
	}

	return o.Handle[:8]
}

// Complete returns a copy of the operation in its terminal state.
func (o Operation) Complete(err error) Operation {
	if err != nil {
		o.Status = StatusFailed
		o.Message = err.Error()
	} else {
		o.Status = StatusSucceeded
	}

	return o
}
