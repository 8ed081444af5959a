// SPDX-FileCopyrightText: 2025 The Wingboard Authors
// SPDX-License-Identifier: EUPL-1.2

// Package models provides the Bubble Tea models for the wingboard dashboard.
package models

import (
	"github.com/wingboard/wingboard/internal/domain"
)

// PackagesLoadedMsg carries the outcome of a list fetch (refresh or search).
// Seq is checked against the dispatcher's latest sequence for the view before
// any state is touched; stale results are dropped wholesale.
type PackagesLoadedMsg struct {
	View     domain.View
	Kind     domain.OpKind
	Seq      uint64
	Packages []domain.Package
	Err      error
}

// DetailsLoadedMsg carries the outcome of a detail fetch for one package.
type DetailsLoadedMsg struct {
	PackageID string
	Seq       uint64
	Details   domain.PackageDetails
	Err       error
}

// OperationDoneMsg carries the terminal outcome of a mutating operation
// (install, uninstall, upgrade).
type OperationDoneMsg struct {
	Op     domain.Operation
	Output string
	Err    error
}

// confirmResolvedMsg is emitted when the confirmation form completes. For a
// batch upgrade, batch holds the packages in execution order and pkg is
// unset.
type confirmResolvedMsg struct {
	accepted bool
	kind     domain.OpKind
	pkg      domain.Package
	batch    []domain.Package
}
