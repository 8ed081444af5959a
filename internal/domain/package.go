// SPDX-FileCopyrightText: 2025 The Wingboard Authors
// SPDX-License-Identifier: EUPL-1.2

// Package domain defines the package data model, the backend port, and the
// error taxonomy shared by the TUI and CLI surfaces.
package domain

import "strings"

// Source identifies the catalog a package comes from.
type Source int

// Known winget catalogs.
const (
	SourceUnknown Source = iota
	SourceWinget
	SourceMSStore
)

// ParseSource maps a winget source column value to a Source.
// winget prints "winget" and "msstore"; anything else (including the
// empty column of side-loaded packages) is SourceUnknown.
func ParseSource(s string) Source {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "winget":
		return SourceWinget
	case "msstore":
		return SourceMSStore
	default:
		return SourceUnknown
	}
}

// String returns the winget-facing name of the source.
func (s Source) String() string {
	switch s {
	case SourceWinget:
		return "winget"
	case SourceMSStore:
		return "msstore"
	default:
		return ""
	}
}

// Package is one row of a winget listing. A Package is immutable once
// constructed; refreshes replace whole snapshots rather than mutating rows.
type Package struct {
	ID      string
	Name    string
	Version string
	// AvailableVersion is only populated in upgrade listings.
	AvailableVersion string
	Source           Source
}

// Key returns the identity of the package: ID plus source. Two rows with the
// same ID can coexist when a package is published in both catalogs.
func (p Package) Key() string {
	return p.ID + "/" + p.Source.String()
}

// PackageDetails carries the lazily fetched fields from `winget show`.
type PackageDetails struct {
	ID               string
	Name             string
	Version          string
	AvailableVersion string
	Source           Source
	Publisher        string
	Description      string
	Homepage         string
	License          string
}

// Merge fills empty identity fields of d from prev. winget show omits fields
// the listing already had, so the listing row acts as the fallback.
func (d PackageDetails) Merge(prev PackageDetails) PackageDetails {
	if d.ID == "" {
		d.ID = prev.ID
	}

	if d.Name == "" {
		d.Name = prev.Name
	}

	if d.Version == "" {
		d.Version = prev.Version
	}

	if d.AvailableVersion == "" {
		d.AvailableVersion = prev.AvailableVersion
	}

	if d.Source == SourceUnknown {
		d.Source = prev.Source
	}

	return d
}

// SourceInfo describes one configured winget source (`winget source list`).
type SourceInfo struct {
	Name     string
	Argument string
	Type     string
}

// SourceFilter is the single global filter applied to every view.
type SourceFilter int

// Filter states, cycled in this order.
const (
	FilterAll SourceFilter = iota
	FilterWinget
	FilterMSStore
)

// ParseSourceFilter maps a user-facing filter name to a SourceFilter.
// Unrecognized names fall back to FilterAll.
func ParseSourceFilter(s string) SourceFilter {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "winget":
		return FilterWinget
	case "msstore":
		return FilterMSStore
	default:
		return FilterAll
	}
}

// Cycle advances All → winget → msstore → All.
func (f SourceFilter) Cycle() SourceFilter {
	switch f {
	case FilterWinget:
		return FilterMSStore
	case FilterMSStore:
		return FilterAll
	default:
		return FilterWinget
	}
}

// Matches reports whether a package from the given source passes the filter.
func (f SourceFilter) Matches(s Source) bool {
	switch f {
	case FilterWinget:
		return s == SourceWinget
	case FilterMSStore:
		return s == SourceMSStore
	default:
		return true
	}
}

// Arg returns the value for winget's --source flag, or "" when unfiltered.
func (f SourceFilter) Arg() string {
	switch f {
	case FilterWinget:
		return "winget"
	case FilterMSStore:
		return "msstore"
	default:
		return ""
	}
}

// String returns the display label of the filter.
func (f SourceFilter) String() string {
	switch f {
	case FilterWinget:
		return "winget"
	case FilterMSStore:
		return "msstore"
	default:
		return "All"
	}
}

// View is one of the three independent package-list contexts.
type View int

// Views in tab order.
const (
	ViewSearch View = iota
	ViewInstalled
	ViewUpgrades
)

// AllViews lists the views in tab order, for rendering and iteration.
func AllViews() []View {
	return []View{ViewSearch, ViewInstalled, ViewUpgrades}
}

// Next cycles Search → Installed → Upgrades → Search.
func (v View) Next() View {
	switch v {
	case ViewSearch:
		return ViewInstalled
	case ViewInstalled:
		return ViewUpgrades
	default:
		return ViewSearch
	}
}

// Prev cycles in the opposite direction of Next.
func (v View) Prev() View {
	switch v {
	case ViewSearch:
		return ViewUpgrades
	case ViewUpgrades:
		return ViewInstalled
	default:
		return ViewSearch
	}
}

// Title returns the tab label for the view.
func (v View) Title() string {
	switch v {
	case ViewSearch:
		return "Search"
	case ViewInstalled:
		return "Installed"
	default:
		return "Upgrades"
	}
}
