// SPDX-FileCopyrightText: 2025 The Wingboard Authors
// SPDX-License-Identifier: EUPL-1.2

package models

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/wingboard/wingboard/internal/domain"
)

// Region is a rectangle in terminal cells.
type Region struct {
	X, Y, W, H int
}

// Contains reports whether the cell (x, y) falls inside the region.
func (r Region) Contains(x, y int) bool {
	return x >= r.X && x < r.X+r.W && y >= r.Y && y < r.Y+r.H
}

// Layout records where the last render put each interactive element, so
// mouse events can be mapped back to them. It is rebuilt on every render.
type Layout struct {
	Tabs        []Region
	FilterBadge Region
	SearchBar   Region
	List        Region
	Scrollbar   Region
	HasScroll   bool
}

type hitTarget int

const (
	hitNone hitTarget = iota
	hitTab
	hitFilter
	hitSearch
	hitRow
	hitScrollbar
)

// hit is the result of mapping a click position to the layout. index is the
// tab position for hitTab and the on-screen row for hitRow.
type hit struct {
	target hitTarget
	index  int
}

// hitTest maps a cell position to the interactive element under it. The
// scrollbar wins over the list because it overlaps the list's right edge.
func (l Layout) hitTest(x, y int) hit {
	for i, tab := range l.Tabs {
		if tab.Contains(x, y) {
			return hit{target: hitTab, index: i}
		}
	}

	if l.FilterBadge.Contains(x, y) {
		return hit{target: hitFilter}
	}

	if l.SearchBar.Contains(x, y) {
		return hit{target: hitSearch}
	}

	if l.HasScroll && l.Scrollbar.Contains(x, y) {
		return hit{target: hitScrollbar, index: y - l.Scrollbar.Y}
	}

	if l.List.Contains(x, y) {
		return hit{target: hitRow, index: y - l.List.Y}
	}

	return hit{target: hitNone}
}

// handleMouse maps mouse input onto the same transitions the keyboard
// drives. Overlays swallow everything except wheel scrolling in help.
func (m *Dashboard) handleMouse(msg tea.MouseMsg) (tea.Model, tea.Cmd) {
	if m.overlay.active() {
		if msg.Button == tea.MouseButtonWheelUp || msg.Button == tea.MouseButtonWheelDown {
			return m, m.overlay.update(msg)
		}

		// Any click dismisses the overlay; for a pending confirmation that
		// counts as declining it.
		if msg.Action == tea.MouseActionPress {
			return m, m.overlay.dismiss()
		}

		return m, nil
	}

	switch {
	case msg.Button == tea.MouseButtonWheelUp:
		m.moveCursor(-wheelStep, false)

		return m, nil

	case msg.Button == tea.MouseButtonWheelDown:
		m.moveCursor(wheelStep, false)

		return m, nil

	case msg.Action == tea.MouseActionRelease:
		m.draggingScrollbar = false

		return m, nil

	case msg.Action == tea.MouseActionMotion:
		if m.draggingScrollbar {
			m.scrollTo(msg.Y)
		}

		return m, nil

	case msg.Action == tea.MouseActionPress && msg.Button == tea.MouseButtonLeft:
		return m.handleClick(msg.X, msg.Y)
	}

	return m, nil
}

// handleClick resolves a left click against the last rendered layout.
func (m *Dashboard) handleClick(x, y int) (tea.Model, tea.Cmd) {
	result := m.layout.hitTest(x, y)

	switch result.target {
	case hitTab:
		views := domain.AllViews()
		if result.index < len(views) {
			m.switchView(views[result.index])
		}

	case hitFilter:
		m.cycleFilter()

	case hitSearch:
		m.startSearch()

	case hitScrollbar:
		m.draggingScrollbar = true
		m.scrollTo(y)

	case hitRow:
		state := m.views[m.active]
		index := state.offset + result.index

		if index >= len(m.visible()) {
			break
		}

		// Clicking the row that is already selected opens its details.
		if index == state.cursor {
			return m, m.requestDetails()
		}

		m.setCursor(index)
	}

	return m, nil
}

// scrollTo jumps the cursor proportionally to a position on the scrollbar.
func (m *Dashboard) scrollTo(y int) {
	rows := m.visible()
	if len(rows) == 0 || m.layout.Scrollbar.H <= 1 {
		return
	}

	pos := y - m.layout.Scrollbar.Y
	if pos < 0 {
		pos = 0
	}

	if pos > m.layout.Scrollbar.H-1 {
		pos = m.layout.Scrollbar.H - 1
	}

	m.setCursor(pos * (len(rows) - 1) / (m.layout.Scrollbar.H - 1))
}
