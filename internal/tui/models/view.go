// SPDX-FileCopyrightText: 2025 The Wingboard Authors
// SPDX-License-Identifier: EUPL-1.2

package models

import (
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"github.com/wingboard/wingboard/internal/domain"
)

// Fixed rows of chrome around the package list: tab bar, search bar, table
// header, status bar and key hints.
const chromeRows = 5

// listHeight is the number of package rows that fit on screen.
func (m *Dashboard) listHeight() int {
	height := m.height - chromeRows
	if height < 1 {
		return 1
	}

	return height
}

// View renders the full screen and records the layout regions for mouse
// hit-testing.
func (m *Dashboard) View() string {
	if m.quitting {
		return ""
	}

	if m.width == 0 || m.height == 0 {
		return "starting…"
	}

	if m.overlay.active() {
		return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, m.overlay.view())
	}

	listWidth := m.width
	detailWidth := 0

	if m.showDetails {
		detailWidth = m.width * 2 / 5
		if detailWidth < 28 {
			detailWidth = 28
		}

		if detailWidth >= m.width {
			detailWidth = 0
		}

		listWidth = m.width - detailWidth
	}

	tabBar := m.renderTabBar()
	searchBar := m.renderSearchBar()
	table := m.renderTable(listWidth)

	if detailWidth > 0 {
		table = lipgloss.JoinHorizontal(lipgloss.Top, table, m.renderDetailPanel(detailWidth))
	}

	statusBar := m.renderStatusBar()
	footer := m.renderFooter()

	return strings.Join([]string{tabBar, searchBar, table, statusBar, footer}, "\n")
}

// renderTabBar draws the three view tabs and the source filter badge, and
// records their regions.
func (m *Dashboard) renderTabBar() string {
	var (
		parts   []string
		regions []Region
		x       int
	)

	for _, view := range domain.AllViews() {
		style := m.styles.TabInactive
		if view == m.active {
			style = m.styles.TabActive
		}

		label := view.Title()
		if count := len(m.visibleFor(view)); count > 0 {
			label += " (" + strconv.Itoa(count) + ")"
		}

		rendered := style.Render(label)
		width := lipgloss.Width(rendered)
		regions = append(regions, Region{X: x, Y: 0, W: width, H: 1})
		parts = append(parts, rendered)
		x += width
	}

	badge := m.styles.FilterBadge.Render("[" + m.filter.String() + "]")
	badgeWidth := lipgloss.Width(badge)

	gap := m.width - x - badgeWidth
	if gap < 1 {
		gap = 1
	}

	m.layout.Tabs = regions
	m.layout.FilterBadge = Region{X: x + gap, Y: 0, W: badgeWidth, H: 1}

	return strings.Join(parts, "") + strings.Repeat(" ", gap) + badge
}

// renderSearchBar draws the search line. When the input is not focused it
// shows the view's current query or narrowing text.
func (m *Dashboard) renderSearchBar() string {
	state := m.views[m.active]

	label := "Search: "
	if m.active != domain.ViewSearch {
		label = "Narrow: "
	}

	var text string

	switch {
	case m.searching:
		text = m.searchInput.View()
	case m.active == domain.ViewSearch:
		text = state.query
	default:
		text = state.narrow
	}

	if text == "" && !m.searching {
		text = m.styles.MutedText.Render("press / to search")
	}

	m.layout.SearchBar = Region{X: 0, Y: 1, W: m.width, H: 1}

	return m.styles.SearchLabel.Render(label) + text
}

// tableColumns returns the column headers and widths for the view. The
// Available column only exists on the Upgrades view.
func (m *Dashboard) tableColumns(width int) ([]string, []int) {
	// One leading cell for the operation glyph, one trailing for the
	// scrollbar.
	usable := width - 4
	if usable < 20 {
		usable = 20
	}

	if m.active == domain.ViewUpgrades {
		headers := []string{"Name", "Id", "Version", "Available", "Source"}
		widths := []int{usable * 3 / 10, usable * 3 / 10, usable * 15 / 100, usable * 15 / 100, 0}
		widths[4] = usable - widths[0] - widths[1] - widths[2] - widths[3]

		return headers, widths
	}

	headers := []string{"Name", "Id", "Version", "Source"}
	widths := []int{usable * 35 / 100, usable * 35 / 100, usable * 20 / 100, 0}
	widths[3] = usable - widths[0] - widths[1] - widths[2]

	return headers, widths
}

// renderTable draws the header, the visible window of rows, and the
// scrollbar, and records the list and scrollbar regions.
func (m *Dashboard) renderTable(width int) string {
	headers, widths := m.tableColumns(width)
	rows := m.visible()
	state := m.views[m.active]
	height := m.listHeight()

	var builder strings.Builder

	builder.WriteString(m.styles.TableHeader.Render("  " + formatCells(headers, widths)))
	builder.WriteString("\n")

	hasScroll := len(rows) > height
	thumb := scrollThumb(state.offset, state.cursor, len(rows), height)

	for line := range height {
		index := state.offset + line

		if index < len(rows) {
			builder.WriteString(m.renderRow(rows[index], index == state.cursor, widths))
		} else if line == 0 && index == 0 {
			builder.WriteString(m.styles.MutedText.Render(m.emptyLabel()))
		}

		if hasScroll {
			pad := width - 1 - lipgloss.Width(lastLine(&builder))
			if pad > 0 {
				builder.WriteString(strings.Repeat(" ", pad))
			}

			if line == thumb {
				builder.WriteString(m.styles.PrimaryText.Render("┃"))
			} else {
				builder.WriteString(m.styles.MutedText.Render("│"))
			}
		}

		if line < height-1 {
			builder.WriteString("\n")
		}
	}

	m.layout.List = Region{X: 0, Y: 3, W: width, H: height}
	m.layout.HasScroll = hasScroll
	m.layout.Scrollbar = Region{X: width - 1, Y: 3, W: 1, H: height}

	return builder.String()
}

// renderRow draws one package line with its operation glyph and, on the
// Upgrades view, its batch mark.
func (m *Dashboard) renderRow(pkg domain.Package, selected bool, widths []int) string {
	cells := []string{pkg.Name, pkg.ID, pkg.Version, pkg.Source.String()}
	if m.active == domain.ViewUpgrades {
		cells = []string{pkg.Name, pkg.ID, pkg.Version, pkg.AvailableVersion, pkg.Source.String()}
	}

	line := m.opGlyph(pkg.ID) + m.markGlyph(pkg.ID) + formatCells(cells, widths)

	if selected {
		return m.styles.RowSelected.Render(line)
	}

	return m.styles.Row.Render(line)
}

// markGlyph is the one-cell batch mark between the operation glyph and the
// row cells.
func (m *Dashboard) markGlyph(pkgID string) string {
	if m.active == domain.ViewUpgrades && m.marked[pkgID] {
		return m.styles.WarningText.Render("*")
	}

	return " "
}

// opGlyph is the one-cell operation marker in front of a row.
func (m *Dashboard) opGlyph(pkgID string) string {
	op, ok := m.ops[pkgID]
	if !ok {
		return " "
	}

	switch op.Status {
	case domain.StatusRunning, domain.StatusPending:
		return m.spinner.View()
	case domain.StatusSucceeded:
		return m.styles.SuccessText.Render("✓")
	default:
		return m.styles.ErrorText.Render("✗")
	}
}

// emptyLabel explains an empty list.
func (m *Dashboard) emptyLabel() string {
	state := m.views[m.active]

	switch {
	case state.fetchErr != nil:
		return "load failed, press r to retry"
	case m.active == domain.ViewSearch && state.query == "":
		return "press / and enter a query"
	case !state.loaded:
		return "loading…"
	case len(state.packages) > 0:
		return "no packages match the filter"
	default:
		return "no packages"
	}
}

// renderDetailPanel draws the side panel for the selected package.
func (m *Dashboard) renderDetailPanel(width int) string {
	details, ok := m.details[m.detailID]

	var builder strings.Builder

	if !ok {
		builder.WriteString(m.styles.MutedText.Render("loading details…"))
	} else {
		builder.WriteString(m.styles.PrimaryText.Bold(true).Render(details.Name))
		builder.WriteString("\n")
		builder.WriteString(m.styles.MutedText.Render(details.ID))
		builder.WriteString("\n\n")

		writeField(&builder, m, "Version", details.Version)
		writeField(&builder, m, "Available", details.AvailableVersion)
		writeField(&builder, m, "Source", details.Source.String())
		writeField(&builder, m, "Publisher", details.Publisher)
		writeField(&builder, m, "License", details.License)
		writeField(&builder, m, "Homepage", details.Homepage)

		if details.Description != "" {
			builder.WriteString("\n")
			builder.WriteString(details.Description)
		}
	}

	inner := width - 4
	if inner < 10 {
		inner = 10
	}

	return m.styles.PanelBorder.
		Width(inner).
		Height(m.listHeight() - 1).
		Padding(0, 1).
		Render(builder.String())
}

func writeField(builder *strings.Builder, m *Dashboard, label, value string) {
	if value == "" {
		return
	}

	builder.WriteString(m.styles.MutedText.Render(label + ": "))
	builder.WriteString(value)
	builder.WriteString("\n")
}

// renderStatusBar draws the status line.
func (m *Dashboard) renderStatusBar() string {
	text := m.status
	if text == "" {
		text = countLabel(len(m.visible()), m.active)
	}

	if m.statusErr {
		text = m.styles.ErrorText.Render(text)
	}

	if m.anyFetchRunning() || m.anyOpRunning() {
		text = m.spinner.View() + " " + text
	}

	return m.styles.StatusBar.Width(m.width).Render(text)
}

// renderFooter draws the key hints.
func (m *Dashboard) renderFooter() string {
	hints := []string{
		"tab views", "/ search", "f filter", "r refresh", "enter details",
	}

	switch m.active {
	case domain.ViewSearch:
		hints = append(hints, "i install")
	case domain.ViewInstalled:
		hints = append(hints, "x uninstall")
	case domain.ViewUpgrades:
		hints = append(hints, "u upgrade", "space mark", "U upgrade marked")
	}

	hints = append(hints, "? help", "q quit")

	return m.styles.KeyHint.Render(strings.Join(hints, " · "))
}

// formatCells pads or truncates each cell to its column width.
func formatCells(cells []string, widths []int) string {
	var parts []string

	for i, cell := range cells {
		width := 0
		if i < len(widths) {
			width = widths[i]
		}

		if width <= 0 {
			continue
		}

		parts = append(parts, runewidth.FillRight(runewidth.Truncate(cell, width-1, "…"), width))
	}

	return strings.Join(parts, "")
}

// scrollThumb places the scrollbar thumb for the current window.
func scrollThumb(offset, cursor, total, height int) int {
	if total <= height || total <= 1 {
		return -1
	}

	pos := cursor
	if pos < 0 {
		pos = offset
	}

	return pos * (height - 1) / (total - 1)
}

// lastLine returns the current final line of the builder, for width math
// while assembling rows.
func lastLine(builder *strings.Builder) string {
	content := builder.String()

	if idx := strings.LastIndexByte(content, '\n'); idx >= 0 {
		return content[idx+1:]
	}

	return content
}
