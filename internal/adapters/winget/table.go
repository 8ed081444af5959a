// SPDX-FileCopyrightText: 2025 The Wingboard Authors
// SPDX-License-Identifier: EUPL-1.2

package winget

import (
	"strings"

	"github.com/mattn/go-runewidth"
	"github.com/wingboard/wingboard/internal/domain"
)

// footerMaxLen bounds the short summary lines winget prints after a table,
// such as "2 upgrades available.". Data rows span the full table width.
const footerMaxLen = 20

// column is one header column with its display-width start offset.
type column struct {
	name  string
	start int
}

// parsePackageTable parses winget's fixed-width table output into packages.
// The table is a header line, a separator of dashes, then data rows. Column
// boundaries come from the header's word offsets; winget pads every cell to
// the column width, truncating long values with '…'.
func parsePackageTable(output string) []domain.Package {
	lines := strings.Split(output, "\n")

	sepIdx := findSeparator(lines)
	if sepIdx <= 0 {
		return nil
	}

	cols := detectColumns(lines[sepIdx-1])

	nameIdx := columnIndex(cols, "Name")
	idIdx := columnIndex(cols, "Id")
	verIdx := columnIndex(cols, "Version")
	sourceIdx := columnIndex(cols, "Source")
	availIdx := columnIndex(cols, "Available")

	var packages []domain.Package

	for _, line := range lines[sepIdx+1:] {
		if strings.TrimSpace(line) == "" {
			continue
		}

		// Footer lines like "2 upgrades available." end the table.
		if isFooterLine(line) {
			break
		}

		id := fieldAt(line, cols, idIdx)
		if id == "" {
			continue
		}

		packages = append(packages, domain.Package{
			ID:               id,
			Name:             fieldAt(line, cols, nameIdx),
			Version:          fieldAt(line, cols, verIdx),
			AvailableVersion: fieldAt(line, cols, availIdx),
			Source:           domain.ParseSource(fieldAt(line, cols, sourceIdx)),
		})
	}

	return packages
}

// parseSourceTable parses `winget source list` output.
func parseSourceTable(output string) []domain.SourceInfo {
	lines := strings.Split(output, "\n")

	sepIdx := findSeparator(lines)
	if sepIdx <= 0 {
		return nil
	}

	cols := detectColumns(lines[sepIdx-1])

	nameIdx := columnIndex(cols, "Name")
	argIdx := columnIndex(cols, "Argument")
	typeIdx := columnIndex(cols, "Type")

	var sources []domain.SourceInfo

	for _, line := range lines[sepIdx+1:] {
		if strings.TrimSpace(line) == "" {
			continue
		}

		name := fieldAt(line, cols, nameIdx)
		if name == "" {
			continue
		}

		sources = append(sources, domain.SourceInfo{
			Name:     name,
			Argument: fieldAt(line, cols, argIdx),
			Type:     fieldAt(line, cols, typeIdx),
		})
	}

	return sources
}

// findSeparator locates the dash separator under the header. winget emits
// short progress junk like "-" or "\" before the table, so the separator
// must be long and cannot be the first line.
func findSeparator(lines []string) int {
	for i, line := range lines {
		trimmed := strings.TrimSpace(line)
		if len(trimmed) <= 10 || !strings.Contains(trimmed, "-") {
			continue
		}

		if strings.Trim(trimmed, "- ") != "" {
			continue
		}

		if i == 0 {
			return -1
		}

		return i
	}

	return -1
}

// detectColumns reads column names and start offsets from the header line.
// winget headers are plain ASCII, so byte offsets equal display widths.
func detectColumns(header string) []column {
	var cols []column

	pos := 0
	for pos < len(header) {
		for pos < len(header) && header[pos] == ' ' {
			pos++
		}

		if pos >= len(header) {
			break
		}

		start := pos
		for pos < len(header) && header[pos] != ' ' {
			pos++
		}

		cols = append(cols, column{name: header[start:pos], start: start})
	}

	return cols
}

// columnIndex finds a column by name, -1 when absent. Source and Available
// are regularly missing: winget omits Source when --source narrows the query
// and Available outside upgrade listings.
func columnIndex(cols []column, name string) int {
	for i, col := range cols {
		if col.name == name {
			return i
		}
	}

	return -1
}

// fieldAt slices one cell out of a data row. Header offsets are in display
// cells, but data rows may hold multi-byte runes ('…' is three bytes, one
// cell), so the row is walked rune by rune accumulating display width.
func fieldAt(line string, cols []column, idx int) string {
	if idx < 0 || idx >= len(cols) {
		return ""
	}

	start := cols[idx].start

	end := -1 // open ended for the last column
	if idx+1 < len(cols) {
		end = cols[idx+1].start
	}

	var field strings.Builder

	width := 0
	for _, r := range line {
		rw := runewidth.RuneWidth(r)
		if width+rw > start && (end < 0 || width < end) {
			field.WriteRune(r)
		}

		width += rw
		if end >= 0 && width >= end {
			break
		}
	}

	return strings.TrimSpace(field.String())
}

// isFooterLine reports whether a post-separator line is a trailing summary
// rather than a data row.
func isFooterLine(line string) bool {
	if len(line) > footerMaxLen {
		return false
	}

	trimmed := strings.TrimLeft(line, " ")

	return len(trimmed) > 0 && trimmed[0] >= '0' && trimmed[0] <= '9'
}
