// SPDX-FileCopyrightText: 2025 The Wingboard Authors
// SPDX-License-Identifier: EUPL-1.2

package winget

import (
	"strings"

	"github.com/wingboard/wingboard/internal/domain"
)

// parseShowOutput parses `winget show` key/value output into details.
//
// The output starts with a "Found Name [Id]" line, followed by top-level
// "Key: Value" pairs. Multi-line values (Description) continue on indented
// lines. Indented keys belong to nested blocks like Installer and are
// ignored.
func parseShowOutput(output string) domain.PackageDetails {
	var details domain.PackageDetails

	lines := strings.Split(output, "\n")

	for i := 0; i < len(lines); i++ {
		line := lines[i]
		trimmed := strings.TrimSpace(line)

		if name, id, ok := parseFoundHeader(trimmed); ok {
			details.Name = name
			details.ID = id

			continue
		}

		// Nested blocks are indented; only top-level keys matter here.
		if strings.HasPrefix(line, " ") || strings.HasPrefix(line, "\t") {
			continue
		}

		key, value, ok := strings.Cut(trimmed, ":")
		if !ok {
			continue
		}

		key = strings.TrimSpace(key)
		value = strings.TrimSpace(value)

		switch key {
		case "Version", "PackageVersion":
			details.Version = value
		case "Publisher":
			details.Publisher = value
		case "Description":
			details.Description, i = collectDescription(lines, i, value)
		case "Homepage":
			details.Homepage = value
		case "Publisher Url":
			if details.Homepage == "" {
				details.Homepage = value
			}
		case "License":
			details.License = value
		case "Source":
			details.Source = domain.ParseSource(value)
		}
	}

	return details
}

// parseFoundHeader extracts name and id from a "Found Name [Id]" line.
func parseFoundHeader(line string) (name, id string, ok bool) {
	if !strings.HasPrefix(line, "Found ") {
		return "", "", false
	}

	open := strings.LastIndex(line, "[")
	closing := strings.LastIndex(line, "]")

	if open < 0 || closing < open {
		return "", "", false
	}

	return strings.TrimSpace(line[len("Found "):open]), line[open+1 : closing], true
}

// collectDescription joins a Description value with its indented
// continuation lines and returns the new line index.
func collectDescription(lines []string, i int, value string) (string, int) {
	var desc strings.Builder

	desc.WriteString(value)

	for i+1 < len(lines) && strings.HasPrefix(lines[i+1], "  ") {
		i++

		if desc.Len() > 0 {
			desc.WriteString(" ")
		}

		desc.WriteString(strings.TrimSpace(lines[i]))
	}

	return desc.String(), i
}
