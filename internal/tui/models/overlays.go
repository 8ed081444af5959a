// SPDX-FileCopyrightText: 2025 The Wingboard Authors
// SPDX-License-Identifier: EUPL-1.2

package models

import (
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/huh"

	"github.com/wingboard/wingboard/internal/domain"
	"github.com/wingboard/wingboard/internal/tui/styles"
)

const helpMarkdown = `# Wingboard

A dashboard for the winget package manager.

## Views

| Key | Action |
|-----|--------|
| tab / shift+tab | next / previous view |
| f | cycle source filter (All → winget → msstore) |
| / | search (backend query in Search, narrowing elsewhere) |
| r | refresh the active view |

## Packages

| Key | Action |
|-----|--------|
| j/k, ↑/↓ | move selection (wraps) |
| pgup/pgdn | page |
| g / G | first / last |
| enter | show details |
| i | install (Search view) |
| x | uninstall (Installed view) |
| u | upgrade (Upgrades view) |
| space | mark for batch upgrade (Upgrades view) |
| U | upgrade all marked packages |

## Other

| Key | Action |
|-----|--------|
| esc | close panel or overlay |
| ? | this help |
| q | quit |

Mutating operations ask for confirmation and run one at a time per package.
`

type overlayKind int

const (
	overlayNone overlayKind = iota
	overlayHelp
	overlayConfirm
)

// overlayState is the modal layer over the dashboard: at most one overlay is
// open, and while one is, it receives all key input.
type overlayState struct {
	kind overlayKind

	viewport viewport.Model

	form         *huh.Form
	confirmKind  domain.OpKind
	confirmPkg   domain.Package
	confirmBatch []domain.Package
	accepted     bool

	width  int
	height int
}

func (o *overlayState) active() bool {
	return o.kind != overlayNone
}

func (o *overlayState) close() {
	o.kind = overlayNone
	o.form = nil
}

func (o *overlayState) resize(width, height int) {
	o.width = width
	o.height = height

	if o.kind == overlayHelp {
		o.viewport.Width = helpWidth(width)
		o.viewport.Height = helpHeight(height)
	}
}

// openHelp renders the help markdown into a scrollable viewport.
func (o *overlayState) openHelp(styleSet *styles.Styles, width, height int) tea.Cmd {
	renderer, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(helpWidth(width)),
	)
	if err != nil {
		renderer, _ = glamour.NewTermRenderer()
	}

	content := helpMarkdown

	if renderer != nil {
		if rendered, renderErr := renderer.Render(helpMarkdown); renderErr == nil {
			content = rendered
		}
	}

	o.viewport = viewport.New(helpWidth(width), helpHeight(height))
	o.viewport.Style = styleSet.Overlay
	o.viewport.SetContent(content)

	o.kind = overlayHelp
	o.width = width
	o.height = height

	return nil
}

// openConfirm opens a yes/no form for a mutating operation.
func (o *overlayState) openConfirm(kind domain.OpKind, pkg domain.Package, width, height int) tea.Cmd {
	o.confirmKind = kind
	o.confirmPkg = pkg
	o.confirmBatch = nil
	o.accepted = false

	title := kind.String() + " " + pkg.Name + "?"

	description := pkg.ID
	if kind == domain.OpUpgrade && pkg.AvailableVersion != "" {
		description = pkg.ID + "  " + pkg.Version + " → " + pkg.AvailableVersion
	}

	o.form = huh.NewForm(huh.NewGroup(
		huh.NewConfirm().
			Title(title).
			Description(description).
			Affirmative("Yes").
			Negative("No").
			Value(&o.accepted),
	)).WithTheme(huh.ThemeCharm())

	o.kind = overlayConfirm
	o.width = width
	o.height = height

	return o.form.Init()
}

// openBatchConfirm opens a yes/no form for upgrading several packages at
// once.
func (o *overlayState) openBatchConfirm(batch []domain.Package, width, height int) tea.Cmd {
	o.confirmKind = domain.OpUpgrade
	o.confirmPkg = domain.Package{}
	o.confirmBatch = batch
	o.accepted = false

	title := "Upgrade " + strconv.Itoa(len(batch)) + " packages?"
	if len(batch) == 1 {
		title = "Upgrade 1 package?"
	}

	ids := make([]string, 0, len(batch))
	for _, pkg := range batch {
		ids = append(ids, pkg.ID)
	}

	description := strings.Join(ids, ", ")
	if len(ids) > 4 {
		description = strings.Join(ids[:4], ", ") + " and " + strconv.Itoa(len(ids)-4) + " more"
	}

	o.form = huh.NewForm(huh.NewGroup(
		huh.NewConfirm().
			Title(title).
			Description(description).
			Affirmative("Yes").
			Negative("No").
			Value(&o.accepted),
	)).WithTheme(huh.ThemeCharm())

	o.kind = overlayConfirm
	o.width = width
	o.height = height

	return o.form.Init()
}

// update drives the open overlay. The confirm overlay resolves into a
// confirmResolvedMsg; the help overlay closes on esc, q or ?.
func (o *overlayState) update(msg tea.Msg) tea.Cmd {
	switch o.kind {
	case overlayHelp:
		if keyMsg, ok := msg.(tea.KeyMsg); ok {
			switch keyMsg.String() {
			case "esc", "q", "?":
				o.close()

				return nil
			}
		}

		var cmd tea.Cmd
		o.viewport, cmd = o.viewport.Update(msg)

		return cmd

	case overlayConfirm:
		if o.form == nil {
			o.close()

			return nil
		}

		model, cmd := o.form.Update(msg)
		if form, ok := model.(*huh.Form); ok {
			o.form = form
		}

		switch o.form.State {
		case huh.StateCompleted:
			return tea.Batch(cmd, o.resolveConfirm(o.accepted))
		case huh.StateAborted:
			return tea.Batch(cmd, o.resolveConfirm(false))
		default:
			return cmd
		}
	}

	return nil
}

// dismiss closes the overlay from outside the form flow. A pending
// confirmation resolves as declined.
func (o *overlayState) dismiss() tea.Cmd {
	if o.kind == overlayConfirm {
		o.close()

		return o.resolveConfirm(false)
	}

	o.close()

	return nil
}

func (o *overlayState) resolveConfirm(accepted bool) tea.Cmd {
	kind := o.confirmKind
	pkg := o.confirmPkg
	batch := o.confirmBatch

	return func() tea.Msg {
		return confirmResolvedMsg{accepted: accepted, kind: kind, pkg: pkg, batch: batch}
	}
}

// view renders the open overlay, or "" when none is.
func (o *overlayState) view() string {
	switch o.kind {
	case overlayHelp:
		return o.viewport.View()
	case overlayConfirm:
		if o.form != nil {
			return o.form.View()
		}
	}

	return ""
}

func helpWidth(width int) int {
	if width <= 0 {
		return 80
	}

	if width > 84 {
		return 80
	}

	return width - 4
}

func helpHeight(height int) int {
	if height <= 0 {
		return 20
	}

	if height < 8 {
		return height
	}

	return height - 6
}
