package tui

import (
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// PagerControlKind distinguishes the pager's buttons.
type PagerControlKind int

const (
	PagerPrevious PagerControlKind = iota
	PagerNumber
	PagerNext
)

// PagerControl is one pager button. Target is the external (0-based) page it
// requests when activated.
type PagerControl struct {
	Kind     PagerControlKind
	Label    string
	Target   int
	Disabled bool
	Active   bool
}

// paginatorView is the rendered pager. displayPage is 1-based and never
// leaves the pager.
type paginatorView struct {
	displayPage int
	controls    []PagerControl
}

// ConstructPaginator rebuilds the pager for the current page and page count.
func (t *PaginatedTable) ConstructPaginator() {
	if t.Inert() {
		return
	}
	if t.paginator != nil {
		t.deconstructPaginator()
	}

	display := t.pageNumber + 1
	p := &paginatorView{displayPage: display}

	p.controls = append(p.controls, PagerControl{
		Kind:     PagerPrevious,
		Label:    "Previous",
		Target:   display - 2,
		Disabled: display == 1,
	})
	for i := 1; i <= t.totalPages; i++ {
		p.controls = append(p.controls, PagerControl{
			Kind:   PagerNumber,
			Label:  strconv.Itoa(i),
			Target: i - 1,
			Active: display == i,
		})
	}
	p.controls = append(p.controls, PagerControl{
		Kind:     PagerNext,
		Label:    "Next",
		Target:   display,
		Disabled: display == t.totalPages,
	})

	t.paginator = p
	t.focus = min(t.focus, len(p.controls)-1)
}

func (t *PaginatedTable) deconstructPaginator() {
	t.paginator = nil
}

// DisplayPage returns the 1-based page the pager highlights.
func (t *PaginatedTable) DisplayPage() int {
	if t.paginator == nil {
		return 0
	}
	return t.paginator.displayPage
}

// Controls returns the pager buttons, left to right.
func (t *PaginatedTable) Controls() []PagerControl {
	if t.paginator == nil {
		return nil
	}
	return append([]PagerControl(nil), t.paginator.controls...)
}

// Activate presses the pager control at idx. Disabled controls do nothing.
func (t *PaginatedTable) Activate(idx int) tea.Cmd {
	if t.Inert() || t.paginator == nil || t.fetch == nil {
		return nil
	}
	if idx < 0 || idx >= len(t.paginator.controls) {
		return nil
	}
	c := t.paginator.controls[idx]
	if c.Disabled {
		return nil
	}
	return t.fetch(c.Target, t.rowsPerPage, t.desiredFormat)
}

// ActivateFocused presses the focused pager control.
func (t *PaginatedTable) ActivateFocused() tea.Cmd {
	return t.Activate(t.focus)
}

// MoveFocus shifts pager focus by delta, clamped to the controls.
func (t *PaginatedTable) MoveFocus(delta int) {
	if t.paginator == nil {
		return
	}
	t.focus = min(max(t.focus+delta, 0), len(t.paginator.controls)-1)
}

// Focus returns the index of the focused pager control.
func (t *PaginatedTable) Focus() int {
	return t.focus
}

func (t *PaginatedTable) renderControl(i int, c PagerControl, focused bool) string {
	style := lipgloss.NewStyle().Padding(0, 1).Foreground(ColorWhite)
	switch {
	case c.Disabled:
		style = style.Foreground(ColorGray).Faint(true)
	case c.Active:
		style = style.Background(ColorBlue).Bold(true)
	}
	if focused && i == t.focus {
		style = style.Underline(true).Foreground(ColorOrange)
	}
	return style.Render(c.Label)
}

// renderPaginator renders the pager on one line.
func (t *PaginatedTable) renderPaginator(focused bool) string {
	if t.paginator == nil {
		return ""
	}
	parts := make([]string, len(t.paginator.controls))
	for i, c := range t.paginator.controls {
		parts[i] = t.renderControl(i, c, focused)
	}
	return strings.Join(parts, " ")
}

// ControlAt maps a column on the pager line to a control index.
func (t *PaginatedTable) ControlAt(x int) (int, bool) {
	if t.paginator == nil || x < 0 {
		return 0, false
	}
	pos := 0
	for i, c := range t.paginator.controls {
		w := lipgloss.Width(t.renderControl(i, c, false))
		if x >= pos && x < pos+w {
			return i, true
		}
		pos += w + 1
	}
	return 0, false
}
