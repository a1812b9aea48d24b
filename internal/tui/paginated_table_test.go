package tui

import (
	"bytes"
	"log"
	"strings"
	"testing"

	"github.com/tinytelemetry/stockroom/internal/model"

	tea "github.com/charmbracelet/bubbletea"
)

type fetchCall struct {
	page   int
	rows   int
	format model.ColumnFormat
}

type fetchRecorder struct {
	calls []fetchCall
}

func (r *fetchRecorder) fetch(page, rows int, format model.ColumnFormat) tea.Cmd {
	r.calls = append(r.calls, fetchCall{page: page, rows: rows, format: format})
	return func() tea.Msg { return nil }
}

func newTestTable(t *testing.T, rec *fetchRecorder, opts ...TableOption) *PaginatedTable {
	t.Helper()
	layout := NewLayout("products_table")
	opts = append([]TableOption{WithLogger(log.New(&bytes.Buffer{}, "", 0))}, opts...)
	tbl := NewPaginatedTable(layout, "products_table", rec.fetch, opts...)
	if tbl.Inert() {
		t.Fatal("table unexpectedly inert")
	}
	return tbl
}

func TestPaginator_MiddlePage(t *testing.T) {
	rec := &fetchRecorder{}
	tbl := newTestTable(t, rec, WithPageNumber(2), WithRowsPerPage(10), WithTotalPages(5))

	if got := tbl.DisplayPage(); got != 3 {
		t.Fatalf("display page = %d, want 3", got)
	}

	controls := tbl.Controls()
	if len(controls) != 7 {
		t.Fatalf("controls = %d, want 7", len(controls))
	}

	prev, next := controls[0], controls[6]
	if prev.Kind != PagerPrevious || prev.Disabled || prev.Target != 1 {
		t.Errorf("previous = %+v", prev)
	}
	if next.Kind != PagerNext || next.Disabled || next.Target != 3 {
		t.Errorf("next = %+v", next)
	}
	for i, c := range controls[1:6] {
		if c.Label != []string{"1", "2", "3", "4", "5"}[i] || c.Target != i {
			t.Errorf("number control %d = %+v", i, c)
		}
		if c.Active != (i == 2) {
			t.Errorf("control %s active = %v", c.Label, c.Active)
		}
	}

	tbl.Activate(0)
	tbl.Activate(6)
	tbl.Activate(1)
	if len(rec.calls) != 3 {
		t.Fatalf("fetch calls = %d, want 3", len(rec.calls))
	}
	for i, want := range []int{1, 3, 0} {
		if rec.calls[i].page != want || rec.calls[i].rows != 10 {
			t.Errorf("call %d = %+v, want page %d rows 10", i, rec.calls[i], want)
		}
	}
}

func TestPaginator_FirstPageDisablesPrevious(t *testing.T) {
	rec := &fetchRecorder{}
	tbl := newTestTable(t, rec, WithPageNumber(0), WithTotalPages(5))

	controls := tbl.Controls()
	if !controls[0].Disabled {
		t.Error("previous enabled on first page")
	}
	if controls[len(controls)-1].Disabled {
		t.Error("next disabled on first page")
	}
	if cmd := tbl.Activate(0); cmd != nil || len(rec.calls) != 0 {
		t.Error("disabled previous still fetched")
	}
}

func TestPaginator_LastPageDisablesNext(t *testing.T) {
	rec := &fetchRecorder{}
	tbl := newTestTable(t, rec, WithPageNumber(4), WithTotalPages(5))

	controls := tbl.Controls()
	if !controls[len(controls)-1].Disabled {
		t.Error("next enabled on last page")
	}
	if controls[0].Disabled {
		t.Error("previous disabled on last page")
	}
}

func TestPaginator_RebuildDoesNotDrift(t *testing.T) {
	rec := &fetchRecorder{}
	tbl := newTestTable(t, rec, WithPageNumber(1), WithTotalPages(3))

	tbl.PopulateTable(nil)
	tbl.ConstructPaginator()
	if got := tbl.DisplayPage(); got != 2 {
		t.Errorf("display page after rebuilds = %d, want 2", got)
	}
	if got := tbl.PageNumber(); got != 1 {
		t.Errorf("page number = %d, want 1", got)
	}
}

func TestPopulateTable_LooksUpByLabel(t *testing.T) {
	rec := &fetchRecorder{}
	tbl := newTestTable(t, rec, WithDesiredFormat(model.ColumnFormat{{Key: "f", Label: "a"}}))

	tbl.PopulateTable([]model.Record{{"a": "x"}})

	header := tbl.Header()
	if len(header) != 1 || header[0] != "a" {
		t.Fatalf("header = %v, want [a]", header)
	}
	rows := tbl.Rows()
	if len(rows) != 1 || len(rows[0]) != 1 || rows[0][0] != "x" {
		t.Fatalf("rows = %v, want [[x]]", rows)
	}
}

func TestPopulateTable_FieldKeyIsNotUsed(t *testing.T) {
	rec := &fetchRecorder{}
	tbl := newTestTable(t, rec, WithDesiredFormat(model.ColumnFormat{{Key: "name", Label: "Name"}}))

	tbl.PopulateTable([]model.Record{{"name": "keyed by field"}})
	if got := tbl.Rows()[0][0]; got != "" {
		t.Errorf("cell = %q, want empty when only the field key is present", got)
	}
}

func TestPopulateTable_ColumnOrder(t *testing.T) {
	rec := &fetchRecorder{}
	format := model.ColumnFormat{
		{Key: "reference", Label: "Reference"},
		{Key: "name", Label: "Name"},
		{Key: "price", Label: "Price"},
	}
	tbl := newTestTable(t, rec, WithDesiredFormat(format))

	tbl.PopulateTable([]model.Record{
		{"Name": "Bolt", "Price": "0.10", "Reference": "B-1"},
		{"Name": "Nut", "Price": "0.05", "Reference": "N-1"},
	})

	if got := strings.Join(tbl.Header(), ","); got != "Reference,Name,Price" {
		t.Errorf("header = %s", got)
	}
	if got := strings.Join(tbl.Rows()[1], ","); got != "N-1,Nut,0.05" {
		t.Errorf("row 1 = %s", got)
	}

	view := tbl.View(false)
	for _, want := range []string{"Reference", "Bolt", "N-1", "Previous", "Next"} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q", want)
		}
	}
}

func TestSetters_DoNotRender(t *testing.T) {
	rec := &fetchRecorder{}
	tbl := newTestTable(t, rec,
		WithDesiredFormat(model.ColumnFormat{{Key: "n", Label: "N"}}),
		WithData([]model.Record{{"N": "old"}}))

	tbl.SetData([]model.Record{{"N": "new"}})
	tbl.SetTotalPages(9)
	tbl.SetPageNumber(4)

	if got := tbl.Rows()[0][0]; got != "old" {
		t.Errorf("cell = %q before PopulateTable, want old", got)
	}
	if got := len(tbl.Controls()); got != 3 {
		t.Errorf("controls = %d before rebuild, want 3", got)
	}

	tbl.PopulateTable([]model.Record{{"N": "new"}})
	if got := tbl.DisplayPage(); got != 5 {
		t.Errorf("display page = %d, want 5", got)
	}
	if got := len(tbl.Controls()); got != 11 {
		t.Errorf("controls = %d, want 11", got)
	}
}

func TestFocusAndActivate(t *testing.T) {
	rec := &fetchRecorder{}
	tbl := newTestTable(t, rec, WithPageNumber(0), WithTotalPages(2), WithRowsPerPage(7))

	tbl.MoveFocus(-3)
	if tbl.Focus() != 0 {
		t.Fatalf("focus = %d, want clamp at 0", tbl.Focus())
	}
	tbl.MoveFocus(2)
	tbl.ActivateFocused()
	tbl.MoveFocus(10)
	tbl.ActivateFocused()

	if len(rec.calls) != 2 {
		t.Fatalf("fetch calls = %d, want 2", len(rec.calls))
	}
	if rec.calls[0].page != 1 || rec.calls[1].page != 1 || rec.calls[1].rows != 7 {
		t.Errorf("calls = %+v", rec.calls)
	}
}

func TestControlAt(t *testing.T) {
	rec := &fetchRecorder{}
	tbl := newTestTable(t, rec, WithTotalPages(3))

	if idx, ok := tbl.ControlAt(0); !ok || idx != 0 {
		t.Errorf("ControlAt(0) = %d, %v, want previous", idx, ok)
	}
	prevWidth := len(" Previous ")
	if idx, ok := tbl.ControlAt(prevWidth + 1); !ok || idx != 1 {
		t.Errorf("ControlAt(%d) = %d, %v, want page 1", prevWidth+1, idx, ok)
	}
	if _, ok := tbl.ControlAt(prevWidth); ok {
		t.Error("separator column resolved to a control")
	}
}

func TestMissingContainer_IsInert(t *testing.T) {
	var buf bytes.Buffer
	rec := &fetchRecorder{}
	layout := NewLayout("somewhere_else")

	tbl := NewPaginatedTable(layout, "products_table", rec.fetch,
		WithLogger(log.New(&buf, "", 0)), WithTotalPages(3))

	if !tbl.Inert() {
		t.Fatal("expected inert table")
	}
	if lines := strings.Count(buf.String(), "\n"); lines != 2 {
		t.Errorf("diagnostics = %d lines, want 2: %q", lines, buf.String())
	}

	tbl.SetData([]model.Record{{"a": "b"}})
	tbl.SetDesiredFormat(model.ColumnFormat{{Key: "a", Label: "a"}})
	tbl.SetPageNumber(2)
	tbl.SetRowsPerPage(5)
	tbl.SetTotalPages(4)
	tbl.PopulateTable([]model.Record{{"a": "b"}})
	tbl.ConstructPaginator()

	if tbl.Header() != nil || tbl.Rows() != nil || tbl.Controls() != nil {
		t.Error("inert table rendered content")
	}
	if tbl.PageNumber() != 0 || tbl.RowsPerPage() != 0 || tbl.TotalPages() != 0 {
		t.Error("inert table accepted mutations")
	}
	if cmd := tbl.Activate(0); cmd != nil {
		t.Error("inert table fetched")
	}
	if cmd := tbl.Refetch(); cmd != nil {
		t.Error("inert table refetched")
	}
	if tbl.View(true) != "" {
		t.Error("inert table rendered a view")
	}
	if len(rec.calls) != 0 {
		t.Errorf("fetch calls = %d, want 0", len(rec.calls))
	}
}
