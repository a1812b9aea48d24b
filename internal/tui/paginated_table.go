package tui

import (
	"log"

	"github.com/tinytelemetry/stockroom/internal/model"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
)

// FetchFunc requests a page of rows. pageNumber is the external, 0-based page.
type FetchFunc func(pageNumber, rowsPerPage int, format model.ColumnFormat) tea.Cmd

// tableView is the rendered form of the current rows. It is rebuilt from
// scratch on every PopulateTable.
type tableView struct {
	header []string
	rows   [][]string
}

// PaginatedTable renders server-fed rows with a pager underneath. It is inert
// when its container could not be found: every method is then a no-op.
type PaginatedTable struct {
	container *Container
	fetch     FetchFunc
	logger    *log.Logger

	data          []model.Record
	desiredFormat model.ColumnFormat
	pageNumber    int
	rowsPerPage   int
	totalPages    int

	table     *tableView
	paginator *paginatorView
	focus     int // index of the focused pager control
}

// TableOption configures a PaginatedTable at construction.
type TableOption func(*PaginatedTable)

func WithData(rows []model.Record) TableOption {
	return func(t *PaginatedTable) { t.data = rows }
}

func WithDesiredFormat(f model.ColumnFormat) TableOption {
	return func(t *PaginatedTable) { t.desiredFormat = f }
}

func WithPageNumber(n int) TableOption {
	return func(t *PaginatedTable) { t.pageNumber = n }
}

func WithRowsPerPage(n int) TableOption {
	return func(t *PaginatedTable) { t.rowsPerPage = n }
}

func WithTotalPages(n int) TableOption {
	return func(t *PaginatedTable) { t.totalPages = n }
}

// WithLogger sets where construction diagnostics go. Defaults to log.Default().
func WithLogger(l *log.Logger) TableOption {
	return func(t *PaginatedTable) { t.logger = l }
}

// NewPaginatedTable binds a table to the container containerID of layout and
// renders it right away from the initial data.
func NewPaginatedTable(layout *Layout, containerID string, fetch FetchFunc, opts ...TableOption) *PaginatedTable {
	t := &PaginatedTable{
		fetch:      fetch,
		logger:     log.Default(),
		totalPages: 1,
	}
	for _, opt := range opts {
		opt(t)
	}

	container, ok := layout.Container(containerID)
	if !ok {
		t.logger.Printf("tui: search for container with id %q returned nothing", containerID)
		t.logger.Printf("tui: table creation failed")
		return &PaginatedTable{logger: t.logger}
	}
	t.container = container

	t.PopulateTable(t.data)
	return t
}

// Inert reports whether the table failed to bind to its container.
func (t *PaginatedTable) Inert() bool {
	return t.container == nil
}

// PopulateTable replaces the rows and rebuilds the table and the pager.
// Cells are looked up in each record by column label, which is how the
// server keys the records it returns.
func (t *PaginatedTable) PopulateTable(rows []model.Record) {
	if t.Inert() {
		return
	}
	t.SetData(rows)

	if t.table != nil {
		t.destructTable()
	}
	t.constructTable()

	t.table.header = t.desiredFormat.Labels()
	for _, record := range t.data {
		row := make([]string, len(t.desiredFormat))
		for i, col := range t.desiredFormat {
			row[i] = record.Text(col.Label)
		}
		t.table.rows = append(t.table.rows, row)
	}

	t.ConstructPaginator()
}

func (t *PaginatedTable) constructTable() {
	t.table = &tableView{}
}

func (t *PaginatedTable) destructTable() {
	t.table = nil
}

func (t *PaginatedTable) SetData(rows []model.Record) {
	if t.Inert() {
		return
	}
	t.data = rows
}

func (t *PaginatedTable) SetDesiredFormat(f model.ColumnFormat) {
	if t.Inert() {
		return
	}
	t.desiredFormat = f
}

func (t *PaginatedTable) SetPageNumber(n int) {
	if t.Inert() {
		return
	}
	t.pageNumber = n
}

func (t *PaginatedTable) SetRowsPerPage(n int) {
	if t.Inert() {
		return
	}
	t.rowsPerPage = n
}

func (t *PaginatedTable) SetTotalPages(n int) {
	if t.Inert() {
		return
	}
	t.totalPages = n
}

func (t *PaginatedTable) PageNumber() int                   { return t.pageNumber }
func (t *PaginatedTable) RowsPerPage() int                  { return t.rowsPerPage }
func (t *PaginatedTable) TotalPages() int                   { return t.totalPages }
func (t *PaginatedTable) DesiredFormat() model.ColumnFormat { return t.desiredFormat }

// Header returns the rendered header cells.
func (t *PaginatedTable) Header() []string {
	if t.table == nil {
		return nil
	}
	return append([]string(nil), t.table.header...)
}

// Rows returns the rendered body cells.
func (t *PaginatedTable) Rows() [][]string {
	if t.table == nil {
		return nil
	}
	out := make([][]string, len(t.table.rows))
	for i, r := range t.table.rows {
		out[i] = append([]string(nil), r...)
	}
	return out
}

// Refetch requests the current page again.
func (t *PaginatedTable) Refetch() tea.Cmd {
	if t.Inert() || t.fetch == nil {
		return nil
	}
	return t.fetch(t.pageNumber, t.rowsPerPage, t.desiredFormat)
}

// View renders the table and its pager, sized to the container.
func (t *PaginatedTable) View(focused bool) string {
	if t.Inert() || t.table == nil {
		return ""
	}

	header := lipgloss.NewStyle().Foreground(ColorBlue).Bold(true).Padding(0, 1)
	even := lipgloss.NewStyle().Foreground(ColorWhite).Padding(0, 1)
	odd := even.Foreground(ColorGray)

	tbl := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(ColorGray)).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == table.HeaderRow:
				return header
			case row%2 == 0:
				return even
			default:
				return odd
			}
		}).
		Headers(t.table.header...).
		Rows(t.table.rows...)
	if t.container.Width > 0 {
		tbl = tbl.Width(t.container.Width)
	}

	body := tbl.String()
	if len(t.table.rows) == 0 {
		body = lipgloss.JoinVertical(lipgloss.Left, body,
			lipgloss.NewStyle().Foreground(ColorGray).Italic(true).Render("No products yet."))
	}
	return lipgloss.JoinVertical(lipgloss.Left, body, t.renderPaginator(focused))
}
