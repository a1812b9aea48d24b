package tui

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/tinytelemetry/stockroom/internal/model"
	"github.com/tinytelemetry/stockroom/internal/session"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// productsTableID is the layout container the product table renders into.
const productsTableID = "products_table"

// errorDisplayDuration is how long a failed request stays in the status line.
const errorDisplayDuration = 30 * time.Second

// ProductColumns is the table format requested from the server.
var ProductColumns = model.ColumnFormat{
	{Key: "reference", Label: "Reference"},
	{Key: "name", Label: "Name"},
	{Key: "price", Label: "Price"},
	{Key: "created_at", Label: "Added"},
}

// PageConfig tunes the products page.
type PageConfig struct {
	AlertTimeout   int // seconds each batch adds to its box
	RowsPerPage    int
	RequestTimeout time.Duration
	Alerts         AlertConfig
}

// Messages produced by the page's commands.
type (
	hostResolvedMsg struct {
		host string
		err  error
	}
	referenceCheckedMsg struct {
		reference string
		result    model.ReferenceCheck
		err       error
	}
	productCreatedMsg struct {
		batch model.MessageBatch
		err   error
	}
	productsLoadedMsg struct {
		req  model.PageRequest
		page model.ProductPage
		err  error
	}
)

// ProductsPage is the add-product form above the paginated product list,
// with alerts stacked in the bottom-right corner.
type ProductsPage struct {
	api   model.InventoryAPI
	hosts *session.HostCache
	cfg   PageConfig

	keys    KeyMap
	help    help.Model
	spinner spinner.Model

	state  *FormState
	form   *ProductForm
	alerts *AlertManager
	layout *Layout
	table  *PaginatedTable

	focus    formField
	inFlight int
	loaded   bool
	host     string

	lastError   string
	lastErrorAt time.Time

	width, height int

	// Screen positions from the last View, used for mouse hits.
	stackTop  int
	stackLeft int
	pagerRow  int
}

// NewProductsPage wires the page to the inventory service.
func NewProductsPage(api model.InventoryAPI, hosts *session.HostCache, cfg PageConfig) *ProductsPage {
	if cfg.RowsPerPage <= 0 {
		cfg.RowsPerPage = model.DefaultRowsPerPage
	}
	if cfg.AlertTimeout < 0 {
		cfg.AlertTimeout = 0
	}

	sp := spinner.New()
	sp.Spinner = spinner.MiniDot
	sp.Style = lipgloss.NewStyle().Foreground(ColorOrange)

	state := NewFormState()
	p := &ProductsPage{
		api:     api,
		hosts:   hosts,
		cfg:     cfg,
		keys:    DefaultKeyMap(),
		help:    help.New(),
		spinner: sp,
		state:   state,
		form:    NewProductForm(state),
		alerts:  NewAlertManager(cfg.Alerts),
		layout:  NewLayout(productsTableID),
	}
	p.table = NewPaginatedTable(p.layout, productsTableID, p.fetchProducts,
		WithDesiredFormat(ProductColumns),
		WithPageNumber(0),
		WithRowsPerPage(cfg.RowsPerPage),
		WithTotalPages(1),
	)
	return p
}

// Init resolves the host and loads the first page.
func (p *ProductsPage) Init() tea.Cmd {
	return tea.Batch(p.resolveHost(), p.table.Refetch(), p.form.Focus(p.focus))
}

func (p *ProductsPage) Update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		p.resize(msg.Width, msg.Height)
		return nil

	case tea.KeyMsg:
		return p.handleKey(msg)

	case tea.MouseMsg:
		return p.handleMouse(msg)

	case spinner.TickMsg:
		if p.inFlight == 0 {
			return nil
		}
		var cmd tea.Cmd
		p.spinner, cmd = p.spinner.Update(msg)
		return cmd

	case alertCountdownMsg, alertFrameMsg:
		return p.alerts.Update(msg)

	case hostResolvedMsg:
		if msg.err != nil {
			p.noteError("host lookup", msg.err)
			return nil
		}
		p.host = msg.host
		return nil

	case referenceCheckedMsg:
		p.requestDone()
		if msg.err != nil {
			p.noteError("reference check", msg.err)
			return nil
		}
		if msg.reference != p.form.Values().Reference {
			// The field changed while the check was in flight.
			return nil
		}
		p.state.SetReferenceValidity(msg.result.Valid)
		return p.alerts.Display(msg.result.Messages, p.cfg.AlertTimeout)

	case productCreatedMsg:
		p.requestDone()
		if msg.err != nil {
			p.noteError("create product", msg.err)
			return nil
		}
		cmds := []tea.Cmd{p.alerts.Display(msg.batch, p.cfg.AlertTimeout)}
		if msg.batch.Category == model.CategorySuccess {
			p.form.Reset()
			cmds = append(cmds, p.table.Refetch())
		}
		return tea.Batch(cmds...)

	case productsLoadedMsg:
		p.requestDone()
		if msg.err != nil {
			p.noteError("load products", msg.err)
			return nil
		}
		p.loaded = true
		p.table.SetPageNumber(msg.req.PageNumber)
		p.table.SetRowsPerPage(msg.req.RowsPerPage)
		p.table.SetTotalPages(max(msg.page.NumberOfPages, 1))
		p.table.PopulateTable(msg.page.Products)
		return nil
	}

	// Cursor blinks and other input internals go to the focused field.
	return p.form.Update(p.focus, msg)
}

func (p *ProductsPage) handleKey(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, p.keys.ForceQuit):
		return tea.Quit
	case key.Matches(msg, p.keys.NextField):
		return p.setFocus((p.focus + 1) % fieldCount)
	case key.Matches(msg, p.keys.PrevField):
		return p.setFocus((p.focus + fieldCount - 1) % fieldCount)
	case key.Matches(msg, p.keys.CheckReference):
		return p.checkReference()
	case key.Matches(msg, p.keys.Submit):
		return p.submit()
	case key.Matches(msg, p.keys.Dismiss):
		return p.alerts.DismissNewest()
	case key.Matches(msg, p.keys.Refresh):
		return p.table.Refetch()
	}

	if p.focus == fieldPager {
		switch {
		case key.Matches(msg, p.keys.Quit):
			return tea.Quit
		case key.Matches(msg, p.keys.Help):
			p.help.ShowAll = !p.help.ShowAll
		case key.Matches(msg, p.keys.Left):
			p.table.MoveFocus(-1)
		case key.Matches(msg, p.keys.Right):
			p.table.MoveFocus(1)
		case key.Matches(msg, p.keys.Enter):
			return p.table.ActivateFocused()
		}
		return nil
	}

	if key.Matches(msg, p.keys.Enter) {
		if p.focus == fieldReference {
			return p.checkReference()
		}
		return p.setFocus(p.focus + 1)
	}
	return p.form.Update(p.focus, msg)
}

func (p *ProductsPage) handleMouse(msg tea.MouseMsg) tea.Cmd {
	if msg.Action != tea.MouseActionPress || msg.Button != tea.MouseButtonLeft {
		return nil
	}
	if p.alerts.Len() > 0 {
		if hit, ok := p.alerts.CloseHit(msg.Y-p.stackTop, msg.X-p.stackLeft); ok {
			return p.alerts.Dismiss(hit.Category)
		}
	}
	if p.loaded && msg.Y == p.pagerRow {
		if idx, ok := p.table.ControlAt(msg.X); ok {
			p.setFocus(fieldPager)
			p.table.MoveFocus(idx - p.table.Focus())
			return p.table.Activate(idx)
		}
	}
	return nil
}

func (p *ProductsPage) setFocus(f formField) tea.Cmd {
	p.focus = f
	return p.form.Focus(f)
}

func (p *ProductsPage) resize(width, height int) {
	p.width, p.height = width, height
	p.layout.Resize(productsTableID, width, 0)
	p.help.Width = width
}

func (p *ProductsPage) requestCtx() (context.Context, context.CancelFunc) {
	if p.cfg.RequestTimeout > 0 {
		return context.WithTimeout(context.Background(), p.cfg.RequestTimeout)
	}
	return context.WithCancel(context.Background())
}

// track counts cmd as an in-flight request and starts the spinner for the
// first one.
func (p *ProductsPage) track(cmd tea.Cmd) tea.Cmd {
	p.inFlight++
	if p.inFlight == 1 {
		return tea.Batch(cmd, p.spinner.Tick)
	}
	return cmd
}

func (p *ProductsPage) requestDone() {
	if p.inFlight > 0 {
		p.inFlight--
	}
}

func (p *ProductsPage) noteError(op string, err error) {
	log.Printf("tui: %s failed: %v", op, err)
	p.lastError = op + " failed"
	p.lastErrorAt = time.Now()
}

func (p *ProductsPage) resolveHost() tea.Cmd {
	if p.hosts == nil {
		return nil
	}
	hosts := p.hosts
	ctx, cancel := p.requestCtx()
	return func() tea.Msg {
		defer cancel()
		host, err := hosts.Get(ctx)
		return hostResolvedMsg{host: host, err: err}
	}
}

// fetchProducts is the table's FetchFunc.
func (p *ProductsPage) fetchProducts(pageNumber, rowsPerPage int, format model.ColumnFormat) tea.Cmd {
	req := model.PageRequest{
		DesiredResultsFormat: format,
		PageNumber:           pageNumber,
		RowsPerPage:          rowsPerPage,
	}
	api := p.api
	ctx, cancel := p.requestCtx()
	return p.track(func() tea.Msg {
		defer cancel()
		page, err := api.ProductsPage(ctx, req)
		return productsLoadedMsg{req: req, page: page, err: err}
	})
}

func (p *ProductsPage) checkReference() tea.Cmd {
	reference := p.form.Values().Reference
	api := p.api
	ctx, cancel := p.requestCtx()
	return p.track(func() tea.Msg {
		defer cancel()
		result, err := api.CheckReference(ctx, reference)
		return referenceCheckedMsg{reference: reference, result: result, err: err}
	})
}

// submit sends the form when it is valid. An invalid form is the disabled
// button: nothing happens.
func (p *ProductsPage) submit() tea.Cmd {
	if !p.state.FormValid() {
		return nil
	}
	form := p.form.Values()
	api := p.api
	ctx, cancel := p.requestCtx()
	return p.track(func() tea.Msg {
		defer cancel()
		batch, err := api.CreateProduct(ctx, form)
		return productCreatedMsg{batch: batch, err: err}
	})
}

// View renders the page and overlays the alert stack above the help and
// status lines.
func (p *ProductsPage) View(width, height int) string {
	if width != p.width || height != p.height {
		p.resize(width, height)
	}
	if width <= 0 || height <= 0 {
		return ""
	}

	title := titleStyle.Width(width).Render("Stockroom · Products")
	form := p.form.View(p.focus, width)

	var tbl string
	if p.loaded {
		tbl = p.table.View(p.focus == fieldPager)
	} else {
		tbl = renderLoadingPlaceholder(width, 3)
	}
	tableTop := lipgloss.Height(title) + lipgloss.Height(form)
	p.pagerRow = tableTop + lipgloss.Height(tbl) - 1
	body := lipgloss.JoinVertical(lipgloss.Left, title, form, tbl)

	helpView := p.help.View(p.keys)
	status := p.renderStatusLine(width)
	contentHeight := max(height-lipgloss.Height(helpView)-lipgloss.Height(status), 0)

	lines := fitLines(body, contentHeight)
	p.stackTop = contentHeight - p.alerts.AnchorOffset()
	p.stackLeft = width - p.alerts.StackWidth() - 1
	lines = overlayRight(lines, p.alerts.StackLines(), p.stackTop, width)

	return strings.Join(lines, "\n") + "\n" + helpView + "\n" + status
}

func (p *ProductsPage) renderStatusLine(width int) string {
	var parts []string

	if p.host != "" {
		parts = append(parts, lipgloss.NewStyle().Foreground(ColorGreen).Render("●")+" "+p.host)
	} else {
		parts = append(parts, lipgloss.NewStyle().Foreground(ColorGray).Render("○")+" resolving host")
	}

	if p.loaded {
		parts = append(parts, fmt.Sprintf("page %d/%d", p.table.DisplayPage(), p.table.TotalPages()))
	}

	if p.inFlight > 0 {
		parts = append(parts, p.spinner.View()+" working")
	}

	if p.lastError != "" && time.Since(p.lastErrorAt) < errorDisplayDuration {
		parts = append(parts, lipgloss.NewStyle().Foreground(ColorRed).Render(p.lastError))
	}

	return statusStyle.Width(width).Render(" " + strings.Join(parts, "  │  "))
}

// Alerts exposes the page's alert manager.
func (p *ProductsPage) Alerts() *AlertManager { return p.alerts }

// Table exposes the page's product table.
func (p *ProductsPage) Table() *PaginatedTable { return p.table }
