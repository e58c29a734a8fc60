package view

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/google/uuid"

	"github.com/kedarnag/invoiceflow/internal/client"
	"github.com/kedarnag/invoiceflow/internal/invoice"
	"github.com/kedarnag/invoiceflow/internal/itemcache"
	"github.com/kedarnag/invoiceflow/internal/listing"
	"github.com/kedarnag/invoiceflow/internal/render"
)

// RoleConfig parameterizes the one approval screen that serves every role
// page: the acting role, its display title and the page size.
type RoleConfig struct {
	Role     invoice.Role
	Title    string
	PageSize int
}

type approvalTab int

const (
	tabPending approvalTab = iota
	tabApproved
)

type approvalState int

const (
	approvalStateBrowse approvalState = iota
	approvalStateFilter
	approvalStatePreview
)

type ApprovalModel struct {
	CommonModel
	api *client.Client
	cfg RoleConfig

	state approvalState
	tab   approvalTab
	table table.Model
	spin  spinner.Model

	// all is the active tab's full fetched list; visible is the filtered,
	// paginated window currently shown in the table.
	all     []*invoice.Invoice
	visible []*invoice.Invoice

	filter listing.Filter
	pager  listing.Paginator

	cache    *itemcache.Cache
	expanded map[uuid.UUID]struct{}
	inFlight map[uuid.UUID]struct{}

	guard *client.Guard

	form       *huh.Form
	formSearch string
	formCenter string
	formCycle  string

	loading bool
	errMsg  string
	status  string

	preview previewResult
}

func NewApprovalModel(api *client.Client, cfg RoleConfig) ApprovalModel {
	columns := []table.Column{
		{Title: "", Width: 2},
		{Title: "Invoice", Width: 14},
		{Title: "Center", Width: 20},
		{Title: "Cycle", Width: 5},
		{Title: "Date", Width: 12},
		{Title: "Net Amount", Width: 16},
		{Title: "Center Share", Width: 16},
		{Title: "Status", Width: 18},
	}

	t := table.New(
		table.WithColumns(columns),
		table.WithFocused(true),
		table.WithHeight(cfg.PageSize+1),
	)

	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		BorderBottom(true).
		Bold(false)
	s.Selected = s.Selected.
		Foreground(lipgloss.Color("229")).
		Background(lipgloss.Color("57")).
		Bold(false)
	t.SetStyles(s)

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	return ApprovalModel{
		api:      api,
		cfg:      cfg,
		table:    t,
		spin:     sp,
		pager:    listing.NewPaginator(cfg.PageSize),
		cache:    itemcache.New(),
		expanded: make(map[uuid.UUID]struct{}),
		inFlight: make(map[uuid.UUID]struct{}),
		guard:    &client.Guard{},
	}
}

func (m ApprovalModel) Title() string { return m.cfg.Title }

func (m ApprovalModel) ShortHelp() string {
	switch m.state {
	case approvalStateFilter:
		return "Navigate form | Esc: cancel"
	case approvalStatePreview:
		return "Esc: close preview"
	}

	help := "Esc: back | t: tab | enter: expand | f: filter | p: print | [/]: page | r: refresh"
	if m.tab == tabPending {
		help = fmt.Sprintf("%s | a: %s", help, invoice.ActionLabelFor(m.cfg.Role))
	}

	return help
}

func (m ApprovalModel) Init() tea.Cmd {
	return tea.Batch(m.loadInvoicesCmd(), m.spin.Tick)
}

// Messages

type loadInvoicesMsg struct {
	gen  uint64
	tab  approvalTab
	invs []*invoice.Invoice
	err  error
}

type loadItemsMsg struct {
	id    uuid.UUID
	items []*invoice.Item
	err   error
}

type transitionMsg struct {
	id  uuid.UUID
	inv *invoice.Invoice
	err error
}

func (m ApprovalModel) loadInvoicesCmd() tea.Cmd {
	gen := m.guard.Next()
	tab := m.tab
	role := m.cfg.Role
	api := m.api

	return func() tea.Msg {
		ctx, cancel := APICtx()
		defer cancel()

		var (
			invs []*invoice.Invoice
			err  error
		)

		if tab == tabPending {
			invs, err = api.ListPending(ctx, role)
		} else {
			invs, err = api.ListApproved(ctx, role)
		}

		return loadInvoicesMsg{gen: gen, tab: tab, invs: invs, err: err}
	}
}

func (m ApprovalModel) loadItemsCmd(id uuid.UUID) tea.Cmd {
	api := m.api

	return func() tea.Msg {
		ctx, cancel := APICtx()
		defer cancel()

		items, err := api.Items(ctx, id)

		return loadItemsMsg{id: id, items: items, err: err}
	}
}

func (m ApprovalModel) transitionCmd(id uuid.UUID) tea.Cmd {
	api := m.api
	role := m.cfg.Role

	return func() tea.Msg {
		ctx, cancel := APICtx()
		defer cancel()

		inv, err := api.Transition(ctx, role, id, "")

		return transitionMsg{id: id, inv: inv, err: err}
	}
}

func (m ApprovalModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case loadInvoicesMsg:
		// A response from a superseded fetch (rapid tab switching, double
		// refresh) must not clobber the newer one.
		if !m.guard.Latest(msg.gen) || msg.tab != m.tab {
			return m, nil
		}

		m.loading = false

		if msg.err != nil {
			m.errMsg = fmt.Sprintf("Failed to load invoices: %v", msg.err)
			return m, nil
		}

		m.errMsg = ""
		m.all = msg.invs
		m.refresh(false)

		return m, nil

	case loadItemsMsg:
		if msg.err != nil {
			m.cache.DoneLoading(msg.id)
			delete(m.expanded, msg.id)
			m.status = fmt.Sprintf("Error loading items: %v", msg.err)

			return m, nil
		}

		m.cache.Put(msg.id, msg.items)
		m.refresh(false)

		return m, nil

	case transitionMsg:
		// The in-flight marker clears on success and failure alike so the
		// action becomes available again.
		delete(m.inFlight, msg.id)

		if msg.err != nil {
			m.status = fmt.Sprintf("Error: %v", msg.err)
			return m, nil
		}

		delete(m.expanded, msg.id)
		m.status = fmt.Sprintf("%s: %s is now %s", invoice.ActionLabelFor(m.cfg.Role), msg.inv.Number, msg.inv.Status)
		m.loading = true

		// No optimistic update: re-derive the list from a fresh fetch.
		return m, m.loadInvoicesCmd()

	case previewMsg:
		if msg.err != nil {
			m.status = fmt.Sprintf("Error rendering preview: %v", msg.err)
			return m, nil
		}

		m.preview = msg.result
		m.state = approvalStatePreview
		m.table.Blur()

		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)

		return m, cmd

	case tea.WindowSizeMsg:
		m.Width = msg.Width
		m.Height = msg.Height

		return m, nil
	}

	switch m.state {
	case approvalStateBrowse:
		return m.updateBrowse(msg)
	case approvalStateFilter:
		return m.updateFilter(msg)
	case approvalStatePreview:
		return m.updatePreview(msg)
	}

	return m, nil
}

func (m ApprovalModel) updateBrowse(msg tea.Msg) (tea.Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if ok {
		switch keyMsg.String() {
		case "esc":
			return m, Back
		case "t", "tab":
			return m.switchTab()
		case "r":
			m.loading = true
			m.status = ""

			return m, m.loadInvoicesCmd()
		case "enter", " ":
			return m.toggleExpand()
		case "f":
			return m.enterFilterMode()
		case "a":
			return m.performTransition()
		case "p":
			return m.openPrintPreview()
		case "[":
			if m.pager.Page > 1 {
				m.pager.Page--
				m.refresh(false)
			}

			return m, nil
		case "]":
			filtered := m.filter.Apply(m.all)
			if m.pager.Page < m.pager.TotalPages(len(filtered)) {
				m.pager.Page++
				m.refresh(false)
			}

			return m, nil
		}
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)

	return m, cmd
}

func (m ApprovalModel) switchTab() (tea.Model, tea.Cmd) {
	if m.tab == tabPending {
		m.tab = tabApproved
	} else {
		m.tab = tabPending
	}

	m.all = nil
	m.status = ""
	m.loading = true
	m.pager.Reset()
	m.refresh(false)

	return m, m.loadInvoicesCmd()
}

// cursorInvoice returns the invoice under the cursor in the visible window.
func (m ApprovalModel) cursorInvoice() *invoice.Invoice {
	idx := m.table.Cursor()
	if idx < 0 || idx >= len(m.visible) {
		return nil
	}

	return m.visible[idx]
}

func (m ApprovalModel) toggleExpand() (tea.Model, tea.Cmd) {
	inv := m.cursorInvoice()
	if inv == nil {
		return m, nil
	}

	if _, expanded := m.expanded[inv.ID]; expanded {
		delete(m.expanded, inv.ID)
		m.refresh(false)

		return m, nil
	}

	m.expanded[inv.ID] = struct{}{}

	// Second expansion of the same invoice is a cache hit, no refetch.
	if _, ok := m.cache.Get(inv.ID); ok {
		m.refresh(false)
		return m, nil
	}

	if m.cache.Loading(inv.ID) {
		return m, nil
	}

	m.cache.StartLoading(inv.ID)

	return m, m.loadItemsCmd(inv.ID)
}

func (m ApprovalModel) performTransition() (tea.Model, tea.Cmd) {
	if m.tab != tabPending {
		return m, nil
	}

	inv := m.cursorInvoice()
	if inv == nil {
		return m, nil
	}

	// The transition has no dedup key; the in-flight set is what prevents
	// duplicate submissions.
	if _, busy := m.inFlight[inv.ID]; busy {
		return m, nil
	}

	m.inFlight[inv.ID] = struct{}{}
	m.status = fmt.Sprintf("%s %s...", invoice.ActionLabelFor(m.cfg.Role), inv.Number)

	return m, m.transitionCmd(inv.ID)
}

func (m ApprovalModel) enterFilterMode() (tea.Model, tea.Cmd) {
	m.formSearch = m.filter.Search
	m.formCenter = m.filter.Center
	m.formCycle = m.filter.Cycle

	centerOptions := []huh.Option[string]{huh.NewOption("All Centers", "")}
	for _, name := range listing.Centers(m.all) {
		centerOptions = append(centerOptions, huh.NewOption(name, name))
	}

	m.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Key("search").
				Title("Search").
				Placeholder("Invoice number or center").
				Value(&m.formSearch),

			huh.NewSelect[string]().
				Key("center").
				Title("Center").
				Options(centerOptions...).
				Value(&m.formCenter),

			huh.NewSelect[string]().
				Key("cycle").
				Title("Cycle").
				Options(
					huh.NewOption("All Cycles", ""),
					huh.NewOption("Cycle 1", "1"),
					huh.NewOption("Cycle 2", "2"),
					huh.NewOption("Cycle 3", "3"),
				).
				Value(&m.formCycle),
		),
	).WithWidth(45).WithShowHelp(false)

	m.state = approvalStateFilter
	m.table.Blur()

	return m, m.form.Init()
}

func (m ApprovalModel) updateFilter(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		if keyMsg.Type == tea.KeyEsc {
			m.state = approvalStateBrowse
			m.form = nil
			m.table.Focus()

			return m, nil
		}
	}

	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}

	if m.form.State != huh.StateCompleted {
		return m, cmd
	}

	m.filter = listing.Filter{
		Search: m.formSearch,
		Center: m.formCenter,
		Cycle:  m.formCycle,
	}
	m.state = approvalStateBrowse
	m.form = nil
	m.table.Focus()
	m.refresh(true)

	return m, nil
}

func (m ApprovalModel) updatePreview(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		if keyMsg.Type == tea.KeyEsc {
			m.state = approvalStateBrowse
			m.table.Focus()

			return m, nil
		}
	}

	return m, nil
}

// refresh recomputes the filtered set and the visible page window. A filter
// change resets to page one; otherwise the page only clamps if the data
// shrank underneath it.
func (m *ApprovalModel) refresh(filterChanged bool) {
	filtered := m.filter.Apply(m.all)

	if filterChanged {
		m.pager.Reset()
	}

	m.pager.Clamp(len(filtered))
	m.visible = m.pager.Slice(filtered)

	rows := make([]table.Row, 0, len(m.visible))

	for _, inv := range m.visible {
		marker := " "
		if _, ok := m.expanded[inv.ID]; ok {
			marker = "▾"
		} else if m.cache.Loading(inv.ID) {
			marker = m.spin.View()
		}

		if _, busy := m.inFlight[inv.ID]; busy {
			marker = m.spin.View()
		}

		rows = append(rows, table.Row{
			marker,
			inv.Number,
			inv.CenterName,
			fmt.Sprintf("%d", inv.CycleNumber),
			render.FormatDate(inv.InvoiceDate),
			render.FormatAmount(inv.TotalNetAmount),
			render.FormatAmount(inv.TotalCenterShare),
			string(inv.Status),
		})
	}

	m.table.SetRows(rows)
}

func (m ApprovalModel) View() string {
	if m.state == approvalStatePreview {
		return m.previewView()
	}

	if m.loading && len(m.all) == 0 {
		return lipgloss.NewStyle().Padding(2).Render(m.spin.View() + " Loading invoices...")
	}

	if m.errMsg != "" {
		return lipgloss.NewStyle().Padding(2).Render(
			fmt.Sprintf("%s\n\n(r to retry, Esc to back)", m.errMsg),
		)
	}

	filtered := m.filter.Apply(m.all)

	header := m.headerView(len(filtered))

	tableView := lipgloss.NewStyle().
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		Render(m.table.View())

	content := lipgloss.JoinVertical(lipgloss.Left,
		lipgloss.NewStyle().PaddingBottom(1).Render(header),
		tableView,
		m.footerView(len(filtered)),
	)

	if panel := m.expansionPanel(); panel != "" {
		content = lipgloss.JoinHorizontal(lipgloss.Top, content, panel)
	}

	if m.state == approvalStateFilter && m.form != nil {
		panel := lipgloss.NewStyle().
			Padding(1, 2).
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("63")).
			Width(48).
			Render("Filter Invoices\n\n" + m.form.View())

		content = lipgloss.JoinHorizontal(lipgloss.Top, content, panel)
	}

	if m.status != "" {
		content = lipgloss.NewStyle().Faint(true).Render(m.status) + "\n" + content
	}

	return lipgloss.NewStyle().Padding(1).Render(content)
}

func (m ApprovalModel) headerView(filteredLen int) string {
	pendingLabel := "Pending"
	approvedLabel := "Approved"

	active := lipgloss.NewStyle().Foreground(lipgloss.Color("205")).Bold(true)

	if m.tab == tabPending {
		pendingLabel = active.Render(pendingLabel)
	} else {
		approvedLabel = active.Render(approvedLabel)
	}

	tabs := fmt.Sprintf("[t] %s | %s", pendingLabel, approvedLabel)

	filterDesc := "none"
	if !m.filter.IsZero() {
		var parts []string

		if m.filter.Search != "" {
			parts = append(parts, fmt.Sprintf("search=%q", m.filter.Search))
		}

		if m.filter.Center != "" {
			parts = append(parts, "center="+m.filter.Center)
		}

		if m.filter.Cycle != "" {
			parts = append(parts, "cycle="+m.filter.Cycle)
		}

		filterDesc = strings.Join(parts, " ")
	}

	return fmt.Sprintf("%s — %s\n%s | [f] Filter: %s | %d invoice(s)",
		m.cfg.Title, invoice.ActionLabelFor(m.cfg.Role), tabs, filterDesc, filteredLen)
}

func (m ApprovalModel) footerView(filteredLen int) string {
	total := m.pager.TotalPages(filteredLen)
	if total == 0 {
		return lipgloss.NewStyle().Faint(true).Render("No invoices")
	}

	return lipgloss.NewStyle().Faint(true).Render(
		fmt.Sprintf("Page %d/%d  %s", m.pager.Page, total, m.ShortHelp()),
	)
}

// expansionPanel renders the cursor invoice's line items when expanded,
// joined alongside the table.
func (m ApprovalModel) expansionPanel() string {
	inv := m.cursorInvoice()
	if inv == nil {
		return ""
	}

	if _, ok := m.expanded[inv.ID]; !ok {
		return ""
	}

	style := lipgloss.NewStyle().
		Padding(1, 2).
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("63")).
		Width(64)

	items, ok := m.cache.Get(inv.ID)
	if !ok {
		return style.Render(fmt.Sprintf("%s\n\n%s Loading items...", inv.Number, m.spin.View()))
	}

	var sb strings.Builder

	fmt.Fprintf(&sb, "%s — %s\n\n", inv.Number, inv.CenterName)

	if len(items) == 0 {
		sb.WriteString("No Settlement Data Available\n")
		return style.Render(sb.String())
	}

	for _, it := range items {
		fmt.Fprintf(&sb, "%-20s %-10s %s\n",
			truncate(it.StudentName, 20),
			truncate(it.CourseName, 10),
			render.FormatAmount(it.CenterShare),
		)
	}

	fmt.Fprintf(&sb, "\nTotal Center Share: %s\n", render.FormatAmount(inv.TotalCenterShare))

	return style.Render(sb.String())
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}

	return s[:n-1] + "…"
}
