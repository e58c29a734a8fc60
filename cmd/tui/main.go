package main

import (
	"fmt"
	"log/slog"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/joho/godotenv"

	"github.com/kedarnag/invoiceflow/cmd/tui/internal/view"
	"github.com/kedarnag/invoiceflow/internal/client"
	"github.com/kedarnag/invoiceflow/internal/config"
	"github.com/kedarnag/invoiceflow/internal/invoice"
	"github.com/kedarnag/invoiceflow/internal/session"
)

type model struct {
	api  *client.Client
	sess *session.Session

	currentView View

	approvalView view.ApprovalModel
}

type View int

const (
	ViewMenu         View = 0
	ViewStateAdmin   View = 1
	ViewFinanceAdmin View = 2
	ViewManager      View = 3
)

var roleConfigs = map[View]view.RoleConfig{
	ViewStateAdmin:   {Role: invoice.RoleStateAdmin, Title: "State Admin — Invoice Verification", PageSize: 10},
	ViewFinanceAdmin: {Role: invoice.RoleFinanceAdmin, Title: "Finance Admin — Invoice Approval", PageSize: 10},
	ViewManager:      {Role: invoice.RoleManager, Title: "Manager — Final Approval", PageSize: 10},
}

func initialModel() model {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	sess, err := session.FromToken(cfg.API.Token)
	if err != nil {
		slog.Error("failed to decode session token", "error", err)
		os.Exit(1)
	}

	api := client.New(cfg.API.BaseURL, cfg.API.Token)

	return model{
		api:         api,
		sess:        sess,
		currentView: ViewMenu,
	}
}

func (m model) Init() tea.Cmd {
	return nil
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		if m.currentView == ViewMenu {
			switch msg.String() {
			case "ctrl+c", "q":
				return m, tea.Quit
			case "1":
				return m.openRole(ViewStateAdmin)
			case "2":
				return m.openRole(ViewFinanceAdmin)
			case "3":
				return m.openRole(ViewManager)
			}
		}
	case view.BackMsg:
		m.currentView = ViewMenu
		return m, nil
	}

	if m.currentView != ViewMenu {
		var newModel tea.Model
		newModel, cmd = m.approvalView.Update(msg)
		m.approvalView = newModel.(view.ApprovalModel)
	}

	return m, cmd
}

func (m model) openRole(v View) (tea.Model, tea.Cmd) {
	m.currentView = v
	m.approvalView = view.NewApprovalModel(m.api, roleConfigs[v])

	return m, m.approvalView.Init()
}

func (m model) View() string {
	if m.currentView != ViewMenu {
		return m.approvalView.View()
	}

	signedIn := fmt.Sprintf("Signed in as %s (%s)", m.sess.FullName, m.sess.Role)

	return lipgloss.NewStyle().Padding(2).Render(
		"Invoiceflow Role Console\n" +
			lipgloss.NewStyle().Faint(true).Render(signedIn) + "\n\n" +
			"1. State Admin — Verify Invoices\n" +
			"2. Finance Admin — Approve Invoices\n" +
			"3. Manager — Final Approve Invoices\n\n" +
			"q. Quit",
	)
}

func main() {
	p := tea.NewProgram(initialModel())
	if _, err := p.Run(); err != nil {
		slog.Error("failed to run TUI", "error", err)
		os.Exit(1)
	}
}
