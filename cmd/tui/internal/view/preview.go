package view

import (
	"fmt"
	"os"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/google/uuid"

	"github.com/kedarnag/invoiceflow/internal/invoice"
	"github.com/kedarnag/invoiceflow/internal/render"
)

// previewResult is a rendered print document on disk, ready for the
// browser's native print dialog.
type previewResult struct {
	Invoice   *invoice.Invoice
	ItemCount int
	Path      string
}

type previewMsg struct {
	result previewResult
	err    error
}

// openPrintPreview resolves the cursor invoice's items, reusing the
// expansion cache when populated and fetching fresh otherwise, renders the
// document and writes it next to the other previews in the temp dir.
func (m ApprovalModel) openPrintPreview() (tea.Model, tea.Cmd) {
	inv := m.cursorInvoice()
	if inv == nil {
		return m, nil
	}

	if items, ok := m.cache.Get(inv.ID); ok {
		return m, m.renderPreviewCmd(inv, items)
	}

	m.status = fmt.Sprintf("Preparing preview for %s...", inv.Number)

	api := m.api
	cache := m.cache
	id := inv.ID

	return m, func() tea.Msg {
		ctx, cancel := APICtx()
		defer cancel()

		items, err := api.Items(ctx, id)
		if err != nil {
			return previewMsg{err: err}
		}

		// Print preview and row expansion share the cache, so expanding
		// this invoice later is a hit.
		cache.Put(id, items)

		return writePreview(inv, items)
	}
}

func (m ApprovalModel) renderPreviewCmd(inv *invoice.Invoice, items []*invoice.Item) tea.Cmd {
	return func() tea.Msg {
		return writePreview(inv, items)
	}
}

func writePreview(inv *invoice.Invoice, items []*invoice.Item) tea.Msg {
	doc, err := render.Document(inv, items, inv.CenterName)
	if err != nil {
		return previewMsg{err: err}
	}

	path := filepath.Join(os.TempDir(), previewFilename(inv.ID))
	if err := os.WriteFile(path, []byte(doc), 0o644); err != nil {
		return previewMsg{err: fmt.Errorf("writing preview: %w", err)}
	}

	return previewMsg{result: previewResult{
		Invoice:   inv,
		ItemCount: len(items),
		Path:      path,
	}}
}

func previewFilename(id uuid.UUID) string {
	return fmt.Sprintf("invoiceflow-preview-%s.html", id)
}

func (m ApprovalModel) previewView() string {
	p := m.preview
	if p.Invoice == nil {
		return ""
	}

	body := fmt.Sprintf(
		"Print Preview — %s\n\n"+
			"Center:        %s\n"+
			"Invoice Date:  %s\n"+
			"Cycle:         %d\n"+
			"Line Items:    %d\n"+
			"Center Share:  %s\n\n"+
			"Document written to:\n  %s\n\n"+
			"Open it in a browser and print; only the invoice sheet is laid\n"+
			"out for A4, the rest of the page is marked non-printable.\n\n"+
			"(Esc to close)",
		p.Invoice.Number,
		p.Invoice.CenterName,
		render.FormatDate(p.Invoice.InvoiceDate),
		p.Invoice.CycleNumber,
		p.ItemCount,
		render.FormatAmount(p.Invoice.TotalCenterShare),
		p.Path,
	)

	return lipgloss.NewStyle().
		Padding(1, 2).
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("63")).
		Render(body)
}
