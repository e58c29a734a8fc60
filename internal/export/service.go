package export

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/kedarnag/invoiceflow/internal/invoice"
	"github.com/kedarnag/invoiceflow/internal/render"
)

// Item links one paid invoice to its rendered print document on disk.
type Item struct {
	Invoice  *invoice.Invoice
	FilePath string
}

// Service writes print-ready documents for a billing cycle's paid invoices,
// for archiving or handing to the finance mailbox.
type Service struct {
	invoices *invoice.Service
}

func NewService(invSvc *invoice.Service) *Service {
	return &Service{invoices: invSvc}
}

// Export renders every paid invoice of the given cycle into outputDir and
// returns the items linking invoices to their files.
func (s *Service) Export(ctx context.Context, cycle int, outputDir string) ([]Item, error) {
	paid, err := s.invoices.ListApproved(ctx, invoice.RoleManager)
	if err != nil {
		return nil, fmt.Errorf("listing paid invoices: %w", err)
	}

	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating output directory: %w", err)
	}

	var items []Item

	for _, inv := range paid {
		if inv.CycleNumber != cycle {
			continue
		}

		lines, err := s.invoices.Items(ctx, inv.ID)
		if err != nil {
			return nil, fmt.Errorf("loading items for invoice %s: %w", inv.Number, err)
		}

		doc, err := render.Document(inv, lines, inv.CenterName)
		if err != nil {
			return nil, fmt.Errorf("rendering invoice %s: %w", inv.Number, err)
		}

		path := filepath.Join(outputDir, documentFilename(inv))
		if err := os.WriteFile(path, []byte(doc), 0o644); err != nil {
			return nil, fmt.Errorf("writing invoice document: %w", err)
		}

		items = append(items, Item{Invoice: inv, FilePath: path})
	}

	return items, nil
}

func documentFilename(inv *invoice.Invoice) string {
	safeNumber := strings.Map(func(r rune) rune {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') || r == '-' || r == '_' {
			return r
		}

		return '_'
	}, inv.Number)

	return fmt.Sprintf("%s_%s.html", inv.InvoiceDate.Format("20060102"), safeNumber)
}

// Summary produces a line-per-invoice digest of an export run.
func (s *Service) Summary(items []Item) string {
	var sb strings.Builder

	for _, item := range items {
		sb.WriteString(fmt.Sprintf("* %s | %s | %s | %s\n",
			item.Invoice.Number,
			item.Invoice.CenterName,
			render.FormatAmount(item.Invoice.TotalCenterShare),
			filepath.Base(item.FilePath),
		))
	}

	return sb.String()
}
