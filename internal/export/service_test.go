package export_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/kedarnag/invoiceflow/internal/export"
	"github.com/kedarnag/invoiceflow/internal/invoice"
)

func TestService_Export(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := invoice.NewMockRepository(ctrl)
	svc := export.NewService(invoice.NewService(repo))

	paidCycle2 := &invoice.Invoice{
		ID:               uuid.New(),
		Number:           "INV-001",
		Status:           invoice.StatusPaid,
		InvoiceDate:      time.Date(2024, 7, 5, 0, 0, 0, 0, time.UTC),
		CycleNumber:      2,
		CenterName:       "Indiranagar",
		TotalCenterShare: decimal.RequireFromString("1500.00"),
	}
	paidCycle1 := &invoice.Invoice{
		ID:          uuid.New(),
		Number:      "INV-002",
		Status:      invoice.StatusPaid,
		InvoiceDate: time.Date(2024, 7, 6, 0, 0, 0, 0, time.UTC),
		CycleNumber: 1,
		CenterName:  "Koramangala",
	}

	repo.EXPECT().
		ListInvoicesByStatus(gomock.Any(), []invoice.Status{invoice.StatusPaid}).
		Return([]*invoice.Invoice{paidCycle2, paidCycle1}, nil)
	repo.EXPECT().
		ListItems(gomock.Any(), paidCycle2.ID).
		Return([]*invoice.Item{{StudentName: "Asha Rao", CenterShare: decimal.RequireFromString("300")}}, nil)

	dir := t.TempDir()

	items, err := svc.Export(context.Background(), 2, dir)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "INV-001", items[0].Invoice.Number)
	assert.Equal(t, "20240705_INV-001.html", filepath.Base(items[0].FilePath))

	doc, err := os.ReadFile(items[0].FilePath)
	require.NoError(t, err)
	assert.Contains(t, string(doc), "Asha Rao")
	assert.Contains(t, string(doc), "INR 1,500.00")
}

func TestService_Export_NoMatches(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := invoice.NewMockRepository(ctrl)
	svc := export.NewService(invoice.NewService(repo))

	repo.EXPECT().
		ListInvoicesByStatus(gomock.Any(), []invoice.Status{invoice.StatusPaid}).
		Return(nil, nil)

	items, err := svc.Export(context.Background(), 3, t.TempDir())
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestService_Summary(t *testing.T) {
	svc := export.NewService(nil)

	items := []export.Item{{
		Invoice: &invoice.Invoice{
			Number:           "INV-001",
			CenterName:       "Indiranagar",
			TotalCenterShare: decimal.RequireFromString("1500.00"),
		},
		FilePath: "/tmp/x/20240705_INV-001.html",
	}}

	got := svc.Summary(items)
	assert.Equal(t, "* INV-001 | Indiranagar | INR 1,500.00 | 20240705_INV-001.html\n", got)
}
