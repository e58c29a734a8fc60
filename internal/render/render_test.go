package render_test

import (
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kedarnag/invoiceflow/internal/invoice"
	"github.com/kedarnag/invoiceflow/internal/render"
)

func sampleInvoice() *invoice.Invoice {
	return &invoice.Invoice{
		Number:           "INV-001",
		Status:           invoice.StatusPending,
		CenterName:       "Indiranagar",
		InvoiceDate:      time.Date(2024, 7, 5, 0, 0, 0, 0, time.UTC),
		PeriodStart:      time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC),
		PeriodEnd:        time.Date(2024, 6, 30, 0, 0, 0, 0, time.UTC),
		CycleNumber:      2,
		TotalNetAmount:   decimal.RequireFromString("2000.00"),
		TotalCenterShare: decimal.RequireFromString("1500.00"),
	}
}

func TestDocument_NilInvoice(t *testing.T) {
	doc, err := render.Document(nil, nil, "Indiranagar")
	require.NoError(t, err)
	assert.Empty(t, doc)
}

func TestDocument_NoItems(t *testing.T) {
	doc, err := render.Document(sampleInvoice(), nil, "")
	require.NoError(t, err)

	assert.Contains(t, doc, "No Settlement Data Available")
	assert.NotContains(t, doc, "Total Center Share")
}

func TestDocument_RowsAndTotals(t *testing.T) {
	items := []*invoice.Item{
		{
			StudentName:        "Asha Rao",
			RegistrationNumber: "REG-100",
			CourseName:         "German A1",
			TransactionDate:    time.Date(2024, 6, 12, 0, 0, 0, 0, time.UTC),
			FeeTerm:            "Term 1",
			FeePaid:            decimal.RequireFromString("500.00"),
			NetAmount:          decimal.RequireFromString("450.00"),
			CenterShare:        decimal.RequireFromString("300.00"),
		},
		{
			StudentName: "Vikram Iyer",
			CourseName:  "French B2",
			FeePaid:     decimal.RequireFromString("700.00"),
			NetAmount:   decimal.RequireFromString("650.00"),
			CenterShare: decimal.RequireFromString("400.00"),
		},
	}

	doc, err := render.Document(sampleInvoice(), items, "Indiranagar")
	require.NoError(t, err)

	// Exactly n line rows plus one totals row: header row + 4 meta rows +
	// n item rows + 1 totals row.
	assert.Equal(t, 1+4+len(items)+1, strings.Count(doc, "<tr"))
	assert.Contains(t, doc, "Total Center Share")
	assert.NotContains(t, doc, "No Settlement Data Available")

	assert.Contains(t, doc, "Asha Rao")
	assert.Contains(t, doc, "12/06/2024")

	// Totals come from the invoice aggregate, never recomputed from rows
	// (300 + 400 would be 700.00).
	assert.Contains(t, doc, "INR 1,500.00")
}

func TestDocument_PlaceholdersForMissingFields(t *testing.T) {
	items := []*invoice.Item{{
		// Everything empty or zero.
	}}

	doc, err := render.Document(sampleInvoice(), items, "")
	require.NoError(t, err)

	assert.Contains(t, doc, "N/A")
	assert.Contains(t, doc, "—")
	assert.Contains(t, doc, "INR 0.00")
}

func TestDocument_PrintScopedToSheet(t *testing.T) {
	doc, err := render.Document(sampleInvoice(), nil, "")
	require.NoError(t, err)

	assert.Contains(t, doc, `id="invoice-sheet"`)
	assert.Contains(t, doc, "@media print")
	assert.Contains(t, doc, "size: A4")
}

func TestFormatDate(t *testing.T) {
	assert.Equal(t, "05/07/2024", render.FormatDate(time.Date(2024, 7, 5, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, "N/A", render.FormatDate(time.Time{}))
}

func TestFormatAmount(t *testing.T) {
	assert.Equal(t, "INR 1,500.00", render.FormatAmount(decimal.RequireFromString("1500")))
	// Indian digit grouping.
	assert.Equal(t, "INR 1,50,000.00", render.FormatAmount(decimal.RequireFromString("150000")))
	assert.Equal(t, "INR 0.00", render.FormatAmount(decimal.Zero))
}
