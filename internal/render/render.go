// Package render lays out one invoice as a print-ready HTML document. The
// renderer is stateless: it receives an already-resolved invoice, its items
// and the center name, and never fetches anything itself.
package render

import (
	"bytes"
	"fmt"
	"html/template"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/kedarnag/invoiceflow/internal/invoice"
)

const (
	placeholderText   = "N/A"
	placeholderDash   = "—"
	placeholderAmount = "INR 0.00"
)

// inr formats amounts with Indian digit grouping (1,50,000.00).
var inr = message.NewPrinter(language.MustParse("en-IN"))

// FormatAmount renders a currency value as "INR <amount>" with two decimal
// places and locale thousands separators.
func FormatAmount(d decimal.Decimal) string {
	return inr.Sprintf("INR %.2f", d.InexactFloat64())
}

// FormatDate renders a date as DD/MM/YYYY; the zero time degrades to N/A.
func FormatDate(t time.Time) string {
	if t.IsZero() {
		return placeholderText
	}

	return t.Format("02/01/2006")
}

func orPlaceholder(s string) string {
	if s == "" {
		return placeholderText
	}

	return s
}

// documentView is the fully-formatted input handed to the template. All
// degradation to placeholders happens here so the template stays dumb.
type documentView struct {
	Number      string
	Status      string
	CenterName  string
	InvoiceDate string
	Period      string
	CycleNumber int
	Rows        []rowView
	HasItems    bool
	TotalShare  string
	NetAmount   string
}

type rowView struct {
	Index         int
	StudentName   string
	RegNumber     string
	CourseName    string
	TxnDate       string
	FeeTerm       string
	FeePaid       string
	NetAmount     string
	CenterShare   string
	EliteDiscount string
}

// Document renders the invoice sheet. A nil invoice renders nothing.
// Malformed or missing item fields degrade to placeholders; the renderer
// never errors on item content.
//
// The totals row is sourced from the invoice's TotalCenterShare aggregate,
// not recomputed from the rows. The backend is authoritative for the total.
func Document(inv *invoice.Invoice, items []*invoice.Item, centerName string) (string, error) {
	if inv == nil {
		return "", nil
	}

	if centerName == "" {
		centerName = inv.CenterName
	}

	view := documentView{
		Number:      orPlaceholder(inv.Number),
		Status:      orPlaceholder(string(inv.Status)),
		CenterName:  orPlaceholder(centerName),
		InvoiceDate: FormatDate(inv.InvoiceDate),
		Period:      fmt.Sprintf("%s – %s", FormatDate(inv.PeriodStart), FormatDate(inv.PeriodEnd)),
		CycleNumber: inv.CycleNumber,
		HasItems:    len(items) > 0,
		TotalShare:  FormatAmount(inv.TotalCenterShare),
		NetAmount:   FormatAmount(inv.TotalNetAmount),
	}

	for i, it := range items {
		row := rowView{
			Index:         i + 1,
			StudentName:   orPlaceholder(it.StudentName),
			RegNumber:     orPlaceholder(it.RegistrationNumber),
			CourseName:    orPlaceholder(it.CourseName),
			TxnDate:       FormatDate(it.TransactionDate),
			FeeTerm:       orPlaceholder(it.FeeTerm),
			FeePaid:       FormatAmount(it.FeePaid),
			NetAmount:     FormatAmount(it.NetAmount),
			CenterShare:   FormatAmount(it.CenterShare),
			EliteDiscount: placeholderDash,
		}

		if it.EliteDiscount != nil {
			row.EliteDiscount = FormatAmount(*it.EliteDiscount)
		}

		view.Rows = append(view.Rows, row)
	}

	var buf bytes.Buffer
	if err := documentTmpl.Execute(&buf, view); err != nil {
		return "", fmt.Errorf("executing invoice template: %w", err)
	}

	return buf.String(), nil
}

var documentTmpl = template.Must(template.New("invoice").Parse(documentHTML))

// The print stylesheet is scoped to the #invoice-sheet container: the sheet
// is sized to A4 and everything marked .no-print disappears, so the browser
// print dialog only ever sees the one document.
const documentHTML = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>Invoice {{.Number}}</title>
<style>
  body { font-family: Arial, sans-serif; color: #222; margin: 0; }
  #invoice-sheet { width: 210mm; min-height: 297mm; margin: 0 auto; padding: 16mm; box-sizing: border-box; }
  .header { display: flex; justify-content: space-between; border-bottom: 2px solid #222; padding-bottom: 8px; }
  .header h1 { margin: 0; font-size: 20px; }
  .meta { margin: 12px 0; font-size: 13px; }
  .meta td { padding: 2px 12px 2px 0; }
  .parties { display: flex; justify-content: space-between; margin: 16px 0; font-size: 13px; }
  table.items { width: 100%; border-collapse: collapse; font-size: 12px; }
  table.items th, table.items td { border: 1px solid #888; padding: 4px 6px; text-align: left; }
  table.items th { background: #f0f0f0; }
  td.amount { text-align: right; }
  tr.totals td { font-weight: bold; border-top: 2px solid #222; }
  td.no-data { text-align: center; font-style: italic; padding: 16px; }
  .signatures { display: flex; justify-content: space-between; margin-top: 48px; font-size: 13px; }
  .signatures .line { border-top: 1px solid #222; padding-top: 4px; width: 30%; text-align: center; }
  @media print {
    .no-print { display: none !important; }
    #invoice-sheet { width: 210mm; margin: 0; }
    @page { size: A4; margin: 0; }
  }
</style>
</head>
<body>
<div id="invoice-sheet">
  <div class="header">
    <h1>Center Settlement Invoice</h1>
    <div>
      <strong>{{.Number}}</strong><br>
      Status: {{.Status}}
    </div>
  </div>
  <table class="meta">
    <tr><td>Center</td><td>{{.CenterName}}</td></tr>
    <tr><td>Invoice Date</td><td>{{.InvoiceDate}}</td></tr>
    <tr><td>Billing Period</td><td>{{.Period}}</td></tr>
    <tr><td>Cycle</td><td>{{.CycleNumber}}</td></tr>
  </table>
  <table class="items">
    <thead>
      <tr>
        <th>#</th>
        <th>Student</th>
        <th>Reg. No.</th>
        <th>Course</th>
        <th>Txn Date</th>
        <th>Fee Term</th>
        <th>Fee Paid</th>
        <th>Elite Discount</th>
        <th>Net Amount</th>
        <th>Center Share</th>
      </tr>
    </thead>
    <tbody>
{{- if .HasItems}}
{{- range .Rows}}
      <tr>
        <td>{{.Index}}</td>
        <td>{{.StudentName}}</td>
        <td>{{.RegNumber}}</td>
        <td>{{.CourseName}}</td>
        <td>{{.TxnDate}}</td>
        <td>{{.FeeTerm}}</td>
        <td class="amount">{{.FeePaid}}</td>
        <td class="amount">{{.EliteDiscount}}</td>
        <td class="amount">{{.NetAmount}}</td>
        <td class="amount">{{.CenterShare}}</td>
      </tr>
{{- end}}
      <tr class="totals">
        <td colspan="9">Total Center Share</td>
        <td class="amount">{{.TotalShare}}</td>
      </tr>
{{- else}}
      <tr><td class="no-data" colspan="10">No Settlement Data Available</td></tr>
{{- end}}
    </tbody>
  </table>
  <div class="signatures">
    <div class="line">Center Head</div>
    <div class="line">State Admin</div>
    <div class="line">Finance Admin</div>
  </div>
</div>
</body>
</html>
`
