// Package listing narrows and windows an already-fetched invoice slice for
// display. One shared implementation serves every role screen.
package listing

import (
	"strconv"
	"strings"

	"github.com/kedarnag/invoiceflow/internal/invoice"
)

// Filter narrows invoices client-side. All criteria compose with AND.
type Filter struct {
	// Search matches case-insensitively against the invoice number and the
	// center name; either field matching keeps the invoice.
	Search string

	// Center is an exact-match center name; empty means no center filter.
	Center string

	// Cycle is the raw dropdown value. It is parsed numerically; an empty or
	// unparsable value disables the cycle filter.
	Cycle string
}

func (f Filter) IsZero() bool {
	return f.Search == "" && f.Center == "" && f.Cycle == ""
}

// Apply returns the invoices matching every active criterion, preserving
// input order. The input slice is never mutated.
func (f Filter) Apply(invs []*invoice.Invoice) []*invoice.Invoice {
	if f.IsZero() {
		return invs
	}

	search := strings.ToLower(strings.TrimSpace(f.Search))

	cycle, cycleActive := parseCycle(f.Cycle)

	var out []*invoice.Invoice

	for _, inv := range invs {
		if search != "" && !matchesSearch(inv, search) {
			continue
		}

		if f.Center != "" && inv.CenterName != f.Center {
			continue
		}

		if cycleActive && inv.CycleNumber != cycle {
			continue
		}

		out = append(out, inv)
	}

	return out
}

func matchesSearch(inv *invoice.Invoice, search string) bool {
	return strings.Contains(strings.ToLower(inv.Number), search) ||
		strings.Contains(strings.ToLower(inv.CenterName), search)
}

func parseCycle(raw string) (int, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, false
	}

	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, false
	}

	return n, true
}

// Centers returns the distinct center names present in the slice, in first
// encounter order, for populating the filter dropdown.
func Centers(invs []*invoice.Invoice) []string {
	seen := make(map[string]struct{}, len(invs))

	var out []string

	for _, inv := range invs {
		if inv.CenterName == "" {
			continue
		}

		if _, ok := seen[inv.CenterName]; ok {
			continue
		}

		seen[inv.CenterName] = struct{}{}
		out = append(out, inv.CenterName)
	}

	return out
}

// Paginator windows a filtered slice with a fixed page size. Pages are
// 1-based.
type Paginator struct {
	Page int
	Size int
}

func NewPaginator(size int) Paginator {
	return Paginator{Page: 1, Size: size}
}

// TotalPages is ceil(n / Size).
func (p Paginator) TotalPages(n int) int {
	if p.Size <= 0 || n <= 0 {
		return 0
	}

	return (n + p.Size - 1) / p.Size
}

// Reset returns to the first page. Callers invoke it whenever the filtered
// set or the active tab changes.
func (p *Paginator) Reset() {
	p.Page = 1
}

// Clamp pulls an out-of-range page back to the last valid one, e.g. after
// the underlying data shrinks.
func (p *Paginator) Clamp(n int) {
	total := p.TotalPages(n)
	if total == 0 {
		p.Page = 1
		return
	}

	if p.Page > total {
		p.Page = total
	}

	if p.Page < 1 {
		p.Page = 1
	}
}

// Slice returns the current page's window of invs.
func (p Paginator) Slice(invs []*invoice.Invoice) []*invoice.Invoice {
	if p.Size <= 0 {
		return invs
	}

	start := (p.Page - 1) * p.Size
	if start < 0 || start >= len(invs) {
		return nil
	}

	end := min(start+p.Size, len(invs))

	return invs[start:end]
}
