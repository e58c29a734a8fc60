package invoice_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	invHandler "github.com/kedarnag/invoiceflow/internal/http/invoice"
	"github.com/kedarnag/invoiceflow/internal/invoice"
)

// memRepo is a stateful in-memory Repository so the tests can observe an
// invoice actually moving along the approval chain.
type memRepo struct {
	invoices map[uuid.UUID]*invoice.Invoice
	items    map[uuid.UUID][]*invoice.Item
	audit    []*invoice.AuditEntry
}

func newMemRepo() *memRepo {
	return &memRepo{
		invoices: make(map[uuid.UUID]*invoice.Invoice),
		items:    make(map[uuid.UUID][]*invoice.Item),
	}
}

func (r *memRepo) GetInvoice(_ context.Context, id uuid.UUID) (*invoice.Invoice, error) {
	inv, ok := r.invoices[id]
	if !ok {
		return nil, invoice.ErrNotFound
	}

	return inv, nil
}

func (r *memRepo) ListInvoicesByStatus(_ context.Context, statuses []invoice.Status) ([]*invoice.Invoice, error) {
	var out []*invoice.Invoice

	for _, inv := range r.invoices {
		for _, st := range statuses {
			if inv.Status == st {
				out = append(out, inv)
				break
			}
		}
	}

	return out, nil
}

func (r *memRepo) ListItems(_ context.Context, invoiceID uuid.UUID) ([]*invoice.Item, error) {
	return r.items[invoiceID], nil
}

func (r *memRepo) AdvanceStatus(_ context.Context, id uuid.UUID, from, to invoice.Status, entry *invoice.AuditEntry) (bool, error) {
	inv, ok := r.invoices[id]
	if !ok || inv.Status != from {
		return false, nil
	}

	inv.Status = to
	entry.ID = uuid.New()
	entry.CreatedAt = time.Now()
	r.audit = append(r.audit, entry)

	return true, nil
}

func (r *memRepo) ListAudit(_ context.Context, invoiceID uuid.UUID) ([]*invoice.AuditEntry, error) {
	var out []*invoice.AuditEntry

	for _, e := range r.audit {
		if e.InvoiceID == invoiceID {
			out = append(out, e)
		}
	}

	return out, nil
}

func newServer(repo invoice.Repository) *httptest.Server {
	h := invHandler.NewHandler(invoice.NewService(repo))

	r := chi.NewRouter()
	r.Route("/api/v1/invoices", h.Routes)

	return httptest.NewServer(r)
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   string          `json:"error"`
}

func getEnvelope(t *testing.T, url string) envelope {
	t.Helper()

	resp, err := http.Get(url)
	require.NoError(t, err)
	defer resp.Body.Close()

	var env envelope
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&env))

	return env
}

func seedInvoice(repo *memRepo, number string, status invoice.Status, share string) *invoice.Invoice {
	inv := &invoice.Invoice{
		ID:               uuid.New(),
		Number:           number,
		Status:           status,
		InvoiceDate:      time.Date(2024, 7, 5, 0, 0, 0, 0, time.UTC),
		CycleNumber:      1,
		CenterName:       "Indiranagar",
		TotalCenterShare: decimal.RequireFromString(share),
	}
	repo.invoices[inv.ID] = inv

	return inv
}

func TestHandler_ApprovalChain(t *testing.T) {
	repo := newMemRepo()
	inv := seedInvoice(repo, "INV-001", invoice.StatusPending, "1500.00")

	srv := newServer(repo)
	defer srv.Close()

	listNumbers := func(path, role string) []string {
		env := getEnvelope(t, srv.URL+path+"?role="+role)
		require.True(t, env.Success)

		var list []struct {
			Number           string          `json:"invoice_number"`
			TotalCenterShare decimal.Decimal `json:"total_center_share"`
		}
		require.NoError(t, json.Unmarshal(env.Data, &list))

		numbers := make([]string, len(list))
		for i, inv := range list {
			numbers[i] = inv.Number
		}

		return numbers
	}

	// The invoice starts in the state admin's pending queue and nowhere else.
	assert.Equal(t, []string{"INV-001"}, listNumbers("/api/v1/invoices/pending", "state_admin"))
	assert.Empty(t, listNumbers("/api/v1/invoices/pending", "finance_admin"))

	// State admin verifies.
	body, _ := json.Marshal(map[string]string{"role": "state_admin"})
	resp, err := http.Post(srv.URL+"/api/v1/invoices/"+inv.ID.String()+"/transition",
		"application/json", bytes.NewReader(body))
	require.NoError(t, err)

	var env envelope
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&env))
	resp.Body.Close()
	require.True(t, env.Success)

	var updated struct {
		Status           invoice.Status  `json:"status"`
		TotalCenterShare decimal.Decimal `json:"total_center_share"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &updated))
	assert.Equal(t, invoice.StatusVerified, updated.Status)
	assert.Equal(t, "1500", updated.TotalCenterShare.String())

	// The invoice left the state admin's queue and reached the finance
	// admin's, carrying the same center share.
	assert.Empty(t, listNumbers("/api/v1/invoices/pending", "state_admin"))
	assert.Equal(t, []string{"INV-001"}, listNumbers("/api/v1/invoices/pending", "finance_admin"))
	assert.Equal(t, []string{"INV-001"}, listNumbers("/api/v1/invoices/approved", "state_admin"))

	// A second verify attempt is rejected; the status does not regress.
	resp, err = http.Post(srv.URL+"/api/v1/invoices/"+inv.ID.String()+"/transition",
		"application/json", bytes.NewReader(body))
	require.NoError(t, err)
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&env))
	resp.Body.Close()

	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.False(t, env.Success)
	assert.Contains(t, env.Error, "MF Verified")

	// The audit trail recorded exactly the one successful hop.
	env = getEnvelope(t, srv.URL+"/api/v1/invoices/"+inv.ID.String()+"/audit")
	require.True(t, env.Success)

	var audit []struct {
		Note string `json:"note"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &audit))
	require.Len(t, audit, 1)
	assert.Equal(t, "Verified by State Admin", audit[0].Note)
}

func TestHandler_PendingTabStatusPurity(t *testing.T) {
	repo := newMemRepo()
	seedInvoice(repo, "INV-001", invoice.StatusPending, "100")
	seedInvoice(repo, "INV-002", invoice.StatusVerified, "200")
	seedInvoice(repo, "INV-003", invoice.StatusPaid, "300")

	srv := newServer(repo)
	defer srv.Close()

	env := getEnvelope(t, srv.URL+"/api/v1/invoices/pending?role=finance_admin")
	require.True(t, env.Success)

	var list []struct {
		Number string         `json:"invoice_number"`
		Status invoice.Status `json:"status"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &list))
	require.Len(t, list, 1)
	assert.Equal(t, "INV-002", list[0].Number)
	assert.Equal(t, invoice.StatusVerified, list[0].Status)
}

func TestHandler_UnknownRole(t *testing.T) {
	srv := newServer(newMemRepo())
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/api/v1/invoices/pending?role=tutor")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestHandler_Print(t *testing.T) {
	repo := newMemRepo()
	inv := seedInvoice(repo, "INV-007", invoice.StatusPaid, "2500.00")
	repo.items[inv.ID] = []*invoice.Item{
		{ID: uuid.New(), InvoiceID: inv.ID, StudentName: "Asha Rao", CenterShare: decimal.RequireFromString("2500")},
	}

	srv := newServer(repo)
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/api/v1/invoices/" + inv.ID.String() + "/print")
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Type"), "text/html")

	var buf bytes.Buffer
	_, err = buf.ReadFrom(resp.Body)
	require.NoError(t, err)

	doc := buf.String()
	assert.Contains(t, doc, "INV-007")
	assert.Contains(t, doc, "Asha Rao")
	assert.Contains(t, doc, "INR 2,500.00")
}

func TestHandler_Items_UnknownIDIsEmptyList(t *testing.T) {
	srv := newServer(newMemRepo())
	defer srv.Close()

	env := getEnvelope(t, fmt.Sprintf("%s/api/v1/invoices/%s/items", srv.URL, uuid.New()))
	assert.True(t, env.Success)
}
