// Package client is the role console's HTTP client for the invoice API.
// Every endpoint answers a {success, data} envelope; a success=false body or
// a transport error is treated uniformly as failure.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/kedarnag/invoiceflow/internal/invoice"
)

type Client struct {
	baseURL string
	token   string
	http    *http.Client
}

func New(baseURL, token string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		http:    &http.Client{Timeout: 30 * time.Second},
	}
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data,omitempty"`
	Error   string          `json:"error,omitempty"`
}

type invoiceDTO struct {
	ID               uuid.UUID       `json:"id"`
	Number           string          `json:"invoice_number"`
	Status           invoice.Status  `json:"status"`
	InvoiceDate      time.Time       `json:"invoice_date"`
	PeriodStart      time.Time       `json:"period_start"`
	PeriodEnd        time.Time       `json:"period_end"`
	CycleNumber      int             `json:"cycle_number"`
	TotalNetAmount   decimal.Decimal `json:"total_net_amount"`
	TotalCenterShare decimal.Decimal `json:"total_center_share"`
	CenterID         uuid.UUID       `json:"center_id"`
	CenterName       string          `json:"center_name"`
}

type itemDTO struct {
	ID                 uuid.UUID        `json:"id"`
	InvoiceID          uuid.UUID        `json:"invoice_id"`
	StudentName        string           `json:"student_name"`
	RegistrationNumber string           `json:"registration_number"`
	CourseName         string           `json:"course_name"`
	TransactionDate    time.Time        `json:"transaction_date"`
	FeeTerm            string           `json:"fee_term"`
	FeePaid            decimal.Decimal  `json:"fee_paid"`
	NetAmount          decimal.Decimal  `json:"net_amount"`
	CenterShare        decimal.Decimal  `json:"center_share"`
	EliteDiscount      *decimal.Decimal `json:"elite_discount,omitempty"`
}

// Profile is the signed-in admin's display identity.
type Profile struct {
	FullName       string `json:"full_name"`
	Role           string `json:"role"`
	ProfilePicture string `json:"profile_picture"`
}

func toInvoice(d invoiceDTO) *invoice.Invoice {
	return &invoice.Invoice{
		ID:               d.ID,
		Number:           d.Number,
		Status:           d.Status,
		InvoiceDate:      d.InvoiceDate,
		PeriodStart:      d.PeriodStart,
		PeriodEnd:        d.PeriodEnd,
		CycleNumber:      d.CycleNumber,
		TotalNetAmount:   d.TotalNetAmount,
		TotalCenterShare: d.TotalCenterShare,
		CenterID:         d.CenterID,
		CenterName:       d.CenterName,
	}
}

func toItem(d itemDTO) *invoice.Item {
	return &invoice.Item{
		ID:                 d.ID,
		InvoiceID:          d.InvoiceID,
		StudentName:        d.StudentName,
		RegistrationNumber: d.RegistrationNumber,
		CourseName:         d.CourseName,
		TransactionDate:    d.TransactionDate,
		FeeTerm:            d.FeeTerm,
		FeePaid:            d.FeePaid,
		NetAmount:          d.NetAmount,
		CenterShare:        d.CenterShare,
		EliteDiscount:      d.EliteDiscount,
	}
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reqBody *bytes.Buffer

	if body != nil {
		reqBody = &bytes.Buffer{}
		if err := json.NewEncoder(reqBody).Encode(body); err != nil {
			return fmt.Errorf("encoding request: %w", err)
		}
	}

	var req *http.Request

	var err error

	if reqBody != nil {
		req, err = http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	} else {
		req, err = http.NewRequestWithContext(ctx, method, c.baseURL+path, nil)
	}

	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("executing request: %w", err)
	}
	defer resp.Body.Close()

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return fmt.Errorf("decoding response (status %d): %w", resp.StatusCode, err)
	}

	if !env.Success {
		if env.Error != "" {
			return fmt.Errorf("server error: %s", env.Error)
		}

		return fmt.Errorf("request failed with status %d", resp.StatusCode)
	}

	if out == nil {
		return nil
	}

	if err := json.Unmarshal(env.Data, out); err != nil {
		return fmt.Errorf("decoding data: %w", err)
	}

	return nil
}

func (c *Client) listInvoices(ctx context.Context, path string, role invoice.Role) ([]*invoice.Invoice, error) {
	var dtos []invoiceDTO
	if err := c.do(ctx, http.MethodGet, path+"?role="+string(role), nil, &dtos); err != nil {
		return nil, err
	}

	invs := make([]*invoice.Invoice, len(dtos))
	for i, d := range dtos {
		invs[i] = toInvoice(d)
	}

	return invs, nil
}

// ListPending fetches the invoices awaiting the role's action.
func (c *Client) ListPending(ctx context.Context, role invoice.Role) ([]*invoice.Invoice, error) {
	return c.listInvoices(ctx, "/api/v1/invoices/pending", role)
}

// ListApproved fetches the invoices the role has already acted on.
func (c *Client) ListApproved(ctx context.Context, role invoice.Role) ([]*invoice.Invoice, error) {
	return c.listInvoices(ctx, "/api/v1/invoices/approved", role)
}

// Items fetches an invoice's line items.
func (c *Client) Items(ctx context.Context, invoiceID uuid.UUID) ([]*invoice.Item, error) {
	var dtos []itemDTO
	if err := c.do(ctx, http.MethodGet, "/api/v1/invoices/"+invoiceID.String()+"/items", nil, &dtos); err != nil {
		return nil, err
	}

	items := make([]*invoice.Item, len(dtos))
	for i, d := range dtos {
		items[i] = toItem(d)
	}

	return items, nil
}

type transitionRequest struct {
	Role invoice.Role `json:"role"`
	Note string       `json:"note,omitempty"`
}

// Transition advances the invoice one approval step on behalf of role.
func (c *Client) Transition(ctx context.Context, role invoice.Role, invoiceID uuid.UUID, note string) (*invoice.Invoice, error) {
	var dto invoiceDTO

	err := c.do(ctx, http.MethodPost, "/api/v1/invoices/"+invoiceID.String()+"/transition",
		transitionRequest{Role: role, Note: note}, &dto)
	if err != nil {
		return nil, err
	}

	return toInvoice(dto), nil
}

// Profile fetches the signed-in admin's display identity.
func (c *Client) Profile(ctx context.Context) (*Profile, error) {
	var p Profile
	if err := c.do(ctx, http.MethodGet, "/api/v1/profile", nil, &p); err != nil {
		return nil, err
	}

	return &p, nil
}
