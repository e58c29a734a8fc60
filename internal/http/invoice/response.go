package invoice

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/kedarnag/invoiceflow/internal/invoice"
)

type invoiceResponse struct {
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
	CreatedAt        time.Time       `json:"created_at"`
	UpdatedAt        *time.Time      `json:"updated_at,omitempty"`
}

type itemResponse struct {
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

type auditResponse struct {
	ID         uuid.UUID      `json:"id"`
	InvoiceID  uuid.UUID      `json:"invoice_id"`
	FromStatus invoice.Status `json:"from_status"`
	ToStatus   invoice.Status `json:"to_status"`
	Role       invoice.Role   `json:"role"`
	Note       string         `json:"note"`
	CreatedAt  time.Time      `json:"created_at"`
}

func toResponse(inv *invoice.Invoice) invoiceResponse {
	return invoiceResponse{
		ID:               inv.ID,
		Number:           inv.Number,
		Status:           inv.Status,
		InvoiceDate:      inv.InvoiceDate,
		PeriodStart:      inv.PeriodStart,
		PeriodEnd:        inv.PeriodEnd,
		CycleNumber:      inv.CycleNumber,
		TotalNetAmount:   inv.TotalNetAmount,
		TotalCenterShare: inv.TotalCenterShare,
		CenterID:         inv.CenterID,
		CenterName:       inv.CenterName,
		CreatedAt:        inv.CreatedAt,
		UpdatedAt:        inv.UpdatedAt,
	}
}

func toResponseList(invs []*invoice.Invoice) []invoiceResponse {
	resp := make([]invoiceResponse, len(invs))
	for i, inv := range invs {
		resp[i] = toResponse(inv)
	}

	return resp
}

func toItemResponse(it *invoice.Item) itemResponse {
	return itemResponse{
		ID:                 it.ID,
		InvoiceID:          it.InvoiceID,
		StudentName:        it.StudentName,
		RegistrationNumber: it.RegistrationNumber,
		CourseName:         it.CourseName,
		TransactionDate:    it.TransactionDate,
		FeeTerm:            it.FeeTerm,
		FeePaid:            it.FeePaid,
		NetAmount:          it.NetAmount,
		CenterShare:        it.CenterShare,
		EliteDiscount:      it.EliteDiscount,
	}
}

func toItemResponseList(items []*invoice.Item) []itemResponse {
	resp := make([]itemResponse, len(items))
	for i, it := range items {
		resp[i] = toItemResponse(it)
	}

	return resp
}

func toAuditResponseList(entries []*invoice.AuditEntry) []auditResponse {
	resp := make([]auditResponse, len(entries))
	for i, e := range entries {
		resp[i] = auditResponse{
			ID:         e.ID,
			InvoiceID:  e.InvoiceID,
			FromStatus: e.FromStatus,
			ToStatus:   e.ToStatus,
			Role:       e.Role,
			Note:       e.Note,
			CreatedAt:  e.CreatedAt,
		}
	}

	return resp
}
