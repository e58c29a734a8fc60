package invoice

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
)

var (
	// ErrNotFound is returned when an invoice does not exist.
	ErrNotFound = errors.New("invoice not found")

	// ErrInvalidTransition is returned when an invoice is not in the status
	// the acting role is gated on, or when the status changed underneath the
	// caller between listing and acting.
	ErrInvalidTransition = errors.New("invalid status transition")

	// ErrUnknownRole is returned for a role outside the approval chain.
	ErrUnknownRole = errors.New("unknown role")
)

//go:generate mockgen -source=service.go -destination=repository_mock.go -package=invoice
type Repository interface {
	GetInvoice(ctx context.Context, id uuid.UUID) (*Invoice, error)
	ListInvoicesByStatus(ctx context.Context, statuses []Status) ([]*Invoice, error)
	ListItems(ctx context.Context, invoiceID uuid.UUID) ([]*Item, error)

	// AdvanceStatus updates the invoice from exactly `from` to `to` and
	// appends the audit entry in the same database transaction. It reports
	// whether a row was actually updated.
	AdvanceStatus(ctx context.Context, id uuid.UUID, from, to Status, entry *AuditEntry) (bool, error)

	ListAudit(ctx context.Context, invoiceID uuid.UUID) ([]*AuditEntry, error)
}

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// ListPending returns the invoices awaiting the given role's action.
func (s *Service) ListPending(ctx context.Context, role Role) ([]*Invoice, error) {
	pending, ok := PendingStatusFor(role)
	if !ok {
		return nil, ErrUnknownRole
	}

	return s.repo.ListInvoicesByStatus(ctx, []Status{pending})
}

// ListApproved returns the invoices the given role has already acted on.
func (s *Service) ListApproved(ctx context.Context, role Role) ([]*Invoice, error) {
	statuses := ApprovedStatusesFor(role)
	if statuses == nil {
		return nil, ErrUnknownRole
	}

	return s.repo.ListInvoicesByStatus(ctx, statuses)
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Invoice, error) {
	return s.repo.GetInvoice(ctx, id)
}

// Items returns the line items of an invoice, oldest transaction first.
func (s *Service) Items(ctx context.Context, invoiceID uuid.UUID) ([]*Item, error) {
	return s.repo.ListItems(ctx, invoiceID)
}

func (s *Service) Audit(ctx context.Context, invoiceID uuid.UUID) ([]*AuditEntry, error) {
	return s.repo.ListAudit(ctx, invoiceID)
}

// Transition advances an invoice one step along the approval chain on behalf
// of role. The invoice must currently be in the status that role acts on;
// anything else fails with ErrInvalidTransition and leaves the row untouched.
// An empty note falls back to the role's default audit note.
func (s *Service) Transition(ctx context.Context, role Role, invoiceID uuid.UUID, note string) (*Invoice, error) {
	from, ok := PendingStatusFor(role)
	if !ok {
		return nil, ErrUnknownRole
	}

	to, _ := NextStatusFor(role)

	if note == "" {
		note = DefaultNoteFor(role)
	}

	entry := &AuditEntry{
		InvoiceID:  invoiceID,
		FromStatus: from,
		ToStatus:   to,
		Role:       role,
		Note:       note,
	}

	updated, err := s.repo.AdvanceStatus(ctx, invoiceID, from, to, entry)
	if err != nil {
		return nil, fmt.Errorf("advancing status: %w", err)
	}

	if !updated {
		// Either the invoice does not exist or it is not in `from` anymore.
		inv, getErr := s.repo.GetInvoice(ctx, invoiceID)
		if getErr != nil {
			return nil, getErr
		}

		return nil, fmt.Errorf("%w: invoice %s is %q, expected %q",
			ErrInvalidTransition, inv.Number, inv.Status, from)
	}

	return s.repo.GetInvoice(ctx, invoiceID)
}
