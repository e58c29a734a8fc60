package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/kedarnag/invoiceflow/internal/invoice"
)

type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

// scanner is satisfied by both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

const selectInvoiceColumns = `
	i.id, i.invoice_number, i.status, i.invoice_date, i.period_start, i.period_end,
	i.cycle_number, i.total_net_amount, i.total_center_share,
	i.center_id, c.center_name, i.created_at, i.updated_at
`

// scanInvoice reads an invoice row in selectInvoiceColumns order. The center
// join is a LEFT JOIN, so center_name may be NULL for orphaned rows; it
// degrades to an empty name rather than failing the scan.
func scanInvoice(s scanner) (*invoice.Invoice, error) {
	var inv invoice.Invoice

	var statusStr string

	var centerName sql.NullString

	if err := s.Scan(
		&inv.ID, &inv.Number, &statusStr, &inv.InvoiceDate, &inv.PeriodStart, &inv.PeriodEnd,
		&inv.CycleNumber, &inv.TotalNetAmount, &inv.TotalCenterShare,
		&inv.CenterID, &centerName, &inv.CreatedAt, &inv.UpdatedAt,
	); err != nil {
		return nil, err
	}

	inv.Status = invoice.Status(statusStr)
	inv.CenterName = centerName.String

	return &inv, nil
}

func (s *Store) GetInvoice(ctx context.Context, id uuid.UUID) (*invoice.Invoice, error) {
	query := `SELECT ` + selectInvoiceColumns + `
		FROM invoices i
		LEFT JOIN centers c ON i.center_id = c.id
		WHERE i.id = $1`

	inv, err := scanInvoice(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, invoice.ErrNotFound
		}

		return nil, fmt.Errorf("getting invoice: %w", err)
	}

	return inv, nil
}

func (s *Store) ListInvoicesByStatus(ctx context.Context, statuses []invoice.Status) ([]*invoice.Invoice, error) {
	if len(statuses) == 0 {
		return nil, nil
	}

	placeholders := make([]string, len(statuses))
	args := make([]any, len(statuses))

	for i, st := range statuses {
		placeholders[i] = fmt.Sprintf("$%d", i+1)
		args[i] = string(st)
	}

	query := `SELECT ` + selectInvoiceColumns + `
		FROM invoices i
		LEFT JOIN centers c ON i.center_id = c.id
		WHERE i.status IN (` + strings.Join(placeholders, ", ") + `)
		ORDER BY i.invoice_date DESC, i.invoice_number ASC`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing invoices: %w", err)
	}
	defer rows.Close()

	var invs []*invoice.Invoice

	for rows.Next() {
		inv, err := scanInvoice(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning invoice: %w", err)
		}

		invs = append(invs, inv)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating invoice rows: %w", err)
	}

	return invs, nil
}

func (s *Store) ListItems(ctx context.Context, invoiceID uuid.UUID) ([]*invoice.Item, error) {
	query := `
		SELECT id, invoice_id, student_name, registration_number, course_name,
			transaction_date, fee_term, fee_paid, net_amount, center_share, elite_discount
		FROM invoice_items
		WHERE invoice_id = $1
		ORDER BY transaction_date ASC, student_name ASC
	`

	rows, err := s.db.QueryContext(ctx, query, invoiceID)
	if err != nil {
		return nil, fmt.Errorf("listing invoice items: %w", err)
	}
	defer rows.Close()

	var items []*invoice.Item

	for rows.Next() {
		var it invoice.Item

		var student, regno, course, term sql.NullString

		var eliteDiscount decimal.NullDecimal

		if err := rows.Scan(
			&it.ID, &it.InvoiceID, &student, &regno, &course,
			&it.TransactionDate, &term, &it.FeePaid, &it.NetAmount, &it.CenterShare, &eliteDiscount,
		); err != nil {
			return nil, fmt.Errorf("scanning invoice item: %w", err)
		}

		it.StudentName = student.String
		it.RegistrationNumber = regno.String
		it.CourseName = course.String
		it.FeeTerm = term.String

		if eliteDiscount.Valid {
			it.EliteDiscount = &eliteDiscount.Decimal
		}

		items = append(items, &it)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating item rows: %w", err)
	}

	return items, nil
}

// AdvanceStatus moves the invoice from exactly `from` to `to` and appends the
// audit entry, both inside one database transaction. The WHERE clause on the
// current status makes the update a compare-and-set: a concurrent duplicate
// submission updates zero rows and reports updated=false.
func (s *Store) AdvanceStatus(ctx context.Context, id uuid.UUID, from, to invoice.Status, entry *invoice.AuditEntry) (bool, error) {
	dbTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("beginning transaction: %w", err)
	}
	defer dbTx.Rollback()

	updateQuery := `
		UPDATE invoices
		SET status = $1, updated_at = NOW()
		WHERE id = $2 AND status = $3
	`

	res, err := dbTx.ExecContext(ctx, updateQuery, string(to), id, string(from))
	if err != nil {
		return false, fmt.Errorf("updating status: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("reading rows affected: %w", err)
	}

	if affected == 0 {
		return false, nil
	}

	auditQuery := `
		INSERT INTO invoice_status_audit (invoice_id, from_status, to_status, role, note, created_at)
		VALUES ($1, $2, $3, $4, $5, NOW())
		RETURNING id, created_at
	`

	err = dbTx.QueryRowContext(ctx, auditQuery,
		id,
		string(entry.FromStatus),
		string(entry.ToStatus),
		string(entry.Role),
		entry.Note,
	).Scan(&entry.ID, &entry.CreatedAt)
	if err != nil {
		return false, fmt.Errorf("inserting audit entry: %w", err)
	}

	if err := dbTx.Commit(); err != nil {
		return false, fmt.Errorf("committing transaction: %w", err)
	}

	return true, nil
}

func (s *Store) ListAudit(ctx context.Context, invoiceID uuid.UUID) ([]*invoice.AuditEntry, error) {
	query := `
		SELECT id, invoice_id, from_status, to_status, role, note, created_at
		FROM invoice_status_audit
		WHERE invoice_id = $1
		ORDER BY created_at ASC
	`

	rows, err := s.db.QueryContext(ctx, query, invoiceID)
	if err != nil {
		return nil, fmt.Errorf("listing audit entries: %w", err)
	}
	defer rows.Close()

	var entries []*invoice.AuditEntry

	for rows.Next() {
		var e invoice.AuditEntry

		var fromStr, toStr, roleStr string

		if err := rows.Scan(&e.ID, &e.InvoiceID, &fromStr, &toStr, &roleStr, &e.Note, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning audit entry: %w", err)
		}

		e.FromStatus = invoice.Status(fromStr)
		e.ToStatus = invoice.Status(toStr)
		e.Role = invoice.Role(roleStr)

		entries = append(entries, &e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating audit rows: %w", err)
	}

	return entries, nil
}
