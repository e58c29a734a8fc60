package invoice

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Status represents the lifecycle state of an invoice. The chain is linear
// and forward-only: Pending -> MF Verified -> Finance Accepted -> Invoice Paid.
type Status string

const (
	StatusPending         Status = "Pending"
	StatusVerified        Status = "MF Verified"
	StatusFinanceAccepted Status = "Finance Accepted"
	StatusPaid            Status = "Invoice Paid"
)

// Role identifies which admin role is acting on an invoice.
type Role string

const (
	RoleStateAdmin   Role = "state_admin"
	RoleFinanceAdmin Role = "finance_admin"
	RoleManager      Role = "manager"
)

// statusOrder gives each status its position in the chain.
var statusOrder = map[Status]int{
	StatusPending:         0,
	StatusVerified:        1,
	StatusFinanceAccepted: 2,
	StatusPaid:            3,
}

// roleGate describes the single transition a role is allowed to perform.
type roleGate struct {
	From  Status
	To    Status
	Label string
	Note  string
}

var roleGates = map[Role]roleGate{
	RoleStateAdmin:   {From: StatusPending, To: StatusVerified, Label: "Verify", Note: "Verified by State Admin"},
	RoleFinanceAdmin: {From: StatusVerified, To: StatusFinanceAccepted, Label: "Approve", Note: "Approved by Finance Admin"},
	RoleManager:      {From: StatusFinanceAccepted, To: StatusPaid, Label: "Final Approve", Note: "Final approved by Manager"},
}

// ValidRole reports whether r is one of the three approval roles.
func ValidRole(r Role) bool {
	_, ok := roleGates[r]
	return ok
}

// PendingStatusFor returns the status a role's Pending tab lists.
func PendingStatusFor(role Role) (Status, bool) {
	g, ok := roleGates[role]
	return g.From, ok
}

// NextStatusFor returns the status a role's transition advances to.
func NextStatusFor(role Role) (Status, bool) {
	g, ok := roleGates[role]
	return g.To, ok
}

// ActionLabelFor returns the user-facing name of a role's transition.
func ActionLabelFor(role Role) string {
	return roleGates[role].Label
}

// DefaultNoteFor returns the audit note recorded when the caller supplies none.
func DefaultNoteFor(role Role) string {
	return roleGates[role].Note
}

// ApprovedStatusesFor returns every status strictly past the role's pending
// status, i.e. the invoices this role has already acted on.
func ApprovedStatusesFor(role Role) []Status {
	g, ok := roleGates[role]
	if !ok {
		return nil
	}

	var out []Status

	for s, ord := range statusOrder {
		if ord > statusOrder[g.From] {
			out = append(out, s)
		}
	}

	sortStatuses(out)

	return out
}

func sortStatuses(ss []Status) {
	for i := 1; i < len(ss); i++ {
		for j := i; j > 0 && statusOrder[ss[j]] < statusOrder[ss[j-1]]; j-- {
			ss[j], ss[j-1] = ss[j-1], ss[j]
		}
	}
}

// Invoice is a billing document for one center for one payment cycle,
// aggregating student fee-share payouts.
type Invoice struct {
	ID               uuid.UUID
	Number           string
	Status           Status
	InvoiceDate      time.Time
	PeriodStart      time.Time
	PeriodEnd        time.Time
	CycleNumber      int
	TotalNetAmount   decimal.Decimal
	TotalCenterShare decimal.Decimal
	CenterID         uuid.UUID
	CenterName       string
	CreatedAt        time.Time
	UpdatedAt        *time.Time
}

// Item is one student's payment line within an invoice. Items are read-only
// in this subsystem.
type Item struct {
	ID                 uuid.UUID
	InvoiceID          uuid.UUID
	StudentName        string
	RegistrationNumber string
	CourseName         string
	TransactionDate    time.Time
	FeeTerm            string
	FeePaid            decimal.Decimal
	NetAmount          decimal.Decimal
	CenterShare        decimal.Decimal
	EliteDiscount      *decimal.Decimal
}

// AuditEntry is one immutable record of a status transition.
type AuditEntry struct {
	ID         uuid.UUID
	InvoiceID  uuid.UUID
	FromStatus Status
	ToStatus   Status
	Role       Role
	Note       string
	CreatedAt  time.Time
}
