package invoice_test

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/kedarnag/invoiceflow/internal/invoice"
)

func TestService_ListPending(t *testing.T) {
	type testCase struct {
		name       string
		role       invoice.Role
		wantStatus invoice.Status
		wantErr    error
	}

	tests := []testCase{
		{name: "StateAdmin", role: invoice.RoleStateAdmin, wantStatus: invoice.StatusPending},
		{name: "FinanceAdmin", role: invoice.RoleFinanceAdmin, wantStatus: invoice.StatusVerified},
		{name: "Manager", role: invoice.RoleManager, wantStatus: invoice.StatusFinanceAccepted},
		{name: "UnknownRole", role: invoice.Role("tutor"), wantErr: invoice.ErrUnknownRole},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			repo := invoice.NewMockRepository(ctrl)
			if tt.wantErr == nil {
				repo.EXPECT().
					ListInvoicesByStatus(gomock.Any(), []invoice.Status{tt.wantStatus}).
					Return([]*invoice.Invoice{{ID: uuid.New(), Status: tt.wantStatus}}, nil)
			}

			svc := invoice.NewService(repo)
			got, err := svc.ListPending(context.Background(), tt.role)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}

			require.NoError(t, err)
			require.Len(t, got, 1)
			assert.Equal(t, tt.wantStatus, got[0].Status)
		})
	}
}

func TestService_ListApproved(t *testing.T) {
	type testCase struct {
		name         string
		role         invoice.Role
		wantStatuses []invoice.Status
	}

	tests := []testCase{
		{
			name: "StateAdmin",
			role: invoice.RoleStateAdmin,
			wantStatuses: []invoice.Status{
				invoice.StatusVerified, invoice.StatusFinanceAccepted, invoice.StatusPaid,
			},
		},
		{
			name: "FinanceAdmin",
			role: invoice.RoleFinanceAdmin,
			wantStatuses: []invoice.Status{
				invoice.StatusFinanceAccepted, invoice.StatusPaid,
			},
		},
		{
			name:         "Manager",
			role:         invoice.RoleManager,
			wantStatuses: []invoice.Status{invoice.StatusPaid},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			repo := invoice.NewMockRepository(ctrl)
			repo.EXPECT().
				ListInvoicesByStatus(gomock.Any(), tt.wantStatuses).
				Return(nil, nil)

			svc := invoice.NewService(repo)
			_, err := svc.ListApproved(context.Background(), tt.role)
			assert.NoError(t, err)
		})
	}
}

func TestService_Transition_Success(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := invoice.NewMockRepository(ctrl)
	svc := invoice.NewService(repo)

	id := uuid.New()
	share := decimal.RequireFromString("1500.00")

	repo.EXPECT().
		AdvanceStatus(gomock.Any(), id, invoice.StatusPending, invoice.StatusVerified, gomock.Any()).
		DoAndReturn(func(_ context.Context, _ uuid.UUID, _, _ invoice.Status, entry *invoice.AuditEntry) (bool, error) {
			assert.Equal(t, "Verified by State Admin", entry.Note)
			assert.Equal(t, invoice.RoleStateAdmin, entry.Role)
			return true, nil
		})
	repo.EXPECT().
		GetInvoice(gomock.Any(), id).
		Return(&invoice.Invoice{
			ID:               id,
			Number:           "INV-001",
			Status:           invoice.StatusVerified,
			TotalCenterShare: share,
		}, nil)

	got, err := svc.Transition(context.Background(), invoice.RoleStateAdmin, id, "")
	require.NoError(t, err)
	assert.Equal(t, invoice.StatusVerified, got.Status)
	assert.True(t, got.TotalCenterShare.Equal(share))
}

func TestService_Transition_WrongStatus(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := invoice.NewMockRepository(ctrl)
	svc := invoice.NewService(repo)

	id := uuid.New()

	repo.EXPECT().
		AdvanceStatus(gomock.Any(), id, invoice.StatusVerified, invoice.StatusFinanceAccepted, gomock.Any()).
		Return(false, nil)
	repo.EXPECT().
		GetInvoice(gomock.Any(), id).
		Return(&invoice.Invoice{ID: id, Number: "INV-002", Status: invoice.StatusPaid}, nil)

	_, err := svc.Transition(context.Background(), invoice.RoleFinanceAdmin, id, "ok to pay")
	assert.ErrorIs(t, err, invoice.ErrInvalidTransition)
}

func TestService_Transition_RepoError(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := invoice.NewMockRepository(ctrl)
	svc := invoice.NewService(repo)

	repo.EXPECT().
		AdvanceStatus(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
		Return(false, errors.New("db error"))

	_, err := svc.Transition(context.Background(), invoice.RoleManager, uuid.New(), "")
	assert.Error(t, err)
}

func TestService_Transition_UnknownRole(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	svc := invoice.NewService(invoice.NewMockRepository(ctrl))

	_, err := svc.Transition(context.Background(), invoice.Role("center"), uuid.New(), "")
	assert.ErrorIs(t, err, invoice.ErrUnknownRole)
}

func TestRoleGates(t *testing.T) {
	// The full chain, hop by hop.
	next, ok := invoice.NextStatusFor(invoice.RoleStateAdmin)
	require.True(t, ok)
	assert.Equal(t, invoice.StatusVerified, next)

	pending, ok := invoice.PendingStatusFor(invoice.RoleFinanceAdmin)
	require.True(t, ok)
	assert.Equal(t, next, pending)

	next, _ = invoice.NextStatusFor(invoice.RoleFinanceAdmin)
	pending, _ = invoice.PendingStatusFor(invoice.RoleManager)
	assert.Equal(t, next, pending)

	next, _ = invoice.NextStatusFor(invoice.RoleManager)
	assert.Equal(t, invoice.StatusPaid, next)

	assert.False(t, invoice.ValidRole(invoice.Role("tutor")))

	assert.Equal(t, "Verify", invoice.ActionLabelFor(invoice.RoleStateAdmin))
	assert.Equal(t, "Approve", invoice.ActionLabelFor(invoice.RoleFinanceAdmin))
	assert.Equal(t, "Final Approve", invoice.ActionLabelFor(invoice.RoleManager))
}
