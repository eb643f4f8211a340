package ledger

import (
	"context"
	"errors"
	"testing"

	"github.com/pawnfin/console/internal/domain/ledger"
	"github.com/pawnfin/console/internal/domain/session"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockGateway struct {
	mock.Mock
}

func (m *MockGateway) ListLedger(ctx context.Context, sess *session.Handle, filter ledger.Filter) ([]ledger.Entry, error) {
	args := m.Called(ctx, sess, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]ledger.Entry), args.Error(1)
}

func (m *MockGateway) CreateManualEntry(ctx context.Context, sess *session.Handle, req ledger.ManualEntryRequest) error {
	return m.Called(ctx, sess, req).Error(0)
}

func (m *MockGateway) ListVouchers(ctx context.Context, sess *session.Handle, filter ledger.VoucherFilter) ([]ledger.Voucher, error) {
	args := m.Called(ctx, sess, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]ledger.Voucher), args.Error(1)
}

func (m *MockGateway) CreateVoucher(ctx context.Context, sess *session.Handle, req ledger.VoucherRequest) error {
	return m.Called(ctx, sess, req).Error(0)
}

func TestService_Entries(t *testing.T) {
	ctx := context.Background()
	sess := session.NewHandle(nil, "s", session.State{Token: "t", CompanyID: "c"})
	filter := ledger.Filter{From: "2025-05-01", To: "2025-05-31"}
	gw := new(MockGateway)
	gw.On("ListLedger", ctx, sess, filter).Return([]ledger.Entry{
		{Direction: ledger.Credit, Category: ledger.CategoryInterest, Amount: decimal.NewFromInt(500)},
		{Direction: ledger.Debit, Category: ledger.CategoryLoan, Amount: decimal.NewFromInt(20000)},
	}, nil)

	rep, err := NewService(gw).Entries(ctx, sess, filter)
	require.NoError(t, err)
	assert.Equal(t, int64(-19500), rep.Totals.Net())
	require.Len(t, rep.ByCategory, 2)
	assert.Equal(t, ledger.CategoryLoan, rep.ByCategory[0].Category)
}

func TestService_AddManualEntry(t *testing.T) {
	ctx := context.Background()
	sess := session.NewHandle(nil, "s", session.State{Token: "t", CompanyID: "c"})

	gw := new(MockGateway)
	err := NewService(gw).AddManualEntry(ctx, sess, ledger.ManualEntry{Date: "2025-05-01"})
	assert.EqualError(t, err, "Amount is required.")
	gw.AssertNotCalled(t, "CreateManualEntry", mock.Anything, mock.Anything, mock.Anything)

	gw.On("CreateManualEntry", ctx, sess, mock.MatchedBy(func(r ledger.ManualEntryRequest) bool {
		return r.Amount == 250 && r.Direction == ledger.Debit && r.Category == ledger.CategoryExpense
	})).Return(nil)
	require.NoError(t, NewService(gw).AddManualEntry(ctx, sess, ledger.ManualEntry{Date: "2025-05-01", Amount: "250"}))
}

func TestService_Vouchers(t *testing.T) {
	ctx := context.Background()
	sess := session.NewHandle(nil, "s", session.State{Token: "t", CompanyID: "c"})
	gw := new(MockGateway)
	gw.On("ListVouchers", ctx, sess, ledger.VoucherFilter{Q: "tea"}).Return([]ledger.Voucher{
		{Amount: decimal.RequireFromString("99.9")}, {Amount: decimal.NewFromInt(1)},
	}, nil)
	gw.On("CreateVoucher", ctx, sess, mock.Anything).Return(errors.New("Ledger closed"))

	list, err := NewService(gw).Vouchers(ctx, sess, ledger.VoucherFilter{Q: "tea"})
	require.NoError(t, err)
	assert.Equal(t, int64(100), list.Total)

	err = NewService(gw).AddVoucher(ctx, sess, ledger.VoucherDraft{Date: "2025-05-01", Amount: "10"})
	assert.EqualError(t, err, "Ledger closed")
}
