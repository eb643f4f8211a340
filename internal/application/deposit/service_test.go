package deposit

import (
	"context"
	"testing"

	"github.com/pawnfin/console/internal/domain/deposit"
	"github.com/pawnfin/console/internal/domain/session"
	"github.com/pawnfin/console/internal/domain/shared"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockGateway struct {
	mock.Mock
}

func (m *MockGateway) ListDeposits(ctx context.Context, sess *session.Handle, filter deposit.Filter) ([]deposit.Summary, error) {
	args := m.Called(ctx, sess, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]deposit.Summary), args.Error(1)
}

func (m *MockGateway) CreateDeposit(ctx context.Context, sess *session.Handle, req deposit.CreateRequest) (*deposit.CreateResponse, error) {
	args := m.Called(ctx, sess, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*deposit.CreateResponse), args.Error(1)
}

func (m *MockGateway) GetDeposit(ctx context.Context, sess *session.Handle, id string) (*deposit.Detail, error) {
	args := m.Called(ctx, sess, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*deposit.Detail), args.Error(1)
}

func (m *MockGateway) RecordDepositPayment(ctx context.Context, sess *session.Handle, id string, req deposit.PaymentRequest) (*deposit.Detail, error) {
	args := m.Called(ctx, sess, id, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*deposit.Detail), args.Error(1)
}

func amount(s string) shared.Number {
	return shared.NewNumber(decimal.RequireFromString(s))
}

func TestService_List(t *testing.T) {
	ctx := context.Background()
	sess := session.NewHandle(nil, "s", session.State{Token: "t", CompanyID: "c"})
	filter := deposit.Filter{Status: deposit.StatusActive}
	gw := new(MockGateway)
	gw.On("ListDeposits", ctx, sess, filter).Return([]deposit.Summary{
		{ID: "d1", Outstanding: amount("100000")},
		{ID: "d2"},
		{ID: "d3", Outstanding: amount("2500.5")},
	}, nil)

	res, err := NewService(gw).List(ctx, sess, filter)
	require.NoError(t, err)
	assert.Len(t, res.Rows, 3)
	assert.True(t, res.TotalOutstanding.Equal(decimal.RequireFromString("102500.5")))
}

func TestService_Create(t *testing.T) {
	ctx := context.Background()
	sess := session.NewHandle(nil, "s", session.State{Token: "t", CompanyID: "c"})
	draft := deposit.Draft{FinancierName: "Mani", StartDate: "2025-04-01", OriginalAmount: "100000"}

	t.Run("validation first", func(t *testing.T) {
		gw := new(MockGateway)
		_, err := NewService(gw).Create(ctx, sess, deposit.Draft{})
		assert.EqualError(t, err, "Financier name is required")
	})

	t.Run("returns id", func(t *testing.T) {
		gw := new(MockGateway)
		gw.On("CreateDeposit", ctx, sess, mock.Anything).Return(&deposit.CreateResponse{OK: true, ID: "d9"}, nil)
		id, err := NewService(gw).Create(ctx, sess, draft)
		require.NoError(t, err)
		assert.Equal(t, "d9", id)
	})

	t.Run("reply without id uses backend message", func(t *testing.T) {
		gw := new(MockGateway)
		gw.On("CreateDeposit", ctx, sess, mock.Anything).Return(&deposit.CreateResponse{OK: false, Message: "Financier blocked"}, nil)
		_, err := NewService(gw).Create(ctx, sess, draft)
		assert.EqualError(t, err, "Financier blocked")
	})

	t.Run("reply without id or message", func(t *testing.T) {
		gw := new(MockGateway)
		gw.On("CreateDeposit", ctx, sess, mock.Anything).Return(&deposit.CreateResponse{OK: true}, nil)
		_, err := NewService(gw).Create(ctx, sess, draft)
		assert.ErrorIs(t, err, ErrCreateRejected)
	})
}

func TestService_RecordPayment(t *testing.T) {
	ctx := context.Background()
	sess := session.NewHandle(nil, "s", session.State{Token: "t", CompanyID: "c"})
	gw := new(MockGateway)
	gw.On("RecordDepositPayment", ctx, sess, "d1", mock.MatchedBy(func(req deposit.PaymentRequest) bool {
		return req.Principal == 0 && req.InterestAmount == nil && req.Date == "2025-05-31"
	})).Return(&deposit.Detail{ID: "d1"}, nil)

	d, err := NewService(gw).RecordPayment(ctx, sess, "d1", deposit.PaymentInput{FromDate: "2025-05-01", ToDate: "2025-05-31", Principal: "-20"})
	require.NoError(t, err)
	assert.Equal(t, "d1", d.ID)
}
