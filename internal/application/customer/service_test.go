package customer

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/pawnfin/console/internal/domain/customer"
	"github.com/pawnfin/console/internal/domain/loan"
	"github.com/pawnfin/console/internal/domain/session"
	"github.com/pawnfin/console/internal/domain/shared"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// ============================================================================
// Mocks
// ============================================================================

type MockGateway struct {
	mock.Mock
}

func (m *MockGateway) ListCustomers(ctx context.Context, sess *session.Handle, filter customer.Filter) ([]customer.RawRecord, error) {
	args := m.Called(ctx, sess, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]customer.RawRecord), args.Error(1)
}

func (m *MockGateway) GetCustomer(ctx context.Context, sess *session.Handle, accNo string) (*customer.RawRecord, error) {
	args := m.Called(ctx, sess, accNo)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*customer.RawRecord), args.Error(1)
}

func (m *MockGateway) CreateCustomer(ctx context.Context, sess *session.Handle, req customer.CreateRequest) error {
	return m.Called(ctx, sess, req).Error(0)
}

func (m *MockGateway) UpdateCustomer(ctx context.Context, sess *session.Handle, accNo string, req customer.UpdateRequest) error {
	return m.Called(ctx, sess, accNo, req).Error(0)
}

func (m *MockGateway) CustomerHistory(ctx context.Context, sess *session.Handle, accNo string) ([]customer.HistoryEntry, error) {
	args := m.Called(ctx, sess, accNo)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]customer.HistoryEntry), args.Error(1)
}

func (m *MockGateway) RecordInterestPayment(ctx context.Context, sess *session.Handle, accNo string, req loan.InterestPaymentRequest) error {
	return m.Called(ctx, sess, accNo, req).Error(0)
}

func (m *MockGateway) CloseLoan(ctx context.Context, sess *session.Handle, accNo string, req loan.CloseRequest) error {
	return m.Called(ctx, sess, accNo, req).Error(0)
}

func (m *MockGateway) CreateNewLoan(ctx context.Context, sess *session.Handle, fromAccNo string, req customer.NewLoanRequest) (*customer.NewLoanResponse, error) {
	args := m.Called(ctx, sess, fromAccNo, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*customer.NewLoanResponse), args.Error(1)
}

type MockPhotoArchive struct {
	mock.Mock
}

func (m *MockPhotoArchive) ArchivePhoto(ctx context.Context, accNo, dataURL string) (string, error) {
	args := m.Called(ctx, accNo, dataURL)
	return args.String(0), args.Error(1)
}

type apiError struct {
	status int
	msg    string
}

func (e *apiError) Error() string   { return e.msg }
func (e *apiError) StatusCode() int { return e.status }

// ============================================================================
// Helpers
// ============================================================================

var may2025 = time.Date(2025, time.May, 10, 0, 0, 0, 0, time.UTC)

func testSession() *session.Handle {
	return session.NewHandle(nil, "s", session.State{Token: "tok", CompanyID: "c1"})
}

func records(accNos ...string) []customer.RawRecord {
	out := make([]customer.RawRecord, 0, len(accNos))
	for _, a := range accNos {
		out = append(out, customer.RawRecord{AccNo: a})
	}
	return out
}

func validIntake() customer.Intake {
	return customer.Intake{
		Date:    "2025-05-10",
		Profile: customer.Profile{Name: "Ravi", Address: "12 Main St", Phone: "98765"},
		Terms: customer.LoanTerms{
			LoanType:   "Document",
			LoanAmount: "50000",
			MonthlyPct: "2",
		},
		PhotoDataURL: "data:image/jpeg;base64,AAAA",
	}
}

func dec(s string) shared.Number {
	return shared.NewNumber(decimal.RequireFromString(s))
}

// ============================================================================
// Tests
// ============================================================================

func TestService_SuggestAccountNumber(t *testing.T) {
	ctx := context.Background()
	sess := testSession()

	t.Run("next after max", func(t *testing.T) {
		gw := new(MockGateway)
		gw.On("ListCustomers", ctx, sess, customer.Filter{}).Return(records("2025-2026/3", "2025-2026/10", "2024-2025/99"), nil)
		accNo, err := NewService(gw, nil).SuggestAccountNumber(ctx, sess, may2025)
		require.NoError(t, err)
		assert.Equal(t, "2025-2026/11", accNo)
	})

	t.Run("list failure falls back", func(t *testing.T) {
		gw := new(MockGateway)
		gw.On("ListCustomers", ctx, sess, customer.Filter{}).Return(nil, errors.New("down"))
		accNo, err := NewService(gw, nil).SuggestAccountNumber(ctx, sess, may2025)
		require.NoError(t, err)
		assert.Equal(t, "2025-2026/1", accNo)
	})

	t.Run("expired session is returned", func(t *testing.T) {
		gw := new(MockGateway)
		gw.On("ListCustomers", ctx, sess, customer.Filter{}).Return(nil, session.ErrExpired)
		accNo, err := NewService(gw, nil).SuggestAccountNumber(ctx, sess, may2025)
		assert.ErrorIs(t, err, session.ErrExpired)
		assert.Empty(t, accNo)
	})
}

func TestService_Create(t *testing.T) {
	ctx := context.Background()
	sess := testSession()

	t.Run("missing fields make no calls", func(t *testing.T) {
		gw := new(MockGateway)
		in := validIntake()
		in.Profile.Name = ""
		in.PhotoDataURL = ""
		_, err := NewService(gw, nil).Create(ctx, sess, in)

		var missing *customer.MissingFieldsError
		require.ErrorAs(t, err, &missing)
		assert.Equal(t, []string{"Name", "Photo"}, missing.Fields)
		gw.AssertExpectations(t)
	})

	t.Run("duplicate account number", func(t *testing.T) {
		gw := new(MockGateway)
		gw.On("ListCustomers", ctx, sess, customer.Filter{}).Return(records("2025-2026/7"), nil)
		in := validIntake()
		in.AccNo = " 2025-2026/7 "

		_, err := NewService(gw, nil).Create(ctx, sess, in)
		var verrs shared.ValidationErrors
		require.ErrorAs(t, err, &verrs)
		assert.Equal(t, "Account number already exists", verrs.Field(AccountField))
		gw.AssertNotCalled(t, "CreateCustomer", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("blank account number uses first of year and archives photo", func(t *testing.T) {
		gw := new(MockGateway)
		photos := new(MockPhotoArchive)
		gw.On("ListCustomers", ctx, sess, customer.Filter{}).Return(records(), nil)
		gw.On("CreateCustomer", ctx, sess, mock.MatchedBy(func(req customer.CreateRequest) bool {
			return req.AccNo == "2025-2026/1" && req.Loan.Scheme == "None" && req.Loan.MonthlyInterestAmount == 1000
		})).Return(nil)
		photos.On("ArchivePhoto", ctx, "2025-2026/1", "data:image/jpeg;base64,AAAA").Return("photos/x.jpg", nil)

		accNo, err := NewService(gw, nil, WithPhotoArchive(photos)).Create(ctx, sess, validIntake())
		require.NoError(t, err)
		assert.Equal(t, "2025-2026/1", accNo)
		gw.AssertExpectations(t)
		photos.AssertExpectations(t)
	})

	t.Run("list failure skips the check", func(t *testing.T) {
		gw := new(MockGateway)
		gw.On("ListCustomers", ctx, sess, customer.Filter{}).Return(nil, errors.New("down"))
		gw.On("CreateCustomer", ctx, sess, mock.Anything).Return(nil)
		in := validIntake()
		in.AccNo = "2025-2026/5"

		accNo, err := NewService(gw, nil).Create(ctx, sess, in)
		require.NoError(t, err)
		assert.Equal(t, "2025-2026/5", accNo)
	})

	t.Run("expired session stops before saving", func(t *testing.T) {
		gw := new(MockGateway)
		gw.On("ListCustomers", ctx, sess, customer.Filter{}).Return(nil, session.ErrExpired)

		_, err := NewService(gw, nil).Create(ctx, sess, validIntake())
		assert.ErrorIs(t, err, session.ErrExpired)
		gw.AssertNotCalled(t, "CreateCustomer", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("backend duplicate goes on the account field", func(t *testing.T) {
		gw := new(MockGateway)
		gw.On("ListCustomers", ctx, sess, customer.Filter{}).Return(records(), nil)
		gw.On("CreateCustomer", ctx, sess, mock.Anything).Return(&apiError{status: 409, msg: "Account already exists"})

		_, err := NewService(gw, nil).Create(ctx, sess, validIntake())
		var verrs shared.ValidationErrors
		require.ErrorAs(t, err, &verrs)
		assert.Equal(t, "Account already exists", verrs.Field(AccountField))
	})

	t.Run("other backend errors pass through", func(t *testing.T) {
		gw := new(MockGateway)
		gw.On("ListCustomers", ctx, sess, customer.Filter{}).Return(records(), nil)
		backendErr := &apiError{status: 500, msg: "Database unavailable"}
		gw.On("CreateCustomer", ctx, sess, mock.Anything).Return(backendErr)

		_, err := NewService(gw, nil).Create(ctx, sess, validIntake())
		assert.Same(t, backendErr, err)
	})
}

func TestService_Search(t *testing.T) {
	ctx := context.Background()
	sess := testSession()
	gw := new(MockGateway)
	gw.On("ListCustomers", ctx, sess, customer.Filter{}).Return([]customer.RawRecord{
		{AccNo: "2025-2026/1", Customer: &customer.Profile{Name: "Ravi Kumar", Phone: "98765"}},
		{AccNo: "2025-2026/2", Name: "Sita", Phone: "12345", LoanType: "gold"},
	}, nil)

	rows, err := NewService(gw, nil).Search(ctx, sess, customer.Filter{Name: "sita"})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "2025-2026/2", rows[0].AccNo)
	assert.Equal(t, "Gold", rows[0].LoanType)
}

func TestService_Load(t *testing.T) {
	ctx := context.Background()
	sess := testSession()

	t.Run("history failure does not hide the record", func(t *testing.T) {
		gw := new(MockGateway)
		gw.On("GetCustomer", ctx, sess, "A/1").Return(&customer.RawRecord{
			AccNo: "A/1",
			Loan:  &customer.RawLoan{LoanAmount: dec("50000"), MonthlyPct: dec("2")},
			Payments: []customer.RawPayment{
				{PendingPrincipal: dec("30000"), PendingInterest: dec("150")},
			},
		}, nil)
		gw.On("CustomerHistory", ctx, sess, "A/1").Return(nil, errors.New("history down"))

		d := NewService(gw, nil).Load(ctx, sess, "A/1")
		require.NoError(t, d.RecordErr)
		require.NotNil(t, d.Record)
		assert.EqualError(t, d.HistoryErr, "history down")
		assert.True(t, d.Record.OutstandingPrincipal().Equal(decimal.NewFromInt(30000)))
		assert.Equal(t, int64(600), d.Record.MonthlyInterestDisplay())
	})

	t.Run("record failure keeps history", func(t *testing.T) {
		gw := new(MockGateway)
		gw.On("GetCustomer", ctx, sess, "A/1").Return(nil, errors.New("gone"))
		gw.On("CustomerHistory", ctx, sess, "A/1").Return([]customer.HistoryEntry{{ID: "h1", Action: "CREATE"}}, nil)

		d := NewService(gw, nil).Load(ctx, sess, "A/1")
		assert.Nil(t, d.Record)
		assert.Error(t, d.RecordErr)
		assert.Len(t, d.History, 1)
	})
}

func TestService_RecordPayment(t *testing.T) {
	ctx := context.Background()
	sess := testSession()

	t.Run("nothing entered", func(t *testing.T) {
		gw := new(MockGateway)
		err := NewService(gw, nil).RecordPayment(ctx, sess, "A/1", loan.PaymentInput{FromDate: "2025-05-01", ToDate: "2025-05-31"})
		assert.EqualError(t, err, loan.MsgNothingToPay)
	})

	t.Run("interest then principal", func(t *testing.T) {
		gw := new(MockGateway)
		var order []string
		gw.On("RecordInterestPayment", ctx, sess, "A/1", mock.Anything).
			Run(func(mock.Arguments) { order = append(order, "interest") }).Return(nil)
		gw.On("CloseLoan", ctx, sess, "A/1", loan.CloseRequest{Date: "2025-05-31", Mode: loan.ClosePartial, PrincipalAmount: 5000}).
			Run(func(mock.Arguments) { order = append(order, "principal") }).Return(nil)

		err := NewService(gw, nil).RecordPayment(ctx, sess, "A/1", loan.PaymentInput{
			FromDate: "2025-05-01", ToDate: "2025-05-31", Interest: "750", Principal: "5000.9",
		})
		require.NoError(t, err)
		assert.Equal(t, []string{"interest", "principal"}, order)
	})

	t.Run("principal only", func(t *testing.T) {
		gw := new(MockGateway)
		gw.On("CloseLoan", ctx, sess, "A/1", mock.Anything).Return(nil)
		require.NoError(t, NewService(gw, nil).RecordPayment(ctx, sess, "A/1", loan.PaymentInput{ToDate: "2025-05-31", Principal: "100"}))
		gw.AssertNotCalled(t, "RecordInterestPayment", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestService_Close(t *testing.T) {
	ctx := context.Background()
	sess := testSession()
	confirmed := loan.CloseInput{Date: "2025-06-01", ConfirmPrincipal: true, ConfirmInterest: true}

	t.Run("balance remaining", func(t *testing.T) {
		gw := new(MockGateway)
		gw.On("GetCustomer", ctx, sess, "A/1").Return(&customer.RawRecord{
			Loan: &customer.RawLoan{LoanAmount: dec("1000")},
		}, nil)
		err := NewService(gw, nil).Close(ctx, sess, "A/1", confirmed)
		assert.EqualError(t, err, loan.MsgClearBeforeEnd)
	})

	t.Run("settled loan closes", func(t *testing.T) {
		gw := new(MockGateway)
		gw.On("GetCustomer", ctx, sess, "A/1").Return(&customer.RawRecord{
			Loan:     &customer.RawLoan{LoanAmount: dec("1000")},
			Payments: []customer.RawPayment{{OutstandingPrincipal: dec("0"), PendingInterest: dec("0")}},
		}, nil)
		gw.On("CloseLoan", ctx, sess, "A/1", loan.CloseRequest{Date: "2025-06-01", Mode: loan.CloseFull}).Return(nil)
		require.NoError(t, NewService(gw, nil).Close(ctx, sess, "A/1", confirmed))
		gw.AssertExpectations(t)
	})
}

func TestService_NewLoan(t *testing.T) {
	ctx := context.Background()
	sess := testSession()
	in := customer.NewLoanIntake{
		Date:         "2025-05-10",
		NewAccNo:     "2025-2026/9",
		Terms:        customer.LoanTerms{LoanType: "gold", LoanAmount: "20000"},
		PhotoDataURL: "data:image/png;base64,AA",
	}

	gw := new(MockGateway)
	gw.On("ListCustomers", ctx, sess, customer.Filter{}).Return(records("2025-2026/1"), nil)
	gw.On("CreateNewLoan", ctx, sess, "2025-2026/1", mock.MatchedBy(func(req customer.NewLoanRequest) bool {
		return req.NewAccNo == "2025-2026/9" && req.Loan.LoanType == "GOLD"
	})).Return(&customer.NewLoanResponse{OK: true, AccNo: "2025-2026/9"}, nil)

	accNo, err := NewService(gw, nil).NewLoan(ctx, sess, "2025-2026/1", in)
	require.NoError(t, err)
	assert.Equal(t, "2025-2026/9", accNo)
}

func TestService_ArchiveFailureIsNotFatal(t *testing.T) {
	ctx := context.Background()
	sess := testSession()
	gw := new(MockGateway)
	gw.On("ListCustomers", ctx, sess, customer.Filter{}).Return(records(), nil)
	gw.On("CreateCustomer", ctx, sess, mock.Anything).Return(nil)
	var calls atomic.Int32
	photos := new(MockPhotoArchive)
	photos.On("ArchivePhoto", ctx, mock.Anything, mock.Anything).
		Run(func(mock.Arguments) { calls.Add(1) }).Return("", errors.New("s3 down"))

	_, err := NewService(gw, nil, WithPhotoArchive(photos), WithClock(func() time.Time { return may2025 })).Create(ctx, sess, validIntake())
	require.NoError(t, err)
	assert.Equal(t, int32(1), calls.Load())
}
