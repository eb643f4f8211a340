// Package customer runs the customer and loan workflows of the console:
// intake, search, detail, edits, payments, closure and follow-on loans.
package customer

import (
	"context"
	"errors"
	"time"

	"github.com/pawnfin/console/internal/domain/account"
	"github.com/pawnfin/console/internal/domain/customer"
	"github.com/pawnfin/console/internal/domain/loan"
	"github.com/pawnfin/console/internal/domain/session"
	"github.com/pawnfin/console/internal/domain/shared"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Gateway is the pawn-api customer endpoints
type Gateway interface {
	ListCustomers(ctx context.Context, sess *session.Handle, filter customer.Filter) ([]customer.RawRecord, error)
	GetCustomer(ctx context.Context, sess *session.Handle, accNo string) (*customer.RawRecord, error)
	CreateCustomer(ctx context.Context, sess *session.Handle, req customer.CreateRequest) error
	UpdateCustomer(ctx context.Context, sess *session.Handle, accNo string, req customer.UpdateRequest) error
	CustomerHistory(ctx context.Context, sess *session.Handle, accNo string) ([]customer.HistoryEntry, error)
	RecordInterestPayment(ctx context.Context, sess *session.Handle, accNo string, req loan.InterestPaymentRequest) error
	CloseLoan(ctx context.Context, sess *session.Handle, accNo string, req loan.CloseRequest) error
	CreateNewLoan(ctx context.Context, sess *session.Handle, fromAccNo string, req customer.NewLoanRequest) (*customer.NewLoanResponse, error)
}

// PhotoArchive keeps a copy of the photo captured at intake
type PhotoArchive interface {
	ArchivePhoto(ctx context.Context, accNo, dataURL string) (string, error)
}

// AccountField is the form field account-number errors are attached to
const AccountField = "accNo"

// Service handles customer and loan operations for one company
type Service struct {
	gateway Gateway
	photos  PhotoArchive
	logger  *zap.Logger
	now     func() time.Time
}

// Option configures a Service
type Option func(*Service)

// WithPhotoArchive archives intake photos after a successful save
func WithPhotoArchive(a PhotoArchive) Option {
	return func(s *Service) { s.photos = a }
}

// WithClock overrides the clock used for fiscal-year defaults
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// NewService creates a new customer Service
func NewService(gateway Gateway, logger *zap.Logger, opts ...Option) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Service{gateway: gateway, logger: logger, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// SuggestAccountNumber proposes the next number of the fiscal year of date.
// When the customer list cannot be loaded the year's first number is used,
// except for an expired session or a cancelled request, which are returned.
func (s *Service) SuggestAccountNumber(ctx context.Context, sess *session.Handle, date time.Time) (string, error) {
	existing, err := s.accountNumbers(ctx, sess)
	if err != nil {
		if mustPropagate(err) {
			return "", err
		}
		s.logger.Warn("account number suggestion fell back to first of year", zap.Error(err))
		return account.FiscalYearOf(date).First(), nil
	}
	return account.NextAccountNumber(date, existing), nil
}

// Create validates the intake, checks the account number against a fresh
// customer list and saves the customer. It returns the account number used.
func (s *Service) Create(ctx context.Context, sess *session.Handle, in customer.Intake) (string, error) {
	if err := in.Validate(); err != nil {
		return "", err
	}
	accNo, err := s.checkAccountNumber(ctx, sess, in.AccNo, s.parseDate(in.Date))
	if err != nil {
		return "", err
	}
	if err := s.gateway.CreateCustomer(ctx, sess, in.Request(accNo)); err != nil {
		return "", accountError(err)
	}
	s.archivePhoto(ctx, accNo, in.PhotoDataURL)
	return accNo, nil
}

// Search loads every customer and filters locally.
func (s *Service) Search(ctx context.Context, sess *session.Handle, filter customer.Filter) ([]customer.Summary, error) {
	records, err := s.gateway.ListCustomers(ctx, sess, customer.Filter{})
	if err != nil {
		return nil, err
	}
	return customer.Search(records, filter), nil
}

// Lookup asks the backend for customers by name or phone.
func (s *Service) Lookup(ctx context.Context, sess *session.Handle, filter customer.Filter) ([]customer.Summary, error) {
	records, err := s.gateway.ListCustomers(ctx, sess, customer.Filter{Name: filter.Name, Phone: filter.Phone})
	if err != nil {
		return nil, err
	}
	out := make([]customer.Summary, 0, len(records))
	for _, r := range records {
		out = append(out, customer.Summarize(r))
	}
	return out, nil
}

// Detail is the customer page: the record and its history, each with its
// own error so one failing does not hide the other.
type Detail struct {
	Record     *customer.Record
	RecordErr  error
	History    []customer.HistoryEntry
	HistoryErr error
}

// Load fetches the record and its history concurrently.
func (s *Service) Load(ctx context.Context, sess *session.Handle, accNo string) *Detail {
	d := &Detail{}
	var g errgroup.Group
	g.Go(func() error {
		raw, err := s.gateway.GetCustomer(ctx, sess, accNo)
		if err != nil {
			d.RecordErr = err
			return nil
		}
		rec := customer.Normalize(*raw)
		d.Record = &rec
		return nil
	})
	g.Go(func() error {
		h, err := s.gateway.CustomerHistory(ctx, sess, accNo)
		if err != nil {
			d.HistoryErr = err
			return nil
		}
		d.History = h
		return nil
	})
	_ = g.Wait()
	return d
}

// Get fetches and normalizes one record
func (s *Service) Get(ctx context.Context, sess *session.Handle, accNo string) (*customer.Record, error) {
	raw, err := s.gateway.GetCustomer(ctx, sess, accNo)
	if err != nil {
		return nil, err
	}
	rec := customer.Normalize(*raw)
	return &rec, nil
}

// Update saves the edited profile
func (s *Service) Update(ctx context.Context, sess *session.Handle, accNo string, edit customer.Edit) error {
	return s.gateway.UpdateCustomer(ctx, sess, accNo, edit.Request())
}

// RecordPayment posts the interest part and then the principal part of a
// payment. If the principal call fails after the interest call succeeded
// the interest payment stays recorded.
func (s *Service) RecordPayment(ctx context.Context, sess *session.Handle, accNo string, in loan.PaymentInput) error {
	plan, err := loan.PlanPayment(in)
	if err != nil {
		return err
	}
	if plan.Interest != nil {
		if err := s.gateway.RecordInterestPayment(ctx, sess, accNo, *plan.Interest); err != nil {
			return err
		}
	}
	if plan.Principal != nil {
		if err := s.gateway.CloseLoan(ctx, sess, accNo, *plan.Principal); err != nil {
			return err
		}
	}
	return nil
}

// Close settles the loan in full. The current balances are re-read so the
// check runs against what the backend holds now.
func (s *Service) Close(ctx context.Context, sess *session.Handle, accNo string, in loan.CloseInput) error {
	rec, err := s.Get(ctx, sess, accNo)
	if err != nil {
		return err
	}
	if rec.Closed() {
		return shared.NewDomainError("LOAN_CLOSED", "Loan is already closed.")
	}
	req, err := loan.PlanFullClose(in, rec.OutstandingPrincipal(), rec.PendingInterest())
	if err != nil {
		return err
	}
	return s.gateway.CloseLoan(ctx, sess, accNo, *req)
}

// NewLoan opens another loan for the customer behind fromAccNo and returns
// the new account number.
func (s *Service) NewLoan(ctx context.Context, sess *session.Handle, fromAccNo string, in customer.NewLoanIntake) (string, error) {
	if err := in.Validate(); err != nil {
		return "", err
	}
	accNo, err := s.checkAccountNumber(ctx, sess, in.NewAccNo, s.parseDate(in.Date))
	if err != nil {
		return "", err
	}
	resp, err := s.gateway.CreateNewLoan(ctx, sess, fromAccNo, in.Request(accNo))
	if err != nil {
		return "", accountError(err)
	}
	if resp != nil && resp.AccNo != "" {
		accNo = resp.AccNo
	}
	s.archivePhoto(ctx, accNo, in.PhotoDataURL)
	return accNo, nil
}

// checkAccountNumber resolves a blank candidate and rejects numbers already
// in use. The check is skipped when the list cannot be loaded.
func (s *Service) checkAccountNumber(ctx context.Context, sess *session.Handle, candidate string, date time.Time) (string, error) {
	accNo := account.Resolve(candidate, date)
	existing, err := s.accountNumbers(ctx, sess)
	if err != nil {
		if mustPropagate(err) {
			return "", err
		}
		s.logger.Warn("duplicate account check skipped", zap.String("acc_no", accNo), zap.Error(err))
		return accNo, nil
	}
	if account.Exists(existing, accNo) {
		return "", shared.NewValidationError(AccountField, account.ErrDuplicate.Message)
	}
	return accNo, nil
}

// mustPropagate reports whether a failed customer list has to stop the
// request rather than degrade the account-number helpers.
func mustPropagate(err error) bool {
	return errors.Is(err, session.ErrExpired) || errors.Is(err, context.Canceled)
}

func (s *Service) accountNumbers(ctx context.Context, sess *session.Handle) ([]string, error) {
	records, err := s.gateway.ListCustomers(ctx, sess, customer.Filter{})
	if err != nil {
		return nil, err
	}
	return customer.AccountNumbers(records), nil
}

func (s *Service) parseDate(v string) time.Time {
	if t, err := time.Parse(time.DateOnly, v); err == nil {
		return t
	}
	return s.now()
}

func (s *Service) archivePhoto(ctx context.Context, accNo, dataURL string) {
	if s.photos == nil || dataURL == "" {
		return
	}
	key, err := s.photos.ArchivePhoto(ctx, accNo, dataURL)
	if err != nil {
		s.logger.Warn("photo archive failed", zap.String("acc_no", accNo), zap.Error(err))
		return
	}
	s.logger.Debug("photo archived", zap.String("acc_no", accNo), zap.String("key", key))
}

// accountError moves a backend duplicate-number complaint onto the account
// field. Transport and session errors pass through.
func accountError(err error) error {
	var apiErr interface{ StatusCode() int }
	if !errors.As(err, &apiErr) {
		return err
	}
	if account.IsDuplicateMessage(err.Error()) {
		return shared.NewValidationError(AccountField, err.Error())
	}
	return err
}
