package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/pawnfin/console/internal/domain/company"
	"github.com/pawnfin/console/internal/domain/customer"
	"github.com/pawnfin/console/internal/domain/deposit"
	"github.com/pawnfin/console/internal/domain/ledger"
	"github.com/pawnfin/console/internal/domain/loan"
	"github.com/pawnfin/console/internal/domain/scheme"
	"github.com/pawnfin/console/internal/domain/session"
	"github.com/pawnfin/console/internal/infrastructure/printing"
	"github.com/pawnfin/console/internal/interfaces/http/middleware"
	"github.com/pawnfin/console/internal/interfaces/http/view"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	middleware.SetupValidator()
	os.Exit(m.Run())
}

var testToday = time.Date(2024, 6, 15, 10, 0, 0, 0, time.UTC)

// readyState is a signed-in session with a company selected
var readyState = session.State{Token: "tok", CompanyID: "c1", CompanyName: "Sri Lakshmi Finance"}

// memStore is a session.Store for tests
type memStore struct {
	mu     sync.Mutex
	states map[string]session.State
}

func newMemStore() *memStore {
	return &memStore{states: map[string]session.State{}}
}

func (s *memStore) Load(_ context.Context, id string) (session.State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	st, ok := s.states[id]
	if !ok {
		return session.State{}, session.ErrNotFound
	}
	return st, nil
}

func (s *memStore) Save(_ context.Context, id string, st session.State) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.states[id] = st
	return nil
}

func (s *memStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.states, id)
	return nil
}

func (s *memStore) Close() error { return nil }

func (s *memStore) state(id string) session.State {
	st, _ := s.Load(context.Background(), id)
	return st
}

func (s *memStore) tokens() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []string
	for _, st := range s.states {
		if st.Token != "" {
			out = append(out, st.Token)
		}
	}
	return out
}

// newTestEngine builds an engine with the real templates and a fixed
// session, standing in for SessionLoader and RouteGuard.
func newTestEngine(t *testing.T, store session.Store, state session.State) *gin.Engine {
	t.Helper()
	renderer, err := view.NewRenderer(printing.NewTemplateEngine())
	require.NoError(t, err)

	engine := gin.New()
	engine.UseRawPath = true
	engine.HTMLRender = renderer
	engine.Use(func(c *gin.Context) {
		c.Set(middleware.SessionKey, session.NewHandle(store, "sid", state))
		c.Set(middleware.ShellKey, state.HasCompany())
		c.Next()
	})
	return engine
}

func testBase() BaseHandler {
	b := NewBaseHandler(nil)
	b.now = func() time.Time { return testToday }
	return b
}

func do(engine *gin.Engine, method, target string, form url.Values) *httptest.ResponseRecorder {
	var req *http.Request
	if form != nil {
		req = httptest.NewRequest(method, target, strings.NewReader(form.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)
	return w
}

func newRequestWithCookie(t *testing.T, target, name, value string) *http.Request {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	req.AddCookie(&http.Cookie{Name: name, Value: value})
	return req
}

func serveRequest(engine *gin.Engine, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)
	return w
}

func flashOf(w *httptest.ResponseRecorder) string {
	for _, c := range w.Result().Cookies() {
		if c.Name == flashCookie {
			msg, _ := url.QueryUnescape(c.Value)
			return msg
		}
	}
	return ""
}

// authGateway mocks the pawn-api login endpoint
type authGateway struct{ mock.Mock }

func (m *authGateway) Login(ctx context.Context, sess *session.Handle, username, password string) (string, error) {
	args := m.Called(ctx, sess, username, password)
	return args.String(0), args.Error(1)
}

type staticTokens string

func (s staticTokens) DisplayName(string) string { return string(s) }

// companyGateway mocks the pawn-api company endpoints
type companyGateway struct{ mock.Mock }

func (m *companyGateway) ListCompanies(ctx context.Context, sess *session.Handle) ([]company.Company, error) {
	args := m.Called(ctx, sess)
	list, _ := args.Get(0).([]company.Company)
	return list, args.Error(1)
}

func (m *companyGateway) CreateCompany(ctx context.Context, sess *session.Handle, req company.CreateRequest) (*company.CreateResponse, error) {
	args := m.Called(ctx, sess, req)
	resp, _ := args.Get(0).(*company.CreateResponse)
	return resp, args.Error(1)
}

// customerGateway mocks the pawn-api customer endpoints
type customerGateway struct{ mock.Mock }

func (m *customerGateway) ListCustomers(ctx context.Context, sess *session.Handle, filter customer.Filter) ([]customer.RawRecord, error) {
	args := m.Called(ctx, sess, filter)
	list, _ := args.Get(0).([]customer.RawRecord)
	return list, args.Error(1)
}

func (m *customerGateway) GetCustomer(ctx context.Context, sess *session.Handle, accNo string) (*customer.RawRecord, error) {
	args := m.Called(ctx, sess, accNo)
	rec, _ := args.Get(0).(*customer.RawRecord)
	return rec, args.Error(1)
}

func (m *customerGateway) CreateCustomer(ctx context.Context, sess *session.Handle, req customer.CreateRequest) error {
	return m.Called(ctx, sess, req).Error(0)
}

func (m *customerGateway) UpdateCustomer(ctx context.Context, sess *session.Handle, accNo string, req customer.UpdateRequest) error {
	return m.Called(ctx, sess, accNo, req).Error(0)
}

func (m *customerGateway) CustomerHistory(ctx context.Context, sess *session.Handle, accNo string) ([]customer.HistoryEntry, error) {
	args := m.Called(ctx, sess, accNo)
	list, _ := args.Get(0).([]customer.HistoryEntry)
	return list, args.Error(1)
}

func (m *customerGateway) RecordInterestPayment(ctx context.Context, sess *session.Handle, accNo string, req loan.InterestPaymentRequest) error {
	return m.Called(ctx, sess, accNo, req).Error(0)
}

func (m *customerGateway) CloseLoan(ctx context.Context, sess *session.Handle, accNo string, req loan.CloseRequest) error {
	return m.Called(ctx, sess, accNo, req).Error(0)
}

func (m *customerGateway) CreateNewLoan(ctx context.Context, sess *session.Handle, fromAccNo string, req customer.NewLoanRequest) (*customer.NewLoanResponse, error) {
	args := m.Called(ctx, sess, fromAccNo, req)
	resp, _ := args.Get(0).(*customer.NewLoanResponse)
	return resp, args.Error(1)
}

// depositGateway mocks the pawn-api deposit endpoints
type depositGateway struct{ mock.Mock }

func (m *depositGateway) ListDeposits(ctx context.Context, sess *session.Handle, filter deposit.Filter) ([]deposit.Summary, error) {
	args := m.Called(ctx, sess, filter)
	list, _ := args.Get(0).([]deposit.Summary)
	return list, args.Error(1)
}

func (m *depositGateway) CreateDeposit(ctx context.Context, sess *session.Handle, req deposit.CreateRequest) (*deposit.CreateResponse, error) {
	args := m.Called(ctx, sess, req)
	resp, _ := args.Get(0).(*deposit.CreateResponse)
	return resp, args.Error(1)
}

func (m *depositGateway) GetDeposit(ctx context.Context, sess *session.Handle, id string) (*deposit.Detail, error) {
	args := m.Called(ctx, sess, id)
	d, _ := args.Get(0).(*deposit.Detail)
	return d, args.Error(1)
}

func (m *depositGateway) RecordDepositPayment(ctx context.Context, sess *session.Handle, id string, req deposit.PaymentRequest) (*deposit.Detail, error) {
	args := m.Called(ctx, sess, id, req)
	d, _ := args.Get(0).(*deposit.Detail)
	return d, args.Error(1)
}

// ledgerGateway mocks the pawn-api ledger endpoints
type ledgerGateway struct{ mock.Mock }

func (m *ledgerGateway) ListLedger(ctx context.Context, sess *session.Handle, filter ledger.Filter) ([]ledger.Entry, error) {
	args := m.Called(ctx, sess, filter)
	list, _ := args.Get(0).([]ledger.Entry)
	return list, args.Error(1)
}

func (m *ledgerGateway) CreateManualEntry(ctx context.Context, sess *session.Handle, req ledger.ManualEntryRequest) error {
	return m.Called(ctx, sess, req).Error(0)
}

func (m *ledgerGateway) ListVouchers(ctx context.Context, sess *session.Handle, filter ledger.VoucherFilter) ([]ledger.Voucher, error) {
	args := m.Called(ctx, sess, filter)
	list, _ := args.Get(0).([]ledger.Voucher)
	return list, args.Error(1)
}

func (m *ledgerGateway) CreateVoucher(ctx context.Context, sess *session.Handle, req ledger.VoucherRequest) error {
	return m.Called(ctx, sess, req).Error(0)
}

// schemeRepo is an in-memory scheme.Repository
type schemeRepo struct {
	mu      sync.Mutex
	schemes []scheme.Scheme
	err     error
}

func (r *schemeRepo) List(context.Context) ([]scheme.Scheme, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return nil, r.err
	}
	return append([]scheme.Scheme(nil), r.schemes...), nil
}

func (r *schemeRepo) Get(_ context.Context, id string) (*scheme.Scheme, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.schemes {
		if r.schemes[i].ID == id {
			s := r.schemes[i]
			return &s, nil
		}
	}
	return nil, scheme.ErrNotFound
}

func (r *schemeRepo) Save(_ context.Context, s *scheme.Scheme) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.schemes {
		if r.schemes[i].ID == s.ID {
			r.schemes[i] = *s
			return nil
		}
	}
	r.schemes = append(r.schemes, *s)
	return nil
}

func (r *schemeRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.schemes {
		if r.schemes[i].ID == id {
			r.schemes = append(r.schemes[:i], r.schemes[i+1:]...)
			return nil
		}
	}
	return scheme.ErrNotFound
}
