package handler

import (
	"net/http"
	"net/url"
	"testing"

	"github.com/gin-gonic/gin"
	depositapp "github.com/pawnfin/console/internal/application/deposit"
	"github.com/pawnfin/console/internal/domain/deposit"
	"github.com/pawnfin/console/internal/domain/shared"
	"github.com/pawnfin/console/internal/infrastructure/pawnapi"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func setupDeposit(t *testing.T) (*depositGateway, *gin.Engine) {
	t.Helper()
	store := newMemStore()
	_ = store.Save(t.Context(), "sid", readyState)
	gw := new(depositGateway)
	h := NewDepositHandler(testBase(), depositapp.NewService(gw))

	engine := newTestEngine(t, store, readyState)
	engine.GET("/deposits", h.List)
	engine.GET("/deposits/new", h.NewForm)
	engine.POST("/deposits/new", h.Create)
	engine.GET("/deposits/:id", h.Detail)
	engine.POST("/deposits/:id/payments", h.RecordPayment)
	return gw, engine
}

func amount(v int64) shared.Number {
	return shared.NewNumber(decimal.NewFromInt(v))
}

func testDepositDetail() *deposit.Detail {
	return &deposit.Detail{
		ID:        "d1",
		Financier: deposit.Financier{Name: "Kumar Chits", Phone: "9000011111"},
		Deposit: deposit.Terms{
			StartDate:      "2024-04-01",
			Status:         deposit.StatusActive,
			OriginalAmount: amount(200000),
			Outstanding:    amount(150000),
		},
	}
}

func TestDepositHandler_List(t *testing.T) {
	t.Run("rows and total outstanding", func(t *testing.T) {
		gw, engine := setupDeposit(t)
		gw.On("ListDeposits", mock.Anything, mock.Anything, deposit.Filter{Name: "kumar", Status: deposit.StatusActive}).
			Return([]deposit.Summary{
				{ID: "d1", FinancierName: "Kumar Chits", Status: deposit.StatusActive, Outstanding: amount(150000)},
				{ID: "d2", FinancierName: "Kumar Traders", Status: deposit.StatusActive, Outstanding: amount(50000)},
			}, nil)

		w := do(engine, http.MethodGet, "/deposits?name=+kumar+&status=ACTIVE", nil)

		assert.Equal(t, http.StatusOK, w.Code)
		body := w.Body.String()
		assert.Contains(t, body, "Kumar Chits")
		assert.Contains(t, body, "Kumar Traders")
		assert.Contains(t, body, "₹2,00,000")
		gw.AssertExpectations(t)
	})

	t.Run("list failure is shown in place", func(t *testing.T) {
		gw, engine := setupDeposit(t)
		gw.On("ListDeposits", mock.Anything, mock.Anything, mock.Anything).
			Return(nil, &pawnapi.APIError{Status: http.StatusInternalServerError, Message: "deposits unavailable"})

		w := do(engine, http.MethodGet, "/deposits", nil)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "deposits unavailable")
	})
}

func TestDepositHandler_NewForm(t *testing.T) {
	_, engine := setupDeposit(t)

	w := do(engine, http.MethodGet, "/deposits/new", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `value="2024-06-15"`)
}

func TestDepositHandler_Create(t *testing.T) {
	valid := url.Values{
		"financierName":  {"Kumar Chits"},
		"startDate":      {"2024-06-01"},
		"originalAmount": {"200000.75"},
		"monthlyPct":     {"1"},
		"rateEdited":     {"monthly"},
	}

	t.Run("saves and opens the deposit", func(t *testing.T) {
		gw, engine := setupDeposit(t)
		gw.On("CreateDeposit", mock.Anything, mock.Anything, mock.MatchedBy(func(req deposit.CreateRequest) bool {
			return req.Financier.Name == "Kumar Chits" && req.Deposit.OriginalAmount == 200000 && req.Deposit.YearlyPct == 12
		})).Return(&deposit.CreateResponse{OK: true, ID: "d9"}, nil)

		w := do(engine, http.MethodPost, "/deposits/new", valid)

		assert.Equal(t, http.StatusSeeOther, w.Code)
		assert.Equal(t, "/deposits/d9", w.Header().Get("Location"))
		assert.Equal(t, "Deposit saved.", flashOf(w))
		gw.AssertExpectations(t)
	})

	t.Run("financier name is required", func(t *testing.T) {
		gw, engine := setupDeposit(t)
		form := url.Values{"startDate": {"2024-06-01"}, "originalAmount": {"1000"}}

		w := do(engine, http.MethodPost, "/deposits/new", form)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), "Financier name is required")
		gw.AssertNotCalled(t, "CreateDeposit", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("backend answer without id", func(t *testing.T) {
		gw, engine := setupDeposit(t)
		gw.On("CreateDeposit", mock.Anything, mock.Anything, mock.Anything).
			Return(&deposit.CreateResponse{OK: false, Message: "Reference already used"}, nil)

		w := do(engine, http.MethodPost, "/deposits/new", valid)

		assert.Contains(t, w.Body.String(), "Reference already used")
		assert.Empty(t, flashOf(w))
	})
}

func TestDepositHandler_Detail(t *testing.T) {
	t.Run("shows the deposit", func(t *testing.T) {
		gw, engine := setupDeposit(t)
		gw.On("GetDeposit", mock.Anything, mock.Anything, "d1").Return(testDepositDetail(), nil)

		w := do(engine, http.MethodGet, "/deposits/d1", nil)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "Kumar Chits")
		assert.Contains(t, w.Body.String(), "₹1,50,000")
	})

	t.Run("unknown deposit", func(t *testing.T) {
		gw, engine := setupDeposit(t)
		gw.On("GetDeposit", mock.Anything, mock.Anything, "nope").
			Return(nil, &pawnapi.APIError{Status: http.StatusNotFound, Message: "Deposit not found"})

		w := do(engine, http.MethodGet, "/deposits/nope", nil)

		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.Contains(t, w.Body.String(), "Deposit not found")
	})
}

func TestDepositHandler_RecordPayment(t *testing.T) {
	t.Run("saves and returns to the deposit", func(t *testing.T) {
		gw, engine := setupDeposit(t)
		gw.On("RecordDepositPayment", mock.Anything, mock.Anything, "d1", mock.MatchedBy(func(req deposit.PaymentRequest) bool {
			return req.Principal == 10000 && req.InterestAmount == nil && req.Date == "2024-06-15"
		})).Return(testDepositDetail(), nil)

		w := do(engine, http.MethodPost, "/deposits/d1/payments", url.Values{
			"fromDate": {"2024-05-01"}, "toDate": {"2024-06-15"}, "principal": {"10000"},
		})

		assert.Equal(t, http.StatusSeeOther, w.Code)
		assert.Equal(t, "/deposits/d1", w.Header().Get("Location"))
		assert.Equal(t, "Payment saved.", flashOf(w))
		gw.AssertExpectations(t)
	})

	t.Run("rejection re-renders the deposit", func(t *testing.T) {
		gw, engine := setupDeposit(t)
		gw.On("RecordDepositPayment", mock.Anything, mock.Anything, "d1", mock.Anything).
			Return(nil, &pawnapi.APIError{Status: http.StatusBadRequest, Message: "Principal exceeds outstanding"})
		gw.On("GetDeposit", mock.Anything, mock.Anything, "d1").Return(testDepositDetail(), nil)

		w := do(engine, http.MethodPost, "/deposits/d1/payments", url.Values{"principal": {"999999"}})

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), "Principal exceeds outstanding")
		assert.Contains(t, w.Body.String(), "Kumar Chits")
	})

	t.Run("bad amount never reaches the backend", func(t *testing.T) {
		gw, engine := setupDeposit(t)
		gw.On("GetDeposit", mock.Anything, mock.Anything, "d1").Return(testDepositDetail(), nil)

		w := do(engine, http.MethodPost, "/deposits/d1/payments", url.Values{"principal": {"ten"}})

		assert.Equal(t, http.StatusBadRequest, w.Code)
		gw.AssertNotCalled(t, "RecordDepositPayment", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})
}
