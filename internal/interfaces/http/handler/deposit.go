package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	depositapp "github.com/pawnfin/console/internal/application/deposit"
	"github.com/pawnfin/console/internal/domain/deposit"
	"github.com/pawnfin/console/internal/infrastructure/logger"
	"github.com/pawnfin/console/internal/interfaces/http/dto"
	"github.com/pawnfin/console/internal/interfaces/http/middleware"
	"github.com/pawnfin/console/internal/interfaces/http/view"
	"go.uber.org/zap"
)

// DepositHandler serves the financier deposit pages
type DepositHandler struct {
	BaseHandler
	depositService *depositapp.Service
}

// NewDepositHandler creates a new deposit handler
func NewDepositHandler(base BaseHandler, depositService *depositapp.Service) *DepositHandler {
	return &DepositHandler{BaseHandler: base, depositService: depositService}
}

func depositPath(id string) string {
	return "/deposits/" + id
}

type depositListPage struct {
	Query     dto.DepositQuery
	Filter    deposit.Filter
	Statuses  []deposit.Status
	Result    *depositapp.ListResult
	LoadError string
}

// List renders GET /deposits
func (h *DepositHandler) List(c *gin.Context) {
	var q dto.DepositQuery
	data := depositListPage{Statuses: []deposit.Status{deposit.StatusActive, deposit.StatusClosed}}
	p := h.page(c, "Deposits", "deposits", data)
	if err := bind(c, &q); err != nil {
		h.HandleError(c, err, view.PageDeposits, p)
		return
	}
	data.Query = q
	data.Filter = q.Filter()

	result, err := h.depositService.List(c.Request.Context(), middleware.GetSession(c), data.Filter)
	if h.expired(c, err) {
		return
	}
	data.Result = result
	data.LoadError = errorText(err)
	p.Data = data
	h.render(c, http.StatusOK, view.PageDeposits, p)
}

type depositNewPage struct {
	Form       dto.DepositForm
	MonthlyPct string
	YearlyPct  string
}

func newDepositPage(form dto.DepositForm) depositNewPage {
	d := form.Draft()
	return depositNewPage{Form: form, MonthlyPct: d.MonthlyPct, YearlyPct: d.YearlyPct}
}

// NewForm renders GET /deposits/new
func (h *DepositHandler) NewForm(c *gin.Context) {
	form := dto.DepositForm{StartDate: h.today().Format(time.DateOnly)}
	h.render(c, http.StatusOK, view.PageDepositNew, h.page(c, "New Deposit", "deposit-new", newDepositPage(form)))
}

// Create handles POST /deposits/new
func (h *DepositHandler) Create(c *gin.Context) {
	var form dto.DepositForm
	bindErr := bind(c, &form)
	p := h.page(c, "New Deposit", "deposit-new", newDepositPage(form))
	if bindErr != nil {
		h.HandleError(c, bindErr, view.PageDepositNew, p)
		return
	}

	id, err := h.depositService.Create(c.Request.Context(), middleware.GetSession(c), form.Draft())
	if err != nil {
		h.HandleError(c, err, view.PageDepositNew, p)
		return
	}
	logger.GetGinLogger(c).Info("Deposit created", zap.String("deposit_id", id))
	h.setFlash(c, "Deposit saved.")
	h.redirect(c, depositPath(id))
}

type depositDetailPage struct {
	Detail    *deposit.Detail
	LoadError string
	Form      dto.DepositPaymentForm
}

// Detail renders GET /deposits/:id
func (h *DepositHandler) Detail(c *gin.Context) {
	data := depositDetailPage{Form: h.paymentDefaults()}
	p := h.page(c, "Deposit", "deposits", data)

	detail, err := h.depositService.Get(c.Request.Context(), middleware.GetSession(c), c.Param("id"))
	if err != nil {
		h.HandleError(c, err, view.PageDepositDetail, p)
		return
	}
	data.Detail = detail
	p.Data = data
	h.render(c, http.StatusOK, view.PageDepositDetail, p)
}

func (h *DepositHandler) paymentDefaults() dto.DepositPaymentForm {
	return dto.DepositPaymentForm{ToDate: h.today().Format(time.DateOnly)}
}

// RecordPayment handles POST /deposits/:id/payments. The backend returns the
// refreshed deposit, which is shown after the redirect.
func (h *DepositHandler) RecordPayment(c *gin.Context) {
	ctx := c.Request.Context()
	sess := middleware.GetSession(c)
	id := c.Param("id")

	var form dto.DepositPaymentForm
	err := bind(c, &form)
	if err == nil {
		_, err = h.depositService.RecordPayment(ctx, sess, id, form.Input())
	}
	if err == nil {
		logger.GetGinLogger(c).Info("Deposit payment saved", zap.String("deposit_id", id))
		h.setFlash(c, "Payment saved.")
		h.redirect(c, depositPath(id))
		return
	}
	if h.expired(c, err) {
		return
	}

	data := depositDetailPage{Form: form}
	detail, loadErr := h.depositService.Get(ctx, sess, id)
	if h.expired(c, loadErr) {
		return
	}
	data.Detail = detail
	data.LoadError = errorText(loadErr)
	h.HandleError(c, err, view.PageDepositDetail, h.page(c, "Deposit", "deposits", data))
}
