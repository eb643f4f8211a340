package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	ledgerapp "github.com/pawnfin/console/internal/application/ledger"
	"github.com/pawnfin/console/internal/domain/ledger"
	"github.com/pawnfin/console/internal/infrastructure/logger"
	"github.com/pawnfin/console/internal/interfaces/http/dto"
	"github.com/pawnfin/console/internal/interfaces/http/middleware"
	"github.com/pawnfin/console/internal/interfaces/http/view"
	"go.uber.org/zap"
)

// LedgerHandler serves the cash ledger and voucher pages
type LedgerHandler struct {
	BaseHandler
	ledgerService *ledgerapp.Service
}

// NewLedgerHandler creates a new ledger handler
func NewLedgerHandler(base BaseHandler, ledgerService *ledgerapp.Service) *LedgerHandler {
	return &LedgerHandler{BaseHandler: base, ledgerService: ledgerService}
}

type ledgerPage struct {
	Filter     ledger.Filter
	Sources    []ledger.Source
	Categories []ledger.Category
	Report     *ledgerapp.Report
	LoadError  string
	Manual     dto.ManualEntryForm
}

func (h *LedgerHandler) manualDefaults() dto.ManualEntryForm {
	m := ledger.NewManualEntry(h.today())
	return dto.ManualEntryForm{Date: m.Date, Direction: m.Direction, Category: m.Category}
}

// loadLedger fills the report for filter. It returns false when the
// response was already written.
func (h *LedgerHandler) loadLedger(c *gin.Context, data *ledgerPage) bool {
	report, err := h.ledgerService.Entries(c.Request.Context(), middleware.GetSession(c), data.Filter)
	if h.expired(c, err) {
		return false
	}
	data.Report = report
	data.LoadError = errorText(err)
	return true
}

// Ledger renders GET /ledger. Blank dates cover the last thirty days.
func (h *LedgerHandler) Ledger(c *gin.Context) {
	var q dto.LedgerQuery
	defaults := ledger.DefaultFilter(h.today())
	data := ledgerPage{
		Filter:     defaults,
		Sources:    ledger.Sources,
		Categories: ledger.Categories,
		Manual:     h.manualDefaults(),
	}
	p := h.page(c, "Ledger", "ledger", data)
	if err := bind(c, &q); err != nil {
		h.HandleError(c, err, view.PageLedger, p)
		return
	}
	data.Filter = q.Filter(defaults)

	if !h.loadLedger(c, &data) {
		return
	}
	p.Data = data
	h.render(c, http.StatusOK, view.PageLedger, p)
}

// AddManualEntry handles POST /ledger/manual
func (h *LedgerHandler) AddManualEntry(c *gin.Context) {
	var form dto.ManualEntryForm
	err := bind(c, &form)
	if err == nil {
		err = h.ledgerService.AddManualEntry(c.Request.Context(), middleware.GetSession(c), form.Entry())
	}
	if err == nil {
		logger.GetGinLogger(c).Info("Manual ledger entry added",
			zap.String("direction", form.Direction),
			zap.String("category", form.Category),
		)
		h.setFlash(c, "Entry saved.")
		h.redirect(c, "/ledger")
		return
	}
	if h.expired(c, err) {
		return
	}

	data := ledgerPage{
		Filter:     ledger.DefaultFilter(h.today()),
		Sources:    ledger.Sources,
		Categories: ledger.Categories,
		Manual:     form,
	}
	if !h.loadLedger(c, &data) {
		return
	}
	h.HandleError(c, err, view.PageLedger, h.page(c, "Ledger", "ledger", data))
}

type voucherPage struct {
	Filter    ledger.VoucherFilter
	List      *ledgerapp.VoucherList
	Form      dto.VoucherForm
	LoadError string
}

func (h *LedgerHandler) loadVouchers(c *gin.Context, data *voucherPage) bool {
	list, err := h.ledgerService.Vouchers(c.Request.Context(), middleware.GetSession(c), data.Filter)
	if h.expired(c, err) {
		return false
	}
	data.List = list
	data.LoadError = errorText(err)
	return true
}

// Vouchers renders GET /vouchers
func (h *LedgerHandler) Vouchers(c *gin.Context) {
	var q dto.VoucherQuery
	defaults := ledger.DefaultFilter(h.today())
	data := voucherPage{
		Filter: dto.VoucherQuery{}.Filter(defaults),
		Form:   dto.VoucherForm{Date: defaults.To},
	}
	p := h.page(c, "Vouchers", "vouchers", data)
	if err := bind(c, &q); err != nil {
		h.HandleError(c, err, view.PageVouchers, p)
		return
	}
	data.Filter = q.Filter(defaults)

	if !h.loadVouchers(c, &data) {
		return
	}
	p.Data = data
	h.render(c, http.StatusOK, view.PageVouchers, p)
}

// AddVoucher handles POST /vouchers
func (h *LedgerHandler) AddVoucher(c *gin.Context) {
	var form dto.VoucherForm
	err := bind(c, &form)
	if err == nil {
		err = h.ledgerService.AddVoucher(c.Request.Context(), middleware.GetSession(c), form.Draft())
	}
	if err == nil {
		logger.GetGinLogger(c).Info("Voucher added", zap.String("ref_no", form.RefNo))
		h.setFlash(c, ledger.SavedVoucherMessage)
		h.redirect(c, "/vouchers")
		return
	}
	if h.expired(c, err) {
		return
	}

	data := voucherPage{
		Filter: dto.VoucherQuery{}.Filter(ledger.DefaultFilter(h.today())),
		Form:   form,
	}
	if !h.loadVouchers(c, &data) {
		return
	}
	h.HandleError(c, err, view.PageVouchers, h.page(c, "Vouchers", "vouchers", data))
}
