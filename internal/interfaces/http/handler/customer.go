package handler

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	customerapp "github.com/pawnfin/console/internal/application/customer"
	schemeapp "github.com/pawnfin/console/internal/application/scheme"
	"github.com/pawnfin/console/internal/domain/customer"
	"github.com/pawnfin/console/internal/domain/loan"
	"github.com/pawnfin/console/internal/domain/shared"
	"github.com/pawnfin/console/internal/infrastructure/logger"
	"github.com/pawnfin/console/internal/infrastructure/pawnapi"
	"github.com/pawnfin/console/internal/infrastructure/printing"
	"github.com/pawnfin/console/internal/interfaces/http/dto"
	"github.com/pawnfin/console/internal/interfaces/http/middleware"
	"github.com/pawnfin/console/internal/interfaces/http/view"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// TicketPrinter renders a loan ticket to PDF
type TicketPrinter interface {
	Print(ctx context.Context, data printing.TicketData) ([]byte, error)
}

// CustomerHandler serves customer intake, search, detail and loan pages
type CustomerHandler struct {
	BaseHandler
	customerService *customerapp.Service
	schemeService   *schemeapp.Service
	printer         TicketPrinter
}

// NewCustomerHandler creates a new customer handler. printer may be nil when
// ticket printing is disabled.
func NewCustomerHandler(base BaseHandler, customerService *customerapp.Service, schemeService *schemeapp.Service, printer TicketPrinter) *CustomerHandler {
	return &CustomerHandler{
		BaseHandler:     base,
		customerService: customerService,
		schemeService:   schemeService,
		printer:         printer,
	}
}

// customerPath is the detail page URL of accNo. Account numbers contain "/".
func customerPath(accNo string) string {
	return "/customers/" + url.PathEscape(accNo)
}

// loanTermsView feeds the loan block shared by intake and new-loan pages.
type loanTermsView struct {
	Form      dto.LoanTermsForm
	Terms     customer.LoanTerms
	Schemes   []string
	LoanTypes []string
	Jewels    []loan.Jewel
	Weights   loan.Weights
}

func (h *CustomerHandler) loanTerms(ctx context.Context, form dto.LoanTermsForm, rows []loan.Jewel) loanTermsView {
	names, err := h.schemeService.Names(ctx)
	if err != nil {
		logger.L(ctx).Warn("scheme list unavailable", zap.Error(err))
	}
	types := make([]string, 0, len(loan.Types))
	for _, t := range loan.Types {
		types = append(types, string(t))
	}
	terms := form.Terms()
	terms.Jewels = rows
	return loanTermsView{
		Form:      form,
		Terms:     terms,
		Schemes:   names,
		LoanTypes: types,
		Jewels:    rows,
		Weights:   loan.TotalWeights(rows),
	}
}

// editAction applies a non-saving form action to the loan block. It reports
// false for save.
func (h *CustomerHandler) editAction(ctx context.Context, action string, form *dto.LoanTermsForm) ([]loan.Jewel, bool) {
	rows := form.Rows()
	switch {
	case form.Remove != "":
		return loan.RemoveJewel(rows, rowID(form.Remove)), true
	case action == dto.ActionAddJewel:
		return loan.AppendJewel(rows), true
	case action == dto.ActionSyncRates:
		h.applySchemeRate(ctx, form)
		return rows, true
	}
	return rows, false
}

// applySchemeRate fills the monthly rate from the chosen scheme.
func (h *CustomerHandler) applySchemeRate(ctx context.Context, form *dto.LoanTermsForm) {
	monthly, ok, err := h.schemeService.DefaultRate(ctx, form.Scheme)
	if err != nil {
		logger.L(ctx).Warn("scheme rate unavailable", zap.String("scheme", form.Scheme), zap.Error(err))
		return
	}
	if ok {
		form.MonthlyPct = monthly.String()
		form.RateEdited = string(loan.RateMonthly)
	}
}

type customerNewPage struct {
	Form dto.CustomerForm
	Loan loanTermsView
}

// NewForm renders GET /customers/new with today's date and the next account number.
func (h *CustomerHandler) NewForm(c *gin.Context) {
	ctx := c.Request.Context()
	today := h.today()
	accNo, err := h.customerService.SuggestAccountNumber(ctx, middleware.GetSession(c), today)
	if err != nil {
		h.HandleError(c, err, view.PageError, h.page(c, "New Customer", "customer-new", nil))
		return
	}
	form := dto.CustomerForm{
		Date:  today.Format(time.DateOnly),
		AccNo: accNo,
	}
	data := customerNewPage{Form: form, Loan: h.loanTerms(ctx, form.LoanTermsForm, loan.NewJewelRows())}
	h.render(c, http.StatusOK, view.PageCustomerNew, h.page(c, "New Customer", "customer-new", data))
}

// Create handles POST /customers/new
func (h *CustomerHandler) Create(c *gin.Context) {
	ctx := c.Request.Context()
	var form dto.CustomerForm
	bindErr := bind(c, &form)

	rows, handled := h.editAction(ctx, form.Action, &form.LoanTermsForm)
	data := customerNewPage{Form: form, Loan: h.loanTerms(ctx, form.LoanTermsForm, rows)}
	p := h.page(c, "New Customer", "customer-new", data)
	if bindErr != nil {
		h.HandleError(c, bindErr, view.PageCustomerNew, p)
		return
	}
	if handled {
		h.render(c, http.StatusOK, view.PageCustomerNew, p)
		return
	}

	photo, err := uploadedPhoto(c)
	if err != nil {
		h.HandleError(c, err, view.PageCustomerNew, p)
		return
	}
	if photo != "" {
		data.Form.PhotoDataURL = photo
		p.Data = data
	}

	accNo, err := h.customerService.Create(ctx, middleware.GetSession(c), form.Intake(photo))
	if err != nil {
		h.HandleError(c, err, view.PageCustomerNew, p)
		return
	}
	logger.GetGinLogger(c).Info("Customer created", zap.String("acc_no", accNo))
	h.setFlash(c, "Customer saved. Account "+accNo+".")
	h.redirect(c, customerPath(accNo))
}

// AccountNumber answers GET /api/account-number?date=YYYY-MM-DD
func (h *CustomerHandler) AccountNumber(c *gin.Context) {
	date, err := time.Parse(time.DateOnly, c.Query("date"))
	if err != nil {
		date = h.today()
	}
	accNo, err := h.customerService.SuggestAccountNumber(c.Request.Context(), middleware.GetSession(c), date)
	switch {
	case errors.Is(err, pawnapi.ErrSessionExpired):
		h.ErrorWithCode(c, dto.ErrCodeSessionExpired, err.Error())
		return
	case errors.Is(err, context.Canceled):
		c.AbortWithStatus(StatusClientClosed)
		return
	case err != nil:
		h.ErrorWithCode(c, dto.ErrCodeInternal, "An unexpected error occurred")
		return
	}
	h.Success(c, dto.AccountNumberResponse{AccNo: accNo})
}

type customerSearchPage struct {
	Query     dto.CustomerSearchQuery
	Rows      []customer.Summary
	LoadError string
}

// Search renders GET /customers/search: every customer, filtered by the query.
func (h *CustomerHandler) Search(c *gin.Context) {
	var q dto.CustomerSearchQuery
	data := customerSearchPage{}
	p := h.page(c, "Search Customer", "customer-search", data)
	if err := bind(c, &q); err != nil {
		h.HandleError(c, err, view.PageCustomerSearch, p)
		return
	}
	data.Query = q

	rows, err := h.customerService.Search(c.Request.Context(), middleware.GetSession(c), q.Filter())
	if h.expired(c, err) {
		return
	}
	data.Rows = rows
	data.LoadError = errorText(err)
	p.Data = data
	h.render(c, http.StatusOK, view.PageCustomerSearch, p)
}

type customerDetailPage struct {
	AccNo          string
	Record         *customer.Record
	RecordError    string
	History        []customer.HistoryEntry
	HistoryError   string
	Profile        dto.ProfileForm
	Payment        dto.PaymentForm
	Close          dto.CloseForm
	Outstanding    decimal.Decimal
	Pending        decimal.Decimal
	MonthlyDisplay int64
	Weights        loan.Weights
	PrintEnabled   bool
}

// detail loads the detail page. It returns false when the response was
// already written.
func (h *CustomerHandler) detail(c *gin.Context, accNo string) (view.Page, *customerDetailPage, int, bool) {
	d := h.customerService.Load(c.Request.Context(), middleware.GetSession(c), accNo)
	if h.expired(c, d.RecordErr) || h.expired(c, d.HistoryErr) {
		return view.Page{}, nil, 0, false
	}

	today := h.today().Format(time.DateOnly)
	data := &customerDetailPage{
		AccNo:        accNo,
		Record:       d.Record,
		RecordError:  errorText(d.RecordErr),
		History:      d.History,
		HistoryError: errorText(d.HistoryErr),
		Payment:      dto.PaymentForm{ToDate: today},
		Close:        dto.CloseForm{Date: today},
		PrintEnabled: h.printer != nil,
	}
	status := http.StatusOK
	if d.RecordErr != nil {
		status = http.StatusBadGateway
		if pawnapi.IsNotFound(d.RecordErr) {
			status = http.StatusNotFound
		}
	}
	if rec := d.Record; rec != nil {
		data.Profile = dto.ProfileFormOf(rec.Profile)
		data.Outstanding = rec.OutstandingPrincipal()
		data.Pending = rec.PendingInterest()
		data.MonthlyDisplay = rec.MonthlyInterestDisplay()
		data.Weights = loan.TotalWeights(rec.Jewels)
	}
	return h.page(c, "Customer "+accNo, "customer-search", data), data, status, true
}

// Detail renders GET /customers/:accNo
func (h *CustomerHandler) Detail(c *gin.Context) {
	p, _, status, ok := h.detail(c, c.Param("accNo"))
	if !ok {
		return
	}
	h.render(c, status, view.PageCustomerDetail, p)
}

// Update handles POST /customers/:accNo/edit
func (h *CustomerHandler) Update(c *gin.Context) {
	accNo := c.Param("accNo")
	var form dto.ProfileForm
	bindErr := bind(c, &form)

	h.afterDetailPost(c, accNo, "Customer details updated.", func(data *customerDetailPage) error {
		data.Profile = form
		if bindErr != nil {
			return bindErr
		}
		return h.customerService.Update(c.Request.Context(), middleware.GetSession(c), accNo, customer.Edit{Profile: form.Profile()})
	})
}

// RecordPayment handles POST /customers/:accNo/payments
func (h *CustomerHandler) RecordPayment(c *gin.Context) {
	accNo := c.Param("accNo")
	var form dto.PaymentForm
	bindErr := bind(c, &form)

	h.afterDetailPost(c, accNo, "Payment saved.", func(data *customerDetailPage) error {
		data.Payment = form
		if bindErr != nil {
			return bindErr
		}
		return h.customerService.RecordPayment(c.Request.Context(), middleware.GetSession(c), accNo, form.Input())
	})
}

// Close handles POST /customers/:accNo/close
func (h *CustomerHandler) Close(c *gin.Context) {
	accNo := c.Param("accNo")
	var form dto.CloseForm
	bindErr := bind(c, &form)

	h.afterDetailPost(c, accNo, "Loan closed.", func(data *customerDetailPage) error {
		data.Close = form
		if bindErr != nil {
			return bindErr
		}
		return h.customerService.Close(c.Request.Context(), middleware.GetSession(c), accNo, form.Input())
	})
}

// afterDetailPost runs a detail-page action. Success redirects back to the
// page with flash; a failure re-renders it with the form as entered.
func (h *CustomerHandler) afterDetailPost(c *gin.Context, accNo, flash string, action func(*customerDetailPage) error) {
	var data customerDetailPage
	err := action(&data)
	if err == nil {
		logger.GetGinLogger(c).Info(flash, zap.String("acc_no", accNo))
		h.setFlash(c, flash)
		h.redirect(c, customerPath(accNo))
		return
	}
	if h.expired(c, err) {
		return
	}

	p, loaded, _, ok := h.detail(c, accNo)
	if !ok {
		return
	}
	if data.Profile != (dto.ProfileForm{}) {
		loaded.Profile = data.Profile
	}
	if data.Payment != (dto.PaymentForm{}) {
		loaded.Payment = data.Payment
	}
	if data.Close != (dto.CloseForm{}) {
		loaded.Close = data.Close
	}
	h.HandleError(c, err, view.PageCustomerDetail, p)
}

type newLoanPage struct {
	Record *customer.Record
	Form   dto.NewLoanForm
	Loan   loanTermsView
}

// NewLoanForm renders GET /customers/:accNo/new-loan, prefilled from the
// current loan.
func (h *CustomerHandler) NewLoanForm(c *gin.Context) {
	ctx := c.Request.Context()
	sess := middleware.GetSession(c)
	rec, err := h.customerService.Get(ctx, sess, c.Param("accNo"))
	if err != nil {
		h.HandleError(c, err, view.PageError, h.page(c, "Customer", "customer-search", nil))
		return
	}

	today := h.today()
	newAccNo, err := h.customerService.SuggestAccountNumber(ctx, sess, today)
	if err != nil {
		h.HandleError(c, err, view.PageError, h.page(c, "New loan", "customer-search", nil))
		return
	}
	form := dto.NewLoanForm{
		Date:     today.Format(time.DateOnly),
		NewAccNo: newAccNo,
		LoanTermsForm: dto.LoanTermsForm{
			Company:  rec.Loan.Company,
			Scheme:   rec.Loan.Scheme,
			LoanType: loan.TypeLabel(rec.Loan.Type),
		},
	}
	if form.Scheme != "" {
		h.applySchemeRate(ctx, &form.LoanTermsForm)
	}
	data := newLoanPage{Record: rec, Form: form, Loan: h.loanTerms(ctx, form.LoanTermsForm, loan.NewJewelRows())}
	h.render(c, http.StatusOK, view.PageNewLoan, h.page(c, "New loan", "customer-search", data))
}

// NewLoan handles POST /customers/:accNo/new-loan
func (h *CustomerHandler) NewLoan(c *gin.Context) {
	ctx := c.Request.Context()
	sess := middleware.GetSession(c)
	fromAccNo := c.Param("accNo")

	rec, err := h.customerService.Get(ctx, sess, fromAccNo)
	if err != nil {
		h.HandleError(c, err, view.PageError, h.page(c, "Customer", "customer-search", nil))
		return
	}

	var form dto.NewLoanForm
	bindErr := bind(c, &form)
	rows, handled := h.editAction(ctx, form.Action, &form.LoanTermsForm)
	data := newLoanPage{Record: rec, Form: form, Loan: h.loanTerms(ctx, form.LoanTermsForm, rows)}
	p := h.page(c, "New loan", "customer-search", data)
	if bindErr != nil {
		h.HandleError(c, bindErr, view.PageNewLoan, p)
		return
	}
	if handled {
		h.render(c, http.StatusOK, view.PageNewLoan, p)
		return
	}

	photo, err := uploadedPhoto(c)
	if err != nil {
		h.HandleError(c, err, view.PageNewLoan, p)
		return
	}
	if photo != "" {
		data.Form.PhotoDataURL = photo
		p.Data = data
	}

	accNo, err := h.customerService.NewLoan(ctx, sess, fromAccNo, form.Intake(photo))
	if err != nil {
		h.HandleError(c, err, view.PageNewLoan, p)
		return
	}
	logger.GetGinLogger(c).Info("Loan created", zap.String("acc_no", accNo), zap.String("from_acc_no", fromAccNo))
	h.setFlash(c, "New loan created. Account "+accNo+".")
	h.redirect(c, customerPath(accNo))
}

// Ticket serves GET /customers/:accNo/ticket.pdf
func (h *CustomerHandler) Ticket(c *gin.Context) {
	ctx := c.Request.Context()
	sess := middleware.GetSession(c)
	errPage := h.page(c, "Loan ticket", "customer-search", nil)

	if h.printer == nil {
		h.HandleError(c, printingUnavailable(), view.PageError, errPage)
		return
	}
	rec, err := h.customerService.Get(ctx, sess, c.Param("accNo"))
	if err != nil {
		h.HandleError(c, err, view.PageError, errPage)
		return
	}
	pdf, err := h.printer.Print(ctx, printing.TicketData{
		Record:      rec,
		CompanyName: sess.State().CompanyLabel(),
		PrintedAt:   h.today(),
	})
	if err != nil {
		if errors.Is(err, printing.ErrPrintingDisabled) {
			err = printingUnavailable()
		}
		h.HandleError(c, err, view.PageError, errPage)
		return
	}

	name := "ticket-" + strings.ReplaceAll(rec.AccNo, "/", "-") + ".pdf"
	c.Header("Content-Disposition", `inline; filename="`+name+`"`)
	c.Data(http.StatusOK, "application/pdf", pdf)
}

type closeLoanPage struct {
	Query       dto.CustomerSearchQuery
	Rows        []customer.Summary
	Searched    bool
	Record      *customer.Record
	Outstanding decimal.Decimal
	Pending     decimal.Decimal
	Form        dto.CloseForm
	LoadError   string
}

// CloseLoanPage renders GET /close-loan. Name or phone searches the
// backend; an account number loads that account for closing.
func (h *CustomerHandler) CloseLoanPage(c *gin.Context) {
	var q dto.CustomerSearchQuery
	p := h.page(c, "Close Loan", "close-loan", &closeLoanPage{})
	if err := bind(c, &q); err != nil {
		h.HandleError(c, err, view.PageCloseLoan, p)
		return
	}
	data, ok := h.closeLoan(c, q, dto.CloseForm{AccNo: q.AccNo, Date: h.today().Format(time.DateOnly)})
	if !ok {
		return
	}
	p.Data = data
	h.render(c, http.StatusOK, view.PageCloseLoan, p)
}

func (h *CustomerHandler) closeLoan(c *gin.Context, q dto.CustomerSearchQuery, form dto.CloseForm) (*closeLoanPage, bool) {
	ctx := c.Request.Context()
	sess := middleware.GetSession(c)
	data := &closeLoanPage{Query: q, Form: form}

	if strings.TrimSpace(q.Name) != "" || strings.TrimSpace(q.Phone) != "" {
		data.Searched = true
		rows, err := h.customerService.Lookup(ctx, sess, q.Filter())
		if h.expired(c, err) {
			return nil, false
		}
		data.Rows = rows
		data.LoadError = errorText(err)
	}
	if accNo := strings.TrimSpace(q.AccNo); accNo != "" {
		rec, err := h.customerService.Get(ctx, sess, accNo)
		if h.expired(c, err) {
			return nil, false
		}
		if err != nil {
			data.LoadError = errorText(err)
		} else {
			data.Record = rec
			data.Outstanding = rec.OutstandingPrincipal()
			data.Pending = rec.PendingInterest()
			data.Form.AccNo = rec.AccNo
		}
	}
	return data, true
}

// CloseLoan handles POST /close-loan
func (h *CustomerHandler) CloseLoan(c *gin.Context) {
	var form dto.CloseForm
	bindErr := bind(c, &form)

	err := bindErr
	if err == nil {
		err = h.customerService.Close(c.Request.Context(), middleware.GetSession(c), form.AccNo, form.Input())
	}
	if err == nil {
		logger.GetGinLogger(c).Info("Loan closed", zap.String("acc_no", form.AccNo))
		h.setFlash(c, "Loan "+form.AccNo+" closed.")
		h.redirect(c, "/close-loan?accNo="+url.QueryEscape(form.AccNo))
		return
	}
	if h.expired(c, err) {
		return
	}

	data, ok := h.closeLoan(c, dto.CustomerSearchQuery{AccNo: form.AccNo}, form)
	if !ok {
		return
	}
	h.HandleError(c, err, view.PageCloseLoan, h.page(c, "Close Loan", "close-loan", data))
}

// rowID parses a posted row id; garbage matches no row.
func rowID(s string) int {
	id, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return -1
	}
	return id
}

func printingUnavailable() error {
	return shared.NewDomainError("SERVICE_UNAVAILABLE", "Ticket printing is not enabled.")
}
