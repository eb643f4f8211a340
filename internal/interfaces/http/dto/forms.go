package dto

import (
	"strconv"
	"strings"

	"github.com/pawnfin/console/internal/domain/customer"
	"github.com/pawnfin/console/internal/domain/deposit"
	"github.com/pawnfin/console/internal/domain/ledger"
	"github.com/pawnfin/console/internal/domain/loan"
	"github.com/pawnfin/console/internal/domain/scheme"
)

// Submit actions shared by the editable forms. Buttons post one of these in
// the "action" field; anything else means save.
const (
	ActionSave        = "save"
	ActionAddJewel    = "add-jewel"
	ActionRemoveJewel = "remove-jewel"
	ActionAddRow      = "add-row"
	ActionRemoveRow   = "remove-row"
	ActionSelect      = "select"
	ActionCreate      = "create"
	ActionSyncRates   = "sync-rates"
)

// LoginForm is POST /login
type LoginForm struct {
	Username string `form:"username" binding:"max=100"`
	Password string `form:"password" binding:"max=200"`
}

// CompanyForm is POST /company and POST /companies
type CompanyForm struct {
	Action string `form:"action" binding:"omitempty,oneof=select create"`
	ID     string `form:"id" binding:"max=100"`
	Name   string `form:"name" binding:"max=120"`
}

// ProfileForm is the customer block shared by intake and edit
type ProfileForm struct {
	Name     string `form:"name" binding:"max=120"`
	Address  string `form:"address" binding:"max=500"`
	Relative string `form:"relative" binding:"max=120"`
	Area     string `form:"area" binding:"max=120"`
	Phone    string `form:"phone" binding:"max=20"`
	Phone2   string `form:"phone2" binding:"max=20"`
	Aadhar   string `form:"aadhar" binding:"max=20"`
	DOB      string `form:"dob" binding:"omitempty,datetime=2006-01-02"`
}

// Profile converts the form to the domain profile
func (f ProfileForm) Profile() customer.Profile {
	return customer.Profile{
		Name:     f.Name,
		Address:  f.Address,
		Relative: f.Relative,
		Area:     f.Area,
		Phone:    f.Phone,
		Phone2:   f.Phone2,
		Aadhar:   f.Aadhar,
		DOB:      f.DOB,
	}
}

// ProfileFormOf fills the form from a stored profile
func ProfileFormOf(p customer.Profile) ProfileForm {
	return ProfileForm(p)
}

// JewelRowsForm carries the jewel table as parallel columns, one value per row.
type JewelRowsForm struct {
	JewelID   []string `form:"jewelId"`
	AssetID   []string `form:"assetId"`
	JewelType []string `form:"jewelType"`
	StoneWt   []string `form:"stoneWt"`
	GoldWt    []string `form:"goldWt"`
	// Remove is the id of the row whose remove button was pressed
	Remove string `form:"remove"`
}

// Rows rebuilds the jewel rows. Missing cells read as empty.
func (f JewelRowsForm) Rows() []loan.Jewel {
	n := max(len(f.JewelID), len(f.JewelType), len(f.StoneWt), len(f.GoldWt))
	rows := make([]loan.Jewel, 0, n)
	for i := 0; i < n; i++ {
		j := loan.Jewel{
			ID:        atoi(at(f.JewelID, i)),
			AssetID:   atoi(at(f.AssetID, i)),
			JewelType: strings.TrimSpace(at(f.JewelType, i)),
			StoneWt:   strings.TrimSpace(at(f.StoneWt, i)),
			GoldWt:    strings.TrimSpace(at(f.GoldWt, i)),
		}
		if j.ID == 0 {
			j.ID = i + 1
		}
		if j.AssetID == 0 {
			j.AssetID = loan.FirstAssetID + i
		}
		j.Recalculate()
		rows = append(rows, j)
	}
	if len(rows) == 0 {
		return loan.NewJewelRows()
	}
	return rows
}

// LoanTermsForm is the loan block shared by intake and new loan
type LoanTermsForm struct {
	Company    string `form:"company" binding:"max=120"`
	Scheme     string `form:"scheme" binding:"max=120"`
	LoanType   string `form:"loanType" binding:"omitempty,oneof=Document Gold Silver DOCUMENT GOLD SILVER"`
	LoanAmount string `form:"loanAmount" binding:"omitempty,decimal"`
	MonthlyPct string `form:"monthlyPct" binding:"omitempty,decimal"`
	YearlyPct  string `form:"yearlyPct" binding:"omitempty,decimal"`
	// RateEdited is "monthly" or "yearly": the field typed in last
	RateEdited string `form:"rateEdited" binding:"omitempty,oneof=monthly yearly"`
	Remarks    string `form:"remarks" binding:"max=500"`
	JewelRowsForm
}

// Terms converts the form, bringing the two rates back in step.
func (f LoanTermsForm) Terms() customer.LoanTerms {
	monthly, yearly := f.MonthlyPct, f.YearlyPct
	if f.RateEdited != "" {
		monthly, yearly = loan.SyncRates(monthly, yearly, loan.RateField(f.RateEdited))
	}
	return customer.LoanTerms{
		Company:    strings.TrimSpace(f.Company),
		Scheme:     strings.TrimSpace(f.Scheme),
		LoanType:   f.LoanType,
		LoanAmount: f.LoanAmount,
		MonthlyPct: monthly,
		YearlyPct:  yearly,
		Remarks:    f.Remarks,
		Jewels:     f.Rows(),
	}
}

// CustomerForm is GET/POST /customers/new
type CustomerForm struct {
	Action       string `form:"action"`
	AccNo        string `form:"accNo" binding:"max=40"`
	Date         string `form:"date" binding:"omitempty,datetime=2006-01-02"`
	PhotoDataURL string `form:"photoDataUrl"`
	ProfileForm
	LoanTermsForm
}

// Intake converts the form. photo overrides the hidden data URL when the
// photo was uploaded as a file.
func (f CustomerForm) Intake(photo string) customer.Intake {
	if photo == "" {
		photo = f.PhotoDataURL
	}
	return customer.Intake{
		AccNo:        strings.TrimSpace(f.AccNo),
		Date:         f.Date,
		Profile:      f.Profile(),
		Terms:        f.Terms(),
		PhotoDataURL: photo,
	}
}

// NewLoanForm is GET/POST /customers/:accNo/new-loan
type NewLoanForm struct {
	Action       string `form:"action"`
	NewAccNo     string `form:"newAccNo" binding:"max=40"`
	Date         string `form:"date" binding:"omitempty,datetime=2006-01-02"`
	PhotoDataURL string `form:"photoDataUrl"`
	LoanTermsForm
}

// Intake converts the form
func (f NewLoanForm) Intake(photo string) customer.NewLoanIntake {
	if photo == "" {
		photo = f.PhotoDataURL
	}
	return customer.NewLoanIntake{
		Date:         f.Date,
		NewAccNo:     strings.TrimSpace(f.NewAccNo),
		Terms:        f.Terms(),
		PhotoDataURL: photo,
	}
}

// CustomerSearchQuery is GET /customers/search and GET /close-loan
type CustomerSearchQuery struct {
	AccNo string `form:"accNo" binding:"max=40"`
	Name  string `form:"name" binding:"max=120"`
	Phone string `form:"phone" binding:"max=20"`
}

// Filter converts the query
func (q CustomerSearchQuery) Filter() customer.Filter {
	return customer.Filter{AccNo: q.AccNo, Name: q.Name, Phone: q.Phone}
}

// PaymentForm is POST /customers/:accNo/payments
type PaymentForm struct {
	FromDate   string `form:"fromDate" binding:"omitempty,datetime=2006-01-02"`
	ToDate     string `form:"toDate" binding:"omitempty,datetime=2006-01-02"`
	Interest   string `form:"interest" binding:"omitempty,decimal"`
	Principal  string `form:"principal" binding:"omitempty,decimal"`
	Adjustment string `form:"adjustment" binding:"omitempty,decimal"`
	Note       string `form:"note" binding:"max=500"`
}

// Input converts the form
func (f PaymentForm) Input() loan.PaymentInput {
	return loan.PaymentInput{
		FromDate:   f.FromDate,
		ToDate:     f.ToDate,
		Interest:   f.Interest,
		Principal:  f.Principal,
		Adjustment: f.Adjustment,
		Note:       f.Note,
	}
}

// CloseForm is POST /customers/:accNo/close and POST /close-loan
type CloseForm struct {
	AccNo            string `form:"accNo" binding:"max=40"`
	Date             string `form:"date" binding:"omitempty,datetime=2006-01-02"`
	Note             string `form:"note" binding:"max=500"`
	ConfirmPrincipal bool   `form:"confirmPrincipal"`
	ConfirmInterest  bool   `form:"confirmInterest"`
}

// Input converts the form
func (f CloseForm) Input() loan.CloseInput {
	return loan.CloseInput{
		Date:             f.Date,
		Note:             f.Note,
		ConfirmPrincipal: f.ConfirmPrincipal,
		ConfirmInterest:  f.ConfirmInterest,
	}
}

// DepositQuery is GET /deposits
type DepositQuery struct {
	Name   string `form:"name" binding:"max=120"`
	Phone  string `form:"phone" binding:"max=20"`
	Status string `form:"status" binding:"max=10"`
}

// Filter converts the query; an unknown status means all.
func (q DepositQuery) Filter() deposit.Filter {
	return deposit.Filter{
		Name:   strings.TrimSpace(q.Name),
		Phone:  strings.TrimSpace(q.Phone),
		Status: deposit.ParseStatus(q.Status),
	}
}

// DepositForm is POST /deposits/new
type DepositForm struct {
	FinancierName  string `form:"financierName" binding:"max=120"`
	Phone          string `form:"phone" binding:"max=20"`
	ReferenceNo    string `form:"referenceNo" binding:"max=60"`
	StartDate      string `form:"startDate" binding:"omitempty,datetime=2006-01-02"`
	OriginalAmount string `form:"originalAmount" binding:"omitempty,decimal"`
	MonthlyPct     string `form:"monthlyPct" binding:"omitempty,decimal"`
	YearlyPct      string `form:"yearlyPct" binding:"omitempty,decimal"`
	RateEdited     string `form:"rateEdited" binding:"omitempty,oneof=monthly yearly"`
	Remarks        string `form:"remarks" binding:"max=500"`
}

// Draft converts the form
func (f DepositForm) Draft() deposit.Draft {
	monthly, yearly := f.MonthlyPct, f.YearlyPct
	if f.RateEdited != "" {
		monthly, yearly = loan.SyncRates(monthly, yearly, loan.RateField(f.RateEdited))
	}
	return deposit.Draft{
		FinancierName:  f.FinancierName,
		Phone:          f.Phone,
		ReferenceNo:    f.ReferenceNo,
		StartDate:      f.StartDate,
		OriginalAmount: f.OriginalAmount,
		MonthlyPct:     monthly,
		YearlyPct:      yearly,
		Remarks:        f.Remarks,
	}
}

// DepositPaymentForm is POST /deposits/:id/payments
type DepositPaymentForm struct {
	FromDate   string `form:"fromDate" binding:"omitempty,datetime=2006-01-02"`
	ToDate     string `form:"toDate" binding:"omitempty,datetime=2006-01-02"`
	Adjustment string `form:"adjustment" binding:"omitempty,decimal"`
	Interest   string `form:"interest" binding:"omitempty,decimal"`
	Principal  string `form:"principal" binding:"omitempty,decimal"`
	Note       string `form:"note" binding:"max=500"`
}

// Input converts the form
func (f DepositPaymentForm) Input() deposit.PaymentInput {
	return deposit.PaymentInput{
		FromDate:   f.FromDate,
		ToDate:     f.ToDate,
		Adjustment: f.Adjustment,
		Interest:   f.Interest,
		Principal:  f.Principal,
		Note:       f.Note,
	}
}

// LedgerQuery is GET /ledger
type LedgerQuery struct {
	From      string `form:"from" binding:"omitempty,datetime=2006-01-02"`
	To        string `form:"to" binding:"omitempty,datetime=2006-01-02"`
	Source    string `form:"source" binding:"max=40"`
	Category  string `form:"category" binding:"max=40"`
	Direction string `form:"direction" binding:"omitempty,oneof=CREDIT DEBIT"`
	Q         string `form:"q" binding:"max=120"`
}

// Filter applies the query over defaults; blank dates keep the default window.
func (q LedgerQuery) Filter(defaults ledger.Filter) ledger.Filter {
	f := defaults
	if q.From != "" {
		f.From = q.From
	}
	if q.To != "" {
		f.To = q.To
	}
	f.Source = q.Source
	f.Category = q.Category
	f.Direction = q.Direction
	f.Q = q.Q
	return f
}

// ManualEntryForm is POST /ledger/manual
type ManualEntryForm struct {
	Date      string `form:"date" binding:"omitempty,datetime=2006-01-02"`
	Direction string `form:"direction" binding:"omitempty,oneof=CREDIT DEBIT"`
	Category  string `form:"category" binding:"omitempty,oneof=LOAN PRINCIPAL INTEREST DEPOSIT INCOME EXPENSE OTHER"`
	Amount    string `form:"amount" binding:"omitempty,decimal"`
	RefNo     string `form:"refNo" binding:"max=60"`
	Note      string `form:"note" binding:"max=500"`
}

// Entry converts the form
func (f ManualEntryForm) Entry() ledger.ManualEntry {
	return ledger.ManualEntry{
		Date:      f.Date,
		Direction: f.Direction,
		Category:  f.Category,
		Amount:    f.Amount,
		RefNo:     f.RefNo,
		Note:      f.Note,
	}
}

// VoucherQuery is GET /vouchers
type VoucherQuery struct {
	From string `form:"from" binding:"omitempty,datetime=2006-01-02"`
	To   string `form:"to" binding:"omitempty,datetime=2006-01-02"`
	Q    string `form:"q" binding:"max=120"`
}

// Filter applies the query over the default window
func (q VoucherQuery) Filter(defaults ledger.Filter) ledger.VoucherFilter {
	f := ledger.VoucherFilter{From: defaults.From, To: defaults.To, Q: q.Q}
	if q.From != "" {
		f.From = q.From
	}
	if q.To != "" {
		f.To = q.To
	}
	return f
}

// VoucherForm is POST /vouchers
type VoucherForm struct {
	Date   string `form:"date" binding:"omitempty,datetime=2006-01-02"`
	Amount string `form:"amount" binding:"omitempty,decimal"`
	RefNo  string `form:"refNo" binding:"max=60"`
	Note   string `form:"note" binding:"max=500"`
}

// Draft converts the form
func (f VoucherForm) Draft() ledger.VoucherDraft {
	return ledger.VoucherDraft{Date: f.Date, Amount: f.Amount, RefNo: f.RefNo, Note: f.Note}
}

// SchemeForm is POST /schemes: the editor rows as parallel columns.
type SchemeForm struct {
	Action      string   `form:"action" binding:"omitempty,oneof=save add-row remove-row new"`
	ID          string   `form:"id" binding:"max=64"`
	Name        string   `form:"name" binding:"max=120"`
	StartDay    []string `form:"startDay"`
	EndDay      []string `form:"endDay"`
	InterestPct []string `form:"interestPct"`
	// Remove is the index of the row whose remove button was pressed
	Remove string `form:"remove"`
}

// Draft rebuilds the editor state
func (f SchemeForm) Draft() scheme.Draft {
	n := max(len(f.StartDay), len(f.EndDay), len(f.InterestPct))
	d := scheme.Draft{ID: f.ID, Name: f.Name, Rows: make([]scheme.DraftRow, 0, n)}
	for i := 0; i < n; i++ {
		d.Rows = append(d.Rows, scheme.DraftRow{
			StartDay:    at(f.StartDay, i),
			EndDay:      at(f.EndDay, i),
			InterestPct: at(f.InterestPct, i),
		})
	}
	return d
}

// RemoveIndex is the row to remove, or -1
func (f SchemeForm) RemoveIndex() int {
	i, err := strconv.Atoi(strings.TrimSpace(f.Remove))
	if err != nil {
		return -1
	}
	return i
}

func at(s []string, i int) string {
	if i < len(s) {
		return s[i]
	}
	return ""
}

func atoi(s string) int {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0
	}
	return n
}
