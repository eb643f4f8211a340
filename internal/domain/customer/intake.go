package customer

import (
	"strings"

	"github.com/pawnfin/console/internal/domain/loan"
	"github.com/pawnfin/console/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// MissingFieldsError lists required intake fields left empty.
type MissingFieldsError struct {
	Heading string
	Fields  []string
}

func (e *MissingFieldsError) Error() string {
	return e.Heading + "\n\n- " + strings.Join(e.Fields, "\n- ")
}

const (
	newCustomerHeading = "Please fill the following mandatory fields before saving:"
	newLoanHeading     = "Please fill the following before saving:"
)

// LoanTerms is the loan part of an intake form as entered.
type LoanTerms struct {
	Company    string
	Scheme     string
	LoanType   string
	LoanAmount string
	MonthlyPct string
	YearlyPct  string
	Remarks    string
	Jewels     []loan.Jewel
}

// Type parses the selected loan type
func (t LoanTerms) Type() (loan.Type, bool) {
	return loan.ParseType(t.LoanType)
}

// MonthlyInterestAmount derives amount × monthly% / 100; zero when either is unparseable.
func (t LoanTerms) MonthlyInterestAmount() decimal.Decimal {
	amt, ok1 := shared.ParseNumber(t.LoanAmount)
	pct, ok2 := shared.ParseNumber(t.MonthlyPct)
	if !ok1 || !ok2 {
		return decimal.Zero
	}
	return loan.MonthlyInterestAmount(amt, pct)
}

func (t LoanTerms) amountValid() bool {
	amt, ok := shared.ParseNumber(t.LoanAmount)
	return ok && amt.IsPositive()
}

// jewels returns recalculated rows for jewel loans, an empty list otherwise.
func (t LoanTerms) jewels() []loan.Jewel {
	lt, _ := t.Type()
	return loan.JewelsFor(lt, t.Jewels)
}

// Intake is the new-customer form.
type Intake struct {
	AccNo        string
	Date         string
	Profile      Profile
	Terms        LoanTerms
	PhotoDataURL string
}

// Validate reports missing mandatory fields in form order.
func (in Intake) Validate() error {
	var missing []string
	if strings.TrimSpace(in.Profile.Name) == "" {
		missing = append(missing, "Name")
	}
	if strings.TrimSpace(in.Profile.Address) == "" {
		missing = append(missing, "Address")
	}
	if strings.TrimSpace(in.Profile.Phone) == "" {
		missing = append(missing, "Phone")
	}
	if _, ok := in.Terms.Type(); !ok {
		missing = append(missing, "Loan type")
	}
	if !in.Terms.amountValid() {
		missing = append(missing, "Loan amount")
	}
	if in.PhotoDataURL == "" {
		missing = append(missing, "Photo")
	}
	if len(missing) > 0 {
		return &MissingFieldsError{Heading: newCustomerHeading, Fields: missing}
	}
	return nil
}

// CreateLoan is the loan block of POST customers.
type CreateLoan struct {
	Company               string  `json:"company"`
	Scheme                string  `json:"scheme"`
	LoanType              string  `json:"loanType"`
	LoanAmount            float64 `json:"loanAmount"`
	MonthlyPct            float64 `json:"monthlyPct"`
	YearlyPct             float64 `json:"yearlyPct"`
	MonthlyInterestAmount float64 `json:"monthlyInterestAmount"`
	Remarks               string  `json:"remarks"`
}

// CreateRequest is the body of POST customers.
type CreateRequest struct {
	AccNo        string       `json:"accNo"`
	Date         string       `json:"date"`
	Customer     Profile      `json:"customer"`
	Loan         CreateLoan   `json:"loan"`
	Jewels       []loan.Jewel `json:"jewels"`
	PhotoDataURL string       `json:"photoDataUrl,omitempty"`
}

// Request builds the create body for account number accNo.
func (in Intake) Request(accNo string) CreateRequest {
	scheme := in.Terms.Scheme
	if scheme == "" {
		scheme = "None"
	}
	lt, _ := in.Terms.Type()
	return CreateRequest{
		AccNo:    accNo,
		Date:     in.Date,
		Customer: in.Profile,
		Loan: CreateLoan{
			Company:               in.Terms.Company,
			Scheme:                scheme,
			LoanType:              string(lt),
			LoanAmount:            number(in.Terms.LoanAmount),
			MonthlyPct:            number(in.Terms.MonthlyPct),
			YearlyPct:             number(in.Terms.YearlyPct),
			MonthlyInterestAmount: in.Terms.MonthlyInterestAmount().InexactFloat64(),
			Remarks:               in.Terms.Remarks,
		},
		Jewels:       in.Terms.jewels(),
		PhotoDataURL: in.PhotoDataURL,
	}
}

// NewLoanIntake is the form for opening another loan for an existing customer.
type NewLoanIntake struct {
	Date         string
	NewAccNo     string
	Terms        LoanTerms
	PhotoDataURL string
}

// Validate reports the missing loan amount or photo.
func (in NewLoanIntake) Validate() error {
	var missing []string
	if !in.Terms.amountValid() {
		missing = append(missing, "Loan amount")
	}
	if in.PhotoDataURL == "" {
		missing = append(missing, "Photo")
	}
	if len(missing) > 0 {
		return &MissingFieldsError{Heading: newLoanHeading, Fields: missing}
	}
	return nil
}

// NewLoanTerms is the loan block of POST customers/new-loan.
type NewLoanTerms struct {
	LoanType              string  `json:"loanType"`
	LoanAmount            float64 `json:"loanAmount"`
	MonthlyPct            float64 `json:"monthlyPct"`
	YearlyPct             float64 `json:"yearlyPct"`
	MonthlyInterestAmount float64 `json:"monthlyInterestAmount"`
	Scheme                string  `json:"scheme"`
	Remarks               string  `json:"remarks"`
	PhotoDataURL          string  `json:"photoDataUrl,omitempty"`
}

// NewLoanRequest is the body of POST customers/new-loan?accNo=<existing>.
type NewLoanRequest struct {
	Date     string       `json:"date"`
	Loan     NewLoanTerms `json:"loan"`
	Jewels   []loan.Jewel `json:"jewels"`
	NewAccNo string       `json:"newAccNo"`
}

// NewLoanResponse is what the backend answers a new loan with
type NewLoanResponse struct {
	OK    bool   `json:"ok"`
	AccNo string `json:"accNo"`
}

// Request builds the new-loan body. The loan type uses its upper-case API form.
func (in NewLoanIntake) Request(accNo string) NewLoanRequest {
	lt, ok := in.Terms.Type()
	if !ok {
		lt = loan.TypeDocument
	}
	scheme := in.Terms.Scheme
	if scheme == "" {
		scheme = "None"
	}
	return NewLoanRequest{
		Date: in.Date,
		Loan: NewLoanTerms{
			LoanType:              lt.APIValue(),
			LoanAmount:            number(in.Terms.LoanAmount),
			MonthlyPct:            number(in.Terms.MonthlyPct),
			YearlyPct:             number(in.Terms.YearlyPct),
			MonthlyInterestAmount: in.Terms.MonthlyInterestAmount().InexactFloat64(),
			Scheme:                scheme,
			Remarks:               in.Terms.Remarks,
			PhotoDataURL:          in.PhotoDataURL,
		},
		Jewels:   loan.JewelsFor(lt, in.Terms.Jewels),
		NewAccNo: accNo,
	}
}

// Edit is the profile edit form; values are trimmed before sending.
type Edit struct {
	Profile Profile
}

// UpdateRequest is the body of PATCH customers/:accNo.
type UpdateRequest struct {
	Customer Profile `json:"customer"`
}

// Request trims every field.
func (e Edit) Request() UpdateRequest {
	p := e.Profile
	return UpdateRequest{Customer: Profile{
		Name:     strings.TrimSpace(p.Name),
		Address:  strings.TrimSpace(p.Address),
		Relative: strings.TrimSpace(p.Relative),
		Area:     strings.TrimSpace(p.Area),
		Phone:    strings.TrimSpace(p.Phone),
		Phone2:   strings.TrimSpace(p.Phone2),
		Aadhar:   strings.TrimSpace(p.Aadhar),
		DOB:      strings.TrimSpace(p.DOB),
	}}
}

func number(s string) float64 {
	return shared.NumberOrZero(s).InexactFloat64()
}
