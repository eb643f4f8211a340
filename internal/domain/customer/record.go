// Package customer holds the console's view of pawn-api customer accounts:
// the loose wire shape the backend returns, and the canonical record pages render.
package customer

import (
	"github.com/pawnfin/console/internal/domain/loan"
	"github.com/pawnfin/console/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// Profile is the customer's personal details
type Profile struct {
	Name     string `json:"name"`
	Address  string `json:"address"`
	Relative string `json:"relative"`
	Area     string `json:"area"`
	Phone    string `json:"phone"`
	Phone2   string `json:"phone2"`
	Aadhar   string `json:"aadhar"`
	DOB      string `json:"dob"`
}

// RawLoan is the loan block as the backend sends it. Numeric fields are
// nullable because older records omit them, and lenient because some send
// them as strings.
type RawLoan struct {
	Company               string        `json:"company"`
	Scheme                string        `json:"scheme"`
	LoanType              string        `json:"loanType"`
	LoanAmount            shared.Number `json:"loanAmount"`
	OriginalLoanAmount    shared.Number `json:"originalLoanAmount"`
	MonthlyPct            shared.Number `json:"monthlyPct"`
	YearlyPct             shared.Number `json:"yearlyPct"`
	MonthlyInterestAmount shared.Number `json:"monthlyInterestAmount"`
	Remarks               string        `json:"remarks"`
	PendingInterest       shared.Number `json:"pendingInterest"`
	AdvanceInterest       shared.Number `json:"advanceInterest"`
	LastAccruedYm         string        `json:"lastAccruedYm"`
}

// RawPayment is a payment row as the backend sends it. The remaining
// principal appears as outstandingPrincipal or pendingPrincipal.
type RawPayment struct {
	ID                   any           `json:"id"`
	Date                 string        `json:"date"`
	InterestDue          shared.Number `json:"interestDue"`
	InterestPaid         shared.Number `json:"interestPaid"`
	PrincipalPaid        shared.Number `json:"principalPaid"`
	PendingInterest      shared.Number `json:"pendingInterest"`
	PendingPrincipal     shared.Number `json:"pendingPrincipal"`
	OutstandingPrincipal shared.Number `json:"outstandingPrincipal"`
	Note                 *string       `json:"note"`
	InterestFrom         *string       `json:"interestFrom"`
	InterestTo           *string       `json:"interestTo"`
	InterestAdj          shared.Number `json:"interestAdj"`
}

// RawRecord is a customer account as returned by GET customers and
// GET customers/:accNo. List rows sometimes carry name, phone, loan type and
// amount flat on the record instead of nested.
type RawRecord struct {
	AccNo     string       `json:"accNo"`
	Date      string       `json:"date"`
	Customer  *Profile     `json:"customer"`
	Loan      *RawLoan     `json:"loan"`
	Jewels    []loan.Jewel `json:"jewels"`
	Payments  []RawPayment `json:"payments"`
	Status    string       `json:"status"`
	ClosedAt  *string      `json:"closedAt"`
	ClosedBy  *string      `json:"closedBy"`
	CloseNote *string      `json:"closeNote"`
	PhotoURL  string       `json:"photoUrl"`

	Name       string        `json:"name"`
	Phone      string        `json:"phone"`
	LoanType   string        `json:"loanType"`
	LoanAmount shared.Number `json:"loanAmount"`
}

// Terms is the canonical loan block
type Terms struct {
	Company               string
	Scheme                string
	Type                  string
	Amount                decimal.Decimal
	OriginalAmount        decimal.Decimal
	MonthlyPct            decimal.Decimal
	YearlyPct             decimal.Decimal
	MonthlyInterestAmount decimal.Decimal
	Remarks               string
	PendingInterest       decimal.Decimal
	AdvanceInterest       decimal.Decimal
	LastAccruedYm         string
}

// Payment is the canonical payment row
type Payment struct {
	ID                   string
	Date                 string
	InterestDue          decimal.Decimal
	InterestPaid         decimal.Decimal
	PrincipalPaid        decimal.Decimal
	PendingInterest      decimal.Decimal
	OutstandingPrincipal decimal.Decimal
	Note                 string
	InterestFrom         string
	InterestTo           string
	InterestAdj          decimal.Decimal
}

// Record is the canonical customer account used by pages.
type Record struct {
	AccNo     string
	Date      string
	Profile   Profile
	Loan      Terms
	HasLoan   bool
	Jewels    []loan.Jewel
	Payments  []Payment
	Status    loan.Status
	ClosedAt  string
	ClosedBy  string
	CloseNote string
	PhotoURL  string
}

// OutstandingPrincipal is the principal still owed: the last payment's
// remaining principal, else the loan amount.
func (r *Record) OutstandingPrincipal() decimal.Decimal {
	if n := len(r.Payments); n > 0 {
		return r.Payments[n-1].OutstandingPrincipal
	}
	return r.Loan.Amount
}

// PendingInterest is the unpaid interest: the last payment's figure, else the loan's.
func (r *Record) PendingInterest() decimal.Decimal {
	if n := len(r.Payments); n > 0 {
		return r.Payments[n-1].PendingInterest
	}
	return r.Loan.PendingInterest
}

// MonthlyInterestDisplay is the whole-rupee interest per month on the
// outstanding principal. Informational only.
func (r *Record) MonthlyInterestDisplay() int64 {
	return loan.DisplayMonthlyInterest(r.OutstandingPrincipal(), r.Loan.MonthlyPct)
}

// Closed reports whether the account has been closed.
func (r *Record) Closed() bool {
	return r.Status == loan.StatusClosed
}

// HistoryEntry is one audit row from GET customers/:accNo/history.
type HistoryEntry struct {
	ID        string         `json:"id"`
	CreatedAt string         `json:"createdAt"`
	Action    string         `json:"action"`
	Summary   string         `json:"summary"`
	ChangedBy *string        `json:"changedBy"`
	Data      map[string]any `json:"data"`
}
