// Package deposit covers money the company has borrowed from outside
// financiers, tracked in the pawn-api and mirrored here for display and entry.
package deposit

import (
	"strings"

	"github.com/pawnfin/console/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// Status of a deposit
type Status string

const (
	StatusActive Status = "ACTIVE"
	StatusClosed Status = "CLOSED"
)

// ParseStatus accepts ACTIVE or CLOSED in any case; anything else means no filter.
func ParseStatus(s string) Status {
	switch Status(strings.ToUpper(strings.TrimSpace(s))) {
	case StatusActive:
		return StatusActive
	case StatusClosed:
		return StatusClosed
	}
	return ""
}

// Financier is the lender behind a deposit
type Financier struct {
	Name        string `json:"name"`
	Phone       string `json:"phone"`
	ReferenceNo string `json:"referenceNo"`
}

// Summary is a row of GET deposits.
type Summary struct {
	ID              string        `json:"id"`
	FinancierName   string        `json:"financierName"`
	Phone           string        `json:"phone"`
	ReferenceNo     string        `json:"referenceNo"`
	StartDate       string        `json:"startDate"`
	Status          Status        `json:"status"`
	OriginalAmount  shared.Number `json:"originalAmount"`
	Outstanding     shared.Number `json:"outstanding"`
	MonthlyInterest shared.Number `json:"monthlyInterest"`
	PendingInterest shared.Number `json:"pendingInterest"`
}

// Filter is the deposit list query
type Filter struct {
	Name   string
	Phone  string
	Status Status
}

// TotalOutstanding sums the outstanding amount of the listed deposits.
func TotalOutstanding(rows []Summary) decimal.Decimal {
	total := decimal.Zero
	for _, r := range rows {
		if r.Outstanding.Valid {
			total = total.Add(r.Outstanding.Decimal)
		}
	}
	return total
}

// Terms is the deposit block of the detail payload
type Terms struct {
	StartDate       string        `json:"startDate"`
	Status          Status        `json:"status"`
	OriginalAmount  shared.Number `json:"originalAmount"`
	Outstanding     shared.Number `json:"outstanding"`
	MonthlyPct      shared.Number `json:"monthlyPct"`
	YearlyPct       shared.Number `json:"yearlyPct"`
	Remarks         string        `json:"remarks"`
	PendingInterest shared.Number `json:"pendingInterest"`
	AdvanceInterest shared.Number `json:"advanceInterest"`
	LastAccruedYm   string        `json:"lastAccruedYm"`
}

// Payment is one deposit repayment row
type Payment struct {
	ID               any           `json:"id"`
	Date             string        `json:"date"`
	InterestFrom     *string       `json:"interestFrom"`
	InterestTo       *string       `json:"interestTo"`
	InterestAdj      shared.Number `json:"interestAdj"`
	InterestDue      shared.Number `json:"interestDue"`
	InterestPaid     shared.Number `json:"interestPaid"`
	PrincipalPaid    shared.Number `json:"principalPaid"`
	PendingInterest  shared.Number `json:"pendingInterest"`
	PendingPrincipal shared.Number `json:"pendingPrincipal"`
	Note             *string       `json:"note"`
}

// TotalPaid is interest plus principal paid in the row
func (p Payment) TotalPaid() decimal.Decimal {
	return value(p.InterestPaid).Add(value(p.PrincipalPaid))
}

// Detail is GET deposits/:id, also returned by the payment endpoint.
type Detail struct {
	ID        string    `json:"id"`
	Financier Financier `json:"financier"`
	Deposit   Terms     `json:"deposit"`
	Payments  []Payment `json:"payments"`
}

// Outstanding is the last payment's pending principal, else the deposit's outstanding.
func (d *Detail) Outstanding() decimal.Decimal {
	if n := len(d.Payments); n > 0 && d.Payments[n-1].PendingPrincipal.Valid {
		return d.Payments[n-1].PendingPrincipal.Decimal
	}
	return value(d.Deposit.Outstanding)
}

// PendingInterest is the last payment's pending interest, else the deposit's.
func (d *Detail) PendingInterest() decimal.Decimal {
	if n := len(d.Payments); n > 0 && d.Payments[n-1].PendingInterest.Valid {
		return d.Payments[n-1].PendingInterest.Decimal
	}
	return value(d.Deposit.PendingInterest)
}

// Closed reports whether no further payments are accepted
func (d *Detail) Closed() bool {
	return strings.EqualFold(string(d.Deposit.Status), string(StatusClosed))
}

func value(v shared.Number) decimal.Decimal {
	return v.Or(decimal.Zero)
}

// Draft is the new-deposit form.
type Draft struct {
	FinancierName  string
	Phone          string
	ReferenceNo    string
	StartDate      string
	OriginalAmount string
	MonthlyPct     string
	YearlyPct      string
	Remarks        string
}

// CreateFinancier is the financier block of POST deposits
type CreateFinancier struct {
	Name        string  `json:"name"`
	Phone       *string `json:"phone"`
	ReferenceNo *string `json:"referenceNo"`
}

// CreateTerms is the deposit block of POST deposits
type CreateTerms struct {
	StartDate      string  `json:"startDate"`
	OriginalAmount int64   `json:"originalAmount"`
	MonthlyPct     float64 `json:"monthlyPct"`
	YearlyPct      float64 `json:"yearlyPct"`
	Remarks        *string `json:"remarks"`
}

// CreateRequest is the body of POST deposits.
type CreateRequest struct {
	Financier CreateFinancier `json:"financier"`
	Deposit   CreateTerms     `json:"deposit"`
}

// CreateResponse is the reply to POST deposits.
type CreateResponse struct {
	OK      bool   `json:"ok"`
	ID      string `json:"id"`
	Message string `json:"message"`
}

// Build validates the draft and returns the create body. The amount is
// truncated to whole rupees and must not be zero.
func (d Draft) Build() (*CreateRequest, error) {
	name := strings.TrimSpace(d.FinancierName)
	if name == "" {
		return nil, shared.NewValidationError("financierName", "Financier name is required")
	}
	if strings.TrimSpace(d.StartDate) == "" {
		return nil, shared.NewValidationError("startDate", "Start date is required")
	}
	amount := shared.WholeAmount(shared.NumberOrZero(d.OriginalAmount))
	if amount == 0 {
		return nil, shared.NewValidationError("originalAmount", "Original amount is required")
	}
	return &CreateRequest{
		Financier: CreateFinancier{
			Name:        name,
			Phone:       shared.NullableString(d.Phone),
			ReferenceNo: shared.NullableString(d.ReferenceNo),
		},
		Deposit: CreateTerms{
			StartDate:      d.StartDate,
			OriginalAmount: amount,
			MonthlyPct:     shared.NumberOrZero(d.MonthlyPct).InexactFloat64(),
			YearlyPct:      shared.NumberOrZero(d.YearlyPct).InexactFloat64(),
			Remarks:        shared.NullableString(d.Remarks),
		},
	}, nil
}

// PaymentInput is the deposit payment form
type PaymentInput struct {
	FromDate   string
	ToDate     string
	Adjustment string
	Interest   string
	Principal  string
	Note       string
}

// PaymentRequest is the body of POST deposits/:id/payments.
type PaymentRequest struct {
	FromDate       string  `json:"fromDate"`
	ToDate         string  `json:"toDate"`
	Adjustment     int64   `json:"adjustment"`
	InterestAmount *int64  `json:"interestAmount,omitempty"`
	Principal      int64   `json:"principal"`
	Note           *string `json:"note"`
	Date           string  `json:"date"`
}

// Request builds the payment body. A blank interest amount is omitted so the
// backend computes it; principal is clamped at zero.
func (in PaymentInput) Request() PaymentRequest {
	req := PaymentRequest{
		FromDate:   in.FromDate,
		ToDate:     in.ToDate,
		Adjustment: shared.WholeAmount(shared.NumberOrZero(in.Adjustment)),
		Principal:  shared.NonNegativeWhole(shared.NumberOrZero(in.Principal)),
		Note:       shared.NullableString(in.Note),
		Date:       in.ToDate,
	}
	if strings.TrimSpace(in.Interest) != "" {
		v := shared.WholeAmount(shared.NumberOrZero(in.Interest))
		req.InterestAmount = &v
	}
	return req
}
