package customer

import (
	"fmt"
	"strings"

	"github.com/pawnfin/console/internal/domain/loan"
	"github.com/pawnfin/console/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// Normalize maps a backend record onto the canonical shape. Precedence:
//
//	payment remaining principal: outstandingPrincipal, pendingPrincipal, loan.loanAmount, 0
//	payment pending interest:    pendingInterest, loan.pendingInterest, 0
//	loan amount:                 loan.loanAmount, flat loanAmount, 0
//	original amount:             loan.originalLoanAmount, loan amount
//	name / phone / loan type:    nested value, flat value
func Normalize(raw RawRecord) Record {
	rec := Record{
		AccNo:     raw.AccNo,
		Date:      raw.Date,
		Jewels:    raw.Jewels,
		Status:    loan.Status(strings.ToUpper(raw.Status)),
		ClosedAt:  deref(raw.ClosedAt),
		ClosedBy:  deref(raw.ClosedBy),
		CloseNote: deref(raw.CloseNote),
		PhotoURL:  raw.PhotoURL,
	}
	if rec.Status == "" {
		rec.Status = loan.StatusActive
	}
	if raw.Customer != nil {
		rec.Profile = *raw.Customer
	}
	rec.Profile.Name = DisplayName(raw)
	rec.Profile.Phone = DisplayPhone(raw)

	rec.Loan.Amount = LoanAmount(raw)
	rec.Loan.Type = firstNonEmpty(loanField(raw, func(l *RawLoan) string { return l.LoanType }), raw.LoanType)
	if l := raw.Loan; l != nil {
		rec.HasLoan = true
		rec.Loan.Company = l.Company
		rec.Loan.Scheme = l.Scheme
		rec.Loan.OriginalAmount = orDecimal(l.OriginalLoanAmount, rec.Loan.Amount)
		rec.Loan.MonthlyPct = orDecimal(l.MonthlyPct, decimal.Zero)
		rec.Loan.YearlyPct = orDecimal(l.YearlyPct, decimal.Zero)
		rec.Loan.MonthlyInterestAmount = orDecimal(l.MonthlyInterestAmount, decimal.Zero)
		rec.Loan.Remarks = l.Remarks
		rec.Loan.PendingInterest = orDecimal(l.PendingInterest, decimal.Zero)
		rec.Loan.AdvanceInterest = orDecimal(l.AdvanceInterest, decimal.Zero)
		rec.Loan.LastAccruedYm = l.LastAccruedYm
	} else {
		rec.Loan.OriginalAmount = rec.Loan.Amount
	}

	rec.Payments = NormalizePayments(raw)
	return rec
}

// NormalizePayments maps raw payment rows in order.
func NormalizePayments(raw RawRecord) []Payment {
	loanAmount := decimal.Zero
	loanPending := decimal.Zero
	if raw.Loan != nil {
		loanAmount = orDecimal(raw.Loan.LoanAmount, decimal.Zero)
		loanPending = orDecimal(raw.Loan.PendingInterest, decimal.Zero)
	}

	out := make([]Payment, 0, len(raw.Payments))
	for _, p := range raw.Payments {
		remaining := loanAmount
		switch {
		case p.OutstandingPrincipal.Valid:
			remaining = p.OutstandingPrincipal.Decimal
		case p.PendingPrincipal.Valid:
			remaining = p.PendingPrincipal.Decimal
		}
		out = append(out, Payment{
			ID:                   idString(p.ID),
			Date:                 p.Date,
			InterestDue:          orDecimal(p.InterestDue, decimal.Zero),
			InterestPaid:         orDecimal(p.InterestPaid, decimal.Zero),
			PrincipalPaid:        orDecimal(p.PrincipalPaid, decimal.Zero),
			PendingInterest:      orDecimal(p.PendingInterest, loanPending),
			OutstandingPrincipal: remaining,
			Note:                 deref(p.Note),
			InterestFrom:         deref(p.InterestFrom),
			InterestTo:           deref(p.InterestTo),
			InterestAdj:          orDecimal(p.InterestAdj, decimal.Zero),
		})
	}
	return out
}

// DisplayName is the nested customer name, else the flat one, trimmed.
func DisplayName(raw RawRecord) string {
	nested := ""
	if raw.Customer != nil {
		nested = raw.Customer.Name
	}
	return strings.TrimSpace(firstNonEmpty(nested, raw.Name))
}

// DisplayPhone is the nested customer phone, else the flat one, trimmed.
func DisplayPhone(raw RawRecord) string {
	nested := ""
	if raw.Customer != nil {
		nested = raw.Customer.Phone
	}
	return strings.TrimSpace(firstNonEmpty(nested, raw.Phone))
}

// LoanAmount is the nested loan amount, else the flat one, else zero.
func LoanAmount(raw RawRecord) decimal.Decimal {
	if raw.Loan != nil && raw.Loan.LoanAmount.Valid {
		return raw.Loan.LoanAmount.Decimal
	}
	return orDecimal(raw.LoanAmount, decimal.Zero)
}

func loanField(raw RawRecord, get func(*RawLoan) string) string {
	if raw.Loan == nil {
		return ""
	}
	return get(raw.Loan)
}

func orDecimal(v shared.Number, fallback decimal.Decimal) decimal.Decimal {
	return v.Or(fallback)
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}

func idString(v any) string {
	switch id := v.(type) {
	case nil:
		return ""
	case string:
		return id
	case float64:
		return decimal.NewFromFloat(id).String()
	default:
		return fmt.Sprint(id)
	}
}
