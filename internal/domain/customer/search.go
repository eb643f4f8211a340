package customer

import (
	"strings"

	"github.com/pawnfin/console/internal/domain/loan"
	"github.com/shopspring/decimal"
)

// Filter narrows the customer list. Every non-blank field must match as a
// case-insensitive substring.
type Filter struct {
	AccNo string
	Name  string
	Phone string
}

// Empty reports whether no criteria were entered
func (f Filter) Empty() bool {
	return strings.TrimSpace(f.AccNo) == "" &&
		strings.TrimSpace(f.Name) == "" &&
		strings.TrimSpace(f.Phone) == ""
}

// Summary is one row of the search table
type Summary struct {
	AccNo      string
	Date       string
	Name       string
	Phone      string
	LoanType   string
	LoanAmount decimal.Decimal
	Status     loan.Status
}

// Summarize reduces a backend record to a search row.
func Summarize(raw RawRecord) Summary {
	lt := raw.LoanType
	if raw.Loan != nil && raw.Loan.LoanType != "" {
		lt = raw.Loan.LoanType
	}
	label := "-"
	if lt != "" {
		label = loan.TypeLabel(lt)
	}
	status := loan.Status(strings.ToUpper(raw.Status))
	if status == "" {
		status = loan.StatusActive
	}
	return Summary{
		AccNo:      raw.AccNo,
		Date:       raw.Date,
		Name:       DisplayName(raw),
		Phone:      DisplayPhone(raw),
		LoanType:   label,
		LoanAmount: LoanAmount(raw),
		Status:     status,
	}
}

// Search filters and summarizes records, keeping backend order.
func Search(records []RawRecord, f Filter) []Summary {
	acc := strings.ToLower(strings.TrimSpace(f.AccNo))
	name := strings.ToLower(strings.TrimSpace(f.Name))
	phone := strings.ToLower(strings.TrimSpace(f.Phone))

	out := make([]Summary, 0, len(records))
	for _, r := range records {
		s := Summarize(r)
		if acc != "" && !strings.Contains(strings.ToLower(s.AccNo), acc) {
			continue
		}
		if name != "" && !strings.Contains(strings.ToLower(s.Name), name) {
			continue
		}
		if phone != "" && !strings.Contains(strings.ToLower(s.Phone), phone) {
			continue
		}
		out = append(out, s)
	}
	return out
}

// AccountNumbers lists the account numbers of records.
func AccountNumbers(records []RawRecord) []string {
	out := make([]string, 0, len(records))
	for _, r := range records {
		out = append(out, r.AccNo)
	}
	return out
}
