// Package ledger describes company cash-book entries as listed by the
// pawn-api, and the manual entries and expense vouchers posted from the console.
package ledger

import (
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/pawnfin/console/internal/domain/shared"
	"github.com/shopspring/decimal"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Direction of money movement
type Direction string

const (
	Credit Direction = "CREDIT"
	Debit  Direction = "DEBIT"
)

// Label is IN for credits and OUT for everything else
func (d Direction) Label() string {
	if d == Credit {
		return "IN"
	}
	return "OUT"
}

// Source is what produced an entry
type Source string

const (
	SourceCustomerLoan    Source = "CUSTOMER_LOAN"
	SourceCustomerPayment Source = "CUSTOMER_PAYMENT"
	SourceDepositReceive  Source = "DEPOSIT_RECEIVE"
	SourceDepositPayment  Source = "DEPOSIT_PAYMENT"
	SourceManual          Source = "MANUAL"
)

// Sources lists entry sources in filter order
var Sources = []Source{SourceCustomerLoan, SourceCustomerPayment, SourceDepositReceive, SourceDepositPayment, SourceManual}

var sourceLabels = map[Source]string{
	SourceCustomerLoan:    "Customer Loan (Disbursed)",
	SourceCustomerPayment: "Customer Payment",
	SourceDepositReceive:  "Deposit Received",
	SourceDepositPayment:  "Deposit Paid",
	SourceManual:          "Manual",
}

// Label returns the display name, or the raw value for unknown sources.
func (s Source) Label() string {
	if l, ok := sourceLabels[s]; ok {
		return l
	}
	return string(s)
}

// Category classifies an entry
type Category string

const (
	CategoryLoan      Category = "LOAN"
	CategoryPrincipal Category = "PRINCIPAL"
	CategoryInterest  Category = "INTEREST"
	CategoryDeposit   Category = "DEPOSIT"
	CategoryIncome    Category = "INCOME"
	CategoryExpense   Category = "EXPENSE"
	CategoryOther     Category = "OTHER"
)

// Categories is the fixed display order of category totals.
var Categories = []Category{
	CategoryLoan, CategoryPrincipal, CategoryInterest, CategoryDeposit,
	CategoryIncome, CategoryExpense, CategoryOther,
}

// Label title-cases known categories and leaves unknown ones untouched.
func (c Category) Label() string {
	for _, known := range Categories {
		if c == known {
			return cases.Title(language.English).String(strings.ToLower(string(c)))
		}
	}
	return string(c)
}

func categoryRank(c Category) int {
	for i, known := range Categories {
		if c == known {
			return i
		}
	}
	return len(Categories)
}

// Entry is a row of GET ledger
type Entry struct {
	ID            string          `json:"id"`
	EntryDate     string          `json:"entryDate"`
	Direction     Direction       `json:"direction"`
	Amount        decimal.Decimal `json:"amount"`
	Source        Source          `json:"source"`
	Category      Category        `json:"category"`
	CustomerAccNo *string         `json:"customerAccNo"`
	DepositID     *string         `json:"depositId"`
	PaymentID     *string         `json:"paymentId"`
	RefNo         *string         `json:"refNo"`
	Note          *string         `json:"note"`
	CreatedAt     string          `json:"createdAt"`
}

// Filter is the ledger query. Dates are YYYY-MM-DD.
type Filter struct {
	From      string
	To        string
	Source    string
	Category  string
	Direction string
	Q         string
}

// DefaultWindow is how far back the ledger and voucher lists look by default.
const DefaultWindow = 30 * 24 * time.Hour

// DefaultFilter covers the thirty days up to today.
func DefaultFilter(today time.Time) Filter {
	return Filter{
		From: today.Add(-DefaultWindow).Format(time.DateOnly),
		To:   today.Format(time.DateOnly),
	}
}

// Query encodes the non-empty filter fields.
func (f Filter) Query() url.Values {
	q := url.Values{}
	set := func(k, v string) {
		if v = strings.TrimSpace(v); v != "" {
			q.Set(k, v)
		}
	}
	set("from", f.From)
	set("to", f.To)
	set("source", f.Source)
	set("category", f.Category)
	set("direction", f.Direction)
	set("q", f.Q)
	return q
}

// Totals are whole-rupee sums; amounts are truncated per entry.
type Totals struct {
	Credit int64
	Debit  int64
}

// Net is credit minus debit
func (t Totals) Net() int64 {
	return t.Credit - t.Debit
}

func (t *Totals) add(e Entry) {
	amt := shared.WholeAmount(e.Amount)
	if e.Direction == Credit {
		t.Credit += amt
	} else {
		t.Debit += amt
	}
}

// Summarize totals all entries
func Summarize(entries []Entry) Totals {
	var t Totals
	for _, e := range entries {
		t.add(e)
	}
	return t
}

// CategoryTotal is the totals of one category
type CategoryTotal struct {
	Category Category
	Totals
}

// ByCategory groups totals by category, with a missing category counted as
// OTHER. Known categories come first in display order; unknown ones follow
// in the order they were first seen.
func ByCategory(entries []Entry) []CategoryTotal {
	index := map[Category]int{}
	var out []CategoryTotal
	for _, e := range entries {
		key := e.Category
		if key == "" {
			key = CategoryOther
		}
		i, ok := index[key]
		if !ok {
			i = len(out)
			index[key] = i
			out = append(out, CategoryTotal{Category: key})
		}
		out[i].add(e)
	}

	sort.SliceStable(out, func(i, j int) bool {
		return categoryRank(out[i].Category) < categoryRank(out[j].Category)
	})
	return out
}

// ManualEntry is the manual ledger entry form. Direction defaults to DEBIT
// and category to EXPENSE.
type ManualEntry struct {
	Date      string
	Direction string
	Category  string
	Amount    string
	RefNo     string
	Note      string
}

// NewManualEntry returns the form defaults for today.
func NewManualEntry(today time.Time) ManualEntry {
	return ManualEntry{
		Date:      today.Format(time.DateOnly),
		Direction: string(Debit),
		Category:  string(CategoryExpense),
	}
}

// ManualEntryRequest is the body of POST ledger/manual.
type ManualEntryRequest struct {
	Date      string    `json:"date"`
	Direction Direction `json:"direction"`
	Category  Category  `json:"category"`
	Amount    int64     `json:"amount"`
	RefNo     *string   `json:"refNo"`
	Note      *string   `json:"note"`
}

// Build validates the entry and returns the request body.
func (m ManualEntry) Build() (*ManualEntryRequest, error) {
	amount := shared.NonNegativeWhole(shared.NumberOrZero(m.Amount))
	if strings.TrimSpace(m.Date) == "" {
		return nil, shared.NewValidationError("date", "Date is required.")
	}
	if amount == 0 {
		return nil, shared.NewValidationError("amount", "Amount is required.")
	}
	dir := Direction(strings.ToUpper(m.Direction))
	if dir != Credit {
		dir = Debit
	}
	cat := Category(strings.ToUpper(strings.TrimSpace(m.Category)))
	if cat == "" {
		cat = CategoryExpense
	}
	return &ManualEntryRequest{
		Date:      m.Date,
		Direction: dir,
		Category:  cat,
		Amount:    amount,
		RefNo:     shared.NullableString(m.RefNo),
		Note:      shared.NullableString(m.Note),
	}, nil
}
