package ledger

import (
	"net/url"
	"strings"

	"github.com/pawnfin/console/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// SavedVoucherMessage confirms a posted voucher
const SavedVoucherMessage = "Voucher saved. Ledger updated."

// Voucher is a row of GET vouchers: an expense paid out of the cash book.
type Voucher struct {
	ID          string          `json:"id"`
	VoucherDate string          `json:"voucherDate"`
	Direction   Direction       `json:"direction"`
	Amount      decimal.Decimal `json:"amount"`
	Category    Category        `json:"category"`
	RefNo       *string         `json:"refNo"`
	Note        *string         `json:"note"`
	CreatedAt   string          `json:"createdAt"`
}

// VoucherFilter is the voucher query
type VoucherFilter struct {
	From string
	To   string
	Q    string
}

// Query encodes the non-empty filter fields.
func (f VoucherFilter) Query() url.Values {
	q := url.Values{}
	if f.From != "" {
		q.Set("from", f.From)
	}
	if f.To != "" {
		q.Set("to", f.To)
	}
	if s := strings.TrimSpace(f.Q); s != "" {
		q.Set("q", s)
	}
	return q
}

// TotalVouchers sums truncated voucher amounts.
func TotalVouchers(rows []Voucher) int64 {
	var total int64
	for _, v := range rows {
		total += shared.WholeAmount(v.Amount)
	}
	return total
}

// VoucherDraft is the voucher entry form
type VoucherDraft struct {
	Date   string
	Amount string
	RefNo  string
	Note   string
}

// VoucherRequest is the body of POST vouchers.
type VoucherRequest struct {
	Date   string  `json:"date"`
	Amount int64   `json:"amount"`
	RefNo  *string `json:"refNo"`
	Note   *string `json:"note"`
}

// Build validates the draft and returns the request body.
func (v VoucherDraft) Build() (*VoucherRequest, error) {
	amount := shared.NonNegativeWhole(shared.NumberOrZero(v.Amount))
	if strings.TrimSpace(v.Date) == "" {
		return nil, shared.NewValidationError("date", "Date is required.")
	}
	if amount == 0 {
		return nil, shared.NewValidationError("amount", "Amount is required.")
	}
	return &VoucherRequest{
		Date:   v.Date,
		Amount: amount,
		RefNo:  shared.NullableString(v.RefNo),
		Note:   shared.NullableString(v.Note),
	}, nil
}
