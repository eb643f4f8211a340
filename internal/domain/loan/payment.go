package loan

import (
	"strings"

	"github.com/pawnfin/console/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// CloseMode distinguishes principal repayments from a full settlement.
type CloseMode string

const (
	ClosePartial CloseMode = "PARTIAL"
	CloseFull    CloseMode = "FULL"
)

// Validation messages shown on the payment and close forms.
const (
	MsgNothingToPay   = "Enter Interest amount, Principal amount, or Adjustment."
	MsgConfirmClose   = "Confirm full principal and interest paid to close the loan."
	MsgClearBeforeEnd = "Please clear full principal and interest before closing."
)

// InterestPaymentRequest is the body of POST customers/:accNo/payments.
type InterestPaymentRequest struct {
	FromDate       string  `json:"fromDate"`
	ToDate         string  `json:"toDate"`
	Adjustment     int64   `json:"adjustment"`
	Note           *string `json:"note"`
	InterestAmount *int64  `json:"interestAmount,omitempty"`
}

// CloseRequest is the body of POST customers/:accNo/close, used both for
// partial principal repayment and full closure.
type CloseRequest struct {
	Date            string    `json:"date"`
	Mode            CloseMode `json:"mode"`
	PrincipalAmount int64     `json:"principalAmount"`
	Note            *string   `json:"note"`
}

// PaymentInput is the payment form as entered.
type PaymentInput struct {
	FromDate   string
	ToDate     string
	Interest   string // optional override; blank lets the backend compute it
	Principal  string
	Adjustment string
	Note       string
}

// PaymentPlan lists the calls a payment turns into. Either part may be nil,
// never both.
type PaymentPlan struct {
	Interest  *InterestPaymentRequest
	Principal *CloseRequest
}

// PlanPayment applies the payment-form rules: amounts are truncated to whole
// rupees, principal and interest are clamped at zero, and the interest call
// is made only for a positive interest amount or a non-zero adjustment.
func PlanPayment(in PaymentInput) (PaymentPlan, error) {
	principal := shared.NonNegativeWhole(shared.NumberOrZero(in.Principal))
	adj := shared.WholeAmount(shared.NumberOrZero(in.Adjustment))

	var override *int64
	if strings.TrimSpace(in.Interest) != "" {
		v := shared.NonNegativeWhole(shared.NumberOrZero(in.Interest))
		override = &v
	}

	interest := int64(0)
	if override != nil {
		interest = *override
	}
	if interest == 0 && adj == 0 && principal == 0 {
		return PaymentPlan{}, shared.NewValidationError("payment", MsgNothingToPay)
	}

	note := shared.NullableString(in.Note)
	var plan PaymentPlan
	if interest > 0 || adj != 0 {
		plan.Interest = &InterestPaymentRequest{
			FromDate:       in.FromDate,
			ToDate:         in.ToDate,
			Adjustment:     adj,
			Note:           note,
			InterestAmount: override,
		}
	}
	if principal > 0 {
		plan.Principal = &CloseRequest{
			Date:            in.ToDate,
			Mode:            ClosePartial,
			PrincipalAmount: principal,
			Note:            note,
		}
	}
	return plan, nil
}

// CloseInput is the full-closure form.
type CloseInput struct {
	Date             string
	Note             string
	ConfirmPrincipal bool
	ConfirmInterest  bool
}

// PlanFullClose builds the FULL close request. Both confirmations are
// required and nothing may remain outstanding.
func PlanFullClose(in CloseInput, outstanding, pendingInterest decimal.Decimal) (*CloseRequest, error) {
	if !in.ConfirmPrincipal || !in.ConfirmInterest {
		return nil, shared.NewValidationError("close", MsgConfirmClose)
	}
	if outstanding.IsPositive() || pendingInterest.IsPositive() {
		return nil, shared.NewValidationError("close", MsgClearBeforeEnd)
	}
	return &CloseRequest{
		Date:            in.Date,
		Mode:            CloseFull,
		PrincipalAmount: shared.WholeAmount(outstanding),
		Note:            shared.NullableString(in.Note),
	}, nil
}
