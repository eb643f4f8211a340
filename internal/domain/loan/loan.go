// Package loan holds pawn-loan terms and the derived arithmetic the console
// performs before handing a loan to the pawn-api.
package loan

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Type is the kind of security held against a loan
type Type string

const (
	TypeDocument Type = "Document"
	TypeGold     Type = "Gold"
	TypeSilver   Type = "Silver"
)

// Types lists loan types in selector order
var Types = []Type{TypeDocument, TypeGold, TypeSilver}

// ParseType accepts the display value or the upper-case API value.
func ParseType(s string) (Type, bool) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "DOCUMENT":
		return TypeDocument, true
	case "GOLD":
		return TypeGold, true
	case "SILVER":
		return TypeSilver, true
	}
	return "", false
}

// APIValue is the form the new-loan endpoint expects
func (t Type) APIValue() string {
	return strings.ToUpper(string(t))
}

// HasJewels reports whether the loan is secured by jewellery.
func (t Type) HasJewels() bool {
	return t == TypeGold || t == TypeSilver
}

// TypeLabel maps a backend loan type to its display label, passing unknown values through.
func TypeLabel(raw string) string {
	if t, ok := ParseType(raw); ok {
		return string(t)
	}
	return raw
}

// Status of a loan account
type Status string

const (
	StatusActive Status = "ACTIVE"
	StatusClosed Status = "CLOSED"
)

var (
	hundred = decimal.NewFromInt(100)
	twelve  = decimal.NewFromInt(12)
)

// MonthlyInterestAmount is amount × monthlyPct / 100 rounded to paise.
func MonthlyInterestAmount(amount, monthlyPct decimal.Decimal) decimal.Decimal {
	return amount.Mul(monthlyPct).Div(hundred).Round(2)
}

// DisplayMonthlyInterest is the whole-rupee interest shown on the detail
// page for the current principal. It is informational only.
func DisplayMonthlyInterest(principal, monthlyPct decimal.Decimal) int64 {
	return principal.Mul(monthlyPct).Div(hundred).Round(0).IntPart()
}

// YearlyFromMonthly converts a monthly percentage to yearly (× 12)
func YearlyFromMonthly(monthly decimal.Decimal) decimal.Decimal {
	return monthly.Mul(twelve)
}

// MonthlyFromYearly converts a yearly percentage to monthly (÷ 12)
func MonthlyFromYearly(yearly decimal.Decimal) decimal.Decimal {
	return yearly.DivRound(twelve, 8)
}

// RateField names the percentage field the user edited last.
type RateField string

const (
	RateMonthly RateField = "monthly"
	RateYearly  RateField = "yearly"
)

// SyncRates recomputes the field the user did not edit. Unparseable input
// clears the other field.
func SyncRates(monthly, yearly string, edited RateField) (string, string) {
	parse := func(s string) (decimal.Decimal, bool) {
		s = strings.TrimSpace(s)
		if s == "" {
			return decimal.Zero, false
		}
		d, err := decimal.NewFromString(s)
		return d, err == nil
	}

	if edited == RateYearly {
		y, ok := parse(yearly)
		if !ok {
			return "", yearly
		}
		return MonthlyFromYearly(y).String(), yearly
	}
	m, ok := parse(monthly)
	if !ok {
		return monthly, ""
	}
	return monthly, YearlyFromMonthly(m).String()
}
