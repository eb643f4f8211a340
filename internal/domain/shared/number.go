package shared

import (
	"bytes"
	"encoding/json"
	"strings"

	"github.com/shopspring/decimal"
)

// Number is a nullable amount or rate read from pawn-api JSON. JSON numbers
// and numeric strings parse; null, blank strings and anything unparseable
// read as absent instead of failing the whole document.
type Number struct {
	decimal.NullDecimal
}

// NewNumber returns a present Number
func NewNumber(d decimal.Decimal) Number {
	return Number{decimal.NewNullDecimal(d)}
}

// UnmarshalJSON implements json.Unmarshaler
func (n *Number) UnmarshalJSON(b []byte) error {
	n.NullDecimal = decimal.NullDecimal{}
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		return nil
	}
	if b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return nil
		}
		if d, ok := ParseNumber(s); ok {
			n.NullDecimal = decimal.NewNullDecimal(d)
		}
		return nil
	}
	if d, err := decimal.NewFromString(string(b)); err == nil {
		n.NullDecimal = decimal.NewNullDecimal(d)
	}
	return nil
}

// Or returns the value, or fallback when absent.
func (n Number) Or(fallback decimal.Decimal) decimal.Decimal {
	if n.Valid {
		return n.Decimal
	}
	return fallback
}

// ParseNumber parses a user-entered number. Blank or malformed input yields
// zero and false, matching how forms treat unparseable fields as empty.
func ParseNumber(s string) (decimal.Decimal, bool) {
	s = strings.TrimSpace(strings.ReplaceAll(s, ",", ""))
	if s == "" {
		return decimal.Zero, false
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, false
	}
	return d, true
}

// NumberOrZero parses s and drops the ok flag
func NumberOrZero(s string) decimal.Decimal {
	d, _ := ParseNumber(s)
	return d
}

// WholeAmount truncates a rupee amount toward zero.
func WholeAmount(d decimal.Decimal) int64 {
	return d.Truncate(0).IntPart()
}

// NonNegativeWhole truncates toward zero and clamps negatives to zero.
func NonNegativeWhole(d decimal.Decimal) int64 {
	v := WholeAmount(d)
	if v < 0 {
		return 0
	}
	return v
}

// NullableString trims s and returns nil when it is empty, for JSON bodies
// that distinguish a missing note from an empty one.
func NullableString(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}
