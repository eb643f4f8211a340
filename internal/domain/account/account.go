// Package account allocates customer account numbers. Numbers have the shape
// "<FYStart>-<FYEnd>/<sequence>" where the fiscal year runs April 1 to March 31.
package account

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/pawnfin/console/internal/domain/shared"
)

// ErrDuplicate is reported on the account number field when a collision is found.
var ErrDuplicate = shared.NewDomainError("ACCOUNT_EXISTS", "Account number already exists")

var duplicatePattern = regexp.MustCompile(`(?i)duplicate|exists`)

// FiscalYear identifies an Indian fiscal year by its starting calendar year.
type FiscalYear struct {
	Start int
}

// FiscalYearOf returns the fiscal year containing t.
func FiscalYearOf(t time.Time) FiscalYear {
	y := t.Year()
	if t.Month() < time.April {
		y--
	}
	return FiscalYear{Start: y}
}

// Label formats the year as "2025-2026".
func (f FiscalYear) Label() string {
	return fmt.Sprintf("%d-%d", f.Start, f.Start+1)
}

// Prefix is the account number prefix shared by every number in the year.
func (f FiscalYear) Prefix() string {
	return f.Label() + "/"
}

// First returns the first account number of the year.
func (f FiscalYear) First() string {
	return f.Prefix() + "1"
}

// NextAccountNumber suggests the next account number for date given the
// numbers already in use. Numbers from other years and non-numeric suffixes
// are ignored.
func NextAccountNumber(date time.Time, existing []string) string {
	fy := FiscalYearOf(date)
	prefix := fy.Prefix()

	maxSeq := 0
	for _, acc := range existing {
		if !strings.HasPrefix(acc, prefix) {
			continue
		}
		parts := strings.Split(acc, "/")
		if len(parts) < 2 {
			continue
		}
		seq, err := strconv.Atoi(parts[1])
		if err != nil {
			continue
		}
		if seq > maxSeq {
			maxSeq = seq
		}
	}
	return fmt.Sprintf("%s%d", prefix, maxSeq+1)
}

// Exists reports whether candidate is already taken. Comparison ignores
// surrounding whitespace and case.
func Exists(existing []string, candidate string) bool {
	want := strings.ToLower(strings.TrimSpace(candidate))
	if want == "" {
		return false
	}
	for _, acc := range existing {
		if strings.ToLower(strings.TrimSpace(acc)) == want {
			return true
		}
	}
	return false
}

// IsDuplicateMessage reports whether a backend error message describes an
// account number collision.
func IsDuplicateMessage(msg string) bool {
	return duplicatePattern.MatchString(msg)
}

// Resolve returns the number to submit: the trimmed candidate, or the year's
// first number when the field was left blank.
func Resolve(candidate string, date time.Time) string {
	trimmed := strings.TrimSpace(candidate)
	if trimmed == "" {
		return FiscalYearOf(date).First()
	}
	return trimmed
}
