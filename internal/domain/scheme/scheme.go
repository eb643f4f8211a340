// Package scheme models user-defined interest schemes: named tables mapping
// day ranges to a monthly interest percentage.
package scheme

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/pawnfin/console/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// StorageKey is the configuration key the scheme collection is kept under.
const StorageKey = "pawn_interest_schemes_v1"

// MaxRows is the largest number of rows a scheme may carry.
const MaxRows = 10

// NoneValue is the scheme selector value meaning "enter the rate manually".
const NoneValue = "None"

// ErrNotFound is returned when a scheme id is unknown
var ErrNotFound = shared.NewDomainError("SCHEME_NOT_FOUND", "Scheme not found")

// Row maps an inclusive day range to a monthly interest percentage.
// A nil EndDay is unbounded.
type Row struct {
	StartDay    int
	EndDay      *int
	InterestPct decimal.Decimal
}

// Covers reports whether day falls inside the row's range
func (r Row) Covers(day int) bool {
	if day < r.StartDay {
		return false
	}
	return r.EndDay == nil || day <= *r.EndDay
}

// Scheme is a named set of interest rows, sorted by StartDay.
type Scheme struct {
	ID   string
	Name string
	Rows []Row
}

// DefaultMonthlyPct picks the rate used to pre-fill a new loan: the row
// starting on day 1, else the first row. ok is false when no positive rate exists.
func (s *Scheme) DefaultMonthlyPct() (pct decimal.Decimal, ok bool) {
	if len(s.Rows) == 0 {
		return decimal.Zero, false
	}
	rows := sortedRows(s.Rows)
	preferred := rows[0]
	for _, r := range rows {
		if r.StartDay == 1 {
			preferred = r
			break
		}
	}
	if !preferred.InterestPct.IsPositive() {
		return decimal.Zero, false
	}
	return preferred.InterestPct, true
}

// RateForDay returns the rate of the first row covering day.
func (s *Scheme) RateForDay(day int) (decimal.Decimal, bool) {
	for _, r := range sortedRows(s.Rows) {
		if r.Covers(day) {
			return r.InterestPct, true
		}
	}
	return decimal.Zero, false
}

func sortedRows(rows []Row) []Row {
	out := make([]Row, len(rows))
	copy(out, rows)
	sort.SliceStable(out, func(i, j int) bool { return out[i].StartDay < out[j].StartDay })
	return out
}

// FindByName returns the first scheme named name.
func FindByName(schemes []Scheme, name string) (*Scheme, bool) {
	for i := range schemes {
		if schemes[i].Name == name {
			return &schemes[i], true
		}
	}
	return nil, false
}

// Repository persists the scheme collection.
type Repository interface {
	List(ctx context.Context) ([]Scheme, error)
	Get(ctx context.Context, id string) (*Scheme, error)
	// Save inserts s or replaces the scheme with the same ID, keeping its position.
	Save(ctx context.Context, s *Scheme) error
	Delete(ctx context.Context, id string) error
}

// DraftRow is one editor row as typed by the user.
type DraftRow struct {
	StartDay    string
	EndDay      string
	InterestPct string
}

func (r DraftRow) blank() bool {
	return strings.TrimSpace(r.StartDay) == "" &&
		strings.TrimSpace(r.EndDay) == "" &&
		strings.TrimSpace(r.InterestPct) == ""
}

// Draft is the editor state for a scheme. An empty ID means a new scheme.
type Draft struct {
	ID   string
	Name string
	Rows []DraftRow
}

// NewDraft returns the editor state for a brand new scheme.
func NewDraft() Draft {
	return Draft{Rows: []DraftRow{{StartDay: "1"}}}
}

// DraftOf loads s into the editor.
func DraftOf(s *Scheme) Draft {
	d := Draft{ID: s.ID, Name: s.Name}
	for _, r := range s.Rows {
		d.Rows = append(d.Rows, DraftRow{
			StartDay:    fmt.Sprint(r.StartDay),
			EndDay:      formatEndDay(r.EndDay),
			InterestPct: r.InterestPct.String(),
		})
	}
	if len(d.Rows) == 0 {
		d.Rows = []DraftRow{{StartDay: "1"}}
	}
	return d
}

func formatEndDay(end *int) string {
	if end == nil {
		return ""
	}
	return fmt.Sprint(*end)
}

// AddRow appends an empty row unless the draft is full.
func (d *Draft) AddRow() bool {
	if len(d.Rows) >= MaxRows {
		return false
	}
	d.Rows = append(d.Rows, DraftRow{})
	return true
}

// RemoveRow drops the row at index i unless it is the last one left.
func (d *Draft) RemoveRow(i int) bool {
	if len(d.Rows) <= 1 || i < 0 || i >= len(d.Rows) {
		return false
	}
	d.Rows = append(d.Rows[:i], d.Rows[i+1:]...)
	return true
}

// Build validates the draft and returns the scheme to persist. Fully blank
// rows are dropped; the rest are sorted by start day. The first failure wins.
func (d Draft) Build() (*Scheme, error) {
	name := strings.TrimSpace(d.Name)
	if name == "" {
		return nil, shared.NewValidationError("name", "Please enter a scheme name.")
	}
	if len(d.Rows) > MaxRows {
		return nil, shared.NewValidationError("rows", fmt.Sprintf("A scheme can have at most %d rows.", MaxRows))
	}

	rows := make([]Row, 0, len(d.Rows))
	for i, dr := range d.Rows {
		if dr.blank() {
			continue
		}
		row, err := parseRow(i+1, dr)
		if err != nil {
			return nil, err
		}
		rows = append(rows, row)
	}
	if len(rows) == 0 {
		return nil, shared.NewValidationError("rows", "Please add at least one valid row.")
	}

	return &Scheme{ID: d.ID, Name: name, Rows: sortedRows(rows)}, nil
}

func parseRow(n int, dr DraftRow) (Row, error) {
	start, ok := positiveWhole(dr.StartDay)
	if !ok {
		return Row{}, shared.NewValidationError("rows", fmt.Sprintf("Row %d: Start day must be a positive number.", n))
	}

	pct, ok := shared.ParseNumber(dr.InterestPct)
	if !ok || !pct.IsPositive() {
		return Row{}, shared.NewValidationError("rows", fmt.Sprintf("Row %d: Interest %% must be a positive number.", n))
	}

	row := Row{StartDay: start, InterestPct: pct}
	if strings.TrimSpace(dr.EndDay) != "" {
		end, ok := positiveWhole(dr.EndDay)
		if !ok || end < start {
			return Row{}, shared.NewValidationError("rows",
				fmt.Sprintf("Row %d: End day must be a number ≥ Start day, or left blank for infinite.", n))
		}
		row.EndDay = &end
	}
	return row, nil
}

func positiveWhole(s string) (int, bool) {
	d, ok := shared.ParseNumber(s)
	if !ok || !d.IsPositive() || !d.Equal(d.Truncate(0)) {
		return 0, false
	}
	return int(d.IntPart()), true
}

// Label is the editor heading: "Editing: <name>" for stored schemes.
func Label(editingID string, schemes []Scheme) string {
	if editingID == "" {
		return "New scheme"
	}
	for _, s := range schemes {
		if s.ID == editingID {
			return "Editing: " + s.Name
		}
	}
	return "New scheme"
}
