package models

import (
	"encoding/json"

	"github.com/pawnfin/console/internal/domain/scheme"
	"github.com/shopspring/decimal"
)

// SchemeRecord is the stored JSON shape of an interest scheme. Percentages
// are written as JSON numbers; quoted numbers are accepted on read.
type SchemeRecord struct {
	ID   string      `json:"id"`
	Name string      `json:"name"`
	Rows []SchemeRow `json:"rows"`
}

// SchemeRow is one stored scheme row; a null endDay is unbounded.
type SchemeRow struct {
	StartDay    int         `json:"startDay"`
	EndDay      *int        `json:"endDay"`
	InterestPct json.Number `json:"interestPct"`
}

// ToDomain converts the record. Rows whose percentage does not parse are dropped.
func (r SchemeRecord) ToDomain() scheme.Scheme {
	s := scheme.Scheme{ID: r.ID, Name: r.Name, Rows: make([]scheme.Row, 0, len(r.Rows))}
	for _, row := range r.Rows {
		pct, err := decimal.NewFromString(row.InterestPct.String())
		if err != nil {
			continue
		}
		s.Rows = append(s.Rows, scheme.Row{StartDay: row.StartDay, EndDay: row.EndDay, InterestPct: pct})
	}
	return s
}

// SchemeRecordFromDomain converts s for storage
func SchemeRecordFromDomain(s scheme.Scheme) SchemeRecord {
	r := SchemeRecord{ID: s.ID, Name: s.Name, Rows: make([]SchemeRow, 0, len(s.Rows))}
	for _, row := range s.Rows {
		r.Rows = append(r.Rows, SchemeRow{
			StartDay:    row.StartDay,
			EndDay:      row.EndDay,
			InterestPct: json.Number(row.InterestPct.String()),
		})
	}
	return r
}
