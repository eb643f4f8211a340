package loan

import (
	"strings"

	"github.com/shopspring/decimal"
)

// FirstAssetID is the asset number given to the first jewel of a form.
const FirstAssetID = 10000

// Jewel is one pledged item. Weights are kept as entered, in grams.
type Jewel struct {
	ID        int    `json:"id"`
	JewelType string `json:"jewelType"`
	StoneWt   string `json:"stoneWt"`
	GoldWt    string `json:"goldWt"`
	TotalWt   string `json:"totalWt"`
	AssetID   int    `json:"assetId"`
}

// Recalculate sets TotalWt to stone + gold weight, two decimals.
// Unparseable weights count as zero.
func (j *Jewel) Recalculate() {
	total := weight(j.StoneWt).Add(weight(j.GoldWt))
	j.TotalWt = total.StringFixed(2)
}

// Blank reports whether the row carries no data
func (j Jewel) Blank() bool {
	return strings.TrimSpace(j.JewelType) == "" &&
		strings.TrimSpace(j.StoneWt) == "" &&
		strings.TrimSpace(j.GoldWt) == ""
}

func weight(s string) decimal.Decimal {
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return decimal.Zero
	}
	return d
}

// NewJewelRows returns the single empty row a new form starts with.
func NewJewelRows() []Jewel {
	return []Jewel{{ID: 1, AssetID: FirstAssetID, TotalWt: "0.00"}}
}

// AppendJewel adds an empty row with the next asset id.
func AppendJewel(rows []Jewel) []Jewel {
	nextID, nextAsset := 1, FirstAssetID
	for _, r := range rows {
		if r.ID >= nextID {
			nextID = r.ID + 1
		}
		if r.AssetID >= nextAsset {
			nextAsset = r.AssetID + 1
		}
	}
	return append(rows, Jewel{ID: nextID, AssetID: nextAsset, TotalWt: "0.00"})
}

// RemoveJewel drops the row with id
func RemoveJewel(rows []Jewel, id int) []Jewel {
	out := rows[:0:0]
	for _, r := range rows {
		if r.ID != id {
			out = append(out, r)
		}
	}
	return out
}

// Weights sums the stone, gold and total weight of rows.
type Weights struct {
	Stone decimal.Decimal
	Gold  decimal.Decimal
	Total decimal.Decimal
}

// TotalWeights sums all rows.
func TotalWeights(rows []Jewel) Weights {
	var w Weights
	for _, r := range rows {
		w.Stone = w.Stone.Add(weight(r.StoneWt))
		w.Gold = w.Gold.Add(weight(r.GoldWt))
		w.Total = w.Total.Add(weight(r.TotalWt))
	}
	return w
}

// JewelsFor returns the rows to submit for loan type t: recalculated rows for
// jewel-backed loans, none otherwise.
func JewelsFor(t Type, rows []Jewel) []Jewel {
	if !t.HasJewels() {
		return []Jewel{}
	}
	out := make([]Jewel, len(rows))
	for i, r := range rows {
		r.Recalculate()
		out[i] = r
	}
	return out
}
