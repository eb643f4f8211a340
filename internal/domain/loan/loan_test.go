package loan

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestParseType(t *testing.T) {
	for _, in := range []string{"Gold", "GOLD", " gold "} {
		got, ok := ParseType(in)
		require.True(t, ok, in)
		assert.Equal(t, TypeGold, got)
	}
	_, ok := ParseType("Platinum")
	assert.False(t, ok)

	assert.Equal(t, "DOCUMENT", TypeDocument.APIValue())
	assert.True(t, TypeSilver.HasJewels())
	assert.False(t, TypeDocument.HasJewels())
}

func TestTypeLabel(t *testing.T) {
	assert.Equal(t, "Document", TypeLabel("DOCUMENT"))
	assert.Equal(t, "Gold", TypeLabel("GOLD"))
	assert.Equal(t, "Silver", TypeLabel("Silver"))
	assert.Equal(t, "Vehicle", TypeLabel("Vehicle"))
	assert.Equal(t, "", TypeLabel(""))
}

func TestMonthlyInterestAmount(t *testing.T) {
	assert.Equal(t, "250.00", MonthlyInterestAmount(d("12500"), d("2")).StringFixed(2))
	assert.Equal(t, "33.33", MonthlyInterestAmount(d("1000"), d("3.3333")).StringFixed(2))
}

func TestDisplayMonthlyInterest(t *testing.T) {
	assert.Equal(t, int64(188), DisplayMonthlyInterest(d("12500"), d("1.5")))
	assert.Equal(t, int64(0), DisplayMonthlyInterest(d("0"), d("2")))
}

func TestSyncRates(t *testing.T) {
	t.Run("monthly drives yearly", func(t *testing.T) {
		m, y := SyncRates("2", "", RateMonthly)
		assert.Equal(t, "2", m)
		assert.Equal(t, "24", y)
	})

	t.Run("round trip is stable", func(t *testing.T) {
		m, y := SyncRates("2", "", RateMonthly)
		m2, y2 := SyncRates(m, y, RateYearly)
		assert.True(t, d(m2).Equal(d("2")))
		assert.Equal(t, "24", y2)
	})

	t.Run("yearly drives monthly", func(t *testing.T) {
		m, y := SyncRates("", "18", RateYearly)
		assert.Equal(t, "1.5", m)
		assert.Equal(t, "18", y)
	})

	t.Run("invalid input clears the other field", func(t *testing.T) {
		m, y := SyncRates("abc", "24", RateMonthly)
		assert.Equal(t, "abc", m)
		assert.Equal(t, "", y)
	})
}

func TestJewels(t *testing.T) {
	rows := NewJewelRows()
	require.Len(t, rows, 1)
	assert.Equal(t, FirstAssetID, rows[0].AssetID)

	rows = AppendJewel(rows)
	rows = AppendJewel(rows)
	assert.Equal(t, []int{10000, 10001, 10002}, []int{rows[0].AssetID, rows[1].AssetID, rows[2].AssetID})

	rows[0].StoneWt, rows[0].GoldWt = "1.5", "10"
	rows[1].StoneWt, rows[1].GoldWt = "x", "2.25"

	out := JewelsFor(TypeGold, rows)
	assert.Equal(t, "11.50", out[0].TotalWt)
	assert.Equal(t, "2.25", out[1].TotalWt)

	w := TotalWeights(out)
	assert.Equal(t, "13.75", w.Total.StringFixed(2))
	assert.Equal(t, "12.25", w.Gold.StringFixed(2))

	assert.Empty(t, JewelsFor(TypeDocument, rows))

	rows = RemoveJewel(rows, rows[1].ID)
	assert.Len(t, rows, 2)
}

func TestPlanPayment(t *testing.T) {
	t.Run("nothing entered", func(t *testing.T) {
		_, err := PlanPayment(PaymentInput{Interest: "", Principal: "0", Adjustment: ""})
		require.Error(t, err)
		assert.Equal(t, MsgNothingToPay, err.Error())
	})

	t.Run("zero interest override counts as nothing", func(t *testing.T) {
		_, err := PlanPayment(PaymentInput{Interest: "0"})
		assert.EqualError(t, err, MsgNothingToPay)
	})

	t.Run("interest only", func(t *testing.T) {
		plan, err := PlanPayment(PaymentInput{FromDate: "2025-04-01", ToDate: "2025-05-01", Interest: "250.9", Note: "  cash "})
		require.NoError(t, err)
		require.NotNil(t, plan.Interest)
		assert.Nil(t, plan.Principal)
		require.NotNil(t, plan.Interest.InterestAmount)
		assert.Equal(t, int64(250), *plan.Interest.InterestAmount)
		assert.Equal(t, "cash", *plan.Interest.Note)
		assert.Equal(t, "2025-05-01", plan.Interest.ToDate)
	})

	t.Run("adjustment only omits interest amount", func(t *testing.T) {
		plan, err := PlanPayment(PaymentInput{Adjustment: "-40.7"})
		require.NoError(t, err)
		require.NotNil(t, plan.Interest)
		assert.Equal(t, int64(-40), plan.Interest.Adjustment)
		assert.Nil(t, plan.Interest.InterestAmount)
		assert.Nil(t, plan.Interest.Note)
	})

	t.Run("principal only becomes partial close", func(t *testing.T) {
		plan, err := PlanPayment(PaymentInput{ToDate: "2025-06-01", Principal: "5000.99"})
		require.NoError(t, err)
		assert.Nil(t, plan.Interest)
		require.NotNil(t, plan.Principal)
		assert.Equal(t, ClosePartial, plan.Principal.Mode)
		assert.Equal(t, int64(5000), plan.Principal.PrincipalAmount)
		assert.Equal(t, "2025-06-01", plan.Principal.Date)
	})

	t.Run("negative principal clamps to zero", func(t *testing.T) {
		plan, err := PlanPayment(PaymentInput{Principal: "-100", Interest: "10"})
		require.NoError(t, err)
		assert.Nil(t, plan.Principal)
		assert.NotNil(t, plan.Interest)
	})

	t.Run("both parts", func(t *testing.T) {
		plan, err := PlanPayment(PaymentInput{Principal: "100", Interest: "10"})
		require.NoError(t, err)
		assert.NotNil(t, plan.Interest)
		assert.NotNil(t, plan.Principal)
	})
}

func TestPlanFullClose(t *testing.T) {
	t.Run("requires both confirmations", func(t *testing.T) {
		_, err := PlanFullClose(CloseInput{ConfirmPrincipal: true}, decimal.Zero, decimal.Zero)
		assert.EqualError(t, err, MsgConfirmClose)
	})

	t.Run("outstanding principal blocks closing", func(t *testing.T) {
		_, err := PlanFullClose(CloseInput{ConfirmPrincipal: true, ConfirmInterest: true}, d("10"), decimal.Zero)
		assert.EqualError(t, err, MsgClearBeforeEnd)
	})

	t.Run("pending interest blocks closing", func(t *testing.T) {
		_, err := PlanFullClose(CloseInput{ConfirmPrincipal: true, ConfirmInterest: true}, decimal.Zero, d("1"))
		assert.EqualError(t, err, MsgClearBeforeEnd)
	})

	t.Run("settled loan closes", func(t *testing.T) {
		req, err := PlanFullClose(CloseInput{Date: "2025-07-01", Note: "", ConfirmPrincipal: true, ConfirmInterest: true}, decimal.Zero, decimal.Zero)
		require.NoError(t, err)
		assert.Equal(t, CloseFull, req.Mode)
		assert.Equal(t, int64(0), req.PrincipalAmount)
		assert.Equal(t, "2025-07-01", req.Date)
		assert.Nil(t, req.Note)
	})
}
