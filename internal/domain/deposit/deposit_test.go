package deposit

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDetail_Effective(t *testing.T) {
	t.Run("last payment wins", func(t *testing.T) {
		var d Detail
		require.NoError(t, json.Unmarshal([]byte(`{
			"id": "d1",
			"deposit": {"outstanding": 100000, "pendingInterest": 500, "status": "ACTIVE"},
			"payments": [{"pendingPrincipal": 90000, "pendingInterest": 0}]
		}`), &d))
		assert.Equal(t, "90000", d.Outstanding().String())
		assert.True(t, d.PendingInterest().IsZero())
		assert.False(t, d.Closed())
	})

	t.Run("missing payment fields fall back to deposit", func(t *testing.T) {
		var d Detail
		require.NoError(t, json.Unmarshal([]byte(`{
			"deposit": {"outstanding": 100000, "pendingInterest": 500, "status": "CLOSED"},
			"payments": [{"interestPaid": 100, "principalPaid": 50}]
		}`), &d))
		assert.Equal(t, "100000", d.Outstanding().String())
		assert.Equal(t, "500", d.PendingInterest().String())
		assert.Equal(t, "150", d.Payments[0].TotalPaid().String())
		assert.True(t, d.Closed())
	})
}

func TestTotalOutstanding(t *testing.T) {
	var rows []Summary
	require.NoError(t, json.Unmarshal([]byte(`[{"outstanding": 1000}, {"outstanding": null}, {"outstanding": 250.5}]`), &rows))
	assert.Equal(t, "1250.5", TotalOutstanding(rows).String())
}

func TestDraft_Build(t *testing.T) {
	tests := []struct {
		name    string
		draft   Draft
		wantErr string
	}{
		{"financier required", Draft{StartDate: "2025-04-01", OriginalAmount: "10"}, "Financier name is required"},
		{"start date required", Draft{FinancierName: "KVB", OriginalAmount: "10"}, "Start date is required"},
		{"amount required", Draft{FinancierName: "KVB", StartDate: "2025-04-01", OriginalAmount: "0.9"}, "Original amount is required"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.draft.Build()
			assert.EqualError(t, err, tt.wantErr)
		})
	}

	t.Run("builds body", func(t *testing.T) {
		req, err := Draft{FinancierName: " KVB ", StartDate: "2025-04-01", OriginalAmount: "150000.75", MonthlyPct: "1"}.Build()
		require.NoError(t, err)
		assert.Equal(t, "KVB", req.Financier.Name)
		assert.Nil(t, req.Financier.Phone)
		assert.Equal(t, int64(150000), req.Deposit.OriginalAmount)
		assert.Equal(t, 1.0, req.Deposit.MonthlyPct)

		body, err := json.Marshal(req)
		require.NoError(t, err)
		assert.JSONEq(t, `{
			"financier": {"name": "KVB", "phone": null, "referenceNo": null},
			"deposit": {"startDate": "2025-04-01", "originalAmount": 150000, "monthlyPct": 1, "yearlyPct": 0, "remarks": null}
		}`, string(body))
	})
}

func TestPaymentInput_Request(t *testing.T) {
	t.Run("blank interest omitted", func(t *testing.T) {
		req := PaymentInput{FromDate: "2025-04-01", ToDate: "2025-05-01", Principal: "-5", Adjustment: "12.8"}.Request()
		assert.Nil(t, req.InterestAmount)
		assert.Equal(t, int64(0), req.Principal)
		assert.Equal(t, int64(12), req.Adjustment)
		assert.Equal(t, "2025-05-01", req.Date)

		body, err := json.Marshal(req)
		require.NoError(t, err)
		assert.NotContains(t, string(body), "interestAmount")
	})

	t.Run("interest sent when entered", func(t *testing.T) {
		req := PaymentInput{Interest: "1500.4", Note: " paid "}.Request()
		require.NotNil(t, req.InterestAmount)
		assert.Equal(t, int64(1500), *req.InterestAmount)
		assert.Equal(t, "paid", *req.Note)
	})
}

func TestParseStatus(t *testing.T) {
	assert.Equal(t, StatusActive, ParseStatus("active"))
	assert.Equal(t, StatusClosed, ParseStatus("CLOSED"))
	assert.Equal(t, Status(""), ParseStatus("all"))
}
