package timeline

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sammoorhouse/mentos/internal/model"
)

func TestIsTakeaway(t *testing.T) {
	tests := []struct {
		name     string
		txn      model.Transaction
		expected bool
	}{
		{name: "delivery category", txn: model.Transaction{Category: "delivery"}, expected: true},
		{name: "takeaway category", txn: model.Transaction{Category: "takeaway"}, expected: true},
		{name: "food_delivery category", txn: model.Transaction{Category: "food_delivery"}, expected: true},
		{name: "meal_delivery category", txn: model.Transaction{Category: "meal_delivery"}, expected: true},
		{name: "category is case insensitive", txn: model.Transaction{Category: "Delivery"}, expected: true},
		{name: "fast food mcc", txn: model.Transaction{Category: "restaurants", MCC: 5814}, expected: true},
		{name: "groceries", txn: model.Transaction{Category: "groceries"}, expected: false},
		{name: "other mcc", txn: model.Transaction{MCC: 5411}, expected: false},
		{name: "uncategorised", txn: model.Transaction{}, expected: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, IsTakeaway(&tt.txn))
		})
	}
}

func TestBuildDailyRollups(t *testing.T) {
	london, err := time.LoadLocation("Europe/London")
	require.NoError(t, err)

	transactions := []model.Transaction{
		{ID: "tx-1", Timestamp: time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC), Amount: -2500, Category: "groceries"},
		{ID: "tx-2", Timestamp: time.Date(2026, 3, 10, 19, 0, 0, 0, time.UTC), Amount: -1800, Category: "delivery"},
		{ID: "tx-3", Timestamp: time.Date(2026, 3, 11, 8, 0, 0, 0, time.UTC), Amount: 250000},
	}

	rollups := BuildDailyRollups(transactions, london)
	require.Len(t, rollups, 2)

	d1 := rollups.Day(model.Date{Year: 2026, Month: time.March, Day: 10})
	assert.Equal(t, int64(4300), d1.SpendTotal)
	assert.Equal(t, []string{"tx-1", "tx-2"}, d1.TransactionIDs)
	assert.Equal(t, []string{"tx-2"}, d1.TakeawayTxnIDs)

	// Inbound money contributes nothing to spend
	d2 := rollups.Day(model.Date{Year: 2026, Month: time.March, Day: 11})
	assert.Equal(t, int64(0), d2.SpendTotal)
	assert.Equal(t, []string{"tx-3"}, d2.TransactionIDs)
}

func TestBuildDailyRollupsTimezoneBoundary(t *testing.T) {
	london, err := time.LoadLocation("Europe/London")
	require.NoError(t, err)

	// 23:30 UTC in June is 00:30 the next day in London
	transactions := []model.Transaction{
		{ID: "tx-1", Timestamp: time.Date(2026, 6, 10, 23, 30, 0, 0, time.UTC), Amount: -500},
	}

	rollups := BuildDailyRollups(transactions, london)
	assert.Empty(t, rollups.Day(model.Date{Year: 2026, Month: time.June, Day: 10}).TransactionIDs)
	assert.Equal(t, []string{"tx-1"}, rollups.Day(model.Date{Year: 2026, Month: time.June, Day: 11}).TransactionIDs)
}

func TestRollupsDayEmpty(t *testing.T) {
	rollups := Rollups{}
	empty := rollups.Day(model.Date{Year: 2026, Month: time.March, Day: 10})
	assert.Equal(t, int64(0), empty.SpendTotal)
	assert.Empty(t, empty.TransactionIDs)
}
