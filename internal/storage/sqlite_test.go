package storage

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sammoorhouse/mentos/internal/common"
	"github.com/sammoorhouse/mentos/internal/model"
)

func setupTestStorage(t *testing.T) *SQLiteStorage {
	t.Helper()
	store, err := NewSQLiteStorage(":memory:")
	require.NoError(t, err)
	require.NoError(t, store.Migrate(context.Background()))
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func testTransaction(id, userID string, at time.Time, amount int64) model.Transaction {
	return model.Transaction{
		ID:           id,
		UserID:       userID,
		AccountID:    "acct-1",
		Timestamp:    at,
		Description:  "DELIVEROO.CO.UK",
		MerchantName: "Deliveroo",
		Category:     "delivery",
		Amount:       amount,
	}
}

func TestSaveAndGetTransactions(t *testing.T) {
	store := setupTestStorage(t)
	ctx := context.Background()
	base := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

	transactions := []model.Transaction{
		testTransaction("tx-1", "alice", base, -2500),
		testTransaction("tx-2", "alice", base.AddDate(0, 0, 1), -1200),
		testTransaction("tx-3", "bob", base, -999),
	}
	require.NoError(t, store.SaveTransactions(ctx, transactions))

	got, err := store.GetTransactionsByUser(ctx, "alice", base.AddDate(0, 0, -1))
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "tx-1", got[0].ID)
	assert.Equal(t, "tx-2", got[1].ID)
	assert.Equal(t, int64(-2500), got[0].Amount)
	assert.Equal(t, "Deliveroo", got[0].MerchantName)
	assert.Equal(t, "delivery", got[0].Category)

	// The from bound excludes earlier transactions
	got, err = store.GetTransactionsByUser(ctx, "alice", base.AddDate(0, 0, 1))
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "tx-2", got[0].ID)
}

func TestSaveTransactionsIdempotent(t *testing.T) {
	store := setupTestStorage(t)
	ctx := context.Background()
	base := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

	txns := []model.Transaction{testTransaction("tx-1", "alice", base, -2500)}
	require.NoError(t, store.SaveTransactions(ctx, txns))

	// Re-importing the same statement must not duplicate rows
	require.NoError(t, store.SaveTransactions(ctx, txns))

	got, err := store.GetTransactionsByUser(ctx, "alice", base.AddDate(0, 0, -1))
	require.NoError(t, err)
	assert.Len(t, got, 1)
}

func TestSaveTransactionsValidation(t *testing.T) {
	store := setupTestStorage(t)
	ctx := context.Background()

	err := store.SaveTransactions(ctx, nil)
	assert.ErrorIs(t, err, ErrEmptySlice)

	err = store.SaveTransactions(ctx, []model.Transaction{{UserID: "alice", Timestamp: time.Now()}})
	assert.ErrorIs(t, err, ErrInvalidTransaction)
}

func TestPreferencesRoundTrip(t *testing.T) {
	store := setupTestStorage(t)
	ctx := context.Background()

	_, err := store.GetPreferences(ctx, "alice")
	assert.ErrorIs(t, err, common.ErrNotFound)

	prefs := &model.Preferences{
		UserID:                 "alice",
		Timezone:               "Europe/London",
		Tone:                   "supportive",
		QuietHours:             model.QuietHours{Start: "22:00", End: "07:00"},
		DailyBudget:            3000,
		MaxNotificationsPerDay: 2,
	}
	require.NoError(t, store.SavePreferences(ctx, prefs))

	got, err := store.GetPreferences(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, prefs.Timezone, got.Timezone)
	assert.Equal(t, prefs.QuietHours, got.QuietHours)
	assert.Equal(t, prefs.DailyBudget, got.DailyBudget)
	assert.Equal(t, prefs.MaxNotificationsPerDay, got.MaxNotificationsPerDay)

	// Upsert replaces the row
	prefs.DailyBudget = 5000
	require.NoError(t, store.SavePreferences(ctx, prefs))
	got, err = store.GetPreferences(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, int64(5000), got.DailyBudget)
}

func TestGoalSummary(t *testing.T) {
	store := setupTestStorage(t)
	ctx := context.Background()

	summary, err := store.GetGoalSummary(ctx, "alice")
	require.NoError(t, err)
	assert.Empty(t, summary.ActiveGoalIDs)
	assert.Empty(t, summary.ActiveGoalTags)

	require.NoError(t, store.SaveGoal(ctx, &model.Goal{UserID: "alice", Tag: "cut_takeaway", Focus: "takeaway_spend", Active: true}))
	require.NoError(t, store.SaveGoal(ctx, &model.Goal{UserID: "alice", Tag: "save_more", Focus: "overall", Active: false}))

	fired, err := store.EnsureBreakthrough(ctx, "alice", "budget_streak_7_2026-03-10", time.Now())
	require.NoError(t, err)
	require.True(t, fired)

	summary, err = store.GetGoalSummary(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, []string{"cut_takeaway"}, summary.ActiveGoalTags)
	assert.Len(t, summary.ActiveGoalIDs, 1)
	assert.Equal(t, 1, summary.RecentBreakthroughsCount)
}

func TestEnsureBreakthroughExactlyOnce(t *testing.T) {
	store := setupTestStorage(t)
	ctx := context.Background()
	at := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)

	fired, err := store.EnsureBreakthrough(ctx, "alice", "budget_streak_7_2026-03-10", at)
	require.NoError(t, err)
	assert.True(t, fired)

	// Replaying the same key never fires again
	fired, err = store.EnsureBreakthrough(ctx, "alice", "budget_streak_7_2026-03-10", at)
	require.NoError(t, err)
	assert.False(t, fired)

	// A different key for the same user still fires
	fired, err = store.EnsureBreakthrough(ctx, "alice", "budget_streak_14_2026-03-17", at)
	require.NoError(t, err)
	assert.True(t, fired)

	// Same key for a different user fires independently
	fired, err = store.EnsureBreakthrough(ctx, "bob", "budget_streak_7_2026-03-10", at)
	require.NoError(t, err)
	assert.True(t, fired)
}

func TestNotificationsRoundTrip(t *testing.T) {
	store := setupTestStorage(t)
	ctx := context.Background()
	sentAt := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)

	record := &model.NotificationRecord{
		UserID:            "alice",
		InsightID:         "delivery_creep",
		DedupeKey:         "abc123",
		EvidenceSignature: `{"windows.last_14d.merchant_frequency":{"Deliveroo":4}}`,
		Status:            model.NotificationSent,
		SentAt:            sentAt,
		Payload:           map[string]any{"insight_id": "delivery_creep", "message": "hi"},
	}
	require.NoError(t, store.SaveNotification(ctx, record))
	assert.NotEmpty(t, record.ID)

	suppressed := &model.NotificationRecord{
		UserID:    "alice",
		InsightID: "late_night_spend",
		Status:    model.NotificationSuppressed,
		SentAt:    sentAt.Add(time.Hour),
	}
	require.NoError(t, store.SaveNotification(ctx, suppressed))

	records, err := store.GetNotifications(ctx, "alice", sentAt.Add(-time.Hour))
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "delivery_creep", records[0].InsightID)
	assert.Equal(t, "abc123", records[0].DedupeKey)
	assert.Equal(t, "delivery_creep", records[0].Payload["insight_id"])
	assert.Equal(t, model.NotificationSuppressed, records[1].Status)

	// The since bound filters older rows
	records, err = store.GetNotifications(ctx, "alice", sentAt.Add(30*time.Minute))
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "late_night_spend", records[0].InsightID)
}

func TestSaveTargets(t *testing.T) {
	store := setupTestStorage(t)
	ctx := context.Background()

	targets := []model.Target{
		{UserID: "alice", Focus: "takeaway_spend", Period: "month", Amount: 1300, AcceptedAt: time.Now()},
		{UserID: "alice", Focus: "overall", Period: "week", Amount: 20000, AcceptedAt: time.Now()},
	}
	require.NoError(t, store.SaveTargets(ctx, targets))
	assert.NotEmpty(t, targets[0].ID)
	assert.NotEmpty(t, targets[1].ID)

	err := store.SaveTargets(ctx, []model.Target{{UserID: "alice"}})
	assert.ErrorIs(t, err, ErrInvalidTarget)
}

func TestMigrateIdempotent(t *testing.T) {
	store := setupTestStorage(t)
	// Running migrations again is a no-op
	require.NoError(t, store.Migrate(context.Background()))
}
