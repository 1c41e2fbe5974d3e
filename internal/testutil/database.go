// Package testutil provides shared helpers for tests that need a real
// storage layer or deterministic transaction fixtures.
package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/sammoorhouse/mentos/internal/model"
	"github.com/sammoorhouse/mentos/internal/service"
	"github.com/sammoorhouse/mentos/internal/storage"
)

// TestDB represents a test database with associated test utilities.
type TestDB struct {
	Storage service.Storage
	t       *testing.T
}

// SetupTestDB creates a new in-memory test database. It automatically
// handles migrations and cleanup.
func SetupTestDB(t *testing.T) *TestDB {
	t.Helper()

	store, err := storage.NewSQLiteStorage(":memory:")
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}

	if err := store.Migrate(context.Background()); err != nil {
		t.Fatalf("failed to run migrations: %v", err)
	}

	t.Cleanup(func() {
		_ = store.Close()
	})

	return &TestDB{Storage: store, t: t}
}

// SeedTransactions saves the given transactions, failing the test on error.
func (db *TestDB) SeedTransactions(transactions []model.Transaction) {
	db.t.Helper()
	if err := db.Storage.SaveTransactions(context.Background(), transactions); err != nil {
		db.t.Fatalf("failed to seed transactions: %v", err)
	}
}

// SeedPreferences saves the given preferences, failing the test on error.
func (db *TestDB) SeedPreferences(prefs *model.Preferences) {
	db.t.Helper()
	if err := db.Storage.SavePreferences(context.Background(), prefs); err != nil {
		db.t.Fatalf("failed to seed preferences: %v", err)
	}
}

// Spend builds an outbound transaction fixture.
func Spend(id, userID string, at time.Time, pence int64, merchant, category string) model.Transaction {
	return model.Transaction{
		ID:           id,
		UserID:       userID,
		AccountID:    "acct-1",
		Timestamp:    at,
		Description:  merchant,
		MerchantName: merchant,
		Category:     category,
		Amount:       -pence,
	}
}

// Income builds an inbound transaction fixture.
func Income(id, userID string, at time.Time, pence int64, source string) model.Transaction {
	return model.Transaction{
		ID:           id,
		UserID:       userID,
		AccountID:    "acct-1",
		Timestamp:    at,
		Description:  source,
		MerchantName: source,
		Amount:       pence,
	}
}
