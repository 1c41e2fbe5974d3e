// Package service defines the interfaces for all application services.
package service

import (
	"context"
	"time"

	"github.com/sammoorhouse/mentos/internal/model"
)

// Storage defines the contract for our persistence layer. The timeline and
// insight components treat every call as an already-resolved input or output;
// they never retry or block on it themselves.
type Storage interface {
	// Transaction operations
	SaveTransactions(ctx context.Context, transactions []model.Transaction) error
	GetTransactionsByUser(ctx context.Context, userID string, from time.Time) ([]model.Transaction, error)

	// Preference and goal operations
	GetPreferences(ctx context.Context, userID string) (*model.Preferences, error)
	SavePreferences(ctx context.Context, prefs *model.Preferences) error
	SaveGoal(ctx context.Context, goal *model.Goal) error
	GetGoalSummary(ctx context.Context, userID string) (*model.GoalSummary, error)

	// Breakthrough registry. EnsureBreakthrough is an atomic
	// insert-if-absent: for a given (user, key) exactly one caller ever
	// observes fired=true.
	EnsureBreakthrough(ctx context.Context, userID, key string, occurredAt time.Time) (bool, error)

	// Notification history
	SaveNotification(ctx context.Context, record *model.NotificationRecord) error
	GetNotifications(ctx context.Context, userID string, since time.Time) ([]model.NotificationRecord, error)

	// Target rows created by accept_targets
	SaveTargets(ctx context.Context, targets []model.Target) error

	// Database management
	Migrate(ctx context.Context) error
	Close() error
}

// BreakthroughRegistry is the narrow slice of Storage the timeline generator
// needs for exactly-once celebration events.
type BreakthroughRegistry interface {
	EnsureBreakthrough(ctx context.Context, userID, key string, occurredAt time.Time) (bool, error)
}
