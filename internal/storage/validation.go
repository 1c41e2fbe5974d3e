package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/sammoorhouse/mentos/internal/model"
)

// Validation errors.
var (
	ErrNilContext         = errors.New("context cannot be nil")
	ErrEmptyString        = errors.New("string parameter cannot be empty")
	ErrNilParameter       = errors.New("parameter cannot be nil")
	ErrEmptySlice         = errors.New("slice cannot be empty")
	ErrInvalidTransaction = errors.New("invalid transaction")
	ErrInvalidRecord      = errors.New("invalid notification record")
	ErrInvalidTarget      = errors.New("invalid target")
)

// validateContext ensures the context is not nil.
func validateContext(ctx context.Context) error {
	if ctx == nil {
		return ErrNilContext
	}
	return nil
}

// validateString ensures a string parameter is not empty.
func validateString(s string, paramName string) error {
	if strings.TrimSpace(s) == "" {
		return fmt.Errorf("%w: %s", ErrEmptyString, paramName)
	}
	return nil
}

// validateTransactions validates a slice of transactions.
func validateTransactions(transactions []model.Transaction) error {
	if len(transactions) == 0 {
		return fmt.Errorf("%w: transactions", ErrEmptySlice)
	}
	for i, txn := range transactions {
		if txn.ID == "" {
			return fmt.Errorf("%w: missing ID at index %d", ErrInvalidTransaction, i)
		}
		if txn.UserID == "" {
			return fmt.Errorf("%w: missing user ID at index %d", ErrInvalidTransaction, i)
		}
		if txn.Timestamp.IsZero() {
			return fmt.Errorf("%w: missing timestamp at index %d", ErrInvalidTransaction, i)
		}
	}
	return nil
}

// validateNotification validates a notification record before persistence.
func validateNotification(record *model.NotificationRecord) error {
	if record == nil {
		return fmt.Errorf("%w: record", ErrNilParameter)
	}
	if record.UserID == "" {
		return fmt.Errorf("%w: missing user ID", ErrInvalidRecord)
	}
	if record.InsightID == "" {
		return fmt.Errorf("%w: missing insight ID", ErrInvalidRecord)
	}
	if record.SentAt.IsZero() {
		return fmt.Errorf("%w: missing sent timestamp", ErrInvalidRecord)
	}
	return nil
}

// validateTargets validates target rows before persistence.
func validateTargets(targets []model.Target) error {
	if len(targets) == 0 {
		return fmt.Errorf("%w: targets", ErrEmptySlice)
	}
	for i, target := range targets {
		if target.UserID == "" {
			return fmt.Errorf("%w: missing user ID at index %d", ErrInvalidTarget, i)
		}
		if target.Focus == "" {
			return fmt.Errorf("%w: missing focus at index %d", ErrInvalidTarget, i)
		}
		if target.Period == "" {
			return fmt.Errorf("%w: missing period at index %d", ErrInvalidTarget, i)
		}
	}
	return nil
}
