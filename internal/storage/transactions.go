package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/sammoorhouse/mentos/internal/model"
)

// SaveTransactions saves multiple transactions to the database. Existing
// ids are left untouched so re-importing a statement is idempotent.
func (s *SQLiteStorage) SaveTransactions(ctx context.Context, transactions []model.Transaction) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateTransactions(transactions); err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT OR IGNORE INTO transactions (
			id, user_id, account_id, timestamp, description,
			merchant_name, category, mcc, amount
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	for _, txn := range transactions {
		if _, err := stmt.ExecContext(ctx,
			txn.ID, txn.UserID, txn.AccountID, txn.Timestamp.UTC(),
			txn.Description, txn.MerchantName, txn.Category, txn.MCC, txn.Amount,
		); err != nil {
			return fmt.Errorf("failed to save transaction %s: %w", txn.ID, err)
		}
	}

	return tx.Commit()
}

// GetTransactionsByUser returns a user's transactions from the given instant
// onwards, ordered by timestamp ascending.
func (s *SQLiteStorage) GetTransactionsByUser(ctx context.Context, userID string, from time.Time) ([]model.Transaction, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(userID, "userID"); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, user_id, account_id, timestamp, description,
		       merchant_name, category, mcc, amount
		FROM transactions
		WHERE user_id = ? AND timestamp >= ?
		ORDER BY timestamp ASC
	`, userID, from.UTC())
	if err != nil {
		return nil, fmt.Errorf("failed to query transactions: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var transactions []model.Transaction
	for rows.Next() {
		var txn model.Transaction
		var accountID, merchantName, category sql.NullString
		if err := rows.Scan(
			&txn.ID, &txn.UserID, &accountID, &txn.Timestamp,
			&txn.Description, &merchantName, &category, &txn.MCC, &txn.Amount,
		); err != nil {
			return nil, fmt.Errorf("failed to scan transaction: %w", err)
		}
		txn.AccountID = accountID.String
		txn.MerchantName = merchantName.String
		txn.Category = category.String
		transactions = append(transactions, txn)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate transactions: %w", err)
	}
	return transactions, nil
}
