// Package model defines the core domain models used throughout the application.
package model

import "time"

// Transaction represents a single financial transaction from any source.
// Amounts are signed integer minor-currency units (pence); spending is
// negative, inbound money positive.
type Transaction struct {
	Timestamp    time.Time
	ID           string
	UserID       string
	AccountID    string
	Description  string // Raw transaction description
	MerchantName string // Cleaned merchant name
	Category     string // Category hint from source, if any
	Amount       int64
	MCC          int // Merchant classification code, 0 if unknown
}

// SpendAmount returns the absolute spend in minor units, or 0 for
// inbound transactions.
func (t *Transaction) SpendAmount() int64 {
	if t.Amount >= 0 {
		return 0
	}
	return -t.Amount
}

// Merchant returns the best available merchant label for the transaction.
func (t *Transaction) Merchant() string {
	if t.MerchantName != "" {
		return t.MerchantName
	}
	if t.Description != "" {
		return t.Description
	}
	return "unknown"
}
