package model

import (
	"strings"
	"time"
)

type TransactionType string

const (
	TransactionEarnedReport  TransactionType = "earned_report"
	TransactionEarnedCollect TransactionType = "earned_collect"
	TransactionRedeemed      TransactionType = "redeemed"
)

// Valid reports whether t is one of the three ledger transaction kinds.
func (t TransactionType) Valid() bool {
	switch t {
	case TransactionEarnedReport, TransactionEarnedCollect, TransactionRedeemed:
		return true
	}
	return false
}

// Earned reports whether the type credits the balance. The amount column is
// always stored positive; the sign is implied by the type.
func (t TransactionType) Earned() bool {
	return strings.HasPrefix(string(t), "earned")
}

// Transaction is one row of the append-only ledger. Rows are never updated or
// deleted; the log is the sole source of truth for a user's balance.
type Transaction struct {
	ID          int64           `json:"id"`
	UserID      int64           `json:"user_id"`
	Type        TransactionType `json:"type"`
	Amount      int             `json:"amount"`
	Description string          `json:"description"`
	Date        time.Time       `json:"date"`
}
