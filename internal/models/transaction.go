package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type TransactionType string

const (
	TxnSent     TransactionType = "sent"
	TxnReceived TransactionType = "received"
)

type TransactionStatus string

const (
	TxnPending   TransactionStatus = "pending"
	TxnCompleted TransactionStatus = "completed"
	TxnFailed    TransactionStatus = "failed"
)

// Transaction is an immutable record of one transfer. RecipientName is
// denormalized at creation so history stays readable independent of the
// recipient directory. Only the status field changes after creation, and only
// through the store's commit path (pending -> completed|failed).
type Transaction struct {
	ID            string            `json:"id"`
	RecipientID   string            `json:"recipient_id"`
	RecipientName string            `json:"recipient_name"`
	Amount        decimal.Decimal   `json:"amount"`
	Note          string            `json:"note,omitempty"`
	Timestamp     time.Time         `json:"timestamp"`
	Status        TransactionStatus `json:"status"`
	Type          TransactionType   `json:"type"`
}
