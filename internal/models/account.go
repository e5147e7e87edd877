package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Account is the session's single source account. There is exactly one per
// ledger; the balance may only change through the store's mutation methods.
type Account struct {
	Balance       decimal.Decimal `json:"balance"`
	AccountNumber string          `json:"account_number"`
	AccountHolder string          `json:"account_holder"`
	LastUpdatedAt time.Time       `json:"last_updated_at"`
}
