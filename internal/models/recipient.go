package models

import (
	"errors"
	"strings"
	"time"
)

// Recipient is a payee. Immutable after creation; id is unique across the
// directory and enforced by the store.
type Recipient struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	AccountNumber string    `json:"account_number"`
	BankName      string    `json:"bank_name,omitempty"`
	Avatar        string    `json:"avatar,omitempty"`
	PhoneNumber   string    `json:"phone_number,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
}

func (r *Recipient) Validate() error {
	if strings.TrimSpace(r.Name) == "" {
		return errors.New("recipient name required")
	}
	if strings.TrimSpace(r.AccountNumber) == "" {
		return errors.New("recipient account number required")
	}
	return nil
}
