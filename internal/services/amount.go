package services

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/azrilhafizi/kirim-backend/internal/models"
)

// NormalizeAmount is the keystroke transform for the amount field: strip
// everything but digits and dots, collapse extra dots into the first one,
// truncate the fraction to two digits. Pure string to string.
func NormalizeAmount(raw string) string {
	var b strings.Builder
	for _, r := range raw {
		if (r >= '0' && r <= '9') || r == '.' {
			b.WriteRune(r)
		}
	}
	cleaned := b.String()

	parts := strings.Split(cleaned, ".")
	if len(parts) > 2 {
		cleaned = parts[0] + "." + strings.Join(parts[1:], "")
		parts = strings.SplitN(cleaned, ".", 2)
	}
	if len(parts) == 2 && len(parts[1]) > 2 {
		cleaned = parts[0] + "." + parts[1][:2]
	}
	return cleaned
}

// ValidateTransfer applies the precedence order: recipient, then amount, then
// funds. Returns the parsed amount on success. No side effects.
func ValidateTransfer(recipient *models.Recipient, rawAmount string, balance decimal.Decimal) (decimal.Decimal, error) {
	if recipient == nil {
		return decimal.Decimal{}, ErrMissingRecipient
	}
	if strings.TrimSpace(rawAmount) == "" {
		return decimal.Decimal{}, ErrInvalidAmount
	}
	amount, err := decimal.NewFromString(rawAmount)
	if err != nil || !amount.IsPositive() {
		return decimal.Decimal{}, ErrInvalidAmount
	}
	if amount.GreaterThan(balance) {
		return decimal.Decimal{}, ErrInsufficientFunds
	}
	return amount, nil
}
