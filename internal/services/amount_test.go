package services

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/azrilhafizi/kirim-backend/internal/models"
)

func TestNormalizeAmount(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{"plain", "50", "50"},
		{"decimal", "12.34", "12.34"},
		{"strips currency and commas", "RM1,234.56", "1234.56"},
		{"truncates fraction", "1.239", "1.23"},
		{"collapses extra dots then truncates", "12.3.45", "12.34"},
		{"collapse then truncate", "1.2.39", "1.23"},
		{"letters only", "abc", ""},
		{"empty", "", ""},
		{"leading dot", ".50", ".50"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, NormalizeAmount(tc.in))
		})
	}
}

func TestValidateTransfer_Precedence(t *testing.T) {
	balance := decimal.RequireFromString("100.00")
	recipient := &models.Recipient{ID: "1", Name: "Syamsul Kamil", AccountNumber: "****4529"}

	t.Run("missing recipient wins over bad amount", func(t *testing.T) {
		_, err := ValidateTransfer(nil, "", balance)
		assert.ErrorIs(t, err, ErrMissingRecipient)
	})

	t.Run("invalid amount", func(t *testing.T) {
		for _, raw := range []string{"", "0", "-5", "abc"} {
			_, err := ValidateTransfer(recipient, NormalizeAmount(raw), balance)
			assert.ErrorIs(t, err, ErrInvalidAmount, "raw=%q", raw)
		}
	})

	t.Run("insufficient funds", func(t *testing.T) {
		_, err := ValidateTransfer(recipient, "100.01", balance)
		assert.ErrorIs(t, err, ErrInsufficientFunds)
	})

	t.Run("boundary amount equal to balance passes", func(t *testing.T) {
		amt, err := ValidateTransfer(recipient, "100.00", balance)
		require.NoError(t, err)
		assert.True(t, amt.Equal(balance))
	})

	t.Run("valid", func(t *testing.T) {
		amt, err := ValidateTransfer(recipient, "25.50", balance)
		require.NoError(t, err)
		assert.Equal(t, "25.50", amt.StringFixed(2))
	})
}
