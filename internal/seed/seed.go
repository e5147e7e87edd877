// Package seed holds the demo dataset the app starts from when the ledger is
// empty. Restarting the process resets to exactly this state on the memory
// backend.
package seed

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/azrilhafizi/kirim-backend/internal/models"
	"github.com/azrilhafizi/kirim-backend/internal/repository"
)

// Demo returns the default dataset: one account, three recipients and three
// completed transactions with descending timestamps.
func Demo(now time.Time) repository.Snapshot {
	return repository.Snapshot{
		Account: models.Account{
			Balance:       decimal.RequireFromString("4105.80"),
			AccountNumber: "****8901",
			AccountHolder: "David Beckham",
			LastUpdatedAt: now,
		},
		Recipients: []models.Recipient{
			{
				ID:            "1",
				Name:          "Syamsul Kamil",
				AccountNumber: "****4529",
				BankName:      "CIMB Bank",
				Avatar:        "https://i.pravatar.cc/150?img=1",
				CreatedAt:     now,
			},
			{
				ID:            "2",
				Name:          "Albert Chin",
				AccountNumber: "****7836",
				BankName:      "Hong Leong Bank",
				Avatar:        "https://i.pravatar.cc/150?img=3",
				CreatedAt:     now,
			},
			{
				ID:            "3",
				Name:          "Sivarasa",
				AccountNumber: "****2109",
				BankName:      "RHB Bank",
				Avatar:        "https://i.pravatar.cc/150?img=5",
				CreatedAt:     now,
			},
		},
		Transactions: []models.Transaction{
			{
				ID:            "1",
				RecipientID:   "1",
				RecipientName: "Syamsul Kamil",
				Amount:        decimal.RequireFromString("125.50"),
				Note:          "Dinner last night",
				Timestamp:     now.Add(-2 * time.Hour),
				Status:        models.TxnCompleted,
				Type:          models.TxnSent,
			},
			{
				ID:            "2",
				RecipientID:   "2",
				RecipientName: "Albert Chin",
				Amount:        decimal.RequireFromString("500.00"),
				Timestamp:     now.Add(-24 * time.Hour),
				Status:        models.TxnCompleted,
				Type:          models.TxnSent,
			},
			{
				ID:            "3",
				RecipientID:   "3",
				RecipientName: "Sivarasa",
				Amount:        decimal.RequireFromString("75.25"),
				Note:          "Concert tickets",
				Timestamp:     now.Add(-48 * time.Hour),
				Status:        models.TxnCompleted,
				Type:          models.TxnReceived,
			},
		},
	}
}
