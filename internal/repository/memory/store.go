// Package memory is the in-memory ledger backend. One RWMutex serializes all
// mutations, which is what makes the transfer commit pair (balance debit +
// status flip) indivisible for every reader.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/azrilhafizi/kirim-backend/internal/models"
	"github.com/azrilhafizi/kirim-backend/internal/repository"
)

type Store struct {
	mu           sync.RWMutex
	account      models.Account
	recipients   []models.Recipient
	recipientIdx map[string]int
	transactions []models.Transaction // most-recent-first insertion order
	txnIdx       map[string]int
}

// NewStore builds a ledger seeded from the snapshot.
func NewStore(snap repository.Snapshot) *Store {
	s := &Store{
		account:      snap.Account,
		recipientIdx: make(map[string]int),
		txnIdx:       make(map[string]int),
	}
	for _, r := range snap.Recipients {
		s.recipientIdx[r.ID] = len(s.recipients)
		s.recipients = append(s.recipients, r)
	}
	for _, tx := range snap.Transactions {
		s.txnIdx[tx.ID] = len(s.transactions)
		s.transactions = append(s.transactions, tx)
	}
	return s
}

func (s *Store) Account(ctx context.Context) (models.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.account, nil
}

func (s *Store) UpdateBalance(ctx context.Context, balance decimal.Decimal) (models.Account, error) {
	if balance.IsNegative() {
		return models.Account{}, repository.ErrNegativeBalance
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.account.Balance = balance
	s.account.LastUpdatedAt = time.Now()
	return s.account, nil
}

func (s *Store) AddRecipient(ctx context.Context, r models.Recipient) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.recipientIdx[r.ID]; ok {
		return repository.ErrDuplicateRecipient
	}
	s.recipientIdx[r.ID] = len(s.recipients)
	s.recipients = append(s.recipients, r)
	return nil
}

func (s *Store) Recipients(ctx context.Context) ([]models.Recipient, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.Recipient, len(s.recipients))
	copy(out, s.recipients)
	return out, nil
}

func (s *Store) RecipientByID(ctx context.Context, id string) (models.Recipient, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	i, ok := s.recipientIdx[id]
	if !ok {
		return models.Recipient{}, repository.ErrRecipientNotFound
	}
	return s.recipients[i], nil
}

func (s *Store) RecentRecipients(ctx context.Context, n int) ([]models.Recipient, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if n < 0 {
		n = 0
	}
	if n > len(s.recipients) {
		n = len(s.recipients)
	}
	out := make([]models.Recipient, n)
	copy(out, s.recipients[:n])
	return out, nil
}

func (s *Store) AppendTransaction(ctx context.Context, tx models.Transaction) error {
	if !tx.Amount.IsPositive() {
		return repository.ErrBadAmount
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.txnIdx[tx.ID]; ok {
		return repository.ErrDuplicateTxn
	}
	s.transactions = append([]models.Transaction{tx}, s.transactions...)
	s.reindexTxns()
	return nil
}

func (s *Store) Transactions(ctx context.Context) ([]models.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.Transaction, len(s.transactions))
	copy(out, s.transactions)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Timestamp.After(out[j].Timestamp)
	})
	return out, nil
}

func (s *Store) TransactionByID(ctx context.Context, id string) (models.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	i, ok := s.txnIdx[id]
	if !ok {
		return models.Transaction{}, repository.ErrTransactionNotFound
	}
	return s.transactions[i], nil
}

// CommitTransfer re-checks funds and applies the debit and the completed
// status inside the same critical section. On insufficient funds the record
// flips to failed and the balance is untouched.
func (s *Store) CommitTransfer(ctx context.Context, txID string) (models.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i, ok := s.txnIdx[txID]
	if !ok {
		return models.Account{}, repository.ErrTransactionNotFound
	}
	tx := &s.transactions[i]
	if tx.Status != models.TxnPending {
		return models.Account{}, repository.ErrTxnNotPending
	}
	if tx.Amount.GreaterThan(s.account.Balance) {
		tx.Status = models.TxnFailed
		return models.Account{}, repository.ErrInsufficientFunds
	}
	s.account.Balance = s.account.Balance.Sub(tx.Amount)
	s.account.LastUpdatedAt = time.Now()
	tx.Status = models.TxnCompleted
	return s.account, nil
}

func (s *Store) reindexTxns() {
	for i, tx := range s.transactions {
		s.txnIdx[tx.ID] = i
	}
}
