package repository

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"

	"github.com/azrilhafizi/kirim-backend/internal/models"
)

var (
	ErrRecipientNotFound   = errors.New("recipient not found")
	ErrTransactionNotFound = errors.New("transaction not found")
	ErrDuplicateRecipient  = errors.New("duplicate recipient id")
	ErrDuplicateTxn        = errors.New("duplicate transaction id")
	ErrBadAmount           = errors.New("amount must be > 0")
	ErrNegativeBalance     = errors.New("balance cannot go negative")
	ErrInsufficientFunds   = errors.New("insufficient funds")
	ErrTxnNotPending       = errors.New("transaction is not pending")
)

// Store is the ledger: single source of truth for the account, the recipient
// directory and the transaction history. Implementations serialize mutations
// so that invariants hold after every call and the commit pair (debit +
// status flip) is never observable half-applied.
type Store interface {
	Account(ctx context.Context) (models.Account, error)
	// UpdateBalance replaces the account balance. Rejects negative values.
	UpdateBalance(ctx context.Context, balance decimal.Decimal) (models.Account, error)

	// AddRecipient appends to the directory, insertion order preserved.
	// Rejects a duplicate id.
	AddRecipient(ctx context.Context, r models.Recipient) error
	Recipients(ctx context.Context) ([]models.Recipient, error)
	RecipientByID(ctx context.Context, id string) (models.Recipient, error)
	// RecentRecipients is the first n by insertion order, order-stable.
	RecentRecipients(ctx context.Context, n int) ([]models.Recipient, error)

	// AppendTransaction records a new transaction at the head of history.
	// Rejects amount <= 0 and duplicate ids.
	AppendTransaction(ctx context.Context, tx models.Transaction) error
	// Transactions returns history ordered by timestamp descending.
	Transactions(ctx context.Context) ([]models.Transaction, error)
	TransactionByID(ctx context.Context, id string) (models.Transaction, error)

	// CommitTransfer atomically debits the pending transaction's amount from
	// the account and marks it completed. If funds are insufficient at commit
	// time the transaction is marked failed and ErrInsufficientFunds is
	// returned with the balance untouched.
	CommitTransfer(ctx context.Context, txID string) (models.Account, error)
}

// Events is the append-only audit trail of ledger mutations.
type Events interface {
	Record(ctx context.Context, e models.LedgerEvent) error
	List(ctx context.Context, limit int) ([]models.LedgerEvent, error)
}

// Snapshot seeds a fresh store with the demo dataset.
type Snapshot struct {
	Account      models.Account
	Recipients   []models.Recipient
	Transactions []models.Transaction
}
