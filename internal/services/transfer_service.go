package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/azrilhafizi/kirim-backend/internal/metrics"
	"github.com/azrilhafizi/kirim-backend/internal/models"
	repo "github.com/azrilhafizi/kirim-backend/internal/repository"
	"github.com/azrilhafizi/kirim-backend/internal/worker"
)

const (
	challengePrompt = "Authenticate to confirm payment"
	maxNoteLen      = 100
)

// TransferInput is one proposed transfer as it comes off the form.
type TransferInput struct {
	RecipientID string
	Amount      string // raw amount text, normalized here
	Note        string
	PIN         string // presented possession factor
	IdemKey     string // optional Idempotency-Key
}

// Receipt is what the confirmation screen shows after a commit.
type Receipt struct {
	TransactionID string          `json:"transaction_id"`
	RecipientName string          `json:"recipient_name"`
	Amount        decimal.Decimal `json:"amount"`
	NewBalance    decimal.Decimal `json:"new_balance"`
}

// TransferService runs the validate -> challenge -> delay -> commit sequence.
// The store guarantees the commit pair is atomic; this service owns the step
// order and the error taxonomy.
type TransferService struct {
	store  repo.Store
	events repo.Events
	authn  Authenticator
	wp     *worker.Pool
	idem   sync.Map // Idempotency-Key -> txID (process-local)

	delay time.Duration
	now   func() time.Time
	newID func() string
}

func NewTransferService(store repo.Store, events repo.Events, authn Authenticator, wp *worker.Pool, delay time.Duration) *TransferService {
	return &TransferService{
		store:  store,
		events: events,
		authn:  authn,
		wp:     wp,
		delay:  delay,
		now:    time.Now,
		newID:  uuid.NewString,
	}
}

// WithClock overrides time and id generation, for tests.
func (s *TransferService) WithClock(now func() time.Time, newID func() string) *TransferService {
	s.now = now
	s.newID = newID
	return s
}

// Transfer executes the full workflow. Validation and gate failures leave the
// store untouched; once the pending record is written the commit either
// applies the debit and completes it or marks it failed with no debit.
func (s *TransferService) Transfer(ctx context.Context, in TransferInput) (Receipt, error) {
	if in.IdemKey != "" {
		if v, ok := s.idem.Load(in.IdemKey); ok {
			return s.replay(ctx, v.(string))
		}
	}

	var recipient *models.Recipient
	if in.RecipientID != "" {
		r, err := s.store.RecipientByID(ctx, in.RecipientID)
		if err == nil {
			recipient = &r
		} else if !errors.Is(err, repo.ErrRecipientNotFound) {
			return Receipt{}, fmt.Errorf("%w: %w", ErrTransferFailed, err)
		}
	}

	account, err := s.store.Account(ctx)
	if err != nil {
		return Receipt{}, fmt.Errorf("%w: %w", ErrTransferFailed, err)
	}

	amount, err := ValidateTransfer(recipient, NormalizeAmount(in.Amount), account.Balance)
	if err != nil {
		metrics.TransfersRejected.WithLabelValues("validation").Inc()
		return Receipt{}, err
	}

	if err := s.gate(ctx, in.PIN); err != nil {
		return Receipt{}, err
	}

	note := in.Note
	if utf8.RuneCountInString(note) > maxNoteLen {
		// character bound, not bytes: never split a rune
		note = string([]rune(note)[:maxNoteLen])
	}
	tx := models.Transaction{
		ID:            s.newID(),
		RecipientID:   recipient.ID,
		RecipientName: recipient.Name,
		Amount:        amount,
		Note:          note,
		Timestamp:     s.now(),
		Status:        models.TxnPending,
		Type:          models.TxnSent,
	}
	if err := s.store.AppendTransaction(ctx, tx); err != nil {
		return Receipt{}, fmt.Errorf("%w: %w", ErrTransferFailed, err)
	}
	if in.IdemKey != "" {
		s.idem.Store(in.IdemKey, tx.ID)
	}

	// The original simulated a 1.5s network round-trip here. The window from
	// this point to the commit is non-cancellable.
	if s.delay > 0 {
		time.Sleep(s.delay)
	}

	newAccount, err := s.store.CommitTransfer(ctx, tx.ID)
	if err != nil {
		metrics.TransfersTotal.WithLabelValues("failed").Inc()
		s.audit(tx.ID, "transfer_failed", err.Error())
		if errors.Is(err, repo.ErrInsufficientFunds) {
			return Receipt{}, ErrInsufficientFunds
		}
		return Receipt{}, fmt.Errorf("%w: %w", ErrTransferFailed, err)
	}

	metrics.TransfersTotal.WithLabelValues("completed").Inc()
	s.audit(tx.ID, "transfer_committed",
		fmt.Sprintf("%s to %s", amount.StringFixed(2), recipient.Name))

	return Receipt{
		TransactionID: tx.ID,
		RecipientName: recipient.Name,
		Amount:        amount,
		NewBalance:    newAccount.Balance,
	}, nil
}

// gate runs the possession-factor check. Any non-success aborts before a
// single byte of ledger state changes.
func (s *TransferService) gate(ctx context.Context, presented string) error {
	available, enrolled, err := s.authn.Availability(ctx)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrTransferFailed, err)
	}
	if !available {
		metrics.TransfersRejected.WithLabelValues("auth_unavailable").Inc()
		return ErrAuthUnavailable
	}
	if !enrolled {
		metrics.TransfersRejected.WithLabelValues("auth_unavailable").Inc()
		return ErrAuthNotEnrolled
	}
	ok, err := s.authn.Challenge(ctx, challengePrompt, presented)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrTransferFailed, err)
	}
	if !ok {
		metrics.TransfersRejected.WithLabelValues("declined").Inc()
		return ErrChallengeDeclined
	}
	return nil
}

// replay resolves a repeated Idempotency-Key from the stored transaction.
// The outcome mirrors the original attempt: only a completed record replays
// as success.
func (s *TransferService) replay(ctx context.Context, txID string) (Receipt, error) {
	tx, err := s.store.TransactionByID(ctx, txID)
	if err != nil {
		return Receipt{}, fmt.Errorf("%w: %w", ErrTransferFailed, err)
	}
	switch tx.Status {
	case models.TxnFailed:
		// the only commit path that fails a record is a funds shortfall
		return Receipt{}, ErrInsufficientFunds
	case models.TxnPending:
		return Receipt{}, ErrTransferInProgress
	}
	account, err := s.store.Account(ctx)
	if err != nil {
		return Receipt{}, fmt.Errorf("%w: %w", ErrTransferFailed, err)
	}
	return Receipt{
		TransactionID: tx.ID,
		RecipientName: tx.RecipientName,
		Amount:        tx.Amount,
		NewBalance:    account.Balance,
	}, nil
}

// audit records a ledger event off the request path.
func (s *TransferService) audit(txID, action, details string) {
	e := models.LedgerEvent{
		ID:         s.newID(),
		EntityType: "transaction",
		EntityID:   txID,
		Action:     action,
		CreatedAt:  s.now(),
	}
	if details != "" {
		e.Details = map[string]any{"message": details}
	}
	s.wp.Submit(func() { _ = s.events.Record(context.Background(), e) })
}

// History returns the transaction list, newest first.
func (s *TransferService) History(ctx context.Context) ([]models.Transaction, error) {
	return s.store.Transactions(ctx)
}

func (s *TransferService) GetByID(ctx context.Context, id string) (models.Transaction, error) {
	return s.store.TransactionByID(ctx, id)
}
