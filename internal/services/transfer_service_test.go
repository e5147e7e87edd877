package services

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/azrilhafizi/kirim-backend/internal/models"
	"github.com/azrilhafizi/kirim-backend/internal/repository/memory"
	"github.com/azrilhafizi/kirim-backend/internal/seed"
	"github.com/azrilhafizi/kirim-backend/internal/worker"
)

type stubAuthn struct {
	unavailable    bool
	notEnrolled    bool
	acceptPIN      string
	availCalls     int
	challengeCalls int
}

func (a *stubAuthn) Availability(ctx context.Context) (bool, bool, error) {
	a.availCalls++
	return !a.unavailable, !a.notEnrolled, nil
}

func (a *stubAuthn) Challenge(ctx context.Context, prompt, presented string) (bool, error) {
	a.challengeCalls++
	return presented == a.acceptPIN, nil
}

func newTestService(t *testing.T, authn *stubAuthn) (*TransferService, *memory.Store, *memory.EventLog, *worker.Pool) {
	t.Helper()
	now := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
	store := memory.NewStore(seed.Demo(now))
	events := memory.NewEventLog()
	wp := worker.NewPool(1)

	seq := 0
	svc := NewTransferService(store, events, authn, wp, 0).WithClock(
		func() time.Time { return now.Add(time.Hour) },
		func() string { seq++; return fmt.Sprintf("txn-%d", seq) },
	)
	return svc, store, events, wp
}

func TestTransfer_Success(t *testing.T) {
	authn := &stubAuthn{acceptPIN: "123456"}
	svc, store, events, wp := newTestService(t, authn)
	ctx := context.Background()

	receipt, err := svc.Transfer(ctx, TransferInput{
		RecipientID: "1", // Syamsul Kamil
		Amount:      "125.50",
		Note:        "Lunch",
		PIN:         "123456",
	})
	require.NoError(t, err)

	assert.Equal(t, "Syamsul Kamil", receipt.RecipientName)
	assert.Equal(t, "125.50", receipt.Amount.StringFixed(2))
	assert.Equal(t, "3980.30", receipt.NewBalance.StringFixed(2))

	account, err := store.Account(ctx)
	require.NoError(t, err)
	assert.Equal(t, "3980.30", account.Balance.StringFixed(2))

	history, err := store.Transactions(ctx)
	require.NoError(t, err)
	require.Len(t, history, 4)
	head := history[0]
	assert.Equal(t, receipt.TransactionID, head.ID)
	assert.Equal(t, "1", head.RecipientID)
	assert.Equal(t, "Syamsul Kamil", head.RecipientName)
	assert.Equal(t, models.TxnCompleted, head.Status)
	assert.Equal(t, models.TxnSent, head.Type)
	assert.Equal(t, "Lunch", head.Note)

	wp.Stop()
	recorded, err := events.List(ctx, 0)
	require.NoError(t, err)
	require.Len(t, recorded, 1)
	assert.Equal(t, "transfer_committed", recorded[0].Action)
	assert.Equal(t, receipt.TransactionID, recorded[0].EntityID)
}

func TestTransfer_InsufficientFunds_StoreUnchanged(t *testing.T) {
	authn := &stubAuthn{acceptPIN: "123456"}
	svc, store, _, wp := newTestService(t, authn)
	defer wp.Stop()
	ctx := context.Background()

	_, err := svc.Transfer(ctx, TransferInput{
		RecipientID: "1",
		Amount:      "5000.00",
		PIN:         "123456",
	})
	assert.ErrorIs(t, err, ErrInsufficientFunds)

	account, _ := store.Account(ctx)
	assert.Equal(t, "4105.80", account.Balance.StringFixed(2))
	history, _ := store.Transactions(ctx)
	assert.Len(t, history, 3)
	// rejected before the gate, so no challenge was attempted
	assert.Zero(t, authn.challengeCalls)
}

func TestTransfer_MissingRecipient_BeforeAuth(t *testing.T) {
	authn := &stubAuthn{acceptPIN: "123456"}
	svc, store, _, wp := newTestService(t, authn)
	defer wp.Stop()
	ctx := context.Background()

	_, err := svc.Transfer(ctx, TransferInput{Amount: "50.00", PIN: "123456"})
	assert.ErrorIs(t, err, ErrMissingRecipient)
	assert.Zero(t, authn.availCalls)
	assert.Zero(t, authn.challengeCalls)

	history, _ := store.Transactions(ctx)
	assert.Len(t, history, 3)
}

func TestTransfer_UnknownRecipientTreatedAsMissing(t *testing.T) {
	authn := &stubAuthn{acceptPIN: "123456"}
	svc, _, _, wp := newTestService(t, authn)
	defer wp.Stop()

	_, err := svc.Transfer(context.Background(), TransferInput{
		RecipientID: "nope", Amount: "50.00", PIN: "123456",
	})
	assert.ErrorIs(t, err, ErrMissingRecipient)
}

func TestTransfer_Declined_SilentAbort(t *testing.T) {
	authn := &stubAuthn{acceptPIN: "123456"}
	svc, store, _, wp := newTestService(t, authn)
	defer wp.Stop()
	ctx := context.Background()

	_, err := svc.Transfer(ctx, TransferInput{
		RecipientID: "1", Amount: "10.00", PIN: "wrong",
	})
	assert.ErrorIs(t, err, ErrChallengeDeclined)

	account, _ := store.Account(ctx)
	assert.Equal(t, "4105.80", account.Balance.StringFixed(2))
	history, _ := store.Transactions(ctx)
	assert.Len(t, history, 3)
}

func TestTransfer_CapabilityErrors(t *testing.T) {
	t.Run("hardware unavailable", func(t *testing.T) {
		authn := &stubAuthn{unavailable: true}
		svc, store, _, wp := newTestService(t, authn)
		defer wp.Stop()

		_, err := svc.Transfer(context.Background(), TransferInput{
			RecipientID: "1", Amount: "10.00",
		})
		assert.ErrorIs(t, err, ErrAuthUnavailable)
		account, _ := store.Account(context.Background())
		assert.Equal(t, "4105.80", account.Balance.StringFixed(2))
	})

	t.Run("not enrolled", func(t *testing.T) {
		authn := &stubAuthn{notEnrolled: true}
		svc, _, _, wp := newTestService(t, authn)
		defer wp.Stop()

		_, err := svc.Transfer(context.Background(), TransferInput{
			RecipientID: "1", Amount: "10.00",
		})
		assert.ErrorIs(t, err, ErrAuthNotEnrolled)
		assert.Zero(t, authn.challengeCalls)
	})
}

func TestTransfer_IdempotencyKeyReplay(t *testing.T) {
	authn := &stubAuthn{acceptPIN: "123456"}
	svc, store, _, wp := newTestService(t, authn)
	defer wp.Stop()
	ctx := context.Background()

	in := TransferInput{RecipientID: "1", Amount: "100.00", PIN: "123456", IdemKey: "key-1"}

	first, err := svc.Transfer(ctx, in)
	require.NoError(t, err)
	second, err := svc.Transfer(ctx, in)
	require.NoError(t, err)

	assert.Equal(t, first.TransactionID, second.TransactionID)

	// one debit only
	account, _ := store.Account(ctx)
	assert.Equal(t, "4005.80", account.Balance.StringFixed(2))
	history, _ := store.Transactions(ctx)
	assert.Len(t, history, 4)
}

// drainingStore models a concurrent transfer landing inside the processing
// delay window: the balance is emptied right after the pending append, so
// the commit finds the funds gone.
type drainingStore struct {
	*memory.Store
}

func (s *drainingStore) AppendTransaction(ctx context.Context, tx models.Transaction) error {
	if err := s.Store.AppendTransaction(ctx, tx); err != nil {
		return err
	}
	_, err := s.Store.UpdateBalance(ctx, decimal.Zero)
	return err
}

// stuckStore models a commit backend that never resolves, leaving the record
// pending.
type stuckStore struct {
	*memory.Store
}

func (s *stuckStore) CommitTransfer(ctx context.Context, txID string) (models.Account, error) {
	return models.Account{}, fmt.Errorf("backend timeout")
}

func TestTransfer_ReplayAfterCommitFailure(t *testing.T) {
	authn := &stubAuthn{acceptPIN: "123456"}
	now := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
	store := &drainingStore{Store: memory.NewStore(seed.Demo(now))}
	wp := worker.NewPool(1)
	defer wp.Stop()

	seq := 0
	svc := NewTransferService(store, memory.NewEventLog(), authn, wp, 0).WithClock(
		func() time.Time { return now.Add(time.Hour) },
		func() string { seq++; return fmt.Sprintf("txn-%d", seq) },
	)
	ctx := context.Background()

	in := TransferInput{RecipientID: "1", Amount: "100.00", PIN: "123456", IdemKey: "k1"}

	_, err := svc.Transfer(ctx, in)
	require.ErrorIs(t, err, ErrInsufficientFunds)

	tx, err := store.TransactionByID(ctx, "txn-1")
	require.NoError(t, err)
	require.Equal(t, models.TxnFailed, tx.Status)

	// the retry must replay the failure, not a success-shaped receipt
	_, err = svc.Transfer(ctx, in)
	assert.ErrorIs(t, err, ErrInsufficientFunds)
}

func TestTransfer_ReplayWhilePending(t *testing.T) {
	authn := &stubAuthn{acceptPIN: "123456"}
	now := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
	store := &stuckStore{Store: memory.NewStore(seed.Demo(now))}
	wp := worker.NewPool(1)
	defer wp.Stop()

	seq := 0
	svc := NewTransferService(store, memory.NewEventLog(), authn, wp, 0).WithClock(
		func() time.Time { return now.Add(time.Hour) },
		func() string { seq++; return fmt.Sprintf("txn-%d", seq) },
	)
	ctx := context.Background()

	in := TransferInput{RecipientID: "1", Amount: "100.00", PIN: "123456", IdemKey: "k1"}

	_, err := svc.Transfer(ctx, in)
	require.ErrorIs(t, err, ErrTransferFailed)

	tx, err := store.TransactionByID(ctx, "txn-1")
	require.NoError(t, err)
	require.Equal(t, models.TxnPending, tx.Status)

	_, err = svc.Transfer(ctx, in)
	assert.ErrorIs(t, err, ErrTransferInProgress)
}

func TestTransfer_NoteTruncated(t *testing.T) {
	authn := &stubAuthn{acceptPIN: "123456"}
	svc, store, _, wp := newTestService(t, authn)
	defer wp.Stop()
	ctx := context.Background()

	long := strings.Repeat("x", 150)
	receipt, err := svc.Transfer(ctx, TransferInput{
		RecipientID: "2", Amount: "1.00", Note: long, PIN: "123456",
	})
	require.NoError(t, err)

	tx, err := store.TransactionByID(ctx, receipt.TransactionID)
	require.NoError(t, err)
	assert.Len(t, tx.Note, maxNoteLen)

	// the bound is characters: a multi-byte note must not be cut mid-rune
	receipt, err = svc.Transfer(ctx, TransferInput{
		RecipientID: "2", Amount: "1.00", Note: strings.Repeat("好", 150), PIN: "123456",
	})
	require.NoError(t, err)

	tx, err = store.TransactionByID(ctx, receipt.TransactionID)
	require.NoError(t, err)
	assert.True(t, utf8.ValidString(tx.Note))
	assert.Equal(t, maxNoteLen, utf8.RuneCountInString(tx.Note))
}

func TestTransfer_NormalizesRawAmount(t *testing.T) {
	authn := &stubAuthn{acceptPIN: "123456"}
	svc, _, _, wp := newTestService(t, authn)
	defer wp.Stop()

	receipt, err := svc.Transfer(context.Background(), TransferInput{
		RecipientID: "1", Amount: "RM12.3.45", PIN: "123456",
	})
	require.NoError(t, err)
	// "12.3.45" collapses to "12.345", then truncates to "12.34"
	assert.Equal(t, "12.34", receipt.Amount.StringFixed(2))
}

func TestHistory_TimestampDescending(t *testing.T) {
	authn := &stubAuthn{acceptPIN: "123456"}
	svc, _, _, wp := newTestService(t, authn)
	defer wp.Stop()

	history, err := svc.History(context.Background())
	require.NoError(t, err)
	require.Len(t, history, 3)
	for i := 1; i < len(history); i++ {
		assert.False(t, history[i].Timestamp.After(history[i-1].Timestamp))
	}
	var total decimal.Decimal
	for _, tx := range history {
		total = total.Add(tx.Amount)
	}
	assert.Equal(t, "700.75", total.StringFixed(2))
}
