package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/azrilhafizi/kirim-backend/internal/models"
	"github.com/azrilhafizi/kirim-backend/internal/repository"
)

// ledgerRepo implements repository.Store on a pgx pool. The single account
// row is locked FOR UPDATE during a commit so concurrent transfers cannot
// interleave a partial debit.
type ledgerRepo struct{ pool *pgxpool.Pool }

func (r *ledgerRepo) Account(ctx context.Context) (models.Account, error) {
	var a models.Account
	err := r.pool.QueryRow(ctx,
		`SELECT balance, account_number, account_holder, last_updated_at
		   FROM account LIMIT 1`,
	).Scan(&a.Balance, &a.AccountNumber, &a.AccountHolder, &a.LastUpdatedAt)
	return a, err
}

func (r *ledgerRepo) UpdateBalance(ctx context.Context, balance decimal.Decimal) (models.Account, error) {
	if balance.IsNegative() {
		return models.Account{}, repository.ErrNegativeBalance
	}
	var a models.Account
	err := r.pool.QueryRow(ctx,
		`UPDATE account
		    SET balance = $1, last_updated_at = now()
		  RETURNING balance, account_number, account_holder, last_updated_at`,
		balance,
	).Scan(&a.Balance, &a.AccountNumber, &a.AccountHolder, &a.LastUpdatedAt)
	return a, err
}

func (r *ledgerRepo) AddRecipient(ctx context.Context, rec models.Recipient) error {
	ct, err := r.pool.Exec(ctx,
		`INSERT INTO recipients(id, name, account_number, bank_name, avatar, phone_number, created_at)
		 VALUES($1, $2, $3, $4, $5, $6, $7)
		 ON CONFLICT (id) DO NOTHING`,
		rec.ID, rec.Name, rec.AccountNumber, rec.BankName, rec.Avatar, rec.PhoneNumber, rec.CreatedAt,
	)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return repository.ErrDuplicateRecipient
	}
	return nil
}

func (r *ledgerRepo) Recipients(ctx context.Context) ([]models.Recipient, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, name, account_number, bank_name, avatar, phone_number, created_at
		   FROM recipients ORDER BY position`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanRecipients(rows)
}

func (r *ledgerRepo) RecipientByID(ctx context.Context, id string) (models.Recipient, error) {
	var rec models.Recipient
	err := r.pool.QueryRow(ctx,
		`SELECT id, name, account_number, bank_name, avatar, phone_number, created_at
		   FROM recipients WHERE id = $1`, id,
	).Scan(&rec.ID, &rec.Name, &rec.AccountNumber, &rec.BankName, &rec.Avatar, &rec.PhoneNumber, &rec.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return models.Recipient{}, repository.ErrRecipientNotFound
	}
	return rec, err
}

func (r *ledgerRepo) RecentRecipients(ctx context.Context, n int) ([]models.Recipient, error) {
	if n < 0 {
		n = 0
	}
	rows, err := r.pool.Query(ctx,
		`SELECT id, name, account_number, bank_name, avatar, phone_number, created_at
		   FROM recipients ORDER BY position LIMIT $1`, n)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanRecipients(rows)
}

func (r *ledgerRepo) AppendTransaction(ctx context.Context, tx models.Transaction) error {
	if !tx.Amount.IsPositive() {
		return repository.ErrBadAmount
	}
	ct, err := r.pool.Exec(ctx,
		`INSERT INTO transactions(id, recipient_id, recipient_name, amount, note, ts, status, type)
		 VALUES($1, $2, $3, $4, $5, $6, $7, $8)
		 ON CONFLICT (id) DO NOTHING`,
		tx.ID, tx.RecipientID, tx.RecipientName, tx.Amount, tx.Note, tx.Timestamp, tx.Status, tx.Type,
	)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return repository.ErrDuplicateTxn
	}
	return nil
}

func (r *ledgerRepo) Transactions(ctx context.Context) ([]models.Transaction, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, recipient_id, recipient_name, amount, note, ts, status, type
		   FROM transactions ORDER BY ts DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.Transaction
	for rows.Next() {
		var tx models.Transaction
		if err := rows.Scan(&tx.ID, &tx.RecipientID, &tx.RecipientName, &tx.Amount,
			&tx.Note, &tx.Timestamp, &tx.Status, &tx.Type); err != nil {
			return nil, err
		}
		out = append(out, tx)
	}
	return out, rows.Err()
}

func (r *ledgerRepo) TransactionByID(ctx context.Context, id string) (models.Transaction, error) {
	var tx models.Transaction
	err := r.pool.QueryRow(ctx,
		`SELECT id, recipient_id, recipient_name, amount, note, ts, status, type
		   FROM transactions WHERE id = $1`, id,
	).Scan(&tx.ID, &tx.RecipientID, &tx.RecipientName, &tx.Amount,
		&tx.Note, &tx.Timestamp, &tx.Status, &tx.Type)
	if errors.Is(err, pgx.ErrNoRows) {
		return models.Transaction{}, repository.ErrTransactionNotFound
	}
	return tx, err
}

func (r *ledgerRepo) CommitTransfer(ctx context.Context, txID string) (models.Account, error) {
	var a models.Account
	err := pgx.BeginFunc(ctx, r.pool, func(dbtx pgx.Tx) error {
		var amount decimal.Decimal
		var status models.TransactionStatus
		err := dbtx.QueryRow(ctx,
			`SELECT amount, status FROM transactions WHERE id = $1`, txID,
		).Scan(&amount, &status)
		if errors.Is(err, pgx.ErrNoRows) {
			return repository.ErrTransactionNotFound
		}
		if err != nil {
			return err
		}
		if status != models.TxnPending {
			return repository.ErrTxnNotPending
		}

		var balance decimal.Decimal
		if err := dbtx.QueryRow(ctx,
			`SELECT balance FROM account FOR UPDATE`,
		).Scan(&balance); err != nil {
			return err
		}
		if amount.GreaterThan(balance) {
			return repository.ErrInsufficientFunds
		}

		if err := dbtx.QueryRow(ctx,
			`UPDATE account
			    SET balance = balance - $1, last_updated_at = now()
			  RETURNING balance, account_number, account_holder, last_updated_at`,
			amount,
		).Scan(&a.Balance, &a.AccountNumber, &a.AccountHolder, &a.LastUpdatedAt); err != nil {
			return err
		}
		_, err = dbtx.Exec(ctx,
			`UPDATE transactions SET status = $2 WHERE id = $1`,
			txID, models.TxnCompleted)
		return err
	})
	if errors.Is(err, repository.ErrInsufficientFunds) {
		// mark the record failed outside the rolled-back transaction
		if _, execErr := r.pool.Exec(ctx,
			`UPDATE transactions SET status = $2 WHERE id = $1`,
			txID, models.TxnFailed); execErr != nil {
			return models.Account{}, execErr
		}
		return models.Account{}, repository.ErrInsufficientFunds
	}
	if err != nil {
		return models.Account{}, err
	}
	return a, nil
}

func (r *ledgerRepo) seedIfEmpty(ctx context.Context, snap repository.Snapshot) error {
	var n int
	if err := r.pool.QueryRow(ctx, `SELECT count(*) FROM account`).Scan(&n); err != nil {
		return err
	}
	if n > 0 {
		return nil
	}
	return pgx.BeginFunc(ctx, r.pool, func(dbtx pgx.Tx) error {
		if _, err := dbtx.Exec(ctx,
			`INSERT INTO account(balance, account_number, account_holder, last_updated_at)
			 VALUES($1, $2, $3, $4)`,
			snap.Account.Balance, snap.Account.AccountNumber,
			snap.Account.AccountHolder, snap.Account.LastUpdatedAt); err != nil {
			return err
		}
		for _, rec := range snap.Recipients {
			if _, err := dbtx.Exec(ctx,
				`INSERT INTO recipients(id, name, account_number, bank_name, avatar, phone_number, created_at)
				 VALUES($1, $2, $3, $4, $5, $6, $7)`,
				rec.ID, rec.Name, rec.AccountNumber, rec.BankName, rec.Avatar,
				rec.PhoneNumber, rec.CreatedAt); err != nil {
				return err
			}
		}
		for _, tx := range snap.Transactions {
			if _, err := dbtx.Exec(ctx,
				`INSERT INTO transactions(id, recipient_id, recipient_name, amount, note, ts, status, type)
				 VALUES($1, $2, $3, $4, $5, $6, $7, $8)`,
				tx.ID, tx.RecipientID, tx.RecipientName, tx.Amount, tx.Note,
				tx.Timestamp, tx.Status, tx.Type); err != nil {
				return err
			}
		}
		return nil
	})
}

func scanRecipients(rows pgx.Rows) ([]models.Recipient, error) {
	var out []models.Recipient
	for rows.Next() {
		var rec models.Recipient
		if err := rows.Scan(&rec.ID, &rec.Name, &rec.AccountNumber, &rec.BankName,
			&rec.Avatar, &rec.PhoneNumber, &rec.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}
