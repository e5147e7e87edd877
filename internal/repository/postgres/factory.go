package postgres

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	repo "github.com/azrilhafizi/kirim-backend/internal/repository"
)

type Repositories struct {
	Ledger repo.Store
	Events repo.Events
}

// NewRepositories wires the postgres-backed ledger and seeds the demo
// dataset when the account table is empty.
func NewRepositories(ctx context.Context, pool *pgxpool.Pool, snap repo.Snapshot) (Repositories, error) {
	l := &ledgerRepo{pool}
	if err := l.seedIfEmpty(ctx, snap); err != nil {
		return Repositories{}, err
	}
	return Repositories{
		Ledger: l,
		Events: &eventsRepo{pool},
	}, nil
}
