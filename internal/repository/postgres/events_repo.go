package postgres

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/azrilhafizi/kirim-backend/internal/models"
)

type eventsRepo struct{ pool *pgxpool.Pool }

func (r *eventsRepo) Record(ctx context.Context, e models.LedgerEvent) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO ledger_events(id, entity_type, entity_id, action, details, created_at)
		 VALUES($1, $2, $3, $4, $5, $6)`,
		e.ID, e.EntityType, e.EntityID, e.Action, e.Details, e.CreatedAt,
	)
	return err
}

func (r *eventsRepo) List(ctx context.Context, limit int) ([]models.LedgerEvent, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := r.pool.Query(ctx,
		`SELECT id, entity_type, entity_id, action, details, created_at
		   FROM ledger_events ORDER BY created_at DESC LIMIT $1`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.LedgerEvent
	for rows.Next() {
		var e models.LedgerEvent
		if err := rows.Scan(&e.ID, &e.EntityType, &e.EntityID, &e.Action, &e.Details, &e.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}
