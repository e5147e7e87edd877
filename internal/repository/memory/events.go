package memory

import (
	"context"
	"sync"

	"github.com/azrilhafizi/kirim-backend/internal/models"
)

// EventLog keeps the audit trail in memory, newest first.
type EventLog struct {
	mu     sync.RWMutex
	events []models.LedgerEvent
}

func NewEventLog() *EventLog { return &EventLog{} }

func (l *EventLog) Record(ctx context.Context, e models.LedgerEvent) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.events = append([]models.LedgerEvent{e}, l.events...)
	return nil
}

func (l *EventLog) List(ctx context.Context, limit int) ([]models.LedgerEvent, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if limit <= 0 || limit > len(l.events) {
		limit = len(l.events)
	}
	out := make([]models.LedgerEvent, limit)
	copy(out, l.events[:limit])
	return out, nil
}
