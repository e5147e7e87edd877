package services

import (
	"context"
	"fmt"
	"math/rand"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/azrilhafizi/kirim-backend/internal/contacts"
	"github.com/azrilhafizi/kirim-backend/internal/metrics"
	"github.com/azrilhafizi/kirim-backend/internal/models"
	repo "github.com/azrilhafizi/kirim-backend/internal/repository"
	"github.com/azrilhafizi/kirim-backend/internal/worker"
)

// RecipientService owns the payee directory: manual adds and bulk import
// from the contacts source.
type RecipientService struct {
	store   repo.Store
	events  repo.Events
	source  contacts.Source
	wp      *worker.Pool
	recentN int

	now    func() time.Time
	newID  func() string
	random func(n int) int
}

func NewRecipientService(store repo.Store, events repo.Events, source contacts.Source, wp *worker.Pool, recentN int) *RecipientService {
	return &RecipientService{
		store:   store,
		events:  events,
		source:  source,
		wp:      wp,
		recentN: recentN,
		now:     time.Now,
		newID:   uuid.NewString,
		random:  rand.Intn,
	}
}

// WithClock overrides time, id and randomness, for tests.
func (s *RecipientService) WithClock(now func() time.Time, newID func() string, random func(int) int) *RecipientService {
	s.now = now
	s.newID = newID
	s.random = random
	return s
}

type RecipientInput struct {
	Name          string `json:"name"`
	AccountNumber string `json:"account_number"`
	BankName      string `json:"bank_name"`
	PhoneNumber   string `json:"phone_number"`
}

// Add creates a recipient from manual entry.
func (s *RecipientService) Add(ctx context.Context, in RecipientInput) (models.Recipient, error) {
	r := models.Recipient{
		ID:            s.newID(),
		Name:          strings.TrimSpace(in.Name),
		AccountNumber: strings.TrimSpace(in.AccountNumber),
		BankName:      strings.TrimSpace(in.BankName),
		PhoneNumber:   strings.TrimSpace(in.PhoneNumber),
		CreatedAt:     s.now(),
	}
	if err := r.Validate(); err != nil {
		return models.Recipient{}, err
	}
	if err := s.store.AddRecipient(ctx, r); err != nil {
		return models.Recipient{}, err
	}
	s.audit(r.ID, "recipient_added", r.Name)
	return r, nil
}

func (s *RecipientService) List(ctx context.Context) ([]models.Recipient, error) {
	return s.store.Recipients(ctx)
}

func (s *RecipientService) Recent(ctx context.Context) ([]models.Recipient, error) {
	return s.store.RecentRecipients(ctx, s.recentN)
}

func (s *RecipientService) ByID(ctx context.Context, id string) (models.Recipient, error) {
	return s.store.RecipientByID(ctx, id)
}

// ImportContacts asks the contacts source for access, then maps each entry
// with a name and phone number to a recipient. The masked account number is
// synthesized (4 asterisks + 4 random digits) and carries no real meaning.
// Entries whose phone number is already in the directory are skipped.
func (s *RecipientService) ImportContacts(ctx context.Context) ([]models.Recipient, error) {
	granted, err := s.source.RequestAccess(ctx)
	if err != nil {
		return nil, err
	}
	if !granted {
		return nil, ErrContactsAccessDenied
	}

	entries, err := s.source.Fetch(ctx)
	if err != nil {
		return nil, err
	}

	existing, err := s.store.Recipients(ctx)
	if err != nil {
		return nil, err
	}
	known := make(map[string]bool, len(existing))
	for _, r := range existing {
		if r.PhoneNumber != "" {
			known[r.PhoneNumber] = true
		}
	}

	var imported []models.Recipient
	for _, c := range entries {
		if strings.TrimSpace(c.Name) == "" || strings.TrimSpace(c.PhoneNumber) == "" {
			continue
		}
		if known[c.PhoneNumber] {
			continue
		}
		r := models.Recipient{
			ID:            s.newID(),
			Name:          c.Name,
			AccountNumber: fmt.Sprintf("****%04d", 1000+s.random(9000)),
			PhoneNumber:   c.PhoneNumber,
			CreatedAt:     s.now(),
		}
		if err := s.store.AddRecipient(ctx, r); err != nil {
			return imported, err
		}
		known[c.PhoneNumber] = true
		imported = append(imported, r)
		metrics.RecipientsImported.Inc()
		s.audit(r.ID, "recipient_imported", r.Name)
	}
	return imported, nil
}

func (s *RecipientService) audit(id, action, details string) {
	e := models.LedgerEvent{
		ID:         s.newID(),
		EntityType: "recipient",
		EntityID:   id,
		Action:     action,
		CreatedAt:  s.now(),
	}
	if details != "" {
		e.Details = map[string]any{"message": details}
	}
	s.wp.Submit(func() { _ = s.events.Record(context.Background(), e) })
}
