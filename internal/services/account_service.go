package services

import (
	"context"

	"github.com/azrilhafizi/kirim-backend/internal/models"
	repo "github.com/azrilhafizi/kirim-backend/internal/repository"
)

type AccountService struct{ store repo.Store }

func NewAccountService(store repo.Store) *AccountService { return &AccountService{store: store} }

func (s *AccountService) Current(ctx context.Context) (models.Account, error) {
	return s.store.Account(ctx)
}
