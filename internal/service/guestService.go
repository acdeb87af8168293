package service

import (
	"context"
	"strings"

	repository "github.com/ds124wfegd/hotel-booking/internal/database/postgres"
	"github.com/ds124wfegd/hotel-booking/internal/entity"
)

type guestService struct {
	repo repository.GuestRepository
}

func NewGuestService(repo repository.GuestRepository) GuestService {
	return &guestService{repo: repo}
}

func (s *guestService) GetGuest(ctx context.Context, id int64) (*entity.Guest, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *guestService) GetAllGuests(ctx context.Context) ([]*entity.Guest, error) {
	return s.repo.GetAll(ctx)
}

func (s *guestService) SearchGuests(ctx context.Context, name string) ([]*entity.Guest, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return s.repo.GetAll(ctx)
	}
	return s.repo.SearchByName(ctx, name)
}
