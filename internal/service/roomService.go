package service

import (
	"context"

	"github.com/sirupsen/logrus"

	repository "github.com/ds124wfegd/hotel-booking/internal/database/postgres"
	"github.com/ds124wfegd/hotel-booking/internal/entity"
)

// RoomCacher кэширует карточки номеров; ошибки кэша не фатальны
type RoomCacher interface {
	GetRoom(ctx context.Context, id int64) (*entity.Room, error)
	SetRoom(ctx context.Context, room *entity.Room) error
	DeleteRoom(ctx context.Context, id int64) error
}

type roomService struct {
	repo  repository.RoomRepository
	cache RoomCacher
}

// NewRoomService создает сервис номеров; cache может быть nil
func NewRoomService(repo repository.RoomRepository, cache RoomCacher) RoomService {
	return &roomService{repo: repo, cache: cache}
}

func (s *roomService) CreateRoom(ctx context.Context, req *CreateRoomRequest) (*entity.Room, error) {
	room := &entity.Room{
		Number:        req.Number,
		Type:          req.Type,
		PricePerNight: req.PricePerNight,
		MaxAdults:     req.MaxAdults,
		MaxChildren:   req.MaxChildren,
		AllowChildren: req.AllowChildren == nil || *req.AllowChildren,
		Status:        entity.RoomStatusAvailable,
	}
	if err := s.repo.Create(ctx, room); err != nil {
		return nil, err
	}
	return room, nil
}

// GetRoom читает номер через кэш; промах или ошибка кэша ведут в базу
func (s *roomService) GetRoom(ctx context.Context, id int64) (*entity.Room, error) {
	if s.cache != nil {
		if room, err := s.cache.GetRoom(ctx, id); err == nil && room != nil {
			return room, nil
		}
	}

	room, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.SetRoom(ctx, room); err != nil {
			logrus.WithError(err).WithField("room_id", id).Warn("failed to cache room")
		}
	}
	return room, nil
}

func (s *roomService) GetAllRooms(ctx context.Context) ([]*entity.Room, error) {
	return s.repo.GetAll(ctx)
}

func (s *roomService) UpdateRoom(ctx context.Context, id int64, req *UpdateRoomRequest) (*entity.Room, error) {
	room, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Number != nil {
		room.Number = *req.Number
	}
	if req.Type != nil {
		room.Type = *req.Type
	}
	if req.PricePerNight != nil {
		room.PricePerNight = *req.PricePerNight
	}
	if req.MaxAdults != nil {
		room.MaxAdults = *req.MaxAdults
	}
	if req.MaxChildren != nil {
		room.MaxChildren = *req.MaxChildren
	}
	if req.AllowChildren != nil {
		room.AllowChildren = *req.AllowChildren
	}
	if req.Status != nil {
		room.Status = *req.Status
	}

	if err := s.repo.Update(ctx, room); err != nil {
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.DeleteRoom(ctx, id); err != nil {
			logrus.WithError(err).WithField("room_id", id).Warn("failed to invalidate room cache")
		}
	}
	return room, nil
}
