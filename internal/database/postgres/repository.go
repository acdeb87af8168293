package repository

import (
	"context"

	"github.com/ds124wfegd/hotel-booking/internal/entity"
)

// CreateBookingParams собирает все строки, которые должна записать
// одна транзакция создания бронирования
type CreateBookingParams struct {
	Guest          *entity.Guest
	Booking        *entity.Booking
	Payment        *entity.Payment
	SpecialRequest string
}

type BookingRepository interface {
	// Create пишет гостя, бронирование, платеж, инкремент купона и заметку
	// в одной транзакции; при конфликте дат возвращает ErrDatesConflict,
	// при исчерпанном купоне ErrCouponExhausted
	Create(ctx context.Context, params *CreateBookingParams) error
	GetByID(ctx context.Context, id int64) (*entity.Booking, error)
	Update(ctx context.Context, booking *entity.Booking) error
	Cancel(ctx context.Context, id int64, reason string) error
	SoftDelete(ctx context.Context, id int64) error
	List(ctx context.Context, filter *entity.BookingFilter) ([]*entity.Booking, int, error)

	// Availability operations
	HasOverlap(ctx context.Context, roomID int64, checkIn, checkOut entity.DateOnly, excludeBookingID int64) (bool, error)

	// Night audit operations
	CompletePastCheckouts(ctx context.Context, today entity.DateOnly) (int64, error)
	CancelStalePending(ctx context.Context, before entity.DateOnly) (int64, error)

	AddLog(ctx context.Context, bookingID int64, kind, note string) error
}

type RoomRepository interface {
	Create(ctx context.Context, room *entity.Room) error
	GetByID(ctx context.Context, id int64) (*entity.Room, error)
	GetAll(ctx context.Context) ([]*entity.Room, error)
	Update(ctx context.Context, room *entity.Room) error
}

type GuestRepository interface {
	GetByID(ctx context.Context, id int64) (*entity.Guest, error)
	GetByEmail(ctx context.Context, email string) (*entity.Guest, error)
	GetAll(ctx context.Context) ([]*entity.Guest, error)
	SearchByName(ctx context.Context, name string) ([]*entity.Guest, error)
}

type DiscountRepository interface {
	GetPackageByID(ctx context.Context, id int64) (*entity.Package, error)
	GetPromotionByID(ctx context.Context, id int64) (*entity.Promotion, error)
	GetCouponByCode(ctx context.Context, code string) (*entity.Coupon, error)
	GetActivePackages(ctx context.Context) ([]*entity.Package, error)
	GetActivePromotions(ctx context.Context) ([]*entity.Promotion, error)
}

type PaymentRepository interface {
	GetByBookingID(ctx context.Context, bookingID int64) ([]*entity.Payment, error)
}
