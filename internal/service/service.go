package service

import (
	"context"
	"time"

	"github.com/ds124wfegd/hotel-booking/internal/entity"
)

// CreateBookingRequest представляет данные для создания бронирования
type CreateBookingRequest struct {
	RoomID         int64           `json:"room_id" binding:"required"`
	CheckIn        entity.DateOnly `json:"check_in" binding:"required"`
	CheckOut       entity.DateOnly `json:"check_out" binding:"required"`
	Adults         int             `json:"adults" binding:"required,min=1"`
	Children       int             `json:"children" binding:"min=0"`
	FirstName      string          `json:"first_name" binding:"required"`
	LastName       string          `json:"last_name" binding:"required"`
	Email          string          `json:"email" binding:"required,email"`
	Phone          string          `json:"phone" binding:"required"`
	PackageID      *int64          `json:"package_id"`
	PromotionID    *int64          `json:"promotion_id"`
	CouponCode     string          `json:"coupon_code"`
	PaymentMethod  string          `json:"payment_method"`
	SpecialRequest string          `json:"special_request"`
}

// UpdateBookingRequest представляет частичное обновление бронирования
type UpdateBookingRequest struct {
	RoomID   *int64                `json:"room_id"`
	CheckIn  *entity.DateOnly      `json:"check_in"`
	CheckOut *entity.DateOnly      `json:"check_out"`
	Adults   *int                  `json:"adults"`
	Children *int                  `json:"children"`
	Status   *entity.BookingStatus `json:"status"`
}

// CreateRoomRequest представляет данные для создания номера
type CreateRoomRequest struct {
	Number        string  `json:"number" binding:"required"`
	Type          string  `json:"type" binding:"required"`
	PricePerNight float64 `json:"price_per_night" binding:"required,gt=0"`
	MaxAdults     int     `json:"max_adults" binding:"required,min=1"`
	MaxChildren   int     `json:"max_children" binding:"min=0"`
	AllowChildren *bool   `json:"allow_children"`
}

// UpdateRoomRequest представляет частичное обновление номера
type UpdateRoomRequest struct {
	Number        *string            `json:"number"`
	Type          *string            `json:"type"`
	PricePerNight *float64           `json:"price_per_night"`
	MaxAdults     *int               `json:"max_adults"`
	MaxChildren   *int               `json:"max_children"`
	AllowChildren *bool              `json:"allow_children"`
	Status        *entity.RoomStatus `json:"status"`
}

// BookingService определяет интерфейс операций с бронированиями
type BookingService interface {
	// Основные операции
	CreateBooking(ctx context.Context, req *CreateBookingRequest) (*entity.Booking, *entity.Payment, error)
	UpdateBooking(ctx context.Context, id int64, req *UpdateBookingRequest) (*entity.Booking, error)
	CancelBooking(ctx context.Context, id int64, reason string) (*entity.Booking, error)
	DeleteBooking(ctx context.Context, id int64) error
	GetBooking(ctx context.Context, id int64) (*entity.Booking, error)
	ListBookings(ctx context.Context, filter *entity.BookingFilter) ([]*entity.Booking, int, error)
	GetBookingPayments(ctx context.Context, id int64) ([]*entity.Payment, error)

	// Доступность номера
	IsRoomAvailable(ctx context.Context, roomID int64, checkIn, checkOut entity.DateOnly, excludeBookingID int64) (bool, error)

	// Ночной аудит
	RunNightAudit(ctx context.Context) error
}

type RoomService interface {
	CreateRoom(ctx context.Context, req *CreateRoomRequest) (*entity.Room, error)
	GetRoom(ctx context.Context, id int64) (*entity.Room, error)
	GetAllRooms(ctx context.Context) ([]*entity.Room, error)
	UpdateRoom(ctx context.Context, id int64, req *UpdateRoomRequest) (*entity.Room, error)
}

type GuestService interface {
	GetGuest(ctx context.Context, id int64) (*entity.Guest, error)
	GetAllGuests(ctx context.Context) ([]*entity.Guest, error)
	SearchGuests(ctx context.Context, name string) ([]*entity.Guest, error)
}

type DiscountService interface {
	GetActivePackages(ctx context.Context) ([]*entity.Package, error)
	GetActivePromotions(ctx context.Context) ([]*entity.Promotion, error)
	GetCoupon(ctx context.Context, code string) (*entity.Coupon, error)
}

// TaskPublisher интерфейс для публикации задач в очередь
type TaskPublisher interface {
	Publish(ctx context.Context, task *Task) error
}

// Task представляет задачу для очереди
type Task struct {
	ID         string                 `json:"id"`
	Type       string                 `json:"type"`
	Data       map[string]interface{} `json:"data"`
	ExecuteAt  time.Time              `json:"execute_at"`
	MaxRetries int                    `json:"max_retries"`
	Attempts   int                    `json:"attempts"`
}

// Константы типов задач
const (
	TaskTypeConfirmationEmail   = "send_confirmation_email"
	TaskTypeBookingNotification = "send_booking_notification"
	TaskTypeCheckinReminder     = "checkin_reminder"
)
