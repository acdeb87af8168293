package entity

import (
	"time"
)

type BookingStatus string

const (
	BookingStatusPending   BookingStatus = "pending"
	BookingStatusConfirmed BookingStatus = "confirmed"
	BookingStatusCompleted BookingStatus = "completed"
	BookingStatusCancelled BookingStatus = "cancelled"
)

// Valid проверяет, что статус входит в число известных
func (s BookingStatus) Valid() bool {
	switch s {
	case BookingStatusPending, BookingStatusConfirmed, BookingStatusCompleted, BookingStatusCancelled:
		return true
	}
	return false
}

// Terminal сообщает, является ли статус конечным: из него нет переходов
func (s BookingStatus) Terminal() bool {
	return s == BookingStatusCompleted || s == BookingStatusCancelled
}

type Booking struct {
	ID             int64         `json:"id" db:"id"`
	Reference      string        `json:"reference" db:"reference"`
	GuestID        int64         `json:"guest_id" db:"guest_id"`
	RoomID         int64         `json:"room_id" db:"room_id"`
	CheckIn        DateOnly      `json:"check_in" db:"check_in"`
	CheckOut       DateOnly      `json:"check_out" db:"check_out"`
	Adults         int           `json:"adults" db:"adults"`
	Children       int           `json:"children" db:"children"`
	TotalAmount    float64       `json:"total_amount" db:"total_amount"`
	DiscountAmount float64       `json:"discount_amount" db:"discount_amount"`
	PackageID      *int64        `json:"package_id,omitempty" db:"package_id"`
	PromotionID    *int64        `json:"promotion_id,omitempty" db:"promotion_id"`
	CouponID       *int64        `json:"coupon_id,omitempty" db:"coupon_id"`
	CouponCode     string        `json:"coupon_code,omitempty" db:"coupon_code"`
	Status         BookingStatus `json:"status" db:"status"`
	DeletedAt      *time.Time    `json:"deleted_at,omitempty" db:"deleted_at"`
	CreatedAt      time.Time     `json:"created_at" db:"created_at"`
	UpdatedAt      time.Time     `json:"updated_at" db:"updated_at"`
}

// Nights возвращает количество ночей между заездом и выездом
func (b *Booking) Nights() int {
	return int(b.CheckOut.Time.Sub(b.CheckIn.Time).Hours() / 24)
}

// IsActive сообщает, блокирует ли бронирование даты номера
func (b *Booking) IsActive() bool {
	return b.Status == BookingStatusPending || b.Status == BookingStatusConfirmed
}

// BlocksRange проверяет пересечение брони с полуоткрытым интервалом
// [checkIn, checkOut): день выезда свободен для нового заезда.
// Отмененные, завершенные и удаленные брони даты не блокируют.
func (b *Booking) BlocksRange(checkIn, checkOut DateOnly) bool {
	if !b.IsActive() || b.DeletedAt != nil {
		return false
	}
	return b.CheckIn.Before(checkOut) && checkIn.Before(b.CheckOut)
}

// BookingFilter задает условия выборки списка бронирований
type BookingFilter struct {
	Status    BookingStatus
	RoomID    int64
	GuestName string
	From      *DateOnly
	To        *DateOnly
	Limit     int
	Offset    int
}
