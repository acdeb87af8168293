package entity

import "errors"

var (
	// Room errors
	ErrRoomNotFound    = errors.New("room not found")
	ErrRoomUnavailable = errors.New("room is not available for booking")
	ErrRoomNumberTaken = errors.New("room number already exists")

	// Booking errors
	ErrBookingNotFound   = errors.New("booking not found")
	ErrDatesConflict     = errors.New("room is already booked for the selected dates")
	ErrInvalidDateRange  = errors.New("check-out date must be after check-in date")
	ErrCapacityExceeded  = errors.New("party size exceeds room capacity")
	ErrInvalidTransition = errors.New("illegal booking status transition")
	ErrBookingCancelled  = errors.New("booking is already cancelled")
	ErrInvalidStatus     = errors.New("invalid booking status")

	// Guest errors
	ErrGuestNotFound = errors.New("guest not found")
	ErrInvalidEmail  = errors.New("invalid email format")

	// Discount errors
	ErrPackageNotFound   = errors.New("package not found")
	ErrPromotionNotFound = errors.New("promotion not found")
	ErrCouponNotFound    = errors.New("coupon not found")
	ErrCouponExhausted   = errors.New("coupon usage limit reached")

	// Payment errors
	ErrPaymentNotFound      = errors.New("payment not found")
	ErrInvalidPaymentMethod = errors.New("invalid payment method")

	// General errors
	ErrInvalidInput  = errors.New("invalid input")
	ErrDatabaseError = errors.New("database error")
)
