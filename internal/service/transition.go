package service

import (
	"fmt"

	"github.com/ds124wfegd/hotel-booking/internal/entity"
)

// CanTransition проверяет допустимость перехода статуса бронирования.
// Даты сравниваются только по дню, без учёта времени.
func CanTransition(b *entity.Booking, next entity.BookingStatus, today entity.DateOnly) error {
	if !next.Valid() {
		return fmt.Errorf("%w: %q", entity.ErrInvalidStatus, next)
	}
	// Повтор того же статуса допустим только пока бронь не терминальна
	if b.Status == next && !b.Status.Terminal() {
		return nil
	}

	switch b.Status {
	case entity.BookingStatusPending:
		switch next {
		case entity.BookingStatusConfirmed:
			if today.Before(b.CheckIn) {
				return fmt.Errorf("%w: cannot confirm before check-in date %s", entity.ErrInvalidTransition, b.CheckIn)
			}
			return nil
		case entity.BookingStatusCancelled:
			return nil
		}
	case entity.BookingStatusConfirmed:
		switch next {
		case entity.BookingStatusCompleted:
			if today.Before(b.CheckOut) {
				return fmt.Errorf("%w: cannot complete before check-out date %s", entity.ErrInvalidTransition, b.CheckOut)
			}
			return nil
		case entity.BookingStatusCancelled:
			return nil
		}
	case entity.BookingStatusCancelled:
		return fmt.Errorf("%w: booking is cancelled", entity.ErrInvalidTransition)
	case entity.BookingStatusCompleted:
		return fmt.Errorf("%w: booking is completed", entity.ErrInvalidTransition)
	}
	return fmt.Errorf("%w: %s -> %s", entity.ErrInvalidTransition, b.Status, next)
}
