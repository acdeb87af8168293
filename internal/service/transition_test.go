package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/ds124wfegd/hotel-booking/internal/entity"
)

func testBooking(status entity.BookingStatus, checkIn, checkOut entity.DateOnly) *entity.Booking {
	return &entity.Booking{
		ID:       1,
		Status:   status,
		CheckIn:  checkIn,
		CheckOut: checkOut,
	}
}

// TestCanTransition тестирует машину статусов бронирования
func TestCanTransition(t *testing.T) {
	today := entity.DateOf(time.Now())
	yesterday := entity.DateOf(time.Now().AddDate(0, 0, -1))
	tomorrow := entity.DateOf(time.Now().AddDate(0, 0, 1))
	nextWeek := entity.DateOf(time.Now().AddDate(0, 0, 7))

	tests := []struct {
		name    string
		booking *entity.Booking
		next    entity.BookingStatus
		wantErr error
	}{
		{
			name:    "pending to confirmed on check-in day",
			booking: testBooking(entity.BookingStatusPending, today, nextWeek),
			next:    entity.BookingStatusConfirmed,
			wantErr: nil,
		},
		{
			name:    "pending to confirmed before check-in",
			booking: testBooking(entity.BookingStatusPending, tomorrow, nextWeek),
			next:    entity.BookingStatusConfirmed,
			wantErr: entity.ErrInvalidTransition,
		},
		{
			name:    "pending to cancelled",
			booking: testBooking(entity.BookingStatusPending, tomorrow, nextWeek),
			next:    entity.BookingStatusCancelled,
			wantErr: nil,
		},
		{
			name:    "pending to completed is not allowed",
			booking: testBooking(entity.BookingStatusPending, yesterday, today),
			next:    entity.BookingStatusCompleted,
			wantErr: entity.ErrInvalidTransition,
		},
		{
			name:    "confirmed to completed after check-out",
			booking: testBooking(entity.BookingStatusConfirmed, yesterday, today),
			next:    entity.BookingStatusCompleted,
			wantErr: nil,
		},
		{
			name:    "confirmed to completed before check-out",
			booking: testBooking(entity.BookingStatusConfirmed, yesterday, tomorrow),
			next:    entity.BookingStatusCompleted,
			wantErr: entity.ErrInvalidTransition,
		},
		{
			name:    "confirmed to cancelled",
			booking: testBooking(entity.BookingStatusConfirmed, tomorrow, nextWeek),
			next:    entity.BookingStatusCancelled,
			wantErr: nil,
		},
		{
			name:    "confirmed to pending is not allowed",
			booking: testBooking(entity.BookingStatusConfirmed, tomorrow, nextWeek),
			next:    entity.BookingStatusPending,
			wantErr: entity.ErrInvalidTransition,
		},
		{
			name:    "cancelled is terminal",
			booking: testBooking(entity.BookingStatusCancelled, tomorrow, nextWeek),
			next:    entity.BookingStatusConfirmed,
			wantErr: entity.ErrInvalidTransition,
		},
		{
			name:    "completed is terminal",
			booking: testBooking(entity.BookingStatusCompleted, yesterday, today),
			next:    entity.BookingStatusCancelled,
			wantErr: entity.ErrInvalidTransition,
		},
		{
			name:    "same status is a no-op",
			booking: testBooking(entity.BookingStatusConfirmed, tomorrow, nextWeek),
			next:    entity.BookingStatusConfirmed,
			wantErr: nil,
		},
		{
			name:    "cancelled to cancelled is rejected",
			booking: testBooking(entity.BookingStatusCancelled, tomorrow, nextWeek),
			next:    entity.BookingStatusCancelled,
			wantErr: entity.ErrInvalidTransition,
		},
		{
			name:    "completed to completed is rejected",
			booking: testBooking(entity.BookingStatusCompleted, yesterday, today),
			next:    entity.BookingStatusCompleted,
			wantErr: entity.ErrInvalidTransition,
		},
		{
			name:    "unknown status",
			booking: testBooking(entity.BookingStatusPending, tomorrow, nextWeek),
			next:    entity.BookingStatus("archived"),
			wantErr: entity.ErrInvalidStatus,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := CanTransition(tt.booking, tt.next, today)

			if tt.wantErr == nil {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, tt.wantErr)
			}
		})
	}
}
