package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/ds124wfegd/hotel-booking/internal/entity"
)

type paymentRepository struct {
	db *sql.DB
}

func NewPaymentRepository(db *sql.DB) PaymentRepository {
	return &paymentRepository{db: db}
}

func (r *paymentRepository) GetByBookingID(ctx context.Context, bookingID int64) ([]*entity.Payment, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, booking_id, transaction_id, method, amount, status, created_at, updated_at
		FROM payments
		WHERE booking_id = $1
		ORDER BY created_at DESC`, bookingID)
	if err != nil {
		return nil, fmt.Errorf("failed to query payments: %v", err)
	}
	defer rows.Close()

	var payments []*entity.Payment
	for rows.Next() {
		var payment entity.Payment
		err := rows.Scan(
			&payment.ID,
			&payment.BookingID,
			&payment.TransactionID,
			&payment.Method,
			&payment.Amount,
			&payment.Status,
			&payment.CreatedAt,
			&payment.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan payment: %v", err)
		}
		payments = append(payments, &payment)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating payments: %v", err)
	}

	return payments, nil
}
