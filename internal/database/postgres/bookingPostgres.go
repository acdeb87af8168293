package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/ds124wfegd/hotel-booking/internal/entity"
	"github.com/lib/pq"
)

const bookingColumns = `
	id, reference, guest_id, room_id, check_in, check_out, adults, children,
	total_amount, discount_amount, package_id, promotion_id, coupon_id,
	coupon_code, status, deleted_at, created_at, updated_at`

type bookingRepository struct {
	db *sql.DB
}

func NewBookingRepository(db *sql.DB) BookingRepository {
	return &bookingRepository{db: db}
}

// exclusion constraint bookings_no_overlap срабатывает с кодом 23P01,
// когда два конкурентных бронирования одного номера пересекаются по датам
func isOverlapViolation(err error) bool {
	if pqErr, ok := err.(*pq.Error); ok {
		return pqErr.Code == "23P01"
	}
	return false
}

// Create writes guest, booking, payment, coupon increment and the special
// request note in a single transaction to ensure data consistency
func (r *bookingRepository) Create(ctx context.Context, params *CreateBookingParams) error {
	tx, err := r.db.BeginTx(ctx, &sql.TxOptions{
		Isolation: sql.LevelReadCommitted,
	})
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %v", err)
	}
	defer tx.Rollback()

	booking := params.Booking

	// Resolve guest by email; an existing guest is reused untouched
	guestID, err := upsertGuest(ctx, tx, params.Guest)
	if err != nil {
		return err
	}
	booking.GuestID = guestID
	params.Guest.ID = guestID

	// Lock the room row so concurrent requests for the same room serialize
	// on the availability check
	var roomID int64
	err = tx.QueryRowContext(ctx, `SELECT id FROM rooms WHERE id = $1 FOR UPDATE`, booking.RoomID).Scan(&roomID)
	if err == sql.ErrNoRows {
		return entity.ErrRoomNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to lock room: %v", err)
	}

	overlap, err := hasOverlapTx(ctx, tx, booking.RoomID, booking.CheckIn, booking.CheckOut, 0)
	if err != nil {
		return err
	}
	if overlap {
		return entity.ErrDatesConflict
	}

	now := time.Now()
	query := `
		INSERT INTO bookings (
			reference, guest_id, room_id, check_in, check_out, adults, children,
			total_amount, discount_amount, package_id, promotion_id, coupon_id,
			coupon_code, status, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
		RETURNING id
	`

	err = tx.QueryRowContext(ctx, query,
		booking.Reference,
		booking.GuestID,
		booking.RoomID,
		booking.CheckIn,
		booking.CheckOut,
		booking.Adults,
		booking.Children,
		booking.TotalAmount,
		booking.DiscountAmount,
		booking.PackageID,
		booking.PromotionID,
		booking.CouponID,
		nullString(booking.CouponCode),
		booking.Status,
		now,
		now,
	).Scan(&booking.ID)

	if err != nil {
		if isOverlapViolation(err) {
			return entity.ErrDatesConflict
		}
		return fmt.Errorf("failed to create booking: %v", err)
	}

	booking.CreatedAt = now
	booking.UpdatedAt = now

	// Redeem the coupon atomically with the booking insert so its usage
	// limit cannot be exceeded by concurrent requests
	if booking.CouponID != nil {
		result, err := tx.ExecContext(ctx, `
			UPDATE coupons
			SET used_count = used_count + 1
			WHERE id = $1 AND active = true
			  AND (usage_limit IS NULL OR used_count < usage_limit)`,
			*booking.CouponID,
		)
		if err != nil {
			return fmt.Errorf("failed to redeem coupon: %v", err)
		}
		rowsAffected, err := result.RowsAffected()
		if err != nil {
			return fmt.Errorf("failed to get rows affected: %v", err)
		}
		if rowsAffected == 0 {
			return entity.ErrCouponExhausted
		}
	}

	if params.Payment != nil {
		payment := params.Payment
		payment.BookingID = booking.ID
		err = tx.QueryRowContext(ctx, `
			INSERT INTO payments (booking_id, transaction_id, method, amount, status, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
			RETURNING id`,
			payment.BookingID,
			payment.TransactionID,
			payment.Method,
			payment.Amount,
			payment.Status,
			now,
			now,
		).Scan(&payment.ID)
		if err != nil {
			return fmt.Errorf("failed to create payment: %v", err)
		}
		payment.CreatedAt = now
		payment.UpdatedAt = now
	}

	if params.SpecialRequest != "" {
		if err := addLogTx(ctx, tx, booking.ID, "special_request", params.SpecialRequest); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %v", err)
	}

	return nil
}

func upsertGuest(ctx context.Context, tx *sql.Tx, guest *entity.Guest) (int64, error) {
	var id int64
	err := tx.QueryRowContext(ctx, `
		INSERT INTO guests (email, phone, first_name, last_name)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (email) DO NOTHING
		RETURNING id`,
		guest.Email, guest.Phone, guest.FirstName, guest.LastName,
	).Scan(&id)

	if err == sql.ErrNoRows {
		// Гость с таким email уже существует, используем его запись как есть
		err = tx.QueryRowContext(ctx,
			`SELECT id FROM guests WHERE email = $1`, guest.Email,
		).Scan(&id)
	}
	if err != nil {
		return 0, fmt.Errorf("failed to resolve guest: %v", err)
	}

	return id, nil
}

func hasOverlapTx(ctx context.Context, tx *sql.Tx, roomID int64, checkIn, checkOut entity.DateOnly, excludeID int64) (bool, error) {
	var exists bool
	err := tx.QueryRowContext(ctx, `
		SELECT EXISTS(
			SELECT 1 FROM bookings
			WHERE room_id = $1
			  AND status IN ('pending', 'confirmed')
			  AND deleted_at IS NULL
			  AND check_in < $3 AND check_out > $2
			  AND id <> $4
		)`,
		roomID, checkIn, checkOut, excludeID,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check availability: %v", err)
	}
	return exists, nil
}

// HasOverlap reports whether any active booking blocks the given date range.
// Intervals are half-open, so back-to-back stays do not conflict.
func (r *bookingRepository) HasOverlap(ctx context.Context, roomID int64, checkIn, checkOut entity.DateOnly, excludeBookingID int64) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx, `
		SELECT EXISTS(
			SELECT 1 FROM bookings
			WHERE room_id = $1
			  AND status IN ('pending', 'confirmed')
			  AND deleted_at IS NULL
			  AND check_in < $3 AND check_out > $2
			  AND id <> $4
		)`,
		roomID, checkIn, checkOut, excludeBookingID,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check availability: %v", err)
	}
	return exists, nil
}

// GetByID retrieves a booking by its ID
func (r *bookingRepository) GetByID(ctx context.Context, id int64) (*entity.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE id = $1 AND deleted_at IS NULL`

	booking, err := scanBooking(r.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, entity.ErrBookingNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get booking: %v", err)
	}

	return booking, nil
}

// Update rewrites a booking row, re-checking availability under the room
// lock when the booking still blocks dates
func (r *bookingRepository) Update(ctx context.Context, booking *entity.Booking) error {
	tx, err := r.db.BeginTx(ctx, &sql.TxOptions{
		Isolation: sql.LevelReadCommitted,
	})
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %v", err)
	}
	defer tx.Rollback()

	if booking.IsActive() {
		var roomID int64
		err = tx.QueryRowContext(ctx, `SELECT id FROM rooms WHERE id = $1 FOR UPDATE`, booking.RoomID).Scan(&roomID)
		if err == sql.ErrNoRows {
			return entity.ErrRoomNotFound
		}
		if err != nil {
			return fmt.Errorf("failed to lock room: %v", err)
		}

		overlap, err := hasOverlapTx(ctx, tx, booking.RoomID, booking.CheckIn, booking.CheckOut, booking.ID)
		if err != nil {
			return err
		}
		if overlap {
			return entity.ErrDatesConflict
		}
	}

	result, err := tx.ExecContext(ctx, `
		UPDATE bookings
		SET room_id = $1, check_in = $2, check_out = $3, adults = $4, children = $5,
		    total_amount = $6, discount_amount = $7, status = $8, updated_at = $9
		WHERE id = $10 AND deleted_at IS NULL`,
		booking.RoomID,
		booking.CheckIn,
		booking.CheckOut,
		booking.Adults,
		booking.Children,
		booking.TotalAmount,
		booking.DiscountAmount,
		booking.Status,
		time.Now(),
		booking.ID,
	)
	if err != nil {
		if isOverlapViolation(err) {
			return entity.ErrDatesConflict
		}
		return fmt.Errorf("failed to update booking: %v", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %v", err)
	}
	if rowsAffected == 0 {
		return entity.ErrBookingNotFound
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %v", err)
	}

	booking.UpdatedAt = time.Now()
	return nil
}

// Cancel marks a booking cancelled and its payments refunded in one transaction
func (r *bookingRepository) Cancel(ctx context.Context, id int64, reason string) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %v", err)
	}
	defer tx.Rollback()

	result, err := tx.ExecContext(ctx, `
		UPDATE bookings SET status = $1, updated_at = $2
		WHERE id = $3 AND deleted_at IS NULL`,
		entity.BookingStatusCancelled, time.Now(), id,
	)
	if err != nil {
		return fmt.Errorf("failed to cancel booking: %v", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %v", err)
	}
	if rowsAffected == 0 {
		return entity.ErrBookingNotFound
	}

	_, err = tx.ExecContext(ctx, `
		UPDATE payments SET status = $1, updated_at = $2
		WHERE booking_id = $3`,
		entity.PaymentStatusRefunded, time.Now(), id,
	)
	if err != nil {
		return fmt.Errorf("failed to refund payments: %v", err)
	}

	if reason != "" {
		if err := addLogTx(ctx, tx, id, "cancellation", reason); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %v", err)
	}

	return nil
}

// SoftDelete sets deleted_at and cascades payment status
func (r *bookingRepository) SoftDelete(ctx context.Context, id int64) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %v", err)
	}
	defer tx.Rollback()

	result, err := tx.ExecContext(ctx, `
		UPDATE bookings SET deleted_at = $1, updated_at = $1
		WHERE id = $2 AND deleted_at IS NULL`,
		time.Now(), id,
	)
	if err != nil {
		return fmt.Errorf("failed to delete booking: %v", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %v", err)
	}
	if rowsAffected == 0 {
		return entity.ErrBookingNotFound
	}

	_, err = tx.ExecContext(ctx, `
		UPDATE payments SET status = $1, updated_at = $2
		WHERE booking_id = $3`,
		entity.PaymentStatusRefunded, time.Now(), id,
	)
	if err != nil {
		return fmt.Errorf("failed to update payments: %v", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %v", err)
	}

	return nil
}

// List returns a page of bookings matching the filter and the total count
func (r *bookingRepository) List(ctx context.Context, filter *entity.BookingFilter) ([]*entity.Booking, int, error) {
	conditions := []string{"b.deleted_at IS NULL"}
	args := []interface{}{}

	if filter.Status != "" {
		args = append(args, filter.Status)
		conditions = append(conditions, fmt.Sprintf("b.status = $%d", len(args)))
	}
	if filter.RoomID != 0 {
		args = append(args, filter.RoomID)
		conditions = append(conditions, fmt.Sprintf("b.room_id = $%d", len(args)))
	}
	if filter.GuestName != "" {
		args = append(args, "%"+filter.GuestName+"%")
		conditions = append(conditions, fmt.Sprintf(
			"(g.first_name ILIKE $%d OR g.last_name ILIKE $%d)", len(args), len(args)))
	}
	if filter.From != nil {
		args = append(args, *filter.From)
		conditions = append(conditions, fmt.Sprintf("b.check_out > $%d", len(args)))
	}
	if filter.To != nil {
		args = append(args, *filter.To)
		conditions = append(conditions, fmt.Sprintf("b.check_in < $%d", len(args)))
	}

	where := strings.Join(conditions, " AND ")

	var total int
	countQuery := `SELECT COUNT(*) FROM bookings b JOIN guests g ON b.guest_id = g.id WHERE ` + where
	if err := r.db.QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count bookings: %v", err)
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = 50
	}
	args = append(args, limit)
	limitPos := len(args)
	args = append(args, filter.Offset)
	offsetPos := len(args)

	query := fmt.Sprintf(`
		SELECT b.id, b.reference, b.guest_id, b.room_id, b.check_in, b.check_out,
		       b.adults, b.children, b.total_amount, b.discount_amount,
		       b.package_id, b.promotion_id, b.coupon_id, b.coupon_code,
		       b.status, b.deleted_at, b.created_at, b.updated_at
		FROM bookings b
		JOIN guests g ON b.guest_id = g.id
		WHERE %s
		ORDER BY b.created_at DESC
		LIMIT $%d OFFSET $%d`, where, limitPos, offsetPos)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to query bookings: %v", err)
	}
	defer rows.Close()

	var bookings []*entity.Booking
	for rows.Next() {
		booking, err := scanBooking(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan booking: %v", err)
		}
		bookings = append(bookings, booking)
	}

	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("error iterating bookings: %v", err)
	}

	return bookings, total, nil
}

// CompletePastCheckouts marks confirmed stays past their check-out as completed
func (r *bookingRepository) CompletePastCheckouts(ctx context.Context, today entity.DateOnly) (int64, error) {
	result, err := r.db.ExecContext(ctx, `
		UPDATE bookings SET status = $1, updated_at = $2
		WHERE status = $3 AND check_out <= $4 AND deleted_at IS NULL`,
		entity.BookingStatusCompleted, time.Now(), entity.BookingStatusConfirmed, today,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to complete past checkouts: %v", err)
	}
	return result.RowsAffected()
}

// CancelStalePending cancels pending bookings whose check-in already passed
func (r *bookingRepository) CancelStalePending(ctx context.Context, before entity.DateOnly) (int64, error) {
	result, err := r.db.ExecContext(ctx, `
		UPDATE bookings SET status = $1, updated_at = $2
		WHERE status = $3 AND check_in < $4 AND deleted_at IS NULL`,
		entity.BookingStatusCancelled, time.Now(), entity.BookingStatusPending, before,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to cancel stale pending bookings: %v", err)
	}
	return result.RowsAffected()
}

// AddLog appends a workflow note to the booking audit log
func (r *bookingRepository) AddLog(ctx context.Context, bookingID int64, kind, note string) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO booking_logs (booking_id, kind, note) VALUES ($1, $2, $3)`,
		bookingID, kind, note,
	)
	if err != nil {
		return fmt.Errorf("failed to add booking log: %v", err)
	}
	return nil
}

func addLogTx(ctx context.Context, tx *sql.Tx, bookingID int64, kind, note string) error {
	_, err := tx.ExecContext(ctx, `
		INSERT INTO booking_logs (booking_id, kind, note) VALUES ($1, $2, $3)`,
		bookingID, kind, note,
	)
	if err != nil {
		return fmt.Errorf("failed to add booking log: %v", err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanBooking(row rowScanner) (*entity.Booking, error) {
	var booking entity.Booking
	var packageID, promotionID, couponID sql.NullInt64
	var couponCode sql.NullString
	var deletedAt sql.NullTime

	err := row.Scan(
		&booking.ID,
		&booking.Reference,
		&booking.GuestID,
		&booking.RoomID,
		&booking.CheckIn,
		&booking.CheckOut,
		&booking.Adults,
		&booking.Children,
		&booking.TotalAmount,
		&booking.DiscountAmount,
		&packageID,
		&promotionID,
		&couponID,
		&couponCode,
		&booking.Status,
		&deletedAt,
		&booking.CreatedAt,
		&booking.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if packageID.Valid {
		booking.PackageID = &packageID.Int64
	}
	if promotionID.Valid {
		booking.PromotionID = &promotionID.Int64
	}
	if couponID.Valid {
		booking.CouponID = &couponID.Int64
	}
	if couponCode.Valid {
		booking.CouponCode = couponCode.String
	}
	if deletedAt.Valid {
		booking.DeletedAt = &deletedAt.Time
	}

	return &booking, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
