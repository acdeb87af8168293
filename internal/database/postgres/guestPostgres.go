package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/ds124wfegd/hotel-booking/internal/entity"
)

const guestColumns = `id, email, phone, first_name, last_name, created_at`

type guestRepository struct {
	db *sql.DB
}

func NewGuestRepository(db *sql.DB) GuestRepository {
	return &guestRepository{db: db}
}

func (r *guestRepository) GetByID(ctx context.Context, id int64) (*entity.Guest, error) {
	query := `SELECT ` + guestColumns + ` FROM guests WHERE id = $1`

	var guest entity.Guest
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&guest.ID,
		&guest.Email,
		&guest.Phone,
		&guest.FirstName,
		&guest.LastName,
		&guest.CreatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, entity.ErrGuestNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get guest: %v", err)
	}

	return &guest, nil
}

func (r *guestRepository) GetByEmail(ctx context.Context, email string) (*entity.Guest, error) {
	query := `SELECT ` + guestColumns + ` FROM guests WHERE email = $1`

	var guest entity.Guest
	err := r.db.QueryRowContext(ctx, query, email).Scan(
		&guest.ID,
		&guest.Email,
		&guest.Phone,
		&guest.FirstName,
		&guest.LastName,
		&guest.CreatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, entity.ErrGuestNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get guest by email: %v", err)
	}

	return &guest, nil
}

func (r *guestRepository) GetAll(ctx context.Context) ([]*entity.Guest, error) {
	query := `SELECT ` + guestColumns + ` FROM guests ORDER BY created_at DESC`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query guests: %v", err)
	}
	defer rows.Close()

	return scanGuests(rows)
}

func (r *guestRepository) SearchByName(ctx context.Context, name string) ([]*entity.Guest, error) {
	query := `SELECT ` + guestColumns + ` FROM guests
		WHERE first_name ILIKE $1 OR last_name ILIKE $1
		ORDER BY last_name, first_name`

	rows, err := r.db.QueryContext(ctx, query, "%"+name+"%")
	if err != nil {
		return nil, fmt.Errorf("failed to search guests: %v", err)
	}
	defer rows.Close()

	return scanGuests(rows)
}

func scanGuests(rows *sql.Rows) ([]*entity.Guest, error) {
	var guests []*entity.Guest
	for rows.Next() {
		var guest entity.Guest
		err := rows.Scan(
			&guest.ID,
			&guest.Email,
			&guest.Phone,
			&guest.FirstName,
			&guest.LastName,
			&guest.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan guest: %v", err)
		}
		guests = append(guests, &guest)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating guests: %v", err)
	}

	return guests, nil
}
