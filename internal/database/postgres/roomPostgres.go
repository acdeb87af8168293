package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/ds124wfegd/hotel-booking/internal/entity"
	"github.com/lib/pq"
)

const roomColumns = `
	id, number, type, price_per_night, max_adults, max_children,
	allow_children, status, created_at, updated_at`

type roomRepository struct {
	db *sql.DB
}

func NewRoomRepository(db *sql.DB) RoomRepository {
	return &roomRepository{db: db}
}

func (r *roomRepository) Create(ctx context.Context, room *entity.Room) error {
	now := time.Now()
	err := r.db.QueryRowContext(ctx, `
		INSERT INTO rooms (number, type, price_per_night, max_adults, max_children,
		                   allow_children, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id`,
		room.Number,
		room.Type,
		room.PricePerNight,
		room.MaxAdults,
		room.MaxChildren,
		room.AllowChildren,
		room.Status,
		now,
		now,
	).Scan(&room.ID)

	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23505" {
			return entity.ErrRoomNumberTaken
		}
		return fmt.Errorf("failed to create room: %v", err)
	}

	room.CreatedAt = now
	room.UpdatedAt = now
	return nil
}

// GetByID retrieves a room by its ID
func (r *roomRepository) GetByID(ctx context.Context, id int64) (*entity.Room, error) {
	query := `SELECT ` + roomColumns + ` FROM rooms WHERE id = $1`

	var room entity.Room
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&room.ID,
		&room.Number,
		&room.Type,
		&room.PricePerNight,
		&room.MaxAdults,
		&room.MaxChildren,
		&room.AllowChildren,
		&room.Status,
		&room.CreatedAt,
		&room.UpdatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, entity.ErrRoomNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get room: %v", err)
	}

	return &room, nil
}

func (r *roomRepository) GetAll(ctx context.Context) ([]*entity.Room, error) {
	query := `SELECT ` + roomColumns + ` FROM rooms ORDER BY number`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query rooms: %v", err)
	}
	defer rows.Close()

	var rooms []*entity.Room
	for rows.Next() {
		var room entity.Room
		err := rows.Scan(
			&room.ID,
			&room.Number,
			&room.Type,
			&room.PricePerNight,
			&room.MaxAdults,
			&room.MaxChildren,
			&room.AllowChildren,
			&room.Status,
			&room.CreatedAt,
			&room.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan room: %v", err)
		}
		rooms = append(rooms, &room)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rooms: %v", err)
	}

	return rooms, nil
}

func (r *roomRepository) Update(ctx context.Context, room *entity.Room) error {
	result, err := r.db.ExecContext(ctx, `
		UPDATE rooms
		SET number = $1, type = $2, price_per_night = $3, max_adults = $4,
		    max_children = $5, allow_children = $6, status = $7, updated_at = $8
		WHERE id = $9`,
		room.Number,
		room.Type,
		room.PricePerNight,
		room.MaxAdults,
		room.MaxChildren,
		room.AllowChildren,
		room.Status,
		time.Now(),
		room.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update room: %v", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %v", err)
	}
	if rowsAffected == 0 {
		return entity.ErrRoomNotFound
	}

	room.UpdatedAt = time.Now()
	return nil
}
