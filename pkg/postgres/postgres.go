package postgres

import (
	"database/sql"
	"fmt"
	"log"

	"github.com/ds124wfegd/hotel-booking/config"

	_ "github.com/lib/pq"
)

func NewPostgresDB(cfg *config.DatabaseConfig) (*sql.DB, error) {
	connStr := fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.DBName, cfg.SSLMode,
	)

	db, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.ConnMaxLifetime)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	log.Println("Successfully connected to PostgreSQL")
	return db, nil
}

func RunMigrations(db *sql.DB) error {
	// Read migration files and execute them
	// This is a simplified version - you might want to use a proper migration tool
	migrations := []string{
		`CREATE EXTENSION IF NOT EXISTS btree_gist`,

		`CREATE TABLE IF NOT EXISTS rooms (
			id SERIAL PRIMARY KEY,
			number VARCHAR(20) UNIQUE NOT NULL,
			type VARCHAR(50) NOT NULL,
			price_per_night NUMERIC(12,2) NOT NULL,
			max_adults INTEGER NOT NULL DEFAULT 2,
			max_children INTEGER NOT NULL DEFAULT 0,
			allow_children BOOLEAN NOT NULL DEFAULT true,
			status VARCHAR(20) NOT NULL DEFAULT 'available',
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)`,

		`CREATE TABLE IF NOT EXISTS guests (
			id SERIAL PRIMARY KEY,
			email VARCHAR(255) UNIQUE NOT NULL,
			phone VARCHAR(50) UNIQUE NOT NULL,
			first_name VARCHAR(100) NOT NULL,
			last_name VARCHAR(100) NOT NULL,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)`,

		`CREATE TABLE IF NOT EXISTS packages (
			id SERIAL PRIMARY KEY,
			name VARCHAR(255) NOT NULL,
			type VARCHAR(10) NOT NULL,
			value NUMERIC(12,2) NOT NULL,
			valid_from TIMESTAMP NOT NULL,
			valid_to TIMESTAMP NOT NULL,
			active BOOLEAN NOT NULL DEFAULT true
		)`,

		`CREATE TABLE IF NOT EXISTS promotions (
			id SERIAL PRIMARY KEY,
			name VARCHAR(255) NOT NULL,
			discount_type VARCHAR(10) NOT NULL,
			discount_value NUMERIC(12,2) NOT NULL,
			valid_from TIMESTAMP NOT NULL,
			valid_to TIMESTAMP NOT NULL,
			active BOOLEAN NOT NULL DEFAULT true,
			applicable_rooms TEXT
		)`,

		`CREATE TABLE IF NOT EXISTS coupons (
			id SERIAL PRIMARY KEY,
			code VARCHAR(50) UNIQUE NOT NULL,
			discount_type VARCHAR(10) NOT NULL,
			discount_value NUMERIC(12,2) NOT NULL,
			usage_limit INTEGER,
			used_count INTEGER NOT NULL DEFAULT 0,
			valid_from TIMESTAMP NOT NULL,
			valid_to TIMESTAMP NOT NULL,
			active BOOLEAN NOT NULL DEFAULT true,
			CHECK (usage_limit IS NULL OR used_count <= usage_limit)
		)`,

		`CREATE TABLE IF NOT EXISTS bookings (
			id SERIAL PRIMARY KEY,
			reference VARCHAR(36) UNIQUE NOT NULL,
			guest_id INTEGER NOT NULL REFERENCES guests(id),
			room_id INTEGER NOT NULL REFERENCES rooms(id),
			check_in DATE NOT NULL,
			check_out DATE NOT NULL,
			adults INTEGER NOT NULL DEFAULT 1,
			children INTEGER NOT NULL DEFAULT 0,
			total_amount NUMERIC(12,2) NOT NULL DEFAULT 0,
			discount_amount NUMERIC(12,2) NOT NULL DEFAULT 0,
			package_id INTEGER REFERENCES packages(id),
			promotion_id INTEGER REFERENCES promotions(id),
			coupon_id INTEGER REFERENCES coupons(id),
			coupon_code VARCHAR(50),
			status VARCHAR(20) NOT NULL DEFAULT 'pending',
			deleted_at TIMESTAMP,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			CHECK (check_out > check_in)
		)`,

		// Два активных бронирования одного номера не могут пересекаться по
		// датам; полуоткрытый интервал [check_in, check_out) разрешает выезд
		// и заезд в один день
		`DO $$ BEGIN
			ALTER TABLE bookings ADD CONSTRAINT bookings_no_overlap
				EXCLUDE USING gist (
					room_id WITH =,
					daterange(check_in, check_out) WITH &&
				) WHERE (status IN ('pending', 'confirmed') AND deleted_at IS NULL);
		EXCEPTION
			WHEN duplicate_table THEN NULL;
			WHEN duplicate_object THEN NULL;
		END $$`,

		`CREATE TABLE IF NOT EXISTS payments (
			id SERIAL PRIMARY KEY,
			booking_id INTEGER NOT NULL REFERENCES bookings(id),
			transaction_id VARCHAR(36) UNIQUE NOT NULL,
			method VARCHAR(20) NOT NULL,
			amount NUMERIC(12,2) NOT NULL,
			status VARCHAR(20) NOT NULL DEFAULT 'pending',
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)`,

		`CREATE TABLE IF NOT EXISTS booking_logs (
			id SERIAL PRIMARY KEY,
			booking_id INTEGER NOT NULL REFERENCES bookings(id),
			kind VARCHAR(50) NOT NULL,
			note TEXT NOT NULL,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)`,

		// Indexes
		`CREATE INDEX IF NOT EXISTS idx_bookings_room_id ON bookings(room_id)`,
		`CREATE INDEX IF NOT EXISTS idx_bookings_guest_id ON bookings(guest_id)`,
		`CREATE INDEX IF NOT EXISTS idx_bookings_status ON bookings(status)`,
		`CREATE INDEX IF NOT EXISTS idx_bookings_dates ON bookings(check_in, check_out)`,
		`CREATE INDEX IF NOT EXISTS idx_payments_booking_id ON payments(booking_id)`,
		`CREATE INDEX IF NOT EXISTS idx_booking_logs_booking_id ON booking_logs(booking_id)`,
	}

	for _, migration := range migrations {
		if _, err := db.Exec(migration); err != nil {
			return fmt.Errorf("failed to execute migration: %v", err)
		}
	}

	log.Println("Database migrations completed successfully")
	return nil
}
