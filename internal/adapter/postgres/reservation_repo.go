package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"petitdej/internal/domain"
)

// ReservationRepo implements reservation repository operations on DB.
type ReservationRepo struct {
	db *DB
}

// NewReservationRepo wraps a DB as a ReservationRepository.
func NewReservationRepo(db *DB) *ReservationRepo {
	return &ReservationRepo{db: db}
}

// Create inserts a reservation. The primary key on date makes the
// uniqueness check and the insert a single atomic step: under concurrent
// attempts for one date exactly one insert wins and the rest get
// domain.ErrDateTaken.
func (r *ReservationRepo) Create(ctx context.Context, date, username, description string) (*domain.Reservation, error) {
	var res domain.Reservation
	var desc sql.NullString
	err := r.db.sql.QueryRowContext(ctx,
		"INSERT INTO reservations (date, username, description, created_at) VALUES ($1, $2, NULLIF($3, ''), $4) RETURNING date, username, description, created_at",
		date, username, description, time.Now(),
	).Scan(&res.Date, &res.Username, &desc, &res.CreatedAt)
	if isUniqueViolation(err) {
		return nil, domain.ErrDateTaken
	}
	if err != nil {
		return nil, err
	}
	res.Description = desc.String
	return &res, nil
}

// Get retrieves the reservation for date. Returns nil when the slot is
// free.
func (r *ReservationRepo) Get(ctx context.Context, date string) (*domain.Reservation, error) {
	var res domain.Reservation
	var desc sql.NullString
	err := r.db.sql.QueryRowContext(ctx,
		"SELECT date, username, description, created_at FROM reservations WHERE date = $1",
		date,
	).Scan(&res.Date, &res.Username, &desc, &res.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	res.Description = desc.String
	return &res, nil
}

// ListMonth returns reservations with date in [start, end), ordered by
// date. ISO day strings compare correctly as text.
func (r *ReservationRepo) ListMonth(ctx context.Context, start, end string) ([]domain.Reservation, error) {
	rows, err := r.db.sql.QueryContext(ctx,
		"SELECT date, username, description, created_at FROM reservations WHERE date >= $1 AND date < $2 ORDER BY date",
		start, end,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]domain.Reservation, 0)
	for rows.Next() {
		var res domain.Reservation
		var desc sql.NullString
		if err := rows.Scan(&res.Date, &res.Username, &desc, &res.CreatedAt); err != nil {
			return nil, err
		}
		res.Description = desc.String
		out = append(out, res)
	}
	return out, rows.Err()
}

// DeleteIfOwner removes the reservation for date when username owns it.
// The conditional DELETE is the atomic check-and-act; the follow-up read
// only classifies a zero-row result and cannot delete anything.
func (r *ReservationRepo) DeleteIfOwner(ctx context.Context, date, username string) error {
	res, err := r.db.sql.ExecContext(ctx,
		"DELETE FROM reservations WHERE date = $1 AND username = $2",
		date, username,
	)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n > 0 {
		return nil
	}

	var owner string
	err = r.db.sql.QueryRowContext(ctx, "SELECT username FROM reservations WHERE date = $1", date).Scan(&owner)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.ErrReservationNotFound
	}
	if err != nil {
		return err
	}
	return domain.ErrNotOwner
}
