package sqlite

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

// Create inserts a reservation; the primary key on date guarantees a
// single winner under concurrent attempts.
func (r *ReservationRepo) Create(ctx context.Context, date, username, description string) (*domain.Reservation, error) {
	now := time.Now()
	var desc any
	if description != "" {
		desc = description
	}
	_, err := r.db.sql.ExecContext(ctx,
		"INSERT INTO reservations (date, username, description, created_at) VALUES (?, ?, ?, ?)",
		date, username, desc, now,
	)
	if isUniqueViolation(err) {
		return nil, domain.ErrDateTaken
	}
	if err != nil {
		return nil, err
	}
	return &domain.Reservation{Date: date, Username: username, Description: description, CreatedAt: now}, nil
}

// Get retrieves the reservation for date. Returns nil when the slot is
// free.
func (r *ReservationRepo) Get(ctx context.Context, date string) (*domain.Reservation, error) {
	var res domain.Reservation
	var desc sql.NullString
	err := r.db.sql.QueryRowContext(ctx,
		"SELECT date, username, description, created_at FROM reservations WHERE date = ?",
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
// date.
func (r *ReservationRepo) ListMonth(ctx context.Context, start, end string) ([]domain.Reservation, error) {
	rows, err := r.db.sql.QueryContext(ctx,
		"SELECT date, username, description, created_at FROM reservations WHERE date >= ? AND date < ? ORDER BY date",
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

// DeleteIfOwner removes the reservation for date when username owns it,
// as a single conditional DELETE.
func (r *ReservationRepo) DeleteIfOwner(ctx context.Context, date, username string) error {
	res, err := r.db.sql.ExecContext(ctx,
		"DELETE FROM reservations WHERE date = ? AND username = ?",
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
	err = r.db.sql.QueryRowContext(ctx, "SELECT username FROM reservations WHERE date = ?", date).Scan(&owner)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.ErrReservationNotFound
	}
	if err != nil {
		return err
	}
	return domain.ErrNotOwner
}
