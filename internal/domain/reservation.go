package domain

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrDateTaken is returned by Create when the date already has a
	// reservation. Like ErrDuplicateUsername it must come out of the
	// store's primary-key constraint so concurrent creates race safely.
	ErrDateTaken = errors.New("date already reserved")
	// ErrReservationNotFound is returned when no reservation exists for
	// the requested date.
	ErrReservationNotFound = errors.New("reservation not found")
	// ErrNotOwner is returned when someone other than the owner attempts
	// to cancel a reservation.
	ErrNotOwner = errors.New("reservation owned by someone else")
)

// Reservation is the single bookable slot for a calendar date. The date
// (ISO YYYY-MM-DD) is the primary key: at most one reservation exists per
// date system-wide.
type Reservation struct {
	Date        string    `json:"date"`
	Username    string    `json:"username"`
	Description string    `json:"description,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
}

// ReservationRepository is the port for reservation persistence.
//
// ListMonth takes a half-open day interval [start, end) in ISO form and
// returns reservations ordered by date. DeleteIfOwner must evaluate the
// ownership check and the delete as one atomic operation.
type ReservationRepository interface {
	Create(ctx context.Context, date, username, description string) (*Reservation, error)
	Get(ctx context.Context, date string) (*Reservation, error)
	ListMonth(ctx context.Context, start, end string) ([]Reservation, error)
	DeleteIfOwner(ctx context.Context, date, username string) error
}
