// Package memory implements an in-memory repository for development and
// testing.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"petitdej/internal/domain"
)

// DB implements the domain repositories in process memory. A single
// mutex makes each operation atomic, mirroring the constraint semantics
// of the SQL adapters.
type DB struct {
	mu           sync.Mutex
	users        []*domain.User
	reservations map[string]*domain.Reservation

	userIDCounter int64
}

// New creates a new in-memory database.
func New() *DB {
	return &DB{
		reservations: make(map[string]*domain.Reservation),
	}
}

// Ensure interfaces are met.
var _ domain.UserRepository = (*DB)(nil)
var _ domain.ReservationRepository = (*ReservationRepo)(nil)

// --- UserRepository ---

// GetByUsername retrieves a user by username.
func (db *DB) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	for _, u := range db.users {
		if u.Username == username {
			ret := *u
			return &ret, nil
		}
	}
	return nil, nil
}

// GetByID retrieves a user by ID.
func (db *DB) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	for _, u := range db.users {
		if u.ID == id {
			ret := *u
			return &ret, nil
		}
	}
	return nil, nil
}

// Create creates a new user. The existence check and the append happen
// under one lock, so it is as atomic as the SQL unique constraint.
func (db *DB) Create(ctx context.Context, username, passwordHash string) (*domain.User, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	for _, u := range db.users {
		if u.Username == username {
			return nil, domain.ErrDuplicateUsername
		}
	}

	db.userIDCounter++
	u := &domain.User{
		ID:           db.userIDCounter,
		Username:     username,
		PasswordHash: passwordHash,
		CreatedAt:    time.Now().UTC(),
	}
	db.users = append(db.users, u)
	ret := *u
	return &ret, nil
}

// --- ReservationRepository ---

// ReservationRepo implements reservation persistence.
type ReservationRepo struct {
	db *DB
}

// NewReservationRepo creates a new reservation repository.
func (db *DB) NewReservationRepo() *ReservationRepo {
	return &ReservationRepo{db: db}
}

// Create books the slot for date if it is free.
func (r *ReservationRepo) Create(ctx context.Context, date, username, description string) (*domain.Reservation, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	if _, taken := r.db.reservations[date]; taken {
		return nil, domain.ErrDateTaken
	}

	res := &domain.Reservation{
		Date:        date,
		Username:    username,
		Description: description,
		CreatedAt:   time.Now().UTC(),
	}
	r.db.reservations[date] = res
	ret := *res
	return &ret, nil
}

// Get returns the reservation for date, or nil if the slot is free.
func (r *ReservationRepo) Get(ctx context.Context, date string) (*domain.Reservation, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	if res, ok := r.db.reservations[date]; ok {
		ret := *res
		return &ret, nil
	}
	return nil, nil
}

// ListMonth returns reservations with date in [start, end), ordered by
// date.
func (r *ReservationRepo) ListMonth(ctx context.Context, start, end string) ([]domain.Reservation, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	out := make([]domain.Reservation, 0)
	for date, res := range r.db.reservations {
		if date >= start && date < end {
			out = append(out, *res)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Date < out[j].Date
	})
	return out, nil
}

// DeleteIfOwner removes the reservation for date if username owns it.
// The check and the delete run under one lock.
func (r *ReservationRepo) DeleteIfOwner(ctx context.Context, date, username string) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	res, ok := r.db.reservations[date]
	if !ok {
		return domain.ErrReservationNotFound
	}
	if res.Username != username {
		return domain.ErrNotOwner
	}
	delete(r.db.reservations, date)
	return nil
}
