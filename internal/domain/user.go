// Package domain contains the core business entities and interfaces.
package domain

import (
	"context"
	"errors"
	"time"
)

// ErrDuplicateUsername is returned by UserRepository.Create when the
// username is already taken. Implementations must derive it from the
// store's unique constraint, not from a prior existence check.
var ErrDuplicateUsername = errors.New("username already taken")

// User represents a registered account. Users are created on first
// register-or-login and never deleted.
type User struct {
	ID           int64
	Username     string
	PasswordHash string
	CreatedAt    time.Time
}

// UserRepository defines the port for user persistence operations.
type UserRepository interface {
	GetByUsername(ctx context.Context, username string) (*User, error)
	GetByID(ctx context.Context, id int64) (*User, error)
	Create(ctx context.Context, username, passwordHash string) (*User, error)
}
