// Package app holds the application services and business logic.
package app

import (
	"context"
	"errors"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"petitdej/internal/domain"
)

var (
	// ErrMissingCredentials indicates an empty username or password.
	ErrMissingCredentials = errors.New("username and password are required")
	// ErrInvalidCredentials indicates a wrong password for an existing user.
	ErrInvalidCredentials = errors.New("invalid username or password")
)

const bcryptCost = 12

// AuthService handles the register-or-login flow.
type AuthService struct {
	users domain.UserRepository
}

// NewAuthService creates a new authentication service.
func NewAuthService(users domain.UserRepository) *AuthService {
	return &AuthService{users: users}
}

// RegisterOrLogin authenticates an existing user or registers a new one.
// Usernames are trimmed of surrounding whitespace before comparison and
// storage. If a concurrent registration wins the unique-constraint race,
// the loser falls into the login branch and the submitted password is
// verified against the winner's hash; no path succeeds without a check.
func (s *AuthService) RegisterOrLogin(ctx context.Context, username, password string) (*domain.User, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return nil, ErrMissingCredentials
	}

	user, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	if user != nil {
		return s.verify(user, password)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return nil, err
	}

	user, err = s.users.Create(ctx, username, string(hash))
	if errors.Is(err, domain.ErrDuplicateUsername) {
		// Lost a concurrent registration of the same name; log in against
		// the row that won.
		user, err = s.users.GetByUsername(ctx, username)
		if err != nil {
			return nil, err
		}
		if user == nil {
			return nil, domain.ErrDuplicateUsername
		}
		return s.verify(user, password)
	}
	if err != nil {
		return nil, err
	}
	return user, nil
}

// GetOrCreate loads a user by name, provisioning one with an empty
// password hash if absent. Used for identities already verified upstream
// (SSO); an empty hash never matches any password, so such accounts are
// unreachable through the password form.
func (s *AuthService) GetOrCreate(ctx context.Context, username string) (*domain.User, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return nil, ErrMissingCredentials
	}

	user, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	if user != nil {
		return user, nil
	}

	user, err = s.users.Create(ctx, username, "")
	if errors.Is(err, domain.ErrDuplicateUsername) {
		return s.users.GetByUsername(ctx, username)
	}
	return user, err
}

func (s *AuthService) verify(user *domain.User, password string) (*domain.User, error) {
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	return user, nil
}
