package store

import (
	"context"
	"errors"

	"github.com/Sridhar-Quarlets/model-registry/pkg/model"
)

// ErrUserNotFound is returned when no account has the requested email
var ErrUserNotFound = errors.New("user not found")

// ErrUserExists is returned when an account with the same email already exists
var ErrUserExists = errors.New("user already exists")

// UsersStore persists user accounts
type UsersStore interface {
	// CreateUser inserts a new account.
	// Returns ErrUserExists if the email is taken.
	CreateUser(ctx context.Context, user model.User) error

	// GetUserByEmail retrieves an account by its email.
	// Returns ErrUserNotFound if it doesn't exist.
	GetUserByEmail(ctx context.Context, email string) (model.User, error)
}
