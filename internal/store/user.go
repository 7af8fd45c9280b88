package store

import (
	"context"

	"github.com/google/uuid"

	"github.com/jdalton/taskwell-api/internal/domain"
)

// UserStore defines the persistence operations for users.
type UserStore interface {
	// Create saves a new user, hashing the plaintext password before
	// storage. Returns ErrEmailExists if the email is already taken.
	Create(ctx context.Context, user *domain.User) error

	// GetByID retrieves a user by ID. Returns ErrUserNotFound if the
	// user does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error)

	// GetByEmail retrieves a user by email. Returns ErrUserNotFound if
	// the user does not exist.
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
}
