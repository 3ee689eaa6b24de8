package ports

import (
	"CivicPulse/internal/core/domain"
	"context"

	"github.com/google/uuid"
)

// UserRepository is the user directory. Lookups return (nil, nil) when
// the user does not exist.
type UserRepository interface {
	// Create saves a new user.
	Create(ctx context.Context, user *domain.User) error

	// GetByID finds a user by their internal UUID.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error)

	// GetByUsername finds a user by the identity carried in auth tokens.
	GetByUsername(ctx context.Context, username string) (*domain.User, error)

	// ListByRole returns all users holding role, ordered by display name.
	ListByRole(ctx context.Context, role domain.Role) ([]*domain.User, error)
}
