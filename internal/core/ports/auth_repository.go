package ports

import (
	"context"

	"github.com/authkit/auth-api/internal/core/domain"
)

// UserRepository defines the persistence operations for user credentials.
type UserRepository interface {
	// Create hashes u.Password and inserts the record, returning the new id.
	// A taken email yields domain.ErrDuplicateEmail.
	Create(ctx context.Context, u domain.NewUser) (int64, error)
	// FindByEmail returns the full record, password hash included.
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	// FindByID returns the record with the password hash cleared.
	FindByID(ctx context.Context, id int64) (*domain.User, error)
}
