package ports

import (
	"context"
	"time"

	"github.com/codetyper/codetyper-api/internal/core/domain"
)

// IdentityRepository persists registered users. Implementations must enforce
// username uniqueness at the storage level and report a duplicate insert as
// domain.ErrUsernameTaken; connectivity failures wrap domain.ErrStoreUnavailable.
type IdentityRepository interface {
	Create(ctx context.Context, identity *domain.Identity) error
	UsernameExists(ctx context.Context, username string) (bool, error)
	FindByUsername(ctx context.Context, username string) (*domain.Identity, error)
	FindByID(ctx context.Context, userID string) (*domain.Identity, error)
	// UpdateRole replaces the role only while the stored one is still from. It
	// returns domain.ErrRoleChanged when another write got there first and
	// domain.ErrUserNotFound when the user does not exist.
	UpdateRole(ctx context.Context, userID string, from, to domain.Role, at time.Time) error
}
