package ports

import (
	"context"

	"github.com/codetyper/codetyper-api/internal/core/domain"
)

// RegisterInput is the registration request. An empty Role means domain.RoleUser;
// endpoints that register elevated accounts set it explicitly.
type RegisterInput struct {
	Username string
	Password string
	Email    string
	Role     domain.Role
}

// LoginResult is returned on successful login.
type LoginResult struct {
	Token   string
	Role    domain.Role
	UserID  string
	Message string
}

// PromoteInput describes a role change requested by an already authorized actor.
type PromoteInput struct {
	ActorID      string
	TargetUserID string
	Role         domain.Role
}

// CredentialService owns registration, login and role promotion.
type CredentialService interface {
	Register(ctx context.Context, in RegisterInput) (*domain.Identity, error)
	Login(ctx context.Context, username, password string) (*LoginResult, error)
	Promote(ctx context.Context, in PromoteInput) (*domain.Identity, error)
	GetUser(ctx context.Context, userID string) (*domain.Identity, error)
}

// PasswordHasher is the salted adaptive hash used for stored passwords.
type PasswordHasher interface {
	Hash(password string) (string, error)
	Compare(hash, password string) error
}
