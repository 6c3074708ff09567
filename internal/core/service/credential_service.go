package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/codetyper/codetyper-api/internal/core/domain"
	"github.com/codetyper/codetyper-api/internal/core/ports"
	"github.com/codetyper/codetyper-api/pkg/logger"
)

const (
	minUsernameLength = 3
	minPasswordLength = 8
	maxPasswordBytes  = 72

	maxPromoteAttempts = 3

	MsgRegistered   = "User registered successfully."
	MsgLoginSuccess = "Login successful."
)

// CredentialService implements registration, login and promotion.
type CredentialService struct {
	repo   ports.IdentityRepository
	hasher ports.PasswordHasher
	issuer ports.TokenIssuer
	audit  ports.AuditSink
	now    func() time.Time
	log    zerolog.Logger
}

// NewCredentialService wires the service. audit may be nil.
func NewCredentialService(
	repo ports.IdentityRepository,
	hasher ports.PasswordHasher,
	issuer ports.TokenIssuer,
	audit ports.AuditSink,
	log zerolog.Logger,
) *CredentialService {
	return &CredentialService{
		repo:   repo,
		hasher: hasher,
		issuer: issuer,
		audit:  audit,
		now:    func() time.Time { return time.Now().UTC() },
		log:    logger.Component(log, "credentials"),
	}
}

// Register creates a new identity. The username check is a fast path only; the
// store's uniqueness constraint decides races.
func (s *CredentialService) Register(ctx context.Context, in ports.RegisterInput) (*domain.Identity, error) {
	if err := validateRegistration(in); err != nil {
		return nil, err
	}
	role := in.Role
	if role == "" {
		role = domain.RoleUser
	}
	if !role.Valid() {
		return nil, fmt.Errorf("register: unknown role %q", role)
	}

	taken, err := s.repo.UsernameExists(ctx, in.Username)
	if err != nil {
		return nil, fmt.Errorf("register: %w", err)
	}
	if taken {
		return nil, domain.ErrUsernameTaken
	}

	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return nil, fmt.Errorf("register: hash password: %w", err)
	}

	now := s.now()
	identity := &domain.Identity{
		ID:           uuid.NewString(),
		Username:     in.Username,
		Email:        strings.TrimSpace(in.Email),
		PasswordHash: hash,
		Role:         role,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.repo.Create(ctx, identity); err != nil {
		if errors.Is(err, domain.ErrUsernameTaken) {
			return nil, domain.ErrUsernameTaken
		}
		return nil, fmt.Errorf("register: %w", err)
	}

	s.record(domain.AuthEventRegistered, identity.Username, identity.ID, identity.Role, "")
	s.log.Info().Str("user_id", identity.ID).Str("role", identity.Role.String()).Msg("user registered")
	return identity, nil
}

func validateRegistration(in ports.RegisterInput) error {
	switch {
	case len(in.Username) < minUsernameLength:
		return domain.NewValidationError("username", "Username must be at least 3 characters long.")
	case len(in.Password) < minPasswordLength:
		return domain.NewValidationError("password", "Password must be at least 8 characters long.")
	case len(in.Password) > maxPasswordBytes:
		return domain.NewValidationError("password", "Password must be at most 72 bytes long.")
	case strings.TrimSpace(in.Email) == "":
		return domain.NewValidationError("email", "Email is required.")
	}
	return nil
}

// Login verifies credentials and issues a session token. Unknown users and wrong
// passwords produce the same error.
func (s *CredentialService) Login(ctx context.Context, username, password string) (*ports.LoginResult, error) {
	if username == "" || password == "" {
		return nil, domain.NewValidationError("credentials", "Username and password are required.")
	}

	identity, err := s.repo.FindByUsername(ctx, username)
	switch {
	case errors.Is(err, domain.ErrUserNotFound):
		_ = s.hasher.Compare("", password)
		s.record(domain.AuthEventLoginFailed, username, "", "", "")
		return nil, domain.ErrInvalidCredentials
	case err != nil:
		return nil, fmt.Errorf("login: %w", err)
	}

	if err := s.hasher.Compare(identity.PasswordHash, password); err != nil {
		s.record(domain.AuthEventLoginFailed, username, identity.ID, "", "")
		return nil, domain.ErrInvalidCredentials
	}

	signed, err := s.issuer.Issue(identity.Username, identity.Role, identity.ID)
	if err != nil {
		return nil, fmt.Errorf("login: issue token: %w", err)
	}

	s.record(domain.AuthEventLoginSucceeded, identity.Username, identity.ID, identity.Role, "")
	return &ports.LoginResult{
		Token:   signed,
		Role:    identity.Role,
		UserID:  identity.ID,
		Message: MsgLoginSuccess,
	}, nil
}

// Promote raises the target's role. The caller has already been authorized for
// in.Role; this only guards against no-op changes and demotions. The guards are
// re-checked against a fresh read whenever a concurrent write changes the role
// between the read and the update.
func (s *CredentialService) Promote(ctx context.Context, in ports.PromoteInput) (*domain.Identity, error) {
	if !in.Role.Valid() {
		return nil, fmt.Errorf("promote: unknown role %q", in.Role)
	}

	var (
		target *domain.Identity
		now    time.Time
	)
	for attempt := 1; ; attempt++ {
		var err error
		target, err = s.repo.FindByID(ctx, in.TargetUserID)
		if err != nil {
			return nil, fmt.Errorf("promote: %w", err)
		}
		if target.Role == in.Role {
			return nil, domain.ErrRoleAlreadyHeld
		}
		if target.Role.Outranks(in.Role) {
			return nil, domain.ErrNotAPromotion
		}

		now = s.now()
		err = s.repo.UpdateRole(ctx, target.ID, target.Role, in.Role, now)
		if err == nil {
			break
		}
		if !errors.Is(err, domain.ErrRoleChanged) || attempt == maxPromoteAttempts {
			return nil, fmt.Errorf("promote: %w", err)
		}
		s.log.Debug().Str("user_id", target.ID).Int("attempt", attempt).Msg("role changed during promotion, retrying")
	}
	target.Role = in.Role
	target.UpdatedAt = now

	s.record(domain.AuthEventRolePromoted, target.Username, target.ID, in.Role, in.ActorID)
	s.log.Info().
		Str("user_id", target.ID).
		Str("actor_id", in.ActorID).
		Str("role", in.Role.String()).
		Msg("user promoted")
	return target, nil
}

// GetUser returns the identity stored under userID.
func (s *CredentialService) GetUser(ctx context.Context, userID string) (*domain.Identity, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, domain.ErrUserNotFound
	}
	identity, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	return identity, nil
}

func (s *CredentialService) record(kind domain.AuthEventKind, username, userID string, role domain.Role, actorID string) {
	if s.audit == nil {
		return
	}
	s.audit.Record(domain.AuthEvent{
		Kind:      kind,
		Username:  username,
		UserID:    userID,
		Role:      role,
		ActorID:   actorID,
		Timestamp: s.now(),
	})
}
