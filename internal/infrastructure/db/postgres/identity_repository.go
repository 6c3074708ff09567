package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/codetyper/codetyper-api/internal/core/domain"
)

// IdentityRepository stores user accounts in the users table. The UNIQUE
// constraint on username is the authority on duplicates.
type IdentityRepository struct {
	db *sql.DB
}

func NewIdentityRepository(db *sql.DB) *IdentityRepository {
	return &IdentityRepository{db: db}
}

func (r *IdentityRepository) Create(ctx context.Context, identity *domain.Identity) error {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	const query = `
		INSERT INTO users (id, username, email, password_hash, role_name, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`

	_, err := r.db.ExecContext(ctx, query,
		identity.ID,
		identity.Username,
		identity.Email,
		identity.PasswordHash,
		identity.Role.String(),
		identity.CreatedAt.UTC(),
		identity.UpdatedAt.UTC(),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrUsernameTaken
		}
		return wrap("insert user", err)
	}
	return nil
}

func (r *IdentityRepository) UsernameExists(ctx context.Context, username string) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	var exists bool
	err := r.db.QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM users WHERE username = $1)`, username).Scan(&exists)
	if err != nil {
		return false, wrap("count users", err)
	}
	return exists, nil
}

func (r *IdentityRepository) FindByUsername(ctx context.Context, username string) (*domain.Identity, error) {
	return r.findOne(ctx, "username", username)
}

func (r *IdentityRepository) FindByID(ctx context.Context, userID string) (*domain.Identity, error) {
	return r.findOne(ctx, "id", userID)
}

func (r *IdentityRepository) findOne(ctx context.Context, column, value string) (*domain.Identity, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	// column is always one of two literals chosen above.
	query := `
		SELECT id, username, email, password_hash, role_name, created_at, updated_at
		FROM users
		WHERE ` + column + ` = $1`

	var (
		identity domain.Identity
		roleName string
	)
	err := r.db.QueryRowContext(ctx, query, value).Scan(
		&identity.ID,
		&identity.Username,
		&identity.Email,
		&identity.PasswordHash,
		&roleName,
		&identity.CreatedAt,
		&identity.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrUserNotFound
		}
		return nil, wrap("find user", err)
	}

	role, ok := domain.ParseRole(roleName)
	if !ok {
		return nil, fmt.Errorf("user %s has unknown role %q", identity.ID, roleName)
	}
	identity.Role = role
	return &identity, nil
}

// UpdateRole changes the role only while the stored one is still from.
func (r *IdentityRepository) UpdateRole(ctx context.Context, userID string, from, to domain.Role, at time.Time) error {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	res, err := r.db.ExecContext(ctx,
		`UPDATE users SET role_name = $2, updated_at = $3 WHERE id = $1 AND role_name = $4`,
		userID, to.String(), at.UTC(), from.String(),
	)
	if err != nil {
		return wrap("update role", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return wrap("update role", err)
	}
	if n > 0 {
		return nil
	}

	var exists bool
	if err := r.db.QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM users WHERE id = $1)`, userID).Scan(&exists); err != nil {
		return wrap("update role", err)
	}
	if !exists {
		return domain.ErrUserNotFound
	}
	return domain.ErrRoleChanged
}
