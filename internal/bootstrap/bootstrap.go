// Package bootstrap assembles the pieces shared by the server and seed commands.
package bootstrap

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/codetyper/codetyper-api/internal/auth/password"
	"github.com/codetyper/codetyper-api/internal/auth/token"
	"github.com/codetyper/codetyper-api/internal/core/ports"
	"github.com/codetyper/codetyper-api/internal/core/service"
	"github.com/codetyper/codetyper-api/internal/infrastructure/config"
	mongodb "github.com/codetyper/codetyper-api/internal/infrastructure/db/mongo"
	"github.com/codetyper/codetyper-api/internal/infrastructure/db/postgres"
	"github.com/codetyper/codetyper-api/internal/infrastructure/http/handlers"
)

// IdentityStore is the identity repository selected by IDENTITY_STORE.
// Check and Close are nil when the store shares the Mongo connection.
type IdentityStore struct {
	Repo  ports.IdentityRepository
	Check handlers.Check
	Close func() error
}

// OpenIdentityStore opens the configured identity backend and makes sure its
// uniqueness constraint on usernames exists.
func OpenIdentityStore(ctx context.Context, cfg *config.Config, db *mongo.Database) (*IdentityStore, error) {
	switch cfg.IdentityStore {
	case config.StorePostgres:
		sqlDB, err := postgres.Open(ctx, cfg.Postgres.URL)
		if err != nil {
			return nil, err
		}
		if err := postgres.EnsureSchema(ctx, sqlDB); err != nil {
			_ = sqlDB.Close()
			return nil, err
		}
		return &IdentityStore{
			Repo:  postgres.NewIdentityRepository(sqlDB),
			Check: handlers.SQLCheck(sqlDB),
			Close: sqlDB.Close,
		}, nil
	case config.StoreMongo:
		repo := mongodb.NewIdentityRepository(db)
		if err := mongodb.EnsureIndexes(ctx, repo); err != nil {
			return nil, err
		}
		return &IdentityStore{Repo: repo}, nil
	default:
		return nil, fmt.Errorf("bootstrap: unknown identity store %q", cfg.IdentityStore)
	}
}

// Credentials builds the token codec, the password hasher and the credential
// service on top of them. The codec is returned too since the Gate validates
// with it.
func Credentials(cfg *config.Config, repo ports.IdentityRepository, audit ports.AuditSink, log zerolog.Logger) (*service.CredentialService, *token.Codec, error) {
	codec, err := token.New(token.Config{
		Secret:    []byte(cfg.JWT.Secret),
		Issuer:    cfg.JWT.Issuer,
		Audience:  cfg.JWT.Audience,
		ClockSkew: cfg.JWT.ClockSkew,
	})
	if err != nil {
		return nil, nil, err
	}

	hasher, err := password.NewHasher(cfg.Password.BcryptCost)
	if err != nil {
		return nil, nil, err
	}

	return service.NewCredentialService(repo, hasher, codec, audit, log), codec, nil
}
