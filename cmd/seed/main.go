package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/codetyper/codetyper-api/internal/bootstrap"
	"github.com/codetyper/codetyper-api/internal/core/domain"
	"github.com/codetyper/codetyper-api/internal/core/ports"
	"github.com/codetyper/codetyper-api/internal/core/service"
	"github.com/codetyper/codetyper-api/internal/infrastructure/config"
	mongodb "github.com/codetyper/codetyper-api/internal/infrastructure/db/mongo"
	"github.com/codetyper/codetyper-api/internal/infrastructure/queue"
	"github.com/codetyper/codetyper-api/pkg/logger"
)

const seedTimeout = time.Minute

// The seed command registers the bootstrap SuperAdmin. Running it again is
// harmless: an existing username is reported and left untouched. Any other
// failure exits non-zero.
func main() {
	ctx, cancel := context.WithTimeout(context.Background(), seedTimeout)
	defer cancel()

	log := logger.Init(logger.Options{Level: "info", Pretty: true, Service: "codetyper-seed"})

	cfg, err := config.Load(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}
	if err := checkSeedConfig(cfg.Seed); err != nil {
		log.Fatal().Err(err).Msg("invalid seed configuration")
	}

	// seed returns only after its connections are closed, so exiting here
	// does not skip any cleanup.
	if err := seed(ctx, cfg, log); err != nil {
		log.Fatal().Err(err).Msg("failed to seed superadmin")
	}
}

func checkSeedConfig(s config.SeedConfig) error {
	if s.Username == "" || s.Password == "" || s.Email == "" {
		return errors.New("SEED_SUPERADMIN_USERNAME, SEED_SUPERADMIN_PASSWORD and SEED_SUPERADMIN_EMAIL are required")
	}
	return nil
}

func seed(ctx context.Context, cfg *config.Config, log zerolog.Logger) error {
	mongoClient, db, err := mongodb.Connect(ctx, mongodb.Config{URI: cfg.Mongo.URI, Database: cfg.Mongo.Database})
	if err != nil {
		return fmt.Errorf("connect to mongo: %w", err)
	}
	defer func() { _ = mongoClient.Disconnect(context.Background()) }()

	identities, err := bootstrap.OpenIdentityStore(ctx, cfg, db)
	if err != nil {
		return fmt.Errorf("open %s identity store: %w", cfg.IdentityStore, err)
	}
	if identities.Close != nil {
		defer func() { _ = identities.Close() }()
	}

	auditRepo := mongodb.NewAuditRepository(db)
	dispatcher := queue.NewDispatcher(1, 8, service.NewAuditService(auditRepo, log), log)
	dispatcher.Start(ctx)
	defer dispatcher.Stop()

	credentials, _, err := bootstrap.Credentials(cfg, identities.Repo, dispatcher, log)
	if err != nil {
		return fmt.Errorf("initialise credentials: %w", err)
	}

	user, err := credentials.Register(ctx, ports.RegisterInput{
		Username: cfg.Seed.Username,
		Password: cfg.Seed.Password,
		Email:    cfg.Seed.Email,
		Role:     domain.RoleSuperAdmin,
	})
	return reportSeed(log, cfg.Seed.Username, user, err)
}

// reportSeed logs the outcome of the registration. An existing username is
// success; every other error is returned.
func reportSeed(log zerolog.Logger, username string, user *domain.Identity, err error) error {
	switch {
	case errors.Is(err, domain.ErrUsernameTaken):
		log.Info().Str("username", username).Msg("superadmin already exists, skipping")
		return nil
	case err != nil:
		return fmt.Errorf("register %s: %w", username, err)
	default:
		log.Info().Str("username", user.Username).Str("user_id", user.ID).Msg("superadmin created")
		return nil
	}
}
