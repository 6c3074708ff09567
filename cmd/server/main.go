package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/codetyper/codetyper-api/internal/api"
	"github.com/codetyper/codetyper-api/internal/api/middleware"
	"github.com/codetyper/codetyper-api/internal/bootstrap"
	"github.com/codetyper/codetyper-api/internal/core/ports"
	"github.com/codetyper/codetyper-api/internal/core/service"
	"github.com/codetyper/codetyper-api/internal/infrastructure/config"
	mongodb "github.com/codetyper/codetyper-api/internal/infrastructure/db/mongo"
	redisdb "github.com/codetyper/codetyper-api/internal/infrastructure/db/redis"
	"github.com/codetyper/codetyper-api/internal/infrastructure/http/handlers"
	"github.com/codetyper/codetyper-api/internal/infrastructure/queue"
	"github.com/codetyper/codetyper-api/pkg/logger"

	_ "github.com/codetyper/codetyper-api/docs"
)

const shutdownTimeout = 30 * time.Second

// @title                       Codetyper API
// @version                     1.0
// @description                 Typing-practice backend: JWT authentication, role-based moderation of tasks and snippets, and the language catalogue.
// @host                        localhost:8080
// @BasePath                    /
// @securityDefinitions.apikey  BearerAuth
// @in                          header
// @name                        Authorization
// @description                 Type "Bearer" followed by a space and the token returned by /api/login.
func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(ctx)
	if err != nil {
		log := logger.Init(logger.Options{Service: "codetyper-api"})
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	if err := run(ctx, cfg); err != nil {
		stop()
		os.Exit(1)
	}
}

// run wires and serves the API until ctx is cancelled or the listener fails.
// Startup failures are fatal; a listener failure is returned after cleanup.
func run(ctx context.Context, cfg *config.Config) error {
	log := logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  cfg.IsDevelopment(),
		Service: "codetyper-api",
	})

	// --- Stores ---
	mongoClient, db, err := mongodb.Connect(ctx, mongodb.Config{URI: cfg.Mongo.URI, Database: cfg.Mongo.Database})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to mongo")
	}
	defer func() {
		dctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := mongoClient.Disconnect(dctx); err != nil {
			log.Error().Err(err).Msg("error disconnecting mongo")
		}
	}()
	log.Info().Str("database", cfg.Mongo.Database).Msg("mongo connection established")

	checks := map[string]handlers.Check{"mongo": handlers.MongoCheck(db)}

	identities, err := bootstrap.OpenIdentityStore(ctx, cfg, db)
	if err != nil {
		log.Fatal().Err(err).Str("store", cfg.IdentityStore).Msg("failed to open identity store")
	}
	if identities.Close != nil {
		defer func() {
			if err := identities.Close(); err != nil {
				log.Error().Err(err).Msg("error closing identity store")
			}
		}()
	}
	if identities.Check != nil {
		checks[cfg.IdentityStore] = identities.Check
	}
	log.Info().Str("store", cfg.IdentityStore).Msg("identity store ready")

	taskRepo := mongodb.NewTaskRepository(db)
	snippetRepo := mongodb.NewSnippetRepository(db)
	languageRepo := mongodb.NewLanguageRepository(db)
	auditRepo := mongodb.NewAuditRepository(db)
	if err := mongodb.EnsureIndexes(ctx, taskRepo, snippetRepo, auditRepo); err != nil {
		log.Fatal().Err(err).Msg("failed to ensure indexes")
	}

	// A missing cache only costs latency; languages are then read from Mongo.
	var languageCache ports.LanguageCache
	rdb, err := redisdb.Connect(ctx, redisdb.Config{Addr: cfg.Redis.Addr, DB: cfg.Redis.DB})
	if err != nil {
		log.Warn().Err(err).Msg("redis unavailable, language cache disabled")
	} else {
		defer rdb.Close()
		languageCache = redisdb.NewLanguageCache(rdb, cfg.Redis.LanguageCacheTTL)
		checks["redis"] = handlers.RedisCheck(rdb)
	}

	// --- Audit trail ---
	auditService := service.NewAuditService(auditRepo, log)
	dispatcher := queue.NewDispatcher(cfg.Audit.Workers, cfg.Audit.QueueSize, auditService, log)
	dispatcher.Start(ctx)

	// --- Services ---
	credentials, codec, err := bootstrap.Credentials(cfg, identities.Repo, dispatcher, log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialise credentials")
	}

	e := api.NewRouter(api.Deps{
		Log:         log,
		CORSOrigins: cfg.CORSOrigins,
		Gate:        middleware.NewGate(codec, log),
		Credentials: credentials,
		Tasks:       service.NewTaskService(taskRepo, identities.Repo, log),
		Snippets:    service.NewSnippetService(snippetRepo, taskRepo, languageRepo, identities.Repo, log),
		Languages:   service.NewLanguageService(languageRepo, languageCache, log),
		Checks:      checks,
	})

	serverErr := make(chan error, 1)
	go func() {
		log.Info().Str("port", cfg.Port).Str("env", cfg.Env).Msg("server starting")
		serverErr <- e.Start(":" + cfg.Port)
	}()

	var runErr error
	select {
	case err := <-serverErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Msg("server error")
			runErr = err
		}
	case <-ctx.Done():
		log.Info().Msg("shutdown signal received, draining requests")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown failed")
	}

	dispatcher.Stop()
	log.Info().Uint64("audit_dropped", dispatcher.Dropped()).Msg("server stopped")

	return runErr
}
