package config

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sethvargo/go-envconfig"
)

const (
	StoreMongo    = "mongo"
	StorePostgres = "postgres"

	maxClockSkew = 5 * time.Minute
	minBcrypt    = 4
	maxBcrypt    = 31
)

type Config struct {
	Port        string   `env:"PORT,         default=8080"`
	Env         string   `env:"ENV,          default=development"`
	LogLevel    string   `env:"LOG_LEVEL,    default=info"`
	CORSOrigins []string `env:"CORS_ORIGINS, default=*"`

	// IdentityStore selects where user accounts live: "mongo" or "postgres".
	IdentityStore string `env:"IDENTITY_STORE, default=mongo"`

	JWT      JWTConfig
	Password PasswordConfig
	Mongo    MongoConfig
	Postgres PostgresConfig
	Redis    RedisConfig
	Audit    AuditConfig
	Seed     SeedConfig
}

type JWTConfig struct {
	Secret    string        `env:"JWT_SECRET,     required"`
	Issuer    string        `env:"JWT_ISSUER,     required"`
	Audience  string        `env:"JWT_AUDIENCE,   required"`
	ClockSkew time.Duration `env:"JWT_CLOCK_SKEW, default=1m"`
}

type PasswordConfig struct {
	BcryptCost int `env:"BCRYPT_COST, default=10"`
}

type MongoConfig struct {
	URI      string `env:"MONGO_URI, default=mongodb://localhost:27017"`
	Database string `env:"MONGO_DB,  default=codetyper"`
}

type PostgresConfig struct {
	URL string `env:"POSTGRES_URL"`
}

type RedisConfig struct {
	Addr             string        `env:"REDIS_ADDR,         default=localhost:6379"`
	DB               int           `env:"REDIS_DB,           default=0"`
	LanguageCacheTTL time.Duration `env:"LANGUAGE_CACHE_TTL, default=10m"`
}

type AuditConfig struct {
	Workers   int `env:"AUDIT_WORKERS,    default=4"`
	QueueSize int `env:"AUDIT_QUEUE_SIZE, default=256"`
}

// SeedConfig is only read by the seed command.
type SeedConfig struct {
	Username string `env:"SEED_SUPERADMIN_USERNAME"`
	Password string `env:"SEED_SUPERADMIN_PASSWORD"`
	Email    string `env:"SEED_SUPERADMIN_EMAIL"`
}

// Load reads configuration from environment variables using go-envconfig.
func Load(ctx context.Context) (*Config, error) {
	return LoadFrom(ctx, envconfig.OsLookuper())
}

// LoadFrom reads configuration through the given lookuper and validates it.
func LoadFrom(ctx context.Context, l envconfig.Lookuper) (*Config, error) {
	var cfg Config
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{Target: &cfg, Lookuper: l}); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks ranges and cross-field requirements envconfig cannot express.
func (c *Config) Validate() error {
	var errs []error

	if strings.TrimSpace(c.JWT.Secret) == "" {
		errs = append(errs, errors.New("JWT_SECRET must not be empty"))
	}
	if strings.TrimSpace(c.JWT.Issuer) == "" {
		errs = append(errs, errors.New("JWT_ISSUER must not be empty"))
	}
	if strings.TrimSpace(c.JWT.Audience) == "" {
		errs = append(errs, errors.New("JWT_AUDIENCE must not be empty"))
	}
	if c.JWT.ClockSkew < 0 || c.JWT.ClockSkew > maxClockSkew {
		errs = append(errs, fmt.Errorf("JWT_CLOCK_SKEW must be within 0..%s, got %s", maxClockSkew, c.JWT.ClockSkew))
	}
	if c.Password.BcryptCost < minBcrypt || c.Password.BcryptCost > maxBcrypt {
		errs = append(errs, fmt.Errorf("BCRYPT_COST must be within %d..%d, got %d", minBcrypt, maxBcrypt, c.Password.BcryptCost))
	}

	switch c.IdentityStore {
	case StoreMongo:
	case StorePostgres:
		if c.Postgres.URL == "" {
			errs = append(errs, errors.New("POSTGRES_URL is required when IDENTITY_STORE=postgres"))
		}
	default:
		errs = append(errs, fmt.Errorf("IDENTITY_STORE must be %q or %q, got %q", StoreMongo, StorePostgres, c.IdentityStore))
	}

	if c.Audit.Workers < 1 {
		errs = append(errs, fmt.Errorf("AUDIT_WORKERS must be positive, got %d", c.Audit.Workers))
	}
	if c.Audit.QueueSize < 1 {
		errs = append(errs, fmt.Errorf("AUDIT_QUEUE_SIZE must be positive, got %d", c.Audit.QueueSize))
	}

	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	return nil
}

// IsDevelopment reports whether the service runs in a local environment.
func (c *Config) IsDevelopment() bool {
	return strings.EqualFold(c.Env, "development")
}
