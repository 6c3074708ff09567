// Package token issues and validates the signed session tokens handed out at login.
package token

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/codetyper/codetyper-api/internal/core/domain"
)

// Lifetime is how long an issued token stays valid.
const Lifetime = time.Hour

// MaxClockSkew bounds the configurable expiry tolerance.
const MaxClockSkew = 5 * time.Minute

var signingMethod = jwt.SigningMethodHS256

// Rejection reasons returned by Validate.
var (
	ErrMissing   = errors.New("token: missing")
	ErrMalformed = errors.New("token: malformed")
	ErrSignature = errors.New("token: invalid signature")
	ErrExpired   = errors.New("token: expired")
	ErrIssuer    = errors.New("token: unexpected issuer")
	ErrAudience  = errors.New("token: unexpected audience")
	ErrClaims    = errors.New("token: invalid claims")
)

// Config holds the signing parameters. It is built once at startup.
type Config struct {
	Secret    []byte
	Issuer    string
	Audience  string
	ClockSkew time.Duration
}

func (c Config) validate() error {
	switch {
	case len(c.Secret) == 0:
		return errors.New("token: secret is required")
	case c.Issuer == "":
		return errors.New("token: issuer is required")
	case c.Audience == "":
		return errors.New("token: audience is required")
	case c.ClockSkew < 0 || c.ClockSkew > MaxClockSkew:
		return fmt.Errorf("token: clock skew %s outside 0..%s", c.ClockSkew, MaxClockSkew)
	}
	return nil
}

// Claims is the payload carried by a session token.
type Claims struct {
	Username string `json:"username"`
	Role     string `json:"role"`
	UserID   string `json:"userId"`
	jwt.RegisteredClaims
}

// Codec signs and verifies session tokens with a shared secret.
type Codec struct {
	cfg    Config
	now    func() time.Time
	parser *jwt.Parser
}

// Option customises a Codec.
type Option func(*Codec)

// WithClock replaces the wall clock, mainly for tests.
func WithClock(now func() time.Time) Option {
	return func(c *Codec) { c.now = now }
}

// New returns a Codec for cfg or an error if cfg is incomplete.
func New(cfg Config, opts ...Option) (*Codec, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	secret := make([]byte, len(cfg.Secret))
	copy(secret, cfg.Secret)
	cfg.Secret = secret

	c := &Codec{cfg: cfg, now: time.Now}
	for _, opt := range opts {
		opt(c)
	}
	c.parser = jwt.NewParser(
		jwt.WithValidMethods([]string{signingMethod.Alg()}),
		jwt.WithIssuer(cfg.Issuer),
		jwt.WithAudience(cfg.Audience),
		jwt.WithLeeway(cfg.ClockSkew),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(func() time.Time { return c.now() }),
	)
	return c, nil
}

// Issue signs a token for the given identity that expires after Lifetime.
func (c *Codec) Issue(username string, role domain.Role, userID string) (string, error) {
	if username == "" || userID == "" {
		return "", errors.New("token: username and user id are required")
	}
	if !role.Valid() {
		return "", fmt.Errorf("token: unknown role %q", role)
	}

	now := c.now()
	claims := Claims{
		Username: username,
		Role:     role.String(),
		UserID:   userID,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    c.cfg.Issuer,
			Audience:  jwt.ClaimStrings{c.cfg.Audience},
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(Lifetime)),
		},
	}
	signed, err := jwt.NewWithClaims(signingMethod, claims).SignedString(c.cfg.Secret)
	if err != nil {
		return "", fmt.Errorf("token: sign: %w", err)
	}
	return signed, nil
}

// Validate verifies raw and returns the session it carries. Any failure is
// reported as one of the package's rejection errors.
func (c *Codec) Validate(raw string) (domain.Session, error) {
	if raw == "" {
		return domain.Session{}, ErrMissing
	}

	var claims Claims
	_, err := c.parser.ParseWithClaims(raw, &claims, func(*jwt.Token) (any, error) {
		return c.cfg.Secret, nil
	})
	if err != nil {
		return domain.Session{}, classify(err)
	}

	role, ok := domain.ParseRole(claims.Role)
	if !ok || claims.Username == "" || claims.UserID == "" {
		return domain.Session{}, ErrClaims
	}

	session := domain.Session{
		Username:  claims.Username,
		Role:      role,
		UserID:    claims.UserID,
		ExpiresAt: claims.ExpiresAt.Time,
	}
	if claims.IssuedAt != nil {
		session.IssuedAt = claims.IssuedAt.Time
	}
	return session, nil
}

func classify(err error) error {
	switch {
	case errors.Is(err, jwt.ErrTokenMalformed):
		return ErrMalformed
	case errors.Is(err, jwt.ErrTokenSignatureInvalid), errors.Is(err, jwt.ErrTokenUnverifiable):
		return ErrSignature
	case errors.Is(err, jwt.ErrTokenExpired):
		return ErrExpired
	case errors.Is(err, jwt.ErrTokenInvalidIssuer):
		return ErrIssuer
	case errors.Is(err, jwt.ErrTokenInvalidAudience):
		return ErrAudience
	default:
		return ErrClaims
	}
}
