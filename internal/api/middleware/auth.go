package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/rs/zerolog"

	"github.com/codetyper/codetyper-api/internal/api/metrics"
	"github.com/codetyper/codetyper-api/internal/auth/token"
	"github.com/codetyper/codetyper-api/internal/core/domain"
	"github.com/codetyper/codetyper-api/internal/core/ports"
	"github.com/codetyper/codetyper-api/pkg/logger"
)

const bearerPrefix = "Bearer "

// Decision is the outcome of an authorization check.
type Decision int

const (
	Granted Decision = iota
	Unauthenticated
	Forbidden
)

func (d Decision) String() string {
	switch d {
	case Granted:
		return "granted"
	case Unauthenticated:
		return "unauthenticated"
	default:
		return "forbidden"
	}
}

// Gate checks bearer tokens on incoming requests against explicit role
// allow-lists. It keeps no state between requests.
type Gate struct {
	validator ports.TokenValidator
	log       zerolog.Logger
}

func NewGate(validator ports.TokenValidator, log zerolog.Logger) *Gate {
	return &Gate{validator: validator, log: logger.Component(log, "gate")}
}

// IsAuthorized reports whether r carries a valid token whose role is in allowed.
func (g *Gate) IsAuthorized(r *http.Request, allowed domain.RoleSet) bool {
	_, decision := g.Authorize(r, allowed)
	return decision == Granted
}

// Authorize returns the verified session and the decision. The session is only
// meaningful when the decision is not Unauthenticated.
func (g *Gate) Authorize(r *http.Request, allowed domain.RoleSet) (domain.Session, Decision) {
	session, reason := g.authenticate(r)
	if reason != "" {
		g.count(Unauthenticated, reason)
		return domain.Session{}, Unauthenticated
	}
	if !allowed.Contains(session.Role) {
		g.log.Debug().Str("user_id", session.UserID).Str("role", session.Role.String()).Msg("role not permitted")
		g.count(Forbidden, "")
		return session, Forbidden
	}
	g.count(Granted, "")
	return session, Granted
}

// Session returns the verified session on r, if any, without a role check.
func (g *Gate) Session(r *http.Request) (domain.Session, bool) {
	session, reason := g.authenticate(r)
	return session, reason == ""
}

// authenticate returns a non-empty rejection reason when r has no usable token.
func (g *Gate) authenticate(r *http.Request) (domain.Session, string) {
	raw, ok := bearerToken(r.Header.Get("Authorization"))
	if !ok {
		return domain.Session{}, "header"
	}
	session, err := g.validator.Validate(raw)
	if err != nil {
		reason := rejectionReason(err)
		g.log.Debug().Str("reason", reason).Msg("token rejected")
		return domain.Session{}, reason
	}
	return session, ""
}

func (g *Gate) count(d Decision, reason string) {
	metrics.AuthorizationDecisionsTotal.WithLabelValues(d.String(), reason).Inc()
}

// bearerToken extracts the token from "Bearer <token>". The scheme is matched
// case-sensitively with exactly one space, and the token may not contain spaces.
func bearerToken(header string) (string, bool) {
	raw, ok := strings.CutPrefix(header, bearerPrefix)
	if !ok || raw == "" || strings.ContainsAny(raw, " \t\r\n") {
		return "", false
	}
	return raw, true
}

func rejectionReason(err error) string {
	switch {
	case errors.Is(err, token.ErrMissing):
		return "missing"
	case errors.Is(err, token.ErrMalformed):
		return "malformed"
	case errors.Is(err, token.ErrSignature):
		return "signature"
	case errors.Is(err, token.ErrExpired):
		return "expired"
	case errors.Is(err, token.ErrIssuer):
		return "issuer"
	case errors.Is(err, token.ErrAudience):
		return "audience"
	default:
		return "claims"
	}
}
