package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/codetyper/codetyper-api/internal/core/domain"
)

// SessionKey is the echo.Context key under which the verified session is stored.
const SessionKey = "session"

// ForbiddenMessage is returned when a valid session lacks the required role.
const ForbiddenMessage = "You do not have permission to perform this action."

// Require only lets requests through whose token role is one of roles.
func (g *Gate) Require(roles ...domain.Role) echo.MiddlewareFunc {
	allowed := domain.NewRoleSet(roles...)

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			session, decision := g.Authorize(c.Request(), allowed)
			switch decision {
			case Unauthenticated:
				return echo.NewHTTPError(http.StatusUnauthorized, domain.ErrUnauthenticated.Error())
			case Forbidden:
				return echo.NewHTTPError(http.StatusForbidden, ForbiddenMessage)
			}
			c.Set(SessionKey, session)
			return next(c)
		}
	}
}

// Optional attaches the session when a valid token is present and never rejects.
func (g *Gate) Optional() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if session, ok := g.Session(c.Request()); ok {
				c.Set(SessionKey, session)
			}
			return next(c)
		}
	}
}
