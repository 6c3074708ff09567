package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/codetyper/codetyper-api/internal/api/middleware"
	"github.com/codetyper/codetyper-api/internal/core/domain"
	"github.com/codetyper/codetyper-api/internal/core/ports"
)

// ctxSession returns the session attached by the Gate middleware, if any.
func ctxSession(c echo.Context) (domain.Session, bool) {
	session, ok := c.Get(middleware.SessionKey).(domain.Session)
	return session, ok
}

// requireSession fails fast when a route that must be protected is reached
// without a session, which only happens if the route was wired without the Gate.
func requireSession(c echo.Context) (domain.Session, error) {
	session, ok := ctxSession(c)
	if !ok || session.UserID == "" {
		return domain.Session{}, echo.NewHTTPError(http.StatusUnauthorized, domain.ErrUnauthenticated.Error())
	}
	return session, nil
}

// submitter describes who is adding content. A signed-in caller is always the
// creator; anonymous callers may name one in the body.
func submitter(c echo.Context, bodyCreatorID string) ports.Submitter {
	if session, ok := ctxSession(c); ok {
		return ports.Submitter{
			UserID:  session.UserID,
			IsStaff: domain.StaffRoles.Contains(session.Role),
		}
	}
	return ports.Submitter{UserID: bodyCreatorID}
}

// queryInt reads an integer query parameter. Missing or malformed values read
// as zero so the service applies its default.
func queryInt(c echo.Context, name string) int {
	n, err := strconv.Atoi(c.QueryParam(name))
	if err != nil {
		return 0
	}
	return n
}
