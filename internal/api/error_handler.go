package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/codetyper/codetyper-api/internal/api/middleware"
	"github.com/codetyper/codetyper-api/internal/core/domain"
)

// errorResponse is the canonical error envelope for all API errors.
type errorResponse struct {
	Error string `json:"error"`
}

// NewHTTPErrorHandler returns an echo.HTTPErrorHandler that:
//   - Maps known domain errors to their HTTP status codes.
//   - Logs unexpected errors internally without leaking details to the client.
//   - Renders a consistent JSON envelope: {"error": "<message>"}.
func NewHTTPErrorHandler(log zerolog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		code, msg := resolveError(err, log, c)
		if c.Request().Method == http.MethodHead {
			_ = c.NoContent(code)
			return
		}
		_ = c.JSON(code, errorResponse{Error: msg})
	}
}

func resolveError(err error, log zerolog.Logger, c echo.Context) (int, string) {
	// Echo's own errors (bind failures, 404 from router, Gate rejections).
	var he *echo.HTTPError
	if errors.As(err, &he) {
		return he.Code, fmt.Sprintf("%v", he.Message)
	}

	var verr *domain.ValidationError
	if errors.As(err, &verr) {
		return http.StatusBadRequest, verr.Message
	}

	switch {
	case errors.Is(err, domain.ErrStoreUnavailable):
		log.Warn().Err(err).Str("path", c.Path()).Msg("store unavailable")
		return http.StatusGatewayTimeout, "Cannot access the database."
	case errors.Is(err, domain.ErrUnauthenticated):
		return http.StatusUnauthorized, domain.ErrUnauthenticated.Error()
	case errors.Is(err, domain.ErrForbidden):
		return http.StatusForbidden, middleware.ForbiddenMessage
	case errors.Is(err, domain.ErrInvalidCredentials):
		return http.StatusUnauthorized, "Invalid credentials."
	case errors.Is(err, domain.ErrUsernameTaken):
		return http.StatusConflict, "Username is already taken."
	case errors.Is(err, domain.ErrUserNotFound):
		return http.StatusNotFound, "User not found."
	case errors.Is(err, domain.ErrRoleAlreadyHeld):
		return http.StatusConflict, "User is already in the requested role."
	case errors.Is(err, domain.ErrNotAPromotion):
		return http.StatusConflict, "User already holds a higher role."
	case errors.Is(err, domain.ErrRoleChanged):
		return http.StatusConflict, "User role changed concurrently, try again."
	case errors.Is(err, domain.ErrTaskNotFound):
		return http.StatusNotFound, "Task not found."
	case errors.Is(err, domain.ErrSnippetNotFound):
		return http.StatusNotFound, "Snippet not found."
	case errors.Is(err, domain.ErrLanguageNotFound):
		return http.StatusNotFound, "Language not found."
	case errors.Is(err, domain.ErrLanguageExists):
		return http.StatusConflict, "Language already exists."
	case errors.Is(err, domain.ErrNoPendingRequests):
		return http.StatusNotFound, "There are no pending requests."
	}

	// Unexpected error: log the real cause, return a generic message.
	log.Error().
		Err(err).
		Str("method", c.Request().Method).
		Str("path", c.Path()).
		Msg("unhandled error")

	return http.StatusInternalServerError, "internal server error"
}
