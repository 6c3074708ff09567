package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/codetyper/codetyper-api/internal/api/metrics"
	"github.com/codetyper/codetyper-api/internal/core/domain"
	"github.com/codetyper/codetyper-api/internal/core/ports"
)

type AuthHandler struct {
	credentials ports.CredentialService
}

func NewAuthHandler(credentials ports.CredentialService) *AuthHandler {
	return &AuthHandler{credentials: credentials}
}

// Register creates a new user account with the User role.
//
// @Summary      Register a new user
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      registerRequest  true  "User registration details"
// @Success      201   {object}  messageResponse
// @Failure      400   {object}  errorResponse
// @Failure      409   {object}  errorResponse
// @Failure      504   {object}  errorResponse
// @Router       /api/register [post]
func (h *AuthHandler) Register(c echo.Context) error {
	var req registerRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}

	_, err := h.credentials.Register(c.Request().Context(), ports.RegisterInput{
		Username: req.Username,
		Password: req.Password,
		Email:    req.Email,
	})
	if err != nil {
		metrics.RegistrationsTotal.WithLabelValues(registrationResult(err)).Inc()
		return err
	}

	metrics.RegistrationsTotal.WithLabelValues("success").Inc()
	return c.JSON(http.StatusCreated, messageResponse{Message: "User registered successfully."})
}

// Login authenticates a user. The token is returned in the Authorization header.
//
// @Summary      Login
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      loginRequest  true  "Login credentials"
// @Success      200   {object}  loginResponse
// @Header       200   {string}  Authorization  "Bearer <token>"
// @Failure      400   {object}  errorResponse
// @Failure      401   {object}  errorResponse
// @Failure      504   {object}  errorResponse
// @Router       /api/login [post]
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}

	res, err := h.credentials.Login(c.Request().Context(), req.Username, req.Password)
	if err != nil {
		metrics.LoginsTotal.WithLabelValues(loginResult(err)).Inc()
		return err
	}

	metrics.LoginsTotal.WithLabelValues("success").Inc()
	c.Response().Header().Set(echo.HeaderAuthorization, "Bearer "+res.Token)
	c.Response().Header().Set(echo.HeaderAccessControlExposeHeaders, echo.HeaderAuthorization)
	return c.JSON(http.StatusOK, loginResponse{
		Message: res.Message,
		Role:    res.Role.String(),
		UserID:  res.UserID,
	})
}

func registrationResult(err error) string {
	var verr *domain.ValidationError
	switch {
	case errors.As(err, &verr):
		return "invalid_input"
	case errors.Is(err, domain.ErrUsernameTaken):
		return "conflict"
	default:
		return "error"
	}
}

func loginResult(err error) string {
	var verr *domain.ValidationError
	switch {
	case errors.As(err, &verr):
		return "invalid_input"
	case errors.Is(err, domain.ErrInvalidCredentials):
		return "invalid_credentials"
	default:
		return "error"
	}
}
