package handler

import (
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/codetyper/codetyper-api/internal/api/metrics"
	"github.com/codetyper/codetyper-api/internal/core/domain"
	"github.com/codetyper/codetyper-api/internal/core/ports"
)

// UserHandler serves user lookups and role promotion.
type UserHandler struct {
	credentials ports.CredentialService
}

func NewUserHandler(credentials ports.CredentialService) *UserHandler {
	return &UserHandler{credentials: credentials}
}

// Get handles GET /api/users/:userId.
//
// @Summary      Get a user
// @Tags         users
// @Produce      json
// @Param        userId  path      string  true  "User id"
// @Success      200     {object}  userResponse
// @Failure      404     {object}  errorResponse
// @Router       /api/users/{userId} [get]
func (h *UserHandler) Get(c echo.Context) error {
	user, err := h.credentials.GetUser(c.Request().Context(), c.Param("userId"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toUserResponse(user))
}

// PromoteModerator handles POST /api/users/promote/moderator/:userId.
//
// @Summary      Promote a user to Moderator
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Param        userId  path      string  true  "User id"
// @Success      200     {object}  promoteResponse
// @Failure      401     {object}  errorResponse
// @Failure      403     {object}  errorResponse
// @Failure      404     {object}  errorResponse
// @Failure      409     {object}  errorResponse
// @Router       /api/users/promote/moderator/{userId} [post]
func (h *UserHandler) PromoteModerator(c echo.Context) error {
	return h.promote(c, domain.RoleModerator)
}

// PromoteAdmin handles POST /api/users/promote/admin/:userId.
//
// @Summary      Promote a user to Admin
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Param        userId  path      string  true  "User id"
// @Success      200     {object}  promoteResponse
// @Failure      401     {object}  errorResponse
// @Failure      403     {object}  errorResponse
// @Failure      404     {object}  errorResponse
// @Failure      409     {object}  errorResponse
// @Router       /api/users/promote/admin/{userId} [post]
func (h *UserHandler) PromoteAdmin(c echo.Context) error {
	return h.promote(c, domain.RoleAdmin)
}

func (h *UserHandler) promote(c echo.Context, role domain.Role) error {
	session, err := requireSession(c)
	if err != nil {
		return err
	}

	user, err := h.credentials.Promote(c.Request().Context(), ports.PromoteInput{
		ActorID:      session.UserID,
		TargetUserID: c.Param("userId"),
		Role:         role,
	})
	if err != nil {
		return err
	}

	metrics.PromotionsTotal.WithLabelValues(role.String()).Inc()
	return c.JSON(http.StatusOK, promoteResponse{
		Message: fmt.Sprintf("User '%s' promoted to %s.", user.Username, role),
		User:    toUserResponse(user),
	})
}
