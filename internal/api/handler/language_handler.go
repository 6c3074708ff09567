package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/codetyper/codetyper-api/internal/core/domain"
	"github.com/codetyper/codetyper-api/internal/core/ports"
)

// LanguageHandler serves the language catalogue.
type LanguageHandler struct {
	service ports.LanguageService
}

func NewLanguageHandler(service ports.LanguageService) *LanguageHandler {
	return &LanguageHandler{service: service}
}

// Add handles POST /api/languages/add.
//
// @Summary      Add a language
// @Tags         languages
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      addLanguageRequest  true  "Language"
// @Success      201   {object}  messageResponse
// @Failure      400   {object}  errorResponse
// @Failure      403   {object}  errorResponse
// @Failure      409   {object}  errorResponse
// @Router       /api/languages/add [post]
func (h *LanguageHandler) Add(c echo.Context) error {
	var req addLanguageRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	msg, err := h.service.Add(c.Request().Context(), req.Name)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, messageResponse{Message: msg})
}

// All handles GET /api/languages/getAll.
//
// @Summary      List languages
// @Tags         languages
// @Produce      json
// @Success      200  {array}  domain.Language
// @Router       /api/languages/getAll [get]
func (h *LanguageHandler) All(c echo.Context) error {
	langs, err := h.service.All(c.Request().Context())
	if err != nil {
		return err
	}
	if langs == nil {
		langs = []domain.Language{}
	}
	return c.JSON(http.StatusOK, langs)
}

// Get handles GET /api/languages/get/:name.
//
// @Summary      Get a language by name
// @Tags         languages
// @Produce      json
// @Param        name  path      string  true  "Language name"
// @Success      200   {object}  domain.Language
// @Failure      404   {object}  errorResponse
// @Router       /api/languages/get/{name} [get]
func (h *LanguageHandler) Get(c echo.Context) error {
	lang, err := h.service.ByName(c.Request().Context(), c.Param("name"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, lang)
}
