package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/codetyper/codetyper-api/internal/api/metrics"
	"github.com/codetyper/codetyper-api/internal/core/ports"
)

// SnippetHandler handles snippet submission, reads and moderation.
type SnippetHandler struct {
	service ports.SnippetService
}

func NewSnippetHandler(service ports.SnippetService) *SnippetHandler {
	return &SnippetHandler{service: service}
}

// Add handles POST /api/snippets/add.
//
// @Summary      Submit a snippet
// @Tags         snippets
// @Accept       json
// @Produce      json
// @Param        body  body      addSnippetRequest  true  "Snippet"
// @Success      201   {object}  addSnippetResponse
// @Failure      400   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Router       /api/snippets/add [post]
func (h *SnippetHandler) Add(c echo.Context) error {
	var req addSnippetRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	snippet, msg, err := h.service.Add(c.Request().Context(), ports.AddSnippetInput{
		Content:      req.Content,
		LanguageName: req.LanguageName,
		TaskID:       req.TaskID,
		Submitter:    submitter(c, req.CreatorID),
	})
	if err != nil {
		return err
	}

	metrics.SubmissionsTotal.WithLabelValues("snippet", shownLabel(snippet.Shown)).Inc()
	return c.JSON(http.StatusCreated, addSnippetResponse{Message: msg, Snippet: toSnippetResponse(snippet)})
}

// Random handles GET /api/snippets/random.
//
// @Summary      Get a random published snippet
// @Tags         snippets
// @Produce      json
// @Success      200  {object}  snippetResponse
// @Failure      404  {object}  errorResponse
// @Router       /api/snippets/random [get]
func (h *SnippetHandler) Random(c echo.Context) error {
	snippet, err := h.service.Random(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toSnippetResponse(snippet))
}

// Shown handles GET /api/snippets/shown.
//
// @Summary      List published snippets
// @Tags         snippets
// @Produce      json
// @Param        page          query     int     false  "Page number"  default(1)
// @Param        pageSize      query     int     false  "Page size"    default(10)
// @Param        taskId        query     string  false  "Only snippets for this task"
// @Param        languageName  query     string  false  "Only snippets in this language, ignoring case"
// @Success      200           {object}  shownSnippetsResponse
// @Router       /api/snippets/shown [get]
func (h *SnippetHandler) Shown(c echo.Context) error {
	page, err := h.service.ListShown(c.Request().Context(), ports.ListSnippetsInput{
		Filter: ports.SnippetFilter{
			TaskID:       c.QueryParam("taskId"),
			LanguageName: c.QueryParam("languageName"),
		},
		Page:     queryInt(c, "page"),
		PageSize: queryInt(c, "pageSize"),
	})
	if err != nil {
		return err
	}
	resp := shownSnippetsResponse{
		Snippets:    make([]snippetResponse, 0, len(page.Snippets)),
		CurrentPage: page.Page,
		PageSize:    page.PageSize,
		TotalPages:  page.TotalPages,
	}
	for i := range page.Snippets {
		resp.Snippets = append(resp.Snippets, toSnippetResponse(&page.Snippets[i]))
	}
	return c.JSON(http.StatusOK, resp)
}

// RandomRequest handles GET /api/snippets/randomRequest.
//
// @Summary      Get a random pending snippet
// @Tags         snippets
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  snippetRequestResponse
// @Failure      401  {object}  errorResponse
// @Failure      403  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Router       /api/snippets/randomRequest [get]
func (h *SnippetHandler) RandomRequest(c echo.Context) error {
	req, err := h.service.RandomRequest(c.Request().Context())
	if err != nil {
		return err
	}
	resp := snippetRequestResponse{
		Snippet: toSnippetResponse(req.Snippet),
		Creator: toCreator(req.Creator),
	}
	if req.Task != nil {
		t := toTaskResponse(req.Task)
		resp.Task = &t
	}
	return c.JSON(http.StatusOK, resp)
}

// Accept handles PUT /api/snippets/acceptRequest/:id.
//
// @Summary      Accept a pending snippet
// @Tags         snippets
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Snippet id"
// @Success      200  {object}  messageResponse
// @Failure      404  {object}  errorResponse
// @Router       /api/snippets/acceptRequest/{id} [put]
func (h *SnippetHandler) Accept(c echo.Context) error {
	if err := h.service.Accept(c.Request().Context(), c.Param("id")); err != nil {
		return err
	}
	metrics.ModerationDecisionsTotal.WithLabelValues("snippet", "accepted").Inc()
	return c.JSON(http.StatusOK, messageResponse{Message: "Snippet request accepted."})
}

// Deny handles DELETE /api/snippets/denyRequest/:id.
//
// @Summary      Deny a pending snippet
// @Tags         snippets
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string       true  "Snippet id"
// @Param        body  body      denyRequest  true  "Reason"
// @Success      200   {object}  messageResponse
// @Failure      400   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Router       /api/snippets/denyRequest/{id} [delete]
func (h *SnippetHandler) Deny(c echo.Context) error {
	in, err := bindDeny(c)
	if err != nil {
		return err
	}
	msg, err := h.service.Deny(c.Request().Context(), in)
	if err != nil {
		return err
	}
	metrics.ModerationDecisionsTotal.WithLabelValues("snippet", "denied").Inc()
	return c.JSON(http.StatusOK, messageResponse{Message: msg})
}
