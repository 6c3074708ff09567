package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/codetyper/codetyper-api/internal/api/metrics"
	"github.com/codetyper/codetyper-api/internal/core/ports"
)

// TaskHandler handles task submission and moderation.
type TaskHandler struct {
	service ports.TaskService
}

func NewTaskHandler(service ports.TaskService) *TaskHandler {
	return &TaskHandler{service: service}
}

// Add handles POST /api/tasks/add. Staff submissions are published directly;
// anyone else's become a pending request.
//
// @Summary      Submit a task
// @Tags         tasks
// @Accept       json
// @Produce      json
// @Param        body  body      addTaskRequest  true  "Task"
// @Success      201   {object}  addTaskResponse
// @Failure      400   {object}  errorResponse
// @Router       /api/tasks/add [post]
func (h *TaskHandler) Add(c echo.Context) error {
	var req addTaskRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	task, msg, err := h.service.Add(c.Request().Context(), ports.AddTaskInput{
		Name:        req.Name,
		Description: req.Description,
		Submitter:   submitter(c, req.CreatorID),
	})
	if err != nil {
		return err
	}

	metrics.SubmissionsTotal.WithLabelValues("task", shownLabel(task.Shown)).Inc()
	return c.JSON(http.StatusCreated, addTaskResponse{Message: msg, Task: toTaskResponse(task)})
}

// Shown handles GET /api/tasks/shown.
//
// @Summary      List published tasks
// @Tags         tasks
// @Produce      json
// @Param        page      query     int  false  "Page number"  default(1)
// @Param        pageSize  query     int  false  "Page size"    default(15)
// @Success      200       {object}  shownTasksResponse
// @Router       /api/tasks/shown [get]
func (h *TaskHandler) Shown(c echo.Context) error {
	page, err := h.service.ListShown(c.Request().Context(), queryInt(c, "page"), queryInt(c, "pageSize"))
	if err != nil {
		return err
	}
	resp := shownTasksResponse{
		Tasks:       make([]taskResponse, 0, len(page.Tasks)),
		CurrentPage: page.Page,
		PageSize:    page.PageSize,
		TotalPages:  page.TotalPages,
	}
	for i := range page.Tasks {
		resp.Tasks = append(resp.Tasks, toTaskResponse(&page.Tasks[i]))
	}
	return c.JSON(http.StatusOK, resp)
}

// RandomRequest handles GET /api/tasks/randomRequest.
//
// @Summary      Get a random pending task
// @Tags         tasks
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  taskRequestResponse
// @Failure      401  {object}  errorResponse
// @Failure      403  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Router       /api/tasks/randomRequest [get]
func (h *TaskHandler) RandomRequest(c echo.Context) error {
	req, err := h.service.RandomRequest(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, taskRequestResponse{
		Task:    toTaskResponse(req.Task),
		Creator: toCreator(req.Creator),
		Pending: req.Pending,
	})
}

// Accept handles PUT /api/tasks/acceptRequest/:id.
//
// @Summary      Accept a pending task
// @Tags         tasks
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Task id"
// @Success      200  {object}  messageResponse
// @Failure      404  {object}  errorResponse
// @Router       /api/tasks/acceptRequest/{id} [put]
func (h *TaskHandler) Accept(c echo.Context) error {
	if err := h.service.Accept(c.Request().Context(), c.Param("id")); err != nil {
		return err
	}
	metrics.ModerationDecisionsTotal.WithLabelValues("task", "accepted").Inc()
	return c.JSON(http.StatusOK, messageResponse{Message: "Task request accepted."})
}

// Deny handles DELETE /api/tasks/denyRequest/:id.
//
// @Summary      Deny a pending task
// @Tags         tasks
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string       true  "Task id"
// @Param        body  body      denyRequest  true  "Reason"
// @Success      200   {object}  messageResponse
// @Failure      400   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Router       /api/tasks/denyRequest/{id} [delete]
func (h *TaskHandler) Deny(c echo.Context) error {
	in, err := bindDeny(c)
	if err != nil {
		return err
	}
	msg, err := h.service.Deny(c.Request().Context(), in)
	if err != nil {
		return err
	}
	metrics.ModerationDecisionsTotal.WithLabelValues("task", "denied").Inc()
	return c.JSON(http.StatusOK, messageResponse{Message: msg})
}

func bindDeny(c echo.Context) (ports.DenyInput, error) {
	session, err := requireSession(c)
	if err != nil {
		return ports.DenyInput{}, err
	}
	var req denyRequest
	if err := c.Bind(&req); err != nil {
		return ports.DenyInput{}, echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return ports.DenyInput{}, echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return ports.DenyInput{ID: c.Param("id"), Reason: req.Reason, StaffID: session.UserID}, nil
}

func shownLabel(shown bool) string {
	if shown {
		return "shown"
	}
	return "pending"
}
