package handler

import (
	"time"

	"github.com/codetyper/codetyper-api/internal/core/domain"
)

// errorResponse is the standard error envelope returned on all 4xx/5xx responses.
type errorResponse struct {
	Error string `json:"error"`
}

// messageResponse carries a human-readable outcome.
type messageResponse struct {
	Message string `json:"message"`
}

// --- Auth ---

type registerRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Email    string `json:"email"`
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginResponse struct {
	Message string `json:"message"`
	Role    string `json:"role"`
	UserID  string `json:"userId"`
}

// --- Users ---

type userResponse struct {
	UserID   string `json:"userId"`
	Username string `json:"username"`
	Role     string `json:"role"`
}

type promoteResponse struct {
	Message string       `json:"message"`
	User    userResponse `json:"user"`
}

func toUserResponse(u *domain.Identity) userResponse {
	return userResponse{UserID: u.ID, Username: u.Username, Role: u.Role.String()}
}

func toCreator(u *domain.Identity) *userResponse {
	if u == nil {
		return nil
	}
	r := toUserResponse(u)
	return &r
}

// --- Tasks ---

type addTaskRequest struct {
	Name        string `json:"name"        validate:"required,max=100"`
	Description string `json:"description" validate:"required"`
	CreatorID   string `json:"creatorId"`
}

type taskResponse struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Shown       bool      `json:"shown"`
	CreatorID   string    `json:"creatorId,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
}

type addTaskResponse struct {
	Message string       `json:"message"`
	Task    taskResponse `json:"task"`
}

type taskRequestResponse struct {
	Task    taskResponse  `json:"task"`
	Creator *userResponse `json:"creator,omitempty"`
	Pending int64         `json:"pending"`
}

type shownTasksResponse struct {
	Tasks       []taskResponse `json:"tasks"`
	CurrentPage int            `json:"currentPage"`
	PageSize    int            `json:"pageSize"`
	TotalPages  int            `json:"totalPages"`
}

func toTaskResponse(t *domain.Task) taskResponse {
	return taskResponse{
		ID:          t.ID,
		Name:        t.Name,
		Description: t.Description,
		Shown:       t.Shown,
		CreatorID:   t.CreatorID,
		CreatedAt:   t.CreatedAt,
	}
}

// --- Snippets ---

type addSnippetRequest struct {
	Content      string `json:"content"      validate:"required"`
	LanguageName string `json:"languageName" validate:"required"`
	TaskID       string `json:"taskId"       validate:"required"`
	CreatorID    string `json:"creatorId"`
}

type snippetResponse struct {
	ID           string    `json:"id"`
	Content      string    `json:"content"`
	Shown        bool      `json:"shown"`
	LanguageName string    `json:"languageName"`
	TaskID       string    `json:"taskId"`
	CreatorID    string    `json:"creatorId,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`
}

type addSnippetResponse struct {
	Message string          `json:"message"`
	Snippet snippetResponse `json:"snippet"`
}

type snippetRequestResponse struct {
	Snippet snippetResponse `json:"snippet"`
	Task    *taskResponse   `json:"task,omitempty"`
	Creator *userResponse   `json:"creator,omitempty"`
}

type shownSnippetsResponse struct {
	Snippets    []snippetResponse `json:"snippets"`
	CurrentPage int               `json:"currentPage"`
	PageSize    int               `json:"pageSize"`
	TotalPages  int               `json:"totalPages"`
}

func toSnippetResponse(s *domain.Snippet) snippetResponse {
	return snippetResponse{
		ID:           s.ID,
		Content:      s.Content,
		Shown:        s.Shown,
		LanguageName: s.LanguageName,
		TaskID:       s.TaskID,
		CreatorID:    s.CreatorID,
		CreatedAt:    s.CreatedAt,
	}
}

// --- Moderation ---

type denyRequest struct {
	Reason string `json:"reason" query:"reason" validate:"required,max=500"`
}

// --- Languages ---

type addLanguageRequest struct {
	Name string `json:"name" validate:"required,max=50"`
}
