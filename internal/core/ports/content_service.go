package ports

import (
	"context"

	"github.com/codetyper/codetyper-api/internal/core/domain"
)

// Submitter identifies who is adding content. Staff submissions are shown
// immediately; everyone else's wait for moderation.
type Submitter struct {
	UserID  string
	IsStaff bool
}

// AddTaskInput carries a task submission.
type AddTaskInput struct {
	Name        string
	Description string
	Submitter   Submitter
}

// AddSnippetInput carries a snippet submission.
type AddSnippetInput struct {
	Content      string
	LanguageName string
	TaskID       string
	Submitter    Submitter
}

// DenyInput rejects a pending submission.
type DenyInput struct {
	ID      string
	Reason  string
	StaffID string
}

// TaskRequest is a pending task shown to moderators.
type TaskRequest struct {
	Task    *domain.Task
	Creator *domain.Identity
	Pending int64
}

// SnippetRequest is a pending snippet shown to moderators.
type SnippetRequest struct {
	Snippet *domain.Snippet
	Task    *domain.Task
	Creator *domain.Identity
}

// TaskPage is one page of published tasks.
type TaskPage struct {
	Tasks      []domain.Task
	Page       int
	PageSize   int
	TotalPages int
}

// ListSnippetsInput selects a page of published snippets. Zero Page and
// PageSize fall back to the defaults.
type ListSnippetsInput struct {
	Filter   SnippetFilter
	Page     int
	PageSize int
}

// SnippetPage is one page of published snippets.
type SnippetPage struct {
	Snippets   []domain.Snippet
	Page       int
	PageSize   int
	TotalPages int
}

// TaskService covers task submission and moderation.
type TaskService interface {
	Add(ctx context.Context, in AddTaskInput) (*domain.Task, string, error)
	RandomRequest(ctx context.Context) (*TaskRequest, error)
	ListShown(ctx context.Context, page, pageSize int) (*TaskPage, error)
	Accept(ctx context.Context, id string) error
	Deny(ctx context.Context, in DenyInput) (string, error)
}

// SnippetService covers snippet submission, reads and moderation.
type SnippetService interface {
	Add(ctx context.Context, in AddSnippetInput) (*domain.Snippet, string, error)
	Random(ctx context.Context) (*domain.Snippet, error)
	RandomRequest(ctx context.Context) (*SnippetRequest, error)
	ListShown(ctx context.Context, in ListSnippetsInput) (*SnippetPage, error)
	Accept(ctx context.Context, id string) error
	Deny(ctx context.Context, in DenyInput) (string, error)
}

// LanguageService manages the language catalogue.
type LanguageService interface {
	Add(ctx context.Context, name string) (string, error)
	All(ctx context.Context) ([]domain.Language, error)
	ByName(ctx context.Context, name string) (*domain.Language, error)
}
