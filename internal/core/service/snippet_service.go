package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/codetyper/codetyper-api/internal/core/domain"
	"github.com/codetyper/codetyper-api/internal/core/ports"
	"github.com/codetyper/codetyper-api/pkg/logger"
)

// SnippetService handles snippet submission, reads and moderation.
type SnippetService struct {
	snippets  ports.SnippetRepository
	tasks     ports.TaskRepository
	languages ports.LanguageRepository
	users     ports.IdentityRepository
	now       func() time.Time
	log       zerolog.Logger
}

func NewSnippetService(
	snippets ports.SnippetRepository,
	tasks ports.TaskRepository,
	languages ports.LanguageRepository,
	users ports.IdentityRepository,
	log zerolog.Logger,
) *SnippetService {
	return &SnippetService{
		snippets:  snippets,
		tasks:     tasks,
		languages: languages,
		users:     users,
		now:       func() time.Time { return time.Now().UTC() },
		log:       logger.Component(log, "snippets"),
	}
}

// Add stores a snippet for an existing task and language.
func (s *SnippetService) Add(ctx context.Context, in ports.AddSnippetInput) (*domain.Snippet, string, error) {
	switch {
	case strings.TrimSpace(in.Content) == "":
		return nil, "", domain.NewValidationError("content", "Snippet content is required.")
	case strings.TrimSpace(in.LanguageName) == "":
		return nil, "", domain.NewValidationError("languageName", "Language name is required.")
	case strings.TrimSpace(in.TaskID) == "":
		return nil, "", domain.NewValidationError("taskId", "Task id is required.")
	}

	lang, err := s.languages.FindByName(ctx, in.LanguageName)
	if err != nil {
		return nil, "", fmt.Errorf("add snippet: %w", err)
	}
	if _, err := s.tasks.FindByID(ctx, in.TaskID); err != nil {
		return nil, "", fmt.Errorf("add snippet: %w", err)
	}

	snippet := &domain.Snippet{
		ID:           uuid.NewString(),
		Content:      in.Content,
		Shown:        in.Submitter.IsStaff,
		LanguageName: lang.Name,
		TaskID:       in.TaskID,
		CreatorID:    in.Submitter.UserID,
		CreatedAt:    s.now(),
	}
	if err := s.snippets.Create(ctx, snippet); err != nil {
		return nil, "", fmt.Errorf("add snippet: %w", err)
	}

	s.log.Info().Str("snippet_id", snippet.ID).Bool("shown", snippet.Shown).Msg("snippet submitted")
	if snippet.Shown {
		return snippet, "Snippet added.", nil
	}
	return snippet, "Request to add snippet sent.", nil
}

// Random returns a random visible snippet.
func (s *SnippetService) Random(ctx context.Context) (*domain.Snippet, error) {
	snippet, err := s.snippets.RandomByShown(ctx, true)
	if err != nil {
		return nil, fmt.Errorf("random snippet: %w", err)
	}
	return snippet, nil
}

// RandomRequest picks one pending snippet with its task and creator.
func (s *SnippetService) RandomRequest(ctx context.Context) (*ports.SnippetRequest, error) {
	snippet, err := s.snippets.RandomByShown(ctx, false)
	if err != nil {
		if errors.Is(err, domain.ErrSnippetNotFound) {
			return nil, domain.ErrNoPendingRequests
		}
		return nil, fmt.Errorf("random snippet request: %w", err)
	}

	req := &ports.SnippetRequest{Snippet: snippet}
	task, err := s.tasks.FindByID(ctx, snippet.TaskID)
	switch {
	case err == nil:
		req.Task = task
	case !errors.Is(err, domain.ErrTaskNotFound):
		return nil, fmt.Errorf("random snippet request: %w", err)
	}
	req.Creator = lookupCreator(ctx, s.users, snippet.CreatorID, s.log)
	return req, nil
}

// ListShown returns one page of published snippets, optionally narrowed to a
// task or a language.
func (s *SnippetService) ListShown(ctx context.Context, in ports.ListSnippetsInput) (*ports.SnippetPage, error) {
	p := pageOf(in.Page, in.PageSize, defaultSnippetPageSize)
	filter := ports.SnippetFilter{
		TaskID:       strings.TrimSpace(in.Filter.TaskID),
		LanguageName: strings.TrimSpace(in.Filter.LanguageName),
	}
	snippets, total, err := s.snippets.ListShown(ctx, filter, p)
	if err != nil {
		return nil, fmt.Errorf("list shown snippets: %w", err)
	}
	return &ports.SnippetPage{
		Snippets:   snippets,
		Page:       p.Number,
		PageSize:   p.Size,
		TotalPages: totalPages(total, p.Size),
	}, nil
}

// Accept makes a pending snippet visible.
func (s *SnippetService) Accept(ctx context.Context, id string) error {
	if err := s.snippets.Accept(ctx, id); err != nil {
		return fmt.Errorf("accept snippet: %w", err)
	}
	s.log.Info().Str("snippet_id", id).Msg("snippet request accepted")
	return nil
}

// Deny archives a pending snippet with the reason and removes it.
func (s *SnippetService) Deny(ctx context.Context, in ports.DenyInput) (string, error) {
	if strings.TrimSpace(in.Reason) == "" {
		return "", domain.NewValidationError("reason", "A reason is required to deny a request.")
	}

	snippet, err := s.snippets.FindByID(ctx, in.ID)
	if err != nil {
		return "", fmt.Errorf("deny snippet: %w", err)
	}
	if snippet.Shown {
		return "", fmt.Errorf("deny snippet: %w", domain.ErrSnippetNotFound)
	}

	archived := &domain.ArchivedSnippet{
		Snippet: *snippet,
		Denial:  domain.Denial{Reason: in.Reason, StaffID: in.StaffID, DeniedAt: s.now()},
	}
	if err := s.snippets.Archive(ctx, archived); err != nil {
		return "", fmt.Errorf("deny snippet: %w", err)
	}

	s.log.Info().Str("snippet_id", snippet.ID).Str("staff_id", in.StaffID).Msg("snippet request denied")
	return "Snippet request denied.", nil
}
