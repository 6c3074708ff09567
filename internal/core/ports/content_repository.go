package ports

import (
	"context"

	"github.com/codetyper/codetyper-api/internal/core/domain"
)

// Page selects one page of a listing. Number starts at 1.
type Page struct {
	Number int
	Size   int
}

// Skip is the number of items before the page.
func (p Page) Skip() int64 {
	return int64(p.Number-1) * int64(p.Size)
}

// SnippetFilter narrows a snippet listing. Empty fields match everything;
// LanguageName matches ignoring case.
type SnippetFilter struct {
	TaskID       string
	LanguageName string
}

// TaskRepository persists tasks and their archive.
type TaskRepository interface {
	Create(ctx context.Context, task *domain.Task) error
	FindByID(ctx context.Context, id string) (*domain.Task, error)
	// CountByShown counts tasks with the given visibility.
	CountByShown(ctx context.Context, shown bool) (int64, error)
	// RandomByShown picks one task with the given visibility, or
	// domain.ErrTaskNotFound when there is none.
	RandomByShown(ctx context.Context, shown bool) (*domain.Task, error)
	// ListShown returns one page of published tasks, oldest first, and the
	// number of published tasks overall.
	ListShown(ctx context.Context, page Page) ([]domain.Task, int64, error)
	// Accept marks a pending task as shown; domain.ErrTaskNotFound when no
	// pending task has that id.
	Accept(ctx context.Context, id string) error
	// Archive stores the denied task and removes it from the pending set.
	Archive(ctx context.Context, archived *domain.ArchivedTask) error
}

// SnippetRepository persists snippets and their archive.
type SnippetRepository interface {
	Create(ctx context.Context, snippet *domain.Snippet) error
	FindByID(ctx context.Context, id string) (*domain.Snippet, error)
	RandomByShown(ctx context.Context, shown bool) (*domain.Snippet, error)
	ListShown(ctx context.Context, filter SnippetFilter, page Page) ([]domain.Snippet, int64, error)
	Accept(ctx context.Context, id string) error
	Archive(ctx context.Context, archived *domain.ArchivedSnippet) error
}

// LanguageRepository persists the language catalogue. Names are unique ignoring
// case; a duplicate insert reports domain.ErrLanguageExists.
type LanguageRepository interface {
	Create(ctx context.Context, lang domain.Language) error
	Exists(ctx context.Context, name string) (bool, error)
	FindAll(ctx context.Context) ([]domain.Language, error)
	FindByName(ctx context.Context, name string) (*domain.Language, error)
}

// LanguageCache holds the full catalogue between writes. Every Invalidate
// advances a generation, and Set only stores a catalogue read under the
// generation that is still current.
type LanguageCache interface {
	// Get returns the cached catalogue, or ok false on a miss, along with the
	// generation to hand back to Set.
	Get(ctx context.Context) (langs []domain.Language, gen int64, ok bool, err error)
	// Set reports false when an invalidation happened since gen was read.
	Set(ctx context.Context, gen int64, langs []domain.Language) (bool, error)
	Invalidate(ctx context.Context) error
}
