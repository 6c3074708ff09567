package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/rs/zerolog"

	"github.com/codetyper/codetyper-api/internal/core/domain"
	"github.com/codetyper/codetyper-api/internal/core/ports"
	"github.com/codetyper/codetyper-api/pkg/logger"
)

// LanguageService manages the language catalogue. The cache is optional and its
// failures never fail a request.
type LanguageService struct {
	repo  ports.LanguageRepository
	cache ports.LanguageCache
	log   zerolog.Logger
}

func NewLanguageService(repo ports.LanguageRepository, cache ports.LanguageCache, log zerolog.Logger) *LanguageService {
	return &LanguageService{
		repo:  repo,
		cache: cache,
		log:   logger.Component(log, "languages"),
	}
}

func (s *LanguageService) Add(ctx context.Context, name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", domain.NewValidationError("name", "Language name is required.")
	}

	exists, err := s.repo.Exists(ctx, name)
	if err != nil {
		return "", fmt.Errorf("add language: %w", err)
	}
	if exists {
		return "", domain.ErrLanguageExists
	}
	if err := s.repo.Create(ctx, domain.Language{Name: name}); err != nil {
		if errors.Is(err, domain.ErrLanguageExists) {
			return "", domain.ErrLanguageExists
		}
		return "", fmt.Errorf("add language: %w", err)
	}

	if s.cache != nil {
		if err := s.cache.Invalidate(ctx); err != nil {
			s.log.Warn().Err(err).Msg("language cache invalidation failed")
		}
	}
	return fmt.Sprintf("Language '%s' added.", name), nil
}

// All returns every language sorted by name. A catalogue read from the store
// is written back only if no Add invalidated the cache in the meantime.
func (s *LanguageService) All(ctx context.Context) ([]domain.Language, error) {
	var (
		gen      int64
		writable bool
	)
	if s.cache != nil {
		langs, g, ok, err := s.cache.Get(ctx)
		switch {
		case err != nil:
			s.log.Warn().Err(err).Msg("language cache read failed, using store")
		case ok:
			return langs, nil
		default:
			gen, writable = g, true
		}
	}

	langs, err := s.repo.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("list languages: %w", err)
	}
	sort.Slice(langs, func(i, j int) bool {
		return strings.ToLower(langs[i].Name) < strings.ToLower(langs[j].Name)
	})

	if writable {
		stored, err := s.cache.Set(ctx, gen, langs)
		switch {
		case err != nil:
			s.log.Warn().Err(err).Msg("language cache write failed")
		case !stored:
			s.log.Debug().Int64("generation", gen).Msg("language catalogue changed while loading, not cached")
		}
	}
	return langs, nil
}

// ByName looks a language up ignoring case.
func (s *LanguageService) ByName(ctx context.Context, name string) (*domain.Language, error) {
	if strings.TrimSpace(name) == "" {
		return nil, domain.ErrLanguageNotFound
	}
	lang, err := s.repo.FindByName(ctx, strings.TrimSpace(name))
	if err != nil {
		return nil, fmt.Errorf("get language: %w", err)
	}
	return lang, nil
}
