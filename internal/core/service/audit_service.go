package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/codetyper/codetyper-api/internal/core/domain"
	"github.com/codetyper/codetyper-api/internal/core/ports"
	"github.com/codetyper/codetyper-api/pkg/logger"
)

type auditService struct {
	repo ports.AuditRepository
	log  zerolog.Logger
}

// NewAuditService returns an AuditService writing to repo.
func NewAuditService(repo ports.AuditRepository, log zerolog.Logger) ports.AuditService {
	return &auditService{repo: repo, log: logger.Component(log, "audit")}
}

// Process persists one audit event.
func (s *auditService) Process(ctx context.Context, event domain.AuthEvent) error {
	if event.Kind == "" {
		return errors.New("audit: event kind is required")
	}
	if event.Timestamp.IsZero() {
		return errors.New("audit: event timestamp is required")
	}

	if err := s.repo.InsertAuthEvent(ctx, &event); err != nil {
		return fmt.Errorf("audit: insert: %w", err)
	}

	s.log.Debug().
		Str("kind", string(event.Kind)).
		Str("username", event.Username).
		Str("user_id", event.UserID).
		Msg("audit event stored")
	return nil
}
