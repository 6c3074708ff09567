package ports

import (
	"context"

	"github.com/codetyper/codetyper-api/internal/core/domain"
)

// AuditSink accepts audit events without blocking the caller.
type AuditSink interface {
	Record(event domain.AuthEvent)
}

// AuditRepository stores the audit trail.
type AuditRepository interface {
	InsertAuthEvent(ctx context.Context, event *domain.AuthEvent) error
}

// AuditService persists a single audit event.
type AuditService interface {
	Process(ctx context.Context, event domain.AuthEvent) error
}
