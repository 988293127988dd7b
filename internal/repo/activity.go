package repo

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/wayfare-app/backend/internal/domain"
)

// ActivityRepo appends entries to a choice's activity log. The log is
// append-only; nothing in this engine reads it back.
type ActivityRepo interface {
	Append(ctx context.Context, choiceID uuid.UUID, payload domain.ActivityPayload) error
}

// AuditRepo is the audit/event sink consumed as an external collaborator:
// logEvent(entityKind, entityId, eventType, actorId, payload).
type AuditRepo interface {
	LogEvent(ctx context.Context, event domain.AuditEvent) error
}

type pgActivityRepo struct {
	db db
}

// NewActivityRepo constructs an ActivityRepo backed by the provided db handle.
func NewActivityRepo(db db) ActivityRepo {
	return &pgActivityRepo{db: db}
}

func (r *pgActivityRepo) Append(ctx context.Context, choiceID uuid.UUID, payload domain.ActivityPayload) error {
	raw, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("repo.ActivityRepo.Append: marshal payload: %w", err)
	}

	const q = `
		INSERT INTO choice_activities (choice_id, action, payload)
		VALUES (@choice_id, @action, @payload)`

	args := pgx.NamedArgs{
		"choice_id": choiceID,
		"action":    payload.ActivityAction(),
		"payload":   raw,
	}

	if _, err := r.db.Exec(ctx, q, args); err != nil {
		return fmt.Errorf("repo.ActivityRepo.Append: %w", err)
	}
	return nil
}

type pgAuditRepo struct {
	db db
}

// NewAuditRepo constructs an AuditRepo backed by the provided db handle.
func NewAuditRepo(db db) AuditRepo {
	return &pgAuditRepo{db: db}
}

func (r *pgAuditRepo) LogEvent(ctx context.Context, event domain.AuditEvent) error {
	raw, err := json.Marshal(event.Payload)
	if err != nil {
		return fmt.Errorf("repo.AuditRepo.LogEvent: marshal payload: %w", err)
	}

	const q = `
		INSERT INTO audit_events (entity_kind, entity_id, event_type, actor_id, payload)
		VALUES (@entity_kind, @entity_id, @event_type, @actor_id, @payload)`

	args := pgx.NamedArgs{
		"entity_kind": event.EntityKind,
		"entity_id":   event.EntityID,
		"event_type":  event.EventType,
		"actor_id":    event.ActorID,
		"payload":     raw,
	}

	if _, err := r.db.Exec(ctx, q, args); err != nil {
		return fmt.Errorf("repo.AuditRepo.LogEvent: %w", err)
	}
	return nil
}
