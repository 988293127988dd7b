package repo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/wayfare-app/backend/internal/domain"
)

// ChoiceRepo defines the persistence operations for choices.
// The service layer depends on this interface, not the Postgres
// implementation, so it can be unit-tested with a mock.
type ChoiceRepo interface {
	// Create inserts a new choice and returns the persisted record (with
	// DB-generated id, created_at, and updated_at populated).
	Create(ctx context.Context, choice domain.Choice) (domain.Choice, error)

	// GetByID retrieves a single choice by its UUID primary key, archived or
	// not. Returns domain.ErrNotFound if no choice with that ID exists.
	GetByID(ctx context.Context, id uuid.UUID) (domain.Choice, error)

	// ListByTrip returns the trip's choices matching the filter, newest
	// first, plus the total count for pagination.
	ListByTrip(ctx context.Context, tripID uuid.UUID, filter domain.ChoiceListFilter, p domain.PaginationParams) ([]domain.Choice, int64, error)

	// Update overwrites the mutable metadata of a choice and returns the
	// updated record. Status, deadline, and archive state are changed through
	// the dedicated methods below.
	Update(ctx context.Context, choice domain.Choice) (domain.Choice, error)

	// SetStatus sets the choice's status and (re)sets its deadline.
	SetStatus(ctx context.Context, id uuid.UUID, status domain.ChoiceStatus, deadline *time.Time) (domain.Choice, error)

	// SetArchived sets or clears archived_at.
	SetArchived(ctx context.Context, id uuid.UUID, archived bool) (domain.Choice, error)

	// Delete removes a choice by ID; items, selections, and lines cascade.
	// Returns domain.ErrNotFound if it does not exist.
	Delete(ctx context.Context, id uuid.UUID) error
}

type pgChoiceRepo struct {
	db db
}

// NewChoiceRepo constructs a ChoiceRepo backed by the provided db handle.
// In production pass *pgxpool.Pool; in tests pass a pgx.Tx for rollback
// isolation.
func NewChoiceRepo(db db) ChoiceRepo {
	return &pgChoiceRepo{db: db}
}

const choiceColumns = `id, trip_id, name, description, event_at, place,
	visibility, status, deadline, created_by, archived_at, created_at, updated_at`

func (r *pgChoiceRepo) Create(ctx context.Context, choice domain.Choice) (domain.Choice, error) {
	const q = `
		INSERT INTO choices (trip_id, name, description, event_at, place, visibility, status, deadline, created_by)
		VALUES (@trip_id, @name, @description, @event_at, @place, @visibility, @status, @deadline, @created_by)
		RETURNING ` + choiceColumns

	args := pgx.NamedArgs{
		"trip_id":     choice.TripID,
		"name":        choice.Name,
		"description": choice.Description,
		"event_at":    choice.EventAt, // nil becomes NULL
		"place":       choice.Place,
		"visibility":  choice.Visibility,
		"status":      choice.Status,
		"deadline":    choice.Deadline,
		"created_by":  choice.CreatedBy,
	}

	result, err := scanChoice(r.db.QueryRow(ctx, q, args))
	if err != nil {
		return domain.Choice{}, fmt.Errorf("repo.ChoiceRepo.Create: %w", err)
	}
	return result, nil
}

func (r *pgChoiceRepo) GetByID(ctx context.Context, id uuid.UUID) (domain.Choice, error) {
	const q = `SELECT ` + choiceColumns + ` FROM choices WHERE id = @id`

	result, err := scanChoice(r.db.QueryRow(ctx, q, pgx.NamedArgs{"id": id}))
	if err != nil {
		return domain.Choice{}, fmt.Errorf("repo.ChoiceRepo.GetByID: %w", err)
	}
	return result, nil
}

func (r *pgChoiceRepo) ListByTrip(ctx context.Context, tripID uuid.UUID, filter domain.ChoiceListFilter, p domain.PaginationParams) ([]domain.Choice, int64, error) {
	const q = `
		SELECT ` + choiceColumns + `
		FROM choices
		WHERE trip_id = @trip_id
		  AND (@include_archived OR archived_at IS NULL)
		  AND (@include_closed OR status = 'OPEN')
		ORDER BY created_at DESC
		LIMIT @limit OFFSET @offset`

	const countQ = `
		SELECT count(*)
		FROM choices
		WHERE trip_id = @trip_id
		  AND (@include_archived OR archived_at IS NULL)
		  AND (@include_closed OR status = 'OPEN')`

	args := pgx.NamedArgs{
		"trip_id":          tripID,
		"include_archived": filter.IncludeArchived,
		"include_closed":   filter.IncludeClosed,
		"limit":            p.Limit,
		"offset":           p.Offset(),
	}

	rows, err := r.db.Query(ctx, q, args)
	if err != nil {
		return nil, 0, fmt.Errorf("repo.ChoiceRepo.ListByTrip: %w", err)
	}
	defer rows.Close()

	var choices []domain.Choice
	for rows.Next() {
		c, err := scanChoice(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("repo.ChoiceRepo.ListByTrip: scan: %w", err)
		}
		choices = append(choices, c)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("repo.ChoiceRepo.ListByTrip: rows: %w", err)
	}

	var total int64
	if err := r.db.QueryRow(ctx, countQ, args).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("repo.ChoiceRepo.ListByTrip: count: %w", err)
	}

	return choices, total, nil
}

func (r *pgChoiceRepo) Update(ctx context.Context, choice domain.Choice) (domain.Choice, error) {
	const q = `
		UPDATE choices
		SET name        = @name,
		    description = @description,
		    event_at    = @event_at,
		    place       = @place,
		    visibility  = @visibility,
		    updated_at  = now()
		WHERE id = @id
		RETURNING ` + choiceColumns

	args := pgx.NamedArgs{
		"id":          choice.ID,
		"name":        choice.Name,
		"description": choice.Description,
		"event_at":    choice.EventAt,
		"place":       choice.Place,
		"visibility":  choice.Visibility,
	}

	result, err := scanChoice(r.db.QueryRow(ctx, q, args))
	if err != nil {
		return domain.Choice{}, fmt.Errorf("repo.ChoiceRepo.Update: %w", err)
	}
	return result, nil
}

func (r *pgChoiceRepo) SetStatus(ctx context.Context, id uuid.UUID, status domain.ChoiceStatus, deadline *time.Time) (domain.Choice, error) {
	const q = `
		UPDATE choices
		SET status = @status, deadline = @deadline, updated_at = now()
		WHERE id = @id
		RETURNING ` + choiceColumns

	args := pgx.NamedArgs{"id": id, "status": status, "deadline": deadline}

	result, err := scanChoice(r.db.QueryRow(ctx, q, args))
	if err != nil {
		return domain.Choice{}, fmt.Errorf("repo.ChoiceRepo.SetStatus: %w", err)
	}
	return result, nil
}

func (r *pgChoiceRepo) SetArchived(ctx context.Context, id uuid.UUID, archived bool) (domain.Choice, error) {
	const q = `
		UPDATE choices
		SET archived_at = CASE WHEN @archived THEN now() ELSE NULL END,
		    updated_at  = now()
		WHERE id = @id
		RETURNING ` + choiceColumns

	result, err := scanChoice(r.db.QueryRow(ctx, q, pgx.NamedArgs{"id": id, "archived": archived}))
	if err != nil {
		return domain.Choice{}, fmt.Errorf("repo.ChoiceRepo.SetArchived: %w", err)
	}
	return result, nil
}

func (r *pgChoiceRepo) Delete(ctx context.Context, id uuid.UUID) error {
	const q = `DELETE FROM choices WHERE id = @id`

	tag, err := r.db.Exec(ctx, q, pgx.NamedArgs{"id": id})
	if err != nil {
		return fmt.Errorf("repo.ChoiceRepo.Delete: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("repo.ChoiceRepo.Delete: %w", domain.ErrNotFound)
	}
	return nil
}

// scanChoice maps a single database row into a domain.Choice, handling the
// UUID and nullable timestamp conversions.
func scanChoice(s scanner) (domain.Choice, error) {
	var (
		c          domain.Choice
		id, trip   pgtype.UUID
		createdBy  pgtype.UUID
		eventAt    pgtype.Timestamptz
		deadline   pgtype.Timestamptz
		archivedAt pgtype.Timestamptz
	)

	err := s.Scan(&id, &trip, &c.Name, &c.Description, &eventAt, &c.Place,
		&c.Visibility, &c.Status, &deadline, &createdBy, &archivedAt,
		&c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Choice{}, domain.ErrNotFound
		}
		return domain.Choice{}, err
	}

	c.ID = uuid.UUID(id.Bytes)
	c.TripID = uuid.UUID(trip.Bytes)
	c.CreatedBy = uuid.UUID(createdBy.Bytes)
	if eventAt.Valid {
		t := eventAt.Time
		c.EventAt = &t
	}
	if deadline.Valid {
		t := deadline.Time
		c.Deadline = &t
	}
	if archivedAt.Valid {
		t := archivedAt.Time
		c.ArchivedAt = &t
	}

	return c, nil
}
