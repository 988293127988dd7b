package repo

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"

	"github.com/wayfare-app/backend/internal/domain"
)

// ItemRepo defines the persistence operations for choice items.
type ItemRepo interface {
	// Create inserts a new item. A second NO_PARTICIPATION item on the same
	// choice is rejected with domain.ErrOptOutExists (enforced by a partial
	// unique index, so concurrent creations cannot both succeed).
	Create(ctx context.Context, item domain.ChoiceItem) (domain.ChoiceItem, error)

	// GetByID retrieves an item by primary key.
	GetByID(ctx context.Context, id uuid.UUID) (domain.ChoiceItem, error)

	// ListByChoice returns the choice's items, oldest first.
	// With activeOnly, deactivated items are excluded.
	ListByChoice(ctx context.Context, choiceID uuid.UUID, activeOnly bool) ([]domain.ChoiceItem, error)

	// Update overwrites the mutable fields of an item.
	Update(ctx context.Context, item domain.ChoiceItem) (domain.ChoiceItem, error)

	// Deactivate soft-disables an item; it stays visible to reporting.
	Deactivate(ctx context.Context, id uuid.UUID) (domain.ChoiceItem, error)

	// FindOptOut returns the choice's NO_PARTICIPATION item.
	// Returns domain.ErrNotFound if the choice has none yet.
	FindOptOut(ctx context.Context, choiceID uuid.UUID) (domain.ChoiceItem, error)

	// LockByIDs loads the given items of a choice with FOR UPDATE row locks,
	// in deterministic id order to keep concurrent submissions deadlock-free.
	// Items not found (or belonging to another choice) are simply absent from
	// the result; the validator treats absence as "does not exist".
	LockByIDs(ctx context.Context, choiceID uuid.UUID, ids []uuid.UUID) (map[uuid.UUID]domain.ChoiceItem, error)
}

type pgItemRepo struct {
	db db
}

// NewItemRepo constructs an ItemRepo backed by the provided db handle.
func NewItemRepo(db db) ItemRepo {
	return &pgItemRepo{db: db}
}

const itemColumns = `id, choice_id, name, description, price, tags, allergens,
	max_per_user, max_total, is_active, item_type, created_at, updated_at`

func (r *pgItemRepo) Create(ctx context.Context, item domain.ChoiceItem) (domain.ChoiceItem, error) {
	const q = `
		INSERT INTO choice_items (choice_id, name, description, price, tags, allergens, max_per_user, max_total, is_active, item_type)
		VALUES (@choice_id, @name, @description, @price, @tags, @allergens, @max_per_user, @max_total, @is_active, @item_type)
		RETURNING ` + itemColumns

	args := pgx.NamedArgs{
		"choice_id":    item.ChoiceID,
		"name":         item.Name,
		"description":  item.Description,
		"price":        nullDecimalArg(item.Price),
		"tags":         item.Tags,
		"allergens":    item.Allergens,
		"max_per_user": item.MaxPerUser,
		"max_total":    item.MaxTotal,
		"is_active":    item.IsActive,
		"item_type":    item.Type,
	}

	result, err := scanItem(r.db.QueryRow(ctx, q, args))
	if err != nil {
		if isUniqueViolation(err, "choice_items_one_opt_out") {
			return domain.ChoiceItem{}, fmt.Errorf("repo.ItemRepo.Create: %w", domain.ErrOptOutExists)
		}
		return domain.ChoiceItem{}, fmt.Errorf("repo.ItemRepo.Create: %w", err)
	}
	return result, nil
}

func (r *pgItemRepo) GetByID(ctx context.Context, id uuid.UUID) (domain.ChoiceItem, error) {
	const q = `SELECT ` + itemColumns + ` FROM choice_items WHERE id = @id`

	result, err := scanItem(r.db.QueryRow(ctx, q, pgx.NamedArgs{"id": id}))
	if err != nil {
		return domain.ChoiceItem{}, fmt.Errorf("repo.ItemRepo.GetByID: %w", err)
	}
	return result, nil
}

func (r *pgItemRepo) ListByChoice(ctx context.Context, choiceID uuid.UUID, activeOnly bool) ([]domain.ChoiceItem, error) {
	const q = `
		SELECT ` + itemColumns + `
		FROM choice_items
		WHERE choice_id = @choice_id
		  AND (@active_only = false OR is_active)
		ORDER BY created_at, id`

	rows, err := r.db.Query(ctx, q, pgx.NamedArgs{"choice_id": choiceID, "active_only": activeOnly})
	if err != nil {
		return nil, fmt.Errorf("repo.ItemRepo.ListByChoice: %w", err)
	}
	defer rows.Close()

	var items []domain.ChoiceItem
	for rows.Next() {
		it, err := scanItem(rows)
		if err != nil {
			return nil, fmt.Errorf("repo.ItemRepo.ListByChoice: scan: %w", err)
		}
		items = append(items, it)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("repo.ItemRepo.ListByChoice: rows: %w", err)
	}

	return items, nil
}

func (r *pgItemRepo) Update(ctx context.Context, item domain.ChoiceItem) (domain.ChoiceItem, error) {
	const q = `
		UPDATE choice_items
		SET name         = @name,
		    description  = @description,
		    price        = @price,
		    tags         = @tags,
		    allergens    = @allergens,
		    max_per_user = @max_per_user,
		    max_total    = @max_total,
		    is_active    = @is_active,
		    updated_at   = now()
		WHERE id = @id
		RETURNING ` + itemColumns

	args := pgx.NamedArgs{
		"id":           item.ID,
		"name":         item.Name,
		"description":  item.Description,
		"price":        nullDecimalArg(item.Price),
		"tags":         item.Tags,
		"allergens":    item.Allergens,
		"max_per_user": item.MaxPerUser,
		"max_total":    item.MaxTotal,
		"is_active":    item.IsActive,
	}

	result, err := scanItem(r.db.QueryRow(ctx, q, args))
	if err != nil {
		return domain.ChoiceItem{}, fmt.Errorf("repo.ItemRepo.Update: %w", err)
	}
	return result, nil
}

func (r *pgItemRepo) Deactivate(ctx context.Context, id uuid.UUID) (domain.ChoiceItem, error) {
	const q = `
		UPDATE choice_items
		SET is_active = false, updated_at = now()
		WHERE id = @id
		RETURNING ` + itemColumns

	result, err := scanItem(r.db.QueryRow(ctx, q, pgx.NamedArgs{"id": id}))
	if err != nil {
		return domain.ChoiceItem{}, fmt.Errorf("repo.ItemRepo.Deactivate: %w", err)
	}
	return result, nil
}

func (r *pgItemRepo) FindOptOut(ctx context.Context, choiceID uuid.UUID) (domain.ChoiceItem, error) {
	const q = `
		SELECT ` + itemColumns + `
		FROM choice_items
		WHERE choice_id = @choice_id AND item_type = 'NO_PARTICIPATION'`

	result, err := scanItem(r.db.QueryRow(ctx, q, pgx.NamedArgs{"choice_id": choiceID}))
	if err != nil {
		return domain.ChoiceItem{}, fmt.Errorf("repo.ItemRepo.FindOptOut: %w", err)
	}
	return result, nil
}

func (r *pgItemRepo) LockByIDs(ctx context.Context, choiceID uuid.UUID, ids []uuid.UUID) (map[uuid.UUID]domain.ChoiceItem, error) {
	const q = `
		SELECT ` + itemColumns + `
		FROM choice_items
		WHERE choice_id = @choice_id AND id = ANY(@ids)
		ORDER BY id
		FOR UPDATE`

	rows, err := r.db.Query(ctx, q, pgx.NamedArgs{"choice_id": choiceID, "ids": ids})
	if err != nil {
		return nil, fmt.Errorf("repo.ItemRepo.LockByIDs: %w", err)
	}
	defer rows.Close()

	items := make(map[uuid.UUID]domain.ChoiceItem, len(ids))
	for rows.Next() {
		it, err := scanItem(rows)
		if err != nil {
			return nil, fmt.Errorf("repo.ItemRepo.LockByIDs: scan: %w", err)
		}
		items[it.ID] = it
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("repo.ItemRepo.LockByIDs: rows: %w", err)
	}

	return items, nil
}

// nullDecimalArg converts an optional decimal into the NullDecimal shape the
// registered pgx codec encodes as numeric/NULL.
func nullDecimalArg(d *decimal.Decimal) decimal.NullDecimal {
	if d == nil {
		return decimal.NullDecimal{}
	}
	return decimal.NullDecimal{Decimal: *d, Valid: true}
}

// scanItem maps a single database row into a domain.ChoiceItem.
func scanItem(s scanner) (domain.ChoiceItem, error) {
	var (
		it         domain.ChoiceItem
		id, choice pgtype.UUID
		price      decimal.NullDecimal
		maxPerUser pgtype.Int4
		maxTotal   pgtype.Int4
	)

	err := s.Scan(&id, &choice, &it.Name, &it.Description, &price, &it.Tags,
		&it.Allergens, &maxPerUser, &maxTotal, &it.IsActive, &it.Type,
		&it.CreatedAt, &it.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.ChoiceItem{}, domain.ErrNotFound
		}
		return domain.ChoiceItem{}, err
	}

	it.ID = uuid.UUID(id.Bytes)
	it.ChoiceID = uuid.UUID(choice.Bytes)
	if price.Valid {
		p := price.Decimal
		it.Price = &p
	}
	if maxPerUser.Valid {
		v := int(maxPerUser.Int32)
		it.MaxPerUser = &v
	}
	if maxTotal.Valid {
		v := int(maxTotal.Int32)
		it.MaxTotal = &v
	}

	return it, nil
}
