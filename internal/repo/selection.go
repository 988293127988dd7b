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

// SelectionRepo defines the persistence operations for selections and their
// lines. Lines are always replaced as a set, never patched.
type SelectionRepo interface {
	// GetByChoiceAndUser returns the user's selection with its lines.
	// Returns domain.ErrNotFound if the user has no selection on the choice.
	GetByChoiceAndUser(ctx context.Context, choiceID, userID uuid.UUID) (domain.Selection, error)

	// Upsert creates the (choice, user) selection or bumps updated_at on the
	// existing one, returning the stored row without lines. The unique
	// constraint on (choice_id, user_id) makes concurrent first submissions
	// converge on one row.
	Upsert(ctx context.Context, choiceID, userID uuid.UUID) (domain.Selection, error)

	// SetNote upserts the selection and sets its free-text note.
	SetNote(ctx context.Context, choiceID, userID uuid.UUID, note string) (domain.Selection, error)

	// ReplaceLines deletes all of the selection's lines and inserts the given
	// set, returning the stored lines. Call inside a transaction together
	// with validation.
	ReplaceLines(ctx context.Context, selectionID uuid.UUID, lines []domain.ProposedLine) ([]domain.SelectionLine, error)

	// Delete removes the user's selection (lines cascade).
	// Returns domain.ErrNotFound if the user has no selection on the choice.
	Delete(ctx context.Context, choiceID, userID uuid.UUID) error

	// QuantityTotals sums stored line quantities per item across all of the
	// choice's selections except the given user's. The acting user's own
	// prior lines are excluded because a submission replaces them; they must
	// not count toward the cap they are about to vacate.
	QuantityTotals(ctx context.Context, choiceID, excludeUserID uuid.UUID) (map[uuid.UUID]int, error)

	// ListViews returns every selection on the choice joined with the owner's
	// roster entry and each line's item, ordered by member name then user id.
	// The reporting engine and respondent tracker both consume this single
	// line set.
	ListViews(ctx context.Context, choiceID uuid.UUID) ([]domain.SelectionView, error)
}

type pgSelectionRepo struct {
	db db
}

// NewSelectionRepo constructs a SelectionRepo backed by the provided db handle.
func NewSelectionRepo(db db) SelectionRepo {
	return &pgSelectionRepo{db: db}
}

const selectionColumns = `id, choice_id, user_id, note, updated_at`

func (r *pgSelectionRepo) GetByChoiceAndUser(ctx context.Context, choiceID, userID uuid.UUID) (domain.Selection, error) {
	const q = `
		SELECT ` + selectionColumns + `
		FROM choice_selections
		WHERE choice_id = @choice_id AND user_id = @user_id`

	args := pgx.NamedArgs{"choice_id": choiceID, "user_id": userID}

	sel, err := scanSelection(r.db.QueryRow(ctx, q, args))
	if err != nil {
		return domain.Selection{}, fmt.Errorf("repo.SelectionRepo.GetByChoiceAndUser: %w", err)
	}

	lines, err := r.linesBySelection(ctx, sel.ID)
	if err != nil {
		return domain.Selection{}, fmt.Errorf("repo.SelectionRepo.GetByChoiceAndUser: %w", err)
	}
	sel.Lines = lines

	return sel, nil
}

func (r *pgSelectionRepo) Upsert(ctx context.Context, choiceID, userID uuid.UUID) (domain.Selection, error) {
	const q = `
		INSERT INTO choice_selections (choice_id, user_id)
		VALUES (@choice_id, @user_id)
		ON CONFLICT (choice_id, user_id) DO UPDATE SET updated_at = now()
		RETURNING ` + selectionColumns

	args := pgx.NamedArgs{"choice_id": choiceID, "user_id": userID}

	sel, err := scanSelection(r.db.QueryRow(ctx, q, args))
	if err != nil {
		return domain.Selection{}, fmt.Errorf("repo.SelectionRepo.Upsert: %w", err)
	}
	return sel, nil
}

func (r *pgSelectionRepo) SetNote(ctx context.Context, choiceID, userID uuid.UUID, note string) (domain.Selection, error) {
	const q = `
		INSERT INTO choice_selections (choice_id, user_id, note)
		VALUES (@choice_id, @user_id, @note)
		ON CONFLICT (choice_id, user_id) DO UPDATE SET note = @note, updated_at = now()
		RETURNING ` + selectionColumns

	args := pgx.NamedArgs{"choice_id": choiceID, "user_id": userID, "note": note}

	sel, err := scanSelection(r.db.QueryRow(ctx, q, args))
	if err != nil {
		return domain.Selection{}, fmt.Errorf("repo.SelectionRepo.SetNote: %w", err)
	}
	return sel, nil
}

func (r *pgSelectionRepo) ReplaceLines(ctx context.Context, selectionID uuid.UUID, lines []domain.ProposedLine) ([]domain.SelectionLine, error) {
	const del = `DELETE FROM choice_selection_lines WHERE selection_id = @selection_id`
	if _, err := r.db.Exec(ctx, del, pgx.NamedArgs{"selection_id": selectionID}); err != nil {
		return nil, fmt.Errorf("repo.SelectionRepo.ReplaceLines: delete: %w", err)
	}

	const ins = `
		INSERT INTO choice_selection_lines (selection_id, item_id, quantity, note)
		VALUES (@selection_id, @item_id, @quantity, @note)
		RETURNING id, selection_id, item_id, quantity, note`

	stored := make([]domain.SelectionLine, 0, len(lines))
	for _, l := range lines {
		args := pgx.NamedArgs{
			"selection_id": selectionID,
			"item_id":      l.ItemID,
			"quantity":     l.Quantity,
			"note":         l.Note,
		}
		line, err := scanLine(r.db.QueryRow(ctx, ins, args))
		if err != nil {
			return nil, fmt.Errorf("repo.SelectionRepo.ReplaceLines: insert: %w", err)
		}
		stored = append(stored, line)
	}

	return stored, nil
}

func (r *pgSelectionRepo) Delete(ctx context.Context, choiceID, userID uuid.UUID) error {
	const q = `DELETE FROM choice_selections WHERE choice_id = @choice_id AND user_id = @user_id`

	tag, err := r.db.Exec(ctx, q, pgx.NamedArgs{"choice_id": choiceID, "user_id": userID})
	if err != nil {
		return fmt.Errorf("repo.SelectionRepo.Delete: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("repo.SelectionRepo.Delete: %w", domain.ErrNotFound)
	}
	return nil
}

func (r *pgSelectionRepo) QuantityTotals(ctx context.Context, choiceID, excludeUserID uuid.UUID) (map[uuid.UUID]int, error) {
	const q = `
		SELECT l.item_id, COALESCE(SUM(l.quantity), 0)
		FROM choice_selection_lines l
		JOIN choice_selections s ON s.id = l.selection_id
		WHERE s.choice_id = @choice_id AND s.user_id <> @exclude_user_id
		GROUP BY l.item_id`

	args := pgx.NamedArgs{"choice_id": choiceID, "exclude_user_id": excludeUserID}

	rows, err := r.db.Query(ctx, q, args)
	if err != nil {
		return nil, fmt.Errorf("repo.SelectionRepo.QuantityTotals: %w", err)
	}
	defer rows.Close()

	totals := make(map[uuid.UUID]int)
	for rows.Next() {
		var (
			itemID pgtype.UUID
			total  int64
		)
		if err := rows.Scan(&itemID, &total); err != nil {
			return nil, fmt.Errorf("repo.SelectionRepo.QuantityTotals: scan: %w", err)
		}
		totals[uuid.UUID(itemID.Bytes)] = int(total)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("repo.SelectionRepo.QuantityTotals: rows: %w", err)
	}

	return totals, nil
}

func (r *pgSelectionRepo) ListViews(ctx context.Context, choiceID uuid.UUID) ([]domain.SelectionView, error) {
	// LEFT JOINs keep note-only selections (zero lines) and selections whose
	// owner has left the roster in the result.
	const q = `
		SELECT s.user_id, COALESCE(m.name, ''), COALESCE(m.email, ''), s.note, s.updated_at,
		       l.item_id, i.name, i.item_type, i.is_active, i.price, l.quantity, l.note
		FROM choice_selections s
		JOIN choices c ON c.id = s.choice_id
		LEFT JOIN trip_members m ON m.trip_id = c.trip_id AND m.user_id = s.user_id
		LEFT JOIN choice_selection_lines l ON l.selection_id = s.id
		LEFT JOIN choice_items i ON i.id = l.item_id
		WHERE s.choice_id = @choice_id
		ORDER BY COALESCE(m.name, ''), s.user_id, i.created_at, i.id`

	rows, err := r.db.Query(ctx, q, pgx.NamedArgs{"choice_id": choiceID})
	if err != nil {
		return nil, fmt.Errorf("repo.SelectionRepo.ListViews: %w", err)
	}
	defer rows.Close()

	var (
		views []domain.SelectionView
		index = make(map[uuid.UUID]int)
	)
	for rows.Next() {
		var (
			userID   pgtype.UUID
			view     domain.SelectionView
			itemID   pgtype.UUID
			itemName pgtype.Text
			itemType pgtype.Text
			itemActv pgtype.Bool
			price    decimal.NullDecimal
			quantity pgtype.Int4
			lineNote pgtype.Text
		)
		err := rows.Scan(&userID, &view.UserName, &view.UserEmail, &view.Note, &view.UpdatedAt,
			&itemID, &itemName, &itemType, &itemActv, &price, &quantity, &lineNote)
		if err != nil {
			return nil, fmt.Errorf("repo.SelectionRepo.ListViews: scan: %w", err)
		}
		view.UserID = uuid.UUID(userID.Bytes)

		i, ok := index[view.UserID]
		if !ok {
			view.Lines = []domain.LineView{}
			views = append(views, view)
			i = len(views) - 1
			index[view.UserID] = i
		}

		if itemID.Valid {
			line := domain.LineView{
				ItemID:     uuid.UUID(itemID.Bytes),
				ItemName:   itemName.String,
				ItemType:   domain.ItemType(itemType.String),
				ItemActive: itemActv.Bool,
				Quantity:   int(quantity.Int32),
				Note:       lineNote.String,
			}
			if price.Valid {
				p := price.Decimal
				line.Price = &p
			}
			views[i].Lines = append(views[i].Lines, line)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("repo.SelectionRepo.ListViews: rows: %w", err)
	}

	return views, nil
}

func (r *pgSelectionRepo) linesBySelection(ctx context.Context, selectionID uuid.UUID) ([]domain.SelectionLine, error) {
	const q = `
		SELECT id, selection_id, item_id, quantity, note
		FROM choice_selection_lines
		WHERE selection_id = @selection_id
		ORDER BY id`

	rows, err := r.db.Query(ctx, q, pgx.NamedArgs{"selection_id": selectionID})
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var lines []domain.SelectionLine
	for rows.Next() {
		line, err := scanLine(rows)
		if err != nil {
			return nil, err
		}
		lines = append(lines, line)
	}
	return lines, rows.Err()
}

// scanSelection maps a database row into a domain.Selection (without lines).
func scanSelection(s scanner) (domain.Selection, error) {
	var (
		sel              domain.Selection
		id, choice, user pgtype.UUID
	)

	err := s.Scan(&id, &choice, &user, &sel.Note, &sel.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Selection{}, domain.ErrNotFound
		}
		return domain.Selection{}, err
	}

	sel.ID = uuid.UUID(id.Bytes)
	sel.ChoiceID = uuid.UUID(choice.Bytes)
	sel.UserID = uuid.UUID(user.Bytes)
	return sel, nil
}

// scanLine maps a database row into a domain.SelectionLine.
func scanLine(s scanner) (domain.SelectionLine, error) {
	var (
		line          domain.SelectionLine
		id, sid, item pgtype.UUID
	)

	err := s.Scan(&id, &sid, &item, &line.Quantity, &line.Note)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.SelectionLine{}, domain.ErrNotFound
		}
		return domain.SelectionLine{}, err
	}

	line.ID = uuid.UUID(id.Bytes)
	line.SelectionID = uuid.UUID(sid.Bytes)
	line.ItemID = uuid.UUID(item.Bytes)
	return line, nil
}
