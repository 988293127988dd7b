package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/wayfare-app/backend/internal/domain"
	"github.com/wayfare-app/backend/internal/repo"
)

// SelectionService commits validated line sets atomically, replacing any
// prior selection for the (choice, user) pair.
type SelectionService struct {
	tx  repo.TxManager
	now func() time.Time
}

// NewSelectionService constructs a SelectionService on the given transaction
// manager.
func NewSelectionService(tx repo.TxManager) *SelectionService {
	return &SelectionService{tx: tx, now: time.Now}
}

// Submit validates and commits the user's proposed lines in one transaction.
//
// The referenced items are locked FOR UPDATE before validation, so two
// near-simultaneous submissions on the same item serialize: the second one
// re-reads aggregate quantities after the first has committed and is rejected
// if the global cap no longer fits. Validation always runs against the stored
// state read inside this transaction, never against an earlier snapshot.
//
// On success it returns the committed line set and the monetary total
// (sum of quantity × price, nil prices counting as zero).
func (s *SelectionService) Submit(ctx context.Context, choiceID, userID uuid.UUID, lines []domain.ProposedLine) (domain.SubmitResult, error) {
	var result domain.SubmitResult

	err := s.tx.WithinTx(ctx, func(r repo.Repos) error {
		choice, err := r.Choices.GetByID(ctx, choiceID)
		if err != nil {
			return err
		}

		itemIDs := make([]uuid.UUID, 0, len(lines))
		for _, l := range lines {
			itemIDs = append(itemIDs, l.ItemID)
		}

		items, err := r.Items.LockByIDs(ctx, choiceID, itemIDs)
		if err != nil {
			return err
		}

		takenByOthers, err := r.Selections.QuantityTotals(ctx, choiceID, userID)
		if err != nil {
			return err
		}

		if err := validateLines(choice, items, takenByOthers, lines, s.now()); err != nil {
			return err
		}

		sel, err := r.Selections.Upsert(ctx, choiceID, userID)
		if err != nil {
			return err
		}

		stored, err := r.Selections.ReplaceLines(ctx, sel.ID, lines)
		if err != nil {
			return err
		}
		sel.Lines = stored

		result = domain.SubmitResult{
			Selection: sel,
			Total:     linesTotal(items, stored),
		}
		return nil
	})
	if err != nil {
		return domain.SubmitResult{}, fmt.Errorf("service.SelectionService.Submit: %w", err)
	}

	return result, nil
}

// Withdraw deletes the user's selection entirely. Allowed only while the
// choice is OPEN and not archived.
func (s *SelectionService) Withdraw(ctx context.Context, choiceID, userID uuid.UUID) error {
	err := s.tx.WithinTx(ctx, func(r repo.Repos) error {
		choice, err := r.Choices.GetByID(ctx, choiceID)
		if err != nil {
			return err
		}
		if choice.Archived() {
			return domain.ErrChoiceArchived
		}
		if choice.Status == domain.ChoiceClosed {
			return domain.ErrChoiceClosed
		}

		return r.Selections.Delete(ctx, choiceID, userID)
	})
	if err != nil {
		return fmt.Errorf("service.SelectionService.Withdraw: %w", err)
	}
	return nil
}

// SetNote attaches a free-text note to the user's selection, creating a
// zero-line selection if none exists. Notes carry no lines, so capacity
// validation is skipped; only the choice's lifecycle state is checked.
func (s *SelectionService) SetNote(ctx context.Context, choiceID, userID uuid.UUID, note string) (domain.Selection, error) {
	var sel domain.Selection

	err := s.tx.WithinTx(ctx, func(r repo.Repos) error {
		choice, err := r.Choices.GetByID(ctx, choiceID)
		if err != nil {
			return err
		}
		if err := choice.AcceptsSelections(s.now()); err != nil {
			return err
		}

		sel, err = r.Selections.SetNote(ctx, choiceID, userID, note)
		return err
	})
	if err != nil {
		return domain.Selection{}, fmt.Errorf("service.SelectionService.SetNote: %w", err)
	}

	return sel, nil
}
