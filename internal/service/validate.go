// Package service contains the business logic for the choice engine.
// Services validate inputs, enforce capacity and lifecycle rules, and
// orchestrate repo calls. No SQL lives here — services depend on repo
// interfaces, not implementations.
package service

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/wayfare-app/backend/internal/domain"
)

// validateLines decides admit/reject for a proposed line set before any write
// occurs. It is a pure function over already-loaded state; the submit
// transaction calls it with items freshly locked FOR UPDATE and totals read
// inside the same transaction, which closes the read/write race window.
//
// takenByOthers holds per-item quantity sums across every OTHER user's stored
// lines. The acting user's own prior lines are deliberately absent: a
// submission replaces them, so they must not count toward the cap they are
// about to vacate.
//
// Nothing is ever coerced; a quantity over a cap is rejected, never clamped.
func validateLines(choice domain.Choice, items map[uuid.UUID]domain.ChoiceItem, takenByOthers map[uuid.UUID]int, lines []domain.ProposedLine, now time.Time) error {
	if err := choice.AcceptsSelections(now); err != nil {
		return err
	}
	if len(lines) == 0 {
		return fmt.Errorf("%w: at least one line is required", domain.ErrValidation)
	}

	seen := make(map[uuid.UUID]bool, len(lines))
	optOut := false
	for _, line := range lines {
		if line.Quantity <= 0 {
			return fmt.Errorf("%w: quantity must be positive", domain.ErrValidation)
		}
		if seen[line.ItemID] {
			return fmt.Errorf("%w: item listed more than once", domain.ErrValidation)
		}
		seen[line.ItemID] = true

		item, ok := items[line.ItemID]
		if !ok {
			return fmt.Errorf("item %s: %w", line.ItemID, domain.ErrNotFound)
		}
		if !item.IsActive {
			return &domain.InactiveItemError{ItemName: item.Name}
		}

		if item.MaxPerUser != nil && line.Quantity > *item.MaxPerUser {
			return &domain.CapacityError{
				ItemName:  item.Name,
				Scope:     domain.CapacityPerUser,
				Limit:     *item.MaxPerUser,
				Requested: line.Quantity,
			}
		}

		if item.MaxTotal != nil {
			current := takenByOthers[item.ID]
			if current+line.Quantity > *item.MaxTotal {
				return &domain.CapacityError{
					ItemName:  item.Name,
					Scope:     domain.CapacityTotal,
					Limit:     *item.MaxTotal,
					Current:   current,
					Requested: line.Quantity,
				}
			}
		}

		if item.Type == domain.ItemNoParticipation {
			optOut = true
		}
	}

	if optOut && len(lines) > 1 {
		return domain.ErrOptOutExclusive
	}

	return nil
}

// linesTotal computes the monetary total of a line set against the given
// items, treating missing prices as zero.
func linesTotal(items map[uuid.UUID]domain.ChoiceItem, lines []domain.SelectionLine) decimal.Decimal {
	total := decimal.Zero
	for _, l := range lines {
		if item, ok := items[l.ItemID]; ok {
			total = total.Add(item.LineTotal(l.Quantity))
		}
	}
	return total
}
