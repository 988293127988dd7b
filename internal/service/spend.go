package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/wayfare-app/backend/internal/domain"
	"github.com/wayfare-app/backend/internal/repo"
)

// spend_items.description is varchar(255); longer summaries are cut.
const maxSpendDescription = 255

// SpendService derives a group expense from a choice's aggregated
// selections, in the trip's base currency at a 1.0 exchange rate.
type SpendService struct {
	tx repo.TxManager
}

// NewSpendService constructs a SpendService on the given transaction manager.
func NewSpendService(tx repo.TxManager) *SpendService {
	return &SpendService{tx: tx}
}

// CreateFromChoice snapshots the choice's priced selections into a spend.
// Lines on unpriced items and opt-out selections carry no money and are
// skipped; if nothing priced remains the derivation fails with
// domain.ErrZeroSpendTotal instead of writing an empty expense.
// An empty title defaults to the choice name.
func (s *SpendService) CreateFromChoice(ctx context.Context, actorID, choiceID uuid.UUID, mode domain.SpendMode, title string) (domain.Spend, error) {
	if !mode.Valid() {
		return domain.Spend{}, fmt.Errorf("%w: unknown spend mode %q", domain.ErrValidation, mode)
	}

	var spend domain.Spend
	err := s.tx.WithinTx(ctx, func(r repo.Repos) error {
		choice, err := r.Choices.GetByID(ctx, choiceID)
		if err != nil {
			return err
		}
		if choice.Archived() {
			return domain.ErrChoiceArchived
		}

		views, err := r.Selections.ListViews(ctx, choiceID)
		if err != nil {
			return err
		}

		items, shares, total := allocate(mode, views)
		if total.IsZero() {
			return domain.ErrZeroSpendTotal
		}

		currency, err := r.Trips.Currency(ctx, choice.TripID)
		if err != nil {
			return err
		}

		if strings.TrimSpace(title) == "" {
			title = choice.Name
		}
		spend, err = r.Spends.CreateSpend(ctx, domain.Spend{
			TripID:       choice.TripID,
			ChoiceID:     choiceID,
			Title:        title,
			Amount:       total,
			Currency:     currency,
			ExchangeRate: decimal.NewFromInt(1),
			CreatedBy:    actorID,
		})
		if err != nil {
			return err
		}

		spend.Items, err = r.Spends.CreateItems(ctx, spend.ID, items)
		if err != nil {
			return err
		}
		if mode == domain.SpendByUser {
			// Link each share to the item summarizing the same user's order.
			linkShares(shares, spend.Items)
		}
		spend.Shares, err = r.Spends.CreateShares(ctx, spend.ID, shares)
		if err != nil {
			return err
		}

		payload := domain.SpendCreatedPayload{SpendID: spend.ID, Mode: mode}
		err = r.Audits.LogEvent(ctx, domain.AuditEvent{
			EntityKind: entitySpend,
			EntityID:   spend.ID,
			EventType:  "spend.created",
			ActorID:    actorID,
			Payload:    payload,
		})
		if err != nil {
			return err
		}
		return r.Activities.Append(ctx, choiceID, payload)
	})
	if err != nil {
		return domain.Spend{}, fmt.Errorf("service.SpendService.CreateFromChoice: %w", err)
	}
	return spend, nil
}

// allocate turns the joined line set into spend items and shares for the
// given mode. Only lines with a positive price carry money; BY_ITEM emits one
// item per such line and one aggregate share per user, BY_USER one summary
// item per user and one share apiece. Returned shares in BY_USER mode are not
// yet linked to item ids.
func allocate(mode domain.SpendMode, views []domain.SelectionView) ([]domain.SpendItem, []domain.SpendShare, decimal.Decimal) {
	var (
		items     []domain.SpendItem
		sharesOut []domain.SpendShare
		total     = decimal.Zero
	)

	for _, v := range views {
		if v.IsOptOut() {
			continue
		}

		userTotal := decimal.Zero
		var parts []string
		for _, l := range v.Lines {
			if l.Price == nil || !l.Price.IsPositive() || l.ItemType == domain.ItemNoParticipation {
				continue
			}
			amount := l.Price.Mul(decimal.NewFromInt(int64(l.Quantity)))
			desc := fmt.Sprintf("%dx %s", l.Quantity, l.ItemName)
			userTotal = userTotal.Add(amount)
			parts = append(parts, desc)

			if mode == domain.SpendByItem {
				items = append(items, domain.SpendItem{
					UserID:      v.UserID,
					Description: truncate(desc, maxSpendDescription),
					Amount:      amount,
				})
			}
		}
		if userTotal.IsZero() {
			continue
		}

		if mode == domain.SpendByUser {
			items = append(items, domain.SpendItem{
				UserID:      v.UserID,
				Description: truncate(strings.Join(parts, ", "), maxSpendDescription),
				Amount:      userTotal,
			})
		}
		sharesOut = append(sharesOut, domain.SpendShare{
			UserID: v.UserID,
			Amount: userTotal,
		})
		total = total.Add(userTotal)
	}

	return items, sharesOut, total
}

// linkShares sets each share's SpendItemID to the stored summary item of the
// same user. Used in BY_USER mode, where users and items are one-to-one.
func linkShares(shares []domain.SpendShare, items []domain.SpendItem) {
	byUser := make(map[uuid.UUID]uuid.UUID, len(items))
	for _, it := range items {
		byUser[it.UserID] = it.ID
	}
	for i := range shares {
		if id, ok := byUser[shares[i].UserID]; ok {
			itemID := id
			shares[i].SpendItemID = &itemID
		}
	}
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max])
}
