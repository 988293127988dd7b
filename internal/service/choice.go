package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/wayfare-app/backend/internal/domain"
	"github.com/wayfare-app/backend/internal/repo"
)

// Audit entity kinds and event types emitted by the choice store.
const (
	entityChoice     = "choice"
	entityChoiceItem = "choice_item"
	entitySpend      = "spend"
)

// ChoiceService implements the choice store: lifecycle and item management
// for choices. Every mutation runs in one transaction together with its
// audit event and activity record, so a failed mutation leaves no trace.
type ChoiceService struct {
	tx  repo.TxManager
	now func() time.Time
}

// NewChoiceService constructs a ChoiceService on the given transaction manager.
func NewChoiceService(tx repo.TxManager) *ChoiceService {
	return &ChoiceService{tx: tx, now: time.Now}
}

// ChoiceDetail is the per-caller view of a choice: the choice itself, its
// selectable (active) items, the caller's own selection if any, and the
// caller's monetary total.
type ChoiceDetail struct {
	Choice      domain.Choice       `json:"choice"`
	Items       []domain.ChoiceItem `json:"items"`
	MySelection *domain.Selection   `json:"my_selection,omitempty"`
	MyTotal     decimal.Decimal     `json:"my_total"`
}

// Create validates and persists a new choice, defaulting visibility to TRIP
// and status to OPEN.
func (s *ChoiceService) Create(ctx context.Context, choice domain.Choice) (domain.Choice, error) {
	if strings.TrimSpace(choice.Name) == "" {
		return domain.Choice{}, fmt.Errorf("%w: name is required", domain.ErrValidation)
	}
	if choice.Visibility == "" {
		choice.Visibility = domain.VisibilityTrip
	}
	choice.Status = domain.ChoiceOpen

	var created domain.Choice
	err := s.tx.WithinTx(ctx, func(r repo.Repos) error {
		var err error
		created, err = r.Choices.Create(ctx, choice)
		if err != nil {
			return err
		}
		return s.record(ctx, r, created, choice.CreatedBy, "choice.created",
			domain.ChoiceCreatedPayload{Name: created.Name})
	})
	if err != nil {
		return domain.Choice{}, fmt.Errorf("service.ChoiceService.Create: %w", err)
	}
	return created, nil
}

// Update overwrites a choice's metadata (name, description, event time,
// place, visibility). Archived choices reject it.
func (s *ChoiceService) Update(ctx context.Context, actorID uuid.UUID, choice domain.Choice) (domain.Choice, error) {
	if strings.TrimSpace(choice.Name) == "" {
		return domain.Choice{}, fmt.Errorf("%w: name is required", domain.ErrValidation)
	}

	var updated domain.Choice
	err := s.tx.WithinTx(ctx, func(r repo.Repos) error {
		current, err := r.Choices.GetByID(ctx, choice.ID)
		if err != nil {
			return err
		}
		if current.Archived() {
			return domain.ErrChoiceArchived
		}

		updated, err = r.Choices.Update(ctx, choice)
		if err != nil {
			return err
		}
		return s.record(ctx, r, updated, actorID, "choice.updated",
			domain.ChoiceUpdatedPayload{
				Name:        updated.Name,
				Description: updated.Description,
				EventAt:     updated.EventAt,
				Place:       updated.Place,
			})
	})
	if err != nil {
		return domain.Choice{}, fmt.Errorf("service.ChoiceService.Update: %w", err)
	}
	return updated, nil
}

// SetStatus opens or closes a choice and (re)sets its deadline.
// Status transitions are organizer-only.
func (s *ChoiceService) SetStatus(ctx context.Context, actorID, choiceID uuid.UUID, status domain.ChoiceStatus, deadline *time.Time) (domain.Choice, error) {
	if status != domain.ChoiceOpen && status != domain.ChoiceClosed {
		return domain.Choice{}, fmt.Errorf("%w: unknown status %q", domain.ErrValidation, status)
	}

	var updated domain.Choice
	err := s.tx.WithinTx(ctx, func(r repo.Repos) error {
		current, err := r.Choices.GetByID(ctx, choiceID)
		if err != nil {
			return err
		}
		if current.Archived() {
			return domain.ErrChoiceArchived
		}
		if current.CreatedBy != actorID {
			return fmt.Errorf("%w: only the organizer can change status", domain.ErrForbidden)
		}

		updated, err = r.Choices.SetStatus(ctx, choiceID, status, deadline)
		if err != nil {
			return err
		}
		return s.record(ctx, r, updated, actorID, "choice.status_changed",
			domain.StatusChangedPayload{Status: status, Deadline: deadline})
	})
	if err != nil {
		return domain.Choice{}, fmt.Errorf("service.ChoiceService.SetStatus: %w", err)
	}
	return updated, nil
}

// Archive soft-deletes a choice. Organizer-only.
func (s *ChoiceService) Archive(ctx context.Context, actorID, choiceID uuid.UUID) (domain.Choice, error) {
	return s.setArchived(ctx, actorID, choiceID, true)
}

// Restore clears a choice's archived state. Organizer-only.
func (s *ChoiceService) Restore(ctx context.Context, actorID, choiceID uuid.UUID) (domain.Choice, error) {
	return s.setArchived(ctx, actorID, choiceID, false)
}

func (s *ChoiceService) setArchived(ctx context.Context, actorID, choiceID uuid.UUID, archived bool) (domain.Choice, error) {
	var updated domain.Choice
	err := s.tx.WithinTx(ctx, func(r repo.Repos) error {
		current, err := r.Choices.GetByID(ctx, choiceID)
		if err != nil {
			return err
		}
		if current.CreatedBy != actorID {
			return fmt.Errorf("%w: only the organizer can archive or restore", domain.ErrForbidden)
		}

		updated, err = r.Choices.SetArchived(ctx, choiceID, archived)
		if err != nil {
			return err
		}

		if archived {
			return s.record(ctx, r, updated, actorID, "choice.archived",
				domain.ChoiceArchivedPayload{Name: updated.Name})
		}
		return s.record(ctx, r, updated, actorID, "choice.restored",
			domain.ChoiceRestoredPayload{Name: updated.Name})
	})
	if err != nil {
		return domain.Choice{}, fmt.Errorf("service.ChoiceService.setArchived: %w", err)
	}
	return updated, nil
}

// Delete hard-deletes a choice; items, selections, and lines cascade.
// The audit event is written before the row disappears so the choice name
// survives in the trail. Organizer-only.
func (s *ChoiceService) Delete(ctx context.Context, actorID, choiceID uuid.UUID) error {
	err := s.tx.WithinTx(ctx, func(r repo.Repos) error {
		current, err := r.Choices.GetByID(ctx, choiceID)
		if err != nil {
			return err
		}
		if current.CreatedBy != actorID {
			return fmt.Errorf("%w: only the organizer can delete", domain.ErrForbidden)
		}

		// Audit first: after the delete the name is gone.
		err = r.Audits.LogEvent(ctx, domain.AuditEvent{
			EntityKind: entityChoice,
			EntityID:   choiceID,
			EventType:  "choice.deleted",
			ActorID:    actorID,
			Payload:    domain.ChoiceDeletedPayload{Name: current.Name},
		})
		if err != nil {
			return err
		}

		return r.Choices.Delete(ctx, choiceID)
	})
	if err != nil {
		return fmt.Errorf("service.ChoiceService.Delete: %w", err)
	}
	return nil
}

// ListByTrip returns a trip's choices with the given filter and pagination.
func (s *ChoiceService) ListByTrip(ctx context.Context, tripID uuid.UUID, filter domain.ChoiceListFilter, p domain.PaginationParams) ([]domain.Choice, int64, error) {
	var (
		choices []domain.Choice
		total   int64
	)
	err := s.tx.WithinTx(ctx, func(r repo.Repos) error {
		var err error
		choices, total, err = r.Choices.ListByTrip(ctx, tripID, filter, p)
		return err
	})
	if err != nil {
		return nil, 0, fmt.Errorf("service.ChoiceService.ListByTrip: %w", err)
	}
	if choices == nil {
		choices = []domain.Choice{}
	}
	return choices, total, nil
}

// GetDetail returns the per-caller view: the choice, its active items, and
// the caller's own selection with its monetary total.
func (s *ChoiceService) GetDetail(ctx context.Context, choiceID, userID uuid.UUID) (ChoiceDetail, error) {
	var detail ChoiceDetail

	err := s.tx.WithinTx(ctx, func(r repo.Repos) error {
		choice, err := r.Choices.GetByID(ctx, choiceID)
		if err != nil {
			return err
		}
		detail.Choice = choice

		// Load all items: deactivated ones are hidden from the selectable
		// set but still needed to price the caller's existing lines.
		all, err := r.Items.ListByChoice(ctx, choiceID, false)
		if err != nil {
			return err
		}
		byID := make(map[uuid.UUID]domain.ChoiceItem, len(all))
		detail.Items = []domain.ChoiceItem{}
		for _, it := range all {
			byID[it.ID] = it
			if it.IsActive {
				detail.Items = append(detail.Items, it)
			}
		}

		sel, err := r.Selections.GetByChoiceAndUser(ctx, choiceID, userID)
		switch {
		case errors.Is(err, domain.ErrNotFound):
			detail.MyTotal = decimal.Zero
			return nil
		case err != nil:
			return err
		}

		detail.MySelection = &sel
		detail.MyTotal = linesTotal(byID, sel.Lines)
		return nil
	})
	if err != nil {
		return ChoiceDetail{}, fmt.Errorf("service.ChoiceService.GetDetail: %w", err)
	}

	return detail, nil
}

// CreateItem adds an option to a choice. The choice must be OPEN and not
// archived. Creating a NO_PARTICIPATION item when one already exists fails
// with domain.ErrOptOutExists; use EnsureOptOutItem for the lazy singleton.
func (s *ChoiceService) CreateItem(ctx context.Context, actorID uuid.UUID, item domain.ChoiceItem) (domain.ChoiceItem, error) {
	if err := validateItem(item); err != nil {
		return domain.ChoiceItem{}, err
	}
	if item.Type == "" {
		item.Type = domain.ItemNormal
	}
	item.IsActive = true

	var created domain.ChoiceItem
	err := s.tx.WithinTx(ctx, func(r repo.Repos) error {
		choice, err := s.mutableChoice(ctx, r, item.ChoiceID)
		if err != nil {
			return err
		}

		created, err = r.Items.Create(ctx, item)
		if err != nil {
			return err
		}
		return s.recordItem(ctx, r, choice, created, actorID, "choice_item.created",
			domain.ItemCreatedPayload{ItemID: created.ID, Name: created.Name, Type: created.Type})
	})
	if err != nil {
		return domain.ChoiceItem{}, fmt.Errorf("service.ChoiceService.CreateItem: %w", err)
	}
	return created, nil
}

// UpdateItem overwrites an item's mutable fields. The choice must be OPEN
// and not archived.
func (s *ChoiceService) UpdateItem(ctx context.Context, actorID uuid.UUID, item domain.ChoiceItem) (domain.ChoiceItem, error) {
	if err := validateItem(item); err != nil {
		return domain.ChoiceItem{}, err
	}

	var updated domain.ChoiceItem
	err := s.tx.WithinTx(ctx, func(r repo.Repos) error {
		current, err := r.Items.GetByID(ctx, item.ID)
		if err != nil {
			return err
		}
		choice, err := s.mutableChoice(ctx, r, current.ChoiceID)
		if err != nil {
			return err
		}

		updated, err = r.Items.Update(ctx, item)
		if err != nil {
			return err
		}
		return s.recordItem(ctx, r, choice, updated, actorID, "choice_item.updated",
			domain.ItemUpdatedPayload{ItemID: updated.ID, Name: updated.Name})
	})
	if err != nil {
		return domain.ChoiceItem{}, fmt.Errorf("service.ChoiceService.UpdateItem: %w", err)
	}
	return updated, nil
}

// DeactivateItem soft-disables an item. It disappears from the selectable
// set but stays visible to reporting.
func (s *ChoiceService) DeactivateItem(ctx context.Context, actorID, itemID uuid.UUID) (domain.ChoiceItem, error) {
	var updated domain.ChoiceItem
	err := s.tx.WithinTx(ctx, func(r repo.Repos) error {
		current, err := r.Items.GetByID(ctx, itemID)
		if err != nil {
			return err
		}
		choice, err := s.mutableChoice(ctx, r, current.ChoiceID)
		if err != nil {
			return err
		}

		updated, err = r.Items.Deactivate(ctx, itemID)
		if err != nil {
			return err
		}
		return s.recordItem(ctx, r, choice, updated, actorID, "choice_item.deactivated",
			domain.ItemDeactivatedPayload{ItemID: updated.ID, Name: updated.Name})
	})
	if err != nil {
		return domain.ChoiceItem{}, fmt.Errorf("service.ChoiceService.DeactivateItem: %w", err)
	}
	return updated, nil
}

// EnsureOptOutItem returns the choice's NO_PARTICIPATION singleton, creating
// it lazily on first call. Calling it twice returns the same item both times;
// a concurrent double-create loses the unique-index race and re-fetches.
func (s *ChoiceService) EnsureOptOutItem(ctx context.Context, actorID, choiceID uuid.UUID) (domain.ChoiceItem, error) {
	var item domain.ChoiceItem
	err := s.tx.WithinTx(ctx, func(r repo.Repos) error {
		choice, err := s.mutableChoice(ctx, r, choiceID)
		if err != nil {
			return err
		}

		item, err = r.Items.FindOptOut(ctx, choiceID)
		if err == nil {
			return nil
		}
		if !errors.Is(err, domain.ErrNotFound) {
			return err
		}

		item, err = r.Items.Create(ctx, domain.ChoiceItem{
			ChoiceID: choiceID,
			Name:     "Not participating",
			IsActive: true,
			Type:     domain.ItemNoParticipation,
		})
		if errors.Is(err, domain.ErrOptOutExists) {
			// Lost the creation race; the singleton exists now.
			item, err = r.Items.FindOptOut(ctx, choiceID)
		}
		if err != nil {
			return err
		}
		return s.recordItem(ctx, r, choice, item, actorID, "choice_item.created",
			domain.ItemCreatedPayload{ItemID: item.ID, Name: item.Name, Type: item.Type})
	})
	if err != nil {
		return domain.ChoiceItem{}, fmt.Errorf("service.ChoiceService.EnsureOptOutItem: %w", err)
	}
	return item, nil
}

// mutableChoice loads a choice and rejects item mutation when it is archived
// or closed.
func (s *ChoiceService) mutableChoice(ctx context.Context, r repo.Repos, choiceID uuid.UUID) (domain.Choice, error) {
	choice, err := r.Choices.GetByID(ctx, choiceID)
	if err != nil {
		return domain.Choice{}, err
	}
	if choice.Archived() {
		return domain.Choice{}, domain.ErrChoiceArchived
	}
	if choice.Status == domain.ChoiceClosed {
		return domain.Choice{}, domain.ErrChoiceClosed
	}
	return choice, nil
}

// record writes the audit event and activity record that accompany a choice
// mutation, inside the same transaction as the mutation itself.
func (s *ChoiceService) record(ctx context.Context, r repo.Repos, choice domain.Choice, actorID uuid.UUID, eventType string, payload domain.ActivityPayload) error {
	err := r.Audits.LogEvent(ctx, domain.AuditEvent{
		EntityKind: entityChoice,
		EntityID:   choice.ID,
		EventType:  eventType,
		ActorID:    actorID,
		Payload:    payload,
	})
	if err != nil {
		return err
	}
	return r.Activities.Append(ctx, choice.ID, payload)
}

// recordItem is record for item mutations: the audit event targets the item,
// the activity record stays on the parent choice.
func (s *ChoiceService) recordItem(ctx context.Context, r repo.Repos, choice domain.Choice, item domain.ChoiceItem, actorID uuid.UUID, eventType string, payload domain.ActivityPayload) error {
	err := r.Audits.LogEvent(ctx, domain.AuditEvent{
		EntityKind: entityChoiceItem,
		EntityID:   item.ID,
		EventType:  eventType,
		ActorID:    actorID,
		Payload:    payload,
	})
	if err != nil {
		return err
	}
	return r.Activities.Append(ctx, choice.ID, payload)
}

// validateItem enforces the field rules shared by CreateItem and UpdateItem.
func validateItem(item domain.ChoiceItem) error {
	if strings.TrimSpace(item.Name) == "" {
		return fmt.Errorf("%w: name is required", domain.ErrValidation)
	}
	if item.Price != nil && item.Price.IsNegative() {
		return fmt.Errorf("%w: price must not be negative", domain.ErrValidation)
	}
	if item.MaxPerUser != nil && *item.MaxPerUser < 1 {
		return fmt.Errorf("%w: max_per_user must be at least 1", domain.ErrValidation)
	}
	if item.MaxTotal != nil && *item.MaxTotal < 1 {
		return fmt.Errorf("%w: max_total must be at least 1", domain.ErrValidation)
	}
	return nil
}
