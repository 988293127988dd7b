package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/wayfare-app/backend/internal/domain"
	"github.com/wayfare-app/backend/internal/repo"
)

// RespondentService partitions a trip's roster by where each member stands
// on a choice: responded, opted out, or still pending.
type RespondentService struct {
	tx repo.TxManager
}

// NewRespondentService constructs a RespondentService on the given
// transaction manager.
func NewRespondentService(tx repo.TxManager) *RespondentService {
	return &RespondentService{tx: tx}
}

// Respondents partitions the roster of the choice's trip. Every roster
// member lands in exactly one bucket: members with at least one normal line
// are responded, members whose only lines reference the opt-out item are
// opted out, and everyone else is pending. A note-only selection with no
// lines counts as pending.
func (s *RespondentService) Respondents(ctx context.Context, choiceID uuid.UUID) (domain.Respondents, error) {
	var (
		members []domain.Member
		views   []domain.SelectionView
	)
	err := s.tx.WithinTx(ctx, func(r repo.Repos) error {
		choice, err := r.Choices.GetByID(ctx, choiceID)
		if err != nil {
			return err
		}
		members, err = r.Trips.ListMembers(ctx, choice.TripID)
		if err != nil {
			return err
		}
		views, err = r.Selections.ListViews(ctx, choiceID)
		return err
	})
	if err != nil {
		return domain.Respondents{}, fmt.Errorf("service.RespondentService.Respondents: %w", err)
	}
	return partitionRespondents(members, views), nil
}

// partitionRespondents assigns each roster member to exactly one bucket.
func partitionRespondents(members []domain.Member, views []domain.SelectionView) domain.Respondents {
	byUser := make(map[uuid.UUID]domain.SelectionView, len(views))
	for _, v := range views {
		byUser[v.UserID] = v
	}

	res := domain.Respondents{
		Responded: []domain.Member{},
		OptedOut:  []domain.Member{},
		Pending:   []domain.Member{},
	}
	for _, m := range members {
		v, ok := byUser[m.UserID]
		switch {
		case ok && v.HasResponse():
			res.Responded = append(res.Responded, m)
		case ok && v.IsOptOut():
			res.OptedOut = append(res.OptedOut, m)
		default:
			res.Pending = append(res.Pending, m)
		}
	}
	return res
}
