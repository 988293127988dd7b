package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/wayfare-app/backend/internal/domain"
	"github.com/wayfare-app/backend/internal/repo"
)

// ReportService builds the item-centric and user-centric aggregate views
// over a choice's selections. Both reports are derived in memory from the
// same joined line set, so their grand totals always agree.
type ReportService struct {
	tx repo.TxManager
}

// NewReportService constructs a ReportService on the given transaction manager.
func NewReportService(tx repo.TxManager) *ReportService {
	return &ReportService{tx: tx}
}

// ItemsReport aggregates the choice's selections per item.
func (s *ReportService) ItemsReport(ctx context.Context, choiceID uuid.UUID) (domain.ItemsReport, error) {
	var (
		items []domain.ChoiceItem
		views []domain.SelectionView
	)
	err := s.tx.WithinTx(ctx, func(r repo.Repos) error {
		if _, err := r.Choices.GetByID(ctx, choiceID); err != nil {
			return err
		}
		var err error
		items, err = r.Items.ListByChoice(ctx, choiceID, false)
		if err != nil {
			return err
		}
		views, err = r.Selections.ListViews(ctx, choiceID)
		return err
	})
	if err != nil {
		return domain.ItemsReport{}, fmt.Errorf("service.ReportService.ItemsReport: %w", err)
	}
	return buildItemsReport(choiceID, items, views), nil
}

// UsersReport aggregates the choice's selections per responding user.
func (s *ReportService) UsersReport(ctx context.Context, choiceID uuid.UUID) (domain.UsersReport, error) {
	var views []domain.SelectionView
	err := s.tx.WithinTx(ctx, func(r repo.Repos) error {
		if _, err := r.Choices.GetByID(ctx, choiceID); err != nil {
			return err
		}
		var err error
		views, err = r.Selections.ListViews(ctx, choiceID)
		return err
	})
	if err != nil {
		return domain.UsersReport{}, fmt.Errorf("service.ReportService.UsersReport: %w", err)
	}
	return buildUsersReport(choiceID, views), nil
}

// buildItemsReport folds the joined line set into one row per item. Items
// nobody selected still get a row with zero quantity, and deactivated items
// with historical lines stay visible.
func buildItemsReport(choiceID uuid.UUID, items []domain.ChoiceItem, views []domain.SelectionView) domain.ItemsReport {
	rows := make([]domain.ItemReportRow, len(items))
	index := make(map[uuid.UUID]int, len(items))
	users := make(map[uuid.UUID]map[uuid.UUID]struct{}, len(items))
	for i, it := range items {
		rows[i] = domain.ItemReportRow{
			ItemID:   it.ID,
			Name:     it.Name,
			Type:     it.Type,
			IsActive: it.IsActive,
			Price:    it.Price,
		}
		index[it.ID] = i
		users[it.ID] = make(map[uuid.UUID]struct{})
	}

	grand := decimal.Zero
	priced := false
	for _, v := range views {
		for _, l := range v.Lines {
			i, ok := index[l.ItemID]
			if !ok {
				continue
			}
			rows[i].QtyTotal += l.Quantity
			users[l.ItemID][v.UserID] = struct{}{}
			if l.Price != nil && l.ItemType != domain.ItemNoParticipation {
				line := l.Price.Mul(decimal.NewFromInt(int64(l.Quantity)))
				if rows[i].TotalPrice == nil {
					rows[i].TotalPrice = &decimal.Decimal{}
				}
				sum := rows[i].TotalPrice.Add(line)
				rows[i].TotalPrice = &sum
				grand = grand.Add(line)
				priced = true
			}
		}
	}
	for id, set := range users {
		rows[index[id]].DistinctUsers = len(set)
	}

	report := domain.ItemsReport{ChoiceID: choiceID, Rows: rows}
	if priced && !grand.IsZero() {
		report.GrandTotal = &grand
	}
	return report
}

// buildUsersReport folds the joined line set into one row per responding
// user. Opt-out users keep their row but contribute no lines and no money.
func buildUsersReport(choiceID uuid.UUID, views []domain.SelectionView) domain.UsersReport {
	rows := make([]domain.UserReportRow, 0, len(views))
	grand := decimal.Zero
	priced := false

	for _, v := range views {
		row := domain.UserReportRow{
			UserID: v.UserID,
			Name:   v.UserName,
			Email:  v.UserEmail,
			Note:   v.Note,
			Lines:  []domain.UserReportLine{},
			Total:  decimal.Zero,
		}

		if v.IsOptOut() {
			row.IsNoParticipation = true
			rows = append(rows, row)
			continue
		}

		for _, l := range v.Lines {
			line := domain.UserReportLine{
				ItemName: l.ItemName,
				Quantity: l.Quantity,
				Note:     l.Note,
			}
			if l.Price != nil {
				total := l.Price.Mul(decimal.NewFromInt(int64(l.Quantity)))
				line.LinePrice = &total
				row.Total = row.Total.Add(total)
				grand = grand.Add(total)
				priced = true
			}
			row.Lines = append(row.Lines, line)
		}
		rows = append(rows, row)
	}

	report := domain.UsersReport{ChoiceID: choiceID, Rows: rows}
	if priced && !grand.IsZero() {
		report.GrandTotal = &grand
	}
	return report
}
