package repo

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/wayfare-app/backend/internal/domain"
)

// SpendRepo is the expense-persistence surface spend derivation writes to:
// one spend, its line items, and its per-user cost shares. Settlement and
// FX live in the expense subsystem proper.
type SpendRepo interface {
	// CreateSpend inserts the spend header and returns it with id/created_at
	// populated (Items and Shares are left as passed in).
	CreateSpend(ctx context.Context, spend domain.Spend) (domain.Spend, error)

	// CreateItems bulk-inserts the spend's line items, returning them with
	// ids populated, in input order.
	CreateItems(ctx context.Context, spendID uuid.UUID, items []domain.SpendItem) ([]domain.SpendItem, error)

	// CreateShares bulk-inserts the spend's cost shares.
	CreateShares(ctx context.Context, spendID uuid.UUID, shares []domain.SpendShare) ([]domain.SpendShare, error)
}

type pgSpendRepo struct {
	db db
}

// NewSpendRepo constructs a SpendRepo backed by the provided db handle.
func NewSpendRepo(db db) SpendRepo {
	return &pgSpendRepo{db: db}
}

func (r *pgSpendRepo) CreateSpend(ctx context.Context, spend domain.Spend) (domain.Spend, error) {
	const q = `
		INSERT INTO spends (trip_id, choice_id, title, amount, currency, exchange_rate, created_by)
		VALUES (@trip_id, @choice_id, @title, @amount, @currency, @exchange_rate, @created_by)
		RETURNING id, created_at`

	args := pgx.NamedArgs{
		"trip_id":       spend.TripID,
		"choice_id":     spend.ChoiceID,
		"title":         spend.Title,
		"amount":        spend.Amount,
		"currency":      spend.Currency,
		"exchange_rate": spend.ExchangeRate,
		"created_by":    spend.CreatedBy,
	}

	var id pgtype.UUID
	if err := r.db.QueryRow(ctx, q, args).Scan(&id, &spend.CreatedAt); err != nil {
		return domain.Spend{}, fmt.Errorf("repo.SpendRepo.CreateSpend: %w", err)
	}
	spend.ID = uuid.UUID(id.Bytes)
	return spend, nil
}

func (r *pgSpendRepo) CreateItems(ctx context.Context, spendID uuid.UUID, items []domain.SpendItem) ([]domain.SpendItem, error) {
	const q = `
		INSERT INTO spend_items (spend_id, user_id, description, amount)
		VALUES (@spend_id, @user_id, @description, @amount)
		RETURNING id`

	out := make([]domain.SpendItem, 0, len(items))
	for _, it := range items {
		args := pgx.NamedArgs{
			"spend_id":    spendID,
			"user_id":     it.UserID,
			"description": it.Description,
			"amount":      it.Amount,
		}
		var id pgtype.UUID
		if err := r.db.QueryRow(ctx, q, args).Scan(&id); err != nil {
			return nil, fmt.Errorf("repo.SpendRepo.CreateItems: %w", err)
		}
		it.ID = uuid.UUID(id.Bytes)
		it.SpendID = spendID
		out = append(out, it)
	}
	return out, nil
}

func (r *pgSpendRepo) CreateShares(ctx context.Context, spendID uuid.UUID, shares []domain.SpendShare) ([]domain.SpendShare, error) {
	const q = `
		INSERT INTO spend_shares (spend_id, spend_item_id, user_id, amount)
		VALUES (@spend_id, @spend_item_id, @user_id, @amount)
		RETURNING id`

	out := make([]domain.SpendShare, 0, len(shares))
	for _, sh := range shares {
		args := pgx.NamedArgs{
			"spend_id":      spendID,
			"spend_item_id": sh.SpendItemID, // nil becomes NULL
			"user_id":       sh.UserID,
			"amount":        sh.Amount,
		}
		var id pgtype.UUID
		if err := r.db.QueryRow(ctx, q, args).Scan(&id); err != nil {
			return nil, fmt.Errorf("repo.SpendRepo.CreateShares: %w", err)
		}
		sh.ID = uuid.UUID(id.Bytes)
		sh.SpendID = spendID
		out = append(out, sh)
	}
	return out, nil
}
