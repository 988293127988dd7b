package service_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wayfare-app/backend/internal/domain"
	"github.com/wayfare-app/backend/internal/repo"
	"github.com/wayfare-app/backend/internal/service"
)

// spendRepos wires a choice and view set plus an in-memory spend store that
// assigns ids the way the real repo does.
func spendRepos(choice domain.Choice, views []domain.SelectionView, audits *mockAuditRepo, activities *mockActivityRepo) repo.Repos {
	return repo.Repos{
		Choices: &mockChoiceRepo{
			getByID: func(_ context.Context, id uuid.UUID) (domain.Choice, error) {
				if id != choice.ID {
					return domain.Choice{}, domain.ErrNotFound
				}
				return choice, nil
			},
		},
		Selections: &mockSelectionRepo{
			listViews: func(_ context.Context, _ uuid.UUID) ([]domain.SelectionView, error) {
				return views, nil
			},
		},
		Trips: &mockTripRepo{
			currency: func(_ context.Context, _ uuid.UUID) (string, error) { return "EUR", nil },
		},
		Spends: &mockSpendRepo{
			createSpend: func(_ context.Context, spend domain.Spend) (domain.Spend, error) {
				spend.ID = uuid.New()
				return spend, nil
			},
			createItems: func(_ context.Context, spendID uuid.UUID, items []domain.SpendItem) ([]domain.SpendItem, error) {
				for i := range items {
					items[i].ID = uuid.New()
					items[i].SpendID = spendID
				}
				return items, nil
			},
			createShares: func(_ context.Context, spendID uuid.UUID, shares []domain.SpendShare) ([]domain.SpendShare, error) {
				for i := range shares {
					shares[i].ID = uuid.New()
					shares[i].SpendID = spendID
				}
				return shares, nil
			},
		},
		Audits:     audits,
		Activities: activities,
	}
}

// Fixture: Alice 2x pizza (25.00) + salad (unpriced), Bob 1x pizza (12.50),
// Carol opted out.
func spendFixture() (domain.Choice, []domain.SelectionView, uuid.UUID, uuid.UUID) {
	choice := openChoice()
	pizza := pizzaItem(choice.ID)
	alice, bob, carol := uuid.New(), uuid.New(), uuid.New()
	views := []domain.SelectionView{
		{UserID: alice, UserName: "Alice", Lines: []domain.LineView{
			{ItemID: pizza.ID, ItemName: "Pizza Margherita", ItemType: domain.ItemNormal, Price: pizza.Price, Quantity: 2},
			{ItemID: uuid.New(), ItemName: "Salad", ItemType: domain.ItemNormal, Quantity: 1},
		}},
		{UserID: bob, UserName: "Bob", Lines: []domain.LineView{
			{ItemID: pizza.ID, ItemName: "Pizza Margherita", ItemType: domain.ItemNormal, Price: pizza.Price, Quantity: 1},
		}},
		{UserID: carol, UserName: "Carol", Lines: []domain.LineView{
			{ItemID: uuid.New(), ItemName: "Not participating", ItemType: domain.ItemNoParticipation, Quantity: 1},
		}},
	}
	return choice, views, alice, bob
}

func TestSpendService_CreateFromChoice_ByItem(t *testing.T) {
	choice, views, alice, bob := spendFixture()
	audits, activities := &mockAuditRepo{}, &mockActivityRepo{}
	svc := service.NewSpendService(fixedTx(spendRepos(choice, views, audits, activities)))

	spend, err := svc.CreateFromChoice(context.Background(), uuid.New(), choice.ID, domain.SpendByItem, "")
	require.NoError(t, err)

	assert.Equal(t, choice.Name, spend.Title, "empty title falls back to choice name")
	assert.Equal(t, "EUR", spend.Currency)
	assert.True(t, spend.ExchangeRate.Equal(decimal.NewFromInt(1)))
	assert.True(t, spend.Amount.Equal(decimal.RequireFromString("37.50")))

	// One item per priced line; Alice's unpriced salad contributes nothing.
	require.Len(t, spend.Items, 2)
	assert.Equal(t, "2x Pizza Margherita", spend.Items[0].Description)
	assert.True(t, spend.Items[0].Amount.Equal(decimal.RequireFromString("25.00")))
	assert.Equal(t, "1x Pizza Margherita", spend.Items[1].Description)

	// One aggregate share per participating user, none linked to items.
	require.Len(t, spend.Shares, 2)
	assert.Equal(t, alice, spend.Shares[0].UserID)
	assert.True(t, spend.Shares[0].Amount.Equal(decimal.RequireFromString("25.00")))
	assert.Equal(t, bob, spend.Shares[1].UserID)
	assert.Nil(t, spend.Shares[0].SpendItemID)

	require.Len(t, audits.events, 1)
	assert.Equal(t, "spend.created", audits.events[0].EventType)
	require.Len(t, activities.appended, 1)
	assert.Equal(t, domain.ActivitySpendCreated, activities.appended[0].ActivityAction())
}

func TestSpendService_CreateFromChoice_ByUser(t *testing.T) {
	choice, views, alice, _ := spendFixture()
	svc := service.NewSpendService(fixedTx(spendRepos(choice, views, &mockAuditRepo{}, &mockActivityRepo{})))

	spend, err := svc.CreateFromChoice(context.Background(), uuid.New(), choice.ID, domain.SpendByUser, "Friday dinner")
	require.NoError(t, err)

	assert.Equal(t, "Friday dinner", spend.Title)
	assert.True(t, spend.Amount.Equal(decimal.RequireFromString("37.50")))

	// One summary item per user; each share links to its user's item.
	require.Len(t, spend.Items, 2)
	assert.Equal(t, alice, spend.Items[0].UserID)
	assert.Equal(t, "2x Pizza Margherita", spend.Items[0].Description)

	require.Len(t, spend.Shares, 2)
	require.NotNil(t, spend.Shares[0].SpendItemID)
	assert.Equal(t, spend.Items[0].ID, *spend.Shares[0].SpendItemID)
	require.NotNil(t, spend.Shares[1].SpendItemID)
	assert.Equal(t, spend.Items[1].ID, *spend.Shares[1].SpendItemID)
}

func TestSpendService_CreateFromChoice_ByItem_SkipsZeroPricedLines(t *testing.T) {
	choice := openChoice()
	pizza := pizzaItem(choice.ID)
	free := decimal.Zero
	views := []domain.SelectionView{
		{UserID: uuid.New(), UserName: "Alice", Lines: []domain.LineView{
			{ItemID: uuid.New(), ItemName: "Free water", ItemType: domain.ItemNormal, Price: &free, Quantity: 3},
			{ItemID: pizza.ID, ItemName: "Pizza Margherita", ItemType: domain.ItemNormal, Price: pizza.Price, Quantity: 2},
		}},
	}
	svc := service.NewSpendService(fixedTx(spendRepos(choice, views, &mockAuditRepo{}, &mockActivityRepo{})))

	spend, err := svc.CreateFromChoice(context.Background(), uuid.New(), choice.ID, domain.SpendByItem, "")
	require.NoError(t, err)

	// A line priced exactly 0.00 carries no money and gets no expense item.
	require.Len(t, spend.Items, 1)
	assert.Equal(t, "2x Pizza Margherita", spend.Items[0].Description)
	assert.True(t, spend.Amount.Equal(decimal.RequireFromString("25.00")))
	require.Len(t, spend.Shares, 1)
	assert.True(t, spend.Shares[0].Amount.Equal(decimal.RequireFromString("25.00")))
}

func TestSpendService_CreateFromChoice_ZeroTotal(t *testing.T) {
	// Only unpriced and opt-out lines: no money to allocate.
	choice := openChoice()
	views := []domain.SelectionView{
		{UserID: uuid.New(), Lines: []domain.LineView{
			{ItemID: uuid.New(), ItemName: "Salad", ItemType: domain.ItemNormal, Quantity: 2},
		}},
	}
	svc := service.NewSpendService(fixedTx(spendRepos(choice, views, &mockAuditRepo{}, &mockActivityRepo{})))

	_, err := svc.CreateFromChoice(context.Background(), uuid.New(), choice.ID, domain.SpendByItem, "")

	assert.ErrorIs(t, err, domain.ErrZeroSpendTotal)
}

func TestSpendService_CreateFromChoice_InvalidMode(t *testing.T) {
	choice, views, _, _ := spendFixture()
	svc := service.NewSpendService(fixedTx(spendRepos(choice, views, &mockAuditRepo{}, &mockActivityRepo{})))

	_, err := svc.CreateFromChoice(context.Background(), uuid.New(), choice.ID, "BY_MOOD", "")

	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestSpendService_CreateFromChoice_ArchivedChoice(t *testing.T) {
	choice, views, _, _ := spendFixture()
	now := choice.CreatedAt
	choice.ArchivedAt = &now
	svc := service.NewSpendService(fixedTx(spendRepos(choice, views, &mockAuditRepo{}, &mockActivityRepo{})))

	_, err := svc.CreateFromChoice(context.Background(), uuid.New(), choice.ID, domain.SpendByItem, "")

	assert.ErrorIs(t, err, domain.ErrChoiceArchived)
}
