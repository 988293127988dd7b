package repo_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wayfare-app/backend/internal/domain"
)

func choiceFixture(tripID uuid.UUID) domain.Choice {
	eventAt := time.Date(2026, 9, 12, 19, 0, 0, 0, time.UTC)
	return domain.Choice{
		TripID:      tripID,
		Name:        "Pizza night",
		Description: "Order together",
		EventAt:     &eventAt,
		Place:       "Campground A",
		Visibility:  domain.VisibilityTrip,
		Status:      domain.ChoiceOpen,
		CreatedBy:   uuid.New(),
	}
}

func TestChoiceRepo_CreateAndGet(t *testing.T) {
	r, tx := newTestRepos(t)
	ctx := context.Background()
	tripID, _ := seedTrip(t, tx)

	input := choiceFixture(tripID)
	created, err := r.Choices.Create(ctx, input)
	require.NoError(t, err)

	assert.NotEqual(t, uuid.Nil, created.ID)
	assert.Equal(t, input.Name, created.Name)
	assert.Equal(t, domain.ChoiceOpen, created.Status)
	assert.False(t, created.CreatedAt.IsZero())
	require.NotNil(t, created.EventAt)
	assert.True(t, created.EventAt.Equal(*input.EventAt))

	got, err := r.Choices.GetByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.ID, got.ID)
	assert.Equal(t, tripID, got.TripID)
}

func TestChoiceRepo_GetByID_NotFound(t *testing.T) {
	r, _ := newTestRepos(t)

	_, err := r.Choices.GetByID(context.Background(), uuid.New())

	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestChoiceRepo_ListByTrip_Filters(t *testing.T) {
	r, tx := newTestRepos(t)
	ctx := context.Background()
	tripID, _ := seedTrip(t, tx)

	open, err := r.Choices.Create(ctx, choiceFixture(tripID))
	require.NoError(t, err)

	closed, err := r.Choices.Create(ctx, choiceFixture(tripID))
	require.NoError(t, err)
	_, err = r.Choices.SetStatus(ctx, closed.ID, domain.ChoiceClosed, nil)
	require.NoError(t, err)

	archived, err := r.Choices.Create(ctx, choiceFixture(tripID))
	require.NoError(t, err)
	_, err = r.Choices.SetArchived(ctx, archived.ID, true)
	require.NoError(t, err)

	page := domain.PaginationParams{Page: 1, Limit: 25}

	// Default filter: open, non-archived only.
	got, total, err := r.Choices.ListByTrip(ctx, tripID, domain.ChoiceListFilter{}, page)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, open.ID, got[0].ID)
	assert.EqualValues(t, 1, total)

	got, total, err = r.Choices.ListByTrip(ctx, tripID,
		domain.ChoiceListFilter{IncludeClosed: true}, page)
	require.NoError(t, err)
	assert.Len(t, got, 2)
	assert.EqualValues(t, 2, total)

	got, total, err = r.Choices.ListByTrip(ctx, tripID,
		domain.ChoiceListFilter{IncludeClosed: true, IncludeArchived: true}, page)
	require.NoError(t, err)
	assert.Len(t, got, 3)
	assert.EqualValues(t, 3, total)
}

func TestChoiceRepo_ListByTrip_Pagination(t *testing.T) {
	r, tx := newTestRepos(t)
	ctx := context.Background()
	tripID, _ := seedTrip(t, tx)

	for range 3 {
		_, err := r.Choices.Create(ctx, choiceFixture(tripID))
		require.NoError(t, err)
	}

	got, total, err := r.Choices.ListByTrip(ctx, tripID, domain.ChoiceListFilter{},
		domain.PaginationParams{Page: 2, Limit: 2})
	require.NoError(t, err)
	assert.Len(t, got, 1)
	assert.EqualValues(t, 3, total)
}

func TestChoiceRepo_Update(t *testing.T) {
	r, tx := newTestRepos(t)
	ctx := context.Background()
	tripID, _ := seedTrip(t, tx)

	created, err := r.Choices.Create(ctx, choiceFixture(tripID))
	require.NoError(t, err)

	created.Name = "Burger night"
	created.Place = "Campground B"
	updated, err := r.Choices.Update(ctx, created)
	require.NoError(t, err)

	assert.Equal(t, "Burger night", updated.Name)
	assert.Equal(t, "Campground B", updated.Place)
	assert.True(t, updated.UpdatedAt.After(created.CreatedAt) || updated.UpdatedAt.Equal(created.CreatedAt))
}

func TestChoiceRepo_SetStatus_WithDeadline(t *testing.T) {
	r, tx := newTestRepos(t)
	ctx := context.Background()
	tripID, _ := seedTrip(t, tx)

	created, err := r.Choices.Create(ctx, choiceFixture(tripID))
	require.NoError(t, err)

	deadline := time.Now().Add(24 * time.Hour).UTC().Truncate(time.Second)
	updated, err := r.Choices.SetStatus(ctx, created.ID, domain.ChoiceClosed, &deadline)
	require.NoError(t, err)

	assert.Equal(t, domain.ChoiceClosed, updated.Status)
	require.NotNil(t, updated.Deadline)
	assert.True(t, updated.Deadline.Equal(deadline))
}

func TestChoiceRepo_ArchiveRoundTrip(t *testing.T) {
	r, tx := newTestRepos(t)
	ctx := context.Background()
	tripID, _ := seedTrip(t, tx)

	created, err := r.Choices.Create(ctx, choiceFixture(tripID))
	require.NoError(t, err)

	archived, err := r.Choices.SetArchived(ctx, created.ID, true)
	require.NoError(t, err)
	assert.True(t, archived.Archived())

	restored, err := r.Choices.SetArchived(ctx, created.ID, false)
	require.NoError(t, err)
	assert.False(t, restored.Archived())
}

func TestChoiceRepo_Delete(t *testing.T) {
	r, tx := newTestRepos(t)
	ctx := context.Background()
	tripID, _ := seedTrip(t, tx)

	created, err := r.Choices.Create(ctx, choiceFixture(tripID))
	require.NoError(t, err)

	require.NoError(t, r.Choices.Delete(ctx, created.ID))

	_, err = r.Choices.GetByID(ctx, created.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	assert.ErrorIs(t, r.Choices.Delete(ctx, created.ID), domain.ErrNotFound)
}
