package service_test

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/wayfare-app/backend/internal/domain"
	"github.com/wayfare-app/backend/internal/repo"
)

// Hand-written test doubles for the repo interfaces. Each method is a
// function field; set only the ones your test needs and any unexpected call
// panics with a nil dereference, pointing straight at the gap.

type mockChoiceRepo struct {
	create      func(ctx context.Context, choice domain.Choice) (domain.Choice, error)
	getByID     func(ctx context.Context, id uuid.UUID) (domain.Choice, error)
	listByTrip  func(ctx context.Context, tripID uuid.UUID, filter domain.ChoiceListFilter, p domain.PaginationParams) ([]domain.Choice, int64, error)
	update      func(ctx context.Context, choice domain.Choice) (domain.Choice, error)
	setStatus   func(ctx context.Context, id uuid.UUID, status domain.ChoiceStatus, deadline *time.Time) (domain.Choice, error)
	setArchived func(ctx context.Context, id uuid.UUID, archived bool) (domain.Choice, error)
	delete      func(ctx context.Context, id uuid.UUID) error
}

func (m *mockChoiceRepo) Create(ctx context.Context, choice domain.Choice) (domain.Choice, error) {
	return m.create(ctx, choice)
}
func (m *mockChoiceRepo) GetByID(ctx context.Context, id uuid.UUID) (domain.Choice, error) {
	return m.getByID(ctx, id)
}
func (m *mockChoiceRepo) ListByTrip(ctx context.Context, tripID uuid.UUID, filter domain.ChoiceListFilter, p domain.PaginationParams) ([]domain.Choice, int64, error) {
	return m.listByTrip(ctx, tripID, filter, p)
}
func (m *mockChoiceRepo) Update(ctx context.Context, choice domain.Choice) (domain.Choice, error) {
	return m.update(ctx, choice)
}
func (m *mockChoiceRepo) SetStatus(ctx context.Context, id uuid.UUID, status domain.ChoiceStatus, deadline *time.Time) (domain.Choice, error) {
	return m.setStatus(ctx, id, status, deadline)
}
func (m *mockChoiceRepo) SetArchived(ctx context.Context, id uuid.UUID, archived bool) (domain.Choice, error) {
	return m.setArchived(ctx, id, archived)
}
func (m *mockChoiceRepo) Delete(ctx context.Context, id uuid.UUID) error {
	return m.delete(ctx, id)
}

var _ repo.ChoiceRepo = (*mockChoiceRepo)(nil)

type mockItemRepo struct {
	create       func(ctx context.Context, item domain.ChoiceItem) (domain.ChoiceItem, error)
	getByID      func(ctx context.Context, id uuid.UUID) (domain.ChoiceItem, error)
	listByChoice func(ctx context.Context, choiceID uuid.UUID, activeOnly bool) ([]domain.ChoiceItem, error)
	update       func(ctx context.Context, item domain.ChoiceItem) (domain.ChoiceItem, error)
	deactivate   func(ctx context.Context, id uuid.UUID) (domain.ChoiceItem, error)
	findOptOut   func(ctx context.Context, choiceID uuid.UUID) (domain.ChoiceItem, error)
	lockByIDs    func(ctx context.Context, choiceID uuid.UUID, ids []uuid.UUID) (map[uuid.UUID]domain.ChoiceItem, error)
}

func (m *mockItemRepo) Create(ctx context.Context, item domain.ChoiceItem) (domain.ChoiceItem, error) {
	return m.create(ctx, item)
}
func (m *mockItemRepo) GetByID(ctx context.Context, id uuid.UUID) (domain.ChoiceItem, error) {
	return m.getByID(ctx, id)
}
func (m *mockItemRepo) ListByChoice(ctx context.Context, choiceID uuid.UUID, activeOnly bool) ([]domain.ChoiceItem, error) {
	return m.listByChoice(ctx, choiceID, activeOnly)
}
func (m *mockItemRepo) Update(ctx context.Context, item domain.ChoiceItem) (domain.ChoiceItem, error) {
	return m.update(ctx, item)
}
func (m *mockItemRepo) Deactivate(ctx context.Context, id uuid.UUID) (domain.ChoiceItem, error) {
	return m.deactivate(ctx, id)
}
func (m *mockItemRepo) FindOptOut(ctx context.Context, choiceID uuid.UUID) (domain.ChoiceItem, error) {
	return m.findOptOut(ctx, choiceID)
}
func (m *mockItemRepo) LockByIDs(ctx context.Context, choiceID uuid.UUID, ids []uuid.UUID) (map[uuid.UUID]domain.ChoiceItem, error) {
	return m.lockByIDs(ctx, choiceID, ids)
}

var _ repo.ItemRepo = (*mockItemRepo)(nil)

type mockSelectionRepo struct {
	getByChoiceAndUser func(ctx context.Context, choiceID, userID uuid.UUID) (domain.Selection, error)
	upsert             func(ctx context.Context, choiceID, userID uuid.UUID) (domain.Selection, error)
	setNote            func(ctx context.Context, choiceID, userID uuid.UUID, note string) (domain.Selection, error)
	replaceLines       func(ctx context.Context, selectionID uuid.UUID, lines []domain.ProposedLine) ([]domain.SelectionLine, error)
	delete             func(ctx context.Context, choiceID, userID uuid.UUID) error
	quantityTotals     func(ctx context.Context, choiceID, excludeUserID uuid.UUID) (map[uuid.UUID]int, error)
	listViews          func(ctx context.Context, choiceID uuid.UUID) ([]domain.SelectionView, error)
}

func (m *mockSelectionRepo) GetByChoiceAndUser(ctx context.Context, choiceID, userID uuid.UUID) (domain.Selection, error) {
	return m.getByChoiceAndUser(ctx, choiceID, userID)
}
func (m *mockSelectionRepo) Upsert(ctx context.Context, choiceID, userID uuid.UUID) (domain.Selection, error) {
	return m.upsert(ctx, choiceID, userID)
}
func (m *mockSelectionRepo) SetNote(ctx context.Context, choiceID, userID uuid.UUID, note string) (domain.Selection, error) {
	return m.setNote(ctx, choiceID, userID, note)
}
func (m *mockSelectionRepo) ReplaceLines(ctx context.Context, selectionID uuid.UUID, lines []domain.ProposedLine) ([]domain.SelectionLine, error) {
	return m.replaceLines(ctx, selectionID, lines)
}
func (m *mockSelectionRepo) Delete(ctx context.Context, choiceID, userID uuid.UUID) error {
	return m.delete(ctx, choiceID, userID)
}
func (m *mockSelectionRepo) QuantityTotals(ctx context.Context, choiceID, excludeUserID uuid.UUID) (map[uuid.UUID]int, error) {
	return m.quantityTotals(ctx, choiceID, excludeUserID)
}
func (m *mockSelectionRepo) ListViews(ctx context.Context, choiceID uuid.UUID) ([]domain.SelectionView, error) {
	return m.listViews(ctx, choiceID)
}

var _ repo.SelectionRepo = (*mockSelectionRepo)(nil)

type mockTripRepo struct {
	listMembers func(ctx context.Context, tripID uuid.UUID) ([]domain.Member, error)
	currency    func(ctx context.Context, tripID uuid.UUID) (string, error)
}

func (m *mockTripRepo) ListMembers(ctx context.Context, tripID uuid.UUID) ([]domain.Member, error) {
	return m.listMembers(ctx, tripID)
}
func (m *mockTripRepo) Currency(ctx context.Context, tripID uuid.UUID) (string, error) {
	return m.currency(ctx, tripID)
}

var _ repo.TripRepo = (*mockTripRepo)(nil)

type mockSpendRepo struct {
	createSpend  func(ctx context.Context, spend domain.Spend) (domain.Spend, error)
	createItems  func(ctx context.Context, spendID uuid.UUID, items []domain.SpendItem) ([]domain.SpendItem, error)
	createShares func(ctx context.Context, spendID uuid.UUID, shares []domain.SpendShare) ([]domain.SpendShare, error)
}

func (m *mockSpendRepo) CreateSpend(ctx context.Context, spend domain.Spend) (domain.Spend, error) {
	return m.createSpend(ctx, spend)
}
func (m *mockSpendRepo) CreateItems(ctx context.Context, spendID uuid.UUID, items []domain.SpendItem) ([]domain.SpendItem, error) {
	return m.createItems(ctx, spendID, items)
}
func (m *mockSpendRepo) CreateShares(ctx context.Context, spendID uuid.UUID, shares []domain.SpendShare) ([]domain.SpendShare, error) {
	return m.createShares(ctx, spendID, shares)
}

var _ repo.SpendRepo = (*mockSpendRepo)(nil)

// mockActivityRepo records appended payloads for assertions.
type mockActivityRepo struct {
	appended []domain.ActivityPayload
}

func (m *mockActivityRepo) Append(_ context.Context, _ uuid.UUID, payload domain.ActivityPayload) error {
	m.appended = append(m.appended, payload)
	return nil
}

var _ repo.ActivityRepo = (*mockActivityRepo)(nil)

// mockAuditRepo records logged events for assertions.
type mockAuditRepo struct {
	events []domain.AuditEvent
}

func (m *mockAuditRepo) LogEvent(_ context.Context, event domain.AuditEvent) error {
	m.events = append(m.events, event)
	return nil
}

var _ repo.AuditRepo = (*mockAuditRepo)(nil)

// fixedTx wraps a prebuilt repo set in a TxManager whose "transaction" is
// just calling fn. Rollback semantics are exercised by the repo integration
// tests; service tests only care about the orchestration.
func fixedTx(r repo.Repos) repo.TxManager {
	return repo.TxManagerFunc(func(ctx context.Context, fn func(r repo.Repos) error) error {
		return fn(r)
	})
}
