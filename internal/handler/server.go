// Package handler implements the HTTP handlers for the choice engine API.
// All handlers are methods on Server; they are split into domain-specific
// files (choice.go, selection.go, report.go, spend.go) but share the same
// Server struct so they can access its dependencies.
package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/wayfare-app/backend/internal/domain"
	"github.com/wayfare-app/backend/internal/service"
)

// ChoiceServicer defines the choice-lifecycle operations the handlers depend
// on. Defining the interface here (in the consumer package) lets handler
// tests inject a mock without touching the database or service layer.
type ChoiceServicer interface {
	Create(ctx context.Context, choice domain.Choice) (domain.Choice, error)
	Update(ctx context.Context, actorID uuid.UUID, choice domain.Choice) (domain.Choice, error)
	SetStatus(ctx context.Context, actorID, choiceID uuid.UUID, status domain.ChoiceStatus, deadline *time.Time) (domain.Choice, error)
	Archive(ctx context.Context, actorID, choiceID uuid.UUID) (domain.Choice, error)
	Restore(ctx context.Context, actorID, choiceID uuid.UUID) (domain.Choice, error)
	Delete(ctx context.Context, actorID, choiceID uuid.UUID) error
	ListByTrip(ctx context.Context, tripID uuid.UUID, filter domain.ChoiceListFilter, p domain.PaginationParams) ([]domain.Choice, int64, error)
	GetDetail(ctx context.Context, choiceID, userID uuid.UUID) (service.ChoiceDetail, error)
	CreateItem(ctx context.Context, actorID uuid.UUID, item domain.ChoiceItem) (domain.ChoiceItem, error)
	UpdateItem(ctx context.Context, actorID uuid.UUID, item domain.ChoiceItem) (domain.ChoiceItem, error)
	DeactivateItem(ctx context.Context, actorID, itemID uuid.UUID) (domain.ChoiceItem, error)
	EnsureOptOutItem(ctx context.Context, actorID, choiceID uuid.UUID) (domain.ChoiceItem, error)
}

// SelectionServicer defines the selection operations the handlers depend on.
type SelectionServicer interface {
	Submit(ctx context.Context, choiceID, userID uuid.UUID, lines []domain.ProposedLine) (domain.SubmitResult, error)
	Withdraw(ctx context.Context, choiceID, userID uuid.UUID) error
	SetNote(ctx context.Context, choiceID, userID uuid.UUID, note string) (domain.Selection, error)
}

// ReportServicer defines the aggregate views the handlers depend on.
type ReportServicer interface {
	ItemsReport(ctx context.Context, choiceID uuid.UUID) (domain.ItemsReport, error)
	UsersReport(ctx context.Context, choiceID uuid.UUID) (domain.UsersReport, error)
}

// RespondentServicer partitions the roster for a choice.
type RespondentServicer interface {
	Respondents(ctx context.Context, choiceID uuid.UUID) (domain.Respondents, error)
}

// SpendServicer derives spends from choices.
type SpendServicer interface {
	CreateFromChoice(ctx context.Context, actorID, choiceID uuid.UUID, mode domain.SpendMode, title string) (domain.Spend, error)
}

// Server holds the handler dependencies for all API endpoints.
// Methods are in domain-specific files but all operate on this struct.
type Server struct {
	choices     ChoiceServicer
	selections  SelectionServicer
	reports     ReportServicer
	respondents RespondentServicer
	spends      SpendServicer
}

// NewServer constructs the Server with all its dependencies.
func NewServer(choices ChoiceServicer, selections SelectionServicer, reports ReportServicer, respondents RespondentServicer, spends SpendServicer) *Server {
	return &Server{
		choices:     choices,
		selections:  selections,
		reports:     reports,
		respondents: respondents,
		spends:      spends,
	}
}

// Routes mounts every endpoint on a fresh chi router.
func (s *Server) Routes() chi.Router {
	r := chi.NewRouter()

	r.Get("/healthz", s.Healthz)

	r.Route("/trips/{tripID}/choices", func(r chi.Router) {
		r.Get("/", s.ListChoices)
		r.Post("/", s.CreateChoice)
	})

	r.Route("/choices/{choiceID}", func(r chi.Router) {
		r.Get("/", s.GetChoice)
		r.Put("/", s.UpdateChoice)
		r.Delete("/", s.DeleteChoice)
		r.Put("/status", s.SetChoiceStatus)
		r.Post("/archive", s.ArchiveChoice)
		r.Post("/restore", s.RestoreChoice)

		r.Post("/items", s.CreateItem)
		r.Post("/items/opt-out", s.EnsureOptOutItem)

		r.Put("/selection", s.SubmitSelection)
		r.Delete("/selection", s.WithdrawSelection)
		r.Put("/selection/note", s.SetSelectionNote)

		r.Get("/reports/items", s.ItemsReport)
		r.Get("/reports/users", s.UsersReport)
		r.Get("/respondents", s.Respondents)

		r.Post("/spends", s.CreateSpend)
	})

	r.Route("/items/{itemID}", func(r chi.Router) {
		r.Put("/", s.UpdateItem)
		r.Delete("/", s.DeactivateItem)
	})

	return r
}

// Healthz handles GET /healthz.
func (s *Server) Healthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
