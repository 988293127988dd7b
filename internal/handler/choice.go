package handler

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/wayfare-app/backend/internal/domain"
)

// choiceRequest carries the mutable choice metadata. Deadlines are managed
// through the status endpoint, so only creation accepts one; sending
// "deadline" on an update is rejected as an unknown field.
type choiceRequest struct {
	Name        string                  `json:"name"`
	Description string                  `json:"description"`
	EventAt     *time.Time              `json:"event_at"`
	Place       string                  `json:"place"`
	Visibility  domain.ChoiceVisibility `json:"visibility"`
}

type createChoiceRequest struct {
	choiceRequest
	Deadline *time.Time `json:"deadline"`
}

type statusRequest struct {
	Status   domain.ChoiceStatus `json:"status"`
	Deadline *time.Time          `json:"deadline"`
}

type choiceListResponse struct {
	Data       []domain.Choice `json:"data"`
	Pagination pagination      `json:"pagination"`
}

type pagination struct {
	Page  int `json:"page"`
	Limit int `json:"limit"`
	Total int `json:"total"`
}

// CreateChoice handles POST /trips/{tripID}/choices.
func (s *Server) CreateChoice(w http.ResponseWriter, r *http.Request) {
	actor, err := callerID(r)
	if err != nil {
		badRequest(w, err.Error())
		return
	}
	tripID, err := pathID(r, "tripID")
	if err != nil {
		badRequest(w, err.Error())
		return
	}
	var req createChoiceRequest
	if err := decodeBody(r, &req); err != nil {
		badRequest(w, err.Error())
		return
	}

	created, err := s.choices.Create(r.Context(), domain.Choice{
		TripID:      tripID,
		Name:        req.Name,
		Description: req.Description,
		EventAt:     req.EventAt,
		Place:       req.Place,
		Visibility:  req.Visibility,
		Deadline:    req.Deadline,
		CreatedBy:   actor,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

// ListChoices handles GET /trips/{tripID}/choices.
// Supports ?page=, ?limit=, ?include_archived= and ?include_closed=.
func (s *Server) ListChoices(w http.ResponseWriter, r *http.Request) {
	tripID, err := pathID(r, "tripID")
	if err != nil {
		badRequest(w, err.Error())
		return
	}

	q := r.URL.Query()
	params := domain.NewPaginationParams(queryInt(q.Get("page")), queryInt(q.Get("limit")))
	filter := domain.ChoiceListFilter{
		IncludeArchived: q.Get("include_archived") == "true",
		IncludeClosed:   q.Get("include_closed") == "true",
	}

	choices, total, err := s.choices.ListByTrip(r.Context(), tripID, filter, params)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, choiceListResponse{
		Data: choices,
		Pagination: pagination{
			Page:  params.Page,
			Limit: params.Limit,
			Total: int(total),
		},
	})
}

// GetChoice handles GET /choices/{choiceID}: the per-caller detail view.
func (s *Server) GetChoice(w http.ResponseWriter, r *http.Request) {
	actor, err := callerID(r)
	if err != nil {
		badRequest(w, err.Error())
		return
	}
	choiceID, err := pathID(r, "choiceID")
	if err != nil {
		badRequest(w, err.Error())
		return
	}

	detail, err := s.choices.GetDetail(r.Context(), choiceID, actor)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, detail)
}

// UpdateChoice handles PUT /choices/{choiceID}.
func (s *Server) UpdateChoice(w http.ResponseWriter, r *http.Request) {
	actor, err := callerID(r)
	if err != nil {
		badRequest(w, err.Error())
		return
	}
	choiceID, err := pathID(r, "choiceID")
	if err != nil {
		badRequest(w, err.Error())
		return
	}
	var req choiceRequest
	if err := decodeBody(r, &req); err != nil {
		badRequest(w, err.Error())
		return
	}

	updated, err := s.choices.Update(r.Context(), actor, domain.Choice{
		ID:          choiceID,
		Name:        req.Name,
		Description: req.Description,
		EventAt:     req.EventAt,
		Place:       req.Place,
		Visibility:  req.Visibility,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

// SetChoiceStatus handles PUT /choices/{choiceID}/status.
func (s *Server) SetChoiceStatus(w http.ResponseWriter, r *http.Request) {
	actor, err := callerID(r)
	if err != nil {
		badRequest(w, err.Error())
		return
	}
	choiceID, err := pathID(r, "choiceID")
	if err != nil {
		badRequest(w, err.Error())
		return
	}
	var req statusRequest
	if err := decodeBody(r, &req); err != nil {
		badRequest(w, err.Error())
		return
	}

	updated, err := s.choices.SetStatus(r.Context(), actor, choiceID, req.Status, req.Deadline)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

// ArchiveChoice handles POST /choices/{choiceID}/archive.
func (s *Server) ArchiveChoice(w http.ResponseWriter, r *http.Request) {
	s.archiveRestore(w, r, s.choices.Archive)
}

// RestoreChoice handles POST /choices/{choiceID}/restore.
func (s *Server) RestoreChoice(w http.ResponseWriter, r *http.Request) {
	s.archiveRestore(w, r, s.choices.Restore)
}

func (s *Server) archiveRestore(w http.ResponseWriter, r *http.Request, op func(ctx context.Context, actorID, choiceID uuid.UUID) (domain.Choice, error)) {
	actor, err := callerID(r)
	if err != nil {
		badRequest(w, err.Error())
		return
	}
	choiceID, err := pathID(r, "choiceID")
	if err != nil {
		badRequest(w, err.Error())
		return
	}

	updated, err := op(r.Context(), actor, choiceID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

// DeleteChoice handles DELETE /choices/{choiceID}.
func (s *Server) DeleteChoice(w http.ResponseWriter, r *http.Request) {
	actor, err := callerID(r)
	if err != nil {
		badRequest(w, err.Error())
		return
	}
	choiceID, err := pathID(r, "choiceID")
	if err != nil {
		badRequest(w, err.Error())
		return
	}

	if err := s.choices.Delete(r.Context(), actor, choiceID); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// queryInt parses an optional integer query value; empty or malformed
// values fall back to the pagination defaults.
func queryInt(raw string) *int {
	if raw == "" {
		return nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return nil
	}
	return &n
}
