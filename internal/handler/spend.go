package handler

import (
	"net/http"

	"github.com/wayfare-app/backend/internal/domain"
)

type createSpendRequest struct {
	Mode  domain.SpendMode `json:"mode"`
	Title string           `json:"title"`
}

// CreateSpend handles POST /choices/{choiceID}/spends: snapshots the
// choice's priced selections into a group expense.
func (s *Server) CreateSpend(w http.ResponseWriter, r *http.Request) {
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
	var req createSpendRequest
	if err := decodeBody(r, &req); err != nil {
		badRequest(w, err.Error())
		return
	}

	spend, err := s.spends.CreateFromChoice(r.Context(), actor, choiceID, req.Mode, req.Title)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, spend)
}
