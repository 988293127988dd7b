package handler

import (
	"net/http"

	"github.com/wayfare-app/backend/internal/domain"
)

type submitSelectionRequest struct {
	Lines []domain.ProposedLine `json:"lines"`
}

type noteRequest struct {
	Note string `json:"note"`
}

// SubmitSelection handles PUT /choices/{choiceID}/selection.
// The submitted lines replace the caller's previous selection as a set.
func (s *Server) SubmitSelection(w http.ResponseWriter, r *http.Request) {
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
	var req submitSelectionRequest
	if err := decodeBody(r, &req); err != nil {
		badRequest(w, err.Error())
		return
	}

	result, err := s.selections.Submit(r.Context(), choiceID, actor, req.Lines)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// WithdrawSelection handles DELETE /choices/{choiceID}/selection.
func (s *Server) WithdrawSelection(w http.ResponseWriter, r *http.Request) {
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

	if err := s.selections.Withdraw(r.Context(), choiceID, actor); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// SetSelectionNote handles PUT /choices/{choiceID}/selection/note.
// Works without any lines: a note-only selection is valid (and counts as
// pending for respondent tracking).
func (s *Server) SetSelectionNote(w http.ResponseWriter, r *http.Request) {
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
	var req noteRequest
	if err := decodeBody(r, &req); err != nil {
		badRequest(w, err.Error())
		return
	}

	sel, err := s.selections.SetNote(r.Context(), choiceID, actor, req.Note)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sel)
}
