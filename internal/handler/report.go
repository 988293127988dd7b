package handler

import (
	"net/http"
)

// ItemsReport handles GET /choices/{choiceID}/reports/items.
func (s *Server) ItemsReport(w http.ResponseWriter, r *http.Request) {
	choiceID, err := pathID(r, "choiceID")
	if err != nil {
		badRequest(w, err.Error())
		return
	}

	report, err := s.reports.ItemsReport(r.Context(), choiceID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

// UsersReport handles GET /choices/{choiceID}/reports/users.
func (s *Server) UsersReport(w http.ResponseWriter, r *http.Request) {
	choiceID, err := pathID(r, "choiceID")
	if err != nil {
		badRequest(w, err.Error())
		return
	}

	report, err := s.reports.UsersReport(r.Context(), choiceID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

// Respondents handles GET /choices/{choiceID}/respondents.
func (s *Server) Respondents(w http.ResponseWriter, r *http.Request) {
	choiceID, err := pathID(r, "choiceID")
	if err != nil {
		badRequest(w, err.Error())
		return
	}

	res, err := s.respondents.Respondents(r.Context(), choiceID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}
