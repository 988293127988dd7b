package handler

import (
	"net/http"

	"github.com/shopspring/decimal"

	"github.com/wayfare-app/backend/internal/domain"
)

type itemRequest struct {
	Name        string           `json:"name"`
	Description string           `json:"description"`
	Price       *decimal.Decimal `json:"price"`
	Tags        []string         `json:"tags"`
	Allergens   []string         `json:"allergens"`
	MaxPerUser  *int             `json:"max_per_user"`
	MaxTotal    *int             `json:"max_total"`
}

// CreateItem handles POST /choices/{choiceID}/items.
func (s *Server) CreateItem(w http.ResponseWriter, r *http.Request) {
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
	var req itemRequest
	if err := decodeBody(r, &req); err != nil {
		badRequest(w, err.Error())
		return
	}

	created, err := s.choices.CreateItem(r.Context(), actor, domain.ChoiceItem{
		ChoiceID:    choiceID,
		Name:        req.Name,
		Description: req.Description,
		Price:       req.Price,
		Tags:        req.Tags,
		Allergens:   req.Allergens,
		MaxPerUser:  req.MaxPerUser,
		MaxTotal:    req.MaxTotal,
		Type:        domain.ItemNormal,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

// EnsureOptOutItem handles POST /choices/{choiceID}/items/opt-out.
// Idempotent: returns the existing opt-out singleton when one exists.
func (s *Server) EnsureOptOutItem(w http.ResponseWriter, r *http.Request) {
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

	item, err := s.choices.EnsureOptOutItem(r.Context(), actor, choiceID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, item)
}

// UpdateItem handles PUT /items/{itemID}.
func (s *Server) UpdateItem(w http.ResponseWriter, r *http.Request) {
	actor, err := callerID(r)
	if err != nil {
		badRequest(w, err.Error())
		return
	}
	itemID, err := pathID(r, "itemID")
	if err != nil {
		badRequest(w, err.Error())
		return
	}
	var req itemRequest
	if err := decodeBody(r, &req); err != nil {
		badRequest(w, err.Error())
		return
	}

	updated, err := s.choices.UpdateItem(r.Context(), actor, domain.ChoiceItem{
		ID:          itemID,
		Name:        req.Name,
		Description: req.Description,
		Price:       req.Price,
		Tags:        req.Tags,
		Allergens:   req.Allergens,
		MaxPerUser:  req.MaxPerUser,
		MaxTotal:    req.MaxTotal,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

// DeactivateItem handles DELETE /items/{itemID}. Soft: the item drops out
// of the selectable set but stays visible to reporting.
func (s *Server) DeactivateItem(w http.ResponseWriter, r *http.Request) {
	actor, err := callerID(r)
	if err != nil {
		badRequest(w, err.Error())
		return
	}
	itemID, err := pathID(r, "itemID")
	if err != nil {
		badRequest(w, err.Error())
		return
	}

	updated, err := s.choices.DeactivateItem(r.Context(), actor, itemID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}
