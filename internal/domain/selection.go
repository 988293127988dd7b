package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Selection is one user's standing choice within a choice.
// Exactly one selection exists per (choice, user); its lines are replaced as
// a set on every resubmission, never patched.
type Selection struct {
	ID        uuid.UUID       `json:"id"`
	ChoiceID  uuid.UUID       `json:"choice_id"`
	UserID    uuid.UUID       `json:"user_id"`
	Note      string          `json:"note,omitempty"`
	UpdatedAt time.Time       `json:"updated_at"`
	Lines     []SelectionLine `json:"lines"`
}

// SelectionLine is an (item, quantity, note) triple owned by one selection.
type SelectionLine struct {
	ID          uuid.UUID `json:"id"`
	SelectionID uuid.UUID `json:"selection_id"`
	ItemID      uuid.UUID `json:"item_id"`
	Quantity    int       `json:"quantity"`
	Note        string    `json:"note,omitempty"`
}

// ProposedLine is a line as submitted by a user, before validation.
type ProposedLine struct {
	ItemID   uuid.UUID `json:"item_id"`
	Quantity int       `json:"quantity"`
	Note     string    `json:"note,omitempty"`
}

// SubmitResult is the outcome of a committed selection: the stored selection
// with its full line set, plus the monetary total of those lines.
type SubmitResult struct {
	Selection Selection       `json:"selection"`
	Total     decimal.Decimal `json:"total"`
}

// SelectionView is a selection joined with its owner's roster entry and each
// line's item data. The reporting engine and the respondent tracker both work
// from this shape so that every aggregate is derived from one line set.
type SelectionView struct {
	UserID    uuid.UUID
	UserName  string
	UserEmail string
	Note      string
	UpdatedAt time.Time
	Lines     []LineView
}

// LineView is a selection line joined with its item.
type LineView struct {
	ItemID     uuid.UUID
	ItemName   string
	ItemType   ItemType
	ItemActive bool
	Price      *decimal.Decimal
	Quantity   int
	Note       string
}

// IsOptOut reports whether the selection's only lines reference the
// NO_PARTICIPATION item.
func (v SelectionView) IsOptOut() bool {
	if len(v.Lines) == 0 {
		return false
	}
	for _, l := range v.Lines {
		if l.ItemType != ItemNoParticipation {
			return false
		}
	}
	return true
}

// HasResponse reports whether the selection holds at least one line on a
// normal (non-opt-out) item.
func (v SelectionView) HasResponse() bool {
	for _, l := range v.Lines {
		if l.ItemType != ItemNoParticipation {
			return true
		}
	}
	return false
}
