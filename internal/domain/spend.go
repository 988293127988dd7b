package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// SpendMode selects the allocation strategy used when deriving a spend from
// a choice's aggregated selections.
type SpendMode string

const (
	// SpendByItem creates one spend item per (user, priced item) pair and one
	// aggregate share per user.
	SpendByItem SpendMode = "BY_ITEM"
	// SpendByUser creates one spend item summarizing each user's whole order
	// and one share linked to that item.
	SpendByUser SpendMode = "BY_USER"
)

// Valid reports whether m is a known allocation mode.
func (m SpendMode) Valid() bool {
	return m == SpendByItem || m == SpendByUser
}

// Spend is a group expense derived from a finalized choice. Currency is the
// trip's base currency at a 1.0 exchange rate; FX is another subsystem's
// concern.
type Spend struct {
	ID           uuid.UUID       `json:"id"`
	TripID       uuid.UUID       `json:"trip_id"`
	ChoiceID     uuid.UUID       `json:"choice_id"`
	Title        string          `json:"title"`
	Amount       decimal.Decimal `json:"amount"`
	Currency     string          `json:"currency"`
	ExchangeRate decimal.Decimal `json:"exchange_rate"`
	CreatedBy    uuid.UUID       `json:"created_by"`
	CreatedAt    time.Time       `json:"created_at"`
	Items        []SpendItem     `json:"items"`
	Shares       []SpendShare    `json:"shares"`
}

// SpendItem is one expense line item, tagged with the responsible user.
type SpendItem struct {
	ID          uuid.UUID       `json:"id"`
	SpendID     uuid.UUID       `json:"spend_id"`
	UserID      uuid.UUID       `json:"user_id"`
	Description string          `json:"description"`
	Amount      decimal.Decimal `json:"amount"`
}

// SpendShare is one user's cost assignment. SpendItemID is set in BY_USER
// mode, linking the share to the item that summarizes the user's order.
type SpendShare struct {
	ID          uuid.UUID       `json:"id"`
	SpendID     uuid.UUID       `json:"spend_id"`
	SpendItemID *uuid.UUID      `json:"spend_item_id,omitempty"`
	UserID      uuid.UUID       `json:"user_id"`
	Amount      decimal.Decimal `json:"amount"`
}
