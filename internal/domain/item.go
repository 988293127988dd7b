package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ItemType distinguishes ordinary options from the per-choice opt-out item.
type ItemType string

const (
	ItemNormal ItemType = "NORMAL"
	// ItemNoParticipation is the singleton opt-out item. A selection holding
	// it may not hold any other line, and its lines never count toward totals.
	ItemNoParticipation ItemType = "NO_PARTICIPATION"
)

// ChoiceItem is one selectable option within a choice.
// Price is nil for unpriced items; quantities of unpriced items contribute
// zero to monetary totals. MaxPerUser and MaxTotal are optional caps, nil
// meaning unlimited.
type ChoiceItem struct {
	ID          uuid.UUID        `json:"id"`
	ChoiceID    uuid.UUID        `json:"choice_id"`
	Name        string           `json:"name"`
	Description string           `json:"description,omitempty"`
	Price       *decimal.Decimal `json:"price,omitempty"`
	Tags        []string         `json:"tags,omitempty"`
	Allergens   []string         `json:"allergens,omitempty"`
	MaxPerUser  *int             `json:"max_per_user,omitempty"`
	MaxTotal    *int             `json:"max_total,omitempty"`
	IsActive    bool             `json:"is_active"`
	Type        ItemType         `json:"type"`
	CreatedAt   time.Time        `json:"created_at"`
	UpdatedAt   time.Time        `json:"updated_at"`
}

// LineTotal returns quantity × price, treating a nil price as zero.
func (i ChoiceItem) LineTotal(quantity int) decimal.Decimal {
	if i.Price == nil {
		return decimal.Zero
	}
	return i.Price.Mul(decimal.NewFromInt(int64(quantity)))
}
