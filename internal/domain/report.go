package domain

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ItemReportRow aggregates one item's lines across all selections.
// TotalPrice is nil when the item has no price ("not priced" rather than
// "costs nothing").
type ItemReportRow struct {
	ItemID        uuid.UUID        `json:"item_id"`
	Name          string           `json:"name"`
	Type          ItemType         `json:"type"`
	IsActive      bool             `json:"is_active"`
	Price         *decimal.Decimal `json:"price,omitempty"`
	QtyTotal      int              `json:"qty_total"`
	TotalPrice    *decimal.Decimal `json:"total_price,omitempty"`
	DistinctUsers int              `json:"distinct_users"`
}

// ItemsReport is the item-centric aggregate view over a choice's selections.
// GrandTotal is nil when the priced sum is exactly zero, distinguishing
// "no cost" from "not priced".
type ItemsReport struct {
	ChoiceID   uuid.UUID        `json:"choice_id"`
	Rows       []ItemReportRow  `json:"rows"`
	GrandTotal *decimal.Decimal `json:"grand_total,omitempty"`
}

// UserReportLine is one of a user's lines with its computed price.
type UserReportLine struct {
	ItemName  string           `json:"item_name"`
	Quantity  int              `json:"quantity"`
	LinePrice *decimal.Decimal `json:"line_price,omitempty"`
	Note      string           `json:"note,omitempty"`
}

// UserReportRow is one user's selection in the user-centric report.
// For opt-out users Lines is empty and IsNoParticipation is true, even
// though the underlying selection row still holds the opt-out line.
type UserReportRow struct {
	UserID            uuid.UUID        `json:"user_id"`
	Name              string           `json:"name"`
	Email             string           `json:"email"`
	Note              string           `json:"note,omitempty"`
	IsNoParticipation bool             `json:"is_no_participation"`
	Lines             []UserReportLine `json:"lines"`
	Total             decimal.Decimal  `json:"total"`
}

// UsersReport is the user-centric aggregate view over a choice's selections.
// Opt-out users' totals are excluded from GrandTotal, which is nil when the
// sum is exactly zero so it always agrees with ItemsReport.GrandTotal.
type UsersReport struct {
	ChoiceID   uuid.UUID        `json:"choice_id"`
	Rows       []UserReportRow  `json:"rows"`
	GrandTotal *decimal.Decimal `json:"grand_total,omitempty"`
}
