package domain

import "github.com/google/uuid"

// Member is a trip roster entry. Membership management lives in another
// subsystem; this is a read model consumed by the respondent tracker and
// spend derivation.
type Member struct {
	UserID uuid.UUID `json:"user_id"`
	TripID uuid.UUID `json:"trip_id"`
	Name   string    `json:"name"`
	Email  string    `json:"email"`
}

// Respondents partitions a trip's roster by how each member stands on a
// choice. The three slices are disjoint and together cover the roster.
type Respondents struct {
	Responded []Member `json:"responded"`
	OptedOut  []Member `json:"opted_out"`
	Pending   []Member `json:"pending"`
}

// IDs returns the raw user-id lists for the three partitions.
func (r Respondents) IDs() (responded, optedOut, pending []uuid.UUID) {
	return memberIDs(r.Responded), memberIDs(r.OptedOut), memberIDs(r.Pending)
}

func memberIDs(ms []Member) []uuid.UUID {
	ids := make([]uuid.UUID, len(ms))
	for i, m := range ms {
		ids[i] = m.UserID
	}
	return ids
}
