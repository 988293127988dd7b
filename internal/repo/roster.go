package repo

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/wayfare-app/backend/internal/domain"
)

// TripRepo is the read-only view of the trip subsystem this engine consumes:
// the member roster and the trip's base currency. Trip and membership
// management live elsewhere.
type TripRepo interface {
	// ListMembers returns the trip's roster ordered by member name.
	ListMembers(ctx context.Context, tripID uuid.UUID) ([]domain.Member, error)

	// Currency returns the trip's base currency code.
	// Returns domain.ErrNotFound for an unknown trip.
	Currency(ctx context.Context, tripID uuid.UUID) (string, error)
}

type pgTripRepo struct {
	db db
}

// NewTripRepo constructs a TripRepo backed by the provided db handle.
func NewTripRepo(db db) TripRepo {
	return &pgTripRepo{db: db}
}

func (r *pgTripRepo) ListMembers(ctx context.Context, tripID uuid.UUID) ([]domain.Member, error) {
	const q = `
		SELECT user_id, trip_id, name, email
		FROM trip_members
		WHERE trip_id = @trip_id
		ORDER BY name, user_id`

	rows, err := r.db.Query(ctx, q, pgx.NamedArgs{"trip_id": tripID})
	if err != nil {
		return nil, fmt.Errorf("repo.TripRepo.ListMembers: %w", err)
	}
	defer rows.Close()

	var members []domain.Member
	for rows.Next() {
		var (
			m          domain.Member
			user, trip pgtype.UUID
		)
		if err := rows.Scan(&user, &trip, &m.Name, &m.Email); err != nil {
			return nil, fmt.Errorf("repo.TripRepo.ListMembers: scan: %w", err)
		}
		m.UserID = uuid.UUID(user.Bytes)
		m.TripID = uuid.UUID(trip.Bytes)
		members = append(members, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("repo.TripRepo.ListMembers: rows: %w", err)
	}

	return members, nil
}

func (r *pgTripRepo) Currency(ctx context.Context, tripID uuid.UUID) (string, error) {
	const q = `SELECT base_currency FROM trips WHERE id = @id`

	var currency string
	err := r.db.QueryRow(ctx, q, pgx.NamedArgs{"id": tripID}).Scan(&currency)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", fmt.Errorf("repo.TripRepo.Currency: %w", domain.ErrNotFound)
		}
		return "", fmt.Errorf("repo.TripRepo.Currency: %w", err)
	}
	return currency, nil
}
