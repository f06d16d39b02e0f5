package repository

import (
	"context"
	"fmt"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/posterzone/storefront/internal/domain/identity"
)

const getProfileSQL = `SELECT user_id, name, email, address, city, state,
	pincode, phone, country FROM profiles WHERE user_id = $1`

var _ identity.ProfileRepository = (*ProfileRepository)(nil)

// ProfileRepository implements identity.ProfileRepository backed by PostgreSQL.
type ProfileRepository struct {
	pool *pgxpool.Pool
}

// NewProfileRepository returns a ProfileRepository that uses the given pool.
func NewProfileRepository(pool *pgxpool.Pool) *ProfileRepository {
	return &ProfileRepository{pool: pool}
}

// GetByUserID returns the customer's stored profile, or nil when none exists.
func (r *ProfileRepository) GetByUserID(ctx context.Context, userID string) (*identity.Profile, error) {
	var p identity.Profile
	err := r.pool.QueryRow(ctx, getProfileSQL, userID).Scan(
		&p.UserID, &p.Name, &p.Email, &p.Address, &p.City, &p.State,
		&p.Pincode, &p.Phone, &p.Country,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("getting profile for %q: %w", userID, err)
	}
	return &p, nil
}
