package repository

import (
	"context"
	"fmt"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/posterzone/storefront/internal/domain/promo"
)

const (
	bundleColumns = `id, title, description, trigger_kind, min_quantity,
		min_order, percent_off, active`

	listActiveBundlesSQL = `SELECT ` + bundleColumns + `
		FROM bundles WHERE active = TRUE ORDER BY created_at`

	getBundleByIDSQL = `SELECT ` + bundleColumns + `
		FROM bundles WHERE id = $1 AND active = TRUE`

	upsertBundleSQL = `INSERT INTO bundles
		(id, title, description, trigger_kind, min_quantity, min_order, percent_off, active)
		VALUES ($1, $2, $3, $4, $5, $6, $7, TRUE)
		ON CONFLICT (id) DO UPDATE SET
			title = EXCLUDED.title,
			description = EXCLUDED.description,
			trigger_kind = EXCLUDED.trigger_kind,
			min_quantity = EXCLUDED.min_quantity,
			min_order = EXCLUDED.min_order,
			percent_off = EXCLUDED.percent_off,
			active = TRUE`
)

var _ promo.Repository = (*BundleRepository)(nil)

// BundleRepository implements promo.Repository backed by PostgreSQL.
type BundleRepository struct {
	pool *pgxpool.Pool
}

// NewBundleRepository returns a BundleRepository that uses the given pool.
func NewBundleRepository(pool *pgxpool.Pool) *BundleRepository {
	return &BundleRepository{pool: pool}
}

// ListActive returns all active bundle offers.
func (r *BundleRepository) ListActive(ctx context.Context) ([]promo.Offer, error) {
	rows, err := r.pool.Query(ctx, listActiveBundlesSQL)
	if err != nil {
		return nil, fmt.Errorf("listing bundles: %w", err)
	}
	return pgx.CollectRows(rows, scanOffer)
}

// GetByID returns a single active bundle offer.
// Returns promo.ErrNotFound for unknown or inactive offers.
func (r *BundleRepository) GetByID(ctx context.Context, id string) (*promo.Offer, error) {
	rows, err := r.pool.Query(ctx, getBundleByIDSQL, id)
	if err != nil {
		return nil, fmt.Errorf("getting bundle %q: %w", id, err)
	}

	o, err := pgx.CollectExactlyOneRow(rows, scanOffer)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, promo.ErrNotFound
		}
		return nil, fmt.Errorf("getting bundle %q: %w", id, err)
	}
	return &o, nil
}

// Upsert stores a bundle offer, marking it active. Used by seeding.
func (r *BundleRepository) Upsert(ctx context.Context, o promo.Offer) error {
	_, err := r.pool.Exec(ctx, upsertBundleSQL,
		o.ID, o.Title, o.Description, string(o.Trigger),
		o.MinQuantity, o.MinOrder, o.PercentOff,
	)
	if err != nil {
		return fmt.Errorf("upserting bundle %q: %w", o.ID, err)
	}
	return nil
}

func scanOffer(row pgx.CollectableRow) (promo.Offer, error) {
	var (
		o           promo.Offer
		trigger     string
		minQuantity int32
		minOrder    decimal.Decimal
		percentOff  decimal.Decimal
	)
	err := row.Scan(
		&o.ID, &o.Title, &o.Description, &trigger, &minQuantity,
		&minOrder, &percentOff, &o.Active,
	)
	o.Trigger = promo.TriggerKind(trigger)
	o.MinQuantity = int(minQuantity)
	o.MinOrder = minOrder
	o.PercentOff = percentOff
	return o, err
}
