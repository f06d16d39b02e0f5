package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/posterzone/storefront/internal/domain/coupon"
)

const (
	couponColumns = `id, code, discount_type, value, min_order, max_uses, uses,
		expires_at, description, active`

	getCouponByCodeSQL = `SELECT ` + couponColumns + `
		FROM coupons WHERE UPPER(code) = UPPER($1) AND active = TRUE`

	listCouponsSQL = `SELECT ` + couponColumns + `
		FROM coupons ORDER BY created_at DESC`

	// The uses bump is conditional on the cap, so two concurrent redemptions
	// cannot both take the last use.
	redeemCouponSQL = `UPDATE coupons SET uses = uses + 1
		WHERE id = $1 AND (max_uses = 0 OR uses < max_uses)`

	insertRedemptionSQL = `INSERT INTO coupon_redemptions (coupon_id, order_id)
		VALUES ($1, $2) ON CONFLICT DO NOTHING`

	// Usage counters are preserved across re-seeds and re-imports.
	upsertCouponSQL = `INSERT INTO coupons
		(id, code, discount_type, value, min_order, max_uses, expires_at, description, active)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, TRUE)
		ON CONFLICT (id) DO UPDATE SET
			code = EXCLUDED.code,
			discount_type = EXCLUDED.discount_type,
			value = EXCLUDED.value,
			min_order = EXCLUDED.min_order,
			max_uses = EXCLUDED.max_uses,
			expires_at = EXCLUDED.expires_at,
			description = EXCLUDED.description,
			active = TRUE`
)

var _ coupon.Repository = (*CouponRepository)(nil)

// CouponRepository implements coupon.Repository backed by PostgreSQL.
type CouponRepository struct {
	pool *pgxpool.Pool
}

// NewCouponRepository returns a CouponRepository that uses the given pool.
func NewCouponRepository(pool *pgxpool.Pool) *CouponRepository {
	return &CouponRepository{pool: pool}
}

// FindByCode looks up an active coupon by its code (case-insensitive).
// Returns coupon.ErrInvalidCoupon when no matching active coupon exists.
func (r *CouponRepository) FindByCode(ctx context.Context, code string) (*coupon.Coupon, error) {
	rows, err := r.pool.Query(ctx, getCouponByCodeSQL, code)
	if err != nil {
		return nil, fmt.Errorf("finding coupon by code %q: %w", code, err)
	}

	c, err := pgx.CollectExactlyOneRow(rows, scanCoupon)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, coupon.ErrInvalidCoupon
		}
		return nil, fmt.Errorf("finding coupon by code %q: %w", code, err)
	}
	return &c, nil
}

// List returns all coupons, newest first.
func (r *CouponRepository) List(ctx context.Context) ([]coupon.Coupon, error) {
	rows, err := r.pool.Query(ctx, listCouponsSQL)
	if err != nil {
		return nil, fmt.Errorf("listing coupons: %w", err)
	}
	return pgx.CollectRows(rows, scanCoupon)
}

// Redeem records the coupon redemption for an order and bumps the usage
// counter, in one transaction. The redemption row's primary key makes the
// operation idempotent per (couponID, orderID): a replay inserts nothing and
// leaves the counter alone.
func (r *CouponRepository) Redeem(ctx context.Context, couponID, orderID string) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin redeem tx: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	tag, err := tx.Exec(ctx, insertRedemptionSQL, couponID, orderID)
	if err != nil {
		return fmt.Errorf("recording redemption of coupon %q: %w", couponID, err)
	}
	if tag.RowsAffected() == 0 {
		// Already redeemed for this order.
		return tx.Commit(ctx)
	}

	tag, err = tx.Exec(ctx, redeemCouponSQL, couponID)
	if err != nil {
		return fmt.Errorf("incrementing uses for coupon %q: %w", couponID, err)
	}
	if tag.RowsAffected() == 0 {
		return coupon.ErrUsageLimitReached
	}

	return tx.Commit(ctx)
}

// Upsert stores a coupon record, marking it active and leaving the usage
// counter untouched. Used by seeding and bulk imports.
func (r *CouponRepository) Upsert(ctx context.Context, c coupon.Coupon) error {
	_, err := r.pool.Exec(ctx, upsertCouponSQL,
		c.ID, c.Code, string(c.DiscountType), c.Value, c.MinOrder,
		c.MaxUses, c.ExpiresAt, c.Description,
	)
	if err != nil {
		return fmt.Errorf("upserting coupon %q: %w", c.Code, err)
	}
	return nil
}

func scanCoupon(row pgx.CollectableRow) (coupon.Coupon, error) {
	var (
		c            coupon.Coupon
		discountType string
		value        decimal.Decimal
		minOrder     decimal.Decimal
		maxUses      int32
		uses         int32
		expiresAt    *time.Time
	)
	err := row.Scan(
		&c.ID, &c.Code, &discountType, &value, &minOrder, &maxUses, &uses,
		&expiresAt, &c.Description, &c.Active,
	)
	c.DiscountType = coupon.DiscountType(discountType)
	c.Value = value
	c.MinOrder = minOrder
	c.MaxUses = int(maxUses)
	c.Uses = int(uses)
	c.ExpiresAt = expiresAt
	return c, err
}
