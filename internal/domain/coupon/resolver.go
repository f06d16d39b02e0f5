package coupon

import (
	"context"
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// Resolver validates a coupon code against a cart subtotal and computes the
// discount it grants. It has no side effects: resolving a code at checkout
// does not count as a redemption.
type Resolver struct {
	repo Repository
	now  func() time.Time
}

// NewResolver creates a Resolver backed by the given Repository.
func NewResolver(repo Repository) *Resolver {
	return &Resolver{repo: repo, now: time.Now}
}

// Resolve checks the code against the catalog and the cart subtotal,
// short-circuiting on the first failing constraint:
// unknown code, minimum order, usage cap, expiry — in that order.
// Resolving the same valid code against the same subtotal is idempotent.
func (r *Resolver) Resolve(ctx context.Context, code string, subtotal decimal.Decimal) (*Applied, error) {
	c, err := r.repo.FindByCode(ctx, code)
	if err != nil {
		if errors.Is(err, ErrInvalidCoupon) {
			return nil, ErrInvalidCoupon
		}
		return nil, errors.Wrap(err, "lookup coupon")
	}

	if subtotal.LessThan(c.MinOrder) {
		return nil, &MinimumNotMetError{Required: c.MinOrder}
	}
	if c.MaxUses > 0 && c.Uses >= c.MaxUses {
		return nil, ErrUsageLimitReached
	}
	if c.ExpiresAt != nil && r.now().After(*c.ExpiresAt) {
		return nil, ErrExpired
	}

	return &Applied{
		CouponID:    c.ID,
		Code:        c.Code,
		Amount:      Discount(c, subtotal),
		Description: c.Description,
	}, nil
}

// Discount computes the discount amount a coupon grants on the subtotal.
// Fixed discounts are deliberately not capped at the subtotal; the total
// calculator floors the discounted subtotal at zero.
func Discount(c *Coupon, subtotal decimal.Decimal) decimal.Decimal {
	switch c.DiscountType {
	case DiscountPercentage:
		return subtotal.Mul(c.Value).Div(hundred).Round(2)
	case DiscountFixed:
		return c.Value.Round(2)
	default:
		return decimal.Zero
	}
}
