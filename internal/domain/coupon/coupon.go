// Package coupon implements user-entered discount codes: catalog lookup,
// redeemability checks, and discount calculation. Resolution never mutates
// catalog state; the usage counter moves only when a confirmed order redeems
// the coupon.
package coupon

import (
	"context"
	"fmt"
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

// DiscountType enumerates the supported coupon discount strategies.
type DiscountType string

const (
	// DiscountPercentage applies a percentage of the subtotal.
	DiscountPercentage DiscountType = "percentage"
	// DiscountFixed subtracts a fixed amount. It is not capped at the
	// subtotal; the total calculator floors the result at zero.
	DiscountFixed DiscountType = "fixed"
)

// Rejection sentinels. Every rejection leaves cart and discount state
// untouched and is recoverable by the customer.
var (
	// ErrInvalidCoupon is returned when a code is not found in the catalog.
	ErrInvalidCoupon = errors.New("invalid coupon code")
	// ErrUsageLimitReached is returned when a coupon has exhausted its uses.
	ErrUsageLimitReached = errors.New("coupon usage limit reached")
	// ErrExpired is returned when a coupon is past its expiry.
	ErrExpired = errors.New("coupon expired")
)

// MinimumNotMetError rejects a coupon whose minimum order amount exceeds the
// current subtotal, surfacing the required minimum to the customer.
type MinimumNotMetError struct {
	Required decimal.Decimal
}

func (e *MinimumNotMetError) Error() string {
	return fmt.Sprintf("minimum order of %s not met", e.Required.StringFixed(2))
}

// Coupon is a catalog-managed discount code.
type Coupon struct {
	ID           string
	Code         string
	DiscountType DiscountType
	Value        decimal.Decimal
	MinOrder     decimal.Decimal
	// MaxUses of 0 means unlimited.
	MaxUses     int
	Uses        int
	ExpiresAt   *time.Time
	Description string
	Active      bool
}

// Applied is the transient result of resolving a code against a subtotal.
type Applied struct {
	CouponID    string
	Code        string
	Amount      decimal.Decimal
	Description string
}

// Repository provides coupon lookup and the server-side redemption step.
type Repository interface {
	// FindByCode looks up an active coupon case-insensitively.
	// Returns ErrInvalidCoupon when no active coupon matches.
	FindByCode(ctx context.Context, code string) (*Coupon, error)
	// List returns all coupons, active or not, newest first.
	List(ctx context.Context) ([]Coupon, error)
	// Redeem atomically increments the usage counter for a confirmed order.
	// It is idempotent per (couponID, orderID): redeeming the same pair
	// twice counts once. Returns ErrUsageLimitReached when the counter is
	// already at the cap.
	Redeem(ctx context.Context, couponID, orderID string) error
}
