package order

import (
	"context"
	"fmt"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/posterzone/storefront/internal/domain/audit"
	"github.com/posterzone/storefront/internal/domain/cart"
	"github.com/posterzone/storefront/internal/domain/coupon"
	"github.com/posterzone/storefront/internal/domain/poster"
	"github.com/posterzone/storefront/internal/domain/pricing"
	"github.com/posterzone/storefront/internal/domain/promo"
	"github.com/posterzone/storefront/internal/domain/settings"
)

// Checkout validation errors.
var (
	ErrEmptyCart = errors.New("cart is empty")
	// ErrBundleNotApplicable is returned when the selected bundle offer no
	// longer applies to the cart at submission time.
	ErrBundleNotApplicable = errors.New("selected bundle offer is not applicable")
)

// ValidationError reports a missing or invalid checkout field. The caller
// can re-prompt without losing form state; nothing has been persisted.
type ValidationError struct {
	Field string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("missing required field %q", e.Field)
}

// PosterUnavailableError indicates a cart line references a poster that has
// gone missing or inactive since it was added.
type PosterUnavailableError struct {
	PosterID string
}

func (e *PosterUnavailableError) Error() string {
	return fmt.Sprintf("poster %s is no longer available", e.PosterID)
}

// CheckoutRequest is the input for submitting an order.
type CheckoutRequest struct {
	SessionID string
	UserID    string
	Address   ShippingAddress
}

// Service orchestrates checkout: it re-validates every client-held claim
// (prices, bundle applicability, coupon redeemability) against the catalog
// before anything is persisted.
type Service struct {
	carts    *cart.Store
	posters  poster.Repository
	offers   promo.Repository
	coupons  coupon.Repository
	resolver *coupon.Resolver
	orders   Repository
	settings settings.Repository
	auditLog audit.Repository
}

// NewService creates an order Service with the required domain dependencies.
func NewService(
	carts *cart.Store,
	posters poster.Repository,
	offers promo.Repository,
	coupons coupon.Repository,
	resolver *coupon.Resolver,
	orders Repository,
	settingsRepo settings.Repository,
	auditLog audit.Repository,
) *Service {
	return &Service{
		carts:    carts,
		posters:  posters,
		offers:   offers,
		coupons:  coupons,
		resolver: resolver,
		orders:   orders,
		settings: settingsRepo,
		auditLog: auditLog,
	}
}

// Checkout validates the session cart and shipping address, recomputes all
// pricing server-side, persists the order as pending, redeems the coupon,
// and clears the cart. On any failure before the order write, nothing is
// persisted and the cart is left untouched, so the customer can retry.
func (s *Service) Checkout(ctx context.Context, req CheckoutRequest) (*Order, error) {
	if req.UserID == "" {
		return nil, &ValidationError{Field: "user"}
	}
	if err := validateAddress(req.Address); err != nil {
		return nil, err
	}

	c := s.carts.Get(req.SessionID)
	if c.IsEmpty() {
		return nil, ErrEmptyCart
	}

	items, subtotal, err := s.priceLines(ctx, c.Lines)
	if err != nil {
		return nil, err
	}

	// Bundle applicability is judged against the re-priced lines, not the
	// prices the cart was built with.
	repriced := make([]cart.Line, len(items))
	for i, it := range items {
		repriced[i] = cart.Line{
			PosterID:  it.PosterID,
			UnitPrice: it.UnitPrice,
			Quantity:  it.Quantity,
			Size:      it.Size,
		}
	}

	bundleDiscount := decimal.Zero
	if c.BundleID != "" {
		offer, err := s.offers.GetByID(ctx, c.BundleID)
		if err != nil {
			return nil, errors.Wrap(err, "get bundle offer")
		}
		savings, ok := promo.SavingsFor(*offer, repriced)
		if !ok {
			return nil, ErrBundleNotApplicable
		}
		bundleDiscount = savings
	}

	couponDiscount := decimal.Zero
	couponID := ""
	if c.CouponCode != "" {
		applied, err := s.resolver.Resolve(ctx, c.CouponCode, subtotal)
		if err != nil {
			return nil, err
		}
		couponDiscount = applied.Amount
		couponID = applied.CouponID
	}

	cfg, err := settings.PricingConfig(ctx, s.settings)
	if err != nil {
		return nil, errors.Wrap(err, "load pricing config")
	}
	totals := pricing.Compute(subtotal, bundleDiscount, couponDiscount, cfg)

	o := &Order{
		ID:              uuid.New().String(),
		UserID:          req.UserID,
		Status:          StatusPending,
		Items:           items,
		Subtotal:        totals.Subtotal,
		BundleDiscount:  totals.BundleDiscount,
		CouponDiscount:  totals.CouponDiscount,
		Shipping:        totals.Shipping,
		Tax:             totals.Tax,
		Total:           totals.Total,
		CouponID:        couponID,
		BundleID:        c.BundleID,
		ShippingAddress: req.Address,
	}
	if err := s.orders.Create(ctx, o); err != nil {
		return nil, errors.Wrap(err, "create order")
	}

	if couponID != "" {
		if err := s.coupons.Redeem(ctx, couponID, o.ID); err != nil {
			// The order row exists but the redemption was refused, most
			// likely because a concurrent checkout took the last use.
			// Cancel the order so no unredeemed discount ships.
			_ = s.orders.UpdateStatus(ctx, o.ID, StatusPending, StatusCancelled)
			return nil, errors.Wrap(err, "redeem coupon")
		}
	}

	s.carts.Clear(req.SessionID)
	return o, nil
}

// priceLines re-prices every cart line from the current catalog in a single
// batch fetch. Client-held prices are never trusted.
func (s *Service) priceLines(ctx context.Context, lines []cart.Line) ([]Item, decimal.Decimal, error) {
	ids := make([]string, len(lines))
	for i, l := range lines {
		if l.Quantity <= 0 {
			return nil, decimal.Zero, cart.ErrInvalidQuantity
		}
		ids[i] = l.PosterID
	}

	fetched, err := s.posters.GetByIDs(ctx, ids)
	if err != nil {
		return nil, decimal.Zero, errors.Wrap(err, "get posters")
	}
	byID := make(map[string]poster.Poster, len(fetched))
	for _, p := range fetched {
		byID[p.ID] = p
	}

	items := make([]Item, 0, len(lines))
	subtotal := decimal.Zero
	for _, l := range lines {
		p, ok := byID[l.PosterID]
		if !ok || !p.Active {
			return nil, decimal.Zero, &PosterUnavailableError{PosterID: l.PosterID}
		}
		items = append(items, Item{
			PosterID:  p.ID,
			Title:     p.Title,
			UnitPrice: p.Price,
			Quantity:  l.Quantity,
			Size:      l.Size,
		})
		subtotal = subtotal.Add(p.Price.Mul(decimal.NewFromInt(int64(l.Quantity))))
	}
	return items, subtotal, nil
}

// Transition moves an order to the next status on behalf of an admin actor,
// enforcing the lifecycle rules and recording the change in the audit log.
func (s *Service) Transition(ctx context.Context, actor, orderID string, next Status) (*Order, error) {
	o, err := s.orders.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}

	if !o.Status.CanTransition(next) {
		return nil, &InvalidTransitionError{From: o.Status, To: next}
	}

	if err := s.orders.UpdateStatus(ctx, orderID, o.Status, next); err != nil {
		return nil, errors.Wrap(err, "update order status")
	}

	if err := audit.Record(ctx, s.auditLog, actor, "order.status", "order", orderID,
		fmt.Sprintf("%s -> %s", o.Status, next)); err != nil {
		return nil, errors.Wrap(err, "record audit entry")
	}

	o.Status = next
	return o, nil
}

func validateAddress(a ShippingAddress) error {
	fields := []struct {
		name  string
		value string
	}{
		{"name", a.Name},
		{"address", a.Address},
		{"city", a.City},
		{"state", a.State},
		{"pincode", a.Pincode},
		{"phone", a.Phone},
		{"country", a.Country},
	}
	for _, f := range fields {
		if f.value == "" {
			return &ValidationError{Field: f.name}
		}
	}
	return nil
}
