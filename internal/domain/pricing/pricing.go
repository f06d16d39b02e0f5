// Package pricing combines subtotal, discounts, shipping policy, and tax
// into the final payable total. Everything here is a pure function of its
// inputs; the configuration comes from store settings, not package state.
package pricing

import "github.com/shopspring/decimal"

// Config holds the store-configurable pricing constants.
type Config struct {
	// FreeShippingThreshold is the discounted subtotal above which shipping
	// is free. The comparison is strict: exactly at the threshold still pays.
	FreeShippingThreshold decimal.Decimal
	// FlatShippingFee is charged on orders at or below the threshold.
	FlatShippingFee decimal.Decimal
	// TaxRate is applied to the discounted subtotal, e.g. 0.18 for 18% GST.
	TaxRate decimal.Decimal
}

// DefaultConfig returns the stock configuration: free shipping above 1500,
// flat 50 fee otherwise, 18% tax.
func DefaultConfig() Config {
	return Config{
		FreeShippingThreshold: decimal.NewFromInt(1500),
		FlatShippingFee:       decimal.NewFromInt(50),
		TaxRate:               decimal.RequireFromString("0.18"),
	}
}

// Totals is the full pricing breakdown for a cart. It is derived state,
// recomputed on every cart or discount change, never stored mutably.
type Totals struct {
	Subtotal           decimal.Decimal
	BundleDiscount     decimal.Decimal
	CouponDiscount     decimal.Decimal
	DiscountedSubtotal decimal.Decimal
	Shipping           decimal.Decimal
	Tax                decimal.Decimal
	Total              decimal.Decimal
}

// Compute derives the full breakdown. The discounted subtotal is floored at
// zero, so shipping, tax, and total can never go negative.
func Compute(subtotal, bundleDiscount, couponDiscount decimal.Decimal, cfg Config) Totals {
	discounted := subtotal.Sub(bundleDiscount).Sub(couponDiscount)
	if discounted.IsNegative() {
		discounted = decimal.Zero
	}

	shipping := cfg.FlatShippingFee
	if discounted.GreaterThan(cfg.FreeShippingThreshold) {
		shipping = decimal.Zero
	}

	tax := discounted.Mul(cfg.TaxRate).Round(2)

	return Totals{
		Subtotal:           subtotal.Round(2),
		BundleDiscount:     bundleDiscount.Round(2),
		CouponDiscount:     couponDiscount.Round(2),
		DiscountedSubtotal: discounted.Round(2),
		Shipping:           shipping.Round(2),
		Tax:                tax,
		Total:              discounted.Add(shipping).Add(tax).Round(2),
	}
}
