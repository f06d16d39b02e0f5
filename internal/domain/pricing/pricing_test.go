package pricing

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestCompute(t *testing.T) {
	cfg := DefaultConfig()

	tests := []struct {
		name           string
		subtotal       string
		bundleDiscount string
		couponDiscount string
		wantDiscounted string
		wantShipping   string
		wantTax        string
		wantTotal      string
	}{
		{
			name:           "ten percent coupon on 2000 ships free",
			subtotal:       "2000",
			bundleDiscount: "0",
			couponDiscount: "200",
			wantDiscounted: "1800",
			wantShipping:   "0",
			wantTax:        "324",
			wantTotal:      "2124",
		},
		{
			name:           "no discounts below threshold pays flat shipping",
			subtotal:       "1000",
			bundleDiscount: "0",
			couponDiscount: "0",
			wantDiscounted: "1000",
			wantShipping:   "50",
			wantTax:        "180",
			wantTotal:      "1230",
		},
		{
			name:           "exactly at the threshold still pays shipping",
			subtotal:       "1500",
			bundleDiscount: "0",
			couponDiscount: "0",
			wantDiscounted: "1500",
			wantShipping:   "50",
			wantTax:        "270",
			wantTotal:      "1820",
		},
		{
			name:           "a cent over the threshold ships free",
			subtotal:       "1500.01",
			bundleDiscount: "0",
			couponDiscount: "0",
			wantDiscounted: "1500.01",
			wantShipping:   "0",
			wantTax:        "270.00",
			wantTotal:      "1770.01",
		},
		{
			name:           "discounts can push a free-shipping cart back under",
			subtotal:       "1600",
			bundleDiscount: "0",
			couponDiscount: "200",
			wantDiscounted: "1400",
			wantShipping:   "50",
			wantTax:        "252",
			wantTotal:      "1702",
		},
		{
			name:           "oversized fixed discount floors at zero",
			subtotal:       "100",
			bundleDiscount: "0",
			couponDiscount: "500",
			wantDiscounted: "0",
			wantShipping:   "50",
			wantTax:        "0",
			wantTotal:      "50",
		},
		{
			name:           "bundle and coupon discounts are additive",
			subtotal:       "2000",
			bundleDiscount: "300",
			couponDiscount: "200",
			wantDiscounted: "1500",
			wantShipping:   "50",
			wantTax:        "270",
			wantTotal:      "1820",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Compute(d(tt.subtotal), d(tt.bundleDiscount), d(tt.couponDiscount), cfg)

			assert.True(t, d(tt.wantDiscounted).Equal(got.DiscountedSubtotal),
				"discounted: got %s, want %s", got.DiscountedSubtotal, tt.wantDiscounted)
			assert.True(t, d(tt.wantShipping).Equal(got.Shipping),
				"shipping: got %s, want %s", got.Shipping, tt.wantShipping)
			assert.True(t, d(tt.wantTax).Equal(got.Tax),
				"tax: got %s, want %s", got.Tax, tt.wantTax)
			assert.True(t, d(tt.wantTotal).Equal(got.Total),
				"total: got %s, want %s", got.Total, tt.wantTotal)
		})
	}
}

func TestCompute_TaxRounding(t *testing.T) {
	got := Compute(d("99.99"), decimal.Zero, decimal.Zero, DefaultConfig())

	// 18% of 99.99 = 17.9982, rounds to 18.00.
	assert.True(t, d("18.00").Equal(got.Tax), "tax: got %s", got.Tax)
	assert.True(t, d("167.99").Equal(got.Total), "total: got %s", got.Total)
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.True(t, d("1500").Equal(cfg.FreeShippingThreshold))
	assert.True(t, d("50").Equal(cfg.FlatShippingFee))
	assert.True(t, d("0.18").Equal(cfg.TaxRate))
}
