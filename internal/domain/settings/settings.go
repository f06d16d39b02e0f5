// Package settings exposes the admin-managed store configuration.
package settings

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/posterzone/storefront/internal/domain/pricing"
)

// Recognized setting keys.
const (
	KeyFreeShippingThreshold = "freeShippingThreshold"
	KeyFlatShippingFee       = "flatShippingFee"
	KeyTaxRate               = "taxRate"
)

// Repository reads raw settings from the record store.
type Repository interface {
	// GetAll returns every stored setting as key -> raw value.
	GetAll(ctx context.Context) (map[string]string, error)
}

// PricingConfig builds a pricing.Config from stored settings, falling back
// to the defaults for keys that are absent or malformed.
func PricingConfig(ctx context.Context, repo Repository) (pricing.Config, error) {
	cfg := pricing.DefaultConfig()

	raw, err := repo.GetAll(ctx)
	if err != nil {
		return pricing.Config{}, err
	}

	if v, ok := parse(raw, KeyFreeShippingThreshold); ok {
		cfg.FreeShippingThreshold = v
	}
	if v, ok := parse(raw, KeyFlatShippingFee); ok {
		cfg.FlatShippingFee = v
	}
	if v, ok := parse(raw, KeyTaxRate); ok {
		cfg.TaxRate = v
	}
	return cfg, nil
}

func parse(raw map[string]string, key string) (decimal.Decimal, bool) {
	s, ok := raw[key]
	if !ok {
		return decimal.Zero, false
	}
	v, err := decimal.NewFromString(s)
	if err != nil || v.IsNegative() {
		return decimal.Zero, false
	}
	return v, true
}
