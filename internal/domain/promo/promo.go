// Package promo defines bundle offers and the evaluator that decides which
// offers apply to a cart.
package promo

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

// ErrNotFound is returned when a referenced bundle offer does not exist or
// is inactive.
var ErrNotFound = errors.New("bundle offer not found")

// TriggerKind enumerates how a bundle offer is triggered.
type TriggerKind string

const (
	// TriggerQuantity activates when the cart holds at least MinQuantity+1
	// items ("buy N get 1 free").
	TriggerQuantity TriggerKind = "quantity"
	// TriggerAmount activates when the cart subtotal reaches MinOrder
	// ("spend X get Y% off").
	TriggerAmount TriggerKind = "amount"
)

// Offer is an automatic, catalog-managed discount. At most one offer is
// applied per order.
type Offer struct {
	ID          string
	Title       string
	Description string
	Trigger     TriggerKind
	// MinQuantity is the N in "buy N get 1 free"; quantity-triggered only.
	MinQuantity int
	// MinOrder is the subtotal threshold; amount-triggered only.
	MinOrder decimal.Decimal
	// PercentOff is the discount percentage; amount-triggered only.
	PercentOff decimal.Decimal
	Active     bool
}

// Repository provides read access to the bundle offer catalog.
type Repository interface {
	ListActive(ctx context.Context) ([]Offer, error)
	GetByID(ctx context.Context, id string) (*Offer, error)
}
