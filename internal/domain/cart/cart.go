// Package cart holds the session-local shopping cart and its applied
// discount state. A cart belongs to exactly one session; all pricing over
// its contents is recomputed from scratch on every read.
package cart

import (
	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

// Sentinel errors for cart mutations.
var (
	ErrLineNotFound    = errors.New("cart line not found")
	ErrInvalidQuantity = errors.New("quantity must be greater than 0")
)

// Line is a single poster entry in a cart.
type Line struct {
	ID        string
	PosterID  string
	Title     string
	UnitPrice decimal.Decimal
	Quantity  int
	Image     string
	Size      string
}

// Cart is the mutable per-session state: line items plus the currently
// applied coupon code and selected bundle offer. At most one of each.
type Cart struct {
	SessionID  string
	Lines      []Line
	CouponCode string
	BundleID   string
}

// Subtotal returns the sum of unit price times quantity across all lines.
func (c *Cart) Subtotal() decimal.Decimal {
	sum := decimal.Zero
	for _, l := range c.Lines {
		sum = sum.Add(l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity))))
	}
	return sum
}

// TotalQuantity returns the total item count across all lines.
func (c *Cart) TotalQuantity() int {
	n := 0
	for _, l := range c.Lines {
		n += l.Quantity
	}
	return n
}

// IsEmpty reports whether the cart has no line items.
func (c *Cart) IsEmpty() bool {
	return len(c.Lines) == 0
}

func (c *Cart) line(id string) (int, bool) {
	for i := range c.Lines {
		if c.Lines[i].ID == id {
			return i, true
		}
	}
	return 0, false
}
