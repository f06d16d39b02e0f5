package promo

import (
	"github.com/shopspring/decimal"

	"github.com/posterzone/storefront/internal/domain/cart"
)

var hundred = decimal.NewFromInt(100)

// Applicable is an offer whose trigger condition holds for the current cart,
// annotated with the savings it yields.
type Applicable struct {
	Offer   Offer
	Savings decimal.Decimal
}

// Evaluate returns the offers applicable to the given cart lines, each with
// its computed savings. Offers whose savings come out to zero are excluded:
// an offer that saves nothing is a no-op choice the customer should not see.
// Pure computation; callers re-run it whenever the cart changes.
func Evaluate(lines []cart.Line, offers []Offer) []Applicable {
	var out []Applicable
	for _, o := range offers {
		savings, ok := savingsFor(o, lines)
		if !ok || !savings.IsPositive() {
			continue
		}
		out = append(out, Applicable{Offer: o, Savings: savings.Round(2)})
	}
	return out
}

// SavingsFor computes the savings of a single offer against the cart lines.
// It returns false when the offer's trigger condition is not met.
func SavingsFor(o Offer, lines []cart.Line) (decimal.Decimal, bool) {
	savings, ok := savingsFor(o, lines)
	if !ok || !savings.IsPositive() {
		return decimal.Zero, false
	}
	return savings.Round(2), true
}

func savingsFor(o Offer, lines []cart.Line) (decimal.Decimal, bool) {
	switch o.Trigger {
	case TriggerQuantity:
		// Buy N get 1 free: needs N+1 items; the free unit is the cheapest
		// one in the cart, first occurrence winning ties.
		if totalQuantity(lines) < o.MinQuantity+1 {
			return decimal.Zero, false
		}
		return cheapestUnitPrice(lines), true
	case TriggerAmount:
		sub := subtotal(lines)
		if sub.LessThan(o.MinOrder) {
			return decimal.Zero, false
		}
		return sub.Mul(o.PercentOff).Div(hundred), true
	default:
		return decimal.Zero, false
	}
}

func subtotal(lines []cart.Line) decimal.Decimal {
	sum := decimal.Zero
	for _, l := range lines {
		sum = sum.Add(l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity))))
	}
	return sum
}

func totalQuantity(lines []cart.Line) int {
	n := 0
	for _, l := range lines {
		n += l.Quantity
	}
	return n
}

// cheapestUnitPrice returns the lowest unit price among the lines, keeping
// the first occurrence on ties. Zero for an empty cart.
func cheapestUnitPrice(lines []cart.Line) decimal.Decimal {
	if len(lines) == 0 {
		return decimal.Zero
	}
	lowest := lines[0].UnitPrice
	for _, l := range lines[1:] {
		if l.UnitPrice.LessThan(lowest) {
			lowest = l.UnitPrice
		}
	}
	return lowest
}
