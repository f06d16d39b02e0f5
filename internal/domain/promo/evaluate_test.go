package promo

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/posterzone/storefront/internal/domain/cart"
)

func line(posterID string, price int64, qty int) cart.Line {
	return cart.Line{
		ID:        posterID + "-line",
		PosterID:  posterID,
		UnitPrice: decimal.NewFromInt(price),
		Quantity:  qty,
	}
}

func buyThreeGetOne() Offer {
	return Offer{
		ID:          "buy-3-get-1",
		Title:       "Buy 3, Get 1 Free",
		Trigger:     TriggerQuantity,
		MinQuantity: 3,
		Active:      true,
	}
}

func bigOrderPercent(minOrder, percent int64) Offer {
	return Offer{
		ID:         "big-order",
		Title:      "Big Order Bonus",
		Trigger:    TriggerAmount,
		MinOrder:   decimal.NewFromInt(minOrder),
		PercentOff: decimal.NewFromInt(percent),
		Active:     true,
	}
}

func TestSavingsFor_QuantityTrigger(t *testing.T) {
	tests := []struct {
		name        string
		lines       []cart.Line
		wantSavings string
		wantOK      bool
	}{
		{
			name: "four distinct posters save the cheapest",
			lines: []cart.Line{
				line("p1", 100, 1),
				line("p2", 200, 1),
				line("p3", 150, 1),
				line("p4", 300, 1),
			},
			wantSavings: "100",
			wantOK:      true,
		},
		{
			name: "three items is one short of buy 3 get 1",
			lines: []cart.Line{
				line("p1", 100, 1),
				line("p2", 200, 1),
				line("p3", 150, 1),
			},
			wantOK: false,
		},
		{
			name: "quantities count toward the trigger",
			lines: []cart.Line{
				line("p1", 100, 3),
				line("p2", 200, 1),
			},
			wantSavings: "100",
			wantOK:      true,
		},
		{
			name: "tie on cheapest price picks the first occurrence",
			lines: []cart.Line{
				line("p1", 100, 2),
				line("p2", 100, 2),
			},
			wantSavings: "100",
			wantOK:      true,
		},
		{
			name:   "empty cart never triggers",
			lines:  nil,
			wantOK: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			savings, ok := SavingsFor(buyThreeGetOne(), tt.lines)

			require.Equal(t, tt.wantOK, ok)
			if tt.wantOK {
				want := decimal.RequireFromString(tt.wantSavings)
				assert.True(t, want.Equal(savings), "savings: got %s, want %s", savings, want)
			}
		})
	}
}

func TestSavingsFor_AmountTrigger(t *testing.T) {
	offer := bigOrderPercent(3000, 5)

	t.Run("below threshold does not trigger", func(t *testing.T) {
		_, ok := SavingsFor(offer, []cart.Line{line("p1", 2999, 1)})
		assert.False(t, ok)
	})

	t.Run("at threshold triggers", func(t *testing.T) {
		savings, ok := SavingsFor(offer, []cart.Line{line("p1", 3000, 1)})
		require.True(t, ok)
		assert.True(t, decimal.NewFromInt(150).Equal(savings), "got %s", savings)
	})

	t.Run("savings are a percentage of the subtotal", func(t *testing.T) {
		savings, ok := SavingsFor(offer, []cart.Line{line("p1", 2000, 2)})
		require.True(t, ok)
		assert.True(t, decimal.NewFromInt(200).Equal(savings), "got %s", savings)
	})
}

func TestEvaluate(t *testing.T) {
	lines := []cart.Line{
		line("p1", 100, 1),
		line("p2", 200, 1),
		line("p3", 150, 1),
		line("p4", 300, 1),
	}
	offers := []Offer{
		buyThreeGetOne(),
		bigOrderPercent(3000, 5), // subtotal is 750, not triggered
	}

	applicable := Evaluate(lines, offers)

	require.Len(t, applicable, 1)
	assert.Equal(t, "buy-3-get-1", applicable[0].Offer.ID)
	assert.True(t, decimal.NewFromInt(100).Equal(applicable[0].Savings))
}

func TestEvaluate_ExcludesZeroSavings(t *testing.T) {
	// A zero-percent offer technically triggers but saves nothing.
	offers := []Offer{bigOrderPercent(0, 0)}

	applicable := Evaluate([]cart.Line{line("p1", 500, 1)}, offers)

	assert.Empty(t, applicable)
}

func TestEvaluate_UnknownTriggerIgnored(t *testing.T) {
	offers := []Offer{{ID: "odd", Trigger: TriggerKind("weekday"), Active: true}}

	applicable := Evaluate([]cart.Line{line("p1", 500, 1)}, offers)

	assert.Empty(t, applicable)
}
