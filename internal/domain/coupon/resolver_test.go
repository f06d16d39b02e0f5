package coupon

import (
	"context"
	"testing"
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockCouponRepo struct {
	coupon *Coupon
	err    error

	redeemErr      error
	redeemedCoupon string
	redeemedOrder  string
}

func (m *mockCouponRepo) FindByCode(_ context.Context, _ string) (*Coupon, error) {
	return m.coupon, m.err
}

func (m *mockCouponRepo) List(_ context.Context) ([]Coupon, error) {
	if m.coupon == nil {
		return nil, nil
	}
	return []Coupon{*m.coupon}, nil
}

func (m *mockCouponRepo) Redeem(_ context.Context, couponID, orderID string) error {
	m.redeemedCoupon = couponID
	m.redeemedOrder = orderID
	return m.redeemErr
}

func newTestResolver(repo Repository, now time.Time) *Resolver {
	r := NewResolver(repo)
	r.now = func() time.Time { return now }
	return r
}

func TestResolver_Resolve(t *testing.T) {
	fixedNow := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
	pastTime := fixedNow.Add(-24 * time.Hour)
	futureTime := fixedNow.Add(24 * time.Hour)

	tests := []struct {
		name       string
		repo       *mockCouponRepo
		code       string
		subtotal   decimal.Decimal
		wantAmount decimal.Decimal
		wantErr    error
	}{
		{
			name: "percentage coupon returns discount",
			repo: &mockCouponRepo{
				coupon: &Coupon{
					ID:           "save10",
					Code:         "SAVE10",
					DiscountType: DiscountPercentage,
					Value:        decimal.NewFromInt(10),
					Description:  "10% off",
				},
			},
			code:       "SAVE10",
			subtotal:   decimal.NewFromInt(2000),
			wantAmount: decimal.NewFromInt(200),
		},
		{
			name: "fixed coupon returns its face value",
			repo: &mockCouponRepo{
				coupon: &Coupon{
					ID:           "flat50",
					Code:         "FLAT50",
					DiscountType: DiscountFixed,
					Value:        decimal.NewFromInt(50),
				},
			},
			code:       "FLAT50",
			subtotal:   decimal.NewFromInt(300),
			wantAmount: decimal.NewFromInt(50),
		},
		{
			name: "fixed coupon larger than subtotal is not capped here",
			repo: &mockCouponRepo{
				coupon: &Coupon{
					ID:           "mega",
					Code:         "MEGA",
					DiscountType: DiscountFixed,
					Value:        decimal.NewFromInt(500),
				},
			},
			code:       "MEGA",
			subtotal:   decimal.NewFromInt(100),
			wantAmount: decimal.NewFromInt(500),
		},
		{
			name:     "unknown code returns ErrInvalidCoupon",
			repo:     &mockCouponRepo{err: ErrInvalidCoupon},
			code:     "BOGUS",
			subtotal: decimal.NewFromInt(100),
			wantErr:  ErrInvalidCoupon,
		},
		{
			name: "subtotal just below minimum is rejected",
			repo: &mockCouponRepo{
				coupon: &Coupon{
					ID:           "min1500",
					Code:         "MIN1500",
					DiscountType: DiscountPercentage,
					Value:        decimal.NewFromInt(10),
					MinOrder:     decimal.NewFromInt(1500),
				},
			},
			code:     "MIN1500",
			subtotal: decimal.RequireFromString("1499.99"),
			wantErr:  &MinimumNotMetError{},
		},
		{
			name: "subtotal exactly at minimum is accepted",
			repo: &mockCouponRepo{
				coupon: &Coupon{
					ID:           "min1500",
					Code:         "MIN1500",
					DiscountType: DiscountPercentage,
					Value:        decimal.NewFromInt(10),
					MinOrder:     decimal.NewFromInt(1500),
				},
			},
			code:       "MIN1500",
			subtotal:   decimal.NewFromInt(1500),
			wantAmount: decimal.NewFromInt(150),
		},
		{
			name: "exhausted usage cap is rejected",
			repo: &mockCouponRepo{
				coupon: &Coupon{
					ID:           "limited",
					Code:         "LIMITED",
					DiscountType: DiscountFixed,
					Value:        decimal.NewFromInt(20),
					MaxUses:      100,
					Uses:         100,
				},
			},
			code:     "LIMITED",
			subtotal: decimal.NewFromInt(100),
			wantErr:  ErrUsageLimitReached,
		},
		{
			name: "zero max uses means unlimited",
			repo: &mockCouponRepo{
				coupon: &Coupon{
					ID:           "forever",
					Code:         "FOREVER",
					DiscountType: DiscountFixed,
					Value:        decimal.NewFromInt(20),
					MaxUses:      0,
					Uses:         1_000_000,
				},
			},
			code:       "FOREVER",
			subtotal:   decimal.NewFromInt(100),
			wantAmount: decimal.NewFromInt(20),
		},
		{
			name: "expired coupon is rejected",
			repo: &mockCouponRepo{
				coupon: &Coupon{
					ID:           "old",
					Code:         "OLD",
					DiscountType: DiscountPercentage,
					Value:        decimal.NewFromInt(10),
					ExpiresAt:    &pastTime,
				},
			},
			code:     "OLD",
			subtotal: decimal.NewFromInt(100),
			wantErr:  ErrExpired,
		},
		{
			name: "future expiry is accepted",
			repo: &mockCouponRepo{
				coupon: &Coupon{
					ID:           "fresh",
					Code:         "FRESH",
					DiscountType: DiscountPercentage,
					Value:        decimal.NewFromInt(10),
					ExpiresAt:    &futureTime,
				},
			},
			code:       "FRESH",
			subtotal:   decimal.NewFromInt(100),
			wantAmount: decimal.NewFromInt(10),
		},
		{
			name: "minimum order is checked before usage cap",
			repo: &mockCouponRepo{
				coupon: &Coupon{
					ID:           "both",
					Code:         "BOTH",
					DiscountType: DiscountFixed,
					Value:        decimal.NewFromInt(20),
					MinOrder:     decimal.NewFromInt(500),
					MaxUses:      10,
					Uses:         10,
				},
			},
			code:     "BOTH",
			subtotal: decimal.NewFromInt(100),
			wantErr:  &MinimumNotMetError{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := newTestResolver(tt.repo, fixedNow)

			applied, err := r.Resolve(context.Background(), tt.code, tt.subtotal)

			if tt.wantErr != nil {
				require.Error(t, err)
				var minErr *MinimumNotMetError
				if errors.As(tt.wantErr, &minErr) {
					assert.ErrorAs(t, err, &minErr)
				} else {
					assert.ErrorIs(t, err, tt.wantErr)
				}
				assert.Nil(t, applied)
				return
			}

			require.NoError(t, err)
			require.NotNil(t, applied)
			assert.True(t, tt.wantAmount.Equal(applied.Amount),
				"amount: got %s, want %s", applied.Amount, tt.wantAmount)
		})
	}
}

func TestResolver_ResolveIsIdempotent(t *testing.T) {
	repo := &mockCouponRepo{
		coupon: &Coupon{
			ID:           "save10",
			Code:         "SAVE10",
			DiscountType: DiscountPercentage,
			Value:        decimal.NewFromInt(10),
		},
	}
	r := NewResolver(repo)
	subtotal := decimal.NewFromInt(1800)

	first, err := r.Resolve(context.Background(), "SAVE10", subtotal)
	require.NoError(t, err)
	second, err := r.Resolve(context.Background(), "SAVE10", subtotal)
	require.NoError(t, err)

	assert.True(t, first.Amount.Equal(second.Amount))
	// Resolution never touches the usage counter.
	assert.Empty(t, repo.redeemedCoupon)
}

func TestMinimumNotMetError_Message(t *testing.T) {
	err := &MinimumNotMetError{Required: decimal.NewFromInt(1500)}
	assert.Equal(t, "minimum order of 1500.00 not met", err.Error())
}

func TestDiscount_RoundsToCents(t *testing.T) {
	c := &Coupon{
		DiscountType: DiscountPercentage,
		Value:        decimal.NewFromInt(15),
	}
	// 15% of 199.99 = 29.9985, rounds to 30.00.
	got := Discount(c, decimal.RequireFromString("199.99"))
	assert.True(t, decimal.RequireFromString("30.00").Equal(got), "got %s", got)
}
