package cart

import (
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLine(posterID, size string, price int64, qty int) Line {
	return Line{
		PosterID:  posterID,
		Title:     "Poster " + posterID,
		UnitPrice: decimal.NewFromInt(price),
		Quantity:  qty,
		Size:      size,
	}
}

func TestStore_GetCreatesEmptyCart(t *testing.T) {
	s := NewStore(time.Hour)

	c := s.Get("sess-1")

	assert.Equal(t, "sess-1", c.SessionID)
	assert.True(t, c.IsEmpty())
}

func TestStore_AddLine(t *testing.T) {
	s := NewStore(time.Hour)

	c, err := s.AddLine("sess-1", testLine("p1", "A2", 100, 2))
	require.NoError(t, err)

	require.Len(t, c.Lines, 1)
	assert.NotEmpty(t, c.Lines[0].ID)
	assert.Equal(t, 2, c.Lines[0].Quantity)
}

func TestStore_AddLine_MergesSamePosterAndSize(t *testing.T) {
	s := NewStore(time.Hour)

	_, err := s.AddLine("sess-1", testLine("p1", "A2", 100, 1))
	require.NoError(t, err)
	c, err := s.AddLine("sess-1", testLine("p1", "A2", 100, 2))
	require.NoError(t, err)

	require.Len(t, c.Lines, 1)
	assert.Equal(t, 3, c.Lines[0].Quantity)
}

func TestStore_AddLine_DifferentSizeIsSeparateLine(t *testing.T) {
	s := NewStore(time.Hour)

	_, err := s.AddLine("sess-1", testLine("p1", "A2", 100, 1))
	require.NoError(t, err)
	c, err := s.AddLine("sess-1", testLine("p1", "A1", 150, 1))
	require.NoError(t, err)

	assert.Len(t, c.Lines, 2)
}

func TestStore_AddLine_RejectsNonPositiveQuantity(t *testing.T) {
	s := NewStore(time.Hour)

	_, err := s.AddLine("sess-1", testLine("p1", "A2", 100, 0))
	assert.ErrorIs(t, err, ErrInvalidQuantity)

	_, err = s.AddLine("sess-1", testLine("p1", "A2", 100, -1))
	assert.ErrorIs(t, err, ErrInvalidQuantity)
}

func TestStore_UpdateQuantity(t *testing.T) {
	s := NewStore(time.Hour)
	c, err := s.AddLine("sess-1", testLine("p1", "A2", 100, 1))
	require.NoError(t, err)
	lineID := c.Lines[0].ID

	c, err = s.UpdateQuantity("sess-1", lineID, 5)
	require.NoError(t, err)
	assert.Equal(t, 5, c.Lines[0].Quantity)

	_, err = s.UpdateQuantity("sess-1", lineID, 0)
	assert.ErrorIs(t, err, ErrInvalidQuantity)

	_, err = s.UpdateQuantity("sess-1", "missing", 1)
	assert.ErrorIs(t, err, ErrLineNotFound)
}

func TestStore_RemoveLine(t *testing.T) {
	s := NewStore(time.Hour)
	c, err := s.AddLine("sess-1", testLine("p1", "A2", 100, 1))
	require.NoError(t, err)

	c, err = s.RemoveLine("sess-1", c.Lines[0].ID)
	require.NoError(t, err)
	assert.True(t, c.IsEmpty())

	_, err = s.RemoveLine("sess-1", "missing")
	assert.ErrorIs(t, err, ErrLineNotFound)
}

func TestStore_CouponAndBundleState(t *testing.T) {
	s := NewStore(time.Hour)

	c := s.ApplyCoupon("sess-1", "SAVE10")
	assert.Equal(t, "SAVE10", c.CouponCode)

	// Applying a second code replaces the first.
	c = s.ApplyCoupon("sess-1", "FLASH50")
	assert.Equal(t, "FLASH50", c.CouponCode)

	c = s.RemoveCoupon("sess-1")
	assert.Empty(t, c.CouponCode)

	c = s.SelectBundle("sess-1", "buy-3-get-1")
	assert.Equal(t, "buy-3-get-1", c.BundleID)

	c = s.SelectBundle("sess-1", "big-order-5")
	assert.Equal(t, "big-order-5", c.BundleID)

	c = s.ClearBundle("sess-1")
	assert.Empty(t, c.BundleID)
}

func TestStore_Clear(t *testing.T) {
	s := NewStore(time.Hour)
	_, err := s.AddLine("sess-1", testLine("p1", "A2", 100, 1))
	require.NoError(t, err)
	s.ApplyCoupon("sess-1", "SAVE10")
	s.SelectBundle("sess-1", "buy-3-get-1")

	s.Clear("sess-1")

	c := s.Get("sess-1")
	assert.True(t, c.IsEmpty())
	assert.Empty(t, c.CouponCode)
	assert.Empty(t, c.BundleID)
}

func TestStore_SessionsAreIsolated(t *testing.T) {
	s := NewStore(time.Hour)

	_, err := s.AddLine("sess-1", testLine("p1", "A2", 100, 1))
	require.NoError(t, err)

	other := s.Get("sess-2")
	assert.True(t, other.IsEmpty())
}

func TestStore_ReturnsCopies(t *testing.T) {
	s := NewStore(time.Hour)
	c, err := s.AddLine("sess-1", testLine("p1", "A2", 100, 1))
	require.NoError(t, err)

	// Mutating the returned copy must not affect the stored cart.
	c.Lines[0].Quantity = 99

	assert.Equal(t, 1, s.Get("sess-1").Lines[0].Quantity)
}

func TestStore_SweepEvictsIdleSessions(t *testing.T) {
	s := NewStore(time.Minute)
	base := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return base }

	_, err := s.AddLine("stale", testLine("p1", "A2", 100, 1))
	require.NoError(t, err)

	s.now = func() time.Time { return base.Add(30 * time.Second) }
	_, err = s.AddLine("fresh", testLine("p2", "A2", 100, 1))
	require.NoError(t, err)

	s.sweep(base.Add(61 * time.Second))

	s.mu.RLock()
	_, staleOK := s.sessions["stale"]
	_, freshOK := s.sessions["fresh"]
	s.mu.RUnlock()

	assert.False(t, staleOK)
	assert.True(t, freshOK)
}

func TestStore_ConcurrentAdds(t *testing.T) {
	s := NewStore(time.Hour)

	var wg sync.WaitGroup
	for range 50 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := s.AddLine("sess-1", testLine("p1", "A2", 100, 1))
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	c := s.Get("sess-1")
	require.Len(t, c.Lines, 1)
	assert.Equal(t, 50, c.Lines[0].Quantity)
}

func TestCart_Subtotal(t *testing.T) {
	c := Cart{Lines: []Line{
		testLine("p1", "A2", 100, 2),
		testLine("p2", "A1", 250, 1),
	}}

	assert.True(t, decimal.NewFromInt(450).Equal(c.Subtotal()))
	assert.Equal(t, 3, c.TotalQuantity())
}
