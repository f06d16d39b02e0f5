package cart

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Store keeps carts in memory keyed by session ID. Carts are session-local
// state with a single logical writer (the customer driving the session), but
// concurrent HTTP requests for the same session are possible, so every
// operation runs under the store lock and returns a copy.
type Store struct {
	mu       sync.RWMutex
	sessions map[string]*session
	ttl      time.Duration
	now      func() time.Time
}

type session struct {
	cart    Cart
	touched time.Time
}

// NewStore creates a Store whose carts expire after ttl of inactivity.
func NewStore(ttl time.Duration) *Store {
	return &Store{
		sessions: make(map[string]*session),
		ttl:      ttl,
		now:      time.Now,
	}
}

// StartSweeper launches a background goroutine that evicts expired sessions
// every interval. It stops when ctx is cancelled.
func (s *Store) StartSweeper(ctx context.Context, interval time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case now := <-ticker.C:
				s.sweep(now)
			}
		}
	}()
}

func (s *Store) sweep(now time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, sess := range s.sessions {
		if now.Sub(sess.touched) >= s.ttl {
			delete(s.sessions, id)
		}
	}
}

// Get returns a copy of the cart for the given session, creating an empty
// one if the session is new.
func (s *Store) Get(sessionID string) Cart {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.get(sessionID).cart.clone()
}

// get must be called with the lock held.
func (s *Store) get(sessionID string) *session {
	sess, ok := s.sessions[sessionID]
	if !ok {
		sess = &session{cart: Cart{SessionID: sessionID}}
		s.sessions[sessionID] = sess
	}
	sess.touched = s.now()
	return sess
}

// AddLine adds a line to the session cart. A line for the same poster and
// size merges into the existing one by summing quantities.
func (s *Store) AddLine(sessionID string, line Line) (Cart, error) {
	if line.Quantity <= 0 {
		return Cart{}, ErrInvalidQuantity
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	sess := s.get(sessionID)
	for i := range sess.cart.Lines {
		l := &sess.cart.Lines[i]
		if l.PosterID == line.PosterID && l.Size == line.Size {
			l.Quantity += line.Quantity
			return sess.cart.clone(), nil
		}
	}

	if line.ID == "" {
		line.ID = uuid.New().String()
	}
	sess.cart.Lines = append(sess.cart.Lines, line)
	return sess.cart.clone(), nil
}

// UpdateQuantity sets the quantity of an existing line.
func (s *Store) UpdateQuantity(sessionID, lineID string, quantity int) (Cart, error) {
	if quantity <= 0 {
		return Cart{}, ErrInvalidQuantity
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	sess := s.get(sessionID)
	i, ok := sess.cart.line(lineID)
	if !ok {
		return Cart{}, ErrLineNotFound
	}
	sess.cart.Lines[i].Quantity = quantity
	return sess.cart.clone(), nil
}

// RemoveLine deletes a line from the session cart.
func (s *Store) RemoveLine(sessionID, lineID string) (Cart, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess := s.get(sessionID)
	i, ok := sess.cart.line(lineID)
	if !ok {
		return Cart{}, ErrLineNotFound
	}
	sess.cart.Lines = append(sess.cart.Lines[:i], sess.cart.Lines[i+1:]...)
	return sess.cart.clone(), nil
}

// ApplyCoupon records the applied coupon code for the session, replacing any
// previously applied code. Validation happens elsewhere; the store only
// tracks which code the customer has applied.
func (s *Store) ApplyCoupon(sessionID, code string) Cart {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess := s.get(sessionID)
	sess.cart.CouponCode = code
	return sess.cart.clone()
}

// RemoveCoupon clears the applied coupon code.
func (s *Store) RemoveCoupon(sessionID string) Cart {
	return s.ApplyCoupon(sessionID, "")
}

// SelectBundle records the chosen bundle offer, replacing any previous
// selection. Bundle offers are mutually exclusive.
func (s *Store) SelectBundle(sessionID, bundleID string) Cart {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess := s.get(sessionID)
	sess.cart.BundleID = bundleID
	return sess.cart.clone()
}

// ClearBundle removes the bundle selection.
func (s *Store) ClearBundle(sessionID string) Cart {
	return s.SelectBundle(sessionID, "")
}

// Clear empties the session cart, including discount state. Used after a
// successful checkout.
func (s *Store) Clear(sessionID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess := s.get(sessionID)
	sess.cart = Cart{SessionID: sessionID}
}

func (c *Cart) clone() Cart {
	out := *c
	out.Lines = make([]Line, len(c.Lines))
	copy(out.Lines, c.Lines)
	return out
}
