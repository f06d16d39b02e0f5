package order

import (
	"context"
	"fmt"
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

// ErrNotFound is returned when a requested order does not exist.
var ErrNotFound = errors.New("order not found")

// Status is the lifecycle state of an order. Transitions are admin-triggered
// only; nothing in the checkout path moves an order past pending.
type Status string

const (
	StatusPending    Status = "pending"
	StatusProcessing Status = "processing"
	StatusShipped    Status = "shipped"
	StatusCompleted  Status = "completed"
	StatusCancelled  Status = "cancelled"
)

// ParseStatus validates a raw status string.
func ParseStatus(s string) (Status, error) {
	switch Status(s) {
	case StatusPending, StatusProcessing, StatusShipped, StatusCompleted, StatusCancelled:
		return Status(s), nil
	default:
		return "", errors.Errorf("unknown order status %q", s)
	}
}

// IsTerminal reports whether the status admits no further transitions.
// Terminal orders are immutable except for read access.
func (s Status) IsTerminal() bool {
	return s == StatusCompleted || s == StatusCancelled
}

// CanTransition reports whether moving from s to next is a legal step:
// pending -> processing -> shipped -> completed, with cancelled reachable
// from any non-terminal state.
func (s Status) CanTransition(next Status) bool {
	if s.IsTerminal() {
		return false
	}
	if next == StatusCancelled {
		return true
	}
	switch s {
	case StatusPending:
		return next == StatusProcessing
	case StatusProcessing:
		return next == StatusShipped
	case StatusShipped:
		return next == StatusCompleted
	default:
		return false
	}
}

// InvalidTransitionError reports a disallowed status change.
type InvalidTransitionError struct {
	From, To Status
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("cannot transition order from %s to %s", e.From, e.To)
}

// ShippingAddress is the destination captured at checkout.
type ShippingAddress struct {
	Name    string `json:"name"`
	Address string `json:"address"`
	City    string `json:"city"`
	State   string `json:"state"`
	Pincode string `json:"pincode"`
	Phone   string `json:"phone"`
	Country string `json:"country"`
}

// Item is a snapshot of a cart line at the moment of checkout.
type Item struct {
	PosterID  string          `json:"poster_id"`
	Title     string          `json:"title"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Quantity  int             `json:"quantity"`
	Size      string          `json:"size,omitempty"`
}

// Order is a persisted customer order with its pricing snapshot.
type Order struct {
	ID              string
	UserID          string
	Status          Status
	Items           []Item
	Subtotal        decimal.Decimal
	BundleDiscount  decimal.Decimal
	CouponDiscount  decimal.Decimal
	Shipping        decimal.Decimal
	Tax             decimal.Decimal
	Total           decimal.Decimal
	CouponID        string
	BundleID        string
	ShippingAddress ShippingAddress
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// Repository defines persistence operations for orders.
type Repository interface {
	// Create persists the order and its items in one transaction.
	Create(ctx context.Context, o *Order) error
	GetByID(ctx context.Context, id string) (*Order, error)
	ListByStatus(ctx context.Context, status Status, limit int) ([]Order, error)
	// UpdateStatus moves the order to next only if its current status still
	// matches from; returns ErrNotFound otherwise. The conditional write
	// keeps concurrent admin updates from skipping states.
	UpdateStatus(ctx context.Context, id string, from, to Status) error
}
