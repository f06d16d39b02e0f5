package poster

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

// ErrNotFound is returned when a requested poster does not exist.
var ErrNotFound = errors.New("poster not found")

// Poster represents a catalog item available for purchase.
type Poster struct {
	ID          string
	Title       string
	Description string
	Price       decimal.Decimal
	Category    string
	Image       Image
	Sizes       []string
	Active      bool
}

// Image holds the hosted image references for a poster.
type Image struct {
	Thumbnail string
	Full      string
}

// Repository defines read operations for the poster catalog.
type Repository interface {
	List(ctx context.Context, category string) ([]Poster, error)
	GetByID(ctx context.Context, id string) (*Poster, error)
	GetByIDs(ctx context.Context, ids []string) ([]Poster, error)
}
