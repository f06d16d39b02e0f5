package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/posterzone/storefront/internal/domain/order"
)

const (
	insertOrderSQL = `INSERT INTO orders (id, user_id, status, subtotal,
		bundle_discount, coupon_discount, shipping, tax, total,
		coupon_id, bundle_id, shipping_address)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`

	insertOrderItemSQL = `INSERT INTO order_items (order_id, poster_id, title,
		unit_price, quantity, size)
		VALUES ($1, $2, $3, $4, $5, $6)`

	orderColumns = `id, user_id, status, subtotal, bundle_discount,
		coupon_discount, shipping, tax, total,
		COALESCE(coupon_id, ''), COALESCE(bundle_id, ''),
		shipping_address, created_at, updated_at`

	getOrderByIDSQL = `SELECT ` + orderColumns + ` FROM orders WHERE id = $1`

	listOrdersByStatusSQL = `SELECT ` + orderColumns + ` FROM orders
		WHERE status = $1 ORDER BY created_at DESC LIMIT $2`

	listOrdersSQL = `SELECT ` + orderColumns + ` FROM orders
		ORDER BY created_at DESC LIMIT $1`

	getOrderItemsSQL = `SELECT poster_id, title, unit_price, quantity, size
		FROM order_items WHERE order_id = $1`

	// Conditional on the current status so concurrent transitions serialize.
	updateOrderStatusSQL = `UPDATE orders SET status = $3, updated_at = now()
		WHERE id = $1 AND status = $2`
)

var _ order.Repository = (*OrderRepository)(nil)

// OrderRepository implements order.Repository backed by PostgreSQL.
type OrderRepository struct {
	pool *pgxpool.Pool
}

// NewOrderRepository returns an OrderRepository that uses the given pool.
func NewOrderRepository(pool *pgxpool.Pool) *OrderRepository {
	return &OrderRepository{pool: pool}
}

// Create persists the order header and its line items in one transaction.
func (r *OrderRepository) Create(ctx context.Context, o *order.Order) error {
	addrJSON, err := json.Marshal(o.ShippingAddress)
	if err != nil {
		return fmt.Errorf("marshaling shipping address: %w", err)
	}

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin create order tx: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	_, err = tx.Exec(ctx, insertOrderSQL,
		o.ID, o.UserID, string(o.Status), o.Subtotal,
		o.BundleDiscount, o.CouponDiscount, o.Shipping, o.Tax, o.Total,
		nullable(o.CouponID), nullable(o.BundleID), addrJSON,
	)
	if err != nil {
		return fmt.Errorf("creating order %q: %w", o.ID, err)
	}

	for _, item := range o.Items {
		_, err = tx.Exec(ctx, insertOrderItemSQL,
			o.ID, item.PosterID, item.Title, item.UnitPrice, item.Quantity, item.Size,
		)
		if err != nil {
			return fmt.Errorf("creating order item %q/%q: %w", o.ID, item.PosterID, err)
		}
	}

	return tx.Commit(ctx)
}

// GetByID returns an order with its line items.
func (r *OrderRepository) GetByID(ctx context.Context, id string) (*order.Order, error) {
	rows, err := r.pool.Query(ctx, getOrderByIDSQL, id)
	if err != nil {
		return nil, fmt.Errorf("getting order %q: %w", id, err)
	}

	o, err := pgx.CollectExactlyOneRow(rows, scanOrder)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, order.ErrNotFound
		}
		return nil, fmt.Errorf("getting order %q: %w", id, err)
	}

	itemRows, err := r.pool.Query(ctx, getOrderItemsSQL, id)
	if err != nil {
		return nil, fmt.Errorf("getting order items %q: %w", id, err)
	}
	o.Items, err = pgx.CollectRows(itemRows, scanOrderItem)
	if err != nil {
		return nil, fmt.Errorf("getting order items %q: %w", id, err)
	}

	return &o, nil
}

// ListByStatus returns headers only (no line items), newest first. An empty
// status lists across all statuses.
func (r *OrderRepository) ListByStatus(ctx context.Context, status order.Status, limit int) ([]order.Order, error) {
	var (
		rows pgx.Rows
		err  error
	)
	if status == "" {
		rows, err = r.pool.Query(ctx, listOrdersSQL, limit)
	} else {
		rows, err = r.pool.Query(ctx, listOrdersByStatusSQL, string(status), limit)
	}
	if err != nil {
		return nil, fmt.Errorf("listing orders: %w", err)
	}
	return pgx.CollectRows(rows, scanOrder)
}

// UpdateStatus conditionally moves an order from one status to another.
// Returns order.ErrNotFound when the order is missing or its status has
// moved on since it was read.
func (r *OrderRepository) UpdateStatus(ctx context.Context, id string, from, to order.Status) error {
	tag, err := r.pool.Exec(ctx, updateOrderStatusSQL, id, string(from), string(to))
	if err != nil {
		return fmt.Errorf("updating order %q status: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return order.ErrNotFound
	}
	return nil
}

func scanOrder(row pgx.CollectableRow) (order.Order, error) {
	var (
		o        order.Order
		status   string
		addrJSON []byte
	)
	err := row.Scan(
		&o.ID, &o.UserID, &status, &o.Subtotal, &o.BundleDiscount,
		&o.CouponDiscount, &o.Shipping, &o.Tax, &o.Total,
		&o.CouponID, &o.BundleID, &addrJSON, &o.CreatedAt, &o.UpdatedAt,
	)
	if err != nil {
		return o, err
	}
	o.Status = order.Status(status)
	if err := json.Unmarshal(addrJSON, &o.ShippingAddress); err != nil {
		return o, fmt.Errorf("unmarshaling shipping address: %w", err)
	}
	return o, nil
}

func scanOrderItem(row pgx.CollectableRow) (order.Item, error) {
	var (
		item  order.Item
		price decimal.Decimal
	)
	err := row.Scan(&item.PosterID, &item.Title, &price, &item.Quantity, &item.Size)
	item.UnitPrice = price
	return item, err
}

// nullable maps an empty string to NULL for optional foreign keys.
func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}
