package repository

import (
	"context"
	"fmt"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/velikanov/storefront/internal/domain/order"
)

const (
	createOrderSQL = `INSERT INTO orders (user_id, total, state)
		VALUES ($1, $2, $3)
		RETURNING id, created_at`

	createOrderItemSQL = `INSERT INTO order_items (order_id, product_id, quantity, price)
		VALUES ($1, $2, $3, $4)
		RETURNING id`

	updateOrderTotalsSQL = `UPDATE orders
		SET total = $1, promotion_id = $2, updated_at = now()
		WHERE id = $3`
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

// InTx runs fn inside a single database transaction. Any error returned by
// fn (or by commit) rolls back every statement fn issued.
func (r *OrderRepository) InTx(ctx context.Context, fn func(tx order.Tx) error) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := fn(&orderTx{tx: tx}); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// orderTx implements order.Tx on a live pgx transaction.
type orderTx struct {
	tx pgx.Tx
}

func (t *orderTx) CreateOrder(ctx context.Context, o *order.Order) error {
	err := t.tx.QueryRow(ctx, createOrderSQL, o.UserID, o.Total, string(o.State)).
		Scan(&o.ID, &o.CreatedAt)
	if err != nil {
		return fmt.Errorf("creating order: %w", err)
	}
	return nil
}

// CreateItem persists an order item. Integrity violations (unknown
// product, non-positive quantity) surface as order.ErrInvalidItem so the
// service can conflate them with a missing product at the user boundary.
func (t *orderTx) CreateItem(ctx context.Context, item *order.Item) error {
	err := t.tx.QueryRow(ctx, createOrderItemSQL,
		item.OrderID, item.ProductID, item.Quantity, item.Price,
	).Scan(&item.ID)
	if err != nil {
		if pgErr := integrityError(err); pgErr != nil {
			return errors.Wrapf(order.ErrInvalidItem, "product %d: %s", item.ProductID, pgErr.Message)
		}
		return fmt.Errorf("creating order item for product %d: %w", item.ProductID, err)
	}
	return nil
}

func (t *orderTx) UpdateTotals(ctx context.Context, o *order.Order) error {
	_, err := t.tx.Exec(ctx, updateOrderTotalsSQL, o.Total, o.PromotionID, o.ID)
	if err != nil {
		return fmt.Errorf("updating totals for order %d: %w", o.ID, err)
	}
	return nil
}
