package order

import (
	"context"
	"time"
)

// State is the lifecycle state of an order.
type State string

const (
	// StateConfirmed is the initial state of every created order.
	StateConfirmed State = "confirmed"
	// StateCancelled marks an order withdrawn after creation.
	StateCancelled State = "cancelled"
)

// Order is the aggregate root of a purchase: the order row plus the order
// items it exclusively owns. Total is in currency minor units and may go
// negative when a promotion discount exceeds the item sum.
type Order struct {
	ID                 int64
	UserID             int64
	Total              int64
	State              State
	CancellationReason string
	PromotionID        *int64
	Items              []Item
	CreatedAt          time.Time
}

// Item is a single line of an order. Price is the per-unit price copied
// from the product at creation time; it never tracks later product price
// changes.
type Item struct {
	ID        int64
	OrderID   int64
	ProductID int64
	Quantity  int
	Price     int64
}

// Repository runs order mutations inside a single database transaction.
// The callback receives a Tx scoped to that transaction; returning an
// error rolls back every statement issued through it.
type Repository interface {
	InTx(ctx context.Context, fn func(tx Tx) error) error
}

// Tx exposes the order mutations available within one transaction.
type Tx interface {
	CreateOrder(ctx context.Context, o *Order) error
	CreateItem(ctx context.Context, item *Item) error
	UpdateTotals(ctx context.Context, o *Order) error
}
