package order

import (
	"context"
	"fmt"

	"github.com/go-faster/errors"

	"github.com/velikanov/storefront/internal/domain/product"
	"github.com/velikanov/storefront/internal/domain/promotion"
	"github.com/velikanov/storefront/internal/domain/user"
)

// Sentinel errors for order creation.
var (
	// ErrNoItems is returned when the request carries no order items.
	ErrNoItems = errors.New("order requires at least one item")
	// ErrInvalidPromoCode is returned when a promotion code is given but
	// no promotion matches it.
	ErrInvalidPromoCode = errors.New("invalid promotion code")
	// ErrInvalidItem is returned when the store rejects an order item
	// (bad quantity, broken reference). The user-facing boundary maps it
	// to the same message as a missing product.
	ErrInvalidItem = errors.New("invalid order item")
)

// ProductNotFoundError indicates a requested product does not exist.
type ProductNotFoundError struct {
	ProductID int64
}

func (e *ProductNotFoundError) Error() string {
	return fmt.Sprintf("product %d not found", e.ProductID)
}

// ItemRequest is a single requested line of a new order.
type ItemRequest struct {
	ProductID int64
	Quantity  int
}

// CreateRequest holds the input for creating an order.
type CreateRequest struct {
	Items         []ItemRequest
	PromotionCode string
}

// Service encapsulates the order creation workflow.
type Service struct {
	store      Repository
	products   product.Repository
	promotions promotion.Repository
}

// NewService creates an order Service with the required domain dependencies.
func NewService(
	store Repository,
	products product.Repository,
	promotions promotion.Repository,
) *Service {
	return &Service{
		store:      store,
		products:   products,
		promotions: promotions,
	}
}

// Create builds and persists an order for usr inside a single transaction:
// the order row, one item per requested line with the product price
// snapshotted at creation time, the computed total, and an optional
// promotion discount. Any failure rolls the whole transaction back.
//
// Success is exactly a nil error; callers must not infer the outcome from
// the returned order's state.
func (s *Service) Create(ctx context.Context, usr *user.User, req CreateRequest) (*Order, error) {
	o := &Order{
		UserID: usr.ID,
		State:  StateConfirmed,
	}

	err := s.store.InTx(ctx, func(tx Tx) error {
		// The order row is created first so items can reference it; a
		// store failure here aborts the whole operation.
		if err := tx.CreateOrder(ctx, o); err != nil {
			return errors.Wrap(err, "create order")
		}

		if len(req.Items) == 0 {
			return ErrNoItems
		}

		for _, ir := range req.Items {
			item, err := s.buildItem(ctx, o.ID, ir)
			if err != nil {
				return err
			}
			if err := tx.CreateItem(ctx, item); err != nil {
				return err
			}
			o.Items = append(o.Items, *item)
		}

		// Total is recomputed from the items just created, not queried.
		o.Total = 0
		for _, item := range o.Items {
			o.Total += item.Price * int64(item.Quantity)
		}

		if req.PromotionCode != "" {
			if err := s.applyPromotion(ctx, o, req.PromotionCode); err != nil {
				return err
			}
		}

		if err := tx.UpdateTotals(ctx, o); err != nil {
			return errors.Wrap(err, "update order totals")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return o, nil
}

// buildItem resolves the referenced product and constructs an order item
// with the product's current price copied across.
func (s *Service) buildItem(ctx context.Context, orderID int64, ir ItemRequest) (*Item, error) {
	p, err := s.products.GetByID(ctx, ir.ProductID)
	if err != nil {
		if errors.Is(err, product.ErrNotFound) {
			return nil, &ProductNotFoundError{ProductID: ir.ProductID}
		}
		return nil, errors.Wrapf(err, "get product %d", ir.ProductID)
	}

	if ir.Quantity <= 0 {
		return nil, errors.Wrapf(ErrInvalidItem, "quantity %d for product %d", ir.Quantity, ir.ProductID)
	}

	return &Item{
		OrderID:   orderID,
		ProductID: p.ID,
		Quantity:  ir.Quantity,
		Price:     p.Price,
	}, nil
}

// applyPromotion subtracts the discount of the promotion matching code
// from the order's total. On duplicate codes the most recently created
// promotion wins. The discount is a flat amount and is not clamped: it can
// drive the total below zero.
func (s *Service) applyPromotion(ctx context.Context, o *Order, code string) error {
	promo, err := s.promotions.FindByCode(ctx, code)
	if err != nil {
		if errors.Is(err, promotion.ErrNotFound) {
			return ErrInvalidPromoCode
		}
		return errors.Wrapf(err, "find promotion %q", code)
	}

	o.Total -= promo.Discount
	o.PromotionID = &promo.ID
	return nil
}
