package promotion

import (
	"context"
	"time"

	"github.com/go-faster/errors"
)

// ErrNotFound is returned when no promotion matches a given code.
var ErrNotFound = errors.New("promotion not found")

// Promotion is a discount identified by a lookup code. Discount is a flat
// amount in currency minor units, subtracted from an order's total.
// Promotions are referenced by orders, never mutated by them.
type Promotion struct {
	ID            int64
	Name          string
	Code          string
	PromotionType string
	Discount      int64
	CategoryID    *int64
	ProductID     *int64
	CreatedAt     time.Time
}

// Repository provides lookup of promotions by their code.
//
// FindByCode resolves duplicate codes with a last-match-wins policy: when
// several promotions share a code, the most recently created one is
// returned. It returns ErrNotFound when no promotion matches.
type Repository interface {
	FindByCode(ctx context.Context, code string) (*Promotion, error)
	Create(ctx context.Context, p *Promotion) error
}
