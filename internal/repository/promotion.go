package repository

import (
	"context"
	"fmt"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/velikanov/storefront/internal/domain/promotion"
)

const (
	// Duplicate codes resolve last-match-wins: the highest id is the most
	// recently created promotion.
	findPromotionByCodeSQL = `SELECT id, name, code, promotion_type, discount, category_id, product_id, created_at
		FROM promotions WHERE code = $1
		ORDER BY id DESC LIMIT 1`

	createPromotionSQL = `INSERT INTO promotions (name, code, promotion_type, discount, category_id, product_id)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at`
)

var _ promotion.Repository = (*PromotionRepository)(nil)

// PromotionRepository implements promotion.Repository backed by PostgreSQL.
type PromotionRepository struct {
	pool *pgxpool.Pool
}

// NewPromotionRepository returns a PromotionRepository that uses the given pool.
func NewPromotionRepository(pool *pgxpool.Pool) *PromotionRepository {
	return &PromotionRepository{pool: pool}
}

// FindByCode returns the most recently created promotion with the given
// code, or promotion.ErrNotFound when none matches.
func (r *PromotionRepository) FindByCode(ctx context.Context, code string) (*promotion.Promotion, error) {
	rows, err := r.pool.Query(ctx, findPromotionByCodeSQL, code)
	if err != nil {
		return nil, fmt.Errorf("finding promotion by code %q: %w", code, err)
	}

	p, err := pgx.CollectExactlyOneRow(rows, scanPromotion)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, promotion.ErrNotFound
		}
		return nil, fmt.Errorf("finding promotion by code %q: %w", code, err)
	}
	return &p, nil
}

// Create persists a new promotion.
func (r *PromotionRepository) Create(ctx context.Context, p *promotion.Promotion) error {
	err := r.pool.QueryRow(ctx, createPromotionSQL,
		p.Name, p.Code, p.PromotionType, p.Discount, p.CategoryID, p.ProductID,
	).Scan(&p.ID, &p.CreatedAt)
	if err != nil {
		return fmt.Errorf("creating promotion %q: %w", p.Code, err)
	}
	return nil
}

func scanPromotion(row pgx.CollectableRow) (promotion.Promotion, error) {
	var p promotion.Promotion
	err := row.Scan(
		&p.ID, &p.Name, &p.Code, &p.PromotionType,
		&p.Discount, &p.CategoryID, &p.ProductID, &p.CreatedAt,
	)
	return p, err
}
