package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/velikanov/storefront/internal/domain/product"
)

const (
	listProductsSQL = `SELECT id, name, price, category_id, in_stock, stock_quantity, created_at
		FROM products ORDER BY id`

	getProductByIDSQL = `SELECT id, name, price, category_id, in_stock, stock_quantity, created_at
		FROM products WHERE id = $1`

	createProductSQL = `INSERT INTO products (name, price, category_id, in_stock, stock_quantity)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at`

	createImageSQL = `INSERT INTO images (product_id, data, url)
		VALUES ($1, NULLIF($2, ''), NULLIF($3, ''))
		RETURNING id`
)

var _ product.Repository = (*ProductRepository)(nil)

// ProductRepository implements product.Repository backed by PostgreSQL.
type ProductRepository struct {
	pool *pgxpool.Pool
}

// NewProductRepository returns a ProductRepository that uses the given pool.
func NewProductRepository(pool *pgxpool.Pool) *ProductRepository {
	return &ProductRepository{pool: pool}
}

// List returns all products from the catalog ordered by ID.
func (r *ProductRepository) List(ctx context.Context) ([]product.Product, error) {
	rows, err := r.pool.Query(ctx, listProductsSQL)
	if err != nil {
		return nil, fmt.Errorf("listing products: %w", err)
	}
	return pgx.CollectRows(rows, scanProduct)
}

// GetByID returns a single product by its identifier.
func (r *ProductRepository) GetByID(ctx context.Context, id int64) (*product.Product, error) {
	rows, err := r.pool.Query(ctx, getProductByIDSQL, id)
	if err != nil {
		return nil, fmt.Errorf("getting product %d: %w", id, err)
	}

	p, err := pgx.CollectExactlyOneRow(rows, scanProduct)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, product.ErrNotFound
		}
		return nil, fmt.Errorf("getting product %d: %w", id, err)
	}
	return &p, nil
}

// Create persists a new product. Constraint violations are translated into
// product.FieldErrors with per-field messages.
func (r *ProductRepository) Create(ctx context.Context, p *product.Product) error {
	err := r.pool.QueryRow(ctx, createProductSQL,
		p.Name, p.Price, p.CategoryID, p.InStock, p.StockQuantity,
	).Scan(&p.ID, &p.CreatedAt)
	if err != nil {
		if fields := productFieldErrors(err); fields != nil {
			return fields
		}
		return fmt.Errorf("creating product: %w", err)
	}
	return nil
}

// CreateImage persists a single image row referencing its product.
func (r *ProductRepository) CreateImage(ctx context.Context, img *product.Image) error {
	err := r.pool.QueryRow(ctx, createImageSQL, img.ProductID, img.Data, img.URL).
		Scan(&img.ID)
	if err != nil {
		return fmt.Errorf("creating image for product %d: %w", img.ProductID, err)
	}
	return nil
}

// CreateWithImages persists the product and all its images in a single
// transaction; any failure rolls the whole batch back.
func (r *ProductRepository) CreateWithImages(ctx context.Context, p *product.Product, images []product.Image) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	err = tx.QueryRow(ctx, createProductSQL,
		p.Name, p.Price, p.CategoryID, p.InStock, p.StockQuantity,
	).Scan(&p.ID, &p.CreatedAt)
	if err != nil {
		if fields := productFieldErrors(err); fields != nil {
			return fields
		}
		return fmt.Errorf("creating product: %w", err)
	}

	for i := range images {
		images[i].ProductID = p.ID
		err := tx.QueryRow(ctx, createImageSQL, p.ID, images[i].Data, images[i].URL).
			Scan(&images[i].ID)
		if err != nil {
			if fields := imageFieldErrors(err); fields != nil {
				return fields
			}
			return fmt.Errorf("creating image: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

func scanProduct(row pgx.CollectableRow) (product.Product, error) {
	var p product.Product
	err := row.Scan(
		&p.ID, &p.Name, &p.Price, &p.CategoryID,
		&p.InStock, &p.StockQuantity, &p.CreatedAt,
	)
	return p, err
}

// productFieldErrors translates a product-row constraint violation into
// the structured field messages the product workflow reports.
func productFieldErrors(err error) product.FieldErrors {
	pgErr := integrityError(err)
	if pgErr == nil {
		return nil
	}

	switch pgErr.Code {
	case pgerrFKViolation:
		if strings.Contains(pgErr.ConstraintName, "category") {
			return product.FieldErrors{"category": {"must exist"}}
		}
	case pgerrNotNullViolation:
		if pgErr.ColumnName != "" {
			return product.FieldErrors{pgErr.ColumnName: {"can't be blank"}}
		}
	case pgerrCheckViolation:
		return product.FieldErrors{"base": {pgErr.Message}}
	}
	return product.FieldErrors{"base": {pgErr.Message}}
}

// imageFieldErrors translates an image-row constraint violation for the
// atomic create-with-images path.
func imageFieldErrors(err error) product.FieldErrors {
	pgErr := integrityError(err)
	if pgErr == nil {
		return nil
	}
	return product.FieldErrors{"images": {pgErr.Message}}
}

// PostgreSQL SQLSTATE codes for integrity constraint violations.
const (
	pgerrNotNullViolation = "23502"
	pgerrFKViolation      = "23503"
	pgerrCheckViolation   = "23514"
)
