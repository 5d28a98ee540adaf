// Command seed-db populates a storefront database with development data:
// categories, users (with access tokens), products and promotions.
package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"

	"github.com/go-faster/errors"

	"github.com/velikanov/storefront/internal/domain/category"
	"github.com/velikanov/storefront/internal/domain/product"
	"github.com/velikanov/storefront/internal/domain/promotion"
	"github.com/velikanov/storefront/internal/domain/user"
	"github.com/velikanov/storefront/internal/repository"
)

func main() {
	var (
		databaseURL string
		accessToken string
	)

	flag.StringVar(&databaseURL, "database-url", "", "PostgreSQL connection URL (or DATABASE_URL env)")
	flag.StringVar(&accessToken, "access-token", "", "access token for the seeded user (or STOREFRONT_SEED_TOKEN env)")
	flag.Parse()

	if databaseURL == "" {
		databaseURL = os.Getenv("DATABASE_URL")
	}
	if databaseURL == "" {
		slog.Error("database URL is required: set --database-url or DATABASE_URL")
		os.Exit(1)
	}
	if accessToken == "" {
		accessToken = os.Getenv("STOREFRONT_SEED_TOKEN")
	}
	if accessToken == "" {
		slog.Error("access token is required: set --access-token or STOREFRONT_SEED_TOKEN")
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	if err := run(ctx, databaseURL, accessToken); err != nil {
		slog.Error("seed failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	slog.Info("seed completed successfully")
}

func run(ctx context.Context, databaseURL, accessToken string) error {
	slog.Info("connecting to database")

	pool, err := repository.NewPool(ctx, databaseURL)
	if err != nil {
		return errors.Wrap(err, "connect to database")
	}
	defer pool.Close()

	slog.Info("running migrations")

	if err := repository.RunMigrations(ctx, pool); err != nil {
		return errors.Wrap(err, "run migrations")
	}

	categories := repository.NewCategoryRepository(pool)
	users := repository.NewUserRepository(pool)
	products := repository.NewProductRepository(pool)
	promotions := repository.NewPromotionRepository(pool)

	snacks := &category.Category{Name: "Snacks"}
	if err := categories.Create(ctx, snacks); err != nil {
		return errors.Wrap(err, "seed category")
	}
	slog.Info("created category", slog.Int64("id", snacks.ID), slog.String("name", snacks.Name))

	u := &user.User{
		Name:        "Dev User",
		Email:       "dev@example.com",
		Role:        "customer",
		AccessToken: accessToken,
	}
	if err := users.Create(ctx, u); err != nil {
		return errors.Wrap(err, "seed user")
	}
	slog.Info("created user", slog.Int64("id", u.ID), slog.String("email", u.Email))

	seedProducts := []*product.Product{
		{Name: "Waffle with Berries", Price: 650, CategoryID: snacks.ID, InStock: true, StockQuantity: 40},
		{Name: "Vanilla Bean Creme Brulee", Price: 700, CategoryID: snacks.ID, InStock: true, StockQuantity: 25},
		{Name: "Macaron Mix of Five", Price: 800, CategoryID: snacks.ID, InStock: true, StockQuantity: 60},
	}
	for _, p := range seedProducts {
		if err := products.Create(ctx, p); err != nil {
			return errors.Wrapf(err, "seed product %q", p.Name)
		}
		slog.Info("created product", slog.Int64("id", p.ID), slog.String("name", p.Name))
	}

	// SAVE10 is seeded twice on purpose: lookups resolve duplicate codes to
	// the most recently created promotion, so the 250 discount must win.
	seedPromotions := []*promotion.Promotion{
		{Name: "Save Ten", Code: "SAVE10", PromotionType: "flat", Discount: 100},
		{Name: "Happy Hours", Code: "HAPPYHOURS", PromotionType: "flat", Discount: 180},
		{Name: "Save Ten Reissue", Code: "SAVE10", PromotionType: "flat", Discount: 250},
	}
	for _, p := range seedPromotions {
		if err := promotions.Create(ctx, p); err != nil {
			return errors.Wrapf(err, "seed promotion %q", p.Code)
		}
		slog.Info("created promotion", slog.Int64("id", p.ID), slog.String("code", p.Code))
	}

	return nil
}
