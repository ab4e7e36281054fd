package repository_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/nikolayk812/herbalshop/internal/domain"
	"github.com/nikolayk812/herbalshop/internal/migrations"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"golang.org/x/text/currency"
)

// startPostgres runs a throwaway postgres and applies the embedded migrations.
func startPostgres(ctx context.Context) (*postgres.PostgresContainer, string, error) {
	postgresContainer, err := postgres.Run(ctx, "postgres:17.6-alpine3.22",
		postgres.BasicWaitStrategies(),
	)
	if err != nil {
		return nil, "", fmt.Errorf("postgres.Run: %w", err)
	}

	connStr, err := postgresContainer.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		return nil, "", fmt.Errorf("pc.ConnectionString: %w", err)
	}

	if err := migrations.Up(ctx, connStr); err != nil {
		return nil, "", fmt.Errorf("migrations.Up: %w", err)
	}

	return postgresContainer, connStr, nil
}

func truncateAll(t *testing.T, pool *pgxpool.Pool) {
	t.Helper()

	_, err := pool.Exec(t.Context(),
		"TRUNCATE TABLE wishlist_items, cart_lines, carts, reviews, products, categories RESTART IDENTITY CASCADE")
	require.NoError(t, err)
}

func insertCategory(t *testing.T, pool *pgxpool.Pool, slug string, active bool) int64 {
	t.Helper()

	var id int64
	err := pool.QueryRow(t.Context(),
		"INSERT INTO categories (name, slug, is_active) VALUES ($1, $2, $3) RETURNING id",
		gofakeit.ProductCategory(), slug, active,
	).Scan(&id)
	require.NoError(t, err)

	return id
}

type productSeed struct {
	categoryID int64
	name       string
	price      decimal.Decimal
	stock      int
	active     bool
}

func insertProduct(t *testing.T, pool *pgxpool.Pool, seed productSeed) domain.Product {
	t.Helper()

	if seed.name == "" {
		seed.name = gofakeit.ProductName()
	}
	slug := fmt.Sprintf("%s-%s", gofakeit.Word(), gofakeit.UUID())

	var id int64
	err := pool.QueryRow(t.Context(), `
		INSERT INTO products (category_id, name, slug, price_amount, price_currency, stock, is_active)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id`,
		seed.categoryID, seed.name, slug, seed.price, currency.EUR.String(), seed.stock, seed.active,
	).Scan(&id)
	require.NoError(t, err)

	return domain.Product{
		ID:         id,
		CategoryID: seed.categoryID,
		Name:       seed.name,
		Slug:       slug,
		Price:      domain.Money{Amount: seed.price, Currency: currency.EUR},
		Stock:      seed.stock,
		Active:     seed.active,
	}
}

func setPrice(t *testing.T, pool *pgxpool.Pool, productID int64, price decimal.Decimal) {
	t.Helper()

	_, err := pool.Exec(t.Context(), "UPDATE products SET price_amount = $1 WHERE id = $2", price, productID)
	require.NoError(t, err)
}

func insertReview(t *testing.T, pool *pgxpool.Pool, productID int64, rating int, approved bool) {
	t.Helper()

	_, err := pool.Exec(t.Context(),
		"INSERT INTO reviews (product_id, user_id, rating, is_approved) VALUES ($1, $2, $3, $4)",
		productID, gofakeit.UUID(), rating, approved,
	)
	require.NoError(t, err)
}

func randomPrice() decimal.Decimal {
	return decimal.NewFromFloat(gofakeit.Price(1, 100)).Round(2)
}
