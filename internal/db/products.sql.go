package db

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

const productColumns = `p.id, p.category_id, p.name, p.slug, p.description,
       p.price_amount, p.price_currency, p.stock, p.is_active, p.is_featured, p.created_at`

func scanProduct(row pgx.Row) (Product, error) {
	var i Product
	err := row.Scan(
		&i.ID,
		&i.CategoryID,
		&i.Name,
		&i.Slug,
		&i.Description,
		&i.PriceAmount,
		&i.PriceCurrency,
		&i.Stock,
		&i.IsActive,
		&i.IsFeatured,
		&i.CreatedAt,
	)
	return i, err
}

const getProduct = `
SELECT ` + productColumns + `
FROM products p
WHERE p.id = $1
`

func (q *Queries) GetProduct(ctx context.Context, id int64) (Product, error) {
	return scanProduct(q.db.QueryRow(ctx, getProduct, id))
}

const getProductBySlug = `
SELECT ` + productColumns + `
FROM products p
WHERE p.slug = $1
`

func (q *Queries) GetProductBySlug(ctx context.Context, slug string) (Product, error) {
	return scanProduct(q.db.QueryRow(ctx, getProductBySlug, slug))
}

const listProducts = `
SELECT ` + productColumns + `
FROM products p
JOIN categories c ON c.id = p.category_id
WHERE (cardinality($1::text[]) = 0 OR c.slug = ANY($1::text[]))
  AND ($2::numeric IS NULL OR p.price_amount >= $2::numeric)
  AND ($3::numeric IS NULL OR p.price_amount <= $3::numeric)
  AND (NOT $4::bool OR p.is_active)
  AND ($5::bigint = 0 OR p.id <> $5::bigint)
  AND ($6::bigint = 0 OR p.category_id = $6::bigint)
ORDER BY p.created_at DESC, p.id DESC
LIMIT NULLIF($7::int, 0)
`

type ListProductsParams struct {
	CategorySlugs []string
	PriceMin      *decimal.Decimal
	PriceMax      *decimal.Decimal
	ActiveOnly    bool
	ExcludeID     int64
	CategoryID    int64
	Limit         int32
}

func (q *Queries) ListProducts(ctx context.Context, arg ListProductsParams) ([]Product, error) {
	slugs := arg.CategorySlugs
	if slugs == nil {
		slugs = []string{}
	}

	rows, err := q.db.Query(ctx, listProducts,
		slugs,
		arg.PriceMin,
		arg.PriceMax,
		arg.ActiveOnly,
		arg.ExcludeID,
		arg.CategoryID,
		arg.Limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []Product
	for rows.Next() {
		i, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const listCategories = `
SELECT id, name, slug, is_active, created_at
FROM categories
WHERE is_active
ORDER BY name
`

func (q *Queries) ListCategories(ctx context.Context) ([]Category, error) {
	rows, err := q.db.Query(ctx, listCategories)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []Category
	for rows.Next() {
		var i Category
		if err := rows.Scan(&i.ID, &i.Name, &i.Slug, &i.IsActive, &i.CreatedAt); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const averageRating = `
SELECT COALESCE(ROUND(AVG(rating)::numeric, 2), 0)::numeric
FROM reviews
WHERE product_id = $1 AND is_approved
`

func (q *Queries) AverageRating(ctx context.Context, productID int64) (decimal.Decimal, error) {
	row := q.db.QueryRow(ctx, averageRating, productID)
	var avg decimal.Decimal
	err := row.Scan(&avg)
	return avg, err
}
