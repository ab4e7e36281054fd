package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/nikolayk812/herbalshop/internal/db"
	"github.com/nikolayk812/herbalshop/internal/domain"
	"github.com/nikolayk812/herbalshop/internal/port"
	"github.com/shopspring/decimal"
	"golang.org/x/text/currency"
)

type catalogRepository struct {
	q *db.Queries
}

// NewCatalog accepts any DBTX so it can run on a pool, inside a transaction
// or against pgxmock.
func NewCatalog(dbtx db.DBTX) port.ProductCatalog {
	return &catalogRepository{q: db.New(dbtx)}
}

func (r *catalogRepository) GetProduct(ctx context.Context, id int64) (domain.Product, error) {
	row, err := r.q.GetProduct(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Product{}, fmt.Errorf("product[%d]: %w", id, domain.ErrNotFound)
		}
		return domain.Product{}, fmt.Errorf("q.GetProduct: %w", err)
	}

	return mapProductToDomain(row)
}

func (r *catalogRepository) GetProductBySlug(ctx context.Context, slug string) (domain.Product, error) {
	if slug == "" {
		return domain.Product{}, fmt.Errorf("slug is empty")
	}

	row, err := r.q.GetProductBySlug(ctx, slug)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Product{}, fmt.Errorf("product[%s]: %w", slug, domain.ErrNotFound)
		}
		return domain.Product{}, fmt.Errorf("q.GetProductBySlug: %w", err)
	}

	return mapProductToDomain(row)
}

func (r *catalogRepository) ListProducts(ctx context.Context, filter domain.ProductFilter) ([]domain.Product, error) {
	rows, err := r.q.ListProducts(ctx, db.ListProductsParams{
		CategorySlugs: filter.CategorySlugs,
		PriceMin:      filter.PriceMin,
		PriceMax:      filter.PriceMax,
		ActiveOnly:    filter.ActiveOnly,
		ExcludeID:     filter.ExcludeID,
		CategoryID:    filter.CategoryID,
		Limit:         int32(filter.Limit),
	})
	if err != nil {
		return nil, fmt.Errorf("q.ListProducts: %w", err)
	}

	products := make([]domain.Product, 0, len(rows))
	for _, row := range rows {
		p, err := mapProductToDomain(row)
		if err != nil {
			return nil, err
		}
		products = append(products, p)
	}

	return products, nil
}

func (r *catalogRepository) ListCategories(ctx context.Context) ([]domain.Category, error) {
	rows, err := r.q.ListCategories(ctx)
	if err != nil {
		return nil, fmt.Errorf("q.ListCategories: %w", err)
	}

	categories := make([]domain.Category, 0, len(rows))
	for _, row := range rows {
		categories = append(categories, domain.Category{
			ID:        row.ID,
			Name:      row.Name,
			Slug:      row.Slug,
			Active:    row.IsActive,
			CreatedAt: row.CreatedAt,
		})
	}

	return categories, nil
}

func (r *catalogRepository) AverageRating(ctx context.Context, productID int64) (decimal.Decimal, error) {
	avg, err := r.q.AverageRating(ctx, productID)
	if err != nil {
		return decimal.Zero, fmt.Errorf("q.AverageRating: %w", err)
	}

	return avg, nil
}

func mapProductToDomain(row db.Product) (domain.Product, error) {
	parsedCurrency, err := currency.ParseISO(row.PriceCurrency)
	if err != nil {
		return domain.Product{}, fmt.Errorf("currency[%s] is not valid: %w", row.PriceCurrency, err)
	}

	return domain.Product{
		ID:          row.ID,
		CategoryID:  row.CategoryID,
		Name:        row.Name,
		Slug:        row.Slug,
		Description: row.Description,
		Price:       domain.Money{Amount: row.PriceAmount, Currency: parsedCurrency},
		Stock:       int(row.Stock),
		Active:      row.IsActive,
		Featured:    row.IsFeatured,
		CreatedAt:   row.CreatedAt,
	}, nil
}
