package port

import (
	"context"

	"github.com/nikolayk812/herbalshop/internal/domain"
	"github.com/shopspring/decimal"
)

type ProductCatalog interface {
	GetProduct(ctx context.Context, id int64) (domain.Product, error)
	GetProductBySlug(ctx context.Context, slug string) (domain.Product, error)
	ListProducts(ctx context.Context, filter domain.ProductFilter) ([]domain.Product, error)
	ListCategories(ctx context.Context) ([]domain.Category, error)
	AverageRating(ctx context.Context, productID int64) (decimal.Decimal, error)
}
