package port

import (
	"context"

	"github.com/nikolayk812/herbalshop/internal/domain"
)

type WishlistRepository interface {
	Toggle(ctx context.Context, userID string, productID int64) (bool, error)
	Remove(ctx context.Context, userID string, productID int64) (bool, error)
	List(ctx context.Context, userID string) ([]domain.WishlistItem, error)
	Clear(ctx context.Context, userID string) error
}
