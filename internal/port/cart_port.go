package port

import (
	"context"

	"github.com/google/uuid"
	"github.com/nikolayk812/herbalshop/internal/domain"
)

// CartRepository is the durable store for carts owned by authenticated users.
type CartRepository interface {
	GetOrCreateCart(ctx context.Context, userID string) (domain.Cart, error)
	AddLine(ctx context.Context, cartID uuid.UUID, productID int64, quantity int) error
	SetQuantity(ctx context.Context, cartID uuid.UUID, productID int64, quantity int) (bool, error)
	RemoveLine(ctx context.Context, cartID uuid.UUID, productID int64) (bool, error)
	Lines(ctx context.Context, cartID uuid.UUID) ([]domain.PricedLine, error)
	Clear(ctx context.Context, cartID uuid.UUID) error
}
