package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/nikolayk812/herbalshop/internal/db"
	"github.com/nikolayk812/herbalshop/internal/domain"
	"github.com/nikolayk812/herbalshop/internal/port"
)

type wishlistRepository struct {
	q    *db.Queries
	pool *pgxpool.Pool
}

func NewWishlist(pool *pgxpool.Pool) port.WishlistRepository {
	return &wishlistRepository{
		q:    db.New(pool),
		pool: pool,
	}
}

// Toggle removes the product when present and adds it otherwise. It reports
// true when the product ends up in the wishlist.
func (r *wishlistRepository) Toggle(ctx context.Context, userID string, productID int64) (bool, error) {
	if userID == "" {
		return false, fmt.Errorf("userID is empty")
	}

	params := db.WishlistItemParams{UserID: userID, ProductID: productID}

	return withTx(ctx, r.pool, r.q, func(q *db.Queries) (bool, error) {
		deleted, err := q.DeleteWishlistItem(ctx, params)
		if err != nil {
			return false, fmt.Errorf("q.DeleteWishlistItem: %w", err)
		}
		if deleted > 0 {
			return false, nil
		}

		if _, err := q.InsertWishlistItem(ctx, params); err != nil {
			var pgErr *pgconn.PgError
			if errors.As(err, &pgErr) && pgErr.Code == foreignKeyViolation {
				return false, fmt.Errorf("product[%d]: %w", productID, domain.ErrNotFound)
			}
			return false, fmt.Errorf("q.InsertWishlistItem: %w", err)
		}

		return true, nil
	})
}

func (r *wishlistRepository) Remove(ctx context.Context, userID string, productID int64) (bool, error) {
	if userID == "" {
		return false, fmt.Errorf("userID is empty")
	}

	deleted, err := r.q.DeleteWishlistItem(ctx, db.WishlistItemParams{UserID: userID, ProductID: productID})
	if err != nil {
		return false, fmt.Errorf("q.DeleteWishlistItem: %w", err)
	}

	return deleted > 0, nil
}

func (r *wishlistRepository) List(ctx context.Context, userID string) ([]domain.WishlistItem, error) {
	if userID == "" {
		return nil, fmt.Errorf("userID is empty")
	}

	rows, err := r.q.ListWishlistItems(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("q.ListWishlistItems: %w", err)
	}

	items := make([]domain.WishlistItem, 0, len(rows))
	for _, row := range rows {
		items = append(items, domain.WishlistItem{
			UserID:    row.UserID,
			ProductID: row.ProductID,
			CreatedAt: row.CreatedAt,
		})
	}

	return items, nil
}

func (r *wishlistRepository) Clear(ctx context.Context, userID string) error {
	if userID == "" {
		return fmt.Errorf("userID is empty")
	}

	if err := r.q.ClearWishlist(ctx, userID); err != nil {
		return fmt.Errorf("q.ClearWishlist: %w", err)
	}

	return nil
}
