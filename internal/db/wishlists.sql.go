package db

import "context"

const insertWishlistItem = `
INSERT INTO wishlist_items (user_id, product_id)
VALUES ($1, $2)
ON CONFLICT (user_id, product_id) DO NOTHING
`

type WishlistItemParams struct {
	UserID    string
	ProductID int64
}

func (q *Queries) InsertWishlistItem(ctx context.Context, arg WishlistItemParams) (int64, error) {
	result, err := q.db.Exec(ctx, insertWishlistItem, arg.UserID, arg.ProductID)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected(), nil
}

const deleteWishlistItem = `
DELETE FROM wishlist_items
WHERE user_id = $1 AND product_id = $2
`

func (q *Queries) DeleteWishlistItem(ctx context.Context, arg WishlistItemParams) (int64, error) {
	result, err := q.db.Exec(ctx, deleteWishlistItem, arg.UserID, arg.ProductID)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected(), nil
}

const listWishlistItems = `
SELECT user_id, product_id, created_at
FROM wishlist_items
WHERE user_id = $1
ORDER BY created_at DESC, product_id
`

func (q *Queries) ListWishlistItems(ctx context.Context, userID string) ([]WishlistItem, error) {
	rows, err := q.db.Query(ctx, listWishlistItems, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []WishlistItem
	for rows.Next() {
		var i WishlistItem
		if err := rows.Scan(&i.UserID, &i.ProductID, &i.CreatedAt); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const clearWishlist = `
DELETE FROM wishlist_items
WHERE user_id = $1
`

func (q *Queries) ClearWishlist(ctx context.Context, userID string) error {
	_, err := q.db.Exec(ctx, clearWishlist, userID)
	return err
}
