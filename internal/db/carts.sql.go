package db

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const insertCart = `
INSERT INTO carts (id, user_id)
VALUES ($1, $2)
ON CONFLICT (user_id) DO NOTHING
`

type InsertCartParams struct {
	ID     uuid.UUID
	UserID string
}

func (q *Queries) InsertCart(ctx context.Context, arg InsertCartParams) error {
	_, err := q.db.Exec(ctx, insertCart, arg.ID, arg.UserID)
	return err
}

const getCartByUser = `
SELECT id, user_id, created_at
FROM carts
WHERE user_id = $1
`

func (q *Queries) GetCartByUser(ctx context.Context, userID string) (Cart, error) {
	row := q.db.QueryRow(ctx, getCartByUser, userID)
	var i Cart
	err := row.Scan(&i.ID, &i.UserID, &i.CreatedAt)
	return i, err
}

// addCartLine increments in a single statement so two concurrent adds of the
// same product both land.
const addCartLine = `
INSERT INTO cart_lines (cart_id, product_id, quantity)
VALUES ($1, $2, $3)
ON CONFLICT (cart_id, product_id)
DO UPDATE SET quantity = cart_lines.quantity + EXCLUDED.quantity,
              updated_at = NOW()
`

type AddCartLineParams struct {
	CartID    uuid.UUID
	ProductID int64
	Quantity  int32
}

func (q *Queries) AddCartLine(ctx context.Context, arg AddCartLineParams) error {
	_, err := q.db.Exec(ctx, addCartLine, arg.CartID, arg.ProductID, arg.Quantity)
	return err
}

const updateCartLineQuantity = `
UPDATE cart_lines
SET quantity = $3, updated_at = NOW()
WHERE cart_id = $1 AND product_id = $2
`

type UpdateCartLineQuantityParams struct {
	CartID    uuid.UUID
	ProductID int64
	Quantity  int32
}

func (q *Queries) UpdateCartLineQuantity(ctx context.Context, arg UpdateCartLineQuantityParams) (int64, error) {
	result, err := q.db.Exec(ctx, updateCartLineQuantity, arg.CartID, arg.ProductID, arg.Quantity)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected(), nil
}

const deleteCartLine = `
DELETE FROM cart_lines
WHERE cart_id = $1 AND product_id = $2
`

type DeleteCartLineParams struct {
	CartID    uuid.UUID
	ProductID int64
}

func (q *Queries) DeleteCartLine(ctx context.Context, arg DeleteCartLineParams) (int64, error) {
	result, err := q.db.Exec(ctx, deleteCartLine, arg.CartID, arg.ProductID)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected(), nil
}

const clearCartLines = `
DELETE FROM cart_lines
WHERE cart_id = $1
`

func (q *Queries) ClearCartLines(ctx context.Context, cartID uuid.UUID) error {
	_, err := q.db.Exec(ctx, clearCartLines, cartID)
	return err
}

const listCartLines = `
SELECT l.product_id, p.name, p.price_amount, p.price_currency, l.quantity
FROM cart_lines l
JOIN products p ON p.id = l.product_id
WHERE l.cart_id = $1
ORDER BY l.id
`

type ListCartLinesRow struct {
	ProductID     int64
	Name          string
	PriceAmount   decimal.Decimal
	PriceCurrency string
	Quantity      int32
}

func (q *Queries) ListCartLines(ctx context.Context, cartID uuid.UUID) ([]ListCartLinesRow, error) {
	rows, err := q.db.Query(ctx, listCartLines, cartID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []ListCartLinesRow
	for rows.Next() {
		var i ListCartLinesRow
		if err := rows.Scan(
			&i.ProductID,
			&i.Name,
			&i.PriceAmount,
			&i.PriceCurrency,
			&i.Quantity,
		); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}
