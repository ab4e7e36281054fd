package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/nikolayk812/herbalshop/internal/db"
	"github.com/nikolayk812/herbalshop/internal/domain"
	"github.com/nikolayk812/herbalshop/internal/port"
	"golang.org/x/text/currency"
)

const (
	// foreignKeyViolation is raised when the product row is gone by insert time.
	foreignKeyViolation = "23503"
	// numericValueOutOfRange is raised when an increment overflows the quantity column.
	numericValueOutOfRange = "22003"
)

type cartRepository struct {
	q    *db.Queries
	pool *pgxpool.Pool
}

func NewCart(pool *pgxpool.Pool) port.CartRepository {
	return &cartRepository{
		q:    db.New(pool),
		pool: pool,
	}
}

func NewCartWithTx(tx pgx.Tx) port.CartRepository {
	return &cartRepository{
		q:    db.New(tx),
		pool: nil, // use provided transaction instead
	}
}

// GetOrCreateCart never creates a second cart for a user: the insert is a
// no-op on the unique user_id and the read that follows returns the winner.
func (r *cartRepository) GetOrCreateCart(ctx context.Context, userID string) (domain.Cart, error) {
	if userID == "" {
		return domain.Cart{}, fmt.Errorf("userID is empty")
	}

	dbCart, err := withTx(ctx, r.pool, r.q, func(q *db.Queries) (db.Cart, error) {
		existing, err := q.GetCartByUser(ctx, userID)
		if err == nil {
			return existing, nil
		}
		if !errors.Is(err, pgx.ErrNoRows) {
			return db.Cart{}, fmt.Errorf("q.GetCartByUser: %w", err)
		}

		if err := q.InsertCart(ctx, db.InsertCartParams{ID: uuid.New(), UserID: userID}); err != nil {
			return db.Cart{}, fmt.Errorf("q.InsertCart: %w", err)
		}

		created, err := q.GetCartByUser(ctx, userID)
		if err != nil {
			return db.Cart{}, fmt.Errorf("q.GetCartByUser: %w", err)
		}

		return created, nil
	})
	if err != nil {
		return domain.Cart{}, err
	}

	return domain.Cart{
		ID:        dbCart.ID,
		UserID:    dbCart.UserID,
		CreatedAt: dbCart.CreatedAt,
	}, nil
}

func (r *cartRepository) AddLine(ctx context.Context, cartID uuid.UUID, productID int64, quantity int) error {
	if quantity <= 0 || quantity > domain.MaxLineQuantity {
		return domain.ErrInvalidQuantity
	}

	err := r.q.AddCartLine(ctx, db.AddCartLineParams{
		CartID:    cartID,
		ProductID: productID,
		Quantity:  int32(quantity),
	})
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) {
			switch pgErr.Code {
			case foreignKeyViolation:
				return fmt.Errorf("product[%d]: %w", productID, domain.ErrNotFound)
			case numericValueOutOfRange:
				return fmt.Errorf("line[%d]: %w", productID, domain.ErrInvalidQuantity)
			}
		}
		return fmt.Errorf("q.AddCartLine: %w", err)
	}

	return nil
}

func (r *cartRepository) SetQuantity(ctx context.Context, cartID uuid.UUID, productID int64, quantity int) (bool, error) {
	if quantity <= 0 || quantity > domain.MaxLineQuantity {
		return false, domain.ErrInvalidQuantity
	}

	rowsAffected, err := r.q.UpdateCartLineQuantity(ctx, db.UpdateCartLineQuantityParams{
		CartID:    cartID,
		ProductID: productID,
		Quantity:  int32(quantity),
	})
	if err != nil {
		return false, fmt.Errorf("q.UpdateCartLineQuantity: %w", err)
	}

	return rowsAffected > 0, nil
}

// RemoveLine reports whether a line was deleted; a missing line is not an error.
func (r *cartRepository) RemoveLine(ctx context.Context, cartID uuid.UUID, productID int64) (bool, error) {
	rowsAffected, err := r.q.DeleteCartLine(ctx, db.DeleteCartLineParams{
		CartID:    cartID,
		ProductID: productID,
	})
	if err != nil {
		return false, fmt.Errorf("q.DeleteCartLine: %w", err)
	}

	return rowsAffected > 0, nil
}

func (r *cartRepository) Lines(ctx context.Context, cartID uuid.UUID) ([]domain.PricedLine, error) {
	rows, err := r.q.ListCartLines(ctx, cartID)
	if err != nil {
		return nil, fmt.Errorf("q.ListCartLines: %w", err)
	}

	lines, err := mapCartLineRowsToDomain(rows)
	if err != nil {
		return nil, fmt.Errorf("mapCartLineRowsToDomain: %w", err)
	}

	return lines, nil
}

func (r *cartRepository) Clear(ctx context.Context, cartID uuid.UUID) error {
	if err := r.q.ClearCartLines(ctx, cartID); err != nil {
		return fmt.Errorf("q.ClearCartLines: %w", err)
	}

	return nil
}

func mapCartLineRowToDomain(row db.ListCartLinesRow) (domain.PricedLine, error) {
	parsedCurrency, err := currency.ParseISO(row.PriceCurrency)
	if err != nil {
		return domain.PricedLine{}, fmt.Errorf("currency[%s] is not valid: %w", row.PriceCurrency, err)
	}

	return domain.PricedLine{
		ProductID:   row.ProductID,
		ProductName: row.Name,
		UnitPrice:   domain.Money{Amount: row.PriceAmount, Currency: parsedCurrency},
		Quantity:    int(row.Quantity),
	}, nil
}

func mapCartLineRowsToDomain(rows []db.ListCartLinesRow) ([]domain.PricedLine, error) {
	items := make([]domain.PricedLine, 0, len(rows))

	for _, row := range rows {
		item, err := mapCartLineRowToDomain(row)
		if err != nil {
			return nil, fmt.Errorf("mapCartLineRowToDomain: %w", err)
		}

		items = append(items, item)
	}

	return items, nil
}
