package domain

import (
	"math"
	"time"

	"github.com/google/uuid"
)

// MaxLineQuantity is the largest quantity one cart line can hold. It is the
// range of the cart_lines.quantity column.
const MaxLineQuantity = math.MaxInt32

// Cart is the persisted cart owned by an authenticated user.
type Cart struct {
	ID     uuid.UUID
	UserID string

	CreatedAt time.Time
}

// PricedLine is a cart line joined with a name and unit price. For persisted
// carts both come from the catalog at read time; for session carts they are
// the values captured when the line was first added.
type PricedLine struct {
	ProductID   int64
	ProductName string
	UnitPrice   Money
	Quantity    int
}

func (l PricedLine) Total() Money {
	return l.UnitPrice.Mul(l.Quantity)
}
