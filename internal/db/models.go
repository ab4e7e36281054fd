package db

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type Cart struct {
	ID        uuid.UUID
	UserID    string
	CreatedAt time.Time
}

type Category struct {
	ID        int64
	Name      string
	Slug      string
	IsActive  bool
	CreatedAt time.Time
}

type Product struct {
	ID            int64
	CategoryID    int64
	Name          string
	Slug          string
	Description   string
	PriceAmount   decimal.Decimal
	PriceCurrency string
	Stock         int32
	IsActive      bool
	IsFeatured    bool
	CreatedAt     time.Time
}

type WishlistItem struct {
	UserID    string
	ProductID int64
	CreatedAt time.Time
}
