package domain

import "time"

type WishlistItem struct {
	UserID    string
	ProductID int64

	CreatedAt time.Time
}
