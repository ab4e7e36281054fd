package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type Category struct {
	ID     int64
	Name   string
	Slug   string
	Active bool

	CreatedAt time.Time
}

type Product struct {
	ID          int64
	CategoryID  int64
	Name        string
	Slug        string
	Description string
	Price       Money
	Stock       int
	Active      bool
	Featured    bool

	CreatedAt time.Time
}

// IsAvailable reports whether the product can be bought right now.
func (p Product) IsAvailable() bool {
	return p.Stock > 0 && p.Active
}

type Review struct {
	ProductID int64
	UserID    string
	Rating    int
	Comment   string
	Approved  bool

	CreatedAt time.Time
}

// AverageRating averages the approved reviews only. No approved reviews
// yields zero.
func AverageRating(reviews []Review) decimal.Decimal {
	var (
		sum   int64
		count int64
	)

	for _, r := range reviews {
		if !r.Approved {
			continue
		}
		sum += int64(r.Rating)
		count++
	}

	if count == 0 {
		return decimal.Zero
	}

	return decimal.NewFromInt(sum).DivRound(decimal.NewFromInt(count), 2)
}

// ProductFilter narrows the shop listing. Zero values disable a criterion.
type ProductFilter struct {
	CategorySlugs []string
	PriceMin      *decimal.Decimal
	PriceMax      *decimal.Decimal
	ActiveOnly    bool
	ExcludeID     int64
	CategoryID    int64
	Limit         int
}

func (f ProductFilter) Match(p Product, categorySlug string) bool {
	if f.ActiveOnly && !p.Active {
		return false
	}
	if f.ExcludeID != 0 && p.ID == f.ExcludeID {
		return false
	}
	if f.CategoryID != 0 && p.CategoryID != f.CategoryID {
		return false
	}
	if len(f.CategorySlugs) > 0 {
		found := false
		for _, s := range f.CategorySlugs {
			if s == categorySlug {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	if f.PriceMin != nil && p.Price.Amount.LessThan(*f.PriceMin) {
		return false
	}
	if f.PriceMax != nil && p.Price.Amount.GreaterThan(*f.PriceMax) {
		return false
	}

	return true
}
