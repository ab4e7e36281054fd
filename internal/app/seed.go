package app

import (
	"github.com/nikolayk812/herbalshop/internal/domain"
	"github.com/nikolayk812/herbalshop/internal/repository/memory"
	"github.com/shopspring/decimal"
	"golang.org/x/text/currency"
)

// seedDemoCatalog gives the in-memory backend something to sell.
func seedDemoCatalog(store *memory.Store, cur currency.Unit) {
	store.PutCategory(domain.Category{ID: 1, Name: "Herbal teas", Slug: "herbal-teas", Active: true})
	store.PutCategory(domain.Category{ID: 2, Name: "Essential oils", Slug: "essential-oils", Active: true})

	products := []struct {
		id       int64
		category int64
		name     string
		slug     string
		price    string
		stock    int
	}{
		{1, 1, "Chamomile", "chamomile", "5.50", 40},
		{2, 1, "Peppermint", "peppermint", "4.90", 25},
		{3, 1, "Lemon balm", "lemon-balm", "6.20", 0},
		{4, 2, "Lavender oil", "lavender-oil", "12.00", 10},
		{5, 2, "Tea tree oil", "tea-tree-oil", "9.75", 8},
	}

	for _, p := range products {
		store.PutProduct(domain.Product{
			ID:         p.id,
			CategoryID: p.category,
			Name:       p.name,
			Slug:       p.slug,
			Price:      domain.Money{Amount: decimal.RequireFromString(p.price), Currency: cur},
			Stock:      p.stock,
			Active:     true,
		})
	}
}
