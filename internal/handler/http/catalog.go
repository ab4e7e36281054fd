package http

import (
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/nikolayk812/herbalshop/internal/cart"
	"github.com/nikolayk812/herbalshop/internal/domain"
	"github.com/nikolayk812/herbalshop/internal/port"
	"github.com/shopspring/decimal"
)

const similarProductsLimit = 4

type CatalogHandler struct {
	catalog port.ProductCatalog
	logger  *slog.Logger
}

func NewCatalogHandler(catalog port.ProductCatalog, logger *slog.Logger) *CatalogHandler {
	return &CatalogHandler{
		catalog: catalog,
		logger:  logger,
	}
}

type productView struct {
	ID          int64          `json:"id"`
	CategoryID  int64          `json:"category_id"`
	Name        string         `json:"name"`
	Slug        string         `json:"slug"`
	Description string         `json:"description"`
	Price       cart.MoneyView `json:"price"`
	Stock       int            `json:"stock"`
	Featured    bool           `json:"is_featured"`
	Available   bool           `json:"is_available"`
}

type productDetailView struct {
	Product       productView     `json:"product"`
	AverageRating decimal.Decimal `json:"average_rating"`
	Similar       []productView   `json:"similar_products"`
}

type categoryView struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
	Slug string `json:"slug"`
}

func newProductView(p domain.Product) productView {
	return productView{
		ID:          p.ID,
		CategoryID:  p.CategoryID,
		Name:        p.Name,
		Slug:        p.Slug,
		Description: p.Description,
		Price:       cart.NewMoneyView(p.Price),
		Stock:       p.Stock,
		Featured:    p.Featured,
		Available:   p.IsAvailable(),
	}
}

func newProductViews(products []domain.Product) []productView {
	views := make([]productView, 0, len(products))
	for _, p := range products {
		views = append(views, newProductView(p))
	}
	return views
}

// ListProducts serves the shop listing. Repeated category parameters are
// OR-ed; price_min and price_max are inclusive bounds.
func (h *CatalogHandler) ListProducts(w http.ResponseWriter, r *http.Request) {
	filter, err := productFilterFromQuery(r)
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}

	products, err := h.catalog.ListProducts(r.Context(), filter)
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}

	writeData(w, http.StatusOK, newProductViews(products))
}

func (h *CatalogHandler) GetProduct(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	p, err := h.catalog.GetProductBySlug(ctx, chi.URLParam(r, "slug"))
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}
	if !p.Active {
		writeError(w, r, fmt.Errorf("product[%s] is inactive: %w", p.Slug, domain.ErrNotFound), h.logger)
		return
	}

	rating, err := h.catalog.AverageRating(ctx, p.ID)
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}

	similar, err := h.catalog.ListProducts(ctx, domain.ProductFilter{
		CategoryID: p.CategoryID,
		ExcludeID:  p.ID,
		ActiveOnly: true,
		Limit:      similarProductsLimit,
	})
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}

	writeData(w, http.StatusOK, productDetailView{
		Product:       newProductView(p),
		AverageRating: rating,
		Similar:       newProductViews(similar),
	})
}

func (h *CatalogHandler) ListCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.catalog.ListCategories(r.Context())
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}

	views := make([]categoryView, 0, len(categories))
	for _, c := range categories {
		views = append(views, categoryView{ID: c.ID, Name: c.Name, Slug: c.Slug})
	}

	writeData(w, http.StatusOK, views)
}

func productFilterFromQuery(r *http.Request) (domain.ProductFilter, error) {
	q := r.URL.Query()

	filter := domain.ProductFilter{ActiveOnly: true}

	for _, slug := range q["category"] {
		if slug = strings.TrimSpace(slug); slug != "" {
			filter.CategorySlugs = append(filter.CategorySlugs, slug)
		}
	}

	var err error
	if filter.PriceMin, err = decimalParam(q.Get("price_min"), "price_min"); err != nil {
		return domain.ProductFilter{}, err
	}
	if filter.PriceMax, err = decimalParam(q.Get("price_max"), "price_max"); err != nil {
		return domain.ProductFilter{}, err
	}

	return filter, nil
}

func decimalParam(raw, name string) (*decimal.Decimal, error) {
	if raw == "" {
		return nil, nil
	}

	d, err := decimal.NewFromString(raw)
	if err != nil || d.IsNegative() {
		return nil, invalidInput("%s must be a non-negative number, got %q", name, raw)
	}

	return &d, nil
}
