// Package http exposes the shop over a JSON HTTP API.
package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type RouterDeps struct {
	Cart     *CartHandler
	Catalog  *CatalogHandler
	Wishlist *WishlistHandler
	Health   *HealthHandler

	Cookie    SessionCookie
	NewSessID func() string
	Logger    *slog.Logger
}

func NewRouter(deps RouterDeps) http.Handler {
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(Recovery(deps.Logger))
	r.Use(Metrics)

	r.Get("/health/live", deps.Health.Live)
	r.Get("/health/ready", deps.Health.Ready)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(Identity(deps.Cookie, deps.NewSessID))
		r.Use(RequestLogging(deps.Logger))

		r.Route("/cart", func(r chi.Router) {
			r.Get("/", deps.Cart.Get)
			r.Delete("/", deps.Cart.Clear)
			r.Post("/items", deps.Cart.AddItem)
			r.Put("/items/{productID}", deps.Cart.UpdateItem)
			r.Delete("/items/{productID}", deps.Cart.RemoveItem)
		})

		r.Get("/products", deps.Catalog.ListProducts)
		r.Get("/products/{slug}", deps.Catalog.GetProduct)
		r.Get("/categories", deps.Catalog.ListCategories)

		r.Route("/wishlist", func(r chi.Router) {
			r.Get("/", deps.Wishlist.List)
			r.Delete("/", deps.Wishlist.Clear)
			r.Post("/{productID}/toggle", deps.Wishlist.Toggle)
			r.Delete("/{productID}", deps.Wishlist.Remove)
		})
	})

	return r
}
