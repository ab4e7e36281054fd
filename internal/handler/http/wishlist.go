package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/nikolayk812/herbalshop/internal/domain"
	"github.com/nikolayk812/herbalshop/internal/port"
)

// WishlistHandler serves wishlists. Only authenticated callers have one.
type WishlistHandler struct {
	wishlists port.WishlistRepository
	catalog   port.ProductCatalog
	logger    *slog.Logger
}

func NewWishlistHandler(wishlists port.WishlistRepository, catalog port.ProductCatalog, logger *slog.Logger) *WishlistHandler {
	return &WishlistHandler{
		wishlists: wishlists,
		catalog:   catalog,
		logger:    logger,
	}
}

type wishlistItemView struct {
	ProductID int64     `json:"product_id"`
	AddedAt   time.Time `json:"added_at"`
}

type toggleView struct {
	Status string `json:"status"`
}

func (h *WishlistHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.user(w, r)
	if !ok {
		return
	}

	items, err := h.wishlists.List(r.Context(), userID)
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}

	views := make([]wishlistItemView, 0, len(items))
	for _, it := range items {
		views = append(views, wishlistItemView{ProductID: it.ProductID, AddedAt: it.CreatedAt})
	}

	writeData(w, http.StatusOK, views)
}

// Toggle adds the product when absent and removes it when present.
func (h *WishlistHandler) Toggle(w http.ResponseWriter, r *http.Request) {
	userID, productID, ok := h.userAndProduct(w, r)
	if !ok {
		return
	}

	added, err := h.wishlists.Toggle(r.Context(), userID, productID)
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}

	status := "removed"
	if added {
		status = "added"
	}

	writeData(w, http.StatusOK, toggleView{Status: status})
}

func (h *WishlistHandler) Remove(w http.ResponseWriter, r *http.Request) {
	userID, productID, ok := h.userAndProduct(w, r)
	if !ok {
		return
	}

	if _, err := h.wishlists.Remove(r.Context(), userID, productID); err != nil {
		writeError(w, r, err, h.logger)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *WishlistHandler) Clear(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.user(w, r)
	if !ok {
		return
	}

	if err := h.wishlists.Clear(r.Context(), userID); err != nil {
		writeError(w, r, err, h.logger)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *WishlistHandler) user(w http.ResponseWriter, r *http.Request) (string, bool) {
	id := IdentityFromContext(r.Context())
	if !id.Authenticated() {
		writeError(w, r, domain.ErrUnauthenticated, h.logger)
		return "", false
	}

	return id.UserID, true
}

// userAndProduct also checks that the product exists so unknown ids get a 404.
func (h *WishlistHandler) userAndProduct(w http.ResponseWriter, r *http.Request) (string, int64, bool) {
	userID, ok := h.user(w, r)
	if !ok {
		return "", 0, false
	}

	productID, err := productIDParam(r)
	if err != nil {
		writeError(w, r, err, h.logger)
		return "", 0, false
	}

	if _, err := h.catalog.GetProduct(r.Context(), productID); err != nil {
		writeError(w, r, err, h.logger)
		return "", 0, false
	}

	return userID, productID, true
}
