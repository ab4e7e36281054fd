package http

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/nikolayk812/herbalshop/internal/cart"
	"github.com/nikolayk812/herbalshop/internal/domain"
)

// CartResolver hands out the cart of the current caller.
type CartResolver interface {
	For(ctx context.Context, id domain.Identity) (cart.Cart, error)
}

type CartHandler struct {
	resolver CartResolver
	logger   *slog.Logger
}

func NewCartHandler(resolver CartResolver, logger *slog.Logger) *CartHandler {
	return &CartHandler{
		resolver: resolver,
		logger:   logger,
	}
}

type addItemRequest struct {
	ProductID int64 `json:"product_id" validate:"required,gt=0"`
	// Quantity defaults to 1 when omitted.
	Quantity *int `json:"quantity"`
}

type updateItemRequest struct {
	Quantity *int `json:"quantity" validate:"required"`
}

func (h *CartHandler) Get(w http.ResponseWriter, r *http.Request) {
	c, ok := h.resolve(w, r)
	if !ok {
		return
	}

	h.render(w, r, c)
}

func (h *CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	var req addItemRequest
	if err := decodeAndValidate(r, &req); err != nil {
		writeError(w, r, err, h.logger)
		return
	}

	quantity := 1
	if req.Quantity != nil {
		quantity = *req.Quantity
	}

	c, ok := h.resolve(w, r)
	if !ok {
		return
	}

	err := c.Add(r.Context(), req.ProductID, quantity)
	h.observe(r, "add", err)
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}

	h.render(w, r, c)
}

func (h *CartHandler) UpdateItem(w http.ResponseWriter, r *http.Request) {
	productID, err := productIDParam(r)
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}

	var req updateItemRequest
	if err := decodeAndValidate(r, &req); err != nil {
		writeError(w, r, err, h.logger)
		return
	}

	c, ok := h.resolve(w, r)
	if !ok {
		return
	}

	err = c.Update(r.Context(), productID, *req.Quantity)
	h.observe(r, "update", err)
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}

	h.render(w, r, c)
}

func (h *CartHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	productID, err := productIDParam(r)
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}

	c, ok := h.resolve(w, r)
	if !ok {
		return
	}

	err = c.Remove(r.Context(), productID)
	h.observe(r, "remove", err)
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}

	h.render(w, r, c)
}

func (h *CartHandler) Clear(w http.ResponseWriter, r *http.Request) {
	c, ok := h.resolve(w, r)
	if !ok {
		return
	}

	err := c.Clear(r.Context())
	h.observe(r, "clear", err)
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *CartHandler) resolve(w http.ResponseWriter, r *http.Request) (cart.Cart, bool) {
	c, err := h.resolver.For(r.Context(), IdentityFromContext(r.Context()))
	if err != nil {
		writeError(w, r, err, h.logger)
		return nil, false
	}

	return c, true
}

func (h *CartHandler) render(w http.ResponseWriter, r *http.Request, c cart.Cart) {
	view, err := cart.Render(r.Context(), c)
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}

	writeData(w, http.StatusOK, view)
}

func (h *CartHandler) observe(r *http.Request, operation string, err error) {
	result := "ok"
	switch {
	case err == nil:
	case errors.Is(err, domain.ErrInvalidQuantity):
		result = "invalid_quantity"
	case errors.Is(err, domain.ErrNotFound):
		result = "not_found"
	default:
		result = "error"
	}

	kind := IdentityFromContext(r.Context()).Kind()
	cartMutationsTotal.WithLabelValues(operation, kind, result).Inc()
}
