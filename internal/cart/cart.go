// Package cart puts the persisted per-user cart and the per-session cart
// behind one Cart interface and prices their contents.
package cart

import (
	"context"
	"fmt"

	"github.com/nikolayk812/herbalshop/internal/domain"
	"github.com/nikolayk812/herbalshop/internal/port"
	"golang.org/x/text/currency"
)

// Cart is the read/write contract shared by both backends. Every mutating
// call is persisted before it returns.
type Cart interface {
	// Add puts quantity units of the product into the cart, incrementing an
	// existing line.
	Add(ctx context.Context, productID int64, quantity int) error
	// Update overwrites the quantity of an existing line.
	Update(ctx context.Context, productID int64, quantity int) error
	// Remove deletes the line if present. Removing an absent product is not an error.
	Remove(ctx context.Context, productID int64) error
	Clear(ctx context.Context) error

	Items(ctx context.Context) ([]domain.PricedLine, error)
	TotalItems(ctx context.Context) (int, error)
	TotalPrice(ctx context.Context) (domain.Money, error)
	Snapshot(ctx context.Context) (Snapshot, error)
}

// Snapshot is a single consistent read of a cart's lines and totals.
type Snapshot struct {
	Lines []domain.PricedLine
	Summary
}

// Resolver picks the cart backend for a caller.
type Resolver struct {
	carts    port.CartRepository
	catalog  port.ProductCatalog
	sessions port.SessionStore
	currency currency.Unit
}

func NewResolver(carts port.CartRepository, catalog port.ProductCatalog, sessions port.SessionStore, cur currency.Unit) *Resolver {
	return &Resolver{
		carts:    carts,
		catalog:  catalog,
		sessions: sessions,
		currency: cur,
	}
}

// For returns the persisted cart of an authenticated caller, creating it on
// first access, or the session cart of an anonymous one.
func (r *Resolver) For(ctx context.Context, id domain.Identity) (Cart, error) {
	switch {
	case id.Authenticated():
		c, err := r.carts.GetOrCreateCart(ctx, id.UserID)
		if err != nil {
			return nil, fmt.Errorf("carts.GetOrCreateCart: %w", err)
		}

		return &persistentCart{
			cart:     c,
			carts:    r.carts,
			catalog:  r.catalog,
			currency: r.currency,
		}, nil

	case id.Anonymous():
		sess, err := r.sessions.Load(ctx, id.SessionID)
		if err != nil {
			return nil, fmt.Errorf("sessions.Load: %w", err)
		}

		return &sessionCart{
			session:  sess,
			sessions: r.sessions,
			catalog:  r.catalog,
			currency: r.currency,
		}, nil

	default:
		return nil, domain.ErrNoOwningIdentity
	}
}

func validateQuantity(quantity int) error {
	if quantity <= 0 || quantity > domain.MaxLineQuantity {
		return fmt.Errorf("%w: got %d", domain.ErrInvalidQuantity, quantity)
	}
	return nil
}

// purchasable returns the product only if it exists and is active.
func purchasable(ctx context.Context, catalog port.ProductCatalog, productID int64) (domain.Product, error) {
	p, err := catalog.GetProduct(ctx, productID)
	if err != nil {
		return domain.Product{}, fmt.Errorf("catalog.GetProduct: %w", err)
	}

	if !p.Active {
		return domain.Product{}, fmt.Errorf("product[%d] is inactive: %w", productID, domain.ErrNotFound)
	}

	return p, nil
}

func lineNotFound(productID int64) error {
	return fmt.Errorf("cart line[%d]: %w", productID, domain.ErrNotFound)
}
