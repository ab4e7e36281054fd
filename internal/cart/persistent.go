package cart

import (
	"context"
	"fmt"

	"github.com/nikolayk812/herbalshop/internal/domain"
	"github.com/nikolayk812/herbalshop/internal/port"
	"golang.org/x/text/currency"
)

// persistentCart prices lines from the catalog at read time, so its totals
// follow catalog price changes.
type persistentCart struct {
	cart     domain.Cart
	carts    port.CartRepository
	catalog  port.ProductCatalog
	currency currency.Unit
}

func (c *persistentCart) Add(ctx context.Context, productID int64, quantity int) error {
	if err := validateQuantity(quantity); err != nil {
		return err
	}

	if _, err := purchasable(ctx, c.catalog, productID); err != nil {
		return err
	}

	if err := c.carts.AddLine(ctx, c.cart.ID, productID, quantity); err != nil {
		return fmt.Errorf("carts.AddLine: %w", err)
	}

	return nil
}

func (c *persistentCart) Update(ctx context.Context, productID int64, quantity int) error {
	if err := validateQuantity(quantity); err != nil {
		return err
	}

	updated, err := c.carts.SetQuantity(ctx, c.cart.ID, productID, quantity)
	if err != nil {
		return fmt.Errorf("carts.SetQuantity: %w", err)
	}
	if !updated {
		return lineNotFound(productID)
	}

	return nil
}

func (c *persistentCart) Remove(ctx context.Context, productID int64) error {
	if _, err := c.carts.RemoveLine(ctx, c.cart.ID, productID); err != nil {
		return fmt.Errorf("carts.RemoveLine: %w", err)
	}

	return nil
}

func (c *persistentCart) Clear(ctx context.Context) error {
	if err := c.carts.Clear(ctx, c.cart.ID); err != nil {
		return fmt.Errorf("carts.Clear: %w", err)
	}

	return nil
}

func (c *persistentCart) Items(ctx context.Context) ([]domain.PricedLine, error) {
	lines, err := c.carts.Lines(ctx, c.cart.ID)
	if err != nil {
		return nil, fmt.Errorf("carts.Lines: %w", err)
	}

	return lines, nil
}

func (c *persistentCart) TotalItems(ctx context.Context) (int, error) {
	s, err := c.Snapshot(ctx)
	if err != nil {
		return 0, err
	}
	return s.TotalItems, nil
}

func (c *persistentCart) TotalPrice(ctx context.Context) (domain.Money, error) {
	s, err := c.Snapshot(ctx)
	if err != nil {
		return domain.Money{}, err
	}
	return s.TotalPrice, nil
}

func (c *persistentCart) Snapshot(ctx context.Context) (Snapshot, error) {
	lines, err := c.Items(ctx)
	if err != nil {
		return Snapshot{}, err
	}

	return snapshotOf(lines, c.currency)
}
