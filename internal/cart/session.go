package cart

import (
	"context"
	"fmt"

	"github.com/nikolayk812/herbalshop/internal/domain"
	"github.com/nikolayk812/herbalshop/internal/port"
	"golang.org/x/text/currency"
)

// sessionKey is where the anonymous cart lives inside the session.
const sessionKey = "cart"

// sessionCart keeps the name and price captured at add time. Its totals do
// not follow later catalog price changes.
type sessionCart struct {
	session  *domain.Session
	sessions port.SessionStore
	catalog  port.ProductCatalog
	currency currency.Unit
}

func (c *sessionCart) load() (*domain.SessionCart, error) {
	sc := domain.NewSessionCart()

	if _, err := c.session.Get(sessionKey, sc); err != nil {
		return nil, fmt.Errorf("session.Get: %w", err)
	}

	return sc, nil
}

// save writes the whole cart back and flushes the session.
func (c *sessionCart) save(ctx context.Context, sc *domain.SessionCart) error {
	if err := c.session.Set(sessionKey, sc); err != nil {
		return fmt.Errorf("session.Set: %w", err)
	}

	if err := c.sessions.Save(ctx, c.session); err != nil {
		return fmt.Errorf("sessions.Save: %w", err)
	}

	return nil
}

func (c *sessionCart) Add(ctx context.Context, productID int64, quantity int) error {
	if err := validateQuantity(quantity); err != nil {
		return err
	}

	p, err := purchasable(ctx, c.catalog, productID)
	if err != nil {
		return err
	}

	sc, err := c.load()
	if err != nil {
		return err
	}

	if line, ok := sc.Get(p.ID); ok && line.Quantity > domain.MaxLineQuantity-quantity {
		return fmt.Errorf("%w: line[%d] would hold more than %d", domain.ErrInvalidQuantity, p.ID, domain.MaxLineQuantity)
	}

	sc.Add(p.ID, p.Name, p.Price, quantity)

	return c.save(ctx, sc)
}

func (c *sessionCart) Update(ctx context.Context, productID int64, quantity int) error {
	if err := validateQuantity(quantity); err != nil {
		return err
	}

	sc, err := c.load()
	if err != nil {
		return err
	}

	if !sc.Set(productID, quantity) {
		return lineNotFound(productID)
	}

	return c.save(ctx, sc)
}

func (c *sessionCart) Remove(ctx context.Context, productID int64) error {
	sc, err := c.load()
	if err != nil {
		return err
	}

	if !sc.Remove(productID) {
		return nil
	}

	return c.save(ctx, sc)
}

func (c *sessionCart) Clear(ctx context.Context) error {
	c.session.Delete(sessionKey)

	if err := c.sessions.Save(ctx, c.session); err != nil {
		return fmt.Errorf("sessions.Save: %w", err)
	}

	return nil
}

func (c *sessionCart) Items(_ context.Context) ([]domain.PricedLine, error) {
	sc, err := c.load()
	if err != nil {
		return nil, err
	}

	return sc.Lines(), nil
}

func (c *sessionCart) TotalItems(ctx context.Context) (int, error) {
	s, err := c.Snapshot(ctx)
	if err != nil {
		return 0, err
	}
	return s.TotalItems, nil
}

func (c *sessionCart) TotalPrice(ctx context.Context) (domain.Money, error) {
	s, err := c.Snapshot(ctx)
	if err != nil {
		return domain.Money{}, err
	}
	return s.TotalPrice, nil
}

func (c *sessionCart) Snapshot(ctx context.Context) (Snapshot, error) {
	lines, err := c.Items(ctx)
	if err != nil {
		return Snapshot{}, err
	}

	return snapshotOf(lines, c.currency)
}
