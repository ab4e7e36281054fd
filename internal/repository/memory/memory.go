// Package memory keeps catalog, carts, wishlists and sessions in process
// memory. It backs local development runs and tests; state is lost on restart.
package memory

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/nikolayk812/herbalshop/internal/domain"
	"github.com/nikolayk812/herbalshop/internal/port"
	"github.com/shopspring/decimal"
)

type cartLine struct {
	productID int64
	quantity  int
}

// Store is the shared state behind the port views returned by Carts,
// Catalog and Wishlists.
type Store struct {
	mu sync.RWMutex

	categories map[int64]domain.Category
	products   map[int64]domain.Product
	reviews    []domain.Review

	carts     map[string]domain.Cart
	lines     map[uuid.UUID][]cartLine
	wishlists map[string][]domain.WishlistItem
	sessions  map[string][]byte

	now func() time.Time
}

func NewStore() *Store {
	return &Store{
		categories: make(map[int64]domain.Category),
		products:   make(map[int64]domain.Product),
		carts:      make(map[string]domain.Cart),
		lines:      make(map[uuid.UUID][]cartLine),
		wishlists:  make(map[string][]domain.WishlistItem),
		sessions:   make(map[string][]byte),
		now:        func() time.Time { return time.Now().UTC() },
	}
}

// PutCategory inserts or replaces a category.
func (s *Store) PutCategory(c domain.Category) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if c.CreatedAt.IsZero() {
		c.CreatedAt = s.now()
	}
	s.categories[c.ID] = c
}

// PutProduct inserts or replaces a product. Replacing one is how price
// changes are simulated.
func (s *Store) PutProduct(p domain.Product) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if p.CreatedAt.IsZero() {
		p.CreatedAt = s.now()
	}
	s.products[p.ID] = p
}

// DeleteProduct drops the product along with every cart line and wishlist
// entry that references it.
func (s *Store) DeleteProduct(id int64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.products, id)

	for cartID, lines := range s.lines {
		kept := lines[:0]
		for _, l := range lines {
			if l.productID != id {
				kept = append(kept, l)
			}
		}
		s.lines[cartID] = kept
	}

	for userID, items := range s.wishlists {
		kept := items[:0]
		for _, it := range items {
			if it.ProductID != id {
				kept = append(kept, it)
			}
		}
		s.wishlists[userID] = kept
	}
}

func (s *Store) PutReview(r domain.Review) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if r.CreatedAt.IsZero() {
		r.CreatedAt = s.now()
	}
	s.reviews = append(s.reviews, r)
}

func (s *Store) Carts() port.CartRepository {
	return &cartRepository{s: s}
}

func (s *Store) Catalog() port.ProductCatalog {
	return &catalogRepository{s: s}
}

func (s *Store) Wishlists() port.WishlistRepository {
	return &wishlistRepository{s: s}
}

func (s *Store) Sessions() port.SessionStore {
	return &sessionStore{s: s}
}

type cartRepository struct {
	s *Store
}

func (r *cartRepository) GetOrCreateCart(_ context.Context, userID string) (domain.Cart, error) {
	if userID == "" {
		return domain.Cart{}, fmt.Errorf("userID is empty")
	}

	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if c, ok := r.s.carts[userID]; ok {
		return c, nil
	}

	c := domain.Cart{ID: uuid.New(), UserID: userID, CreatedAt: r.s.now()}
	r.s.carts[userID] = c

	return c, nil
}

func (r *cartRepository) AddLine(_ context.Context, cartID uuid.UUID, productID int64, quantity int) error {
	if quantity <= 0 || quantity > domain.MaxLineQuantity {
		return domain.ErrInvalidQuantity
	}

	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.products[productID]; !ok {
		return fmt.Errorf("product[%d]: %w", productID, domain.ErrNotFound)
	}

	lines := r.s.lines[cartID]
	for i := range lines {
		if lines[i].productID == productID {
			if lines[i].quantity > domain.MaxLineQuantity-quantity {
				return domain.ErrInvalidQuantity
			}
			lines[i].quantity += quantity
			return nil
		}
	}

	r.s.lines[cartID] = append(lines, cartLine{productID: productID, quantity: quantity})

	return nil
}

func (r *cartRepository) SetQuantity(_ context.Context, cartID uuid.UUID, productID int64, quantity int) (bool, error) {
	if quantity <= 0 || quantity > domain.MaxLineQuantity {
		return false, domain.ErrInvalidQuantity
	}

	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	lines := r.s.lines[cartID]
	for i := range lines {
		if lines[i].productID == productID {
			lines[i].quantity = quantity
			return true, nil
		}
	}

	return false, nil
}

func (r *cartRepository) RemoveLine(_ context.Context, cartID uuid.UUID, productID int64) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	lines := r.s.lines[cartID]
	for i := range lines {
		if lines[i].productID == productID {
			r.s.lines[cartID] = append(lines[:i], lines[i+1:]...)
			return true, nil
		}
	}

	return false, nil
}

func (r *cartRepository) Lines(_ context.Context, cartID uuid.UUID) ([]domain.PricedLine, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	lines := r.s.lines[cartID]
	result := make([]domain.PricedLine, 0, len(lines))

	for _, l := range lines {
		p, ok := r.s.products[l.productID]
		if !ok {
			continue
		}
		result = append(result, domain.PricedLine{
			ProductID:   p.ID,
			ProductName: p.Name,
			UnitPrice:   p.Price,
			Quantity:    l.quantity,
		})
	}

	return result, nil
}

func (r *cartRepository) Clear(_ context.Context, cartID uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	delete(r.s.lines, cartID)

	return nil
}

type catalogRepository struct {
	s *Store
}

func (r *catalogRepository) GetProduct(_ context.Context, id int64) (domain.Product, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	p, ok := r.s.products[id]
	if !ok {
		return domain.Product{}, fmt.Errorf("product[%d]: %w", id, domain.ErrNotFound)
	}

	return p, nil
}

func (r *catalogRepository) GetProductBySlug(_ context.Context, slug string) (domain.Product, error) {
	if slug == "" {
		return domain.Product{}, fmt.Errorf("slug is empty")
	}

	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	for _, p := range r.s.products {
		if p.Slug == slug {
			return p, nil
		}
	}

	return domain.Product{}, fmt.Errorf("product[%s]: %w", slug, domain.ErrNotFound)
}

func (r *catalogRepository) ListProducts(_ context.Context, filter domain.ProductFilter) ([]domain.Product, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var result []domain.Product
	for _, p := range r.s.products {
		if filter.Match(p, r.s.categories[p.CategoryID].Slug) {
			result = append(result, p)
		}
	}

	// newest first, same as the SQL listing
	sort.Slice(result, func(i, j int) bool {
		if !result[i].CreatedAt.Equal(result[j].CreatedAt) {
			return result[i].CreatedAt.After(result[j].CreatedAt)
		}
		return result[i].ID > result[j].ID
	})

	if filter.Limit > 0 && len(result) > filter.Limit {
		result = result[:filter.Limit]
	}

	return result, nil
}

func (r *catalogRepository) ListCategories(_ context.Context) ([]domain.Category, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var result []domain.Category
	for _, c := range r.s.categories {
		if c.Active {
			result = append(result, c)
		}
	}

	sort.Slice(result, func(i, j int) bool { return result[i].Name < result[j].Name })

	return result, nil
}

func (r *catalogRepository) AverageRating(_ context.Context, productID int64) (decimal.Decimal, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var reviews []domain.Review
	for _, rv := range r.s.reviews {
		if rv.ProductID == productID {
			reviews = append(reviews, rv)
		}
	}

	return domain.AverageRating(reviews), nil
}

type wishlistRepository struct {
	s *Store
}

func (r *wishlistRepository) Toggle(_ context.Context, userID string, productID int64) (bool, error) {
	if userID == "" {
		return false, fmt.Errorf("userID is empty")
	}

	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if r.removeLocked(userID, productID) {
		return false, nil
	}

	if _, ok := r.s.products[productID]; !ok {
		return false, fmt.Errorf("product[%d]: %w", productID, domain.ErrNotFound)
	}

	r.s.wishlists[userID] = append(r.s.wishlists[userID], domain.WishlistItem{
		UserID:    userID,
		ProductID: productID,
		CreatedAt: r.s.now(),
	})

	return true, nil
}

func (r *wishlistRepository) Remove(_ context.Context, userID string, productID int64) (bool, error) {
	if userID == "" {
		return false, fmt.Errorf("userID is empty")
	}

	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	return r.removeLocked(userID, productID), nil
}

func (r *wishlistRepository) removeLocked(userID string, productID int64) bool {
	items := r.s.wishlists[userID]
	for i, it := range items {
		if it.ProductID == productID {
			r.s.wishlists[userID] = append(items[:i], items[i+1:]...)
			return true
		}
	}

	return false
}

func (r *wishlistRepository) List(_ context.Context, userID string) ([]domain.WishlistItem, error) {
	if userID == "" {
		return nil, fmt.Errorf("userID is empty")
	}

	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	items := r.s.wishlists[userID]
	result := make([]domain.WishlistItem, 0, len(items))
	// most recent first
	for i := len(items) - 1; i >= 0; i-- {
		result = append(result, items[i])
	}

	return result, nil
}

func (r *wishlistRepository) Clear(_ context.Context, userID string) error {
	if userID == "" {
		return fmt.Errorf("userID is empty")
	}

	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	delete(r.s.wishlists, userID)

	return nil
}

// sessionStore keeps sessions serialised, the same way the redis store does,
// so callers never share decoded values between loads. Sessions do not expire.
type sessionStore struct {
	s *Store
}

func (r *sessionStore) Load(_ context.Context, id string) (*domain.Session, error) {
	if id == "" {
		return nil, fmt.Errorf("session id is empty")
	}

	r.s.mu.RLock()
	data, ok := r.s.sessions[id]
	r.s.mu.RUnlock()

	if !ok {
		return domain.NewSession(id, nil), nil
	}

	var values map[string]json.RawMessage
	if err := json.Unmarshal(data, &values); err != nil {
		return nil, fmt.Errorf("unmarshal session: %w", err)
	}

	return domain.NewSession(id, values), nil
}

func (r *sessionStore) Save(_ context.Context, sess *domain.Session) error {
	if !sess.Modified() {
		return nil
	}

	data, err := json.Marshal(sess.Values())
	if err != nil {
		return fmt.Errorf("marshal session: %w", err)
	}

	r.s.mu.Lock()
	r.s.sessions[sess.ID] = data
	r.s.mu.Unlock()

	sess.MarkClean()

	return nil
}

func (r *sessionStore) Delete(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	delete(r.s.sessions, id)

	return nil
}
