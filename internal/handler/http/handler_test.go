package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/nikolayk812/herbalshop/internal/cart"
	"github.com/nikolayk812/herbalshop/internal/domain"
	"github.com/nikolayk812/herbalshop/internal/repository/memory"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/currency"
)

const cookieName = "sessionid"

// ============================================================================
// Test helpers
// ============================================================================

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type testServer struct {
	handler http.Handler
	store   *memory.Store
}

func newTestServer(t *testing.T) testServer {
	t.Helper()

	store := memory.NewStore()
	store.PutCategory(domain.Category{ID: 1, Name: "Teas", Slug: "teas", Active: true})
	store.PutCategory(domain.Category{ID: 2, Name: "Oils", Slug: "oils", Active: true})

	put := func(id, category int64, slug, price string, stock int, active bool) {
		store.PutProduct(domain.Product{
			ID:         id,
			CategoryID: category,
			Name:       slug,
			Slug:       slug,
			Price:      domain.Money{Amount: decimal.RequireFromString(price), Currency: currency.EUR},
			Stock:      stock,
			Active:     active,
			CreatedAt:  time.Date(2025, 1, int(id), 0, 0, 0, 0, time.UTC),
		})
	}
	put(1, 1, "chamomile", "10.00", 5, true)
	put(2, 1, "peppermint", "4.00", 0, true)
	put(3, 1, "nettle", "3.00", 2, true)
	put(4, 2, "lavender", "12.00", 1, true)
	put(5, 1, "retired", "1.00", 9, false)

	store.PutReview(domain.Review{ProductID: 1, Rating: 5, Approved: true})
	store.PutReview(domain.Review{ProductID: 1, Rating: 4, Approved: true})

	resolver := cart.NewResolver(store.Carts(), store.Catalog(), store.Sessions(), currency.EUR)

	return testServer{
		store:   store,
		handler: newTestRouter(resolver, store, nil),
	}
}

func newTestRouter(resolver CartResolver, store *memory.Store, checkers map[string]Checker) http.Handler {
	logger := testLogger()

	return NewRouter(RouterDeps{
		Cart:     NewCartHandler(resolver, logger),
		Catalog:  NewCatalogHandler(store.Catalog(), logger),
		Wishlist: NewWishlistHandler(store.Wishlists(), store.Catalog(), logger),
		Health:   NewHealthHandler(checkers),
		Cookie:   SessionCookie{Name: cookieName, TTL: time.Hour},
		NewSessID: func() string {
			return "7f1d7c1e-8a7e-4d2b-9d0a-3b8c2f1e5a10"
		},
		Logger: logger,
	})
}

type requestOption func(r *http.Request)

func asUser(id string) requestOption {
	return func(r *http.Request) { r.Header.Set(UserIDHeader, id) }
}

func withCookie(c *http.Cookie) requestOption {
	return func(r *http.Request) { r.AddCookie(c) }
}

func (s testServer) do(t *testing.T, method, path, body string, opts ...requestOption) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	if body != "" {
		reader = bytes.NewBufferString(body)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	for _, opt := range opts {
		opt(req)
	}

	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)

	return rec
}

type envelope[T any] struct {
	Data  T              `json:"data"`
	Error *errorResponse `json:"error"`
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) envelope[T] {
	t.Helper()

	var env envelope[T]
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env), rec.Body.String())
	return env
}

func sessionCookieOf(t *testing.T, rec *httptest.ResponseRecorder) *http.Cookie {
	t.Helper()

	for _, c := range rec.Result().Cookies() {
		if c.Name == cookieName {
			return c
		}
	}
	t.Fatalf("no %s cookie in response", cookieName)
	return nil
}

// ============================================================================
// Cart
// ============================================================================

func TestCart_AnonymousGetIssuesSessionCookie(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(t, http.MethodGet, "/api/v1/cart", "")

	require.Equal(t, http.StatusOK, rec.Code)
	c := sessionCookieOf(t, rec)
	assert.True(t, c.HttpOnly)
	assert.Equal(t, 3600, c.MaxAge)

	env := decode[cart.View](t, rec)
	assert.Empty(t, env.Data.Items)
	assert.Equal(t, 0, env.Data.TotalItems)
	assert.True(t, env.Data.TotalPrice.Amount.IsZero())
}

func TestCart_AnonymousAddDefaultsToOne(t *testing.T) {
	s := newTestServer(t)

	first := s.do(t, http.MethodPost, "/api/v1/cart/items", `{"product_id": 1}`)
	require.Equal(t, http.StatusOK, first.Code, first.Body.String())
	cookie := sessionCookieOf(t, first)

	rec := s.do(t, http.MethodPost, "/api/v1/cart/items", `{"product_id": 1, "quantity": 2}`, withCookie(cookie))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Empty(t, rec.Result().Cookies(), "known session keeps its cookie")

	env := decode[cart.View](t, rec)
	require.Len(t, env.Data.Items, 1)
	assert.Equal(t, 3, env.Data.Items[0].Quantity)
	assert.Equal(t, "chamomile", env.Data.Items[0].ProductName)
	assert.Equal(t, "30", env.Data.TotalPrice.Amount.String())
	assert.Equal(t, "EUR", env.Data.TotalPrice.Currency)
}

func TestCart_AuthenticatedLifecycle(t *testing.T) {
	s := newTestServer(t)
	user := asUser("user-1")

	rec := s.do(t, http.MethodPost, "/api/v1/cart/items", `{"product_id": 1, "quantity": 2}`, user)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Empty(t, rec.Result().Cookies(), "authenticated callers get no session cookie")

	rec = s.do(t, http.MethodPost, "/api/v1/cart/items", `{"product_id": 4}`, user)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = s.do(t, http.MethodPut, "/api/v1/cart/items/1", `{"quantity": 5}`, user)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	env := decode[cart.View](t, rec)
	assert.Equal(t, 6, env.Data.TotalItems)
	assert.Equal(t, "62", env.Data.TotalPrice.Amount.String())

	rec = s.do(t, http.MethodDelete, "/api/v1/cart/items/4", "", user)
	require.Equal(t, http.StatusOK, rec.Code)
	env = decode[cart.View](t, rec)
	require.Len(t, env.Data.Items, 1)
	assert.Equal(t, int64(1), env.Data.Items[0].ProductID)
	assert.Equal(t, "50", env.Data.Items[0].LineTotal.Amount.String())

	rec = s.do(t, http.MethodDelete, "/api/v1/cart", "", user)
	require.Equal(t, http.StatusNoContent, rec.Code)

	rec = s.do(t, http.MethodGet, "/api/v1/cart", "", user)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, decode[cart.View](t, rec).Data.Items)
}

func TestCart_OversizeQuantityStoresNothing(t *testing.T) {
	callers := map[string][]requestOption{
		"authenticated": {asUser("user-1")},
		"anonymous":     {withCookie(&http.Cookie{Name: cookieName, Value: "0b6f3f0c-5c1e-4a57-8f43-6a4d3a1f2b9e"})},
	}

	for name, opts := range callers {
		t.Run(name, func(t *testing.T) {
			s := newTestServer(t)

			rec := s.do(t, http.MethodPost, "/api/v1/cart/items", `{"product_id": 1, "quantity": 4294967297}`, opts...)
			require.Equal(t, http.StatusBadRequest, rec.Code, rec.Body.String())
			assert.Equal(t, "INVALID_QUANTITY", decode[json.RawMessage](t, rec).Error.Code)

			rec = s.do(t, http.MethodGet, "/api/v1/cart", "", opts...)
			require.Equal(t, http.StatusOK, rec.Code)
			assert.Empty(t, decode[cart.View](t, rec).Data.Items)
		})
	}
}

func TestCart_Errors(t *testing.T) {
	tests := []struct {
		name       string
		method     string
		path       string
		body       string
		wantStatus int
		wantCode   string
	}{
		{
			name:       "zero quantity: error",
			method:     http.MethodPost,
			path:       "/api/v1/cart/items",
			body:       `{"product_id": 1, "quantity": 0}`,
			wantStatus: http.StatusBadRequest,
			wantCode:   "INVALID_QUANTITY",
		},
		{
			name:       "fractional quantity: error",
			method:     http.MethodPost,
			path:       "/api/v1/cart/items",
			body:       `{"product_id": 1, "quantity": 1.5}`,
			wantStatus: http.StatusBadRequest,
			wantCode:   "INVALID_QUANTITY",
		},
		{
			name:       "quantity above line limit: error",
			method:     http.MethodPost,
			path:       "/api/v1/cart/items",
			body:       `{"product_id": 1, "quantity": 4294967297}`,
			wantStatus: http.StatusBadRequest,
			wantCode:   "INVALID_QUANTITY",
		},
		{
			name:       "quantity beyond int range: error",
			method:     http.MethodPost,
			path:       "/api/v1/cart/items",
			body:       `{"product_id": 1, "quantity": 1e30}`,
			wantStatus: http.StatusBadRequest,
			wantCode:   "INVALID_QUANTITY",
		},
		{
			name:       "update fractional quantity: error",
			method:     http.MethodPut,
			path:       "/api/v1/cart/items/1",
			body:       `{"quantity": 1.5}`,
			wantStatus: http.StatusBadRequest,
			wantCode:   "INVALID_QUANTITY",
		},
		{
			name:       "missing product id: error",
			method:     http.MethodPost,
			path:       "/api/v1/cart/items",
			body:       `{"quantity": 1}`,
			wantStatus: http.StatusBadRequest,
			wantCode:   "VALIDATION_ERROR",
		},
		{
			name:       "malformed body: error",
			method:     http.MethodPost,
			path:       "/api/v1/cart/items",
			body:       `{"product_id":`,
			wantStatus: http.StatusBadRequest,
			wantCode:   "INVALID_INPUT",
		},
		{
			name:       "unknown product: error",
			method:     http.MethodPost,
			path:       "/api/v1/cart/items",
			body:       `{"product_id": 999}`,
			wantStatus: http.StatusNotFound,
			wantCode:   "NOT_FOUND",
		},
		{
			name:       "inactive product: error",
			method:     http.MethodPost,
			path:       "/api/v1/cart/items",
			body:       `{"product_id": 5}`,
			wantStatus: http.StatusNotFound,
			wantCode:   "NOT_FOUND",
		},
		{
			name:       "update absent line: error",
			method:     http.MethodPut,
			path:       "/api/v1/cart/items/1",
			body:       `{"quantity": 2}`,
			wantStatus: http.StatusNotFound,
			wantCode:   "NOT_FOUND",
		},
		{
			name:       "update negative quantity: error",
			method:     http.MethodPut,
			path:       "/api/v1/cart/items/1",
			body:       `{"quantity": -1}`,
			wantStatus: http.StatusBadRequest,
			wantCode:   "INVALID_QUANTITY",
		},
		{
			name:       "update without quantity: error",
			method:     http.MethodPut,
			path:       "/api/v1/cart/items/1",
			body:       `{}`,
			wantStatus: http.StatusBadRequest,
			wantCode:   "VALIDATION_ERROR",
		},
		{
			name:       "malformed product id: error",
			method:     http.MethodDelete,
			path:       "/api/v1/cart/items/abc",
			wantStatus: http.StatusBadRequest,
			wantCode:   "INVALID_INPUT",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestServer(t)

			rec := s.do(t, tt.method, tt.path, tt.body)

			require.Equal(t, tt.wantStatus, rec.Code, rec.Body.String())
			env := decode[json.RawMessage](t, rec)
			require.NotNil(t, env.Error)
			assert.Equal(t, tt.wantCode, env.Error.Code)
			assert.NotEmpty(t, env.Error.RequestID)
		})
	}
}

func TestCart_ValidationFieldsUseJSONNames(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(t, http.MethodPost, "/api/v1/cart/items", `{}`)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	env := decode[json.RawMessage](t, rec)
	require.NotNil(t, env.Error)
	assert.Equal(t, map[string]string{"product_id": "is required"}, env.Error.Fields)
}

func TestCart_RemoveAbsentIsNoop(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(t, http.MethodDelete, "/api/v1/cart/items/42", "", asUser("user-1"))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, decode[cart.View](t, rec).Data.Items)
}

type mockResolver struct {
	mock.Mock
}

func (m *mockResolver) For(ctx context.Context, id domain.Identity) (cart.Cart, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(cart.Cart), args.Error(1)
}

func TestCart_ResolverFailureIsInternalError(t *testing.T) {
	resolver := new(mockResolver)
	resolver.On("For", mock.Anything, domain.Identity{UserID: "user-1"}).
		Return(nil, errors.New("redis: connection refused"))

	s := testServer{handler: newTestRouter(resolver, memory.NewStore(), nil)}

	rec := s.do(t, http.MethodGet, "/api/v1/cart", "", asUser("user-1"))

	require.Equal(t, http.StatusInternalServerError, rec.Code)
	env := decode[json.RawMessage](t, rec)
	require.NotNil(t, env.Error)
	assert.Equal(t, "INTERNAL_ERROR", env.Error.Code)
	assert.NotContains(t, env.Error.Message, "redis")
	resolver.AssertExpectations(t)
}

// ============================================================================
// Catalog
// ============================================================================

func TestCatalog_ListProducts(t *testing.T) {
	tests := []struct {
		name    string
		query   string
		wantIDs []int64
	}{
		{name: "all active: ok", query: "", wantIDs: []int64{4, 3, 2, 1}},
		{name: "by category: ok", query: "?category=oils", wantIDs: []int64{4}},
		{name: "by several categories: ok", query: "?category=oils&category=teas", wantIDs: []int64{4, 3, 2, 1}},
		{name: "by price range: ok", query: "?price_min=3.50&price_max=10", wantIDs: []int64{2, 1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestServer(t)

			rec := s.do(t, http.MethodGet, "/api/v1/products"+tt.query, "")
			require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

			env := decode[[]productView](t, rec)
			ids := make([]int64, 0, len(env.Data))
			for _, p := range env.Data {
				ids = append(ids, p.ID)
			}
			assert.Equal(t, tt.wantIDs, ids)
		})
	}
}

func TestCatalog_ListProductsBadPrice(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(t, http.MethodGet, "/api/v1/products?price_min=cheap", "")

	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "INVALID_INPUT", decode[json.RawMessage](t, rec).Error.Code)
}

func TestCatalog_GetProduct(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(t, http.MethodGet, "/api/v1/products/chamomile", "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	env := decode[productDetailView](t, rec)
	assert.Equal(t, int64(1), env.Data.Product.ID)
	assert.True(t, env.Data.Product.Available)
	assert.Equal(t, "4.5", env.Data.AverageRating.String())

	similar := make([]int64, 0, len(env.Data.Similar))
	for _, p := range env.Data.Similar {
		similar = append(similar, p.ID)
	}
	assert.Equal(t, []int64{3, 2}, similar, "same category, active, without the product itself")

	rec = s.do(t, http.MethodGet, "/api/v1/products/peppermint", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.False(t, decode[productDetailView](t, rec).Data.Product.Available, "out of stock")
}

func TestCatalog_GetProductNotFound(t *testing.T) {
	s := newTestServer(t)

	for _, slug := range []string{"nope", "retired"} {
		rec := s.do(t, http.MethodGet, "/api/v1/products/"+slug, "")
		assert.Equal(t, http.StatusNotFound, rec.Code, slug)
	}
}

func TestCatalog_ListCategories(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(t, http.MethodGet, "/api/v1/categories", "")
	require.Equal(t, http.StatusOK, rec.Code)

	env := decode[[]categoryView](t, rec)
	require.Len(t, env.Data, 2)
	assert.Equal(t, "oils", env.Data[0].Slug)
	assert.Equal(t, "teas", env.Data[1].Slug)
}

// ============================================================================
// Wishlist
// ============================================================================

func TestWishlist_RequiresAuthentication(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(t, http.MethodGet, "/api/v1/wishlist", "")

	require.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "UNAUTHORIZED", decode[json.RawMessage](t, rec).Error.Code)
}

func TestWishlist_Toggle(t *testing.T) {
	s := newTestServer(t)
	user := asUser("user-1")

	rec := s.do(t, http.MethodPost, "/api/v1/wishlist/1/toggle", "", user)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "added", decode[toggleView](t, rec).Data.Status)

	rec = s.do(t, http.MethodPost, "/api/v1/wishlist/4/toggle", "", user)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = s.do(t, http.MethodGet, "/api/v1/wishlist", "", user)
	require.Equal(t, http.StatusOK, rec.Code)
	items := decode[[]wishlistItemView](t, rec).Data
	require.Len(t, items, 2)
	assert.Equal(t, int64(4), items[0].ProductID, "most recent first")

	rec = s.do(t, http.MethodPost, "/api/v1/wishlist/1/toggle", "", user)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "removed", decode[toggleView](t, rec).Data.Status)

	rec = s.do(t, http.MethodPost, "/api/v1/wishlist/999/toggle", "", user)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestWishlist_RemoveAndClear(t *testing.T) {
	s := newTestServer(t)
	user := asUser("user-1")

	for _, path := range []string{"/api/v1/wishlist/1/toggle", "/api/v1/wishlist/3/toggle"} {
		require.Equal(t, http.StatusOK, s.do(t, http.MethodPost, path, "", user).Code)
	}

	rec := s.do(t, http.MethodDelete, "/api/v1/wishlist/1", "", user)
	require.Equal(t, http.StatusNoContent, rec.Code)

	rec = s.do(t, http.MethodGet, "/api/v1/wishlist", "", user)
	assert.Len(t, decode[[]wishlistItemView](t, rec).Data, 1)

	rec = s.do(t, http.MethodDelete, "/api/v1/wishlist", "", user)
	require.Equal(t, http.StatusNoContent, rec.Code)

	rec = s.do(t, http.MethodGet, "/api/v1/wishlist", "", user)
	assert.Empty(t, decode[[]wishlistItemView](t, rec).Data)
}

// ============================================================================
// Health and metrics
// ============================================================================

func TestHealth(t *testing.T) {
	store := memory.NewStore()
	resolver := cart.NewResolver(store.Carts(), store.Catalog(), store.Sessions(), currency.EUR)

	healthy := testServer{handler: newTestRouter(resolver, store, map[string]Checker{
		"postgres": func(context.Context) error { return nil },
	})}
	assert.Equal(t, http.StatusOK, healthy.do(t, http.MethodGet, "/health/live", "").Code)
	assert.Equal(t, http.StatusOK, healthy.do(t, http.MethodGet, "/health/ready", "").Code)

	broken := testServer{handler: newTestRouter(resolver, store, map[string]Checker{
		"redis": func(context.Context) error { return errors.New("dial tcp: refused") },
	})}
	rec := broken.do(t, http.MethodGet, "/health/ready", "")
	require.Equal(t, http.StatusServiceUnavailable, rec.Code)

	var view healthView
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &view))
	assert.Equal(t, "down", view.Status)
	assert.Contains(t, view.Checks["redis"], "refused")
}

func TestMetricsEndpoint(t *testing.T) {
	s := newTestServer(t)
	s.do(t, http.MethodPost, "/api/v1/cart/items", `{"product_id": 1}`, asUser("user-1"))

	rec := s.do(t, http.MethodGet, "/metrics", "")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "http_requests_total")
	assert.Contains(t, rec.Body.String(), `cart_mutations_total{kind="user",operation="add",result="ok"}`)
}
