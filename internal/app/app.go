package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/nikolayk812/herbalshop/internal/cart"
	"github.com/nikolayk812/herbalshop/internal/config"
	handler "github.com/nikolayk812/herbalshop/internal/handler/http"
	"github.com/nikolayk812/herbalshop/internal/migrations"
	"github.com/nikolayk812/herbalshop/internal/port"
	"github.com/nikolayk812/herbalshop/internal/repository"
	"github.com/nikolayk812/herbalshop/internal/repository/memory"
	"github.com/nikolayk812/herbalshop/internal/session"
)

const (
	startupTimeout  = 30 * time.Second
	shutdownTimeout = 10 * time.Second
)

// App owns the process-wide resources of the shop service.
type App struct {
	logger     *slog.Logger
	pool       *pgxpool.Pool
	rdb        *redis.Client
	httpServer *http.Server
}

type storage struct {
	carts     port.CartRepository
	catalog   port.ProductCatalog
	wishlists port.WishlistRepository
	sessions  port.SessionStore
	checkers  map[string]handler.Checker
}

// New connects to every backing service and builds the HTTP server.
func New(cfg *config.Config, logger *slog.Logger) (*App, error) {
	ctx, cancel := context.WithTimeout(context.Background(), startupTimeout)
	defer cancel()

	a := &App{logger: logger}

	st, err := a.openStorage(ctx, cfg)
	if err != nil {
		return nil, err
	}

	resolver := cart.NewResolver(st.carts, st.catalog, st.sessions, cfg.CurrencyUnit())

	router := handler.NewRouter(handler.RouterDeps{
		Cart:     handler.NewCartHandler(resolver, logger),
		Catalog:  handler.NewCatalogHandler(st.catalog, logger),
		Wishlist: handler.NewWishlistHandler(st.wishlists, st.catalog, logger),
		Health:   handler.NewHealthHandler(st.checkers),
		Cookie: handler.SessionCookie{
			Name:   cfg.SessionCookieName,
			TTL:    cfg.SessionTTLDuration(),
			Secure: cfg.SessionCookieSecure,
		},
		NewSessID: session.NewID,
		Logger:    logger,
	})

	a.httpServer = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return a, nil
}

func (a *App) openStorage(ctx context.Context, cfg *config.Config) (storage, error) {
	if cfg.StorageBackend == config.BackendMemory {
		a.logger.Warn("using in-memory storage and sessions, state is lost on restart")

		store := memory.NewStore()
		seedDemoCatalog(store, cfg.CurrencyUnit())
		return storage{
			carts:     store.Carts(),
			catalog:   store.Catalog(),
			wishlists: store.Wishlists(),
			sessions:  store.Sessions(),
			checkers:  map[string]handler.Checker{},
		}, nil
	}

	if err := migrations.Up(ctx, cfg.DatabaseURL); err != nil {
		return storage{}, fmt.Errorf("migrations.Up: %w", err)
	}

	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		return storage{}, fmt.Errorf("pgxpool.New: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return storage{}, fmt.Errorf("pool.Ping: %w", err)
	}
	a.pool = pool
	a.logger.Info("connected to postgres")

	a.rdb = redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPass,
		DB:       cfg.RedisDB,
	})
	if err := a.rdb.Ping(ctx).Err(); err != nil {
		a.close()
		return storage{}, fmt.Errorf("rdb.Ping: %w", err)
	}
	a.logger.Info("connected to redis", slog.String("addr", cfg.RedisAddr), slog.Int("db", cfg.RedisDB))

	return storage{
		carts:     repository.NewCart(pool),
		catalog:   repository.NewCatalog(pool),
		wishlists: repository.NewWishlist(pool),
		sessions:  session.NewRedisStore(a.rdb, cfg.SessionTTLDuration()),
		checkers: map[string]handler.Checker{
			"postgres": pool.Ping,
			"redis": func(ctx context.Context) error {
				return a.rdb.Ping(ctx).Err()
			},
		},
	}, nil
}

// Run serves HTTP until ctx is cancelled, then shuts down gracefully.
func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 1)

	go func() {
		a.logger.Info("starting HTTP server", slog.String("addr", a.httpServer.Addr))
		if err := a.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("httpServer.ListenAndServe: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		a.logger.Info("shutdown signal received")
	case err := <-errCh:
		a.close()
		return err
	}

	return a.Shutdown()
}

func (a *App) Shutdown() error {
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	var err error
	if shutdownErr := a.httpServer.Shutdown(shutdownCtx); shutdownErr != nil {
		err = fmt.Errorf("httpServer.Shutdown: %w", shutdownErr)
	}

	a.close()
	a.logger.Info("shutdown complete")

	return err
}

func (a *App) close() {
	if a.rdb != nil {
		if err := a.rdb.Close(); err != nil {
			a.logger.Error("redis close failed", slog.String("error", err.Error()))
		}
	}
	if a.pool != nil {
		a.pool.Close()
	}
}
