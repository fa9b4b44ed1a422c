package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/jcmexdev/shoe-fulfillment/internal/cart"
	cartsqlite "github.com/jcmexdev/shoe-fulfillment/internal/cart/sqlite"
	"github.com/jcmexdev/shoe-fulfillment/internal/catalog"
	"github.com/jcmexdev/shoe-fulfillment/internal/checkout"
	logsqlite "github.com/jcmexdev/shoe-fulfillment/internal/coordinator/checkoutlog/sqlite"
	"github.com/jcmexdev/shoe-fulfillment/internal/gateway/httpx"
	"github.com/jcmexdev/shoe-fulfillment/internal/order"
	ordersqlite "github.com/jcmexdev/shoe-fulfillment/internal/order/sqlite"
	"github.com/jcmexdev/shoe-fulfillment/internal/pkg/config"
	"github.com/jcmexdev/shoe-fulfillment/internal/pkg/session"
	"github.com/jcmexdev/shoe-fulfillment/internal/pkg/shutdown"
	"github.com/jcmexdev/shoe-fulfillment/internal/pkg/telemetry"
	"github.com/jcmexdev/shoe-fulfillment/internal/storage/sqlitedb"
	"github.com/jcmexdev/shoe-fulfillment/internal/user"
)

func main() {
	ctx, cancel := shutdown.WithSignals(context.Background())
	defer cancel()

	cfg := config.Load()
	logger := telemetry.InitLogger(cfg.ServiceName, cfg.Env, cfg.LogLevel)

	tracerShutdown, err := telemetry.SetupTracer(ctx, cfg.ServiceName)
	if err != nil {
		logger.Error("failed to set up tracing", "error", err)
		os.Exit(1)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := tracerShutdown(shutdownCtx); err != nil {
			logger.Error("tracer shutdown failed", "error", err)
		}
	}()

	if err := os.MkdirAll(filepath.Dir(cfg.DBPath), 0o755); err != nil {
		logger.Error("failed to create data directory", "error", err)
		os.Exit(1)
	}
	db, err := sqlitedb.Open(cfg.DBPath)
	if err != nil {
		logger.Error("failed to open database", "path", cfg.DBPath, "error", err)
		os.Exit(1)
	}
	defer db.Close()

	cartRepo, err := cartsqlite.NewRepository(db)
	if err != nil {
		logger.Error("failed to init cart repository", "error", err)
		os.Exit(1)
	}
	orderRepo, err := ordersqlite.NewRepository(db)
	if err != nil {
		logger.Error("failed to init order repository", "error", err)
		os.Exit(1)
	}
	checkoutLog, err := logsqlite.NewRepository(db)
	if err != nil {
		logger.Error("failed to init checkout log", "error", err)
		os.Exit(1)
	}

	var sessions session.Store
	if cfg.RedisAddr != "" {
		sessions = session.NewRedisStore(cfg.RedisAddr, cfg.ServiceName, 24*time.Hour)
		logger.Info("using redis session store", "addr", cfg.RedisAddr)
	} else {
		sessions = session.NewMemoryStore()
		logger.Info("using in-memory session store")
	}

	products := catalog.NewMemoryStore(seedProducts()...)
	users := user.NewMemoryDirectory(seedUsers()...)

	if cfg.Env == "local" {
		// Demo sessions so the API is exercisable without the auth service.
		_ = sessions.Create(ctx, "u-1001", "demo-token")
		_ = sessions.Create(ctx, "u-1000", "admin-token")
	}

	cartSvc := cart.NewService(cartRepo, products)
	orderSvc := order.NewService(orderRepo)
	checkoutSvc := checkout.NewService(cartRepo, products, users, orderRepo, checkoutLog,
		checkout.WithNumberAttempts(cfg.CheckoutNumberAttempts))

	handler := httpx.NewHandler(cartSvc, checkoutSvc, orderSvc, users, checkoutLog, sessions, orderRepo)
	router := httpx.NewRouter(handler, sessions)

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("fulfillment service listening", "addr", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server failed", "error", err)
			cancel()
		}
	}()

	<-ctx.Done()

	drainCtx, drainCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer drainCancel()
	if err := srv.Shutdown(drainCtx); err != nil {
		logger.Error("graceful shutdown failed", "error", err)
	}
	logger.Info("fulfillment service stopped")
}

// seedProducts mirrors the storefront's demo catalog. In production the
// catalog is an external service; this seed stands in for it locally.
func seedProducts() []catalog.Product {
	return []catalog.Product{
		{ID: "p-100", Name: "Runner Classic", Price: 89.90, Stock: 25, Sizes: sizes(39, 46)},
		{ID: "p-101", Name: "Trail Blazer GTX", Price: 139.00, Stock: 12, Sizes: sizes(40, 47)},
		{ID: "p-102", Name: "Court Low White", Price: 74.50, Stock: 40, Sizes: sizes(36, 45)},
		{ID: "p-103", Name: "Marathon Elite", Price: 179.95, Stock: 5, Sizes: sizes(41, 46)},
		{ID: "p-104", Name: "Street Canvas", Price: 49.90, Stock: 60, Sizes: sizes(36, 50)},
	}
}

func seedUsers() []user.User {
	return []user.User{
		{ID: "u-1000", Name: "Store Admin", Email: "admin@shop.example", Admin: true},
		{ID: "u-1001", Name: "Ada Martens", Email: "ada@example.com"},
		{ID: "u-1002", Name: "Jonas Vik", Email: "jonas@example.com"},
	}
}

func sizes(from, to int) []int {
	out := make([]int, 0, to-from+1)
	for s := from; s <= to; s++ {
		out = append(out, s)
	}
	return out
}
