package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/fjod/goldshop/internal/catalog"
	"github.com/fjod/goldshop/internal/config"
	"github.com/fjod/goldshop/internal/gateway"
	"github.com/fjod/goldshop/internal/remote"
	"github.com/fjod/goldshop/internal/session"
	"github.com/fjod/goldshop/internal/telemetry"
)

const shutdownTimeout = 10 * time.Second

func loadCatalog(ctx context.Context, cfg config.Storefront) (*catalog.Catalog, error) {
	if cfg.CatalogDBPath == "" {
		return catalog.Default(), nil
	}

	repo, err := catalog.NewRepository(cfg.CatalogDBPath)
	if err != nil {
		return nil, err
	}
	defer repo.Close()

	if err := repo.RunMigrations(cfg.CatalogMigrationsPath); err != nil {
		return nil, err
	}
	return catalog.Load(ctx, repo)
}

func main() {
	log.Println("storefront starting...")

	cfg, err := config.LoadStorefront()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	ctx := context.Background()
	shutdownTracing, err := telemetry.Setup(ctx, "storefront", cfg.OTelEndpoint)
	if err != nil {
		log.Fatalf("Failed to set up tracing: %v", err)
	}

	products, err := loadCatalog(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to load catalog: %v", err)
	}
	log.Printf("catalog loaded products = %v", len(products.Products()))

	registry := session.NewRegistry(session.Deps{
		Catalog:        products,
		Reviews:        remote.NewReviewClient(cfg.ReviewsURL, cfg.RequestTimeout),
		Logs:           remote.NewLogClient(cfg.LogsURL, cfg.RequestTimeout),
		PromoCode:      cfg.PromoCode,
		PollInterval:   cfg.LogPollInterval,
		RequestTimeout: cfg.RequestTimeout,
	}, cfg.SessionIdleTTL)

	handler := gateway.NewHandler(registry, products)
	router := gateway.NewRouter(handler, cfg.RequestTimeout)

	srv := &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      otelhttp.NewHandler(router, "storefront"),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: cfg.RequestTimeout + 5*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("storefront listening on :%s", cfg.HTTPPort)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("server error: %v", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("server forced to shutdown: %v", err)
	}
	if err := registry.Close(); err != nil {
		log.Printf("failed to close sessions: %v", err)
	}
	if err := shutdownTracing(shutdownCtx); err != nil {
		log.Printf("failed to flush traces: %v", err)
	}

	log.Println("server exited")
}
