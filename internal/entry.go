// Package internal provides the main application initialization and runtime logic.
package internal

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/sync/errgroup"

	"github.com/starford/pulse/internal/api"
	"github.com/starford/pulse/internal/enrich"
	"github.com/starford/pulse/internal/mail"
	"github.com/starford/pulse/internal/share"
	"github.com/starford/pulse/internal/sse"
	"github.com/starford/pulse/internal/state"
	"github.com/starford/pulse/internal/storage"
)

// OpenStore opens the configured slice store backend. The second return
// is non-nil only for the fs backend, which supports directory watching.
func OpenStore(cfg *Config) (storage.Provider, *storage.FS, error) {
	switch cfg.Store.Backend {
	case StoreBackendSQLite:
		kv, err := storage.OpenSQLite(cfg.Store.Path)
		if err != nil {
			return nil, nil, fmt.Errorf("init sqlite store: %w", err)
		}
		return kv, nil, nil
	default:
		kv, err := storage.NewFS(cfg.Store.Path)
		if err != nil {
			return nil, nil, fmt.Errorf("init fs store: %w", err)
		}
		return kv, kv, nil
	}
}

// Run starts the application with the given options.
func Run(ctx context.Context, opts ...Option) error {
	app := &application{}

	for _, opt := range opts {
		opt(app)
	}

	if app.config == nil {
		return fmt.Errorf("config is required")
	}

	cfg := app.config

	// Initialize structured JSON logger.
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: cfg.App.LogLevel,
	}))
	slog.SetDefault(logger)

	logger.Info("Configuration loaded",
		slog.String("http_address", cfg.App.HTTP.Address()),
		slog.String("store_backend", cfg.Store.Backend),
		slog.String("store_path", cfg.Store.Path),
		slog.String("log_level", cfg.App.LogLevel.String()))

	kv, fsStore, err := OpenStore(cfg)
	if err != nil {
		return err
	}
	defer kv.Close()

	// SSE broker, fed by every flushed slice.
	broker := sse.NewBroker(2 * time.Second)
	defer broker.Close()

	store := state.Load(kv, state.WithOnChange(func(keys ...string) {
		for _, key := range keys {
			broker.PublishSliceEvent(key)
		}
	}))

	var relay *mail.Relay
	if cfg.Mail.UserID != "" || cfg.Mail.AccessKey != "" {
		relay = mail.NewRelay(cfg.Mail)
	}

	h := api.NewHandler(
		store,
		share.NewService(),
		enrich.NewLocations(),
		enrich.NewTalkGenerator(),
		relay,
		cfg.Share.BaseURL,
	)
	apiRouter := api.NewRouter(h, cfg.Auth.AuthEnabled(), cfg.Auth.Token, broker)

	// Build chi router.
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	// Health check endpoints (unauthenticated).
	r.Get("/health/live", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
	r.Get("/health/ready", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	// Mount API routes under /api.
	r.Mount("/api", apiRouter)

	httpServer := &http.Server{
		Addr:    cfg.App.HTTP.Address(),
		Handler: r,
	}

	logger.Info("Server starting...", slog.String("http_address", cfg.App.HTTP.Address()))

	g, gCtx := errgroup.WithContext(ctx)

	// Watch the store directory so a second process writing slices is
	// picked up live. Only the fs backend supports this.
	if fsStore != nil {
		g.Go(func() error {
			return state.Watch(gCtx, store, fsStore, logger, nil)
		})
	}

	// Start HTTP server.
	g.Go(func() error {
		logger.Info("Starting HTTP server", slog.String("address", cfg.App.HTTP.Address()))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("HTTP server error: %w", err)
		}
		return nil
	})

	// Handle shutdown signals.
	g.Go(func() error {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

		select {
		case sig := <-quit:
			logger.Info("Received shutdown signal", slog.String("signal", sig.String()))
		case <-gCtx.Done():
			logger.Info("Context cancelled, initiating shutdown")
		}

		logger.Info("Shutting down server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Error("HTTP server shutdown error", slog.String("error", err.Error()))
		}

		return nil
	})

	if err := g.Wait(); err != nil {
		logger.Error("Application error", slog.String("error", err.Error()))
		return err
	}

	logger.Info("Server stopped successfully")
	return nil
}
