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

	"github.com/starford/casedesk/internal/api"
	"github.com/starford/casedesk/internal/auth"
	"github.com/starford/casedesk/internal/caseservice"
	"github.com/starford/casedesk/internal/mcpserver"
	"github.com/starford/casedesk/internal/models"
	"github.com/starford/casedesk/internal/seed"
	"github.com/starford/casedesk/internal/sse"
	"github.com/starford/casedesk/internal/storage"
	"github.com/starford/casedesk/internal/store"
	pkgconfig "github.com/starford/casedesk/pkg/config"
)

func newApplication(opts []Option) (*application, error) {
	app := &application{logOutput: os.Stdout, level: new(slog.LevelVar)}
	for _, opt := range opts {
		opt(app)
	}
	if app.config == nil {
		return nil, fmt.Errorf("config is required")
	}

	app.level.Set(app.config.App.LogLevel)
	logger := slog.New(slog.NewJSONHandler(app.logOutput, &slog.HandlerOptions{
		Level: app.level,
	}))
	slog.SetDefault(logger)
	return app, nil
}

// backend holds the opened resources shared by every command.
type backend struct {
	db      *store.DB
	revoker auth.Revoker
	broker  *sse.Broker
	svc     *caseservice.Service
}

func (b *backend) Close() error {
	if b.broker != nil {
		b.broker.Close()
	}
	return errors.Join(b.revoker.Close(), b.db.Close())
}

func (a *application) openBackend() (*backend, error) {
	cfg := a.config

	if err := os.MkdirAll(cfg.Attachments.Path, 0o755); err != nil {
		return nil, fmt.Errorf("create attachments dir: %w", err)
	}
	files, err := storage.NewFS(cfg.Attachments.Path)
	if err != nil {
		return nil, fmt.Errorf("init attachments: %w", err)
	}

	db, err := store.Open(cfg.SQLite.Path)
	if err != nil {
		return nil, fmt.Errorf("init store: %w", err)
	}

	var revoker auth.Revoker
	switch cfg.Revocation.Backend {
	case RevocationRedis:
		revoker, err = auth.NewRedisRevoker(cfg.Revocation.RedisURL, cfg.Revocation.Prefix)
		if err != nil {
			db.Close()
			return nil, fmt.Errorf("init revocation: %w", err)
		}
	default:
		revoker = auth.NewMemoryRevoker()
	}

	broker := sse.NewBroker(cfg.Events.DashboardThrottle)
	issuer := auth.NewIssuer(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL, auth.WithRevoker(revoker))
	svc := caseservice.NewService(db, issuer,
		caseservice.WithEvents(broker),
		caseservice.WithAttachments(files),
	)
	return &backend{db: db, revoker: revoker, broker: broker, svc: svc}, nil
}

// Run starts the HTTP server with the given options.
func Run(ctx context.Context, opts ...Option) error {
	app, err := newApplication(opts)
	if err != nil {
		return err
	}
	cfg := app.config
	logger := slog.Default()

	logger.Info("Configuration loaded",
		slog.String("http_address", cfg.App.HTTP.Address()),
		slog.String("sqlite_path", cfg.SQLite.Path),
		slog.String("attachments_path", cfg.Attachments.Path),
		slog.String("revocation_backend", cfg.Revocation.Backend),
		slog.String("log_level", cfg.App.LogLevel.String()))

	b, err := app.openBackend()
	if err != nil {
		return err
	}
	defer b.Close()

	if cfg.Seed.OnStart {
		if _, err := seed.Run(ctx, b.svc, cfg.Seed.Options()); err != nil {
			logger.Warn("seed failed", slog.String("error", err.Error()))
		}
	}

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
	r.Get("/health/ready", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if err := b.db.Ping(r.Context()); err != nil {
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = w.Write([]byte(`{"status":"unavailable"}`))
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	r.Mount("/api", api.NewRouter(b.svc, b.broker))

	httpServer := &http.Server{
		Addr:              cfg.App.HTTP.Address(),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gCtx := errgroup.WithContext(ctx)

	if app.configPath != "" {
		g.Go(func() error {
			return pkgconfig.Watch(gCtx, app.configPath, NewDefaultConfig, func(next *Config) {
				if next.App.LogLevel != app.level.Level() {
					logger.Info("log level changed",
						slog.String("from", app.level.Level().String()),
						slog.String("to", next.App.LogLevel.String()))
					app.level.Set(next.App.LogLevel)
				}
			}, logger)
		})
	}

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
		defer signal.Stop(quit)

		select {
		case sig := <-quit:
			logger.Info("Received shutdown signal", slog.String("signal", sig.String()))
		case <-gCtx.Done():
			logger.Info("Context cancelled, initiating shutdown")
		}

		logger.Info("Shutting down server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.App.HTTP.ShutdownTimeout)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Error("HTTP server shutdown error", slog.String("error", err.Error()))
		}
		return errShutdown
	})

	if err := g.Wait(); err != nil && !errors.Is(err, errShutdown) {
		logger.Error("Application error", slog.String("error", err.Error()))
		return err
	}

	logger.Info("Server stopped successfully")
	return nil
}

// errShutdown cancels the group so background watchers stop with the server.
var errShutdown = errors.New("shutdown")

// Seed fills an empty database with demo data.
func Seed(ctx context.Context, opts ...Option) error {
	app, err := newApplication(opts)
	if err != nil {
		return err
	}
	b, err := app.openBackend()
	if err != nil {
		return err
	}
	defer b.Close()

	_, err = seed.Run(ctx, b.svc, app.config.Seed.Options())
	return err
}

// AddUser creates an account from the command line.
func AddUser(ctx context.Context, in models.UserInput, opts ...Option) (*models.User, error) {
	app, err := newApplication(opts)
	if err != nil {
		return nil, err
	}
	b, err := app.openBackend()
	if err != nil {
		return nil, err
	}
	defer b.Close()

	return b.svc.Register(ctx, in)
}

// ServeMCP runs the stdio MCP server until stdin closes.
func ServeMCP(_ context.Context, version string, opts ...Option) error {
	app, err := newApplication(append([]Option{WithLogOutput(os.Stderr)}, opts...))
	if err != nil {
		return err
	}
	b, err := app.openBackend()
	if err != nil {
		return err
	}
	defer b.Close()

	slog.Info("MCP server starting on stdio")
	return mcpserver.New(b.svc, version).ServeStdio()
}
