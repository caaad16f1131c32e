// Package main is the entrypoint for the Keydock API server.
package main

import (
	"context"
	"log/slog"
	"net/url"
	"os"
	"regexp"
	"strings"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/keydock/keydock/internal/auth"
	"github.com/keydock/keydock/internal/cache"
	"github.com/keydock/keydock/internal/config"
	"github.com/keydock/keydock/internal/handler"
	"github.com/keydock/keydock/internal/lifecycle"
	"github.com/keydock/keydock/internal/metrics"
	"github.com/keydock/keydock/internal/middleware"
	"github.com/keydock/keydock/internal/model"
	"github.com/keydock/keydock/internal/presentation"
	"github.com/keydock/keydock/internal/server"
	"github.com/keydock/keydock/internal/store"
)

func main() {
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := initLogger(cfg)

	// Key store
	var documentStore store.DocumentStore
	var storeHealth handler.HealthChecker
	switch cfg.StoreDriver {
	case config.StoreDriverPostgres:
		pg, err := store.NewPostgres(ctx, cfg.DatabaseURL)
		if err != nil {
			logger.Error(
				"failed to connect to database",
				slog.String("error", sanitizeError(err, cfg.DatabaseURL)),
				slog.String("database_url", redactURL(cfg.DatabaseURL)),
			)
			os.Exit(1)
		}
		defer pg.Close()
		logger.Info("connected to database")
		documentStore = pg
		storeHealth = pg
	case config.StoreDriverMemory:
		logger.Warn("using in-memory key store; records do not survive restarts")
		memory := store.NewMemory()
		documentStore = memory
		storeHealth = memory
	}

	// Cache, only needed for rate limiting
	var cacheClient *cache.Cache
	if cfg.RedisURL != "" {
		cacheClient, err = cache.New(ctx, cfg.RedisURL)
		if err != nil {
			logger.Error(
				"failed to connect to Redis",
				slog.String("error", sanitizeError(err, cfg.RedisURL)),
				slog.String("redis_url", redactURL(cfg.RedisURL)),
			)
			os.Exit(1)
		}
		defer cacheClient.Close()
		logger.Info("connected to Redis")
	}

	// Metrics
	var recorder metrics.Recorder
	if cfg.MetricsEnabled {
		recorder = metrics.NewPrometheus()
	} else {
		recorder = metrics.NewNoop()
	}

	// Identity and key lifecycle
	authenticator := buildAuthenticator(cfg)
	session := auth.NewSession(authenticator, logger)
	adapter := store.NewAdapter(session, documentStore)
	manager := lifecycle.NewManager(session, adapter, lifecycle.ContextConfirmer{}, logger, recorder)
	view := presentation.NewView(manager, logger, recorder)

	// Handlers
	h := handler.New()
	var cacheHealth handler.HealthChecker
	if cacheClient != nil {
		cacheHealth = cacheClient
	}
	healthHandler := handler.NewHealthHandler(storeHealth, cacheHealth)
	sessionHandler := handler.NewSessionHandler(logger, session, recorder)
	keysHandler := handler.NewKeysHandler(logger, manager, view)

	r := setupRouter(h, healthHandler, sessionHandler, keysHandler, cacheClient, cfg, logger)

	srv := server.New(
		r,
		cfg.AppPort,
		cfg.ReadTimeout,
		cfg.WriteTimeout,
		cfg.ShutdownTimeout,
		logger,
	)

	logger.Info("starting server",
		"port", cfg.AppPort,
		"store_driver", cfg.StoreDriver,
		"auth_mode", cfg.AuthMode,
		"env", cfg.AppEnv,
	)

	if err := srv.Run(); err != nil {
		logger.Error("server error", "error", err)
		os.Exit(1)
	}
}

// buildAuthenticator selects the credential verifier for the configured
// auth mode.
func buildAuthenticator(cfg *config.Config) auth.Authenticator {
	if cfg.AuthMode == config.AuthModeStatic {
		return auth.NewStaticAuthenticator(map[string]model.Identity{
			cfg.AuthStaticToken: {
				ID:          cfg.AuthStaticUserID,
				DisplayName: cfg.AuthStaticUserID,
				Email:       cfg.AuthStaticEmail,
			},
		})
	}
	return auth.NewTokenAuthenticator(cfg.AuthTokenInfoURL)
}

// initLogger initializes the slog logger based on configuration.
func initLogger(cfg *config.Config) *slog.Logger {
	var h slog.Handler

	opts := &slog.HandlerOptions{
		Level: parseLogLevel(cfg.LogLevel),
	}

	if cfg.LogFormat == "json" {
		h = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		h = slog.NewTextHandler(os.Stdout, opts)
	}

	logger := slog.New(h)
	slog.SetDefault(logger)

	return logger
}

// parseLogLevel converts string log level to slog.Level.
func parseLogLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// setupRouter configures the chi router with all routes and middleware.
func setupRouter(
	h *handler.Handler,
	healthHandler *handler.HealthHandler,
	sessionHandler *handler.SessionHandler,
	keysHandler *handler.KeysHandler,
	cacheClient *cache.Cache,
	cfg *config.Config,
	logger *slog.Logger,
) *chi.Mux {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger(logger))
	r.Use(middleware.Recoverer(logger))

	// Health endpoints
	r.Get("/healthz", healthHandler.Healthz)
	r.Get("/readyz", healthHandler.Readyz)

	// Root info endpoint
	r.Get("/", h.Hello)

	if cfg.MetricsEnabled {
		r.Handle("/metrics", promhttp.Handler())
	}

	rateLimitCfg := middleware.RateLimitConfig{
		Logger:  logger,
		Cache:   cacheClient,
		Enabled: cfg.RateLimitEnabled,
		RPS:     cfg.RateLimitRPS,
		Burst:   cfg.RateLimitBurst,
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.RateLimitIP(rateLimitCfg))

		r.Route("/session", func(r chi.Router) {
			r.Post("/", sessionHandler.SignIn)
			r.Get("/", sessionHandler.Current)
			r.Delete("/", sessionHandler.SignOut)
		})

		r.Route("/keys", func(r chi.Router) {
			r.Post("/", keysHandler.Generate)
			r.Post("/ensure", keysHandler.Ensure)
			r.Get("/", keysHandler.List)
			r.Get("/view", keysHandler.View)
			r.Delete("/{record_id}", keysHandler.Delete)
		})
	})

	// 404 and 405 handlers
	r.NotFound(h.NotFound)
	r.MethodNotAllowed(h.MethodNotAllowed)

	return r
}

var passwordPattern = regexp.MustCompile(`(?i)password=[^\s]+`)

func redactURL(raw string) string {
	if raw == "" {
		return ""
	}

	parsed, err := url.Parse(raw)
	if err != nil {
		return "[redacted]"
	}

	if parsed.User != nil {
		username := parsed.User.Username()
		if username == "" {
			parsed.User = url.User("redacted")
		} else {
			parsed.User = url.User(username)
		}
	}

	return parsed.String()
}

func sanitizeError(err error, secrets ...string) string {
	if err == nil {
		return ""
	}

	msg := err.Error()
	for _, secret := range secrets {
		if secret == "" {
			continue
		}
		redacted := redactURL(secret)
		if redacted == "" {
			redacted = "[redacted]"
		}
		msg = strings.ReplaceAll(msg, secret, redacted)
	}

	return passwordPattern.ReplaceAllString(msg, "password=redacted")
}
