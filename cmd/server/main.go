package main

import (
	"context"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/csrf"
	"github.com/gorilla/sessions"

	"github.com/omerbag-9/CarMate-AdminPanel/internal/api"
	"github.com/omerbag-9/CarMate-AdminPanel/internal/config"
	"github.com/omerbag-9/CarMate-AdminPanel/internal/gate"
	"github.com/omerbag-9/CarMate-AdminPanel/internal/handlers"
	"github.com/omerbag-9/CarMate-AdminPanel/internal/session"
	"github.com/omerbag-9/CarMate-AdminPanel/web"
)

func main() {
	// Debug until the configuration says otherwise.
	level := new(slog.LevelVar)
	level.Set(slog.LevelDebug)
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	// 1. Load Configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}
	level.Set(cfg.SlogLevel())

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// 2. Session Setup
	cookieStore := sessions.NewCookieStore(cfg.SessionKey)
	cookieStore.Options.HttpOnly = true
	cookieStore.Options.Secure = cfg.CookieSecure
	cookieStore.Options.SameSite = http.SameSiteLaxMode
	cookieStore.Options.Path = "/"
	if cfg.CookieDomain != "" {
		cookieStore.Options.Domain = cfg.CookieDomain
	}
	sessionStore := session.NewCookieStore(cookieStore)

	// 3. Backend client. A 401 drops the session of the request that
	// triggered it.
	client := api.NewClient(cfg.APIBaseURL, session.ContextTokens{},
		api.WithTimeout(cfg.APITimeout),
		api.WithBulkSize(cfg.BulkSize),
		api.WithUnauthorizedHook(func(ctx context.Context) {
			if !session.Invalidate(ctx) {
				slog.Warn("Backend rejected a request outside any session")
			}
		}),
	)

	// 4. Init Templates
	templates := handlers.NewTemplateCache()
	if err := templates.Load(web.Files, "templates"); err != nil {
		slog.Error("Failed to load templates", "error", err)
		os.Exit(1)
	}
	static, err := fs.Sub(web.Files, "static")
	if err != nil {
		slog.Error("Failed to open static assets", "error", err)
		os.Exit(1)
	}

	// 5. Setup Handlers
	adminHandler := handlers.NewAdminHandler(client, sessionStore, gate.DefaultCapabilities, templates, cfg.PageSize)
	access := gate.New(sessionStore, gate.DefaultCapabilities)
	access.Forbidden = adminHandler.Forbidden

	// One login attempt per 5 seconds per address.
	rateLimiter := handlers.NewRateLimiter(ctx, 5*time.Second)
	mux := adminHandler.Routes(access, rateLimiter, static)

	// 6. Middleware Setup
	CSRF := csrf.Protect(
		cfg.CSRFKey,
		csrf.Secure(cfg.CookieSecure),
		csrf.Path("/"),
		csrf.TrustedOrigins([]string{"localhost:" + cfg.Port, "127.0.0.1:" + cfg.Port, "localhost", "127.0.0.1"}),
	)

	// Chain: Logger -> Security Headers -> CSRF -> Mux
	handler := handlers.LoggingMiddleware(
		handlers.SecurityHeadersMiddleware(
			CSRF(mux),
		),
	)

	// 7. Start Server with Graceful Shutdown
	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		slog.Info("Server starting", "port", cfg.Port, "backend", cfg.APIBaseURL)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("Server failed to listen and serve", "error", err)
			os.Exit(1)
		}
	}()

	<-ctx.Done()
	slog.Info("Shutting down server gracefully...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Error("Server shutdown failed", "error", err)
		os.Exit(1)
	}

	slog.Info("Server exited gracefully.")
}
