// Command devbackend serves a local CarMate API backed by SQLite, for
// running the dashboard without the remote service.
package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/omerbag-9/CarMate-AdminPanel/internal/config"
	"github.com/omerbag-9/CarMate-AdminPanel/internal/devbackend"
	"github.com/omerbag-9/CarMate-AdminPanel/internal/store"
)

func main() {
	level := new(slog.LevelVar)
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	cfg, err := config.LoadDevBackendConfig()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}
	level.Set(cfg.SlogLevel())
	dev := cfg.DevBackend
	if cfg.SlogLevel() > slog.LevelDebug {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// 1. Storage
	st, err := store.NewStore(dev.DBPath)
	if err != nil {
		slog.Error("Failed to open database", "path", dev.DBPath, "error", err)
		os.Exit(1)
	}
	defer st.Close()

	if err := st.Migrate(store.Migrations, "migrations"); err != nil {
		slog.Error("Failed to run migrations", "error", err)
		os.Exit(1)
	}
	created, err := st.EnsureAdmin(ctx, dev.AdminEmail, dev.AdminPassword)
	if err != nil {
		slog.Error("Failed to seed admin account", "error", err)
		os.Exit(1)
	}
	if created {
		slog.Info("Seeded admin account", "email", dev.AdminEmail)
	}

	if err := os.MkdirAll(dev.UploadDir, 0o755); err != nil {
		slog.Error("Failed to create upload directory", "path", dev.UploadDir, "error", err)
		os.Exit(1)
	}

	// 2. Router
	srv := devbackend.New(st, devbackend.Options{
		JWTSecret:    []byte(dev.JWTSecret),
		UploadDir:    dev.UploadDir,
		AllowOrigins: []string{"http://localhost:" + cfg.Port, "http://127.0.0.1:" + cfg.Port},
		BulkLimit:    cfg.BulkSize,
	})

	server := &http.Server{
		Addr:              ":" + dev.Port,
		Handler:           srv.Router(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       20 * time.Second,
		WriteTimeout:      20 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		slog.Info("Development backend starting", "port", dev.Port, "db", dev.DBPath)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("Server failed to listen and serve", "error", err)
			os.Exit(1)
		}
	}()

	<-ctx.Done()
	slog.Info("Shutting down development backend...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Error("Server shutdown failed", "error", err)
		os.Exit(1)
	}
}
