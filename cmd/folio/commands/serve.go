package commands

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"folio/internal/cache"
	"folio/internal/config"
	"folio/internal/database"
	"folio/internal/handlers"
	"folio/internal/middleware"
	"folio/internal/router"
	"folio/internal/session"
	"folio/internal/storage"
	"folio/internal/store"
)

const (
	loginAttempts = 10
	loginWindow   = time.Minute
	shutdownGrace = 30 * time.Second
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	Long: `Run the JSON API. Pending migrations are applied and an empty database
is seeded with the admin account and sample content before listening.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		if err := cfg.Validate(); err != nil {
			return err
		}
		return runServe(cmd.Context(), cfg)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(ctx context.Context, cfg *config.Config) error {
	slog.Info("configuration loaded", "env", cfg.Env, "addr", cfg.Addr())

	db, err := openDatabase(ctx, cfg, true)
	if err != nil {
		return err
	}
	defer db.Close()

	// The response cache is optional; without Valkey every read hits SQLite.
	var responses *cache.ResponseCache
	if cfg.ValkeyAddr != "" {
		client, err := cache.ConnectValkey(ctx, cfg.ValkeyAddr, cfg.ValkeyPassword)
		if err != nil {
			return err
		}
		defer client.Close()
		responses = cache.NewResponseCache(client, cfg.CacheTTL)
	} else {
		slog.Warn("VALKEY_ADDR not set, response cache disabled")
	}

	media, err := storage.New(cfg)
	if err != nil {
		return err
	}
	uploadDir := ""
	if local, ok := media.(*storage.Local); ok {
		uploadDir = local.Dir()
	}
	slog.Info("media storage ready", "backend", cfg.MediaStorage)

	users := store.NewUserStore(db)
	posts := store.NewPostStore(db)
	projects := store.NewProjectStore(db)
	categories := store.NewCategoryStore(db)
	tags := store.NewTagStore(db)

	// Cookies are Secure everywhere but local development.
	sessions := session.NewManager(cfg.JWTSecret, cfg.SessionTTL, !cfg.IsDev())

	limiter := middleware.NewRateLimiter(loginAttempts, loginWindow)
	limiter.TrustProxy(cfg.TrustProxy)
	defer limiter.Stop()

	r := router.New(router.Deps{
		Sessions: sessions,
		Users:    users,
		Admin: handlers.NewAdmin(handlers.AdminDeps{
			Posts:       posts,
			Projects:    projects,
			Categories:  categories,
			Tags:        tags,
			Media:       store.NewMediaStore(db),
			Storage:     media,
			MaxUploadMB: cfg.MaxUploadMB,
		}),
		Auth:         handlers.NewAuth(sessions, users),
		Public:       handlers.NewPublic(posts, projects, categories, tags),
		Cache:        responses,
		LoginLimiter: limiter,
		ClientOrigin: cfg.ClientOrigin,
		HSTS:         cfg.IsProduction(),
		UploadDir:    uploadDir,
	})

	srv := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		slog.Info("server starting", "addr", cfg.Addr())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("listen: %w", err)
		}
		return nil
	case <-ctx.Done():
	}
	slog.Info("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("forced shutdown: %w", err)
	}

	slog.Info("server stopped gracefully")
	return nil
}

// openDatabase connects, migrates and optionally seeds the database.
func openDatabase(ctx context.Context, cfg *config.Config, seed bool) (*sql.DB, error) {
	db, err := database.Connect(cfg.DatabasePath)
	if err != nil {
		return nil, err
	}
	if err := database.Migrate(db); err != nil {
		db.Close()
		return nil, err
	}
	if seed {
		admin := database.Admin{Email: cfg.AdminEmail, Password: cfg.AdminPassword, Name: cfg.AdminName}
		if err := database.Seed(ctx, db, admin); err != nil {
			db.Close()
			return nil, err
		}
	}
	return db, nil
}
