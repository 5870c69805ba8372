package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "golang.org/x/crypto/x509roots/fallback" // Embed CA certs for scratch container

	anthropicadapter "github.com/reviewloop/reviewloop/internal/adapter/driven/anthropic"
	githubadapter "github.com/reviewloop/reviewloop/internal/adapter/driven/github"
	sqliteadapter "github.com/reviewloop/reviewloop/internal/adapter/driven/sqlite"
	httphandler "github.com/reviewloop/reviewloop/internal/adapter/driving/http"
	"github.com/reviewloop/reviewloop/internal/adapter/driving/webhook"
	"github.com/reviewloop/reviewloop/internal/application"
	"github.com/reviewloop/reviewloop/internal/config"
	"github.com/reviewloop/reviewloop/internal/domain/port/driven"
)

func main() {
	if err := run(); err != nil {
		slog.Error("fatal error", "error", err)
		os.Exit(1)
	}
}

func run() error {
	// 1. Load configuration (fail fast on missing required env vars).
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	slog.Info("config loaded",
		"listen_addr", cfg.ListenAddr,
		"db_path", cfg.DBPath,
		"github_configured", cfg.HasGitHubCredentials(),
		"anthropic_configured", cfg.HasAnthropicCredentials(),
	)

	// 2. Setup signal-based context (SIGINT, SIGTERM).
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 3. Open database (dual reader/writer with WAL mode).
	db, err := sqliteadapter.NewDB(cfg.DBPath)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := db.Close(); closeErr != nil {
			slog.Error("error closing database", "error", closeErr)
		}
	}()
	slog.Info("database opened", "path", cfg.DBPath)

	// 4. Run migrations on writer connection.
	if err := sqliteadapter.RunMigrations(db.Writer); err != nil {
		return err
	}
	slog.Info("migrations complete")

	// 5. Wire stores.
	accountStore := sqliteadapter.NewAccountRepo(db)
	repoStore := sqliteadapter.NewRepoRepo(db)
	userStore := sqliteadapter.NewUserRepo(db)
	prStore := sqliteadapter.NewPRRepo(db)
	reviewStore := sqliteadapter.NewReviewRepo(db)
	settingsStore := sqliteadapter.NewSettingsRepo(db)

	// 6. Create provider client and reviewer; either may be absent. Webhook
	// mirroring works without them, auto-review and membership sync do not.
	var providerClient driven.ProviderClient
	if cfg.HasGitHubCredentials() {
		providerClient = githubadapter.NewClient(cfg.GitHubToken)
		slog.Info("github client created")
	} else {
		slog.Info("no github token configured, membership sync and auto-review disabled")
	}

	var reviewer driven.Reviewer
	if cfg.HasAnthropicCredentials() {
		reviewer = anthropicadapter.NewReviewer(cfg.AnthropicAPIKey, cfg.AnthropicModel)
		slog.Info("reviewer created", "model", cfg.AnthropicModel)
	} else {
		slog.Info("no anthropic key configured, auto-review disabled")
	}

	// 7. Wire services.
	settingsSvc := application.NewSettingsService(settingsStore)
	accessSvc := application.NewAccessService(userStore)
	membershipSvc := application.NewMembershipService(userStore, providerClient, slog.Default())
	reviewSvc := application.NewReviewService(settingsSvc, reviewStore, providerClient, reviewer, slog.Default())

	// 8. Wire driving adapters.
	dispatcher := webhook.NewDispatcher(accountStore, repoStore, prStore, reviewStore, reviewSvc, slog.Default())
	webhookHandler := webhook.NewHandler(cfg.WebhookSecret, dispatcher, slog.Default())

	apiHandler := httphandler.NewHandler(settingsSvc, accessSvc, membershipSvc, repoStore, db, slog.Default())
	handler := httphandler.NewServeMux(apiHandler, webhookHandler, slog.Default())

	srv := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	go func() {
		slog.Info("http server starting", "addr", cfg.ListenAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("http server error", "error", err)
		}
	}()

	slog.Info("reviewloop started", "listen_addr", cfg.ListenAddr)

	// 9. Wait for shutdown signal.
	<-ctx.Done()
	slog.Info("shutting down")

	// 10. Graceful shutdown with 10s timeout to drain in-flight deliveries.
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("http server shutdown error", "error", err)
	}

	slog.Info("shutdown complete")
	return nil
}
