// Copyright 2025 Sellerdesk GmbH
// Licensed under the EUPL-1.2

// Package server wires the auth core together and runs the HTTP server.
package server

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

	"github.com/labstack/echo/v4"
	"github.com/sellerdesk/authcore/internal/config"
	"github.com/sellerdesk/authcore/internal/database"
	"github.com/sellerdesk/authcore/internal/handlers"
	"github.com/sellerdesk/authcore/internal/i18n"
	"github.com/sellerdesk/authcore/internal/middleware"
	"github.com/sellerdesk/authcore/internal/repository"
	"github.com/sellerdesk/authcore/internal/services/auth"
	"github.com/sellerdesk/authcore/internal/services/mailer"
	"github.com/sellerdesk/authcore/internal/services/token"
	"github.com/urfave/cli/v3"
)

// Run starts the server with the given CLI command.
func Run(ctx context.Context, cmd *cli.Command) error {
	cfg := config.NewFromCLI(cmd)
	setupLogger(cfg.Log.Level, cfg.Log.Format)

	slog.Info("starting server", "host", cfg.Server.Host, "port", cfg.Server.Port)

	if cfg.Auth.TokenSecret == "" {
		return fmt.Errorf("token secret is required")
	}

	// Database (open at process start, closed at shutdown)
	db, err := database.Open(cfg.Database.DSN)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer func() {
		if closeErr := db.Close(); closeErr != nil {
			slog.Error("failed to close database", "error", closeErr)
		}
	}()

	// i18n (mail content)
	if initErr := i18n.Init(); initErr != nil {
		return fmt.Errorf("failed to init i18n: %w", initErr)
	}

	// Services
	repo := repository.New(db)
	tokens := token.NewService(cfg.Auth.TokenSecret, time.Duration(cfg.Auth.TokenTTLHours)*time.Hour)

	sender, err := newSender(cfg)
	if err != nil {
		return fmt.Errorf("failed to create mail sender: %w", err)
	}

	authService := auth.NewService(repo, tokens, sender, cfg.Auth.BcryptCost)

	// Echo
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	setupMiddleware(e, cfg)
	setupRoutes(e, cfg, authService, tokens, repo)

	return startWithGracefulShutdown(e, cfg)
}

// newSender picks the SMTP sender, or the log-only sender when no SMTP
// relay is configured (development setups).
func newSender(cfg *config.Config) (mailer.Sender, error) {
	if cfg.SMTP.Host == "" {
		slog.Warn("no SMTP host configured, one-time codes will only be logged")
		return mailer.NewLogSender(), nil
	}
	return mailer.NewSMTP(&cfg.SMTP)
}

func setupRoutes(e *echo.Echo, cfg *config.Config, authService *auth.Service, tokens *token.Service, repo *repository.Repository) {
	h := handlers.New(authService)

	e.GET("/health", h.Health)

	// Credential endpoints sit behind a fixed-window rate limit to blunt
	// brute-force and enumeration attempts.
	limiter := middleware.NewRateLimiter(cfg.RateLimit.Requests, time.Duration(cfg.RateLimit.WindowMinutes)*time.Minute)
	limited := e.Group("", limiter.Middleware())
	limited.POST("/register", h.Register)
	limited.POST("/login", h.Login)
	limited.POST("/verify-2fa", h.VerifyTwoFactor)
	limited.POST("/verify-email", h.VerifyEmail)
	limited.POST("/request-password-reset", h.RequestPasswordReset)
	limited.POST("/resend-verification", h.ResendVerification)
	limited.POST("/reset-password", h.ResetPassword)

	e.GET("/consent/status/:userId", h.ConsentStatus)
	e.GET("/consent/signature/:userId", h.ConsentSignature)

	authed := e.Group("", middleware.RequireAuth(tokens, repo))
	authed.POST("/sign-consent", h.SignConsent)
	authed.GET("/verify-token", h.VerifyToken)
}

func startWithGracefulShutdown(e *echo.Echo, cfg *config.Config) error {
	errChan := make(chan error, 1)

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	go func() {
		slog.Info("server running", "addr", addr)
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-quit:
		slog.Info("shutting down server")
	case err := <-errChan:
		slog.Error("server error", "error", err)
		return err
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := e.Shutdown(shutdownCtx); err != nil {
		slog.Error("failed to shutdown server", "error", err)
	}

	slog.Info("server stopped")
	return nil
}
