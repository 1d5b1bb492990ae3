package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/MrJamesThe3rd/consignd/internal/app"
	"github.com/MrJamesThe3rd/consignd/internal/checkout"
	checkoutStore "github.com/MrJamesThe3rd/consignd/internal/checkout/store"
	"github.com/MrJamesThe3rd/consignd/internal/config"
	consignHttp "github.com/MrJamesThe3rd/consignd/internal/http"
	adminHandler "github.com/MrJamesThe3rd/consignd/internal/http/admin"
	checkoutHandler "github.com/MrJamesThe3rd/consignd/internal/http/checkout"
	listingHandler "github.com/MrJamesThe3rd/consignd/internal/http/listing"
	webhookHandler "github.com/MrJamesThe3rd/consignd/internal/http/webhook"
	"github.com/MrJamesThe3rd/consignd/internal/payment"
)

func main() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		slog.Warn("failed to load .env", "error", err)
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	app.SetupLogging(cfg.App.Env)

	if err := run(cfg); err != nil {
		slog.Error("server failed", "error", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := app.New(ctx, cfg, app.Options{Migrate: true})
	if err != nil {
		return err
	}
	defer a.Close()

	provider := payment.NewClient(cfg.Payment.BaseURL, cfg.Payment.APIKey, cfg.Payment.Timeout)

	var (
		checkoutService = checkout.NewService(a.Holds, a.Listings, a.Orders, provider, a.Clock, checkout.Config{
			SuccessURL:      cfg.Payment.SuccessURL,
			CancelURL:       cfg.Payment.CancelURL,
			ProviderTimeout: cfg.Payment.Timeout,
		})
		webhookProcessor = checkout.NewWebhookProcessor(a.Holds, a.Orders, provider, checkoutStore.New(a.DB))
		verifier         = payment.NewVerifier(cfg.Payment.WebhookSecret, 5*time.Minute, nil)
	)

	var (
		listingH  = listingHandler.NewHandler(a.Listings)
		checkoutH = checkoutHandler.NewHandler(checkoutService, a.Orders)
		webhookH  = webhookHandler.NewHandler(verifier, webhookProcessor)
		adminH    = adminHandler.NewHandler(a.Listings, a.Holds, a.Sweeper, a.History)
	)

	router := consignHttp.New(consignHttp.Options{
		JWTSecret:   cfg.Auth.JWTSecret,
		CORSOrigins: cfg.Server.CORSOrigins,
	}, listingH, checkoutH, webhookH, adminH)

	var wg sync.WaitGroup

	if !cfg.Sweep.Disabled {
		wg.Go(func() { a.Runner.Run(ctx) })
	}

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.App.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      cfg.Server.Timeout,
	}

	srvErr := make(chan error, 1)
	go func() {
		slog.Info("starting server", "port", server.Addr)
		srvErr <- server.ListenAndServe()
	}()

	select {
	case err := <-srvErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			stop()
			wg.Wait()

			return err
		}
	case <-ctx.Done():
		slog.Info("shutdown signal received")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("server shutdown failed", "error", err)
	}

	stop()
	wg.Wait()
	slog.Info("server stopped")

	return nil
}
