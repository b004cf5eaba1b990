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

	httpdelivery "github.com/Xausdorf/paypal-relay/internal/delivery/http"
	"github.com/Xausdorf/paypal-relay/internal/infrastructure/config"
	"github.com/Xausdorf/paypal-relay/internal/infrastructure/discord"
	"github.com/Xausdorf/paypal-relay/internal/infrastructure/paypal"
	"github.com/Xausdorf/paypal-relay/internal/infrastructure/qrgenerator"
	"github.com/Xausdorf/paypal-relay/internal/usecase/createorder"
	"github.com/Xausdorf/paypal-relay/internal/usecase/generateqr"
	"github.com/Xausdorf/paypal-relay/internal/usecase/webhook"
)

const (
	qrCodeSize            = 256
	readHeaderTimeout     = 5 * time.Second
	gracefulShutdownDelay = 5 * time.Second
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	cfg := config.Load()

	if cfg.PayPalClientID == "" || cfg.PayPalSecret == "" {
		logger.Warn("paypal credentials missing, order creation and capture will fail")
	}
	if cfg.DiscordWebhookURL == "" {
		logger.Warn("discord webhook url missing, notifications disabled")
	}
	verify := cfg.VerifySignatures()
	if verify && cfg.WebhookID == "" {
		logger.Warn("webhook verification enabled without PAYPAL_WEBHOOK_ID, every event will be rejected")
	}

	gateway := paypal.NewClient(paypal.Config{
		BaseURL:  cfg.PayPalAPIBase,
		ClientID: cfg.PayPalClientID,
		Secret:   cfg.PayPalSecret,
	})
	forwarder := discord.NewForwarder(cfg.DiscordWebhookURL, logger)
	qrGen := qrgenerator.NewGenerator(qrCodeSize)

	webhookUC := webhook.NewUseCase(gateway, forwarder, webhook.Options{
		VerifySignatures: verify,
		WebhookID:        cfg.WebhookID,
	}, logger)
	createOrderUC := createorder.NewUseCase(gateway, cfg.Currency)
	generateQRUC := generateqr.NewUseCase(qrGen)

	handler := httpdelivery.NewHandler(webhookUC, createOrderUC, generateQRUC, logger)
	router := httpdelivery.NewRouter(handler)

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           router,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	go func() {
		logger.Info("HTTP server starting", "addr", cfg.HTTPAddr, "verify_signatures", verify)
		if serveErr := srv.ListenAndServe(); serveErr != nil && !errors.Is(serveErr, http.ErrServerClosed) {
			logger.Error("http serve failed", "error", serveErr)
			cancel()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), gracefulShutdownDelay)
	defer shutdownCancel()
	_ = srv.Shutdown(shutdownCtx)
}
