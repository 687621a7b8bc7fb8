package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"fieldops-service/internal/auth"
	"fieldops-service/internal/config"
	"fieldops-service/internal/db"
	httphandler "fieldops-service/internal/http"
	"fieldops-service/internal/http/middleware"
	"fieldops-service/internal/logger"
	"fieldops-service/internal/numbering"
	"fieldops-service/internal/repository"
	"fieldops-service/internal/service"
	"fieldops-service/internal/worker"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	appLogger := logger.New(cfg.Environment)

	database, err := db.New(cfg, appLogger)
	if err != nil {
		appLogger.Fatal().Err(err).Msg("failed to connect database")
	}

	store := repository.NewGormStore(database)
	numbers := numbering.NewGenerator()
	opts := service.Options{
		DefaultHourlyRate: cfg.Pricing.DefaultHourlyRate,
		DefaultVatRate:    cfg.Pricing.DefaultVatRate,
		NumberingAttempts: cfg.Numbering.MaxAttempts,
	}

	services := httphandler.Services{
		Requests:   service.NewServiceRequestService(store, numbers, opts, appLogger),
		Estimates:  service.NewEstimateService(store, numbers, opts, appLogger),
		Quotes:     service.NewQuoteService(store, numbers, opts, appLogger),
		WorkOrders: service.NewWorkOrderService(store, numbers, opts, appLogger),
		Invoices:   service.NewInvoiceService(store, numbers, opts, appLogger),
		Settings:   service.NewSettingsService(store, numbers, opts, appLogger),
	}

	expiry, err := worker.NewQuoteExpiry(services.Quotes, cfg.Worker.QuoteExpirySchedule, appLogger)
	if err != nil {
		appLogger.Fatal().Err(err).Msg("failed to create quote expiry worker")
	}
	expiry.Start()

	tokenParser := auth.NewParser(cfg.Auth.AccessSecret)

	handler := httphandler.NewHandler(services, appLogger)
	authMiddleware := middleware.Auth(tokenParser)
	router := httphandler.NewRouter(handler, authMiddleware, cfg.Environment, appLogger)

	addr := fmt.Sprintf("%s:%d", cfg.HTTP.Host, cfg.HTTP.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		appLogger.Info().Str("addr", addr).Msg("starting fieldops service")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			appLogger.Fatal().Err(err).Msg("failed to start server")
		}
	}()

	<-quit
	appLogger.Info().Msg("shutting down")

	expiry.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		appLogger.Error().Err(err).Msg("server forced to shutdown")
	}

	if sqlDB, err := database.DB(); err == nil {
		_ = sqlDB.Close()
	}
	appLogger.Info().Msg("server exited")
}
