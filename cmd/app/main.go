// File: cmd/app/main.go
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"webharbour/internal/config"
	"webharbour/internal/domain/ports/adapter"
	pg "webharbour/internal/infra/db/postgres"
	"webharbour/internal/infra/logging"
	"webharbour/internal/infra/metrics"
	"webharbour/internal/infra/payment"
	red "webharbour/internal/infra/redis"
	"webharbour/internal/infra/web"
	"webharbour/internal/usecase"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// ---- CLI flags ----
	cfgPath := flag.String("config", "config.yaml", "path to YAML config file")
	devMode := flag.Bool("dev", false, "enable developer mode (noop payment gateway, console logs)")
	flag.Parse()

	cfg, err := config.LoadConfig(*cfgPath, *devMode)
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logger := logging.New(cfg.Log, cfg.Runtime.Dev)
	if cfg.Runtime.Dev {
		logger.Info().Msg("developer mode enabled")
	}

	// ---- Postgres ----
	pool, err := pg.NewPgxPool(ctx, cfg.Database.URL, cfg.Database.PoolSize)
	if err != nil {
		logger.Fatal().Err(err).Msg("postgres connect failed")
	}
	defer pool.Close()

	// ---- Redis ----
	redisClient, err := red.NewClient(ctx, &cfg.Redis)
	if err != nil {
		logger.Fatal().Err(err).Msg("redis connect failed")
	}
	defer redisClient.Close()
	rateLimiter := red.NewRateLimiter(redisClient)

	// ---- Metrics ----
	metrics.MustRegister()

	// ---- Repositories ----
	orderRepo := pg.NewOrderRepo(pool)
	userRepo := pg.NewUserRepo(pool)
	productRepo := pg.NewProductRepoCacheDecorator(pg.NewProductRepo(pool), redisClient, cfg.Redis.TTL)
	reviewRepo := pg.NewReviewRepo(pool)
	categoryRepo := pg.NewCategoryRepo(pool)
	txManager := pg.NewTxManager(pool)

	// ---- Payment gateway ----
	var gateway adapter.PaymentGateway
	if cfg.Runtime.Dev {
		gateway = payment.NewNoopGateway(cfg.Payment.WebhookSecret)
	} else {
		gateway, err = payment.NewHarborPayGateway(cfg.Payment.BaseURL, cfg.Payment.APIKey, cfg.Payment.WebhookSecret, cfg.Payment.Sandbox)
		if err != nil {
			logger.Fatal().Err(err).Msg("payment gateway init failed")
		}
	}
	logger.Info().Str("gateway", gateway.Name()).Msg("payment gateway ready")

	// ---- Use cases ----
	authUC := usecase.NewAuthUseCase(userRepo)
	productUC := usecase.NewProductUseCase(productRepo, categoryRepo)
	orderUC := usecase.NewOrderUseCase(orderRepo, productRepo, userRepo, gateway, cfg.Payment.Currency)
	entitlementUC := usecase.NewEntitlementUseCase(userRepo, productRepo)
	reconcileUC := usecase.NewReconcileUseCase(orderRepo, entitlementUC, logger)
	reviewUC := usecase.NewReviewUseCase(reviewRepo, productRepo, userRepo, txManager, logger)
	moderationUC := usecase.NewModerationUseCase(productRepo, userRepo, logger)
	statsUC := usecase.NewStatsUseCase(userRepo, productRepo, orderRepo)

	// ---- HTTP API ----
	authMgr := web.NewAuthManager(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)
	srv := web.NewServer(authUC, productUC, orderUC, reconcileUC, reviewUC, moderationUC, statsUC, gateway, authMgr, rateLimiter, logger)

	apiServer := &http.Server{
		Addr:        fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:     srv.Router(),
		ReadTimeout: cfg.Server.ReadTimeout,
	}
	go func() {
		logger.Info().Int("port", cfg.Server.Port).Msg("api listening")
		if err := apiServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error().Err(err).Msg("api server stopped")
		}
	}()

	// ---- Metrics endpoint on its own port ----
	metricsMux := http.NewServeMux()
	metricsMux.Handle("/metrics", promhttp.Handler())
	metricsServer := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.MetricsPort),
		Handler: metricsMux,
	}
	go func() {
		logger.Info().Int("port", cfg.Server.MetricsPort).Msg("metrics listening")
		if err := metricsServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error().Err(err).Msg("metrics server stopped")
		}
	}()

	// ---- Graceful shutdown ----
	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, syscall.SIGINT, syscall.SIGTERM)
	<-sigc
	logger.Info().Msg("shutdown requested")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := apiServer.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("api shutdown")
	}
	if err := metricsServer.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("metrics shutdown")
	}
	cancel()
}
