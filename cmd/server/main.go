package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/projetto/freedompay-service/internal/adapters/freedompay"
	"github.com/projetto/freedompay-service/internal/adapters/postgres"
	"github.com/projetto/freedompay-service/internal/adapters/secrets"
	"github.com/projetto/freedompay-service/internal/config"
	"github.com/projetto/freedompay-service/internal/domain/ports"
	callbackHandler "github.com/projetto/freedompay-service/internal/handlers/callback"
	paymentHandler "github.com/projetto/freedompay-service/internal/handlers/payment"
	paymentService "github.com/projetto/freedompay-service/internal/services/payment"
	"github.com/projetto/freedompay-service/pkg/observability"
)

func main() {
	cfg, err := config.LoadFromEnv()
	if err != nil {
		fmt.Fprintf(os.Stderr, "configuration error: %v\n", err)
		os.Exit(1)
	}

	logger := initLogger(cfg.Logger)
	defer logger.Sync()

	logger.Info("Starting freedompay service",
		zap.String("protocol_version", cfg.Gateway.Version),
		zap.String("merchant_id", cfg.Gateway.MerchantID),
	)

	ctx := context.Background()

	// Database connection pool
	dbPool, err := postgres.NewPool(ctx, cfg.Database.ConnectionString(), cfg.Database.MaxConns, cfg.Database.MinConns)
	if err != nil {
		logger.Fatal("Failed to initialize database", zap.Error(err))
	}
	defer dbPool.Close()

	logger.Info("Database connection established",
		zap.String("database", cfg.Database.Database),
	)

	// Resolve the gateway shared secret from the configured backend
	secretManager, err := initSecretManager(ctx, cfg.Secrets, logger)
	if err != nil {
		logger.Fatal("Failed to initialize secret manager", zap.Error(err))
	}

	gatewaySecret, err := secretManager.GetSecret(ctx, cfg.Gateway.SecretRef)
	if err != nil {
		logger.Fatal("Failed to resolve gateway secret",
			zap.String("secret_ref", cfg.Gateway.SecretRef),
			zap.Error(err),
		)
	}

	// Gateway client
	gatewayClient, err := freedompay.NewClient(freedompay.Config{
		MerchantID:  cfg.Gateway.MerchantID,
		Secret:      gatewaySecret,
		Version:     freedompay.ProtocolVersion(cfg.Gateway.Version),
		BaseURL:     cfg.Gateway.BaseURL,
		Timeout:     time.Duration(cfg.Gateway.Timeout) * time.Second,
		TestingMode: cfg.Gateway.TestingMode,
	}, logger)
	if err != nil {
		logger.Fatal("Failed to initialize gateway client", zap.Error(err))
	}

	// Repositories and service
	ledger := postgres.NewLedgerRepository(dbPool)
	orders := postgres.NewOrderLookup(dbPool)
	service := paymentService.NewService(orders, ledger, gatewayClient, logger)

	// HTTP surface
	router := chi.NewRouter()
	router.Use(chimiddleware.RealIP)
	router.Use(chimiddleware.RequestID)
	router.Use(chimiddleware.Recoverer)
	router.Use(chimiddleware.Timeout(60 * time.Second))

	router.Route("/api/v1", func(r chi.Router) {
		paymentHandler.NewHandler(service, logger).RegisterRoutes(r)
	})

	callbacks := callbackHandler.NewHandler(callbackHandler.Config{
		Secret:       gatewaySecret,
		Version:      freedompay.ProtocolVersion(cfg.Gateway.Version),
		CheckScript:  cfg.Gateway.CheckScript,
		ResultScript: cfg.Gateway.ResultScript,
	}, ledger, nil, logger)
	router.Post("/callbacks/check", callbacks.HandleCheck)
	router.Post("/callbacks/result", callbacks.HandleResult)

	httpServer := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 65 * time.Second,
	}

	// Metrics and health endpoints on a separate port
	healthChecker := observability.NewHealthChecker(dbPool)
	metricsServer := observability.StartMetricsServer(strconv.Itoa(cfg.Server.MetricsPort), healthChecker, logger)

	go func() {
		logger.Info("HTTP server listening",
			zap.String("address", httpServer.Addr),
		)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Failed to serve HTTP", zap.Error(err))
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down servers...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("HTTP server shutdown error", zap.Error(err))
	}
	if err := observability.ShutdownMetricsServer(metricsServer); err != nil {
		logger.Error("Metrics server shutdown error", zap.Error(err))
	}

	logger.Info("Servers stopped")
}

// initLogger creates a zap logger per configuration
func initLogger(cfg config.LoggerConfig) *zap.Logger {
	level := zapcore.InfoLevel
	if err := level.Set(cfg.Level); err != nil {
		level = zapcore.InfoLevel
	}

	var zapCfg zap.Config
	if cfg.Development {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}
	zapCfg.Level = zap.NewAtomicLevelAt(level)

	logger, err := zapCfg.Build()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to build logger: %v\n", err)
		os.Exit(1)
	}
	return logger
}

// initSecretManager selects the secret backend
func initSecretManager(ctx context.Context, cfg config.SecretsConfig, logger *zap.Logger) (ports.SecretManager, error) {
	switch cfg.Backend {
	case "aws":
		return secrets.NewAWSSecretManager(ctx, secrets.AWSConfig{
			Region:   cfg.AWSRegion,
			Profile:  cfg.AWSProfile,
			Endpoint: cfg.AWSEndpoint,
			CacheTTL: 5 * time.Minute,
		}, logger)
	case "vault":
		return secrets.NewVaultSecretManager(secrets.VaultConfig{
			Address:   cfg.VaultAddr,
			Token:     cfg.VaultToken,
			MountPath: cfg.VaultMount,
		}, logger)
	default:
		return secrets.NewEnvSecretManager(), nil
	}
}
