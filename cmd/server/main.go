package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/kevin07696/payment-gateway/internal/adapters/fraudapi"
	"github.com/kevin07696/payment-gateway/internal/adapters/merchantapi"
	"github.com/kevin07696/payment-gateway/internal/adapters/postgres"
	"github.com/kevin07696/payment-gateway/internal/adapters/pubsubevents"
	"github.com/kevin07696/payment-gateway/internal/adapters/redisstore"
	"github.com/kevin07696/payment-gateway/internal/adapters/vaultcards"
	"github.com/kevin07696/payment-gateway/internal/config"
	"github.com/kevin07696/payment-gateway/internal/domain/ports"
	fraudHandler "github.com/kevin07696/payment-gateway/internal/handlers/fraud"
	paymentHandler "github.com/kevin07696/payment-gateway/internal/handlers/payment"
	fraudService "github.com/kevin07696/payment-gateway/internal/services/fraud"
	paymentService "github.com/kevin07696/payment-gateway/internal/services/payment"
	"github.com/kevin07696/payment-gateway/pkg/logging"
	appMiddleware "github.com/kevin07696/payment-gateway/pkg/middleware"
	"github.com/kevin07696/payment-gateway/pkg/observability"
	"github.com/kevin07696/payment-gateway/pkg/resilience"
)

func main() {
	zapLogger := initLogger()
	defer zapLogger.Sync()

	zapLogger.Info("starting payment gateway", zap.String("version", "0.1.0"))

	cfg, err := config.LoadFromEnv()
	if err != nil {
		zapLogger.Fatal("failed to load configuration", zap.Error(err))
	}

	logger := logging.NewZapLogger(zapLogger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := resolveDatabaseCredentials(ctx, cfg, logger); err != nil {
		zapLogger.Fatal("failed to resolve database credentials", zap.Error(err))
	}

	dbPool, err := postgres.NewPool(ctx, cfg.Database.URL(), postgres.PoolConfig{
		MaxConns:          cfg.Database.MaxConns,
		MinConns:          cfg.Database.MinConns,
		MaxConnLifetime:   time.Hour,
		MaxConnIdleTime:   30 * time.Minute,
		HealthCheckPeriod: time.Minute,
	})
	if err != nil {
		zapLogger.Fatal("failed to connect to database", zap.Error(err))
	}
	defer dbPool.Close()
	zapLogger.Info("database connection established", zap.String("database", cfg.Database.Database))

	redisClient, err := redisstore.NewClient(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	if err != nil {
		zapLogger.Fatal("failed to connect to redis", zap.Error(err))
	}
	defer redisClient.Close()

	db := postgres.NewDBExecutor(dbPool)
	txRepo := postgres.NewTransactionRepository(db, logger)
	disagreementRepo := postgres.NewDisagreementRepository(db, logger)

	tokenizer, err := vaultcards.NewTokenizer(vaultcards.Config{
		Address:   cfg.Vault.Address,
		Token:     cfg.Vault.Token,
		MountPath: cfg.Vault.MountPath,
	}, logger)
	if err != nil {
		zapLogger.Fatal("failed to initialize vault tokenizer", zap.Error(err))
	}

	merchants := merchantapi.NewClient(cfg.Merchant.BaseURL,
		time.Duration(cfg.Merchant.TimeoutSeconds)*time.Second, logger)

	var events ports.EventPublisher
	if cfg.Events.Enabled {
		publisher, err := pubsubevents.NewPublisher(ctx, cfg.Events.ProjectID, cfg.Events.TopicID, logger)
		if err != nil {
			zapLogger.Fatal("failed to initialize event publisher", zap.Error(err))
		}
		defer publisher.Close()
		events = publisher
	} else {
		events = noopPublisher{logger: logger}
	}

	velocity := redisstore.NewVelocityStore(redisClient, logger)
	engine, shadow := buildFraudEngine(cfg, velocity, disagreementRepo, logger, zapLogger)
	defer shadow.Wait()

	// The orchestrator talks to the engine in-process unless a remote fraud
	// service URL splits the deployment
	var fraudChecker ports.FraudChecker = engine
	if cfg.Fraud.RemoteURL != "" {
		fraudChecker = fraudapi.NewClient(cfg.Fraud.RemoteURL, 10*time.Second, cfg.Fraud.ClientFailOpen, logger)
	}

	orchestrator := paymentService.NewService(
		paymentService.Config{
			AuthCeiling:   decimal.NewFromFloat(cfg.Payment.AuthCeiling),
			FraudFailOpen: cfg.Payment.FraudFailOpen,
			Timeouts:      resilience.DefaultTimeoutConfig(),
		},
		db, txRepo, merchants, tokenizer, fraudChecker, events, logger,
	)

	rateLimiter := appMiddleware.NewRateLimiter(cfg.Server.RateLimitRPS, cfg.Server.RateLimitBurst)
	defer rateLimiter.Shutdown()

	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(middleware.Recoverer)
	router.Use(middleware.Timeout(30 * time.Second))
	router.Use(middleware.Compress(5, "application/json"))
	router.Use(appMiddleware.SecurityHeaders(cfg.Logger.Development))
	router.Use(rateLimiter.Middleware)

	paymentHandler.NewHandler(orchestrator, logger).RegisterRoutes(router)
	fraudHandler.NewHandler(engine, shadow, logger).RegisterRoutes(router)

	metricsServer := observability.StartMetricsServer(strconv.Itoa(cfg.Server.MetricsPort),
		observability.NewHealthChecker(dbPool, redisClient))

	server := &http.Server{
		Addr:    fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler: router,
	}

	go func() {
		zapLogger.Info("http server listening", zap.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zapLogger.Fatal("http server failed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	zapLogger.Info("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		zapLogger.Error("http server shutdown error", zap.Error(err))
	}
	if err := observability.ShutdownMetricsServer(metricsServer); err != nil {
		zapLogger.Error("metrics server shutdown error", zap.Error(err))
	}

	zapLogger.Info("payment gateway stopped")
}

// buildFraudEngine wires the enricher, both scoring backends, and the shadow
// recorder into an in-process engine
func buildFraudEngine(cfg *config.Config, velocity ports.VelocityStore, disagreementRepo ports.DisagreementRepository, logger ports.Logger, zapLogger *zap.Logger) (*fraudService.Engine, *fraudService.ShadowRecorder) {
	var scaler *fraudService.StandardScaler
	if cfg.Fraud.ScalerPath != "" {
		loaded, err := fraudService.LoadStandardScaler(cfg.Fraud.ScalerPath)
		if err != nil {
			zapLogger.Warn("failed to load feature scaler, scoring on raw features", zap.Error(err))
		} else {
			scaler = loaded
		}
	}

	shadow := fraudService.NewShadowRecorder(disagreementRepo, logger)

	engineCfg := fraudService.DefaultEngineConfig()
	engineCfg.ColdStartLimit = decimal.NewFromFloat(cfg.Fraud.ColdStartLimit)
	engineCfg.BlockThreshold = cfg.Fraud.BlockThreshold
	engineCfg.ReviewThreshold = cfg.Fraud.ReviewThreshold

	engine := fraudService.NewEngine(
		engineCfg,
		fraudService.NewEnricher(velocity, logger),
		fraudService.NewChampionScorer(scaler),
		fraudService.NewChallengerScorer(scaler),
		shadow,
		logger,
	)
	return engine, shadow
}

func initLogger() *zap.Logger {
	var logger *zap.Logger
	var err error
	if os.Getenv("LOG_DEVELOPMENT") == "true" {
		logger, err = zap.NewDevelopment()
	} else {
		logger, err = zap.NewProduction()
	}
	if err != nil {
		panic(fmt.Sprintf("failed to initialize logger: %v", err))
	}
	return logger
}
