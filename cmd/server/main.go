package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	appsettlement "github.com/comercia/backend/internal/application/settlement"
	apptreasury "github.com/comercia/backend/internal/application/treasury"
	"github.com/comercia/backend/internal/domain/shared"
	"github.com/comercia/backend/internal/infrastructure/cache"
	"github.com/comercia/backend/internal/infrastructure/collaborator"
	"github.com/comercia/backend/internal/infrastructure/config"
	"github.com/comercia/backend/internal/infrastructure/logger"
	"github.com/comercia/backend/internal/infrastructure/persistence"
	"github.com/comercia/backend/internal/interfaces/http/handler"
	"github.com/comercia/backend/internal/interfaces/http/router"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	log, err := logger.New(&logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = log.Sync()
	}()

	log.Info("Starting ledger backend",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)

	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	// Database
	gormLog := logger.NewGormLogger(log, logger.MapGormLogLevel(cfg.Log.Level))
	db, err := persistence.NewDatabaseWithLogger(&cfg.Database, gormLog)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	log.Info("Database connected successfully")

	// Idempotency store (redis when configured, in-memory otherwise)
	idempotencyStore := cache.NewIdempotencyStore(cfg.Redis, log)
	defer func() {
		_ = idempotencyStore.Close()
	}()
	idemConfig := shared.IdempotencyConfig{
		Enabled: cfg.Idempotency.Enabled,
		TTL:     cfg.Idempotency.TTL,
	}

	// Repositories and transaction scopes
	accountRepo := persistence.NewGormAccountRepository(db.DB)
	movementRepo := persistence.NewGormMovementRepository(db.DB)
	treasuryScope := persistence.NewGormTreasuryTransactionScope(db.DB)
	settlementScope := persistence.NewGormSettlementTransactionScope(db.DB)

	// Collaborators
	inventoryClient := collaborator.NewHTTPInventoryClient(cfg.Inventory.BaseURL, cfg.Inventory.Timeout, log)

	// Application services
	ledgerService := apptreasury.NewLedgerService(treasuryScope, accountRepo, movementRepo, log).
		WithMaxRetries(cfg.Retry.MaxAttempts)
	transferService := apptreasury.NewTransferService(treasuryScope, idempotencyStore, idemConfig, log).
		WithMaxRetries(cfg.Retry.MaxAttempts)
	settlementService := appsettlement.NewSettlementService(settlementScope, idempotencyStore, idemConfig, log).
		WithMaxRetries(cfg.Retry.MaxAttempts)
	reversalService := appsettlement.NewReversalService(settlementScope, inventoryClient, log).
		WithMaxRetries(cfg.Retry.MaxAttempts)

	// HTTP wiring
	engine := router.NewEngine(log)
	r := router.NewRouter(engine, router.WithHealthCheck(db.Ping))
	r.Register(handler.NewTreasuryHandler(ledgerService, transferService))
	r.Register(handler.NewSettlementHandler(settlementService, reversalService))
	r.Setup()

	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown", zap.Error(err))
	}

	log.Info("Server exited gracefully")
}
