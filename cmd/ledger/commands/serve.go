package commands

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/fekuna/omnipos-ledger-service/internal/ledger/handler"
	"github.com/fekuna/omnipos-ledger-service/internal/ledger/listener"
	"github.com/fekuna/omnipos-ledger-service/internal/ledger/repository"
	"github.com/fekuna/omnipos-ledger-service/internal/ledger/usecase"
	"github.com/fekuna/omnipos-ledger-service/internal/middleware"
	"github.com/fekuna/omnipos-ledger-service/internal/model"
	"github.com/fekuna/omnipos-ledger-service/internal/server"
	"github.com/fekuna/omnipos-ledger-service/pkg/broker"
	"github.com/fekuna/omnipos-ledger-service/pkg/cache"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newServeCmd() *cobra.Command {
	var migrate bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API (and the Kafka listener when configured)",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(migrate)
		},
	}
	cmd.Flags().BoolVar(&migrate, "migrate", false, "Apply schema and seed data before serving")
	return cmd
}

func runServe(migrate bool) error {
	// 1. Load Configuration
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	// 2. Initialize Logger
	appLogger := newLogger(cfg)
	defer appLogger.Sync()

	// 3. Connect to Database
	db, err := connectDB(cfg)
	if err != nil {
		appLogger.Fatal("Could not connect to database", zap.Error(err))
	}
	defer db.Close()
	appLogger.Info("Connected to PostgreSQL database", zap.String("db_name", cfg.Postgres.DBName))

	if migrate {
		if err := repository.Migrate(context.Background(), db, true); err != nil {
			appLogger.Fatal("Could not migrate database", zap.Error(err))
		}
		appLogger.Info("Database schema and seed applied")
	}

	// 4. Initialize Repository and UseCase
	ledgerRepo := repository.NewPGRepository(db)
	ledgerUC := usecase.NewLedgerUseCase(ledgerRepo, model.TruckSizes{
		Full4x5:  cfg.Ledger.FullTruck4x5,
		Full4x8:  cfg.Ledger.FullTruck4x8,
		Split4x5: cfg.Ledger.SplitTruck4x5,
		Split4x8: cfg.Ledger.SplitTruck4x8,
	}, appLogger.Named("ledger"))

	// 5. Initialize Redis (optional)
	var locker middleware.Locker
	if cfg.Redis.Addr != "" {
		redisClient, err := cache.NewRedisClient(&cache.Config{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err != nil {
			appLogger.Warn("Could not connect to Redis, idempotency keys disabled", zap.Error(err))
		} else {
			defer redisClient.Close()
			locker = redisClient
			appLogger.Info("Connected to Redis", zap.String("addr", cfg.Redis.Addr))
		}
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// 6. Initialize Kafka Listener (optional)
	if len(cfg.Kafka.Brokers) > 0 {
		kafkaConsumer := broker.NewConsumer(&broker.Config{
			Brokers: cfg.Kafka.Brokers,
			Topic:   cfg.Kafka.Topic,
			GroupID: cfg.Kafka.GroupID,
		})
		defer kafkaConsumer.Close()
		appLogger.Info("Connected to Kafka Consumer", zap.Strings("brokers", cfg.Kafka.Brokers), zap.String("topic", cfg.Kafka.Topic))

		ledgerListener := listener.NewLedgerListener(kafkaConsumer, ledgerUC, appLogger.Named("listener"))
		go ledgerListener.Start(ctx)
	}

	// 7. Start HTTP Server
	ledgerHandler := handler.NewLedgerHandler(ledgerUC, appLogger.Named("handler"))
	engine := server.New(ledgerHandler, server.Options{
		RequestTimeout: cfg.Server.RequestTimeout,
		AllowedOrigins: cfg.Server.AllowedOrigins,
		Locker:         locker,
		IdempotencyTTL: cfg.Redis.IdempotencyTTL,
		Debug:          cfg.Server.AppEnv == "dev" || cfg.Server.AppEnv == "development",
	}, appLogger.Named("router"))

	port := cfg.Server.HTTPPort
	if !strings.HasPrefix(port, ":") {
		port = ":" + port
	}

	srv := &http.Server{
		Addr:         port,
		Handler:      engine,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: cfg.Server.RequestTimeout + 5*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		appLogger.Info("Starting HTTP server", zap.String("port", port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			appLogger.Fatal("failed to serve", zap.Error(err))
		}
	}()

	// Graceful Shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	appLogger.Info("Shutting down server...")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		appLogger.Error("Graceful shutdown failed", zap.Error(err))
	}
	appLogger.Info("Server stopped")
	return nil
}
