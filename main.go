package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"

	_ "github.com/joho/godotenv/autoload"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"contacts/internal/config"
	"contacts/internal/database"
	"contacts/internal/logger"
	"contacts/internal/repositories"
	"contacts/internal/server"
	"contacts/internal/services"
	"contacts/pkg/rabbitmq"
)

func main() {
	// --- Configuration ---
	// Defaults, then an optional CONFIG_FILE, then the environment (.env is
	// auto-loaded when present).
	cfg, err := config.Load(viper.New())
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// --- Logging ---
	zlog, err := logger.New(cfg.LogLevel, cfg.LogFormat, "contacts")
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer zlog.Sync()

	// --- Storage ---
	var repo repositories.ContactRepository
	if cfg.Database.Driver == "memory" {
		repo = repositories.NewMemoryContactRepository()
	} else {
		db, err := database.Open(cfg.Database)
		if err != nil {
			zlog.Fatal("Failed to connect to database", zap.String("driver", cfg.Database.Driver), zap.Error(err))
		}
		if sqlDB, err := db.DB(); err == nil {
			defer sqlDB.Close()
		}
		repo = repositories.NewGORMContactRepository(db)
	}

	// --- Events ---
	// Publishing is optional; without a broker URL contact events are skipped.
	var publisher services.EventPublisher
	if cfg.RabbitMQ.URL != "" {
		mqClient, err := rabbitmq.NewClient(rabbitmq.Config{URL: cfg.RabbitMQ.URL, Exchange: cfg.RabbitMQ.Exchange})
		if err != nil {
			zlog.Fatal("Failed to initialize RabbitMQ client", zap.Error(err))
		}
		defer mqClient.Close()
		publisher = mqClient
	}

	// --- Metrics ---
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	// --- HTTP ---
	app, err := server.NewApp(cfg, server.Dependencies{
		Repo:      repo,
		Publisher: publisher,
		Logger:    zlog,
		Registry:  reg,
	})
	if err != nil {
		zlog.Fatal("Failed to create app", zap.Error(err))
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		zlog.Info("Starting server", zap.String("addr", cfg.AppPort), zap.String("driver", cfg.Database.Driver))
		if err := app.Listen(cfg.AppPort); err != nil {
			zlog.Fatal("Server failed to start", zap.Error(err))
		}
	}()

	<-quit
	zlog.Info("Shutting down server...")
	if err := app.Shutdown(); err != nil {
		zlog.Error("Error during Fiber shutdown", zap.Error(err))
	}
	zlog.Info("Server gracefully stopped")
}
