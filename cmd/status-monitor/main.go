package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/FabriceFx/Google-Workspace-Status-Monitor/internal/config"
	"github.com/FabriceFx/Google-Workspace-Status-Monitor/internal/feed"
	"github.com/FabriceFx/Google-Workspace-Status-Monitor/internal/metrics"
	"github.com/FabriceFx/Google-Workspace-Status-Monitor/internal/monitor"
	"github.com/FabriceFx/Google-Workspace-Status-Monitor/internal/normalize"
	"github.com/FabriceFx/Google-Workspace-Status-Monitor/internal/notify"
	"github.com/FabriceFx/Google-Workspace-Status-Monitor/internal/scheduler"
	"github.com/FabriceFx/Google-Workspace-Status-Monitor/internal/server"
	"github.com/FabriceFx/Google-Workspace-Status-Monitor/internal/store"
)

func main() {
	// Configure logging
	logrus.SetFormatter(&logrus.JSONFormatter{})
	logrus.SetLevel(logrus.InfoLevel)

	logrus.Info("Starting Google Workspace Status Monitor")

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logrus.Fatalf("Failed to load configuration: %v", err)
	}

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		logrus.Fatalf("Configuration validation failed: %v", err)
	}

	// Initialize database
	db, err := initDatabase(cfg.Database)
	if err != nil {
		logrus.Fatalf("Failed to initialize database: %v", err)
	}

	// Initialize metrics
	m := metrics.NewMetrics()

	// Initialize seen-set store over the persistent property store
	props := store.NewDBPropertyStore(db)
	seenStore := store.NewSeenSetStore(props, cfg.Monitor.RetentionLimit)

	// Initialize summary normalizer
	normalizer, err := normalize.New(cfg.Monitor.Timezone, cfg.Monitor.Locale, cfg.Feed.DashboardURL)
	if err != nil {
		logrus.Fatalf("Failed to create normalizer: %v", err)
	}

	// Initialize feed source
	source := feed.NewHTTPSource(cfg.Feed.URL, cfg.Feed.DashboardURL, cfg.Feed.UserAgent, cfg.Feed.Timeout)

	// Initialize mail sender and notifier
	sender, err := notify.NewGmailSender(context.Background(), notify.GmailCredentials{
		ClientID:     cfg.Mail.ClientID,
		ClientSecret: cfg.Mail.ClientSecret,
		RefreshToken: cfg.Mail.RefreshToken,
		SenderEmail:  cfg.Mail.SenderEmail,
	})
	if err != nil {
		logrus.Fatalf("Failed to create Gmail sender: %v", err)
	}
	notifier := notify.NewNotifier(sender, cfg.Mail.NotifyRecipient(),
		cfg.Mail.SubjectPrefix, cfg.Feed.DashboardURL, cfg.Monitor.Timezone)

	// Initialize feed processor
	processor := monitor.NewProcessor(source, seenStore, normalizer, notifier, m)

	// Initialize scheduler
	sched := scheduler.New(cfg.Scheduler.IntervalMinutes, processor, m)

	// Initialize HTTP handlers
	handlers := server.NewHandlers(db, sched)
	router := server.SetupRouter(handlers)

	httpServer := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	// Start scheduler
	if err := sched.Start(); err != nil {
		logrus.Fatalf("Failed to start scheduler: %v", err)
	}

	// Start HTTP server in a goroutine
	go func() {
		logrus.Infof("Starting HTTP server on port %s", cfg.Server.Port)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logrus.Fatalf("HTTP server error: %v", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logrus.Info("Shutting down server...")

	// Create shutdown context with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	// Stop scheduler
	if err := sched.Stop(); err != nil {
		logrus.Errorf("Failed to stop scheduler: %v", err)
	}

	// Wait for any in-flight pass to finish
	sched.Wait()

	// Shutdown HTTP server
	if err := httpServer.Shutdown(ctx); err != nil {
		logrus.Errorf("HTTP server shutdown error: %v", err)
	}

	// Close sender
	if err := sender.Close(); err != nil {
		logrus.Errorf("Failed to close mail sender: %v", err)
	}

	logrus.Info("Server stopped gracefully")
}

// initDatabase initializes the database connection and runs migrations
func initDatabase(cfg config.DatabaseConfig) (*gorm.DB, error) {
	// Configure GORM logger
	gormLogger := logger.New(
		logrus.StandardLogger(),
		logger.Config{
			SlowThreshold:             time.Second,
			LogLevel:                  logger.Warn,
			IgnoreRecordNotFoundError: true,
			Colorful:                  false,
		},
	)

	// Connect to database
	db, err := gorm.Open(mysql.Open(cfg.GetDSN()), &gorm.Config{
		Logger: gormLogger,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// Get underlying SQL DB for connection pool settings
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying SQL DB: %w", err)
	}

	// Configure connection pool
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(100)
	sqlDB.SetConnMaxLifetime(time.Hour)

	// Run migrations
	logrus.Info("Running database migrations...")
	if err := db.AutoMigrate(&store.Property{}); err != nil {
		return nil, fmt.Errorf("failed to auto migrate: %w", err)
	}

	logrus.Info("Database initialized successfully")
	return db, nil
}
