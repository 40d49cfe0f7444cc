package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/jogardn/hoodie-store/internal/config"
	"github.com/jogardn/hoodie-store/internal/events"
	"github.com/jogardn/hoodie-store/internal/orders"
	"github.com/jogardn/hoodie-store/internal/products"
	"github.com/jogardn/hoodie-store/internal/profiles"
	"github.com/jogardn/hoodie-store/internal/server"
	"github.com/jogardn/hoodie-store/internal/storage"
	"github.com/jogardn/hoodie-store/internal/websocket"
)

func main() {
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})
	logger.SetLevel(logrus.InfoLevel)

	cfg := config.Load()

	db, err := storage.Open(cfg.DB, logger)
	if err != nil {
		logger.WithError(err).Fatal("Failed to connect to database")
	}
	defer db.Close()

	if err := storage.Migrate(context.Background(), db); err != nil {
		logger.WithError(err).Fatal("Failed to create tables")
	}

	var producer *events.Producer
	if cfg.KafkaBrokers != "" {
		producer, err = events.NewProducer(cfg.KafkaBrokers, logger)
		if err != nil {
			logger.WithError(err).Fatal("Failed to create Kafka producer")
		}
		defer producer.Close()
	} else {
		logger.Info("KAFKA_BROKERS not set, event publishing disabled")
	}

	hub := websocket.NewHub(logger)
	go hub.Run()

	productRepo := products.NewRepository(db, logger)
	orderRepo := orders.NewRepository(db, logger)
	profileRepo := profiles.NewRepository(db, logger)

	srv := server.New(db, productRepo, orderRepo, profileRepo, producer, hub, logger)

	httpServer := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      srv.Router(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.WithField("port", cfg.Port).Info("Starting storefront service")
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.WithError(err).Fatal("Failed to start server")
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	logger.Info("Shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(ctx); err != nil {
		logger.WithError(err).Error("Server forced to shutdown")
	}

	logger.Info("Server gracefully stopped")
}
