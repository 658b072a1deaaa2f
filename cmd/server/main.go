package main

import (
	"context"   // context package is needed for Redis operations and shutdown
	"errors"    // For matching http.ErrServerClosed
	"net/http"  // HTTP server
	"os"        // For signals
	"os/signal" // For graceful shutdown
	"syscall"   // For SIGTERM
	"time"      // For server timeouts

	"budget_tracker/internal/api"     // Custom package for API handlers
	"budget_tracker/internal/config"  // Custom package for configuration
	"budget_tracker/internal/db"      // Custom package for database setup
	"budget_tracker/internal/events"  // Custom package for domain events
	"budget_tracker/internal/payment" // Custom package for the payment provider
	"budget_tracker/internal/service" // Custom package for business operations
	"budget_tracker/internal/session" // Custom package for sessions
	"budget_tracker/internal/store"   // Custom package for the store

	"github.com/gin-gonic/gin"      // Gin web framework
	"github.com/redis/go-redis/v9"  // Redis client
	"github.com/shopspring/decimal" // Money amounts
	"github.com/sirupsen/logrus"    // Logrus for structured logging
	"golang.org/x/sync/errgroup"    // Runs the server and the shutdown watcher together
)

// Main function to set up and run the server
func main() {
	cfg := config.LoadConfig() // Load configuration

	// Setup logger
	if cfg.IsProd {
		logrus.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}

	// Money goes over the wire, into the cache and onto the broker as JSON numbers
	decimal.MarshalJSONWithoutQuotes = true

	if err := cfg.Validate(); err != nil {
		logrus.Fatalf("invalid configuration: %v", err)
	}
	if cfg.StripeKey == "" || cfg.StripeHook == "" {
		logrus.Warn("Stripe is not fully configured, premium checkout will fail")
	}

	// Connect to the database
	gdb, err := db.Open(cfg)
	if err != nil {
		logrus.Fatalf("failed to connect to DB: %v", err) // Fatal error if DB connection fails
	}
	if cfg.DBDriver == config.DriverSQLite {
		// A fresh SQLite file is only useful with a schema
		if err := db.Migrate(gdb); err != nil {
			logrus.Fatalf("failed to migrate SQLite database: %v", err)
		}
	}
	st := store.New(gdb, cfg.StoreTimeout)
	defer st.Close()

	// Setup Redis client
	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr, // Redis server address
		Password: cfg.RedisPass, // Redis password
		DB:       cfg.RedisDB,   // Redis database number
	})
	defer redisClient.Close()

	// Test Redis connection
	if _, err := redisClient.Ping(context.Background()).Result(); err != nil {
		logrus.Fatalf("failed to connect to Redis: %v", err)
	}

	// Domain events go to RabbitMQ when configured
	var publisher events.Publisher = events.Nop{}
	if cfg.AMQPURL != "" {
		amqpPublisher, err := events.NewAMQPPublisher(cfg.AMQPURL, cfg.AMQPExchange)
		if err != nil {
			logrus.Fatalf("failed to connect to RabbitMQ: %v", err)
		}
		defer amqpPublisher.Close()
		publisher = amqpPublisher
	}

	// Set Mode to Release if in production
	if cfg.IsProd {
		gin.SetMode(gin.ReleaseMode)
	}

	r := api.NewRouter(api.Deps{
		Store:        st,
		Redis:        redisClient,
		Sessions:     session.NewManager(redisClient, cfg.JWTSecret, cfg.SessionTTL),
		Payments:     payment.NewStripe(cfg.StripeKey, cfg.StripePrice, cfg.StripeHook),
		Events:       publisher,
		LoginGuard:   service.NewLoginGuard(redisClient, 5, 15*time.Minute),
		PublicURL:    cfg.PublicURL,
		SecureCookie: cfg.IsProd,
	})

	// Set trusted proxies for Gin
	if err := r.SetTrustedProxies([]string{"127.0.0.1"}); err != nil {
		logrus.Fatalf("failed to set trusted proxies: %v", err)
	}

	srv := &http.Server{
		Addr:              ":" + cfg.AppPort,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logrus.WithField("port", cfg.AppPort).Info("Server running") // Log server start
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logrus.Info("Shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	if err := g.Wait(); err != nil {
		logrus.Fatalf("server error: %v", err)
	}
	logrus.Info("Server stopped")
}
