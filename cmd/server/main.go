package main

import (
	"context" // context package is needed for Redis operations

	"booking_marketplace/internal/api"     // Custom package for API handlers
	"booking_marketplace/internal/config"  // Custom package for configuration
	"booking_marketplace/internal/db"      // Custom package for database access
	"booking_marketplace/internal/service" // Custom package for business components
	"booking_marketplace/internal/utils"   // Cache helpers

	"github.com/gin-gonic/gin"     // Gin web framework
	"github.com/redis/go-redis/v9" // Redis client
	"github.com/sirupsen/logrus"   // Logrus for structured logging
	"golang.org/x/crypto/bcrypt"   // Password hashing cost
)

// Main function to set up and run the server
func main() {
	cfg := config.LoadConfig() // Load configuration

	// Setup logger
	logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	if cfg.IsProd {
		logrus.SetFormatter(&logrus.JSONFormatter{})
	}
	if level, err := logrus.ParseLevel(cfg.LogLevel); err == nil {
		logrus.SetLevel(level)
	}
	if cfg.InsecureSecret() {
		logrus.Warn("JWT_SECRET is not set, falling back to an insecure default secret")
	}

	// Connect to the database selected by DB_DRIVER
	gdb, err := db.Open(cfg.DBDriver, cfg.DSN())
	if err != nil {
		logrus.Fatalf("failed to connect to DB: %v", err) // Fatal error if DB connection fails
	}

	// Setup Redis client when configured; listing reads are cached through it
	var redisClient *redis.Client
	if cfg.RedisAddr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr, // Redis server address
			Password: cfg.RedisPass, // Redis password
			DB:       cfg.RedisDB,   // Redis database number
		})
		// Test Redis connection
		if _, err := redisClient.Ping(context.Background()).Result(); err != nil {
			logrus.Fatalf("failed to connect to Redis: %v", err)
		}
	} else {
		logrus.Info("REDIS_ADDR not set, listing cache disabled")
	}

	// Set Mode to Release if in production
	if cfg.IsProd {
		gin.SetMode(gin.ReleaseMode)
	}

	r := api.NewRouter(api.Services{
		Identity:     service.NewIdentityService(gdb, cfg.JWTSecret, cfg.JWTTTL, bcrypt.DefaultCost),
		Listings:     service.NewListingService(gdb, utils.NewCache(redisClient, cfg.CacheTTL)),
		Reservations: service.NewReservationService(gdb),
	})

	// Set trusted proxies for Gin
	if err := r.SetTrustedProxies([]string{"127.0.0.1"}); err != nil {
		logrus.Fatalf("failed to set trusted proxies: %v", err)
	}

	logrus.WithField("port", cfg.AppPort).Info("Server running") // Log server start
	if err := r.Run(":" + cfg.AppPort); err != nil {              // Start the server on port cfg.AppPort
		logrus.Fatalf("server stopped: %v", err)
	}
}
