package config

import (
	"os"      // For environment variables
	"strconv" // For string to int conversion
	"time"    // For durations

	"github.com/joho/godotenv" // For loading .env files
)

// InsecureJWTSecret is used when JWT_SECRET is unset. Never run production on it.
const InsecureJWTSecret = "secret"

// Config holds the application configuration
type Config struct {
	AppPort     string        // Application port
	DBDriver    string        // mysql, postgres or sqlite
	DatabaseURL string        // Storage connection string
	DBUser      string        // Database user (mysql DSN parts)
	DBPassword  string        // Database password
	DBHost      string        // Database host
	DBPort      string        // Database port
	DBName      string        // Database name
	JWTSecret   string        // JWT secret key
	JWTTTL      time.Duration // Session token lifetime
	RedisAddr   string        // Redis server address, empty disables caching
	RedisPass   string        // Redis password
	RedisDB     int           // Redis database number
	CacheTTL    time.Duration // Listing cache lifetime
	LogLevel    string        // debug, info, warn or error
	IsProd      bool          // Is production environment
}

// LoadConfig loads configuration from environment variables
func LoadConfig() *Config {
	_ = godotenv.Load() // Load .env file if present
	redisDB, _ := strconv.Atoi(os.Getenv("REDIS_DB"))
	cfg := &Config{
		AppPort:     firstNonEmpty(os.Getenv("PORT"), os.Getenv("APP_PORT"), "4000"),
		DBDriver:    firstNonEmpty(os.Getenv("DB_DRIVER"), "mysql"),
		DatabaseURL: os.Getenv("DATABASE_URL"),
		DBUser:      os.Getenv("DB_USER"),
		DBPassword:  os.Getenv("DB_PASSWORD"),
		DBHost:      firstNonEmpty(os.Getenv("DB_HOST"), "127.0.0.1"),
		DBPort:      firstNonEmpty(os.Getenv("DB_PORT"), "3306"),
		DBName:      os.Getenv("DB_NAME"),
		JWTSecret:   firstNonEmpty(os.Getenv("JWT_SECRET"), InsecureJWTSecret),
		JWTTTL:      durationOr(os.Getenv("JWT_TTL"), 7*24*time.Hour),
		RedisAddr:   os.Getenv("REDIS_ADDR"),
		RedisPass:   os.Getenv("REDIS_PASS"),
		RedisDB:     redisDB,
		CacheTTL:    durationOr(os.Getenv("CACHE_TTL"), 60*time.Second),
		LogLevel:    firstNonEmpty(os.Getenv("LOG_LEVEL"), "info"),
		IsProd:      os.Getenv("IS_PROD") == "true",
	}
	return cfg
}

// DSN returns the storage connection string. For mysql it is assembled
// from the DB_* parts when DATABASE_URL is unset.
func (c *Config) DSN() string {
	if c.DatabaseURL != "" || c.DBDriver != "mysql" {
		return c.DatabaseURL
	}
	return c.DBUser + ":" + c.DBPassword + "@tcp(" + c.DBHost + ":" + c.DBPort + ")/" + c.DBName + "?parseTime=true"
}

// InsecureSecret reports whether the JWT secret is the built-in fallback
func (c *Config) InsecureSecret() bool {
	return c.JWTSecret == InsecureJWTSecret
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func durationOr(raw string, fallback time.Duration) time.Duration {
	if d, err := time.ParseDuration(raw); err == nil && d > 0 {
		return d
	}
	return fallback
}
