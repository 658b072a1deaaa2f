package config

import (
	"fmt"     // For DSN formatting
	"os"      // For environment variables
	"strconv" // For string to int conversion
	"time"    // For durations

	"github.com/joho/godotenv" // For loading .env files
)

// Supported database drivers
const (
	DriverMySQL    = "mysql"
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// Config holds the application configuration
type Config struct {
	AppPort      string        // Application port
	PublicURL    string        // Externally visible base URL, used for payment redirects
	IsProd       bool          // Is production environment
	DBDriver     string        // mysql, postgres or sqlite
	DBUser       string        // Database user
	DBPassword   string        // Database password
	DBHost       string        // Database host
	DBPort       string        // Database port
	DBName       string        // Database name
	SQLitePath   string        // SQLite file path when DBDriver is sqlite
	StoreTimeout time.Duration // Upper bound for one request's store work
	JWTSecret    string        // Session token signing key
	SessionTTL   time.Duration // Session lifetime
	RedisAddr    string        // Redis server address
	RedisPass    string        // Redis password
	RedisDB      int           // Redis database number
	StripeKey    string        // Stripe secret API key
	StripePrice  string        // Stripe price for the premium subscription
	StripeHook   string        // Stripe webhook signing secret
	AMQPURL      string        // RabbitMQ URL, empty disables event publishing
	AMQPExchange string        // Exchange for domain events
}

// LoadConfig loads configuration from environment variables
func LoadConfig() *Config {
	_ = godotenv.Load() // Load .env file if present
	return &Config{
		AppPort:      getEnv("APP_PORT", "8080"),
		PublicURL:    os.Getenv("PUBLIC_URL"),
		IsProd:       os.Getenv("IS_PROD") == "true",
		DBDriver:     getEnv("DB_DRIVER", DriverMySQL),
		DBUser:       os.Getenv("DB_USER"),
		DBPassword:   os.Getenv("DB_PASSWORD"),
		DBHost:       getEnv("DB_HOST", "127.0.0.1"),
		DBPort:       os.Getenv("DB_PORT"),
		DBName:       os.Getenv("DB_NAME"),
		SQLitePath:   getEnv("SQLITE_PATH", "budget.db"),
		StoreTimeout: getEnvDuration("STORE_TIMEOUT", 5*time.Second),
		JWTSecret:    os.Getenv("JWT_SECRET"),
		SessionTTL:   getEnvDuration("SESSION_TTL", 24*time.Hour),
		RedisAddr:    getEnv("REDIS_ADDR", "127.0.0.1:6379"),
		RedisPass:    os.Getenv("REDIS_PASS"),
		RedisDB:      getEnvInt("REDIS_DB", 0),
		StripeKey:    os.Getenv("STRIPE_SECRET_KEY"),
		StripePrice:  os.Getenv("STRIPE_PRICE_ID"),
		StripeHook:   os.Getenv("STRIPE_WEBHOOK_SECRET"),
		AMQPURL:      os.Getenv("AMQP_URL"),
		AMQPExchange: getEnv("AMQP_EXCHANGE", "budget.events"),
	}
}

// Validate reports settings the server cannot run without
func (c *Config) Validate() error {
	if c.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET is required")
	}
	switch c.DBDriver {
	case DriverMySQL, DriverPostgres:
		if c.DBName == "" {
			return fmt.Errorf("DB_NAME is required for driver %s", c.DBDriver)
		}
	case DriverSQLite:
	default:
		return fmt.Errorf("unsupported DB_DRIVER %q", c.DBDriver)
	}
	return nil
}

// DSN builds the Data Source Name for the configured driver
func (c *Config) DSN() string {
	switch c.DBDriver {
	case DriverPostgres:
		port := c.DBPort
		if port == "" {
			port = "5432"
		}
		return fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=disable TimeZone=UTC",
			c.DBHost, c.DBUser, c.DBPassword, c.DBName, port)
	case DriverSQLite:
		return c.SQLitePath
	default:
		port := c.DBPort
		if port == "" {
			port = "3306"
		}
		return c.DBUser + ":" + c.DBPassword + "@tcp(" + c.DBHost + ":" + port + ")/" + c.DBName + "?parseTime=true&loc=UTC"
	}
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvInt(key string, def int) int {
	if v, err := strconv.Atoi(os.Getenv(key)); err == nil {
		return v
	}
	return def
}

func getEnvDuration(key string, def time.Duration) time.Duration {
	if v, err := time.ParseDuration(os.Getenv(key)); err == nil && v > 0 {
		return v
	}
	return def
}
