package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	Redis     RedisConfig
	Session   SessionConfig
	JWT       JWTConfig
	CORS      CORSConfig
	Payment   PaymentConfig
	S3        S3Config
	Scheduler SchedulerConfig
	Admin     AdminConfig
}

type ServerConfig struct {
	Port        string
	GinMode     string
	Environment string
}

type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
}

// SessionConfig controls the checkout wizard session cookie and its server-side record
type SessionConfig struct {
	CookieName string
	TTL        time.Duration
	Secure     bool
}

type JWTConfig struct {
	Secret             string
	AccessTokenExpiry  time.Duration
	RefreshTokenExpiry time.Duration
}

type CORSConfig struct {
	AllowedOrigins []string
}

type PaymentConfig struct {
	CardGateway CardGatewayConfig
}

type CardGatewayConfig struct {
	APIKey     string
	MerchantID string
	BaseURL    string
	Currency   string
	Timeout    time.Duration
}

type S3Config struct {
	Region          string
	Bucket          string
	AccessKeyID     string
	SecretAccessKey string
	BaseURL         string // CloudFront or S3 direct URL
	ExportPrefix    string
}

type SchedulerConfig struct {
	Enabled           bool
	FlagRefreshSpec   string
	NightlyExportSpec string
	NewBusinessDays   int
}

// AdminConfig holds the bootstrap back-office account created on first start
type AdminConfig struct {
	DefaultUsername string
	DefaultPassword string
	DefaultEmail    string
}

func Load() (*Config, error) {
	// Load .env file if it exists
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	config := &Config{
		Server: ServerConfig{
			Port:        getEnv("SERVER_PORT", "8080"),
			GinMode:     getEnv("GIN_MODE", "debug"),
			Environment: getEnv("ENVIRONMENT", "development"),
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "statelink"),
			Password: getEnv("DB_PASSWORD", "statelink"),
			DBName:   getEnv("DB_NAME", "statelink"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnv("REDIS_PORT", "6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       parseInt(getEnv("REDIS_DB", "0"), 0),
		},
		Session: SessionConfig{
			CookieName: getEnv("SESSION_COOKIE_NAME", "statelink_session"),
			TTL:        parseDuration(getEnv("SESSION_TTL", "2h"), 2*time.Hour),
			Secure:     parseBool(getEnv("SESSION_COOKIE_SECURE", "false")),
		},
		JWT: JWTConfig{
			Secret:             getEnv("JWT_SECRET", "your-secret-key"),
			AccessTokenExpiry:  parseDuration(getEnv("JWT_ACCESS_TOKEN_EXPIRY", "15m"), 15*time.Minute),
			RefreshTokenExpiry: parseDuration(getEnv("JWT_REFRESH_TOKEN_EXPIRY", "168h"), 168*time.Hour),
		},
		CORS: CORSConfig{
			AllowedOrigins: parseSlice(getEnv("ALLOWED_ORIGINS", "http://localhost:3000")),
		},
		Payment: PaymentConfig{
			CardGateway: CardGatewayConfig{
				APIKey:     getEnv("PAYMENT_GATEWAY_API_KEY", ""),
				MerchantID: getEnv("PAYMENT_GATEWAY_MERCHANT_ID", ""),
				BaseURL:    getEnv("PAYMENT_GATEWAY_BASE_URL", "https://api.demo.convergepay.com/hosted-payments"),
				Currency:   getEnv("PAYMENT_GATEWAY_CURRENCY", "USD"),
				Timeout:    parseDuration(getEnv("PAYMENT_GATEWAY_TIMEOUT", "30s"), 30*time.Second),
			},
		},
		S3: S3Config{
			Region:          getEnv("AWS_REGION", "us-east-1"),
			Bucket:          getEnv("AWS_S3_BUCKET", "statelink-exports"),
			AccessKeyID:     getEnv("AWS_ACCESS_KEY_ID", ""),
			SecretAccessKey: getEnv("AWS_SECRET_ACCESS_KEY", ""),
			BaseURL:         getEnv("AWS_S3_BASE_URL", ""),
			ExportPrefix:    getEnv("AWS_S3_EXPORT_PREFIX", "exports"),
		},
		Scheduler: SchedulerConfig{
			Enabled:           parseBool(getEnv("SCHEDULER_ENABLED", "true")),
			FlagRefreshSpec:   getEnv("SCHEDULER_FLAG_REFRESH_SPEC", "0 3 * * *"),
			NightlyExportSpec: getEnv("SCHEDULER_NIGHTLY_EXPORT_SPEC", "30 3 * * *"),
			NewBusinessDays:   parseInt(getEnv("SCHEDULER_NEW_BUSINESS_DAYS", "30"), 30),
		},
		Admin: AdminConfig{
			DefaultUsername: getEnv("ADMIN_DEFAULT_USERNAME", "admin"),
			DefaultPassword: getEnv("ADMIN_DEFAULT_PASSWORD", ""),
			DefaultEmail:    getEnv("ADMIN_DEFAULT_EMAIL", "admin@statelink.com"),
		},
	}

	return config, nil
}

func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode,
	)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func parseDuration(s string, fallback time.Duration) time.Duration {
	duration, err := time.ParseDuration(s)
	if err != nil {
		log.Printf("Invalid duration %s, using default %s", s, fallback)
		return fallback
	}
	return duration
}

func parseInt(s string, fallback int) int {
	n, err := strconv.Atoi(s)
	if err != nil {
		log.Printf("Invalid integer %s, using default %d", s, fallback)
		return fallback
	}
	return n
}

func parseBool(s string) bool {
	b, err := strconv.ParseBool(s)
	if err != nil {
		return false
	}
	return b
}

func parseSlice(s string) []string {
	if s == "" {
		return []string{}
	}
	var result []string
	for i := 0; i < len(s); {
		end := i
		for end < len(s) && s[end] != ',' {
			end++
		}
		result = append(result, s[i:end])
		i = end + 1
	}
	return result
}
