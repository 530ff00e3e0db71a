package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"
)

// Config holds all configuration for the application
type Config struct {
	Server     ServerConfig
	Database   DatabaseConfig
	JWT        JWTConfig
	CORS       CORSConfig
	RateLimit  RateLimitConfig
	Security   SecurityConfig
	AutoAssign AutoAssignConfig
	Redis      RedisConfig
	Email      EmailConfig
	Push       PushConfig
	Storage    StorageConfig
	Location   LocationConfig
}

// ServerConfig holds server-related configuration
type ServerConfig struct {
	Port        string
	Environment string // development, staging, production
	LogLevel    string // debug, info, warn, error
	PublicURL   string // Opened from push notifications
}

// DatabaseConfig holds database-related configuration
type DatabaseConfig struct {
	URL                string
	MaxConnections     int
	MaxIdleConnections int
	ConnMaxLifetime    time.Duration
	AutoMigrate        bool
}

// JWTConfig holds JWT-related configuration
type JWTConfig struct {
	Secret             string
	RefreshSecret      string
	AccessTokenExpiry  time.Duration
	RefreshTokenExpiry time.Duration
}

// CORSConfig holds CORS-related configuration
type CORSConfig struct {
	AllowedOrigins []string
	AllowedMethods []string
	AllowedHeaders []string
}

// RateLimitConfig holds per-IP limits for the public auth routes
type RateLimitConfig struct {
	RequestsPerMinute int
	Burst             int
}

// SecurityConfig holds security-related configuration
type SecurityConfig struct {
	BcryptCost       int
	EnableRequestLog bool
}

// AutoAssignConfig controls the stale-booking sweep
type AutoAssignConfig struct {
	Enabled       bool
	Schedule      string        // cron spec with seconds, e.g. "*/30 * * * * *"
	StaleAfter    time.Duration // PENDING bookings older than this are swept
	RetryWaiting  bool          // also sweep WAITING bookings
	BatchSize     int
	LockTTL       time.Duration
	DispatchAsync bool
}

// RedisConfig holds the optional Redis connection used for the sweep lock
type RedisConfig struct {
	URL string
}

// EmailConfig holds EmailJS configuration
type EmailConfig struct {
	Enabled     bool
	APIURL      string
	ServiceID   string
	TemplateID  string
	PublicKey   string
	AccessToken string
}

// PushConfig holds OneSignal configuration
type PushConfig struct {
	Enabled    bool
	APIURL     string
	AppID      string
	RESTAPIKey string
}

// StorageConfig holds Cloudinary configuration for portfolio photos
type StorageConfig struct {
	CloudinaryURL string
	Folder        string
	MaxUploadMB   int
}

// LocationConfig points at optional extra area alias rules
type LocationConfig struct {
	AliasFile    string
	ReplaceRules bool
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if it exists (for local development)
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	config := &Config{
		Server: ServerConfig{
			Port:        getEnv("PORT", "8080"),
			Environment: getEnv("ENVIRONMENT", "development"),
			LogLevel:    getEnv("LOG_LEVEL", "info"),
			PublicURL:   getEnv("PUBLIC_APP_URL", ""),
		},
		Database: DatabaseConfig{
			URL:                getEnv("DATABASE_URL", ""),
			MaxConnections:     getEnvAsInt("DATABASE_MAX_CONNECTIONS", 10),
			MaxIdleConnections: getEnvAsInt("DATABASE_MAX_IDLE_CONNECTIONS", 5),
			ConnMaxLifetime:    time.Duration(getEnvAsInt("DATABASE_CONN_MAX_LIFETIME", 300)) * time.Second,
			AutoMigrate:        getEnvAsBool("DATABASE_AUTO_MIGRATE", true),
		},
		JWT: JWTConfig{
			Secret:             getEnv("JWT_SECRET", ""),
			RefreshSecret:      getEnv("JWT_REFRESH_SECRET", ""),
			AccessTokenExpiry:  time.Duration(getEnvAsInt("JWT_ACCESS_TOKEN_EXPIRY", 3600)) * time.Second,
			RefreshTokenExpiry: time.Duration(getEnvAsInt("JWT_REFRESH_TOKEN_EXPIRY", 604800)) * time.Second,
		},
		CORS: CORSConfig{
			AllowedOrigins: getEnvAsSlice("CORS_ALLOWED_ORIGINS", []string{"*"}),
			AllowedMethods: getEnvAsSlice("CORS_ALLOWED_METHODS", []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}),
			AllowedHeaders: getEnvAsSlice("CORS_ALLOWED_HEADERS", []string{"Content-Type", "Authorization"}),
		},
		RateLimit: RateLimitConfig{
			RequestsPerMinute: getEnvAsInt("AUTH_RATE_LIMIT_PER_MINUTE", 20),
			Burst:             getEnvAsInt("AUTH_RATE_LIMIT_BURST", 5),
		},
		Security: SecurityConfig{
			BcryptCost:       getEnvAsInt("BCRYPT_COST", 12),
			EnableRequestLog: getEnvAsBool("ENABLE_REQUEST_LOGGING", true),
		},
		AutoAssign: AutoAssignConfig{
			Enabled:       getEnvAsBool("AUTO_ASSIGN_ENABLED", true),
			Schedule:      getEnv("AUTO_ASSIGN_SCHEDULE", "*/30 * * * * *"),
			StaleAfter:    getEnvAsDuration("AUTO_ASSIGN_STALE_AFTER", 2*time.Minute),
			RetryWaiting:  getEnvAsBool("AUTO_ASSIGN_RETRY_WAITING", true),
			BatchSize:     getEnvAsInt("AUTO_ASSIGN_BATCH_SIZE", 100),
			LockTTL:       getEnvAsDuration("AUTO_ASSIGN_LOCK_TTL", 25*time.Second),
			DispatchAsync: getEnvAsBool("AUTO_ASSIGN_DISPATCH_ASYNC", false),
		},
		Redis: RedisConfig{
			URL: getEnv("REDIS_URL", ""),
		},
		Email: EmailConfig{
			Enabled:     getEnvAsBool("EMAIL_ENABLED", false),
			APIURL:      getEnv("EMAILJS_API_URL", ""),
			ServiceID:   getEnv("EMAILJS_SERVICE_ID", ""),
			TemplateID:  getEnv("EMAILJS_TEMPLATE_ID", ""),
			PublicKey:   getEnv("EMAILJS_PUBLIC_KEY", ""),
			AccessToken: getEnv("EMAILJS_ACCESS_TOKEN", ""),
		},
		Push: PushConfig{
			Enabled:    getEnvAsBool("PUSH_ENABLED", false),
			APIURL:     getEnv("ONESIGNAL_API_URL", ""),
			AppID:      getEnv("ONESIGNAL_APP_ID", ""),
			RESTAPIKey: getEnv("ONESIGNAL_REST_API_KEY", ""),
		},
		Storage: StorageConfig{
			CloudinaryURL: getEnv("CLOUDINARY_URL", ""),
			Folder:        getEnv("CLOUDINARY_FOLDER", "localbookr/providers"),
			MaxUploadMB:   getEnvAsInt("MAX_UPLOAD_MB", 5),
		},
		Location: LocationConfig{
			AliasFile:    getEnv("AREA_ALIASES_FILE", ""),
			ReplaceRules: getEnvAsBool("AREA_ALIASES_REPLACE", false),
		},
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Database.URL == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}

	if c.JWT.Secret == "" {
		return fmt.Errorf("JWT_SECRET is required")
	}

	if c.JWT.RefreshSecret == "" {
		return fmt.Errorf("JWT_REFRESH_SECRET is required")
	}

	if c.AutoAssign.Enabled {
		parser := cron.NewParser(cron.Second | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)
		if _, err := parser.Parse(c.AutoAssign.Schedule); err != nil {
			return fmt.Errorf("invalid AUTO_ASSIGN_SCHEDULE %q: %w", c.AutoAssign.Schedule, err)
		}
		if c.AutoAssign.StaleAfter <= 0 {
			return fmt.Errorf("AUTO_ASSIGN_STALE_AFTER must be positive")
		}
	}

	if c.Email.Enabled && (c.Email.ServiceID == "" || c.Email.TemplateID == "" || c.Email.PublicKey == "") {
		return fmt.Errorf("EMAILJS_SERVICE_ID, EMAILJS_TEMPLATE_ID and EMAILJS_PUBLIC_KEY are required when EMAIL_ENABLED=true")
	}

	if c.Push.Enabled && (c.Push.AppID == "" || c.Push.RESTAPIKey == "") {
		return fmt.Errorf("ONESIGNAL_APP_ID and ONESIGNAL_REST_API_KEY are required when PUSH_ENABLED=true")
	}

	if c.RateLimit.RequestsPerMinute <= 0 || c.RateLimit.Burst <= 0 {
		return fmt.Errorf("auth rate limit values must be positive")
	}

	return nil
}

// IsProduction reports whether the server runs in production mode
func (c *Config) IsProduction() bool {
	return c.Server.Environment == "production"
}

// Helper functions to get environment variables

func getEnv(key string, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		log.Printf("Invalid integer value for %s, using default: %d", key, defaultValue)
		return defaultValue
	}
	return value
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		log.Printf("Invalid boolean value for %s, using default: %t", key, defaultValue)
		return defaultValue
	}
	return value
}

// getEnvAsDuration accepts Go duration strings ("90s", "2m") or plain seconds
func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	if d, err := time.ParseDuration(valueStr); err == nil {
		return d
	}
	if secs, err := strconv.Atoi(valueStr); err == nil {
		return time.Duration(secs) * time.Second
	}
	log.Printf("Invalid duration value for %s, using default: %s", key, defaultValue)
	return defaultValue
}

func getEnvAsSlice(key string, defaultValue []string) []string {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	var result []string
	for _, v := range strings.Split(valueStr, ",") {
		if trimmed := strings.TrimSpace(v); trimmed != "" {
			result = append(result, trimmed)
		}
	}
	if len(result) == 0 {
		return defaultValue
	}
	return result
}
