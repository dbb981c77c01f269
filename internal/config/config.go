package config

import (
	"fmt"
	"os"
	"strconv"
)

// Config holds all application configuration
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Redis    RedisConfig
	Vault    VaultConfig
	Merchant MerchantConfig
	Fraud    FraudConfig
	Payment  PaymentConfig
	Events   EventsConfig
	Secrets  SecretsConfig
	Logger   LoggerConfig
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Port        int
	Host        string
	MetricsPort int

	// Per-client request budget enforced at the router
	RateLimitRPS   float64
	RateLimitBurst int
}

// DatabaseConfig holds PostgreSQL configuration
type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Database string
	SSLMode  string
	MaxConns int32
	MinConns int32
}

// URL builds a pgx connection string
func (c DatabaseConfig) URL() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.User, c.Password, c.Host, c.Port, c.Database, c.SSLMode)
}

// RedisConfig holds the velocity counter store configuration
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// VaultConfig holds card tokenization vault configuration
type VaultConfig struct {
	Address   string
	Token     string
	MountPath string
}

// MerchantConfig holds the merchant directory client configuration
type MerchantConfig struct {
	BaseURL        string
	TimeoutSeconds int
}

// FraudConfig holds fraud engine thresholds and deployment mode
type FraudConfig struct {
	// RemoteURL, when set, routes fraud checks to a separate scoring
	// service instead of the in-process engine
	RemoteURL string

	// ClientFailOpen applies only to the remote client: degrade
	// unavailability to MANUAL_REVIEW instead of erroring
	ClientFailOpen bool

	ColdStartLimit  float64
	BlockThreshold  float64
	ReviewThreshold float64
	ScalerPath      string
}

// PaymentConfig holds orchestrator business policy
type PaymentConfig struct {
	AuthCeiling float64

	// FraudFailOpen: false fails transactions closed when the engine is
	// unreachable, true continues under manual review
	FraudFailOpen bool
}

// EventsConfig holds Pub/Sub publishing configuration
type EventsConfig struct {
	ProjectID string
	TopicID   string
	Enabled   bool
}

// SecretsConfig holds AWS Secrets Manager bootstrap configuration. When
// DatabaseSecretID is set, database credentials come from Secrets Manager
// instead of DB_* environment variables.
type SecretsConfig struct {
	Region           string
	Endpoint         string
	DatabaseSecretID string
}

// LoggerConfig holds logging configuration
type LoggerConfig struct {
	Level       string // debug, info, warn, error
	Development bool
}

// LoadFromEnv loads configuration from environment variables
func LoadFromEnv() (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Port:        getEnvAsInt("SERVER_PORT", 8080),
			Host:        getEnv("SERVER_HOST", "0.0.0.0"),
			MetricsPort: getEnvAsInt("METRICS_PORT", 9090),

			RateLimitRPS:   getEnvAsFloat("SERVER_RATE_LIMIT_RPS", 100),
			RateLimitBurst: getEnvAsInt("SERVER_RATE_LIMIT_BURST", 200),
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnvAsInt("DB_PORT", 5432),
			User:     getEnv("DB_USER", "payments"),
			Password: getEnv("DB_PASSWORD", ""),
			Database: getEnv("DB_NAME", "payments"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
			MaxConns: int32(getEnvAsInt("DB_MAX_CONNS", 25)),
			MinConns: int32(getEnvAsInt("DB_MIN_CONNS", 5)),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", "localhost:6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
		},
		Vault: VaultConfig{
			Address:   getEnv("VAULT_ADDR", "http://localhost:8200"),
			Token:     getEnv("VAULT_TOKEN", ""),
			MountPath: getEnv("VAULT_MOUNT_PATH", "secret"),
		},
		Merchant: MerchantConfig{
			BaseURL:        getEnv("MERCHANT_SERVICE_URL", "http://localhost:8081"),
			TimeoutSeconds: getEnvAsInt("MERCHANT_TIMEOUT_SECONDS", 10),
		},
		Fraud: FraudConfig{
			RemoteURL:       getEnv("FRAUD_SERVICE_URL", ""),
			ClientFailOpen:  getEnvAsBool("FRAUD_CLIENT_FAIL_OPEN", true),
			ColdStartLimit:  getEnvAsFloat("FRAUD_COLD_START_LIMIT", 200),
			BlockThreshold:  getEnvAsFloat("FRAUD_BLOCK_THRESHOLD", 0.8),
			ReviewThreshold: getEnvAsFloat("FRAUD_REVIEW_THRESHOLD", 0.3),
			ScalerPath:      getEnv("FRAUD_SCALER_PATH", ""),
		},
		Payment: PaymentConfig{
			AuthCeiling:   getEnvAsFloat("PAYMENT_AUTH_CEILING", 10000),
			FraudFailOpen: getEnvAsBool("PAYMENT_FRAUD_FAIL_OPEN", false),
		},
		Events: EventsConfig{
			ProjectID: getEnv("PUBSUB_PROJECT_ID", ""),
			TopicID:   getEnv("PUBSUB_TOPIC_ID", "transaction-events"),
			Enabled:   getEnvAsBool("PUBSUB_ENABLED", false),
		},
		Secrets: SecretsConfig{
			Region:           getEnv("AWS_REGION", "us-east-1"),
			Endpoint:         getEnv("AWS_SECRETS_ENDPOINT", ""),
			DatabaseSecretID: getEnv("DB_CREDENTIALS_SECRET_ID", ""),
		},
		Logger: LoggerConfig{
			Level:       getEnv("LOG_LEVEL", "info"),
			Development: getEnvAsBool("LOG_DEVELOPMENT", false),
		},
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.Fraud.BlockThreshold <= c.Fraud.ReviewThreshold {
		return fmt.Errorf("FRAUD_BLOCK_THRESHOLD (%.2f) must exceed FRAUD_REVIEW_THRESHOLD (%.2f)",
			c.Fraud.BlockThreshold, c.Fraud.ReviewThreshold)
	}
	if c.Payment.AuthCeiling <= 0 {
		return fmt.Errorf("PAYMENT_AUTH_CEILING must be positive, got %.2f", c.Payment.AuthCeiling)
	}
	if c.Events.Enabled && c.Events.ProjectID == "" {
		return fmt.Errorf("PUBSUB_PROJECT_ID is required when PUBSUB_ENABLED is true")
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value, exists := os.LookupEnv(key); exists {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	if value, exists := os.LookupEnv(key); exists {
		if parsed, err := strconv.ParseFloat(value, 64); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value, exists := os.LookupEnv(key); exists {
		if parsed, err := strconv.ParseBool(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}
