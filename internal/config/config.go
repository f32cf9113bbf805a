// Package config reads service settings from the environment.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Server        ServerConfig
	Database      DatabaseConfig
	JWT           JWTConfig
	Redis         RedisConfig
	Kafka         KafkaConfig
	AWS           AWSConfig
	Notifications NotificationConfig
	Audit         AuditConfig
	Metrics       MetricsConfig
}

type ServerConfig struct {
	AppEnv         string
	Port           string
	GinMode        string
	AllowedOrigins []string
	RequestTimeout time.Duration
}

type DatabaseConfig struct {
	// Driver is "postgres" or "memory"
	Driver       string
	URL          string
	SecretARN    string
	MaxRetries   int
	InitialDelay time.Duration
}

type JWTConfig struct {
	Secret string
}

type RedisConfig struct {
	Enabled  bool
	Addr     string
	Password string
	DB       int
	TTL      time.Duration
}

type KafkaConfig struct {
	Enabled bool
	Brokers []string
	Topic   string
}

type AWSConfig struct {
	Region string
}

type NotificationConfig struct {
	// Enabled sends through SES and SNS; otherwise messages are only logged
	Enabled     bool
	FromEmail   string
	ReplyTo     string
	OpsMailbox  string
	QueueSize   int
	Workers     int
	MaxAttempts int
	BaseBackoff time.Duration
}

type AuditConfig struct {
	Bucket        string
	Prefix        string
	BatchSize     int
	FlushInterval time.Duration
}

type MetricsConfig struct {
	Enabled   bool
	Namespace string
	Interval  time.Duration
}

// Load reads the environment. Call godotenv.Load first to pick up a .env file.
func Load() (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			AppEnv:         getEnv("APP_ENV", "production"),
			Port:           getEnv("PORT", "8080"),
			GinMode:        getEnv("GIN_MODE", ""),
			AllowedOrigins: getEnvSlice("ALLOWED_ORIGINS", []string{"*"}),
			RequestTimeout: getEnvDuration("REQUEST_TIMEOUT", 10*time.Second),
		},
		Database: DatabaseConfig{
			Driver:       strings.ToLower(getEnv("STORE_DRIVER", "postgres")),
			URL:          getEnv("DATABASE_URL", ""),
			SecretARN:    getEnv("DB_SECRET_ARN", ""),
			MaxRetries:   getEnvInt("DB_MAX_RETRIES", 5),
			InitialDelay: getEnvDuration("DB_RETRY_DELAY", time.Second),
		},
		JWT: JWTConfig{
			Secret: getEnv("JWT_SECRET", ""),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", ""),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvInt("REDIS_DB", 0),
			TTL:      getEnvDuration("CACHE_TTL", 5*time.Minute),
		},
		Kafka: KafkaConfig{
			Brokers: getEnvSlice("KAFKA_BROKERS", nil),
			Topic:   getEnv("KAFKA_TOPIC", "booking.events"),
		},
		AWS: AWSConfig{
			Region: awsRegion(),
		},
		Notifications: NotificationConfig{
			Enabled:     getEnvBool("NOTIFICATIONS_ENABLED", false),
			FromEmail:   getEnv("SES_FROM_EMAIL", "noreply@expotoworld.com"),
			ReplyTo:     getEnv("SES_REPLY_TO", ""),
			OpsMailbox:  getEnv("OPS_MAILBOX", "operations@expotoworld.com"),
			QueueSize:   getEnvInt("NOTIFY_QUEUE_SIZE", 256),
			Workers:     getEnvInt("NOTIFY_WORKERS", 4),
			MaxAttempts: getEnvInt("NOTIFY_MAX_ATTEMPTS", 3),
			BaseBackoff: getEnvDuration("NOTIFY_BACKOFF", 500*time.Millisecond),
		},
		Audit: AuditConfig{
			Bucket:        getEnv("AUDIT_BUCKET", ""),
			Prefix:        getEnv("AUDIT_PREFIX", "audit/booking-service"),
			BatchSize:     getEnvInt("AUDIT_BATCH_SIZE", 100),
			FlushInterval: getEnvDuration("AUDIT_FLUSH_INTERVAL", time.Minute),
		},
		Metrics: MetricsConfig{
			Enabled:   getEnvBool("METRICS_ENABLED", false),
			Namespace: getEnv("METRIC_NAMESPACE", "ExpoToWorld/BookingService"),
			Interval:  getEnvDuration("METRICS_INTERVAL", time.Minute),
		},
	}
	cfg.Redis.Enabled = cfg.Redis.Addr != ""
	cfg.Kafka.Enabled = len(cfg.Kafka.Brokers) > 0

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks settings that would otherwise fail later at startup
func (c *Config) Validate() error {
	if c.JWT.Secret == "" {
		return fmt.Errorf("JWT_SECRET is required")
	}
	switch c.Database.Driver {
	case "memory":
	case "postgres":
		if c.Database.URL == "" && c.Database.SecretARN == "" {
			return fmt.Errorf("DATABASE_URL or DB_SECRET_ARN is required when STORE_DRIVER=postgres")
		}
	default:
		return fmt.Errorf("unknown STORE_DRIVER %q", c.Database.Driver)
	}
	if c.Notifications.MaxAttempts < 1 {
		return fmt.Errorf("NOTIFY_MAX_ATTEMPTS must be at least 1")
	}
	return nil
}

// IsDevelopment reports whether APP_ENV selects development mode
func (c *Config) IsDevelopment() bool {
	return c.Server.AppEnv == "development"
}

func awsRegion() string {
	if r := os.Getenv("AWS_REGION"); r != "" {
		return r
	}
	if r := os.Getenv("AWS_DEFAULT_REGION"); r != "" {
		return r
	}
	return "eu-central-1"
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if value, ok := os.LookupEnv(key); ok {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if value, ok := os.LookupEnv(key); ok {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if value, ok := os.LookupEnv(key); ok {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return fallback
}

func getEnvSlice(key string, fallback []string) []string {
	value, ok := os.LookupEnv(key)
	if !ok || strings.TrimSpace(value) == "" {
		return fallback
	}
	var out []string
	for _, v := range strings.Split(value, ",") {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}
