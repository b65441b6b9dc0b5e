package config

import (
	"encoding/base64"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port           string
	Environment    string
	LogLevel       slog.Level
	AllowedOrigins []string

	DatabaseURL string
	RedisURL    string

	Casdoor CasdoorConfig
	Essay   EssayConfig
	Kafka   KafkaConfig

	// PINEncryptionKey is the base64 encoded 32-byte key sealing enrollment PINs
	PINEncryptionKey  string
	CertificateIssuer string
}

type CasdoorConfig struct {
	Endpoint     string
	ClientID     string
	ClientSecret string
	Cert         string
	Organization string
	Application  string
}

type EssayConfig struct {
	Provider string
	APIKey   string
	BaseURL  string
	Model    string
	Timeout  time.Duration
}

type KafkaConfig struct {
	Brokers []string
	Topic   string
}

// LoadConfig reads an optional .env file and then the process environment.
func LoadConfig() (*Config, error) {
	// .env is optional
	_ = godotenv.Load()

	timeout, err := getDuration("ESSAY_TIMEOUT", 30*time.Second)
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		Port:           getEnv("PORT", "8080"),
		Environment:    getEnv("ENVIRONMENT", "development"),
		LogLevel:       parseLogLevel(getEnv("LOG_LEVEL", "info")),
		AllowedOrigins: splitList(os.Getenv("CORS_ALLOWED_ORIGINS")),
		DatabaseURL:    databaseURL(),
		RedisURL:       os.Getenv("REDIS_URL"),
		Casdoor: CasdoorConfig{
			Endpoint:     os.Getenv("CASDOOR_ENDPOINT"),
			ClientID:     os.Getenv("CASDOOR_CLIENT_ID"),
			ClientSecret: os.Getenv("CASDOOR_CLIENT_SECRET"),
			Cert:         os.Getenv("CASDOOR_CERT"),
			Organization: os.Getenv("CASDOOR_ORGANIZATION"),
			Application:  os.Getenv("CASDOOR_APPLICATION"),
		},
		Essay: EssayConfig{
			Provider: strings.ToLower(getEnv("ESSAY_PROVIDER", "none")),
			APIKey:   os.Getenv("ESSAY_API_KEY"),
			BaseURL:  os.Getenv("ESSAY_BASE_URL"),
			Model:    os.Getenv("ESSAY_MODEL"),
			Timeout:  timeout,
		},
		Kafka: KafkaConfig{
			Brokers: splitList(os.Getenv("KAFKA_BROKERS")),
			Topic:   getEnv("KAFKA_TOPIC", "exam-events"),
		},
		PINEncryptionKey:  os.Getenv("PIN_ENCRYPTION_KEY"),
		CertificateIssuer: getEnv("CERTIFICATE_ISSUER", "CourseHub"),
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	switch c.Essay.Provider {
	case "openai", "gemini":
		if c.Essay.APIKey == "" {
			return fmt.Errorf("ESSAY_API_KEY is required for provider %q", c.Essay.Provider)
		}
	case "none":
	default:
		return fmt.Errorf("unknown ESSAY_PROVIDER %q", c.Essay.Provider)
	}

	if c.PINEncryptionKey == "" {
		return fmt.Errorf("PIN_ENCRYPTION_KEY is required")
	}
	if key, err := base64.StdEncoding.DecodeString(c.PINEncryptionKey); err != nil || len(key) != 32 {
		return fmt.Errorf("PIN_ENCRYPTION_KEY must be 32 bytes, base64 encoded")
	}
	return nil
}

func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// databaseURL prefers DATABASE_URL and otherwise assembles a DSN from DB_* parts.
func databaseURL() string {
	if url := os.Getenv("DATABASE_URL"); url != "" {
		return url
	}
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		getEnv("DB_HOST", "localhost"),
		getEnv("DB_PORT", "5432"),
		getEnv("DB_USER", "postgres"),
		getEnv("DB_PASSWORD", "postgres"),
		getEnv("DB_NAME", "exam_service"),
		getEnv("DB_SSLMODE", "disable"),
	)
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

// getDuration accepts Go duration strings or a plain number of seconds.
func getDuration(key string, fallback time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	if secs, err := strconv.Atoi(v); err == nil {
		return time.Duration(secs) * time.Second, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, v, err)
	}
	return d, nil
}

func parseLogLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
