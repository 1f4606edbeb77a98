package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	StorePostgres = "postgres"
	StoreMemory   = "memory"
)

type Config struct {
	App     AppConfig
	Log     LogConfig
	Server  ServerConfig
	Store   StoreConfig
	DB      PostgresConfig
	Catalog CatalogConfig
	Kafka   KafkaConfig
}

type AppConfig struct {
	Name string
	Env  string
}

type LogConfig struct {
	Level string
}

type ServerConfig struct {
	Host              string
	Port              int
	ShutdownTimeoutMS int
	CORSAllowOrigins  []string
}

type StoreConfig struct {
	Driver string
}

type PostgresConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
	SSLMode  string
	MaxConns int
}

type CatalogConfig struct {
	BaseURL   string
	TimeoutMS int
}

type KafkaConfig struct {
	Enabled       bool
	Brokers       []string
	EventsTopic   string
	ConsumerGroup string
}

// Load đọc .env (nếu có) rồi environment variables, sau đó validate
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		App: AppConfig{
			Name: getEnv("APP_NAME", "book_orders"),
			Env:  getEnv("APP_ENV", "local"),
		},
		Log: LogConfig{
			Level: getEnv("LOG_LEVEL", "info"),
		},
		Server: ServerConfig{
			Host:              getEnv("HTTP_HOST", "0.0.0.0"),
			Port:              getEnvAsInt("HTTP_PORT", 3001),
			ShutdownTimeoutMS: getEnvAsInt("HTTP_SHUTDOWN_TIMEOUT_MS", 10000),
			CORSAllowOrigins:  splitAndTrim(getEnv("CORS_ALLOW_ORIGINS", "*")),
		},
		Store: StoreConfig{
			Driver: strings.ToLower(getEnv("ORDER_STORE", StorePostgres)),
		},
		DB: PostgresConfig{
			Host:     getEnv("POSTGRES_HOST", "localhost"),
			Port:     getEnvAsInt("POSTGRES_PORT", 5432),
			User:     getEnv("POSTGRES_USER", "postgres"),
			Password: getEnv("POSTGRES_PASSWORD", ""),
			DBName:   getEnv("POSTGRES_DB", "postgres"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
			MaxConns: getEnvAsInt("DB_MAX_CONNS", 10),
		},
		Catalog: CatalogConfig{
			BaseURL:   getEnv("CATALOG_BASE_URL", "http://localhost:3000"),
			TimeoutMS: getEnvAsInt("CATALOG_TIMEOUT_MS", 5000),
		},
		Kafka: KafkaConfig{
			Enabled:       getEnvAsBool("KAFKA_ENABLED", false),
			Brokers:       splitAndTrim(getEnv("KAFKA_BOOTSTRAP_SERVERS", "localhost:9092")),
			EventsTopic:   getEnv("KAFKA_ORDER_EVENTS_TOPIC", "book_orders.order_created"),
			ConsumerGroup: getEnv("KAFKA_CONSUMER_GROUP", "book-orders-audit"),
		},
	}

	return cfg, cfg.validate()
}

func (s ServerConfig) Address() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

func (s ServerConfig) ShutdownTimeout() time.Duration {
	return time.Duration(s.ShutdownTimeoutMS) * time.Millisecond
}

// DSN build connection string, user/password được escape
func (p PostgresConfig) DSN() string {
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(p.User, p.Password),
		Host:     fmt.Sprintf("%s:%d", p.Host, p.Port),
		Path:     "/" + p.DBName,
		RawQuery: "sslmode=" + url.QueryEscape(p.SSLMode),
	}
	return u.String()
}

func (c CatalogConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutMS) * time.Millisecond
}

/* ================= helpers ================= */

func (c *Config) validate() error {
	if c.Server.Port <= 0 {
		return fmt.Errorf("HTTP_PORT is invalid")
	}
	if c.Server.ShutdownTimeoutMS <= 0 {
		return fmt.Errorf("HTTP_SHUTDOWN_TIMEOUT_MS must be positive")
	}

	switch c.Store.Driver {
	case StorePostgres:
		if c.DB.Host == "" || c.DB.User == "" || c.DB.DBName == "" {
			return fmt.Errorf("database config is incomplete")
		}
	case StoreMemory:
		// memory store không cần config database
	default:
		return fmt.Errorf("ORDER_STORE %q is not supported", c.Store.Driver)
	}

	u, err := url.Parse(c.Catalog.BaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("CATALOG_BASE_URL %q is not an absolute url", c.Catalog.BaseURL)
	}
	if c.Catalog.TimeoutMS <= 0 {
		return fmt.Errorf("CATALOG_TIMEOUT_MS must be positive")
	}

	if c.Kafka.Enabled {
		if len(c.Kafka.Brokers) == 0 {
			return fmt.Errorf("kafka brokers is empty")
		}
		if c.Kafka.EventsTopic == "" {
			return fmt.Errorf("KAFKA_ORDER_EVENTS_TOPIC is empty")
		}
	}
	return nil
}

func getEnv(key, defaultVal string) string {
	if v, ok := os.LookupEnv(key); ok {
		return v
	}
	return defaultVal
}

func getEnvAsInt(key string, defaultVal int) int {
	if v, ok := os.LookupEnv(key); ok {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return defaultVal
}

func getEnvAsBool(key string, defaultVal bool) bool {
	if v, ok := os.LookupEnv(key); ok {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return defaultVal
}

func splitAndTrim(raw string) []string {
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if val := strings.TrimSpace(p); val != "" {
			out = append(out, val)
		}
	}
	return out
}
