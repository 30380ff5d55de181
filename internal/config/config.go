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
	MinTopSellers = 2
	MaxTopSellers = 10
)

type Config struct {
	Server    ServerConfig
	Source    SourceConfig
	Dashboard DashboardConfig
	Logger    LoggerConfig
	Security  SecurityConfig
}

type ServerConfig struct {
	Host            string
	Port            int
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration
}

// SourceConfig points at the upstream product-sales endpoint.
type SourceConfig struct {
	URL     string
	Timeout time.Duration
}

type DashboardConfig struct {
	Title          string
	DefaultTopN    int
	CurrencyPrefix string
}

type LoggerConfig struct {
	Level  string
	Format string
}

type SecurityConfig struct {
	EnableRateLimit   bool
	EnableCompression bool
	RateLimitRPS      int
	RateLimitBurst    int
	AllowedOrigins    []string
	TrustedProxies    []string
}

// Load reads a .env file when one is present, then the process environment.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Server: ServerConfig{
			Host:            getEnvString("SERVER_HOST", "localhost"),
			Port:            getEnvInt("SERVER_PORT", 8084),
			ReadTimeout:     getEnvDuration("SERVER_READ_TIMEOUT", 10*time.Second),
			WriteTimeout:    getEnvDuration("SERVER_WRITE_TIMEOUT", 60*time.Second),
			IdleTimeout:     getEnvDuration("SERVER_IDLE_TIMEOUT", 60*time.Second),
			ShutdownTimeout: getEnvDuration("SERVER_SHUTDOWN_TIMEOUT", 30*time.Second),
		},
		Source: SourceConfig{
			URL:     getEnvString("SOURCE_URL", "https://labdados.com/produtos"),
			Timeout: getEnvDuration("SOURCE_TIMEOUT", 30*time.Second),
		},
		Dashboard: DashboardConfig{
			Title:          getEnvString("DASHBOARD_TITLE", "Sales Dashboard"),
			DefaultTopN:    getEnvInt("DASHBOARD_DEFAULT_TOP_N", 5),
			CurrencyPrefix: getEnvString("DASHBOARD_CURRENCY_PREFIX", "R$"),
		},
		Logger: LoggerConfig{
			Level:  getEnvString("LOG_LEVEL", "info"),
			Format: getEnvString("LOG_FORMAT", "json"),
		},
		Security: SecurityConfig{
			EnableRateLimit:   getEnvBool("SECURITY_RATE_LIMIT_ENABLED", true),
			EnableCompression: getEnvBool("SECURITY_COMPRESSION_ENABLED", true),
			RateLimitRPS:      getEnvInt("SECURITY_RATE_LIMIT_RPS", 20),
			RateLimitBurst:    getEnvInt("SECURITY_RATE_LIMIT_BURST", 10),
			AllowedOrigins:    getEnvStringSlice("SECURITY_ALLOWED_ORIGINS", []string{"http://localhost:8084"}),
			TrustedProxies:    getEnvStringSlice("SECURITY_TRUSTED_PROXIES", []string{"127.0.0.1"}),
		},
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

func (c *Config) validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("server port must be between 1 and 65535, got %d", c.Server.Port)
	}

	if c.Server.ReadTimeout <= 0 {
		return fmt.Errorf("server read timeout must be positive")
	}

	if c.Server.WriteTimeout <= 0 {
		return fmt.Errorf("server write timeout must be positive")
	}

	if c.Source.URL == "" {
		return fmt.Errorf("source URL cannot be empty")
	}

	u, err := url.Parse(c.Source.URL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("source URL %q must be an absolute http(s) URL", c.Source.URL)
	}

	if c.Source.Timeout <= 0 {
		return fmt.Errorf("source timeout must be positive")
	}

	if c.Dashboard.DefaultTopN < MinTopSellers || c.Dashboard.DefaultTopN > MaxTopSellers {
		return fmt.Errorf("default top-N must be between %d and %d, got %d", MinTopSellers, MaxTopSellers, c.Dashboard.DefaultTopN)
	}

	validLogLevels := []string{"debug", "info", "warn", "error"}
	if !contains(validLogLevels, c.Logger.Level) {
		return fmt.Errorf("invalid log level %q, must be one of: %s", c.Logger.Level, strings.Join(validLogLevels, ", "))
	}

	validLogFormats := []string{"json", "text"}
	if !contains(validLogFormats, c.Logger.Format) {
		return fmt.Errorf("invalid log format %q, must be one of: %s", c.Logger.Format, strings.Join(validLogFormats, ", "))
	}

	if c.Security.RateLimitRPS <= 0 {
		return fmt.Errorf("rate limit RPS must be positive")
	}

	if c.Security.RateLimitBurst <= 0 {
		return fmt.Errorf("rate limit burst must be positive")
	}

	return nil
}

func getEnvString(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

func getEnvStringSlice(key string, defaultValue []string) []string {
	if value := os.Getenv(key); value != "" {
		parts := strings.Split(value, ",")
		for i := range parts {
			parts[i] = strings.TrimSpace(parts[i])
		}
		return parts
	}
	return defaultValue
}

func contains(slice []string, item string) bool {
	for _, s := range slice {
		if s == item {
			return true
		}
	}
	return false
}

func (c *Config) Address() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}

// ClampTopN pins n into the range the sellers control accepts.
func ClampTopN(n int) int {
	return min(max(n, MinTopSellers), MaxTopSellers)
}
