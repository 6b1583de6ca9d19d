// Package config handles loading application configuration from environment
// variables. All config is centralized here so no other package reads env
// vars directly. Sensible defaults are provided for development.
package config

import (
	"fmt"
	"net"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-sql-driver/mysql"
)

// Config holds all application configuration. Populated from environment
// variables at startup. Passed to other packages via dependency injection.
type Config struct {
	// Env is the runtime environment: "development" or "production".
	Env string

	// Port is the HTTP listen port (default: 8000).
	Port int

	// BaseURL is the public-facing URL of the API.
	BaseURL string

	// CORSOrigins lists the frontend origins allowed to call the API.
	CORSOrigins []string

	// MigrationsPath is the directory holding golang-migrate SQL files.
	MigrationsPath string

	// TrustedProxies lists proxy CIDRs whose X-Forwarded-For is honoured.
	TrustedProxies []string

	// Database holds MariaDB connection settings.
	Database DatabaseConfig

	// Redis holds Redis connection settings.
	Redis RedisConfig

	// Auth holds registration and session settings.
	Auth AuthConfig

	// Mail holds outbound SMTP settings.
	Mail MailConfig
}

// DatabaseConfig holds MariaDB connection parameters. If DATABASE_URL is set,
// it takes precedence over the individual fields.
type DatabaseConfig struct {
	// Host is the MariaDB address in host:port format (default: "localhost:3306").
	Host string

	User     string
	Password string
	Name     string

	// dsnOverride is set when DATABASE_URL is provided, bypassing individual fields.
	dsnOverride string

	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

// DSN returns the go-sql-driver/mysql connection string. If DATABASE_URL was
// set, it is returned as-is. Otherwise the DSN is built with the driver's
// Config.FormatDSN() so special characters in passwords are escaped.
func (d DatabaseConfig) DSN() string {
	if d.dsnOverride != "" {
		return d.dsnOverride
	}
	cfg := mysql.NewConfig()
	cfg.User = d.User
	cfg.Passwd = d.Password
	cfg.Net = "tcp"
	cfg.Addr = ensurePort(d.Host, "3306")
	cfg.DBName = d.Name
	cfg.ParseTime = true
	cfg.MultiStatements = true
	return cfg.FormatDSN()
}

// ensurePort appends the default port if the host string doesn't include one.
func ensurePort(host, defaultPort string) string {
	_, _, err := net.SplitHostPort(host)
	if err != nil {
		return net.JoinHostPort(host, defaultPort)
	}
	return host
}

// RedisConfig holds Redis connection parameters.
type RedisConfig struct {
	// URL is the Redis connection URL (e.g., "redis://localhost:6379").
	URL string
}

// AuthConfig holds registration, OTP and session settings.
type AuthConfig struct {
	// SecretKey signs session tokens (HS256).
	SecretKey string

	// PendingTTL bounds an unverified registration and its token.
	PendingTTL time.Duration

	// SessionTTL bounds an authenticated session and its token.
	SessionTTL time.Duration

	// BcryptCost is the password hashing cost factor.
	BcryptCost int

	// OTPLength is the number of digits in a registration code.
	OTPLength int
}

// MailConfig holds outbound SMTP settings.
type MailConfig struct {
	Host        string
	Port        int
	Username    string
	Password    string
	FromAddress string
	FromName    string

	// Encryption is "starttls", "ssl", or "none".
	Encryption string

	// Timeout bounds a single delivery attempt, dial included.
	Timeout time.Duration
}

// Configured reports whether enough SMTP settings are present to send mail.
func (m MailConfig) Configured() bool {
	return m.Host != "" && m.FromAddress != ""
}

// Load reads configuration from environment variables with sensible defaults.
// Returns an error if required variables are missing.
func Load() (*Config, error) {
	cfg := &Config{
		Env:            getEnv("ENV", "development"),
		Port:           getEnvInt("PORT", 8000),
		BaseURL:        getEnv("BASE_URL", "http://localhost:8000"),
		CORSOrigins:    getEnvList("CORS_ORIGINS", []string{"http://localhost:5173"}),
		MigrationsPath: getEnv("MIGRATIONS_PATH", "db/migrations"),
		TrustedProxies: getEnvList("TRUSTED_PROXIES", nil),

		Database: DatabaseConfig{
			Host:            getEnv("DB_HOST", "localhost:3306"),
			User:            getEnv("DB_USER", "studyplan"),
			Password:        getEnv("DB_PASSWORD", "studyplan"),
			Name:            getEnv("DB_NAME", "studyplan"),
			dsnOverride:     getEnv("DATABASE_URL", ""),
			MaxOpenConns:    getEnvInt("DB_MAX_OPEN_CONNS", 25),
			MaxIdleConns:    getEnvInt("DB_MAX_IDLE_CONNS", 5),
			ConnMaxLifetime: getEnvDuration("DB_CONN_MAX_LIFETIME", 5*time.Minute),
		},

		Redis: RedisConfig{
			URL: getEnv("REDIS_URL", "redis://localhost:6379"),
		},

		Auth: AuthConfig{
			SecretKey:  getEnv("SECRET_KEY", ""),
			PendingTTL: getEnvDuration("PENDING_TTL", 10*time.Minute),
			SessionTTL: getEnvDuration("SESSION_TTL", 120*time.Minute),
			BcryptCost: getEnvInt("BCRYPT_COST", 12),
			OTPLength:  getEnvInt("OTP_LENGTH", 6),
		},

		Mail: MailConfig{
			Host:        getEnv("SMTP_HOST", ""),
			Port:        getEnvInt("SMTP_PORT", 587),
			Username:    getEnv("SMTP_USERNAME", getEnv("MAILID", "")),
			Password:    getEnv("SMTP_PASSWORD", getEnv("MAILPASS", "")),
			FromAddress: getEnv("SMTP_FROM_ADDRESS", getEnv("MAILID", "")),
			FromName:    getEnv("SMTP_FROM_NAME", "StudyPlan"),
			Encryption:  strings.ToLower(getEnv("SMTP_ENCRYPTION", "starttls")),
			Timeout:     getEnvDuration("SMTP_TIMEOUT", 15*time.Second),
		},
	}

	if cfg.Auth.OTPLength < 4 || cfg.Auth.OTPLength > 10 {
		return nil, fmt.Errorf("OTP_LENGTH must be between 4 and 10, got %d", cfg.Auth.OTPLength)
	}
	if cfg.Auth.PendingTTL <= 0 || cfg.Auth.SessionTTL <= 0 {
		return nil, fmt.Errorf("PENDING_TTL and SESSION_TTL must be positive")
	}

	// Case-insensitive check catches "Production", "prod", etc.
	if cfg.IsProduction() {
		if cfg.Auth.SecretKey == "" {
			return nil, fmt.Errorf("SECRET_KEY is required in production")
		}
		if len(cfg.Auth.SecretKey) < 32 {
			return nil, fmt.Errorf("SECRET_KEY must be at least 32 characters in production")
		}
		if !cfg.Mail.Configured() {
			return nil, fmt.Errorf("SMTP_HOST and SMTP_FROM_ADDRESS are required in production")
		}
	}

	// Dev-only default secret so local dev works without .env.
	if cfg.Auth.SecretKey == "" {
		cfg.Auth.SecretKey = "dev-secret-key-do-not-use-in-production!!"
	}

	return cfg, nil
}

// IsDevelopment returns true if running in development mode.
func (c *Config) IsDevelopment() bool {
	env := strings.ToLower(c.Env)
	return env == "development" || env == "dev"
}

// IsProduction returns true if running in production mode.
func (c *Config) IsProduction() bool {
	env := strings.ToLower(c.Env)
	return env == "production" || env == "prod"
}

// --- Helper functions for reading environment variables ---

// getEnv reads a string env var or returns the default.
func getEnv(key, defaultVal string) string {
	if val, ok := os.LookupEnv(key); ok {
		return val
	}
	return defaultVal
}

// getEnvInt reads an integer env var or returns the default.
func getEnvInt(key string, defaultVal int) int {
	if val, ok := os.LookupEnv(key); ok {
		if i, err := strconv.Atoi(val); err == nil {
			return i
		}
	}
	return defaultVal
}

// getEnvDuration reads a duration env var (e.g., "10m") or returns the default.
func getEnvDuration(key string, defaultVal time.Duration) time.Duration {
	if val, ok := os.LookupEnv(key); ok {
		if d, err := time.ParseDuration(val); err == nil {
			return d
		}
	}
	return defaultVal
}

// getEnvList reads a comma-separated env var, dropping empty items.
func getEnvList(key string, defaultVal []string) []string {
	val, ok := os.LookupEnv(key)
	if !ok {
		return defaultVal
	}
	var out []string
	for _, item := range strings.Split(val, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
