package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds runtime configuration. Environment variables win over the
// optional YAML file, which wins over defaults.
type Config struct {
	DatabaseURL        string   `yaml:"database_url"`
	JWTSecret          string   `yaml:"jwt_secret"`
	JWTIssuer          string   `yaml:"jwt_issuer"`
	AccessTTLSeconds   int64    `yaml:"access_ttl_seconds"`
	CorsOrigins        []string `yaml:"cors_origins"`
	HTTPAddr           string   `yaml:"http_addr"`
	GRPCAddr           string   `yaml:"grpc_addr"`
	RedisAddr          string   `yaml:"redis_addr"`
	RedisPassword      string   `yaml:"redis_password"`
	LoginMaxAttempts   int      `yaml:"login_max_attempts"`
	LoginWindowSeconds int      `yaml:"login_window_seconds"`
	MigrationsDir      string   `yaml:"migrations_dir"`
	SeedAdminEmail     string   `yaml:"seed_admin_email"`
	SeedAdminPassword  string   `yaml:"seed_admin_password"`
	LogDir             string   `yaml:"log_dir"`
	LogRetentionDays   int      `yaml:"log_retention_days"`
	MetricsDiskPath    string   `yaml:"metrics_disk_path"`
	HealthPollSeconds  int      `yaml:"health_poll_seconds"`
}

func defaults() Config {
	return Config{
		JWTIssuer:          "campus-access",
		AccessTTLSeconds:   1800,
		HTTPAddr:           ":8080",
		LoginMaxAttempts:   5,
		LoginWindowSeconds: 900,
		MigrationsDir:      "migrations",
		LogDir:             "storage/logs",
		LogRetentionDays:   7,
		MetricsDiskPath:    "/",
		HealthPollSeconds:  10,
	}
}

// Load reads path (or CONFIG_FILE when path is empty) and then the environment.
func Load(path string) (Config, error) {
	cfg := defaults()
	if path == "" {
		path = strings.TrimSpace(os.Getenv("CONFIG_FILE"))
	}
	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config file: %w", err)
		}
		if err := yaml.Unmarshal(raw, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config file %s: %w", path, err)
		}
	}

	setString(&cfg.DatabaseURL, "DATABASE_URL")
	setString(&cfg.JWTSecret, "JWT_SECRET")
	setString(&cfg.JWTIssuer, "JWT_ISSUER")
	setString(&cfg.GRPCAddr, "GRPC_ADDR")
	setString(&cfg.RedisAddr, "REDIS_ADDR")
	setString(&cfg.RedisPassword, "REDIS_PASSWORD")
	setString(&cfg.MigrationsDir, "MIGRATIONS_DIR")
	setString(&cfg.SeedAdminEmail, "SEED_ADMIN_EMAIL")
	setString(&cfg.SeedAdminPassword, "SEED_ADMIN_PASSWORD")
	setString(&cfg.LogDir, "LOG_DIR")
	setString(&cfg.MetricsDiskPath, "METRICS_DISK_PATH")
	if port := env("PORT"); port != "" {
		cfg.HTTPAddr = ":" + port
	}
	setString(&cfg.HTTPAddr, "HTTP_ADDR")
	if origins := env("CORS_ORIGINS"); origins != "" {
		cfg.CorsOrigins = parseCSV(origins)
	}

	var errs []error
	collect := func(err error) {
		if err != nil {
			errs = append(errs, err)
		}
	}
	ttl := int(cfg.AccessTTLSeconds)
	collect(setInt(&ttl, "ACCESS_TTL_SECONDS"))
	cfg.AccessTTLSeconds = int64(ttl)
	collect(setInt(&cfg.LoginMaxAttempts, "LOGIN_MAX_ATTEMPTS"))
	collect(setInt(&cfg.LoginWindowSeconds, "LOGIN_WINDOW_SECONDS"))
	collect(setInt(&cfg.LogRetentionDays, "LOG_RETENTION_DAYS"))
	collect(setInt(&cfg.HealthPollSeconds, "HEALTH_POLL_SECONDS"))
	if err := errors.Join(errs...); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate reports missing required settings. The database URL is only
// required when the Postgres store is in use.
func (c Config) Validate(needDatabase bool) error {
	var missing []string
	if needDatabase && c.DatabaseURL == "" {
		missing = append(missing, "DATABASE_URL")
	}
	if c.JWTSecret == "" {
		missing = append(missing, "JWT_SECRET")
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing required config: %s", strings.Join(missing, ", "))
	}
	if c.AccessTTLSeconds <= 0 {
		return errors.New("ACCESS_TTL_SECONDS must be positive")
	}
	return nil
}

func (c Config) AccessTTL() time.Duration {
	return time.Duration(c.AccessTTLSeconds) * time.Second
}

func (c Config) LoginWindow() time.Duration {
	return time.Duration(c.LoginWindowSeconds) * time.Second
}

func (c Config) HealthPollInterval() time.Duration {
	if c.HealthPollSeconds <= 0 {
		return 10 * time.Second
	}
	return time.Duration(c.HealthPollSeconds) * time.Second
}

func env(key string) string {
	return strings.TrimSpace(os.Getenv(key))
}

func setString(dst *string, key string) {
	if value := env(key); value != "" {
		*dst = value
	}
}

func setInt(dst *int, key string) error {
	value := env(key)
	if value == "" {
		return nil
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fmt.Errorf("%s: %q is not an integer", key, value)
	}
	*dst = parsed
	return nil
}

func parseCSV(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	items := make([]string, 0, len(parts))
	for _, part := range parts {
		value := strings.TrimSpace(part)
		if value != "" {
			items = append(items, value)
		}
	}
	return items
}
