package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

const devJWTSecret = "dev_secret"

// Config is the process configuration read from the environment and an
// optional .env file.
type Config struct {
	Env       string
	Port      int
	APIPrefix string

	Database      DatabaseConfig
	Redis         RedisConfig
	JWT           JWTConfig
	CORS          CORSConfig
	Log           LogConfig
	Mentors       MentorsConfig
	Notices       NoticesConfig
	Webhook       WebhookConfig
	Reporter      ReporterConfig
	Notifications NotificationsConfig
}

type DatabaseConfig struct {
	Driver       string
	URL          string
	Host         string
	Port         int
	User         string
	Password     string
	Name         string
	SSLMode      string
	MaxOpenConns int
	MaxIdleConns int
	AutoMigrate  bool
}

// RedisConfig enables the mentor capacity cache.
type RedisConfig struct {
	Enabled  bool
	Host     string
	Port     int
	Password string
	DB       int
}

// JWTConfig signs and verifies access tokens. An empty Audience skips the aud check.
type JWTConfig struct {
	Secret     string
	Expiration time.Duration
	Issuer     string
	Audience   []string
}

type CORSConfig struct {
	AllowedOrigins []string
}

type LogConfig struct {
	Level  string
	Format string
}

// MentorsConfig tunes the mentor capacity listing.
type MentorsConfig struct {
	DefaultMaxMentees int
	CacheTTL          time.Duration
	LoadMoreBatch     int
}

// NoticesConfig controls how long review banners stay visible.
type NoticesConfig struct {
	SuccessTTL time.Duration
	ErrorTTL   time.Duration
}

// WebhookConfig points at the chat channel receiving summaries.
type WebhookConfig struct {
	URL      string
	Username string
	Timeout  time.Duration
}

// ReporterConfig configures the daily attendance reporters.
type ReporterConfig struct {
	GoalsAt         string
	ReflectionsAt   string
	UTCOffset       time.Duration
	AbsentNameLimit int
}

// NotificationsConfig toggles webhook posts for mentor request events.
type NotificationsConfig struct {
	Enabled    bool
	Workers    int
	MaxRetries int
	RetryDelay time.Duration
}

// Load reads the configuration. Unparsable durations and non-positive
// batch sizes fall back to their defaults instead of failing.
func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
			return nil, err
		}
	}

	cfg := &Config{}

	cfg.Env = v.GetString("ENV")
	cfg.Port = v.GetInt("PORT")
	cfg.APIPrefix = v.GetString("API_PREFIX")

	cfg.Database = DatabaseConfig{
		Driver:       v.GetString("DB_DRIVER"),
		URL:          v.GetString("DATABASE_URL"),
		Host:         v.GetString("DB_HOST"),
		Port:         v.GetInt("DB_PORT"),
		User:         v.GetString("DB_USER"),
		Password:     v.GetString("DB_PASSWORD"),
		Name:         v.GetString("DB_NAME"),
		SSLMode:      v.GetString("DB_SSL_MODE"),
		MaxOpenConns: v.GetInt("DB_MAX_OPEN_CONNS"),
		MaxIdleConns: v.GetInt("DB_MAX_IDLE_CONNS"),
		AutoMigrate:  v.GetBool("DB_AUTO_MIGRATE"),
	}

	cfg.Redis = RedisConfig{
		Enabled:  v.GetBool("ENABLE_REDIS"),
		Host:     v.GetString("REDIS_HOST"),
		Port:     v.GetInt("REDIS_PORT"),
		Password: v.GetString("REDIS_PASSWORD"),
		DB:       v.GetInt("REDIS_DB"),
	}

	cfg.JWT = JWTConfig{
		Secret:     v.GetString("JWT_SECRET"),
		Expiration: parseDuration(v.GetString("JWT_EXPIRATION"), 24*time.Hour),
		Issuer:     v.GetString("JWT_ISSUER"),
		Audience:   splitAndTrim(v.GetString("JWT_AUDIENCE")),
	}

	cfg.CORS = CORSConfig{AllowedOrigins: splitAndTrim(v.GetString("ALLOWED_ORIGINS"))}

	cfg.Log = LogConfig{
		Level:  v.GetString("LOG_LEVEL"),
		Format: v.GetString("LOG_FORMAT"),
	}

	batch := v.GetInt("MENTORS_LOAD_MORE_BATCH")
	if batch <= 0 {
		batch = 10
	}
	cfg.Mentors = MentorsConfig{
		DefaultMaxMentees: v.GetInt("MENTORS_DEFAULT_MAX_MENTEES"),
		CacheTTL:          parseDuration(v.GetString("MENTORS_CACHE_TTL"), 2*time.Minute),
		LoadMoreBatch:     batch,
	}

	cfg.Notices = NoticesConfig{
		SuccessTTL: parseDuration(v.GetString("NOTICE_SUCCESS_TTL"), 3*time.Second),
		ErrorTTL:   parseDuration(v.GetString("NOTICE_ERROR_TTL"), 5*time.Second),
	}

	cfg.Webhook = WebhookConfig{
		URL:      strings.TrimSpace(v.GetString("WEBHOOK_URL")),
		Username: v.GetString("WEBHOOK_USERNAME"),
		Timeout:  parseDuration(v.GetString("WEBHOOK_TIMEOUT"), 10*time.Second),
	}

	nameLimit := v.GetInt("REPORTER_ABSENT_NAME_LIMIT")
	if nameLimit <= 0 {
		nameLimit = 1024
	}
	cfg.Reporter = ReporterConfig{
		GoalsAt:         v.GetString("REPORTER_GOALS_AT"),
		ReflectionsAt:   v.GetString("REPORTER_REFLECTIONS_AT"),
		UTCOffset:       parseDuration(v.GetString("REPORTER_UTC_OFFSET"), 5*time.Hour+30*time.Minute),
		AbsentNameLimit: nameLimit,
	}

	cfg.Notifications = NotificationsConfig{
		Enabled:    v.GetBool("ENABLE_REQUEST_NOTIFICATIONS"),
		Workers:    v.GetInt("NOTIFICATIONS_WORKERS"),
		MaxRetries: v.GetInt("NOTIFICATIONS_MAX_RETRIES"),
		RetryDelay: parseDuration(v.GetString("NOTIFICATIONS_RETRY_DELAY"), 2*time.Second),
	}

	return cfg, nil
}

// Validate rejects settings the API must not start with.
func (c *Config) Validate() error {
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("invalid PORT %d", c.Port)
	}
	if c.Env == EnvProduction && (c.JWT.Secret == "" || c.JWT.Secret == devJWTSecret) {
		return errors.New("JWT_SECRET must be set in production")
	}
	if c.JWT.Expiration <= 0 {
		return errors.New("JWT_EXPIRATION must be positive")
	}
	return nil
}

// RequireReporter checks the credentials a scheduled reporter cannot run without.
func (c *Config) RequireReporter() error {
	var missing []string
	if strings.TrimSpace(c.Database.URL) == "" {
		missing = append(missing, "DATABASE_URL")
	}
	if c.Webhook.URL == "" {
		missing = append(missing, "WEBHOOK_URL")
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing required environment: %s", strings.Join(missing, ", "))
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("ENV", EnvDevelopment)
	v.SetDefault("PORT", 8080)
	v.SetDefault("API_PREFIX", "/api/v1")

	v.SetDefault("DB_DRIVER", "postgres")
	v.SetDefault("DATABASE_URL", "")
	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", 5432)
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "postgres")
	v.SetDefault("DB_NAME", "campus_lms")
	v.SetDefault("DB_SSL_MODE", "disable")
	v.SetDefault("DB_MAX_OPEN_CONNS", 10)
	v.SetDefault("DB_MAX_IDLE_CONNS", 5)
	v.SetDefault("DB_AUTO_MIGRATE", false)

	v.SetDefault("ENABLE_REDIS", false)
	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", 6379)
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)

	v.SetDefault("JWT_SECRET", devJWTSecret)
	v.SetDefault("JWT_EXPIRATION", "24h")
	v.SetDefault("JWT_ISSUER", "campus-lms")
	v.SetDefault("JWT_AUDIENCE", "")

	v.SetDefault("ALLOWED_ORIGINS", "")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")

	v.SetDefault("MENTORS_DEFAULT_MAX_MENTEES", 5)
	v.SetDefault("MENTORS_CACHE_TTL", "2m")
	v.SetDefault("MENTORS_LOAD_MORE_BATCH", 10)

	v.SetDefault("NOTICE_SUCCESS_TTL", "3s")
	v.SetDefault("NOTICE_ERROR_TTL", "5s")

	v.SetDefault("WEBHOOK_URL", "")
	v.SetDefault("WEBHOOK_USERNAME", "Campus Attendance")
	v.SetDefault("WEBHOOK_TIMEOUT", "10s")

	v.SetDefault("REPORTER_GOALS_AT", "10:30")
	v.SetDefault("REPORTER_REFLECTIONS_AT", "21:30")
	v.SetDefault("REPORTER_UTC_OFFSET", "5h30m")
	v.SetDefault("REPORTER_ABSENT_NAME_LIMIT", 1024)

	v.SetDefault("ENABLE_REQUEST_NOTIFICATIONS", false)
	v.SetDefault("NOTIFICATIONS_WORKERS", 1)
	v.SetDefault("NOTIFICATIONS_MAX_RETRIES", 3)
	v.SetDefault("NOTIFICATIONS_RETRY_DELAY", "2s")
}

func parseDuration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}

	d, err := time.ParseDuration(raw)
	if err != nil {
		return fallback
	}

	return d
}

func splitAndTrim(raw string) []string {
	if raw == "" {
		return nil
	}

	parts := strings.Split(raw, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}

	return result
}
