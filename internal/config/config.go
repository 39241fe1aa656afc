package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config aggregates runtime configuration for the service.
type Config struct {
	App          AppConfig
	Postgres     PostgresConfig
	Redis        RedisConfig
	Logger       LoggerConfig
	Auth         AuthConfig
	Jira         JiraConfig
	Digest       DigestConfig
	Secret       SecretConfig
	Notification NotificationConfig
	Schedule     ScheduleConfig
}

// AppConfig controls server level behavior.
type AppConfig struct {
	Name                  string
	Env                   string
	Host                  string
	Port                  string
	Version               string
	RequestTimeoutSeconds int
}

// PostgresConfig holds DB connection values.
type PostgresConfig struct {
	DSN            string
	MaxConns       int32
	MinConns       int32
	RunMigrations  bool
	ConnMaxIdleSec int32
	ConnMaxLifeSec int32
}

// RedisConfig holds Redis connection values.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// LoggerConfig configures logging behavior.
type LoggerConfig struct {
	Level string
}

// AuthConfig defines authentication parameters.
type AuthConfig struct {
	JWTSecret             string
	AccessTokenTTLMinutes int
}

// JiraConfig holds the default credentials used when no stored connection is named.
type JiraConfig struct {
	BaseURL               string
	Username              string
	APIToken              string
	RequestTimeoutSeconds int
}

// DigestConfig holds digest defaults.
type DigestConfig struct {
	LookbackDays        int
	AccountIDs          []string
	CommentLength       int
	Concurrency         int
	UserCacheTTLSeconds int
}

// SecretConfig holds the key used to seal stored API tokens.
type SecretConfig struct {
	KeyHex string
}

// NotificationConfig configures where built digests are published.
type NotificationConfig struct {
	RedisKey     string
	RedisChannel string
	SlackToken   string
	SlackChannel string
	SlackAPIURL  string
}

// ScheduleConfig points at the YAML file of periodic digests.
type ScheduleConfig struct {
	File string
}

// Load reads configuration from environment variables, applying defaults where possible.
func Load() (*Config, error) {
	_ = godotenv.Load()

	redisDB, err := strconv.Atoi(getEnv("REDIS_DB", "0"))
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_DB: %w", err)
	}

	lookback := getEnvAsInt("DIGEST_LOOKBACK_DAYS", 1)
	if lookback <= 0 {
		return nil, fmt.Errorf("invalid DIGEST_LOOKBACK_DAYS: %d", lookback)
	}

	maxConns := int32(getEnvAsInt("POSTGRES_MAX_CONNS", 10))
	minConns := int32(getEnvAsInt("POSTGRES_MIN_CONNS", 2))
	runMigrations := getEnvAsBool("POSTGRES_RUN_MIGRATIONS", true)
	connMaxIdle := int32(getEnvAsInt("POSTGRES_CONN_MAX_IDLE_SECONDS", 30))
	connMaxLife := int32(getEnvAsInt("POSTGRES_CONN_MAX_LIFE_SECONDS", 300))

	cfg := &Config{
		App: AppConfig{
			Name:                  getEnv("APP_NAME", "jira-digest"),
			Env:                   getEnv("APP_ENV", "development"),
			Host:                  getEnv("APP_HOST", "0.0.0.0"),
			Port:                  getEnv("APP_PORT", "8080"),
			Version:               getEnv("APP_VERSION", "dev"),
			RequestTimeoutSeconds: getEnvAsInt("HTTP_REQUEST_TIMEOUT_SECONDS", 120),
		},
		Postgres: PostgresConfig{
			DSN:            os.Getenv("POSTGRES_DSN"),
			MaxConns:       maxConns,
			MinConns:       minConns,
			RunMigrations:  runMigrations,
			ConnMaxIdleSec: connMaxIdle,
			ConnMaxLifeSec: connMaxLife,
		},
		Redis: RedisConfig{
			Addr:     os.Getenv("REDIS_ADDR"),
			Password: os.Getenv("REDIS_PASSWORD"),
			DB:       redisDB,
		},
		Logger: LoggerConfig{
			Level: getEnv("LOG_LEVEL", "info"),
		},
		Auth: AuthConfig{
			JWTSecret:             getEnv("AUTH_JWT_SECRET", "dev-secret"),
			AccessTokenTTLMinutes: getEnvAsInt("AUTH_ACCESS_TOKEN_TTL_MINUTES", 60),
		},
		Jira: JiraConfig{
			BaseURL:               strings.TrimRight(os.Getenv("JIRA_BASE_URL"), "/"),
			Username:              os.Getenv("JIRA_USERNAME"),
			APIToken:              os.Getenv("JIRA_API_TOKEN"),
			RequestTimeoutSeconds: getEnvAsInt("JIRA_REQUEST_TIMEOUT_SECONDS", 30),
		},
		Digest: DigestConfig{
			LookbackDays:        lookback,
			AccountIDs:          SplitList(os.Getenv("DIGEST_ACCOUNT_IDS")),
			CommentLength:       getEnvAsInt("DIGEST_COMMENT_LENGTH", 80),
			Concurrency:         getEnvAsInt("DIGEST_CONCURRENCY", 4),
			UserCacheTTLSeconds: getEnvAsInt("DIGEST_USER_CACHE_TTL_SECONDS", 300),
		},
		Secret: SecretConfig{
			KeyHex: os.Getenv("SECRET_KEY"),
		},
		Notification: NotificationConfig{
			RedisKey:     getEnv("NOTIFY_REDIS_KEY", "jira_service.jira"),
			RedisChannel: os.Getenv("NOTIFY_REDIS_CHANNEL"),
			SlackToken:   os.Getenv("NOTIFY_SLACK_TOKEN"),
			SlackChannel: os.Getenv("NOTIFY_SLACK_CHANNEL"),
			SlackAPIURL:  os.Getenv("NOTIFY_SLACK_API_URL"),
		},
		Schedule: ScheduleConfig{
			File: os.Getenv("SCHEDULE_FILE"),
		},
	}

	return cfg, nil
}

// Addr returns the HTTP bind address.
func (a AppConfig) Addr() string {
	return fmt.Sprintf("%s:%s", a.Host, a.Port)
}

// RequestTimeout returns the configured request timeout duration.
func (a AppConfig) RequestTimeout() time.Duration {
	if a.RequestTimeoutSeconds <= 0 {
		return 0
	}
	return time.Duration(a.RequestTimeoutSeconds) * time.Second
}

// RequestTimeout returns the per-call timeout for the Jira transport.
func (j JiraConfig) RequestTimeout() time.Duration {
	if j.RequestTimeoutSeconds <= 0 {
		return 30 * time.Second
	}
	return time.Duration(j.RequestTimeoutSeconds) * time.Second
}

// Configured reports whether default Jira credentials are present.
func (j JiraConfig) Configured() bool {
	return j.BaseURL != "" && j.Username != "" && j.APIToken != ""
}

// UserCacheTTL returns how long resolved display names are cached.
func (d DigestConfig) UserCacheTTL() time.Duration {
	if d.UserCacheTTLSeconds <= 0 {
		return 0
	}
	return time.Duration(d.UserCacheTTLSeconds) * time.Second
}

// SplitList parses a comma-separated list, keeping order and duplicates and
// dropping blank entries.
func SplitList(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(val)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvAsBool(key string, fallback bool) bool {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(val)
	if err != nil {
		return fallback
	}
	return parsed
}
