package config

import (
	"strings"
	"time"

	"github.com/spf13/viper"
)

type AuthMode string

const (
	AuthModeNone  AuthMode = "none"  // No authentication required (default)
	AuthModeLocal AuthMode = "local" // Single shared password with sessions
)

// StalePolicy selects how overlapping notebook refreshes are reconciled.
type StalePolicy string

const (
	StalePolicyCompletion StalePolicy = "completion" // whichever response arrives last wins
	StalePolicyIssue      StalePolicy = "issue"      // responses older than the newest applied request are dropped
)

type (
	Config struct {
		HTTP
		Global
		API
		Refresh
		Database
		UI
		Auth
		Log
		Translator
		Activity
	}

	HTTP struct {
		Port int32
		Host string
	}
	Global struct {
		ShutdownTimeoutInSeconds int
	}
	API struct {
		BaseURL string
		Timeout time.Duration
	}
	Refresh struct {
		Interval      time.Duration // Background poll of the notebook list
		RetryAttempts int
		RetryDelay    time.Duration
		StalePolicy   StalePolicy
	}
	Database struct {
		Path string // Sessions and activity log; notebooks never live here
	}
	UI struct {
		TemplatesPath string
		StaticPath    string
		CoverCacheDir string
	}
	Auth struct {
		Mode            AuthMode
		PasswordHash    string
		SessionSecret   string
		SessionLifetime time.Duration
		BcryptCost      int
		SecureCookies   bool // Set to false for local dev without HTTPS
	}
	Log struct {
		Level  string
		Format string // console or json
	}
	Translator struct {
		DefaultPlatform string
	}
	Activity struct {
		RetentionDays int
		CleanupSchedule string
	}
)

func NewConfig() *Config {
	v := viper.New()
	v.AutomaticEnv()
	v.SetDefault("port", 8189)
	v.SetDefault("host", "0.0.0.0")
	v.SetDefault("shutdown_timeout_in_seconds", 2)

	v.SetDefault("wordbook_api_base_url", DefaultAPIBaseURL)
	v.SetDefault("wordbook_api_timeout", DefaultAPITimeout)

	v.SetDefault("refresh_interval", "30s")
	v.SetDefault("refresh_retry_attempts", 3)
	v.SetDefault("refresh_retry_delay", "2s")
	v.SetDefault("refresh_stale_policy", string(StalePolicyCompletion))

	v.SetDefault("database_path", DefaultDatabasePath)
	v.SetDefault("templates_path", "./templates")
	v.SetDefault("static_path", "./static")
	v.SetDefault("cover_cache_dir", "./covers")

	// Auth defaults
	v.SetDefault("auth_mode", "none")
	v.SetDefault("auth_password_hash", "")
	v.SetDefault("auth_session_secret", "")      // Auto-generated if empty
	v.SetDefault("auth_session_lifetime", "24h") // 24 hours
	v.SetDefault("auth_bcrypt_cost", 12)
	v.SetDefault("auth_secure_cookies", true) // HTTPS-only cookies

	v.SetDefault("log_level", "info")
	v.SetDefault("log_format", "console")

	v.SetDefault("translator_default_platform", "youdao")

	v.SetDefault("activity_retention_days", 30)
	v.SetDefault("activity_cleanup_schedule", "0 3 * * *") // Daily at 03:00

	return &Config{
		HTTP: HTTP{
			Port: v.GetInt32("PORT"),
			Host: v.GetString("HOST"),
		},
		Global: Global{
			ShutdownTimeoutInSeconds: v.GetInt("SHUTDOWN_TIMEOUT_IN_SECONDS"),
		},
		API: API{
			BaseURL: strings.TrimRight(v.GetString("WORDBOOK_API_BASE_URL"), "/"),
			Timeout: v.GetDuration("WORDBOOK_API_TIMEOUT"),
		},
		Refresh: Refresh{
			Interval:      v.GetDuration("REFRESH_INTERVAL"),
			RetryAttempts: v.GetInt("REFRESH_RETRY_ATTEMPTS"),
			RetryDelay:    v.GetDuration("REFRESH_RETRY_DELAY"),
			StalePolicy:   StalePolicy(v.GetString("REFRESH_STALE_POLICY")),
		},
		Database: Database{
			Path: v.GetString("DATABASE_PATH"),
		},
		UI: UI{
			TemplatesPath: v.GetString("TEMPLATES_PATH"),
			StaticPath:    v.GetString("STATIC_PATH"),
			CoverCacheDir: v.GetString("COVER_CACHE_DIR"),
		},
		Auth: Auth{
			Mode:            AuthMode(v.GetString("AUTH_MODE")),
			PasswordHash:    v.GetString("AUTH_PASSWORD_HASH"),
			SessionSecret:   v.GetString("AUTH_SESSION_SECRET"),
			SessionLifetime: v.GetDuration("AUTH_SESSION_LIFETIME"),
			BcryptCost:      v.GetInt("AUTH_BCRYPT_COST"),
			SecureCookies:   v.GetBool("AUTH_SECURE_COOKIES"),
		},
		Log: Log{
			Level:  v.GetString("LOG_LEVEL"),
			Format: v.GetString("LOG_FORMAT"),
		},
		Translator: Translator{
			DefaultPlatform: v.GetString("TRANSLATOR_DEFAULT_PLATFORM"),
		},
		Activity: Activity{
			RetentionDays:   v.GetInt("ACTIVITY_RETENTION_DAYS"),
			CleanupSchedule: v.GetString("ACTIVITY_CLEANUP_SCHEDULE"),
		},
	}
}
