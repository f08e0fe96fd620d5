package config

import (
	"errors"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

// Session store backends.
const (
	SessionStoreFile   = "file"
	SessionStoreRedis  = "redis"
	SessionStoreMemory = "memory"
)

type Config struct {
	Env  string
	Host string
	Port int

	Backend   BackendConfig
	Session   SessionConfig
	Redis     RedisConfig
	CORS      CORSConfig
	Log       LogConfig
	Reports   ReportsConfig
	Guard     GuardConfig
	Dashboard DashboardConfig
}

// Addr is the listen address of the HTTP server.
func (c *Config) Addr() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}

// BackendConfig locates the analytics backend consumed by the console.
type BackendConfig struct {
	BaseURL      string
	Timeout      time.Duration
	LoginPath    string
	RegisterPath string
}

// SessionConfig selects where the single persisted credential lives.
type SessionConfig struct {
	Store  string
	File   string
	Key    string
	Secret string
}

type RedisConfig struct {
	Host        string
	Port        int
	Password    string
	DB          int
	DialTimeout time.Duration
	PingTimeout time.Duration
}

// Addr is the host:port of the Redis server.
func (c RedisConfig) Addr() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}

// CORSConfig lists the browser origins allowed to call the console API.
type CORSConfig struct {
	AllowedOrigins   []string
	AllowCredentials bool
	MaxAge           time.Duration
}

type LogConfig struct {
	Level  string
	Format string
}

// ReportsConfig configures report artifacts and their download links.
type ReportsConfig struct {
	StorageDir      string
	SignedURLSecret string
	SignedURLTTL    time.Duration
	CleanupInterval time.Duration
	DefaultFormat   string
}

// GuardConfig holds the route guard product switches.
type GuardConfig struct {
	RedirectAuthenticated bool
}

// DashboardConfig tunes the dashboard view.
type DashboardConfig struct {
	TableLimit int
}

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
		if !errors.As(err, &notFound) && !os.IsNotExist(err) {
			return nil, err
		}
	}

	cfg := &Config{}

	cfg.Env = v.GetString("ENV")
	cfg.Host = strings.TrimSpace(v.GetString("HOST"))
	cfg.Port = v.GetInt("PORT")

	cfg.Backend = BackendConfig{
		BaseURL:      strings.TrimRight(v.GetString("BACKEND_URL"), "/"),
		Timeout:      parseDuration(v.GetString("BACKEND_TIMEOUT"), 15*time.Second),
		LoginPath:    v.GetString("LOGIN_PATH"),
		RegisterPath: v.GetString("REGISTER_PATH"),
	}

	sessionFile := v.GetString("SESSION_FILE")
	if sessionFile == "" {
		sessionFile = defaultSessionFile()
	}
	cfg.Session = SessionConfig{
		Store:  strings.ToLower(v.GetString("SESSION_STORE")),
		File:   sessionFile,
		Key:    v.GetString("SESSION_KEY"),
		Secret: v.GetString("SESSION_SECRET"),
	}

	cfg.Redis = RedisConfig{
		Host:        v.GetString("REDIS_HOST"),
		Port:        v.GetInt("REDIS_PORT"),
		Password:    v.GetString("REDIS_PASSWORD"),
		DB:          v.GetInt("REDIS_DB"),
		DialTimeout: parseDuration(v.GetString("REDIS_DIAL_TIMEOUT"), 5*time.Second),
		PingTimeout: parseDuration(v.GetString("REDIS_PING_TIMEOUT"), 5*time.Second),
	}

	cfg.CORS = CORSConfig{
		AllowedOrigins:   splitAndTrim(v.GetString("ALLOWED_ORIGINS")),
		AllowCredentials: v.GetBool("CORS_ALLOW_CREDENTIALS"),
		MaxAge:           parseDuration(v.GetString("CORS_MAX_AGE"), 10*time.Minute),
	}

	cfg.Log = LogConfig{
		Level:  v.GetString("LOG_LEVEL"),
		Format: v.GetString("LOG_FORMAT"),
	}

	cfg.Reports = ReportsConfig{
		StorageDir:      v.GetString("REPORTS_STORAGE_DIR"),
		SignedURLSecret: v.GetString("REPORTS_SIGNED_URL_SECRET"),
		SignedURLTTL:    parseDuration(v.GetString("REPORTS_SIGNED_URL_TTL"), time.Hour),
		CleanupInterval: parseDuration(v.GetString("REPORTS_CLEANUP_INTERVAL"), time.Hour),
		DefaultFormat:   strings.ToLower(v.GetString("REPORTS_DEFAULT_FORMAT")),
	}

	cfg.Guard = GuardConfig{
		RedirectAuthenticated: v.GetBool("GUARD_REDIRECT_AUTHENTICATED"),
	}

	tableLimit := v.GetInt("DASHBOARD_TABLE_LIMIT")
	if tableLimit <= 0 {
		tableLimit = 10
	}
	cfg.Dashboard = DashboardConfig{TableLimit: tableLimit}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("ENV", EnvDevelopment)
	v.SetDefault("HOST", "127.0.0.1")
	v.SetDefault("PORT", 8080)

	v.SetDefault("BACKEND_URL", "http://127.0.0.1:5000")
	v.SetDefault("BACKEND_TIMEOUT", "15s")
	v.SetDefault("LOGIN_PATH", "/api/login")
	v.SetDefault("REGISTER_PATH", "/api/register")

	v.SetDefault("SESSION_STORE", SessionStoreFile)
	v.SetDefault("SESSION_FILE", "")
	v.SetDefault("SESSION_KEY", "elearning_analytics_token")
	v.SetDefault("SESSION_SECRET", "")

	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", 6379)
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("REDIS_DIAL_TIMEOUT", "5s")
	v.SetDefault("REDIS_PING_TIMEOUT", "5s")

	v.SetDefault("ALLOWED_ORIGINS", "")
	v.SetDefault("CORS_ALLOW_CREDENTIALS", false)
	v.SetDefault("CORS_MAX_AGE", "10m")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")

	v.SetDefault("REPORTS_STORAGE_DIR", "./exports")
	v.SetDefault("REPORTS_SIGNED_URL_SECRET", "dev_reports_secret")
	v.SetDefault("REPORTS_SIGNED_URL_TTL", "1h")
	v.SetDefault("REPORTS_CLEANUP_INTERVAL", "1h")
	v.SetDefault("REPORTS_DEFAULT_FORMAT", "xlsx")

	v.SetDefault("GUARD_REDIRECT_AUTHENTICATED", true)
	v.SetDefault("DASHBOARD_TABLE_LIMIT", 10)
}

func defaultSessionFile() string {
	dir, err := os.UserConfigDir()
	if err != nil || dir == "" {
		dir = "."
	}
	return filepath.Join(dir, "elearning-analytics", "session.json")
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
