package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	Server  ServerConfig
	DB      DBConfig
	Log     LogConfig
	CORS    CORSConfig
	Parsing ParsingConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port         string        `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	Environment  string        `mapstructure:"environment"`
}

// DBConfig holds PostgreSQL connection settings.
type DBConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	Name     string `mapstructure:"name"`
	SSLMode  string `mapstructure:"sslmode"`
	MaxOpen  int    `mapstructure:"max_open"`
	MaxIdle  int    `mapstructure:"max_idle"`
}

// DSN returns the PostgreSQL connection string.
func (d *DBConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.Name, d.SSLMode,
	)
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// CORSConfig holds CORS settings.
type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// ProviderConfig holds server-level settings for a single parsing provider.
// These act as the fallback when a user has no settings record of their own.
type ProviderConfig struct {
	APIKey      string `mapstructure:"api_key"`
	Model       string `mapstructure:"model"`
	Enabled     bool   `mapstructure:"enabled"`
	TimeoutSecs int    `mapstructure:"timeout_secs"`
}

// ParsingConfig holds orchestration settings. AcceptThreshold and UsableFloor
// are the two confidence constants the whole subsystem keys off; they live
// here in one place rather than scattered as literals across call sites.
type ParsingConfig struct {
	DefaultStrategy    string  `mapstructure:"default_strategy"`
	AcceptThreshold    float64 `mapstructure:"accept_threshold"`
	UsableFloor        float64 `mapstructure:"usable_floor"`
	MaxCostPerDocument float64 `mapstructure:"max_cost_per_document"`
	DailyCostLimit     float64 `mapstructure:"daily_cost_limit"`
	EnableFallback     bool    `mapstructure:"enable_fallback"`

	Claude ProviderConfig `mapstructure:"claude"`
	OpenAI ProviderConfig `mapstructure:"openai"`
	Gemini ProviderConfig `mapstructure:"gemini"`
}

// Load reads configuration from environment variables with the SITELEDGER_ prefix.
func Load() (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix("SITELEDGER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Server defaults
	v.SetDefault("server.port", ":8080")
	v.SetDefault("server.read_timeout", "15s")
	v.SetDefault("server.write_timeout", "15s")
	v.SetDefault("server.environment", "development")

	// DB defaults
	v.SetDefault("db.host", "localhost")
	v.SetDefault("db.port", 5432)
	v.SetDefault("db.user", "siteledger")
	v.SetDefault("db.password", "siteledger_secret")
	v.SetDefault("db.name", "siteledger_db")
	v.SetDefault("db.sslmode", "disable")
	v.SetDefault("db.max_open", 25)
	v.SetDefault("db.max_idle", 10)

	// Log defaults
	v.SetDefault("log.level", "debug")
	v.SetDefault("log.format", "console")

	// CORS defaults (localhost origins for development)
	v.SetDefault("cors.allowed_origins", "http://localhost:3000,http://127.0.0.1:3000")

	// Parsing defaults
	v.SetDefault("parsing.default_strategy", "llm-primary")
	v.SetDefault("parsing.accept_threshold", 0.70)
	v.SetDefault("parsing.usable_floor", 0.60)
	v.SetDefault("parsing.max_cost_per_document", 0.50)
	v.SetDefault("parsing.daily_cost_limit", 25.0)
	v.SetDefault("parsing.enable_fallback", true)

	v.SetDefault("parsing.claude.api_key", "")
	v.SetDefault("parsing.claude.model", "claude-sonnet-4-20250514")
	v.SetDefault("parsing.claude.enabled", true)
	v.SetDefault("parsing.claude.timeout_secs", 120)
	v.SetDefault("parsing.openai.api_key", "")
	v.SetDefault("parsing.openai.model", "gpt-4o")
	v.SetDefault("parsing.openai.enabled", true)
	v.SetDefault("parsing.openai.timeout_secs", 120)
	v.SetDefault("parsing.gemini.api_key", "")
	v.SetDefault("parsing.gemini.model", "gemini-2.0-flash")
	v.SetDefault("parsing.gemini.enabled", true)
	v.SetDefault("parsing.gemini.timeout_secs", 120)

	// Bind environment variables explicitly for nested keys
	envBindings := map[string]string{
		"server.port":          "SITELEDGER_SERVER_PORT",
		"server.read_timeout":  "SITELEDGER_SERVER_READ_TIMEOUT",
		"server.write_timeout": "SITELEDGER_SERVER_WRITE_TIMEOUT",
		"server.environment":   "SITELEDGER_SERVER_ENVIRONMENT",
		"db.host":              "SITELEDGER_DB_HOST",
		"db.port":              "SITELEDGER_DB_PORT",
		"db.user":              "SITELEDGER_DB_USER",
		"db.password":          "SITELEDGER_DB_PASSWORD",
		"db.name":              "SITELEDGER_DB_NAME",
		"db.sslmode":           "SITELEDGER_DB_SSLMODE",
		"db.max_open":          "SITELEDGER_DB_MAX_OPEN",
		"db.max_idle":          "SITELEDGER_DB_MAX_IDLE",
		"log.level":            "SITELEDGER_LOG_LEVEL",
		"log.format":           "SITELEDGER_LOG_FORMAT",
		"cors.allowed_origins": "SITELEDGER_CORS_ALLOWED_ORIGINS",

		"parsing.default_strategy":      "SITELEDGER_PARSING_DEFAULT_STRATEGY",
		"parsing.accept_threshold":      "SITELEDGER_PARSING_ACCEPT_THRESHOLD",
		"parsing.usable_floor":          "SITELEDGER_PARSING_USABLE_FLOOR",
		"parsing.max_cost_per_document": "SITELEDGER_PARSING_MAX_COST_PER_DOCUMENT",
		"parsing.daily_cost_limit":      "SITELEDGER_PARSING_DAILY_COST_LIMIT",
		"parsing.enable_fallback":       "SITELEDGER_PARSING_ENABLE_FALLBACK",
		"parsing.claude.api_key":        "SITELEDGER_PARSING_CLAUDE_API_KEY",
		"parsing.claude.model":          "SITELEDGER_PARSING_CLAUDE_MODEL",
		"parsing.claude.enabled":        "SITELEDGER_PARSING_CLAUDE_ENABLED",
		"parsing.claude.timeout_secs":   "SITELEDGER_PARSING_CLAUDE_TIMEOUT_SECS",
		"parsing.openai.api_key":        "SITELEDGER_PARSING_OPENAI_API_KEY",
		"parsing.openai.model":          "SITELEDGER_PARSING_OPENAI_MODEL",
		"parsing.openai.enabled":        "SITELEDGER_PARSING_OPENAI_ENABLED",
		"parsing.openai.timeout_secs":   "SITELEDGER_PARSING_OPENAI_TIMEOUT_SECS",
		"parsing.gemini.api_key":        "SITELEDGER_PARSING_GEMINI_API_KEY",
		"parsing.gemini.model":          "SITELEDGER_PARSING_GEMINI_MODEL",
		"parsing.gemini.enabled":        "SITELEDGER_PARSING_GEMINI_ENABLED",
		"parsing.gemini.timeout_secs":   "SITELEDGER_PARSING_GEMINI_TIMEOUT_SECS",
	}
	for key, env := range envBindings {
		_ = v.BindEnv(key, env)
	}

	cfg := &Config{}

	// Railway/Heroku/Render set a PORT env var. Use it if SITELEDGER_SERVER_PORT is not explicitly set.
	serverPort := v.GetString("server.port")
	if port := os.Getenv("PORT"); port != "" && os.Getenv("SITELEDGER_SERVER_PORT") == "" {
		serverPort = ":" + port
	}

	cfg.Server = ServerConfig{
		Port:         serverPort,
		ReadTimeout:  v.GetDuration("server.read_timeout"),
		WriteTimeout: v.GetDuration("server.write_timeout"),
		Environment:  v.GetString("server.environment"),
	}
	cfg.DB = DBConfig{
		Host:     v.GetString("db.host"),
		Port:     v.GetInt("db.port"),
		User:     v.GetString("db.user"),
		Password: v.GetString("db.password"),
		Name:     v.GetString("db.name"),
		SSLMode:  v.GetString("db.sslmode"),
		MaxOpen:  v.GetInt("db.max_open"),
		MaxIdle:  v.GetInt("db.max_idle"),
	}
	cfg.Log = LogConfig{
		Level:  v.GetString("log.level"),
		Format: v.GetString("log.format"),
	}

	// Parse CORS allowed origins from comma-separated string
	var corsOrigins []string
	for _, o := range strings.Split(v.GetString("cors.allowed_origins"), ",") {
		o = strings.TrimSpace(o)
		if o != "" {
			corsOrigins = append(corsOrigins, o)
		}
	}
	cfg.CORS = CORSConfig{
		AllowedOrigins: corsOrigins,
	}

	cfg.Parsing = ParsingConfig{
		DefaultStrategy:    v.GetString("parsing.default_strategy"),
		AcceptThreshold:    v.GetFloat64("parsing.accept_threshold"),
		UsableFloor:        v.GetFloat64("parsing.usable_floor"),
		MaxCostPerDocument: v.GetFloat64("parsing.max_cost_per_document"),
		DailyCostLimit:     v.GetFloat64("parsing.daily_cost_limit"),
		EnableFallback:     v.GetBool("parsing.enable_fallback"),
		Claude: ProviderConfig{
			APIKey:      v.GetString("parsing.claude.api_key"),
			Model:       v.GetString("parsing.claude.model"),
			Enabled:     v.GetBool("parsing.claude.enabled"),
			TimeoutSecs: v.GetInt("parsing.claude.timeout_secs"),
		},
		OpenAI: ProviderConfig{
			APIKey:      v.GetString("parsing.openai.api_key"),
			Model:       v.GetString("parsing.openai.model"),
			Enabled:     v.GetBool("parsing.openai.enabled"),
			TimeoutSecs: v.GetInt("parsing.openai.timeout_secs"),
		},
		Gemini: ProviderConfig{
			APIKey:      v.GetString("parsing.gemini.api_key"),
			Model:       v.GetString("parsing.gemini.model"),
			Enabled:     v.GetBool("parsing.gemini.enabled"),
			TimeoutSecs: v.GetInt("parsing.gemini.timeout_secs"),
		},
	}

	return cfg, nil
}
