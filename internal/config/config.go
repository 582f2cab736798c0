package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
	"github.com/subosito/gotenv"
)

type Config struct {
	Env         string `mapstructure:"BLOG_ENV"`
	HTTPAddr    string `mapstructure:"BLOG_HTTP_ADDR"`
	ServiceName string `mapstructure:"BLOG_SERVICE_NAME"`

	Database DBConfig       `mapstructure:",squash"`
	AI       AIConfig       `mapstructure:",squash"`
	Security SecurityConfig `mapstructure:",squash"`
}

type DBConfig struct {
	Type          string        `mapstructure:"BLOG_DB_TYPE"` // "memory", "sqlite", "postgres"
	DSN           string        `mapstructure:"BLOG_DB_DSN"`
	MaxOpenConns  int           `mapstructure:"BLOG_DB_MAX_OPEN_CONNS"`
	MaxIdleConns  int           `mapstructure:"BLOG_DB_MAX_IDLE_CONNS"`
	AutoMigrate   bool          `mapstructure:"BLOG_DB_AUTO_MIGRATE"`
	SlowThreshold time.Duration `mapstructure:"BLOG_DB_SLOW_QUERY"`
}

type AIConfig struct {
	APIKey  string `mapstructure:"BLOG_AI_API_KEY"`
	BaseURL string `mapstructure:"BLOG_AI_BASE_URL"`
	Model   string `mapstructure:"BLOG_AI_MODEL"`
}

// Enabled reports whether an API key was configured.
func (a AIConfig) Enabled() bool {
	return a.APIKey != ""
}

type SecurityConfig struct {
	RateLimitRPM int `mapstructure:"BLOG_RATE_LIMIT_RPM"`
	// RateLimitStore selects per-client counting: "" keeps one process-wide
	// token bucket, "memory" or "redis" count each client in a kv store.
	RateLimitStore     string   `mapstructure:"BLOG_RATE_LIMIT_STORE"`
	RedisURL           string   `mapstructure:"BLOG_REDIS_URL"`
	CORSAllowedOrigins []string `mapstructure:"BLOG_CORS_ALLOWED_ORIGINS"`
}

func loadDotEnvFiles() {
	candidates := []string{
		".env",
		filepath.Join("..", ".env"),
		filepath.Join("..", "..", ".env"),
	}
	if root, err := moduleRoot(""); err == nil {
		candidates = append(candidates, filepath.Join(root, ".env"))
	}

	seen := make(map[string]struct{})
	for _, path := range candidates {
		abs := path
		if !filepath.IsAbs(path) {
			if resolved, err := filepath.Abs(path); err == nil {
				abs = resolved
			}
		}
		if _, ok := seen[abs]; ok {
			continue
		}
		seen[abs] = struct{}{}

		if _, err := os.Stat(path); err == nil {
			_ = gotenv.Load(path) // ignore errors; env vars already set take precedence
		}
	}
}

func Load() (*Config, error) {
	loadDotEnvFiles()

	v := viper.New()
	v.SetConfigType("env")
	v.AutomaticEnv()

	// Set defaults. Every key needs one so Unmarshal sees it.
	v.SetDefault("BLOG_ENV", "dev")
	v.SetDefault("BLOG_HTTP_ADDR", ":8080")
	v.SetDefault("BLOG_SERVICE_NAME", "posts-api")
	v.SetDefault("BLOG_DB_TYPE", "memory")
	v.SetDefault("BLOG_DB_DSN", "")
	v.SetDefault("BLOG_DB_MAX_OPEN_CONNS", 10)
	v.SetDefault("BLOG_DB_MAX_IDLE_CONNS", 5)
	v.SetDefault("BLOG_DB_AUTO_MIGRATE", true)
	v.SetDefault("BLOG_DB_SLOW_QUERY", "200ms")
	v.SetDefault("BLOG_AI_API_KEY", "")
	v.SetDefault("BLOG_AI_BASE_URL", "https://api.openai.com/v1")
	v.SetDefault("BLOG_AI_MODEL", "gpt-4o-mini")
	v.SetDefault("BLOG_RATE_LIMIT_RPM", 600)
	v.SetDefault("BLOG_RATE_LIMIT_STORE", "")
	v.SetDefault("BLOG_REDIS_URL", "redis://localhost:6379/0")
	v.SetDefault("BLOG_CORS_ALLOWED_ORIGINS", "http://localhost:3000,http://localhost:5173")

	// Handle array parsing for comma-separated values
	if origins := v.GetString("BLOG_CORS_ALLOWED_ORIGINS"); origins != "" {
		v.Set("BLOG_CORS_ALLOWED_ORIGINS", splitList(origins))
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	cfg.Env = strings.ToLower(strings.TrimSpace(cfg.Env))
	cfg.Database.Type = strings.ToLower(strings.TrimSpace(cfg.Database.Type))
	cfg.Security.RateLimitStore = strings.ToLower(strings.TrimSpace(cfg.Security.RateLimitStore))

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &cfg, nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func (c *Config) validate() error {
	switch c.Env {
	case "dev", "test", "prod":
	default:
		return fmt.Errorf("invalid BLOG_ENV %q (must be dev, test, or prod)", c.Env)
	}
	if c.HTTPAddr == "" {
		return fmt.Errorf("BLOG_HTTP_ADDR is required")
	}
	switch c.Database.Type {
	case "memory":
	case "sqlite", "postgres":
		if c.Database.DSN == "" {
			return fmt.Errorf("BLOG_DB_DSN is required for %s", c.Database.Type)
		}
	default:
		return fmt.Errorf("invalid BLOG_DB_TYPE %q (must be memory, sqlite, or postgres)", c.Database.Type)
	}
	if c.Security.RateLimitRPM <= 0 {
		return fmt.Errorf("BLOG_RATE_LIMIT_RPM must be positive")
	}
	switch c.Security.RateLimitStore {
	case "", "memory":
	case "redis":
		if c.Security.RedisURL == "" {
			return fmt.Errorf("BLOG_REDIS_URL is required when BLOG_RATE_LIMIT_STORE is redis")
		}
	default:
		return fmt.Errorf("invalid BLOG_RATE_LIMIT_STORE %q (must be empty, memory, or redis)", c.Security.RateLimitStore)
	}
	if c.AI.Enabled() && c.AI.Model == "" {
		return fmt.Errorf("BLOG_AI_MODEL is required when BLOG_AI_API_KEY is set")
	}
	return nil
}

func (c *Config) IsDev() bool {
	return c.Env == "dev"
}

func (c *Config) IsProd() bool {
	return c.Env == "prod"
}
