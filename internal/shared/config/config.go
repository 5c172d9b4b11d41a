package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	"github.com/reshetovitsme/goofish-monitor/internal/modules/search/domain"
	"github.com/reshetovitsme/goofish-monitor/internal/shared/errors"
	"github.com/samber/lo"
	"github.com/samber/oops"
)

type Config struct {
	TelegramBotToken string        `koanf:"telegram_bot_token"`
	TelegramAPIURL   string        `koanf:"telegram_api_url"`
	StoragePath      string        `koanf:"storage_path"`
	HTTPPort         string        `koanf:"http_port"`
	UpdateInterval   int           `koanf:"update_interval"` // scheduler tick, seconds
	AllowedUsers     []int64       `koanf:"allowed_users"`
	AppEnv           domain.AppEnv `koanf:"app_env"`

	GoofishAPIURL   string `koanf:"goofish_api_url"`
	EmbeddingAPIURL string `koanf:"embedding_api_url"`
	TranslateAPIURL string `koanf:"translate_api_url"`
	RedisURL        string `koanf:"redis_url"` // optional; file ledger when empty

	// To change either value, edit config.yaml (or the matching env var)
	// and restart; both are read once at startup.
	SimilarityThreshold float64 `koanf:"similarity_threshold"`
	CurrencyRate        float64 `koanf:"currency_rate"` // CNY -> RUB display multiplier

	RequestTimeout int `koanf:"request_timeout"` // seconds, per external call
	NotifyDelayMs  int `koanf:"notify_delay_ms"` // min spacing between notifications
}

// Timeout returns the per-external-call timeout as a duration.
func (c *Config) Timeout() time.Duration {
	return time.Duration(c.RequestTimeout) * time.Second
}

// NotifyDelay returns the minimum spacing between notifications.
func (c *Config) NotifyDelay() time.Duration {
	return time.Duration(c.NotifyDelayMs) * time.Millisecond
}

func Load() (*Config, error) {
	k := koanf.New(".")

	// Try to load config file from various formats
	configFiles := []string{
		"config.yaml",
		"config.yml",
		"config.json",
		"config.toml",
	}

	// Use lo.Find to find the first existing config file
	configFile, found := lo.Find(configFiles, func(file string) bool {
		_, err := os.Stat(file)
		return err == nil
	})

	if found {
		var parser koanf.Parser
		ext := filepath.Ext(configFile)

		switch ext {
		case ".yaml", ".yml":
			parser = yaml.Parser()
		case ".json":
			parser = json.Parser()
		case ".toml":
			parser = toml.Parser()
		default:
			return nil, oops.Errorf("unsupported config file extension: %s", ext)
		}

		if err := k.Load(file.Provider(configFile), parser); err != nil {
			return nil, oops.With("config_file", configFile).Wrap(err)
		}
	}

	// Load environment variables (they override config file values)
	if err := k.Load(env.Provider("", ".", func(s string) string {
		return strings.ToLower(s)
	}), nil); err != nil {
		return nil, oops.With("context", "loading environment variables").Wrap(err)
	}

	// Set defaults
	defaults := map[string]any{
		"telegram_api_url":     "https://api.telegram.org",
		"storage_path":         "./data",
		"http_port":            "8080",
		"update_interval":      60,
		"app_env":              "production",
		"goofish_api_url":      "https://api.goofish.com",
		"embedding_api_url":    "http://localhost:8090",
		"translate_api_url":    "http://localhost:8091",
		"similarity_threshold": 0.25,
		"currency_rate":        13.5,
		"request_timeout":      30,
		"notify_delay_ms":      500,
	}
	for key, value := range defaults {
		if !k.Exists(key) {
			k.Set(key, value)
		}
	}

	// Unmarshal into struct
	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, oops.With("context", "unmarshaling config").Wrap(err)
	}

	// Parse AllowedUsers from comma-separated string if it's a string
	if allowedUsers := k.Get("allowed_users"); allowedUsers != nil {
		switch v := allowedUsers.(type) {
		case string:
			cfg.AllowedUsers = ParseAllowedUsers(v)
		case []interface{}:
			cfg.AllowedUsers = lo.FilterMap(v, func(item interface{}, _ int) (int64, bool) {
				switch val := item.(type) {
				case int64:
					return val, true
				case int:
					return int64(val), true
				case float64:
					return int64(val), true
				default:
					return 0, false
				}
			})
		}
	}

	// Parse AppEnv from string if needed
	if appEnvStr := k.String("app_env"); appEnvStr != "" {
		if env, err := domain.ParseAppEnv(appEnvStr); err == nil {
			cfg.AppEnv = env
		} else {
			cfg.AppEnv = domain.AppEnvProduction
		}
	} else {
		cfg.AppEnv = domain.AppEnvProduction
	}

	// Validate required fields
	if cfg.TelegramBotToken == "" {
		return nil, errors.ErrMissingBotToken
	}
	if cfg.SimilarityThreshold < 0 || cfg.SimilarityThreshold > 1 {
		return nil, oops.With("similarity_threshold", cfg.SimilarityThreshold).Errorf("similarity_threshold must be in [0,1]")
	}

	return &cfg, nil
}

// ParseAllowedUsers parses comma-separated user IDs string into []int64
func ParseAllowedUsers(s string) []int64 {
	if s == "" {
		return []int64{}
	}
	parts := strings.Split(s, ",")
	return lo.FilterMap(parts, func(part string, _ int) (int64, bool) {
		part = strings.TrimSpace(part)
		if part == "" {
			return 0, false
		}
		var id int64
		if _, err := fmt.Sscanf(part, "%d", &id); err == nil {
			return id, true
		}
		return 0, false
	})
}
