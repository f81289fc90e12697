package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"sync/atomic"

	"github.com/fsnotify/fsnotify"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/zasai/zas-translate/log"
)

const Version string = "0.1.0"

type Config struct {
	App struct {
		Name       string
		Port       string
		Production bool
		LogLevel   string `mapstructure:"log_level"`
	}
	Database struct {
		Driver               string // mysql | sqlite
		Dsn                  string
		MaxIdleConns         int `mapstructure:"max_idle_conns"`
		MaxOpenConns         int `mapstructure:"max_open_conns"`
		ConnMaxLifetimeHours int `mapstructure:"conn_max_lifetime_hours"`
	}
	Redis struct {
		Addr     string
		DB       int
		Password string
	}
	Auth struct {
		JWTSecret     string `mapstructure:"jwt_secret"`
		TokenTTLHours int    `mapstructure:"token_ttl_hours"`
		SecureCookie  bool   `mapstructure:"secure_cookie"`
	}
	Assistant struct {
		ApiKey         string `mapstructure:"api_key"`
		BaseURL        string `mapstructure:"base_url"`
		Model          string
		Temperature    float64
		MaxTokens      int     `mapstructure:"max_tokens"`
		ReplyLanguage  string  `mapstructure:"reply_language"`
		RatePerMinute  float64 `mapstructure:"rate_per_minute"`
		RateBurst      int     `mapstructure:"rate_burst"`
		TimeoutSeconds int     `mapstructure:"timeout_seconds"`
	}
	Translation struct {
		Providers     []string // tried in order
		BatchSize     int      `mapstructure:"batch_size"`
		MaxConcurrent int      `mapstructure:"max_concurrent"`
		HistoryLimit  int      `mapstructure:"history_limit"`
		CacheSize     int      `mapstructure:"cache_size"`
		Groq          ProviderConfig
		Google        ProviderConfig
		Cloudflare    ProviderConfig
	}
}

// ProviderConfig holds the credentials of one translation provider.
type ProviderConfig struct {
	ApiKey         string `mapstructure:"api_key"`
	AccountID      string `mapstructure:"account_id"` // Cloudflare only
	BaseURL        string `mapstructure:"base_url"`
	Model          string
	TimeoutSeconds int `mapstructure:"timeout_seconds"`
}

var current atomic.Pointer[Config]

// Get returns the active configuration. Before InitConfig it returns the defaults.
func Get() *Config {
	if c := current.Load(); c != nil {
		return c
	}
	c, _ := load(viper.New(), "")
	current.CompareAndSwap(nil, c)
	return current.Load()
}

// Set replaces the active configuration. Used by tests and the reload hook.
func Set(c *Config) { current.Store(c) }

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "zas-translate")
	v.SetDefault("app.port", "8080")
	v.SetDefault("app.production", false)
	v.SetDefault("app.log_level", "debug")
	v.SetDefault("database.driver", "sqlite")
	v.SetDefault("database.dsn", "zas.db")
	v.SetDefault("database.max_idle_conns", 10)
	v.SetDefault("database.max_open_conns", 50)
	v.SetDefault("database.conn_max_lifetime_hours", 1)
	v.SetDefault("redis.addr", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.password", "")
	v.SetDefault("auth.jwt_secret", "secret")
	v.SetDefault("auth.secure_cookie", false)
	v.SetDefault("auth.token_ttl_hours", 72)
	v.SetDefault("assistant.base_url", "https://api.cerebras.ai/v1")
	v.SetDefault("assistant.model", "llama-3.3-70b")
	v.SetDefault("assistant.temperature", 0.7)
	v.SetDefault("assistant.max_tokens", 1000)
	v.SetDefault("assistant.reply_language", "Arabic")
	v.SetDefault("assistant.rate_per_minute", 20)
	v.SetDefault("assistant.rate_burst", 5)
	v.SetDefault("assistant.timeout_seconds", 120)
	v.SetDefault("translation.providers", []string{"groq", "google", "cloudflare"})
	v.SetDefault("translation.batch_size", 40)
	v.SetDefault("translation.max_concurrent", 4)
	v.SetDefault("translation.history_limit", 0)
	v.SetDefault("translation.cache_size", 4096)
	v.SetDefault("translation.groq.base_url", "https://api.groq.com/openai/v1")
	v.SetDefault("translation.groq.model", "llama-3.3-70b-versatile")
	v.SetDefault("translation.groq.timeout_seconds", 60)
	v.SetDefault("translation.google.model", "gemini-1.5-flash")
	v.SetDefault("translation.google.timeout_seconds", 120)
	v.SetDefault("translation.cloudflare.base_url", "https://api.cloudflare.com/client/v4")
	v.SetDefault("translation.cloudflare.model", "@cf/meta/llama-3.1-8b-instruct")
	v.SetDefault("translation.cloudflare.timeout_seconds", 60)
}

// well-known provider variables, bound in addition to the ZAS_ prefix
var envKeys = map[string]string{
	"assistant.api_key":                 "CEREBRAS_API_KEY",
	"translation.groq.api_key":          "GROQ_API_KEY",
	"translation.google.api_key":        "GOOGLE_AI_API_KEY",
	"translation.cloudflare.api_key":    "CLOUDFLARE_API_TOKEN",
	"translation.cloudflare.account_id": "CLOUDFLARE_ACCOUNT_ID",
	"auth.jwt_secret":                   "JWT_SECRET",
}

func load(v *viper.Viper, path string) (*Config, error) {
	setDefaults(v)
	v.SetEnvPrefix("ZAS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for key, env := range envKeys {
		if err := v.BindEnv(key, "ZAS_"+strings.ToUpper(strings.NewReplacer(".", "_").Replace(key)), env); err != nil {
			return nil, fmt.Errorf("bind env %s: %w", env, err)
		}
	}

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) && !os.IsNotExist(err) {
				return nil, fmt.Errorf("read config file: %w", err)
			}
			log.L().Warn("config file not found, using defaults and environment", zap.String("file", path))
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	return cfg, nil
}

// InitConfig loads .env, the YAML file at path and the environment, stores the
// result as the active configuration and watches the file for changes.
func InitConfig(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.L().Warn("failed to load .env file", zap.Error(err))
	}

	v := viper.New()
	cfg, err := load(v, path)
	if err != nil {
		return nil, err
	}
	Set(cfg)
	log.SetLevel(cfg.App.LogLevel)

	if _, statErr := os.Stat(v.ConfigFileUsed()); path != "" && statErr == nil {
		v.OnConfigChange(func(e fsnotify.Event) {
			reloaded := &Config{}
			if err := v.Unmarshal(reloaded); err != nil {
				log.L().Error("config reload failed", zap.Error(err), zap.String("file", e.Name))
				return
			}
			Set(reloaded)
			log.SetLevel(reloaded.App.LogLevel)
			log.L().Info("config reloaded", zap.String("file", e.Name), zap.String("op", e.Op.String()))
		})
		v.WatchConfig()
	}
	return cfg, nil
}

func GetPort() string {
	port := Get().App.Port
	if port == "" {
		log.L().Warn("port is not set in config file, using default port 8080")
		return ":8080"
	}
	if port[0] != ':' {
		port = ":" + port
	}
	return port
}
