package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/creasty/defaults"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"CoinScope/pkg/logger"
)

type Config struct {
	Environment string `yaml:"environment" default:"development"`
	Server      struct {
		Host            string        `yaml:"host"`
		Port            int           `yaml:"port" default:"8080"`
		ReadTimeout     time.Duration `yaml:"read_timeout" default:"10s"`
		WriteTimeout    time.Duration `yaml:"write_timeout" default:"30s"`
		ShutdownTimeout time.Duration `yaml:"shutdown_timeout" default:"10s"`
		CORSOrigins     []string      `yaml:"cors_origins"`
	} `yaml:"server"`
	Log     logger.Config `yaml:"log"`
	Metrics struct {
		Enabled bool   `yaml:"enabled" default:"true"`
		Path    string `yaml:"path" default:"/metrics"`
	} `yaml:"metrics"`
	Store struct {
		Driver           string        `yaml:"driver" default:"postgres"`
		Host             string        `yaml:"host"`
		Port             int           `yaml:"port"`
		Database         string        `yaml:"database"`
		User             string        `yaml:"user"`
		Password         string        `yaml:"password"`
		SSLMode          string        `yaml:"sslmode" default:"disable"`
		Path             string        `yaml:"path"`
		Table            string        `yaml:"table" default:"crypto_data"`
		UseHTTP          bool          `yaml:"use_http"`
		MaxOpenConns     int           `yaml:"max_open_conns" default:"10"`
		MaxIdleConns     int           `yaml:"max_idle_conns" default:"5"`
		ConnMaxLifetime  time.Duration `yaml:"conn_max_lifetime" default:"5m"`
		DialTimeout      time.Duration `yaml:"dial_timeout" default:"5s"`
		QueryTimeout     time.Duration `yaml:"query_timeout" default:"10s"`
		MaxExecutionTime time.Duration `yaml:"max_execution_time"`
		InitSchema       bool          `yaml:"init_schema"`
	} `yaml:"store"`
	Forecast struct {
		Backend       string            `yaml:"backend" default:"native"`
		ModelPath     string            `yaml:"model_path" default:"models/lstm_model.json"`
		RemoteURL     string            `yaml:"remote_url"`
		ModelName     string            `yaml:"model_name" default:"lstm"`
		Lookback      int               `yaml:"lookback" default:"30"`
		CustomObjects map[string]string `yaml:"custom_objects"`
		Timeout       time.Duration     `yaml:"timeout" default:"5s"`
		Preload       bool              `yaml:"preload"`
	} `yaml:"forecast"`
	Commentary struct {
		Enabled   bool          `yaml:"enabled"`
		URL       string        `yaml:"url" default:"https://api.openai.com"`
		APIKey    string        `yaml:"api_key"`
		Model     string        `yaml:"model" default:"gpt-4o-mini"`
		MaxTokens int           `yaml:"max_tokens" default:"300"`
		Timeout   time.Duration `yaml:"timeout" default:"20s"`
		Retries   int           `yaml:"retries" default:"2"`
		CacheTTL  time.Duration `yaml:"cache_ttl" default:"10m"`
	} `yaml:"commentary"`
	Cache struct {
		MaxEntries int `yaml:"max_entries" default:"1024"`
		Redis      struct {
			Enabled  bool   `yaml:"enabled"`
			Addr     string `yaml:"addr" default:"localhost:6379"`
			Password string `yaml:"password"`
			DB       int    `yaml:"db"`
			Prefix   string `yaml:"prefix" default:"coinscope:"`
		} `yaml:"redis"`
	} `yaml:"cache"`
	RateLimit struct {
		Enabled bool    `yaml:"enabled"`
		RPS     float64 `yaml:"rps" default:"20"`
		Burst   int     `yaml:"burst" default:"40"`
	} `yaml:"ratelimit"`
	Batch struct {
		Concurrency int `yaml:"concurrency" default:"4"`
		MaxAssets   int `yaml:"max_assets" default:"50"`
	} `yaml:"batch"`
}

// Default returns a configuration with every default applied.
func Default() *Config {
	var c Config
	if err := defaults.Set(&c); err != nil {
		panic(fmt.Sprintf("config defaults: %v", err))
	}
	return &c
}

// Load reads and parses a YAML configuration file on top of the defaults.
func Load(path string) (*Config, error) {
	c, err := parse(path)
	if err != nil {
		return nil, err
	}
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return c, nil
}

// LoadWithEnv loads .env (when present), the YAML file and then environment overrides.
func LoadWithEnv(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}
	c, err := parse(path)
	if err != nil {
		return nil, err
	}
	c.applyEnv(os.LookupEnv)

	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return c, nil
}

// parse applies defaults, then the YAML file. An empty path yields defaults only.
func parse(path string) (*Config, error) {
	c := Default()
	if path == "" {
		return c, nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(b, c); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	return c, nil
}

// applyEnv overrides fields from the environment. The lower-case names are the
// variables the legacy deployment's .env file used.
func (c *Config) applyEnv(lookup func(string) (string, bool)) {
	str := func(dst *string, keys ...string) {
		for _, k := range keys {
			if v, ok := lookup(k); ok && v != "" {
				*dst = v
				return
			}
		}
	}
	num := func(dst *int, key string) {
		if v, ok := lookup(key); ok {
			if n, err := strconv.Atoi(v); err == nil {
				*dst = n
			}
		}
	}
	flag := func(dst *bool, key string) {
		if v, ok := lookup(key); ok {
			if b, err := strconv.ParseBool(v); err == nil {
				*dst = b
			}
		}
	}

	str(&c.Environment, "COINSCOPE_ENV")
	num(&c.Server.Port, "COINSCOPE_PORT")
	str(&c.Log.Level, "COINSCOPE_LOG_LEVEL")

	str(&c.Store.Driver, "COINSCOPE_STORE_DRIVER")
	str(&c.Store.Host, "COINSCOPE_STORE_HOST", "postgres_host")
	num(&c.Store.Port, "COINSCOPE_STORE_PORT")
	str(&c.Store.Database, "COINSCOPE_STORE_DATABASE", "dbname")
	str(&c.Store.User, "COINSCOPE_STORE_USER", "postgres_user")
	str(&c.Store.Password, "COINSCOPE_STORE_PASSWORD", "postgres_password")
	str(&c.Store.Path, "COINSCOPE_STORE_PATH")
	str(&c.Store.Table, "COINSCOPE_STORE_TABLE")

	str(&c.Forecast.Backend, "COINSCOPE_FORECAST_BACKEND")
	str(&c.Forecast.ModelPath, "COINSCOPE_MODEL_PATH")
	str(&c.Forecast.RemoteURL, "COINSCOPE_MODEL_URL")

	flag(&c.Commentary.Enabled, "COINSCOPE_COMMENTARY_ENABLED")
	str(&c.Commentary.APIKey, "COINSCOPE_COMMENTARY_API_KEY", "OPENAI_API_KEY")
	str(&c.Commentary.URL, "COINSCOPE_COMMENTARY_URL")

	flag(&c.Cache.Redis.Enabled, "COINSCOPE_REDIS_ENABLED")
	str(&c.Cache.Redis.Addr, "COINSCOPE_REDIS_ADDR", "REDIS_ADDR")
	str(&c.Cache.Redis.Password, "COINSCOPE_REDIS_PASSWORD")

	if v, ok := lookup("COINSCOPE_CORS_ORIGINS"); ok && v != "" {
		c.Server.CORSOrigins = strings.Split(v, ",")
	}
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Environment == "" {
		return fmt.Errorf("environment is required")
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port out of range: %d", c.Server.Port)
	}
	switch strings.ToLower(c.Store.Driver) {
	case "postgres", "postgresql", "clickhouse":
		if c.Store.Host == "" {
			return fmt.Errorf("store.host is required for driver %q", c.Store.Driver)
		}
	case "sqlite", "sqlite3":
		if c.Store.Path == "" {
			return fmt.Errorf("store.path is required for driver %q", c.Store.Driver)
		}
	default:
		return fmt.Errorf("store.driver must be 'postgres', 'clickhouse' or 'sqlite', got '%s'", c.Store.Driver)
	}
	if c.Store.Table == "" {
		return fmt.Errorf("store.table is required")
	}
	if c.Store.QueryTimeout <= 0 {
		return fmt.Errorf("store.query_timeout must be positive")
	}
	switch c.Forecast.Backend {
	case "native":
		if c.Forecast.ModelPath == "" {
			return fmt.Errorf("forecast.model_path is required for the native backend")
		}
	case "remote":
		if c.Forecast.RemoteURL == "" {
			return fmt.Errorf("forecast.remote_url is required for the remote backend")
		}
	default:
		return fmt.Errorf("forecast.backend must be 'native' or 'remote', got '%s'", c.Forecast.Backend)
	}
	if c.Forecast.Lookback <= 0 {
		return fmt.Errorf("forecast.lookback must be positive")
	}
	if c.Commentary.Enabled && c.Commentary.URL == "" {
		return fmt.Errorf("commentary.url is required when commentary is enabled")
	}
	if c.RateLimit.Enabled && (c.RateLimit.RPS <= 0 || c.RateLimit.Burst <= 0) {
		return fmt.Errorf("ratelimit.rps and ratelimit.burst must be positive")
	}
	if c.Batch.Concurrency <= 0 {
		return fmt.Errorf("batch.concurrency must be positive")
	}
	return nil
}
