// Package config exposes strongly typed application configuration loaded from
// YAML with environment overrides for credentials and connection settings.
package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// DefaultBaseURL targets the Binance USDT-M Futures testnet.
const DefaultBaseURL = "https://testnet.binancefuture.com"

// App captures process-wide runtime settings such as metrics and logging.
type App struct {
	Name        string `yaml:"name"`
	MetricsAddr string `yaml:"metrics_addr"`
	LogLevel    string `yaml:"log_level"`
	LogFile     string `yaml:"log_file"`
	LogMaxSize  int    `yaml:"log_max_size_mb"`
	LogBackups  int    `yaml:"log_backups"`
	JournalPath string `yaml:"journal_path"`
}

// Exchange describes Binance futures connectivity parameters.
type Exchange struct {
	BaseURL         string `yaml:"base_url"`
	APIKey          string `yaml:"-"`
	APISecret       string `yaml:"-"`
	TimeoutSec      int    `yaml:"timeout_sec"`
	RecvWindowMs    int    `yaml:"recv_window_ms"`
	FilterCacheSize int    `yaml:"filter_cache_size"`
}

// Web configures the browser form front end.
type Web struct {
	ListenAddr string `yaml:"listen_addr"`
}

// Config collects every configuration leaf for easy marshaling from YAML.
type Config struct {
	App      App      `yaml:"app"`
	Exchange Exchange `yaml:"exchange"`
	Web      Web      `yaml:"web"`
}

// Load reads an optional YAML file, then applies environment overrides.
// A .env file in the working directory is honored if present. Credentials
// only ever come from the environment, never from the YAML file.
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	cfg := defaults()
	if path != "" {
		file, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()
		if err := yaml.NewDecoder(file).Decode(cfg); err != nil {
			return nil, fmt.Errorf("decode yaml: %w", err)
		}
	}
	cfg.applyEnv()
	return cfg, nil
}

func defaults() *Config {
	return &Config{
		App: App{
			Name:        "futures-bot",
			LogLevel:    "info",
			LogFile:     "logs/bot.log",
			LogMaxSize:  2,
			LogBackups:  3,
			JournalPath: "logs/orders.jsonl",
		},
		Exchange: Exchange{
			BaseURL:         DefaultBaseURL,
			TimeoutSec:      15,
			RecvWindowMs:    5000,
			FilterCacheSize: 256,
		},
		Web: Web{
			ListenAddr: ":8080",
		},
	}
}

func (c *Config) applyEnv() {
	c.Exchange.APIKey = envStr("BINANCE_API_KEY", c.Exchange.APIKey)
	c.Exchange.APISecret = envStr("BINANCE_API_SECRET", c.Exchange.APISecret)
	c.Exchange.BaseURL = envStr("BINANCE_BASE_URL", c.Exchange.BaseURL)
	c.App.LogLevel = envStr("LOG_LEVEL", c.App.LogLevel)
	c.App.MetricsAddr = envStr("METRICS_ADDR", c.App.MetricsAddr)
	c.Exchange.TimeoutSec = envInt("BINANCE_TIMEOUT_SEC", c.Exchange.TimeoutSec)
}

// RequireCredentials fails when the API key or secret is absent. Order-placing
// flows call this at startup; read-only metadata calls do not.
func (c *Config) RequireCredentials() error {
	if c.Exchange.APIKey == "" || c.Exchange.APISecret == "" {
		return fmt.Errorf("missing BINANCE_API_KEY or BINANCE_API_SECRET")
	}
	return nil
}

func envStr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}
