package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds all configuration for the ingestion worker
type Config struct {
	Ops        OpsConfig        `yaml:"ops"`
	Postgres   PostgresConfig   `yaml:"postgres"`
	Redis      RedisConfig      `yaml:"redis"`
	Browser    BrowserConfig    `yaml:"browser"`
	Classifier ClassifierConfig `yaml:"classifier"`
	Schedule   ScheduleConfig   `yaml:"schedule"`
	Debug      bool             `yaml:"debug"`
}

// OpsConfig controls the worker's operational HTTP endpoint
type OpsConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

type PostgresConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Database string `yaml:"database"`
	PoolSize int    `yaml:"pool_size"`
	SSLMode  string `yaml:"ssl_mode"`
}

func (p PostgresConfig) DSN() string {
	return "postgres://" + p.User + ":" + p.Password + "@" + p.Host + ":" +
		strconv.Itoa(p.Port) + "/" + p.Database + "?sslmode=" + p.SSLMode
}

// RedisConfig controls the optional classification cache. An empty
// Addr disables caching entirely.
type RedisConfig struct {
	Addr     string        `yaml:"addr"`
	Password string        `yaml:"password"`
	DB       int           `yaml:"db"`
	TTL      time.Duration `yaml:"ttl"`
}

// BrowserConfig controls the headless Chrome sessions
type BrowserConfig struct {
	Headless     bool          `yaml:"headless"`
	BinPath      string        `yaml:"bin_path"`
	UserAgent    string        `yaml:"user_agent"`
	WindowWidth  int           `yaml:"window_width"`
	WindowHeight int           `yaml:"window_height"`
	PageTimeout  time.Duration `yaml:"page_timeout"`
	SettleDelay  time.Duration `yaml:"settle_delay"`
	ScrollPause  time.Duration `yaml:"scroll_pause"`
	MaxScrolls   int           `yaml:"max_scrolls"`
}

// ClassifierConfig controls the external classification API client.
// The API key is only ever read from the environment.
type ClassifierConfig struct {
	BaseURL   string        `yaml:"base_url"`
	Model     string        `yaml:"model"`
	APIKey    string        `yaml:"-"`
	Timeout   time.Duration `yaml:"timeout"`
	MaxTokens int           `yaml:"max_tokens"`
	BatchSize int           `yaml:"batch_size"`
}

// ScheduleConfig controls job recurrence. Each scrape source starts
// StaggerDelay later than the previous one so browser launches never
// coincide; the classification sweep runs on its own interval behind
// the scrapes.
type ScheduleConfig struct {
	ScrapeInterval   time.Duration `yaml:"scrape_interval"`
	StaggerDelay     time.Duration `yaml:"stagger_delay"`
	ClassifyInterval time.Duration `yaml:"classify_interval"`
	ClassifyDelay    time.Duration `yaml:"classify_delay"`
}

// Load loads configuration from file and environment
func Load(configPath string) (*Config, error) {
	// Load .env file if it exists
	_ = godotenv.Load()

	cfg := defaultConfig()

	// Load from YAML file if provided
	if configPath != "" {
		data, err := os.ReadFile(configPath)
		if err == nil {
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, err
			}
		}
	}

	// Override with environment variables
	cfg.loadFromEnv()

	return cfg, nil
}

func defaultConfig() *Config {
	return &Config{
		Ops: OpsConfig{
			Host: "0.0.0.0",
			Port: 8090,
		},
		Postgres: PostgresConfig{
			Host:     "localhost",
			Port:     5432,
			User:     "eco_catalog",
			Password: "password",
			Database: "eco_catalog",
			PoolSize: 10,
			SSLMode:  "disable",
		},
		Redis: RedisConfig{
			TTL: 7 * 24 * time.Hour,
		},
		Browser: BrowserConfig{
			Headless:     true,
			UserAgent:    "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
			WindowWidth:  1920,
			WindowHeight: 1080,
			PageTimeout:  2 * time.Minute,
			SettleDelay:  5 * time.Second,
			ScrollPause:  2 * time.Second,
			MaxScrolls:   40,
		},
		Classifier: ClassifierConfig{
			BaseURL:   "https://integrate.api.nvidia.com/v1",
			Model:     "meta/llama-4-maverick-17b-128e-instruct",
			Timeout:   30 * time.Second,
			MaxTokens: 120,
			BatchSize: 50,
		},
		Schedule: ScheduleConfig{
			ScrapeInterval:   24 * time.Hour,
			StaggerDelay:     10 * time.Minute,
			ClassifyInterval: 24 * time.Hour,
			ClassifyDelay:    1 * time.Hour,
		},
	}
}

func (c *Config) loadFromEnv() {
	if v := os.Getenv("DEBUG"); v == "true" {
		c.Debug = true
	}

	// Ops endpoint
	if v := os.Getenv("OPS_HOST"); v != "" {
		c.Ops.Host = v
	}
	if v := os.Getenv("OPS_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			c.Ops.Port = port
		}
	}

	// Database
	if v := os.Getenv("POSTGRES_HOST"); v != "" {
		c.Postgres.Host = v
	}
	if v := os.Getenv("POSTGRES_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			c.Postgres.Port = port
		}
	}
	if v := os.Getenv("POSTGRES_USER"); v != "" {
		c.Postgres.User = v
	}
	if v := os.Getenv("POSTGRES_PASSWORD"); v != "" {
		c.Postgres.Password = v
	}
	if v := os.Getenv("POSTGRES_DB"); v != "" {
		c.Postgres.Database = v
	}

	// Redis
	if v := os.Getenv("REDIS_ADDR"); v != "" {
		c.Redis.Addr = v
	}
	if v := os.Getenv("REDIS_PASSWORD"); v != "" {
		c.Redis.Password = v
	}

	// Browser
	if v := os.Getenv("BROWSER_HEADLESS"); v == "false" {
		c.Browser.Headless = false
	}
	if v := os.Getenv("BROWSER_BIN"); v != "" {
		c.Browser.BinPath = v
	}

	// Classifier
	if v := os.Getenv("NV_API_KEY"); v != "" {
		c.Classifier.APIKey = v
	}
	if v := os.Getenv("CLASSIFIER_BASE_URL"); v != "" {
		c.Classifier.BaseURL = v
	}
	if v := os.Getenv("CLASSIFIER_MODEL"); v != "" {
		c.Classifier.Model = v
	}

	// Schedule
	if v := os.Getenv("SCRAPE_INTERVAL"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			c.Schedule.ScrapeInterval = d
		}
	}
	if v := os.Getenv("CLASSIFY_INTERVAL"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			c.Schedule.ClassifyInterval = d
		}
	}
}
