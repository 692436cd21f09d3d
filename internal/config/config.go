package config

import (
	"fmt"
	"os"
	"time"

	"github.com/caarlos0/env/v9"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"content_fetcher/internal/domain"
)

const (
	DriverPostgres = "postgres"
	DriverMongo    = "mongo"
)

type Config struct {
	Database    DatabaseConfig    `yaml:"database"`
	Mongo       MongoConfig       `yaml:"mongo"`
	Storage     StorageConfig     `yaml:"storage"`
	Redis       RedisConfig       `yaml:"redis"`
	RabbitMQ    RabbitMQConfig    `yaml:"rabbitmq"`
	Meilisearch MeilisearchConfig `yaml:"meilisearch"`
	NATS        NATSConfig        `yaml:"nats"`
	HTTP        HTTPConfig        `yaml:"http"`
	Browser     BrowserConfig     `yaml:"browser"`
	Connectors  ConnectorsConfig  `yaml:"connectors"`
	Scheduler   SchedulerConfig   `yaml:"scheduler"`
	Log         LogConfig         `yaml:"log"`

	// Platform credentials are only read from the environment.
	Credentials Credentials `yaml:"-"`
}

type DatabaseConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	DBName   string `yaml:"dbname"`
	SSLMode  string `yaml:"sslmode"`
}

func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.DBName, d.SSLMode,
	)
}

type MongoConfig struct {
	URI      string `yaml:"uri"`
	Database string `yaml:"database"`
}

type StorageConfig struct {
	Driver string `yaml:"driver"`
}

type RedisConfig struct {
	URL           string        `yaml:"url"`
	SourceInfoTTL time.Duration `yaml:"source_info_ttl"`
}

type RabbitMQConfig struct {
	URL        string `yaml:"url"`
	Exchange   string `yaml:"exchange"`
	RoutingKey string `yaml:"routing_key"`
	QueueName  string `yaml:"queue_name"`
}

type MeilisearchConfig struct {
	Host   string `yaml:"host"`
	APIKey string `yaml:"api_key"`
	Index  string `yaml:"index"`
}

type NATSConfig struct {
	URL     string `yaml:"url"`
	Subject string `yaml:"subject"`
	Queue   string `yaml:"queue"`
}

type HTTPConfig struct {
	Addr         string        `yaml:"addr"`
	ReadTimeout  time.Duration `yaml:"read_timeout"`
	WriteTimeout time.Duration `yaml:"write_timeout"`
	JobTimeout   time.Duration `yaml:"job_timeout"`
}

type BrowserConfig struct {
	BinPath       string        `yaml:"bin_path"`
	ProfileDir    string        `yaml:"profile_dir"`
	Headless      *bool         `yaml:"headless"`
	MaxSessions   int           `yaml:"max_sessions"`
	NavTimeout    time.Duration `yaml:"nav_timeout"`
	ScrollDelay   time.Duration `yaml:"scroll_delay"`
	SweepInterval time.Duration `yaml:"sweep_interval"`
	ProfileTTL    time.Duration `yaml:"profile_ttl"`
}

type ConnectorsConfig struct {
	// Enabled limits registration to these platforms. Empty means every
	// platform whose credentials are present.
	Enabled   []domain.Platform `yaml:"enabled"`
	HTTP      HTTPClientConfig  `yaml:"http"`
	YouTube   YouTubeConfig     `yaml:"youtube"`
	Telegram  TelegramConfig    `yaml:"telegram"`
	Facebook  FacebookConfig    `yaml:"facebook"`
	X         XConfig           `yaml:"x"`
	PageDelay time.Duration     `yaml:"page_delay"`
}

type HTTPClientConfig struct {
	Timeout time.Duration `yaml:"timeout"`
	Retry   RetryConfig   `yaml:"retry"`
}

type RetryConfig struct {
	MaxAttempts    int           `yaml:"max_attempts"`
	InitialBackoff time.Duration `yaml:"initial_backoff"`
	MaxBackoff     time.Duration `yaml:"max_backoff"`
}

type YouTubeConfig struct {
	Endpoint string `yaml:"endpoint"`
}

type TelegramConfig struct {
	BaseURL string `yaml:"base_url"`
}

type FacebookConfig struct {
	BaseURL string `yaml:"base_url"`
}

type XConfig struct {
	Instances []string `yaml:"instances"`
}

type SchedulerConfig struct {
	Interval   time.Duration    `yaml:"interval"`
	JobTimeout time.Duration    `yaml:"job_timeout"`
	Jobs       []domain.JobSpec `yaml:"jobs"`
}

type LogConfig struct {
	Level      string `yaml:"level"`
	File       string `yaml:"file"`
	MaxSizeMB  int    `yaml:"max_size_mb"`
	MaxBackups int    `yaml:"max_backups"`
	MaxAgeDays int    `yaml:"max_age_days"`
}

type Credentials struct {
	YouTubeAPIKey     string `env:"YOUTUBE_API_KEY"`
	TelegramBotToken  string `env:"TELEGRAM_BOT_TOKEN"`
	FacebookAppID     string `env:"FACEBOOK_APP_ID"`
	FacebookAppSecret string `env:"FACEBOOK_APP_SECRET"`
}

func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	return Parse(data)
}

// Parse builds a Config from YAML bytes. ${VAR} references are expanded from
// the environment and credentials are read from their env variables.
func Parse(data []byte) (*Config, error) {
	expanded := os.ExpandEnv(string(data))

	var cfg Config
	if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	if err := env.Parse(&cfg.Credentials); err != nil {
		return nil, fmt.Errorf("parse credentials: %w", err)
	}

	cfg.setDefaults()

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) setDefaults() {
	if c.Storage.Driver == "" {
		c.Storage.Driver = DriverPostgres
	}
	if c.Database.Port == 0 {
		c.Database.Port = 5432
	}
	if c.Database.SSLMode == "" {
		c.Database.SSLMode = "disable"
	}
	if c.Mongo.Database == "" {
		c.Mongo.Database = "content_fetcher"
	}
	if c.Redis.SourceInfoTTL == 0 {
		c.Redis.SourceInfoTTL = 24 * time.Hour
	}
	if c.RabbitMQ.Exchange == "" {
		c.RabbitMQ.Exchange = "content_fetcher"
	}
	if c.RabbitMQ.RoutingKey == "" {
		c.RabbitMQ.RoutingKey = "contents"
	}
	if c.Meilisearch.Index == "" {
		c.Meilisearch.Index = "contents"
	}
	if c.NATS.Subject == "" {
		c.NATS.Subject = "jobs.fetch"
	}
	if c.NATS.Queue == "" {
		c.NATS.Queue = "content_fetcher"
	}
	if c.HTTP.Addr == "" {
		c.HTTP.Addr = ":8080"
	}
	if c.HTTP.ReadTimeout == 0 {
		c.HTTP.ReadTimeout = 15 * time.Second
	}
	if c.HTTP.JobTimeout == 0 {
		c.HTTP.JobTimeout = 5 * time.Minute
	}
	if c.HTTP.WriteTimeout == 0 {
		c.HTTP.WriteTimeout = c.HTTP.JobTimeout + 10*time.Second
	}
	if c.Browser.ProfileDir == "" {
		c.Browser.ProfileDir = os.TempDir()
	}
	if c.Browser.Headless == nil {
		headless := true
		c.Browser.Headless = &headless
	}
	if c.Browser.MaxSessions == 0 {
		c.Browser.MaxSessions = 2
	}
	if c.Browser.NavTimeout == 0 {
		c.Browser.NavTimeout = 30 * time.Second
	}
	if c.Browser.ScrollDelay == 0 {
		c.Browser.ScrollDelay = 2 * time.Second
	}
	if c.Browser.SweepInterval == 0 {
		c.Browser.SweepInterval = 30 * time.Minute
	}
	if c.Browser.ProfileTTL == 0 {
		c.Browser.ProfileTTL = 90 * time.Minute
	}
	if c.Connectors.HTTP.Timeout == 0 {
		c.Connectors.HTTP.Timeout = 30 * time.Second
	}
	if c.Connectors.HTTP.Retry.MaxAttempts == 0 {
		c.Connectors.HTTP.Retry.MaxAttempts = 3
	}
	if c.Connectors.HTTP.Retry.InitialBackoff == 0 {
		c.Connectors.HTTP.Retry.InitialBackoff = 1 * time.Second
	}
	if c.Connectors.HTTP.Retry.MaxBackoff == 0 {
		c.Connectors.HTTP.Retry.MaxBackoff = 30 * time.Second
	}
	if c.Connectors.PageDelay == 0 {
		c.Connectors.PageDelay = 500 * time.Millisecond
	}
	if c.Scheduler.Interval == 0 {
		c.Scheduler.Interval = 30 * time.Minute
	}
	if c.Scheduler.JobTimeout == 0 {
		c.Scheduler.JobTimeout = 5 * time.Minute
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.MaxSizeMB == 0 {
		c.Log.MaxSizeMB = 100
	}
	if c.Log.MaxBackups == 0 {
		c.Log.MaxBackups = 5
	}
	if c.Log.MaxAgeDays == 0 {
		c.Log.MaxAgeDays = 30
	}
}

func (c *Config) validate() error {
	switch c.Storage.Driver {
	case DriverPostgres:
	case DriverMongo:
		if c.Mongo.URI == "" {
			return fmt.Errorf("mongo.uri is required for storage driver %q", DriverMongo)
		}
	default:
		return fmt.Errorf("unknown storage driver %q", c.Storage.Driver)
	}

	for _, p := range c.Connectors.Enabled {
		if !p.Valid() {
			return fmt.Errorf("connectors.enabled: unknown platform %q", p)
		}
	}
	for i, job := range c.Scheduler.Jobs {
		if !job.Platform.Valid() {
			return fmt.Errorf("scheduler.jobs[%d]: unknown platform %q", i, job.Platform)
		}
		if job.SourceID == "" && job.SearchQuery == "" {
			return fmt.Errorf("scheduler.jobs[%d]: source_id or search_query is required", i)
		}
	}
	return nil
}

// PlatformEnabled reports whether p may be registered.
func (c *Config) PlatformEnabled(p domain.Platform) bool {
	if len(c.Connectors.Enabled) == 0 {
		return true
	}
	for _, e := range c.Connectors.Enabled {
		if e == p {
			return true
		}
	}
	return false
}
