package config

import (
	"fmt"
	"os"
	"time"

	"github.com/creasty/defaults"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"
)

// EnvPrefix is the prefix of environment overrides, e.g. TRADESIM_KAFKA_BROKERS.
const EnvPrefix = "TRADESIM"

type Config struct {
	Environment string `yaml:"environment" default:"development"`
	Server      struct {
		Host            string        `yaml:"host" default:"0.0.0.0"`
		Port            int           `yaml:"port" default:"8080"`
		ReadTimeout     time.Duration `yaml:"read_timeout" default:"10s"`
		WriteTimeout    time.Duration `yaml:"write_timeout" default:"10s"`
		ShutdownTimeout time.Duration `yaml:"shutdown_timeout" default:"15s"`
		SlowThreshold   time.Duration `yaml:"slow_threshold" default:"1s"`
		CORSOrigins     []string      `yaml:"cors_origins" default:"[\"*\"]"`
		RateLimit       struct {
			Requests int           `yaml:"requests" default:"120"`
			Window   time.Duration `yaml:"window" default:"1m"`
		} `yaml:"rate_limit"`
	} `yaml:"server"`
	Log struct {
		Level  string `yaml:"level" default:"info"`
		Format string `yaml:"format" default:"console"`
		Topic  string `yaml:"topic"`
	} `yaml:"log"`
	Metrics struct {
		Enabled bool   `yaml:"enabled" default:"true"`
		Path    string `yaml:"path" default:"/metrics"`
	} `yaml:"metrics"`
	Analytics struct {
		BaseURL        string        `yaml:"base_url"`
		Token          string        `yaml:"token"`
		Timeout        time.Duration `yaml:"timeout" default:"3s"`
		Retries        int           `yaml:"retries" default:"2"`
		PriceWSURL     string        `yaml:"price_ws_url"`
		PingInterval   time.Duration `yaml:"ping_interval" default:"30s"`
		ReconnectDelay time.Duration `yaml:"reconnect_delay" default:"2s"`

		// PriceMaxAge is how old a streamed price may be and still stand in for the REST lookup.
		PriceMaxAge time.Duration `yaml:"price_max_age" default:"2m"`

		// RequestTimeout bounds one summary computation including every backend call.
		RequestTimeout time.Duration `yaml:"request_timeout" default:"5s"`
	} `yaml:"analytics"`
	Cache struct {
		TTL   time.Duration `yaml:"ttl" default:"30s"`
		Redis struct {
			Enabled  bool   `yaml:"enabled"`
			Addr     string `yaml:"addr" default:"localhost:6379"`
			Password string `yaml:"password"`
			DB       int    `yaml:"db"`
		} `yaml:"redis"`
	} `yaml:"cache"`
	Kafka struct {
		Enabled      bool     `yaml:"enabled"`
		Brokers      []string `yaml:"brokers" default:"[\"localhost:9092\"]"`
		ReportsTopic string   `yaml:"reports_topic" default:"technical.reports"`

		// SnapshotsTopic carries indicator snapshots pushed by the analytics backend.
		SnapshotsTopic string `yaml:"snapshots_topic" default:"technical.snapshots"`
		RequiredAcks   int    `yaml:"required_acks" default:"-1"`
		Compression    string `yaml:"compression" default:"snappy"`
		Producer       struct {
			MaxAttempts  int           `yaml:"max_attempts" default:"5"`
			Linger       time.Duration `yaml:"linger" default:"10ms"`
			BatchBytes   int           `yaml:"batch_bytes" default:"1048576"`
			BatchSize    int           `yaml:"batch_size" default:"100"`
			WriteTimeout time.Duration `yaml:"write_timeout" default:"10s"`
			ReadTimeout  time.Duration `yaml:"read_timeout" default:"10s"`
			Async        bool          `yaml:"async"`
		} `yaml:"producer"`
		Consumer struct {
			GroupID     string        `yaml:"group_id" default:"tradesim-technical"`
			StartOffset string        `yaml:"start_offset" default:"earliest"`
			Workers     int           `yaml:"workers" default:"4"`
			BufferSize  int           `yaml:"buffer_size" default:"256"`
			RetryMax    int           `yaml:"retry_max" default:"3"`
			BackoffMin  time.Duration `yaml:"backoff_min" default:"100ms"`
			BackoffMax  time.Duration `yaml:"backoff_max" default:"2s"`
			DLQTopic    string        `yaml:"dlq_topic" default:"technical.snapshots.dlq"`
			MinBytes    int           `yaml:"min_bytes" default:"1"`
			MaxBytes    int           `yaml:"max_bytes" default:"10485760"`
		} `yaml:"consumer"`
	} `yaml:"kafka"`
	ClickHouse struct {
		Enabled          bool          `yaml:"enabled"`
		Host             string        `yaml:"host" default:"localhost"`
		Port             int           `yaml:"port" default:"9000"`
		Database         string        `yaml:"database" default:"tradesim"`
		User             string        `yaml:"user" default:"default"`
		Password         string        `yaml:"password"`
		UseHTTP          bool          `yaml:"use_http"`
		AsyncInsert      bool          `yaml:"async_insert"`
		WaitForAsync     bool          `yaml:"wait_for_async_insert"`
		DialTimeout      time.Duration `yaml:"dial_timeout" default:"5s"`
		ReadTimeout      time.Duration `yaml:"read_timeout" default:"10s"`
		MaxExecutionTime time.Duration `yaml:"max_execution_time" default:"30s"`
	} `yaml:"clickhouse"`
	Scheduler struct {
		Enabled bool `yaml:"enabled"`

		// Spec is a robfig/cron expression; descriptors like @every 5m are accepted.
		Spec      string   `yaml:"spec" default:"@every 5m"`
		Watchlist []string `yaml:"watchlist"`
		Intervals []string `yaml:"intervals" default:"[\"1d\"]"`
	} `yaml:"scheduler"`
}

// Load reads and parses a YAML configuration file.
// Struct defaults are applied first so the file only needs to carry overrides.
func Load(path string) (*Config, error) {
	c, err := read(path)
	if err != nil {
		return nil, err
	}
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return c, nil
}

// Parse decodes YAML bytes on top of the struct defaults and validates the result.
func Parse(b []byte) (*Config, error) {
	c, err := decode(b)
	if err != nil {
		return nil, err
	}
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return c, nil
}

// LoadWithEnv loads config from YAML and overrides with TRADESIM_* environment variables.
// Validation runs once, after the overrides.
func LoadWithEnv(path string) (*Config, error) {
	c, err := read(path)
	if err != nil {
		return nil, err
	}
	if err := c.ApplyEnv(); err != nil {
		return nil, err
	}
	return c, nil
}

func read(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	return decode(b)
}

func decode(b []byte) (*Config, error) {
	var c Config
	if err := defaults.Set(&c); err != nil {
		return nil, fmt.Errorf("apply defaults: %w", err)
	}
	if err := yaml.Unmarshal(b, &c); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	return &c, nil
}

// envOverrides lists the variables read by ApplyEnv. Pointer fields keep unset
// variables from overwriting file values.
type envOverrides struct {
	Environment      *string  `envconfig:"ENVIRONMENT"`
	ServerPort       *int     `envconfig:"SERVER_PORT"`
	LogLevel         *string  `envconfig:"LOG_LEVEL"`
	LogFormat        *string  `envconfig:"LOG_FORMAT"`
	AnalyticsBaseURL *string  `envconfig:"ANALYTICS_BASE_URL"`
	AnalyticsToken   *string  `envconfig:"ANALYTICS_TOKEN"`
	PriceWSURL       *string  `envconfig:"ANALYTICS_PRICE_WS_URL"`
	RedisEnabled     *bool    `envconfig:"REDIS_ENABLED"`
	RedisAddr        *string  `envconfig:"REDIS_ADDR"`
	RedisPassword    *string  `envconfig:"REDIS_PASSWORD"`
	KafkaEnabled     *bool    `envconfig:"KAFKA_ENABLED"`
	KafkaBrokers     []string `envconfig:"KAFKA_BROKERS"`
	ClickHouseEnable *bool    `envconfig:"CLICKHOUSE_ENABLED"`
	ClickHouseHost   *string  `envconfig:"CLICKHOUSE_HOST"`
	ClickHouseUser   *string  `envconfig:"CLICKHOUSE_USER"`
	ClickHousePass   *string  `envconfig:"CLICKHOUSE_PASSWORD"`
	Watchlist        []string `envconfig:"WATCHLIST"`
}

// ApplyEnv overrides fields from the environment and re-validates.
func (c *Config) ApplyEnv() error {
	var o envOverrides
	if err := envconfig.Process(EnvPrefix, &o); err != nil {
		return fmt.Errorf("env overrides: %w", err)
	}

	setString(&c.Environment, o.Environment)
	if o.ServerPort != nil {
		c.Server.Port = *o.ServerPort
	}
	setString(&c.Log.Level, o.LogLevel)
	setString(&c.Log.Format, o.LogFormat)
	setString(&c.Analytics.BaseURL, o.AnalyticsBaseURL)
	setString(&c.Analytics.Token, o.AnalyticsToken)
	setString(&c.Analytics.PriceWSURL, o.PriceWSURL)
	setBool(&c.Cache.Redis.Enabled, o.RedisEnabled)
	setBool(&c.Kafka.Enabled, o.KafkaEnabled)
	setBool(&c.ClickHouse.Enabled, o.ClickHouseEnable)
	setString(&c.Cache.Redis.Addr, o.RedisAddr)
	setString(&c.Cache.Redis.Password, o.RedisPassword)
	setString(&c.ClickHouse.Host, o.ClickHouseHost)
	setString(&c.ClickHouse.User, o.ClickHouseUser)
	setString(&c.ClickHouse.Password, o.ClickHousePass)
	if len(o.KafkaBrokers) > 0 {
		c.Kafka.Brokers = o.KafkaBrokers
	}
	if len(o.Watchlist) > 0 {
		c.Scheduler.Watchlist = o.Watchlist
	}

	if err := c.Validate(); err != nil {
		return fmt.Errorf("validate config: %w", err)
	}
	return nil
}

func setString(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}

func setBool(dst *bool, v *bool) {
	if v != nil {
		*dst = *v
	}
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Environment == "" {
		return fmt.Errorf("environment is required")
	}
	if c.Server.Port <= 0 {
		return fmt.Errorf("server.port must be positive, got %d", c.Server.Port)
	}
	if c.Analytics.BaseURL == "" {
		return fmt.Errorf("analytics.base_url is required")
	}
	if c.Analytics.Timeout <= 0 {
		return fmt.Errorf("analytics.timeout must be positive")
	}
	if c.Kafka.Enabled && len(c.Kafka.Brokers) == 0 {
		return fmt.Errorf("kafka.brokers cannot be empty when kafka is enabled")
	}
	if so := c.Kafka.Consumer.StartOffset; so != "earliest" && so != "latest" {
		return fmt.Errorf("kafka.consumer.start_offset must be earliest or latest, got %q", so)
	}
	if c.Scheduler.Enabled && len(c.Scheduler.Watchlist) == 0 {
		return fmt.Errorf("scheduler.watchlist cannot be empty when scheduler is enabled")
	}
	return nil
}
