package config

import (
	"bytes"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"StockCast/internal/domain/models"
	"StockCast/pkg/util"
)

type Config struct {
	Environment string `yaml:"environment" default:"development" validate:"oneof=development staging production"`
	Server      struct {
		Port            int           `yaml:"port" default:"8080" validate:"gte=1,lte=65535"`
		ReadTimeout     time.Duration `yaml:"read_timeout" default:"10s"`
		WriteTimeout    time.Duration `yaml:"write_timeout" default:"30s"`
		ShutdownTimeout time.Duration `yaml:"shutdown_timeout" default:"10s"`
	} `yaml:"server"`
	Logging struct {
		Level  string `yaml:"level" default:"info" validate:"oneof=debug info warn error"`
		Format string `yaml:"format" default:"console" validate:"oneof=console json"`
		Output string `yaml:"output" default:"stdout"`
	} `yaml:"logging"`
	Metrics struct {
		Enabled bool   `yaml:"enabled" default:"true"`
		Path    string `yaml:"path" default:"/metrics"`
	} `yaml:"metrics"`
	ClickHouse struct {
		Host             string        `yaml:"host" default:"localhost"`
		Port             int           `yaml:"port" default:"9000"`
		Database         string        `yaml:"database" default:"stockcast"`
		User             string        `yaml:"user" default:"default"`
		Password         string        `yaml:"password"`
		QuotesTable      string        `yaml:"quotes_table" default:"daily_quotes"`
		DialTimeout      time.Duration `yaml:"dial_timeout" default:"5s"`
		ReadTimeout      time.Duration `yaml:"read_timeout" default:"10s"`
		WriteTimeout     time.Duration `yaml:"write_timeout" default:"10s"`
		MaxExecutionTime time.Duration `yaml:"max_execution_time" default:"30s"`
	} `yaml:"clickhouse"`
	Forecaster struct {
		ServiceURL string        `yaml:"service_url" validate:"required,url"`
		Timeout    time.Duration `yaml:"timeout" default:"120s"`
		ModelDir   string        `yaml:"model_dir" default:"models"`
	} `yaml:"forecaster"`
	Market struct {
		BenchmarkSymbol  string                `yaml:"benchmark_symbol" default:"^GSPC"`
		VolatilitySymbol string                `yaml:"volatility_symbol" default:"^VIX"`
		FeatureConfig    models.FeatureToggles `yaml:"feature_config"`
	} `yaml:"market"`
	Model struct {
		Architecture string  `yaml:"architecture" default:"lstm" validate:"oneof=lstm gru dense"`
		WindowSize   int     `yaml:"window_size" default:"30" validate:"gte=2,lte=365"`
		Epochs       int     `yaml:"epochs" default:"50" validate:"gte=1"`
		LearningRate float64 `yaml:"learning_rate" default:"0.001" validate:"gt=0,lte=1"`
		BatchSize    int     `yaml:"batch_size" default:"32" validate:"gte=1"`
	} `yaml:"model"`
	Tuning struct {
		MinObservations int     `yaml:"min_observations" default:"200" validate:"gte=50"`
		TrainFraction   float64 `yaml:"train_fraction" default:"0.8" validate:"gt=0,lt=1"`
		Grid            struct {
			Architectures []string  `yaml:"architectures" validate:"min=1,dive,oneof=lstm gru dense"`
			WindowSizes   []int     `yaml:"window_sizes" validate:"min=1,dive,gte=2,lte=365"`
			LearningRates []float64 `yaml:"learning_rates" validate:"min=1,dive,gt=0,lte=1"`
			BatchSizes    []int     `yaml:"batch_sizes" validate:"min=1,dive,gte=1"`
			Epochs        []int     `yaml:"epochs" validate:"min=1,dive,gte=1"`
		} `yaml:"grid"`
	} `yaml:"tuning"`
	Prediction struct {
		Days          int     `yaml:"days" default:"7" validate:"gte=1,lte=60"`
		BuyThreshold  float64 `yaml:"buy_threshold" default:"0.05"`
		SellThreshold float64 `yaml:"sell_threshold" default:"-0.05"`
		MinConfidence float64 `yaml:"min_confidence" default:"0.6" validate:"gte=0,lte=1"`
		ErrorGrowth   string  `yaml:"error_growth" default:"sqrt" validate:"oneof=sqrt linear"`
		HistoryDays   int     `yaml:"history_days" default:"30" validate:"gte=0"`
	} `yaml:"prediction"`
	Kafka struct {
		Enabled      bool          `yaml:"enabled"`
		Brokers      []string      `yaml:"brokers"`
		Topic        string        `yaml:"topic" default:"stockcast.signals"`
		RequiredAcks int           `yaml:"required_acks" default:"-1"`
		Compression  string        `yaml:"compression" default:"gzip"`
		MaxAttempts  int           `yaml:"max_attempts" default:"3"`
		WriteTimeout time.Duration `yaml:"write_timeout" default:"10s"`
	} `yaml:"kafka"`
	Cache struct {
		Backend string        `yaml:"backend" default:"memory" validate:"oneof=memory redis"`
		TTL     time.Duration `yaml:"ttl" default:"1h"`
		Redis   struct {
			Host     string `yaml:"host" default:"localhost"`
			Port     int    `yaml:"port" default:"6379"`
			Password string `yaml:"password"`
			DB       int    `yaml:"db"`
		} `yaml:"redis"`
	} `yaml:"cache"`
	Symbols []string `yaml:"symbols" validate:"min=1"`
}

var validate = validator.New()

// Load reads and parses a YAML configuration file. Unknown keys are
// rejected at the boundary rather than silently ignored.
func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	return Parse(b)
}

// Parse decodes, defaults, and validates raw YAML configuration.
// Defaults are applied before decoding so explicit false/zero values in the
// file survive (decoding overrides, absence keeps the default).
func Parse(b []byte) (*Config, error) {
	var c Config
	if err := defaults.Set(&c); err != nil {
		return nil, fmt.Errorf("apply defaults: %w", err)
	}

	dec := yaml.NewDecoder(bytes.NewReader(b))
	dec.KnownFields(true)
	if err := dec.Decode(&c); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return &c, nil
}

// LoadWithEnv loads config from YAML and overrides with environment variables.
func LoadWithEnv(path string) (*Config, error) {
	c, err := Load(path)
	if err != nil {
		return nil, err
	}

	if v := os.Getenv("SYMBOLS"); v != "" {
		c.Symbols = strings.Split(v, ",")
	}
	if v := os.Getenv("FORECASTER_URL"); v != "" {
		c.Forecaster.ServiceURL = v
	}
	if v := os.Getenv("CLICKHOUSE_HOST"); v != "" {
		c.ClickHouse.Host = v
	}
	if v := os.Getenv("CLICKHOUSE_PASSWORD"); v != "" {
		c.ClickHouse.Password = v
	}
	if v := os.Getenv("KAFKA_BROKERS"); v != "" {
		c.Kafka.Brokers = strings.Split(v, ",")
		c.Kafka.Enabled = true
	}
	if v := os.Getenv("REDIS_HOST"); v != "" {
		c.Cache.Redis.Host = v
		c.Cache.Backend = "redis"
	}
	c.Server.Port = util.ParseIntDefault(os.Getenv("PORT"), c.Server.Port)

	return c, nil
}

// Validate checks structural constraints plus the cross-field rules the
// tag language can't express.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return err
	}
	if c.Prediction.BuyThreshold <= c.Prediction.SellThreshold {
		return fmt.Errorf("prediction.buy_threshold must exceed sell_threshold")
	}
	if c.Kafka.Enabled && len(c.Kafka.Brokers) == 0 {
		return fmt.Errorf("kafka.brokers cannot be empty when kafka is enabled")
	}
	return nil
}

// ModelConfig assembles the single-point hyperparameter configuration from
// the model section.
func (c *Config) ModelConfig() models.HyperparameterConfig {
	return models.HyperparameterConfig{
		Architecture: c.Model.Architecture,
		WindowSize:   c.Model.WindowSize,
		LearningRate: c.Model.LearningRate,
		BatchSize:    c.Model.BatchSize,
		Epochs:       c.Model.Epochs,
	}
}
