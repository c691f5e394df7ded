// Package config loads process configuration from the environment.
//
// Every variable is read as ECOMDATA_<NAME> first and <NAME> second, so
// LOG_LEVEL works as well as ECOMDATA_LOG_LEVEL. A .env file in the working
// directory is loaded first when present; real environment variables win.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

const EnvPrefix = "ECOMDATA"

// Metrics backends.
const (
	MetricsNone        = "none"
	MetricsPushgateway = "pushgateway"
	MetricsDatadog     = "datadog"
)

type Config struct {
	Env           string `envconfig:"APP_ENV" default:"dev" validate:"oneof=dev test staging prod"`
	LogLevel      string `envconfig:"LOG_LEVEL" default:"info" validate:"oneof=trace debug info warn error"`
	LogFormat     string `envconfig:"LOG_FORMAT" default:"json" validate:"oneof=json console"`
	LogErrorStack bool   `envconfig:"LOG_ERROR_STACK" default:"false"`

	MetricsBackend    string        `envconfig:"METRICS_BACKEND" default:"none" validate:"oneof=none pushgateway datadog"`
	PushgatewayURL    string        `envconfig:"PUSHGATEWAY_URL" validate:"required_if=MetricsBackend pushgateway,omitempty,url"`
	MetricsJob        string        `envconfig:"METRICS_JOB" default:"ecomdata" validate:"required"`
	MetricsTags       string        `envconfig:"METRICS_TAGS"`
	MetricsFlushEvery time.Duration `envconfig:"METRICS_FLUSH_EVERY" default:"60s" validate:"gt=0"`

	StorageKind string `envconfig:"STORAGE_KIND" default:"sqlite" validate:"oneof=sqlite postgres mssql"`
	StorageDSN  string `envconfig:"STORAGE_DSN" default:"ecomdata.db"`

	MaxRows int    `envconfig:"MAX_ROWS" default:"100000" validate:"min=1,max=1000000"`
	Seed    uint64 `envconfig:"SEED" default:"0"`
}

func (c Config) IsProd() bool { return c.Env == "prod" }

// Load reads .env (if any), the environment, and validates the result.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("loading .env: %w", err)
	}
	return FromEnv()
}

// FromEnv reads and validates the environment without touching .env.
func FromEnv() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

var validate = validator.New()

// Validate checks field constraints. Load and FromEnv call it; a Config
// changed after loading must be validated again by whoever changed it.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}
