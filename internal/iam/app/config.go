package app

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"go.uber.org/multierr"
	"gopkg.in/yaml.v3"

	"github.com/aussiebroadwan/iam/pkg/httpx"
	"github.com/aussiebroadwan/iam/pkg/jwtx"
)

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// Config holds the runtime configuration for the IAM service.
//
// Values are layered: Defaults, then the YAML file named by IAM_CONFIG_FILE
// (if any), then environment variables.
type Config struct {
	Addr       string `yaml:"addr" env:"IAM_ADDR"`
	PepperFile string `yaml:"pepper_file" env:"IAM_PEPPER_FILE"`

	Database DatabaseConfig `yaml:"database"`
	JWT      JWTConfig      `yaml:"jwt"`
	Cache    CacheConfig    `yaml:"cache"`

	HousekeepingInterval time.Duration `yaml:"housekeeping_interval" env:"IAM_HOUSEKEEPING_INTERVAL"`
	ShutdownGracePeriod  time.Duration `yaml:"shutdown_grace" env:"IAM_SHUTDOWN_GRACE"`

	Env       string `yaml:"env" env:"ENV"`
	LogLevel  string `yaml:"log_level" env:"LOG_LEVEL"`
	LogFormat string `yaml:"log_format" env:"LOG_FORMAT"`

	RateLimits httpx.RateLimitProfiles `yaml:"rate_limits" envPrefix:"RATELIMIT_"`
}

type DatabaseConfig struct {
	Driver string `yaml:"driver" env:"IAM_DATABASE_DRIVER"`

	// File is the SQLite database path.
	File string `yaml:"file" env:"IAM_DATABASE_FILE"`

	// URL is the Postgres connection string.
	URL      string `yaml:"url" env:"IAM_DATABASE_URL"`
	MaxConns int32  `yaml:"max_conns" env:"IAM_DATABASE_MAX_CONNS"`
}

// JWTConfig describes the HS256 admin tokens accepted by the API.
type JWTConfig struct {
	Secret   string        `yaml:"secret" env:"IAM_JWT_SECRET"`
	Issuer   string        `yaml:"issuer" env:"IAM_JWT_ISSUER"`
	Audience string        `yaml:"audience" env:"IAM_JWT_AUDIENCE"`
	Leeway   time.Duration `yaml:"leeway" env:"IAM_JWT_LEEWAY"`
}

type CacheConfig struct {
	Size int64         `yaml:"size" env:"IAM_CACHE_SIZE"`
	TTL  time.Duration `yaml:"ttl" env:"IAM_CACHE_TTL"`
}

// Defaults returns the configuration used when nothing is overridden. The
// JWT secret has no default and must always be supplied.
func Defaults() Config {
	return Config{
		Addr:       ":8080",
		PepperFile: "pepper",
		Database: DatabaseConfig{
			Driver:   DriverSQLite,
			File:     "iam.db",
			MaxConns: 10,
		},
		JWT: JWTConfig{
			Issuer: "iam",
			Leeway: 30 * time.Second,
		},
		Cache: CacheConfig{
			Size: 1000,
			TTL:  5 * time.Minute,
		},
		HousekeepingInterval: time.Hour,
		ShutdownGracePeriod:  10 * time.Second,
		Env:                  "dev",
		LogLevel:             "info",
		LogFormat:            "json",
		RateLimits:           httpx.DefaultRateLimitProfiles(),
	}
}

// LoadConfig reads the configuration from IAM_CONFIG_FILE and the environment.
func LoadConfig() (Config, error) {
	return LoadConfigFrom(os.Getenv("IAM_CONFIG_FILE"))
}

// LoadConfigFrom layers the YAML file at path and the environment over
// Defaults. A missing file is not an error.
func LoadConfigFrom(path string) (Config, error) {
	cfg := Defaults()

	if path != "" {
		if err := loadYAML(path, &cfg); err != nil {
			return Config{}, err
		}
	}

	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

func loadYAML(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("read config %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}
	return nil
}

// Validate reports every problem with the configuration at once.
func (c Config) Validate() error {
	var err error

	if c.Addr == "" {
		err = multierr.Append(err, errors.New("addr is required"))
	}
	if c.PepperFile == "" {
		err = multierr.Append(err, errors.New("pepper_file is required"))
	}

	switch c.Database.Driver {
	case DriverSQLite:
		if c.Database.File == "" {
			err = multierr.Append(err, errors.New("database.file is required for sqlite"))
		}
	case DriverPostgres:
		if c.Database.URL == "" {
			err = multierr.Append(err, errors.New("database.url is required for postgres"))
		}
	default:
		err = multierr.Append(err, fmt.Errorf("database.driver %q is not supported", c.Database.Driver))
	}

	if len(c.JWT.Secret) < jwtx.MinSecretLength {
		err = multierr.Append(err, fmt.Errorf("jwt.secret must be at least %d bytes", jwtx.MinSecretLength))
	}
	if c.JWT.Issuer == "" {
		err = multierr.Append(err, errors.New("jwt.issuer is required"))
	}

	if c.Cache.Size <= 0 {
		err = multierr.Append(err, errors.New("cache.size must be positive"))
	}
	if c.Cache.TTL <= 0 {
		err = multierr.Append(err, errors.New("cache.ttl must be positive"))
	}
	if c.HousekeepingInterval <= 0 {
		err = multierr.Append(err, errors.New("housekeeping_interval must be positive"))
	}
	if c.ShutdownGracePeriod <= 0 {
		err = multierr.Append(err, errors.New("shutdown_grace must be positive"))
	}

	limits := map[string]httpx.RateLimitConfig{
		"strict":   c.RateLimits.Strict,
		"moderate": c.RateLimits.Moderate,
		"lenient":  c.RateLimits.Lenient,
		"public":   c.RateLimits.Public,
	}
	for _, name := range []string{"strict", "moderate", "lenient", "public"} {
		l := limits[name]
		if l.RequestsPerWindow <= 0 || l.Window <= 0 || l.Burst <= 0 {
			err = multierr.Append(err, fmt.Errorf("rate_limits.%s values must be positive", name))
		}
	}

	return err
}
