package config

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
)

type Config struct {
	Environment string
	Host        string `toml:"host"`
	Port        int    `toml:"port"`

	// logging
	LogLevel      string `toml:"log_level"`
	LogsPath      string `toml:"logs_path"`
	LogToStdout   bool   `toml:"log_to_stdout"`
	SentryEnabled bool   `toml:"sentry_enabled"`

	// postgres
	PostgresHost   string `toml:"postgres_host"`
	PostgresPort   string `toml:"postgres_port"`
	PostgresDBName string `toml:"postgres_db_name"`

	// redis
	RedisHost string `toml:"redis_host"`
	RedisPort string `toml:"redis_port"`

	// prometheus metrics server
	PrometheusMetricsHost string `toml:"prometheus_metrics_host"`
	PrometheusMetricsPort string `toml:"prometheus_metrics_port"`

	LoginRateLimitAllowedPerMin int `toml:"login_rate_limit_allowed_per_min"`

	// progression: how much the training maxes / working weights go up
	// per category when a program advances (not engine constants on purpose)
	ProgressionUpperIncrement float64 `toml:"progression_upper_increment"`
	ProgressionLowerIncrement float64 `toml:"progression_lower_increment"`

	// prescribed weights are rounded to the nearest multiple of this step
	RoundingStep float64 `toml:"rounding_step"`

	// plate inventory used by the plate solver endpoint;
	// keys are plate weights, values are available pairs
	BarWeight  float64        `toml:"bar_weight"`
	PlatePairs map[string]int `toml:"plate_pairs"`
}

// PlateInventory converts the TOML plate map (string keys) to weight -> pairs.
func (c *Config) PlateInventory() (map[float64]int, error) {
	pairs := make(map[float64]int, len(c.PlatePairs))
	for weightStr, count := range c.PlatePairs {
		weight, err := strconv.ParseFloat(weightStr, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid plate weight %q: %w", weightStr, err)
		}
		pairs[weight] = count
	}
	return pairs, nil
}

type Toml struct {
	Development *Config
	Production  *Config
}

func (t *Toml) Get(env string) (*Config, error) {
	switch strings.ToLower(env) {
	case "dev", "development", "ddev", "dockerdev":
		return t.Development, nil
	case "prod", "production":
		return t.Production, nil
	default:
		return nil, fmt.Errorf("unknown env: %s", env)
	}
}

func Load(env, path string) (*Config, error) {
	var tomlFile Toml
	if _, err := toml.DecodeFile(path, &tomlFile); err != nil {
		return nil, fmt.Errorf("decode toml config: %w", err)
	}

	cfg, err := tomlFile.Get(env)
	if err != nil {
		return nil, err
	}
	if cfg == nil {
		return nil, fmt.Errorf("config for env %s is empty", env)
	}

	cfg.Environment = env

	// progression and rounding defaults, if not set in the file
	if cfg.ProgressionUpperIncrement == 0 {
		cfg.ProgressionUpperIncrement = 5
	}
	if cfg.ProgressionLowerIncrement == 0 {
		cfg.ProgressionLowerIncrement = 10
	}
	if cfg.RoundingStep == 0 {
		cfg.RoundingStep = 5
	}
	if cfg.BarWeight == 0 {
		cfg.BarWeight = 45
	}

	return cfg, nil
}
