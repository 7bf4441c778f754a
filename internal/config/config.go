package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config is the runtime configuration shared by the commands.
// Values come from an optional YAML file and are overridden by environment variables.
type Config struct {
	Port        string `yaml:"port"`
	DBDriver    string `yaml:"db_driver"`
	DBPath      string `yaml:"db_path"`
	DatabaseURL string `yaml:"database_url"`
	SeedPath    string `yaml:"seed_path"`

	RedisURL     string        `yaml:"redis_url"`
	PlanCacheTTL time.Duration `yaml:"plan_cache_ttl"`

	DefaultVehicles int `yaml:"default_vehicles"`
	MatrixWorkers   int `yaml:"matrix_workers"`

	Geocoder           string `yaml:"geocoder"`
	GoogleAPIKey       string `yaml:"google_api_key"`
	ORSAPIKey          string `yaml:"ors_api_key"`
	NominatimUserAgent string `yaml:"nominatim_user_agent"`

	LogLevel  string `yaml:"log_level"`
	LogFormat string `yaml:"log_format"`
}

func Default() Config {
	return Config{
		Port:               "8080",
		DBDriver:           "sqlite",
		DBPath:             "data/app.db",
		SeedPath:           "data/seeds/stops.json",
		PlanCacheTTL:       10 * time.Minute,
		DefaultVehicles:    1,
		MatrixWorkers:      4,
		Geocoder:           "nominatim",
		NominatimUserAgent: "route-planner",
		LogLevel:           "info",
		LogFormat:          "text",
	}
}

// Load reads .env (if present), then the YAML file named by CONFIG_FILE
// (if set), then applies environment overrides and validates the result.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil {
		slog.Debug("no .env file found, using environment variables")
	}

	cfg := Default()
	if path := strings.TrimSpace(os.Getenv("CONFIG_FILE")); path != "" {
		if err := cfg.loadFile(path); err != nil {
			return Config{}, err
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return Config{}, err
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("load config: read %q: %w", path, err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("load config: parse %q: %w", path, err)
	}
	return nil
}

func (c *Config) applyEnv() error {
	c.Port = Get("PORT", c.Port)
	c.DBDriver = Get("DB_DRIVER", c.DBDriver)
	c.DBPath = Get("DB_PATH", c.DBPath)
	c.DatabaseURL = Get("DATABASE_URL", c.DatabaseURL)
	c.SeedPath = Get("SEED_PATH", c.SeedPath)
	c.RedisURL = Get("REDIS_URL", c.RedisURL)
	c.Geocoder = Get("GEOCODER", c.Geocoder)
	c.GoogleAPIKey = Get("GOOGLE_API_KEY", c.GoogleAPIKey)
	c.ORSAPIKey = Get("ORS_API_KEY", c.ORSAPIKey)
	c.NominatimUserAgent = Get("NOMINATIM_USER_AGENT", c.NominatimUserAgent)
	c.LogLevel = Get("LOG_LEVEL", c.LogLevel)
	c.LogFormat = Get("LOG_FORMAT", c.LogFormat)

	var err error
	if c.DefaultVehicles, err = getInt("DEFAULT_VEHICLES", c.DefaultVehicles); err != nil {
		return err
	}
	if c.MatrixWorkers, err = getInt("MATRIX_WORKERS", c.MatrixWorkers); err != nil {
		return err
	}
	if v := Get("PLAN_CACHE_TTL", ""); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("load config: PLAN_CACHE_TTL %q: %w", v, err)
		}
		c.PlanCacheTTL = d
	}
	return nil
}

func (c Config) Validate() error {
	var errs []error
	switch c.DBDriver {
	case "sqlite":
		if strings.TrimSpace(c.DBPath) == "" {
			errs = append(errs, errors.New("DB_PATH is required for sqlite"))
		}
	case "postgres":
		if strings.TrimSpace(c.DatabaseURL) == "" {
			errs = append(errs, errors.New("DATABASE_URL is required for postgres"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown DB_DRIVER %q (want sqlite or postgres)", c.DBDriver))
	}
	if c.DefaultVehicles < 1 {
		errs = append(errs, fmt.Errorf("DEFAULT_VEHICLES must be positive, got %d", c.DefaultVehicles))
	}
	if c.MatrixWorkers < 1 {
		errs = append(errs, fmt.Errorf("MATRIX_WORKERS must be positive, got %d", c.MatrixWorkers))
	}
	if c.PlanCacheTTL < 0 {
		errs = append(errs, fmt.Errorf("PLAN_CACHE_TTL must not be negative, got %s", c.PlanCacheTTL))
	}
	switch c.Geocoder {
	case "nominatim", "google", "ors":
	default:
		errs = append(errs, fmt.Errorf("unknown GEOCODER %q", c.Geocoder))
	}
	if len(errs) > 0 {
		return fmt.Errorf("invalid config: %w", errors.Join(errs...))
	}
	return nil
}

// Get returns the environment value for key, or fallback when unset or blank.
func Get(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func getInt(key string, fallback int) (int, error) {
	v := Get(key, "")
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("load config: %s %q: %w", key, v, err)
	}
	return n, nil
}
