package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"

	"github.com/i474232898/hourly-forecast/internal/weather"
	"github.com/i474232898/hourly-forecast/internal/weather/providers"
)

// Default coordinate: Stockholm (Södermalm).
const (
	DefaultLon = 18.021515
	DefaultLat = 59.30996
)

type AppConfig struct {
	Port string `yaml:"port" validate:"required,numeric"`

	// Forecast source.
	SMHIBaseURL string           `yaml:"smhiBaseURL" validate:"required,url"`
	Location    weather.Location `yaml:"location"`
	HTTPTimeout time.Duration    `yaml:"httpTimeout" validate:"gt=0"`

	// TimeZone names the zone the synthetic hour labels start in.
	TimeZone string         `yaml:"timeZone" validate:"required"`
	Zone     *time.Location `yaml:"-"`

	// ProbeInterval controls the upstream reachability check (0 = disabled).
	ProbeInterval time.Duration `yaml:"probeInterval" validate:"gte=0"`

	// Circuit breaker around the forecast source (0 failures = disabled).
	BreakerMaxFailures uint32        `yaml:"breakerMaxFailures"`
	BreakerOpenTimeout time.Duration `yaml:"breakerOpenTimeout" validate:"gt=0"`

	LogLevel string `yaml:"logLevel" validate:"oneof=trace debug info warn warning error fatal panic"`
}

var validate = validator.New()

// Default returns the configuration used when nothing is set.
func Default() *AppConfig {
	return &AppConfig{
		Port:               "8080",
		SMHIBaseURL:        providers.DefaultSMHIBaseURL,
		Location:           weather.Location{Lon: DefaultLon, Lat: DefaultLat},
		HTTPTimeout:        10 * time.Second,
		TimeZone:           "Local",
		ProbeInterval:      5 * time.Minute,
		BreakerMaxFailures: 5,
		BreakerOpenTimeout: time.Minute,
		LogLevel:           "info",
	}
}

// Load reads configuration from an optional YAML file (CONFIG_FILE) and then
// from the environment, which takes precedence.
func Load() (*AppConfig, error) {
	if err := godotenv.Load(); err != nil {
		log.Debugf("no .env file found or error loading it: %v", err)
	}
	cfg := Default()

	if path := os.Getenv("CONFIG_FILE"); path != "" {
		if err := cfg.loadFile(path); err != nil {
			return nil, err
		}
	}

	if err := cfg.loadEnv(); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks field constraints and resolves the time zone.
func (c *AppConfig) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	zone, err := time.LoadLocation(c.TimeZone)
	if err != nil {
		return fmt.Errorf("invalid FORECAST_TIMEZONE: %w", err)
	}
	c.Zone = zone
	return nil
}

// BreakerConfig returns the provider circuit breaker settings.
func (c *AppConfig) BreakerConfig() providers.BreakerConfig {
	return providers.BreakerConfig{
		MaxConsecutiveFailures: c.BreakerMaxFailures,
		OpenTimeout:            c.BreakerOpenTimeout,
	}
}

func (c *AppConfig) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}
	return nil
}

func (c *AppConfig) loadEnv() error {
	c.Port = getenvDefault("PORT", c.Port)
	c.SMHIBaseURL = getenvDefault("SMHI_BASE_URL", c.SMHIBaseURL)
	c.TimeZone = getenvDefault("FORECAST_TIMEZONE", c.TimeZone)
	c.LogLevel = getenvDefault("LOG_LEVEL", c.LogLevel)

	var err error
	if c.Location.Lon, err = getenvFloat("FORECAST_LON", c.Location.Lon); err != nil {
		return err
	}
	if c.Location.Lat, err = getenvFloat("FORECAST_LAT", c.Location.Lat); err != nil {
		return err
	}
	if c.HTTPTimeout, err = getenvDuration("HTTP_TIMEOUT", c.HTTPTimeout); err != nil {
		return err
	}
	if c.ProbeInterval, err = getenvDuration("PROBE_INTERVAL", c.ProbeInterval); err != nil {
		return err
	}
	if c.BreakerOpenTimeout, err = getenvDuration("BREAKER_OPEN_TIMEOUT", c.BreakerOpenTimeout); err != nil {
		return err
	}

	if v := os.Getenv("BREAKER_MAX_FAILURES"); v != "" {
		n, err := strconv.ParseUint(v, 10, 32)
		if err != nil {
			return fmt.Errorf("invalid BREAKER_MAX_FAILURES: %w", err)
		}
		c.BreakerMaxFailures = uint32(n)
	}
	return nil
}

func getenvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvFloat(key string, def float64) (float64, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return f, nil
}

func getenvDuration(key string, def time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}
