package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"weather-pipeline/internal/weather"
)

// AppConfig is the immutable runtime configuration, resolved once at
// process start. A missing API credential is a fatal startup error,
// never a per-cycle one.
type AppConfig struct {
	// OpenWeatherAPIKey authenticates against the provider.
	OpenWeatherAPIKey string `validate:"required"`

	// BaseURL of the provider's current-conditions endpoint.
	BaseURL string `validate:"required,url"`

	// Units requested from the provider (metric or imperial).
	Units weather.Units `validate:"required,oneof=metric imperial"`

	// Cities to track each cycle.
	Cities []string `validate:"required,min=1,dive,required"`

	// FetchInterval controls the scheduler cadence.
	FetchInterval time.Duration `validate:"required"`

	// RetentionDays bounds how long records are kept.
	RetentionDays int `validate:"min=1"`

	// Database connection parameters.
	DBHost     string `validate:"required"`
	DBPort     int    `validate:"required"`
	DBName     string `validate:"required"`
	DBUser     string `validate:"required"`
	DBPassword string
	DBSSLMode  string

	// HTTPTimeout bounds each outbound provider call.
	HTTPTimeout time.Duration

	// Port the read API listens on.
	Port string
}

// DSN renders the PostgreSQL connection string.
func (c *AppConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.DBHost, c.DBPort, c.DBUser, c.DBPassword, c.DBName, c.DBSSLMode)
}

// Load reads configuration from environment with sensible defaults and
// validates it as a whole.
func Load() (*AppConfig, error) {
	cfg := &AppConfig{
		OpenWeatherAPIKey: os.Getenv("OPENWEATHER_API_KEY"),
		BaseURL:           getenvDefault("OPENWEATHER_BASE_URL", "https://api.openweathermap.org/data/2.5/weather"),
		Units:             weather.Units(getenvDefault("WEATHER_UNITS", string(weather.UnitsMetric))),
		RetentionDays:     getenvInt("RETENTION_DAYS", 30),
		DBHost:            getenvDefault("DB_HOST", "localhost"),
		DBPort:            getenvInt("DB_PORT", 5432),
		DBName:            getenvDefault("DB_NAME", "weather_db"),
		DBUser:            getenvDefault("DB_USER", "postgres"),
		DBPassword:        getenvDefault("DB_PASSWORD", "postgres"),
		DBSSLMode:         getenvDefault("DB_SSLMODE", "disable"),
		Port:              getenvDefault("PORT", "8080"),
	}

	intervalStr := getenvDefault("FETCH_INTERVAL", "5m")
	interval, err := time.ParseDuration(intervalStr)
	if err != nil {
		return nil, fmt.Errorf("invalid FETCH_INTERVAL: %w", err)
	}
	cfg.FetchInterval = interval

	timeoutStr := getenvDefault("HTTP_TIMEOUT", "10s")
	timeout, err := time.ParseDuration(timeoutStr)
	if err != nil {
		return nil, fmt.Errorf("invalid HTTP_TIMEOUT: %w", err)
	}
	cfg.HTTPTimeout = timeout

	cfg.Cities = splitCities(getenvDefault("CITIES", "Toronto,Montreal,Vancouver"))

	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

func splitCities(raw string) []string {
	var cities []string
	for _, c := range strings.Split(raw, ",") {
		c = strings.TrimSpace(c)
		if c != "" {
			cities = append(cities, c)
		}
	}
	return cities
}

func getenvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		n, err := strconv.Atoi(v)
		if err == nil {
			return n
		}
	}
	return def
}
