package config

import (
	"errors"
	"fmt"
	"time"

	"upick/internal/models"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config stores all configuration of the application.
// Values are read from app.env in the given path and overridden by environment variables.
type Config struct {
	ServerAddress    string        `mapstructure:"SERVER_ADDRESS"`
	DBSource         string        `mapstructure:"DB_SOURCE"`
	PlacesEndpoint   string        `mapstructure:"PLACES_ENDPOINT"`
	PlacesAPIKey     string        `mapstructure:"PLACES_API_KEY"`
	PlacesRadius     int           `mapstructure:"PLACES_RADIUS"`
	PlacesLimit      int           `mapstructure:"PLACES_LIMIT"`
	PlacesTimeout    time.Duration `mapstructure:"PLACES_TIMEOUT"`
	LogLevel         string        `mapstructure:"LOG_LEVEL"`
	DefaultLatitude  float64       `mapstructure:"DEFAULT_LATITUDE"`
	DefaultLongitude float64       `mapstructure:"DEFAULT_LONGITUDE"`
}

// LoadConfig reads configuration from path/app.env and the environment.
// A .env file in the working directory is loaded first, if present.
func LoadConfig(path string) (Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.AddConfigPath(path)
	v.SetConfigName("app")
	v.SetConfigType("env")

	v.SetDefault("SERVER_ADDRESS", "0.0.0.0:8080")
	v.SetDefault("DB_SOURCE", "")
	v.SetDefault("PLACES_ENDPOINT", "https://api.yelp.com/v3/graphql")
	v.SetDefault("PLACES_API_KEY", "")
	v.SetDefault("PLACES_RADIUS", models.DefaultRadius)
	v.SetDefault("PLACES_LIMIT", 0)
	v.SetDefault("PLACES_TIMEOUT", 10*time.Second)
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("DEFAULT_LATITUDE", 0.0)
	v.SetDefault("DEFAULT_LONGITUDE", 0.0)

	v.AutomaticEnv()
	// The mobile client used these names; keep them working.
	_ = v.BindEnv("PLACES_ENDPOINT", "PLACES_ENDPOINT", "REACT_APP_ENDPOINT")
	_ = v.BindEnv("PLACES_API_KEY", "PLACES_API_KEY", "REACT_APP_API_KEY")

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("config: failed to read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("config: failed to decode config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks values that would otherwise fail late at request time.
func (c Config) Validate() error {
	if c.PlacesEndpoint == "" {
		return fmt.Errorf("config: PLACES_ENDPOINT is required")
	}
	if c.PlacesRadius <= 0 || c.PlacesRadius > models.MaxRadius {
		return fmt.Errorf("config: PLACES_RADIUS must be in (0, %d], got %d", models.MaxRadius, c.PlacesRadius)
	}
	if c.PlacesLimit < 0 || c.PlacesLimit > 50 {
		return fmt.Errorf("config: PLACES_LIMIT must be in [0, 50], got %d", c.PlacesLimit)
	}
	if c.PlacesTimeout <= 0 {
		return fmt.Errorf("config: PLACES_TIMEOUT must be positive")
	}
	return nil
}
