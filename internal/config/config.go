package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds runtime configuration values for the API service.
type Config struct {
	AppName              string
	AppEnv               string
	AppPort              string
	DatabaseURL          string
	RedisURL             string
	JWTSecret            string
	PistonURL            string
	PistonTimeout        time.Duration
	ProgressCacheTTL     time.Duration
	NATSURL              string
	NotificationsSubject string
	AIProvider           string
	OpenAIAPIKey         string
	OpenAIModel          string
}

// HTTPAddress returns the address the HTTP server should listen on.
func (c Config) HTTPAddress() string {
	if strings.HasPrefix(c.AppPort, ":") {
		return c.AppPort
	}

	return fmt.Sprintf(":%s", c.AppPort)
}

// Load reads configuration values from environment variables and optional .env file.
func Load() (Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetEnvPrefix("LABREC")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	v.SetDefault("app.name", "LabRec API")
	v.SetDefault("app.env", "development")
	v.SetDefault("app.port", "8080")
	v.SetDefault("piston.url", "https://emkc.org/api/v2/piston")
	v.SetDefault("piston.timeout", "15s")
	v.SetDefault("progress.cache_ttl", "2m")
	v.SetDefault("notifications.subject", "labrec.reviews")
	v.SetDefault("ai.provider", "openai")
	v.SetDefault("openai.model", "gpt-4o-mini")

	ttl, err := time.ParseDuration(v.GetString("progress.cache_ttl"))
	if err != nil {
		return Config{}, fmt.Errorf("invalid progress cache ttl: %w", err)
	}

	pistonTimeout, err := time.ParseDuration(v.GetString("piston.timeout"))
	if err != nil {
		return Config{}, fmt.Errorf("invalid piston timeout: %w", err)
	}

	cfg := Config{
		AppName:              v.GetString("app.name"),
		AppEnv:               v.GetString("app.env"),
		AppPort:              v.GetString("app.port"),
		DatabaseURL:          v.GetString("database.url"),
		RedisURL:             v.GetString("redis.url"),
		JWTSecret:            v.GetString("jwt.secret"),
		PistonURL:            v.GetString("piston.url"),
		PistonTimeout:        pistonTimeout,
		ProgressCacheTTL:     ttl,
		NATSURL:              v.GetString("nats.url"),
		NotificationsSubject: v.GetString("notifications.subject"),
		AIProvider:           strings.ToLower(v.GetString("ai.provider")),
		OpenAIAPIKey:         v.GetString("openai.api_key"),
		OpenAIModel:          v.GetString("openai.model"),
	}

	if cfg.JWTSecret == "" {
		return Config{}, fmt.Errorf("jwt secret must be provided")
	}

	return cfg, nil
}
