// Package config loads application settings from .env, config.yml and the environment.
package config

import (
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const defaultJWTSecret = "your-secret-key-change-in-production"

// Config holds application configuration values loaded from file or environment variables.
type Config struct {
	Env             string  `mapstructure:"APP_ENV"`
	Port            string  `mapstructure:"PORT"`
	StoreDriver     string  `mapstructure:"STORE_DRIVER"`
	MongoURI        string  `mapstructure:"MONGO_URI"`
	MongoDB         string  `mapstructure:"MONGO_DB"`
	RedisURL        string  `mapstructure:"REDIS_URL"`
	JWTSecret       string  `mapstructure:"JWT_SECRET"`
	CookieName      string  `mapstructure:"COOKIE_NAME"`
	CookieSecure    bool    `mapstructure:"COOKIE_SECURE"`
	AllowedOrigins  string  `mapstructure:"ALLOWED_ORIGINS"`
	RateLimitPerSec float64 `mapstructure:"RATE_LIMIT_PER_SECOND"`
	RateLimitBurst  int     `mapstructure:"RATE_LIMIT_BURST"`
	UploadDir       string  `mapstructure:"UPLOAD_DIR"`
	PublicURL       string  `mapstructure:"PUBLIC_URL"`
	GeminiAPIKey    string  `mapstructure:"GEMINI_API_KEY"`
	GeminiModel     string  `mapstructure:"GEMINI_MODEL"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("APP_ENV", "development")
	v.SetDefault("PORT", "8080")
	v.SetDefault("STORE_DRIVER", "mongo")
	v.SetDefault("MONGO_URI", "mongodb://localhost:27017")
	v.SetDefault("MONGO_DB", "hirehub")
	v.SetDefault("REDIS_URL", "redis://localhost:6379/0")
	v.SetDefault("JWT_SECRET", defaultJWTSecret)
	v.SetDefault("COOKIE_NAME", "hirehub-token")
	v.SetDefault("COOKIE_SECURE", true)
	v.SetDefault("ALLOWED_ORIGINS", "http://localhost:5173,http://localhost:3000")
	v.SetDefault("RATE_LIMIT_PER_SECOND", 5)
	v.SetDefault("RATE_LIMIT_BURST", 10)
	v.SetDefault("UPLOAD_DIR", "static/uploads")
	v.SetDefault("PUBLIC_URL", "http://localhost:5173")
	v.SetDefault("GEMINI_API_KEY", "")
	v.SetDefault("GEMINI_MODEL", "gemini-2.5-flash")
}

// Load reads .env (if present), then config.yml (if present), then the environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	v := viper.New()
	v.AddConfigPath(".")
	v.SetConfigName("config")
	v.SetConfigType("yml")
	v.AutomaticEnv()
	v.AllowEmptyEnv(true)
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unable to decode config into struct: %w", err)
	}
	cfg.StoreDriver = strings.ToLower(strings.TrimSpace(cfg.StoreDriver))

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

func (c *Config) IsProduction() bool {
	return c.Env == "production" || c.Env == "prod"
}

// Origins splits ALLOWED_ORIGINS into a list.
func (c *Config) Origins() []string {
	var out []string
	for _, o := range strings.Split(c.AllowedOrigins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			out = append(out, o)
		}
	}
	return out
}

// Validate ensures that required configuration values are present and meet security standards.
func (c *Config) Validate() error {
	if c.Port == "" {
		return errors.New("PORT is required")
	}
	if c.JWTSecret == "" {
		return errors.New("JWT_SECRET is required")
	}
	if c.CookieName == "" {
		return errors.New("COOKIE_NAME is required")
	}
	switch c.StoreDriver {
	case "mongo":
		if c.MongoURI == "" {
			return errors.New("MONGO_URI is required when STORE_DRIVER is mongo")
		}
	case "memory":
	default:
		return fmt.Errorf("unknown STORE_DRIVER %q", c.StoreDriver)
	}

	if c.IsProduction() {
		if c.JWTSecret == defaultJWTSecret {
			return errors.New("JWT_SECRET must be changed from the default value in production")
		}
		if len(c.JWTSecret) < 32 {
			return errors.New("JWT_SECRET must be at least 32 characters in production")
		}
		for _, o := range c.Origins() {
			if o == "*" {
				return errors.New("ALLOWED_ORIGINS cannot be '*' in production: session cookies need explicit origins")
			}
		}
		if !c.CookieSecure {
			log.Println("WARNING: COOKIE_SECURE is false in production. Session cookies will not be sent cross-site.")
		}
	} else if len(c.JWTSecret) < 32 {
		log.Println("WARNING: JWT_SECRET is shorter than 32 characters. Consider using a stronger secret for production.")
	}
	return nil
}
