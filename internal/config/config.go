package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"
)

type Config struct {
	Environment Environment
	Log         Log
	HTTP        HTTPServer
	BaseURL     string `env:"BASE_URL" envDefault:"http://localhost:8080"`

	Database Database `envPrefix:"DATABASE_"`
	Razorpay Razorpay `envPrefix:"RAZORPAY_"`
	Storage  Storage  `envPrefix:"STORAGE_"`
	Auth     Auth     `envPrefix:"AUTH_"`
	AWS      AWS      `envPrefix:"AWS_"`
}

type Database struct {
	Driver string `env:"DRIVER" envDefault:"postgres"` // postgres, mysql, sqlite
	URL    string `env:"URL"`
}

type Razorpay struct {
	BaseApiURL    string `env:"BASE_API_URL" envDefault:"https://api.razorpay.com"`
	KeyID         string `env:"KEY_ID"`
	KeySecret     string `env:"KEY_SECRET"`
	WebhookSecret string `env:"WEBHOOK_SECRET"`
	Currency      string `env:"CURRENCY" envDefault:"INR"`

	// Verify the checkout signature before recording a purchase.
	RequireSignature bool `env:"REQUIRE_SIGNATURE" envDefault:"false"`

	// Name of an AWS Secrets Manager secret holding key_id, key_secret and webhook_secret.
	SecretID string `env:"SECRET_ID"`
}

type Storage struct {
	Driver        string `env:"DRIVER" envDefault:"disk"` // disk, s3
	Dir           string `env:"DIR" envDefault:"./data/assets"`
	PublicBaseURL string `env:"PUBLIC_BASE_URL"`
	Bucket        string `env:"BUCKET"`
	Endpoint      string `env:"ENDPOINT"`
}

type Auth struct {
	JWTSecret  string `env:"JWT_SECRET"`
	AdminEmail string `env:"ADMIN_EMAIL"`
}

type AWS struct {
	Region string `env:"REGION" envDefault:"ap-south-1"`
}

type Environment struct {
	Name string `env:"ENVIRONMENT" envDefault:"development"`
}

type Log struct {
	Level  string `env:"LOG_LEVEL" envDefault:"info"`
	Format string `env:"LOG_FORMAT" envDefault:"json"`
}

type HTTPServer struct {
	Host string `env:"HTTP_HOST" envDefault:"0.0.0.0"`
	Port string `env:"HTTP_PORT" envDefault:"8080"`
}

// Load reads .env (if any) into the process environment and parses it into a Config.
func Load() (*Config, error) {
	// a missing .env is fine outside development
	_ = godotenv.Load()

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	return cfg, nil
}

var ErrMissingCredentials = errors.New("missing payment provider credentials")

// Validate rejects configurations the service must not start with.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Razorpay.KeyID) == "" || strings.TrimSpace(c.Razorpay.KeySecret) == "" {
		return fmt.Errorf("%w: RAZORPAY_KEY_ID and RAZORPAY_KEY_SECRET are required", ErrMissingCredentials)
	}
	if c.Database.URL == "" {
		return errors.New("DATABASE_URL is required")
	}
	switch c.Database.Driver {
	case "postgres", "mysql", "sqlite":
	default:
		return fmt.Errorf("unsupported DATABASE_DRIVER %q", c.Database.Driver)
	}
	switch c.Storage.Driver {
	case "disk":
	case "s3":
		if c.Storage.Bucket == "" {
			return errors.New("STORAGE_BUCKET is required for s3 storage")
		}
	default:
		return fmt.Errorf("unsupported STORAGE_DRIVER %q", c.Storage.Driver)
	}
	if c.Auth.JWTSecret == "" {
		return errors.New("AUTH_JWT_SECRET is required")
	}
	return nil
}

// AssetBaseURL is the public prefix asset keys are appended to.
func (c *Config) AssetBaseURL() string {
	if c.Storage.PublicBaseURL != "" {
		return strings.TrimRight(c.Storage.PublicBaseURL, "/")
	}
	if c.Storage.Driver == "s3" {
		return fmt.Sprintf("https://%s.s3.%s.amazonaws.com", c.Storage.Bucket, c.AWS.Region)
	}
	return strings.TrimRight(c.BaseURL, "/") + "/assets"
}

func (c *Config) IsDevelopment() bool {
	return c.Environment.Name == "development" || c.Environment.Name == "dev"
}
