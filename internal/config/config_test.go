package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() *Config {
	return &Config{
		BaseURL:  "http://localhost:8080",
		Database: Database{Driver: "sqlite", URL: "file::memory:"},
		Razorpay: Razorpay{KeyID: "rzp_test_key", KeySecret: "secret", Currency: "INR"},
		Storage:  Storage{Driver: "disk", Dir: "./data"},
		Auth:     Auth{JWTSecret: "jwt-secret"},
		AWS:      AWS{Region: "ap-south-1"},
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{name: "valid", mutate: func(c *Config) {}},
		{name: "missing key id", mutate: func(c *Config) { c.Razorpay.KeyID = "" }, wantErr: "missing payment provider credentials"},
		{name: "missing key secret", mutate: func(c *Config) { c.Razorpay.KeySecret = " " }, wantErr: "missing payment provider credentials"},
		{name: "missing database url", mutate: func(c *Config) { c.Database.URL = "" }, wantErr: "DATABASE_URL"},
		{name: "unknown driver", mutate: func(c *Config) { c.Database.Driver = "oracle" }, wantErr: "DATABASE_DRIVER"},
		{name: "s3 without bucket", mutate: func(c *Config) { c.Storage.Driver = "s3" }, wantErr: "STORAGE_BUCKET"},
		{name: "missing jwt secret", mutate: func(c *Config) { c.Auth.JWTSecret = "" }, wantErr: "AUTH_JWT_SECRET"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)

			err := cfg.Validate()
			if tt.wantErr == "" {
				require.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestValidate_MissingCredentialsIsSentinel(t *testing.T) {
	cfg := validConfig()
	cfg.Razorpay.KeySecret = ""

	assert.ErrorIs(t, cfg.Validate(), ErrMissingCredentials)
}

func TestAssetBaseURL(t *testing.T) {
	cfg := validConfig()
	assert.Equal(t, "http://localhost:8080/assets", cfg.AssetBaseURL())

	cfg.Storage.Driver = "s3"
	cfg.Storage.Bucket = "notes"
	assert.Equal(t, "https://notes.s3.ap-south-1.amazonaws.com", cfg.AssetBaseURL())

	cfg.Storage.PublicBaseURL = "https://cdn.example.com/notes/"
	assert.Equal(t, "https://cdn.example.com/notes", cfg.AssetBaseURL())
}

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("RAZORPAY_KEY_ID", "rzp_test_key")
	t.Setenv("DATABASE_URL", "postgres://localhost/notes")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "rzp_test_key", cfg.Razorpay.KeyID)
	assert.Equal(t, "INR", cfg.Razorpay.Currency)
	assert.Equal(t, "https://api.razorpay.com", cfg.Razorpay.BaseApiURL)
	assert.False(t, cfg.Razorpay.RequireSignature)
	assert.Equal(t, "postgres", cfg.Database.Driver)
	assert.Equal(t, "disk", cfg.Storage.Driver)
	assert.Equal(t, "8080", cfg.HTTP.Port)
}
