package main

import (
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"

	"github.com/erc7824/solrpc/pkg/journal"
	"github.com/erc7824/solrpc/pkg/log"
	"github.com/erc7824/solrpc/pkg/sign"
)

// Config represents the overall application configuration
type Config struct {
	HTTPURL string `env:"SOLRPC_HTTP_URL" env-default:"http://127.0.0.1:8899" validate:"required,url"`
	WSURL   string `env:"SOLRPC_WS_URL" env-default:"ws://127.0.0.1:8900" validate:"required,url"`
	// PrivateKey is only needed for transfers: base58 keypair or 0x-hex seed.
	PrivateKey     string        `env:"SOLRPC_PRIVATE_KEY"`
	RequestTimeout time.Duration `env:"SOLRPC_REQUEST_TIMEOUT" env-default:"30s" validate:"gt=0"`
	MetricsAddr    string        `env:"SOLRPC_METRICS_ADDR" env-default:""`

	Database journal.Config
	Log      log.Config
}

var ErrNoPrivateKey = fmt.Errorf("SOLRPC_PRIVATE_KEY is not set")

// LoadConfig reads envPath, if it exists, into the process environment and
// builds the configuration from environment variables.
func LoadConfig(envPath string) (*Config, error) {
	if envPath != "" {
		if err := godotenv.Load(envPath); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("failed to load %s: %w", envPath, err)
		}
	}

	var cfg Config
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, fmt.Errorf("failed to read env: %w", err)
	}
	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

// Signer parses the configured private key.
func (c *Config) Signer() (*sign.KeyPair, error) {
	if c.PrivateKey == "" {
		return nil, ErrNoPrivateKey
	}
	return sign.ParseKeyPair(c.PrivateKey)
}
