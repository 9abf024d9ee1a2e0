package app

import (
	"time"

	"github.com/vitalvas/kestrel/config"
	"github.com/vitalvas/kestrel/mux"
	"github.com/vitalvas/kestrel/validator"
)

// Config holds the application settings. Every field can be set from the
// environment; see LoadConfig.
type Config struct {
	Addr            string        `env:"KESTREL_ADDR" envDefault:":8080"`
	ReadTimeout     time.Duration `env:"KESTREL_READ_TIMEOUT" envDefault:"30s"`
	WriteTimeout    time.Duration `env:"KESTREL_WRITE_TIMEOUT" envDefault:"30s"`
	IdleTimeout     time.Duration `env:"KESTREL_IDLE_TIMEOUT" envDefault:"120s"`
	ShutdownTimeout time.Duration `env:"KESTREL_SHUTDOWN_TIMEOUT" envDefault:"5s"`

	// MaxConns caps concurrent connections. Zero means unlimited.
	MaxConns int `env:"KESTREL_MAX_CONNS" envDefault:"0"`

	// MaxBodyBytes caps request bodies. Zero or less disables the check.
	MaxBodyBytes int64  `env:"KESTREL_MAX_BODY_BYTES" envDefault:"33554432"`
	TempDir      string `env:"KESTREL_TEMP_DIR" envDefault:"temp"`

	// Env selects logger defaults: development, staging or production.
	Env     string `env:"KESTREL_ENV" envDefault:"development"`
	Service string `env:"KESTREL_SERVICE" envDefault:"kestrel"`

	Validator validator.Config
}

// DefaultConfig returns the configuration used when no environment
// variables are set.
func DefaultConfig() Config {
	return Config{
		Addr:            ":8080",
		ReadTimeout:     30 * time.Second,
		WriteTimeout:    30 * time.Second,
		IdleTimeout:     120 * time.Second,
		ShutdownTimeout: 5 * time.Second,
		MaxBodyBytes:    mux.DefaultMaxBodyBytes,
		TempDir:         "temp",
		Env:             "development",
		Service:         "kestrel",
		Validator:       validator.DefaultConfig(),
	}
}

// LoadConfig reads Config from the environment and an optional .env file.
// The result is cached for the process lifetime.
func LoadConfig() (Config, error) {
	var cfg Config
	if err := config.Load(&cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}
