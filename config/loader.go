package config

import (
	"errors"
	"fmt"
	"reflect"
	"sync"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// cache holds one parsed copy per configuration type. Failed loads are not
// cached, so a later call after fixing the environment succeeds.
type cache struct {
	mu     sync.Mutex
	values map[reflect.Type]any
}

var (
	global = &cache{values: make(map[reflect.Type]any)}

	defaultEnvLoaded sync.Once
)

// LoadEnv loads the named .env files into the process environment. Values
// already present in the environment are kept. Unlike the implicit .env
// loading done by Load, a missing file is an error.
func LoadEnv(files ...string) error {
	if err := godotenv.Load(files...); err != nil {
		return errors.Join(ErrLoadingEnvFile, err)
	}
	return nil
}

// Load fills v from environment variables using `env` and `envDefault`
// struct tags. The first call also loads .env from the working directory
// when present. Each configuration type is parsed once; later calls copy
// the cached value.
//
//	type ServerConfig struct {
//	    Addr string        `env:"ADDR" envDefault:":8080"`
//	    Wait time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"5s"`
//	}
//
//	var cfg ServerConfig
//	if err := config.Load(&cfg); err != nil {
//	    return err
//	}
func Load[T any](v *T) error {
	defaultEnvLoaded.Do(func() {
		// .env is optional.
		_ = godotenv.Load()
	})

	if v == nil {
		return ErrNilPointer
	}

	key := reflect.TypeFor[T]()

	global.mu.Lock()
	defer global.mu.Unlock()

	if cached, ok := global.values[key]; ok {
		*v = cached.(T)
		return nil
	}

	parsed, err := Parse[T]()
	if err != nil {
		return err
	}

	global.values[key] = parsed
	*v = parsed
	return nil
}

// MustLoad works like Load but panics if loading fails. Use it for
// configuration the process cannot start without.
func MustLoad[T any](v *T) {
	if err := Load(v); err != nil {
		panic(fmt.Sprintf("config: failed to load required configuration: %v", err))
	}
}

// Parse reads T from the current environment without touching the cache.
func Parse[T any]() (T, error) {
	var v T
	if err := env.Parse(&v); err != nil {
		return v, errors.Join(ErrParsingConfig, err)
	}
	return v, nil
}

// Reset drops every cached configuration. Intended for tests.
func Reset() {
	global.mu.Lock()
	defer global.mu.Unlock()

	global.values = make(map[reflect.Type]any)
}
