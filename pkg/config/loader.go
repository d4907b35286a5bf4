package config

import (
	"errors"
	"fmt"
	"reflect"
	"sync"

	"github.com/caarlos0/env/v11"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

// configCache stores parsed configuration values keyed by type name.
type configCache struct {
	mu     sync.RWMutex
	values map[string]any
}

var (
	globalCache = &configCache{values: make(map[string]any)}

	defaultEnvLoaded sync.Once

	validate = validator.New(validator.WithRequiredStructEnabled())
)

// Load parses environment variables into v and validates the result against
// its `validate` tags. The first call loads an optional .env file from the
// working directory. Each configuration type is parsed once; later calls for
// the same type return the cached copy.
//
//	type ServerConfig struct {
//		Addr    string        `env:"HTTP_ADDR" envDefault:":8080" validate:"required"`
//		Timeout time.Duration `env:"HTTP_TIMEOUT" envDefault:"10s" validate:"gt=0"`
//	}
func Load[T any](v *T) error {
	defaultEnvLoaded.Do(func() {
		// The .env file is optional.
		_ = godotenv.Load()
	})
	if v == nil {
		return ErrNilPointer
	}

	typeName := getTypeName[T]()

	globalCache.mu.RLock()
	cached, ok := globalCache.values[typeName]
	globalCache.mu.RUnlock()
	if ok {
		*v = cached.(T)
		return nil
	}

	globalCache.mu.Lock()
	defer globalCache.mu.Unlock()
	if cached, ok := globalCache.values[typeName]; ok {
		*v = cached.(T)
		return nil
	}

	var parsed T
	if err := env.Parse(&parsed); err != nil {
		return errors.Join(ErrParsingConfig, err)
	}
	if err := validateStruct(&parsed); err != nil {
		return err
	}

	globalCache.values[typeName] = parsed
	*v = parsed
	return nil
}

// MustLoad works like Load but panics if configuration loading fails.
func MustLoad[T any](v *T) {
	if err := Load(v); err != nil {
		panic(fmt.Sprintf("Failed to load required configuration: %v", err))
	}
}

// LoadEnv loads the given .env files into the process environment, earlier
// files winning for keys present in several. Without arguments it loads ./.env.
func LoadEnv(paths ...string) error {
	if err := godotenv.Load(paths...); err != nil {
		return errors.Join(ErrLoadingEnvFile, err)
	}
	return nil
}

// MustLoadEnv is like LoadEnv but panics on failure.
func MustLoadEnv(paths ...string) {
	if err := LoadEnv(paths...); err != nil {
		panic(fmt.Sprintf("Failed to load env files: %v", err))
	}
}

// ResetCache drops every cached configuration value.
func ResetCache() {
	globalCache.mu.Lock()
	defer globalCache.mu.Unlock()
	clear(globalCache.values)
}

// ForceReload discards the cached value for T and parses it again.
func ForceReload[T any](v *T) error {
	globalCache.mu.Lock()
	delete(globalCache.values, getTypeName[T]())
	globalCache.mu.Unlock()
	return Load(v)
}

func validateStruct(v any) error {
	if reflect.Indirect(reflect.ValueOf(v)).Kind() != reflect.Struct {
		return nil
	}
	if err := validate.Struct(v); err != nil {
		return errors.Join(ErrInvalidConfig, err)
	}
	return nil
}

func getTypeName[T any]() string {
	return reflect.TypeFor[T]().String()
}
