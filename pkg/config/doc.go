// Package config loads process configuration from environment variables.
//
// It combines github.com/joho/godotenv for optional .env files,
// github.com/caarlos0/env/v11 for `env` struct tags and
// github.com/go-playground/validator/v10 for `validate` struct tags:
//
//	type Config struct {
//	    Addr          string        `env:"HTTP_ADDR" envDefault:":8080" validate:"required"`
//	    PaddleAPIKey  string        `env:"PADDLE_API_KEY" validate:"required"`
//	    SettleDelay   time.Duration `env:"SETTLE_DELAY" envDefault:"500ms" validate:"gte=0"`
//	}
//
//	var cfg Config
//	if err := config.Load(&cfg); err != nil {
//	    log.Fatal(err)
//	}
//
// Each configuration type is parsed and validated once and cached for the
// process lifetime. ResetCache and ForceReload exist for tests that change
// the environment between loads.
//
// Errors wrap ErrParsingConfig, ErrInvalidConfig, ErrLoadingEnvFile or
// ErrNilPointer and can be matched with errors.Is.
package config
