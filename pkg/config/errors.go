package config

import "errors"

var (
	// ErrParsingConfig is returned when environment variables cannot be parsed into the config struct.
	ErrParsingConfig = errors.New("failed to parse environment variables into config")

	// ErrInvalidConfig is returned when a parsed config fails its validate tags.
	ErrInvalidConfig = errors.New("config validation failed")

	// ErrLoadingEnvFile is returned when an explicitly requested .env file cannot be read.
	ErrLoadingEnvFile = errors.New("failed to load env file")

	// ErrNilPointer is returned when a nil pointer is provided to Load.
	ErrNilPointer = errors.New("nil pointer provided to config loader")
)
