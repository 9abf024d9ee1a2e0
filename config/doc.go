// Package config loads application configuration from environment
// variables into tagged structs.
//
// Parsing is delegated to github.com/caarlos0/env/v11 and .env files are
// read with github.com/joho/godotenv. Each configuration type is parsed
// once per process and served from a cache afterwards; Reset clears the
// cache between tests and Parse bypasses it.
//
// Errors can be compared with errors.Is against ErrParsingConfig,
// ErrLoadingEnvFile and ErrNilPointer.
package config
