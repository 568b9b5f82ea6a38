// Package config loads application configuration from environment variables
// into tagged structs, using github.com/caarlos0/env/v11 for parsing and
// github.com/joho/godotenv for .env files.
//
//	type Config struct {
//	    Schemas string `env:"MODELCHECK_SCHEMAS,required"`
//	    Addr    string `env:"MODELCHECK_ADDR" envDefault:":8080"`
//	}
//
//	var cfg Config
//	if err := config.Load(&cfg); err != nil {
//	    return err
//	}
//
// Each config type is parsed once per process and served from a cache
// afterwards. LoadEnv reads additional .env files; ResetCache forces the next
// Load to parse again, which tests use after changing the environment.
//
// Errors wrap ErrParsingConfig, ErrLoadingEnvFile or ErrNilPointer and can be
// matched with errors.Is.
package config
