package main

import (
	"github.com/dmitrymomot/modelcheck/pkg/httpserver"
)

// Config is read from the environment (and .env) before flags are parsed.
type Config struct {
	Schemas     string `env:"MODELCHECK_SCHEMAS"`
	AppEnv      string `env:"APP_ENV" envDefault:"development"`
	LogLevel    string `env:"LOG_LEVEL"`
	LogFormat   string `env:"LOG_FORMAT"`
	Metrics     bool   `env:"MODELCHECK_METRICS" envDefault:"true"`
	MaxBodySize int64  `env:"MODELCHECK_MAX_BODY_BYTES" envDefault:"1048576"`

	HTTP httpserver.Config
}
