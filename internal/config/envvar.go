package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

// Environment variable names read by the SDK.
const (
	EnvAPIKey  = "RESIN_API_KEY"  // API key used when no session token is stored
	EnvDataDir = "RESIN_DATA_DIR" // overrides the ~/.resin data directory
)

// Env holds settings taken from the process environment. None of them are
// written to resin.cfg.
type Env struct {
	APIKey  string `env:"RESIN_API_KEY"`
	DataDir string `env:"RESIN_DATA_DIR"`
}

// LoadEnv reads Env from the process environment.
func LoadEnv() (Env, error) {
	var e Env
	if err := env.Parse(&e); err != nil {
		return Env{}, fmt.Errorf("parsing environment: %w", err)
	}
	return e, nil
}
