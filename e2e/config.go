package e2e

import (
	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	// RELAY_ADDR is the host:port of a running relay; the suite is skipped without it
	RelayAddr string `envconfig:"RELAY_ADDR"`
	// RELAY_TOKEN is sent as bearer token when the relay runs with AUTH_SECRET
	Token string `envconfig:"RELAY_TOKEN"`
	// E2E_DEBUG_JSON dumps every frame exchanged
	DebugJSON bool `envconfig:"E2E_DEBUG_JSON" default:"false"`
	// E2E_COLOURS enables colorized output for better log readability
	Colours bool `envconfig:"E2E_COLOURS" default:"true"`
}

func LoadConfig() (Config, error) {
	var cfg Config
	err := envconfig.Process("", &cfg)
	return cfg, err
}
