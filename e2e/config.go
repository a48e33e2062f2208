package e2e

import (
	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	// E2E_SERVER_URL is the HTTP base address of a running server; the suites skip when empty
	ServerURL string `envconfig:"E2E_SERVER_URL"`
	// E2E_HEALTH_ADDR is the gRPC health endpoint of the same server
	HealthAddr string `envconfig:"E2E_HEALTH_ADDR" default:"localhost:3001"`
	// E2E_DEBUG_JSON allows dumping full gRPC request/response bodies and game states as JSON
	DebugJSON bool `envconfig:"E2E_DEBUG_JSON" default:"false"`
	// E2E_COLOURS enables colorized output for better log readability
	Colours bool `envconfig:"E2E_COLOURS" default:"true"`
}

func LoadConfig() (Config, error) {
	var cfg Config
	err := envconfig.Process("", &cfg)
	return cfg, err
}
