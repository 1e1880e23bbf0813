// Package config handles configuration for the CLI client.
package config

import (
	"flag"
	"os"

	"github.com/caarlos0/env/v11"

	"github.com/sergeyk-dev/authgate/internal/flagx"
)

// Config holds runtime settings for the authgate CLI.
type Config struct {
	// ServerURL is the base URL of the authgate HTTP API.
	ServerURL string `env:"AUTHGATE_SERVER_URL"`
}

func (c *Config) LoadDefaults() {
	c.ServerURL = "http://localhost:3000"
}

// LoadConfig builds a Config by applying defaults, then overlaying the
// environment and command-line flags.
func LoadConfig() (*Config, error) {
	cfg := &Config{}
	cfg.LoadDefaults()
	if err := env.Parse(cfg); err != nil {
		return nil, err
	}
	parseFlags(cfg)
	return cfg, nil
}

func parseFlags(config *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{"-s"})

	fs := flag.NewFlagSet("cli", flag.ContinueOnError)
	fs.StringVar(&config.ServerURL, "s", config.ServerURL, "authgate server base URL")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}
}
