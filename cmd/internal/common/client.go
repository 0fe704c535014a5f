package common

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v10"

	"github.com/agpdl/agpdl/client"
)

// NewClient builds the AGP HTTP client from the environment. AGP_UA
// overrides the User-Agent header and AGP_BASE_URL points the client at
// another origin, which mirrors and tests use.
func NewClient(timeout time.Duration) (*client.Client, error) {
	cfg := struct {
		UA      string `env:"AGP_UA" envDefault:"agpdl (+https://github.com/agpdl/agpdl)"`
		BaseURL string `env:"AGP_BASE_URL"`
	}{}
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("parse agpdl envs: %w", err)
	}

	c := client.New().WithUserAgent(cfg.UA)
	if timeout > 0 {
		c.WithTimeout(timeout)
	}
	if cfg.BaseURL != "" {
		c.WithBaseURL(cfg.BaseURL)
	}
	return c, nil
}
