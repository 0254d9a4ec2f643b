package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

type Config struct {
	APIBaseURL         string `env:"GRIEVEASE_API_URL" envDefault:"http://localhost:8000"`
	OTPBaseURL         string `env:"GRIEVEASE_OTP_URL" envDefault:""`
	WSBaseURL          string `env:"GRIEVEASE_WS_URL" envDefault:""`
	StatePath          string `env:"GRIEVEASE_STATE_PATH" envDefault:""`
	HTTPTimeoutSeconds int    `env:"GRIEVEASE_HTTP_TIMEOUT_SECONDS" envDefault:"30"`
	PreviewPort        int    `env:"GRIEVEASE_PREVIEW_PORT" envDefault:"7343"`
	LogLevel           string `env:"LOG_LEVEL" envDefault:"info"`
}

func (c *Config) HTTPTimeout() time.Duration {
	return time.Duration(c.HTTPTimeoutSeconds) * time.Second
}

func (c *Config) PreviewAddr() string {
	return fmt.Sprintf("127.0.0.1:%d", c.PreviewPort)
}

// OTPURL returns the base URL of the OTP dispatch service. The OTP
// service is deployed separately from the main API but defaults to the
// same host when unset.
func (c *Config) OTPURL() string {
	if c.OTPBaseURL != "" {
		return c.OTPBaseURL
	}
	return c.APIBaseURL
}

// WSURL derives the websocket base URL from the API base URL when not
// configured explicitly.
func (c *Config) WSURL() string {
	if c.WSBaseURL != "" {
		return c.WSBaseURL
	}
	derived := c.APIBaseURL
	derived = strings.Replace(derived, "https://", "wss://", 1)
	derived = strings.Replace(derived, "http://", "ws://", 1)
	return derived
}

// StateDBPath returns the sqlite file used for persisted client state,
// defaulting to a per-user data directory.
func (c *Config) StateDBPath() (string, error) {
	if c.StatePath != "" {
		return c.StatePath, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home directory: %w", err)
	}
	return filepath.Join(home, ".grievease", "state.db"), nil
}

func (c *Config) Validate() error {
	if _, err := url.Parse(c.APIBaseURL); err != nil {
		return fmt.Errorf("GRIEVEASE_API_URL is not a valid URL: %w", err)
	}
	if c.HTTPTimeoutSeconds <= 0 {
		return fmt.Errorf("GRIEVEASE_HTTP_TIMEOUT_SECONDS must be positive")
	}
	if c.PreviewPort <= 0 || c.PreviewPort > 65535 {
		return fmt.Errorf("GRIEVEASE_PREVIEW_PORT must be a valid port")
	}
	return nil
}

func Load() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	return &cfg, nil
}
