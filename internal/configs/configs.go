/*
Package configs loads the relay's runtime configuration from environment
variables: the environment name, listen port, and CORS allowed origins.
*/
package configs

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// AppConfig holds every configuration parameter the relay needs to run.
// All values come from environment variables.
type AppConfig struct {
	// Environment is "development" or "production"; it controls log format
	// and origin checking strictness.
	Environment string

	// Port is the TCP port the HTTP server listens on.
	Port int

	// AllowedOrigins lists the origins permitted for CORS and WebSocket
	// upgrades outside development.
	AllowedOrigins []string
}

// LoadConfig reads and validates the configuration from the environment,
// applying defaults where a variable is unset.
func LoadConfig() (*AppConfig, error) {
	cfg := &AppConfig{}

	// Environment
	cfg.Environment = os.Getenv("ENVIRONMENT")
	if cfg.Environment == "" {
		cfg.Environment = "development"
	}

	// Port
	portStr := os.Getenv("PORT")
	if portStr == "" {
		portStr = "5000"
	}
	port, err := strconv.Atoi(portStr)
	if err != nil {
		return nil, fmt.Errorf("invalid PORT environment variable: %w", err)
	}
	cfg.Port = port

	if cfg.Port < 1024 || cfg.Port > 65535 {
		return nil, fmt.Errorf("port number %d is outside the recommended range (%d-%d) to avoid privileged ports", cfg.Port, 1024, 65535)
	}

	// AllowedOrigins
	originsStr := os.Getenv("ALLOWED_ORIGINS")
	if originsStr != "" {
		origins := strings.Split(originsStr, ",")
		for _, origin := range origins {
			trimmed := strings.TrimSpace(origin)
			if trimmed != "" {
				cfg.AllowedOrigins = append(cfg.AllowedOrigins, trimmed)
			}
		}
	} else {
		cfg.AllowedOrigins = []string{}
	}

	return cfg, nil
}
