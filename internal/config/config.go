// Package config handles configuration loading and defaults.
package config

import (
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config represents the root configuration file structure.
type Config struct {
	Server  Server  `yaml:"server"`
	Storage Storage `yaml:"storage"`
	CORS    CORS    `yaml:"cors"`
}

// Server holds listener and request limits.
type Server struct {
	Addr         string        `yaml:"addr"`
	Port         int           `yaml:"port"`
	BodyLimit    int64         `yaml:"body_limit"`
	ReadTimeout  time.Duration `yaml:"read_timeout"`
	WriteTimeout time.Duration `yaml:"write_timeout"`
}

// Storage points at the backing collection file.
type Storage struct {
	Path string `yaml:"path"`
}

// CORS describes the single allowed browser origin.
type CORS struct {
	Origin        string   `yaml:"origin"`
	Methods       []string `yaml:"methods,omitempty"`
	Credentials   bool     `yaml:"credentials"`
	OptionsStatus int      `yaml:"options_status"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Server: Server{
			Addr:         "0.0.0.0",
			Port:         3000,
			BodyLimit:    100 << 10,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 10 * time.Second,
		},
		Storage: Storage{
			Path: "casas.json",
		},
		CORS: CORS{
			Origin: "http://localhost:5173",
			Methods: []string{
				http.MethodGet,
				http.MethodHead,
				http.MethodPut,
				http.MethodPatch,
				http.MethodPost,
				http.MethodDelete,
			},
			Credentials:   true,
			OptionsStatus: http.StatusNoContent,
		},
	}
}

// Load reads the YAML file at path on top of the defaults.
// An empty path returns the defaults.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}

	return cfg, nil
}

// ListenAddr returns the host:port pair to listen on.
func (c *Config) ListenAddr() string {
	return fmt.Sprintf("%s:%d", c.Server.Addr, c.Server.Port)
}

// Validate checks that required fields are present and sane.
func (c *Config) Validate() error {
	var errs []string

	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Sprintf("server.port must be 1-65535, got %d", c.Server.Port))
	}
	if c.Server.BodyLimit <= 0 {
		errs = append(errs, "server.body_limit must be positive")
	}
	if c.Server.ReadTimeout < 0 || c.Server.WriteTimeout < 0 {
		errs = append(errs, "server timeouts must not be negative")
	}
	if strings.TrimSpace(c.Storage.Path) == "" {
		errs = append(errs, "storage.path is required")
	}
	if c.CORS.Origin == "" {
		errs = append(errs, "cors.origin is required")
	}
	if len(c.CORS.Methods) == 0 {
		errs = append(errs, "cors.methods must not be empty")
	}
	if c.CORS.OptionsStatus < 200 || c.CORS.OptionsStatus > 299 {
		errs = append(errs, fmt.Sprintf("cors.options_status must be 2xx, got %d", c.CORS.OptionsStatus))
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}
	return nil
}
