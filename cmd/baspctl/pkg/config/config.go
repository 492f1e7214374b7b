// Package config loads baspctl's own small configuration: the admin
// socket path of the baspd instance to talk to.
package config

import (
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config holds the baspctl configuration.
type Config struct {
	AdminSocket string `yaml:"admin_socket"`
}

// DefaultPath returns ~/.basp/baspctl.yaml, falling back to a relative
// path if the home directory can't be resolved.
func DefaultPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", ".basp", "baspctl.yaml")
	}
	return filepath.Join(home, ".basp", "baspctl.yaml")
}

// Load reads path, returning defaults if the file doesn't exist.
func Load(path string) (*Config, error) {
	cfg := &Config{AdminSocket: "/var/run/baspd.sock"}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, err
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}
