// Package config loads the YAML-backed configuration for a baspd
// instance: listen address, seed peers, heartbeat interval, admin socket
// path and node id. The protocol version is not configurable here; it is
// the compile-time wire.ProtocolVersion. Defaults follow the teacher's lease.AgentConfig.SetDefault
// pattern — a plain method that fills in the zero-value gaps rather than
// a functional-options builder.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is a single baspd instance's static configuration.
type Config struct {
	// ListenAddr is the TCP address the instance accepts connections on,
	// e.g. "0.0.0.0:4232".
	ListenAddr string `yaml:"listen_addr"`

	// SeedPeers are addresses dialed at startup to bootstrap direct
	// routes into the mesh.
	SeedPeers []string `yaml:"seed_peers"`

	// HeartbeatInterval controls how often HandleHeartbeatBroadcast is
	// invoked by the embedder's own timer.
	HeartbeatInterval time.Duration `yaml:"heartbeat_interval"`

	// AdminSocket is the Unix domain socket path baspctl connects to.
	AdminSocket string `yaml:"admin_socket"`

	// NodeID pins this instance's node.Id across restarts. Zero means
	// "generate one randomly at startup", which is fine for a single
	// run but loses its direct peers' view of this node across a
	// restart; operators who want restart stability should set it.
	NodeID uint64 `yaml:"node_id"`
}

// SetDefault fills in any zero-valued field with this package's defaults.
func (c *Config) SetDefault() {
	if c.ListenAddr == "" {
		c.ListenAddr = "0.0.0.0:4232"
	}

	if c.HeartbeatInterval == 0 {
		c.HeartbeatInterval = 10 * time.Second
	}

	if c.AdminSocket == "" {
		c.AdminSocket = "/var/run/baspd.sock"
	}
}

// Load reads and parses a YAML configuration file at path, applying
// defaults to anything it leaves unset.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}

	var c Config
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}

	c.SetDefault()

	return &c, nil
}
