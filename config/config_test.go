package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetDefaultFillsZeroValues(t *testing.T) {
	var c Config
	c.SetDefault()

	assert.Equal(t, "0.0.0.0:4232", c.ListenAddr)
	assert.Equal(t, 10*time.Second, c.HeartbeatInterval)
	assert.Equal(t, "/var/run/baspd.sock", c.AdminSocket)
}

func TestSetDefaultPreservesExplicitValues(t *testing.T) {
	c := Config{ListenAddr: "127.0.0.1:9000", HeartbeatInterval: 3 * time.Second}
	c.SetDefault()

	assert.Equal(t, "127.0.0.1:9000", c.ListenAddr)
	assert.Equal(t, 3*time.Second, c.HeartbeatInterval)
	assert.Equal(t, "/var/run/baspd.sock", c.AdminSocket)
}

func TestLoadParsesYamlAndAppliesDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "baspd.yaml")

	contents := `
listen_addr: "10.0.0.5:4232"
seed_peers:
  - "10.0.0.1:4232"
  - "10.0.0.2:4232"
heartbeat_interval: 5s
node_id: 42
`
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o644))

	c, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "10.0.0.5:4232", c.ListenAddr)
	assert.Equal(t, []string{"10.0.0.1:4232", "10.0.0.2:4232"}, c.SeedPeers)
	assert.Equal(t, 5*time.Second, c.HeartbeatInterval)
	assert.Equal(t, "/var/run/baspd.sock", c.AdminSocket)
	assert.Equal(t, uint64(42), c.NodeID)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
