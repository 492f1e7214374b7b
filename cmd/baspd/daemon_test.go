package main

import (
	"net"
	"testing"
	"time"

	"github.com/meshwire/basp/config"
	"github.com/meshwire/basp/engine"
	"github.com/meshwire/basp/node"
	"github.com/meshwire/basp/tcptransport"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestMapEngineStateTranslatesEveryValue(t *testing.T) {
	assert.Equal(t, tcptransport.AwaitHeader, mapEngineState(engine.AwaitHeader))
	assert.Equal(t, tcptransport.AwaitPayload, mapEngineState(engine.AwaitPayload))
	assert.Equal(t, tcptransport.CloseConnection, mapEngineState(engine.CloseConnection))
}

func TestResolveSelfUsesConfiguredNodeID(t *testing.T) {
	cfg := &config.Config{NodeID: 77}

	self, err := resolveSelf(cfg)
	assert.NoError(t, err)
	assert.Equal(t, node.Id(77), self)
}

func TestResolveSelfGeneratesWhenUnset(t *testing.T) {
	cfg := &config.Config{}

	self, err := resolveSelf(cfg)
	assert.NoError(t, err)
	assert.True(t, self.IsValid())
}

func TestDialSeedFlushesHandshakeOntoTheWire(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer ln.Close()

	accepted := make(chan net.Conn, 1)
	go func() {
		conn, err := ln.Accept()
		if err == nil {
			accepted <- conn
		}
	}()

	d := newDaemon(&config.Config{}, node.Id(1), zap.NewNop())
	require.NoError(t, d.dialSeed(ln.Addr().String()))

	select {
	case conn := <-accepted:
		defer conn.Close()
		require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
		buf := make([]byte, 1)
		_, err := conn.Read(buf)
		assert.NoError(t, err, "dialSeed must flush the handshake, not just buffer it")
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for seed connection")
	}
}
