package tcptransport

import (
	"net"
	"testing"
	"time"

	"github.com/meshwire/basp/node"
	"github.com/meshwire/basp/wire"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteBufferAndFlushSendsFramedBytes(t *testing.T) {
	client, server := net.Pipe()
	defer client.Close()
	defer server.Close()

	e := New(nil, nil)
	handle := e.register(client)

	buf := e.WriteBuffer(handle)
	buf.WriteString("payload-bytes")

	done := make(chan error, 1)
	go func() { done <- e.Flush(handle) }()

	body, err := nextFrame(server)
	require.NoError(t, err)
	assert.Equal(t, "payload-bytes", string(body))

	require.NoError(t, <-done)
}

func TestFlushOnUnknownHandleErrors(t *testing.T) {
	e := New(nil, nil)
	err := e.Flush(node.ConnHandle(999))
	assert.ErrorIs(t, err, ErrUnknownHandle)
}

func TestCloseTearsDownConnection(t *testing.T) {
	client, server := net.Pipe()
	defer server.Close()

	e := New(nil, nil)
	handle := e.register(client)

	require.NoError(t, e.Close(handle))

	// A closed net.Pipe conn errors on further writes.
	_, err := client.Write([]byte("x"))
	assert.Error(t, err)
}

func TestReadLoopDeliversHeaderThenPayload(t *testing.T) {
	client, server := net.Pipe()
	defer client.Close()

	var calls []bool
	inboundDone := make(chan struct{})

	e := New(func(handle node.ConnHandle, buf []byte, isPayload bool) ReceiveState {
		calls = append(calls, isPayload)
		if len(calls) == 2 {
			close(inboundDone)
			return CloseConnection
		}
		return AwaitPayload
	}, nil)

	handle := e.register(server)
	go e.readLoop(handle, server)

	body := make([]byte, wire.HeaderSize+5)
	copy(body[wire.HeaderSize:], []byte("abcde"))

	require.NoError(t, writeFrame(client, body))

	select {
	case <-inboundDone:
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for inbound callback")
	}

	assert.Equal(t, []bool{false, true}, calls)
}
