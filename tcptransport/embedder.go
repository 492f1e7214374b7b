// Package tcptransport is a reference embedder: a TCP listener/dialer
// that implements the engine's required transport abstraction (wr_buf,
// flush, close, inbound callback) over CRC-framed physical connections,
// in the style of the teacher's transport.Server/transport.Client pair.
package tcptransport

import (
	"bytes"
	"errors"
	"fmt"
	"net"
	"sync"
	"sync/atomic"

	"github.com/meshwire/basp/node"
	"github.com/meshwire/basp/wire"
	"go.uber.org/zap"
)

// ErrUnknownHandle is returned by any operation addressing a ConnHandle
// the embedder no longer (or never did) track, e.g. after the connection
// has already been closed.
var ErrUnknownHandle = errors.New("tcptransport: unknown handle")

// Inbound is the callback the embedder drives for every frame it reads
// off a connection: first with the header bytes (isPayload=false), then,
// if the header named a nonzero payload, with the payload bytes
// (isPayload=true). Its return value tells the embedder what to do next.
type Inbound func(handle node.ConnHandle, buf []byte, isPayload bool) ReceiveState

// ReceiveState mirrors engine.State without importing the engine
// package, keeping tcptransport usable against any state machine that
// honors the same three-state contract.
type ReceiveState int

const (
	AwaitHeader ReceiveState = iota
	AwaitPayload
	CloseConnection
)

type connState struct {
	conn net.Conn

	mu  sync.Mutex
	buf bytes.Buffer
}

// Embedder owns every physical connection for one local BASP instance.
type Embedder struct {
	log      *zap.Logger
	inbound  Inbound
	listener net.Listener

	nextHandle uint64

	mu    sync.RWMutex
	conns map[node.ConnHandle]*connState
}

// New creates an Embedder that delivers inbound frames to inbound.
func New(inbound Inbound, log *zap.Logger) *Embedder {
	if log == nil {
		log = zap.NewNop()
	}

	return &Embedder{
		inbound: inbound,
		log:     log,
		conns:   make(map[node.ConnHandle]*connState),
	}
}

// Listen starts accepting TCP connections on laddr. Call Serve to run the
// accept loop.
func (e *Embedder) Listen(laddr string) error {
	l, err := net.Listen("tcp", laddr)
	if err != nil {
		return err
	}

	e.listener = l
	return nil
}

// Serve runs the accept loop until the listener is closed.
func (e *Embedder) Serve() error {
	for {
		conn, err := e.listener.Accept()
		if err != nil {
			return err
		}

		go e.handle(conn)
	}
}

// Shutdown stops accepting new connections. It does not touch any
// connection already registered; callers that need a full teardown
// should also Close each known handle.
func (e *Embedder) Shutdown() error {
	if e.listener == nil {
		return nil
	}
	return e.listener.Close()
}

// Dial opens an outbound connection and registers it the same way an
// accepted one is, returning its handle.
func (e *Embedder) Dial(addr string) (node.ConnHandle, error) {
	conn, err := net.Dial("tcp", addr)
	if err != nil {
		return node.InvalidConnHandle, err
	}

	handle := e.register(conn)
	go e.readLoop(handle, conn)

	return handle, nil
}

func (e *Embedder) register(conn net.Conn) node.ConnHandle {
	handle := node.ConnHandle(atomic.AddUint64(&e.nextHandle, 1))

	e.mu.Lock()
	e.conns[handle] = &connState{conn: conn}
	e.mu.Unlock()

	return handle
}

func (e *Embedder) handle(conn net.Conn) {
	handle := e.register(conn)
	e.readLoop(handle, conn)
}

func (e *Embedder) readLoop(handle node.ConnHandle, conn net.Conn) {
	defer e.teardown(handle)

	for {
		body, err := nextFrame(conn)
		if err != nil {
			e.log.Debug("connection read failed", zap.Uint64("handle", uint64(handle)), zap.Error(err))
			return
		}

		if len(body) < wire.HeaderSize {
			e.log.Warn("frame shorter than header size", zap.Uint64("handle", uint64(handle)))
			return
		}

		headerBytes := body[:wire.HeaderSize]
		payloadBytes := body[wire.HeaderSize:]

		state := e.inbound(handle, headerBytes, false)
		if state == CloseConnection {
			return
		}

		if state == AwaitPayload {
			state = e.inbound(handle, payloadBytes, true)
			if state == CloseConnection {
				return
			}
		}
	}
}

func (e *Embedder) teardown(handle node.ConnHandle) {
	e.mu.Lock()
	cs, ok := e.conns[handle]
	delete(e.conns, handle)
	e.mu.Unlock()

	if ok {
		_ = cs.conn.Close()
	}
}

// WriteBuffer returns the accumulating send buffer for handle. If handle
// is unknown it returns a fresh buffer that is not tracked, so anything
// written to it is discarded.
func (e *Embedder) WriteBuffer(handle node.ConnHandle) *bytes.Buffer {
	e.mu.RLock()
	cs, ok := e.conns[handle]
	e.mu.RUnlock()

	if !ok {
		return &bytes.Buffer{} // discarded; no connection to flush to
	}

	cs.mu.Lock()
	defer cs.mu.Unlock()
	return &cs.buf
}

// Flush wraps the handle's accumulated bytes in one CRC-framed physical
// frame, writes it, and resets the buffer.
func (e *Embedder) Flush(handle node.ConnHandle) error {
	e.mu.RLock()
	cs, ok := e.conns[handle]
	e.mu.RUnlock()

	if !ok {
		return fmt.Errorf("tcptransport: handle %v: %w", handle, ErrUnknownHandle)
	}

	cs.mu.Lock()
	defer cs.mu.Unlock()

	if cs.buf.Len() == 0 {
		return nil
	}

	body := make([]byte, cs.buf.Len())
	copy(body, cs.buf.Bytes())
	cs.buf.Reset()

	return writeFrame(cs.conn, body)
}

// Close tears down handle's underlying connection.
func (e *Embedder) Close(handle node.ConnHandle) error {
	e.mu.Lock()
	cs, ok := e.conns[handle]
	delete(e.conns, handle)
	e.mu.Unlock()

	if !ok {
		return nil
	}

	return cs.conn.Close()
}
