package engine

import (
	"bytes"

	"github.com/meshwire/basp/node"
)

// Transport is the minimal capability the engine requires from whatever
// broker owns the physical connections: a per-handle send buffer, a way
// to push queued bytes, and a way to tear a connection down. It also
// satisfies routing.Transport, so the same value can back both the
// engine and its routing table.
type Transport interface {
	WriteBuffer(h node.ConnHandle) *bytes.Buffer
	Flush(h node.ConnHandle) error
	Close(h node.ConnHandle) error
}
