package main

import (
	"sync"
	"time"

	"github.com/meshwire/basp/node"
)

// heartbeatTracker keeps the last time a heartbeat was received from each
// direct peer. spec.md §4.5 only specifies the outbound broadcast and the
// inbound handle_heartbeat upcall; this supplements that with a queryable
// liveness signal, the way the teacher's transport.conn answers a
// HeartbeatRequest with a HeartbeatResponse rather than only logging it.
type heartbeatTracker struct {
	mu       sync.RWMutex
	lastSeen map[node.Id]time.Time
}

func newHeartbeatTracker() *heartbeatTracker {
	return &heartbeatTracker{lastSeen: make(map[node.Id]time.Time)}
}

func (h *heartbeatTracker) touch(peer node.Id, at time.Time) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.lastSeen[peer] = at
}

// HeartbeatSeen is one row of a snapshot.
type HeartbeatSeen struct {
	Node     node.Id
	LastSeen time.Time
}

func (h *heartbeatTracker) snapshot() []HeartbeatSeen {
	h.mu.RLock()
	defer h.mu.RUnlock()

	out := make([]HeartbeatSeen, 0, len(h.lastSeen))
	for n, t := range h.lastSeen {
		out = append(out, HeartbeatSeen{Node: n, LastSeen: t})
	}
	return out
}

// forget drops tracked state for a peer whose route was purged, so a
// heartbeats query never reports a node no longer reachable.
func (h *heartbeatTracker) forget(peer node.Id) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.lastSeen, peer)
}
