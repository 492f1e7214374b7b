// Package routing implements the BASP routing table: a direct NodeId<->
// ConnHandle bijection plus an indirect NodeId->hop mapping, guarded by a
// single RWMutex in the style of the teacher's partner-node table.
package routing

import (
	"bytes"
	"errors"
	"fmt"
	"sync"

	"github.com/meshwire/basp/node"
)

// Sentinel errors callers can match with errors.Is, in the style of the
// teacher's errAgentClosed.
var (
	ErrSelfRoute     = errors.New("routing: refusing a route to self")
	ErrAlreadyDirect = errors.New("routing: node already has a direct route")
	ErrHandleBound   = errors.New("routing: handle already bound to a node")
	ErrNoDirectHop   = errors.New("routing: hop has no direct route")
)

// Transport is the minimal write-side capability the routing table needs
// from whatever embedder owns the physical connections. It never touches
// bytes itself; a Route only carries the handle needed to ask the
// transport for its buffer.
type Transport interface {
	WriteBuffer(h node.ConnHandle) *bytes.Buffer
	Flush(h node.ConnHandle) error
}

// Route names a destination's next hop, with access to that hop's send
// buffer resolved lazily through the owning Transport.
type Route struct {
	NextHop       node.Id
	NextHopHandle node.ConnHandle

	transport Transport
}

// SendBuffer returns the mutable write buffer for this route's handle.
func (r Route) SendBuffer() *bytes.Buffer {
	return r.transport.WriteBuffer(r.NextHopHandle)
}

// OnForgotten is invoked exactly once per NodeId rendered unreachable by
// an erase operation.
type OnForgotten func(n node.Id)

// Table is the engine's single routing table instance. All operations are
// synchronous; the mutex exists because embedders may read it (e.g. for
// introspection) from goroutines other than the engine's own.
type Table struct {
	mu sync.RWMutex

	directNodeToHandle map[node.Id]node.ConnHandle
	directHandleToNode map[node.ConnHandle]node.Id
	indirect           map[node.Id][]node.Id

	self      node.Id
	transport Transport
}

// New creates an empty table. self is the owning node's own identifier;
// it is rejected by every insert operation below, per the no-self-route
// invariant.
func New(self node.Id, transport Transport) *Table {
	return &Table{
		directNodeToHandle: make(map[node.Id]node.ConnHandle),
		directHandleToNode: make(map[node.ConnHandle]node.Id),
		indirect:           make(map[node.Id][]node.Id),
		self:               self,
		transport:          transport,
	}
}

// AddDirect inserts (handle, n). It fails if n is the local node, or if
// either side is already present.
func (t *Table) AddDirect(handle node.ConnHandle, n node.Id) error {
	if n == t.self {
		return fmt.Errorf("routing: node %v: %w", n, ErrSelfRoute)
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	if _, ok := t.directNodeToHandle[n]; ok {
		return fmt.Errorf("routing: node %v: %w", n, ErrAlreadyDirect)
	}

	if _, ok := t.directHandleToNode[handle]; ok {
		return fmt.Errorf("routing: handle %v: %w", handle, ErrHandleBound)
	}

	t.directNodeToHandle[n] = handle
	t.directHandleToNode[handle] = n
	delete(t.indirect, n)

	return nil
}

// AddIndirect inserts n -> hop if n has no direct route and hop has one.
// It reports whether n was previously unknown to the table (no direct and
// no indirect entry), so the caller can raise learned_new_node_indirectly.
func (t *Table) AddIndirect(hop node.Id, n node.Id) (bool, error) {
	if n == t.self {
		return false, fmt.Errorf("routing: node %v: %w", n, ErrSelfRoute)
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	if _, ok := t.directNodeToHandle[n]; ok {
		return false, fmt.Errorf("routing: node %v: %w", n, ErrAlreadyDirect)
	}

	if _, ok := t.directNodeToHandle[hop]; !ok {
		return false, fmt.Errorf("routing: hop %v: %w", hop, ErrNoDirectHop)
	}

	_, wasKnown := t.indirect[n]

	hops := t.indirect[n]
	for _, h := range hops {
		if h == hop {
			return !wasKnown, nil
		}
	}

	t.indirect[n] = append(hops, hop)

	return !wasKnown, nil
}

// EraseIndirect removes the indirect row for n, if any, and reports
// whether one existed.
func (t *Table) EraseIndirect(n node.Id) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	if _, ok := t.indirect[n]; !ok {
		return false
	}

	delete(t.indirect, n)
	return true
}

// EraseDirect removes the direct row for handle, and cascades: every
// indirect entry whose sole reachable hop was handle's node becomes
// unreachable and is removed, firing onForgotten for each such NodeId
// exactly once. onForgotten is also fired for handle's own node if it had
// no remaining indirect route.
func (t *Table) EraseDirect(handle node.ConnHandle, onForgotten OnForgotten) {
	t.mu.Lock()

	n, ok := t.directHandleToNode[handle]
	if !ok {
		t.mu.Unlock()
		return
	}

	delete(t.directHandleToNode, handle)
	delete(t.directNodeToHandle, n)

	forgotten := []node.Id{n}

	for target, hops := range t.indirect {
		kept := hops[:0]
		hadHop := false
		for _, h := range hops {
			if h == n {
				hadHop = true
				continue
			}
			kept = append(kept, h)
		}

		if !hadHop {
			continue
		}

		if len(kept) == 0 {
			delete(t.indirect, target)
			forgotten = append(forgotten, target)
		} else {
			t.indirect[target] = kept
		}
	}

	t.mu.Unlock()

	if onForgotten != nil {
		for _, f := range forgotten {
			onForgotten(f)
		}
	}
}

// Erase removes every direct and indirect entry naming n.
func (t *Table) Erase(n node.Id, onForgotten OnForgotten) {
	t.mu.Lock()
	handle, hasDirect := t.directNodeToHandle[n]
	_, hasIndirect := t.indirect[n]
	delete(t.indirect, n)
	t.mu.Unlock()

	if hasDirect {
		t.EraseDirect(handle, onForgotten)
		return
	}

	if hasIndirect && onForgotten != nil {
		onForgotten(n)
	}
}

// Lookup resolves a route to n: direct first, then any indirect hop with
// its own direct route. It reports ok=false if neither exists.
func (t *Table) Lookup(n node.Id) (Route, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	if handle, ok := t.directNodeToHandle[n]; ok {
		return Route{NextHop: n, NextHopHandle: handle, transport: t.transport}, true
	}

	for _, hop := range t.indirect[n] {
		if handle, ok := t.directNodeToHandle[hop]; ok {
			return Route{NextHop: hop, NextHopHandle: handle, transport: t.transport}, true
		}
	}

	return Route{}, false
}

// DirectPeers returns every node currently reachable by a direct route, in
// no particular order.
func (t *Table) DirectPeers() []node.Id {
	t.mu.RLock()
	defer t.mu.RUnlock()

	peers := make([]node.Id, 0, len(t.directNodeToHandle))
	for n := range t.directNodeToHandle {
		peers = append(peers, n)
	}
	return peers
}

// LookupDirectHandle returns the direct handle for n, or InvalidConnHandle
// on miss.
func (t *Table) LookupDirectHandle(n node.Id) node.ConnHandle {
	t.mu.RLock()
	defer t.mu.RUnlock()

	if handle, ok := t.directNodeToHandle[n]; ok {
		return handle
	}

	return node.InvalidConnHandle
}

// LookupDirectNode returns the node directly reachable through handle, or
// InvalidId on miss.
func (t *Table) LookupDirectNode(handle node.ConnHandle) node.Id {
	t.mu.RLock()
	defer t.mu.RUnlock()

	if n, ok := t.directHandleToNode[handle]; ok {
		return n
	}

	return node.InvalidId
}

// Flush instructs the transport to push queued bytes on r's handle.
func (t *Table) Flush(r Route) error {
	return t.transport.Flush(r.NextHopHandle)
}

// DirectEntry is one row of a Snapshot's direct table.
type DirectEntry struct {
	Node   node.Id
	Handle node.ConnHandle
}

// IndirectEntry is one row of a Snapshot's indirect table.
type IndirectEntry struct {
	Node node.Id
	Hops []node.Id
}

// Snapshot copies out the full direct and indirect contents for
// introspection. Callers must not mutate the returned slices' backing
// arrays concurrently with table operations; Snapshot itself is safe to
// call from any goroutine.
func (t *Table) Snapshot() (direct []DirectEntry, indirect []IndirectEntry) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	for n, handle := range t.directNodeToHandle {
		direct = append(direct, DirectEntry{Node: n, Handle: handle})
	}

	for n, hops := range t.indirect {
		cp := make([]node.Id, len(hops))
		copy(cp, hops)
		indirect = append(indirect, IndirectEntry{Node: n, Hops: cp})
	}

	return direct, indirect
}
