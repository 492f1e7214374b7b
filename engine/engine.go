// Package engine implements the BASP receive state machine (C4), the
// outbound writer surface (C5), and the callee/hook upcall wiring (C6).
// An Engine is a single-threaded cooperative component: the broker that
// owns it must serialize every call to Receive and every writer call for
// a given instance, exactly as spec.md's concurrency model requires.
package engine

import (
	"github.com/meshwire/basp/node"
	"github.com/meshwire/basp/registry"
	"github.com/meshwire/basp/routing"
	"github.com/meshwire/basp/wire"
)

// State is the receive state machine's current phase for a connection.
type State int

const (
	AwaitHeader State = iota
	AwaitPayload
	CloseConnection
)

func (s State) String() string {
	switch s {
	case AwaitHeader:
		return "await_header"
	case AwaitPayload:
		return "await_payload"
	case CloseConnection:
		return "close_connection"
	default:
		return "unknown_state"
	}
}

// Engine owns the routing table and published-actor registry for one
// local node and drives the Callee/Hooks upcalls as frames arrive.
type Engine struct {
	self node.Id

	Routes    *routing.Table
	Published *registry.Registry

	transport Transport
	callee    Callee
	hooks     Hooks

	pending  map[node.ConnHandle]wire.Header
	requests RequestTable
}

// New creates an Engine for self, backed by transport and driving callee
// and hooks. hooks may be nil, in which case NoopHooks is used.
func New(self node.Id, transport Transport, callee Callee, hooks Hooks) *Engine {
	if hooks == nil {
		hooks = NoopHooks{}
	}

	return &Engine{
		self:      self,
		Routes:    routing.New(self, transport),
		Published: registry.New(func(port uint16, e registry.Entry) { hooks.ActorPublished(port, e.Addr) }),
		transport: transport,
		callee:    callee,
		hooks:     hooks,
		pending:   make(map[node.ConnHandle]wire.Header),
	}
}

func (e *Engine) purgeHandle(handle node.ConnHandle) {
	delete(e.pending, handle)
	e.Routes.EraseDirect(handle, e.callee.PurgeState)
}

func (e *Engine) closeAfterPurge(handle node.ConnHandle) State {
	e.purgeHandle(handle)
	_ = e.transport.Close(handle)
	return CloseConnection
}

// Receive implements the per-delivery algorithm of spec.md §4.4.2. buf is
// the freshly-read bytes for handle: a header when isPayload is false, or
// the awaited payload when isPayload is true.
func (e *Engine) Receive(handle node.ConnHandle, buf []byte, isPayload bool) State {
	var hdr wire.Header
	var payload []byte

	if !isPayload {
		decoded, err := wire.Decode(buf)
		if err != nil {
			return e.closeAfterPurge(handle)
		}

		if err := wire.Validate(decoded); err != nil {
			return e.closeAfterPurge(handle)
		}

		if decoded.PayloadLen > 0 {
			e.pending[handle] = decoded
			return AwaitPayload
		}

		hdr = decoded
	} else {
		stored, ok := e.pending[handle]
		if !ok || uint32(len(buf)) != stored.PayloadLen {
			return e.closeAfterPurge(handle)
		}

		delete(e.pending, handle)
		hdr = stored
		payload = buf
	}

	isHandshake := hdr.Operation == wire.OperationServerHandshake || hdr.Operation == wire.OperationClientHandshake
	isHeartbeat := hdr.Operation == wire.OperationHeartbeat

	if !isHandshake && !isHeartbeat && hdr.DestNode != e.self {
		return e.forward(handle, hdr, payload)
	}

	return e.deliverLocally(handle, hdr, payload)
}

func (e *Engine) forward(handle node.ConnHandle, hdr wire.Header, payload []byte) State {
	if route, ok := e.Routes.Lookup(hdr.DestNode); ok {
		buf := route.SendBuffer()
		buf.Write(wire.Encode(hdr))
		buf.Write(payload)

		if err := e.Routes.Flush(route); err != nil {
			e.hooks.MessageSendingFailed(hdr, err)
		} else {
			e.hooks.MessageForwarded(hdr)
		}

		return AwaitHeader
	}

	if hdr.SourceNode != e.self {
		if reverse, ok := e.Routes.Lookup(hdr.SourceNode); ok {
			e.WriteDispatchError(reverse, e.self, hdr.SourceNode, wire.ErrorCodeNoRouteToDestination, hdr, payload)
			e.hooks.MessageForwardingFailed(hdr)
			return AwaitHeader
		}
	}

	e.hooks.MessageForwardingFailed(hdr)
	return AwaitHeader
}

func (e *Engine) deliverLocally(handle node.ConnHandle, hdr wire.Header, payload []byte) State {
	switch hdr.Operation {
	case wire.OperationServerHandshake:
		return e.onServerHandshake(handle, hdr, payload)

	case wire.OperationClientHandshake:
		return e.onClientHandshake(handle, hdr)

	case wire.OperationDispatchMessage:
		return e.onDispatchMessage(handle, hdr, payload)

	case wire.OperationAnnounceProxy:
		e.callee.ProxyAnnounced(hdr.SourceNode, hdr.DestActor)
		return AwaitHeader

	case wire.OperationKillProxyInstance:
		e.callee.KillProxy(hdr.SourceNode, hdr.SourceActor, ExitReasonFrom(hdr.OperationData))
		return AwaitHeader

	case wire.OperationHeartbeat:
		e.callee.HandleHeartbeat(hdr.SourceNode)
		return AwaitHeader

	default:
		return e.closeAfterPurge(handle)
	}
}

func (e *Engine) onServerHandshake(handle node.ConnHandle, hdr wire.Header, payload []byte) State {
	var aid node.ActorId
	var sigs map[node.InterfaceSignature]struct{}

	if len(payload) > 0 {
		var err error
		aid, sigs, err = unmarshalHandshakePayload(payload)
		if err != nil {
			return e.closeAfterPurge(handle)
		}
	}

	if hdr.SourceNode == e.self {
		e.callee.FinalizeHandshake(hdr.SourceNode, aid, sigs)
		return e.closeAfterPurge(handle)
	}

	if e.Routes.LookupDirectHandle(hdr.SourceNode) != node.InvalidConnHandle {
		e.callee.FinalizeHandshake(hdr.SourceNode, aid, sigs)
		return e.closeAfterPurge(handle)
	}

	// AddDirect evicts any indirect row itself, so ask first.
	wasIndirect := e.Routes.EraseIndirect(hdr.SourceNode)

	if err := e.Routes.AddDirect(handle, hdr.SourceNode); err != nil {
		return e.closeAfterPurge(handle)
	}

	route, ok := e.Routes.Lookup(hdr.SourceNode)
	if !ok {
		return e.closeAfterPurge(handle)
	}

	e.WriteClientHandshake(route.SendBuffer(), hdr.SourceNode)

	e.callee.LearnedNewNodeDirectly(hdr.SourceNode, wasIndirect)
	e.callee.FinalizeHandshake(hdr.SourceNode, aid, sigs)

	if err := e.Routes.Flush(route); err != nil {
		e.hooks.MessageSendingFailed(hdr, err)
	}

	return AwaitHeader
}

func (e *Engine) onClientHandshake(handle node.ConnHandle, hdr wire.Header) State {
	if e.Routes.LookupDirectHandle(hdr.SourceNode) != node.InvalidConnHandle {
		return AwaitHeader
	}

	wasIndirect := e.Routes.EraseIndirect(hdr.SourceNode)

	if err := e.Routes.AddDirect(handle, hdr.SourceNode); err != nil {
		return e.closeAfterPurge(handle)
	}

	e.callee.LearnedNewNodeDirectly(hdr.SourceNode, wasIndirect)

	return AwaitHeader
}

func (e *Engine) onDispatchMessage(handle node.ConnHandle, hdr wire.Header, payload []byte) State {
	if len(payload) == 0 {
		return e.closeAfterPurge(handle)
	}

	lastHop := e.Routes.LookupDirectNode(handle)

	if hdr.SourceNode.IsValid() && hdr.SourceNode != e.self && hdr.SourceNode != lastHop &&
		e.Routes.LookupDirectHandle(hdr.SourceNode) == node.InvalidConnHandle {
		if wasNew, err := e.Routes.AddIndirect(lastHop, hdr.SourceNode); err == nil && wasNew {
			e.callee.LearnedNewNodeIndirectly(hdr.SourceNode)
		}
	}

	stack, message, err := unmarshalDispatchPayload(payload)
	if err != nil {
		return e.closeAfterPurge(handle)
	}

	mid := MessageIdFrom(hdr.OperationData)
	if e.requests.Feed(mid, message) {
		return AwaitHeader
	}

	e.callee.Deliver(hdr.SourceNode, hdr.SourceActor, hdr.DestNode, hdr.DestActor, mid, stack, message)

	return AwaitHeader
}

// HandleNodeShutdown erases every route through n and fires PurgeState
// for each peer thereby orphaned, in response to a transport-detected
// liveness failure.
func (e *Engine) HandleNodeShutdown(n node.Id) {
	handle := e.Routes.LookupDirectHandle(n)
	if handle != node.InvalidConnHandle {
		e.purgeHandle(handle)
		return
	}

	e.Routes.Erase(n, e.callee.PurgeState)
}
