package engine

import (
	"bytes"

	"github.com/meshwire/basp/node"
	"github.com/meshwire/basp/routing"
	"github.com/meshwire/basp/wire"
)

// Write is the common framing primitive every writer method below builds
// on: without a payload writer it streams the header alone; with one it
// reserves header_size bytes, runs the writer, computes payload_len from
// what was actually written, and back-patches the header in place.
func (e *Engine) Write(buf *bytes.Buffer, h wire.Header, payload wire.PayloadWriter) error {
	return wire.Write(buf, h, payload)
}

// WriteRoute composes Write with a flush on route, the pairing spec.md
// §4.5 names write(route, header, writer?).
func (e *Engine) WriteRoute(route routing.Route, h wire.Header, payload wire.PayloadWriter) error {
	if err := e.Write(route.SendBuffer(), h, payload); err != nil {
		return err
	}
	return e.Routes.Flush(route)
}

// WriteServerHandshake frames a server_handshake. If port names a
// published entry, the payload carries its actor id and interface
// signatures; otherwise the frame carries no payload.
func (e *Engine) WriteServerHandshake(buf *bytes.Buffer, port uint16) error {
	h := wire.Header{
		SourceNode:    e.self,
		DestNode:      node.InvalidId,
		SourceActor:   node.InvalidActorId,
		DestActor:     node.InvalidActorId,
		Operation:     wire.OperationServerHandshake,
		OperationData: uint64(wire.ProtocolVersion),
	}

	entry, ok := e.Published.Lookup(port)
	if !ok {
		return e.Write(buf, h, nil)
	}

	return e.Write(buf, h, func(b *bytes.Buffer) error {
		data, err := marshalHandshakePayload(entry.Addr.Actor, entry.Signatures)
		if err != nil {
			return err
		}
		_, werr := b.Write(data)
		return werr
	})
}

// WriteClientHandshake frames a client_handshake back to remoteNode; it
// carries no payload.
func (e *Engine) WriteClientHandshake(buf *bytes.Buffer, remoteNode node.Id) error {
	h := wire.Header{
		SourceNode: e.self,
		DestNode:   remoteNode,
		Operation:  wire.OperationClientHandshake,
	}

	return e.Write(buf, h, nil)
}

// WriteDispatchError frames a kill_proxy_instance carrying code, with
// payload equal to originalHeader concatenated with originalPayload, per
// spec.md's disambiguation-by-payload-shape rule for this operation. It
// flushes route once written, matching the "writers flush" discipline.
func (e *Engine) WriteDispatchError(route routing.Route, src, dst node.Id, code wire.ErrorCode, originalHeader wire.Header, originalPayload []byte) error {
	h := wire.Header{
		SourceNode:    src,
		DestNode:      dst,
		SourceActor:   node.InvalidActorId,
		DestActor:     node.InvalidActorId,
		Operation:     wire.OperationKillProxyInstance,
		OperationData: uint64(code),
	}

	return e.WriteRoute(route, h, func(b *bytes.Buffer) error {
		b.Write(wire.Encode(originalHeader))
		b.Write(originalPayload)
		return nil
	})
}

// WriteKillProxyInstance frames a legitimate proxy teardown: no payload,
// OperationData carries the exit reason (widened from u32 to u64 per
// spec.md §9's open question on this operation's dual encoding).
func (e *Engine) WriteKillProxyInstance(buf *bytes.Buffer, destNode node.Id, aid node.ActorId, reason ExitReason) error {
	h := wire.Header{
		SourceNode:    e.self,
		DestNode:      destNode,
		SourceActor:   aid,
		DestActor:     node.InvalidActorId,
		Operation:     wire.OperationKillProxyInstance,
		OperationData: uint64(reason),
	}

	return e.Write(buf, h, nil)
}

// WriteDispatchMessage frames an outbound dispatch_message: message is the
// opaque user payload, stack the forwarding path already transited (nil
// for a message originating here), and mid the correlation id a callee
// answering an Ask echoes back. route must already resolve destNode.
func (e *Engine) WriteDispatchMessage(route routing.Route, srcActor node.ActorId, destNode node.Id, destActor node.ActorId, mid MessageId, stack []node.Id, message []byte) error {
	h := wire.Header{
		SourceNode:    e.self,
		DestNode:      destNode,
		SourceActor:   srcActor,
		DestActor:     destActor,
		Operation:     wire.OperationDispatchMessage,
		OperationData: uint64(mid),
	}

	return e.WriteRoute(route, h, func(b *bytes.Buffer) error {
		data, err := marshalDispatchPayload(stack, message)
		if err != nil {
			return err
		}
		_, werr := b.Write(data)
		return werr
	})
}

// WriteHeartbeat frames a heartbeat addressed to remoteNode.
func (e *Engine) WriteHeartbeat(buf *bytes.Buffer, remoteNode node.Id) error {
	h := wire.Header{
		SourceNode: e.self,
		DestNode:   remoteNode,
		Operation:  wire.OperationHeartbeat,
	}

	return e.Write(buf, h, nil)
}

// HandleHeartbeatBroadcast appends a heartbeat to every direct peer's
// send buffer and flushes it. The embedder is responsible for calling
// this on its own timer; the engine has no internal timers of its own.
func (e *Engine) HandleHeartbeatBroadcast() {
	for _, peer := range e.Routes.DirectPeers() {
		route, ok := e.Routes.Lookup(peer)
		if !ok {
			continue
		}

		if err := e.WriteHeartbeat(route.SendBuffer(), peer); err != nil {
			e.hooks.MessageSendingFailed(wire.Header{DestNode: peer, Operation: wire.OperationHeartbeat}, err)
			continue
		}

		if err := e.Routes.Flush(route); err != nil {
			e.hooks.MessageSendingFailed(wire.Header{DestNode: peer, Operation: wire.OperationHeartbeat}, err)
		}
	}
}
