package engine

import "github.com/meshwire/basp/node"

// MessageId names a request/reply correlation value carried in a
// dispatch_message frame's OperationData. It is opaque to the engine;
// the callee interprets it.
type MessageId uint64

// MessageIdFrom extracts a MessageId from a dispatch_message header's
// OperationData field.
func MessageIdFrom(operationData uint64) MessageId {
	return MessageId(operationData)
}

// ExitReason is the payload-free form of operation_data carried by a
// legitimate kill_proxy_instance teardown, as opposed to the dispatch
// error encoding write_dispatch_error produces (see ExitReasonFrom).
type ExitReason uint32

func ExitReasonFrom(operationData uint64) ExitReason {
	return ExitReason(operationData)
}

// Callee is the single upcall surface the engine drives. It carries no
// return values except where noted; the callee is trusted, so upcall
// failures are out of scope for the engine (spec error-handling policy).
// Implement it as an injected capability, not an inheritance relation —
// the engine holds a Callee and the callee may hold an *Engine, with
// neither owning the other.
type Callee interface {
	// FinalizeHandshake completes a handshake; aid and sigs may be the
	// zero value when the frame carried no payload.
	FinalizeHandshake(peer node.Id, aid node.ActorId, sigs map[node.InterfaceSignature]struct{})

	// PurgeState reports that every route to node is gone.
	PurgeState(n node.Id)

	// Deliver hands a locally-addressed user message to the actor system.
	Deliver(srcNode node.Id, srcActor node.ActorId, dstNode node.Id, dstActor node.ActorId, mid MessageId, forwardingStack []node.Id, message []byte)

	ProxyAnnounced(peer node.Id, actor node.ActorId)
	KillProxy(peer node.Id, actor node.ActorId, reason ExitReason)

	LearnedNewNodeDirectly(peer node.Id, wasIndirectBefore bool)
	LearnedNewNodeIndirectly(peer node.Id)

	HandleHeartbeat(peer node.Id)
}
