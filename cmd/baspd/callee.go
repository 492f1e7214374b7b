package main

import (
	"time"

	"github.com/meshwire/basp/engine"
	"github.com/meshwire/basp/node"
	"go.uber.org/zap"
)

// loggingCallee is the reference callee for a standalone baspd instance:
// it has no actor system to hand messages to, so every upcall is logged
// and otherwise discarded. A real embedder replaces this with one that
// forwards into its own actor runtime. It also feeds heartbeats into a
// last-seen tracker, the one upcall this daemon keeps state for.
type loggingCallee struct {
	log        *zap.Logger
	heartbeats *heartbeatTracker
}

func newLoggingCallee(log *zap.Logger, heartbeats *heartbeatTracker) *loggingCallee {
	return &loggingCallee{log: log, heartbeats: heartbeats}
}

func (c *loggingCallee) FinalizeHandshake(peer node.Id, aid node.ActorId, sigs map[node.InterfaceSignature]struct{}) {
	c.log.Info("handshake finalized", zap.Stringer("peer", peer), zap.Uint32("published_actor", uint32(aid)), zap.Int("signatures", len(sigs)))
}

func (c *loggingCallee) PurgeState(n node.Id) {
	c.log.Info("node purged", zap.Stringer("node", n))
	c.heartbeats.forget(n)
}

func (c *loggingCallee) Deliver(srcNode node.Id, srcActor node.ActorId, dstNode node.Id, dstActor node.ActorId, mid engine.MessageId, forwardingStack []node.Id, message []byte) {
	c.log.Info("message delivered",
		zap.Stringer("src_node", srcNode), zap.Uint32("src_actor", uint32(srcActor)),
		zap.Stringer("dst_node", dstNode), zap.Uint32("dst_actor", uint32(dstActor)),
		zap.Uint64("message_id", uint64(mid)), zap.Int("forwarding_stack", len(forwardingStack)),
		zap.Int("message_bytes", len(message)))
}

func (c *loggingCallee) ProxyAnnounced(peer node.Id, actor node.ActorId) {
	c.log.Info("proxy announced", zap.Stringer("peer", peer), zap.Uint32("actor", uint32(actor)))
}

func (c *loggingCallee) KillProxy(peer node.Id, actor node.ActorId, reason engine.ExitReason) {
	c.log.Info("proxy killed", zap.Stringer("peer", peer), zap.Uint32("actor", uint32(actor)), zap.Uint32("reason", uint32(reason)))
}

func (c *loggingCallee) LearnedNewNodeDirectly(peer node.Id, wasIndirectBefore bool) {
	c.log.Info("learned node directly", zap.Stringer("peer", peer), zap.Bool("was_indirect", wasIndirectBefore))
}

func (c *loggingCallee) LearnedNewNodeIndirectly(peer node.Id) {
	c.log.Info("learned node indirectly", zap.Stringer("peer", peer))
}

func (c *loggingCallee) HandleHeartbeat(peer node.Id) {
	c.log.Debug("heartbeat received", zap.Stringer("peer", peer))
	c.heartbeats.touch(peer, time.Now())
}
