package main

import (
	"github.com/meshwire/basp/engine"
	"github.com/meshwire/basp/node"
	"github.com/meshwire/basp/wire"
	"go.uber.org/zap"
)

// loggingHooks embeds engine.NoopHooks and overrides only the events
// worth a log line at a running daemon.
type loggingHooks struct {
	engine.NoopHooks
	log *zap.Logger
}

func newLoggingHooks(log *zap.Logger) *loggingHooks {
	return &loggingHooks{log: log}
}

func (h *loggingHooks) MessageForwardingFailed(hdr wire.Header) {
	h.log.Warn("message forwarding failed", zap.Stringer("dest", hdr.DestNode), zap.Stringer("op", hdr.Operation))
}

func (h *loggingHooks) MessageSendingFailed(hdr wire.Header, err error) {
	h.log.Warn("message send failed", zap.Stringer("dest", hdr.DestNode), zap.Stringer("op", hdr.Operation), zap.Error(err))
}

func (h *loggingHooks) ActorPublished(port uint16, addr node.ActorAddr) {
	h.log.Info("actor published", zap.Uint16("port", port), zap.Stringer("addr", addr))
}
