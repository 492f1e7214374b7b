package engine

import (
	"github.com/meshwire/basp/node"
	"github.com/meshwire/basp/wire"
)

// Hooks carries optional observability events. The five events differ
// in arity, so each is its own method rather than a single variant enum
// sink; an embedder that cares about none of them can embed NoopHooks.
type Hooks interface {
	MessageForwarded(h wire.Header)
	MessageForwardingFailed(h wire.Header)
	MessageSent(h wire.Header)
	MessageSendingFailed(h wire.Header, err error)
	ActorPublished(port uint16, addr node.ActorAddr)
}

// NoopHooks implements Hooks with no-ops; embed it to satisfy the
// interface while overriding only the events an embedder cares about.
type NoopHooks struct{}

func (NoopHooks) MessageForwarded(wire.Header)                {}
func (NoopHooks) MessageForwardingFailed(wire.Header)          {}
func (NoopHooks) MessageSent(wire.Header)                      {}
func (NoopHooks) MessageSendingFailed(wire.Header, error)       {}
func (NoopHooks) ActorPublished(uint16, node.ActorAddr)        {}
