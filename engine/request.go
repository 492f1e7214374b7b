package engine

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/meshwire/basp/node"
)

// ErrNoRouteToNode is returned by Ask when the engine has no route, direct
// or indirect, to the requested destination.
var ErrNoRouteToNode = errors.New("engine: no route to node")

// ErrRequestCancelled is returned by a pending Ask whose RequestTable entry
// was closed without a reply ever being fed, e.g. by Close.
var ErrRequestCancelled = errors.New("engine: request cancelled")

// RequestTable correlates outbound dispatch_message frames with their
// eventual reply. BASP's header carries no RelatesTo field, so
// correlation rides inside MessageId (dispatch_message's OperationData),
// which the replying peer is expected to echo back. Adapted from the
// teacher's transport.RequestTable: a sync.Map of in-flight ids to reply
// channels, trimmed to plain byte-slice replies since engine payloads
// are already unmarshalled by the time a reply reaches Feed.
type RequestTable struct {
	table sync.Map
	next  uint64
}

type pendingRequest struct {
	parent *RequestTable
	id     MessageId
	ch     chan []byte
	once   sync.Once
}

func (p *pendingRequest) cancel() {
	p.once.Do(func() {
		p.parent.table.Delete(p.id)
		close(p.ch)
	})
}

func (p *pendingRequest) feed(reply []byte) {
	p.once.Do(func() {
		p.parent.table.Delete(p.id)
		p.ch <- reply
		close(p.ch)
	})
}

// Wait blocks until a reply is fed for this request or ctx is done.
func (p *pendingRequest) Wait(ctx context.Context) ([]byte, error) {
	select {
	case <-ctx.Done():
		p.cancel()
		return nil, ctx.Err()
	case reply, ok := <-p.ch:
		if !ok {
			return nil, ErrRequestCancelled
		}
		return reply, nil
	}
}

// NextMessageId returns a MessageId unique to this table. It never
// returns 0, so 0 stays available as the engine's "uncorrelated" sentinel
// for ordinary dispatch_message traffic that was not sent through Ask.
func (r *RequestTable) NextMessageId() MessageId {
	return MessageId(atomic.AddUint64(&r.next, 1))
}

func (r *RequestTable) put(id MessageId) *pendingRequest {
	p := &pendingRequest{parent: r, id: id, ch: make(chan []byte, 1)}
	r.table.Store(id, p)
	return p
}

// Feed delivers reply to the pending request waiting on id, if any. It
// reports whether a waiter was found, letting the caller fall back to its
// ordinary Deliver handling when id does not correlate to an outstanding
// Ask.
func (r *RequestTable) Feed(id MessageId, reply []byte) bool {
	v, ok := r.table.Load(id)
	if !ok {
		return false
	}
	v.(*pendingRequest).feed(reply)
	return true
}

// Close cancels every outstanding request, waking their Wait calls with
// ErrRequestCancelled.
func (r *RequestTable) Close() {
	r.table.Range(func(_, value interface{}) bool {
		value.(*pendingRequest).cancel()
		return true
	})
}

// Ask sends message to destActor on destNode as a dispatch_message frame
// and blocks until a reply correlating to the same MessageId is fed back
// through Feed, or ctx is done. It is additive sugar over Deliver, not a
// protocol change: the MessageId it allocates is carried in the frame
// exactly as any other dispatch_message's is, and a callee that wants to
// answer an Ask replies with dispatch_message echoing the same id.
func (e *Engine) Ask(ctx context.Context, srcActor node.ActorId, destNode node.Id, destActor node.ActorId, message []byte) ([]byte, error) {
	route, ok := e.Routes.Lookup(destNode)
	if !ok {
		return nil, fmt.Errorf("engine: ask %v: %w", destNode, ErrNoRouteToNode)
	}

	mid := e.requests.NextMessageId()
	pending := e.requests.put(mid)

	if err := e.WriteDispatchMessage(route, srcActor, destNode, destActor, mid, nil, message); err != nil {
		pending.cancel()
		return nil, err
	}

	return pending.Wait(ctx)
}

// Feed delivers reply to whatever Ask call is waiting on mid, reporting
// whether one was found. onDispatchMessage calls this before falling back
// to callee.Deliver, so a reply to an outstanding Ask never also reaches
// the callee as an ordinary message.
func (e *Engine) Feed(mid MessageId, reply []byte) bool {
	return e.requests.Feed(mid, reply)
}
