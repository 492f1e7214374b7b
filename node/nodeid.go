// Package node defines the identity value types shared by every BASP
// component: node identifiers, actor identifiers, actor addresses and
// connection handles. They are kept dependency-free so the wire codec,
// routing table and engine can all import them without pulling in any
// transport or actor-system concern.
package node

import (
	"crypto/rand"
	"encoding/binary"
	"fmt"
)

// Id is a stable global identifier for a process participating in the actor
// mesh. The header budget in wire.Header fixes the combined width of the two
// node fields and two actor fields at 24 bytes, so Id is carried as a single
// uint64 rather than the wider fingerprint a standalone identity service
// would use; two processes are the same node iff their Id values are equal.
type Id uint64

// InvalidId is the distinguished sentinel every component must recognize;
// the generator below never produces it.
const InvalidId Id = 0

func (n Id) String() string {
	return fmt.Sprintf("%016x", uint64(n))
}

func (n Id) IsValid() bool {
	return n != InvalidId
}

// New generates a random Id using crypto/rand, retrying in the
// astronomically unlikely case it collides with InvalidId.
func New() (Id, error) {
	for {
		var b [8]byte
		if _, err := rand.Read(b[:]); err != nil {
			return InvalidId, err
		}

		id := Id(binary.BigEndian.Uint64(b[:]))
		if id != InvalidId {
			return id, nil
		}
	}
}

// ActorId names an actor within its owning node.
type ActorId uint32

const InvalidActorId ActorId = 0

// ActorAddr binds an ActorId to the Id of the node hosting it.
type ActorAddr struct {
	Node  Id
	Actor ActorId
}

func (a ActorAddr) String() string {
	return fmt.Sprintf("%v/%v", a.Node, a.Actor)
}

func (a ActorAddr) IsValid() bool {
	return a.Node.IsValid() && a.Actor != InvalidActorId
}

// ConnHandle is the transport's opaque name for one accepted or dialed
// byte stream. Zero is the invalid sentinel; real handles are assigned by
// the embedder (see tcptransport.Embedder) starting from 1.
type ConnHandle uint64

const InvalidConnHandle ConnHandle = 0

// InterfaceSignature is an opaque string naming an actor's advertised
// interface, carried verbatim in handshake payloads.
type InterfaceSignature string
