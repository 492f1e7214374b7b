package registry

import (
	"testing"

	"github.com/meshwire/basp/node"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddAndLookupPublishedActor(t *testing.T) {
	var gotPort uint16
	var gotEntry Entry

	r := New(func(port uint16, e Entry) {
		gotPort = port
		gotEntry = e
	})

	addr := node.ActorAddr{Node: node.Id(1), Actor: node.ActorId(7)}
	sigs := map[node.InterfaceSignature]struct{}{"svc.v1": {}}

	r.AddPublishedActor(1234, addr, sigs)

	assert.Equal(t, uint16(1234), gotPort)
	assert.Equal(t, addr, gotEntry.Addr)

	e, ok := r.Lookup(1234)
	require.True(t, ok)
	assert.Equal(t, addr, e.Addr)
	_, hasSig := e.Signatures["svc.v1"]
	assert.True(t, hasSig)

	_, ok = r.Lookup(9999)
	assert.False(t, ok)
}

func TestAddPublishedActorLastWriterWins(t *testing.T) {
	r := New(nil)

	addr1 := node.ActorAddr{Node: node.Id(1), Actor: node.ActorId(1)}
	addr2 := node.ActorAddr{Node: node.Id(2), Actor: node.ActorId(2)}

	r.AddPublishedActor(80, addr1, nil)
	r.AddPublishedActor(80, addr2, nil)

	e, ok := r.Lookup(80)
	require.True(t, ok)
	assert.Equal(t, addr2, e.Addr)
}

func TestRemovePublishedActorByPort(t *testing.T) {
	r := New(nil)
	addr := node.ActorAddr{Node: node.Id(1), Actor: node.ActorId(1)}
	r.AddPublishedActor(80, addr, nil)

	assert.Equal(t, 1, r.RemovePublishedActorByPort(80))
	assert.Equal(t, 0, r.RemovePublishedActorByPort(80))

	_, ok := r.Lookup(80)
	assert.False(t, ok)
}

func TestRemovePublishedActorSweepsAllPorts(t *testing.T) {
	r := New(nil)
	addr := node.ActorAddr{Node: node.Id(1), Actor: node.ActorId(1)}
	other := node.ActorAddr{Node: node.Id(2), Actor: node.ActorId(2)}

	r.AddPublishedActor(80, addr, nil)
	r.AddPublishedActor(81, addr, nil)
	r.AddPublishedActor(82, other, nil)

	removed := r.RemovePublishedActor(addr, 0)
	assert.Equal(t, 2, removed)

	_, ok := r.Lookup(82)
	assert.True(t, ok)
}

func TestRemovePublishedActorSpecificPortMustMatch(t *testing.T) {
	r := New(nil)
	addr := node.ActorAddr{Node: node.Id(1), Actor: node.ActorId(1)}
	other := node.ActorAddr{Node: node.Id(2), Actor: node.ActorId(2)}

	r.AddPublishedActor(80, addr, nil)

	assert.Equal(t, 0, r.RemovePublishedActor(other, 80))
	assert.Equal(t, 1, r.RemovePublishedActor(addr, 80))
}

func TestSnapshotIsACopy(t *testing.T) {
	r := New(nil)
	addr := node.ActorAddr{Node: node.Id(1), Actor: node.ActorId(1)}
	r.AddPublishedActor(80, addr, nil)

	snap := r.Snapshot()
	delete(snap, 80)

	_, ok := r.Lookup(80)
	assert.True(t, ok)
}
