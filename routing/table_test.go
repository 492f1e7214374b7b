package routing

import (
	"bytes"
	"testing"

	"github.com/meshwire/basp/node"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeTransport struct {
	buffers map[node.ConnHandle]*bytes.Buffer
	flushed map[node.ConnHandle]int
}

func newFakeTransport() *fakeTransport {
	return &fakeTransport{
		buffers: make(map[node.ConnHandle]*bytes.Buffer),
		flushed: make(map[node.ConnHandle]int),
	}
}

func (f *fakeTransport) WriteBuffer(h node.ConnHandle) *bytes.Buffer {
	b, ok := f.buffers[h]
	if !ok {
		b = &bytes.Buffer{}
		f.buffers[h] = b
	}
	return b
}

func (f *fakeTransport) Flush(h node.ConnHandle) error {
	f.flushed[h]++
	return nil
}

func TestAddDirectRejectsSelfAndDuplicates(t *testing.T) {
	self := node.Id(1)
	tbl := New(self, newFakeTransport())

	assert.ErrorIs(t, tbl.AddDirect(node.ConnHandle(1), self), ErrSelfRoute)

	require.NoError(t, tbl.AddDirect(node.ConnHandle(1), node.Id(2)))
	assert.ErrorIs(t, tbl.AddDirect(node.ConnHandle(2), node.Id(2)), ErrAlreadyDirect)
	assert.ErrorIs(t, tbl.AddDirect(node.ConnHandle(1), node.Id(3)), ErrHandleBound)
}

func TestAddDirectEvictsIndirect(t *testing.T) {
	self := node.Id(1)
	tbl := New(self, newFakeTransport())

	require.NoError(t, tbl.AddDirect(node.ConnHandle(1), node.Id(2)))

	wasNew, err := tbl.AddIndirect(node.Id(2), node.Id(3))
	require.NoError(t, err)
	assert.True(t, wasNew)

	_, ok := tbl.Lookup(node.Id(3))
	require.True(t, ok)

	require.NoError(t, tbl.AddDirect(node.ConnHandle(2), node.Id(3)))

	route, ok := tbl.Lookup(node.Id(3))
	require.True(t, ok)
	assert.Equal(t, node.Id(3), route.NextHop)
	assert.Equal(t, node.ConnHandle(2), route.NextHopHandle)
}

func TestAddIndirectRequiresDirectHop(t *testing.T) {
	tbl := New(node.Id(1), newFakeTransport())

	_, err := tbl.AddIndirect(node.Id(9), node.Id(10))
	assert.ErrorIs(t, err, ErrNoDirectHop)
}

func TestEraseDirectCascadesIndirect(t *testing.T) {
	tbl := New(node.Id(1), newFakeTransport())

	require.NoError(t, tbl.AddDirect(node.ConnHandle(1), node.Id(2)))
	_, err := tbl.AddIndirect(node.Id(2), node.Id(3))
	require.NoError(t, err)

	var forgotten []node.Id
	tbl.EraseDirect(node.ConnHandle(1), func(n node.Id) {
		forgotten = append(forgotten, n)
	})

	assert.ElementsMatch(t, []node.Id{node.Id(2), node.Id(3)}, forgotten)

	_, ok := tbl.Lookup(node.Id(2))
	assert.False(t, ok)
	_, ok = tbl.Lookup(node.Id(3))
	assert.False(t, ok)
}

func TestEraseDirectKeepsIndirectWithSurvivingHop(t *testing.T) {
	tbl := New(node.Id(1), newFakeTransport())

	require.NoError(t, tbl.AddDirect(node.ConnHandle(1), node.Id(2)))
	require.NoError(t, tbl.AddDirect(node.ConnHandle(2), node.Id(3)))

	_, err := tbl.AddIndirect(node.Id(2), node.Id(4))
	require.NoError(t, err)
	_, err = tbl.AddIndirect(node.Id(3), node.Id(4))
	require.NoError(t, err)

	var forgotten []node.Id
	tbl.EraseDirect(node.ConnHandle(1), func(n node.Id) {
		forgotten = append(forgotten, n)
	})

	assert.ElementsMatch(t, []node.Id{node.Id(2)}, forgotten)

	route, ok := tbl.Lookup(node.Id(4))
	require.True(t, ok)
	assert.Equal(t, node.Id(3), route.NextHop)
}

func TestLookupDirectHelpers(t *testing.T) {
	tbl := New(node.Id(1), newFakeTransport())
	require.NoError(t, tbl.AddDirect(node.ConnHandle(5), node.Id(2)))

	assert.Equal(t, node.ConnHandle(5), tbl.LookupDirectHandle(node.Id(2)))
	assert.Equal(t, node.Id(2), tbl.LookupDirectNode(node.ConnHandle(5)))

	assert.Equal(t, node.InvalidConnHandle, tbl.LookupDirectHandle(node.Id(99)))
	assert.Equal(t, node.InvalidId, tbl.LookupDirectNode(node.ConnHandle(99)))
}

func TestFlushDelegatesToTransport(t *testing.T) {
	transport := newFakeTransport()
	tbl := New(node.Id(1), transport)
	require.NoError(t, tbl.AddDirect(node.ConnHandle(5), node.Id(2)))

	route, ok := tbl.Lookup(node.Id(2))
	require.True(t, ok)

	require.NoError(t, tbl.Flush(route))
	assert.Equal(t, 1, transport.flushed[node.ConnHandle(5)])

	buf := route.SendBuffer()
	buf.WriteString("hi")
	assert.Equal(t, "hi", transport.buffers[node.ConnHandle(5)].String())
}

func TestSnapshotReflectsDirectAndIndirect(t *testing.T) {
	tbl := New(node.Id(1), newFakeTransport())
	require.NoError(t, tbl.AddDirect(node.ConnHandle(5), node.Id(2)))

	_, err := tbl.AddIndirect(node.Id(2), node.Id(3))
	require.NoError(t, err)

	direct, indirect := tbl.Snapshot()
	require.Len(t, direct, 1)
	assert.Equal(t, node.Id(2), direct[0].Node)
	assert.Equal(t, node.ConnHandle(5), direct[0].Handle)

	require.Len(t, indirect, 1)
	assert.Equal(t, node.Id(3), indirect[0].Node)
	assert.Equal(t, []node.Id{node.Id(2)}, indirect[0].Hops)
}
