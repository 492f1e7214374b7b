package main

import (
	"testing"
	"time"

	"github.com/meshwire/basp/node"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHeartbeatTrackerTouchAndSnapshot(t *testing.T) {
	tr := newHeartbeatTracker()
	at := time.Now()

	tr.touch(node.Id(2), at)
	tr.touch(node.Id(3), at.Add(time.Second))

	seen := tr.snapshot()
	require.Len(t, seen, 2)

	byNode := make(map[node.Id]time.Time, len(seen))
	for _, s := range seen {
		byNode[s.Node] = s.LastSeen
	}
	assert.Equal(t, at, byNode[node.Id(2)])
	assert.Equal(t, at.Add(time.Second), byNode[node.Id(3)])
}

func TestHeartbeatTrackerTouchOverwritesPreviousValue(t *testing.T) {
	tr := newHeartbeatTracker()
	first := time.Now()
	second := first.Add(time.Minute)

	tr.touch(node.Id(2), first)
	tr.touch(node.Id(2), second)

	seen := tr.snapshot()
	require.Len(t, seen, 1)
	assert.Equal(t, second, seen[0].LastSeen)
}

func TestHeartbeatTrackerForgetRemovesEntry(t *testing.T) {
	tr := newHeartbeatTracker()
	tr.touch(node.Id(2), time.Now())
	tr.forget(node.Id(2))

	assert.Empty(t, tr.snapshot())
}
