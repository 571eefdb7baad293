package compiler

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/kestrelsys/pulsegraph/arena"
	"github.com/kestrelsys/pulsegraph/core"
)

func TestCompileSingleAtomic(t *testing.T) {
	t.Parallel()
	a := arena.New()
	ch := core.EncodeChannelID(0, 0)
	id := a.Atomic(ch, 100, 42, []byte("p"))

	c, err := New(a, DefaultOptions())
	require.NoError(t, err)

	events, err := c.Compile(id)
	require.NoError(t, err)
	require.Equal(t, []Event{{Time: 0, Channel: ch, Opcode: 42, Payload: []byte("p")}}, events)
}

func TestCompileSerial(t *testing.T) {
	t.Parallel()
	a := arena.New()
	ch := core.EncodeChannelID(0, 0)
	first := a.Atomic(ch, 100, 1, []byte("first"))
	second := a.Atomic(ch, 50, 2, []byte("second"))
	root, err := a.ComposeSequence([]arena.NodeId{first, second})
	require.NoError(t, err)

	c, err := New(a, DefaultOptions())
	require.NoError(t, err)
	events, err := c.Compile(root)
	require.NoError(t, err)

	require.Equal(t, []Event{
		{Time: 0, Channel: ch, Opcode: 1, Payload: []byte("first")},
		{Time: 100, Channel: ch, Opcode: 2, Payload: []byte("second")},
	}, events)
}

func TestCompileParallelDisjoint(t *testing.T) {
	t.Parallel()
	a := arena.New()
	ch0 := core.EncodeChannelID(0, 0)
	ch1 := core.EncodeChannelID(0, 1)
	nodeA := a.Atomic(ch0, 100, 0, []byte("A"))
	nodeB := a.Atomic(ch1, 50, 0, []byte("B"))
	filler := a.Atomic(ch1, 50, 0x0000, nil)
	seqB, err := a.ComposeSequence([]arena.NodeId{nodeB, filler})
	require.NoError(t, err)
	root, err := a.ParallelComposeMany([]arena.NodeId{nodeA, seqB})
	require.NoError(t, err)

	c, err := New(a, DefaultOptions())
	require.NoError(t, err)
	events, err := c.Compile(root)
	require.NoError(t, err)

	require.Equal(t, []Event{
		{Time: 0, Channel: ch0, Opcode: 0, Payload: []byte("A")},
		{Time: 0, Channel: ch1, Opcode: 0, Payload: []byte("B")},
		{Time: 50, Channel: ch1, Opcode: 0x0000, Payload: nil},
	}, events)
}

func TestCompileDeepSerialChainCountAndOrder(t *testing.T) {
	t.Parallel()
	a := arena.New()
	ch := core.EncodeChannelID(0, 0)
	const n = 1000
	ids := make([]arena.NodeId, n)
	for i := 0; i < n; i++ {
		ids[i] = a.Atomic(ch, 1, uint16(i%256), nil)
	}
	root, err := a.ComposeSequence(ids)
	require.NoError(t, err)

	c, err := New(a, DefaultOptions())
	require.NoError(t, err)
	events, err := c.Compile(root)
	require.NoError(t, err)

	require.Len(t, events, n)
	for i, e := range events {
		require.Equal(t, uint64(i), e.Time)
	}
}

func TestCompileByBoardGroups(t *testing.T) {
	t.Parallel()
	a := arena.New()
	chBoard0, err := core.ParseBoardChannel("RWG_0", 0)
	require.NoError(t, err)
	chBoard1, err := core.ParseBoardChannel("RWG_1", 0)
	require.NoError(t, err)

	n0 := a.Atomic(chBoard0, 10, 1, nil)
	n1 := a.Atomic(chBoard1, 10, 1, nil)
	root, err := a.ParallelComposeMany([]arena.NodeId{n0, n1})
	require.NoError(t, err)

	c, err := New(a, DefaultOptions())
	require.NoError(t, err)
	byBoard, err := c.CompileByBoard(root)
	require.NoError(t, err)

	require.Len(t, byBoard[0], 1)
	require.Len(t, byBoard[1], 1)
}

func TestCompileCacheSoundness(t *testing.T) {
	t.Parallel()
	build := func() (*arena.Arena, arena.NodeId) {
		a := arena.New()
		ch := core.EncodeChannelID(0, 0)
		ids := make([]arena.NodeId, 50)
		for i := range ids {
			ids[i] = a.Atomic(ch, 1, uint16(i), nil)
		}
		root, err := a.ComposeSequence(ids)
		require.NoError(t, err)
		return a, root
	}

	aUncached, rootUncached := build()
	cUncached, err := New(aUncached, Options{EnableIncrementalCache: false})
	require.NoError(t, err)
	uncachedEvents, err := cUncached.Compile(rootUncached)
	require.NoError(t, err)

	aCached, rootCached := build()
	cCached, err := New(aCached, Options{EnableIncrementalCache: true, CacheCapacity: 8})
	require.NoError(t, err)
	cachedEvents, err := cCached.Compile(rootCached)
	require.NoError(t, err)

	require.Equal(t, uncachedEvents, cachedEvents)

	// Compiling a second time (now warm, and under eviction pressure
	// since capacity is far smaller than the node count) must still
	// produce byte-identical output.
	cachedEventsAgain, err := cCached.Compile(rootCached)
	require.NoError(t, err)
	require.Equal(t, cachedEvents, cachedEventsAgain)
}

func TestCompileSharedSubgraphReusesNodeId(t *testing.T) {
	t.Parallel()
	a := arena.New()
	ch0 := core.EncodeChannelID(0, 0)
	ch1 := core.EncodeChannelID(0, 1)

	shared := a.Atomic(ch0, 10, 1, []byte("shared"))
	seqA, err := a.ComposeSequence([]arena.NodeId{shared})
	require.NoError(t, err)
	require.Equal(t, shared, seqA)
	other := a.Atomic(ch1, 10, 2, []byte("other"))

	root, err := a.ParallelComposeMany([]arena.NodeId{seqA, other})
	require.NoError(t, err)

	c, err := New(a, Options{EnableIncrementalCache: true, CacheCapacity: 16})
	require.NoError(t, err)
	events, err := c.Compile(root)
	require.NoError(t, err)
	require.Len(t, events, 2)
}
