package replay

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/kestrelsys/pulsegraph/arena"
	"github.com/kestrelsys/pulsegraph/core"
	"github.com/kestrelsys/pulsegraph/hwstate"
	"github.com/kestrelsys/pulsegraph/morphism"
)

func singleStepMorphism(ch core.ChannelId, duration uint64, opcode uint16, payload []byte) morphism.BoundMorphism {
	p := core.NewPath(ch)
	_ = p.Append(duration, opcode, payload)
	return morphism.FromPath(p)
}

func TestReplayMissingStartState(t *testing.T) {
	t.Parallel()
	a := arena.New()
	r := New(a, hwstate.TrivialMachine{})
	ch := core.EncodeChannelID(0, 0)
	bm := singleStepMorphism(ch, 10, 1, nil)

	_, err := r.Call(bm, map[core.ChannelId]hwstate.State{})
	require.Error(t, err)
	require.True(t, errors.Is(err, core.ErrMissingStartState))
}

func TestReplaySingleStepChannelProducesAtomicRoot(t *testing.T) {
	t.Parallel()
	a := arena.New()
	r := New(a, hwstate.TrivialMachine{})
	ch := core.EncodeChannelID(0, 0)
	bm := singleStepMorphism(ch, 10, 1, []byte("p"))

	cm, err := r.Call(bm, map[core.ChannelId]hwstate.State{ch: "start"})
	require.NoError(t, err)
	require.Equal(t, "start", cm.EndStates[ch])

	view := a.Node(cm.Root)
	require.Equal(t, arena.KindAtomic, view.Kind)
}

func TestReplayAdvancesStateThroughMachine(t *testing.T) {
	t.Parallel()
	a := arena.New()
	r := New(a, hwstate.NewTTLMachine())
	ch := core.EncodeChannelID(0, 0)

	bm := morphism.BoundMorphism{}
	require.NoError(t, bm.Append(ch, 10, hwstate.OpTTLOn, nil))

	cm, err := r.Call(bm, map[core.ChannelId]hwstate.State{ch: hwstate.TTLOff})
	require.NoError(t, err)
	require.Equal(t, hwstate.TTLOn, cm.EndStates[ch])
}

func TestReplayPropagatesPhysicsViolation(t *testing.T) {
	t.Parallel()
	a := arena.New()
	r := New(a, hwstate.NewTTLMachine())
	ch := core.EncodeChannelID(0, 0)

	bm := morphism.BoundMorphism{}
	require.NoError(t, bm.Append(ch, 10, hwstate.OpTTLOn, nil))
	require.NoError(t, bm.Append(ch, 10, hwstate.OpTTLOn, nil))

	_, err := r.Call(bm, map[core.ChannelId]hwstate.State{ch: hwstate.TTLOff})
	require.Error(t, err)
	require.True(t, errors.Is(err, core.ErrPhysicsViolation))
}

func TestReplayDeterministicAcrossRuns(t *testing.T) {
	t.Parallel()
	ch0 := core.EncodeChannelID(0, 0)
	ch1 := core.EncodeChannelID(0, 1)

	build := func() (arena.NodeId, *arena.Arena) {
		a := arena.New()
		r := New(a, hwstate.TrivialMachine{})
		bm := morphism.BoundMorphism{}
		require.NoError(t, bm.Append(ch0, 10, 1, nil))
		require.NoError(t, bm.Append(ch1, 20, 2, nil))
		cm, err := r.Call(bm, map[core.ChannelId]hwstate.State{ch0: "s0", ch1: "s1"})
		require.NoError(t, err)
		return cm.Root, a
	}

	root1, a1 := build()
	root2, a2 := build()

	require.Equal(t, root1, root2)
	require.Equal(t, a1.Node(root1), a2.Node(root2))
}
