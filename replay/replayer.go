// Package replay walks a BoundMorphism's per-channel paths, validating
// each step against a hardware-state machine and materialising verified
// atomic nodes into an Arena.
package replay

import (
	"sort"

	"github.com/kestrelsys/pulsegraph/arena"
	"github.com/kestrelsys/pulsegraph/core"
	"github.com/kestrelsys/pulsegraph/hwstate"
	"github.com/kestrelsys/pulsegraph/morphism"
)

// Replayer materialises a BoundMorphism's paths into an Arena, advancing
// and validating per-channel state through a Machine.
type Replayer struct {
	Arena   *arena.Arena
	Machine hwstate.Machine
}

// New returns a Replayer backed by a and validating transitions with m. A
// nil Machine behaves like hwstate.TrivialMachine{}.
func New(a *arena.Arena, m hwstate.Machine) *Replayer {
	if m == nil {
		m = hwstate.TrivialMachine{}
	}
	return &Replayer{Arena: a, Machine: m}
}

// Call replays bm, returning a ClosedMorphism with the verified root node
// and each channel's end state. Channels are processed in ascending
// ChannelId order so node-id assignment is reproducible across replays
// with identical inputs.
//
// Unlike the source this system was distilled from, which left start
// state unchanged through replay, Call threads state through
// Machine.Next on every step and records the advanced state as each
// channel's end state.
func (r *Replayer) Call(bm morphism.BoundMorphism, startStates map[core.ChannelId]hwstate.State) (morphism.ClosedMorphism, error) {
	channels := bm.Channels()
	sort.Slice(channels, func(i, j int) bool { return channels[i] < channels[j] })

	endStates := make(map[core.ChannelId]any, len(channels))
	seqIds := make([]arena.NodeId, 0, len(channels))

	for _, ch := range channels {
		path, _ := bm.Path(ch)
		state, ok := startStates[ch]
		if !ok {
			return morphism.ClosedMorphism{}, core.NewMissingStartStateError(ch)
		}

		stepIds := make([]arena.NodeId, 0, len(path.Steps))
		for _, step := range path.Steps {
			next, err := r.Machine.Next(ch, state, step.Opcode, step.Payload)
			if err != nil {
				return morphism.ClosedMorphism{}, err
			}
			state = next
			stepIds = append(stepIds, r.Arena.Atomic(ch, step.Duration, step.Opcode, step.Payload))
		}

		seqId, err := r.Arena.ComposeSequence(stepIds)
		if err != nil {
			return morphism.ClosedMorphism{}, err
		}
		seqIds = append(seqIds, seqId)
		endStates[ch] = state
	}

	root, err := closeRoot(r.Arena, seqIds)
	if err != nil {
		return morphism.ClosedMorphism{}, err
	}
	return morphism.ClosedMorphism{Root: root, EndStates: endStates}, nil
}

func closeRoot(a *arena.Arena, seqIds []arena.NodeId) (arena.NodeId, error) {
	if len(seqIds) == 1 {
		return seqIds[0], nil
	}
	return a.ParallelComposeMany(seqIds)
}
