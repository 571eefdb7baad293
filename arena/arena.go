package arena

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/kestrelsys/pulsegraph/core"
	"golang.org/x/exp/slices"
)

// incrementalCache is the narrow interface compiler.IncrementalCache
// satisfies. Declared here, rather than imported from compiler, to avoid
// an import cycle: compiler depends on arena, not the other way around.
type incrementalCache interface {
	Clear()
}

// Arena owns every node created during replay and composition. It
// assigns monotone NodeIds, interns Atomic nodes by value and composite
// nodes by their exact child sequence, and optionally backs an
// incremental compile cache. An Arena is not safe for concurrent use;
// distinct Arenas may be driven from different goroutines independently.
type Arena struct {
	nodes   []node
	atomics map[atomicKey]NodeId
	seqs    map[string]NodeId
	pars    map[string]NodeId
	cache   incrementalCache
}

type atomicKey struct {
	channel  core.ChannelId
	duration uint64
	opcode   uint16
	payload  string
}

// New returns an empty Arena.
func New() *Arena {
	return &Arena{
		atomics: map[atomicKey]NodeId{},
		seqs:    map[string]NodeId{},
		pars:    map[string]NodeId{},
	}
}

// WithCapacity returns an empty Arena with node storage and intern tables
// pre-sized for roughly n nodes.
func WithCapacity(n int) *Arena {
	return &Arena{
		nodes:   make([]node, 0, n),
		atomics: make(map[atomicKey]NodeId, n),
		seqs:    make(map[string]NodeId, n/4+1),
		pars:    make(map[string]NodeId, n/4+1),
	}
}

// SetCache attaches c as this arena's incremental compile cache. A nil c
// detaches any existing cache.
func (a *Arena) SetCache(c incrementalCache) { a.cache = c }

// NodeCount returns the number of nodes currently stored.
func (a *Arena) NodeCount() int { return len(a.nodes) }

// Clear empties the arena and purges its attached cache, if any. Every
// NodeId issued before the call is permanently invalid.
func (a *Arena) Clear() {
	a.nodes = a.nodes[:0]
	a.atomics = map[atomicKey]NodeId{}
	a.seqs = map[string]NodeId{}
	a.pars = map[string]NodeId{}
	if a.cache != nil {
		a.cache.Clear()
	}
}

// Node returns a read-only view of id.
func (a *Arena) Node(id NodeId) NodeView {
	n := a.nodes[id]
	return NodeView{
		Kind: n.kind, Channel: n.channel, Duration: n.duration,
		Opcode: n.opcode, Payload: n.payload, Children: n.children, Channels: n.channels,
	}
}

// Duration returns the duration recorded for id.
func (a *Arena) Duration(id NodeId) uint64 { return a.nodes[id].duration }

// Atomic interns an atomic step, returning the existing NodeId if an
// identical (channel, duration, opcode, payload) tuple was already
// recorded.
func (a *Arena) Atomic(channel core.ChannelId, duration uint64, opcode uint16, payload []byte) NodeId {
	key := atomicKey{channel: channel, duration: duration, opcode: opcode, payload: string(payload)}
	if id, ok := a.atomics[key]; ok {
		return id
	}
	id := NodeId(len(a.nodes))
	a.nodes = append(a.nodes, node{
		kind: KindAtomic, channel: channel, duration: duration,
		opcode: opcode, payload: append([]byte(nil), payload...),
	})
	a.atomics[key] = id
	return id
}

// ComposeSequence builds an ordered serial product of children, all of
// which must address the same channel. Returns the lone child unchanged
// if len(children) == 1. Flattens immediate Sequence children so the
// result never nests two Sequences back to back.
func (a *Arena) ComposeSequence(children []NodeId) (NodeId, error) {
	if len(children) == 0 {
		return 0, core.NewCompositionError("compose_sequence requires at least one child")
	}
	if len(children) == 1 {
		return children[0], nil
	}
	flat := a.flattenByKind(children, KindSequence)
	ch, err := a.requireSingleChannel(flat)
	if err != nil {
		return 0, err
	}
	var duration uint64
	for _, id := range flat {
		d, err := core.AddDuration(ch, duration, a.nodes[id].duration)
		if err != nil {
			return 0, err
		}
		duration = d
	}
	key := compositeKey(KindSequence, flat)
	if id, ok := a.seqs[key]; ok {
		return id, nil
	}
	id := NodeId(len(a.nodes))
	a.nodes = append(a.nodes, node{kind: KindSequence, channel: ch, duration: duration, children: flat, channels: []core.ChannelId{ch}})
	a.seqs[key] = id
	return id, nil
}

// ParallelComposeMany builds a tensor product of children whose channel
// sets must be pairwise disjoint. Returns the lone child unchanged if
// len(children) == 1. Flattens immediate Parallel children.
func (a *Arena) ParallelComposeMany(children []NodeId) (NodeId, error) {
	if len(children) == 0 {
		return 0, core.NewCompositionError("parallel_compose_many requires at least one child")
	}
	if len(children) == 1 {
		return children[0], nil
	}
	flat := a.flattenByKind(children, KindParallel)
	channels, err := a.requireDisjointChannels(flat)
	if err != nil {
		return 0, err
	}
	var duration uint64
	for _, id := range flat {
		if d := a.nodes[id].duration; d > duration {
			duration = d
		}
	}
	key := compositeKey(KindParallel, flat)
	if id, ok := a.pars[key]; ok {
		return id, nil
	}
	id := NodeId(len(a.nodes))
	a.nodes = append(a.nodes, node{kind: KindParallel, duration: duration, children: flat, channels: channels})
	a.pars[key] = id
	return id, nil
}

func (a *Arena) flattenByKind(children []NodeId, kind Kind) []NodeId {
	flat := make([]NodeId, 0, len(children))
	for _, id := range children {
		if a.nodes[id].kind == kind {
			flat = append(flat, a.nodes[id].children...)
		} else {
			flat = append(flat, id)
		}
	}
	return flat
}

func (a *Arena) requireSingleChannel(ids []NodeId) (core.ChannelId, error) {
	first, ok := a.nodes[ids[0]].primaryChannel()
	if !ok {
		return 0, core.NewCompositionError("compose_sequence child is a Parallel node spanning multiple channels")
	}
	for _, id := range ids[1:] {
		ch, ok := a.nodes[id].primaryChannel()
		if !ok {
			return 0, core.NewCompositionError("compose_sequence child is a Parallel node spanning multiple channels")
		}
		if ch != first {
			return 0, core.NewCompositionError(fmt.Sprintf("compose_sequence children span channels %s and %s", first, ch))
		}
	}
	return first, nil
}

func (a *Arena) requireDisjointChannels(ids []NodeId) ([]core.ChannelId, error) {
	seen := map[core.ChannelId]bool{}
	var all []core.ChannelId
	for _, id := range ids {
		for _, ch := range a.nodes[id].channelSet() {
			if seen[ch] {
				return nil, core.NewChannelConflictError(ch)
			}
			seen[ch] = true
			all = append(all, ch)
		}
	}
	slices.Sort(all)
	return all, nil
}

func compositeKey(kind Kind, ids []NodeId) string {
	var b strings.Builder
	b.WriteByte(byte(kind))
	for _, id := range ids {
		b.WriteByte('|')
		b.WriteString(strconv.Itoa(int(id)))
	}
	return b.String()
}
