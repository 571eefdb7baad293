// Package compiler traverses a replayed arena graph in post-order,
// assigns absolute times, and emits a sorted event stream, optionally
// consulting an incremental cache keyed by NodeId.
package compiler

import (
	"github.com/kestrelsys/pulsegraph/arena"
	"github.com/kestrelsys/pulsegraph/core"
	"golang.org/x/exp/slices"
)

// Event is one (time, channel, opcode, payload) tuple in the compiled
// output: the stable external contract downstream assembly consumes.
type Event struct {
	Time    uint64
	Channel core.ChannelId
	Opcode  uint16
	Payload []byte
}

// Options configures a Compiler.
type Options struct {
	// EnableIncrementalCache turns on by-NodeId memoisation of compiled
	// event segments.
	EnableIncrementalCache bool
	// CacheCapacity bounds the incremental cache's entry count when
	// enabled. Non-positive falls back to an always-miss cache.
	CacheCapacity int
}

// DefaultOptions returns the Compiler's default configuration: no cache.
func DefaultOptions() Options {
	return Options{CacheCapacity: 4096}
}

// Compiler performs the post-order traversal described for the compile
// pass: it assigns absolute times to every Atomic node reachable from a
// root and emits a sorted event stream, optionally consulting an
// IncrementalCache.
type Compiler struct {
	Arena   *arena.Arena
	Options Options
	cache   *IncrementalCache
}

// New returns a Compiler over a using opts. If opts.EnableIncrementalCache
// is set, a cache is constructed and wired into both the Compiler and the
// Arena, so Arena.Clear invalidates it too.
func New(a *arena.Arena, opts Options) (*Compiler, error) {
	c := &Compiler{Arena: a, Options: opts}
	if opts.EnableIncrementalCache {
		cache, err := NewIncrementalCache(opts.CacheCapacity)
		if err != nil {
			return nil, err
		}
		c.cache = cache
		a.SetCache(cache)
	}
	return c, nil
}

// ClearCache discards every memoised entry without affecting the arena's
// nodes.
func (c *Compiler) ClearCache() {
	if c.cache != nil {
		c.cache.Purge()
	}
}

// Compile traverses root in post-order, assigns absolute times starting
// at 0, and returns the events sorted by (time, channel) with ties broken
// by emission order.
func (c *Compiler) Compile(root arena.NodeId) ([]Event, error) {
	relative, err := c.relativeEvents(root)
	if err != nil {
		return nil, err
	}
	out := make([]Event, len(relative))
	copy(out, relative)
	sortEvents(out)
	return out, nil
}

// CompileByBoard compiles root and groups the result by board index
// (Channel.Board()); within each board's list the (time, channel)
// ordering from Compile still holds.
func (c *Compiler) CompileByBoard(root arena.NodeId) (map[uint16][]Event, error) {
	events, err := c.Compile(root)
	if err != nil {
		return nil, err
	}
	byBoard := make(map[uint16][]Event)
	for _, e := range events {
		byBoard[e.Channel.Board()] = append(byBoard[e.Channel.Board()], e)
	}
	return byBoard, nil
}

// relativeEvents computes, for every node reachable from root, the event
// list relative to that node's own start (time 0), using a non-recursive
// post-order traversal so arbitrarily deep chains don't grow the Go call
// stack. The incremental cache, when attached, is consulted per node
// before computing it and populated with whatever gets computed; a local
// memo table always covers one call regardless of cache state, so a
// structurally shared subgraph is never recomputed twice within the same
// Compile.
func (c *Compiler) relativeEvents(root arena.NodeId) ([]Event, error) {
	memo := map[arena.NodeId][]Event{}
	for _, id := range postOrder(c.Arena, root) {
		if _, ok := memo[id]; ok {
			continue
		}
		if c.cache != nil {
			if cached, ok := c.cache.Get(id); ok {
				memo[id] = cached
				continue
			}
		}
		events, err := c.combine(id, memo)
		if err != nil {
			return nil, err
		}
		memo[id] = events
		if c.cache != nil {
			c.cache.Put(id, events)
		}
	}
	return memo[root], nil
}

// postOrder returns every node reachable from root, children before
// parents, each visited exactly once, via an explicit work stack rather
// than recursion.
func postOrder(a *arena.Arena, root arena.NodeId) []arena.NodeId {
	type frame struct {
		id        arena.NodeId
		processed bool
	}
	var order []arena.NodeId
	seen := map[arena.NodeId]bool{}
	stack := []frame{{id: root}}

	for len(stack) > 0 {
		top := stack[len(stack)-1]
		if seen[top.id] {
			stack = stack[:len(stack)-1]
			continue
		}
		if top.processed {
			order = append(order, top.id)
			seen[top.id] = true
			stack = stack[:len(stack)-1]
			continue
		}
		stack[len(stack)-1].processed = true
		view := a.Node(top.id)
		for i := len(view.Children) - 1; i >= 0; i-- {
			if !seen[view.Children[i]] {
				stack = append(stack, frame{id: view.Children[i]})
			}
		}
	}
	return order
}

// combine produces id's relative event list from its already-memoised
// children.
func (c *Compiler) combine(id arena.NodeId, memo map[arena.NodeId][]Event) ([]Event, error) {
	view := c.Arena.Node(id)
	switch view.Kind {
	case arena.KindAtomic:
		return []Event{{Time: 0, Channel: view.Channel, Opcode: view.Opcode, Payload: view.Payload}}, nil

	case arena.KindSequence:
		var out []Event
		var offset uint64
		for _, child := range view.Children {
			for _, e := range memo[child] {
				t, err := core.AddDuration(e.Channel, e.Time, offset)
				if err != nil {
					return nil, err
				}
				out = append(out, Event{Time: t, Channel: e.Channel, Opcode: e.Opcode, Payload: e.Payload})
			}
			next, err := core.AddDuration(view.Channel, offset, c.Arena.Duration(child))
			if err != nil {
				return nil, err
			}
			offset = next
		}
		return out, nil

	case arena.KindParallel:
		var out []Event
		for _, child := range view.Children {
			out = append(out, memo[child]...)
		}
		return out, nil

	default:
		return nil, core.NewInternalError("unknown node kind during compile")
	}
}

// sortEvents sorts in place by (time, channel), breaking ties by the
// index events already appear in (emission order), using a stable sort
// so that tiebreak is preserved without needing a comparator on payload
// bytes.
func sortEvents(events []Event) {
	type indexed struct {
		event Event
		seq   int
	}
	tagged := make([]indexed, len(events))
	for i, e := range events {
		tagged[i] = indexed{event: e, seq: i}
	}
	slices.SortStableFunc(tagged, func(a, b indexed) int {
		switch {
		case a.event.Time != b.event.Time:
			if a.event.Time < b.event.Time {
				return -1
			}
			return 1
		case a.event.Channel != b.event.Channel:
			if a.event.Channel < b.event.Channel {
				return -1
			}
			return 1
		default:
			return a.seq - b.seq
		}
	})
	for i, t := range tagged {
		events[i] = t.event
	}
}
