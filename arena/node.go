// Package arena implements the id-allocating, content-addressed node
// store every other package in this module builds on: morphisms replay
// into it, the compiler traverses it, and the incremental cache keys off
// the ids it assigns.
package arena

import "github.com/kestrelsys/pulsegraph/core"

// NodeId is a stable, monotone index into an Arena's node table. Ids are
// not reused until Arena.Clear, which invalidates every id issued before
// the call; numbering restarts at 0 after it.
type NodeId int

// Kind distinguishes the three node variants an Arena can hold.
type Kind int

const (
	KindAtomic Kind = iota
	KindSequence
	KindParallel
)

// node is the arena-resident representation of one graph vertex. channel
// and opcode/payload are populated only for KindAtomic; children and
// channels only for the two composite kinds. Sequence also keeps channel
// set to its single channel, since every Sequence child shares one.
type node struct {
	kind     Kind
	channel  core.ChannelId
	duration uint64
	opcode   uint16
	payload  []byte
	children []NodeId
	channels []core.ChannelId
}

// primaryChannel returns the single channel a node addresses, for Atomic
// and Sequence nodes. Parallel nodes span more than one channel and have
// no single primary channel.
func (n *node) primaryChannel() (core.ChannelId, bool) {
	switch n.kind {
	case KindAtomic, KindSequence:
		return n.channel, true
	default:
		return 0, false
	}
}

// channelSet returns every channel a node touches.
func (n *node) channelSet() []core.ChannelId {
	switch n.kind {
	case KindAtomic, KindSequence:
		return []core.ChannelId{n.channel}
	default:
		return n.channels
	}
}

// NodeView is a read-only snapshot of one arena node, handed to the
// replay and compile passes so they can inspect structure without
// reaching into Arena's unexported fields.
type NodeView struct {
	Kind     Kind
	Channel  core.ChannelId
	Duration uint64
	Opcode   uint16
	Payload  []byte
	Children []NodeId
	Channels []core.ChannelId
}
