package arena

import (
	"bytes"
	"encoding/binary"
	"encoding/gob"
	"fmt"
	"io"

	"github.com/kestrelsys/pulsegraph/core"
)

const (
	magic      = uint32(0x50554C53) // "PULS"
	fileVersion = uint16(1)
)

// gobNode mirrors node with exported fields, since gob cannot encode
// unexported struct fields directly.
type gobNode struct {
	Kind     Kind
	Channel  core.ChannelId
	Duration uint64
	Opcode   uint16
	Payload  []byte
	Children []NodeId
	Channels []core.ChannelId
}

// SerializeGob encodes the full arena (every node, in id order) using
// encoding/gob. This is the documented fallback path for callers who
// don't need the compact fixed layout Serialize produces.
func (a *Arena) SerializeGob() ([]byte, error) {
	var buf bytes.Buffer
	nodes := make([]gobNode, len(a.nodes))
	for i, n := range a.nodes {
		nodes[i] = gobNode{Kind: n.kind, Channel: n.channel, Duration: n.duration, Opcode: n.opcode, Payload: n.payload, Children: n.children, Channels: n.channels}
	}
	if err := gob.NewEncoder(&buf).Encode(nodes); err != nil {
		return nil, fmt.Errorf("arena: gob encode: %w", err)
	}
	return buf.Bytes(), nil
}

// DeserializeGob rebuilds an Arena from bytes produced by SerializeGob.
// Intern tables are rebuilt fresh; subsequent Atomic/ComposeSequence
// calls continue interning against the restored node set.
func DeserializeGob(data []byte) (*Arena, error) {
	var nodes []gobNode
	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(&nodes); err != nil {
		return nil, fmt.Errorf("arena: gob decode: %w", err)
	}
	return rebuild(nodes), nil
}

// Serialize encodes the arena in a compact, fixed-layout binary format: a
// magic number and version, a node count, then one variable-length record
// per node (kind tag, channel, duration, opcode, payload length and
// bytes, child count and ids, channel-set count and ids).
func (a *Arena) Serialize() ([]byte, error) {
	var buf bytes.Buffer
	if err := binary.Write(&buf, binary.LittleEndian, magic); err != nil {
		return nil, err
	}
	if err := binary.Write(&buf, binary.LittleEndian, fileVersion); err != nil {
		return nil, err
	}
	if err := binary.Write(&buf, binary.LittleEndian, uint32(len(a.nodes))); err != nil {
		return nil, err
	}
	for _, n := range a.nodes {
		if err := writeNode(&buf, n); err != nil {
			return nil, fmt.Errorf("arena: serialize node: %w", err)
		}
	}
	return buf.Bytes(), nil
}

func writeNode(buf *bytes.Buffer, n node) error {
	if err := binary.Write(buf, binary.LittleEndian, uint8(n.kind)); err != nil {
		return err
	}
	if err := binary.Write(buf, binary.LittleEndian, n.channel); err != nil {
		return err
	}
	if err := binary.Write(buf, binary.LittleEndian, n.duration); err != nil {
		return err
	}
	if err := binary.Write(buf, binary.LittleEndian, n.opcode); err != nil {
		return err
	}
	if err := binary.Write(buf, binary.LittleEndian, uint32(len(n.payload))); err != nil {
		return err
	}
	buf.Write(n.payload)

	if err := binary.Write(buf, binary.LittleEndian, uint32(len(n.children))); err != nil {
		return err
	}
	for _, c := range n.children {
		if err := binary.Write(buf, binary.LittleEndian, uint32(c)); err != nil {
			return err
		}
	}

	if err := binary.Write(buf, binary.LittleEndian, uint32(len(n.channels))); err != nil {
		return err
	}
	for _, c := range n.channels {
		if err := binary.Write(buf, binary.LittleEndian, c); err != nil {
			return err
		}
	}
	return nil
}

// Deserialize rebuilds an Arena from bytes produced by Serialize.
func Deserialize(data []byte) (*Arena, error) {
	r := bytes.NewReader(data)

	var gotMagic uint32
	if err := binary.Read(r, binary.LittleEndian, &gotMagic); err != nil {
		return nil, fmt.Errorf("arena: read magic: %w", err)
	}
	if gotMagic != magic {
		return nil, fmt.Errorf("arena: bad magic %#x", gotMagic)
	}

	var gotVersion uint16
	if err := binary.Read(r, binary.LittleEndian, &gotVersion); err != nil {
		return nil, fmt.Errorf("arena: read version: %w", err)
	}
	if gotVersion != fileVersion {
		return nil, fmt.Errorf("arena: unsupported version %d", gotVersion)
	}

	var count uint32
	if err := binary.Read(r, binary.LittleEndian, &count); err != nil {
		return nil, fmt.Errorf("arena: read node count: %w", err)
	}

	nodes := make([]gobNode, count)
	for i := range nodes {
		n, err := readNode(r)
		if err != nil {
			return nil, fmt.Errorf("arena: deserialize node %d: %w", i, err)
		}
		nodes[i] = n
	}
	return rebuild(nodes), nil
}

func readNode(r *bytes.Reader) (gobNode, error) {
	var n gobNode

	var kindTag uint8
	if err := binary.Read(r, binary.LittleEndian, &kindTag); err != nil {
		return n, err
	}
	n.Kind = Kind(kindTag)

	if err := binary.Read(r, binary.LittleEndian, &n.Channel); err != nil {
		return n, err
	}
	if err := binary.Read(r, binary.LittleEndian, &n.Duration); err != nil {
		return n, err
	}
	if err := binary.Read(r, binary.LittleEndian, &n.Opcode); err != nil {
		return n, err
	}

	var payloadLen uint32
	if err := binary.Read(r, binary.LittleEndian, &payloadLen); err != nil {
		return n, err
	}
	if payloadLen > 0 {
		n.Payload = make([]byte, payloadLen)
		if _, err := io.ReadFull(r, n.Payload); err != nil {
			return n, err
		}
	}

	var childCount uint32
	if err := binary.Read(r, binary.LittleEndian, &childCount); err != nil {
		return n, err
	}
	n.Children = make([]NodeId, childCount)
	for i := range n.Children {
		var c uint32
		if err := binary.Read(r, binary.LittleEndian, &c); err != nil {
			return n, err
		}
		n.Children[i] = NodeId(c)
	}

	var chanCount uint32
	if err := binary.Read(r, binary.LittleEndian, &chanCount); err != nil {
		return n, err
	}
	n.Channels = make([]core.ChannelId, chanCount)
	for i := range n.Channels {
		if err := binary.Read(r, binary.LittleEndian, &n.Channels[i]); err != nil {
			return n, err
		}
	}

	return n, nil
}

func rebuild(nodes []gobNode) *Arena {
	a := WithCapacity(len(nodes))
	for _, n := range nodes {
		id := NodeId(len(a.nodes))
		a.nodes = append(a.nodes, node{
			kind: n.Kind, channel: n.Channel, duration: n.Duration, opcode: n.Opcode,
			payload: n.Payload, children: n.Children, channels: n.Channels,
		})
		switch n.Kind {
		case KindAtomic:
			a.atomics[atomicKey{channel: n.Channel, duration: n.Duration, opcode: n.Opcode, payload: string(n.Payload)}] = id
		case KindSequence:
			a.seqs[compositeKey(KindSequence, n.Children)] = id
		case KindParallel:
			a.pars[compositeKey(KindParallel, n.Children)] = id
		}
	}
	return a
}
