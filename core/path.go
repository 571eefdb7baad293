package core

import "fmt"

// MorphismPath is the ordered, per-channel sequence of atomic steps that
// make up one lane of a BoundMorphism. It is a value type: Clone produces
// an independent copy sharing no backing array with the receiver; Append
// and Extend mutate the receiver in place, as documented on each.
type MorphismPath struct {
	Channel  ChannelId
	Steps    []AtomicStep
	Duration uint64
}

// NewPath returns an empty path for channel.
func NewPath(channel ChannelId) MorphismPath {
	return MorphismPath{Channel: channel}
}

// IdentityPath returns a single-step path consisting of one identity
// filler of the given duration.
func IdentityPath(channel ChannelId, duration uint64, identityOpcode uint16) MorphismPath {
	p := NewPath(channel)
	// Append cannot fail here: a fresh path's duration is always 0, and
	// 0 plus any uint64 duration cannot overflow.
	_ = p.Append(duration, identityOpcode, nil)
	return p
}

// Append adds one step to the end of the path. Mutates the receiver;
// amortised O(1).
func (p *MorphismPath) Append(duration uint64, opcode uint16, payload []byte) error {
	sum, err := AddDuration(p.Channel, p.Duration, duration)
	if err != nil {
		return err
	}
	p.Steps = append(p.Steps, AtomicStep{Duration: duration, Opcode: opcode, Payload: payload})
	p.Duration = sum
	return nil
}

// Clone deep-copies the step list so the result shares no backing array
// with p.
func (p MorphismPath) Clone() MorphismPath {
	steps := make([]AtomicStep, len(p.Steps))
	copy(steps, p.Steps)
	return MorphismPath{Channel: p.Channel, Steps: steps, Duration: p.Duration}
}

// Extend appends other's steps to p. other must address the same channel
// as p. Mutates the receiver.
func (p *MorphismPath) Extend(other MorphismPath) error {
	if other.Channel != p.Channel {
		return NewInternalError(fmt.Sprintf("cannot extend channel %s with path for channel %s", p.Channel, other.Channel))
	}
	sum, err := AddDuration(p.Channel, p.Duration, other.Duration)
	if err != nil {
		return err
	}
	p.Steps = append(p.Steps, other.Steps...)
	p.Duration = sum
	return nil
}

// Align pads p with one identity step covering the deficit so its
// duration equals target. No-op if already equal; an Alignment error if p
// is already longer than target.
func (p *MorphismPath) Align(target uint64, identityOpcode uint16) error {
	switch {
	case p.Duration == target:
		return nil
	case p.Duration > target:
		return NewAlignmentError(p.Channel, p.Duration, target)
	default:
		return p.Append(target-p.Duration, identityOpcode, nil)
	}
}
