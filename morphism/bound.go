// Package morphism implements the monoidal algebra over channel-scoped
// operation paths: BoundMorphism, the pre-replay compositional vehicle,
// and ClosedMorphism, its replayed, arena-resident result.
package morphism

import (
	"sort"

	"github.com/kestrelsys/pulsegraph/core"
)

// IdentityOpcode is the opcode rectangularization uses for filler steps,
// matching the 0x0000 convention callers are expected to reserve for it.
const IdentityOpcode = 0x0000

// BoundMorphism maps each channel it touches to that channel's
// MorphismPath. It is the compositional vehicle before replay: Parallel
// and Then both return new, fully rectangular BoundMorphisms without
// touching an Arena.
type BoundMorphism struct {
	paths    map[core.ChannelId]core.MorphismPath
	duration uint64
}

// FromPath returns a BoundMorphism with a single channel's path.
func FromPath(p core.MorphismPath) BoundMorphism {
	return BoundMorphism{paths: map[core.ChannelId]core.MorphismPath{p.Channel: p}, duration: p.Duration}
}

// FromPaths returns a BoundMorphism built directly from a channel → path
// map. Callers who need to keep using paths afterward should pass a copy;
// BoundMorphism does not clone on construction.
func FromPaths(paths map[core.ChannelId]core.MorphismPath) BoundMorphism {
	var duration uint64
	for _, p := range paths {
		if p.Duration > duration {
			duration = p.Duration
		}
	}
	return BoundMorphism{paths: paths, duration: duration}
}

// Duration returns max(path.Duration) across every channel.
func (m BoundMorphism) Duration() uint64 { return m.duration }

// Channels returns the BoundMorphism's channel set, sorted ascending.
func (m BoundMorphism) Channels() []core.ChannelId {
	chs := make([]core.ChannelId, 0, len(m.paths))
	for ch := range m.paths {
		chs = append(chs, ch)
	}
	sort.Slice(chs, func(i, j int) bool { return chs[i] < chs[j] })
	return chs
}

// Len returns the total step count across every channel's path.
func (m BoundMorphism) Len() int {
	n := 0
	for _, p := range m.paths {
		n += len(p.Steps)
	}
	return n
}

// Path returns the path recorded for ch and whether one exists.
func (m BoundMorphism) Path(ch core.ChannelId) (core.MorphismPath, bool) {
	p, ok := m.paths[ch]
	return p, ok
}

// Append adds one step to ch's path, creating an empty one first if this
// BoundMorphism does not yet touch ch.
func (m *BoundMorphism) Append(ch core.ChannelId, duration uint64, opcode uint16, payload []byte) error {
	if m.paths == nil {
		m.paths = map[core.ChannelId]core.MorphismPath{}
	}
	p, ok := m.paths[ch]
	if !ok {
		p = core.NewPath(ch)
	}
	if err := p.Append(duration, opcode, payload); err != nil {
		return err
	}
	m.paths[ch] = p
	if p.Duration > m.duration {
		m.duration = p.Duration
	}
	return nil
}

// Parallel returns the tensor product m | other: fails with
// ChannelConflict if the two channel sets intersect, otherwise aligns
// every channel's path to max(m.Duration(), other.Duration()).
func (m BoundMorphism) Parallel(other BoundMorphism) (BoundMorphism, error) {
	if len(m.paths) == 0 {
		return other.clone(), nil
	}
	if len(other.paths) == 0 {
		return m.clone(), nil
	}
	for ch := range m.paths {
		if _, dup := other.paths[ch]; dup {
			return BoundMorphism{}, core.NewChannelConflictError(ch)
		}
	}

	target := m.duration
	if other.duration > target {
		target = other.duration
	}

	result := make(map[core.ChannelId]core.MorphismPath, len(m.paths)+len(other.paths))
	if err := alignInto(result, m.paths, target); err != nil {
		return BoundMorphism{}, err
	}
	if err := alignInto(result, other.paths, target); err != nil {
		return BoundMorphism{}, err
	}
	return BoundMorphism{paths: result, duration: target}, nil
}

func alignInto(dst, src map[core.ChannelId]core.MorphismPath, target uint64) error {
	for ch, p := range src {
		clone := p.Clone()
		if err := clone.Align(target, IdentityOpcode); err != nil {
			return err
		}
		dst[ch] = clone
	}
	return nil
}

// Then returns the serial product m ⊗ other ("m then other"): channels
// present on both sides are concatenated; channels present on only one
// side are padded on the other with an identity filler spanning that
// side's duration, so the result is rectangular across m's and other's
// combined channel set.
func (m BoundMorphism) Then(other BoundMorphism) (BoundMorphism, error) {
	if len(m.paths) == 0 {
		return other.clone(), nil
	}
	if len(other.paths) == 0 {
		return m.clone(), nil
	}

	dA, dB := m.duration, other.duration
	total, err := sumDurations(dA, dB)
	if err != nil {
		return BoundMorphism{}, err
	}

	result := make(map[core.ChannelId]core.MorphismPath, len(m.paths)+len(other.paths))

	for ch, pa := range m.paths {
		clone := pa.Clone()
		if pb, ok := other.paths[ch]; ok {
			if err := clone.Align(dA, IdentityOpcode); err != nil {
				return BoundMorphism{}, err
			}
			if err := clone.Extend(pb); err != nil {
				return BoundMorphism{}, err
			}
		} else if err := clone.Align(total, IdentityOpcode); err != nil {
			return BoundMorphism{}, err
		}
		result[ch] = clone
	}

	for ch, pb := range other.paths {
		if _, ok := m.paths[ch]; ok {
			continue
		}
		lead := core.IdentityPath(ch, dA, IdentityOpcode)
		if err := lead.Extend(pb); err != nil {
			return BoundMorphism{}, err
		}
		result[ch] = lead
	}

	return BoundMorphism{paths: result, duration: total}, nil
}

func sumDurations(a, b uint64) (uint64, error) {
	sum := a + b
	if sum < a {
		return 0, core.NewOverflowError("serial composition duration overflows u64")
	}
	return sum, nil
}

func (m BoundMorphism) clone() BoundMorphism {
	paths := make(map[core.ChannelId]core.MorphismPath, len(m.paths))
	for ch, p := range m.paths {
		paths[ch] = p.Clone()
	}
	return BoundMorphism{paths: paths, duration: m.duration}
}
