// Package hwstate provides the HardwareStateMachine collaborator the
// replayer consults to validate and advance per-channel state, plus a
// worked example machine for TTL-style hardware.
package hwstate

import "github.com/kestrelsys/pulsegraph/core"

// State is opaque to the replayer; only a Machine interprets it.
type State any

// TransitionFn advances state in response to one opcode/payload step,
// rejecting the step with an error if it is not legal from state.
type TransitionFn func(ch core.ChannelId, state State, opcode uint16, payload []byte) (State, error)

// Machine is the hardware-state-machine capability the replayer consults
// once per step. The core never inspects state; only a Machine interprets
// it.
type Machine interface {
	Next(ch core.ChannelId, state State, opcode uint16, payload []byte) (State, error)
}

// TrivialMachine accepts every transition unchanged. It is the default
// machine for testing and for opcodes with no hardware semantics.
type TrivialMachine struct{}

// Next implements Machine by returning state unchanged.
func (TrivialMachine) Next(_ core.ChannelId, state State, _ uint16, _ []byte) (State, error) {
	return state, nil
}

// TableMachine dispatches to a per-opcode TransitionFn, held in a map
// rather than a fixed array since the 16-bit opcode space is sparse.
// Opcodes with no registered entry fall back to Default, or to
// accept-everything if Default is nil.
type TableMachine struct {
	Table   map[uint16]TransitionFn
	Default TransitionFn
}

// Next implements Machine by dispatching on opcode.
func (m TableMachine) Next(ch core.ChannelId, state State, opcode uint16, payload []byte) (State, error) {
	if fn, ok := m.Table[opcode]; ok {
		return fn(ch, state, opcode, payload)
	}
	if m.Default != nil {
		return m.Default(ch, state, opcode, payload)
	}
	return state, nil
}
