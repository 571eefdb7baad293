package hwstate

import (
	"errors"

	"github.com/kestrelsys/pulsegraph/core"
)

// Opcode space for the example machines in this package: 0x00xx
// timing/sync, 0x01xx TTL, 0x02xx RWG, 0x03xx opaque black-box calls.
const (
	OpIdentity   = 0x0000
	OpSyncMaster = 0x0001
	OpSyncSlave  = 0x0002

	OpTTLInit = 0x0100
	OpTTLOn   = 0x0101
	OpTTLOff  = 0x0102

	OpRWGInit        = 0x0200
	OpRWGSetCarrier  = 0x0201
	OpRWGLoadCoeffs  = 0x0202
	OpRWGUpdateParam = 0x0203
	OpRWGRFSwitch    = 0x0204

	OpOpaqueFunc = 0x0300
)

// IsTTLOp reports whether opcode falls in the TTL range.
func IsTTLOp(opcode uint16) bool { return opcode >= 0x0100 && opcode <= 0x01FF }

// IsRWGOp reports whether opcode falls in the RWG range.
func IsRWGOp(opcode uint16) bool { return opcode >= 0x0200 && opcode <= 0x02FF }

// IsTimingOp reports whether opcode falls in the timing/sync range.
func IsTimingOp(opcode uint16) bool { return opcode <= 0x00FF }

// TTLState is a two-state model of a single TTL line.
type TTLState int

const (
	TTLOff TTLState = iota
	TTLOn
)

func (s TTLState) String() string {
	if s == TTLOn {
		return "ttl_on"
	}
	return "ttl_off"
}

var errTTLAlreadyOn = errors.New("TTL line already on")

// NewTTLMachine returns a Machine modelling a single TTL line: TTL_INIT
// and TTL_OFF always succeed and leave the line off; TTL_ON rejects a
// double-on (state already TTLOn) as a physics violation and otherwise
// turns the line on, whatever the prior state; every other opcode,
// including IDENTITY, passes the state through unchanged.
func NewTTLMachine() Machine {
	return TableMachine{
		Table: map[uint16]TransitionFn{
			OpTTLInit: func(_ core.ChannelId, _ State, _ uint16, _ []byte) (State, error) {
				return TTLOff, nil
			},
			OpTTLOff: func(_ core.ChannelId, _ State, _ uint16, _ []byte) (State, error) {
				return TTLOff, nil
			},
			OpTTLOn: func(ch core.ChannelId, state State, opcode uint16, _ []byte) (State, error) {
				if s, ok := state.(TTLState); ok && s == TTLOn {
					return nil, core.NewPhysicsViolationError(ch, opcode, state, errTTLAlreadyOn)
				}
				return TTLOn, nil
			},
		},
	}
}
