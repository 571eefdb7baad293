package core

import "fmt"

// AtomicStep is a single timed opcode/payload step on one channel. Opcode
// is opaque to everything in this package except Align and IdentityPath,
// which use the caller's designated IDENTITY opcode as structural filler.
type AtomicStep struct {
	Duration uint64
	Opcode   uint16
	Payload  []byte
}

// AddDuration adds a and b, returning an Overflow error (tagged with ch)
// on uint64 wraparound rather than silently wrapping.
func AddDuration(ch ChannelId, a, b uint64) (uint64, error) {
	sum := a + b
	if sum < a {
		return 0, NewOverflowError(fmt.Sprintf("%d + %d overflows u64", a, b)).OnChannel(ch)
	}
	return sum, nil
}
