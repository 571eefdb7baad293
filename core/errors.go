package core

import (
	"errors"
	"fmt"
)

// Sentinel errors identifying each clause of the taxonomy. Test kind with
// errors.Is(err, core.ErrAlignment) and similar; Error.Unwrap exposes
// these so errors.Is works through the wrapping *Error value too.
var (
	ErrChannelConflict   = errors.New("channel sets intersect")
	ErrAlignment         = errors.New("path exceeds target duration")
	ErrMissingStartState = errors.New("no start state for channel")
	ErrPhysicsViolation  = errors.New("hardware rejected state transition")
	ErrComposition       = errors.New("invalid composition")
	ErrOverflow          = errors.New("cumulative time overflow")
	ErrInternal          = errors.New("graph invariant violated")
)

// Error carries the diagnostic context a composition or replay failure
// needs: the offending channel, opcode, and pre-transition state, when
// applicable to that kind.
type Error struct {
	Kind    error
	Channel *ChannelId
	Opcode  *uint16
	Before  any
	Detail  string
}

func newError(kind error, detail string) *Error { return &Error{Kind: kind, Detail: detail} }

// OnChannel attaches the offending channel and returns e for chaining.
func (e *Error) OnChannel(ch ChannelId) *Error { e.Channel = &ch; return e }

// WithOpcode attaches the offending opcode and returns e for chaining.
func (e *Error) WithOpcode(op uint16) *Error { e.Opcode = &op; return e }

// WithBefore attaches the pre-transition state and returns e for chaining.
func (e *Error) WithBefore(before any) *Error { e.Before = before; return e }

func (e *Error) Error() string {
	msg := e.Kind.Error()
	if e.Detail != "" {
		msg = fmt.Sprintf("%s: %s", msg, e.Detail)
	}
	if e.Channel != nil {
		msg = fmt.Sprintf("%s (channel=%s)", msg, *e.Channel)
	}
	if e.Opcode != nil {
		msg = fmt.Sprintf("%s (opcode=0x%04x)", msg, *e.Opcode)
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Kind }

// NewChannelConflictError reports that ch appears in both operands of a
// parallel product.
func NewChannelConflictError(ch ChannelId) *Error {
	return newError(ErrChannelConflict, "").OnChannel(ch)
}

// NewAlignmentError reports that a path already exceeds the duration it
// is being aligned to.
func NewAlignmentError(ch ChannelId, current, target uint64) *Error {
	return newError(ErrAlignment, fmt.Sprintf("current duration %d exceeds target %d", current, target)).OnChannel(ch)
}

// NewMissingStartStateError reports that the replayer found no start
// state entry for ch.
func NewMissingStartStateError(ch ChannelId) *Error {
	return newError(ErrMissingStartState, "").OnChannel(ch)
}

// NewPhysicsViolationError reports that a HardwareStateMachine rejected a
// transition; before is the state immediately prior to the attempt.
func NewPhysicsViolationError(ch ChannelId, opcode uint16, before any, cause error) *Error {
	detail := ""
	if cause != nil {
		detail = cause.Error()
	}
	return newError(ErrPhysicsViolation, detail).OnChannel(ch).WithOpcode(opcode).WithBefore(before)
}

// NewCompositionError reports a precondition violation in Arena.
// ComposeSequence or ParallelComposeMany.
func NewCompositionError(detail string) *Error {
	return newError(ErrComposition, detail)
}

// NewOverflowError reports that a cumulative time computation would wrap
// around u64.
func NewOverflowError(detail string) *Error {
	return newError(ErrOverflow, detail)
}

// NewInternalError reports a graph invariant violation that should be
// unreachable under the public API.
func NewInternalError(detail string) *Error {
	return newError(ErrInternal, detail)
}
