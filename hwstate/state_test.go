package hwstate

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/kestrelsys/pulsegraph/core"
)

func TestTrivialMachinePassesStateThrough(t *testing.T) {
	t.Parallel()
	m := TrivialMachine{}
	ch := core.EncodeChannelID(0, 0)
	state, err := m.Next(ch, "anything", 0x1234, nil)
	require.NoError(t, err)
	require.Equal(t, "anything", state)
}

func TestTTLMachineRejectsDoubleOn(t *testing.T) {
	t.Parallel()
	m := NewTTLMachine()
	ch := core.EncodeChannelID(0, 0)

	state, err := m.Next(ch, TTLOff, OpTTLOn, nil)
	require.NoError(t, err)
	require.Equal(t, TTLOn, state)

	_, err = m.Next(ch, state, OpTTLOn, nil)
	require.Error(t, err)
	require.True(t, errors.Is(err, core.ErrPhysicsViolation))

	var e *core.Error
	require.True(t, errors.As(err, &e))
	require.NotNil(t, e.Channel)
	require.Equal(t, ch, *e.Channel)
	require.Equal(t, TTLOn, e.Before)
}

func TestTTLMachineOffAlwaysSucceeds(t *testing.T) {
	t.Parallel()
	m := NewTTLMachine()
	ch := core.EncodeChannelID(0, 0)

	state, err := m.Next(ch, TTLOn, OpTTLOff, nil)
	require.NoError(t, err)
	require.Equal(t, TTLOff, state)
}

func TestOpcodeClassification(t *testing.T) {
	t.Parallel()
	require.True(t, IsTTLOp(OpTTLOn))
	require.False(t, IsTTLOp(OpRWGInit))
	require.True(t, IsRWGOp(OpRWGSetCarrier))
	require.True(t, IsTimingOp(OpIdentity))
	require.False(t, IsTimingOp(OpTTLInit))
}
