package core

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMorphismPathAppendAccumulatesDuration(t *testing.T) {
	t.Parallel()
	p := NewPath(EncodeChannelID(0, 0))
	require.NoError(t, p.Append(10, 1, []byte("a")))
	require.NoError(t, p.Append(5, 2, []byte("b")))
	require.Equal(t, uint64(15), p.Duration)
	require.Len(t, p.Steps, 2)
}

func TestMorphismPathCloneIsIndependent(t *testing.T) {
	t.Parallel()
	ch := EncodeChannelID(1, 2)
	p := NewPath(ch)
	require.NoError(t, p.Append(10, 1, nil))

	clone := p.Clone()
	require.NoError(t, clone.Append(5, 2, nil))

	require.Equal(t, uint64(10), p.Duration)
	require.Equal(t, uint64(15), clone.Duration)
	require.Len(t, p.Steps, 1)
}

func TestMorphismPathExtendRequiresSameChannel(t *testing.T) {
	t.Parallel()
	a := NewPath(EncodeChannelID(0, 0))
	b := NewPath(EncodeChannelID(0, 1))
	err := a.Extend(b)
	require.Error(t, err)
	require.True(t, errors.Is(err, ErrInternal))
}

func TestMorphismPathAlign(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name     string
		duration uint64
		target   uint64
		wantErr  error
		wantDur  uint64
	}{
		{name: "already equal is no-op", duration: 10, target: 10, wantDur: 10},
		{name: "pads deficit with identity", duration: 10, target: 30, wantDur: 30},
		{name: "longer than target is an alignment error", duration: 30, target: 10, wantErr: ErrAlignment},
		{name: "zero target on empty path is a no-op", duration: 0, target: 0, wantDur: 0},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			ch := EncodeChannelID(0, 0)
			p := NewPath(ch)
			if tt.duration > 0 {
				require.NoError(t, p.Append(tt.duration, 7, nil))
			}
			err := p.Align(tt.target, 0x0000)
			if tt.wantErr != nil {
				require.Error(t, err)
				require.True(t, errors.Is(err, tt.wantErr))
				return
			}
			require.NoError(t, err)
			require.Equal(t, tt.wantDur, p.Duration)
		})
	}
}

func TestAddDurationOverflow(t *testing.T) {
	t.Parallel()
	ch := EncodeChannelID(0, 0)
	_, err := AddDuration(ch, ^uint64(0), 1)
	require.Error(t, err)
	require.True(t, errors.Is(err, ErrOverflow))
	var e *Error
	require.True(t, errors.As(err, &e))
	require.NotNil(t, e.Channel)
	require.Equal(t, ch, *e.Channel)
}

func TestChannelIdEncoding(t *testing.T) {
	t.Parallel()
	id := EncodeChannelID(3, 7)
	require.Equal(t, uint16(3), id.Board())
	require.Equal(t, uint16(7), id.Local())

	parsed, err := ParseBoardChannel("RWG_3", 7)
	require.NoError(t, err)
	require.Equal(t, id, parsed)

	_, err = ParseBoardChannel("RWG", 0)
	require.Error(t, err)
	require.True(t, errors.Is(err, ErrInternal))
}
