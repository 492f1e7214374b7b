package codec

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHandshakeRoundTrip(t *testing.T) {
	data := MarshalHandshake(42, []string{"IFoo", "IBar"})

	actorID, signatures, err := UnmarshalHandshake(data)
	require.NoError(t, err)
	assert.Equal(t, uint32(42), actorID)
	assert.Equal(t, []string{"IFoo", "IBar"}, signatures)
}

func TestHandshakeRoundTripNoSignatures(t *testing.T) {
	data := MarshalHandshake(7, nil)

	actorID, signatures, err := UnmarshalHandshake(data)
	require.NoError(t, err)
	assert.Equal(t, uint32(7), actorID)
	assert.Empty(t, signatures)
}

func TestUnmarshalHandshakeTruncatedData(t *testing.T) {
	_, _, err := UnmarshalHandshake([]byte{1, 2})
	assert.Error(t, err)
}

func TestDispatchRoundTrip(t *testing.T) {
	data := MarshalDispatch([]uint64{1, 2, 3}, []byte("hello dispatch"))

	stack, message, err := UnmarshalDispatch(data)
	require.NoError(t, err)
	assert.Equal(t, []uint64{1, 2, 3}, stack)
	assert.Equal(t, []byte("hello dispatch"), message)
}

func TestDispatchRoundTripEmptyStackAndMessage(t *testing.T) {
	data := MarshalDispatch(nil, nil)

	stack, message, err := UnmarshalDispatch(data)
	require.NoError(t, err)
	assert.Empty(t, stack)
	assert.Empty(t, message)
}

func TestUnmarshalDispatchTruncatedData(t *testing.T) {
	_, _, err := UnmarshalDispatch([]byte{0, 0, 0})
	assert.Error(t, err)
}
