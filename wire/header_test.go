package wire

import (
	"bytes"
	"testing"

	"github.com/meshwire/basp/node"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHeaderRoundTrip(t *testing.T) {
	cases := []Header{
		{
			SourceNode:    node.Id(1),
			DestNode:      node.InvalidId,
			SourceActor:   node.ActorId(42),
			DestActor:     node.InvalidActorId,
			PayloadLen:    0,
			Operation:     OperationServerHandshake,
			OperationData: uint64(ProtocolVersion),
		},
		{
			SourceNode:    node.Id(0xFFFFFFFFFFFFFFFF),
			DestNode:      node.Id(2),
			SourceActor:   node.ActorId(7),
			DestActor:     node.ActorId(9),
			PayloadLen:    128,
			Operation:     OperationDispatchMessage,
			OperationData: 99,
		},
	}

	for _, h := range cases {
		encoded := Encode(h)
		require.Len(t, encoded, HeaderSize)

		decoded, err := Decode(encoded)
		require.NoError(t, err)
		assert.Equal(t, h, decoded)
	}
}

func TestDecodeRejectsWrongLength(t *testing.T) {
	_, err := Decode(make([]byte, HeaderSize-1))
	assert.ErrorIs(t, err, ErrWrongHeaderLength)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		h       Header
		wantErr bool
	}{
		{
			name: "unknown operation",
			h:    Header{Operation: Operation(99)},
			wantErr: true,
		},
		{
			name: "server handshake wrong version",
			h: Header{
				Operation:     OperationServerHandshake,
				OperationData: 77,
				DestNode:      node.InvalidId,
			},
			wantErr: true,
		},
		{
			name: "server handshake dest node must be invalid",
			h: Header{
				Operation:     OperationServerHandshake,
				OperationData: uint64(ProtocolVersion),
				DestNode:      node.Id(5),
			},
			wantErr: true,
		},
		{
			name: "server handshake ok",
			h: Header{
				Operation:     OperationServerHandshake,
				OperationData: uint64(ProtocolVersion),
				DestNode:      node.InvalidId,
			},
			wantErr: false,
		},
		{
			name: "client handshake nonzero data",
			h: Header{
				Operation:     OperationClientHandshake,
				OperationData: 1,
			},
			wantErr: true,
		},
		{
			name: "dispatch message needs payload",
			h: Header{
				Operation:  OperationDispatchMessage,
				PayloadLen: 0,
			},
			wantErr: true,
		},
		{
			name: "dispatch message ok",
			h: Header{
				Operation:  OperationDispatchMessage,
				PayloadLen: 4,
			},
			wantErr: false,
		},
		{
			name: "heartbeat unconstrained",
			h: Header{
				Operation: OperationHeartbeat,
			},
			wantErr: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(tt.h)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidateUnknownOperationIsErrUnknownOperation(t *testing.T) {
	err := Validate(Header{Operation: Operation(99)})
	assert.ErrorIs(t, err, ErrUnknownOperation)
}

func TestValidateConstraintViolationIsErrInvalidHeader(t *testing.T) {
	err := Validate(Header{
		Operation:     OperationServerHandshake,
		OperationData: 77,
		DestNode:      node.InvalidId,
	})
	assert.ErrorIs(t, err, ErrInvalidHeader)
}

func TestWriteReservesAndPatchesHeader(t *testing.T) {
	var buf bytes.Buffer

	buf.WriteString("prefix-garbage-to-prove-offset-handling")
	prefixLen := buf.Len()

	h := Header{
		SourceNode:    node.Id(11),
		DestNode:      node.Id(22),
		SourceActor:   node.ActorId(1),
		DestActor:     node.ActorId(2),
		Operation:     OperationDispatchMessage,
		OperationData: 5,
	}

	payload := []byte("hello, dispatch")

	err := Write(&buf, h, func(b *bytes.Buffer) error {
		_, werr := b.Write(payload)
		return werr
	})
	require.NoError(t, err)

	frame := buf.Bytes()[prefixLen:]
	require.True(t, len(frame) >= HeaderSize)

	decoded, err := Decode(frame[:HeaderSize])
	require.NoError(t, err)

	assert.Equal(t, uint32(len(payload)), decoded.PayloadLen)
	assert.Equal(t, h.SourceNode, decoded.SourceNode)
	assert.Equal(t, h.DestNode, decoded.DestNode)
	assert.Equal(t, h.Operation, decoded.Operation)
	assert.Equal(t, h.OperationData, decoded.OperationData)
	assert.Equal(t, payload, frame[HeaderSize:])
}

func TestWriteWithoutPayload(t *testing.T) {
	var buf bytes.Buffer

	h := Header{
		Operation: OperationHeartbeat,
	}

	err := Write(&buf, h, nil)
	require.NoError(t, err)
	require.Equal(t, HeaderSize, buf.Len())

	decoded, err := Decode(buf.Bytes())
	require.NoError(t, err)
	assert.Equal(t, uint32(0), decoded.PayloadLen)
}
