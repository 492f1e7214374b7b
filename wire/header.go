// Package wire implements the fixed 40-byte frame header shared by every
// BASP connection: encoding, decoding, validation, and the reserve/emit/
// back-patch helper writers use to frame a payload whose length is not
// known until after it has been serialized.
package wire

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/meshwire/basp/node"
)

// Sentinel errors callers can match with errors.Is.
var (
	ErrWrongHeaderLength = errors.New("wire: wrong header length")
	ErrUnknownOperation  = errors.New("wire: unknown operation")
	ErrInvalidHeader     = errors.New("wire: invalid header for operation")
)

// ProtocolVersion is exchanged verbatim in a server handshake's
// OperationData; peers advertising a different version refuse the
// connection.
const ProtocolVersion uint32 = 1

// HeaderSize is the compile-time constant width of an encoded Header.
// Writers that need to patch the header after computing PayloadLen must
// reserve HeaderSize bytes in the output buffer, emit the payload, then
// back-patch — see Write below.
const HeaderSize = 8 + 8 + 4 + 4 + 4 + 4 + 8 // source_node + dest_node + source_actor + dest_actor + payload_len + operation + operation_data

// Header is the fixed-layout frame prefix. Field order matches the wire
// format exactly: SourceNode, DestNode, SourceActor, DestActor,
// PayloadLen, Operation, OperationData.
type Header struct {
	SourceNode    node.Id
	DestNode      node.Id
	SourceActor   node.ActorId
	DestActor     node.ActorId
	PayloadLen    uint32
	Operation     Operation
	OperationData uint64
}

// Encode renders h as HeaderSize bytes; infallible, as spec requires.
func Encode(h Header) []byte {
	buf := make([]byte, HeaderSize)
	binary.LittleEndian.PutUint64(buf[0:8], uint64(h.SourceNode))
	binary.LittleEndian.PutUint64(buf[8:16], uint64(h.DestNode))
	binary.LittleEndian.PutUint32(buf[16:20], uint32(h.SourceActor))
	binary.LittleEndian.PutUint32(buf[20:24], uint32(h.DestActor))
	binary.LittleEndian.PutUint32(buf[24:28], h.PayloadLen)
	binary.LittleEndian.PutUint32(buf[28:32], uint32(h.Operation))
	binary.LittleEndian.PutUint64(buf[32:40], h.OperationData)
	return buf
}

// Decode parses exactly HeaderSize bytes into a Header. Structurally
// infallible (any 40 bytes decode to some Header); operation validity is
// checked separately by Validate.
func Decode(b []byte) (Header, error) {
	if len(b) != HeaderSize {
		return Header{}, fmt.Errorf("wire: want %d bytes, got %d: %w", HeaderSize, len(b), ErrWrongHeaderLength)
	}

	return Header{
		SourceNode:    node.Id(binary.LittleEndian.Uint64(b[0:8])),
		DestNode:      node.Id(binary.LittleEndian.Uint64(b[8:16])),
		SourceActor:   node.ActorId(binary.LittleEndian.Uint32(b[16:20])),
		DestActor:     node.ActorId(binary.LittleEndian.Uint32(b[20:24])),
		PayloadLen:    binary.LittleEndian.Uint32(b[24:28]),
		Operation:     Operation(binary.LittleEndian.Uint32(b[28:32])),
		OperationData: binary.LittleEndian.Uint64(b[32:40]),
	}, nil
}

// Validate reports whether h is structurally sound for its operation.
// It fails if Operation is outside the known enum, or a per-operation
// field constraint is violated.
func Validate(h Header) error {
	if !h.Operation.Valid() {
		return fmt.Errorf("wire: operation %d: %w", uint32(h.Operation), ErrUnknownOperation)
	}

	switch h.Operation {
	case OperationServerHandshake:
		if h.OperationData != uint64(ProtocolVersion) {
			return fmt.Errorf("wire: server_handshake operation_data = %d, want protocol version %d: %w", h.OperationData, ProtocolVersion, ErrInvalidHeader)
		}
		if h.DestNode != node.InvalidId {
			return fmt.Errorf("wire: server_handshake dest_node must be invalid: %w", ErrInvalidHeader)
		}
	case OperationClientHandshake:
		if h.OperationData != 0 {
			return fmt.Errorf("wire: client_handshake operation_data must be 0, got %d: %w", h.OperationData, ErrInvalidHeader)
		}
	case OperationDispatchMessage:
		if h.PayloadLen == 0 {
			return fmt.Errorf("wire: dispatch_message requires a payload: %w", ErrInvalidHeader)
		}
	case OperationHeartbeat, OperationAnnounceProxy, OperationKillProxyInstance:
		// unconstrained beyond a known operation code.
	}

	return nil
}

// PayloadWriter appends payload bytes to buf and reports any error; Write
// computes PayloadLen afterwards from how much buf grew.
type PayloadWriter func(buf *bytes.Buffer) error

// Write frames a complete message: it reserves HeaderSize bytes, invokes
// writePayload (if non-nil) to append the payload, computes PayloadLen
// from the bytes actually written, and back-patches the header in place.
// This is the single framing primitive every writer method in the engine
// package builds on.
func Write(buf *bytes.Buffer, h Header, writePayload PayloadWriter) error {
	reserved := buf.Len()
	buf.Write(make([]byte, HeaderSize))

	if writePayload != nil {
		if err := writePayload(buf); err != nil {
			return err
		}
	}

	h.PayloadLen = uint32(buf.Len() - reserved - HeaderSize)

	encoded := Encode(h)
	copy(buf.Bytes()[reserved:reserved+HeaderSize], encoded)

	return nil
}
