// Package codec encodes and decodes BASP's two payload shapes: a
// server_handshake payload (a published actor id plus the interface
// signatures it advertises) and a dispatch_message payload (the
// forwarding stack a message has already transited plus the opaque
// message bytes). Each is a fixed, known shape, so encoding is a direct
// length-prefixed binary write, in the same encoding/binary + bytes.Buffer
// idiom wire.Header uses for the frame header itself — no reflection, type
// tags, or general object-graph support, because no BASP payload needs
// any.
package codec

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
)

func writeUint32(buf *bytes.Buffer, v uint32) {
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], v)
	buf.Write(b[:])
}

func writeUint64(buf *bytes.Buffer, v uint64) {
	var b [8]byte
	binary.LittleEndian.PutUint64(b[:], v)
	buf.Write(b[:])
}

func writeString(buf *bytes.Buffer, s string) {
	writeUint32(buf, uint32(len(s)))
	buf.WriteString(s)
}

func readUint32(r *bytes.Reader) (uint32, error) {
	var b [4]byte
	if _, err := io.ReadFull(r, b[:]); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(b[:]), nil
}

func readUint64(r *bytes.Reader) (uint64, error) {
	var b [8]byte
	if _, err := io.ReadFull(r, b[:]); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint64(b[:]), nil
}

func readString(r *bytes.Reader) (string, error) {
	n, err := readUint32(r)
	if err != nil {
		return "", err
	}

	s := make([]byte, n)
	if _, err := io.ReadFull(r, s); err != nil {
		return "", err
	}

	return string(s), nil
}

// MarshalHandshake encodes a server_handshake payload: the published
// actor id followed by its length-prefixed interface signatures.
func MarshalHandshake(actorID uint32, signatures []string) []byte {
	var buf bytes.Buffer
	writeUint32(&buf, actorID)
	writeUint32(&buf, uint32(len(signatures)))
	for _, s := range signatures {
		writeString(&buf, s)
	}
	return buf.Bytes()
}

// UnmarshalHandshake decodes a payload written by MarshalHandshake.
func UnmarshalHandshake(data []byte) (actorID uint32, signatures []string, err error) {
	r := bytes.NewReader(data)

	actorID, err = readUint32(r)
	if err != nil {
		return 0, nil, fmt.Errorf("codec: handshake actor id: %w", err)
	}

	count, err := readUint32(r)
	if err != nil {
		return 0, nil, fmt.Errorf("codec: handshake signature count: %w", err)
	}

	signatures = make([]string, count)
	for i := range signatures {
		s, err := readString(r)
		if err != nil {
			return 0, nil, fmt.Errorf("codec: handshake signature %d: %w", i, err)
		}
		signatures[i] = s
	}

	return actorID, signatures, nil
}

// MarshalDispatch encodes a dispatch_message payload: the forwarding
// stack (node ids already transited, outermost first) followed by the
// opaque message bytes.
func MarshalDispatch(forwardingStack []uint64, message []byte) []byte {
	var buf bytes.Buffer
	writeUint32(&buf, uint32(len(forwardingStack)))
	for _, n := range forwardingStack {
		writeUint64(&buf, n)
	}
	writeUint32(&buf, uint32(len(message)))
	buf.Write(message)
	return buf.Bytes()
}

// UnmarshalDispatch decodes a payload written by MarshalDispatch.
func UnmarshalDispatch(data []byte) (forwardingStack []uint64, message []byte, err error) {
	r := bytes.NewReader(data)

	count, err := readUint32(r)
	if err != nil {
		return nil, nil, fmt.Errorf("codec: dispatch forwarding stack count: %w", err)
	}

	forwardingStack = make([]uint64, count)
	for i := range forwardingStack {
		forwardingStack[i], err = readUint64(r)
		if err != nil {
			return nil, nil, fmt.Errorf("codec: dispatch forwarding stack entry %d: %w", i, err)
		}
	}

	msgLen, err := readUint32(r)
	if err != nil {
		return nil, nil, fmt.Errorf("codec: dispatch message length: %w", err)
	}

	message = make([]byte, msgLen)
	if _, err := io.ReadFull(r, message); err != nil {
		return nil, nil, fmt.Errorf("codec: dispatch message body: %w", err)
	}

	return forwardingStack, message, nil
}
