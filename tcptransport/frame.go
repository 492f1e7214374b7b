package tcptransport

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"hash/crc32"
	"io"

	"github.com/sigurn/crc8"
)

// ErrFrameCorrupt is returned by nextFrame when a physical frame's header
// or body checksum does not match, indicating transport-level corruption.
var ErrFrameCorrupt = errors.New("tcptransport: frame corrupt")

// ErrFrameTooLarge is returned by nextFrame when a physical frame declares
// a length beyond maxFrameLength, before any attempt to read or allocate
// its body.
var ErrFrameTooLarge = errors.New("tcptransport: frame too large")

// maxFrameLength bounds the body a peer may declare in a frame header.
// BASP headers plus payload never approach this; it exists only to stop
// a peer from claiming a multi-gigabyte frame and forcing an allocation
// before its checksum is even checked.
const maxFrameLength = 16 << 20

// frameHeader is the on-wire prefix for one physical TCP frame: the BASP
// header+payload bytes accumulated by the engine, wrapped with the same
// CRC8-over-header / CRC32-over-body integrity scheme the teacher's
// transport package uses, narrowed to the one field this embedder needs
// (frame length) plus its two checksums.
type frameHeader struct {
	FrameLength uint32
	HeaderCRC   uint8
	_           [3]byte // pad to a 4-byte-aligned, fixed-size header
	BodyCRC     uint32
}

var sizeOfFrameHeader = binary.Size(frameHeader{})

var crc8Table = crc8.MakeTable(crc8.CRC8)

func nextFrame(r io.Reader) ([]byte, error) {
	var fh frameHeader
	if err := binary.Read(r, binary.LittleEndian, &fh); err != nil {
		return nil, err
	}

	check := frameHeader{FrameLength: fh.FrameLength}
	var b bytes.Buffer
	if err := binary.Write(&b, binary.LittleEndian, &check); err != nil {
		return nil, err
	}

	if fh.HeaderCRC != crc8.Checksum(b.Bytes(), crc8Table) {
		return nil, fmt.Errorf("tcptransport: header crc8 mismatch: %w", ErrFrameCorrupt)
	}

	if fh.FrameLength > maxFrameLength {
		return nil, fmt.Errorf("tcptransport: frame length %d exceeds %d: %w", fh.FrameLength, maxFrameLength, ErrFrameTooLarge)
	}

	body := make([]byte, fh.FrameLength)
	if _, err := io.ReadFull(r, body); err != nil {
		return nil, err
	}

	if fh.BodyCRC != crc32.ChecksumIEEE(body) {
		return nil, fmt.Errorf("tcptransport: body crc32 mismatch: %w", ErrFrameCorrupt)
	}

	return body, nil
}

func writeFrame(w io.Writer, body []byte) error {
	fh := frameHeader{FrameLength: uint32(len(body))}

	var b bytes.Buffer
	if err := binary.Write(&b, binary.LittleEndian, &frameHeader{FrameLength: fh.FrameLength}); err != nil {
		return err
	}
	fh.HeaderCRC = crc8.Checksum(b.Bytes(), crc8Table)
	fh.BodyCRC = crc32.ChecksumIEEE(body)

	if err := binary.Write(w, binary.LittleEndian, &fh); err != nil {
		return err
	}

	_, err := w.Write(body)
	return err
}
