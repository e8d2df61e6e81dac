package wire

import (
	"encoding/binary"
	"fmt"
)

const headerLen = 4

// EncodeFrame wraps payload in the [opcode][version][length][payload] header.
func EncodeFrame(op Opcode, payload []byte) []byte {
	buf := make([]byte, headerLen+len(payload))
	buf[0] = byte(op)
	buf[1] = ProtocolVersion
	binary.BigEndian.PutUint16(buf[2:4], uint16(len(payload)))
	copy(buf[4:], payload)
	return buf
}

// DecodeFrame splits a raw datagram into its header fields and payload.
// It fails with ErrMalformed if the buffer is shorter than the header, the
// declared length doesn't match the remaining bytes exactly, or the
// version byte isn't ProtocolVersion — callers must drop such frames.
func DecodeFrame(data []byte) (op Opcode, version uint8, payload []byte, err error) {
	if len(data) < headerLen {
		return 0, 0, nil, fmt.Errorf("%w: frame shorter than header (%d bytes)", ErrMalformed, len(data))
	}
	op = Opcode(data[0])
	version = data[1]
	length := binary.BigEndian.Uint16(data[2:4])
	rest := data[headerLen:]
	if int(length) != len(rest) {
		return 0, 0, nil, fmt.Errorf("%w: declared length %d does not match %d remaining bytes", ErrMalformed, length, len(rest))
	}
	if version != ProtocolVersion {
		return op, version, nil, fmt.Errorf("%w: unsupported version %d", ErrMalformed, version)
	}
	return op, version, rest, nil
}
