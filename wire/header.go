package wire

import (
	"encoding/binary"
	"errors"
)

// Opcode is the 4-bit frame type selector carried in the low nibble of the
// first header byte.
type Opcode byte

// Frame opcodes.
const (
	System Opcode = 0x0 // handshake payloads only
	Text   Opcode = 0x1
	Binary Opcode = 0x2
	Close  Opcode = 0x8
	Ping   Opcode = 0x9
	Pong   Opcode = 0xA
)

// First byte bits.
const (
	finalBit   = 1 << 7 // FIN bit indicates final frame of a message
	rsv1Bit    = 1 << 6 // RSV1 bit carries the compressed flag on data frames
	rsv2Bit    = 1 << 5 // RSV2 bit reserved
	rsv3Bit    = 1 << 4 // RSV3 bit reserved
	opcodeMask = 0x0f   // Opcode occupies bits 0-3
)

// Length tier markers. Unlike RFC 6455 (which reserves 126/127), the
// markers are 254 and 255, so the short tier covers lengths up to 253.
const (
	payloadLen16 = 254 // 16-bit big-endian extended length follows
	payloadLen64 = 255 // 64-bit big-endian extended length follows

	// MaxShortPayload is the largest payload length encodable in the
	// 2-byte header tier.
	MaxShortPayload = payloadLen16 - 1

	// MaxMiddlePayload is the largest payload length encodable in the
	// 4-byte header tier.
	MaxMiddlePayload = 1<<16 - 1
)

// Errors returned by the wire package.
var (
	ErrShortHeader = errors.New("wire: short header")
	ErrTooLarge    = errors.New("wire: frame payload exceeds limit")
)

// Header is the decoded form of a frame header.
type Header struct {
	Fin        bool
	Compressed bool // RSV1
	Rsv2       bool
	Rsv3       bool
	Opcode     Opcode
	Length     uint64
}

// Frame is a header plus its payload, the unit of transmission. Data
// references the parse buffer for inbound frames and is only valid for the
// duration of the listener callback.
type Frame struct {
	Header Header
	Data   []byte
}

// EncodedLen returns the encoded header size in bytes: 2, 4 or 10
// depending on the smallest tier that fits Length.
func (h Header) EncodedLen() int {
	switch {
	case h.Length <= MaxShortPayload:
		return 2
	case h.Length <= MaxMiddlePayload:
		return 4
	default:
		return 10
	}
}

// Append appends the encoded header to dst and returns the extended slice.
// The smallest length tier that fits is always selected.
func (h Header) Append(dst []byte) []byte {
	b0 := byte(h.Opcode) & opcodeMask
	if h.Fin {
		b0 |= finalBit
	}
	if h.Compressed {
		b0 |= rsv1Bit
	}
	if h.Rsv2 {
		b0 |= rsv2Bit
	}
	if h.Rsv3 {
		b0 |= rsv3Bit
	}

	switch {
	case h.Length <= MaxShortPayload:
		return append(dst, b0, byte(h.Length))
	case h.Length <= MaxMiddlePayload:
		dst = append(dst, b0, payloadLen16)
		return binary.BigEndian.AppendUint16(dst, uint16(h.Length))
	default:
		dst = append(dst, b0, payloadLen64)
		return binary.BigEndian.AppendUint64(dst, h.Length)
	}
}

// Encode returns the encoded header.
func (h Header) Encode() []byte {
	return h.Append(make([]byte, 0, h.EncodedLen()))
}

// headerLen reports the total header size implied by the length marker.
func headerLen(marker byte) int {
	switch marker {
	case payloadLen16:
		return 4
	case payloadLen64:
		return 10
	default:
		return 2
	}
}

// DecodeHeader decodes a frame header from the front of b and returns it
// together with the number of header bytes consumed. ErrShortHeader is
// returned when b does not yet hold a complete header.
//
// Non-canonical encodings (an extended tier holding a value that would fit
// a smaller one) are accepted; the encoder never produces them.
func DecodeHeader(b []byte) (Header, int, error) {
	if len(b) < 2 {
		return Header{}, 0, ErrShortHeader
	}

	h := Header{
		Fin:        b[0]&finalBit != 0,
		Compressed: b[0]&rsv1Bit != 0,
		Rsv2:       b[0]&rsv2Bit != 0,
		Rsv3:       b[0]&rsv3Bit != 0,
		Opcode:     Opcode(b[0] & opcodeMask),
	}

	n := headerLen(b[1])
	if len(b) < n {
		return Header{}, 0, ErrShortHeader
	}

	switch b[1] {
	case payloadLen16:
		h.Length = uint64(binary.BigEndian.Uint16(b[2:4]))
	case payloadLen64:
		h.Length = binary.BigEndian.Uint64(b[2:10])
	default:
		h.Length = uint64(b[1])
	}

	return h, n, nil
}
