// Package wire implements the binary frame format of the wstream protocol.
//
// The format is inspired by the WebSocket framing defined in RFC 6455,
// section 5.2, but is not compatible with it:
//   - there is no masking and no masking key
//   - the extended length markers are 254 and 255 instead of 126 and 127,
//     so the short length tier runs to 253 bytes
//   - opcode 0x0 is a System frame carrying handshake payloads instead of
//     a continuation frame
//
// A frame is a variable-length header followed by the payload:
//
//	byte 0:  FIN | RSV1 | RSV2 | RSV3 | opcode (4 bits)
//	byte 1:  length marker
//	         < 254  payload length, header is 2 bytes
//	         = 254  big-endian uint16 length follows, header is 4 bytes
//	         = 255  big-endian uint64 length follows, header is 10 bytes
//
// RSV1 carries the compressed flag on data frames. The encoder always
// selects the smallest tier that fits the payload length.
//
// The package also provides SlidingBuffer, a grow-and-consume byte
// accumulator for partial reads, and Parser, which reconstructs complete
// frames from incoming byte chunks and hands them to a FrameListener.
package wire
