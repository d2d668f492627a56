package wire

import "encoding/binary"

// Close codes carried in the first two bytes of a Close frame payload.
const (
	CloseNormal        = 1000
	CloseProtocolError = 1002
	CloseInternalError = 1011
)

// CloseReason returns the default reason text for the named close codes,
// or an empty string for custom codes.
func CloseReason(code uint16) string {
	switch code {
	case CloseNormal:
		return "close normal"
	case CloseProtocolError:
		return "close protocol error"
	case CloseInternalError:
		return "internal error"
	default:
		return ""
	}
}

// AppendClosePayload appends a close frame body to dst: the code as a
// big-endian uint16 followed by the UTF-8 reason bytes.
func AppendClosePayload(dst []byte, code uint16, reason string) []byte {
	dst = binary.BigEndian.AppendUint16(dst, code)
	return append(dst, reason...)
}

// ParseClosePayload extracts the code and reason from a close frame body.
// Payloads shorter than two bytes carry no code; ok is false.
func ParseClosePayload(p []byte) (code uint16, reason string, ok bool) {
	if len(p) < 2 {
		return 0, "", false
	}
	return binary.BigEndian.Uint16(p), string(p[2:]), true
}
