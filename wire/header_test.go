package wire

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHeaderEncode(t *testing.T) {
	tests := []struct {
		name     string
		header   Header
		expected []byte
	}{
		{
			name:     "short tier pong with compressed flag",
			header:   Header{Fin: true, Compressed: true, Opcode: Pong, Length: 127},
			expected: []byte{0b1100_1010, 0b0111_1111},
		},
		{
			name:     "16-bit tier boundary",
			header:   Header{Fin: true, Compressed: true, Opcode: Pong, Length: 256},
			expected: []byte{0b1100_1010, 254, 0x01, 0x00},
		},
		{
			name:     "64-bit tier",
			header:   Header{Fin: true, Compressed: true, Opcode: Pong, Length: 55169595},
			expected: []byte{0b1100_1010, 255, 0, 0, 0, 0, 0x03, 0x49, 0xD2, 0x3B},
		},
		{
			name:     "zero length system frame",
			header:   Header{Fin: true, Opcode: System, Length: 0},
			expected: []byte{0b1000_0000, 0},
		},
		{
			name:     "largest short tier length",
			header:   Header{Fin: true, Opcode: Text, Length: 253},
			expected: []byte{0b1000_0001, 253},
		},
		{
			name:     "smallest 16-bit tier length",
			header:   Header{Fin: true, Opcode: Text, Length: 254},
			expected: []byte{0b1000_0001, 254, 0x00, 0xFE},
		},
		{
			name:     "largest 16-bit tier length",
			header:   Header{Fin: true, Opcode: Binary, Length: 65535},
			expected: []byte{0b1000_0010, 254, 0xFF, 0xFF},
		},
		{
			name:     "smallest 64-bit tier length",
			header:   Header{Fin: true, Opcode: Binary, Length: 65536},
			expected: []byte{0b1000_0010, 255, 0, 0, 0, 0, 0, 0x01, 0x00, 0x00},
		},
		{
			name:     "non-final frame",
			header:   Header{Fin: false, Opcode: Text, Length: 5},
			expected: []byte{0b0000_0001, 5},
		},
		{
			name:     "reserved bits",
			header:   Header{Fin: true, Rsv2: true, Rsv3: true, Opcode: Close, Length: 2},
			expected: []byte{0b1011_1000, 2},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.header.Encode())
			assert.Equal(t, len(tt.expected), tt.header.EncodedLen())
		})
	}
}

func TestHeaderRoundTrip(t *testing.T) {
	lengths := []uint64{0, 1, 125, 126, 127, 253, 254, 255, 256, 65535, 65536, 55169595, 1 << 32, 1<<63 - 1}

	for _, length := range lengths {
		for _, fin := range []bool{true, false} {
			for _, compressed := range []bool{true, false} {
				h := Header{Fin: fin, Compressed: compressed, Opcode: Binary, Length: length}

				encoded := h.Encode()
				decoded, n, err := DecodeHeader(encoded)
				require.NoError(t, err)
				assert.Equal(t, len(encoded), n)
				assert.Equal(t, h, decoded)
			}
		}
	}
}

func TestHeaderTierSelection(t *testing.T) {
	tests := []struct {
		length   uint64
		expected int
	}{
		{0, 2},
		{253, 2},
		{254, 4},
		{65535, 4},
		{65536, 10},
		{1 << 40, 10},
	}

	for _, tt := range tests {
		h := Header{Length: tt.length}
		assert.Equal(t, tt.expected, h.EncodedLen(), "length %d", tt.length)
		assert.Len(t, h.Encode(), tt.expected, "length %d", tt.length)
	}
}

func TestDecodeHeaderShort(t *testing.T) {
	tests := []struct {
		name string
		data []byte
	}{
		{"empty", nil},
		{"one byte", []byte{0x81}},
		{"missing 16-bit extension", []byte{0x81, 254, 0x01}},
		{"missing 64-bit extension", []byte{0x81, 255, 0, 0, 0, 0, 0, 0, 1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := DecodeHeader(tt.data)
			assert.ErrorIs(t, err, ErrShortHeader)
		})
	}
}

func TestDecodeHeaderNonCanonical(t *testing.T) {
	// A 64-bit tier encoding of a small value decodes fine even though the
	// encoder never produces it.
	data := []byte{0x81, 255, 0, 0, 0, 0, 0, 0, 0, 5}

	h, n, err := DecodeHeader(data)
	require.NoError(t, err)
	assert.Equal(t, 10, n)
	assert.Equal(t, uint64(5), h.Length)
}

func TestDecodeHeaderFlags(t *testing.T) {
	h, n, err := DecodeHeader([]byte{0b1111_1010, 4})
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.True(t, h.Fin)
	assert.True(t, h.Compressed)
	assert.True(t, h.Rsv2)
	assert.True(t, h.Rsv3)
	assert.Equal(t, Pong, h.Opcode)
	assert.Equal(t, uint64(4), h.Length)
}
