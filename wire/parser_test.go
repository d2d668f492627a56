package wire

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type frameCollector struct {
	frames []Frame
}

func (c *frameCollector) OnFrame(frame Frame) {
	data := make([]byte, len(frame.Data))
	copy(data, frame.Data)
	c.frames = append(c.frames, Frame{Header: frame.Header, Data: data})
}

func encodeFrame(h Header, payload []byte) []byte {
	out := h.Append(nil)
	return append(out, payload...)
}

func drain(t *testing.T, p *Parser) int {
	t.Helper()

	count := 0
	for {
		parsed, err := p.ParseOne()
		require.NoError(t, err)
		if !parsed {
			return count
		}
		count++
	}
}

func TestParserSingleFrame(t *testing.T) {
	collector := new(frameCollector)
	parser := NewParser(collector)

	payload := []byte("hello")
	parser.Feed(encodeFrame(Header{Fin: true, Opcode: Text, Length: 5}, payload))

	assert.Equal(t, 1, drain(t, parser))
	require.Len(t, collector.frames, 1)
	assert.Equal(t, Text, collector.frames[0].Header.Opcode)
	assert.True(t, collector.frames[0].Header.Fin)
	assert.Equal(t, payload, collector.frames[0].Data)
	assert.Equal(t, 0, parser.Buffered())
}

func TestParserNeedMore(t *testing.T) {
	collector := new(frameCollector)
	parser := NewParser(collector)

	t.Run("no data", func(t *testing.T) {
		assert.Equal(t, 0, drain(t, parser))
	})

	t.Run("partial header", func(t *testing.T) {
		parser.Feed([]byte{0x81})
		assert.Equal(t, 0, drain(t, parser))
	})

	t.Run("partial extended header", func(t *testing.T) {
		parser.Feed([]byte{254, 0x01})
		assert.Equal(t, 0, drain(t, parser))
	})

	t.Run("partial payload", func(t *testing.T) {
		// complete the 4-byte header announcing 256 bytes, deliver half
		parser.Feed([]byte{0x00})
		parser.Feed(make([]byte, 128))
		assert.Equal(t, 0, drain(t, parser))
	})

	t.Run("payload completes", func(t *testing.T) {
		parser.Feed(make([]byte, 128))
		assert.Equal(t, 1, drain(t, parser))
		require.Len(t, collector.frames, 1)
		assert.Equal(t, uint64(256), collector.frames[0].Header.Length)
	})
}

func TestParserMultipleFramesOneChunk(t *testing.T) {
	collector := new(frameCollector)
	parser := NewParser(collector)

	var stream []byte
	stream = append(stream, encodeFrame(Header{Fin: true, Opcode: Text, Length: 3}, []byte("one"))...)
	stream = append(stream, encodeFrame(Header{Fin: false, Opcode: Binary, Length: 4}, []byte{1, 2, 3, 4})...)
	stream = append(stream, encodeFrame(Header{Fin: true, Opcode: Ping, Length: 4}, []byte("ping"))...)

	parser.Feed(stream)
	assert.Equal(t, 3, drain(t, parser))

	require.Len(t, collector.frames, 3)
	assert.Equal(t, []byte("one"), collector.frames[0].Data)
	assert.False(t, collector.frames[1].Header.Fin)
	assert.Equal(t, Ping, collector.frames[2].Header.Opcode)
}

func TestParserIncrementality(t *testing.T) {
	// Any chunking of the stream must yield the same frame sequence as a
	// single feed.
	var stream []byte
	payload16 := bytes.Repeat([]byte("x"), 300)
	stream = append(stream, encodeFrame(Header{Fin: true, Opcode: Text, Length: 5}, []byte("hello"))...)
	stream = append(stream, encodeFrame(Header{Fin: true, Opcode: Binary, Length: 300}, payload16)...)
	stream = append(stream, encodeFrame(Header{Fin: true, Opcode: Pong, Length: 4}, []byte("pong"))...)
	stream = append(stream, encodeFrame(Header{Fin: true, Opcode: Close, Length: 0}, nil)...)

	whole := new(frameCollector)
	wholeParser := NewParser(whole)
	wholeParser.Feed(stream)
	drain(t, wholeParser)
	require.Len(t, whole.frames, 4)

	for _, chunkSize := range []int{1, 2, 3, 7, 64, len(stream)} {
		collector := new(frameCollector)
		parser := NewParser(collector)

		for start := 0; start < len(stream); start += chunkSize {
			end := min(start+chunkSize, len(stream))
			parser.Feed(stream[start:end])
			drain(t, parser)
		}

		assert.Equal(t, whole.frames, collector.frames, "chunk size %d", chunkSize)
	}
}

func TestParserSplitAtEveryPosition(t *testing.T) {
	stream := encodeFrame(Header{Fin: true, Opcode: Text, Length: 11}, []byte("hello world"))

	for split := 0; split <= len(stream); split++ {
		collector := new(frameCollector)
		parser := NewParser(collector)

		parser.Feed(stream[:split])
		drain(t, parser)
		parser.Feed(stream[split:])
		drain(t, parser)

		require.Len(t, collector.frames, 1, "split at %d", split)
		assert.Equal(t, []byte("hello world"), collector.frames[0].Data, "split at %d", split)
	}
}

func TestParserPrepareCommit(t *testing.T) {
	collector := new(frameCollector)
	parser := NewParser(collector)
	parser.SetReceiveBufferSize(64)

	frame := encodeFrame(Header{Fin: true, Opcode: Text, Length: 2}, []byte("ok"))

	region := parser.PrepareWrite()
	require.GreaterOrEqual(t, len(region), len(frame))

	copy(region, frame)
	parser.CommitWrite(len(frame))

	assert.Equal(t, 1, drain(t, parser))
	assert.Equal(t, []byte("ok"), collector.frames[0].Data)
}

func TestParserMaxPayload(t *testing.T) {
	collector := new(frameCollector)
	parser := NewParser(collector)
	parser.SetMaxPayload(16)

	parser.Feed(encodeFrame(Header{Fin: true, Opcode: Binary, Length: 17}, make([]byte, 17)))

	parsed, err := parser.ParseOne()
	assert.False(t, parsed)
	assert.ErrorIs(t, err, ErrTooLarge)
	assert.Empty(t, collector.frames)
}

func TestParserNilListener(t *testing.T) {
	parser := NewParser(nil)
	parser.Feed(encodeFrame(Header{Fin: true, Opcode: Text, Length: 2}, []byte("ok")))

	parsed, err := parser.ParseOne()
	require.NoError(t, err)
	assert.True(t, parsed)
	assert.Equal(t, 0, parser.Buffered())
}
