package wire

// FrameListener receives complete frames as the parser extracts them.
// The frame payload aliases the parse buffer and must not be retained
// past the callback.
type FrameListener interface {
	OnFrame(frame Frame)
}

// Parser reconstructs frames from an incoming byte stream. Bytes arrive in
// arbitrary chunks via Feed or the PrepareWrite/CommitWrite pair; ParseOne
// extracts at most one complete frame per call.
type Parser struct {
	buf        SlidingBuffer
	listener   FrameListener
	maxPayload uint64
}

// NewParser returns a parser delivering frames to listener. A nil listener
// discards frames.
func NewParser(listener FrameListener) *Parser {
	return &Parser{listener: listener}
}

// SetListener replaces the frame listener.
func (p *Parser) SetListener(listener FrameListener) { p.listener = listener }

// SetReceiveBufferSize resizes the parse buffer, preserving buffered data.
func (p *Parser) SetReceiveBufferSize(size int) { p.buf.Resize(size) }

// SetMaxPayload bounds the payload length of a single frame. Zero means
// unbounded. Without a bound a peer can force an arbitrarily large
// allocation through a single length field.
func (p *Parser) SetMaxPayload(limit uint64) { p.maxPayload = limit }

// Buffered returns the number of unparsed bytes held by the parser.
func (p *Parser) Buffered() int { return p.buf.Len() }

// PrepareWrite exposes the free region of the parse buffer for a direct
// transport read.
func (p *Parser) PrepareWrite() []byte { return p.buf.PrepareWrite() }

// CommitWrite marks n bytes of the prepared region as received.
func (p *Parser) CommitWrite(n int) { p.buf.CommitWrite(n) }

// Feed appends a received chunk to the parse buffer.
func (p *Parser) Feed(chunk []byte) { p.buf.Feed(chunk) }

// ParseOne attempts to extract one complete frame from the buffered bytes.
// It reports whether a frame was parsed and delivered; false means more
// data is needed. ErrTooLarge is returned when a frame announces a payload
// beyond the configured limit.
func (p *Parser) ParseOne() (bool, error) {
	data := p.buf.Data()

	header, headerLen, err := DecodeHeader(data)
	if err != nil {
		// need more data
		return false, nil
	}

	if p.maxPayload > 0 && header.Length > p.maxPayload {
		return false, ErrTooLarge
	}

	total := uint64(headerLen) + header.Length
	if total > uint64(len(data)) {
		// need more data
		return false, nil
	}

	frame := Frame{
		Header: header,
		Data:   data[headerLen:total],
	}

	if p.listener != nil {
		p.listener.OnFrame(frame)
	}

	p.buf.Consume(int(total))

	return true, nil
}
