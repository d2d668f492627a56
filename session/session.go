package session

import (
	"errors"

	"github.com/vitalvas/wstream/compress"
	"github.com/vitalvas/wstream/wire"
)

// State is the session lifecycle state.
type State int

const (
	StateInit State = iota
	StateConnecting
	StateConnected
	StateClosing
	StateClosed
	StateError
)

func (s State) String() string {
	switch s {
	case StateInit:
		return "init"
	case StateConnecting:
		return "connecting"
	case StateConnected:
		return "connected"
	case StateClosing:
		return "closing"
	case StateClosed:
		return "closed"
	case StateError:
		return "error"
	default:
		return "unknown"
	}
}

// Errors returned by session operations or delivered through OnError.
var (
	ErrInvalidState  = errors.New("session: operation not allowed in current state")
	ErrMessageEmpty  = errors.New("session: message empty")
	ErrReasonTooLong = errors.New("session: close reason too long")
	ErrCompress      = errors.New("session: compress failed")
	ErrDecompress    = errors.New("session: decompress failed")
)

// SendHandler receives a fully encoded frame (header plus payload) for
// transmission. The handler is invoked synchronously from the sending
// operation and is responsible for durable, ordered delivery.
type SendHandler func(data []byte)

const defaultReceiveBufferSize = 8 * 1024

// Session is the wstream protocol state machine. See the package
// documentation for the lifecycle and threading model.
type Session struct {
	state      State
	parser     *wire.Parser
	listener   Listener
	send       SendHandler
	compressor compress.Compressor
}

// New returns a session in the Init state with an 8 KiB receive buffer.
func New() *Session {
	s := &Session{}
	s.parser = wire.NewParser(frameHandler{s})
	s.parser.SetReceiveBufferSize(defaultReceiveBufferSize)
	return s
}

// frameHandler adapts the session to the parser's listener interface
// without exposing OnFrame on the public API.
type frameHandler struct{ s *Session }

func (h frameHandler) OnFrame(frame wire.Frame) { h.s.onFrame(frame) }

// State returns the current lifecycle state.
func (s *Session) State() State { return s.state }

// SetListener replaces the event listener. Pass nil to detach.
func (s *Session) SetListener(listener Listener) { s.listener = listener }

// SetSendHandler replaces the outbound frame handler.
func (s *Session) SetSendHandler(handler SendHandler) { s.send = handler }

// SetReceiveBufferSize resizes the receive buffer, preserving buffered
// bytes.
func (s *Session) SetReceiveBufferSize(size int) { s.parser.SetReceiveBufferSize(size) }

// SetMaxFramePayload bounds the payload length of a single inbound frame.
// Exceeding it is an unrecoverable fault. Zero means unbounded.
func (s *Session) SetMaxFramePayload(limit uint64) { s.parser.SetMaxPayload(limit) }

// Compressor returns the negotiated per-session compressor, or nil when
// the session is uncompressed.
func (s *Session) Compressor() compress.Compressor { return s.compressor }

// PrepareWrite exposes the free region of the receive buffer so a
// transport can read into it directly. Follow with CommitWrite.
func (s *Session) PrepareWrite() []byte { return s.parser.PrepareWrite() }

// CommitWrite marks n received bytes as valid and dispatches any complete
// frames.
func (s *Session) CommitWrite(n int) {
	s.parser.CommitWrite(n)
	s.parseProcess()
}

// Feed appends received bytes and dispatches any complete frames. Listener
// callbacks fire synchronously, each frame's dispatch completing before
// the next is parsed.
func (s *Session) Feed(chunk []byte) {
	s.parser.Feed(chunk)
	s.parseProcess()
}

// Handshake emits the handshake System frame and moves the session to
// Connecting. Without arguments every registered compressor is offered;
// with arguments only the given types, in the given order. Offering
// compress.None alone advertises an empty list, disabling compression.
func (s *Session) Handshake(offer ...compress.Type) error {
	if s.state != StateInit {
		return ErrInvalidState
	}
	s.state = StateConnecting

	var names string
	if len(offer) == 0 {
		names = compress.Supported()
	} else {
		names = compress.SupportedOf(offer)
	}

	s.sendFrame(wire.Header{
		Fin:    true,
		Opcode: wire.System,
		Length: uint64(len(names)),
	}, []byte(names))

	return nil
}

// SendText emits a Text frame. The payload is compressed when a compressor
// was negotiated; a compression failure closes the session with
// CloseInternalError and returns ErrCompress.
func (s *Session) SendText(text string, fin bool) error {
	return s.sendData(wire.Text, []byte(text), fin)
}

// SendBinary emits a Binary frame. Compression applies exactly as for
// SendText: both directions are symmetric, so a peer that skips
// compression on binary sends while decompressing binary receives is
// incompatible once a compressor is negotiated.
func (s *Session) SendBinary(data []byte, fin bool) error {
	return s.sendData(wire.Binary, data, fin)
}

func (s *Session) sendData(op wire.Opcode, payload []byte, fin bool) error {
	if s.state != StateConnected {
		return ErrInvalidState
	}
	if len(payload) == 0 {
		return ErrMessageEmpty
	}

	compressed := false
	if s.compressor != nil {
		payload = s.compressor.Compress(payload)
		if len(payload) == 0 {
			_ = s.Close(wire.CloseInternalError)
			return ErrCompress
		}
		compressed = true
	}

	s.sendFrame(wire.Header{
		Fin:        fin,
		Compressed: compressed,
		Opcode:     op,
		Length:     uint64(len(payload)),
	}, payload)

	return nil
}

// Ping emits a Ping frame with a "ping" payload.
func (s *Session) Ping() {
	s.sendFrame(wire.Header{Fin: true, Opcode: wire.Ping, Length: 4}, []byte("ping"))
}

// Pong emits a Pong frame with a "pong" payload.
func (s *Session) Pong() {
	s.sendFrame(wire.Header{Fin: true, Opcode: wire.Pong, Length: 4}, []byte("pong"))
}

// Close initiates the close handshake using the default reason text for
// code.
func (s *Session) Close(code uint16) error {
	return s.CloseWithReason(code, wire.CloseReason(code))
}

// CloseWithReason initiates the close handshake with a custom reason. The
// close payload is restricted to the short header tier; an overlong reason
// closes the session with CloseInternalError and returns ErrReasonTooLong.
func (s *Session) CloseWithReason(code uint16, reason string) error {
	if s.state == StateClosed || s.state == StateError {
		return ErrInvalidState
	}
	s.state = StateClosing

	if 2+len(reason) > wire.MaxShortPayload {
		_ = s.Close(wire.CloseInternalError)
		return ErrReasonTooLong
	}

	payload := wire.AppendClosePayload(make([]byte, 0, 2+len(reason)), code, reason)
	s.sendFrame(wire.Header{
		Fin:    true,
		Opcode: wire.Close,
		Length: uint64(len(payload)),
	}, payload)

	return nil
}

// Fail moves the session to the terminal Error state and reports err to
// the listener. Transports call this for unrecoverable I/O faults.
func (s *Session) Fail(err error) {
	if s.state == StateClosed || s.state == StateError {
		return
	}
	s.state = StateError
	s.notifyError(err)
}

func (s *Session) parseProcess() {
	for s.state != StateClosed && s.state != StateError {
		parsed, err := s.parser.ParseOne()
		if err != nil {
			s.Fail(err)
			return
		}
		if !parsed {
			return
		}
	}
}

func (s *Session) onFrame(frame wire.Frame) {
	if s.state == StateClosed || s.state == StateError {
		return
	}

	switch frame.Header.Opcode {
	case wire.System:
		s.onSystem(frame)
	case wire.Text:
		s.onText(frame)
	case wire.Binary:
		s.onBinary(frame)
	case wire.Close:
		s.onClose(frame)
	case wire.Ping:
		s.notifyPing()
	case wire.Pong:
		s.notifyPong()
	default:
		// unknown opcode, drop
	}
}

func (s *Session) onSystem(frame wire.Frame) {
	offered := compress.TypesOf(string(frame.Data))

	chosen := s.notifyHandshake(offered)
	s.compressor = compress.New(chosen)

	if s.state == StateInit {
		// We are the responder: echo the selection back before the
		// session is considered connected.
		if s.compressor != nil {
			_ = s.Handshake(s.compressor.Type())
		} else {
			_ = s.Handshake(compress.None)
		}
	}

	s.state = StateConnected
	s.notifyConnected()
}

func (s *Session) onText(frame wire.Frame) {
	data := frame.Data

	if s.compressor != nil {
		data = s.compressor.Decompress(data)
		if len(data) == 0 {
			s.notifyError(ErrDecompress)
			return
		}
	}

	if s.listener != nil {
		s.listener.OnText(string(data), frame.Header.Fin)
	}
}

func (s *Session) onBinary(frame wire.Frame) {
	data := frame.Data

	if s.compressor != nil {
		data = s.compressor.Decompress(data)
		if len(data) == 0 {
			s.notifyError(ErrDecompress)
			return
		}
	}

	if s.listener != nil {
		s.listener.OnBinary(data, frame.Header.Fin)
	}
}

func (s *Session) onClose(frame wire.Frame) {
	code, reason, ok := wire.ParseClosePayload(frame.Data)
	if !ok {
		return
	}

	if s.state != StateClosing {
		_ = s.Close(wire.CloseNormal)
	}

	s.state = StateClosed
	s.notifyClose(code, reason)
}

func (s *Session) sendFrame(header wire.Header, payload []byte) {
	data := header.Append(make([]byte, 0, header.EncodedLen()+len(payload)))
	data = append(data, payload...)

	if s.send != nil {
		s.send(data)
	}
}

func (s *Session) notifyError(err error) {
	if s.listener != nil {
		s.listener.OnError(err)
	}
}

func (s *Session) notifyHandshake(offered []compress.Type) compress.Type {
	if s.listener != nil {
		return s.listener.OnHandshake(offered)
	}
	return compress.None
}

func (s *Session) notifyConnected() {
	if s.listener != nil {
		s.listener.OnConnected()
	}
}

func (s *Session) notifyClose(code uint16, reason string) {
	if s.listener != nil {
		s.listener.OnClose(code, reason)
	}
}

func (s *Session) notifyPing() {
	if s.listener != nil {
		s.listener.OnPing()
	}
}

func (s *Session) notifyPong() {
	if s.listener != nil {
		s.listener.OnPong()
	}
}
