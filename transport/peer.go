package transport

import (
	"net"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/vitalvas/wstream/compress"
	"github.com/vitalvas/wstream/keepalive"
	"github.com/vitalvas/wstream/session"
	"github.com/vitalvas/wstream/wire"
)

const readChunkSize = 4 * 1024

// Peer is one endpoint of a wstream connection over a net.Conn.
type Peer struct {
	id       string
	conn     net.Conn
	sess     *session.Session
	ka       *keepalive.Manager
	listener session.Listener
	offer    []compress.Type

	ops      chan func()
	done     chan struct{}
	stopOnce sync.Once
}

// NewPeer wraps an established connection. The listener receives session
// events; pass nil to run silently. Call Start before anything else.
func NewPeer(conn net.Conn, cfg Config, listener session.Listener) *Peer {
	p := &Peer{
		id:       uuid.NewString(),
		conn:     conn,
		sess:     session.New(),
		listener: listener,
		offer:    cfg.offer(),
		ops:      make(chan func(), 16),
		done:     make(chan struct{}),
	}

	p.sess.SetReceiveBufferSize(cfg.ReceiveBufferSize)
	p.sess.SetMaxFramePayload(cfg.MaxFramePayload)
	p.sess.SetListener(peerHooks{p})
	p.sess.SetSendHandler(func(data []byte) {
		if _, err := p.conn.Write(data); err != nil {
			p.sess.Fail(err)
		}
	})

	p.ka = keepalive.New(func(fn func()) { p.post(fn) })
	p.ka.SetExpired(cfg.keepAliveExpired())
	p.ka.SetListener(keepAliveHooks{p})

	return p
}

// Dial connects to address, starts the peer and emits the handshake.
func Dial(network, address string, cfg Config, listener session.Listener) (*Peer, error) {
	conn, err := net.Dial(network, address)
	if err != nil {
		return nil, err
	}

	p := NewPeer(conn, cfg, listener)
	p.Start()
	p.Handshake()

	return p, nil
}

// ID returns the peer's unique identifier.
func (p *Peer) ID() string { return p.id }

// Start launches the dispatch loop and read pump and arms the keep-alive
// timers.
func (p *Peer) Start() {
	go p.dispatchLoop()
	go p.readLoop()
	p.ka.Start()
}

// Handshake emits the handshake System frame, offering the configured
// compressors.
func (p *Peer) Handshake() {
	p.do(func() error { return p.sess.Handshake(p.offer...) })
}

// SendText sends a text message.
func (p *Peer) SendText(text string, fin bool) {
	p.do(func() error { return p.sess.SendText(text, fin) })
}

// SendBinary sends a binary message. The data is copied before handoff so
// the caller may reuse the slice.
func (p *Peer) SendBinary(data []byte, fin bool) {
	owned := make([]byte, len(data))
	copy(owned, data)
	p.do(func() error { return p.sess.SendBinary(owned, fin) })
}

// Ping sends a ping frame.
func (p *Peer) Ping() {
	p.post(func() { p.sess.Ping() })
}

// Pong sends a pong frame.
func (p *Peer) Pong() {
	p.post(func() { p.sess.Pong() })
}

// Close initiates the close handshake with the default reason for code.
func (p *Peer) Close(code uint16) {
	p.do(func() error { return p.sess.Close(code) })
}

// CloseWithReason initiates the close handshake with a custom reason.
func (p *Peer) CloseWithReason(code uint16, reason string) {
	p.do(func() error { return p.sess.CloseWithReason(code, reason) })
}

// SetKeepAliveExpired changes the keep-alive interval and restarts both
// timers.
func (p *Peer) SetKeepAliveExpired(d time.Duration) {
	p.ka.SetExpired(d)
	p.ka.Flush()
}

// Shutdown stops the keep-alive timers, closes the connection and
// terminates the dispatch loop. Idempotent. Pending operations that have
// not yet dispatched are dropped.
func (p *Peer) Shutdown() {
	p.stopOnce.Do(func() {
		p.ka.Stop()
		p.conn.Close()
		close(p.done)
	})
}

// post queues fn on the dispatch loop. It reports false when the peer has
// shut down.
func (p *Peer) post(fn func()) bool {
	select {
	case <-p.done:
		return false
	case p.ops <- fn:
		return true
	}
}

// do posts an operation whose error, if any, goes to the listener.
func (p *Peer) do(op func() error) {
	p.post(func() {
		if err := op(); err != nil {
			p.forwardError(err)
		}
	})
}

func (p *Peer) dispatchLoop() {
	for {
		select {
		case <-p.done:
			return
		case fn := <-p.ops:
			fn()
		}
	}
}

func (p *Peer) readLoop() {
	buf := make([]byte, readChunkSize)

	for {
		n, err := p.conn.Read(buf)
		if n > 0 {
			chunk := make([]byte, n)
			copy(chunk, buf[:n])

			if !p.post(func() {
				p.ka.Flush()
				p.sess.Feed(chunk)
			}) {
				return
			}
		}

		if err != nil {
			p.post(func() {
				if st := p.sess.State(); st != session.StateClosed && st != session.StateError {
					p.sess.Fail(err)
				}
				p.Shutdown()
			})
			return
		}
	}
}

func (p *Peer) forwardError(err error) {
	if p.listener != nil {
		p.listener.OnError(err)
	}
}

// peerHooks routes session events to the user listener and adds the
// defaults: a pong is sent before the listener sees a ping, and the peer
// shuts down after the listener has seen a close.
type peerHooks struct{ p *Peer }

func (h peerHooks) OnError(err error) { h.p.forwardError(err) }

func (h peerHooks) OnHandshake(offered []compress.Type) compress.Type {
	if h.p.listener != nil {
		return h.p.listener.OnHandshake(offered)
	}
	return compress.None
}

func (h peerHooks) OnConnected() {
	if h.p.listener != nil {
		h.p.listener.OnConnected()
	}
}

func (h peerHooks) OnClose(code uint16, reason string) {
	if h.p.listener != nil {
		h.p.listener.OnClose(code, reason)
	}
	h.p.Shutdown()
}

func (h peerHooks) OnPing() {
	h.p.sess.Pong()
	if h.p.listener != nil {
		h.p.listener.OnPing()
	}
}

func (h peerHooks) OnPong() {
	if h.p.listener != nil {
		h.p.listener.OnPong()
	}
}

func (h peerHooks) OnText(text string, fin bool) {
	if h.p.listener != nil {
		h.p.listener.OnText(text, fin)
	}
}

func (h peerHooks) OnBinary(data []byte, fin bool) {
	if h.p.listener != nil {
		h.p.listener.OnBinary(data, fin)
	}
}

// keepAliveHooks implements the liveness responses: ping on expiry, close
// and declare dead on timeout.
type keepAliveHooks struct{ p *Peer }

func (h keepAliveHooks) OnKeepAliveExpired() {
	h.p.sess.Ping()
}

func (h keepAliveHooks) OnKeepAliveTimeout() {
	_ = h.p.sess.Close(wire.CloseProtocolError)
	h.p.sess.Fail(keepalive.ErrTimeout)
	h.p.Shutdown()
}
