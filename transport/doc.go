// Package transport binds a wstream session to a net.Conn.
//
// Each Peer owns a session, a keep-alive manager and two goroutines: a
// read pump that feeds received bytes to the session, and a dispatch loop
// that serializes all session access — timer callbacks, inbound chunks and
// caller operations all run on that single goroutine, so the session never
// sees concurrent calls. Peer methods may be called from any goroutine;
// they post onto the dispatch loop and report failures through the
// listener's OnError.
//
// The keep-alive manager is flushed on every successful read, so genuine
// inbound traffic resets liveness. When the expired timer fires the peer
// sends a ping; when the timeout timer fires the peer closes with
// CloseProtocolError, shuts the connection down and surfaces
// keepalive.ErrTimeout.
//
// Dial connects as the initiating side and emits the handshake once the
// connection is up. For the accepting side, hand the accepted net.Conn to
// NewPeer and Start it; the session replies to the peer's handshake
// automatically.
package transport
