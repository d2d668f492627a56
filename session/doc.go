// Package session implements the wstream protocol state machine.
//
// A Session is I/O-agnostic: inbound bytes enter through Feed (or the
// PrepareWrite/CommitWrite pair for zero-copy reads) and outbound frames
// leave through an injected send handler. All methods are synchronous and
// never block; callers running a session from multiple goroutines must
// serialize access, which the transport package does by binding each peer
// to a single dispatch goroutine.
//
// Lifecycle:
//
//	Init -> Connecting   local side emits the handshake System frame
//	Init|Connecting -> Connected   a peer System frame is processed
//	Connected -> Closing local side initiates close
//	* -> Closed          a Close frame is received
//	* -> Error           unrecoverable fault (Fail)
//
// Closed and Error are terminal: inbound frames are dropped and sends
// return ErrInvalidState.
//
// The handshake System frame carries a semicolon-separated list of
// compressor names in sender preference order. The receiver intersects the
// list with its local registry, asks its listener to pick one, and — when
// it did not initiate — replies with exactly one System frame echoing the
// selection before transitioning to Connected.
package session
