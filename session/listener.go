package session

import "github.com/vitalvas/wstream/compress"

// Listener receives session events. Implementations typically embed
// NoopListener and override the callbacks they care about.
//
// Callbacks are invoked synchronously from Feed/CommitWrite (inbound
// events) or from the failing operation (errors). The listener must
// outlive the session or be detached with SetListener(nil) first.
type Listener interface {
	// OnError reports faults that have no caller to return to: a failed
	// decompression of an inbound frame, a keep-alive timeout, or a
	// transport error passed to Fail.
	OnError(err error)

	// OnHandshake picks the compression algorithm for the session from the
	// offered types (the intersection of the peer's list with the local
	// registry, in peer order). Returning compress.None, or a type the
	// registry cannot create, leaves the session uncompressed.
	OnHandshake(offered []compress.Type) compress.Type

	// OnConnected fires once the handshake completes.
	OnConnected()

	// OnClose reports the peer's close code and reason. The session is in
	// the Closed state when this fires.
	OnClose(code uint16, reason string)

	OnPing()
	OnPong()

	// OnText delivers a text frame, decompressed when a compressor is
	// active. fin is false when the logical message continues in following
	// frames; reassembly is the caller's concern.
	OnText(text string, fin bool)

	// OnBinary delivers a binary frame. The data slice is only valid for
	// the duration of the call.
	OnBinary(data []byte, fin bool)
}

// NoopListener implements Listener with no-op callbacks. OnHandshake
// declines compression.
type NoopListener struct{}

func (NoopListener) OnError(error)          {}
func (NoopListener) OnConnected()           {}
func (NoopListener) OnClose(uint16, string) {}
func (NoopListener) OnPing()                {}
func (NoopListener) OnPong()                {}
func (NoopListener) OnText(string, bool)    {}
func (NoopListener) OnBinary([]byte, bool)  {}

func (NoopListener) OnHandshake([]compress.Type) compress.Type { return compress.None }
