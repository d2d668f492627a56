package transport

import (
	"fmt"
	"io"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/vitalvas/wstream/compress"
	"github.com/vitalvas/wstream/keepalive"
)

// Config carries the tunables of a peer. The zero value is not usable;
// start from DefaultConfig.
type Config struct {
	// ReceiveBufferSize is the initial size of the session receive buffer
	// in bytes. The buffer still grows past it when a frame requires more.
	ReceiveBufferSize int `yaml:"receive_buffer_size"`

	// MaxFramePayload bounds the payload length a single inbound frame may
	// announce. Exceeding it is fatal for the session. Zero disables the
	// bound.
	MaxFramePayload uint64 `yaml:"max_frame_payload"`

	// KeepAliveExpiredSec is the keep-alive interval in seconds. The dead
	// connection timeout is always three times this interval.
	KeepAliveExpiredSec int64 `yaml:"keep_alive_expired_sec"`

	// Compressors lists the compressor names offered in the handshake, in
	// preference order. Empty means offer everything registered.
	Compressors []string `yaml:"compressors"`
}

// DefaultConfig returns the standard tunables: an 8 KiB receive buffer, a
// 16 MiB frame bound and the default keep-alive interval.
func DefaultConfig() Config {
	return Config{
		ReceiveBufferSize:   8 * 1024,
		MaxFramePayload:     16 << 20,
		KeepAliveExpiredSec: int64(keepalive.DefaultExpired / time.Second),
	}
}

// LoadConfig reads a YAML document, overlaying it on DefaultConfig.
func LoadConfig(r io.Reader) (Config, error) {
	cfg := DefaultConfig()

	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	if err := dec.Decode(&cfg); err != nil {
		if err == io.EOF {
			return cfg, nil
		}
		return Config{}, fmt.Errorf("transport: parse config: %w", err)
	}

	return cfg, nil
}

// keepAliveExpired returns the configured interval as a duration.
func (c Config) keepAliveExpired() time.Duration {
	if c.KeepAliveExpiredSec <= 0 {
		return keepalive.DefaultExpired
	}
	return time.Duration(c.KeepAliveExpiredSec) * time.Second
}

// offer resolves the configured compressor names to types. Unknown names
// are skipped; nil means offer all registered compressors.
func (c Config) offer() []compress.Type {
	if len(c.Compressors) == 0 {
		return nil
	}
	return compress.TypesOf(strings.Join(c.Compressors, ";"))
}
