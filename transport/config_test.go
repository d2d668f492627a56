package transport

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vitalvas/wstream/compress"
	"github.com/vitalvas/wstream/keepalive"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, 8*1024, cfg.ReceiveBufferSize)
	assert.Equal(t, uint64(16<<20), cfg.MaxFramePayload)
	assert.Equal(t, keepalive.DefaultExpired, cfg.keepAliveExpired())
	assert.Nil(t, cfg.offer())
}

func TestLoadConfig(t *testing.T) {
	doc := `
receive_buffer_size: 4096
max_frame_payload: 1048576
keep_alive_expired_sec: 30
compressors:
  - zstd
  - deflate
`

	cfg, err := LoadConfig(strings.NewReader(doc))
	require.NoError(t, err)

	assert.Equal(t, 4096, cfg.ReceiveBufferSize)
	assert.Equal(t, uint64(1<<20), cfg.MaxFramePayload)
	assert.Equal(t, 30*time.Second, cfg.keepAliveExpired())
	assert.Equal(t, []string{"zstd", "deflate"}, cfg.Compressors)
	assert.Equal(t, []compress.Type{compress.Zstd, compress.Deflate}, cfg.offer())
}

func TestLoadConfigPartial(t *testing.T) {
	cfg, err := LoadConfig(strings.NewReader("keep_alive_expired_sec: 5\n"))
	require.NoError(t, err)

	// unset fields keep their defaults
	assert.Equal(t, 8*1024, cfg.ReceiveBufferSize)
	assert.Equal(t, 5*time.Second, cfg.keepAliveExpired())
}

func TestLoadConfigEmpty(t *testing.T) {
	cfg, err := LoadConfig(strings.NewReader(""))
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
}

func TestLoadConfigUnknownField(t *testing.T) {
	_, err := LoadConfig(strings.NewReader("no_such_field: 1\n"))
	assert.Error(t, err)
}

func TestLoadConfigMalformed(t *testing.T) {
	_, err := LoadConfig(strings.NewReader(":\n  - ["))
	assert.Error(t, err)
}

func TestConfigOfferSkipsUnknownNames(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Compressors = []string{"snappy", "lz4"}

	assert.Equal(t, []compress.Type{compress.LZ4}, cfg.offer())
}

func TestConfigKeepAliveFallback(t *testing.T) {
	cfg := DefaultConfig()
	cfg.KeepAliveExpiredSec = 0

	assert.Equal(t, keepalive.DefaultExpired, cfg.keepAliveExpired())
}
