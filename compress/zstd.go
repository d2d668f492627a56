package compress

import (
	"github.com/klauspost/compress/zstd"
)

// zstdCompressor wraps klauspost's zstd with reusable encoder and decoder
// state per session. The prototype registered at startup carries no state;
// Create builds the working instance.
type zstdCompressor struct {
	enc *zstd.Encoder
	dec *zstd.Decoder
}

func (z *zstdCompressor) Name() string { return "zstd" }
func (z *zstdCompressor) Type() Type   { return Zstd }

func (z *zstdCompressor) Create() Compressor {
	enc, err := zstd.NewWriter(nil,
		zstd.WithEncoderLevel(zstd.SpeedDefault),
		zstd.WithEncoderConcurrency(1),
		zstd.WithEncoderCRC(true),
	)
	if err != nil {
		return nil
	}

	dec, err := zstd.NewReader(nil, zstd.WithDecoderConcurrency(1))
	if err != nil {
		enc.Close()
		return nil
	}

	return &zstdCompressor{enc: enc, dec: dec}
}

func (z *zstdCompressor) Compress(src []byte) []byte {
	return z.enc.EncodeAll(src, nil)
}

func (z *zstdCompressor) Decompress(src []byte) []byte {
	dst, err := z.dec.DecodeAll(src, nil)
	if err != nil {
		return nil
	}
	return dst
}
