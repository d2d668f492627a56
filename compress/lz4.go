package compress

import (
	"bytes"
	"io"

	"github.com/pierrec/lz4/v3"
)

// lz4Compressor uses the lz4 frame format so the decompressed size does
// not need to travel out of band.
type lz4Compressor struct{}

func (l *lz4Compressor) Name() string       { return "lz4" }
func (l *lz4Compressor) Type() Type         { return LZ4 }
func (l *lz4Compressor) Create() Compressor { return &lz4Compressor{} }

func (l *lz4Compressor) Compress(src []byte) []byte {
	var buf bytes.Buffer

	zw := lz4.NewWriter(&buf)
	if _, err := zw.Write(src); err != nil {
		return nil
	}
	if err := zw.Close(); err != nil {
		return nil
	}

	return buf.Bytes()
}

func (l *lz4Compressor) Decompress(src []byte) []byte {
	dst, err := io.ReadAll(lz4.NewReader(bytes.NewReader(src)))
	if err != nil {
		return nil
	}
	return dst
}
