package compress

import (
	"bytes"
	"compress/flate"
	"io"
)

// deflateCompressor applies DEFLATE (RFC 1951) with a session-owned writer
// reused across messages.
type deflateCompressor struct {
	fw  *flate.Writer
	buf bytes.Buffer
}

func (d *deflateCompressor) Name() string       { return "deflate" }
func (d *deflateCompressor) Type() Type         { return Deflate }
func (d *deflateCompressor) Create() Compressor { return &deflateCompressor{} }

func (d *deflateCompressor) Compress(src []byte) []byte {
	d.buf.Reset()

	if d.fw == nil {
		fw, err := flate.NewWriter(&d.buf, flate.DefaultCompression)
		if err != nil {
			return nil
		}
		d.fw = fw
	} else {
		d.fw.Reset(&d.buf)
	}

	if _, err := d.fw.Write(src); err != nil {
		return nil
	}
	if err := d.fw.Close(); err != nil {
		return nil
	}

	dst := make([]byte, d.buf.Len())
	copy(dst, d.buf.Bytes())
	return dst
}

func (d *deflateCompressor) Decompress(src []byte) []byte {
	fr := flate.NewReader(bytes.NewReader(src))
	defer fr.Close()

	dst, err := io.ReadAll(fr)
	if err != nil {
		return nil
	}
	return dst
}
