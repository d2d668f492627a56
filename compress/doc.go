// Package compress provides the pluggable payload compression used by
// wstream sessions.
//
// Algorithms register a prototype Compressor with the process-wide
// registry at startup; the handshake advertises the registered names as a
// semicolon-separated list (for example "zstd;lz4;deflate") and each
// session obtains a fresh instance of the negotiated algorithm via New.
//
// Registered backends:
//   - zstd (github.com/klauspost/compress/zstd)
//   - lz4 (github.com/pierrec/lz4/v3)
//   - deflate (compress/flate)
//
// Compress and Decompress return nil to signal failure; a session treats a
// nil result as a compression error.
package compress
