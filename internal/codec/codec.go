// Package codec provides whole-file compression for persisted snapshots.
package codec

import "io"

// Codec wraps the byte stream of a snapshot file.
type Codec interface {
	// Reader wraps r to decode data read from it.
	Reader(r io.Reader) (io.ReadCloser, error)
	// Writer wraps w to encode data written to it.
	// Close must be called to flush the encoded stream.
	Writer(w io.Writer) (io.WriteCloser, error)
	// Name identifies the codec in logs and configuration ("none", "gzip", "zstd").
	Name() string
}
