// Package gzipcodec provides a gzip snapshot codec.
package gzipcodec

import (
	"compress/gzip"
	"io"

	"github.com/discochess/lrucache/internal/codec"
)

// Compile-time check that Codec implements codec.Codec.
var _ codec.Codec = (*Codec)(nil)

// Codec implements gzip compression.
type Codec struct {
	level int
}

// New returns a gzip codec using gzip.DefaultCompression.
func New() *Codec {
	return &Codec{level: gzip.DefaultCompression}
}

// NewLevel returns a gzip codec with the given compression level.
func NewLevel(level int) *Codec {
	return &Codec{level: level}
}

// Reader wraps r to decompress gzip data.
func (c *Codec) Reader(r io.Reader) (io.ReadCloser, error) {
	gr, err := gzip.NewReader(r)
	if err != nil {
		return nil, err
	}
	return gr, nil
}

// Writer wraps w to compress data with gzip.
// An invalid level is reported here rather than at construction.
func (c *Codec) Writer(w io.Writer) (io.WriteCloser, error) {
	gw, err := gzip.NewWriterLevel(w, c.level)
	if err != nil {
		return nil, err
	}
	return gw, nil
}

// Name returns "gzip".
func (c *Codec) Name() string {
	return "gzip"
}
