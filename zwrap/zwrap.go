// Package zwrap wraps a stream so that, if it is gzip compressed, the
// caller reads the decompressed bytes, and Close closes the
// decompressor followed by the underlying source. Annotation servers
// hand out both plain and gzipped files, and a BinaryCIF payload must
// not be mistaken for either, so the decision is made by sniffing the
// two magic bytes rather than by trying the decompressor and seeking
// back.
package zwrap

import (
	"bufio"
	"bytes"
	"compress/gzip"
	"errors"
	"io"
)

// Reader is what we return. The zrdr is nil when the source was not
// compressed.
type Reader struct {
	src  io.ReadCloser
	buf  *bufio.Reader
	zrdr *gzip.Reader
}

// Read reads from the compressed stream if there is one, otherwise
// straight from the buffered source.
func (r *Reader) Read(p []byte) (int, error) {
	if r.zrdr != nil {
		return r.zrdr.Read(p)
	}
	return r.buf.Read(p)
}

// Close closes the decompressor, then the backing source. It should
// work whether the source is a file or an http stream.
func (r *Reader) Close() error {
	var s string
	if r.zrdr != nil {
		if e := r.zrdr.Close(); e != nil {
			s = e.Error()
		}
	}
	if e := r.src.Close(); e != nil {
		s = s + " " + e.Error()
	}
	if s == "" {
		return nil
	}
	return errors.New(s)
}

// WrapMaybe decides whether the stream is gzipped and wraps it if so.
func WrapMaybe(src io.ReadCloser) (*Reader, error) {
	r := &Reader{src: src, buf: bufio.NewReader(src)}
	magic, err := r.buf.Peek(2)
	if err != nil {
		// Too short to be gzipped. Hand back the source as is and
		// let the caller's parser complain.
		return r, nil
	}
	if magic[0] == 0x1f && magic[1] == 0x8b {
		if r.zrdr, err = gzip.NewReader(r.buf); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// Decompress does the same job for a payload already in memory.
func Decompress(b []byte) ([]byte, error) {
	if len(b) < 2 || b[0] != 0x1f || b[1] != 0x8b {
		return b, nil
	}
	zr, err := gzip.NewReader(bytes.NewReader(b))
	if err != nil {
		return nil, err
	}
	defer zr.Close()
	return io.ReadAll(zr)
}
