package file

import (
	"io"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

type bomReader struct {
	io.Reader
	c io.Closer
}

func (b bomReader) Close() error { return b.c.Close() }

// withBOM decodes rc according to its byte order mark, if any. Input
// without a BOM passes through unchanged.
func withBOM(rc io.ReadCloser) io.ReadCloser {
	dec := unicode.BOMOverride(transform.Nop)
	return bomReader{Reader: transform.NewReader(rc, dec), c: rc}
}
