package file

import (
	"context"
	"io"
	"os"
)

// StdinName is the output stem used for data read from standard input.
const StdinName = "out"

// Stdin reads a single column from standard input (or any reader, in
// tests). Close does not close the underlying reader.
type Stdin struct {
	r    io.Reader
	opts Options
}

// NewStdin returns a source over os.Stdin when r is nil.
func NewStdin(r io.Reader, opts Options) *Stdin {
	if r == nil {
		r = os.Stdin
	}
	return &Stdin{r: r, opts: opts}
}

// Name returns StdinName.
func (s *Stdin) Name() string { return StdinName }

// Open returns the reader; MMap does not apply to streams.
func (s *Stdin) Open(ctx context.Context) (io.ReadCloser, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	rc := io.NopCloser(s.r)
	if s.opts.StripBOM {
		rc = withBOM(rc)
	}
	return rc, nil
}
