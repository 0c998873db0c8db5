// Package datasource defines where raw input bytes come from.
package datasource

import (
	"context"
	"io"
)

// Source opens a fresh reader over its input.
type Source interface {
	Open(ctx context.Context) (io.ReadCloser, error)
	// Name identifies the source in diagnostics and output file names.
	Name() string
}
