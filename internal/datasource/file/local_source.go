// Package file implements local filesystem and standard-input data sources.
package file

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"

	"github.com/edsrzf/mmap-go"
)

// Options tune how inputs are read.
type Options struct {
	// MMap maps regular files into memory instead of streaming them.
	MMap bool
	// StripBOM decodes according to a leading byte order mark: a UTF-8 BOM is
	// dropped and UTF-16 input is transcoded to UTF-8.
	StripBOM bool
}

// Local is a filesystem data source that opens files from the local disk.
type Local struct {
	path string
	opts Options
}

// NewLocal returns a new Local data source bound to the provided filesystem
// path.
func NewLocal(path string, opts Options) *Local { return &Local{path: path, opts: opts} }

// Name returns the path.
func (l *Local) Name() string { return l.path }

// Open opens the configured path for reading.
//
// A context that is already done short-circuits without touching the
// filesystem. Filesystem errors are wrapped with the path and still satisfy
// errors.Is(err, os.ErrNotExist) and friends.
func (l *Local) Open(ctx context.Context) (io.ReadCloser, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}
	f, err := os.Open(l.path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", l.path, err)
	}

	var rc io.ReadCloser = f
	if l.opts.MMap {
		if rc, err = mapFile(f); err != nil {
			_ = f.Close()
			return nil, fmt.Errorf("mmap %s: %w", l.path, err)
		}
	} else {
		adviseSequential(f)
	}
	if l.opts.StripBOM {
		rc = withBOM(rc)
	}
	return rc, nil
}

// mapped serves a read-only memory map and releases it on Close.
type mapped struct {
	*bytes.Reader
	m mmap.MMap
	f *os.File
}

func (m *mapped) Close() error {
	var err error
	if m.m != nil {
		err = m.m.Unmap()
	}
	if cerr := m.f.Close(); err == nil {
		err = cerr
	}
	return err
}

// mapFile maps f. Empty and non-regular files cannot be mapped and are
// returned as plain streaming readers.
func mapFile(f *os.File) (io.ReadCloser, error) {
	st, err := f.Stat()
	if err != nil {
		return nil, err
	}
	if !st.Mode().IsRegular() {
		return f, nil
	}
	if st.Size() == 0 {
		return &mapped{Reader: bytes.NewReader(nil), f: f}, nil
	}
	m, err := mmap.Map(f, mmap.RDONLY, 0)
	if err != nil {
		return nil, err
	}
	return &mapped{Reader: bytes.NewReader(m), m: m, f: f}, nil
}
