// Package emit writes assigned units to their destinations.
//
// Destinations are a flat, indexed collection of sinks addressed by
// (column, set). The common single-column, single-set case is the same
// collection with one slot that every address maps to, so the writer has a
// single code path for files and for standard output.
package emit

import (
	"bufio"
	"io"
	"os"
	"path/filepath"

	"github.com/proycon/ssam/internal/errs"
)

const writeBufSize = 1 << 20

type sink struct {
	name string
	w    *bufio.Writer
	c    io.Closer // nil for borrowed writers such as stdout
}

// Destinations is the set of output sinks of one run.
type Destinations struct {
	sinks   []sink
	numSets int
	single  bool
}

// Single routes every (column, set) to w. w is flushed but not closed by
// Close.
func Single(name string, w io.Writer) *Destinations {
	return &Destinations{
		sinks:   []sink{{name: name, w: bufio.NewWriterSize(w, writeBufSize)}},
		numSets: 1,
		single:  true,
	}
}

// FileName is the output path for one column prefix and set name.
func FileName(prefix, set, ext string) string {
	return prefix + "." + set + "." + ext
}

// OpenFiles creates one file per (prefix, set) pair, named by FileName, in
// prefix-major order. Parent directories are created as needed. On error
// every file opened so far is closed.
func OpenFiles(prefixes, sets []string, ext string) (*Destinations, error) {
	d := &Destinations{numSets: len(sets)}
	for _, p := range prefixes {
		for _, s := range sets {
			name := FileName(p, s, ext)
			if dir := filepath.Dir(name); dir != "." {
				if err := os.MkdirAll(dir, 0o755); err != nil {
					_ = d.Close()
					return nil, errs.IO("create output directory", err)
				}
			}
			f, err := os.Create(name)
			if err != nil {
				_ = d.Close()
				return nil, errs.IO("create output", err)
			}
			d.sinks = append(d.sinks, sink{name: name, w: bufio.NewWriterSize(f, writeBufSize), c: f})
		}
	}
	return d, nil
}

// Len is the number of sinks.
func (d *Destinations) Len() int { return len(d.sinks) }

// Name is the display name of sink i.
func (d *Destinations) Name(i int) string { return d.sinks[i].name }

// Slot returns the sink index for (column, set).
func (d *Destinations) Slot(column, set int) (int, error) {
	if d.single {
		return 0, nil
	}
	if set < 0 || set >= d.numSets {
		return 0, errs.Invariant("route", "no destination for set %d of column %d", set, column+1)
	}
	i := column*d.numSets + set
	if column < 0 || i >= len(d.sinks) {
		return 0, errs.Invariant("route", "no destination for set %d of column %d (offset %d)", set, column+1, column*d.numSets)
	}
	return i, nil
}

// Close flushes every sink and closes the ones it opened. The first error is
// returned.
func (d *Destinations) Close() error {
	var first error
	for _, s := range d.sinks {
		if err := s.w.Flush(); err != nil && first == nil {
			first = errs.IO("flush "+s.name, err)
		}
		if s.c != nil {
			if err := s.c.Close(); err != nil && first == nil {
				first = errs.IO("close "+s.name, err)
			}
		}
	}
	return first
}
