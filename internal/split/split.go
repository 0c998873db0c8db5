// Package split runs one sampling job end to end: it loads the input
// columns, drops excluded rows, assigns the remaining rows to sets and writes
// every set out.
package split

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"golang.org/x/sync/errgroup"

	"github.com/proycon/ssam/internal/config"
	"github.com/proycon/ssam/internal/datasource"
	"github.com/proycon/ssam/internal/datasource/file"
	"github.com/proycon/ssam/internal/emit"
	"github.com/proycon/ssam/internal/errs"
	"github.com/proycon/ssam/internal/fingerprint"
	"github.com/proycon/ssam/internal/metrics"
	"github.com/proycon/ssam/internal/sampler"
	"github.com/proycon/ssam/internal/segment"
)

// Output describes one written destination.
type Output struct {
	Name  string
	Units int
}

// Summary reports what a run did.
type Summary struct {
	Seed       uint64
	Read       int // rows per column after loading
	Excluded   int
	Unassigned int
	Names      []string
	SetSizes   []int
	Outputs    []Output
}

// Streams are the process streams a run may use. Stdin is read only when no
// input files are configured; Stdout only receives data in the single-stream
// case.
type Streams struct {
	Stdin  io.Reader
	Stdout io.Writer
}

// Run executes cfg. Nothing is written before the assignment has succeeded.
func Run(ctx context.Context, cfg *config.Config, streams Streams, log *slog.Logger) (Summary, error) {
	var sum Summary
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	job := cfg.Job
	opts := file.Options{MMap: cfg.MMap, StripBOM: cfg.StripBOM}

	// Sizes and names are checked before any input is read.
	specs, err := sampler.ParseSpecs(cfg.Sizes)
	if err != nil {
		return sum, err
	}
	names, extra := sampler.Names(cfg.Names, specs)
	if len(extra) > 0 {
		log.Warn("more set names than set sizes; ignoring surplus names", "ignored", strings.Join(extra, ","))
	}
	sum.Names = names
	if len(cfg.Exclude) > 0 && len(cfg.Exclude) != cfg.Columns() {
		return sum, errs.Config("exclude",
			"%d exclude files given for %d input columns", len(cfg.Exclude), cfg.Columns())
	}

	// load
	srcs := inputSources(cfg, streams.Stdin, opts)
	start := time.Now()
	columns, err := loadColumns(ctx, srcs, cfg.Delimiter)
	if err == nil {
		err = checkColumns(srcs, columns)
	}
	metrics.RecordStep(job, "load", err, time.Since(start))
	if err != nil {
		return sum, err
	}
	sum.Read = len(columns[0])
	metrics.RecordUnits(job, metrics.KindRead, int64(sum.Read))
	log.Debug("loaded input", "columns", len(columns), "units", humanize.Comma(int64(sum.Read)))

	// exclude
	if len(cfg.Exclude) > 0 {
		start = time.Now()
		var removed []int
		columns, removed, err = exclude(ctx, cfg.Exclude, columns, cfg.Delimiter, opts)
		if err == nil && len(columns[0]) == 0 {
			err = errs.Consistency("exclude", "all %d units were excluded", sum.Read)
		}
		metrics.RecordStep(job, "exclude", err, time.Since(start))
		if err != nil {
			return sum, err
		}
		sum.Excluded = len(removed)
		metrics.RecordUnits(job, metrics.KindExcluded, int64(sum.Excluded))
		log.Info("excluded units found in reference", "excluded", humanize.Comma(int64(sum.Excluded)),
			"remaining", humanize.Comma(int64(len(columns[0]))))
	}
	n := len(columns[0])

	// assign
	start = time.Now()
	targets, err := specs.Resolve(n, cfg.Replace)
	if err != nil {
		metrics.RecordStep(job, "assign", err, time.Since(start))
		return sum, err
	}
	rng, seed := sampler.NewRNG(cfg.Seed)
	sum.Seed = seed
	log.Debug("sampling", "seed", seed, "sizes", specs.String(), "targets", targets, "replace", cfg.Replace)

	assignment := sampler.Assign(rng, n, specs, targets, cfg.Replace)
	order := sampler.Order(rng, n, cfg.Shuffle)
	metrics.RecordStep(job, "assign", nil, time.Since(start))

	sum.SetSizes = assignment.SetSizes(specs.Len())
	sum.Unassigned = assignment.Unassigned()
	assigned := 0
	for _, s := range sum.SetSizes {
		assigned += s
	}
	metrics.RecordUnits(job, metrics.KindAssigned, int64(assigned))
	metrics.RecordUnits(job, metrics.KindUnassigned, int64(sum.Unassigned))
	if sum.Unassigned > 0 {
		log.Info("notice: units not covered by any of the output sets", "unassigned", humanize.Comma(int64(sum.Unassigned)))
	}

	// emit
	start = time.Now()
	outputs, err := emitAll(cfg, srcs, names, columns, assignment, order, streams.Stdout, log)
	metrics.RecordStep(job, "emit", err, time.Since(start))
	sum.Outputs = outputs
	if err != nil {
		return sum, err
	}
	written := 0
	for _, o := range outputs {
		written += o.Units
	}
	metrics.RecordUnits(job, metrics.KindWritten, int64(written))
	return sum, nil
}

func inputSources(cfg *config.Config, stdin io.Reader, opts file.Options) []datasource.Source {
	if len(cfg.Inputs) == 0 {
		return []datasource.Source{file.NewStdin(stdin, opts)}
	}
	srcs := make([]datasource.Source, len(cfg.Inputs))
	for i, p := range cfg.Inputs {
		srcs[i] = file.NewLocal(p, opts)
	}
	return srcs
}

// loadColumns segments every source concurrently. Each source fills its own
// slot, so the result does not depend on scheduling.
func loadColumns(ctx context.Context, srcs []datasource.Source, delim *string) ([][]string, error) {
	columns := make([][]string, len(srcs))
	g, ctx := errgroup.WithContext(ctx)
	for i, src := range srcs {
		g.Go(func() error {
			units, err := readUnits(ctx, src, delim)
			if err != nil {
				return err
			}
			columns[i] = units
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return columns, nil
}

func readUnits(ctx context.Context, src datasource.Source, delim *string) ([]string, error) {
	rc, err := src.Open(ctx)
	if err != nil {
		return nil, errs.IO("open input", err)
	}
	defer rc.Close()

	units, err := segment.Segment(rc, delim)
	if err != nil {
		return nil, errs.IO("read "+src.Name(), err)
	}
	return units, nil
}

func checkColumns(srcs []datasource.Source, columns [][]string) error {
	for i, col := range columns {
		if len(col) == 0 {
			return errs.Consistency("load", "no units found in %s", srcs[i].Name())
		}
		if len(col) != len(columns[0]) {
			return errs.Consistency("load", "%s has %d units but %s has %d; columns must be aligned",
				srcs[i].Name(), len(col), srcs[0].Name(), len(columns[0]))
		}
	}
	return nil
}

// exclude loads one reference per column and removes matching rows from all
// columns.
func exclude(ctx context.Context, paths []string, columns [][]string, delim *string, opts file.Options) ([][]string, []int, error) {
	refs := make([]*fingerprint.Index, len(paths))
	g, ctx := errgroup.WithContext(ctx)
	for i, p := range paths {
		g.Go(func() error {
			units, err := readUnits(ctx, file.NewLocal(p, opts), delim)
			if err != nil {
				return err
			}
			refs[i] = fingerprint.NewIndex(units)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}
	return fingerprint.Exclude(columns, refs)
}

func emitAll(cfg *config.Config, srcs []datasource.Source, names []string, columns [][]string,
	a sampler.Assignment, order []int, stdout io.Writer, log *slog.Logger) ([]Output, error) {
	var (
		dst *emit.Destinations
		err error
	)
	if len(columns) == 1 && len(names) == 1 {
		dst = emit.Single("stdout", stdout)
	} else {
		prefixes, perr := outputPrefixes(cfg.OutputDir, srcs)
		if perr != nil {
			return nil, perr
		}
		if dst, err = emit.OpenFiles(prefixes, names, cfg.Extension); err != nil {
			return nil, err
		}
	}
	for i := 0; i < dst.Len(); i++ {
		log.Debug("writing", "destination", dst.Name(i))
	}

	counts, err := emit.Write(dst, columns, a, order, cfg.Delimiter)
	if cerr := dst.Close(); err == nil {
		err = cerr
	}
	outputs := make([]Output, dst.Len())
	for i := range outputs {
		outputs[i] = Output{Name: dst.Name(i), Units: counts[i]}
	}
	if err != nil {
		return outputs, err
	}
	for _, o := range outputs {
		log.Info("wrote", "destination", o.Name, "units", humanize.Comma(int64(o.Units)))
	}
	return outputs, nil
}

// outputPrefixes derives one file prefix per column: the output directory
// joined with the input's file stem. Parallel inputs often share a stem
// (corpus.en, corpus.nl); in that case the full base names are used instead.
func outputPrefixes(dir string, srcs []datasource.Source) ([]string, error) {
	stems := make([]string, len(srcs))
	for i, src := range srcs {
		stems[i] = stem(src.Name())
	}
	if !unique(stems) {
		for i, src := range srcs {
			stems[i] = filepath.Base(src.Name())
		}
		if !unique(stems) {
			return nil, errs.Config("output", "input files %s would write the same output files",
				strings.Join(stems, ","))
		}
	}
	for i := range stems {
		if dir != "" {
			stems[i] = filepath.Join(dir, stems[i])
		}
	}
	return stems, nil
}

func stem(path string) string {
	base := filepath.Base(path)
	if s := strings.TrimSuffix(base, filepath.Ext(base)); s != "" {
		return s
	}
	return base
}

func unique(xs []string) bool {
	seen := make(map[string]struct{}, len(xs))
	for _, x := range xs {
		if _, ok := seen[x]; ok {
			return false
		}
		seen[x] = struct{}{}
	}
	return true
}
