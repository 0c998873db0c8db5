package split

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/proycon/ssam/internal/config"
	"github.com/proycon/ssam/internal/datasource"
	"github.com/proycon/ssam/internal/datasource/file"
	"github.com/proycon/ssam/internal/errs"
)

func seed(v uint64) *uint64 { return &v }

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(p, []byte(content), 0o644))
	return p
}

func readLines(t *testing.T, path string) []string {
	t.Helper()
	b, err := os.ReadFile(path)
	require.NoError(t, err)
	s := strings.TrimSuffix(string(b), "\n")
	if s == "" {
		return nil
	}
	return strings.Split(s, "\n")
}

func numbered(prefix string, n int) string {
	var b strings.Builder
	for i := 0; i < n; i++ {
		fmt.Fprintf(&b, "%s%d\n", prefix, i)
	}
	return b.String()
}

func baseConfig() *config.Config {
	return &config.Config{
		Sizes:     "*",
		Extension: "txt",
		StripBOM:  true,
		Job:       "test",
	}
}

func TestRunTrainRest(t *testing.T) {
	dir := t.TempDir()
	in := writeFile(t, dir, "data.txt", "a\nb\nc\nd\n")
	out := filepath.Join(dir, "out")

	cfg := baseConfig()
	cfg.Inputs = []string{in}
	cfg.Names = []string{"train", "rest"}
	cfg.Sizes = "2,*"
	cfg.OutputDir = out
	cfg.Seed = seed(1)

	sum, err := Run(context.Background(), cfg, Streams{}, nil)
	require.NoError(t, err)
	assert.Equal(t, 4, sum.Read)
	assert.Equal(t, []int{2, 2}, sum.SetSizes)
	assert.Zero(t, sum.Unassigned)
	assert.Equal(t, uint64(1), sum.Seed)

	train := readLines(t, filepath.Join(out, "data.train.txt"))
	rest := readLines(t, filepath.Join(out, "data.rest.txt"))
	require.Len(t, train, 2)
	require.Len(t, rest, 2)

	all := append(append([]string{}, train...), rest...)
	sort.Strings(all)
	assert.Equal(t, []string{"a", "b", "c", "d"}, all)

	// Without shuffle each set keeps input order.
	assert.True(t, sort.StringsAreSorted(train))
	assert.True(t, sort.StringsAreSorted(rest))
}

func TestRunIsDeterministicForSeed(t *testing.T) {
	dir := t.TempDir()
	in := writeFile(t, dir, "corpus.txt", numbered("line", 500))

	run := func(out string) map[string][]byte {
		cfg := baseConfig()
		cfg.Inputs = []string{in}
		cfg.Names = []string{"test", "dev", "train"}
		cfg.Sizes = "50,0.1,*"
		cfg.Shuffle = true
		cfg.Seed = seed(42)
		cfg.OutputDir = out
		_, err := Run(context.Background(), cfg, Streams{}, nil)
		require.NoError(t, err)

		got := map[string][]byte{}
		for _, set := range []string{"test", "dev", "train"} {
			b, err := os.ReadFile(filepath.Join(out, "corpus."+set+".txt"))
			require.NoError(t, err)
			got[set] = b
		}
		return got
	}

	first := run(filepath.Join(dir, "a"))
	second := run(filepath.Join(dir, "b"))
	for set := range first {
		assert.True(t, bytes.Equal(first[set], second[set]), "set %s differs between runs", set)
	}
	assert.Equal(t, 50, strings.Count(string(first["test"]), "\n"))
	assert.Equal(t, 50, strings.Count(string(first["dev"]), "\n"))
	assert.Equal(t, 400, strings.Count(string(first["train"]), "\n"))
}

func TestRunSingleStreamToStdout(t *testing.T) {
	cfg := baseConfig()
	cfg.Shuffle = true
	cfg.Seed = seed(7)

	var stdout bytes.Buffer
	sum, err := Run(context.Background(), cfg, Streams{
		Stdin:  strings.NewReader("x\ny\nz\n"),
		Stdout: &stdout,
	}, nil)
	require.NoError(t, err)
	require.Len(t, sum.Outputs, 1)
	assert.Equal(t, "stdout", sum.Outputs[0].Name)
	assert.Equal(t, 3, sum.Outputs[0].Units)

	lines := strings.Split(strings.TrimSuffix(stdout.String(), "\n"), "\n")
	sort.Strings(lines)
	assert.Equal(t, []string{"x", "y", "z"}, lines)
}

func TestRunDelimitedRoundTrip(t *testing.T) {
	in := "a\nb\n\nc\n"
	cfg := baseConfig()
	cfg.Delimiter = new(string)
	cfg.Seed = seed(3)

	var stdout bytes.Buffer
	_, err := Run(context.Background(), cfg, Streams{Stdin: strings.NewReader(in), Stdout: &stdout}, nil)
	require.NoError(t, err)
	assert.Equal(t, in, stdout.String())
}

func TestRunStdinToFiles(t *testing.T) {
	dir := t.TempDir()
	cfg := baseConfig()
	cfg.Sizes = "1,*"
	cfg.OutputDir = dir
	cfg.Seed = seed(5)

	_, err := Run(context.Background(), cfg, Streams{Stdin: strings.NewReader("p\nq\nr\n")}, nil)
	require.NoError(t, err)
	assert.Len(t, readLines(t, filepath.Join(dir, "out.set1.txt")), 1)
	assert.Len(t, readLines(t, filepath.Join(dir, "out.set2.txt")), 2)
}

// TestRunExcludeKeepsColumnsAligned pins the union policy: a row matched in
// either column is dropped from both.
func TestRunExcludeKeepsColumnsAligned(t *testing.T) {
	dir := t.TempDir()
	src := writeFile(t, dir, "src.txt", numbered("s", 6))
	tgt := writeFile(t, dir, "tgt.txt", numbered("t", 6))
	refSrc := writeFile(t, dir, "ref.src", "s1\nunrelated\n")
	refTgt := writeFile(t, dir, "ref.tgt", "t2\n")
	out := filepath.Join(dir, "out")

	cfg := baseConfig()
	cfg.Inputs = []string{src, tgt}
	cfg.Names = []string{"all"}
	cfg.Exclude = []string{refSrc, refTgt}
	cfg.OutputDir = out
	cfg.Seed = seed(9)

	sum, err := Run(context.Background(), cfg, Streams{}, nil)
	require.NoError(t, err)
	assert.Equal(t, 6, sum.Read)
	assert.Equal(t, 2, sum.Excluded)

	gotSrc := readLines(t, filepath.Join(out, "src.all.txt"))
	gotTgt := readLines(t, filepath.Join(out, "tgt.all.txt"))
	assert.Equal(t, []string{"s0", "s3", "s4", "s5"}, gotSrc)
	require.Len(t, gotTgt, len(gotSrc))
	for i := range gotSrc {
		assert.Equal(t, "t"+gotSrc[i][1:], gotTgt[i], "row %d misaligned", i)
	}
}

func TestRunNoRemainderLeavesUnitsOut(t *testing.T) {
	dir := t.TempDir()
	in := writeFile(t, dir, "d.txt", numbered("u", 10))

	cfg := baseConfig()
	cfg.Inputs = []string{in}
	cfg.Sizes = "3,2"
	cfg.OutputDir = dir
	cfg.Seed = seed(11)

	sum, err := Run(context.Background(), cfg, Streams{}, nil)
	require.NoError(t, err)
	assert.Equal(t, 5, sum.Unassigned)
	assert.Len(t, readLines(t, filepath.Join(dir, "d.set1.txt")), 3)
	assert.Len(t, readLines(t, filepath.Join(dir, "d.set2.txt")), 2)
}

func TestRunWithReplacement(t *testing.T) {
	dir := t.TempDir()
	in := writeFile(t, dir, "d.txt", "a\nb\n")

	cfg := baseConfig()
	cfg.Inputs = []string{in}
	cfg.Sizes = "5,7"
	cfg.Replace = true
	cfg.OutputDir = dir
	cfg.Seed = seed(13)

	sum, err := Run(context.Background(), cfg, Streams{}, nil)
	require.NoError(t, err)
	assert.Equal(t, []int{5, 7}, sum.SetSizes)
	assert.Len(t, readLines(t, filepath.Join(dir, "d.set1.txt")), 5)
	assert.Len(t, readLines(t, filepath.Join(dir, "d.set2.txt")), 7)
}

func TestRunErrors(t *testing.T) {
	dir := t.TempDir()
	four := writeFile(t, dir, "four.txt", "a\nb\nc\nd\n")
	three := writeFile(t, dir, "three.txt", "a\nb\nc\n")
	empty := writeFile(t, dir, "empty.txt", "")
	ref := writeFile(t, dir, "ref.txt", "a\nb\nc\nd\n")

	tests := []struct {
		name   string
		mutate func(c *config.Config)
		kind   error
		exit   int
	}{
		{"two remainders", func(c *config.Config) { c.Inputs = []string{four}; c.Sizes = "*,*" }, errs.ErrConfig, 1},
		{"bad size", func(c *config.Config) { c.Inputs = []string{four}; c.Sizes = "abc" }, errs.ErrConfig, 1},
		{"capacity", func(c *config.Config) { c.Inputs = []string{four}; c.Sizes = "3,2" }, errs.ErrCapacity, 1},
		{"capacity sum overflow", func(c *config.Config) { c.Inputs = []string{four}; c.Sizes = "9223372036854775807,1,*" }, errs.ErrCapacity, 1},
		{"capacity huge fraction", func(c *config.Config) { c.Inputs = []string{four}; c.Sizes = "100000000000000000000.0" }, errs.ErrCapacity, 1},
		{"replacement limit", func(c *config.Config) {
			c.Inputs = []string{four}
			c.Sizes = "9223372036854775807"
			c.Replace = true
		}, errs.ErrCapacity, 1},
		{"unequal columns", func(c *config.Config) { c.Inputs = []string{four, three} }, errs.ErrConsistency, 1},
		{"empty input", func(c *config.Config) { c.Inputs = []string{empty} }, errs.ErrConsistency, 1},
		{"missing input", func(c *config.Config) { c.Inputs = []string{filepath.Join(dir, "nope.txt")} }, errs.ErrIO, 1},
		{"exclude count", func(c *config.Config) { c.Inputs = []string{four, four}; c.Exclude = []string{ref} }, errs.ErrConfig, 1},
		{"all excluded", func(c *config.Config) { c.Inputs = []string{four}; c.Exclude = []string{ref} }, errs.ErrConsistency, 1},
		{"missing reference", func(c *config.Config) {
			c.Inputs = []string{four}
			c.Exclude = []string{filepath.Join(dir, "nope.ref")}
		}, errs.ErrIO, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := baseConfig()
			cfg.OutputDir = filepath.Join(dir, "out-"+strings.ReplaceAll(tt.name, " ", "-"))
			cfg.Seed = seed(1)
			tt.mutate(cfg)

			_, err := Run(context.Background(), cfg, Streams{}, nil)
			require.Error(t, err)
			assert.True(t, errors.Is(err, tt.kind), "got %v", err)
			assert.Equal(t, tt.exit, errs.ExitCode(err))

			// Nothing is written on failure.
			_, statErr := os.Stat(cfg.OutputDir)
			assert.True(t, os.IsNotExist(statErr), "output directory created for failed run")
		})
	}
}

func TestRunCanceledContext(t *testing.T) {
	dir := t.TempDir()
	in := writeFile(t, dir, "d.txt", "a\n")
	cfg := baseConfig()
	cfg.Inputs = []string{in}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := Run(ctx, cfg, Streams{}, nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestOutputPrefixes(t *testing.T) {
	local := func(paths ...string) []datasource.Source {
		srcs := make([]datasource.Source, len(paths))
		for i, p := range paths {
			srcs[i] = file.NewLocal(p, file.Options{})
		}
		return srcs
	}

	got, err := outputPrefixes("", local("data/train.src", "data/train.tgt"))
	require.NoError(t, err)
	assert.Equal(t, []string{"train.src", "train.tgt"}, got)

	got, err = outputPrefixes("out", local("a/x.txt", "b/y.txt"))
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join("out", "x"), filepath.Join("out", "y")}, got)

	got, err = outputPrefixes("", []datasource.Source{file.NewStdin(strings.NewReader(""), file.Options{})})
	require.NoError(t, err)
	assert.Equal(t, []string{"out"}, got)

	_, err = outputPrefixes("", local("a/x.txt", "b/x.txt"))
	require.Error(t, err)
	assert.ErrorIs(t, err, errs.ErrConfig)
}
