// Package config centralizes ssam configuration. All tunables come from
// command-line flags with environment-variable fallbacks, so the same run can
// be described on the command line, in the environment, or in a .env file.
//
// Typical usage:
//
//	cfg, err := config.Load() // reads .env, os.Args and os.Environ
//
// For tests, prefer LoadFromArgs to keep them hermetic:
//
//	fs := flag.NewFlagSet("test", flag.ContinueOnError)
//	getenv := func(k string) string { return testEnv[k] }
//	cfg, err := config.LoadFromArgs(fs, getenv, []string{"-sizes=100,*"})
package config

import (
	"errors"
	"flag"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"

	"github.com/proycon/ssam/internal/errs"
)

// Config holds all process configuration derived from flags and environment
// variables. It is not mutated after LoadFromArgs returns.
type Config struct {
	// Inputs are the positional input files; empty means standard input.
	Inputs []string
	// Delimiter separates multi-line units; nil means one unit per line.
	Delimiter *string
	// Names are the output set names, aligned with Sizes.
	Names []string
	// Sizes is the raw comma-separated size list ("*" remainder, "0.1"
	// fraction, "100" count). Empty means "*".
	Sizes string
	// Replace enables sampling with replacement.
	Replace bool
	// Shuffle reorders emitted units.
	Shuffle bool
	// Seed fixes the random generator; nil means a process-random seed.
	Seed *uint64
	// Exclude lists reference files, one per input column.
	Exclude []string
	// OutputDir is where generated files go; empty is the working directory.
	OutputDir string
	// Extension is the generated file extension.
	Extension string

	// Input reading toggles.
	MMap     bool
	StripBOM bool

	// ValidateOnly validates the configuration and exits.
	ValidateOnly bool
	// Verbose enables debug diagnostics.
	Verbose bool

	// Metrics backend selection: "none", "pushgateway" or "datadog".
	MetricsBackend string
	PushgatewayURL string
	DogStatsDAddr  string
	// Job names the run in metrics.
	Job string
}

// Columns is the number of input columns the configuration describes.
func (c *Config) Columns() int {
	if len(c.Inputs) == 0 {
		return 1
	}
	return len(c.Inputs)
}

// optString is a string flag that remembers whether it was set, so that an
// explicitly empty value can be told apart from an absent one.
type optString struct{ v *string }

func (o *optString) String() string {
	if o == nil || o.v == nil {
		return ""
	}
	return *o.v
}

func (o *optString) Set(s string) error {
	o.v = &s
	return nil
}

// LoadFromArgs builds a Config by defining flags on fs, wiring each flag to
// an environment-variable fallback via getenv, and then parsing args.
//
// Precedence:
//  1. Environment values seed each flag's default.
//  2. Explicit CLI flags (in args) override the seeded defaults.
//
// Remaining positional arguments become Inputs. Flag syntax errors and an
// unparsable seed are returned as configuration errors.
func LoadFromArgs(fs *flag.FlagSet, getenv func(string) string, args []string) (*Config, error) {
	cfg := &Config{}

	envOrDefaultFn := func(k, d string) string {
		if v := getenv(k); v != "" {
			return v
		}
		return d
	}
	boolEnvOrDefaultFn := func(k string, d bool) bool {
		if v := strings.ToLower(getenv(k)); v != "" {
			switch v {
			case "1", "true", "yes", "on":
				return true
			case "0", "false", "no", "off":
				return false
			}
		}
		return d
	}

	var (
		delim      optString
		blankLines bool
		noDelim    bool
		names      string
		exclude    string
		seed       string
	)
	if v := getenv("SSAM_DELIMITER"); v != "" {
		delim.v = &v
	}

	// Sampling
	fs.Var(&delim, "delimiter", "Delimiter line that separates units; empty means a blank line. Unset: every line is a unit.")
	fs.Var(&delim, "d", "Shorthand for -delimiter")
	fs.BoolVar(&blankLines, "blank-lines", boolEnvOrDefaultFn("SSAM_BLANK_LINES", false), "Units are separated by blank lines (same as -delimiter=''; SSAM_DELIMITER cannot be empty)")
	fs.BoolVar(&noDelim, "no-delimiter", false, "Every line is a unit, overriding SSAM_DELIMITER and SSAM_BLANK_LINES")
	fs.StringVar(&names, "names", getenv("SSAM_NAMES"), "Comma separated set names, e.g. train,test,dev (default set1,set2,...)")
	fs.StringVar(&names, "n", getenv("SSAM_NAMES"), "Shorthand for -names")
	fs.StringVar(&cfg.Sizes, "sizes", envOrDefaultFn("SSAM_SIZES", "*"), "Comma separated set sizes: integer count, fraction with a '.', or * for the remainder (once)")
	fs.StringVar(&cfg.Sizes, "s", envOrDefaultFn("SSAM_SIZES", "*"), "Shorthand for -sizes")
	fs.BoolVar(&cfg.Replace, "replace", boolEnvOrDefaultFn("SSAM_REPLACE", false), "Sample with replacement")
	fs.BoolVar(&cfg.Replace, "r", boolEnvOrDefaultFn("SSAM_REPLACE", false), "Shorthand for -replace")
	fs.BoolVar(&cfg.Shuffle, "shuffle", boolEnvOrDefaultFn("SSAM_SHUFFLE", false), "Shuffle the order of the emitted units")
	fs.BoolVar(&cfg.Shuffle, "x", boolEnvOrDefaultFn("SSAM_SHUFFLE", false), "Shorthand for -shuffle")
	fs.StringVar(&seed, "seed", getenv("SSAM_SEED"), "Random seed (unsigned 64-bit) for reproducible runs")
	fs.StringVar(&seed, "S", getenv("SSAM_SEED"), "Shorthand for -seed")
	fs.StringVar(&exclude, "exclude", getenv("SSAM_EXCLUDE"), "Comma separated reference files, one per input; matching units are excluded")

	// Output
	fs.StringVar(&cfg.OutputDir, "output", getenv("SSAM_OUTPUT"), "Output directory")
	fs.StringVar(&cfg.OutputDir, "o", getenv("SSAM_OUTPUT"), "Shorthand for -output")
	fs.StringVar(&cfg.Extension, "extension", envOrDefaultFn("SSAM_EXTENSION", "txt"), "Output file extension")
	fs.StringVar(&cfg.Extension, "e", envOrDefaultFn("SSAM_EXTENSION", "txt"), "Shorthand for -extension")

	// Input reading
	fs.BoolVar(&cfg.MMap, "mmap", boolEnvOrDefaultFn("SSAM_MMAP", false), "Memory-map input files instead of streaming them")
	fs.BoolVar(&cfg.StripBOM, "strip-bom", boolEnvOrDefaultFn("SSAM_STRIP_BOM", true), "Honor a leading byte order mark (drop UTF-8 BOM, transcode UTF-16)")

	// Run control and diagnostics
	fs.BoolVar(&cfg.ValidateOnly, "validate", false, "Validate the configuration and exit")
	fs.BoolVar(&cfg.Verbose, "v", boolEnvOrDefaultFn("SSAM_VERBOSE", false), "Enable verbose logs")
	fs.StringVar(&cfg.MetricsBackend, "metrics-backend", envOrDefaultFn("METRICS_BACKEND", "none"), "Metrics backend: none, pushgateway, datadog")
	fs.StringVar(&cfg.PushgatewayURL, "pushgateway-url", getenv("PUSHGATEWAY_URL"), "Pushgateway base URL")
	fs.StringVar(&cfg.DogStatsDAddr, "dogstatsd-addr", envOrDefaultFn("DOGSTATSD_ADDR", "127.0.0.1:8125"), "DogStatsD address")
	fs.StringVar(&cfg.Job, "job", envOrDefaultFn("SSAM_JOB", "ssam"), "Job name used to label metrics")

	if args == nil {
		args = []string{}
	}
	if err := fs.Parse(args); err != nil {
		return nil, &errs.Error{Kind: errs.ErrConfig, Op: "flags", Err: err}
	}

	cfg.Inputs = fs.Args()
	switch {
	case noDelim && blankLines && setOnCommandLine(fs, "blank-lines"):
		return nil, errs.Config("flags", "-no-delimiter and -blank-lines are mutually exclusive")
	case noDelim:
		cfg.Delimiter = nil
	case blankLines:
		empty := ""
		cfg.Delimiter = &empty
	default:
		cfg.Delimiter = delim.v
	}
	cfg.Names = splitList(names)
	cfg.Exclude = splitList(exclude)

	if s := strings.TrimSpace(seed); s != "" {
		v, err := strconv.ParseUint(s, 10, 64)
		if err != nil {
			return nil, errs.Config("seed", "seed must be an unsigned 64-bit integer, got %q", seed)
		}
		cfg.Seed = &v
	}
	return cfg, nil
}

// setOnCommandLine reports whether the named flag was passed explicitly.
func setOnCommandLine(fs *flag.FlagSet, name string) bool {
	set := false
	fs.Visit(func(f *flag.Flag) {
		if f.Name == name {
			set = true
		}
	})
	return set
}

// Load is the production entry point: it loads the dotenv file named by
// SSAM_ENV_FILE (default ".env"), then parses os.Args[1:] with os.Getenv as
// the environment. Usage errors are returned rather than exiting; -h yields
// an error wrapping flag.ErrHelp.
func Load() (*Config, error) {
	if err := LoadDotEnv(envOrDefault("SSAM_ENV_FILE", ".env")); err != nil {
		return nil, err
	}
	fs := flag.NewFlagSet(filepath.Base(os.Args[0]), flag.ContinueOnError)
	return LoadFromArgs(fs, os.Getenv, os.Args[1:])
}

// LoadDotEnv loads KEY=VALUE pairs from path into the process environment.
// Variables already set in the environment win. A missing file is not an
// error.
func LoadDotEnv(path string) error {
	if path == "" {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return errs.IO("load "+path, err)
	}
	return nil
}

// envOrDefault returns the value of environment variable k if set,
// otherwise d.
func envOrDefault(k, d string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return d
}

// splitList splits a comma-separated list, trimming blanks. An empty string
// yields nil.
func splitList(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return parts
}
