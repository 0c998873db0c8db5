package config

import (
	"fmt"
	"strings"

	"github.com/proycon/ssam/internal/errs"
	"github.com/proycon/ssam/internal/sampler"
)

// IssueSeverity represents the severity of a configuration issue.
type IssueSeverity string

const (
	// SeverityError indicates a configuration error that should block execution.
	SeverityError IssueSeverity = "error"
	// SeverityWarning indicates something worth surfacing that does not block
	// execution.
	SeverityWarning IssueSeverity = "warning"
)

// Issue describes a single validation finding. Path names the option
// ("sizes", "names", "exclude", ...).
type Issue struct {
	Severity IssueSeverity
	Path     string
	Message  string
}

// Error implements the error interface so an Issue can be treated as a single
// error in contexts that expect error.
func (i Issue) Error() string {
	return fmt.Sprintf("%s at %s: %s", i.Severity, i.Path, i.Message)
}

// Validate performs static checks on cfg without touching any input data.
// Callers decide how to surface warnings; any SeverityError should stop the
// run (see Err).
func Validate(cfg *Config) []Issue {
	var issues []Issue
	issues = append(issues, validateSets(cfg)...)
	issues = append(issues, validateInputs(cfg)...)
	issues = append(issues, validateOutput(cfg)...)
	issues = append(issues, validateMetrics(cfg)...)
	return issues
}

// Err folds the error-severity issues into one configuration error, or
// returns nil when there are none.
func Err(issues []Issue) error {
	var msgs []string
	for _, iss := range issues {
		if iss.Severity == SeverityError {
			msgs = append(msgs, iss.Path+": "+iss.Message)
		}
	}
	if len(msgs) == 0 {
		return nil
	}
	return errs.Config("validate", "%s", strings.Join(msgs, "; "))
}

func validateSets(cfg *Config) []Issue {
	var issues []Issue

	specs, err := sampler.ParseSpecs(cfg.Sizes)
	if err != nil {
		issues = append(issues, Issue{Severity: SeverityError, Path: "sizes", Message: err.Error()})
		return issues
	}

	if cfg.Replace {
		draws := 0
		for i := 0; i < specs.Len(); i++ {
			if s := specs.At(i); s.Kind == sampler.Absolute {
				if s.Count > sampler.MaxDraws-draws {
					draws = sampler.MaxDraws + 1
					break
				}
				draws += s.Count
			}
		}
		if draws > sampler.MaxDraws {
			issues = append(issues, Issue{
				Severity: SeverityError,
				Path:     "sizes",
				Message:  fmt.Sprintf("with replacement the fixed set sizes may request at most %d units in total", sampler.MaxDraws),
			})
		}
	}

	// Surplus names are reported by the run itself.
	names, _ := sampler.Names(cfg.Names, specs)
	seen := make(map[string]int, len(names))
	for i, n := range names {
		if strings.ContainsAny(n, `/\`) {
			issues = append(issues, Issue{
				Severity: SeverityError,
				Path:     fmt.Sprintf("names[%d]", i),
				Message:  fmt.Sprintf("set name %q must not contain a path separator", n),
			})
		}
		if j, dup := seen[n]; dup {
			issues = append(issues, Issue{
				Severity: SeverityError,
				Path:     fmt.Sprintf("names[%d]", i),
				Message:  fmt.Sprintf("set name %q is already used by set %d; both would write the same file", n, j+1),
			})
			continue
		}
		seen[n] = i
	}
	return issues
}

func validateInputs(cfg *Config) []Issue {
	var issues []Issue

	if len(cfg.Exclude) > 0 && len(cfg.Exclude) != cfg.Columns() {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "exclude",
			Message: fmt.Sprintf("%d exclude files given for %d input columns; exactly one per column is required",
				len(cfg.Exclude), cfg.Columns()),
		})
	}
	for i, p := range cfg.Exclude {
		if p == "" {
			issues = append(issues, Issue{
				Severity: SeverityError,
				Path:     fmt.Sprintf("exclude[%d]", i),
				Message:  "exclude file name must not be empty",
			})
		}
	}
	if cfg.MMap && len(cfg.Inputs) == 0 {
		issues = append(issues, Issue{
			Severity: SeverityWarning,
			Path:     "mmap",
			Message:  "mmap has no effect when reading standard input",
		})
	}
	return issues
}

func validateOutput(cfg *Config) []Issue {
	var issues []Issue

	ext := cfg.Extension
	switch {
	case strings.TrimSpace(ext) == "":
		issues = append(issues, Issue{Severity: SeverityError, Path: "extension", Message: "extension must not be empty"})
	case strings.ContainsAny(ext, `/\`):
		issues = append(issues, Issue{Severity: SeverityError, Path: "extension", Message: fmt.Sprintf("extension %q must not contain a path separator", ext)})
	case strings.HasPrefix(ext, "."):
		issues = append(issues, Issue{Severity: SeverityWarning, Path: "extension", Message: fmt.Sprintf("extension %q starts with a dot; file names will contain '..'", ext)})
	}
	return issues
}

func validateMetrics(cfg *Config) []Issue {
	var issues []Issue

	switch strings.ToLower(strings.TrimSpace(cfg.MetricsBackend)) {
	case "", "none":
	case "pushgateway":
		if strings.TrimSpace(cfg.PushgatewayURL) == "" {
			issues = append(issues, Issue{Severity: SeverityError, Path: "pushgateway-url", Message: "pushgateway backend requires a gateway URL"})
		}
	case "datadog":
		if strings.TrimSpace(cfg.DogStatsDAddr) == "" {
			issues = append(issues, Issue{Severity: SeverityError, Path: "dogstatsd-addr", Message: "datadog backend requires a DogStatsD address"})
		}
	default:
		issues = append(issues, Issue{
			Severity: SeverityWarning,
			Path:     "metrics-backend",
			Message:  fmt.Sprintf("unknown metrics backend %q; metrics disabled", cfg.MetricsBackend),
		})
	}
	return issues
}
