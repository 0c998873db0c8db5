// Package sampler resolves declared set sizes and assigns units to sets by
// random sampling, with or without replacement.
package sampler

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/proycon/ssam/internal/errs"
)

// Kind tags the shape of a SetSpec.
type Kind uint8

const (
	Absolute Kind = iota // fixed number of units
	Relative             // fraction of the dataset
	Remainder            // whatever is left
)

// SetSpec is the declared size of one output set.
type SetSpec struct {
	Kind     Kind
	Count    int     // Absolute only
	Fraction float64 // Relative only
}

// Abs, Rel and Rest construct the three SetSpec shapes.
func Abs(n int) SetSpec     { return SetSpec{Kind: Absolute, Count: n} }
func Rel(f float64) SetSpec { return SetSpec{Kind: Relative, Fraction: f} }
func Rest() SetSpec         { return SetSpec{Kind: Remainder} }

// IsRest reports whether s is the remainder set.
func (s SetSpec) IsRest() bool { return s.Kind == Remainder }

// Target is the number of units this spec asks for out of n. A remainder
// contributes zero; its real size is only known after assignment. A
// fraction whose product does not fit an int saturates at math.MaxInt.
func (s SetSpec) Target(n int) int {
	switch s.Kind {
	case Absolute:
		return s.Count
	case Relative:
		v := math.Floor(s.Fraction * float64(n))
		if v >= float64(math.MaxInt) {
			return math.MaxInt
		}
		return int(v)
	default:
		return 0
	}
}

func (s SetSpec) String() string {
	switch s.Kind {
	case Absolute:
		return strconv.Itoa(s.Count)
	case Relative:
		str := strconv.FormatFloat(s.Fraction, 'f', -1, 64)
		if !strings.Contains(str, ".") {
			str += ".0"
		}
		return str
	default:
		return "*"
	}
}

// ParseSpec parses one size: "*" is the remainder, a value containing a '.'
// is a relative fraction, anything else is an absolute count.
func ParseSpec(s string) (SetSpec, error) {
	s = strings.TrimSpace(s)
	switch {
	case s == "*":
		return Rest(), nil
	case strings.Contains(s, "."):
		f, err := strconv.ParseFloat(s, 64)
		if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
			return SetSpec{}, errs.Config("sizes", "expected a floating point value for size, got %q", s)
		}
		if f < 0 {
			return SetSpec{}, errs.Config("sizes", "relative size must not be negative, got %q", s)
		}
		return Rel(f), nil
	default:
		n, err := strconv.Atoi(s)
		if err != nil {
			return SetSpec{}, errs.Config("sizes", "expected an integer value for size, got %q", s)
		}
		if n < 0 {
			return SetSpec{}, errs.Config("sizes", "size must not be negative, got %q", s)
		}
		return Abs(n), nil
	}
}

// Specs is an ordered list of set sizes with at most one remainder.
type Specs struct {
	list []SetSpec
	rest int // index of the remainder, -1 if none
}

// NewSpecs validates list and returns it as Specs.
func NewSpecs(list ...SetSpec) (Specs, error) {
	if len(list) == 0 {
		return Specs{}, errs.Config("sizes", "at least one set size is required")
	}
	sp := Specs{list: append([]SetSpec(nil), list...), rest: -1}
	for i, s := range list {
		if !s.IsRest() {
			continue
		}
		if sp.rest >= 0 {
			return Specs{}, errs.Config("sizes",
				"only one set can take the remainder (*), found at positions %d and %d", sp.rest+1, i+1)
		}
		sp.rest = i
	}
	return sp, nil
}

// ParseSpecs parses a comma-separated size list. An empty string means a
// single remainder set.
func ParseSpecs(csv string) (Specs, error) {
	if strings.TrimSpace(csv) == "" {
		return NewSpecs(Rest())
	}
	parts := strings.Split(csv, ",")
	list := make([]SetSpec, 0, len(parts))
	for _, p := range parts {
		s, err := ParseSpec(p)
		if err != nil {
			return Specs{}, err
		}
		list = append(list, s)
	}
	return NewSpecs(list...)
}

// Len is the number of declared sets.
func (sp Specs) Len() int { return len(sp.list) }

// At returns the i-th spec.
func (sp Specs) At(i int) SetSpec { return sp.list[i] }

// RemainderIndex returns the position of the remainder set and whether one
// was declared.
func (sp Specs) RemainderIndex() (int, bool) { return sp.rest, sp.rest >= 0 }

func (sp Specs) String() string {
	parts := make([]string, len(sp.list))
	for i, s := range sp.list {
		parts[i] = s.String()
	}
	return strings.Join(parts, ",")
}

// Names pairs set names with specs. Missing names become set1, set2, ...
// (numbered by position); surplus names are dropped and reported in extra.
func Names(given []string, sp Specs) (names []string, extra []string) {
	names = make([]string, sp.Len())
	for i := range names {
		if i < len(given) && strings.TrimSpace(given[i]) != "" {
			names[i] = strings.TrimSpace(given[i])
		} else {
			names[i] = fmt.Sprintf("set%d", i+1)
		}
	}
	if len(given) > sp.Len() {
		extra = given[sp.Len():]
	}
	return names, extra
}
