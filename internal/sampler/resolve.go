package sampler

import (
	"math"

	"github.com/proycon/ssam/internal/errs"
)

// MaxDraws bounds the total number of units all sets may request under
// replacement sampling, where the dataset size does not.
const MaxDraws = 1 << 30

// Resolve converts the declared sizes into target counts for a dataset of n
// units. The remainder slot resolves to 0. Without replacement, a total
// above n is a capacity error; with replacement, a total above MaxDraws is.
func (sp Specs) Resolve(n int, replace bool) ([]int, error) {
	targets := make([]int, sp.Len())
	total := 0
	for i, s := range sp.list {
		targets[i] = s.Target(n)
		total = addSat(total, targets[i])
	}
	if replace {
		if total > MaxDraws {
			return nil, errs.Capacity("sizes",
				"sum of requested sample sizes exceeds the replacement limit (%d vs %d)", total, MaxDraws)
		}
	} else if total > n {
		return nil, errs.Capacity("sizes",
			"sum of requested sample sizes exceeds the available data (%d vs %d)", total, n)
	}
	return targets, nil
}

// addSat adds two non-negative ints, saturating at math.MaxInt.
func addSat(a, b int) int {
	if b > math.MaxInt-a {
		return math.MaxInt
	}
	return a + b
}
