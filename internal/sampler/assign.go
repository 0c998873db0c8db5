package sampler

import "math/rand/v2"

// Assignment maps each unit index to the sets it was drawn into, in draw
// order. Under replacement a unit can appear in several sets, or several
// times in one set.
type Assignment [][]int

// Unassigned counts units that belong to no set.
func (a Assignment) Unassigned() int {
	n := 0
	for _, sets := range a {
		if len(sets) == 0 {
			n++
		}
	}
	return n
}

// SetSizes counts assignments per set; multiple draws of a unit count once
// per draw.
func (a Assignment) SetSizes(numSets int) []int {
	sizes := make([]int, numSets)
	for _, sets := range a {
		for _, s := range sets {
			sizes[s]++
		}
	}
	return sizes
}

// Assign draws targets[i] units for every non-remainder set i and hands the
// rest to the remainder set, if declared.
//
// Without replacement the index pool is shuffled once and each set, in
// declaration order, takes its units off the end of the pool. With
// replacement each set draws uniformly from all n units. These are the only
// uses of rng here, so a fixed seed yields a fixed assignment.
func Assign(rng *rand.Rand, n int, sp Specs, targets []int, replace bool) Assignment {
	a := make(Assignment, n)
	if n == 0 {
		return a
	}

	var pool []int
	if !replace {
		pool = make([]int, n)
		for i := range pool {
			pool[i] = i
		}
		rng.Shuffle(len(pool), func(i, j int) { pool[i], pool[j] = pool[j], pool[i] })
	}

	for set, s := range sp.list {
		if s.IsRest() {
			continue
		}
		for k := 0; k < targets[set]; k++ {
			var j int
			if replace {
				j = rng.IntN(n)
			} else {
				j = pool[len(pool)-1]
				pool = pool[:len(pool)-1]
			}
			a[j] = append(a[j], set)
		}
	}

	if rest, ok := sp.RemainderIndex(); ok {
		for i := range a {
			if len(a[i]) == 0 {
				a[i] = []int{rest}
			}
		}
	}
	return a
}

// Order returns the emission order for n rows: identity, or a fresh
// permutation drawn from rng when shuffle is set.
func Order(rng *rand.Rand, n int, shuffle bool) []int {
	if shuffle {
		return rng.Perm(n)
	}
	order := make([]int, n)
	for i := range order {
		order[i] = i
	}
	return order
}
