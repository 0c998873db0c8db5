// Package fingerprint builds content fingerprint sets over units and uses
// them to exclude units that occur in a reference corpus.
//
// A fingerprint is the 64-bit xxh3 hash of a unit's exact text. Membership is
// decided on the hash alone, so two distinct units that collide are treated
// as equal. For n data units checked against m reference units the chance of
// any false exclusion is roughly n*m/2^64, which is accepted in exchange for
// storing 8 bytes per reference unit instead of its text.
package fingerprint

import "github.com/zeebo/xxh3"

// Of returns the fingerprint of unit.
func Of(unit string) uint64 { return xxh3.HashString(unit) }

// Index is a set of fingerprints built from one reference column.
type Index struct {
	set map[uint64]struct{}
}

// NewIndex fingerprints every unit of a reference column.
func NewIndex(units []string) *Index {
	idx := &Index{set: make(map[uint64]struct{}, len(units))}
	for _, u := range units {
		idx.set[Of(u)] = struct{}{}
	}
	return idx
}

// Contains reports whether fingerprint h is in the index.
func (idx *Index) Contains(h uint64) bool {
	if idx == nil {
		return false
	}
	_, ok := idx.set[h]
	return ok
}

// ContainsUnit reports whether unit's fingerprint is in the index.
func (idx *Index) ContainsUnit(unit string) bool { return idx.Contains(Of(unit)) }

// Len is the number of distinct fingerprints.
func (idx *Index) Len() int {
	if idx == nil {
		return 0
	}
	return len(idx.set)
}
