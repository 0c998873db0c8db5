package sampler

import "math/rand/v2"

// pcgStream is the fixed second PCG word; the seed alone selects the sequence.
const pcgStream = 0x9e3779b97f4a7c15

// NewRNG returns the run's generator. With seed == nil a process-random seed
// is drawn; the seed actually used is returned so a run can be replayed.
func NewRNG(seed *uint64) (*rand.Rand, uint64) {
	s := rand.Uint64()
	if seed != nil {
		s = *seed
	}
	return rand.New(rand.NewPCG(s, pcgStream)), s
}
