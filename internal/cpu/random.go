package cpu

import (
	"math/rand/v2"
)

// RandomSource supplies uniformly distributed bytes
type RandomSource interface {
	Byte() uint8
}

type defaultRandomSource struct {
	rng *rand.Rand
}

// NewRandomSource returns a generator seeded from the runtime's entropy.
// Sequences are not reproducible across runs.
func NewRandomSource() RandomSource {
	return &defaultRandomSource{
		rng: rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64())),
	}
}

// NewSeededRandomSource returns a reproducible generator
func NewSeededRandomSource(seed uint64) RandomSource {
	return &defaultRandomSource{
		rng: rand.New(rand.NewPCG(seed, seed^0x9E3779B97F4A7C15)),
	}
}

func (s *defaultRandomSource) Byte() uint8 {
	return uint8(s.rng.UintN(256))
}
