// Package random provides the injectable randomness source shared by the tree
// synthesizer and the graph builder.
//
// Every random decision in codegraph (file names, sizes, nesting, node ids,
// position jitter, simulated dependencies) is drawn from a [Source]. Passing a
// seeded source makes a whole synthesize → build pass reproducible, which is
// what tests and cached renders rely on:
//
//	rng := random.New(42)
//	root := tree.Synthesize(rng, tree.Options{})
//	g, _ := graph.Build(root, graph.BuildOptions{Rand: rng})
//
// A Source is not safe for concurrent use. Give each goroutine its own.
package random

import (
	"math/rand/v2"
	"time"
)

// Source is the randomness consumed by synthesis and graph building.
//
// Read fills p with pseudo-random bytes so a Source can back
// uuid.NewRandomFromReader; it never returns an error.
type Source interface {
	IntN(n int) int
	Float64() float64
	Read(p []byte) (int, error)
}

// PCG is a [Source] backed by math/rand/v2's PCG generator.
type PCG struct {
	rng *rand.Rand
}

// New returns a deterministic source for seed.
// Two sources created with the same seed produce identical sequences.
func New(seed uint64) *PCG {
	return &PCG{rng: rand.New(rand.NewPCG(seed, seed^0xdeadbeef))}
}

// NewUnseeded returns a source seeded from the wall clock, for demo runs where
// every rebuild should look different.
func NewUnseeded() *PCG {
	return New(uint64(time.Now().UnixNano()))
}

// IntN returns a value in [0, n). It panics if n <= 0.
func (p *PCG) IntN(n int) int { return p.rng.IntN(n) }

// Float64 returns a value in [0.0, 1.0).
func (p *PCG) Float64() float64 { return p.rng.Float64() }

// Read fills b with random bytes.
func (p *PCG) Read(b []byte) (int, error) {
	for i := 0; i < len(b); i += 8 {
		v := p.rng.Uint64()
		for j := 0; j < 8 && i+j < len(b); j++ {
			b[i+j] = byte(v >> (8 * j))
		}
	}
	return len(b), nil
}

// Between returns a value in [lo, hi] inclusive.
func Between(s Source, lo, hi int) int {
	if hi <= lo {
		return lo
	}
	return lo + s.IntN(hi-lo+1)
}

// Chance reports true with probability p.
func Chance(s Source, p float64) bool {
	return s.Float64() < p
}

// Pick returns a uniformly chosen element of items.
// It panics if items is empty.
func Pick[T any](s Source, items []T) T {
	return items[s.IntN(len(items))]
}

// Jitter returns a value uniformly distributed in [-bound, bound).
func Jitter(s Source, bound float64) float64 {
	return (s.Float64()*2 - 1) * bound
}

var _ Source = (*PCG)(nil)
