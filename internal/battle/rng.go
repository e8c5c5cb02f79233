package battle

import (
	"hash/fnv"
	"math/rand"
)

// Named RNG streams. Each battle owns an independent stream per name so
// that, e.g., drawing a miss-deviation roll never perturbs the processing
// order shuffle for the same tick.
const (
	StreamCombat = "combat"
	StreamPhases = "phases"
	StreamGround = "ground"
	StreamSpace  = "space"
)

// RngRegistry owns a set of independently seedable random sources keyed by
// name. Replaces what would otherwise be a handful of global singletons.
type RngRegistry struct {
	seed    int64
	streams map[string]*rand.Rand
}

// NewRngRegistry derives the four canonical streams from a single battle
// seed. Each stream's actual seed is a stable hash of (seed, name) so
// reseeding the registry with the same base seed reproduces every stream.
func NewRngRegistry(seed int64) *RngRegistry {
	r := &RngRegistry{
		seed:    seed,
		streams: make(map[string]*rand.Rand, 4),
	}
	for _, name := range []string{StreamCombat, StreamPhases, StreamGround, StreamSpace} {
		r.streams[name] = rand.New(rand.NewSource(streamSeed(seed, name)))
	}
	return r
}

func streamSeed(seed int64, name string) int64 {
	h := fnv.New64a()
	h.Write([]byte(name))
	var buf [8]byte
	for i := range buf {
		buf[i] = byte(seed >> (8 * i))
	}
	h.Write(buf[:])
	return int64(h.Sum64())
}

// Stream returns the named stream, creating an ad-hoc one seeded from the
// registry's base seed if the name is unknown (defensive: new stream names
// added by future callers never panic).
func (r *RngRegistry) Stream(name string) *rand.Rand {
	if s, ok := r.streams[name]; ok {
		return s
	}
	s := rand.New(rand.NewSource(streamSeed(r.seed, name)))
	r.streams[name] = s
	return s
}

// Reseed resets every known stream back to its deterministic seed, used to
// replay a battle deterministically from a recorded seed.
func (r *RngRegistry) Reseed(seed int64) {
	r.seed = seed
	for name := range r.streams {
		r.streams[name] = rand.New(rand.NewSource(streamSeed(seed, name)))
	}
}

// ShuffleOrder returns a permutation of [0, n) drawn from the "phases"
// stream, used to decide per-tick unit processing order.
func (r *RngRegistry) ShuffleOrder(n int) []int {
	order := make([]int, n)
	for i := range order {
		order[i] = i
	}
	r.Stream(StreamPhases).Shuffle(n, func(i, j int) {
		order[i], order[j] = order[j], order[i]
	})
	return order
}
