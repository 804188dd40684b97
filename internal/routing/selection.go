package routing

import "math/rand/v2"

// pickWeighted draws one item with probability weight(item)/sum. It draws r in
// [0, total) and subtracts weights in order until r goes negative. Rounding can
// leave r at zero after the last item, which then wins.
func pickWeighted[T any](rng *rand.Rand, items []T, weight func(T) float64) (T, bool) {
	var zero T
	if len(items) == 0 {
		return zero, false
	}

	total := 0.0
	for _, item := range items {
		total += weight(item)
	}
	if total <= 0 {
		return items[len(items)-1], true
	}

	r := rng.Float64() * total
	for _, item := range items {
		r -= weight(item)
		if r < 0 {
			return item, true
		}
	}
	return items[len(items)-1], true
}

// newRand returns a PCG generator. A zero seed draws one from the runtime source.
func newRand(seed int64) *rand.Rand {
	s := uint64(seed)
	if seed == 0 {
		s = rand.Uint64()
	}
	return rand.New(rand.NewPCG(s, s^0x9e3779b97f4a7c15))
}
