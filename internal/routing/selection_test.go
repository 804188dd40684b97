package routing

import (
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tphakala/modaudio/internal/audiopack"
)

func TestPickWeightedFrequency(t *testing.T) {
	tests := []struct {
		name    string
		weights []float64
	}{
		{name: "equal", weights: []float64{1, 1}},
		{name: "skewed", weights: []float64{1, 2, 5}},
		{name: "clamped extremes", weights: []float64{0.001, 1000}},
		{name: "many", weights: []float64{3, 1, 4, 1, 5, 9, 2, 6}},
	}

	const draws = 200000
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rng := rand.New(rand.NewPCG(1, 2))
			items := make([]int, len(tt.weights))
			total := 0.0
			for i, w := range tt.weights {
				items[i] = i
				total += w
			}

			counts := make([]int, len(items))
			for range draws {
				i, ok := pickWeighted(rng, items, func(i int) float64 { return tt.weights[i] })
				require.True(t, ok)
				counts[i]++
			}

			for i, w := range tt.weights {
				assert.InDelta(t, w/total, float64(counts[i])/draws, 0.01, "candidate %d", i)
			}
		})
	}
}

func TestPickWeightedEdgeCases(t *testing.T) {
	rng := rand.New(rand.NewPCG(1, 2))
	weight := func(s audiopack.ClipSelection) float64 { return s.Weight }

	_, ok := pickWeighted(rng, nil, weight)
	assert.False(t, ok)

	only := []audiopack.ClipSelection{audiopack.NewClipSelection("only.wav", 1)}
	got, ok := pickWeighted(rng, only, weight)
	require.True(t, ok)
	assert.Equal(t, "only.wav", got.Name)

	zero := []audiopack.ClipSelection{
		audiopack.NewClipSelection("a.wav", 0),
		audiopack.NewClipSelection("b.wav", 0),
	}
	got, ok = pickWeighted(rng, zero, weight)
	require.True(t, ok)
	assert.Equal(t, "b.wav", got.Name, "zero total falls back to the last candidate")
}

func TestNewRandSeeded(t *testing.T) {
	a, b := newRand(99), newRand(99)
	for range 10 {
		assert.Equal(t, a.Uint64(), b.Uint64())
	}
}
