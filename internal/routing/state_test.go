package routing

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRebaselined(t *testing.T) {
	original := testClip("hit.wav")
	applied := testClip("alt.wav")
	other := testClip("other.wav")

	base := trackedState{
		originalClip:   original,
		originalVolume: 1,
		originalPitch:  1,
		appliedClip:    applied,
		appliedVolume:  0.5,
		appliedPitch:   2,
	}

	tests := []struct {
		name        string
		src         *fakeSource
		wantClip    string
		wantVolume  float64
		wantPitch   float64
		wantApplied [2]float64
	}{
		{
			name:        "unchanged source keeps baseline",
			src:         &fakeSource{clip: applied, volume: 0.5, pitch: 2},
			wantClip:    "hit.wav",
			wantVolume:  1,
			wantPitch:   1,
			wantApplied: [2]float64{1, 1},
		},
		{
			name:        "drift within epsilon keeps baseline",
			src:         &fakeSource{clip: applied, volume: 0.504, pitch: 1.996},
			wantClip:    "hit.wav",
			wantVolume:  1,
			wantPitch:   1,
			wantApplied: [2]float64{1, 1},
		},
		{
			name:        "external volume becomes baseline",
			src:         &fakeSource{clip: applied, volume: 0.3, pitch: 2},
			wantClip:    "hit.wav",
			wantVolume:  0.3,
			wantPitch:   1,
			wantApplied: [2]float64{0.3, 1},
		},
		{
			name:        "external pitch becomes baseline",
			src:         &fakeSource{clip: applied, volume: 0.5, pitch: 0.7},
			wantClip:    "hit.wav",
			wantVolume:  1,
			wantPitch:   0.7,
			wantApplied: [2]float64{1, 0.7},
		},
		{
			name:        "new clip becomes baseline",
			src:         &fakeSource{clip: other, volume: 0.5, pitch: 2},
			wantClip:    "other.wav",
			wantVolume:  1,
			wantPitch:   1,
			wantApplied: [2]float64{1, 1},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := base.rebaselined(tt.src, 0.005)
			assert.Equal(t, tt.wantClip, got.originalClip.Name())
			assert.InDelta(t, tt.wantVolume, got.originalVolume, 1e-9)
			assert.InDelta(t, tt.wantPitch, got.originalPitch, 1e-9)
			assert.Same(t, tt.src.clip, got.appliedClip)
			assert.InDelta(t, tt.wantApplied[0], got.appliedVolume, 1e-9)
			assert.InDelta(t, tt.wantApplied[1], got.appliedPitch, 1e-9)
		})
	}
}

func TestRestoreEffects(t *testing.T) {
	src := &fakeSource{clip: testClip("hit.wav"), volume: 0.5, pitch: 2}
	state := trackedState{appliedVolume: 1, appliedPitch: 2}

	restoreEffects(src, &state)

	assert.InDelta(t, 1.0, src.volume, 1e-9)
	assert.InDelta(t, 2.0, src.pitch, 1e-9)
}

func TestOneShotStateFlags(t *testing.T) {
	src := &fakeSource{id: 5, clip: testClip("spark.wav"), volume: 1, pitch: 1}

	overlay := newOneShotState(src, 1, true)
	assert.True(t, overlay.isOverlay)
	assert.True(t, overlay.disableRouting, "overlays never route")
	assert.True(t, overlay.isOneShotSource)
	assert.Equal(t, SourceID(1), overlay.oneShotOrigin)

	plain := newOneShotState(src, 1, false)
	assert.False(t, plain.isOverlay)
	assert.False(t, plain.disableRouting)
	assert.False(t, plain.modified())
}
