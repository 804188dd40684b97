package audioclip

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewSilentClip(t *testing.T) {
	clip := NewSilentClip(SilentClipName, 100*time.Millisecond, 44100)

	assert.Equal(t, SilentClipName, clip.Name())
	assert.Equal(t, 1, clip.Channels())
	assert.Equal(t, 4410, clip.Frames())
	assert.Equal(t, 100*time.Millisecond, clip.Duration())
	assert.False(t, clip.IsStream())
	for _, s := range clip.Samples() {
		require.Zero(t, s)
	}
}

func TestEventClip(t *testing.T) {
	clip := NewEventClip("BossDefeated", 44100)

	assert.Equal(t, "___event:bossdefeated___", clip.Name())
	assert.Equal(t, eventClipFrames, clip.Frames())
	assert.True(t, IsEventClipName(clip.Name()))
	assert.False(t, IsEventClipName("bossdefeated"))
}

func TestNameOf(t *testing.T) {
	assert.Empty(t, NameOf(nil))
	assert.Equal(t, "hit", NameOf(NewClip("hit", 44100, 1, nil)))
}

func TestExtensions(t *testing.T) {
	tests := []struct {
		path       string
		loadable   bool
		streamable bool
	}{
		{"music/theme.ogg", true, true},
		{"sfx/HIT.WAV", true, true},
		{"sfx/hit.mp3", true, true},
		{"sfx/hit.flac", true, false},
		{"sfx/hit.aiff", false, false},
		{"sfx/readme", false, false},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			assert.Equal(t, tt.loadable, IsLoadable(tt.path))
			assert.Equal(t, tt.streamable, IsStreamable(tt.path))
			assert.Equal(t, tt.loadable || tt.streamable, IsSupported(tt.path))
		})
	}
}
