package audiopack

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseConfigDefaults(t *testing.T) {
	cfg, err := ParseConfig(strings.NewReader(`{
		"custom_clips": [{"name": "hit_alt", "path": "hit_alt.wav"}],
		"routes": [{
			"original_clips": ["hit"],
			"replacement_clips": [{"name": "hit_alt"}],
			"overlay_clips": [{"name": "sparkle", "weight": 2, "pitch": 1.5}]
		}]
	}`))
	require.NoError(t, err)

	assert.True(t, cfg.Settings.AutoloadReplacementClips)
	require.Len(t, cfg.CustomClips, 1)
	assert.InDelta(t, 1.0, cfg.CustomClips[0].Volume, 1e-9)
	assert.False(t, cfg.CustomClips[0].IgnoreClipExtension)

	require.Len(t, cfg.Routes, 1)
	route := cfg.Routes[0]
	assert.True(t, route.LinkOverlayAndReplacement)
	assert.True(t, route.RelativeReplacementEffects)
	assert.False(t, route.RelativeOverlayEffects)
	assert.False(t, route.OverlaysIgnoreRestarts)
	assert.InDelta(t, 1.0, route.ReplacementWeight, 1e-9)
	assert.InDelta(t, 1.0, route.Volume, 1e-9)
	assert.InDelta(t, 1.0, route.Pitch, 1e-9)
	assert.Equal(t, NewClipSelection("hit_alt", 1), route.ReplacementClips[0])
	assert.Equal(t, ClipSelection{Name: "sparkle", Weight: 2, Volume: 1, Pitch: 1.5}, route.OverlayClips[0])
	assert.True(t, route.MatchesClip("hit"))
	assert.False(t, route.MatchesClip("miss"))
	assert.True(t, route.HasOverlays())
}

func TestParseConfigExplicitValues(t *testing.T) {
	cfg, err := ParseConfig(strings.NewReader(`{
		"id": "my-pack",
		"display_name": "My Pack",
		"settings": {"autoload_replacement_clips": false},
		"routes": [{
			"original_clips": ["a", "b"],
			"link_overlay_and_replacement": false,
			"relative_replacement_effects": false,
			"relative_overlay_effects": true,
			"overlays_ignore_restarts": true,
			"replacement_weight": 3,
			"volume": 0.5,
			"pitch": 2
		}]
	}`))
	require.NoError(t, err)

	assert.Equal(t, "my-pack", cfg.ID)
	assert.Equal(t, "My Pack", cfg.DisplayName)
	assert.False(t, cfg.Settings.AutoloadReplacementClips)
	route := cfg.Routes[0]
	assert.False(t, route.LinkOverlayAndReplacement)
	assert.False(t, route.RelativeReplacementEffects)
	assert.True(t, route.RelativeOverlayEffects)
	assert.True(t, route.OverlaysIgnoreRestarts)
	assert.InDelta(t, 3.0, route.ReplacementWeight, 1e-9)
	assert.True(t, route.MatchesClip("b"))
}

func TestParseConfigMalformed(t *testing.T) {
	_, err := ParseConfig(strings.NewReader(`{"routes": [`))
	assert.Error(t, err)
}

func TestRouteMatchesFilters(t *testing.T) {
	tests := []struct {
		name      string
		sources   []string
		objects   []string
		source    string
		hierarchy []string
		want      bool
	}{
		{"unfiltered", nil, nil, "anything", nil, true},
		{"source match", []string{"Player"}, nil, "Player", nil, true},
		{"source mismatch", []string{"Player"}, nil, "Enemy", nil, false},
		{"object in hierarchy", nil, []string{"Boss"}, "src", []string{"Arena", "Boss", "Weapon"}, true},
		{"object missing", nil, []string{"Boss"}, "src", []string{"Arena"}, false},
		{"both must match", []string{"Player"}, []string{"Boss"}, "Player", []string{"Arena"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			route := NewRoute("hit")
			route.FilterBySources = tt.sources
			route.FilterByObject = tt.objects
			assert.Equal(t, tt.want, route.MatchesFilters(tt.source, tt.hierarchy))
		})
	}
}

func TestParseLegacyRoutes(t *testing.T) {
	input := `
# comment line
hit = hit_alt
  swing = swing_heavy / 3
broken line without separator
a = b / 1 / 2
 = missing_original
c = d / notanumber
x = y = z
`
	var logs bytes.Buffer
	cfg, err := ParseLegacyRoutes(strings.NewReader(input), 1, bufferLogger(&logs))
	require.NoError(t, err)

	require.Len(t, cfg.Routes, 3)

	assert.Equal(t, []string{"hit"}, cfg.Routes[0].OriginalClips)
	assert.Equal(t, "hit_alt", cfg.Routes[0].ReplacementClips[0].Name)
	assert.InDelta(t, 1.0, cfg.Routes[0].ReplacementWeight, 1e-9)

	assert.Equal(t, []string{"swing"}, cfg.Routes[1].OriginalClips)
	assert.Equal(t, "swing_heavy", cfg.Routes[1].ReplacementClips[0].Name)
	assert.InDelta(t, 3.0, cfg.Routes[1].ReplacementWeight, 1e-9)

	assert.Equal(t, []string{"c"}, cfg.Routes[2].OriginalClips)
	assert.InDelta(t, 1.0, cfg.Routes[2].ReplacementWeight, 1e-9)

	out := logs.String()
	assert.Contains(t, out, "Malformed route")
	assert.Contains(t, out, "Too many values")
	assert.Contains(t, out, "empty clip name")
	assert.Contains(t, out, "Could not parse route weight")
}
