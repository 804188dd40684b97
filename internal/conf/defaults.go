package conf

import (
	"time"

	"github.com/spf13/viper"

	"github.com/tphakala/modaudio/internal/logger"
)

// Engine defaults
const (
	DefaultMinWeight            = 0.001
	DefaultMaxWeight            = 1000.0
	DefaultRouteWeight          = 1.0
	DefaultStreamThresholdBytes = 1024 * 1024
	DefaultSilentClipDuration   = 100 * time.Millisecond
	DefaultSilentClipSampleRate = 44100
	DefaultChangeEpsilon        = 0.005
	DefaultWatchDebounce        = 500 * time.Millisecond
	DefaultAudioPlayedWindow    = 5 * time.Second
)

// setDefaultConfig sets default values for every configuration key
func setDefaultConfig(v *viper.Viper) {
	v.SetDefault("debug", false)

	// Pack discovery
	v.SetDefault("packs.roots", []map[string]any{
		{"label": "local", "path": "packs"},
	})
	v.SetDefault("packs.disabled", []string{})
	v.SetDefault("packs.watch", false)
	v.SetDefault("packs.watch_debounce", DefaultWatchDebounce)

	// Routing engine
	v.SetDefault("engine.min_weight", DefaultMinWeight)
	v.SetDefault("engine.max_weight", DefaultMaxWeight)
	v.SetDefault("engine.default_weight", DefaultRouteWeight)
	v.SetDefault("engine.stream_threshold_bytes", DefaultStreamThresholdBytes)
	v.SetDefault("engine.silent_clip_duration", DefaultSilentClipDuration)
	v.SetDefault("engine.silent_clip_sample_rate", DefaultSilentClipSampleRate)
	v.SetDefault("engine.change_epsilon", DefaultChangeEpsilon)
	v.SetDefault("engine.seed", 0)

	// Logging
	v.SetDefault("logging.timezone", "Local")
	v.SetDefault("logging.default_level", logger.DefaultLogLevel)
	v.SetDefault("logging.console.enabled", logger.DefaultConsoleEnabled)
	v.SetDefault("logging.console.level", logger.DefaultLogLevel)
	v.SetDefault("logging.file_output.enabled", logger.DefaultFileEnabled)
	v.SetDefault("logging.file_output.path", logger.DefaultLogPath)
	v.SetDefault("logging.file_output.level", logger.DefaultLogLevel)
	v.SetDefault("logging.module_levels", map[string]string{})
	v.SetDefault("logging.pack_loading", false)
	v.SetDefault("logging.audio_played", false)
	v.SetDefault("logging.audio_played_window", DefaultAudioPlayedWindow)
}

// DefaultSettings returns settings populated only from defaults
func DefaultSettings() *Settings {
	v := viper.New()
	setDefaultConfig(v)
	settings := &Settings{}
	// Defaults are static and always decode
	_ = v.Unmarshal(settings)
	return settings
}
