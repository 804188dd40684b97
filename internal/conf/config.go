// Package conf loads, validates and persists modaudio settings.
package conf

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/tphakala/modaudio/internal/errors"
	"github.com/tphakala/modaudio/internal/logger"
)

// ConfigFileName is the settings file looked up in the default config paths
const ConfigFileName = "config.yaml"

// EnvPrefix is the prefix for environment variable overrides, e.g. MODAUDIO_ENGINE_SEED
const EnvPrefix = "MODAUDIO"

// Settings contains all configuration options for the routing engine and tools
type Settings struct {
	Debug   bool            `yaml:"debug" mapstructure:"debug"`
	Packs   PackSettings    `yaml:"packs" mapstructure:"packs"`
	Engine  EngineSettings  `yaml:"engine" mapstructure:"engine"`
	Logging LoggingSettings `yaml:"logging" mapstructure:"logging"`
}

// PackRoot is a directory scanned for audio packs. Label prefixes generated pack IDs.
type PackRoot struct {
	Label string `yaml:"label" mapstructure:"label"`
	Path  string `yaml:"path" mapstructure:"path"`
}

// PackSettings controls pack discovery
type PackSettings struct {
	Roots         []PackRoot    `yaml:"roots" mapstructure:"roots"`
	Disabled      []string      `yaml:"disabled" mapstructure:"disabled"`             // pack ids turned off by the user
	Watch         bool          `yaml:"watch" mapstructure:"watch"`                   // hard reload when pack folders change
	WatchDebounce time.Duration `yaml:"watch_debounce" mapstructure:"watch_debounce"` // quiet period before a watch-triggered reload
}

// EngineSettings holds routing engine limits and constants
type EngineSettings struct {
	MinWeight            float64       `yaml:"min_weight" mapstructure:"min_weight"`
	MaxWeight            float64       `yaml:"max_weight" mapstructure:"max_weight"`
	DefaultWeight        float64       `yaml:"default_weight" mapstructure:"default_weight"`
	StreamThresholdBytes int64         `yaml:"stream_threshold_bytes" mapstructure:"stream_threshold_bytes"`
	SilentClipDuration   time.Duration `yaml:"silent_clip_duration" mapstructure:"silent_clip_duration"`
	SilentClipSampleRate int           `yaml:"silent_clip_sample_rate" mapstructure:"silent_clip_sample_rate"`
	ChangeEpsilon        float64       `yaml:"change_epsilon" mapstructure:"change_epsilon"` // volume/pitch delta treated as an external change
	Seed                 int64         `yaml:"seed" mapstructure:"seed"`                     // 0 seeds from the clock
}

// LoggingSettings combines the logger configuration with engine log toggles
type LoggingSettings struct {
	logger.LoggingConfig `yaml:",inline" mapstructure:",squash"`

	PackLoading       bool          `yaml:"pack_loading" mapstructure:"pack_loading"`               // log every loaded pack and clip
	AudioPlayed       bool          `yaml:"audio_played" mapstructure:"audio_played"`               // log routed play events
	AudioPlayedWindow time.Duration `yaml:"audio_played_window" mapstructure:"audio_played_window"` // per-clip throttle for play logging
}

// IsPackEnabled reports whether a pack should be enabled. Unknown packs are enabled.
func (s *Settings) IsPackEnabled(id string) bool {
	return !slices.Contains(s.Packs.Disabled, id)
}

// SetPackEnabled records the enabled state for a pack id.
// Pack ids are kept in a list since viper splits map keys on dots.
func (s *Settings) SetPackEnabled(id string, enabled bool) {
	idx := slices.Index(s.Packs.Disabled, id)
	switch {
	case enabled && idx >= 0:
		s.Packs.Disabled = slices.Delete(s.Packs.Disabled, idx, idx+1)
	case !enabled && idx < 0:
		s.Packs.Disabled = append(s.Packs.Disabled, id)
	}
}

var (
	settingsInstance *Settings
	settingsPath     string
	settingsMutex    sync.RWMutex
)

// Load reads configuration from configPath, or from the default config paths
// when configPath is empty. A missing file is not an error; defaults apply.
func Load(configPath string) (*Settings, error) {
	settingsMutex.Lock()
	defer settingsMutex.Unlock()

	v, err := initViper(configPath)
	if err != nil {
		return nil, err
	}

	settings := &Settings{}
	if err := v.Unmarshal(settings); err != nil {
		return nil, errors.New(err).
			Component("conf").
			Category(errors.CategoryConfiguration).
			Context("operation", "unmarshal").
			Build()
	}

	if err := ValidateSettings(settings); err != nil {
		return nil, fmt.Errorf("error validating settings: %w", err)
	}

	settingsInstance = settings
	settingsPath = v.ConfigFileUsed()
	return settings, nil
}

// initViper creates a viper instance with defaults, env overrides and the config file
func initViper(configPath string) (*viper.Viper, error) {
	v := viper.New()
	setDefaultConfig(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName(strings.TrimSuffix(ConfigFileName, filepath.Ext(ConfigFileName)))
		v.SetConfigType("yaml")
		paths, err := GetDefaultConfigPaths()
		if err != nil {
			return nil, err
		}
		for _, path := range paths {
			v.AddConfigPath(path)
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			GetLogger().Debug("No config file found, using defaults")
			return v, nil
		}
		if configPath != "" && os.IsNotExist(err) {
			GetLogger().Debug("Config file does not exist, using defaults", logger.String("path", configPath))
			return v, nil
		}
		return nil, errors.New(err).
			Component("conf").
			Category(errors.CategoryConfiguration).
			Context("operation", "read-config").
			FileContext(configPath, 0).
			Build()
	}

	return v, nil
}

// GetSettings returns the most recently loaded settings
func GetSettings() *Settings {
	settingsMutex.RLock()
	defer settingsMutex.RUnlock()
	return settingsInstance
}

// SettingsPath returns the file the current settings were loaded from, or an
// empty string when only defaults were used
func SettingsPath() string {
	settingsMutex.RLock()
	defer settingsMutex.RUnlock()
	return settingsPath
}

// SaveSettings writes the current settings back to the file they were loaded from,
// or to configPath when given.
func SaveSettings(configPath string) error {
	settingsMutex.RLock()
	defer settingsMutex.RUnlock()

	if settingsInstance == nil {
		return errors.Newf("settings have not been loaded").
			Component("conf").
			Category(errors.CategoryState).
			Build()
	}

	if configPath == "" {
		configPath = settingsPath
	}
	if configPath == "" {
		paths, err := GetDefaultConfigPaths()
		if err != nil {
			return err
		}
		configPath = filepath.Join(paths[0], ConfigFileName)
	}

	return SaveYAMLConfig(configPath, settingsInstance)
}

// SaveYAMLConfig atomically writes settings as YAML to configPath.
// It overwrites the existing file, not preserving comments or structure.
func SaveYAMLConfig(configPath string, settings *Settings) error {
	yamlData, err := yaml.Marshal(settings)
	if err != nil {
		return fmt.Errorf("error marshaling settings to YAML: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(configPath), 0o755); err != nil {
		return fmt.Errorf("error creating config directory: %w", err)
	}

	tempFile, err := os.CreateTemp(filepath.Dir(configPath), "config-*.yaml")
	if err != nil {
		return fmt.Errorf("error creating temporary file: %w", err)
	}
	tempFileName := tempFile.Name()
	defer os.Remove(tempFileName)

	if _, err := tempFile.Write(yamlData); err != nil {
		tempFile.Close()
		return fmt.Errorf("error writing to temporary file: %w", err)
	}
	if err := tempFile.Close(); err != nil {
		return fmt.Errorf("error closing temporary file: %w", err)
	}

	if err := os.Rename(tempFileName, configPath); err != nil {
		return fmt.Errorf("error replacing config file: %w", err)
	}

	return nil
}
