package conf

import (
	"fmt"
	"strings"

	"github.com/tphakala/modaudio/internal/errors"
)

// ValidationError represents a collection of validation errors
type ValidationError struct {
	Errors []string
}

// Error returns a string representation of the validation errors
func (ve ValidationError) Error() string {
	return fmt.Sprintf("Validation errors: %v", ve.Errors)
}

// ErrorCategory marks validation failures as configuration errors
func (ve ValidationError) ErrorCategory() errors.ErrorCategory {
	return errors.CategoryConfiguration
}

// ValidateSettings validates the entire Settings struct
func ValidateSettings(settings *Settings) error {
	ve := ValidationError{}

	if err := validatePackSettings(&settings.Packs); err != nil {
		ve.Errors = append(ve.Errors, err.Error())
	}

	if err := validateEngineSettings(&settings.Engine); err != nil {
		ve.Errors = append(ve.Errors, err.Error())
	}

	if err := validateLoggingSettings(&settings.Logging); err != nil {
		ve.Errors = append(ve.Errors, err.Error())
	}

	if len(ve.Errors) > 0 {
		return ve
	}
	return nil
}

func validatePackSettings(settings *PackSettings) error {
	labels := make(map[string]bool, len(settings.Roots))
	for i, root := range settings.Roots {
		if strings.TrimSpace(root.Path) == "" {
			return fmt.Errorf("packs.roots[%d]: path must not be empty", i)
		}
		if strings.TrimSpace(root.Label) == "" {
			return fmt.Errorf("packs.roots[%d]: label must not be empty", i)
		}
		if strings.ContainsAny(root.Label, `/\:`) {
			return fmt.Errorf("packs.roots[%d]: label %q must not contain path separators or ':'", i, root.Label)
		}
		if labels[root.Label] {
			return fmt.Errorf("packs.roots[%d]: duplicate label %q", i, root.Label)
		}
		labels[root.Label] = true
	}

	if settings.WatchDebounce < 0 {
		return fmt.Errorf("packs.watch_debounce must not be negative")
	}

	return nil
}

func validateEngineSettings(settings *EngineSettings) error {
	if settings.MinWeight <= 0 {
		return fmt.Errorf("engine.min_weight must be greater than 0")
	}
	if settings.MaxWeight < settings.MinWeight {
		return fmt.Errorf("engine.max_weight must not be less than engine.min_weight")
	}
	if settings.DefaultWeight < settings.MinWeight || settings.DefaultWeight > settings.MaxWeight {
		return fmt.Errorf("engine.default_weight must be within [%g, %g]", settings.MinWeight, settings.MaxWeight)
	}
	if settings.StreamThresholdBytes <= 0 {
		return fmt.Errorf("engine.stream_threshold_bytes must be greater than 0")
	}
	if settings.SilentClipDuration <= 0 {
		return fmt.Errorf("engine.silent_clip_duration must be greater than 0")
	}
	if settings.SilentClipSampleRate <= 0 {
		return fmt.Errorf("engine.silent_clip_sample_rate must be greater than 0")
	}
	if settings.ChangeEpsilon < 0 {
		return fmt.Errorf("engine.change_epsilon must not be negative")
	}
	return nil
}

func validateLoggingSettings(settings *LoggingSettings) error {
	validLevels := map[string]bool{"trace": true, "debug": true, "info": true, "warn": true, "warning": true, "error": true}

	if settings.DefaultLevel != "" && !validLevels[strings.ToLower(settings.DefaultLevel)] {
		return fmt.Errorf("logging.default_level %q is not a valid level", settings.DefaultLevel)
	}
	for module, level := range settings.ModuleLevels {
		if !validLevels[strings.ToLower(level)] {
			return fmt.Errorf("logging.module_levels.%s: %q is not a valid level", module, level)
		}
	}
	if settings.AudioPlayedWindow < 0 {
		return fmt.Errorf("logging.audio_played_window must not be negative")
	}
	return nil
}
