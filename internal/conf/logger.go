package conf

import "github.com/tphakala/modaudio/internal/logger"

// GetLogger returns the config package logger.
// It is fetched from the global logger on each call because the central
// logger is installed after settings are loaded.
func GetLogger() logger.Logger {
	return logger.Global().Module("config")
}
