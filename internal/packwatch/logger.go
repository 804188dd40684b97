package packwatch

import "github.com/tphakala/modaudio/internal/logger"

// GetLogger returns the packwatch module logger
func GetLogger() logger.Logger {
	return logger.Global().Module("packwatch")
}
