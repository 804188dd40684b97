package simhost

import "github.com/tphakala/modaudio/internal/logger"

// GetLogger returns the simhost module logger
func GetLogger() logger.Logger {
	return logger.Global().Module("simhost")
}
