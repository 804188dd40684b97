package audiopack

import "github.com/tphakala/modaudio/internal/logger"

// GetLogger returns the audiopack module logger
func GetLogger() logger.Logger {
	return logger.Global().Module("audiopack")
}
