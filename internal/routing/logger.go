package routing

import "github.com/tphakala/modaudio/internal/logger"

// GetLogger returns the routing module logger
func GetLogger() logger.Logger {
	return logger.Global().Module("routing")
}
