package observability

import "github.com/tphakala/modaudio/internal/logger"

// Package-level cached logger instance.
var log = logger.Global().Module("telemetry")
