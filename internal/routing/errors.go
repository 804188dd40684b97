package routing

import (
	"fmt"

	"github.com/tphakala/modaudio/internal/audioclip"
	"github.com/tphakala/modaudio/internal/errors"
)

const componentRouting = "routing"

// ErrRouting marks a failure while handling a play, stop or reload. The engine
// logs it and lets default playback proceed.
var ErrRouting = errors.New(nil).Component(componentRouting).Category(errors.CategoryRouting).Build()

// newRoutingError wraps err with the source context needed to diagnose it
func newRoutingError(err error, operation string, src Source) *errors.EnhancedError {
	b := errors.New(err).
		Component(componentRouting).
		Category(errors.CategoryRouting).
		Context("operation", operation)
	if src != nil {
		details := sourceDetails(src)
		b = b.Context("source", details.name).
			Context("clip", details.clip).
			Context("volume", details.volume).
			Context("pitch", details.pitch)
	}
	return b.Build()
}

// sourceSnapshot holds diagnostic values read from a source
type sourceSnapshot struct {
	name   string
	clip   string
	volume float64
	pitch  float64
}

// sourceDetails reads diagnostic values from src. It runs inside recover
// handlers, so an accessor that panics leaves the remaining fields empty
// instead of escaping to the host.
func sourceDetails(src Source) (details sourceSnapshot) {
	defer func() { _ = recover() }()
	details.name = src.Name()
	details.clip = audioclip.NameOf(src.Clip())
	details.volume = src.Volume()
	details.pitch = src.Pitch()
	return details
}

// panicError converts a recovered value into an error
func panicError(r any) error {
	if err, ok := r.(error); ok {
		return fmt.Errorf("panic: %w", err)
	}
	return fmt.Errorf("panic: %v", r)
}
