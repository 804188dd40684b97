// Package audioclip holds decoded or streamed audio clips and the decoders
// that produce them from pack files.
package audioclip

import (
	"fmt"
	"strings"
	"time"
)

// Sentinel clip names understood by the routing engine
const (
	DefaultClipName = "___default___" // keep the source's original clip
	SilentClipName  = "___nothing___" // resolve to a shared silent clip
)

// eventClipFrames is the length of a generated custom event clip
const eventClipFrames = 16

// Clip is an immutable audio clip. It is either fully decoded into memory as
// interleaved float32 samples, or backed by an open Stream.
type Clip struct {
	name       string
	sampleRate int
	channels   int
	frames     int
	samples    []float32
	stream     *Stream
}

// NewClip creates an in-memory clip from interleaved samples
func NewClip(name string, sampleRate, channels int, samples []float32) *Clip {
	frames := 0
	if channels > 0 {
		frames = len(samples) / channels
	}
	return &Clip{
		name:       name,
		sampleRate: sampleRate,
		channels:   channels,
		frames:     frames,
		samples:    samples,
	}
}

// NewStreamClip creates a clip whose samples are read on demand from stream
func NewStreamClip(name string, stream *Stream) *Clip {
	return &Clip{
		name:       name,
		sampleRate: stream.SampleRate(),
		channels:   stream.Channels(),
		frames:     stream.Len(),
		stream:     stream,
	}
}

// NewSilentClip creates a mono clip of zeroed samples lasting duration
func NewSilentClip(name string, duration time.Duration, sampleRate int) *Clip {
	frames := int(duration.Seconds() * float64(sampleRate))
	if frames < 1 {
		frames = 1
	}
	return NewClip(name, sampleRate, 1, make([]float32, frames))
}

// EventClipName returns the clip name used for a custom event
func EventClipName(event string) string {
	return "___event:" + strings.ToLower(event) + "___"
}

// IsEventClipName reports whether name denotes a custom event clip
func IsEventClipName(name string) bool {
	return strings.HasPrefix(name, "___event:") && strings.HasSuffix(name, "___")
}

// NewEventClip creates the short silent clip that carries a custom event
func NewEventClip(event string, sampleRate int) *Clip {
	return NewClip(EventClipName(event), sampleRate, 1, make([]float32, eventClipFrames))
}

// Name returns the clip name
func (c *Clip) Name() string { return c.name }

// SampleRate returns frames per second
func (c *Clip) SampleRate() int { return c.sampleRate }

// Channels returns the number of interleaved channels
func (c *Clip) Channels() int { return c.channels }

// Frames returns the clip length in frames
func (c *Clip) Frames() int { return c.frames }

// Samples returns the interleaved samples of an in-memory clip, nil for streams
func (c *Clip) Samples() []float32 { return c.samples }

// IsStream reports whether the clip is backed by an open stream
func (c *Clip) IsStream() bool { return c.stream != nil }

// Stream returns the backing stream, nil for in-memory clips
func (c *Clip) Stream() *Stream { return c.stream }

// Duration returns the playback length of the clip
func (c *Clip) Duration() time.Duration {
	if c.sampleRate <= 0 {
		return 0
	}
	return time.Duration(float64(c.frames) / float64(c.sampleRate) * float64(time.Second))
}

// String implements fmt.Stringer for log output
func (c *Clip) String() string {
	if c == nil {
		return "<nil>"
	}
	mode := "memory"
	if c.stream != nil {
		mode = "stream"
	}
	return fmt.Sprintf("%s (%s, %dHz, %dch, %s)", c.name, mode, c.sampleRate, c.channels, c.Duration().Round(time.Millisecond))
}

// NameOf returns the clip name or an empty string for a nil clip
func NameOf(c *Clip) string {
	if c == nil {
		return ""
	}
	return c.name
}

// scaleSamples multiplies samples in place by volume
func scaleSamples(samples []float32, volume float64) {
	if volume == 1 {
		return
	}
	v := float32(volume)
	for i := range samples {
		samples[i] *= v
	}
}
