package simhost

import (
	"time"

	"github.com/tphakala/modaudio/internal/audioclip"
)

// Report summarizes a simulation run
type Report struct {
	Plays    int
	Restarts int
	Clips    map[string]int // clip heard on the source after routing
	OneShots map[string]int // clips of one-shots spawned by the plays
}

// Simulate plays src the given number of times. Each play is followed by a
// stop and an advance of frame so finished one-shots are collected.
func (h *Host) Simulate(src *Source, plays int, frame time.Duration) Report {
	report := Report{
		Clips:    make(map[string]int),
		OneShots: make(map[string]int),
	}
	restarts := src.restarts

	for range plays {
		h.recent = h.recent[:0]
		src.Play()
		report.Plays++
		report.Clips[audioclip.NameOf(src.Clip())]++
		for _, oneShot := range h.recent {
			report.OneShots[audioclip.NameOf(oneShot.Clip())]++
		}
		src.Stop()
		h.Advance(frame)
	}

	report.Restarts = src.restarts - restarts
	return report
}
