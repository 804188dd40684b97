package simhost

import (
	"time"

	"github.com/tphakala/modaudio/internal/audioclip"
	"github.com/tphakala/modaudio/internal/routing"
)

// Source is a simulated audio object
type Source struct {
	id        routing.SourceID
	name      string
	hierarchy []string
	clip      *audioclip.Clip
	volume    float64
	pitch     float64
	oneShot   bool

	playing   bool
	remaining time.Duration
	plays     int
	restarts  int
	host      *Host
}

func (s *Source) ID() routing.SourceID         { return s.id }
func (s *Source) Name() string                 { return s.name }
func (s *Source) HierarchyNames() []string     { return s.hierarchy }
func (s *Source) Clip() *audioclip.Clip        { return s.clip }
func (s *Source) SetClip(clip *audioclip.Clip) { s.clip = clip }
func (s *Source) Volume() float64              { return s.volume }
func (s *Source) SetVolume(volume float64)     { s.volume = volume }
func (s *Source) Pitch() float64               { return s.pitch }
func (s *Source) SetPitch(pitch float64)       { s.pitch = pitch }
func (s *Source) IsPlaying() bool              { return s.playing }
func (s *Source) IsOneShot() bool              { return s.oneShot }
func (s *Source) Plays() int                   { return s.plays }

// Play notifies the engine and starts playback unless the engine already did
func (s *Source) Play() {
	if s.host.engine != nil && s.host.engine.NotifyPlay(s) {
		s.restarts++
		return
	}
	s.start()
}

func (s *Source) start() {
	s.playing = true
	s.plays++
	s.remaining = playbackLength(s.clip, s.pitch)
}

// Stop notifies the engine and stops playback
func (s *Source) Stop() {
	if s.host.engine != nil {
		s.host.engine.NotifyStop(s, false)
	}
	s.playing = false
	s.remaining = 0
}

// StopWithOneShots stops the source and every one-shot it spawned
func (s *Source) StopWithOneShots() {
	if s.host.engine != nil {
		s.host.engine.NotifyStop(s, true)
	}
	s.playing = false
	s.remaining = 0
}

// playbackLength is the clip duration scaled by pitch
func playbackLength(clip *audioclip.Clip, pitch float64) time.Duration {
	if clip == nil {
		return 0
	}
	d := clip.Duration()
	if pitch > 0 {
		d = time.Duration(float64(d) / pitch)
	}
	return d
}
