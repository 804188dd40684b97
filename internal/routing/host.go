package routing

import "github.com/tphakala/modaudio/internal/audioclip"

// SourceID is a stable handle the host assigns to each audio-emitting object
type SourceID uint64

// Source is a host audio object the engine observes and mutates.
//
// Play and Stop are the host's own playback calls. A host integration routes
// Play through Engine.NotifyPlay the same way it does for plays it starts itself,
// so engine-initiated restarts are seen by the re-entrancy guard.
type Source interface {
	ID() SourceID
	Name() string
	HierarchyNames() []string

	Clip() *audioclip.Clip
	SetClip(clip *audioclip.Clip)
	Volume() float64
	SetVolume(volume float64)
	Pitch() float64
	SetPitch(pitch float64)

	IsPlaying() bool
	Play()
	Stop()
}

// Host creates and destroys the ephemeral one-shot objects the engine uses for
// overlays, custom events and one-shot plays.
type Host interface {
	// SpawnOneShot returns a new, stopped, non-looping object with template's
	// clip, volume, pitch and position.
	SpawnOneShot(template Source) Source
	// Destroy releases an object returned by SpawnOneShot.
	Destroy(src Source)
}
