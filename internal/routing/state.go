package routing

import (
	"math"

	"github.com/tphakala/modaudio/internal/audioclip"
)

// trackedState is the engine's record for one source
type trackedState struct {
	originalClip   *audioclip.Clip
	originalVolume float64
	originalPitch  float64

	appliedClip   *audioclip.Clip
	appliedVolume float64
	appliedPitch  float64

	isOneShotSource      bool
	isOverlay            bool
	isCustomEvent        bool
	disableRouting       bool
	justRouted           bool
	justUsedDefaultClip  bool
	wasStoppedOrDisabled bool

	oneShotOrigin SourceID
	hasOrigin     bool
	started       bool
}

// newTrackedState records src's live values as both original and applied
func newTrackedState(src Source) trackedState {
	return trackedState{
		originalClip:   src.Clip(),
		originalVolume: src.Volume(),
		originalPitch:  src.Pitch(),
		appliedClip:    src.Clip(),
		appliedVolume:  src.Volume(),
		appliedPitch:   src.Pitch(),
	}
}

// newOneShotState returns the state of an engine-spawned one-shot
func newOneShotState(src Source, origin SourceID, overlay bool) trackedState {
	s := newTrackedState(src)
	s.isOneShotSource = true
	s.oneShotOrigin = origin
	s.hasOrigin = true
	if overlay {
		s.isOverlay = true
		s.disableRouting = true
	}
	return s
}

// rebaselined returns the state adjusted to src's live values. A clip that is
// not the applied one becomes the new original. A volume or pitch that moved
// further than epsilon from the applied value was set by someone else and also
// becomes the new original. Smaller drift is treated as the engine's own
// effect: the tracked original becomes the applied value again, and the caller
// writes it back with restoreEffects.
func (s trackedState) rebaselined(src Source, epsilon float64) trackedState {
	if clip := src.Clip(); clip != s.appliedClip {
		s.originalClip = clip
		s.appliedClip = clip
	}
	if v := src.Volume(); math.Abs(v-s.appliedVolume) > epsilon {
		s.originalVolume = v
	}
	s.appliedVolume = s.originalVolume
	if p := src.Pitch(); math.Abs(p-s.appliedPitch) > epsilon {
		s.originalPitch = p
	}
	s.appliedPitch = s.originalPitch
	return s
}

// restoreEffects writes the state's applied volume and pitch onto src
func restoreEffects(src Source, s *trackedState) {
	if src.Volume() != s.appliedVolume {
		src.SetVolume(s.appliedVolume)
	}
	if src.Pitch() != s.appliedPitch {
		src.SetPitch(s.appliedPitch)
	}
}

// withApplied returns the state recording values the engine wrote
func (s trackedState) withApplied(clip *audioclip.Clip, volume, pitch float64) trackedState {
	s.appliedClip = clip
	s.appliedVolume = volume
	s.appliedPitch = pitch
	return s
}

// modified reports whether applied values differ from the originals
func (s trackedState) modified() bool {
	return s.appliedClip != s.originalClip ||
		s.appliedVolume != s.originalVolume ||
		s.appliedPitch != s.originalPitch
}
