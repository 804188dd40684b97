package routing

import (
	"github.com/tphakala/modaudio/internal/audioclip"
	"github.com/tphakala/modaudio/internal/logger"
	"github.com/tphakala/modaudio/internal/observability/metrics"
)

// spawnOverlays starts one overlay one-shot per qualifying route. Overlays have
// routing disabled so they never spawn overlays of their own.
func (e *Engine) spawnOverlays(src Source, state *trackedState, routes []candidate) {
	for _, c := range routes {
		sel, ok := pickWeighted(e.rng, c.route.OverlayClips, selectionWeight)
		if !ok || sel.Name == audioclip.SilentClipName {
			continue
		}
		clip := e.resolveClip(c.pack, sel.Name, state)

		volume, pitch := sel.Volume, sel.Pitch
		if c.route.RelativeOverlayEffects {
			volume *= state.originalVolume
			pitch *= state.originalPitch
		}

		overlay := e.spawnOneShot(src, clip, volume, pitch, true)
		if overlay == nil {
			return
		}
		e.metrics.RecordOverlay(c.pack.ID)
		e.log.Debug("Overlay spawned",
			logger.String("source", src.Name()),
			logger.String("clip", audioclip.NameOf(clip)),
			logger.String("pack_id", c.pack.ID))
	}
}

// spawnOneShot creates a tracked one-shot cloned from origin, assigns clip,
// volume and pitch, and starts it.
func (e *Engine) spawnOneShot(origin Source, clip *audioclip.Clip, volume, pitch float64, overlay bool) Source {
	if e.host == nil {
		e.log.Warn("No host to spawn one-shot sources", logger.String("source", origin.Name()))
		return nil
	}
	oneShot := e.host.SpawnOneShot(origin)
	if oneShot == nil {
		return nil
	}

	oneShot.SetClip(clip)
	oneShot.SetVolume(volume)
	oneShot.SetPitch(pitch)

	state := newOneShotState(oneShot, origin.ID(), overlay)
	state.started = true
	e.sources[oneShot.ID()] = oneShot
	e.states[oneShot.ID()] = &state

	oneShot.Play()
	return oneShot
}

// PlayOneShot plays clip once through an engine-owned one-shot cloned from
// origin. The one-shot is routed like any other play and destroyed by Update
// when it finishes.
func (e *Engine) PlayOneShot(origin Source, clip *audioclip.Clip, volumeScale float64) (oneShot Source) {
	if origin == nil || clip == nil {
		return nil
	}

	defer func() {
		if r := recover(); r != nil {
			e.metrics.RecordRoutingError(metrics.OpOneShot)
			e.log.Error("One-shot playback failed",
				logger.Error(newRoutingError(panicError(r), metrics.OpOneShot, origin)),
				logger.String("clip", clip.Name()))
			oneShot = nil
		}
	}()

	return e.spawnOneShot(origin, clip, origin.Volume()*volumeScale, origin.Pitch(), false)
}

// TriggerCustomEvent plays the silent event clip for name from origin. Packs
// route events by listing the event clip name, e.g. "___event:player_hit___",
// in original_clips.
func (e *Engine) TriggerCustomEvent(origin Source, name string) Source {
	if origin == nil {
		return nil
	}

	clipName := audioclip.EventClipName(name)
	clip, ok := e.eventClips[clipName]
	if !ok {
		clip = audioclip.NewEventClip(name, e.cfg.SilentClipSampleRate)
		e.eventClips[clipName] = clip
	}

	oneShot := e.PlayOneShot(origin, clip, 1)
	if oneShot == nil {
		return nil
	}
	if state, ok := e.states[oneShot.ID()]; ok {
		state.isCustomEvent = true
	}
	return oneShot
}
