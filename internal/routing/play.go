package routing

import (
	"github.com/tphakala/modaudio/internal/audioclip"
	"github.com/tphakala/modaudio/internal/audiopack"
	"github.com/tphakala/modaudio/internal/logger"
	"github.com/tphakala/modaudio/internal/observability/metrics"
)

// candidate is a route together with the pack that owns it
type candidate struct {
	pack  *audiopack.Pack
	route *audiopack.Route
}

func (c candidate) weight() float64 { return c.route.ReplacementWeight }

// playResult describes what routing did for one play
type playResult struct {
	outcome     string
	suppress    bool
	pack        string
	clip        string
	usedDefault bool
}

// NotifyPlay routes a play of src. It returns true when the engine restarted
// src itself after swapping its clip; the host must then skip its own start.
// Failures are logged and reported as false so default playback proceeds.
func (e *Engine) NotifyPlay(src Source) (suppress bool) {
	return e.notifyPlay(src, false)
}

// notifyPlay is NotifyPlay. A reroute reapplies replacements to an object that
// is already playing and never spawns overlays.
func (e *Engine) notifyPlay(src Source, reroute bool) (suppress bool) {
	if src == nil || e.restoring {
		return false
	}

	defer func() {
		if r := recover(); r != nil {
			e.playFailed(src, panicError(r))
			suppress = false
		}
	}()

	result := e.route(src, reroute)
	e.metrics.RecordPlay(result.outcome)
	if result.outcome == metrics.OutcomeReplaced {
		e.metrics.RecordReplacement(result.pack)
		e.logPlayed(src, result)
	}
	return result.suppress
}

// playFailed reports a failed play. src may be the cause of the failure, so
// its values are read through sourceDetails.
func (e *Engine) playFailed(src Source, err error) {
	e.metrics.RecordPlay(metrics.OutcomeFailed)
	e.metrics.RecordRoutingError(metrics.OpPlay)
	details := sourceDetails(src)
	e.log.Error("Routing failed, default playback proceeds",
		logger.Error(newRoutingError(err, metrics.OpPlay, src)),
		logger.String("source", details.name),
		logger.String("clip", details.clip),
		logger.Float64("volume", details.volume),
		logger.Float64("pitch", details.pitch))
}

// route performs the routing steps for one play of src
func (e *Engine) route(src Source, reroute bool) playResult {
	state := e.ensureState(src)
	if state.justRouted {
		// Restart issued by the engine itself while applying a route
		e.log.Trace("Routing skipped",
			logger.String("source", src.Name()),
			logger.Bool("reentrant", true))
		return playResult{outcome: metrics.OutcomeSkipped}
	}

	*state = state.rebaselined(src, e.cfg.ChangeEpsilon)
	restoreEffects(src, state)

	if state.disableRouting {
		e.log.Trace("Routing skipped",
			logger.String("source", src.Name()),
			logger.Bool("overlay", state.isOverlay))
		return playResult{outcome: metrics.OutcomeSkipped}
	}

	state.justRouted = true
	state.justUsedDefaultClip = false
	defer func() { state.justRouted = false }()

	freshStart := state.wasStoppedOrDisabled || !src.IsPlaying()
	state.wasStoppedOrDisabled = false

	originalName := audioclip.NameOf(state.originalClip)
	hierarchy := src.HierarchyNames()
	packs := e.Packs()

	result := playResult{outcome: metrics.OutcomeUnchanged}

	replacements := matchingRoutes(packs, originalName, src.Name(), hierarchy, nil)
	chosen, replaced := pickWeighted(e.rng, replacements, candidate.weight)
	if replaced {
		result.outcome = metrics.OutcomeReplaced
		result.pack = chosen.pack.ID
		result.suppress = e.applyReplacement(src, state, chosen)
		result.clip = audioclip.NameOf(state.appliedClip)
		result.usedDefault = state.justUsedDefaultClip
	}

	if reroute || state.isOverlay {
		return result
	}

	overlays := matchingRoutes(packs, originalName, src.Name(), hierarchy, func(c candidate) bool {
		if !c.route.HasOverlays() {
			return false
		}
		if c.route.OverlaysIgnoreRestarts && !freshStart {
			return false
		}
		if c.route.LinkOverlayAndReplacement && (!replaced || chosen.route != c.route) {
			return false
		}
		return true
	})
	if len(overlays) > 0 {
		e.spawnOverlays(src, state, overlays)
	}

	return result
}

// matchingRoutes returns the routes of enabled packs that list original and
// whose filters accept the source. keep further narrows the result.
func matchingRoutes(packs []*audiopack.Pack, original, sourceName string, hierarchy []string, keep func(candidate) bool) []candidate {
	if original == "" {
		return nil
	}
	var out []candidate
	for _, pack := range packs {
		if !pack.Enabled() {
			continue
		}
		for _, route := range pack.Routes {
			if !route.MatchesClip(original) || !route.MatchesFilters(sourceName, hierarchy) {
				continue
			}
			c := candidate{pack: pack, route: route}
			if keep != nil && !keep(c) {
				continue
			}
			out = append(out, c)
		}
	}
	return out
}

// applyReplacement writes the chosen route's clip, volume and pitch onto src.
// It returns true when src was playing and had to be restarted for a clip swap.
func (e *Engine) applyReplacement(src Source, state *trackedState, chosen candidate) bool {
	route := chosen.route

	volume, pitch := route.Volume, route.Pitch
	if route.RelativeReplacementEffects {
		volume *= state.originalVolume
		pitch *= state.originalPitch
	}

	clip := state.originalClip
	if sel, ok := pickWeighted(e.rng, route.ReplacementClips, selectionWeight); ok {
		clip = e.resolveClip(chosen.pack, sel.Name, state)
		if sel.Name == audioclip.DefaultClipName {
			state.justUsedDefaultClip = true
		}
		volume *= sel.Volume
		pitch *= sel.Pitch
	}

	// A clip swap on a playing source needs a stop and restart
	restart := clip != src.Clip() && src.IsPlaying()
	if restart {
		src.Stop()
	}
	if clip != src.Clip() {
		src.SetClip(clip)
	}
	src.SetVolume(volume)
	src.SetPitch(pitch)
	*state = state.withApplied(clip, volume, pitch)
	if restart {
		src.Play()
	}
	return restart
}

func selectionWeight(sel audiopack.ClipSelection) float64 { return sel.Weight }

// resolveClip maps a selection name to a clip. Sentinels resolve to the
// original or the shared silent clip. A clip the pack cannot provide falls back
// to the original with a warning.
func (e *Engine) resolveClip(pack *audiopack.Pack, name string, state *trackedState) *audioclip.Clip {
	switch name {
	case audioclip.DefaultClipName:
		return state.originalClip
	case audioclip.SilentClipName:
		return e.silentClip
	}

	clip, found, err := pack.TryGetReadyClip(name)
	switch {
	case err != nil:
		e.log.Warn("Failed to load clip, keeping original",
			logger.String("pack_id", pack.ID),
			logger.String("clip", name),
			logger.Error(err))
		return state.originalClip
	case !found:
		e.log.Warn("Clip not found in pack, keeping original",
			logger.String("pack_id", pack.ID),
			logger.String("clip", name))
		return state.originalClip
	}
	return clip
}

// logPlayed logs a routed play at most once per clip per throttle window
func (e *Engine) logPlayed(src Source, result playResult) {
	if !e.cfg.LogAudioPlayed {
		return
	}
	if err := e.playLog.Add(result.clip, struct{}{}, 0); err != nil {
		return
	}
	e.log.Info("Audio played",
		logger.String("source", src.Name()),
		logger.String("clip", result.clip),
		logger.String("pack_id", result.pack),
		logger.Bool("kept_original_clip", result.usedDefault),
		logger.Bool("restarted", result.suppress))
}

// NotifyStop records that src stopped. With stopOneShots set, every one-shot
// spawned from src is stopped too.
func (e *Engine) NotifyStop(src Source, stopOneShots bool) {
	if src == nil || e.restoring {
		return
	}

	defer func() {
		if r := recover(); r != nil {
			e.metrics.RecordRoutingError(metrics.OpStop)
			e.log.Error("Stop handling failed",
				logger.Error(newRoutingError(panicError(r), metrics.OpStop, src)),
				logger.String("source", sourceDetails(src).name))
		}
	}()

	state := e.ensureState(src)
	if state.justRouted {
		// Stop issued by the engine itself during a clip swap
		return
	}
	if stopOneShots {
		origin := src.ID()
		for id, other := range e.states {
			if !other.isOneShotSource || !other.hasOrigin || other.oneShotOrigin != origin {
				continue
			}
			if oneShot, ok := e.sources[id]; ok {
				oneShot.Stop()
			}
		}
	}
	state.wasStoppedOrDisabled = true
}

// Reroute applies replacements again to every registered persistent object
// that is currently playing, so a changed pack set is heard without waiting
// for the next play. Overlays are not fired again.
func (e *Engine) Reroute() {
	var playing []Source
	for id, src := range e.sources {
		if state, ok := e.states[id]; ok && state.isOneShotSource {
			continue
		}
		if src.IsPlaying() {
			playing = append(playing, src)
		}
	}
	for _, src := range playing {
		e.notifyPlay(src, true)
	}
}
