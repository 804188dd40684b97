package routing

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/tphakala/modaudio/internal/audioclip"
	"github.com/tphakala/modaudio/internal/audiopack"
	"github.com/tphakala/modaudio/internal/logger"
	"github.com/tphakala/modaudio/internal/observability/metrics"
)

// ReloadResult summarizes a reload
type ReloadResult struct {
	ID        string
	Hard      bool
	Restored  int
	Destroyed int
	Packs     int
	Preload   audiopack.PreloadResult
	Duration  time.Duration
}

// Reload restores every tracked object to its original clip, volume and pitch
// and stops tracking it. A hard reload also destroys one-shots, disposes the
// loaded packs, rescans the pack roots and preloads in-memory clips.
func (e *Engine) Reload(hard bool) ReloadResult {
	return e.ReloadContext(context.Background(), hard)
}

// ReloadContext is Reload with a context bounding the preload phase
func (e *Engine) ReloadContext(ctx context.Context, hard bool) (result ReloadResult) {
	start := time.Now()
	result = ReloadResult{ID: uuid.NewString(), Hard: hard}
	kind := metrics.ReloadSoft
	if hard {
		kind = metrics.ReloadHard
	}
	log := e.log.WithContext(logger.WithTraceID(ctx, result.ID)).With(
		logger.String("reload_id", result.ID),
		logger.String("kind", kind))

	defer func() {
		if r := recover(); r != nil {
			e.restoring = false
			e.metrics.RecordRoutingError(metrics.OpReload)
			log.Error("Reload failed", logger.Error(newRoutingError(panicError(r), metrics.OpReload, nil)))
		}
		result.Duration = time.Since(start)
		e.metrics.RecordReload(kind, result.Duration.Seconds())
	}()

	// Tracked state is fully restored before any rescan starts
	result.Restored = e.restoreAll(log)

	if !hard {
		log.Info("Soft reload complete", logger.Int("restored", result.Restored))
		return result
	}

	result.Destroyed = e.destroyOneShots()

	packs := e.loadPacks()
	e.packsMu.Lock()
	old := e.packs
	e.packs = packs
	e.packsMu.Unlock()

	for _, pack := range old {
		if err := pack.Close(); err != nil {
			log.Warn("Failed to close audio pack",
				logger.String("pack_id", pack.ID),
				logger.Error(err))
		}
	}
	result.Packs = len(packs)

	preload, err := audiopack.Preload(ctx, packs, e.cfg.PreloadConcurrency, log)
	result.Preload = preload
	if err != nil {
		log.Warn("Clip preload interrupted", logger.Error(err))
	}

	log.Info("Hard reload complete",
		logger.Int("restored", result.Restored),
		logger.Int("destroyed_one_shots", result.Destroyed),
		logger.Int("packs", result.Packs),
		logger.Int("clips_preloaded", preload.Loaded),
		logger.Int("clips_failed", preload.Failed),
		logger.Duration("duration", time.Since(start)))
	return result
}

// restoreAll writes original values back to every tracked persistent object
// and drops its state. One-shot states are kept so Update still releases them.
// Playing objects are stopped and restarted around a clip change; the restart
// is not routed.
func (e *Engine) restoreAll(log logger.Logger) int {
	e.restoring = true
	defer func() { e.restoring = false }()

	restored := 0
	for id, state := range e.states {
		if state.isOneShotSource {
			continue
		}
		src, ok := e.sources[id]
		if !ok {
			delete(e.states, id)
			continue
		}

		if state.modified() || src.Clip() != state.originalClip {
			log.Debug("Restoring source",
				logger.String("source", src.Name()),
				logger.String("from", audioclip.NameOf(src.Clip())),
				logger.String("to", audioclip.NameOf(state.originalClip)))
		}

		restart := src.Clip() != state.originalClip && src.IsPlaying()
		if restart {
			src.Stop()
		}
		if src.Clip() != state.originalClip {
			src.SetClip(state.originalClip)
		}
		src.SetVolume(state.originalVolume)
		src.SetPitch(state.originalPitch)
		if restart {
			src.Play()
		}

		delete(e.states, id)
		restored++
	}
	return restored
}

// destroyOneShots stops and releases every engine-owned one-shot
func (e *Engine) destroyOneShots() int {
	destroyed := 0
	for id, state := range e.states {
		if !state.isOneShotSource {
			continue
		}
		src, ok := e.sources[id]
		if !ok {
			delete(e.states, id)
			continue
		}
		src.Stop()
		e.destroy(id, src)
		destroyed++
	}
	return destroyed
}

// loadPacks rescans the pack roots and applies enabled state and observers
func (e *Engine) loadPacks() []*audiopack.Pack {
	if e.loader == nil {
		return nil
	}
	packs := e.loader.LoadAll(e.cfg.Roots)

	e.packsMu.RLock()
	defer e.packsMu.RUnlock()
	for _, pack := range packs {
		_, disabled := e.disabled[pack.ID]
		pack.SetEnabled(!disabled)
		if e.metrics != nil {
			pack.SetObserver(clipObserver{metrics: e.metrics})
		}
	}
	return packs
}
