// Package routing implements the audio routing engine. It observes play and stop
// notifications from a host, replaces or overlays clips according to the routes
// of the enabled audio packs, and restores original source state on reload.
package routing

import (
	"math/rand/v2"
	"runtime"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"github.com/patrickmn/go-cache"

	"github.com/tphakala/modaudio/internal/audioclip"
	"github.com/tphakala/modaudio/internal/audiopack"
	"github.com/tphakala/modaudio/internal/conf"
	"github.com/tphakala/modaudio/internal/logger"
	"github.com/tphakala/modaudio/internal/observability/metrics"
)

// PackLoader discovers packs below the configured roots
type PackLoader interface {
	LoadAll(roots []conf.PackRoot) []*audiopack.Pack
}

// Config holds engine behaviour settings
type Config struct {
	Roots                []conf.PackRoot
	DisabledPacks        []string
	ChangeEpsilon        float64
	SilentClipDuration   time.Duration
	SilentClipSampleRate int
	Seed                 int64
	LogAudioPlayed       bool
	AudioPlayedWindow    time.Duration
	PreloadConcurrency   int
}

// DefaultConfig returns the engine defaults
func DefaultConfig() Config {
	return Config{
		ChangeEpsilon:        conf.DefaultChangeEpsilon,
		SilentClipDuration:   conf.DefaultSilentClipDuration,
		SilentClipSampleRate: conf.DefaultSilentClipSampleRate,
		AudioPlayedWindow:    conf.DefaultAudioPlayedWindow,
		PreloadConcurrency:   runtime.GOMAXPROCS(0),
	}
}

// ConfigFromSettings builds an engine config from application settings
func ConfigFromSettings(settings *conf.Settings) Config {
	cfg := DefaultConfig()
	cfg.Roots = slices.Clone(settings.Packs.Roots)
	cfg.DisabledPacks = slices.Clone(settings.Packs.Disabled)
	cfg.ChangeEpsilon = settings.Engine.ChangeEpsilon
	cfg.SilentClipDuration = settings.Engine.SilentClipDuration
	cfg.SilentClipSampleRate = settings.Engine.SilentClipSampleRate
	cfg.Seed = settings.Engine.Seed
	cfg.LogAudioPlayed = settings.Logging.AudioPlayed
	cfg.AudioPlayedWindow = settings.Logging.AudioPlayedWindow
	return cfg
}

// Option configures an Engine
type Option func(*Engine)

// WithLogger sets the engine logger
func WithLogger(log logger.Logger) Option {
	return func(e *Engine) {
		if log != nil {
			e.log = log
		}
	}
}

// WithMetrics sets the metrics the engine records to
func WithMetrics(m *metrics.RoutingMetrics) Option {
	return func(e *Engine) {
		e.metrics = m
	}
}

// WithRand sets the random source used for weighted selection
func WithRand(rng *rand.Rand) Option {
	return func(e *Engine) {
		if rng != nil {
			e.rng = rng
		}
	}
}

// Pending reload requests, ordered so that a hard request wins over a soft one
const (
	reloadNone int32 = iota
	reloadSoft
	reloadHard
)

// Engine is the routing engine. NotifyPlay, NotifyStop, Reload, Update and the
// other source-facing methods run on the host's audio thread. RequestReload and
// Packs may be called from any goroutine.
type Engine struct {
	cfg     Config
	host    Host
	loader  PackLoader
	log     logger.Logger
	metrics *metrics.RoutingMetrics
	rng     *rand.Rand

	packsMu  sync.RWMutex
	packs    []*audiopack.Pack
	disabled map[string]struct{}

	sources    map[SourceID]Source
	states     map[SourceID]*trackedState
	silentClip *audioclip.Clip
	eventClips map[string]*audioclip.Clip
	restoring  bool

	pendingReload atomic.Int32
	playLog       *cache.Cache
}

// New creates an engine with no packs loaded. Call Reload(true) to load them.
func New(cfg Config, host Host, loader PackLoader, opts ...Option) *Engine {
	defaults := DefaultConfig()
	if cfg.SilentClipDuration <= 0 {
		cfg.SilentClipDuration = defaults.SilentClipDuration
	}
	if cfg.SilentClipSampleRate <= 0 {
		cfg.SilentClipSampleRate = defaults.SilentClipSampleRate
	}
	if cfg.AudioPlayedWindow <= 0 {
		cfg.AudioPlayedWindow = defaults.AudioPlayedWindow
	}
	if cfg.PreloadConcurrency < 1 {
		cfg.PreloadConcurrency = defaults.PreloadConcurrency
	}

	e := &Engine{
		cfg:        cfg,
		host:       host,
		loader:     loader,
		log:        GetLogger(),
		disabled:   make(map[string]struct{}, len(cfg.DisabledPacks)),
		sources:    make(map[SourceID]Source),
		states:     make(map[SourceID]*trackedState),
		eventClips: make(map[string]*audioclip.Clip),
		silentClip: audioclip.NewSilentClip(audioclip.SilentClipName, cfg.SilentClipDuration, cfg.SilentClipSampleRate),
		// Expiry is driven from Update, no janitor goroutine
		playLog: cache.New(cfg.AudioPlayedWindow, 0),
	}
	for _, id := range cfg.DisabledPacks {
		e.disabled[id] = struct{}{}
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.rng == nil {
		e.rng = newRand(cfg.Seed)
	}
	return e
}

// SilentClip returns the shared clip that "___nothing___" resolves to
func (e *Engine) SilentClip() *audioclip.Clip {
	return e.silentClip
}

// Packs returns a snapshot of the loaded packs
func (e *Engine) Packs() []*audiopack.Pack {
	e.packsMu.RLock()
	defer e.packsMu.RUnlock()
	return slices.Clone(e.packs)
}

// Register records a newly created host object so reload and Reroute can reach it
func (e *Engine) Register(src Source) {
	if src == nil {
		return
	}
	e.sources[src.ID()] = src
}

// Forget drops a destroyed host object and its tracked state
func (e *Engine) Forget(id SourceID) {
	delete(e.sources, id)
	delete(e.states, id)
}

// Stats describes the engine's tracked objects
type Stats struct {
	Registered int
	Tracked    int
	OneShots   int
}

// Stats returns counts of registered and tracked objects
func (e *Engine) Stats() Stats {
	s := Stats{Registered: len(e.sources), Tracked: len(e.states)}
	for _, state := range e.states {
		if state.isOneShotSource {
			s.OneShots++
		}
	}
	return s
}

// ensureState returns the tracked state of src, creating it from live values
func (e *Engine) ensureState(src Source) *trackedState {
	id := src.ID()
	if state, ok := e.states[id]; ok {
		return state
	}
	state := newTrackedState(src)
	e.states[id] = &state
	if _, ok := e.sources[id]; !ok {
		e.sources[id] = src
	}
	return &state
}

// SetPackEnabled enables or disables a pack. A change schedules a soft reload
// followed by a reroute on the next Update. It reports whether the state changed.
func (e *Engine) SetPackEnabled(id string, enabled bool) bool {
	e.packsMu.Lock()
	if enabled {
		delete(e.disabled, id)
	} else {
		e.disabled[id] = struct{}{}
	}
	var changed bool
	for _, pack := range e.packs {
		if pack.ID == id {
			changed = pack.SetEnabled(enabled)
			break
		}
	}
	e.packsMu.Unlock()

	if changed {
		e.log.Info("Audio pack toggled",
			logger.String("pack_id", id),
			logger.Bool("enabled", enabled))
		e.RequestReload(false)
	}
	return changed
}

// RequestReload schedules a reload for the next Update. A pending hard request
// is never downgraded to soft. Safe for concurrent use.
func (e *Engine) RequestReload(hard bool) {
	want := reloadSoft
	if hard {
		want = reloadHard
	}
	for {
		current := e.pendingReload.Load()
		if current >= want {
			return
		}
		if e.pendingReload.CompareAndSwap(current, want) {
			return
		}
	}
}

// ReloadPending reports whether a reload request is waiting for Update
func (e *Engine) ReloadPending() bool {
	return e.pendingReload.Load() != reloadNone
}

// Update performs per-frame housekeeping: it runs a requested reload and
// reroute, destroys finished one-shots, expires play-log throttling entries
// and publishes gauges.
func (e *Engine) Update() {
	defer func() {
		if r := recover(); r != nil {
			e.metrics.RecordRoutingError(metrics.OpUpdate)
			e.log.Error("Engine update failed",
				logger.Error(newRoutingError(panicError(r), metrics.OpUpdate, nil)))
		}
	}()

	switch e.pendingReload.Swap(reloadNone) {
	case reloadSoft:
		e.Reload(false)
		e.Reroute()
	case reloadHard:
		e.Reload(true)
		e.Reroute()
	}

	e.destroyFinishedOneShots()
	e.playLog.DeleteExpired()
	e.publishGauges()
}

// destroyFinishedOneShots releases one-shots that started and are no longer playing
func (e *Engine) destroyFinishedOneShots() {
	for id, state := range e.states {
		if !state.isOneShotSource {
			continue
		}
		src, ok := e.sources[id]
		if !ok {
			delete(e.states, id)
			continue
		}
		if state.started && !src.IsPlaying() {
			e.destroy(id, src)
		}
	}
}

func (e *Engine) destroy(id SourceID, src Source) {
	delete(e.states, id)
	delete(e.sources, id)
	if e.host != nil {
		e.host.Destroy(src)
	}
}

func (e *Engine) publishGauges() {
	if e.metrics == nil {
		return
	}
	e.metrics.UpdateTrackedSources(len(e.states))

	var enabled, disabled int
	for _, pack := range e.Packs() {
		if pack.Enabled() {
			enabled++
		} else {
			disabled++
		}
	}
	e.metrics.UpdatePacksLoaded(enabled, disabled)
}

// Close disposes every loaded pack
func (e *Engine) Close() error {
	e.packsMu.Lock()
	packs := e.packs
	e.packs = nil
	e.packsMu.Unlock()

	var firstErr error
	for _, pack := range packs {
		if err := pack.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// clipObserver records clip materializations to metrics
type clipObserver struct {
	metrics *metrics.RoutingMetrics
}

func (o clipObserver) ObserveClipMaterialization(mode audiopack.ClipLoadMode, duration time.Duration, err error) {
	status := metrics.StatusSuccess
	if err != nil {
		status = metrics.StatusError
	}
	o.metrics.RecordClipMaterialization(mode.String(), status, duration.Seconds())
}
